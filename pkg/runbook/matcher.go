package runbook

import (
	"sort"
	"strings"

	"github.com/codeready-toolchain/autopilot/pkg/models"
)

// alternativeScoreFloor filters noise out of the alternatives list.
const alternativeScoreFloor = 0.1

// maxAlternatives is how many runner-up runbooks are reported.
const maxAlternatives = 3

// Matcher ranks catalog entries for a triaged incident.
type Matcher struct {
	catalog *Catalog
}

// NewMatcher creates a matcher over the catalog.
func NewMatcher(catalog *Catalog) *Matcher {
	return &Matcher{catalog: catalog}
}

// Match scores every catalog entry against the incident and its category.
// The fit score blends an exact category match (60%) with keyword density
// in the incident text (40%). Returns the best entry and up to three
// alternatives scoring above the floor.
func (m *Matcher) Match(inc *models.Incident, category models.IncidentCategory) (*models.RunbookFit, []models.RunbookFit) {
	text := strings.ToLower(inc.Summary + " " + inc.Description)

	type scored struct {
		entry Entry
		score float64
	}
	entries := m.catalog.List()
	ranked := make([]scored, 0, len(entries))
	for _, e := range entries {
		ranked = append(ranked, scored{entry: e, score: m.score(e, text, category)})
	}
	// Stable sort keeps catalog order on ties.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	primary := toFit(ranked[0].entry, ranked[0].score)

	var alternatives []models.RunbookFit
	for _, r := range ranked[1:] {
		if len(alternatives) == maxAlternatives {
			break
		}
		if r.score > alternativeScoreFloor {
			alternatives = append(alternatives, *toFit(r.entry, r.score))
		}
	}
	return primary, alternatives
}

func (m *Matcher) score(e Entry, text string, category models.IncidentCategory) float64 {
	typeScore := 0.0
	if e.Key == string(category) {
		typeScore = 1.0
	}

	keywords := categoryKeywords[e.Key]
	matches := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			matches++
		}
	}
	keywordScore := 0.0
	if len(keywords) > 0 && matches > 0 {
		density := float64(matches) / float64(len(keywords))
		boost := 1.0 + 0.1*float64(matches)
		if boost > 2.0 {
			boost = 2.0
		}
		keywordScore = density * boost
		if keywordScore > 1.0 {
			keywordScore = 1.0
		}
	}

	return 0.6*typeScore + 0.4*keywordScore
}

func toFit(e Entry, score float64) *models.RunbookFit {
	return &models.RunbookFit{
		RunbookKey:  e.Key,
		RunbookName: e.Name,
		FitScore:    score,
		RunbookURL:  e.RunbookURL,
		Steps:       e.Steps,
	}
}
