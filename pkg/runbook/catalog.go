// Package runbook holds the built-in runbook catalog and ranks entries
// against a triaged incident.
package runbook

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed runbooks.yaml
var catalogYAML []byte

// Entry is one runbook in the catalog.
type Entry struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	RunbookURL  string   `yaml:"runbook_url"`
	Description string   `yaml:"description"`
	Steps       []string `yaml:"steps"`
}

// Catalog is the ordered set of runbook entries.
type Catalog struct {
	entries []Entry
	byKey   map[string]*Entry
}

// LoadCatalog parses the embedded catalog.
func LoadCatalog() (*Catalog, error) {
	var doc struct {
		Runbooks []Entry `yaml:"runbooks"`
	}
	if err := yaml.Unmarshal(catalogYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse runbook catalog: %w", err)
	}
	if len(doc.Runbooks) == 0 {
		return nil, fmt.Errorf("runbook catalog is empty")
	}

	c := &Catalog{
		entries: doc.Runbooks,
		byKey:   make(map[string]*Entry, len(doc.Runbooks)),
	}
	for i := range c.entries {
		e := &c.entries[i]
		if e.Key == "" {
			return nil, fmt.Errorf("runbook catalog entry %d has no key", i)
		}
		if _, dup := c.byKey[e.Key]; dup {
			return nil, fmt.Errorf("duplicate runbook key %q", e.Key)
		}
		c.byKey[e.Key] = e
	}
	return c, nil
}

// List returns the entries in catalog order.
func (c *Catalog) List() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Get returns the entry for key, or nil.
func (c *Catalog) Get(key string) *Entry {
	return c.byKey[key]
}
