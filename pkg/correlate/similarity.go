package correlate

// Ratio computes string similarity as 2*M / (len(a)+len(b)), where M is the
// total length of matched blocks found by recursively taking the longest
// common substring and matching the pieces on either side of it. Inputs are
// compared byte-wise; callers lowercase and trim first.
func Ratio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	m := matchedLength(a, b)
	return 2.0 * float64(m) / float64(len(a)+len(b))
}

func matchedLength(a, b string) int {
	aStart, bStart, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchedLength(a[:aStart], b[:bStart])
	total += matchedLength(a[aStart+size:], b[bStart+size:])
	return total
}

// longestMatch finds the longest common substring of a and b using the
// classic dynamic-programming row sweep. Ties resolve to the earliest
// position in a, then in b.
func longestMatch(a, b string) (aStart, bStart, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > size {
					size = curr[j]
					aStart = i - size
					bStart = j - size
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	return aStart, bStart, size
}
