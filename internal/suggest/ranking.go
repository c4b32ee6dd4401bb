package suggest

import "sort"

// Rank sorts suggestions by Score (priority x confidence) in descending
// order. The sort is stable: ties keep the original detector emission order,
// so ranking is fully deterministic.
func Rank(suggestions []Suggestion) []Suggestion {
	sorted := make([]Suggestion, len(suggestions))
	copy(sorted, suggestions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score() > sorted[j].Score()
	})
	return sorted
}
