package completion

import "github.com/samber/lo"

// FilterCandidates returns a new slice with the candidates whose display text
// or unquoted insertion text starts with filter, ignoring case. When the set
// quotes consistently the filter is matched behind the shared opening quote.
func FilterCandidates(all []Candidate, filter string, consistent bool) []Candidate {
	if len(all) == 0 {
		return nil
	}
	if consistent {
		if q := firstRune(all[0].InsertionText); isQuote(q) {
			filter = string(q) + filter
		}
	}
	return lo.Filter(all, func(c Candidate, _ int) bool {
		return hasPrefixFold(c.DisplayText, filter) ||
			hasPrefixFold(Unquote(c.InsertionText, consistent), filter)
	})
}
