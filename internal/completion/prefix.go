package completion

import "unicode"

// UnambiguousPrefix returns the longest case-insensitive prefix shared by the
// chosen field of every candidate, spelled as in the first candidate.
// Insertion texts are unquoted when the set quotes inconsistently. ambiguous
// is set as soon as any candidate diverges.
func UnambiguousPrefix(cands []Candidate, useInsertion bool) (prefix string, ambiguous bool) {
	if len(cands) == 0 {
		return "", false
	}
	consistent := true
	if useInsertion {
		consistent = IsConsistentQuoting(cands)
	}
	field := func(c Candidate) []rune {
		if useInsertion {
			return []rune(Unquote(c.InsertionText, consistent))
		}
		return []rune(c.DisplayText)
	}

	working := field(cands[0])
	for _, c := range cands[1:] {
		other := field(c)
		for i := range working {
			if i == len(other) || unicode.ToLower(working[i]) != unicode.ToLower(other[i]) {
				ambiguous = true
				working = working[:i]
				break
			}
		}
		if len(working) == 0 {
			break
		}
	}
	return string(working), ambiguous
}

// hasPrefixFold reports whether s starts with prefix, ignoring case rune by
// rune.
func hasPrefixFold(s, prefix string) bool {
	sr, pr := []rune(s), []rune(prefix)
	if len(pr) > len(sr) {
		return false
	}
	for i := range pr {
		if unicode.ToLower(sr[i]) != unicode.ToLower(pr[i]) {
			return false
		}
	}
	return true
}

// indexFold returns the rune index of the first case-insensitive occurrence
// of sub in s, or -1.
func indexFold(s, sub string) int {
	sr, subr := []rune(s), []rune(sub)
	for i := 0; i+len(subr) <= len(sr); i++ {
		if hasPrefixFold(string(sr[i:]), sub) {
			return i
		}
	}
	return -1
}
