package completion

import (
	"strings"

	"github.com/samber/lo"
)

// invocation operator that may precede a quoted command
const invocationPrefix = "& "

func IsSingleQuote(r rune) bool {
	switch r {
	case '\'', '‘', '’', '‚':
		return true
	}
	return false
}

func IsDoubleQuote(r rune) bool {
	switch r {
	case '"', '“', '”', '„':
		return true
	}
	return false
}

func isQuote(r rune) bool {
	return IsSingleQuote(r) || IsDoubleQuote(r)
}

// IsQuoted reports whether text is wrapped in a pair of quotes of the same
// family, optionally after the invocation operator.
func IsQuoted(text string) bool {
	r := []rune(text)
	if len(r) > 4 && strings.HasPrefix(text, invocationPrefix) {
		r = r[2:]
	}
	if len(r) < 2 {
		return false
	}
	first, last := r[0], r[len(r)-1]
	return (IsSingleQuote(first) && IsSingleQuote(last)) ||
		(IsDoubleQuote(first) && IsDoubleQuote(last))
}

// IsConsistentQuoting is true when no candidate is quoted, or when all of
// them are quoted and open with the same character as the first one.
func IsConsistentQuoting(cands []Candidate) bool {
	quoted := lo.CountBy(cands, func(c Candidate) bool { return IsQuoted(c.InsertionText) })
	if quoted == 0 {
		return true
	}
	if quoted != len(cands) {
		return false
	}
	first := firstRune(cands[0].InsertionText)
	return lo.EveryBy(cands, func(c Candidate) bool { return firstRune(c.InsertionText) == first })
}

// Unquote strips the surrounding quotes (and the invocation operator) from a
// quoted text when the set it belongs to quotes inconsistently.
func Unquote(text string, consistent bool) string {
	if consistent || !IsQuoted(text) {
		return text
	}
	r := []rune(text)
	start := 1
	if strings.HasPrefix(text, invocationPrefix) {
		start = 3
	}
	return string(r[start : len(r)-1])
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

// trimLeadingQuote drops one opening quote character.
func trimLeadingQuote(s string) string {
	if r := firstRune(s); r != 0 && isQuote(r) {
		return string([]rune(s)[1:])
	}
	return s
}
