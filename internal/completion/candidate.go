// Package completion implements tab completion and the interactive
// completion menu for the line editor.
package completion

import (
	"context"
)

// Kind classifies a candidate. It decides the directory adjustment on
// replacement and which keys finish a menu session.
type Kind int

const (
	KindOther Kind = iota
	KindVariable
	KindNamespace
	KindProperty
	KindContainer
	KindMethod
	KindType
	KindParameterName
	KindParameterValue
)

var kindNames = map[Kind]string{
	KindOther:          "other",
	KindVariable:       "variable",
	KindNamespace:      "namespace",
	KindProperty:       "property",
	KindContainer:      "container",
	KindMethod:         "method",
	KindType:           "type",
	KindParameterName:  "parameter-name",
	KindParameterValue: "parameter-value",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Candidate is one possible completion. Values are never modified after
// creation.
type Candidate struct {
	InsertionText string
	DisplayText   string
	Tooltip       string
	Kind          Kind
}

// NewCandidate fills in the display text and tooltip when they are empty.
func NewCandidate(insertion, display, tooltip string, kind Kind) Candidate {
	if display == "" {
		display = insertion
	}
	if tooltip == "" {
		tooltip = display
	}
	return Candidate{InsertionText: insertion, DisplayText: display, Tooltip: tooltip, Kind: kind}
}

// Span is a range of the buffer in rune offsets.
type Span struct {
	Start  int
	Length int
}

func (s Span) End() int {
	return s.Start + s.Length
}

func (s Span) Contains(pos int) bool {
	return pos >= s.Start && pos <= s.End()
}

// CandidateSet is the result of one provider call. All candidates replace the
// same span.
type CandidateSet struct {
	Candidates []Candidate
	Span       Span
	// Index is the cycle position; -1 until the first cycle.
	Index int

	consistent *bool
}

func NewCandidateSet(cands []Candidate, span Span) *CandidateSet {
	return &CandidateSet{Candidates: cands, Span: span, Index: -1}
}

func (s *CandidateSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Candidates)
}

// Consistent reports whether the candidates quote uniformly. The value is
// computed on first use and reused for the lifetime of the set.
func (s *CandidateSet) Consistent() bool {
	if s.consistent == nil {
		v := IsConsistentQuoting(s.Candidates)
		s.consistent = &v
	}
	return *s.consistent
}

// Provider produces candidates for the text around cursor. Implementations
// must bound their own latency; the editor waits for the call.
type Provider interface {
	CompleteInput(ctx context.Context, text string, cursor int) (*CandidateSet, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, text string, cursor int) (*CandidateSet, error)

func (f ProviderFunc) CompleteInput(ctx context.Context, text string, cursor int) (*CandidateSet, error) {
	return f(ctx, text, cursor)
}
