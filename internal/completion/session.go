package completion

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/kobzarvs/qline/internal/linebuf"
)

// Session caches one candidate set across repeated completion requests.
// Any edit it did not make, or a cursor move out of the replacement span,
// makes it stale.
type Session struct {
	provider Provider
	timeout  time.Duration
	log      *zap.Logger

	set   *CandidateSet
	count int
	tick  uint64
	valid bool
}

func NewSession(p Provider, timeout time.Duration, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{provider: p, timeout: timeout, log: log}
}

// Count is the number of completion requests served from the current set.
func (s *Session) Count() int {
	return s.count
}

func (s *Session) Set() *CandidateSet {
	return s.set
}

// Stale reports whether the buffer moved on since the session last touched
// it.
func (s *Session) Stale(buf *linebuf.Buffer) bool {
	if !s.valid || s.set == nil {
		return true
	}
	return buf.Tick() != s.tick || !s.set.Span.Contains(buf.Cursor())
}

// Request returns the candidate set for the current buffer, calling the
// provider when the session is stale or no request has been counted yet.
// Provider failures and empty results come back as (nil, false).
func (s *Session) Request(ctx context.Context, buf *linebuf.Buffer) (*CandidateSet, bool) {
	if s.Stale(buf) {
		s.Reset()
	}
	if s.count > 0 && s.set != nil {
		return s.set, true
	}
	set, err := s.fetch(ctx, buf)
	if err != nil {
		s.log.Debug("completion provider failed", zap.Error(err))
		s.Reset()
		return nil, false
	}
	if set.Len() == 0 {
		s.log.Debug("no completions", zap.Int("cursor", buf.Cursor()))
		s.Reset()
		return nil, false
	}
	s.set = set
	s.valid = true
	s.tick = buf.Tick()
	s.log.Debug("completions fetched",
		zap.Int("count", set.Len()),
		zap.Int("start", set.Span.Start),
		zap.Int("length", set.Span.Length))
	return set, true
}

func (s *Session) fetch(ctx context.Context, buf *linebuf.Buffer) (set *CandidateSet, err error) {
	if s.provider == nil {
		return nil, nil
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			set, err = nil, errors.Newf("provider panic: %v", r)
		}
	}()
	set, err = s.provider.CompleteInput(ctx, buf.String(), buf.Cursor())
	if err != nil || set == nil {
		return nil, err
	}
	if set.Span.Start < 0 || set.Span.End() > buf.Len() {
		return nil, errors.Newf("replacement span %d+%d outside buffer of %d", set.Span.Start, set.Span.Length, buf.Len())
	}
	set.Index = -1
	return set, nil
}

// Replace applies cand over the current span and tracks the new span.
func (s *Session) Replace(buf *linebuf.Buffer, cand Candidate, sep rune) {
	if s.set == nil {
		return
	}
	s.set.Span = Apply(buf, cand, s.set.Span, sep)
	s.touch(buf)
}

// ReplaceText writes plain text over the current span.
func (s *Session) ReplaceText(buf *linebuf.Buffer, text string) {
	s.Replace(buf, Candidate{InsertionText: text, Kind: KindOther}, 0)
}

// Cycle moves the cycle position one step with wraparound and inserts the
// candidate found there.
func (s *Session) Cycle(buf *linebuf.Buffer, forward bool, sep rune) {
	if s.set.Len() == 0 {
		return
	}
	n := len(s.set.Candidates)
	if forward {
		s.set.Index++
	} else {
		s.set.Index--
	}
	if s.set.Index < 0 {
		s.set.Index = n - 1
	} else if s.set.Index >= n {
		s.set.Index = 0
	}
	s.Replace(buf, s.set.Candidates[s.set.Index], sep)
	s.count++
}

// Advance counts a request that made progress without cycling.
func (s *Session) Advance() {
	s.count++
}

func (s *Session) touch(buf *linebuf.Buffer) {
	s.tick = buf.Tick()
}

// Sync accepts the current buffer state as the session's own, so edits made
// by the menu do not invalidate it.
func (s *Session) Sync(buf *linebuf.Buffer) {
	if s.valid {
		s.touch(buf)
	}
}

func (s *Session) Reset() {
	s.set = nil
	s.count = 0
	s.valid = false
}
