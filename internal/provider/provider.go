// Package provider produces completion candidates for shell command lines.
// A Shell analyses the line, then asks its sources in order.
package provider

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/kobzarvs/qline/internal/completion"
	"github.com/kobzarvs/qline/internal/treesitter"
)

// Request describes the word being completed.
type Request struct {
	Line   string
	Cursor int
	Word   treesitter.Word
	// Args are the words of the enclosing command before Word.
	Args []string
	Dir  string
}

// Command is the base name of the command being run, or "".
func (r Request) Command() string {
	if len(r.Args) == 0 {
		return ""
	}
	return filepath.Base(r.Args[0])
}

// Source completes one kind of word. A source that does not apply returns
// no candidates and no error.
type Source interface {
	Name() string
	Complete(ctx context.Context, req Request) ([]completion.Candidate, error)
}

// Composite asks each source in order and returns the first non-empty
// answer. Errors are collected and only reported when nothing answered.
type Composite []Source

func (c Composite) Name() string { return "composite" }

func (c Composite) Complete(ctx context.Context, req Request) ([]completion.Candidate, error) {
	var result *multierror.Error
	for _, src := range c {
		if err := ctx.Err(); err != nil {
			result = multierror.Append(result, err)
			break
		}
		cands, err := src.Complete(ctx, req)
		if err != nil {
			result = multierror.Append(result, errors.Wrap(err, src.Name()))
			continue
		}
		if len(cands) > 0 {
			return cands, nil
		}
	}
	return nil, result.ErrorOrNil()
}

// Shell implements completion.Provider for a bash-like command line.
type Shell struct {
	analyzer *treesitter.Analyzer
	source   Source
	dir      string
	log      *zap.Logger
}

// NewShell builds a provider over source. An empty dir means the process
// working directory at request time.
func NewShell(analyzer *treesitter.Analyzer, source Source, dir string, log *zap.Logger) *Shell {
	if log == nil {
		log = zap.NewNop()
	}
	return &Shell{analyzer: analyzer, source: source, dir: dir, log: log}
}

func (s *Shell) CompleteInput(ctx context.Context, text string, cursor int) (*completion.CandidateSet, error) {
	runes := []rune(text)
	word := treesitter.ScanWord(runes, clamp(cursor, 0, len(runes)))
	if s.analyzer != nil {
		w, err := s.analyzer.WordAt(ctx, text, cursor)
		if err != nil {
			s.log.Debug("parse failed, using scanner", zap.Error(err))
		} else {
			word = w
		}
	}

	dir := s.dir
	if dir == "" {
		if wd, err := os.Getwd(); err == nil {
			dir = wd
		}
	}
	req := Request{Line: text, Cursor: cursor, Word: word, Dir: dir}
	if word.CommandStart <= word.Start {
		req.Args = splitArgs(string(runes[word.CommandStart:word.Start]))
	}
	cands, err := s.source.Complete(ctx, req)
	if err != nil {
		return nil, errors.Wrapf(err, "complete %q", word.Text)
	}
	s.log.Debug("completed",
		zap.String("word", word.Text),
		zap.Stringer("kind", word.Kind),
		zap.Int("candidates", len(cands)))
	return completion.NewCandidateSet(cands, completion.Span{Start: word.Start, Length: word.End - word.Start}), nil
}

// splitArgs tokenizes the words before the cursor. An unterminated quote
// falls back to whitespace splitting.
func splitArgs(s string) []string {
	args, err := shellquote.Split(s)
	if err != nil {
		return strings.Fields(s)
	}
	return args
}

func clamp(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

// FromConfig builds the sources named in names, in order.
func FromConfig(names []string) (Composite, error) {
	var (
		out    Composite
		result *multierror.Error
	)
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "git":
			out = append(out, NewGit())
		case "env":
			out = append(out, Env{})
		case "command":
			out = append(out, Command{})
		case "path":
			out = append(out, Path{})
		default:
			result = multierror.Append(result, errors.Newf("unknown provider %q", name))
		}
	}
	return out, result.ErrorOrNil()
}
