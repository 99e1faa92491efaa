package completion

import (
	"context"
	"slices"
	"strings"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/kobzarvs/qline/internal/console"
	"github.com/kobzarvs/qline/internal/linebuf"
)

type fakeConsole struct {
	width, height int
	keys          []console.Key
	beeps         int
	rows          map[int]string
	history       []string
	snapshots     []map[int]string
}

func newFakeConsole(width, height int, keys ...console.Key) *fakeConsole {
	return &fakeConsole{width: width, height: height, keys: keys, rows: map[int]string{}}
}

func (f *fakeConsole) Size() (int, int) { return f.width, f.height }

func (f *fakeConsole) WriteLines(top int, rows [][]console.Cell) int {
	if overflow := top + len(rows) - f.height; overflow > 0 {
		overflow = min(overflow, top)
		shifted := map[int]string{}
		for y, text := range f.rows {
			if y-overflow >= 0 {
				shifted[y-overflow] = text
			}
		}
		f.rows = shifted
		top -= overflow
	}
	for i, row := range rows {
		var sb strings.Builder
		for _, c := range row {
			if c.Rune != 0 {
				sb.WriteRune(c.Rune)
			}
		}
		text := strings.TrimRight(sb.String(), " ")
		f.rows[top+i] = text
		f.history = append(f.history, text)
	}
	return top
}

func (f *fakeConsole) ClearLines(top, n int) {
	for y := top; y < top+n; y++ {
		delete(f.rows, y)
	}
}

func (f *fakeConsole) ReadKey() console.Key {
	snap := make(map[int]string, len(f.rows))
	for y, text := range f.rows {
		snap[y] = text
	}
	f.snapshots = append(f.snapshots, snap)
	if len(f.keys) == 0 {
		return console.Key{Closed: true}
	}
	k := f.keys[0]
	f.keys = f.keys[1:]
	return k
}

func (f *fakeConsole) Beep()               { f.beeps++ }
func (f *fakeConsole) Show()               {}
func (f *fakeConsole) ShowCursor(x, y int) {}

// screen returns the non-empty rows in order.
func (f *fakeConsole) screen() []string {
	return sortedRows(f.rows)
}

func sortedRows(rows map[int]string) []string {
	ys := make([]int, 0, len(rows))
	for y := range rows {
		ys = append(ys, y)
	}
	slices.Sort(ys)
	out := make([]string, 0, len(ys))
	for _, y := range ys {
		if rows[y] != "" {
			out = append(out, rows[y])
		}
	}
	return out
}

type fakeView struct {
	buf     *linebuf.Buffer
	width   int
	origin  int
	renders int
	keymap  map[string]string
}

func (v *fakeView) Render()            { v.renders++ }
func (v *fakeView) Origin() int        { return v.origin }
func (v *fakeView) SetOrigin(row int)  { v.origin = row }
func (v *fakeView) EndRow() int        { return v.origin + v.buf.Len()/v.width }
func (v *fakeView) ActionFor(k console.Key) string {
	return v.keymap[k.Name()]
}

type fixture struct {
	buf   *linebuf.Buffer
	con   *fakeConsole
	view  *fakeView
	comp  *Completer
	calls int
}

// newFixture builds a completer over text whose provider returns cands for
// the word before the cursor.
func newFixture(text string, cands []Candidate, width, height int, keys ...console.Key) *fixture {
	f := &fixture{buf: linebuf.New(text), con: newFakeConsole(width, height, keys...)}
	f.view = &fakeView{buf: f.buf, width: width, keymap: map[string]string{
		"ctrl+x": "cut",
		"del":    "delete_char",
		"ctrl+a": "line_start",
	}}
	opts := DefaultOptions()
	opts.ShowTooltips = false
	opts.PathSeparator = '/'
	ctx := &Context{Buffer: f.buf, Console: f.con, View: f.view, Options: opts, Log: zap.NewNop()}
	provider := ProviderFunc(func(_ context.Context, line string, cursor int) (*CandidateSet, error) {
		f.calls++
		r := []rune(line)
		start := cursor
		for start > 0 && r[start-1] != ' ' {
			start--
		}
		return NewCandidateSet(slices.Clone(cands), Span{Start: start, Length: cursor - start}), nil
	})
	f.comp = NewCompleter(ctx, provider)
	return f
}

func candidates(kind Kind, texts ...string) []Candidate {
	out := make([]Candidate, 0, len(texts))
	for _, t := range texts {
		out = append(out, NewCandidate(t, "", "", kind))
	}
	return out
}

func keyRune(r rune) console.Key {
	return console.RuneKey(r)
}

func keyNamed(code tcell.Key) console.Key {
	return console.SpecialKey(code, tcell.ModNone)
}

var bg = context.Background()
