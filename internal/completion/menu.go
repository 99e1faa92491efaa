package completion

import (
	"go.uber.org/zap"

	"github.com/kobzarvs/qline/internal/console"
	"github.com/kobzarvs/qline/internal/linebuf"
)

// editor actions that keep the completed region selected when they end a
// menu session
var selectionActions = map[string]bool{
	"cancel_line": true,
	"cut":         true,
	"delete_char": true,
	"paste":       true,
}

type menuState struct {
	c   *Completer
	set *CandidateSet

	all     []Candidate
	visible []Candidate
	menu    Menu

	selected int
	previous int

	filter     []rune
	initialLen int

	savedMark  int
	checkpoint linebuf.Checkpoint
	backspaces int

	top     int
	prevTop int
}

type menuExit struct {
	out      Outcome
	undo     bool
	truncate bool
	adjust   int
}

func (c *Completer) runMenu(set *CandidateSet, layout Menu) Outcome {
	buf := c.ctx.Buffer
	m := &menuState{
		c:          c,
		set:        set,
		all:        set.Candidates,
		visible:    set.Candidates,
		menu:       layout,
		previous:   -1,
		checkpoint: buf.Begin(),
		savedMark:  buf.Mark(),
	}
	filter, _ := UnambiguousPrefix(set.Candidates, true)
	if filter == "" {
		filter, _ = UnambiguousPrefix(set.Candidates, false)
	}
	m.filter = []rune(trimLeadingQuote(filter))
	m.initialLen = len(m.filter)
	// keep whatever cycling already put in the buffer selected
	m.selected = layout.IndexOf(buf.Slice(set.Span.Start, set.Span.End()))

	c.session.Replace(buf, m.visible[m.selected], c.ctx.Options.PathSeparator)
	c.ctx.View.Render()
	m.top = c.ctx.View.EndRow() + 1
	m.prevTop = m.top

	c.ctx.logger().Debug("menu opened",
		zap.Int("candidates", len(m.all)),
		zap.String("filter", string(m.filter)),
		zap.Int("rows", layout.Rows),
		zap.Int("columns", layout.Columns))

	for {
		cycleBackspaces := m.backspaces
		if m.selected != m.previous {
			m.redraw()
		}
		key := c.ctx.Console.ReadKey()
		if exit, done := m.handle(key); done {
			return m.finish(exit)
		}
		if m.backspaces == cycleBackspaces {
			m.backspaces = 0
		}
	}
}

// redraw inserts the selected candidate, moves the highlight and writes the
// menu below the input line. The caret is left at the end of the typed
// filter, the mark at the end of the insertion.
func (m *menuState) redraw() {
	cx := m.c.ctx
	buf := cx.Buffer
	cand := m.visible[m.selected]

	start := m.set.Span.Start
	pos := indexFold(cand.InsertionText, string(m.filter))
	if len(m.filter) == 0 && isQuote(firstRune(cand.InsertionText)) {
		pos++
	}
	m.c.session.Replace(buf, cand, cx.Options.PathSeparator)
	filterEnd := buf.Cursor()
	if pos >= 0 {
		filterEnd = start + pos + len(m.filter)
	}
	buf.SetMark(filterEnd)
	cx.View.Render()

	m.top = cx.View.EndRow() + 1
	if m.previous >= 0 {
		m.menu.Invert(m.previous)
	}
	m.menu.Invert(m.selected)

	blank := m.prevTop - m.top
	top := cx.Console.WriteLines(m.top, m.menu.Lines)
	if shift := m.top - top; shift > 0 {
		cx.View.SetOrigin(cx.View.Origin() - shift)
	}
	m.top = top

	buf.ExchangePointAndMark()
	cx.View.Render()
	if m.previous >= 0 && blank > 0 {
		cx.Console.ClearLines(m.top+m.menu.Rows, blank)
	}
	cx.Console.Show()
	m.prevTop = m.top
	m.previous = m.selected
}

// handle processes one key. It reports done when the session is over.
func (m *menuState) handle(key console.Key) (menuExit, bool) {
	n := len(m.visible)
	rows := max(1, m.menu.Rows)
	if key.Closed {
		return menuExit{out: Outcome{Cancelled: true, Requeue: &key}, undo: true}, true
	}
	switch key.Name() {
	case "right":
		m.selected = min(m.selected+rows, n-1)
	case "left":
		m.selected = max(m.selected-rows, 0)
	case "down":
		m.selected = min(m.selected+1, n-1)
	case "up":
		m.selected = max(m.selected-1, 0)
	case "pgdn":
		m.selected = min(m.selected+rows-(m.selected%rows)-1, n-1)
	case "pgup":
		m.selected = max(m.selected-(m.selected%rows), 0)
	case "tab":
		m.extendOrNext()
	case "shift+tab":
		m.selected = (m.selected - 1 + n) % n
	case "esc", "ctrl+g":
		return menuExit{out: Outcome{Cancelled: true}, undo: true}, true
	default:
		return m.other(key)
	}
	return menuExit{}, false
}

// extendOrNext grows the typed filter to the common prefix of the visible
// candidates, or selects the next candidate when there is nothing to add.
func (m *menuState) extendOrNext() {
	cx := m.c.ctx
	text, _ := UnambiguousPrefix(m.visible, true)
	if text == "" {
		text, _ = UnambiguousPrefix(m.visible, false)
	}
	pos := indexFold(text, string(m.filter))
	if text != "" && pos >= 0 && len([]rune(text)) > pos+len(m.filter) {
		m.filter = []rune(text)[pos:]
		ins := m.visible[m.selected].InsertionText
		if i := indexFold(ins, string(m.filter)); i >= 0 {
			cx.Buffer.SetCursor(m.set.Span.Start + i + len(m.filter))
		}
		cx.View.Render()
		cx.Console.Beep()
		return
	}
	m.selected = (m.selected + 1) % len(m.visible)
}

func (m *menuState) other(key console.Key) (menuExit, bool) {
	cx := m.c.ctx
	cand := m.visible[m.selected]

	if IsTerminator(cand.Kind, key) {
		exit := menuExit{}
		cx.Buffer.ExchangePointAndMark()
		if key.Name() != "enter" {
			text := cand.InsertionText
			if cand.Kind == KindContainer {
				text, exit.adjust = DirectoryText(text, cx.Options.PathSeparator)
			}
			text = Unquote(text, false)
			r := []rune(text)
			if len(r) == 0 || r[len(r)-1] != key.Rune {
				exit.out.Requeue = &key
			}
		}
		return exit, true
	}

	backspace := key.Name() == "backspace"
	if backspace || key.Printable() {
		if backspace {
			switch {
			case len(m.filter) > m.initialLen:
				m.filter = m.filter[:len(m.filter)-1]
			case m.backspaces == 0:
				cx.Console.Beep()
				m.backspaces++
				return menuExit{}, false
			default:
				return m.exhausted(key), true
			}
		} else {
			m.filter = append(m.filter, key.Rune)
		}
		return m.refilter(key)
	}

	action := cx.View.ActionFor(key)
	return menuExit{out: Outcome{Requeue: &key, KeepSelection: selectionActions[action]}}, true
}

// refilter narrows the full candidate list to the typed filter. When nothing
// matches the session ends with what has been typed so far.
func (m *menuState) refilter(key console.Key) (menuExit, bool) {
	cx := m.c.ctx
	matches := FilterCandidates(m.all, string(m.filter), m.set.Consistent())
	if len(matches) == 0 {
		return m.exhausted(key), true
	}
	cx.Console.ClearLines(m.top, m.menu.Rows)
	current := m.visible[m.selected].InsertionText
	width, _ := cx.Console.Size()
	m.visible = matches
	m.menu = Layout(matches, width, cx.Options)
	m.selected = m.menu.IndexOf(current)
	m.previous = -1
	return menuExit{}, false
}

// exhausted ends the session keeping the insertion up to the caret, or
// rolls everything back when nothing was typed at entry.
func (m *menuState) exhausted(key console.Key) menuExit {
	undo := m.initialLen == 0
	return menuExit{
		out:      Outcome{Requeue: &key, Cancelled: undo},
		undo:     undo,
		truncate: true,
	}
}

func (m *menuState) finish(exit menuExit) Outcome {
	cx := m.c.ctx
	buf := cx.Buffer
	cx.Console.ClearLines(m.top, m.menu.Rows)

	if exit.truncate && !exit.undo {
		m.c.session.ReplaceText(buf, buf.Slice(m.set.Span.Start, buf.Cursor()))
	}
	if !exit.out.KeepSelection {
		buf.SetMark(m.savedMark)
	}
	if exit.undo {
		m.checkpoint.Rollback()
	} else {
		m.checkpoint.Collapse()
	}
	if exit.out.Requeue != nil && exit.adjust != 0 {
		buf.SetCursor(buf.Cursor() - exit.adjust)
	}
	cx.View.Render()
	cx.Console.Show()
	m.c.session.Reset()

	cx.logger().Debug("menu closed",
		zap.Bool("cancelled", exit.undo),
		zap.Bool("requeue", exit.out.Requeue != nil),
		zap.String("text", buf.String()))
	return exit.out
}
