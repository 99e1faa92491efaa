package editor

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/kobzarvs/qline/internal/console"
)

// lineLayout is the prompt and the buffer wrapped to the screen width.
type lineLayout struct {
	rows    [][]console.Cell
	cursorX int
	cursorY int
}

type rowWriter struct {
	width int
	rows  [][]console.Cell
	x     int
}

func newRowWriter(width int) *rowWriter {
	return &rowWriter{width: max(width, 1), rows: [][]console.Cell{nil}}
}

func (w *rowWriter) newline() {
	w.rows = append(w.rows, nil)
	w.x = 0
}

// fit wraps when a cell of width n does not fit on the current row.
func (w *rowWriter) fit(n int) {
	if w.x+n > w.width {
		w.newline()
	}
}

func (w *rowWriter) put(r rune, style tcell.Style) {
	n := runewidth.RuneWidth(r)
	if n == 0 {
		r, n = '?', 1
	}
	if n > w.width {
		r, n = '?', 1
	}
	w.fit(n)
	last := len(w.rows) - 1
	w.rows[last] = append(w.rows[last], console.Cell{Rune: r, Style: style})
	if n == 2 {
		w.rows[last] = append(w.rows[last], console.Cell{Rune: 0, Style: style})
	}
	w.x += n
}

func (e *Editor) layout(width int) lineLayout {
	w := newRowWriter(width)
	for _, r := range e.prompt {
		w.put(r, e.stylePrompt)
	}
	text := e.buf.Runes()
	cursor := e.buf.Cursor()
	selStart, selEnd := -1, -1
	if e.selectionActive {
		selStart, selEnd = e.selectionRange()
	}

	var l lineLayout
	col := runewidth.StringWidth(e.prompt)
	for i, r := range text {
		style := e.styleMain
		if i >= selStart && i < selEnd {
			style = e.styleSelection
		}
		if r == '\t' {
			n := e.tabWidth - col%e.tabWidth
			w.fit(1)
			if i == cursor {
				l.cursorX, l.cursorY = w.x, len(w.rows)-1
			}
			for j := 0; j < n; j++ {
				w.put(' ', style)
			}
			col += n
			continue
		}
		w.fit(max(runewidth.RuneWidth(r), 1))
		if i == cursor {
			l.cursorX, l.cursorY = w.x, len(w.rows)-1
		}
		w.put(r, style)
		col += runewidth.RuneWidth(r)
	}
	if cursor >= len(text) {
		if w.x >= w.width {
			w.newline()
		}
		l.cursorX, l.cursorY = w.x, len(w.rows)-1
	}
	l.rows = w.rows
	return l
}

// wrapText splits plain text into rows of at most width cells.
func wrapText(text string, width int, style tcell.Style) [][]console.Cell {
	w := newRowWriter(width)
	for _, r := range text {
		if r == '\n' {
			w.newline()
			continue
		}
		w.put(r, style)
	}
	return w.rows
}

// Render draws the prompt and the line at the origin row and places the
// cursor. Rows left over from a longer previous rendering are cleared.
func (e *Editor) Render() {
	width, _ := e.con.Size()
	l := e.layout(width)
	top := e.con.WriteLines(e.origin, l.rows)
	e.origin = top
	if extra := e.lastRows - len(l.rows); extra > 0 {
		e.con.ClearLines(e.origin+len(l.rows), extra)
	}
	e.lastRows = len(l.rows)
	e.con.ShowCursor(l.cursorX, e.origin+l.cursorY)
	e.con.Show()
}

func (e *Editor) Origin() int {
	return e.origin
}

// SetOrigin moves the input line. Whatever was drawn at the old position
// stays on screen.
func (e *Editor) SetOrigin(row int) {
	e.origin = max(row, 0)
	e.lastRows = 0
}

func (e *Editor) EndRow() int {
	width, _ := e.con.Size()
	return e.origin + len(e.layout(width).rows) - 1
}

func (e *Editor) ActionFor(key console.Key) string {
	return e.keymap[key.Name()]
}
