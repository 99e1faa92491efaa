package completion

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/kobzarvs/qline/internal/console"
)

const (
	tooltipSeparator = "- "
	minTooltipWidth  = 5
	ellipsis         = "..."
)

// Menu is a laid out candidate listing, one screen row per line.
type Menu struct {
	Lines       [][]console.Cell
	Rows        int
	Columns     int
	ColumnWidth int
	Tooltips    bool

	items    []Candidate
	inverted []bool
}

// Layout arranges candidates for a screen of the given width. A single
// column is used when only one fits or tooltips are on; otherwise the grid
// is filled column by column.
func Layout(cands []Candidate, width int, opts Options) Menu {
	if width < 1 {
		width = 1
	}
	m := Menu{items: cands, inverted: make([]bool, len(cands))}
	if len(cands) == 0 {
		return m
	}
	colWidth := 0
	for _, c := range cands {
		colWidth = max(colWidth, runewidth.StringWidth(c.DisplayText))
	}
	colWidth += opts.ColumnPadding
	if colWidth < 1 {
		colWidth = 1
	}
	columns := max(1, width/colWidth)
	normal := opts.MenuStyle

	if columns == 1 || opts.ShowTooltips {
		tooltips := opts.ShowTooltips
		maxTooltip := width - colWidth - runewidth.StringWidth(tooltipSeparator)
		if maxTooltip < minTooltipWidth {
			colWidth = width
			tooltips = false
		}
		m.Rows = len(cands)
		m.Columns = 1
		m.ColumnWidth = width
		m.Tooltips = tooltips
		for _, c := range cands {
			line := make([]console.Cell, 0, width)
			item := shorten(singleLine(c.DisplayText), colWidth, opts.TruncateTail)
			line = appendText(line, item, colWidth, normal)
			if tooltips {
				tip := shorten(singleLine(c.Tooltip), maxTooltip, opts.TruncateTail)
				line = appendText(line, tooltipSeparator+tip, width-colWidth, opts.TooltipStyle)
			}
			m.Lines = append(m.Lines, pad(line, width, normal))
		}
		return m
	}

	m.Columns = columns
	m.ColumnWidth = colWidth
	m.Rows = (len(cands) + columns - 1) / columns
	for row := 0; row < m.Rows; row++ {
		line := make([]console.Cell, 0, width)
		for col := 0; col < columns; col++ {
			i := row + m.Rows*col
			if i >= len(cands) {
				break
			}
			line = appendText(line, singleLine(cands[i].DisplayText), colWidth, normal)
		}
		m.Lines = append(m.Lines, pad(line, width, normal))
	}
	return m
}

// Len is the number of items in the menu.
func (m *Menu) Len() int {
	return len(m.items)
}

// IndexOf returns the item whose insertion text equals text, or 0.
func (m *Menu) IndexOf(text string) int {
	for i, c := range m.items {
		if c.InsertionText == text {
			return i
		}
	}
	return 0
}

// Invert toggles the highlight of item i.
func (m *Menu) Invert(i int) {
	if i < 0 || i >= len(m.items) || m.Rows == 0 {
		return
	}
	col, row := i/m.Rows, i%m.Rows
	line := m.Lines[row]
	m.inverted[i] = !m.inverted[i]
	start := col * m.ColumnWidth
	for x := start; x < start+m.ColumnWidth && x < len(line); x++ {
		line[x].Style = line[x].Style.Reverse(m.inverted[i])
	}
}

// Selected reports whether item i is currently highlighted.
func (m *Menu) Selected(i int) bool {
	return i >= 0 && i < len(m.inverted) && m.inverted[i]
}

// singleLine trims text and cuts it at the first line break.
func singleLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i] + ellipsis
	}
	return s
}

// shorten fits s into width columns by keeping a trailing fragment of tail
// columns behind an ellipsis. Widths too small for that are hard cut.
func shorten(s string, width, tail int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 0 {
		return ""
	}
	if width < tail+len(ellipsis) {
		return runewidth.Truncate(s, width, "")
	}
	r := []rune(s)
	end, w := len(r), 0
	for end > 0 && w+runewidth.RuneWidth(r[end-1]) <= tail {
		w += runewidth.RuneWidth(r[end-1])
		end--
	}
	head := runewidth.Truncate(string(r[:end]), width-w-len(ellipsis), "")
	return head + ellipsis + string(r[end:])
}

// appendText writes s into exactly width cells. Wide runes take two cells,
// the second one zero.
func appendText(line []console.Cell, s string, width int, style tcell.Style) []console.Cell {
	used := 0
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if used+rw > width {
			break
		}
		line = append(line, console.Cell{Rune: r, Style: style})
		if rw == 2 {
			line = append(line, console.Cell{Style: style})
		}
		used += rw
	}
	for ; used < width; used++ {
		line = append(line, console.Cell{Rune: ' ', Style: style})
	}
	return line
}

func pad(line []console.Cell, width int, style tcell.Style) []console.Cell {
	for len(line) < width {
		line = append(line, console.Cell{Rune: ' ', Style: style})
	}
	if len(line) > width {
		line = line[:width]
	}
	return line
}
