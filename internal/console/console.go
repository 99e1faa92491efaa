package console

import (
	"github.com/gdamore/tcell/v2"
)

type Cell struct {
	Rune  rune
	Style tcell.Style
}

// Console is the terminal surface the line editor and the completion menu
// draw on. Rows are absolute screen rows.
type Console interface {
	Size() (width, height int)
	// WriteLines draws rows starting at top. When the rows would run past the
	// bottom of the screen the content scrolls up first; the top row actually
	// used is returned.
	WriteLines(top int, rows [][]Cell) int
	ClearLines(top, n int)
	ReadKey() Key
	Beep()
	Show()
	ShowCursor(x, y int)
}

// Screen implements Console on top of a tcell screen.
type Screen struct {
	screen tcell.Screen
	style  tcell.Style
	bell   bool
}

func New(screen tcell.Screen, style tcell.Style, bell bool) *Screen {
	return &Screen{screen: screen, style: style, bell: bell}
}

func (s *Screen) SetStyle(style tcell.Style) {
	s.style = style
}

func (s *Screen) SetBell(on bool) {
	s.bell = on
}

func (s *Screen) Size() (int, int) {
	return s.screen.Size()
}

func (s *Screen) WriteLines(top int, rows [][]Cell) int {
	w, h := s.screen.Size()
	if top < 0 {
		top = 0
	}
	if overflow := top + len(rows) - h; overflow > 0 {
		if overflow > top {
			overflow = top
		}
		s.Scroll(overflow)
		top -= overflow
	}
	for i, row := range rows {
		y := top + i
		if y >= h {
			break
		}
		x := 0
		for _, c := range row {
			if x >= w {
				break
			}
			// zero rune: second half of a wide character
			if c.Rune != 0 {
				s.screen.SetContent(x, y, c.Rune, nil, c.Style)
			}
			x++
		}
		for ; x < w; x++ {
			s.screen.SetContent(x, y, ' ', nil, s.style)
		}
	}
	return top
}

func (s *Screen) ClearLines(top, n int) {
	w, h := s.screen.Size()
	for y := top; y < top+n && y < h; y++ {
		if y < 0 {
			continue
		}
		for x := 0; x < w; x++ {
			s.screen.SetContent(x, y, ' ', nil, s.style)
		}
	}
}

// Scroll moves the whole screen content up by n rows.
func (s *Screen) Scroll(n int) {
	w, h := s.screen.Size()
	if n <= 0 {
		return
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if y+n < h {
				mainc, combc, style, _ := s.screen.GetContent(x, y+n)
				s.screen.SetContent(x, y, mainc, combc, style)
				continue
			}
			s.screen.SetContent(x, y, ' ', nil, s.style)
		}
	}
}

// ReadKey blocks until a key arrives. Resize events resync the screen and
// interrupt events carrying a func() are run in place.
func (s *Screen) ReadKey() Key {
	for {
		switch ev := s.screen.PollEvent().(type) {
		case nil:
			return Key{Closed: true}
		case *tcell.EventKey:
			return KeyFromEvent(ev)
		case *tcell.EventResize:
			s.screen.Sync()
		case *tcell.EventInterrupt:
			if fn, ok := ev.Data().(func()); ok {
				fn()
			}
		}
	}
}

// Post schedules fn on the goroutine that reads keys.
func (s *Screen) Post(fn func()) error {
	return s.screen.PostEvent(tcell.NewEventInterrupt(fn))
}

func (s *Screen) Beep() {
	if s.bell {
		_ = s.screen.Beep()
	}
}

func (s *Screen) Show() {
	s.screen.Show()
}

func (s *Screen) ShowCursor(x, y int) {
	s.screen.ShowCursor(x, y)
}
