package completion

import (
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/kobzarvs/qline/internal/console"
	"github.com/kobzarvs/qline/internal/linebuf"
)

type Options struct {
	ShowTooltips    bool
	QueryItems      int
	ColumnPadding   int
	TruncateTail    int
	PathSeparator   rune
	ProviderTimeout time.Duration
	MenuStyle       tcell.Style
	TooltipStyle    tcell.Style
}

func DefaultOptions() Options {
	return Options{
		ShowTooltips:    true,
		QueryItems:      100,
		ColumnPadding:   2,
		TruncateTail:    10,
		PathSeparator:   os.PathSeparator,
		ProviderTimeout: 2 * time.Second,
		MenuStyle:       tcell.StyleDefault,
		TooltipStyle:    tcell.StyleDefault.Dim(true),
	}
}

// View is the part of the line editor the completer drives: it redraws the
// input line and knows where on screen that line lives.
type View interface {
	Render()
	Origin() int
	SetOrigin(row int)
	// EndRow is the last screen row occupied by the input line.
	EndRow() int
	// ActionFor returns the action bound to key, or "".
	ActionFor(key console.Key) string
}

// Context is the editor state shared by every completion component.
type Context struct {
	Buffer  *linebuf.Buffer
	Console console.Console
	View    View
	Options Options
	Log     *zap.Logger
}

func (c *Context) logger() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}
