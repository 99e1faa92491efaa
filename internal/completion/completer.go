package completion

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/kobzarvs/qline/internal/console"
)

// Outcome tells the editor what to do after a completion command.
type Outcome struct {
	// Requeue is a key read by the menu that the editor must dispatch next.
	Requeue *console.Key
	// KeepSelection asks the editor to keep the cursor..mark region active.
	KeepSelection bool
	Cancelled     bool
}

// Completer holds the completion session of one line editor.
type Completer struct {
	ctx     *Context
	session *Session
}

func NewCompleter(ctx *Context, p Provider) *Completer {
	return &Completer{
		ctx:     ctx,
		session: NewSession(p, ctx.Options.ProviderTimeout, ctx.logger()),
	}
}

func (c *Completer) Session() *Session {
	return c.session
}

// SetOptions swaps the options, e.g. after a config reload.
func (c *Completer) SetOptions(opts Options) {
	c.ctx.Options = opts
	c.session.timeout = opts.ProviderTimeout
}

// Reset forgets the cached candidates.
func (c *Completer) Reset() {
	c.session.Reset()
}

// Complete inserts the longest common prefix of the candidates. A repeated
// request that made no progress lists them instead.
func (c *Completer) Complete(ctx context.Context) Outcome {
	return c.complete(ctx, false)
}

// MenuComplete is Complete with an interactive menu instead of a listing.
func (c *Completer) MenuComplete(ctx context.Context) Outcome {
	return c.complete(ctx, true)
}

func (c *Completer) TabCompleteNext(ctx context.Context) Outcome {
	return c.cycle(ctx, true)
}

func (c *Completer) TabCompletePrevious(ctx context.Context) Outcome {
	return c.cycle(ctx, false)
}

// PossibleCompletions lists the candidates below the input line.
func (c *Completer) PossibleCompletions(ctx context.Context) Outcome {
	set, ok := c.session.Request(ctx, c.ctx.Buffer)
	if !ok {
		c.ctx.Console.Beep()
		return Outcome{}
	}
	return c.possible(set, false)
}

func (c *Completer) complete(ctx context.Context, menu bool) Outcome {
	buf := c.ctx.Buffer
	set, ok := c.session.Request(ctx, buf)
	if !ok {
		c.ctx.Console.Beep()
		return Outcome{}
	}

	if c.session.Count() > 0 {
		if set.Len() == 1 {
			c.ctx.Console.Beep()
			return Outcome{}
		}
		return c.possible(set, menu)
	}

	if set.Len() == 1 {
		c.session.Replace(buf, set.Candidates[0], c.ctx.Options.PathSeparator)
		c.ctx.View.Render()
		return Outcome{}
	}

	if menu {
		return c.possible(set, true)
	}

	var out Outcome
	prefix, ambiguous := UnambiguousPrefix(set.Candidates, true)
	if prefix != "" {
		c.session.ReplaceText(buf, prefix)
		c.ctx.View.Render()
		if ambiguous {
			c.ctx.Console.Beep()
		}
	} else {
		out = c.possible(set, false)
	}
	c.session.Advance()
	return out
}

func (c *Completer) cycle(ctx context.Context, forward bool) Outcome {
	set, ok := c.session.Request(ctx, c.ctx.Buffer)
	if !ok || set.Len() == 0 {
		c.ctx.Console.Beep()
		return Outcome{}
	}
	c.session.Cycle(c.ctx.Buffer, forward, c.ctx.Options.PathSeparator)
	c.ctx.View.Render()
	return Outcome{}
}

// possible shows the candidates, as a menu when asked for and when the menu
// fits on screen together with the input line.
func (c *Completer) possible(set *CandidateSet, menu bool) Outcome {
	opts := c.ctx.Options
	if opts.QueryItems > 0 && set.Len() >= opts.QueryItems && !c.confirm(set.Len()) {
		return Outcome{}
	}
	width, height := c.ctx.Console.Size()
	layout := Layout(set.Candidates, width, opts)
	if menu {
		lines := c.ctx.View.EndRow() - c.ctx.View.Origin() + 1
		if lines+layout.Rows > height {
			c.ctx.logger().Debug("menu does not fit, listing instead",
				zap.Int("rows", layout.Rows), zap.Int("height", height))
			menu = false
		}
	}
	if menu {
		return c.runMenu(set, layout)
	}
	c.showListing(layout)
	return Outcome{}
}

// showListing prints the menu as plain text and moves the input line below it.
func (c *Completer) showListing(layout Menu) {
	top := c.ctx.Console.WriteLines(c.ctx.View.EndRow()+1, layout.Lines)
	c.ctx.View.SetOrigin(top + layout.Rows)
	c.ctx.View.Render()
}

// confirm asks before listing a large number of candidates.
func (c *Completer) confirm(n int) bool {
	con := c.ctx.Console
	width, _ := con.Size()
	msg := fmt.Sprintf("Display all %s possibilities? (y or n)", humanize.Comma(int64(n)))
	row := c.ctx.View.EndRow() + 1
	line := appendText(nil, msg, width, c.ctx.Options.MenuStyle)
	top := con.WriteLines(row, [][]console.Cell{line})
	if shift := row - top; shift > 0 {
		c.ctx.View.SetOrigin(c.ctx.View.Origin() - shift)
	}
	con.ShowCursor(min(len(msg), width-1), top)
	con.Show()
	key := con.ReadKey()
	con.ClearLines(top, 1)
	c.ctx.View.Render()
	return key.Printable() && (key.Rune == 'y' || key.Rune == 'Y')
}
