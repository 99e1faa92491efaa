package editor

import (
	"context"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/kobzarvs/qline/internal/completion"
	"github.com/kobzarvs/qline/internal/config"
	"github.com/kobzarvs/qline/internal/console"
	"github.com/kobzarvs/qline/internal/linebuf"
)

// ErrInterrupt is returned by ReadLine when the line is cancelled.
var ErrInterrupt = errors.New("interrupted")

const (
	actionMoveLeft            = "move_left"
	actionMoveRight           = "move_right"
	actionLineStart           = "line_start"
	actionLineEnd             = "line_end"
	actionWordLeft            = "word_left"
	actionWordRight           = "word_right"
	actionBackspace           = "backspace"
	actionDeleteChar          = "delete_char"
	actionDeleteCharOrExit    = "delete_char_or_exit"
	actionDeleteWordLeft      = "delete_word_left"
	actionUndo                = "undo"
	actionRedo                = "redo"
	actionAcceptLine          = "accept_line"
	actionCancelLine          = "cancel_line"
	actionCut                 = "cut"
	actionCopy                = "copy"
	actionPaste               = "paste"
	actionSelectAll           = "select_all"
	actionInsertTab           = "insert_tab"
	actionComplete            = "complete"
	actionMenuComplete        = "menu_complete"
	actionTabCompleteNext     = "tab_complete_next"
	actionTabCompletePrevious = "tab_complete_previous"
	actionPossibleCompletions = "possible_completions"
)

// Editor reads one line at a time from a console, with completion.
type Editor struct {
	buf  *linebuf.Buffer
	con  console.Console
	comp *completion.Completer
	cx   *completion.Context
	log  *zap.Logger

	keymap   map[string]string
	prompt   string
	tabWidth int

	styleMain      tcell.Style
	stylePrompt    tcell.Style
	styleSelection tcell.Style

	clipboard Clipboard
	pending   []console.Key

	selectionActive bool
	origin          int
	lastRows        int

	// actionHook is called with every action before it runs; tests use it.
	actionHook func(action string)
}

func New(cfg config.Config, con console.Console, provider completion.Provider, log *zap.Logger) *Editor {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Editor{
		buf:       linebuf.New(""),
		con:       con,
		log:       log,
		clipboard: newSystemClipboard(log),
	}
	e.cx = &completion.Context{
		Buffer:  e.buf,
		Console: con,
		View:    e,
		Log:     log.Named("completion"),
	}
	e.applyConfig(cfg)
	e.comp = completion.NewCompleter(e.cx, provider)
	return e
}

// SetConfig applies a reloaded configuration. It must run on the goroutine
// that calls ReadLine.
func (e *Editor) SetConfig(cfg config.Config) {
	e.applyConfig(cfg)
	e.comp.SetOptions(e.cx.Options)
	e.log.Info("config applied", zap.Int("bindings", len(e.keymap)))
}

func (e *Editor) applyConfig(cfg config.Config) {
	keymap := make(map[string]string, len(cfg.Keymap.Insert))
	for k, v := range cfg.Keymap.Insert {
		keymap[strings.ToLower(k)] = v
	}
	e.keymap = keymap
	e.prompt = cfg.Editor.Prompt
	e.tabWidth = cfg.Editor.TabWidth
	if e.tabWidth < 1 {
		e.tabWidth = 1
	}

	mainFg := parseColor(cfg.Theme.Foreground, tcell.ColorDefault)
	mainBg := parseColor(cfg.Theme.Background, tcell.ColorDefault)
	promptFg := parseColor(cfg.Theme.PromptForeground, mainFg)
	selectionFg := parseColor(cfg.Theme.SelectionForeground, mainFg)
	selectionBg := parseColor(cfg.Theme.SelectionBackground, tcell.ColorGray)
	e.styleMain = tcell.StyleDefault.Foreground(mainFg).Background(mainBg)
	e.stylePrompt = tcell.StyleDefault.Foreground(promptFg).Background(mainBg)
	e.styleSelection = tcell.StyleDefault.Foreground(selectionFg).Background(selectionBg)
	e.cx.Options = completionOptions(cfg, e.styleMain)

	if s, ok := e.con.(*console.Screen); ok {
		s.SetStyle(e.styleMain)
		s.SetBell(cfg.Editor.Bell != "none")
	}
}

func completionOptions(cfg config.Config, main tcell.Style) completion.Options {
	opts := completion.DefaultOptions()
	c := cfg.Completion
	opts.ShowTooltips = c.Tooltips()
	opts.QueryItems = c.QueryItems
	if c.ColumnPadding > 0 {
		opts.ColumnPadding = c.ColumnPadding
	}
	if c.TruncateTail > 0 {
		opts.TruncateTail = c.TruncateTail
	}
	opts.PathSeparator = c.Separator()
	opts.ProviderTimeout = c.Timeout()

	_, mainBg, _ := main.Decompose()
	menuFg := parseColor(cfg.Theme.MenuForeground, tcell.ColorDefault)
	menuBg := parseColor(cfg.Theme.MenuBackground, mainBg)
	tipFg := parseColor(cfg.Theme.TooltipForeground, menuFg)
	opts.MenuStyle = tcell.StyleDefault.Foreground(menuFg).Background(menuBg)
	opts.TooltipStyle = tcell.StyleDefault.Foreground(tipFg).Background(menuBg)
	return opts
}

func (e *Editor) Buffer() *linebuf.Buffer {
	return e.buf
}

func (e *Editor) Completer() *completion.Completer {
	return e.comp
}

func (e *Editor) SetClipboard(c Clipboard) {
	e.clipboard = c
}

// PrependKeys queues keys to be handled before anything read from the
// console, in the given order.
func (e *Editor) PrependKeys(keys ...console.Key) {
	e.pending = append(append([]console.Key(nil), keys...), e.pending...)
}

func (e *Editor) nextKey() console.Key {
	if len(e.pending) > 0 {
		k := e.pending[0]
		e.pending = e.pending[1:]
		return k
	}
	return e.con.ReadKey()
}

// ReadLine shows the prompt and edits a fresh line until it is accepted.
// It returns io.EOF when input ends or ctrl+d is pressed on an empty line,
// and ErrInterrupt when the line is cancelled.
func (e *Editor) ReadLine(ctx context.Context) (string, error) {
	e.buf.Reset("")
	e.selectionActive = false
	e.lastRows = 0
	e.comp.Reset()
	e.Render()
	for {
		if err := ctx.Err(); err != nil {
			e.finishLine()
			return "", err
		}
		key := e.nextKey()
		if key.Closed {
			e.finishLine()
			return "", io.EOF
		}
		done, err := e.handleKey(ctx, key)
		if err != nil {
			e.finishLine()
			return "", err
		}
		if done {
			line := e.buf.String()
			e.finishLine()
			e.log.Debug("line accepted", zap.Int("len", len(line)))
			return line, nil
		}
		e.Render()
	}
}

// finishLine leaves the line on screen and moves the origin below it.
func (e *Editor) finishLine() {
	e.selectionActive = false
	e.buf.SetCursor(e.buf.Len())
	e.Render()
	e.origin = e.EndRow() + 1
	e.lastRows = 0
	e.comp.Reset()
}

// Println writes text below the input line, e.g. command output.
func (e *Editor) Println(text string) {
	width, _ := e.con.Size()
	rows := wrapText(text, width, e.styleMain)
	top := e.con.WriteLines(e.origin, rows)
	e.origin = top + len(rows)
	e.lastRows = 0
	e.con.Show()
}

func (e *Editor) handleKey(ctx context.Context, key console.Key) (bool, error) {
	selection := e.selectionActive
	e.selectionActive = false
	action := e.ActionFor(key)
	if action == "" {
		if key.Printable() {
			e.deleteSelection(selection)
			e.insertText(string(key.Rune))
		}
		return false, nil
	}
	return e.execAction(ctx, action, selection)
}

func (e *Editor) execAction(ctx context.Context, action string, selection bool) (bool, error) {
	if e.actionHook != nil {
		e.actionHook(action)
	}
	switch action {
	case actionMoveLeft:
		e.buf.SetCursor(e.buf.Cursor() - 1)
	case actionMoveRight:
		e.buf.SetCursor(e.buf.Cursor() + 1)
	case actionLineStart:
		e.buf.SetCursor(0)
	case actionLineEnd:
		e.buf.SetCursor(e.buf.Len())
	case actionWordLeft:
		e.buf.SetCursor(wordLeft(e.buf.Runes(), e.buf.Cursor()))
	case actionWordRight:
		e.buf.SetCursor(wordRight(e.buf.Runes(), e.buf.Cursor()))
	case actionBackspace:
		if !e.deleteSelection(selection) && e.buf.Cursor() > 0 {
			e.buf.Delete(e.buf.Cursor()-1, 1)
		}
	case actionDeleteChar:
		if !e.deleteSelection(selection) {
			e.deleteChar()
		}
	case actionDeleteCharOrExit:
		if e.buf.Len() == 0 {
			return false, io.EOF
		}
		if !e.deleteSelection(selection) {
			e.deleteChar()
		}
	case actionDeleteWordLeft:
		if !e.deleteSelection(selection) {
			cur := e.buf.Cursor()
			start := wordLeft(e.buf.Runes(), cur)
			e.buf.Delete(start, cur-start)
		}
	case actionUndo:
		if !e.buf.Undo() {
			e.con.Beep()
		}
	case actionRedo:
		if !e.buf.Redo() {
			e.con.Beep()
		}
	case actionAcceptLine:
		return true, nil
	case actionCancelLine:
		// with an active selection this copies instead
		if selection {
			e.copySelection()
			return false, nil
		}
		return false, ErrInterrupt
	case actionCut:
		if !selection {
			e.con.Beep()
			break
		}
		e.copySelection()
		e.deleteSelection(true)
	case actionCopy:
		if !selection {
			e.con.Beep()
			break
		}
		e.copySelection()
	case actionPaste:
		e.paste(selection)
	case actionSelectAll:
		e.buf.SetMark(0)
		e.buf.SetCursor(e.buf.Len())
		e.selectionActive = e.buf.Len() > 0
	case actionInsertTab:
		e.deleteSelection(selection)
		e.insertText("\t")
	case actionComplete:
		e.afterCompletion(e.comp.Complete(ctx))
	case actionMenuComplete:
		e.afterCompletion(e.comp.MenuComplete(ctx))
	case actionTabCompleteNext:
		e.afterCompletion(e.comp.TabCompleteNext(ctx))
	case actionTabCompletePrevious:
		e.afterCompletion(e.comp.TabCompletePrevious(ctx))
	case actionPossibleCompletions:
		e.afterCompletion(e.comp.PossibleCompletions(ctx))
	default:
		e.log.Debug("unknown action", zap.String("action", action))
		e.con.Beep()
	}
	return false, nil
}

func (e *Editor) afterCompletion(out completion.Outcome) {
	if out.KeepSelection {
		e.selectionActive = e.buf.Cursor() != e.buf.Mark()
	}
	if out.Requeue != nil {
		e.PrependKeys(*out.Requeue)
	}
}

func (e *Editor) insertText(text string) {
	e.buf.Insert(e.buf.Cursor(), text)
}

func (e *Editor) deleteChar() {
	if e.buf.Cursor() < e.buf.Len() {
		e.buf.Delete(e.buf.Cursor(), 1)
	}
}

// selectionRange returns the region between cursor and mark.
func (e *Editor) selectionRange() (int, int) {
	start, end := e.buf.Cursor(), e.buf.Mark()
	if start > end {
		start, end = end, start
	}
	return start, min(end, e.buf.Len())
}

func (e *Editor) deleteSelection(active bool) bool {
	if !active {
		return false
	}
	start, end := e.selectionRange()
	if start == end {
		return false
	}
	e.buf.Delete(start, end-start)
	return true
}

func (e *Editor) copySelection() {
	start, end := e.selectionRange()
	e.clipboard.WriteAll(e.buf.Slice(start, end))
}

func (e *Editor) paste(selection bool) {
	text := e.clipboard.ReadAll()
	if text == "" {
		e.con.Beep()
		return
	}
	text = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(text)
	if selection {
		start, end := e.selectionRange()
		e.buf.Replace(start, end-start, text)
		return
	}
	e.insertText(text)
}
