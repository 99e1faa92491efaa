package editor

import (
	"github.com/atotto/clipboard"
	"go.uber.org/zap"
)

// Clipboard stores text for cut, copy and paste.
type Clipboard interface {
	ReadAll() string
	WriteAll(text string)
}

// systemClipboard uses the OS clipboard and keeps a private copy for
// terminals where no clipboard tool is installed.
type systemClipboard struct {
	local string
	log   *zap.Logger
}

func newSystemClipboard(log *zap.Logger) *systemClipboard {
	return &systemClipboard{log: log}
}

func (c *systemClipboard) ReadAll() string {
	if !clipboard.Unsupported {
		text, err := clipboard.ReadAll()
		if err == nil && text != "" {
			return text
		}
		if err != nil {
			c.log.Debug("system clipboard read failed", zap.Error(err))
		}
	}
	return c.local
}

func (c *systemClipboard) WriteAll(text string) {
	c.local = text
	if clipboard.Unsupported {
		return
	}
	if err := clipboard.WriteAll(text); err != nil {
		c.log.Debug("system clipboard write failed", zap.Error(err))
	}
}

// MemoryClipboard never touches the OS clipboard.
type MemoryClipboard struct {
	Text string
}

func (m *MemoryClipboard) ReadAll() string      { return m.Text }
func (m *MemoryClipboard) WriteAll(text string) { m.Text = text }
