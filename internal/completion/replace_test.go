package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kobzarvs/qline/internal/linebuf"
)

func TestDirectoryText(t *testing.T) {
	text, adj := DirectoryText(`C:\Users`, '\\')
	assert.Equal(t, `C:\Users\`, text)
	assert.Equal(t, 0, adj)

	text, adj = DirectoryText(`C:\Users\`, '\\')
	assert.Equal(t, `C:\Users\`, text)
	assert.Equal(t, 0, adj)

	text, adj = DirectoryText(`'C:\Program Files\'`, '\\')
	assert.Equal(t, `'C:\Program Files\'`, text)
	assert.Equal(t, -1, adj)

	text, adj = DirectoryText(`'C:\Program Files'`, '\\')
	assert.Equal(t, `'C:\Program Files\'`, text)
	assert.Equal(t, -1, adj)

	text, adj = DirectoryText(`"./My Dir"`, '/')
	assert.Equal(t, `"./My Dir/"`, text)
	assert.Equal(t, -1, adj)
}

func TestApplyContainerMovesCursorInsideQuotes(t *testing.T) {
	buf := linebuf.New(`cd 'C:\Pro`)
	span := Apply(buf, NewCandidate(`'C:\Program Files\'`, "", "", KindContainer), Span{Start: 3, Length: 7}, '\\')
	assert.Equal(t, `cd 'C:\Program Files\'`, buf.String())
	assert.Equal(t, Span{Start: 3, Length: 19}, span)
	assert.Equal(t, buf.Len()-1, buf.Cursor())
}

func TestApplyThenUndoRestores(t *testing.T) {
	buf := linebuf.New("cd C:\\Us && ls")
	buf.SetCursor(8)
	before := buf.String()
	edits := buf.EditCount()

	span := Apply(buf, NewCandidate(`C:\Users`, "", "", KindContainer), Span{Start: 3, Length: 5}, '\\')
	require.Equal(t, `cd C:\Users\ && ls`, buf.String())
	assert.Equal(t, Span{Start: 3, Length: 9}, span)
	assert.Equal(t, 12, buf.Cursor())
	assert.Equal(t, edits+1, buf.EditCount(), "one delete+insert unit per replacement")

	require.True(t, buf.Undo())
	assert.Equal(t, before, buf.String())
}

func TestApplyChainsSpans(t *testing.T) {
	buf := linebuf.New("echo $H")
	span := Span{Start: 5, Length: 2}
	span = Apply(buf, NewCandidate("$HOME", "", "", KindVariable), span, '/')
	span = Apply(buf, NewCandidate("$HOSTNAME", "", "", KindVariable), span, '/')
	assert.Equal(t, "echo $HOSTNAME", buf.String())
	assert.Equal(t, Span{Start: 5, Length: 9}, span)
}
