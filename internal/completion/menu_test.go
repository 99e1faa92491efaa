package completion

import (
	"context"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kobzarvs/qline/internal/console"
)

func getCandidates() []Candidate {
	return candidates(KindMethod, "Get-Alias", "Get-Acl", "Get-Item", "Get-ItemProperty")
}

func TestMenuDownClampsAtLastItem(t *testing.T) {
	f := newFixture("ls a", gridCandidates(), 20, 24,
		keyNamed(tcell.KeyBacktab),
		keyNamed(tcell.KeyDown),
		keyNamed(tcell.KeyEnter))
	out := f.comp.MenuComplete(bg)

	assert.Nil(t, out.Requeue)
	assert.False(t, out.Cancelled)
	assert.Equal(t, "ls alpha-09", f.buf.String())
	assert.Equal(t, 11, f.buf.Cursor())
	assert.Empty(t, f.con.screen(), "menu rows are cleared on exit")
}

func TestMenuEntryKeepsCycledCandidate(t *testing.T) {
	f := newFixture("x ", candidates(KindOther, "alpha", "beta", "gamma"), 40, 24,
		keyNamed(tcell.KeyEnter))
	f.comp.TabCompleteNext(bg)
	f.comp.TabCompleteNext(bg)
	require.Equal(t, "x beta", f.buf.String())

	out := f.comp.MenuComplete(bg)
	assert.False(t, out.Cancelled)
	assert.Equal(t, "x beta", f.buf.String())
}

func TestMenuPageDownClampsInShortColumn(t *testing.T) {
	// nine items in a 5x2 grid leave the second column one short
	f := newFixture("ls a", gridCandidates()[:9], 20, 24,
		keyNamed(tcell.KeyRight),
		keyNamed(tcell.KeyPgDn),
		keyNamed(tcell.KeyEnter))
	f.comp.MenuComplete(bg)
	assert.Equal(t, "ls alpha-08", f.buf.String())
}

func TestMenuNavigationGrid(t *testing.T) {
	cases := []struct {
		name string
		keys []console.Key
		want string
	}{
		{"down moves to next column without wrapping to 0", []console.Key{
			keyNamed(tcell.KeyDown), keyNamed(tcell.KeyDown), keyNamed(tcell.KeyDown),
			keyNamed(tcell.KeyDown), keyNamed(tcell.KeyDown)}, "alpha-05"},
		{"up clamps at first item", []console.Key{keyNamed(tcell.KeyUp)}, "alpha-00"},
		{"right moves by a column", []console.Key{keyNamed(tcell.KeyRight)}, "alpha-05"},
		{"right clamps", []console.Key{keyNamed(tcell.KeyDown), keyNamed(tcell.KeyRight), keyNamed(tcell.KeyRight)}, "alpha-09"},
		{"left clamps", []console.Key{keyNamed(tcell.KeyDown), keyNamed(tcell.KeyLeft)}, "alpha-00"},
		{"page down goes to the bottom of the column", []console.Key{keyNamed(tcell.KeyDown), keyNamed(tcell.KeyPgDn)}, "alpha-04"},
		{"page up goes to the top of the column", []console.Key{keyNamed(tcell.KeyRight), keyNamed(tcell.KeyDown), keyNamed(tcell.KeyPgUp)}, "alpha-05"},
		{"shift+tab wraps backwards", []console.Key{keyNamed(tcell.KeyBacktab)}, "alpha-09"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			keys := append(tc.keys, keyNamed(tcell.KeyEnter))
			f := newFixture("ls a", gridCandidates(), 20, 24, keys...)
			f.comp.MenuComplete(bg)
			assert.Equal(t, "ls "+tc.want, f.buf.String())
		})
	}
}

func TestMenuTabExtendsFilterThenCycles(t *testing.T) {
	cands := candidates(KindOther, "alpha-one", "alpha-two", "beta")
	f := newFixture("x a", cands[:2], 40, 24,
		keyNamed(tcell.KeyTab),
		keyNamed(tcell.KeyTab),
		keyNamed(tcell.KeyEnter))
	f.comp.MenuComplete(bg)
	// the entry filter already covers the common prefix, so Tab moves on
	assert.Equal(t, "x alpha-one", f.buf.String())
	assert.Zero(t, f.con.beeps)

	f = newFixture("x a", cands, 40, 24,
		keyRune('a'),
		keyNamed(tcell.KeyTab),
		keyNamed(tcell.KeyTab),
		keyNamed(tcell.KeyEnter))
	f.comp.MenuComplete(bg)
	assert.Equal(t, "x alpha-two", f.buf.String())
	assert.Equal(t, 1, f.con.beeps, "extending the filter alerts")
}

func TestMenuTabExtendMovesCaret(t *testing.T) {
	cands := candidates(KindOther, "alpha-one", "alpha-two", "beta")
	f := newFixture("x ", cands, 40, 24,
		keyRune('a'),
		keyNamed(tcell.KeyTab),
		console.SpecialKey(tcell.KeyCtrlA, tcell.ModCtrl))
	out := f.comp.MenuComplete(bg)
	require.NotNil(t, out.Requeue)
	assert.Equal(t, "x alpha-one", f.buf.String())
	assert.Equal(t, 8, f.buf.Cursor(), "caret sits after the extended filter")
}

func TestMenuCancelRestoresEverything(t *testing.T) {
	for _, cancel := range []console.Key{keyNamed(tcell.KeyEscape), console.SpecialKey(tcell.KeyCtrlG, tcell.ModCtrl)} {
		f := newFixture("ls a", gridCandidates(), 20, 24,
			keyNamed(tcell.KeyDown),
			keyRune('3'),
			keyNamed(tcell.KeyBacktab),
			cancel)
		f.buf.SetMark(1)
		f.buf.SetCursor(4)
		edits := f.buf.EditCount()

		out := f.comp.MenuComplete(bg)
		assert.True(t, out.Cancelled, cancel.Name())
		assert.Nil(t, out.Requeue)
		assert.Equal(t, "ls a", f.buf.String())
		assert.Equal(t, 4, f.buf.Cursor())
		assert.Equal(t, 1, f.buf.Mark())
		assert.Equal(t, edits, f.buf.EditCount())
		assert.Empty(t, f.con.screen())
	}
}

func TestMenuCommitCollapsesUndo(t *testing.T) {
	f := newFixture("ls a", gridCandidates(), 20, 24,
		keyNamed(tcell.KeyDown),
		keyNamed(tcell.KeyDown),
		keyNamed(tcell.KeyRight),
		keyRune(' '))
	edits := f.buf.EditCount()
	out := f.comp.MenuComplete(bg)
	require.NotNil(t, out.Requeue)
	assert.Equal(t, "space", out.Requeue.Name())
	assert.Equal(t, "ls alpha-07", f.buf.String())
	assert.Equal(t, edits+1, f.buf.EditCount(), "the whole session is one undo unit")
	require.True(t, f.buf.Undo())
	assert.Equal(t, "ls a", f.buf.String())
}

func TestMenuFilterNarrowsAndExhausts(t *testing.T) {
	// narrow enough that two candidates never share a row
	f := newFixture("Get-", getCandidates(), 21, 24,
		keyRune('a'),
		keyRune('L'),
		keyRune('x'))
	out := f.comp.MenuComplete(bg)

	// snapshots[1] is the screen read before 'L'
	require.Len(t, f.con.snapshots, 3)
	narrowed := sortedRows(f.con.snapshots[1])
	assert.Equal(t, []string{"Get-Alias", "Get-Acl"}, trimAll(narrowed))
	assert.Equal(t, []string{"Get-Alias"}, trimAll(sortedRows(f.con.snapshots[2])))

	require.NotNil(t, out.Requeue)
	assert.Equal(t, 'x', out.Requeue.Rune)
	assert.False(t, out.Cancelled)
	assert.Equal(t, "Get-Al", f.buf.String(), "insertion kept up to the caret")
	assert.Equal(t, 6, f.buf.Cursor())
}

func TestMenuExhaustionWithEmptyFilterCancels(t *testing.T) {
	f := newFixture("", candidates(KindOther, "foo", "bar"), 30, 24, keyRune('z'))
	out := f.comp.MenuComplete(bg)
	assert.True(t, out.Cancelled)
	require.NotNil(t, out.Requeue)
	assert.Equal(t, 'z', out.Requeue.Rune)
	assert.Equal(t, "", f.buf.String())
	assert.Zero(t, f.buf.EditCount())
}

func TestMenuBackspaceShrinksTypedFilter(t *testing.T) {
	f := newFixture("Get-", getCandidates(), 30, 24,
		keyRune('i'),
		keyNamed(tcell.KeyBackspace2),
		keyNamed(tcell.KeyEscape))
	f.comp.MenuComplete(bg)
	require.Len(t, f.con.snapshots, 3)
	assert.Len(t, sortedRows(f.con.snapshots[1]), 2)
	assert.Len(t, sortedRows(f.con.snapshots[2]), 4, "backspace widens the filter again")
	assert.Zero(t, f.con.beeps)
}

func TestMenuBackspaceDingsOnceThenExits(t *testing.T) {
	f := newFixture("Get-", getCandidates(), 30, 24,
		keyNamed(tcell.KeyBackspace2),
		keyNamed(tcell.KeyBackspace2))
	out := f.comp.MenuComplete(bg)
	assert.Equal(t, 1, f.con.beeps, "first backspace at the entry filter only alerts")
	require.NotNil(t, out.Requeue)
	assert.Equal(t, "backspace", out.Requeue.Name())
	assert.False(t, out.Cancelled)
	assert.Equal(t, "Get-", f.buf.String())
	assert.Equal(t, 4, f.buf.Cursor())
}

func TestMenuBackspaceRearmsAfterOtherKey(t *testing.T) {
	f := newFixture("Get-", getCandidates(), 30, 24,
		keyNamed(tcell.KeyBackspace2),
		keyNamed(tcell.KeyDown),
		keyNamed(tcell.KeyBackspace2),
		keyNamed(tcell.KeyEscape))
	out := f.comp.MenuComplete(bg)
	assert.Equal(t, 2, f.con.beeps)
	assert.True(t, out.Cancelled)
	assert.Equal(t, "Get-", f.buf.String())
}

func TestMenuBackspaceExitWithEmptyFilterCancels(t *testing.T) {
	f := newFixture("", candidates(KindOther, "foo", "bar"), 30, 24,
		keyNamed(tcell.KeyBackspace2),
		keyNamed(tcell.KeyBackspace2))
	out := f.comp.MenuComplete(bg)
	assert.True(t, out.Cancelled)
	require.NotNil(t, out.Requeue)
	assert.Equal(t, "", f.buf.String())
}

func TestMenuTerminatorRequeues(t *testing.T) {
	cands := candidates(KindProperty, "Length", "LastWriteTime")
	f := newFixture("$x.L", nil, 40, 24, keyRune('.'))
	f.comp.session.provider = spanProvider(cands, 3, 1)
	out := f.comp.MenuComplete(bg)
	require.NotNil(t, out.Requeue)
	assert.Equal(t, '.', out.Requeue.Rune)
	assert.Equal(t, "$x.Length", f.buf.String())
	assert.Equal(t, 9, f.buf.Cursor())
}

func TestMenuTerminatorNotRepeated(t *testing.T) {
	cands := candidates(KindMethod, "ToString(", "ToUpper(")
	f := newFixture("x.To", nil, 40, 24, keyRune('('))
	f.comp.session.provider = spanProvider(cands, 2, 2)
	out := f.comp.MenuComplete(bg)
	assert.Nil(t, out.Requeue, "the character is already at the end of the insertion")
	assert.Equal(t, "x.ToString(", f.buf.String())
	assert.Equal(t, 11, f.buf.Cursor())
}

func TestMenuEnterCommitsWithoutAccepting(t *testing.T) {
	f := newFixture("x.To", nil, 40, 24, keyNamed(tcell.KeyDown), keyNamed(tcell.KeyEnter))
	f.comp.session.provider = spanProvider(candidates(KindMethod, "ToString(", "ToUpper("), 2, 2)
	out := f.comp.MenuComplete(bg)
	assert.Nil(t, out.Requeue)
	assert.Equal(t, "x.ToUpper(", f.buf.String())
}

func TestMenuQuotedDirectoryTerminator(t *testing.T) {
	cands := candidates(KindContainer, "'My Docs'", "'My Dir'")

	f := newFixture("cd 'My D", nil, 40, 24, keyRune('/'))
	f.comp.session.provider = spanProvider(cands, 3, 5)
	out := f.comp.MenuComplete(bg)
	assert.Nil(t, out.Requeue)
	assert.Equal(t, "cd 'My Docs/'", f.buf.String())
	assert.Equal(t, 12, f.buf.Cursor(), "caret stays inside the quotes")

	f = newFixture("cd 'My D", nil, 40, 24, keyRune(' '))
	f.comp.session.provider = spanProvider(cands, 3, 5)
	out = f.comp.MenuComplete(bg)
	require.NotNil(t, out.Requeue)
	assert.Equal(t, "cd 'My Docs/'", f.buf.String())
	assert.Equal(t, 13, f.buf.Cursor(), "caret moves past the quote before the key is replayed")
}

func TestMenuOtherKeyRequeues(t *testing.T) {
	f := newFixture("ls a", gridCandidates(), 20, 24,
		keyNamed(tcell.KeyDown),
		console.SpecialKey(tcell.KeyCtrlA, tcell.ModCtrl))
	f.buf.SetMark(0)
	out := f.comp.MenuComplete(bg)
	require.NotNil(t, out.Requeue)
	assert.Equal(t, "ctrl+a", out.Requeue.Name())
	assert.False(t, out.KeepSelection)
	assert.Equal(t, "ls alpha-01", f.buf.String())
	assert.Equal(t, 10, f.buf.Cursor(), "caret stays at the end of the typed filter")
	assert.Equal(t, 0, f.buf.Mark(), "mark restored")
}

func TestMenuDestructiveKeyKeepsSelection(t *testing.T) {
	f := newFixture("ls a", gridCandidates(), 20, 24, keyNamed(tcell.KeyDelete))
	out := f.comp.MenuComplete(bg)
	require.NotNil(t, out.Requeue)
	assert.True(t, out.KeepSelection)
	assert.Equal(t, 10, f.buf.Cursor())
	assert.Equal(t, 11, f.buf.Mark(), "selection covers the untyped part of the candidate")
}

func TestMenuFallsBackToListingWhenTooTall(t *testing.T) {
	f := newFixture("ls a", gridCandidates(), 20, 4, keyNamed(tcell.KeyDown))
	out := f.comp.MenuComplete(bg)
	assert.Equal(t, Outcome{}, out)
	assert.Len(t, f.con.keys, 1, "no keys are read by a static listing")
	assert.Equal(t, "ls a", f.buf.String())
	assert.Equal(t, 5, f.view.Origin())
}

func TestMenuRedrawHighlightsSelection(t *testing.T) {
	f := newFixture("ls a", gridCandidates(), 20, 24, keyNamed(tcell.KeyRight), keyNamed(tcell.KeyEscape))
	f.comp.MenuComplete(bg)
	require.Len(t, f.con.snapshots, 2)
	rows := sortedRows(f.con.snapshots[0])
	require.Len(t, rows, 5)
	assert.True(t, strings.HasPrefix(rows[0], "alpha-00"))
}

func spanProvider(cands []Candidate, start, length int) Provider {
	return ProviderFunc(func(_ context.Context, _ string, _ int) (*CandidateSet, error) {
		return NewCandidateSet(cands, Span{Start: start, Length: length}), nil
	})
}

func trimAll(rows []string) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = strings.TrimSpace(r)
	}
	return out
}
