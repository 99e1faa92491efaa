package linebuf

import "slices"

type editKind int

const (
	editInsert editKind = iota
	editDelete
	editGroup
)

// Edit is one invertible change recorded in the buffer log.
type Edit struct {
	kind  editKind
	pos   int
	text  []rune
	items []Edit
}

func (e Edit) inverse() Edit {
	switch e.kind {
	case editInsert:
		return Edit{kind: editDelete, pos: e.pos, text: e.text}
	case editDelete:
		return Edit{kind: editInsert, pos: e.pos, text: e.text}
	}
	items := make([]Edit, len(e.items))
	for i, item := range e.items {
		items[len(items)-1-i] = item.inverse()
	}
	return Edit{kind: editGroup, items: items}
}

// leaves flattens groups into the insert/delete edits they are made of.
func (e Edit) leaves() []Edit {
	if e.kind != editGroup {
		return []Edit{e}
	}
	var out []Edit
	for _, item := range e.items {
		out = append(out, item.leaves()...)
	}
	return out
}

// Buffer is a single line of editable text with a cursor, a selection mark
// and an undo log. Offsets are in runes.
type Buffer struct {
	text      []rune
	cursor    int
	mark      int
	edits     []Edit
	undoIndex int
	tick      uint64
}

func New(text string) *Buffer {
	b := &Buffer{text: []rune(text)}
	b.cursor = len(b.text)
	return b
}

func (b *Buffer) String() string {
	return string(b.text)
}

func (b *Buffer) Len() int {
	return len(b.text)
}

// Runes returns a copy of the text.
func (b *Buffer) Runes() []rune {
	return slices.Clone(b.text)
}

// Slice returns the text in [start, end), clamped to the buffer.
func (b *Buffer) Slice(start, end int) string {
	start = b.clamp(start)
	end = b.clamp(end)
	if end < start {
		return ""
	}
	return string(b.text[start:end])
}

func (b *Buffer) RuneAt(i int) (rune, bool) {
	if i < 0 || i >= len(b.text) {
		return 0, false
	}
	return b.text[i], true
}

func (b *Buffer) Cursor() int {
	return b.cursor
}

func (b *Buffer) SetCursor(pos int) {
	b.cursor = b.clamp(pos)
}

func (b *Buffer) Mark() int {
	return b.clamp(b.mark)
}

func (b *Buffer) SetMark(pos int) {
	b.mark = b.clamp(pos)
}

func (b *Buffer) ExchangePointAndMark() {
	b.cursor, b.mark = b.clamp(b.mark), b.cursor
}

// Tick changes on every text modification, including undo and redo.
func (b *Buffer) Tick() uint64 {
	return b.tick
}

func (b *Buffer) EditCount() int {
	return b.undoIndex
}

func (b *Buffer) CanUndo() bool {
	return b.undoIndex > 0
}

func (b *Buffer) CanRedo() bool {
	return b.undoIndex < len(b.edits)
}

func (b *Buffer) Insert(pos int, text string) {
	if text == "" {
		return
	}
	b.record(Edit{kind: editInsert, pos: b.clamp(pos), text: []rune(text)})
}

func (b *Buffer) Delete(pos, n int) {
	pos = b.clamp(pos)
	end := b.clamp(pos + n)
	if end <= pos {
		return
	}
	b.record(Edit{kind: editDelete, pos: pos, text: slices.Clone(b.text[pos:end])})
}

// Replace overwrites length runes at start with text. The change is logged as
// one delete+insert pair and leaves the cursor after the inserted text.
func (b *Buffer) Replace(start, length int, text string) {
	start = b.clamp(start)
	end := b.clamp(start + length)
	del := Edit{kind: editDelete, pos: start, text: slices.Clone(b.text[start:end])}
	ins := Edit{kind: editInsert, pos: start, text: []rune(text)}
	b.record(Edit{kind: editGroup, items: []Edit{del, ins}})
}

// Reset clears the text and the undo log.
func (b *Buffer) Reset(text string) {
	b.text = []rune(text)
	b.cursor = len(b.text)
	b.mark = 0
	b.edits = nil
	b.undoIndex = 0
	b.tick++
}

func (b *Buffer) Undo() bool {
	if b.undoIndex == 0 {
		return false
	}
	b.undoIndex--
	b.apply(b.edits[b.undoIndex].inverse())
	b.tick++
	return true
}

func (b *Buffer) Redo() bool {
	if b.undoIndex >= len(b.edits) {
		return false
	}
	b.apply(b.edits[b.undoIndex])
	b.undoIndex++
	b.tick++
	return true
}

func (b *Buffer) record(e Edit) {
	b.edits = append(b.edits[:b.undoIndex], e)
	b.undoIndex = len(b.edits)
	b.apply(e)
	b.tick++
}

func (b *Buffer) apply(e Edit) {
	switch e.kind {
	case editInsert:
		b.text = slices.Insert(b.text, e.pos, e.text...)
		b.cursor = e.pos + len(e.text)
	case editDelete:
		b.text = slices.Delete(b.text, e.pos, e.pos+len(e.text))
		b.cursor = e.pos
	case editGroup:
		for _, item := range e.items {
			b.apply(item)
		}
	}
}

func (b *Buffer) clamp(pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > len(b.text) {
		return len(b.text)
	}
	return pos
}

// Checkpoint marks a position in the undo log so that everything recorded
// after it can be folded into one unit or reverted.
type Checkpoint struct {
	b      *Buffer
	index  int
	text   []rune
	cursor int
	mark   int
}

// Begin drops any redo history and returns a checkpoint at the current log
// position.
func (b *Buffer) Begin() Checkpoint {
	b.edits = b.edits[:b.undoIndex]
	return Checkpoint{
		b:      b,
		index:  b.undoIndex,
		text:   slices.Clone(b.text),
		cursor: b.cursor,
		mark:   b.mark,
	}
}

// Changed reports whether anything was recorded since the checkpoint.
func (c Checkpoint) Changed() bool {
	return c.b.undoIndex > c.index
}

// Collapse replaces the edits since the checkpoint with a single unit made of
// the first delete and the last insert. When that pair does not reproduce the
// current text the unit is derived from the net difference instead.
func (c Checkpoint) Collapse() {
	b := c.b
	if b.undoIndex <= c.index {
		return
	}
	var leaves []Edit
	for _, e := range b.edits[c.index:b.undoIndex] {
		leaves = append(leaves, e.leaves()...)
	}
	b.edits = b.edits[:c.index]
	b.undoIndex = c.index

	unit, ok := pairOf(leaves, c.text, b.text)
	if !ok {
		unit, ok = diff(c.text, b.text)
	}
	if !ok {
		return
	}
	b.edits = append(b.edits, unit)
	b.undoIndex = len(b.edits)
}

// Rollback reverts every edit since the checkpoint in reverse order and
// restores the cursor and mark saved by Begin.
func (c Checkpoint) Rollback() {
	b := c.b
	for i := b.undoIndex - 1; i >= c.index; i-- {
		b.apply(b.edits[i].inverse())
	}
	b.edits = b.edits[:c.index]
	b.undoIndex = c.index
	b.cursor = c.cursor
	b.mark = c.mark
	b.tick++
}

func pairOf(leaves []Edit, before, after []rune) (Edit, bool) {
	first, last := -1, -1
	for i, e := range leaves {
		if e.kind == editDelete && first < 0 {
			first = i
		}
		if e.kind == editInsert {
			last = i
		}
	}
	if first < 0 || last < 0 {
		return Edit{}, false
	}
	unit := Edit{kind: editGroup, items: []Edit{leaves[first], leaves[last]}}
	probe := &Buffer{text: slices.Clone(before)}
	if !probe.fits(leaves[first]) {
		return Edit{}, false
	}
	probe.apply(leaves[first])
	if !probe.fits(leaves[last]) {
		return Edit{}, false
	}
	probe.apply(leaves[last])
	if !slices.Equal(probe.text, after) {
		return Edit{}, false
	}
	return unit, true
}

func (b *Buffer) fits(e Edit) bool {
	switch e.kind {
	case editInsert:
		return e.pos <= len(b.text)
	case editDelete:
		return e.pos+len(e.text) <= len(b.text) && slices.Equal(b.text[e.pos:e.pos+len(e.text)], e.text)
	}
	return false
}

func diff(before, after []rune) (Edit, bool) {
	p := 0
	for p < len(before) && p < len(after) && before[p] == after[p] {
		p++
	}
	s := 0
	for s < len(before)-p && s < len(after)-p && before[len(before)-1-s] == after[len(after)-1-s] {
		s++
	}
	removed := before[p : len(before)-s]
	added := after[p : len(after)-s]
	if len(removed) == 0 && len(added) == 0 {
		return Edit{}, false
	}
	return Edit{kind: editGroup, items: []Edit{
		{kind: editDelete, pos: p, text: slices.Clone(removed)},
		{kind: editInsert, pos: p, text: slices.Clone(added)},
	}}, true
}
