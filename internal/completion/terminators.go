package completion

import (
	"slices"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qline/internal/console"
)

// terminators lists, per kind, the characters that finish a menu session
// on top of Space and Enter.
var terminators = map[Kind][]rune{
	KindVariable:       {'.'},
	KindNamespace:      {'.'},
	KindProperty:       {'.'},
	KindContainer:      {'\\', '/'},
	KindMethod:         {'(', ')'},
	KindType:           {']'},
	KindParameterName:  {':'},
	KindParameterValue: {','},
}

// IsTerminator reports whether key commits a candidate of the given kind.
func IsTerminator(kind Kind, key console.Key) bool {
	if key.Code == tcell.KeyEnter && key.Mod == tcell.ModNone {
		return true
	}
	if !key.Printable() {
		return false
	}
	if key.Rune == ' ' {
		return true
	}
	return slices.Contains(terminators[kind], key.Rune)
}
