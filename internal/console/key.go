package console

import (
	"unicode"

	"github.com/gdamore/tcell/v2"
)

// Key is one key press as seen by the line editor.
type Key struct {
	Code tcell.Key
	Rune rune
	Mod  tcell.ModMask
	// Closed is set when the input source has gone away.
	Closed bool
}

func KeyFromEvent(ev *tcell.EventKey) Key {
	return Key{Code: ev.Key(), Rune: ev.Rune(), Mod: ev.Modifiers()}
}

func RuneKey(r rune) Key {
	return Key{Code: tcell.KeyRune, Rune: r}
}

func SpecialKey(code tcell.Key, mod tcell.ModMask) Key {
	return Key{Code: code, Mod: mod}
}

// Printable reports whether the key inserts a visible character.
func (k Key) Printable() bool {
	if k.Code != tcell.KeyRune || k.Rune == 0 {
		return false
	}
	if k.Mod&(tcell.ModAlt|tcell.ModCtrl|tcell.ModMeta) != 0 {
		return false
	}
	return unicode.IsPrint(k.Rune)
}

// Char is the character the key produces, or 0 for special keys.
func (k Key) Char() rune {
	switch k.Code {
	case tcell.KeyRune:
		return k.Rune
	case tcell.KeyEnter:
		return '\r'
	}
	return 0
}

// Name returns the key in keymap notation, e.g. "ctrl+g", "shift+tab", "a".
func (k Key) Name() string {
	if k.Closed {
		return ""
	}
	alt := k.Mod&tcell.ModAlt != 0
	if k.Code == tcell.KeyRune {
		if k.Rune == ' ' && k.Mod&tcell.ModCtrl != 0 {
			return "ctrl+space"
		}
		name := string(k.Rune)
		if k.Rune == ' ' {
			name = "space"
		}
		if alt {
			return "alt+" + name
		}
		return name
	}
	if k.Code == tcell.KeyCtrlSpace || k.Code == tcell.KeyNUL {
		return "ctrl+space"
	}
	// Tab, Enter and friends come first: on some terminals they share codes
	// with ctrl chords.
	switch k.Code {
	case tcell.KeyTab:
		if k.Mod&tcell.ModShift != 0 {
			return "shift+tab"
		}
		return "tab"
	case tcell.KeyBacktab:
		return "shift+tab"
	case tcell.KeyEnter:
		return "enter"
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if alt {
			return "alt+backspace"
		}
		return "backspace"
	case tcell.KeyEscape:
		return "esc"
	}
	if name := ctrlKeyName(k.Code); name != "" {
		return name
	}
	prefix := ""
	switch {
	case alt:
		prefix = "alt+"
	case k.Mod&tcell.ModCtrl != 0:
		prefix = "ctrl+"
	case k.Mod&tcell.ModShift != 0:
		prefix = "shift+"
	}
	switch k.Code {
	case tcell.KeyUp:
		return prefix + "up"
	case tcell.KeyDown:
		return prefix + "down"
	case tcell.KeyLeft:
		return prefix + "left"
	case tcell.KeyRight:
		return prefix + "right"
	case tcell.KeyPgUp:
		return prefix + "pgup"
	case tcell.KeyPgDn:
		return prefix + "pgdn"
	case tcell.KeyHome:
		return prefix + "home"
	case tcell.KeyEnd:
		return prefix + "end"
	case tcell.KeyDelete:
		return prefix + "del"
	case tcell.KeyInsert:
		return prefix + "insert"
	}
	return ""
}

func ctrlKeyName(key tcell.Key) string {
	if key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ {
		return "ctrl+" + string(rune('a'+int(key-tcell.KeyCtrlA)))
	}
	return ""
}
