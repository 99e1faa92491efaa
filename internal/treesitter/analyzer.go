package treesitter

import (
	"context"
	"sync"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
)

type WordKind int

const (
	WordArgument WordKind = iota
	WordCommand
	WordVariable
	WordFlag
)

func (k WordKind) String() string {
	switch k {
	case WordCommand:
		return "command"
	case WordVariable:
		return "variable"
	case WordFlag:
		return "flag"
	}
	return "argument"
}

// Word is the shell word under the cursor. Offsets are in runes. Text runs
// from Start to the cursor; End may lie past the cursor when it sits inside
// a word.
type Word struct {
	Start int
	End   int
	Text  string
	Kind  WordKind
	// Command is the name of the enclosing simple command, empty when the
	// word is itself the name.
	Command      string
	CommandStart int
}

// Analyzer finds the word under the cursor in a bash command line.
type Analyzer struct {
	mu     sync.Mutex
	parser *sitter.Parser
}

func New() *Analyzer {
	p := sitter.NewParser()
	p.SetLanguage(bash.GetLanguage())
	return &Analyzer{parser: p}
}

func (a *Analyzer) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.parser != nil {
		a.parser.Close()
		a.parser = nil
	}
}

var wordTypes = map[string]bool{
	"word":                  true,
	"command_name":          true,
	"simple_expansion":      true,
	"expansion":             true,
	"variable_name":         true,
	"special_variable_name": true,
	"string":                true,
	"string_content":        true,
	"raw_string":            true,
	"ansi_c_string":         true,
	"concatenation":         true,
	"number":                true,
}

var variableTypes = map[string]bool{
	"simple_expansion": true,
	"expansion":        true,
	"variable_name":    true,
}

// WordAt returns the word ending at or containing cursor. The parse tree is
// used when it has a word node there; otherwise a quote-aware scan of the
// line decides.
func (a *Analyzer) WordAt(ctx context.Context, line string, cursor int) (Word, error) {
	runes := []rune(line)
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(runes) {
		cursor = len(runes)
	}
	fallback := ScanWord(runes, cursor)
	if fallback.Start == cursor && (cursor == len(runes) || !isWordRune(runes[cursor])) {
		return fallback, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.parser == nil {
		return fallback, nil
	}
	src := []byte(line)
	tree, err := a.parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return fallback, err
	}
	defer tree.Close()
	root := tree.RootNode()
	if root == nil {
		return fallback, nil
	}

	at := cursor
	if at > 0 && isWordRune(runes[at-1]) {
		at--
	}
	point := pointAt(runes, at)
	node := root.NamedDescendantForPointRange(point, point)
	if node == nil || !wordTypes[node.Type()] {
		return fallback, nil
	}

	isVariable := variableTypes[node.Type()]
	isName := node.Type() == "command_name"
	for p := node.Parent(); p != nil && wordTypes[p.Type()]; p = p.Parent() {
		node = p
		isVariable = isVariable || variableTypes[p.Type()]
		isName = isName || p.Type() == "command_name"
	}

	start := runeIndex(src, int(node.StartByte()))
	end := runeIndex(src, int(node.EndByte()))
	if start > cursor || end < cursor {
		return fallback, nil
	}
	w := Word{
		Start:        start,
		End:          end,
		Text:         string(runes[start:cursor]),
		Command:      fallback.Command,
		CommandStart: fallback.CommandStart,
	}
	switch {
	case isVariable:
		w.Kind = WordVariable
	case isName:
		w.Kind = WordCommand
	case len(w.Text) > 0 && w.Text[0] == '-':
		w.Kind = WordFlag
	default:
		w.Kind = WordArgument
	}

	if cmd := enclosingCommand(node); cmd != nil {
		w.CommandStart = runeIndex(src, int(cmd.StartByte()))
		w.Command = ""
		if name := cmd.ChildByFieldName("name"); name != nil && !isName {
			w.Command = name.Content(src)
		}
	}
	return w, nil
}

func enclosingCommand(n *sitter.Node) *sitter.Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Type() == "command" {
			return p
		}
	}
	return nil
}

func pointAt(runes []rune, idx int) sitter.Point {
	var row, col uint32
	for _, r := range runes[:idx] {
		if r == '\n' {
			row++
			col = 0
			continue
		}
		col += uint32(utf8.RuneLen(r))
	}
	return sitter.Point{Row: row, Column: col}
}

func runeIndex(src []byte, b int) int {
	if b > len(src) {
		b = len(src)
	}
	return utf8.RuneCount(src[:b])
}

func isSeparator(r rune) bool {
	switch r {
	case ';', '|', '&', '(', ')', '`':
		return true
	}
	return false
}

func isWordRune(r rune) bool {
	return !unicode.IsSpace(r) && !isSeparator(r)
}

// ScanWord finds the word at cursor without a parse tree. Quotes and
// backslash escapes keep whitespace inside a word.
func ScanWord(runes []rune, cursor int) Word {
	segStart := 0
	var words []string
	start, inWord := 0, false
	var quote rune
	for i := 0; i < cursor; i++ {
		r := runes[i]
		if quote != 0 {
			if r == quote {
				quote = 0
			}
			continue
		}
		switch {
		case r == '\\':
			if !inWord {
				start, inWord = i, true
			}
			i++
		case r == '\'' || r == '"':
			quote = r
			if !inWord {
				start, inWord = i, true
			}
		case unicode.IsSpace(r):
			if inWord {
				words = append(words, string(runes[start:i]))
				inWord = false
			}
		case isSeparator(r):
			words = nil
			inWord = false
			segStart = i + 1
		default:
			if !inWord {
				start, inWord = i, true
			}
		}
	}
	if !inWord {
		start = cursor
	}
	end := cursor
	if quote == 0 {
		for end < len(runes) && isWordRune(runes[end]) && runes[end] != '\'' && runes[end] != '"' {
			end++
		}
	}
	for segStart < len(runes) && segStart < start && unicode.IsSpace(runes[segStart]) {
		segStart++
	}

	w := Word{Start: start, End: end, Text: string(runes[start:cursor]), CommandStart: segStart}
	if len(words) > 0 {
		w.Command = words[0]
	}
	switch {
	case len(w.Text) > 0 && w.Text[0] == '$':
		w.Kind = WordVariable
	case len(words) == 0:
		w.Kind = WordCommand
	case len(w.Text) > 0 && w.Text[0] == '-':
		w.Kind = WordFlag
	default:
		w.Kind = WordArgument
	}
	return w
}
