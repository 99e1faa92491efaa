package completion

import (
	"strings"

	"github.com/kobzarvs/qline/internal/linebuf"
)

// DirectoryText appends the path separator to a container candidate. For a
// text that ends in a closing quote the separator goes inside the quotes and
// the returned adjustment moves the cursor back onto it.
func DirectoryText(text string, sep rune) (string, int) {
	s := string(sep)
	switch {
	case strings.HasSuffix(text, s):
		return text, 0
	case strings.HasSuffix(text, s+"'"), strings.HasSuffix(text, s+`"`):
		return text, -1
	case strings.HasSuffix(text, "'"), strings.HasSuffix(text, `"`):
		r := []rune(text)
		last := r[len(r)-1]
		return string(r[:len(r)-1]) + s + string(last), -1
	}
	return text + s, 0
}

// Apply writes the candidate over span as one delete+insert unit and returns
// the span now covered by the inserted text.
func Apply(buf *linebuf.Buffer, cand Candidate, span Span, sep rune) Span {
	text := cand.InsertionText
	adjust := 0
	if cand.Kind == KindContainer {
		text, adjust = DirectoryText(text, sep)
	}
	buf.Replace(span.Start, span.Length, text)
	if adjust != 0 {
		buf.SetCursor(buf.Cursor() + adjust)
	}
	return Span{Start: span.Start, Length: len([]rune(text))}
}
