package editor

import "unicode"

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isSpaceRune(r rune) bool {
	return unicode.IsSpace(r)
}

// wordLeft returns the start of the word before pos. Runs of punctuation
// count as words.
func wordLeft(line []rune, pos int) int {
	if pos <= 0 {
		return 0
	}
	idx := min(pos, len(line)) - 1
	for idx > 0 && isSpaceRune(line[idx]) {
		idx--
	}
	if isSpaceRune(line[idx]) {
		return 0
	}
	if isWordRune(line[idx]) {
		for idx > 0 && isWordRune(line[idx-1]) {
			idx--
		}
		return idx
	}
	for idx > 0 && !isSpaceRune(line[idx-1]) && !isWordRune(line[idx-1]) {
		idx--
	}
	return idx
}

// wordRight returns the start of the next word after pos.
func wordRight(line []rune, pos int) int {
	idx := max(pos, 0)
	if idx >= len(line) {
		return len(line)
	}
	if isSpaceRune(line[idx]) {
		for idx < len(line) && isSpaceRune(line[idx]) {
			idx++
		}
		return idx
	}
	if isWordRune(line[idx]) {
		for idx < len(line) && isWordRune(line[idx]) {
			idx++
		}
	} else {
		for idx < len(line) && !isSpaceRune(line[idx]) && !isWordRune(line[idx]) {
			idx++
		}
	}
	for idx < len(line) && isSpaceRune(line[idx]) {
		idx++
	}
	return idx
}
