package control

import "strings"

// splitDelim scans s (after skipping leading whitespace) for a balanced
// open/close-delimited span starting at position 0, returning its
// contents, the text after the closing delimiter, and whether a
// well-formed span was found at all.
func splitDelim(s string, open, close byte) (inside, rest string, ok bool) {
	s = strings.TrimLeft(s, " \t")
	if len(s) == 0 || s[0] != open {
		return "", s, false
	}
	depth := 1
	i := 1
	for i < len(s) && depth > 0 {
		switch s[i] {
		case '\\':
			i++
		case open:
			depth++
		case close:
			depth--
		}
		i++
	}
	if depth != 0 {
		return s[1:], "", false
	}
	return s[1 : i-1], s[i:], true
}

func splitParen(s string) (inside, rest string, ok bool) { return splitDelim(s, '(', ')') }
func splitBrace(s string) (inside, rest string, ok bool) { return splitDelim(s, '{', '}') }

// leadingWord splits s into its first whitespace-delimited word and the
// remainder, used for the /FOR and /SWITCH keyword-sniffing grammars.
func leadingWord(s string) (word, rest string) {
	s = strings.TrimLeft(s, " \t")
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeft(s[i:], " \t")
}
