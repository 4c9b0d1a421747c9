// Package wildcard implements the case-folded glob matching used throughout
// the engine: hook rule nicks, ignore masks, and /LASTLOG -LITERAL patterns.
//
// Grounded on original_source/source/ircaux.c's match()/wild_match(), which
// supports '*' (any run, including empty), '?' (exactly one rune), and
// '[...]' character classes with an optional leading '^' negation.
package wildcard

import "strings"

// Match reports whether s matches the glob pattern pat, case-folding both
// sides first.
func Match(pat, s string) bool {
	return matchFold([]rune(foldRunes(pat)), []rune(foldRunes(s)))
}

func foldRunes(s string) string { return strings.ToUpper(s) }

func matchFold(pat, s []rune) bool {
	for len(pat) > 0 {
		switch pat[0] {
		case '*':
			// collapse runs of '*' and try every possible split point.
			for len(pat) > 0 && pat[0] == '*' {
				pat = pat[1:]
			}
			if len(pat) == 0 {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if matchFold(pat, s[i:]) {
					return true
				}
			}
			return false
		case '?':
			if len(s) == 0 {
				return false
			}
			pat, s = pat[1:], s[1:]
		case '[':
			end := classEnd(pat)
			if end < 0 {
				// unterminated class: treat '[' as a literal.
				if len(s) == 0 || s[0] != '[' {
					return false
				}
				pat, s = pat[1:], s[1:]
				continue
			}
			if len(s) == 0 || !classMatches(pat[1:end], s[0]) {
				return false
			}
			pat, s = pat[end+1:], s[1:]
		default:
			if len(s) == 0 || s[0] != pat[0] {
				return false
			}
			pat, s = pat[1:], s[1:]
		}
	}
	return len(s) == 0
}

func classEnd(pat []rune) int {
	for i := 1; i < len(pat); i++ {
		if pat[i] == ']' && i > 1 {
			return i
		}
	}
	return -1
}

func classMatches(class []rune, r rune) bool {
	neg := false
	if len(class) > 0 && (class[0] == '^' || class[0] == '!') {
		neg = true
		class = class[1:]
	}
	found := false
	for i := 0; i < len(class); i++ {
		if i+2 < len(class) && class[i+1] == '-' {
			if class[i] <= r && r <= class[i+2] {
				found = true
			}
			i += 2
		} else if class[i] == r {
			found = true
		}
	}
	return found != neg
}

// LongestMatchLen returns the length of pat if it matches s, else -1. Longer
// patterns are treated as more specific by hook dispatch and ignore lookup
// when more than one rule matches the same text ("longest wildcard
// match").
func LongestMatchLen(pat, s string) int {
	if !Match(pat, s) {
		return -1
	}
	return len(pat)
}
