// Package runeio adapts the teacher's control-rune mnemonic table for the
// keybinding compressor: translating a user-facing sequence like
// "^Xa" or "\ea" into the literal byte string a keymap trie is indexed by,
// and back for display.
package runeio

import (
	"strconv"
	"strings"
)

// ControlRune names a control codepoint by its classic mnemonic.
type ControlRune struct {
	N string
	R rune
}

// C0Ctls are the classic ASCII control characters.
var C0Ctls = [32]ControlRune{
	{"<NUL>", 0x00}, {"<SOH>", 0x01}, {"<STX>", 0x02}, {"<ETX>", 0x03},
	{"<EOT>", 0x04}, {"<ENQ>", 0x05}, {"<ACK>", 0x06}, {"<BEL>", 0x07},
	{"<BS>", 0x08}, {"<HT>", 0x09}, {"<NL>", 0x0A}, {"<VT>", 0x0B},
	{"<NP>", 0x0C}, {"<CR>", 0x0D}, {"<SO>", 0x0E}, {"<SI>", 0x0F},
	{"<DLE>", 0x10}, {"<DC1>", 0x11}, {"<DC2>", 0x12}, {"<DC3>", 0x13},
	{"<DC4>", 0x14}, {"<NAK>", 0x15}, {"<SYN>", 0x16}, {"<ETB>", 0x17},
	{"<CAN>", 0x18}, {"<EM>", 0x19}, {"<SUB>", 0x1A}, {"<ESC>", 0x1B},
	{"<FS>", 0x1C}, {"<GS>", 0x1D}, {"<RS>", 0x1E}, {"<US>", 0x1F},
}

// PseudoCtls covers the typical mnemonics for space and delete.
var PseudoCtls = [2]ControlRune{
	{"<SP>", 0x20},
	{"<DEL>", 0x7F},
}

func buildControlWords(table map[string]rune, ctls []ControlRune) {
	for _, ctl := range ctls {
		table[strings.ToUpper(ctl.N)] = ctl.R
		table[strings.ToLower(ctl.N)] = ctl.R
		if caret := CaretForm(ctl.R); caret != "" {
			table[caret] = ctl.R
		}
	}
}

// ControlWords maps mnemonic strings (both "<ESC>" and "^[" forms) to runes.
var ControlWords map[string]rune

func init() {
	ControlWords = make(map[string]rune, 3*(len(C0Ctls)+len(PseudoCtls)))
	buildControlWords(ControlWords, C0Ctls[:])
	buildControlWords(ControlWords, PseudoCtls[:])
}

// CaretForm computes the ^-escaped printable form of a C0 control rune, or
// "" if r isn't one.
func CaretForm(r rune) string {
	if r < 0x20 || r == 0x7f {
		return "^" + string(r^0x40)
	}
	return ""
}

// CompressEscape consumes one escape construct from a user-facing bind
// sequence starting at s[0]=='\\' or s[0]=='^', returning the literal byte
// it denotes and the unconsumed remainder. ok is false if s does not begin
// with a recognized escape.
//
// Recognized forms (per original_source/source/keys.c): "^X" -> control-X,
// "^?" -> DEL, "\\e" -> ESC, "\\NNN" (1-3 octal digits) -> that byte,
// "\\\\" -> '\\', "\\^" -> '^', and "\\c" for any other c -> c itself.
func CompressEscape(s string) (b byte, rest string, ok bool) {
	if len(s) == 0 {
		return 0, s, false
	}
	switch s[0] {
	case '^':
		if len(s) < 2 {
			return 0, s, false
		}
		if s[1] == '?' {
			return 0x7f, s[2:], true
		}
		return s[1] &^ 0x40, s[2:], true
	case '\\':
		if len(s) < 2 {
			return 0, s, false
		}
		switch s[1] {
		case 'e', 'E':
			return 0x1b, s[2:], true
		case '\\':
			return '\\', s[2:], true
		case '^':
			return '^', s[2:], true
		default:
			if s[1] >= '0' && s[1] <= '7' {
				n := 1
				for n < 3 && n+1 < len(s) && s[1+n] >= '0' && s[1+n] <= '7' {
					n++
				}
				if v, err := strconv.ParseUint(s[1:1+n], 8, 8); err == nil {
					return byte(v), s[1+n:], true
				}
			}
			return s[1], s[2:], true
		}
	}
	return 0, s, false
}

// Decompress renders a literal byte string back into its user-facing
// escaped form ("^X" for control bytes and DEL, `\\` and `\^` for a literal
// backslash or caret), the inverse of repeated CompressEscape.
func Decompress(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b < 0x20 || b == 0x7f:
			sb.WriteString(CaretForm(rune(b)))
		case b == '\\' || b == '^':
			sb.WriteByte('\\')
			sb.WriteByte(b)
		default:
			sb.WriteByte(b)
		}
	}
	return sb.String()
}
