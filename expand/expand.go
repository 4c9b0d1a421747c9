// Package expand implements the text-mode expander: a single
// left-to-right pass over a template string that interpolates $-expandos,
// honors brace/paren/bracket balance, and (optionally) splits on the first
// unescaped ';' into a command fragment plus a remainder.
//
// Grounded on the teacher's (jcorbin/gothird) single-pass rune scanner in
// the original internals.go's scan()/step() loop, generalized from a
// token-at-a-time VM fetch loop to a string-rewriting walk; the aligned
// step tracing is carried over via internal/logio exactly as the teacher
// traces each VM step.
package expand

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jcorbin/ircscript/internal/logio"
)

// Env is the set of external collaborators the expander needs. It never
// touches the symbol table or call stack directly, mirroring the
// teacher's separation of VM mechanics (internals.go) from I/O plumbing
// (core.go).
type Env interface {
	// Lookup reads a variable's rvalue by name. ok is false if unset.
	Lookup(name string) (string, bool)
	// CallFunction invokes name(argstr) and returns its result, where
	// argstr is the raw text between the call's parens (already
	// expanded by the caller per the "$(...)" / "$ident(" rules).
	CallFunction(name, argstr string) (string, error)
	// EvalExpr evaluates expr in expression-mode ("${expr}").
	EvalExpr(expr string) (string, error)
	// Prompt blocks on a synchronous "$"..."" (line mode, key=false) or
	// "$'...'" (key mode, key=true) prompt and returns what the user
	// entered.
	Prompt(prompt string, key bool) (string, error)
	// HistoryLookup finds the most recent command-history entry matching
	// pat, for "$!pat!".
	HistoryLookup(pat string) (string, bool)
	// Word returns word n (1-based) of the current $*; ok is false past
	// the end, and also for n below 1 (as "$0" asks). Use Args for the
	// whole string.
	Word(n int) (string, bool)
	// WordRange returns words [from,to] (1-based, inclusive) of $*
	// joined by single spaces; to<0 means "to the end".
	WordRange(from, to int) string
	// Args returns the current $* positional-argument string.
	Args() string
}

// PadChar is the default padding byte used by the length specifier when an
// Env does not care to override it; settings like /SET PAD_CHAR would wire
// a different byte through Options in a fuller build.
const PadChar = ' '

// Options tunes one Expand call.
type Options struct {
	// Trace, if non-nil, receives an aligned trace line per expando
	// substitution (see internal/logio).
	Trace *logio.Trace
}

// Result is everything Expand produced from one template.
type Result struct {
	// Out is the fully substituted, unescaped text.
	Out string
	// More is the remainder after the first unescaped top-level ';',
	// valid only when splitSemi was requested.
	More string
	// HasMore reports whether a ';' split occurred.
	HasMore bool
	// UsedArgs reports whether the template referenced $* (directly, or
	// via a verbatim "(...)"/"{...}" passthrough) so a caller deciding
	// whether to auto-append leftover arguments can skip doing so.
	UsedArgs bool
}

// Expand runs one left-to-right pass over tmpl. splitSemi requests the
// ';'-splitting behavior ("more_text" out-parameter); pass false when the
// caller never needs a remainder (e.g. an argument default-value
// expression, which is never split).
func Expand(tmpl string, env Env, splitSemi bool, opts Options) (Result, error) {
	x := &expander{src: tmpl, env: env, opts: opts}
	x.walk(splitSemi)
	if x.err != nil {
		return Result{}, x.err
	}
	return Result{
		Out:      x.out.String(),
		More:     x.more,
		HasMore:  x.hasMore,
		UsedArgs: x.usedArgs,
	}, nil
}

type expander struct {
	src  string
	pos  int
	env  Env
	opts Options

	out      strings.Builder
	more     string
	hasMore  bool
	usedArgs bool
	err      error
}

func (x *expander) fail(err error) {
	if x.err == nil {
		x.err = err
	}
}

func (x *expander) walk(splitSemi bool) {
	for x.pos < len(x.src) && x.err == nil {
		b := x.src[x.pos]
		switch b {
		case '\\':
			x.pos++
			if x.pos < len(x.src) {
				x.out.WriteByte(x.src[x.pos])
				x.pos++
			}
		case '$':
			x.pos++
			x.dispatchExpando()
		case ';':
			if splitSemi {
				x.more = x.src[x.pos+1:]
				x.hasMore = true
				return
			}
			x.out.WriteByte(b)
			x.pos++
		case '(', '{':
			x.copyBalancedVerbatim(b)
		default:
			x.out.WriteByte(b)
			x.pos++
		}
	}
}

// copyBalancedVerbatim implements the "( or { -> copy matching bracket span
// verbatim, including the brackets" walk rule: a literal bracket seen
// outside of a $-construct is never expanded here, because it is destined
// to become a control-flow command body (an /IF {...}, a /FOR (...))
// that will be expanded later, in its own scope, when it actually runs.
func (x *expander) copyBalancedVerbatim(open byte) {
	close := byte(')')
	if open == '{' {
		close = '}'
	}
	start := x.pos
	depth := 0
	for x.pos < len(x.src) {
		switch x.src[x.pos] {
		case '\\':
			x.pos++
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				x.pos++
				x.out.WriteString(x.src[start:x.pos])
				x.usedArgs = true
				return
			}
		}
		x.pos++
	}
	x.out.WriteString(x.src[start:])
	x.pos = len(x.src)
	x.usedArgs = true
}

// dispatchExpando consumes exactly one $-construct (the $ itself has
// already been consumed) via the expando dispatcher table.
func (x *expander) dispatchExpando() {
	quoteSet := x.parseQuoteLadder()
	lengthSpec, hasLength := x.parseLengthSpec()

	raw, ok := x.readOneConstruct()
	if !ok {
		return
	}

	if hasLength {
		raw = padTo(raw, lengthSpec)
	}
	if quoteSet != "" {
		raw = backslashEscape(raw, quoteSet)
	}
	x.out.WriteString(raw)

	if x.opts.Trace != nil {
		x.opts.Trace.Step("$", "expando -> %q", raw)
	}
}

func (x *expander) parseQuoteLadder() string {
	var sb strings.Builder
	for x.pos+1 < len(x.src) && x.src[x.pos] == '^' {
		sb.WriteByte(x.src[x.pos+1])
		x.pos += 2
	}
	return sb.String()
}

func (x *expander) parseLengthSpec() (int, bool) {
	if x.pos >= len(x.src) || x.src[x.pos] != '[' {
		return 0, false
	}
	start := x.pos + 1
	depth := 1
	i := start
	for i < len(x.src) && depth > 0 {
		switch x.src[i] {
		case '[':
			depth++
		case ']':
			depth--
		}
		if depth > 0 {
			i++
		}
	}
	if depth != 0 {
		return 0, false
	}
	content := x.src[start:i]
	x.pos = i + 1

	if strings.HasPrefix(content, "$") {
		sub, err := Expand(content, x.env, false, x.opts)
		if err != nil {
			x.fail(err)
			return 0, false
		}
		n, _ := strconv.Atoi(strings.TrimSpace(sub.Out))
		return n, true
	}
	n, _ := strconv.Atoi(strings.TrimSpace(content))
	return n, true
}

func padTo(s string, n int) string {
	width := n
	if width < 0 {
		width = -width
	}
	if len(s) >= width {
		return s[:width]
	}
	pad := strings.Repeat(string(rune(PadChar)), width-len(s))
	if n < 0 {
		return pad + s
	}
	return s + pad
}

func backslashEscape(s, quoteSet string) string {
	if quoteSet == "" {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(quoteSet, s[i]) >= 0 {
			sb.WriteByte('\\')
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// readOneConstruct consumes exactly one of the expando forms and returns
// its substituted text. ok is false if a fatal parse error occurred
// (already recorded via x.fail).
func (x *expander) readOneConstruct() (string, bool) {
	if x.pos >= len(x.src) {
		return "", true
	}
	switch x.src[x.pos] {
	case '(':
		return x.readParenDeref()
	case '!':
		return x.readHistory()
	case '{':
		return x.readExprBrace()
	case '"':
		return x.readPrompt(false)
	case '\'':
		return x.readPrompt(true)
	case '*':
		x.pos++
		x.usedArgs = true
		return x.env.Args(), true
	case '$':
		x.pos++
		return "$", true
	case '#':
		x.pos++
		return x.readWordCount()
	case '@':
		x.pos++
		return x.readByteLength()
	}
	if isDigitOrSign(x.src[x.pos]) {
		return x.readWordRef()
	}
	return x.readIdentOrCall()
}

func isDigitOrSign(b byte) bool { return (b >= '0' && b <= '9') || b == '-' || b == '~' }

// readParenDeref implements "$(...)": recursively expand the contents; if
// the result itself starts with '$', keep expanding until it doesn't, then
// look up the final string as a variable name.
func (x *expander) readParenDeref() (string, bool) {
	start := x.pos + 1
	depth := 1
	i := start
	for i < len(x.src) && depth > 0 {
		switch x.src[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth > 0 {
			i++
		}
	}
	if depth != 0 {
		x.fail(fmt.Errorf("expand: unbalanced '(' at %d", start-1))
		return "", false
	}
	content := x.src[start:i]
	x.pos = i + 1
	x.usedArgs = true

	name := content
	for {
		res, err := Expand(name, x.env, false, x.opts)
		if err != nil {
			x.fail(err)
			return "", false
		}
		name = res.Out
		if !strings.HasPrefix(name, "$") {
			break
		}
		name = name[1:]
	}
	val, _ := x.env.Lookup(name)
	return val, true
}

func (x *expander) readHistory() (string, bool) {
	start := x.pos + 1
	i := strings.IndexByte(x.src[start:], '!')
	if i < 0 {
		x.fail(fmt.Errorf("expand: unterminated $!pat!"))
		return "", false
	}
	pat := x.src[start : start+i]
	x.pos = start + i + 1
	val, _ := x.env.HistoryLookup(pat)
	return val, true
}

func (x *expander) readExprBrace() (string, bool) {
	start := x.pos + 1
	depth := 1
	i := start
	for i < len(x.src) && depth > 0 {
		switch x.src[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth > 0 {
			i++
		}
	}
	//: unbalanced '{' is silently truncated to end-of-input
	content := x.src[start:i]
	if depth != 0 {
		x.pos = len(x.src)
	} else {
		x.pos = i + 1
	}
	val, err := x.env.EvalExpr(content)
	if err != nil {
		x.fail(err)
		return "", false
	}
	return val, true
}

func (x *expander) readPrompt(key bool) (string, bool) {
	quote := byte('"')
	if key {
		quote = '\''
	}
	start := x.pos + 1
	i := start
	for i < len(x.src) && x.src[i] != quote {
		if x.src[i] == '\\' {
			i++
		}
		i++
	}
	prompt := x.src[start:i]
	if i < len(x.src) {
		i++
	} else {
		x.fail(fmt.Errorf("expand: unbalanced prompt quote"))
		return "", false
	}
	x.pos = i
	val, err := x.env.Prompt(prompt, key)
	if err != nil {
		x.fail(err)
		return "", false
	}
	return val, true
}

func (x *expander) readWordCount() (string, bool) {
	name := x.readBareIdent()
	var s string
	if name == "" {
		s = x.env.Args()
	} else {
		s, _ = x.env.Lookup(name)
	}
	return strconv.Itoa(len(strings.Fields(s))), true
}

func (x *expander) readByteLength() (string, bool) {
	name := x.readBareIdent()
	var s string
	if name == "" {
		s = x.env.Args()
	} else {
		s, _ = x.env.Lookup(name)
	}
	return strconv.Itoa(len(s)), true
}

func (x *expander) readBareIdent() string {
	start := x.pos
	for x.pos < len(x.src) && isIdentByte(x.src[x.pos]) {
		x.pos++
	}
	return x.src[start:x.pos]
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '.' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// readWordRef implements "$N", "$-N", "$N-", "$N-M", and "$~" (the
// end-of-string sentinel).
func (x *expander) readWordRef() (string, bool) {
	x.usedArgs = true
	if x.src[x.pos] == '~' {
		x.pos++
		return x.env.WordRange(1, -1), true
	}
	if x.src[x.pos] == '-' {
		x.pos++
		to := x.readSignedInt()
		return x.env.WordRange(1, to), true
	}

	from := x.readSignedInt()
	if x.pos < len(x.src) && x.src[x.pos] == '-' {
		x.pos++
		if x.pos < len(x.src) && x.src[x.pos] == '~' {
			x.pos++
			return x.env.WordRange(from, -1), true
		}
		if x.pos < len(x.src) && isDigitByte(x.src[x.pos]) {
			to := x.readSignedInt()
			return x.env.WordRange(from, to), true
		}
		return x.env.WordRange(from, -1), true
	}
	w, ok := x.env.Word(from)
	if !ok {
		return "", true
	}
	return w, true
}

func (x *expander) readSignedInt() int {
	start := x.pos
	if x.pos < len(x.src) && x.src[x.pos] == '-' {
		x.pos++
	}
	for x.pos < len(x.src) && isDigitByte(x.src[x.pos]) {
		x.pos++
	}
	n, _ := strconv.Atoi(x.src[start:x.pos])
	return n
}

func isDigitByte(b byte) bool { return b >= '0' && b <= '9' }

// readIdentOrCall implements the final "$ident" row: a plain identifier is
// an rvalue lookup, unless immediately followed by '(' in which case it is
// a function call, whose argument text is expanded first (the call's own
// argstr is plain substituted text, matching the teacher's "expand, then
// dispatch" pipeline rather than lazy argument evaluation).
func (x *expander) readIdentOrCall() (string, bool) {
	name := x.readBareIdent()
	if name == "" {
		// unrecognized construct; consume one byte to guarantee forward
		// progress and emit it literally.
		b := x.src[x.pos]
		x.pos++
		return string(b), true
	}
	if x.pos < len(x.src) && x.src[x.pos] == '(' {
		start := x.pos + 1
		depth := 1
		i := start
		for i < len(x.src) && depth > 0 {
			switch x.src[i] {
			case '\\':
				i++
			case '(':
				depth++
			case ')':
				depth--
			}
			if depth > 0 {
				i++
			}
		}
		if depth != 0 {
			x.fail(fmt.Errorf("expand: unbalanced '(' in call to %v", name))
			return "", false
		}
		argTmpl := x.src[start:i]
		x.pos = i + 1

		argRes, err := Expand(argTmpl, x.env, false, x.opts)
		if err != nil {
			x.fail(err)
			return "", false
		}
		out, err := x.env.CallFunction(name, argRes.Out)
		if err != nil {
			x.fail(err)
			return "", false
		}
		return out, true
	}
	val, _ := x.env.Lookup(name)
	return val, true
}
