// Package bridge defines the uniform three-entry-point contract an
// embedded-language interpreter exposes to the host (the original
// system's perl.c/tcl.c/ruby.c/python.c families, collapsed to one Go
// interface instead of four bespoke ones), plus the four callbacks the
// host gives back to whatever runs on the other side of that contract.
package bridge

import "fmt"

// Bridge is what an embedded interpreter implements to be callable from
// the command language.
type Bridge interface {
	// EvalExpression evaluates code and substitutes its string result
	// where the call appears (e.g. "$perl(code)").
	EvalExpression(code string) (string, error)
	// EvalStatement runs code for side effects only (e.g. "/PERL code").
	EvalStatement(code string) error
	// CallHost invokes a host-language function by name with string
	// arguments, returning its string result.
	CallHost(name string, args []string) (string, error)
}

// Host is what a Bridge gets back: the four callbacks that let embedded
// code act on the command-language side.
type Host interface {
	// Echo writes text to the current window without any level tagging.
	Echo(text string) error
	// Say writes text to the current window at the current message level.
	Say(text string) error
	// Cmd runs text as a full command line.
	Cmd(text string) error
	// Eval runs text through the text-mode expander.
	Eval(text string) (string, error)
	// Expr runs text through the expression evaluator.
	Expr(text string) (string, error)
	// Call invokes name as a function-call ("$name(args)" form) with the
	// given raw argument string.
	Call(name, args string) (string, error)
}

// Registry names Bridges by the language keyword scripts use to reach
// them (e.g. "PERL", "TCL"), the same way the host language's builtin
// command table names native commands.
type Registry struct {
	bridges map[string]Bridge
}

// NewRegistry returns an empty bridge registry.
func NewRegistry() *Registry { return &Registry{bridges: map[string]Bridge{}} }

// Register names b under lang (case-insensitive).
func (r *Registry) Register(lang string, b Bridge) { r.bridges[upper(lang)] = b }

// Lookup resolves a registered bridge by language name.
func (r *Registry) Lookup(lang string) (Bridge, bool) {
	b, ok := r.bridges[upper(lang)]
	return b, ok
}

func upper(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

// CallFailure wraps a bridge-side error into the diagnostic string form
// the calling script sees instead of a propagated exception, per the
// "exceptions from the host language are caught, turned into a
// diagnostic" contract.
func CallFailure(lang string, err error) string {
	return fmt.Sprintf("%s error: %v", lang, err)
}
