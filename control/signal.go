// Package control implements the scripting language's control-flow
// commands: /IF /WHILE /DO /FOR /FOREACH /FE /FEC /SWITCH /REPEAT.
// Each is built on top of package expr (condition evaluation) and package
// expand (body/list text interpolation), sharing one break/continue/
// return/system unwind mechanism implemented as a typed panic value
// recovered at loop and call boundaries -- the same panic+recover
// discipline the teacher (jcorbin/gothird) uses for its own haltError.
package control

import "fmt"

// Kind identifies which of the four scripting-level exceptions a
// Signal carries.
type Kind int

const (
	Break Kind = iota
	Continue
	Return
	System
)

func (k Kind) String() string {
	switch k {
	case Break:
		return "break"
	case Continue:
		return "continue"
	case Return:
		return "return"
	case System:
		return "system"
	}
	return "unknown"
}

// Signal is the typed panic value used to unwind a break, continue,
// return, or system exception across the recursive expr/expand/dispatch
// call chain. It implements error so a caller that recovers one but
// cannot handle it (e.g. a command dispatcher catching System) can return
// it normally instead of re-panicking.
type Signal struct {
	Kind Kind
	Err  error // populated for System; nil otherwise
}

func (s Signal) Error() string {
	if s.Kind == System && s.Err != nil {
		return fmt.Sprintf("system exception: %v", s.Err)
	}
	return s.Kind.String()
}

func (s Signal) Unwrap() error { return s.Err }

// Raise panics with a Signal of the given kind.
func Raise(kind Kind) { panic(Signal{Kind: kind}) }

// RaiseSystem panics with a System-kind Signal wrapping err.
func RaiseSystem(err error) { panic(Signal{Kind: System, Err: err}) }

// AsSignal reports whether r (a recovered panic value) is a Signal,
// returning it if so.
func AsSignal(r interface{}) (Signal, bool) {
	sig, ok := r.(Signal)
	return sig, ok
}

// runBody executes one pass of a loop/branch body via env.RunBody,
// catching Break and Continue at this call's boundary (its loop). Return
// and System re-panic so an enclosing loop, command call, or the
// engine's top-level recover sees them. brokeOut reports whether Break
// was caught (the caller should stop looping); err is any non-Signal
// error from execution.
func runBody(env Env, body string) (brokeOut bool, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		sig, ok := AsSignal(r)
		if !ok {
			panic(r)
		}
		switch sig.Kind {
		case Break:
			brokeOut = true
		case Continue:
			// swallow: the loop driver proceeds to its next iteration
		default:
			panic(r)
		}
	}()
	err = env.RunBody(body)
	return false, err
}
