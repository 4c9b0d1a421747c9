package bridge

import (
	"fmt"
	"strings"
)

// ToyFunc is one function in a toy bridge's registered table.
type ToyFunc func(host Host, args []string) (string, error)

// Toy is a minimal in-tree Bridge: "code" is always "funcname arg...",
// dispatched against a small registered Go-function table. It exists so
// tests and the REPL driver's demo "/PERL"-alike command have a concrete
// Bridge to exercise without actually embedding a real interpreter.
type Toy struct {
	host  Host
	funcs map[string]ToyFunc
}

// NewToy returns an empty Toy bridge bound to host.
func NewToy(host Host) *Toy {
	return &Toy{host: host, funcs: map[string]ToyFunc{}}
}

// Register adds name to the toy bridge's function table.
func (t *Toy) Register(name string, fn ToyFunc) { t.funcs[upper(name)] = fn }

// EvalExpression dispatches code ("funcname arg...") and returns its
// result, for "$perl(code)"-style substitution.
func (t *Toy) EvalExpression(code string) (string, error) {
	name, args := splitFields(code)
	fn, ok := t.funcs[upper(name)]
	if !ok {
		return "", fmt.Errorf("toy bridge: no such function %q", name)
	}
	return fn(t.host, args)
}

// EvalStatement runs code for side effects, discarding its result.
func (t *Toy) EvalStatement(code string) error {
	_, err := t.EvalExpression(code)
	return err
}

// CallHost invokes a registered function directly by name, for
// "call_host(name, args)".
func (t *Toy) CallHost(name string, args []string) (string, error) {
	fn, ok := t.funcs[upper(name)]
	if !ok {
		return "", fmt.Errorf("toy bridge: no such function %q", name)
	}
	return fn(t.host, args)
}

func splitFields(s string) (first string, rest []string) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

// RegisterDefaults installs a handful of demo functions grounded on the
// bridge contract's own example shape: "echo" routes through the host's
// Echo callback, "say" through Say, "upper" demonstrates a pure
// string-transform round trip.
func (t *Toy) RegisterDefaults() {
	t.Register("ECHO", func(host Host, args []string) (string, error) {
		text := strings.Join(args, " ")
		return "", host.Echo(text)
	})
	t.Register("SAY", func(host Host, args []string) (string, error) {
		text := strings.Join(args, " ")
		return "", host.Say(text)
	})
	t.Register("UPPER", func(host Host, args []string) (string, error) {
		return strings.ToUpper(strings.Join(args, " ")), nil
	})
	t.Register("EXPR", func(host Host, args []string) (string, error) {
		return host.Expr(strings.Join(args, " "))
	})
}
