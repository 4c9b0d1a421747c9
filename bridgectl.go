package ircscript

import (
	"fmt"

	"github.com/jcorbin/ircscript/bridge"
)

// cmdBridge implements "/BRIDGE lang code": runs code as a statement
// against the named embedded-language bridge, for side effects only.
// Errors from the bridge are reported as a diagnostic rather than
// propagated, per the embedded-bridge error contract.
func cmdBridge(eng *Engine, argstr string) error {
	lang, code := splitCommand(argstr)
	b, ok := eng.Bridges.Lookup(lang)
	if !ok {
		return fmt.Errorf("ircscript: /BRIDGE: no such bridge %q", lang)
	}
	if err := b.EvalStatement(code); err != nil {
		if eng.out != nil {
			fmt.Fprintln(eng.out, bridge.CallFailure(lang, err))
		}
	}
	return nil
}

// fnBridge implements "$bridge(lang code)": evaluates code against the
// named bridge and substitutes its string result.
func fnBridge(eng *Engine, argstr string) (string, error) {
	lang, code := splitCommand(argstr)
	b, ok := eng.Bridges.Lookup(lang)
	if !ok {
		return "", fmt.Errorf("ircscript: bridge(): no such bridge %q", lang)
	}
	out, err := b.EvalExpression(code)
	if err != nil {
		return bridge.CallFailure(lang, err), nil
	}
	return out, nil
}

// registerDefaultBridges installs the in-tree "toy" bridge under the
// TOY language name, giving /BRIDGE and $bridge(...) something to reach
// without requiring a real embedded interpreter.
func registerDefaultBridges(eng *Engine) {
	toy := bridge.NewToy(eng)
	toy.RegisterDefaults()
	eng.Bridges.Register("TOY", toy)
}
