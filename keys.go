package ircscript

import (
	"fmt"
	"strings"
	"time"

	"github.com/jcorbin/ircscript/keymap"
)

// cmdBind implements a slice of "/BIND seq [name [arg]]":
// bare "seq" alone unbinds; "seq name" binds a native/scripted
// binding; the "-DEFAULTS"/"-SYMBOLIC"/"-RECURSIVE" forms are not modeled (no terminal
// layer in this library-first build).
func cmdBind(eng *Engine, argstr string) error {
	seq, rest := splitCommand(argstr)
	name, arg := splitCommand(rest)
	if name == "" {
		if !eng.Keys.Unbind(seq) {
			return fmt.Errorf("ircscript: /BIND: %q is not bound", seq)
		}
		return nil
	}
	if !eng.Keys.Bind(seq, name, arg, eng.currentPackage) {
		return fmt.Errorf("ircscript: /BIND: no such binding %q", name)
	}
	return nil
}

// cmdParsekey implements "/PARSEKEY name [arg]": invoke a registered
// binding directly, bypassing the trie.
func cmdParsekey(eng *Engine, argstr string) error {
	name, arg := splitCommand(argstr)
	b, ok := eng.Keys.Lookup(name)
	if !ok {
		return fmt.Errorf("ircscript: /PARSEKEY: no such binding %q", name)
	}
	return eng.fireBinding(b, arg)
}

// fireBinding implements "Binding execution": a script_alias
// binding submits "alias_name stuff" to the command language; a native_fn
// binding is left to the host (there is none built into this library, so
// it is a no-op here -- hosts register native bindings via
// keymap.Tree.AddBinding with their own dispatch, not through the
// scripting layer).
func (eng *Engine) fireBinding(b *keymap.Binding, stuff string) error {
	if b.Kind != keymap.ScriptAlias {
		return nil
	}
	line := b.Alias
	if stuff != "" {
		line += " " + stuff
	}
	return eng.Dispatch(line)
}

// FeedKey drives eng.Keys' state machine for one input byte, firing any
// resulting bindings in order (host-facing API used by cmd/ircscript's
// terminal reader).
func (eng *Engine) FeedKey(b byte) error {
	for _, action := range eng.keyState.Feed(b, time.Now()) {
		if !action.Fire {
			continue
		}
		if err := eng.fireBinding(action.Binding, action.Stuff); err != nil {
			return err
		}
	}
	return nil
}

func cmdRebind(eng *Engine, argstr string) error {
	name := strings.TrimSpace(argstr)
	seqs := eng.Keys.SequencesBoundTo(name)
	if eng.out != nil {
		fmt.Fprintln(eng.out, strings.Join(seqs, " "))
	}
	return nil
}
