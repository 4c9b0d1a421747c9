package ircscript

import (
	"fmt"
	"strings"

	"github.com/jcorbin/ircscript/control"
	"github.com/jcorbin/ircscript/expr"
)

// registerBuiltins installs the engine's fixed command/function table at
// New() time, mirroring the teacher's compileBuiltins() dispatch-table
// construction. Control-flow commands (/IF /WHILE /DO /FOR /FOREACH /FE
// /FEC /SWITCH /REPEAT) are adapted directly from package control, which
// Engine satisfies as a control.Env without control ever importing this
// package back.
func registerBuiltins(eng *Engine) {
	g := eng.Globals

	g.AddBuiltinCommand("ECHO", cmdEcho)
	g.AddBuiltinCommand("SAY", cmdEcho)
	g.AddBuiltinCommand("ASSIGN", cmdAssign)
	g.AddBuiltinCommand("@", cmdAtExpr)
	g.AddBuiltinCommand("ALIAS", cmdAlias)
	g.AddBuiltinCommand("STUB", cmdStub)
	g.AddBuiltinCommand("UNLOAD", cmdUnload)
	g.AddBuiltinCommand("LOCAL", cmdLocal)
	g.AddBuiltinCommand("SET", cmdSet)
	g.AddBuiltinCommand("DUMP", cmdDump)
	g.AddBuiltinCommand("LEVEL", cmdLevel)

	g.AddBuiltinCommand("IF", func(eng *Engine, argstr string) error { return control.If(eng, argstr) })
	g.AddBuiltinCommand("WHILE", func(eng *Engine, argstr string) error { return control.While(eng, argstr) })
	g.AddBuiltinCommand("DO", func(eng *Engine, argstr string) error { return control.Do(eng, argstr) })
	g.AddBuiltinCommand("FOR", func(eng *Engine, argstr string) error { return control.For(eng, argstr) })
	g.AddBuiltinCommand("FOREACH", func(eng *Engine, argstr string) error { return control.Foreach(eng, argstr) })
	g.AddBuiltinCommand("FE", func(eng *Engine, argstr string) error { return control.Fe(eng, argstr) })
	g.AddBuiltinCommand("FEC", func(eng *Engine, argstr string) error { return control.Fec(eng, argstr) })
	g.AddBuiltinCommand("SWITCH", func(eng *Engine, argstr string) error { return control.Switch(eng, argstr) })
	g.AddBuiltinCommand("REPEAT", func(eng *Engine, argstr string) error { return control.Repeat(eng, argstr) })
	g.AddBuiltinCommand("RETURN", cmdReturn)
	g.AddBuiltinCommand("BREAK", cmdBreak)
	g.AddBuiltinCommand("CONTINUE", cmdContinue)

	g.AddBuiltinCommand("ON", cmdOn)
	g.AddBuiltinCommand("SHOOK", cmdShook)
	g.AddBuiltinCommand("STACK", cmdStack)
	g.AddBuiltinCommand("IGNORE", cmdIgnore)
	g.AddBuiltinCommand("BIND", cmdBind)
	g.AddBuiltinCommand("PARSEKEY", cmdParsekey)
	g.AddBuiltinCommand("REBIND", cmdRebind)
	g.AddBuiltinCommand("LASTLOG", cmdLastlog)
	g.AddBuiltinCommand("BRIDGE", cmdBridge)
	g.AddBuiltinCommand("SAVE", cmdSave)

	g.AddBuiltinFunction("GETITEM", fnGetItem)
	g.AddBuiltinFunction("SETITEM", fnSetItem)
	g.AddBuiltinFunction("GETMATCHES", fnGetMatches)
	g.AddBuiltinFunction("SYMBOLCTL", fnSymbolCtl)
	g.AddBuiltinFunction("LEVELCTL", fnLevelCtl)
	g.AddBuiltinFunction("ALIASCTL", fnAliasCtl)
	g.AddBuiltinFunction("IGNORECTL", fnIgnoreCtl)
	g.AddBuiltinFunction("BRIDGE", fnBridge)

	registerDefaultSettings(eng)
	registerDefaultBridges(eng)
}

// registerDefaultSettings installs the fixed built-in /SET table entries
// this engine's own subsystems consult.
func registerDefaultSettings(eng *Engine) {
	g := eng.Globals
	g.AddBuiltinVariable("LASTLOG", &Setting{Name: "LASTLOG", Type: SettingInt, IntVal: 500, Builtin: true})
	g.AddBuiltinVariable("KEY_INTERVAL", &Setting{Name: "KEY_INTERVAL", Type: SettingInt, IntVal: 500, Builtin: true})
}

// cmdReturn implements "/RETURN [value]": set FUNCTION_RETURN
// then unwind to the nearest call boundary via a control.Return signal.
func cmdReturn(eng *Engine, argstr string) error {
	if err := eng.Assign("FUNCTION_RETURN", argstr); err != nil {
		return err
	}
	control.Raise(control.Return)
	return nil
}

func cmdBreak(eng *Engine, argstr string) error {
	control.Raise(control.Break)
	return nil
}

func cmdContinue(eng *Engine, argstr string) error {
	control.Raise(control.Continue)
	return nil
}

func cmdEcho(eng *Engine, argstr string) error {
	if eng.out == nil {
		return nil
	}
	_, err := fmt.Fprintln(eng.out, argstr)
	return err
}

// cmdAssign implements "/ASSIGN name value" (an explicit assignment
// command, distinct from the expression-level "=" operator).
func cmdAssign(eng *Engine, argstr string) error {
	name, val := splitCommand(argstr)
	return eng.Assign(name, val)
}

// cmdAtExpr implements "@ expr" (ircII's classic "evaluate for side
// effect, discard the result" statement).
func cmdAtExpr(eng *Engine, argstr string) error {
	_, err := expr.Eval(argstr, eng)
	return err
}

func cmdAlias(eng *Engine, argstr string) error {
	name, body := splitCommand(argstr)
	body = strings.Trim(strings.TrimSpace(body), "{}")
	if body == "" {
		eng.Globals.DeleteUserCommand(name)
		return nil
	}
	return eng.Globals.DefineUserCommand(name, nil, body, eng.currentPackage)
}

func cmdStub(eng *Engine, argstr string) error {
	name, path := splitCommand(argstr)
	return eng.Globals.DefineUserCommandStub(name, path, eng.currentPackage)
}

// cmdUnload implements "/UNLOAD pkg": sweeps the symbol table along with
// every other subsystem that tags its entries with a package name, so
// bindings, hooks, and keymap entries loaded by the same package go away
// together.
func cmdUnload(eng *Engine, argstr string) error {
	pkg := strings.TrimSpace(argstr)
	eng.Globals.Unload(pkg)
	eng.Hooks.RemoveRulesForPackage(pkg)
	eng.Keys.UnloadPackage(pkg)
	return nil
}

func cmdLocal(eng *Engine, argstr string) error {
	f := eng.Stack.Current()
	if f == nil {
		return fmt.Errorf("ircscript: /LOCAL outside a call")
	}
	for _, name := range strings.Fields(argstr) {
		if err := f.Locals.DefineUserVariable(name, "", eng.currentPackage); err != nil {
			return err
		}
	}
	return nil
}

func cmdSet(eng *Engine, argstr string) error {
	name, rest := splitCommand(argstr)
	if strings.EqualFold(name, "-CREATE") {
		name, rest = splitCommand(rest)
		typeName, script := splitCommand(rest)
		var typ SettingType
		switch strings.ToUpper(typeName) {
		case "BOOL":
			typ = SettingBool
		case "CHAR":
			typ = SettingChar
		case "INT":
			typ = SettingInt
		default:
			typ = SettingString
		}
		return eng.CreateSetting(name, typ, strings.Trim(script, "{}"))
	}
	sym, ok := eng.Globals.Lookup(name)
	if !ok || sym.BuiltinVar == nil {
		return fmt.Errorf("ircscript: no such setting %q", name)
	}
	if rest == "" {
		if eng.out != nil {
			fmt.Fprintf(eng.out, "%v: %v\n", name, sym.BuiltinVar.String())
		}
		return nil
	}
	return eng.SetString(sym.BuiltinVar, rest)
}

func cmdDump(eng *Engine, argstr string) error {
	if eng.out != nil {
		eng.Stack.Dump(eng.out)
	}
	return nil
}

func cmdLevel(eng *Engine, argstr string) error {
	_, rejects := eng.Levels.StrToMask(argstr)
	if len(rejects) > 0 {
		return fmt.Errorf("ircscript: unknown level(s): %v", strings.Join(rejects, ", "))
	}
	return nil
}

func fnGetItem(eng *Engine, argstr string) (string, error) {
	array, key := splitCommand(argstr)
	v, _ := eng.Arrays.GetItem(array, key)
	return v, nil
}

func fnSetItem(eng *Engine, argstr string) (string, error) {
	parts := strings.SplitN(argstr, " ", 3)
	if len(parts) < 2 {
		return "", fmt.Errorf("ircscript: setitem(array key [value])")
	}
	value := ""
	if len(parts) == 3 {
		value = parts[2]
	}
	eng.Arrays.SetItem(parts[0], parts[1], value)
	return value, nil
}

func fnGetMatches(eng *Engine, argstr string) (string, error) {
	array, pat := splitCommand(argstr)
	return strings.Join(eng.Arrays.GetMatches(array, pat), " "), nil
}

// fnSymbolCtl implements a small slice of "$symbolctl(...)": pmatch and
// subarray sub-commands over the global symbol table.
func fnSymbolCtl(eng *Engine, argstr string) (string, error) {
	sub, rest := splitCommand(argstr)
	switch strings.ToUpper(sub) {
	case "PMATCH":
		return strings.Join(eng.Globals.PrefixMatch(rest), " "), nil
	case "SUBARRAY":
		return strings.Join(eng.Globals.Subarray(rest), " "), nil
	}
	return "", fmt.Errorf("ircscript: symbolctl: unknown subcommand %q", sub)
}

func fnLevelCtl(eng *Engine, argstr string) (string, error) {
	sub, rest := splitCommand(argstr)
	switch strings.ToUpper(sub) {
	case "STR_TO_MASK":
		m, rejects := eng.Levels.StrToMask(rest)
		if len(rejects) > 0 {
			return "", fmt.Errorf("ircscript: unknown level(s): %v", strings.Join(rejects, ", "))
		}
		return eng.Levels.MaskToStr(m), nil
	case "MASK_TO_STR":
		n, ok := parseRefnum(rest)
		if !ok {
			return "", fmt.Errorf("ircscript: levelctl(mask_to_str N): bad mask %q", rest)
		}
		return eng.Levels.MaskToStr(LevelMask(n)), nil
	}
	return "", fmt.Errorf("ircscript: levelctl: unknown subcommand %q", sub)
}

func fnAliasCtl(eng *Engine, argstr string) (string, error) {
	sub, rest := splitCommand(argstr)
	switch strings.ToUpper(sub) {
	case "PMATCH":
		return strings.Join(eng.Globals.PrefixMatch(rest), " "), nil
	}
	return "", fmt.Errorf("ircscript: aliasctl: unknown subcommand %q", sub)
}
