package ircscript

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jcorbin/ircscript/bridge"
	"github.com/jcorbin/ircscript/control"
	"github.com/jcorbin/ircscript/expand"
	"github.com/jcorbin/ircscript/expr"
	"github.com/jcorbin/ircscript/hook"
	"github.com/jcorbin/ircscript/ignorelist"
	"github.com/jcorbin/ircscript/internal/logio"
	"github.com/jcorbin/ircscript/internal/panicerr"
	"github.com/jcorbin/ircscript/internal/wildcard"
	"github.com/jcorbin/ircscript/keymap"
	"github.com/jcorbin/ircscript/lastlog"
)

// Engine is the scripting runtime: global symbol table, level registry,
// call stack, and named-array store, wired together exactly the way the
// teacher's VM ties its memory, symbol table, and I/O core into one
// struct. Engine implements both expr.Env and expand.Env so the evaluator
// and expander packages need no knowledge of engine internals.
type Engine struct {
	Globals *SymbolTable
	Levels  *LevelRegistry
	Stack   *CallStack
	Arrays  *ArrayStore
	Hooks   *hook.Dispatcher
	Ignores *ignorelist.List
	Keys    *keymap.Tree
	Lastlog *lastlog.Store
	Bridges *bridge.Registry

	keyState *keymap.State

	trace logio.Trace
	out   io.Writer

	currentPackage string
	uuidRefnums    bool

	// PromptFunc is the host collaborator for "$'...'"/"$\"...\"" synchronous
	// prompts; a headless Engine (tests) may leave it nil, in which case
	// such an expando fails.
	PromptFunc func(prompt string, key bool) (string, error)
	// History resolves "$!pat!" against the host's command history.
	History func(pat string) (string, bool)

	args []string // current frame's $* words, parallel to the call stack
}

// New constructs an Engine with the given options applied, mirroring the
// teacher's `New(opts ...VMOption) *VM`.
func New(opts ...EngineOption) *Engine {
	eng := &Engine{
		Globals: NewSymbolTable(0),
		Levels:  NewLevelRegistry(),
		Stack:   NewCallStack(0),
		Arrays:  NewArrayStore(),
		Ignores: ignorelist.New(),
		Keys:    keymap.New(500 * time.Millisecond),
		Lastlog: lastlog.New(),
		Bridges: bridge.NewRegistry(),
	}
	eng.Hooks = hook.New(eng)
	eng.keyState = eng.Keys.NewState()
	registerDefaultLevels(eng.Levels)
	EngineOptions(opts...).apply(eng)
	if eng.uuidRefnums {
		eng.Ignores.SetRefnumFunc(uuidRefnum)
		eng.Lastlog.SetRefnumFunc(uuidRefnum)
	}
	registerBuiltins(eng)
	return eng
}

// uuidRefnum mints a refnum from a random UUID's low 64 bits rather than
// a per-process counter, for WithUUIDRefnums hosts that want refnums that
// stay unique across process restarts.
func uuidRefnum() uint {
	id := uuid.New()
	return uint(binary.BigEndian.Uint64(id[8:]))
}

func registerDefaultLevels(r *LevelRegistry) {
	for _, name := range []string{
		"CRAP", "PUBLIC", "MSGS", "NOTICES", "WALLS", "WALLOPS", "NOTIFY",
		"SNOTES", "ACTIONS", "DCC", "CTCP", "USERLOG1", "USERLOG2", "USERLOG3",
		"USERLOG4", "USERLOG5", "OPNOTES", "SYSERR", "BANS", "HELP",
	} {
		r.Register(name)
	}
}

// Run evaluates src as a top-level script, recovering any panic into an
// error exactly as the teacher's VM.Run wraps vm.run in panicerr.Recover.
func (eng *Engine) Run(src string) error {
	err := panicerr.Recover("Engine", func() error {
		return eng.Dispatch(src)
	})
	var he haltError
	if errors.As(err, &he) {
		return he.error
	}
	return err
}

// Dispatch runs every ';'-separated statement of src against the command
// table, in the current frame. This is the engine's command-execution
// loop, the direct analogue of the teacher's vm step loop but operating
// over command text instead of VM opcodes.
func (eng *Engine) Dispatch(src string) error {
	for src != "" {
		res, err := expand.Expand(src, eng, true, expand.Options{Trace: &eng.trace})
		if err != nil {
			return err
		}
		if err := eng.dispatchOne(strings.TrimSpace(res.Out)); err != nil {
			return err
		}
		if !res.HasMore {
			return nil
		}
		src = res.More
	}
	return nil
}

func (eng *Engine) dispatchOne(stmt string) error {
	if stmt == "" {
		return nil
	}
	name, argstr := splitCommand(stmt)
	if name == "" {
		return nil
	}
	return eng.RunCommand(name, argstr)
}

// splitCommand separates a statement's leading "/command" (or bare first
// word, for the default command) from its argument text.
func splitCommand(stmt string) (name, argstr string) {
	stmt = strings.TrimPrefix(stmt, "/")
	i := strings.IndexAny(stmt, " \t")
	if i < 0 {
		return stmt, ""
	}
	return stmt[:i], strings.TrimSpace(stmt[i+1:])
}

// RunCommand dispatches name(argstr) as a command: a builtin command runs
// directly; a user command pushes a named frame, binds its argument list,
// and executes its body.
func (eng *Engine) RunCommand(name, argstr string) error {
	sym, ok := eng.Globals.Lookup(name)
	if !ok {
		return fmt.Errorf("ircscript: unknown command %q", name)
	}
	if sym.BuiltinCmd != nil {
		return sym.BuiltinCmd(eng, argstr)
	}
	if sym.UserCmd != nil {
		_, err := eng.callUserCommand(sym.UserCmd, argstr)
		return err
	}
	return fmt.Errorf("ircscript: %q has no command payload", name)
}

// callUserCommand pushes a named frame, binds argstr as $*, and runs cmd's
// body. It returns the frame's FUNCTION_RETURN value read back before the
// frame is popped, since Lookup("FUNCTION_RETURN") after the pop would
// resolve against the wrong (enclosing) function frame.
func (eng *Engine) callUserCommand(cmd *UserCommandPayload, argstr string) (string, error) {
	idx, err := eng.Stack.MakeFrame("call")
	if err != nil {
		return "", err
	}
	defer eng.Stack.Pop()

	saved := eng.args
	eng.args = splitWords(argstr)
	defer func() { eng.args = saved }()
	runErr := catchReturn(func() error { return eng.Dispatch(cmd.Body) })

	var ret string
	if s, ok := eng.Stack.frames[idx].Locals.Lookup("FUNCTION_RETURN"); ok && s.UserVar != nil {
		ret = s.UserVar.Value
	}
	return ret, runErr
}

// catchReturn runs body, swallowing a control.Signal{Kind: control.Return}
// panic as an ordinary early return from the enclosing function call;
// Break, Continue, and System signals are not this boundary's to catch and
// are re-panicked so an enclosing loop or the engine's top-level recover
// sees them.
func catchReturn(body func() error) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		sig, ok := control.AsSignal(r)
		if !ok || sig.Kind != control.Return {
			panic(r)
		}
	}()
	return body()
}

// RunBody (control.Env) executes body as a new anonymous call-stack frame,
// without catching any break/continue/return/system signal -- those unwind
// through to control's own loop-boundary recover or to catchReturn above.
func (eng *Engine) RunBody(body string) error {
	if _, err := eng.Stack.MakeFrame(""); err != nil {
		return err
	}
	defer eng.Stack.Pop()
	return eng.Dispatch(body)
}

// Subarray (control.Env) enumerates the dotted structure-root children of
// name in the global variable namespace, for /FOREACH.
func (eng *Engine) Subarray(root string) []string {
	return eng.Globals.Subarray(root)
}

func splitWords(s string) []string {
	return strings.Fields(s)
}

// Args returns the current frame's $* string (expand.Env, expr.Env).
func (eng *Engine) Args() string { return strings.Join(eng.args, " ") }

// Word returns word n (1-based) of $*.
func (eng *Engine) Word(n int) (string, bool) {
	if n < 1 || n > len(eng.args) {
		return "", false
	}
	return eng.args[n-1], true
}

// WordRange returns words [from,to] (1-based inclusive; to<0 means "to
// the end") of $* joined by single spaces.
func (eng *Engine) WordRange(from, to int) string {
	if from < 1 {
		from = 1
	}
	if to < 0 || to > len(eng.args) {
		to = len(eng.args)
	}
	if from > to || from > len(eng.args) {
		return ""
	}
	return strings.Join(eng.args[from-1:to], " ")
}

// Lookup resolves name against the current frame's locals, then the
// global table, honoring the ":"/"::"-qualifiers (local-only / global-only).
func (eng *Engine) Lookup(name string) (string, bool) {
	localOnly, globalOnly := false, false
	if strings.HasPrefix(name, "::") {
		globalOnly, name = true, name[2:]
	} else if strings.HasPrefix(name, ":") {
		localOnly, name = true, name[1:]
	}

	if name == "FUNCTION_RETURN" {
		idx := eng.Stack.FunctionReturnFrame()
		if idx < 0 {
			return "", false
		}
		if s, ok := eng.Stack.frames[idx].Locals.Lookup("FUNCTION_RETURN"); ok && s.UserVar != nil {
			return s.UserVar.Value, true
		}
		return "", false
	}

	if !globalOnly && eng.Stack.Depth() > 0 {
		if s, ok := eng.Stack.LookupLocal(eng.Stack.top, name); ok && s.UserVar != nil {
			return s.UserVar.Value, true
		}
	}
	if localOnly {
		return "", false
	}
	if s, ok := eng.Globals.Lookup(name); ok {
		if s.UserVar != nil {
			return s.UserVar.Value, true
		}
		if s.BuiltinVar != nil {
			return s.BuiltinVar.String(), true
		}
	}
	return "", false
}

// Assign writes name's value, preferring an existing local binding,
// falling back to auto-vivifying a global user variable.
func (eng *Engine) Assign(name, value string) error {
	globalOnly := false
	if strings.HasPrefix(name, "::") {
		globalOnly, name = true, name[2:]
	} else if strings.HasPrefix(name, ":") {
		name = name[1:]
	}

	if name == "FUNCTION_RETURN" {
		idx := eng.Stack.FunctionReturnFrame()
		if idx < 0 {
			return fmt.Errorf("ircscript: FUNCTION_RETURN outside a call")
		}
		return eng.Stack.frames[idx].Locals.DefineUserVariable("FUNCTION_RETURN", value, eng.currentPackage)
	}

	if !globalOnly && eng.Stack.Depth() > 0 {
		if s, ok := eng.Stack.LookupLocal(eng.Stack.top, name); ok {
			if s.UserVar == nil {
				s.UserVar = &UserVariablePayload{}
			}
			s.UserVar.Value = value
			return nil
		}
	}
	if s, ok := eng.Globals.Lookup(name); ok && s.BuiltinVar != nil {
		return eng.SetString(s.BuiltinVar, value)
	}
	return eng.Globals.DefineUserVariable(name, value, eng.currentPackage)
}

// Swap exchanges the values of two lvalues, for the expression <=> operator.
func (eng *Engine) Swap(a, b string) error {
	av, _ := eng.Lookup(a)
	bv, _ := eng.Lookup(b)
	if err := eng.Assign(a, bv); err != nil {
		return err
	}
	return eng.Assign(b, av)
}

// Expand implements expr.Env's identifier-resolution hook by running the
// text expander over a bare identifier head.
func (eng *Engine) Expand(s string) (string, error) {
	res, err := expand.Expand(s, eng, false, expand.Options{Trace: &eng.trace})
	if err != nil {
		return "", err
	}
	return res.Out, nil
}

// EvalExpr evaluates src in expression mode (the "${...}" construct and
// expr.Env's sibling in expand.Env).
func (eng *Engine) EvalExpr(src string) (string, error) {
	v, err := expr.Eval(src, eng)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// Call (expr.Env, bridge.Host) invokes a builtin or user function by name.
func (eng *Engine) Call(name, argstr string) (string, error) {
	return eng.CallFunction(name, argstr)
}

// CallFunction (expand.Env) invokes a builtin or user function by name.
func (eng *Engine) CallFunction(name, argstr string) (string, error) {
	sym, ok := eng.Globals.Lookup(name)
	if !ok {
		return "", fmt.Errorf("ircscript: unknown function %q", name)
	}
	if sym.BuiltinFn != nil {
		return sym.BuiltinFn(eng, argstr)
	}
	if sym.UserCmd != nil {
		return eng.callUserCommand(sym.UserCmd, argstr)
	}
	return "", fmt.Errorf("ircscript: %q has no function payload", name)
}

// Block (expr.Env) executes a "{...}" literal's body as an anonymous
// script and returns its FUNCTION_RETURN.
func (eng *Engine) Block(body string) (string, error) {
	if _, err := eng.Stack.MakeFrame(""); err != nil {
		return "", err
	}
	defer eng.Stack.Pop()
	if err := catchReturn(func() error { return eng.Dispatch(body) }); err != nil {
		return "", err
	}
	v, _ := eng.Lookup("FUNCTION_RETURN")
	return v, nil
}

// HistoryLookup (expand.Env) delegates to the host's History callback.
func (eng *Engine) HistoryLookup(pat string) (string, bool) {
	if eng.History == nil {
		return "", false
	}
	return eng.History(pat)
}

// Prompt (expand.Env) delegates to the host's PromptFunc collaborator,
// blocking the current frame while it waits for a reply.
func (eng *Engine) Prompt(prompt string, key bool) (string, error) {
	if eng.PromptFunc == nil {
		return "", fmt.Errorf("ircscript: no interactive prompt collaborator configured")
	}
	eng.Stack.Lock()
	defer eng.Stack.Unlock()
	return eng.PromptFunc(prompt, key)
}

// EvalScriptWithArgs runs body as a new anonymous frame with args set as
// the frame's $* (used by /SET on-change scripts and keymap "stuff").
func (eng *Engine) EvalScriptWithArgs(body string, args ...string) error {
	if _, err := eng.Stack.MakeFrame(""); err != nil {
		return err
	}
	defer eng.Stack.Pop()
	saved := eng.args
	eng.args = args
	defer func() { eng.args = saved }()
	return catchReturn(func() error { return eng.Dispatch(body) })
}

// ArrayStore holds the dynamically-created named arrays backing
// getitem/setitem/getmatches.
type ArrayStore struct {
	arrays map[string]map[string]string
}

// NewArrayStore returns an empty store.
func NewArrayStore() *ArrayStore { return &ArrayStore{arrays: map[string]map[string]string{}} }

func (a *ArrayStore) array(name string) map[string]string {
	m := a.arrays[name]
	if m == nil {
		m = make(map[string]string)
		a.arrays[name] = m
	}
	return m
}

// GetItem returns array[key]'s value.
func (a *ArrayStore) GetItem(array, key string) (string, bool) {
	m, ok := a.arrays[array]
	if !ok {
		return "", false
	}
	v, ok := m[key]
	return v, ok
}

// SetItem sets array[key] = value, creating the array on first use.
func (a *ArrayStore) SetItem(array, key, value string) {
	a.array(array)[key] = value
}

// GetMatches returns every key in array whose name matches pat
// (case-folded glob, via internal/wildcard), sorted for determinism.
func (a *ArrayStore) GetMatches(array, pat string) []string {
	m, ok := a.arrays[array]
	if !ok {
		return nil
	}
	var out []string
	for k := range m {
		if wildcard.Match(pat, k) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Echo (bridge.Host) writes text to the current window untagged.
func (eng *Engine) Echo(text string) error {
	return cmdEcho(eng, text)
}

// Say (bridge.Host) writes text to the current window at the current
// message level; this engine has no distinct level-tagged output path of
// its own, so it shares cmdEcho's plain write.
func (eng *Engine) Say(text string) error {
	return cmdEcho(eng, text)
}

// Cmd (bridge.Host) runs text as a full command line.
func (eng *Engine) Cmd(text string) error {
	return eng.Dispatch(text)
}

// Eval (bridge.Host) runs text through the text-mode expander.
func (eng *Engine) Eval(text string) (string, error) {
	return eng.Expand(text)
}

// Expr (bridge.Host) runs text through the expression evaluator.
func (eng *Engine) Expr(text string) (string, error) {
	return eng.EvalExpr(text)
}

// Call (expr.Env, bridge.Host) invokes name as a function-call with the
// given raw argument string; satisfies both interfaces with one method
// since their contracts coincide exactly.

// parseRefnum is a small shared helper for builtins that accept either a
// numeric refnum or a name.
func parseRefnum(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return n, err == nil
}
