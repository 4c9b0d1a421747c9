package control_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/ircscript/control"
)

// fakeEnv is a minimal control.Env: RunBody just records the body text and
// reacts to a handful of magic bodies (BREAK/CONTINUE/RETURN/ERR) so tests
// can exercise the unwind plumbing without a real command dispatcher.
type fakeEnv struct {
	vars    map[string]string
	ran     []string
	subKeys map[string][]string
}

func newFakeEnv() *fakeEnv {
	return &fakeEnv{vars: map[string]string{}, subKeys: map[string][]string{}}
}

func (e *fakeEnv) Expand(s string) (string, error) { return s, nil }

func (e *fakeEnv) Lookup(name string) (string, bool) {
	v, ok := e.vars[name]
	return v, ok
}

func (e *fakeEnv) Assign(name, value string) error {
	e.vars[name] = value
	return nil
}

func (e *fakeEnv) Swap(a, b string) error {
	e.vars[a], e.vars[b] = e.vars[b], e.vars[a]
	return nil
}

func (e *fakeEnv) Call(name, argstr string) (string, error) {
	return "", fmt.Errorf("fakeEnv: no functions registered")
}

func (e *fakeEnv) Block(body string) (string, error) { return body, nil }

func (e *fakeEnv) Args() string { return "" }

func (e *fakeEnv) RunBody(body string) error {
	e.ran = append(e.ran, body)
	switch strings.TrimSpace(body) {
	case "BREAK":
		control.Raise(control.Break)
	case "CONTINUE":
		control.Raise(control.Continue)
	case "RETURN":
		control.Raise(control.Return)
	case "ERR":
		return fmt.Errorf("boom")
	}
	return nil
}

func (e *fakeEnv) Subarray(root string) []string { return e.subKeys[root] }

func TestIfRunsThenBranch(t *testing.T) {
	env := newFakeEnv()
	require.NoError(t, control.If(env, "(1) {then-body}"))
	assert.Equal(t, []string{"then-body"}, env.ran)
}

func TestIfElsifChain(t *testing.T) {
	env := newFakeEnv()
	require.NoError(t, control.If(env, "(0) {a} ELSIF (1) {b} ELSE {c}"))
	assert.Equal(t, []string{"b"}, env.ran)
}

func TestIfFallsThroughToElse(t *testing.T) {
	env := newFakeEnv()
	require.NoError(t, control.If(env, "(0) {a} ELSE {c}"))
	assert.Equal(t, []string{"c"}, env.ran)
}

func TestWhileStopsOnBreak(t *testing.T) {
	env := newFakeEnv()
	env.Assign("x", "1")
	require.NoError(t, control.While(env, "(1) {BREAK}"))
	assert.Equal(t, []string{"BREAK"}, env.ran)
}

func TestDoRunsAtLeastOnce(t *testing.T) {
	env := newFakeEnv()
	require.NoError(t, control.Do(env, "{once} WHILE (0)"))
	assert.Equal(t, []string{"once"}, env.ran)
}

func TestForClassicCountsThreeTimes(t *testing.T) {
	env := newFakeEnv()
	require.NoError(t, control.For(env, "(i = 0, i < 3, i = i + 1) {body}"))
	assert.Equal(t, []string{"body", "body", "body"}, env.ran)
	assert.Equal(t, "3", env.vars["i"])
}

func TestForInBindsEachWord(t *testing.T) {
	env := newFakeEnv()
	require.NoError(t, control.For(env, "x IN (a b c) {body}"))
	assert.Len(t, env.ran, 3)
	assert.Equal(t, "c", env.vars["x"])
}

func TestForFromToByStep(t *testing.T) {
	env := newFakeEnv()
	require.NoError(t, control.For(env, "i FROM 0 TO 10 BY 5 {body}"))
	assert.Equal(t, []string{"body", "body", "body"}, env.ran)
	assert.Equal(t, "10", env.vars["i"])
}

func TestForeachWalksSubarray(t *testing.T) {
	env := newFakeEnv()
	env.subKeys["ROOT"] = []string{"ROOT.A", "ROOT.B"}
	require.NoError(t, control.Foreach(env, "v ROOT {body}"))
	assert.Len(t, env.ran, 2)
	assert.Equal(t, "ROOT.B", env.vars["v"])
}

func TestFeGroupsWordsByVariableCount(t *testing.T) {
	env := newFakeEnv()
	require.NoError(t, control.Fe(env, "(a b c d) x y {body}"))
	assert.Len(t, env.ran, 2)
	assert.Equal(t, "c", env.vars["x"])
	assert.Equal(t, "d", env.vars["y"])
}

func TestFecGroupsByCharacter(t *testing.T) {
	env := newFakeEnv()
	require.NoError(t, control.Fec(env, "(abcd) x {body}"))
	assert.Len(t, env.ran, 4)
	assert.Equal(t, "d", env.vars["x"])
}

func TestSwitchRunsFirstMatchingCase(t *testing.T) {
	env := newFakeEnv()
	require.NoError(t, control.Switch(env, `("bar") { (foo) {nope} (bar) (baz) {yep} }`))
	assert.Equal(t, []string{"yep"}, env.ran)
}

func TestSwitchNoMatchRunsNothing(t *testing.T) {
	env := newFakeEnv()
	require.NoError(t, control.Switch(env, `("zzz") { (foo) {nope} }`))
	assert.Empty(t, env.ran)
}

func TestRepeatRunsNTimes(t *testing.T) {
	env := newFakeEnv()
	require.NoError(t, control.Repeat(env, "3 body"))
	assert.Equal(t, []string{"body", "body", "body"}, env.ran)
}

func TestRepeatStopsOnBreak(t *testing.T) {
	env := newFakeEnv()
	require.NoError(t, control.Repeat(env, "5 BREAK"))
	assert.Equal(t, []string{"BREAK"}, env.ran)
}

func TestWhilePropagatesBodyError(t *testing.T) {
	env := newFakeEnv()
	err := control.While(env, "(1) {ERR}")
	assert.EqualError(t, err, "boom")
}

func TestWhilePropagatesReturnSignal(t *testing.T) {
	env := newFakeEnv()
	assert.Panics(t, func() {
		_ = control.While(env, "(1) {RETURN}")
	}, "/RETURN must unwind past the loop, not be swallowed like /BREAK")
}

func TestIfMissingParenErrors(t *testing.T) {
	env := newFakeEnv()
	err := control.If(env, "nope {body}")
	assert.Error(t, err)
}
