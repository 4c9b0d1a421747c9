package ircscript_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/ircscript"
)

func TestEchoWritesToOutput(t *testing.T) {
	var buf bytes.Buffer
	eng := ircscript.New(ircscript.WithOutput(&buf))
	require.NoError(t, eng.Run("/echo hello"))
	assert.Equal(t, "hello\n", buf.String())
}

func TestAssignAndLookupGlobal(t *testing.T) {
	eng := ircscript.New()
	require.NoError(t, eng.Run("/assign FOO bar"))
	v, ok := eng.Lookup("FOO")
	require.True(t, ok)
	assert.Equal(t, "bar", v)
}

func TestAliasDefinesUserCommand(t *testing.T) {
	var buf bytes.Buffer
	eng := ircscript.New(ircscript.WithOutput(&buf))
	require.NoError(t, eng.Run("/alias greet {echo hi there}"))
	require.NoError(t, eng.Run("/greet"))
	assert.Equal(t, "hi there\n", buf.String())
}

func TestAliasEmptyBodyDeletes(t *testing.T) {
	eng := ircscript.New()
	require.NoError(t, eng.Run("/alias greet {echo hi}"))
	require.NoError(t, eng.Run("/alias greet"))
	err := eng.Run("/greet")
	assert.Error(t, err)
}

func TestUnknownCommandErrors(t *testing.T) {
	eng := ircscript.New()
	err := eng.Run("/nosuchcommand")
	assert.Error(t, err)
}

func TestLocalVariableShadowsGlobal(t *testing.T) {
	var buf bytes.Buffer
	eng := ircscript.New(ircscript.WithOutput(&buf))
	require.NoError(t, eng.Run("/assign X global"))
	require.NoError(t, eng.Run("/alias showx {local X;assign X local;echo $X}"))
	require.NoError(t, eng.Run("/showx"))
	assert.Equal(t, "local\n", buf.String())

	v, ok := eng.Lookup("X")
	require.True(t, ok)
	assert.Equal(t, "global", v, "the outer global X must survive the call unmodified")
}

func TestReturnSetsFunctionReturn(t *testing.T) {
	eng := ircscript.New()
	require.NoError(t, eng.Globals.DefineUserCommand("DOUBLER", nil, "return $*$*", ""))
	out, err := eng.CallFunction("DOUBLER", "ab")
	require.NoError(t, err)
	assert.Equal(t, "abab", out)
}

func TestUnloadRemovesPackageOwnedCommands(t *testing.T) {
	eng := ircscript.New()
	require.NoError(t, eng.Globals.DefineUserCommand("FROMPKG", nil, "echo hi", "mypkg"))
	require.NoError(t, eng.Run("/unload mypkg"))

	err := eng.Run("/frompkg")
	assert.Error(t, err)
}

func TestSwapExchangesValues(t *testing.T) {
	eng := ircscript.New()
	require.NoError(t, eng.Assign("A", "1"))
	require.NoError(t, eng.Assign("B", "2"))
	require.NoError(t, eng.Swap("A", "B"))

	a, _ := eng.Lookup("A")
	b, _ := eng.Lookup("B")
	assert.Equal(t, "2", a)
	assert.Equal(t, "1", b)
}

func TestWithArgsSeedsTopLevelArgs(t *testing.T) {
	eng := ircscript.New(ircscript.WithArgs([]string{"one", "two"}))
	assert.Equal(t, "one two", eng.Args())
}

func TestMaxStackFramesOption(t *testing.T) {
	eng := ircscript.New(ircscript.WithMaxStackFrames(1))
	require.NoError(t, eng.Globals.DefineUserCommand("RECURSE", nil, "recurse", ""))
	err := eng.Run("/recurse")
	assert.Error(t, err)
}

func TestWordAndWordRange(t *testing.T) {
	eng := ircscript.New(ircscript.WithArgs([]string{"a", "b", "c"}))
	w, ok := eng.Word(2)
	require.True(t, ok)
	assert.Equal(t, "b", w)

	assert.Equal(t, "b c", eng.WordRange(2, -1))
	assert.Equal(t, "", eng.WordRange(5, -1))
}

func TestPromptWithoutCollaboratorErrors(t *testing.T) {
	eng := ircscript.New()
	_, err := eng.Prompt("> ", false)
	assert.Error(t, err)
}

func TestPromptDelegatesToCollaborator(t *testing.T) {
	eng := ircscript.New(ircscript.WithPrompt(func(prompt string, key bool) (string, error) {
		return "reply:" + prompt, nil
	}))
	out, err := eng.Prompt("hi", false)
	require.NoError(t, err)
	assert.Equal(t, "reply:hi", out)
}

func TestArrayStoreGetSetAndMatches(t *testing.T) {
	a := ircscript.NewArrayStore()
	a.SetItem("arr", "foo", "1")
	a.SetItem("arr", "bar", "2")

	v, ok := a.GetItem("arr", "foo")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok = a.GetItem("arr", "missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"bar", "foo"}, a.GetMatches("arr", "*"))
}
