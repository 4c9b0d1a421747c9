package ircscript_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/ircscript"
)

func TestMakeFrameAndPop(t *testing.T) {
	cs := ircscript.NewCallStack(0)
	assert.Equal(t, 0, cs.Depth())

	idx, err := cs.MakeFrame("main")
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 1, cs.Depth())
	assert.Equal(t, "main", cs.Current().Name)

	cs.Pop()
	assert.Equal(t, 0, cs.Depth())
}

func TestAnonymousFrameChainsToParent(t *testing.T) {
	cs := ircscript.NewCallStack(0)
	_, err := cs.MakeFrame("outer")
	require.NoError(t, err)
	idx, err := cs.MakeFrame("")
	require.NoError(t, err)

	assert.Equal(t, 0, cs.Current().Parent)
	_ = idx
}

func TestMakeFrameRespectsLimit(t *testing.T) {
	cs := ircscript.NewCallStack(1)
	_, err := cs.MakeFrame("a")
	require.NoError(t, err)

	_, err = cs.MakeFrame("b")
	assert.ErrorIs(t, err, ircscript.ErrMaxStackFrames)
}

func TestFunctionReturnFrameTracksNamedFrames(t *testing.T) {
	cs := ircscript.NewCallStack(0)
	named, err := cs.MakeFrame("call")
	require.NoError(t, err)
	_, err = cs.MakeFrame("")
	require.NoError(t, err)

	assert.Equal(t, named, cs.FunctionReturnFrame())

	cs.Pop() // pop anonymous
	cs.Pop() // pop named
	assert.Equal(t, ircscript.NoParent, cs.FunctionReturnFrame())
}

func TestLockUnlock(t *testing.T) {
	cs := ircscript.NewCallStack(0)
	_, err := cs.MakeFrame("a")
	require.NoError(t, err)

	cs.Lock()
	assert.True(t, cs.Current().Locked)
	cs.Unlock()
	assert.False(t, cs.Current().Locked)
}

func TestSetUnsetCurrentCommand(t *testing.T) {
	cs := ircscript.NewCallStack(0)
	_, err := cs.MakeFrame("a")
	require.NoError(t, err)

	cs.SetCurrentCommand("/echo hi")
	assert.Equal(t, "/echo hi", cs.Current().Current)
	cs.UnsetCurrentCommand()
	assert.Equal(t, "", cs.Current().Current)
}

func TestDumpWritesNewestFirst(t *testing.T) {
	cs := ircscript.NewCallStack(0)
	_, err := cs.MakeFrame("outer")
	require.NoError(t, err)
	cs.SetCurrentCommand("outer-cmd")
	_, err = cs.MakeFrame("inner")
	require.NoError(t, err)
	cs.SetCurrentCommand("inner-cmd")

	var buf bytes.Buffer
	cs.Dump(&buf)
	out := buf.String()

	innerIdx := bytes.Index([]byte(out), []byte("inner-cmd"))
	outerIdx := bytes.Index([]byte(out), []byte("outer-cmd"))
	assert.True(t, innerIdx >= 0 && outerIdx >= 0 && innerIdx < outerIdx, "newest frame must be dumped first")
}

func TestBlessCurrentMakesFrameAnonymous(t *testing.T) {
	cs := ircscript.NewCallStack(0)
	_, err := cs.MakeFrame("a")
	require.NoError(t, err)
	cs.BlessCurrent()

	assert.Equal(t, "", cs.Current().Name)
	assert.Equal(t, ircscript.NoParent, cs.FunctionReturnFrame())
}
