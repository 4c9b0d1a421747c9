package keymap_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/ircscript/keymap"
)

func newTree() *keymap.Tree {
	tr := keymap.New(50 * time.Millisecond)
	tr.AddBinding(&keymap.Binding{Name: "SEND_LINE", Kind: keymap.NativeFn})
	tr.AddBinding(&keymap.Binding{Name: "MY_ALIAS", Kind: keymap.ScriptAlias, Alias: "ECHO"})
	return tr
}

func TestBindAndFeedFiresOnUnambiguousByte(t *testing.T) {
	tr := newTree()
	require.True(t, tr.Bind("a", "SEND_LINE", "", "pkg"))

	actions := tr.NewState().Feed('a', time.Now())
	require.Len(t, actions, 1)
	assert.True(t, actions[0].Fire)
	assert.Equal(t, "SEND_LINE", actions[0].Binding.Name)
}

func TestFeedWaitsOnAmbiguousPrefix(t *testing.T) {
	tr := newTree()
	require.True(t, tr.Bind("ab", "SEND_LINE", "", "pkg"))
	require.True(t, tr.Bind("ac", "MY_ALIAS", "stuff", "pkg"))

	st := tr.NewState()
	actions := st.Feed('a', time.Now())
	assert.Empty(t, actions, "single byte 'a' is a prefix of two sequences, must not fire yet")

	actions = st.Feed('b', time.Now())
	require.Len(t, actions, 1)
	assert.Equal(t, "SEND_LINE", actions[0].Binding.Name)
}

func TestFeedTimesOutAndBacktracks(t *testing.T) {
	tr := newTree()
	require.True(t, tr.Bind("ab", "SEND_LINE", "", "pkg"))

	st := tr.NewState()
	t0 := time.Now()
	actions := st.Feed('a', t0)
	assert.Empty(t, actions)

	// feed 'x' long after the timeout: the pending 'a' prefix should be
	// abandoned (no binding at depth 1) before 'x' is considered fresh.
	later := t0.Add(time.Second)
	actions = st.Feed('x', later)
	assert.Empty(t, actions)
}

func TestUnbindRemovesLeafAndCollapsesSubtree(t *testing.T) {
	tr := newTree()
	require.True(t, tr.Bind("ab", "SEND_LINE", "", "pkg"))
	assert.True(t, tr.Unbind("ab"))
	assert.False(t, tr.Unbind("ab"))

	actions := tr.NewState().Feed('a', time.Now())
	assert.Empty(t, actions)
}

func TestBindUnknownBindingFails(t *testing.T) {
	tr := newTree()
	assert.False(t, tr.Bind("z", "NO_SUCH_BINDING", "", "pkg"))
}

func TestSequencesBoundToAndAllBound(t *testing.T) {
	tr := newTree()
	require.True(t, tr.Bind("a", "SEND_LINE", "", "pkg"))
	require.True(t, tr.Bind("b", "SEND_LINE", "", "pkg"))
	require.True(t, tr.Bind("c", "MY_ALIAS", "hi", "pkg"))

	seqs := tr.SequencesBoundTo("SEND_LINE")
	assert.ElementsMatch(t, []string{"a", "b"}, seqs)

	all := tr.AllBound()
	require.Len(t, all, 3)
	var gotC bool
	for _, b := range all {
		if b.Seq == "c" {
			gotC = true
			assert.Equal(t, "MY_ALIAS", b.Name)
			assert.Equal(t, "hi", b.Stuff)
		}
	}
	assert.True(t, gotC)
}

func TestStackPushPopRestoresBinding(t *testing.T) {
	tr := newTree()
	require.True(t, tr.Bind("a", "SEND_LINE", "", "pkg"))

	require.True(t, tr.StackPush("a"))
	require.True(t, tr.Unbind("a"))
	assert.Empty(t, tr.SequencesBoundTo("SEND_LINE"))

	require.True(t, tr.StackPop("a"))
	assert.Equal(t, []string{"a"}, tr.SequencesBoundTo("SEND_LINE"))
}

func TestUnloadPackageClearsOwnedBindings(t *testing.T) {
	tr := newTree()
	require.True(t, tr.Bind("a", "SEND_LINE", "", "pkg1"))
	require.True(t, tr.Bind("b", "SEND_LINE", "", "pkg2"))

	tr.UnloadPackage("pkg1")
	seqs := tr.SequencesBoundTo("SEND_LINE")
	assert.Equal(t, []string{"b"}, seqs)
}

func TestCompressedEscapeSequence(t *testing.T) {
	tr := newTree()
	require.True(t, tr.Bind("^A", "SEND_LINE", "", "pkg"))

	actions := tr.NewState().Feed(0x01, time.Now())
	require.Len(t, actions, 1)
	assert.True(t, actions[0].Fire)
}
