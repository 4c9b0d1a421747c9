package hook_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/ircscript/hook"
)

// fakeHost records every body it is asked to run, for assertions, and
// expands a flexible nick pattern by simple substitution.
type fakeHost struct {
	ran       []string
	announced []string
}

func (h *fakeHost) Expand(s string) (string, error) { return s, nil }

func (h *fakeHost) RunHookBody(body string, args []string) error {
	h.ran = append(h.ran, body)
	return nil
}

func (h *fakeHost) Announce(eventType string, noisy hook.Noise, args []string) {
	h.announced = append(h.announced, eventType)
}

func TestDoHookPicksLongestMatch(t *testing.T) {
	host := &fakeHost{}
	d := hook.New(host)
	d.AddRule("MSG", &hook.Rule{Nick: "*", Body: "generic"})
	d.AddRule("MSG", &hook.Rule{Nick: "alice!*", Body: "specific"})

	suppressed, err := d.DoHook("MSG", "alice!u@h", "hi")
	require.NoError(t, err)
	assert.False(t, suppressed)
	require.Len(t, host.ran, 1)
	assert.Equal(t, "specific", host.ran[0])
}

func TestDoHookSerialsRunInOrder(t *testing.T) {
	host := &fakeHost{}
	d := hook.New(host)
	d.AddRule("JOIN", &hook.Rule{Nick: "*", Body: "two", Serial: 5})
	d.AddRule("JOIN", &hook.Rule{Nick: "*", Body: "one", Serial: 0})

	_, err := d.DoHook("JOIN", "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, host.ran)
}

func TestDoHookSilentSerialZeroSuppresses(t *testing.T) {
	host := &fakeHost{}
	d := hook.New(host)
	d.AddRule("MSG", &hook.Rule{Nick: "*", Body: "x", Noisy: hook.Silent, Serial: 0})

	suppressed, err := d.DoHook("MSG", "carol")
	require.NoError(t, err)
	assert.True(t, suppressed)
}

func TestDoHookNotRuleSuppressesWithoutRunning(t *testing.T) {
	host := &fakeHost{}
	d := hook.New(host)
	d.AddRule("MSG", &hook.Rule{Nick: "*", Body: "never", Not: true, Serial: 0})

	suppressed, err := d.DoHook("MSG", "dave")
	require.NoError(t, err)
	assert.True(t, suppressed)
	assert.Empty(t, host.ran)
}

func TestDoHookNoRecurseDropsReentrantFiring(t *testing.T) {
	host := &recursiveHost{}
	d := hook.New(host)
	host.dispatcher = d
	d.Register("SEND", 0, true)
	d.AddRule("SEND", &hook.Rule{Nick: "*", Body: "outer"})

	_, err := d.DoHook("SEND", "x")
	require.NoError(t, err)
	assert.True(t, host.fired)
	assert.False(t, host.innerFired, "no-recurse must drop the reentrant firing")
}

// recursiveHost fires "SEND" again from inside its own RunHookBody, to
// exercise the no-recurse guard: the nested DoHook call must be dropped
// (no second RunHookBody call) since "SEND" is still mid-firing.
type recursiveHost struct {
	dispatcher *hook.Dispatcher
	fired      bool
	innerFired bool
}

func (h *recursiveHost) Expand(s string) (string, error) { return s, nil }

func (h *recursiveHost) RunHookBody(body string, args []string) error {
	if h.fired {
		h.innerFired = true
		return nil
	}
	h.fired = true
	_, err := h.dispatcher.DoHook("SEND", args...)
	return err
}

func (h *recursiveHost) Announce(eventType string, noisy hook.Noise, args []string) {}

func TestRemoveRulesForPackage(t *testing.T) {
	host := &fakeHost{}
	d := hook.New(host)
	d.AddRule("MSG", &hook.Rule{Nick: "*", Body: "a", Package: "pkg1"})
	d.AddRule("MSG", &hook.Rule{Nick: "*", Body: "b", Package: "pkg2", Serial: 1})

	d.RemoveRulesForPackage("pkg1")
	assert.Len(t, d.Rules("MSG"), 1)
	assert.Equal(t, "b", d.Rules("MSG")[0].Body)
}

func TestStackPushPop(t *testing.T) {
	host := &fakeHost{}
	d := hook.New(host)
	d.AddRule("MSG", &hook.Rule{Nick: "*", Body: "a"})

	d.StackPush("MSG")
	d.AddRule("MSG", &hook.Rule{Nick: "*", Body: "b"})
	assert.Len(t, d.Rules("MSG"), 2)

	ok := d.StackPop("MSG")
	assert.True(t, ok)
	assert.Len(t, d.Rules("MSG"), 1)
	assert.Equal(t, "a", d.Rules("MSG")[0].Body)

	assert.False(t, d.StackPop("MSG"))
}

func TestEventTypesOnlyListsNonEmpty(t *testing.T) {
	host := &fakeHost{}
	d := hook.New(host)
	d.Register("EMPTY", 0, false)
	d.AddRule("MSG", &hook.Rule{Nick: "*", Body: "a"})

	assert.Equal(t, []string{"MSG"}, d.EventTypes())
}

func TestNoiseString(t *testing.T) {
	assert.Equal(t, "silent", hook.Silent.String())
	assert.Equal(t, "quiet", hook.Quiet.String())
	assert.Equal(t, "normal", hook.Normal.String())
}

func TestDoHookAnnouncesNormalRules(t *testing.T) {
	host := &fakeHost{}
	d := hook.New(host)
	d.AddRule("MSG", &hook.Rule{Nick: "*", Body: "x", Noisy: hook.Normal})

	_, err := d.DoHook("MSG", "eve")
	require.NoError(t, err)
	assert.Equal(t, []string{"MSG"}, host.announced)
}

func TestCanonNumericPadding(t *testing.T) {
	host := &fakeHost{}
	d := hook.New(host)
	d.AddRule("5", &hook.Rule{Nick: "*", Body: "numbered"})
	assert.Equal(t, []string{"005"}, d.EventTypes())
}
