package ircscript_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/ircscript"
)

func TestRegisterIsIdempotent(t *testing.T) {
	r := ircscript.NewLevelRegistry()
	a, ok := r.Register("crap")
	require.True(t, ok)
	b, ok := r.Register("CRAP")
	require.True(t, ok)
	assert.Equal(t, a, b)
}

func TestAliasSharesBit(t *testing.T) {
	r := ircscript.NewLevelRegistry()
	lv, _ := r.Register("MSGS")
	require.True(t, r.Alias("MSG", "MSGS"))

	got, ok := r.Lookup("msg")
	require.True(t, ok)
	assert.Equal(t, lv, got)
}

func TestAliasUnknownExistingFails(t *testing.T) {
	r := ircscript.NewLevelRegistry()
	assert.False(t, r.Alias("X", "NOSUCH"))
}

func TestLevelMaskSetClearHas(t *testing.T) {
	var m ircscript.LevelMask
	m = m.Set(3)
	assert.True(t, m.Has(3))
	m = m.Clear(3)
	assert.False(t, m.Has(3))
}

func TestStrToMaskPositiveAndNegative(t *testing.T) {
	r := ircscript.NewLevelRegistry()
	a, _ := r.Register("MSGS")
	b, _ := r.Register("CRAP")

	mask, rejects := r.StrToMask("MSGS,CRAP")
	assert.Empty(t, rejects)
	assert.True(t, mask.Has(a))
	assert.True(t, mask.Has(b))

	mask, rejects = r.StrToMask("MSGS,-CRAP")
	assert.Empty(t, rejects)
	assert.True(t, mask.Has(a))
	assert.False(t, mask.Has(b))
}

func TestStrToMaskAllAndNone(t *testing.T) {
	r := ircscript.NewLevelRegistry()
	r.Register("MSGS")
	r.Register("CRAP")

	mask, _ := r.StrToMask("ALL")
	assert.Equal(t, r.All(), mask)

	mask, _ = r.StrToMask("ALL,NONE")
	assert.Equal(t, r.None(), mask)
}

func TestStrToMaskCollectsUnknownRejects(t *testing.T) {
	r := ircscript.NewLevelRegistry()
	r.Register("MSGS")
	_, rejects := r.StrToMask("MSGS,BOGUS")
	assert.Equal(t, []string{"BOGUS"}, rejects)
}

func TestMaskToStrPrefersShorterForm(t *testing.T) {
	r := ircscript.NewLevelRegistry()
	a, _ := r.Register("A")
	r.Register("B")
	r.Register("C")

	mask := ircscript.LevelMask(0).Set(a)
	assert.Equal(t, "A", r.MaskToStr(mask))
}

func TestMaskToStrEmptyIsNone(t *testing.T) {
	r := ircscript.NewLevelRegistry()
	r.Register("A")
	assert.Equal(t, "NONE", r.MaskToStr(ircscript.LevelMask(0)))
}

func TestRegisterStopsAtCapacity(t *testing.T) {
	r := ircscript.NewLevelRegistry()
	for i := 0; i < ircscript.MaxLevels; i++ {
		_, ok := r.Register(string(rune('A' + i%26)) + string(rune('0'+i/26)))
		require.True(t, ok)
	}
	_, ok := r.Register("ONE_TOO_MANY")
	assert.False(t, ok)
}
