package ircscript_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/ircscript"
)

func TestSettingStringRendersPerType(t *testing.T) {
	b := &ircscript.Setting{Type: ircscript.SettingBool, BoolVal: true}
	assert.Equal(t, "ON", b.String())

	b.BoolVal = false
	assert.Equal(t, "OFF", b.String())

	c := &ircscript.Setting{Type: ircscript.SettingChar, CharVal: 'x'}
	assert.Equal(t, "x", c.String())

	i := &ircscript.Setting{Type: ircscript.SettingInt, IntVal: 42}
	assert.Equal(t, "42", i.String())

	s := &ircscript.Setting{Type: ircscript.SettingString, StringVal: "hi"}
	assert.Equal(t, "hi", s.String())
}

func TestSetStringParsesBoolVariants(t *testing.T) {
	eng := ircscript.New()
	s := &ircscript.Setting{Name: "FOO", Type: ircscript.SettingBool}
	require.NoError(t, eng.SetString(s, "ON"))
	assert.True(t, s.BoolVal)

	require.NoError(t, eng.SetString(s, "anything-else"))
	assert.False(t, s.BoolVal)
}

func TestSetStringFiresOnChange(t *testing.T) {
	eng := ircscript.New()
	var got string
	s := &ircscript.Setting{
		Name: "FOO", Type: ircscript.SettingString,
		OnChange: func(eng *ircscript.Engine, s *ircscript.Setting) error {
			got = s.StringVal
			return nil
		},
	}
	require.NoError(t, eng.SetString(s, "bar"))
	assert.Equal(t, "bar", got)
}

func TestSetStringOnChangeScriptSeesNewValueAsArgs(t *testing.T) {
	eng := ircscript.New()
	require.NoError(t, eng.CreateSetting("TRACKED", ircscript.SettingString, "ASSIGN LAST_SET $*"))

	sym, ok := eng.Globals.Lookup("TRACKED")
	require.True(t, ok)
	require.NoError(t, eng.SetString(sym.BuiltinVar, "hello"))

	v, ok := eng.Lookup("LAST_SET")
	require.True(t, ok)
	assert.Equal(t, "hello", v)
}

func TestCreateSettingReplacesOnlyNonBuiltin(t *testing.T) {
	eng := ircscript.New()
	require.NoError(t, eng.CreateSetting("CUSTOM", ircscript.SettingInt, ""))
	require.NoError(t, eng.CreateSetting("CUSTOM", ircscript.SettingString, ""))

	sym, ok := eng.Globals.Lookup("CUSTOM")
	require.True(t, ok)
	assert.Equal(t, ircscript.SettingString, sym.BuiltinVar.Type)
}
