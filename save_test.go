package ircscript_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/ircscript"
	"github.com/jcorbin/ircscript/keymap"
)

func TestSnapshotCollectsAliasesAssignsAndSettings(t *testing.T) {
	eng := ircscript.New()
	require.NoError(t, eng.Run("/alias greet {echo hi}"))
	require.NoError(t, eng.Run("/assign FOO bar"))
	require.NoError(t, eng.Run("/set lastlog 100"))

	snap := eng.Snapshot()

	require.Len(t, snap.Aliases, 1)
	assert.Equal(t, "GREET", snap.Aliases[0].Name)
	assert.Equal(t, "echo hi", snap.Aliases[0].Body, "stored body must be bare, with no surrounding braces")

	require.Len(t, snap.Assigns, 1)
	assert.Equal(t, "FOO", snap.Assigns[0].Name)
	assert.Equal(t, "bar", snap.Assigns[0].Value)

	var lastlog *ircscript.SaveSetting
	for i := range snap.Settings {
		if snap.Settings[i].Name == "LASTLOG" {
			lastlog = &snap.Settings[i]
		}
	}
	require.NotNil(t, lastlog, "builtin settings must always appear in the snapshot")
	assert.Equal(t, "100", lastlog.Value)
}

func TestSnapshotCollectsHooksAndBinds(t *testing.T) {
	eng := ircscript.New()
	require.NoError(t, eng.Run("/on #5^msg !nobody {echo got it}"))

	eng.Keys.AddBinding(&keymap.Binding{Name: "MY_ALIAS", Kind: keymap.ScriptAlias, Alias: "ECHO"})
	require.NoError(t, eng.Run("/bind ^A MY_ALIAS hi"))

	snap := eng.Snapshot()

	require.Len(t, snap.Hooks, 1)
	h := snap.Hooks[0]
	assert.Equal(t, "MSG", h.Type)
	assert.Equal(t, 5, h.Serial)
	assert.True(t, h.Not)
	assert.Equal(t, "nobody", h.Nick)
	assert.Equal(t, "echo got it", h.Body)

	require.Len(t, snap.Binds, 1)
	assert.Equal(t, "^A", snap.Binds[0].Seq)
	assert.Equal(t, "MY_ALIAS", snap.Binds[0].Name)
	assert.Equal(t, "hi", snap.Binds[0].Stuff)
}

func TestWriteDirectivesRendersFixedOrder(t *testing.T) {
	snap := &ircscript.SaveSnapshot{
		Aliases:  []ircscript.SaveAlias{{Name: "GREET", Body: "echo hi"}},
		Assigns:  []ircscript.SaveAssign{{Name: "FOO", Value: "bar"}},
		Hooks:    []ircscript.SaveHook{{Type: "MSG", Serial: 5, Noisy: "silent", Not: true, Nick: "nobody", Body: "echo got it"}},
		Binds:    []ircscript.SaveBind{{Seq: "^A", Name: "MY_ALIAS", Stuff: "hi"}},
		Settings: []ircscript.SaveSetting{{Name: "LASTLOG", Value: "100"}},
	}

	var buf bytes.Buffer
	snap.WriteDirectives(&buf)

	want := "ALIAS GREET {echo hi}\n" +
		"ASSIGN FOO bar\n" +
		"ON #5^MSG !nobody {echo got it}\n" +
		"BIND ^A MY_ALIAS hi\n" +
		"SET LASTLOG 100\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteDirectivesOmitsStuffWhenEmpty(t *testing.T) {
	snap := &ircscript.SaveSnapshot{
		Binds: []ircscript.SaveBind{{Seq: "^A", Name: "MY_ALIAS"}},
	}
	var buf bytes.Buffer
	snap.WriteDirectives(&buf)
	assert.Equal(t, "BIND ^A MY_ALIAS\n", buf.String())
}

func TestCmdSaveWritesReloadableScript(t *testing.T) {
	eng := ircscript.New()
	require.NoError(t, eng.Run("/alias greet {echo hi}"))
	require.NoError(t, eng.Run("/assign FOO bar"))

	dir := t.TempDir()
	path := filepath.Join(dir, "saved.ircscript")
	require.NoError(t, eng.Run("/save "+path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ALIAS GREET {echo hi}\n")
	assert.Contains(t, string(data), "ASSIGN FOO bar\n")

	_, err = os.Stat(path + ".yaml")
	assert.True(t, os.IsNotExist(err), "no -YAML flag was given, so no companion file should be written")

	reloaded := ircscript.New()
	require.NoError(t, reloaded.Dispatch(string(data)))
	v, ok := reloaded.Lookup("FOO")
	require.True(t, ok)
	assert.Equal(t, "bar", v)
}

func TestCmdSaveYAMLWritesCompanionFile(t *testing.T) {
	eng := ircscript.New()
	require.NoError(t, eng.Run("/assign FOO bar"))

	dir := t.TempDir()
	path := filepath.Join(dir, "saved.ircscript")
	require.NoError(t, eng.Run("/save "+path+" -YAML"))

	data, err := os.ReadFile(path + ".yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: FOO")
	assert.Contains(t, string(data), "value: bar")
}

func TestCmdSaveRequiresPath(t *testing.T) {
	eng := ircscript.New()
	err := eng.Run("/save")
	assert.Error(t, err)
}
