package ircscript

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/jcorbin/ircscript/hook"
)

// SaveAlias is one /ALIAS directive's payload.
type SaveAlias struct {
	Name string `yaml:"name"`
	Body string `yaml:"body"`
}

// SaveAssign is one /ASSIGN directive's payload.
type SaveAssign struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// SaveHook is one /ON directive's payload.
type SaveHook struct {
	Type   string `yaml:"type"`
	Serial int    `yaml:"serial,omitempty"`
	Noisy  string `yaml:"noisy"`
	Not    bool   `yaml:"not,omitempty"`
	Nick   string `yaml:"nick"`
	Body   string `yaml:"body"`
}

// SaveBind is one /BIND directive's payload.
type SaveBind struct {
	Seq   string `yaml:"seq"`
	Name  string `yaml:"name"`
	Stuff string `yaml:"stuff,omitempty"`
}

// SaveSetting is one /SET directive's payload.
type SaveSetting struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// SaveSnapshot is the full state /SAVE walks, shared by both the directive
// writer and the optional YAML companion dump.
type SaveSnapshot struct {
	Aliases  []SaveAlias   `yaml:"aliases,omitempty"`
	Assigns  []SaveAssign  `yaml:"assigns,omitempty"`
	Hooks    []SaveHook    `yaml:"hooks,omitempty"`
	Binds    []SaveBind    `yaml:"binds,omitempty"`
	Settings []SaveSetting `yaml:"settings,omitempty"`
}

// snapshotAliases walks the global symbol table for every live, non-stub
// user command.
func (eng *Engine) snapshotAliases() []SaveAlias {
	var out []SaveAlias
	for _, s := range eng.Globals.All() {
		if s.UserCmd != nil && s.UserCmd.Stub == "" {
			out = append(out, SaveAlias{Name: s.Name, Body: s.UserCmd.Body})
		}
	}
	return out
}

// snapshotAssigns walks the global symbol table for every live, non-stub
// user variable.
func (eng *Engine) snapshotAssigns() []SaveAssign {
	var out []SaveAssign
	for _, s := range eng.Globals.All() {
		if s.UserVar != nil && s.UserVar.Stub == "" {
			out = append(out, SaveAssign{Name: s.Name, Value: s.UserVar.Value})
		}
	}
	return out
}

// snapshotHooks walks every event type with live rules.
func (eng *Engine) snapshotHooks() []SaveHook {
	var out []SaveHook
	for _, typ := range eng.Hooks.EventTypes() {
		for _, r := range eng.Hooks.Rules(typ) {
			out = append(out, SaveHook{
				Type: typ, Serial: r.Serial, Noisy: r.Noisy.String(),
				Not: r.Not, Nick: r.Nick, Body: r.Body,
			})
		}
	}
	return out
}

// snapshotBinds walks every bound keymap leaf.
func (eng *Engine) snapshotBinds() []SaveBind {
	var out []SaveBind
	for _, b := range eng.Keys.AllBound() {
		out = append(out, SaveBind{Seq: b.Seq, Name: b.Name, Stuff: b.Stuff})
	}
	return out
}

// snapshotSettings walks the global symbol table for every live setting,
// builtin or /SET -CREATEd.
func (eng *Engine) snapshotSettings() []SaveSetting {
	var out []SaveSetting
	for _, s := range eng.Globals.All() {
		if s.BuiltinVar != nil {
			out = append(out, SaveSetting{Name: s.Name, Value: s.BuiltinVar.String()})
		}
	}
	return out
}

// Snapshot gathers the full five-part state /SAVE walks, running each
// subsystem's walk concurrently; the walks only read engine state (three
// of them read the same global symbol table).
func (eng *Engine) Snapshot() *SaveSnapshot {
	snap := &SaveSnapshot{}
	var eg errgroup.Group
	eg.Go(func() error { snap.Aliases = eng.snapshotAliases(); return nil })
	eg.Go(func() error { snap.Assigns = eng.snapshotAssigns(); return nil })
	eg.Go(func() error { snap.Hooks = eng.snapshotHooks(); return nil })
	eg.Go(func() error { snap.Binds = eng.snapshotBinds(); return nil })
	eg.Go(func() error { snap.Settings = eng.snapshotSettings(); return nil })
	eg.Wait() // nolint:errcheck // every Go func above always returns nil
	return snap
}

// noisyToken renders a hook noise name back to /ON's prefix grammar.
func noisyToken(name string) string {
	switch name {
	case hook.Silent.String():
		return "^"
	case hook.Quiet.String():
		return "-"
	default:
		return ""
	}
}

// WriteDirectives renders snap as one /ALIAS, /ASSIGN, /ON, /BIND, /SET
// directive per object, in that fixed order, producing a script that
// recreates the same state on reload.
func (snap *SaveSnapshot) WriteDirectives(w *bytes.Buffer) {
	for _, a := range snap.Aliases {
		fmt.Fprintf(w, "ALIAS %s {%s}\n", a.Name, a.Body)
	}
	for _, a := range snap.Assigns {
		fmt.Fprintf(w, "ASSIGN %s %s\n", a.Name, a.Value)
	}
	for _, h := range snap.Hooks {
		var sb strings.Builder
		if h.Serial != 0 {
			fmt.Fprintf(&sb, "#%d", h.Serial)
		}
		sb.WriteString(noisyToken(h.Noisy))
		sb.WriteString(h.Type)
		sb.WriteByte(' ')
		if h.Not {
			sb.WriteByte('!')
		}
		sb.WriteString(h.Nick)
		fmt.Fprintf(w, "ON %s {%s}\n", sb.String(), h.Body)
	}
	for _, b := range snap.Binds {
		if b.Stuff != "" {
			fmt.Fprintf(w, "BIND %s %s %s\n", b.Seq, b.Name, b.Stuff)
		} else {
			fmt.Fprintf(w, "BIND %s %s\n", b.Seq, b.Name)
		}
	}
	for _, s := range snap.Settings {
		fmt.Fprintf(w, "SET %s %s\n", s.Name, s.Value)
	}
}

// cmdSave implements "/SAVE path [-YAML]": walks every live subsystem and
// writes one directive per object to path, plus an optional path+".yaml"
// companion dump of the same snapshot for tooling that wants structured
// access instead of re-parsing directives.
func cmdSave(eng *Engine, argstr string) error {
	path, opt := splitCommand(argstr)
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("ircscript: /SAVE: path required")
	}
	withYAML := strings.EqualFold(strings.TrimSpace(opt), "-YAML")

	snap := eng.Snapshot()

	var buf bytes.Buffer
	snap.WriteDirectives(&buf)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("ircscript: /SAVE: %w", err)
	}

	if withYAML {
		out, err := yaml.Marshal(snap)
		if err != nil {
			return fmt.Errorf("ircscript: /SAVE -YAML: %w", err)
		}
		if err := os.WriteFile(path+".yaml", out, 0644); err != nil {
			return fmt.Errorf("ircscript: /SAVE -YAML: %w", err)
		}
	}
	return nil
}
