package ircscript

import "fmt"

// SettingType discriminates a Setting's stored value.
type SettingType int

const (
	SettingBool SettingType = iota
	SettingChar
	SettingInt
	SettingString
)

// SettingChangeFunc is a native on-change callback.
type SettingChangeFunc func(eng *Engine, s *Setting) error

// Setting is a typed built-in variable record: a `/SET`table
// binding backed by a native type, with an optional native or scripted
// on-change hook and reentrancy guarding.
type Setting struct {
	Name string
	Type SettingType

	BoolVal   bool
	CharVal   byte
	IntVal    int64
	StringVal string

	OnChange       SettingChangeFunc
	OnChangeScript string // eval'd with the new value as $*

	Builtin bool // false for /SET -CREATE-defined settings
	pending bool // guards against re-entrant on-change recursion
}

// String renders the setting's current value the way /SET display does.
func (s *Setting) String() string {
	switch s.Type {
	case SettingBool:
		if s.BoolVal {
			return "ON"
		}
		return "OFF"
	case SettingChar:
		return string(s.CharVal)
	case SettingInt:
		return fmt.Sprintf("%d", s.IntVal)
	default:
		return s.StringVal
	}
}

// SetString parses raw per s.Type and installs it, firing OnChange (native
// first, then scripted) unless a change is already pending for this
// setting.
func (eng *Engine) SetString(s *Setting, raw string) error {
	if s.pending {
		return nil
	}
	switch s.Type {
	case SettingBool:
		switch raw {
		case "ON", "on", "1", "YES", "yes":
			s.BoolVal = true
		default:
			s.BoolVal = false
		}
	case SettingChar:
		if len(raw) > 0 {
			s.CharVal = raw[0]
		} else {
			s.CharVal = 0
		}
	case SettingInt:
		var n int64
		fmt.Sscanf(raw, "%d", &n)
		s.IntVal = n
	case SettingString:
		s.StringVal = raw
	}

	s.pending = true
	defer func() { s.pending = false }()

	if s.OnChange != nil {
		if err := s.OnChange(eng, s); err != nil {
			return err
		}
	}
	if s.OnChangeScript != "" {
		if err := eng.EvalScriptWithArgs(s.OnChangeScript, raw); err != nil {
			return err
		}
	}
	return nil
}

// CreateSetting implements "/SET -CREATE name TYPE {script}": a
// non-builtin setting replaces any existing non-builtin setting of the
// same name.
func (eng *Engine) CreateSetting(name string, typ SettingType, onChangeScript string) error {
	if existing, ok := eng.Globals.Lookup(name); ok && existing.BuiltinVar != nil && !existing.BuiltinVar.Builtin {
		existing.BuiltinVar = nil
	}
	s := &Setting{Name: name, Type: typ, OnChangeScript: onChangeScript}
	return eng.Globals.AddBuiltinVariable(name, s)
}
