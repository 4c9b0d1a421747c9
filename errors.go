package ircscript

import (
	"errors"
	"fmt"
)

// haltError marks an error that should stop the current top-level Run
// outright rather than being caught by an enclosing /ON or loop body.
// Ported in spirit from the teacher's identically-named VM halt error:
// wrap, don't replace, so errors.Unwrap still reaches the cause.
type haltError struct{ error }

func (err haltError) Error() string {
	if err.error != nil {
		return fmt.Sprintf("halted: %v", err.error)
	}
	return "halted"
}

func (err haltError) Unwrap() error { return err.error }

// Halt wraps err (which may be nil) so that Engine.Run stops the script
// instead of continuing to the next statement.
func Halt(err error) error { return haltError{err} }

// IsHalt reports whether err (or something it wraps) is a Halt error.
func IsHalt(err error) bool {
	var he haltError
	return errors.As(err, &he)
}

// ErrMaxStackFrames is returned by CallStack.MakeFrame when the stack's
// frame limit would be exceeded; callers pass it back as an ordinary error.
var ErrMaxStackFrames = errors.New("ircscript: max call stack frames exceeded")

// ErrUndefinedSymbol is returned by lookups that require an existing
// symbol (e.g. /ALIAS -, /UNLOAD) when the name has no entry at all.
var ErrUndefinedSymbol = errors.New("ircscript: undefined symbol")

// ErrFrameLocked is returned when a caller attempts to mutate a locked
// call frame's local symbol table.
var ErrFrameLocked = errors.New("ircscript: call frame is locked")

// memLimitError reports that a growable structure (the symbol table's
// backing slices, the call stack) would exceed a configured limit. Modeled
// on the teacher's memLimitError in internals.go.
type memLimitError struct {
	what  string
	limit uint
}

func (err memLimitError) Error() string {
	return fmt.Sprintf("ircscript: %v limit of %d exceeded", err.what, err.limit)
}

func newMemLimitError(what string, limit uint) error {
	return memLimitError{what: what, limit: limit}
}
