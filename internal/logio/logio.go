// Package logio adapts the teacher's mark-aligned trace logging (from
// internal/logio and core.go's "logging" embed) into a reusable mixin: the
// expander calls Step for each expando substitution, and it costs nothing
// when no sink is attached.
package logio

import (
	"fmt"
	"strings"
)

// Trace is embedded by components that want cheap, optional step tracing.
// The zero value is a valid, silent Trace.
type Trace struct {
	Logf func(mess string, args ...interface{})

	markWidth int
}

// SetSink installs fn as the destination for future Logf calls, or clears
// tracing entirely when fn is nil.
func (t *Trace) SetSink(fn func(mess string, args ...interface{})) {
	t.Logf = fn
}

// Enabled reports whether a sink is attached.
func (t *Trace) Enabled() bool { return t.Logf != nil }

// Step emits one aligned trace line tagged with mark, formatting mess/args
// with fmt.Sprintf when args is non-empty. A no-op if no sink is attached.
func (t *Trace) Step(mark, mess string, args ...interface{}) {
	if t.Logf == nil {
		return
	}
	if n := t.markWidth - len(mark); n > 0 {
		mark = strings.Repeat(" ", n) + mark
	} else if n < 0 {
		t.markWidth = len(mark)
	}
	if len(args) > 0 {
		mess = fmt.Sprintf(mess, args...)
	}
	t.Logf("%v %v", mark, mess)
}
