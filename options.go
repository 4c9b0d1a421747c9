package ircscript

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/jcorbin/ircscript/internal/logio"
)

// EngineOption configures an Engine at construction time, mirroring the
// teacher's VMOption/options/noption trio exactly.
type EngineOption interface{ apply(eng *Engine) }

// EngineOptions flattens a list of options into one, collapsing nested
// option-lists the same way the teacher's VMOptions does.
func EngineOptions(opts ...EngineOption) EngineOption {
	var res options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil, noption:
		case options:
			res = append(res, impl...)
		default:
			res = append(res, opt)
		}
	}
	switch len(res) {
	case 0:
		return noption{}
	case 1:
		return res[0]
	default:
		return res
	}
}

type noption struct{}

func (noption) apply(eng *Engine) {}

type options []EngineOption

func (opts options) apply(eng *Engine) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(eng)
		}
	}
}

type withLogfn func(mess string, args ...interface{})

func (logfn withLogfn) apply(eng *Engine) { eng.trace.SetSink(logfn) }

// WithLogf installs a plain printf-style trace sink, exactly like the
// teacher's WithLogf(logfn).
func WithLogf(logfn func(mess string, args ...interface{})) EngineOption { return withLogfn(logfn) }

type withLogrus struct{ log logrus.FieldLogger }

func (o withLogrus) apply(eng *Engine) {
	log := o.log
	eng.trace.SetSink(func(mess string, args ...interface{}) {
		log.Tracef(mess, args...)
	})
}

// WithLogrus backs the trace sink with a logrus.FieldLogger instead of a
// bare printf function: the teacher's hand-rolled mark-alignment
// (internal/logio) remains the formatting layer, logrus is just the sink.
func WithLogrus(log logrus.FieldLogger) EngineOption { return withLogrus{log} }

type withOutput struct{ w io.Writer }

func (o withOutput) apply(eng *Engine) { eng.out = o.w }

// WithOutput sets the engine's default message-level output sink (used by
// the "say"/"echo" builtins added in builtins.go).
func WithOutput(w io.Writer) EngineOption { return withOutput{w} }

type withLogWriter struct{ w *logio.Writer }

func (o withLogWriter) apply(eng *Engine) { eng.out = o.w }

// WithLogWriter routes "say"/"echo" output through a leveled logging
// function instead of a plain io.Writer: each line gets its own logf
// call, buffered and split the same way the teacher's internal/logio
// wraps a log line around an arbitrary writer. Useful for a host that
// wants script output folded into its structured log stream rather
// than written to a separate stream.
func WithLogWriter(logf func(mess string, args ...interface{})) EngineOption {
	return withLogWriter{&logio.Writer{Logf: logf}}
}

type withMaxStackFrames uint

func (o withMaxStackFrames) apply(eng *Engine) { eng.Stack.limit = uint(o) }

// WithMaxStackFrames overrides DefaultMaxStackFrames.
func WithMaxStackFrames(limit uint) EngineOption { return withMaxStackFrames(limit) }

type withUUIDRefnums struct{}

func (withUUIDRefnums) apply(eng *Engine) { eng.uuidRefnums = true }

// WithUUIDRefnums switches ignore-item and lastlog-entry refnum minting
// from an incrementing counter to a github.com/google/uuid-backed value,
// for global uniqueness across process restarts.
func WithUUIDRefnums() EngineOption { return withUUIDRefnums{} }

type withPromptFunc func(prompt string, key bool) (string, error)

func (fn withPromptFunc) apply(eng *Engine) { eng.PromptFunc = fn }

// WithPrompt wires the host's synchronous line/key prompt collaborator.
func WithPrompt(fn func(prompt string, key bool) (string, error)) EngineOption {
	return withPromptFunc(fn)
}

type withHistory func(pat string) (string, bool)

func (fn withHistory) apply(eng *Engine) { eng.History = fn }

// WithHistory wires the host's "$!pat!" command-history lookup.
func WithHistory(fn func(pat string) (string, bool)) EngineOption { return withHistory(fn) }

type withArgs []string

func (a withArgs) apply(eng *Engine) { eng.args = []string(a) }

// WithArgs seeds the top-level frame's $* words, for a host that passes a
// script its own command-line arguments.
func WithArgs(args []string) EngineOption { return withArgs(args) }
