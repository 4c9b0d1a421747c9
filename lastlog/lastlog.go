// Package lastlog implements the per-window scrollback ring and the
// /LASTLOG filter pipeline. Grounded on the fixed filter-order it
// describes; uses container/list for the doubly linked record chain.
package lastlog

import (
	"container/list"
	"regexp"
	"strings"
	"time"

	"github.com/jcorbin/ircscript/expand"
	"github.com/jcorbin/ircscript/internal/wildcard"
)

// Entry is one lastlog record.
type Entry struct {
	Refnum    uint
	Level     uint
	Target    string
	Message   string
	Timestamp time.Time
	Window    string
	Visible   bool
}

// Window is one window's ring buffer: a size-capped doubly linked list of
// entries, oldest at the front.
type Window struct {
	Name    string
	Cap     int
	entries *list.List // of *Entry
}

// NewWindow returns an empty window with the given visible-line cap.
func NewWindow(name string, capLines int) *Window {
	return &Window{Name: name, Cap: capLines, entries: list.New()}
}

// Store owns every window plus the monotonic refnum counter.
type Store struct {
	windows    map[string]*Window
	nextRef    uint
	refnumFunc func() uint
}

// New returns an empty Store.
func New() *Store { return &Store{windows: map[string]*Window{}, nextRef: 1} }

// SetRefnumFunc overrides refnum minting with fn, for hosts that want
// globally-unique (e.g. UUID-backed) refnums instead of the default
// per-process incrementing counter.
func (s *Store) SetRefnumFunc(fn func() uint) { s.refnumFunc = fn }

func (s *Store) nextRefnum() uint {
	if s.refnumFunc != nil {
		return s.refnumFunc()
	}
	n := s.nextRef
	s.nextRef++
	return n
}

// Window returns (creating if necessary) the named window's ring.
func (s *Store) Window(name string, capLines int) *Window {
	w, ok := s.windows[name]
	if !ok {
		w = NewWindow(name, capLines)
		s.windows[name] = w
	}
	return w
}

// Append pushes a new entry onto window, evicting the oldest entry if the
// cap is exceeded.
func (s *Store) Append(window string, level uint, target, message string, now time.Time) *Entry {
	w := s.Window(window, 0)
	e := &Entry{
		Refnum: s.nextRefnum(), Level: level, Target: target, Message: message,
		Timestamp: now, Window: window, Visible: true,
	}
	w.entries.PushBack(e)
	if w.Cap > 0 {
		for w.entries.Len() > w.Cap {
			w.entries.Remove(w.entries.Front())
		}
	}
	return e
}

// All returns window's entries oldest-first.
func (w *Window) All() []*Entry {
	out := make([]*Entry, 0, w.entries.Len())
	for el := w.entries.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*Entry))
	}
	return out
}

// Query is the /LASTLOG filter pipeline's parameter set:
// applied in fixed order skip -> number -> level -> literal -> regex ->
// ignore -> target -> max.
type Query struct {
	Skip    int
	Number  int // 0 means unbounded
	Mask    func(level uint) bool
	Literal string // wildcard include
	Regex   *regexp.Regexp
	Ignore  string // wildcard exclude
	Target  string
	Max     int // 0 means unbounded
	Reverse bool
}

// Run applies q's pipeline to window's entries, returning the matches in
// request order (oldest->newest unless Reverse).
func (w *Window) Run(q Query) []*Entry {
	all := w.All()

	if q.Skip > 0 && q.Skip < len(all) {
		all = all[q.Skip:]
	} else if q.Skip >= len(all) {
		all = nil
	}

	if q.Number > 0 && q.Number < len(all) {
		all = all[:q.Number]
	}

	filtered := all[:0]
	for _, e := range all {
		if q.Mask != nil && !q.Mask(e.Level) {
			continue
		}
		if q.Literal != "" && !wildcard.Match(q.Literal, e.Message) {
			continue
		}
		if q.Regex != nil && !q.Regex.MatchString(e.Message) {
			continue
		}
		if q.Ignore != "" && wildcard.Match(q.Ignore, e.Message) {
			continue
		}
		if q.Target != "" && !strings.EqualFold(q.Target, e.Target) {
			continue
		}
		filtered = append(filtered, e)
	}

	if q.Max > 0 && q.Max < len(filtered) {
		filtered = filtered[len(filtered)-q.Max:]
	}

	if q.Reverse {
		reversed := make([]*Entry, len(filtered))
		for i, e := range filtered {
			reversed[len(filtered)-1-i] = e
		}
		return reversed
	}
	return filtered
}

// RewriteEnv is the narrow expand.Env-like contract -REWRITE needs: bind
// the matched entry's fields as positional $* words and run the expando.
type RewriteEnv = expand.Env

// Rewrite runs expando through the text expander with entry's fields
// bound as positional words ($1=target $2=message, etc. -- the host's
// expand.Env.Word/Args implementation is responsible for that binding;
// Rewrite only drives the expansion itself).
func Rewrite(expando string, env RewriteEnv) (string, error) {
	res, err := expand.Expand(expando, env, false, expand.Options{})
	if err != nil {
		return "", err
	}
	return res.Out, nil
}

// Context returns the `before` entries preceding and `after` entries
// following e within window, for -CONTEXT.
func (w *Window) Context(e *Entry, before, after int) (pre, post []*Entry) {
	all := w.All()
	idx := -1
	for i, it := range all {
		if it == e {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil
	}
	start := idx - before
	if start < 0 {
		start = 0
	}
	end := idx + after + 1
	if end > len(all) {
		end = len(all)
	}
	return all[start:idx], all[idx+1 : end]
}

// MoveAll moves every entry in fromWindow to toWindow. It returns nothing
// and flags neither window; ReconstituteScrollback re-renders a window
// when the caller asks for it.
func (s *Store) MoveAll(fromWindow, toWindow string) {
	from := s.Window(fromWindow, 0)
	to := s.Window(toWindow, 0)
	for el := from.entries.Front(); el != nil; {
		next := el.Next()
		e := el.Value.(*Entry)
		e.Window = toWindow
		to.entries.PushBack(e)
		from.entries.Remove(el)
		el = next
	}
}

// MoveMatching moves every entry in fromWindow whose message matches the
// wildcard pattern pat to toWindow (move_lastlog_item_by_string family).
func (s *Store) MoveMatching(fromWindow, toWindow, pat string) int {
	from := s.Window(fromWindow, 0)
	to := s.Window(toWindow, 0)
	n := 0
	for el := from.entries.Front(); el != nil; {
		next := el.Next()
		e := el.Value.(*Entry)
		if wildcard.Match(pat, e.Message) {
			e.Window = toWindow
			to.entries.PushBack(e)
			from.entries.Remove(el)
			n++
		}
		el = next
	}
	return n
}

// MoveByLevel moves every entry in fromWindow whose level bit is set (per
// the supplied predicate) to toWindow (move_lastlog_item_by_level).
func (s *Store) MoveByLevel(fromWindow, toWindow string, match func(level uint) bool) int {
	from := s.Window(fromWindow, 0)
	to := s.Window(toWindow, 0)
	n := 0
	for el := from.entries.Front(); el != nil; {
		next := el.Next()
		e := el.Value.(*Entry)
		if match(e.Level) {
			e.Window = toWindow
			to.entries.PushBack(e)
			from.entries.Remove(el)
			n++
		}
		el = next
	}
	return n
}

// MoveByRegex moves every entry in fromWindow whose message matches re to
// toWindow (move_lastlog_item_by_regex).
func (s *Store) MoveByRegex(fromWindow, toWindow string, re *regexp.Regexp) int {
	from := s.Window(fromWindow, 0)
	to := s.Window(toWindow, 0)
	n := 0
	for el := from.entries.Front(); el != nil; {
		next := el.Next()
		e := el.Value.(*Entry)
		if re.MatchString(e.Message) {
			e.Window = toWindow
			to.entries.PushBack(e)
			from.entries.Remove(el)
			n++
		}
		el = next
	}
	return n
}

// ReconstituteScrollback re-renders window's currently-visible entries
// (per its level mask) to render, the host's screen callback.
func (w *Window) ReconstituteScrollback(mask func(level uint) bool, render func(*Entry)) {
	for el := w.entries.Front(); el != nil; el = el.Next() {
		e := el.Value.(*Entry)
		e.Visible = mask == nil || mask(e.Level)
		if e.Visible {
			render(e)
		}
	}
}
