// Package keymap implements the 256-way keybinding trie and its
// timeout/backtrack keypress state machine. Grounded on
// the teacher's own dense small-alphabet dispatch style (a fixed-size
// array of child pointers, lazily allocated) and on internal/runeio's
// escape-compression grammar (ported from original_source/keys.c).
package keymap

import (
	"sort"
	"strings"
	"time"

	"github.com/jcorbin/ircscript/internal/runeio"
)

// BindingKind distinguishes a native Go callback from a scripted alias.
type BindingKind int

const (
	NativeFn BindingKind = iota
	ScriptAlias
)

// Binding is a named, bindable action.
type Binding struct {
	Name    string
	Kind    BindingKind
	Alias   string // for ScriptAlias: the command name to run
	Package string
}

// Node is one trie element: a 256-way child vector, lazily allocated, plus
// an optional bound leaf.
type Node struct {
	children [256]*Node
	bound    *Binding
	stuff    string
	changed  bool
	pkg      string
}

// Tree owns the root node and the named-binding registry.
type Tree struct {
	root     Node
	bindings map[string]*Binding
	interval time.Duration
	stack    map[string][]*Node // stack_push/pop/list keyed by compressed sequence
}

// New returns an empty keybinding tree with the given resolve-timeout
// interval (package ircscript's New passes a fixed 500ms; the interval
// does not follow the KEY_INTERVAL setting).
func New(interval time.Duration) *Tree {
	return &Tree{bindings: map[string]*Binding{}, interval: interval, stack: map[string][]*Node{}}
}

// AddBinding registers a named binding (native or scripted) for later use
// by Bind.
func (t *Tree) AddBinding(b *Binding) { t.bindings[strings.ToUpper(b.Name)] = b }

// Lookup resolves a registered binding by name, for /PARSEKEY.
func (t *Tree) Lookup(name string) (*Binding, bool) {
	b, ok := t.bindings[strings.ToUpper(name)]
	return b, ok
}

// SequencesBoundTo returns every compressed sequence currently bound to
// name, in its user-facing decompressed form, for /REBIND.
func (t *Tree) SequencesBoundTo(name string) []string {
	b, ok := t.bindings[strings.ToUpper(name)]
	if !ok {
		return nil
	}
	var out []string
	var walk func(n *Node, prefix []byte)
	walk = func(n *Node, prefix []byte) {
		if n.bound == b {
			out = append(out, runeio.Decompress(string(prefix)))
		}
		for c, child := range n.children {
			if child != nil {
				next := make([]byte, len(prefix)+1)
				copy(next, prefix)
				next[len(prefix)] = byte(c)
				walk(child, next)
			}
		}
	}
	walk(&t.root, nil)
	return out
}

// Bind compresses seq (per runeio.CompressEscape) and walks/creates nodes
// down the trie, attaching name+stuff at the leaf.
func (t *Tree) Bind(seq, name, stuff, pkg string) bool {
	b, ok := t.bindings[strings.ToUpper(name)]
	if !ok {
		return false
	}
	compressed := compress(seq)
	if compressed == "" {
		return false
	}
	n := &t.root
	for i := 0; i < len(compressed); i++ {
		c := compressed[i]
		if n.children[c] == nil {
			n.children[c] = &Node{}
		}
		n = n.children[c]
	}
	n.bound = b
	n.stuff = stuff
	n.changed = true
	n.pkg = pkg
	return true
}

// compress runs runeio.CompressEscape repeatedly over a user-facing
// sequence, concatenating the literal bytes it denotes.
func compress(seq string) string {
	var sb strings.Builder
	for seq != "" {
		if seq[0] == '^' || seq[0] == '\\' {
			if b, rest, ok := runeio.CompressEscape(seq); ok {
				sb.WriteByte(b)
				seq = rest
				continue
			}
		}
		sb.WriteByte(seq[0])
		seq = seq[1:]
	}
	return sb.String()
}

// Unbind clears a compressed sequence's leaf and garbage-collects any now-
// empty subtree ("clean_keymap").
func (t *Tree) Unbind(seq string) bool {
	compressed := compress(seq)
	path := []*Node{&t.root}
	n := &t.root
	for i := 0; i < len(compressed); i++ {
		next := n.children[compressed[i]]
		if next == nil {
			return false
		}
		path = append(path, next)
		n = next
	}
	if n.bound == nil {
		return false
	}
	n.bound = nil
	n.stuff = ""
	cleanSubtree(path, compressed)
	return true
}

func cleanSubtree(path []*Node, compressed string) {
	for i := len(path) - 1; i > 0; i-- {
		n := path[i]
		if n.bound != nil || hasChild(n) {
			return
		}
		path[i-1].children[compressed[i-1]] = nil
	}
}

func hasChild(n *Node) bool {
	for _, c := range n.children {
		if c != nil {
			return true
		}
	}
	return false
}

// Action is what Feed tells the caller to do after consuming one byte.
type Action struct {
	Fire    bool
	Binding *Binding
	Stuff   string
	KeyByte byte
}

// State tracks Feed's "last" node and the time of its last step, across
// calls (one State per input stream).
type State struct {
	tree     *Tree
	last     *Node
	lastPath []byte
	lastTime time.Time
}

// NewState returns a fresh keypress state machine over tree.
func (t *Tree) NewState() *State { return &State{tree: t} }

// Feed walks the trie one byte at a time. A node that is both bound and
// has a submap waits for the next byte: if that byte comes later than the
// tree's interval, the waiting binding fires first, and a timed-out
// multi-byte prefix that never reached a binding is backtracked. No timer
// is scheduled, so a waiting binding fires only on a later Feed call.
func (s *State) Feed(b byte, now time.Time) []Action {
	if s.last != nil && now.Sub(s.lastTime) > s.tree.interval {
		var actions []Action
		if s.last.bound != nil {
			actions = append(actions, Action{Fire: true, Binding: s.last.bound, Stuff: s.last.stuff})
		} else if len(s.lastPath) > 1 {
			actions = append(actions, s.backtrack()...)
		}
		s.last, s.lastPath = nil, nil
		return append(actions, s.Feed(b, now)...)
	}

	var n *Node
	if s.last == nil {
		n = &s.tree.root
	} else {
		n = s.last
	}
	next := n.children[b]
	if next == nil {
		if s.last != nil && len(s.lastPath) > 0 {
			actions := s.backtrack()
			s.last, s.lastPath = nil, nil
			return actions
		}
		s.last, s.lastPath = nil, nil
		return nil
	}

	path := append(append([]byte{}, s.lastPath...), b)
	if next.bound != nil && !hasChild(next) {
		s.last, s.lastPath = nil, nil
		return []Action{{Fire: true, Binding: next.bound, Stuff: next.stuff, KeyByte: b}}
	}
	s.last, s.lastPath, s.lastTime = next, path, now
	return nil
}

// backtrack reconstructs the byte string that led to s.last and greedily
// executes the longest binding at each starting position, dropping
// unmatched single bytes.
func (s *State) backtrack() []Action {
	var actions []Action
	data := s.lastPath
	for i := 0; i < len(data); {
		n := &s.tree.root
		matchLen := -1
		var matchBind *Binding
		var matchStuff string
		for j := i; j < len(data); j++ {
			next := n.children[data[j]]
			if next == nil {
				break
			}
			n = next
			if n.bound != nil {
				matchLen = j - i + 1
				matchBind, matchStuff = n.bound, n.stuff
			}
		}
		if matchLen > 0 {
			actions = append(actions, Action{Fire: true, Binding: matchBind, Stuff: matchStuff})
			i += matchLen
		} else {
			i++
		}
	}
	return actions
}

// StackPush snapshots the binding node at the end of a compressed
// sequence, keyed by that sequence (the leaf node, not the entire
// subtree under it).
func (t *Tree) StackPush(seq string) bool {
	compressed := compress(seq)
	n := &t.root
	for i := 0; i < len(compressed); i++ {
		next := n.children[compressed[i]]
		if next == nil {
			return false
		}
		n = next
	}
	snap := &Node{bound: n.bound, stuff: n.stuff, pkg: n.pkg}
	t.stack[compressed] = append(t.stack[compressed], snap)
	return true
}

// StackPop restores the most recently pushed snapshot for seq.
func (t *Tree) StackPop(seq string) bool {
	compressed := compress(seq)
	stk := t.stack[compressed]
	if len(stk) == 0 {
		return false
	}
	snap := stk[len(stk)-1]
	t.stack[compressed] = stk[:len(stk)-1]

	n := &t.root
	for i := 0; i < len(compressed); i++ {
		if n.children[compressed[i]] == nil {
			n.children[compressed[i]] = &Node{}
		}
		n = n.children[compressed[i]]
	}
	n.bound, n.stuff, n.pkg = snap.bound, snap.stuff, snap.pkg
	return true
}

// StackList returns every sequence with a non-empty snapshot stack.
func (t *Tree) StackList() []string {
	var out []string
	for seq, stk := range t.stack {
		if len(stk) > 0 {
			out = append(out, runeio.Decompress(seq))
		}
	}
	return out
}

// Bound is one leaf's decompressed sequence, the binding it fires, and its
// bound stuff text, for /SAVE.
type Bound struct {
	Seq, Name, Stuff string
}

// AllBound walks the trie and returns every bound leaf, sorted by
// decompressed sequence, for /SAVE.
func (t *Tree) AllBound() []Bound {
	var out []Bound
	var walk func(n *Node, prefix []byte)
	walk = func(n *Node, prefix []byte) {
		if n.bound != nil {
			out = append(out, Bound{Seq: runeio.Decompress(string(prefix)), Name: n.bound.Name, Stuff: n.stuff})
		}
		for c, child := range n.children {
			if child != nil {
				next := make([]byte, len(prefix)+1)
				copy(next, prefix)
				next[len(prefix)] = byte(c)
				walk(child, next)
			}
		}
	}
	walk(&t.root, nil)
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// UnloadPackage clears every binding leaf owned by pkg (for /UNLOAD).
func (t *Tree) UnloadPackage(pkg string) {
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.bound != nil && n.pkg == pkg {
			n.bound = nil
			n.stuff = ""
		}
		for _, c := range n.children {
			if c != nil {
				walk(c)
			}
		}
	}
	walk(&t.root)
}
