// Package ignorelist implements the ignore engine: per-target suppression,
// exception, and highlight level-masks looked up by nick!user@host or
// channel, with the except→suppress→highlight precedence order.
// Grounded on the check_ignore description and on
// internal/wildcard (ported from original_source/ircaux.c) for the mask
// matching hook and ignore share.
package ignorelist

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jcorbin/ircscript/internal/wildcard"
)

// Disposition is check()'s verdict.
type Disposition int

const (
	NotIgnored Disposition = iota
	Ignored
	Highlighted
)

// Item is one ignore rule. Levels are represented as plain
// bit indices (uint); ignorelist never interprets a bit's meaning, only
// tests membership in the three per-item bit sets, so it has no
// dependency on the host's level-registry type.
type Item struct {
	Mask    string // nick!user@host, or a channel name/pattern
	Suppress,
	Except,
	Highlight []uint // level bits set via the disposition grammar

	Reason    string
	Created   time.Time
	LastUse   time.Time
	Expires   time.Time // zero means "never"
	Count     uint
	Enabled   bool
	Refnum    uint
	IsChannel bool
}

func (it *Item) has(bits []uint, bit uint) bool {
	for _, b := range bits {
		if b == bit {
			return true
		}
	}
	return false
}

// List is the full set of ignore items, plus the monotonic refnum counter.
type List struct {
	items      []*Item
	nextRef    uint
	refnumFunc func() uint
}

// New returns an empty List.
func New() *List { return &List{nextRef: 1} }

// SetRefnumFunc overrides refnum minting with fn, for hosts that want
// globally-unique (e.g. UUID-backed) refnums instead of the default
// per-process incrementing counter.
func (l *List) SetRefnumFunc(fn func() uint) { l.refnumFunc = fn }

func (l *List) nextRefnum() uint {
	if l.refnumFunc != nil {
		return l.refnumFunc()
	}
	n := l.nextRef
	l.nextRef++
	return n
}

// Add creates an item for mask, or returns the existing item with the same
// mask and kind unchanged; either way the item is returned for further
// mutation via ApplyTokens.
func (l *List) Add(mask string, isChannel bool, now time.Time) *Item {
	for _, it := range l.items {
		if strings.EqualFold(it.Mask, mask) && it.IsChannel == isChannel {
			return it
		}
	}
	it := &Item{Mask: mask, IsChannel: isChannel, Enabled: true, Created: now, Refnum: l.nextRefnum()}
	l.items = append(l.items, it)
	return it
}

// Remove deletes every item matching mask (case-folded exact match).
func (l *List) Remove(mask string) bool {
	removed := false
	kept := l.items[:0]
	for _, it := range l.items {
		if strings.EqualFold(it.Mask, mask) {
			removed = true
			continue
		}
		kept = append(kept, it)
	}
	l.items = kept
	return removed
}

// ApplyTokens mutates it per the level-disposition token grammar:
// bare NAME -> suppress, -NAME -> remove from all three, !NAME/^NAME ->
// except, +NAME -> highlight, /NAME -> suppress (explicit), plus REASON
// "text" and TIMEOUT seconds. lookup resolves a level name to its bit.
func ApplyTokens(it *Item, tokens []string, lookup func(name string) (uint, bool), now time.Time) error {
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch {
		case strings.EqualFold(tok, "REASON"):
			if i+1 >= len(tokens) {
				return fmt.Errorf("ignorelist: REASON requires a text argument")
			}
			i++
			it.Reason = strings.Trim(tokens[i], `"`)
		case strings.EqualFold(tok, "TIMEOUT"):
			if i+1 >= len(tokens) {
				return fmt.Errorf("ignorelist: TIMEOUT requires a seconds argument")
			}
			i++
			secs, err := strconv.Atoi(tokens[i])
			if err != nil {
				return fmt.Errorf("ignorelist: bad TIMEOUT value %q", tokens[i])
			}
			it.Expires = now.Add(time.Duration(secs) * time.Second)
		case strings.HasPrefix(tok, "-"):
			name := tok[1:]
			bit, ok := lookup(name)
			if !ok {
				return fmt.Errorf("ignorelist: unknown level %q", name)
			}
			it.Suppress = removeBit(it.Suppress, bit)
			it.Except = removeBit(it.Except, bit)
			it.Highlight = removeBit(it.Highlight, bit)
		case strings.HasPrefix(tok, "!") || strings.HasPrefix(tok, "^"):
			name := tok[1:]
			bit, ok := lookup(name)
			if !ok {
				return fmt.Errorf("ignorelist: unknown level %q", name)
			}
			it.Except = addBit(it.Except, bit)
		case strings.HasPrefix(tok, "+"):
			name := tok[1:]
			bit, ok := lookup(name)
			if !ok {
				return fmt.Errorf("ignorelist: unknown level %q", name)
			}
			it.Highlight = addBit(it.Highlight, bit)
		case strings.HasPrefix(tok, "/"):
			name := tok[1:]
			bit, ok := lookup(name)
			if !ok {
				return fmt.Errorf("ignorelist: unknown level %q", name)
			}
			it.Suppress = addBit(it.Suppress, bit)
		default:
			bit, ok := lookup(tok)
			if !ok {
				return fmt.Errorf("ignorelist: unknown level %q", tok)
			}
			it.Suppress = addBit(it.Suppress, bit)
		}
	}
	return nil
}

func addBit(bits []uint, bit uint) []uint {
	for _, b := range bits {
		if b == bit {
			return bits
		}
	}
	return append(bits, bit)
}

func removeBit(bits []uint, bit uint) []uint {
	out := bits[:0]
	for _, b := range bits {
		if b != bit {
			out = append(out, b)
		}
	}
	return out
}

// Check implements check_ignore(nick, uh, channel?, level): find
// the best nuh match and, independently, the best channel match, prefer
// the nuh match, then test except -> suppress -> highlight in order.
func (l *List) Check(nick, userhost, channel string, bit uint, now time.Time) Disposition {
	nuh := nick + "!" + userhost

	var best *Item
	bestLen := -1
	bestExact := false
	var bestChan *Item
	bestChanLen := -1

	for _, it := range l.items {
		if !it.Enabled {
			continue
		}
		if !it.Expires.IsZero() && !now.Before(it.Expires) {
			continue
		}
		if it.IsChannel {
			if channel == "" {
				continue
			}
			if n := wildcard.LongestMatchLen(it.Mask, channel); n > bestChanLen {
				bestChanLen, bestChan = n, it
			}
			continue
		}
		if bestExact {
			continue // an exact match already found; no wildcard can outrank it
		}
		if strings.EqualFold(it.Mask, nuh) {
			best, bestExact = it, true
			continue
		}
		if n := wildcard.LongestMatchLen(it.Mask, nuh); n > bestLen {
			bestLen, best = n, it
		}
	}

	winner := best
	if winner == nil {
		winner = bestChan
	}
	if winner == nil {
		return NotIgnored
	}

	winner.Count++
	winner.LastUse = now

	if winner.has(winner.Except, bit) {
		return NotIgnored
	}
	if winner.has(winner.Suppress, bit) {
		return Ignored
	}
	if winner.has(winner.Highlight, bit) {
		return Highlighted
	}
	return NotIgnored
}

// Sweep removes every expired item, returning the removed ones.
func (l *List) Sweep(now time.Time) []*Item {
	var expired []*Item
	kept := l.items[:0]
	for _, it := range l.items {
		if !it.Expires.IsZero() && !now.Before(it.Expires) {
			expired = append(expired, it)
			continue
		}
		kept = append(kept, it)
	}
	l.items = kept
	return expired
}

// All returns every item, for /IGNORE with no arguments (listing).
func (l *List) All() []*Item { return l.items }
