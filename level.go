package ircscript

import (
	"sort"
	"strings"
)

// MaxLevels bounds the registry's bitset width. A uint64 backing gives exactly 64.
const MaxLevels = 64

// Level is a registered event-class bit, e.g. MSGS, PUBLICS, CRAP.
type Level uint

// LevelMask is a bitset over registered Levels.
type LevelMask uint64

// Has reports whether m includes lv.
func (m LevelMask) Has(lv Level) bool { return lv < MaxLevels && m&(1<<lv) != 0 }

// Set returns m with lv added.
func (m LevelMask) Set(lv Level) LevelMask {
	if lv >= MaxLevels {
		return m
	}
	return m | (1 << lv)
}

// Clear returns m with lv removed.
func (m LevelMask) Clear(lv Level) LevelMask {
	if lv >= MaxLevels {
		return m
	}
	return m &^ (1 << lv)
}

// LevelRegistry maps level names to bits, case-folded, with aliasing (two
// distinct names may share a bit).
type LevelRegistry struct {
	byName map[string]Level
	names  []string // canonical (first-registered) name per bit
	next   Level
}

// NewLevelRegistry returns an empty registry.
func NewLevelRegistry() *LevelRegistry {
	return &LevelRegistry{byName: make(map[string]Level)}
}

// Register returns the bit for name, allocating a new one if name is
// unseen and the registry has room; names fold to upper-case.
func (r *LevelRegistry) Register(name string) (Level, bool) {
	key := strings.ToUpper(name)
	if lv, ok := r.byName[key]; ok {
		return lv, true
	}
	if r.next >= MaxLevels {
		return 0, false
	}
	lv := r.next
	r.next++
	r.byName[key] = lv
	r.names = append(r.names, key)
	return lv, true
}

// Alias makes name refer to the same bit as existing, without consuming a
// new bit. existing must already be registered.
func (r *LevelRegistry) Alias(name, existing string) bool {
	lv, ok := r.byName[strings.ToUpper(existing)]
	if !ok {
		return false
	}
	r.byName[strings.ToUpper(name)] = lv
	return true
}

// Lookup finds an already-registered level by name.
func (r *LevelRegistry) Lookup(name string) (Level, bool) {
	lv, ok := r.byName[strings.ToUpper(name)]
	return lv, ok
}

// All returns a mask with every registered bit set.
func (r *LevelRegistry) All() LevelMask {
	var m LevelMask
	for i := Level(0); i < r.next; i++ {
		m = m.Set(i)
	}
	return m
}

// None is the empty mask, named for symmetry with All in mask-string
// parsing ("ALL"/"NONE" short-circuit tokens).
func (r *LevelRegistry) None() LevelMask { return 0 }

// StrToMask parses a comma-separated token list left-to-right: a bare name
// adds its bit, "-NAME" removes it, "ALL" sets every registered bit,
// "NONE" clears the mask so far. Unknown names are collected into rejects
// rather than erroring.
func (r *LevelRegistry) StrToMask(spec string) (mask LevelMask, rejects []string) {
	for _, tok := range strings.Split(spec, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		neg := false
		if strings.HasPrefix(tok, "-") {
			neg = true
			tok = tok[1:]
		}
		switch strings.ToUpper(tok) {
		case "ALL":
			if neg {
				mask = r.None()
			} else {
				mask = r.All()
			}
			continue
		case "NONE":
			mask = r.None()
			continue
		}
		lv, ok := r.Lookup(tok)
		if !ok {
			rejects = append(rejects, tok)
			continue
		}
		if neg {
			mask = mask.Clear(lv)
		} else {
			mask = mask.Set(lv)
		}
	}
	return mask, rejects
}

// MaskToStr renders m as whichever of the positive form ("A B C") or the
// subtractive form ("ALL -A -B") is shorter.
func (r *LevelRegistry) MaskToStr(m LevelMask) string {
	var positive, negative []string
	for i := Level(0); i < r.next; i++ {
		name := r.names[i]
		if m.Has(i) {
			positive = append(positive, name)
		} else {
			negative = append(negative, "-"+name)
		}
	}
	sort.Strings(positive)
	sort.Strings(negative)

	posForm := strings.Join(positive, " ")
	var negForm string
	if len(negative) == 0 {
		negForm = "ALL"
	} else {
		negForm = "ALL " + strings.Join(negative, " ")
	}
	if posForm == "" {
		return "NONE"
	}
	if len(negForm) < len(posForm) {
		return negForm
	}
	return posForm
}
