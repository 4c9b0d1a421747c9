package ircscript

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jcorbin/ircscript/ignorelist"
)

// cmdIgnore implements "/IGNORE nick-or-channel [-CHANNEL] [level-disposition-tokens...]"
// and bare "/IGNORE" (list everything).
func cmdIgnore(eng *Engine, argstr string) error {
	argstr = strings.TrimSpace(argstr)
	if argstr == "" {
		return dumpIgnores(eng)
	}
	mask, rest := splitCommand(argstr)
	isChannel := false
	tokens := strings.Fields(rest)
	filtered := tokens[:0]
	for _, tok := range tokens {
		if strings.EqualFold(tok, "-CHANNEL") {
			isChannel = true
			continue
		}
		filtered = append(filtered, tok)
	}
	it := eng.Ignores.Add(mask, isChannel, time.Now())
	lookup := func(name string) (uint, bool) {
		lv, ok := eng.Levels.Lookup(name)
		return uint(lv), ok
	}
	return ignorelist.ApplyTokens(it, regroupQuoted(filtered), lookup, time.Now())
}

// regroupQuoted joins whitespace-split tokens back into one when they
// belong to a quoted "REASON \"multi word text\"" argument.
func regroupQuoted(tokens []string) []string {
	var out []string
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if strings.HasPrefix(tok, `"`) && !strings.HasSuffix(tok, `"`) {
			joined := tok
			for i+1 < len(tokens) {
				i++
				joined += " " + tokens[i]
				if strings.HasSuffix(tokens[i], `"`) {
					break
				}
			}
			out = append(out, joined)
			continue
		}
		out = append(out, tok)
	}
	return out
}

func dumpIgnores(eng *Engine) error {
	if eng.out == nil {
		return nil
	}
	for _, it := range eng.Ignores.All() {
		fmt.Fprintf(eng.out, "%v: %v\n", it.Refnum, it.Mask)
	}
	return nil
}

// fnIgnoreCtl implements a slice of "$ignorectl(...)": CHECK and
// REFNUMS.
func fnIgnoreCtl(eng *Engine, argstr string) (string, error) {
	sub, rest := splitCommand(argstr)
	switch strings.ToUpper(sub) {
	case "CHECK":
		parts := strings.Fields(rest)
		if len(parts) < 3 {
			return "", fmt.Errorf("ircscript: ignorectl(check nick userhost level)")
		}
		nick, uh, levelName := parts[0], parts[1], parts[2]
		channel := ""
		if len(parts) > 3 {
			channel = parts[3]
		}
		lv, ok := eng.Levels.Lookup(levelName)
		if !ok {
			return "", fmt.Errorf("ircscript: ignorectl: unknown level %q", levelName)
		}
		d := eng.Ignores.Check(nick, uh, channel, uint(lv), time.Now())
		switch d {
		case ignorelist.Ignored:
			return "IGNORED", nil
		case ignorelist.Highlighted:
			return "HIGHLIGHTED", nil
		}
		return "NOT_IGNORED", nil
	case "REFNUMS":
		var refs []string
		for _, it := range eng.Ignores.All() {
			refs = append(refs, strconv.FormatUint(uint64(it.Refnum), 10))
		}
		return strings.Join(refs, " "), nil
	}
	return "", fmt.Errorf("ircscript: ignorectl: unknown subcommand %q", sub)
}
