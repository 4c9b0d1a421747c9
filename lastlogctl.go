package ircscript

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jcorbin/ircscript/lastlog"
)

// cmdLastlog implements a useful slice of "/LASTLOG":
// flag-style options; the window is chosen with -WINDOW name and defaults
// to the engine's "CURRENT" window. Supported flags: -SKIP n, -NUMBER n,
// LEVELS, -LITERAL pat, -REGEX pat, -IGNORE pat, -TARGET name, -MAX n,
// -REVERSE, -WINDOW name. Any other word is read as a level list and is
// ignored if it names an unknown level.
func cmdLastlog(eng *Engine, argstr string) error {
	q := lastlog.Query{}
	window := "CURRENT"
	tokens := strings.Fields(argstr)

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		upper := strings.ToUpper(tok)
		need := func() (string, error) {
			if i+1 >= len(tokens) {
				return "", fmt.Errorf("ircscript: /LASTLOG: %v requires an argument", tok)
			}
			i++
			return tokens[i], nil
		}
		switch {
		case upper == "-SKIP":
			v, err := need()
			if err != nil {
				return err
			}
			q.Skip, _ = strconv.Atoi(v)
		case upper == "-NUMBER":
			v, err := need()
			if err != nil {
				return err
			}
			q.Number, _ = strconv.Atoi(v)
		case upper == "-LITERAL":
			v, err := need()
			if err != nil {
				return err
			}
			q.Literal = v
		case upper == "-REGEX":
			v, err := need()
			if err != nil {
				return err
			}
			re, err := regexp.Compile(v)
			if err != nil {
				return fmt.Errorf("ircscript: /LASTLOG -REGEX: %w", err)
			}
			q.Regex = re
		case upper == "-IGNORE":
			v, err := need()
			if err != nil {
				return err
			}
			q.Ignore = v
		case upper == "-TARGET":
			v, err := need()
			if err != nil {
				return err
			}
			q.Target = v
		case upper == "-MAX":
			v, err := need()
			if err != nil {
				return err
			}
			q.Max, _ = strconv.Atoi(v)
		case upper == "-REVERSE":
			q.Reverse = true
		case upper == "-WINDOW":
			v, err := need()
			if err != nil {
				return err
			}
			window = v
		default:
			mask, rejects := eng.Levels.StrToMask(tok)
			if len(rejects) == 0 {
				q.Mask = func(lv uint) bool { return mask.Has(Level(lv)) }
			}
		}
	}

	w := eng.Lastlog.Window(window, eng.lastlogCap())
	entries := w.Run(q)
	if eng.out == nil {
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(eng.out, "[%v] %v: %v\n", e.Timestamp.Format("15:04:05"), e.Target, e.Message)
	}
	return nil
}

func (eng *Engine) lastlogCap() int {
	sym, ok := eng.Globals.Lookup("LASTLOG")
	if !ok || sym.BuiltinVar == nil || sym.BuiltinVar.Type != SettingInt {
		return 0
	}
	return int(sym.BuiltinVar.IntVal)
}
