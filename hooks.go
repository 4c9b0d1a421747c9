package ircscript

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jcorbin/ircscript/hook"
)

// RunHookBody (hook.Host) executes a winning rule's body as a new
// anonymous frame with the event arguments bound as $*.
func (eng *Engine) RunHookBody(body string, args []string) error {
	return eng.EvalScriptWithArgs(body, args...)
}

// Announce (hook.Host) tells the user a hook is about to fire, for
// "normal"/"noisy" rules.
func (eng *Engine) Announce(eventType string, noisy hook.Noise, args []string) {
	if eng.out == nil {
		return
	}
	fmt.Fprintf(eng.out, "Hook fires: %v %v\n", eventType, strings.Join(args, " "))
}

// parseOnArgstr parses "/ON [#serial][noise]type [-|!|^]nick {body}".
func parseOnArgstr(argstr string) (serial int, noisy hook.Noise, typ, nick, body string, not bool, err error) {
	noisy = hook.Normal
	argstr = strings.TrimSpace(argstr)

	for argstr != "" && argstr[0] == '#' {
		argstr = argstr[1:]
		i := strings.IndexAny(argstr, " \t")
		var numTok string
		if i < 0 {
			numTok, argstr = argstr, ""
		} else {
			numTok, argstr = argstr[:i], strings.TrimSpace(argstr[i:])
		}
		n, perr := strconv.Atoi(numTok)
		if perr != nil {
			return 0, 0, "", "", "", false, fmt.Errorf("ircscript: /ON: bad serial %q", numTok)
		}
		serial = n
	}

	for argstr != "" {
		switch argstr[0] {
		case '^':
			noisy = hook.Silent
			argstr = argstr[1:]
			continue
		case '-':
			noisy = hook.Quiet
			argstr = argstr[1:]
			continue
		}
		break
	}

	typ, argstr = splitCommand(argstr)

	if argstr != "" && (argstr[0] == '-' || argstr[0] == '!' || argstr[0] == '^') {
		if argstr[0] == '!' || argstr[0] == '^' {
			not = true
		}
		argstr = argstr[1:]
	}
	nick, body = splitCommand(argstr)
	body = strings.TrimSpace(strings.Trim(strings.TrimSpace(body), "{}"))
	return serial, noisy, typ, nick, body, not, nil
}

func cmdOn(eng *Engine, argstr string) error {
	serial, noisy, typ, nick, body, not, err := parseOnArgstr(argstr)
	if err != nil {
		return err
	}
	eng.Hooks.AddRule(typ, &hook.Rule{
		Nick:    nick,
		Body:    body,
		Serial:  serial,
		Noisy:   noisy,
		Not:     not,
		Package: eng.currentPackage,
	})
	return nil
}

func cmdShook(eng *Engine, argstr string) error {
	typ, rest := splitCommand(argstr)
	args := strings.Fields(rest)
	_, err := eng.Hooks.DoHook(typ, args...)
	return err
}

func cmdStack(eng *Engine, argstr string) error {
	op, rest := splitCommand(argstr)
	kind, name := splitCommand(rest)
	if !strings.EqualFold(kind, "ON") {
		return fmt.Errorf("ircscript: /STACK %v: only ON is implemented", kind)
	}
	switch strings.ToUpper(op) {
	case "PUSH":
		eng.Hooks.StackPush(name)
	case "POP":
		if !eng.Hooks.StackPop(name) {
			return fmt.Errorf("ircscript: /STACK POP ON %v: nothing pushed", name)
		}
	case "LIST":
		if eng.out != nil {
			fmt.Fprintln(eng.out, strings.Join(eng.Hooks.StackList(), " "))
		}
	default:
		return fmt.Errorf("ircscript: /STACK: unknown operation %q", op)
	}
	return nil
}
