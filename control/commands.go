package control

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jcorbin/ircscript/expr"
	"github.com/jcorbin/ircscript/internal/wildcard"
)

// If implements "/IF (expr) {then} [ELSIF (expr) {then}]... [ELSE {else}]"
//: expand expr via expression mode, check_val the result, and run
// exactly one branch.
func If(env Env, argstr string) error {
	for {
		cond, rest, ok := splitParen(argstr)
		if !ok {
			return fmt.Errorf("control: /IF: expected '(expr)'")
		}
		thenBody, rest, ok := splitBrace(rest)
		if !ok {
			return fmt.Errorf("control: /IF: expected '{then}'")
		}

		truth, err := truthy(env, cond)
		if err != nil {
			return err
		}
		if truth {
			_, err := runBody(env, thenBody)
			return err
		}

		word, tail := leadingWord(rest)
		switch strings.ToUpper(word) {
		case "ELSIF":
			argstr = tail
			continue
		case "ELSE":
			elseBody, _, ok := splitBrace(tail)
			if !ok {
				return fmt.Errorf("control: /IF: expected '{else}'")
			}
			_, err := runBody(env, elseBody)
			return err
		default:
			return nil
		}
	}
}

// While implements "/WHILE (expr) {body}". The expression string is
// re-evaluated fresh each iteration (not cached) so side effects within it
// observe their own previous writes.
func While(env Env, argstr string) error {
	cond, rest, ok := splitParen(argstr)
	if !ok {
		return fmt.Errorf("control: /WHILE: expected '(expr)'")
	}
	body, _, ok := splitBrace(rest)
	if !ok {
		return fmt.Errorf("control: /WHILE: expected '{body}'")
	}
	for {
		truth, err := truthy(env, cond)
		if err != nil {
			return err
		}
		if !truth {
			return nil
		}
		brokeOut, err := runBody(env, body)
		if err != nil {
			return err
		}
		if brokeOut {
			return nil
		}
	}
}

// Do implements "/DO {body} [WHILE (expr)]": body always runs once; the
// optional trailing WHILE clause makes it loop with an exit test.
func Do(env Env, argstr string) error {
	body, rest, ok := splitBrace(argstr)
	if !ok {
		return fmt.Errorf("control: /DO: expected '{body}'")
	}
	word, tail := leadingWord(rest)
	hasWhile := strings.EqualFold(word, "WHILE")
	var cond string
	if hasWhile {
		c, _, ok := splitParen(tail)
		if !ok {
			return fmt.Errorf("control: /DO ... WHILE: expected '(expr)'")
		}
		cond = c
	}

	for {
		brokeOut, err := runBody(env, body)
		if err != nil {
			return err
		}
		if brokeOut || !hasWhile {
			return nil
		}
		truth, err := truthy(env, cond)
		if err != nil {
			return err
		}
		if !truth {
			return nil
		}
	}
}

// For implements all three /FOR forms: "(init, test, step) {body}" reduces
// directly to a while loop; "var IN (list) {body}" and "var FROM a TO b
// [BY s] {body}" are textual variants parsed by keyword sniffing.
func For(env Env, argstr string) error {
	trimmed := strings.TrimLeft(argstr, " \t")
	if strings.HasPrefix(trimmed, "(") {
		return forClassic(env, argstr)
	}
	word, rest := leadingWord(argstr)
	varName := word
	kw, rest2 := leadingWord(rest)
	switch strings.ToUpper(kw) {
	case "IN":
		return forIn(env, varName, rest2)
	case "FROM":
		return forFromTo(env, varName, rest2)
	}
	return fmt.Errorf("control: /FOR: unrecognized form %q", argstr)
}

func forClassic(env Env, argstr string) error {
	inside, rest, ok := splitParen(argstr)
	if !ok {
		return fmt.Errorf("control: /FOR: expected '(init, test, step)'")
	}
	body, _, ok := splitBrace(rest)
	if !ok {
		return fmt.Errorf("control: /FOR: expected '{body}'")
	}
	parts := strings.SplitN(inside, ",", 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	initExpr, testExpr, stepExpr := parts[0], parts[1], parts[2]

	if strings.TrimSpace(initExpr) != "" {
		if _, err := expr.Eval(initExpr, env); err != nil {
			return err
		}
	}
	for {
		if strings.TrimSpace(testExpr) != "" {
			truth, err := truthy(env, testExpr)
			if err != nil {
				return err
			}
			if !truth {
				return nil
			}
		}
		brokeOut, err := runBody(env, body)
		if err != nil {
			return err
		}
		if brokeOut {
			return nil
		}
		if strings.TrimSpace(stepExpr) != "" {
			if _, err := expr.Eval(stepExpr, env); err != nil {
				return err
			}
		}
	}
}

func forIn(env Env, varName, rest string) error {
	list, rest, ok := splitParen(rest)
	if !ok {
		return fmt.Errorf("control: /FOR %v IN: expected '(list)'", varName)
	}
	body, _, ok := splitBrace(rest)
	if !ok {
		return fmt.Errorf("control: /FOR %v IN: expected '{body}'", varName)
	}
	for _, word := range strings.Fields(list) {
		if err := env.Assign(varName, word); err != nil {
			return err
		}
		brokeOut, err := runBody(env, body)
		if err != nil {
			return err
		}
		if brokeOut {
			return nil
		}
	}
	return nil
}

func forFromTo(env Env, varName, rest string) error {
	fromStr, rest := leadingWord(rest)
	kw, rest := leadingWord(rest)
	if !strings.EqualFold(kw, "TO") {
		return fmt.Errorf("control: /FOR %v FROM: expected TO", varName)
	}
	toStr, rest := leadingWord(rest)
	step := int64(1)
	if kw2, rest2 := leadingWord(rest); strings.EqualFold(kw2, "BY") {
		stepStr, rest3 := leadingWord(rest2)
		n, err := strconv.ParseInt(stepStr, 10, 64)
		if err != nil {
			return fmt.Errorf("control: /FOR ... BY: bad step %q", stepStr)
		}
		step = n
		rest = rest3
	}
	body, _, ok := splitBrace(rest)
	if !ok {
		return fmt.Errorf("control: /FOR %v FROM: expected '{body}'", varName)
	}
	from, err := strconv.ParseInt(strings.TrimSpace(fromStr), 10, 64)
	if err != nil {
		return fmt.Errorf("control: /FOR FROM: bad start %q", fromStr)
	}
	to, err := strconv.ParseInt(strings.TrimSpace(toStr), 10, 64)
	if err != nil {
		return fmt.Errorf("control: /FOR TO: bad end %q", toStr)
	}
	if step == 0 {
		step = 1
	}
	for i := from; (step > 0 && i <= to) || (step < 0 && i >= to); i += step {
		if err := env.Assign(varName, strconv.FormatInt(i, 10)); err != nil {
			return err
		}
		brokeOut, err := runBody(env, body)
		if err != nil {
			return err
		}
		if brokeOut {
			return nil
		}
	}
	return nil
}

// Foreach implements "/FOREACH var root {body}": iterate the leaf names of
// the dotted sub-array root in the global variable namespace.
func Foreach(env Env, argstr string) error {
	varName, rest := leadingWord(argstr)
	root, rest := leadingWord(rest)
	body, _, ok := splitBrace(rest)
	if !ok {
		return fmt.Errorf("control: /FOREACH: expected '{body}'")
	}
	for _, name := range env.Subarray(root) {
		if err := env.Assign(varName, name); err != nil {
			return err
		}
		brokeOut, err := runBody(env, body)
		if err != nil {
			return err
		}
		if brokeOut {
			return nil
		}
	}
	return nil
}

// Fe implements "/FE (list) v1 [v2 ...] {body}": split list into words,
// binding n at a time into v1..vn, one body run per group.
func Fe(env Env, argstr string) error {
	list, rest, ok := splitParen(argstr)
	if !ok {
		return fmt.Errorf("control: /FE: expected '(list)'")
	}
	return feImpl(env, list, rest, 1)
}

// Fec is /FE's character-at-a-time sibling.
func Fec(env Env, argstr string) error {
	list, rest, ok := splitParen(argstr)
	if !ok {
		return fmt.Errorf("control: /FEC: expected '(list)'")
	}
	return feImpl(env, list, rest, 0)
}

// feImpl drives both /FE (mode=1, word-at-a-time) and /FEC (mode=0,
// character-at-a-time): it groups list into chunks of len(names) units and runs
// body once per chunk with names bound to that chunk's values.
func feImpl(env Env, list, rest string, wordMode int) error {
	var names []string
	for {
		w, r := leadingWord(rest)
		if w == "" || strings.HasPrefix(w, "{") {
			break
		}
		names = append(names, w)
		rest = r
	}
	body, _, ok := splitBrace(rest)
	if !ok {
		return fmt.Errorf("control: /FE: expected '{body}'")
	}
	if len(names) == 0 {
		return fmt.Errorf("control: /FE: at least one variable is required")
	}

	var units []string
	if wordMode != 0 {
		units = strings.Fields(list)
	} else {
		for _, r := range list {
			units = append(units, string(r))
		}
	}

	n := len(names)
	for i := 0; i < len(units); i += n {
		end := i + n
		if end > len(units) {
			end = len(units)
		}
		group := units[i:end]
		for gi, name := range names {
			val := ""
			if gi < len(group) {
				val = group[gi]
			}
			if err := env.Assign(name, val); err != nil {
				return err
			}
		}
		brokeOut, err := runBody(env, body)
		if err != nil {
			return err
		}
		if brokeOut {
			break
		}
	}
	return nil
}

// Switch implements "/SWITCH (val) { (pat) {body} (pat) (pat) {body} ... }"
// patterns are tried in order (wildcard match against val), the
// first match's body runs, and no other case is considered.
func Switch(env Env, argstr string) error {
	valExpr, rest, ok := splitParen(argstr)
	if !ok {
		return fmt.Errorf("control: /SWITCH: expected '(val)'")
	}
	cases, _, ok := splitBrace(rest)
	if !ok {
		return fmt.Errorf("control: /SWITCH: expected '{ (pat) {body} ... }'")
	}
	v, err := expr.Eval(valExpr, env)
	if err != nil {
		return err
	}
	val := v.String()

	for strings.TrimSpace(cases) != "" {
		var pats []string
		for {
			pat, r, ok := splitParen(cases)
			if !ok {
				return fmt.Errorf("control: /SWITCH: expected '(pattern)'")
			}
			pats = append(pats, pat)
			cases = r
			next := strings.TrimLeft(cases, " \t")
			if !strings.HasPrefix(next, "(") {
				break
			}
			cases = next
		}
		body, r, ok := splitBrace(cases)
		if !ok {
			return fmt.Errorf("control: /SWITCH: expected '{body}' after pattern(s)")
		}
		cases = r

		matched := false
		for _, pat := range pats {
			if wildcard.Match(strings.TrimSpace(pat), val) {
				matched = true
				break
			}
		}
		if matched {
			_, err := runBody(env, body)
			return err
		}
	}
	return nil
}

// Repeat implements "/REPEAT N body": execute body N times with the
// current $* (body here is a bare command, not a brace-delimited block).
func Repeat(env Env, argstr string) error {
	nStr, body := leadingWord(argstr)
	n, err := strconv.Atoi(strings.TrimSpace(nStr))
	if err != nil {
		return fmt.Errorf("control: /REPEAT: bad count %q", nStr)
	}
	for i := 0; i < n; i++ {
		brokeOut, err := runBody(env, body)
		if err != nil {
			return err
		}
		if brokeOut {
			return nil
		}
	}
	return nil
}
