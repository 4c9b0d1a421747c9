package expr

import (
	"math"
	"strings"

	"github.com/jcorbin/ircscript/internal/wildcard"
)

// applyArith reduces one binary operator over two already-evaluated
// operands ( "Reduction semantics (selected)"). Division/modulo by
// zero yields the empty value rather than crashing; comparisons numeric-
// compare when both sides look like real numbers, else case-folded
// string-compare.
func applyArith(op string, lhs, rhs Value) Value {
	switch op {
	case "+":
		return numOp(lhs, rhs, func(a, b float64) float64 { return a + b })
	case "-":
		return numOp(lhs, rhs, func(a, b float64) float64 { return a - b })
	case "*":
		return numOp(lhs, rhs, func(a, b float64) float64 { return a * b })
	case "/":
		if rhs.Float() == 0 {
			return strVal("")
		}
		return numOp(lhs, rhs, func(a, b float64) float64 { return a / b })
	case "%":
		bi := rhs.Int()
		if bi == 0 {
			return strVal("")
		}
		return intVal(lhs.Int() % bi)
	case "**":
		return floatVal(ipow(lhs.Float(), rhs.Float()))
	case "##":
		return strVal(lhs.String() + rhs.String())
	case "<<":
		return intVal(lhs.Int() << uint(rhs.Int()))
	case ">>":
		return intVal(lhs.Int() >> uint(rhs.Int()))
	case "&":
		return intVal(lhs.Int() & rhs.Int())
	case "^":
		return intVal(lhs.Int() ^ rhs.Int())
	case "|":
		return intVal(lhs.Int() | rhs.Int())
	case "<", "<=", ">", ">=", "==", "!=":
		return compareOp(op, lhs, rhs)
	case "=~":
		return boolVal(wildcard.Match(rhs.String(), lhs.String()))
	case "!~":
		return boolVal(!wildcard.Match(rhs.String(), lhs.String()))
	}
	return strVal("")
}

func numOp(lhs, rhs Value, f func(a, b float64) float64) Value {
	if isIntish(lhs) && isIntish(rhs) {
		return intVal(int64(f(lhs.Float(), rhs.Float())))
	}
	return floatVal(f(lhs.Float(), rhs.Float()))
}

func isIntish(v Value) bool {
	s := strings.TrimSpace(v.String())
	return !strings.ContainsAny(s, ".eE") || s == ""
}

func ipow(a, b float64) float64 {
	return math.Pow(a, b)
}

func compareOp(op string, lhs, rhs Value) Value {
	if looksNumeric(lhs.String()) && looksNumeric(rhs.String()) {
		a, b := lhs.Float(), rhs.Float()
		switch op {
		case "<":
			return boolVal(a < b)
		case "<=":
			return boolVal(a <= b)
		case ">":
			return boolVal(a > b)
		case ">=":
			return boolVal(a >= b)
		case "==":
			return boolVal(a == b)
		case "!=":
			return boolVal(a != b)
		}
	}
	a, b := strings.ToUpper(lhs.String()), strings.ToUpper(rhs.String())
	switch op {
	case "<":
		return boolVal(a < b)
	case "<=":
		return boolVal(a <= b)
	case ">":
		return boolVal(a > b)
	case ">=":
		return boolVal(a >= b)
	case "==":
		return boolVal(a == b)
	case "!=":
		return boolVal(a != b)
	}
	return strVal("")
}
