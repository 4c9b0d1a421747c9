package control

import "github.com/jcorbin/ircscript/expr"

// Env is everything a control-flow command needs from its host: full
// expression evaluation (embedding expr.Env so conditions can be reduced
// directly), running a body as a fresh anonymous frame, and enumerating a
// dotted global sub-array for /FOREACH.
type Env interface {
	expr.Env
	// RunBody executes body as a new anonymous call-stack frame.
	RunBody(body string) error
	// Subarray enumerates the first-level children of a dotted structure
	// root in the global variable namespace.
	Subarray(root string) []string
}

// truthy evaluates src with expr.Eval and applies expr.Value's Bool
// semantics to the result, for the loop and branch conditions.
func truthy(env Env, src string) (bool, error) {
	v, err := expr.Eval(src, env)
	if err != nil {
		return false, err
	}
	return v.Bool(), nil
}
