package value

import "strings"

// Evaluate parses and evaluates expr against r. A syntactically invalid
// expression returns *ParseError; a reference to an undefined variable
// returns *NameError.
func Evaluate(expr string, r Resolver) (Value, error) {
	ast, err := Parse(expr)
	if err != nil {
		return Value{}, err
	}
	return ast.Eval(r)
}

// EvalAsExpr implements in-place expression promotion: if expr parses
// and evaluates cleanly, its Value is returned. If it fails to parse at
// all, the input is kept as a literal string Value (the ParseError is
// swallowed). Any other error (an undefined variable) propagates,
// since the input was recognizably an expression that referenced
// something that doesn't exist.
func EvalAsExpr(expr string, r Resolver) (Value, error) {
	ast, err := Parse(expr)
	if err != nil {
		if _, ok := err.(*ParseError); ok {
			return String(expr), nil
		}
		return Value{}, err
	}
	v, err := ast.Eval(r)
	if err != nil {
		return Value{}, err
	}
	return v, nil
}

// EvalBoolExpr evaluates a branch guard. Branch guards are stored with
// their leading "if "/"elif " keyword still attached; EvalBoolExpr
// strips it before evaluating. The literal guard "else" is not a valid
// expression and must be special-cased by the caller.
func EvalBoolExpr(guard string, r Resolver) (bool, error) {
	expr := StripGuardKeyword(guard)
	v, err := Evaluate(expr, r)
	if err != nil {
		return false, err
	}
	return v.ToBool(), nil
}

// StripGuardKeyword removes a leading "if " or "elif " keyword from a
// branch guard, returning the bare expression text.
func StripGuardKeyword(guard string) string {
	switch {
	case strings.HasPrefix(guard, "if "):
		return strings.TrimPrefix(guard, "if ")
	case strings.HasPrefix(guard, "elif "):
		return strings.TrimPrefix(guard, "elif ")
	default:
		return guard
	}
}
