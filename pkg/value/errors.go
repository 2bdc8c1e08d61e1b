package value

import "fmt"

// ParseError reports that a string could not be parsed as an
// expression at all — the string should be treated as a literal.
type ParseError struct {
	Input string
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse expression %q: %s", e.Input, e.Msg)
}

// NameError reports that an expression parsed but referenced a
// variable that isn't defined in the current resolution scope.
type NameError struct {
	Name string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("undefined variable %q", e.Name)
}
