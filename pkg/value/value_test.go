package value

import "testing"

func TestCompareCrossType(t *testing.T) {
	if Number(1).Compare(String("a")) <= 0 {
		t.Fatalf("expected Number > String by declaration order")
	}
	if Bool(false).Compare(Number(100)) <= 0 {
		t.Fatalf("expected Bool > Number by declaration order")
	}
}

func TestArithmeticNoOpOnMismatch(t *testing.T) {
	v := String("x").Add(Number(1))
	if !v.Equal(String("x")) {
		t.Fatalf("expected no-op preserving lhs, got %v", v)
	}
	v = Bool(true).Sub(Number(1))
	if !v.Equal(Bool(true)) {
		t.Fatalf("expected no-op preserving lhs, got %v", v)
	}
}

func TestDivByZero(t *testing.T) {
	v := Number(10).Div(Number(0))
	if !v.Equal(Number(0)) {
		t.Fatalf("expected divide-by-zero to yield 0, got %v", v)
	}
}

type mapResolver map[string]Value

func (m mapResolver) Resolve(name string) (Value, bool) {
	v, ok := m[name]
	return v, ok
}

func TestEvaluateArithmeticAndComparison(t *testing.T) {
	env := mapResolver{"$test:var1": Number(1)}
	cases := []struct {
		expr string
		want Value
	}{
		{"1 + 1", Number(2)},
		{"2 * 3 + 1", Number(7)},
		{"2 + 3 * 2", Number(8)},
		{"(2 + 3) * 2", Number(10)},
		{"$test:var1 + 1", Number(2)},
		{"$test:var1 + 1 > 0 and $test:var1 + 1 < 3", Bool(true)},
		{"a + b", String("ab")},
		{"not true", Bool(false)},
	}
	for _, c := range cases {
		got, err := Evaluate(c.expr, env)
		if err != nil {
			t.Fatalf("Evaluate(%q): %v", c.expr, err)
		}
		if !got.Equal(c.want) {
			t.Errorf("Evaluate(%q) = %v, want %v", c.expr, got, c.want)
		}
	}
}

func TestEvaluateGeqStrict(t *testing.T) {
	env := mapResolver{}
	got, err := Evaluate("2 >= 2", env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(Bool(true)) {
		t.Fatalf("2 >= 2 should be true, got %v", got)
	}
	got, err = Evaluate("1 >= 2", env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(Bool(false)) {
		t.Fatalf("1 >= 2 should be false, got %v", got)
	}
}

func TestEvalAsExprKeepsPlainStringOnParseError(t *testing.T) {
	env := mapResolver{}
	got, err := EvalAsExpr("hello world, this isn't an expr!!", env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsString() {
		t.Fatalf("expected plain text to remain a string, got %v", got)
	}
}

func TestEvalAsExprPropagatesNameError(t *testing.T) {
	env := mapResolver{}
	_, err := EvalAsExpr("$missing + 1", env)
	if _, ok := err.(*NameError); !ok {
		t.Fatalf("expected *NameError, got %v", err)
	}
}

func TestEvalBoolExprStripsGuardKeyword(t *testing.T) {
	env := mapResolver{"$x": Number(5)}
	ok, err := EvalBoolExpr("if $x > 0", env)
	if err != nil || !ok {
		t.Fatalf("expected true, got %v, %v", ok, err)
	}
	ok, err = EvalBoolExpr("elif $x < 0", env)
	if err != nil || ok {
		t.Fatalf("expected false, got %v, %v", ok, err)
	}
}
