package value

// Expr is a parsed expression node.
type Expr interface {
	Eval(r Resolver) (Value, error)
}

// Resolver resolves a variable name (including its leading `$` and any
// `namespace:` qualifier) to a Value. ok is false when the name is
// undefined.
type Resolver interface {
	Resolve(name string) (Value, bool)
}

type litNode struct{ v Value }

func (n litNode) Eval(Resolver) (Value, error) { return n.v, nil }

type varNode struct{ name string }

func (n varNode) Eval(r Resolver) (Value, error) {
	v, ok := r.Resolve(n.name)
	if !ok {
		return Value{}, &NameError{Name: n.name}
	}
	return v, nil
}

type binNode struct {
	op       tokenKind
	lhs, rhs Expr
}

func (n binNode) Eval(r Resolver) (Value, error) {
	lv, err := n.lhs.Eval(r)
	if err != nil {
		return Value{}, err
	}
	rv, err := n.rhs.Eval(r)
	if err != nil {
		return Value{}, err
	}
	switch n.op {
	case tokAnd:
		return lv.And(rv), nil
	case tokOr:
		return lv.Or(rv), nil
	case tokEq:
		return Bool(lv.Eq(rv)), nil
	case tokNeq:
		return Bool(lv.Neq(rv)), nil
	case tokLt:
		return Bool(lv.Lt(rv)), nil
	case tokLeq:
		return Bool(lv.Leq(rv)), nil
	case tokGt:
		return Bool(lv.Gt(rv)), nil
	case tokGeq:
		return Bool(lv.Geq(rv)), nil
	case tokPlus:
		return lv.Add(rv), nil
	case tokMinus:
		return lv.Sub(rv), nil
	case tokStar:
		return lv.Mul(rv), nil
	case tokSlash:
		return lv.Div(rv), nil
	default:
		return Value{}, &ParseError{Msg: "invalid binary operator"}
	}
}

type unaryNode struct {
	op   tokenKind
	expr Expr
}

func (n unaryNode) Eval(r Resolver) (Value, error) {
	v, err := n.expr.Eval(r)
	if err != nil {
		return Value{}, err
	}
	switch n.op {
	case tokNot:
		return v.Not(), nil
	case tokMinus:
		return v.Neg(), nil
	case tokPlus:
		return v, nil
	default:
		return Value{}, &ParseError{Msg: "invalid unary operator"}
	}
}

// parser implements precedence climbing over four tiers, lowest to
// highest: {and, or}, {== != < <= > >=}, {+ -}, {* /}.
type parser struct {
	toks []token
	pos  int
	src  string
}

// Parse parses a full expression from input. The entire input must be
// consumed — trailing garbage is a ParseError, which signals callers
// (via eval_as_expr) to treat input as a literal string instead.
func Parse(input string) (Expr, error) {
	toks, err := lex(input)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, src: input}
	expr, err := p.parseLogical()
	if err != nil {
		return nil, err
	}
	if p.cur().kind != tokEOF {
		return nil, &ParseError{Input: input, Msg: "unexpected trailing input"}
	}
	return expr, nil
}

func (p *parser) cur() token { return p.toks[p.pos] }

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) parseLogical() (Expr, error) {
	lhs, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.cur().kind == tokAnd || p.cur().kind == tokOr {
		op := p.advance().kind
		rhs, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		lhs = binNode{op: op, lhs: lhs, rhs: rhs}
	}
	return lhs, nil
}

func (p *parser) parseComparison() (Expr, error) {
	lhs, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for isComparisonOp(p.cur().kind) {
		op := p.advance().kind
		rhs, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		lhs = binNode{op: op, lhs: lhs, rhs: rhs}
	}
	return lhs, nil
}

func isComparisonOp(k tokenKind) bool {
	switch k {
	case tokEq, tokNeq, tokLt, tokLeq, tokGt, tokGeq:
		return true
	default:
		return false
	}
}

func (p *parser) parseAdditive() (Expr, error) {
	lhs, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.cur().kind == tokPlus || p.cur().kind == tokMinus {
		op := p.advance().kind
		rhs, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		lhs = binNode{op: op, lhs: lhs, rhs: rhs}
	}
	return lhs, nil
}

func (p *parser) parseMultiplicative() (Expr, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur().kind == tokStar || p.cur().kind == tokSlash {
		op := p.advance().kind
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		lhs = binNode{op: op, lhs: lhs, rhs: rhs}
	}
	return lhs, nil
}

func (p *parser) parseUnary() (Expr, error) {
	switch p.cur().kind {
	case tokNot, tokMinus, tokPlus:
		op := p.advance().kind
		expr, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryNode{op: op, expr: expr}, nil
	default:
		return p.parsePrimary()
	}
}

func (p *parser) parsePrimary() (Expr, error) {
	t := p.cur()
	switch t.kind {
	case tokNumber:
		p.advance()
		return litNode{v: Number(t.num)}, nil
	case tokString:
		p.advance()
		return litNode{v: String(t.text)}, nil
	case tokBool:
		p.advance()
		return litNode{v: Bool(t.b)}, nil
	case tokVariable:
		p.advance()
		return varNode{name: t.text}, nil
	case tokLParen:
		p.advance()
		expr, err := p.parseLogical()
		if err != nil {
			return nil, err
		}
		if p.cur().kind != tokRParen {
			return nil, &ParseError{Input: p.src, Msg: "expected closing ')'"}
		}
		p.advance()
		return expr, nil
	default:
		return nil, &ParseError{Input: p.src, Msg: "unexpected token"}
	}
}
