// Package parse implements the recursive-descent filter parser and the
// span-based ordering parser. Both consume the token stream produced by
// internal/token and build the ast package's tagged-variant tree.
package parse

import (
	"github.com/go-recordquery/recordquery/internal/ast"
	"github.com/go-recordquery/recordquery/internal/queryerr"
	"github.com/go-recordquery/recordquery/internal/token"
)

// Filter parses a complete filter expression, applying the precedence
// cascade or → and → not → primary (weakest binds loosest). An error is
// returned if any input remains after the expression is fully consumed.
func Filter(input string) (ast.Node, error) {
	tokens, err := token.All(input)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.current().Kind != token.End {
		return nil, queryerr.NewInvalidSyntax(p.current().Value, p.current().Pos)
	}
	return node, nil
}

type parser struct {
	tokens []token.Token
	pos    int
}

func (p *parser) current() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.End}
	}
	return p.tokens[p.pos]
}

func (p *parser) advance() token.Token {
	t := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(k token.Kind) (token.Token, error) {
	t := p.current()
	if t.Kind != k {
		return token.Token{}, queryerr.NewInvalidSyntax(t.Value, t.Pos)
	}
	return p.advance(), nil
}

func (p *parser) parseOr() (ast.Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.current().Kind == token.Logical && p.current().Value == "or" {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.Logical{Op: ast.Or, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (ast.Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.current().Kind == token.Logical && p.current().Value == "and" {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &ast.Logical{Op: ast.And, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (ast.Node, error) {
	if p.current().Kind == token.Not {
		p.advance()
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.Not{Inner: inner}, nil
	}
	return p.parsePrimary()
}

// parsePrimary handles a parenthesized expression, a prefix function call
// (contains/startswith/endswith), or an infix comparison — the three
// non-recursive leaves of the grammar.
func (p *parser) parsePrimary() (ast.Node, error) {
	switch p.current().Kind {
	case token.LParen:
		p.advance()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return inner, nil

	case token.StringFn:
		return p.parseFunctionCall()

	case token.Property:
		return p.parseComparison()

	default:
		t := p.current()
		return nil, queryerr.NewInvalidSyntax(t.Value, t.Pos)
	}
}

func stringFnToOp(fn string) ast.StringFn {
	switch fn {
	case "startswith":
		return ast.FnStartsWith
	case "endswith":
		return ast.FnEndsWith
	default:
		return ast.FnContains
	}
}

func (p *parser) parseFunctionCall() (ast.Node, error) {
	fnTok := p.advance()
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	pathTok, err := p.expect(token.Property)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Comma); err != nil {
		return nil, err
	}
	argTok, err := p.expect(token.Literal)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return &ast.Function{
		Fn:   stringFnToOp(fnTok.Value),
		Path: pathTok.Value,
		Arg:  argTok.Value,
		Pos:  fnTok.Pos,
	}, nil
}

func opFromLexeme(lexeme string) ast.ComparisonOp {
	switch lexeme {
	case "ne":
		return ast.Ne
	case "gt":
		return ast.Gt
	case "ge":
		return ast.Ge
	case "lt":
		return ast.Lt
	case "le":
		return ast.Le
	case "contains":
		return ast.Contains
	case "startswith":
		return ast.StartsWith
	case "endswith":
		return ast.EndsWith
	default:
		return ast.Eq
	}
}

// parseComparison handles infix `path op value`. op is ordinarily an
// Operator token (eq/ne/gt/ge/lt/le), but the three string predicates also
// have an infix spelling (`Path startswith 'x'`), which tokenizes as
// StringFn, the same kind used at the head of their prefix call form
// (`startswith(Path, 'x')`). Both kinds are accepted here.
func (p *parser) parseComparison() (ast.Node, error) {
	pathTok, err := p.expect(token.Property)
	if err != nil {
		return nil, err
	}
	opTok := p.current()
	if opTok.Kind != token.Operator && opTok.Kind != token.StringFn {
		return nil, queryerr.NewInvalidSyntax(opTok.Value, opTok.Pos)
	}
	p.advance()
	rhs := p.current()
	if rhs.Kind != token.Literal && rhs.Kind != token.Property {
		return nil, queryerr.NewInvalidSyntax(rhs.Value, rhs.Pos)
	}
	p.advance()

	return &ast.Comparison{
		Path:        pathTok.Value,
		Op:          opFromLexeme(opTok.Value),
		ValueLexeme: rhs.Value,
		ValueIsPath: rhs.Kind == token.Property,
		Pos:         pathTok.Pos,
	}, nil
}
