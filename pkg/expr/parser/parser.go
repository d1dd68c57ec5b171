// Package parser builds an expression AST from a token stream.
//
// The grammar is a conventional expression grammar parsed by recursive
// descent, lowest precedence first:
//
//	conditional  → or ("?" conditional ":" conditional)?   (right-associative)
//	or           → and ("||" and)*
//	and          → equality ("&&" equality)*
//	equality     → relational (("===" | "!==" | "==" | "!=") relational)*
//	relational   → additive (("<" | ">" | "<=" | ">=") additive)*
//	additive     → multiplicative (("+" | "-") multiplicative)*
//	multiplicative → unary (("*" | "/" | "%") unary)*
//	unary        → ("!" | "-") unary | postfix
//	postfix      → primary ("." IDENT | "[" conditional "]")*
//	primary      → NUMBER | STRING | BOOLEAN | NULL | IDENT | "(" conditional ")"
package parser

import (
	"fmt"
	"strconv"

	"hexbind/enclave/pkg/expr/ast"
	exprErrors "hexbind/enclave/pkg/expr/errors"
	"hexbind/enclave/pkg/expr/token"
	"hexbind/enclave/pkg/expr/value"
)

// Parse builds an AST from tokens. The stream must end with an EOF token and
// must contain exactly one complete expression; trailing tokens are a syntax
// error.
func Parse(tokens []token.Token) (ast.Node, error) {
	p := &parser{tokens: tokens}

	node, err := p.parseConditional()
	if err != nil {
		return nil, err
	}

	if !p.current().Is(token.KindEOF) {
		return nil, exprErrors.NewSyntax(fmt.Sprintf(
			"unexpected %s after expression", p.current()), p.current().Pos)
	}

	return node, nil
}

type parser struct {
	tokens []token.Token
	pos    int
}

// current returns the token under the cursor. The lexer guarantees a
// trailing EOF token, so current never runs off the end.
func (p *parser) current() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.KindEOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) advance() token.Token {
	tok := p.current()
	p.pos++
	return tok
}

// expect consumes a token of the given kind or fails with a syntax error.
func (p *parser) expect(kind token.Kind, what string) (token.Token, error) {
	tok := p.current()
	if !tok.Is(kind) {
		return token.Token{}, exprErrors.NewSyntax(fmt.Sprintf(
			"expected %s, found %s", what, tok), tok.Pos)
	}
	p.pos++
	return tok, nil
}

// parseConditional parses a ternary. The alternate recurses back into this
// rule, which makes chains like "a ? b : c ? d : e" right-associative.
func (p *parser) parseConditional() (ast.Node, error) {
	test, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if !p.current().IsOperator("?") {
		return test, nil
	}
	question := p.advance()

	consequent, err := p.parseConditional()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.KindColon, `":" in conditional`); err != nil {
		return nil, err
	}

	alternate, err := p.parseConditional()
	if err != nil {
		return nil, err
	}

	return &ast.Conditional{
		Test:       test,
		Consequent: consequent,
		Alternate:  alternate,
		Position:   question.Pos,
	}, nil
}

// parseBinaryLevel parses one left-associative precedence level.
func (p *parser) parseBinaryLevel(operators []string, next func() (ast.Node, error)) (ast.Node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}

	for {
		matched := false
		for _, op := range operators {
			if p.current().IsOperator(op) {
				opTok := p.advance()

				right, err := next()
				if err != nil {
					return nil, err
				}

				left = &ast.Binary{Op: op, Left: left, Right: right, Position: opTok.Pos}
				matched = true
				break
			}
		}
		if !matched {
			return left, nil
		}
	}
}

func (p *parser) parseOr() (ast.Node, error) {
	return p.parseBinaryLevel([]string{"||"}, p.parseAnd)
}

func (p *parser) parseAnd() (ast.Node, error) {
	return p.parseBinaryLevel([]string{"&&"}, p.parseEquality)
}

func (p *parser) parseEquality() (ast.Node, error) {
	return p.parseBinaryLevel([]string{"===", "!==", "==", "!="}, p.parseRelational)
}

func (p *parser) parseRelational() (ast.Node, error) {
	return p.parseBinaryLevel([]string{"<=", ">=", "<", ">"}, p.parseAdditive)
}

func (p *parser) parseAdditive() (ast.Node, error) {
	return p.parseBinaryLevel([]string{"+", "-"}, p.parseMultiplicative)
}

func (p *parser) parseMultiplicative() (ast.Node, error) {
	return p.parseBinaryLevel([]string{"*", "/", "%"}, p.parseUnary)
}

func (p *parser) parseUnary() (ast.Node, error) {
	tok := p.current()
	if tok.IsOperator("!") || tok.IsOperator("-") {
		p.advance()

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &ast.Unary{Op: tok.Text, Right: right, Position: tok.Pos}, nil
	}

	return p.parsePostfix()
}

// parsePostfix parses a left-associative chain of member and index accesses
// on a primary expression.
func (p *parser) parsePostfix() (ast.Node, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.current().Is(token.KindDot):
			p.advance()

			prop, err := p.expect(token.KindIdentifier, "property name after \".\"")
			if err != nil {
				return nil, err
			}

			node = &ast.Member{Object: node, Property: prop.Text, Position: prop.Pos}

		case p.current().Is(token.KindLBracket):
			bracket := p.advance()

			key, err := p.parseConditional()
			if err != nil {
				return nil, err
			}

			if _, err := p.expect(token.KindRBracket, `closing "]"`); err != nil {
				return nil, err
			}

			node = &ast.Index{Object: node, Key: key, Position: bracket.Pos}

		default:
			return node, nil
		}
	}
}

func (p *parser) parsePrimary() (ast.Node, error) {
	tok := p.current()

	switch tok.Kind {
	case token.KindNumber:
		n, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, exprErrors.NewSyntax(fmt.Sprintf(
				"invalid number literal %q", tok.Text), tok.Pos)
		}
		p.advance()
		return &ast.Literal{Value: value.Number(n), Position: tok.Pos}, nil

	case token.KindString:
		p.advance()
		return &ast.Literal{Value: value.String(tok.Text), Position: tok.Pos}, nil

	case token.KindBoolean:
		p.advance()
		return &ast.Literal{Value: value.Bool(tok.Text == "true"), Position: tok.Pos}, nil

	case token.KindNull:
		p.advance()
		return &ast.Literal{Value: value.Null(), Position: tok.Pos}, nil

	case token.KindIdentifier:
		p.advance()
		return &ast.Identifier{Name: tok.Text, Position: tok.Pos}, nil

	case token.KindLParen:
		p.advance()

		node, err := p.parseConditional()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(token.KindRParen, `closing ")"`); err != nil {
			return nil, err
		}

		return node, nil
	}

	return nil, exprErrors.NewSyntax(fmt.Sprintf(
		"unexpected %s at start of expression", tok), tok.Pos)
}
