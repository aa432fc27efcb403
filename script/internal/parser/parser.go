package parser

import (
	"strconv"

	fverrors "github.com/wippyai/fractview/errors"
	"github.com/wippyai/fractview/script/ast"
	"github.com/wippyai/fractview/script/internal/token"
)

type Parser struct {
	tokens  []token.Token
	externs []*ast.ExternDecl
	seen    map[string]bool
	pos     int
}

func New(tokens []token.Token) *Parser {
	return &Parser{
		tokens: tokens,
		seen:   make(map[string]bool),
	}
}

// Parse reads a complete script. Extern declarations are returned separately
// in declaration order and do not appear in the program body.
func (p *Parser) Parse() (*ast.Program, []*ast.ExternDecl, error) {
	prog := &ast.Program{}
	for {
		for p.isPunct(";") {
			p.next()
		}
		if p.peek().Type == token.EOF {
			return prog, p.externs, nil
		}

		stmt, err := p.parseStmt()
		if err != nil {
			return nil, nil, err
		}
		if stmt != nil {
			prog.Stmts = append(prog.Stmts, stmt)
		}

		t := p.peek()
		if t.Type == token.EOF {
			return prog, p.externs, nil
		}
		if !p.isPunct(";") {
			return nil, nil, p.errorf(t, "expected ';', got %s", describe(t))
		}
	}
}

// ParseExpr reads a single expression that must span the whole input.
func (p *Parser) ParseExpr() (ast.Node, error) {
	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.Type != token.EOF {
		return nil, p.errorf(t, "unexpected %s after expression", describe(t))
	}
	return n, nil
}

func (p *Parser) peek() *token.Token {
	return &p.tokens[p.pos]
}

func (p *Parser) peekAt(off int) *token.Token {
	if p.pos+off >= len(p.tokens) {
		return &p.tokens[len(p.tokens)-1]
	}
	return &p.tokens[p.pos+off]
}

func (p *Parser) next() *token.Token {
	t := &p.tokens[p.pos]
	if t.Type != token.EOF {
		p.pos++
	}
	return t
}

func (p *Parser) isPunct(v string) bool {
	t := p.peek()
	return t.Type == token.Punct && t.Value == v
}

func (p *Parser) isKeyword(v string) bool {
	t := p.peek()
	return t.Type == token.Ident && t.Value == v
}

func (p *Parser) expectPunct(v string) (*token.Token, error) {
	t := p.next()
	if t.Type != token.Punct || t.Value != v {
		return nil, p.errorf(t, "expected '%s', got %s", v, describe(t))
	}
	return t, nil
}

func (p *Parser) expectIdent() (*token.Token, error) {
	t := p.next()
	if t.Type != token.Ident || isReserved(t.Value) {
		return nil, p.errorf(t, "expected identifier, got %s", describe(t))
	}
	return t, nil
}

func (p *Parser) errorf(t *token.Token, format string, args ...any) error {
	return fverrors.Syntax(t.Line, t.Col, format, args...)
}

func describe(t *token.Token) string {
	if t.Type == token.EOF {
		return "end of input"
	}
	return strconv.Quote(t.Value)
}

func isReserved(s string) bool {
	switch s {
	case "extern", "var", "true", "false":
		return true
	}
	return false
}

func at(t *token.Token) ast.Pos {
	return ast.Pos{Line: t.Line, Col: t.Col}
}
