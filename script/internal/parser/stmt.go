package parser

import (
	"github.com/wippyai/fractview/script/ast"
	"github.com/wippyai/fractview/script/internal/token"
)

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch {
	case p.isKeyword("extern"):
		return nil, p.parseExtern()
	case p.isKeyword("var"):
		return p.parseVar()
	}

	t := p.peek()
	if t.Type == token.Ident && !isReserved(t.Value) {
		if eq := p.peekAt(1); eq.Type == token.Punct && eq.Value == "=" {
			p.next()
			p.next()
			val, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			return &ast.Assign{Name: t.Value, Value: val, At: at(t)}, nil
		}
	}

	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.ExprStmt{X: x}, nil
}

// extern ID [STRING] TYPE = expr
func (p *Parser) parseExtern() error {
	kw := p.next()

	id, err := p.expectIdent()
	if err != nil {
		return err
	}

	desc := id.Value
	if t := p.peek(); t.Type == token.String {
		p.next()
		desc = t.Value
	}

	typ, err := p.expectIdent()
	if err != nil {
		return err
	}

	if _, err := p.expectPunct("="); err != nil {
		return err
	}

	def, err := p.parseExpr()
	if err != nil {
		return err
	}

	if p.seen[id.Value] {
		return p.errorf(id, "duplicate extern %q", id.Value)
	}
	p.seen[id.Value] = true

	p.externs = append(p.externs, &ast.ExternDecl{
		ID:          id.Value,
		TypeName:    typ.Value,
		Default:     def,
		Description: desc,
		At:          at(kw),
	})
	return nil
}

// var ID [= expr]
func (p *Parser) parseVar() (ast.Stmt, error) {
	p.next()

	id, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	decl := &ast.VarDecl{Name: id.Value, At: at(id)}
	if p.isPunct("=") {
		p.next()
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		decl.Value = val
	}
	return decl, nil
}
