package parser

import (
	"strconv"
	"strings"

	"github.com/wippyai/fractview/script/ast"
	"github.com/wippyai/fractview/script/internal/token"
)

// Precedence, lowest first: cons (:), additive, multiplicative, unary minus,
// power (right associative), application, primary.

func (p *Parser) parseExpr() (ast.Node, error) {
	x, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if p.isPunct(":") {
		op := p.next()
		y, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		x = &ast.Binary{Op: ":", X: x, Y: y, At: at(op)}
	}
	return x, nil
}

func (p *Parser) parseAdditive() (ast.Node, error) {
	x, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.isPunct("+") || p.isPunct("-") {
		op := p.next()
		y, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		x = &ast.Binary{Op: op.Value, X: x, Y: y, At: at(op)}
	}
	return x, nil
}

func (p *Parser) parseTerm() (ast.Node, error) {
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.isPunct("*") || p.isPunct("/") || p.isPunct("%") {
		op := p.next()
		y, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		x = &ast.Binary{Op: op.Value, X: x, Y: y, At: at(op)}
	}
	return x, nil
}

func (p *Parser) parseUnary() (ast.Node, error) {
	if p.isPunct("-") {
		op := p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: "-", X: x, At: at(op)}, nil
	}
	return p.parsePower()
}

func (p *Parser) parsePower() (ast.Node, error) {
	x, err := p.parseApplication()
	if err != nil {
		return nil, err
	}
	if p.isPunct("^") {
		op := p.next()
		y, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		x = &ast.Binary{Op: "^", X: x, Y: y, At: at(op)}
	}
	return x, nil
}

func (p *Parser) parseApplication() (ast.Node, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.isPunct("(") {
		open := p.next()
		args, err := p.parseList(")")
		if err != nil {
			return nil, err
		}
		x = &ast.Call{Fn: x, Args: args, At: at(open)}
	}
	return x, nil
}

// parseList reads comma-separated expressions up to and including the closer.
func (p *Parser) parseList(closer string) ([]ast.Node, error) {
	var items []ast.Node
	if p.isPunct(closer) {
		p.next()
		return items, nil
	}
	for {
		item, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.isPunct(",") {
			p.next()
			continue
		}
		if _, err := p.expectPunct(closer); err != nil {
			return nil, err
		}
		return items, nil
	}
}

func (p *Parser) parsePrimary() (ast.Node, error) {
	t := p.next()
	switch t.Type {
	case token.Int:
		v, err := parseInt(t.Value)
		if err != nil {
			return nil, p.errorf(t, "integer %s out of range", t.Value)
		}
		return ast.Int{Value: v}, nil

	case token.Real:
		v, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return nil, p.errorf(t, "bad real %s", t.Value)
		}
		return ast.Real{Value: v}, nil

	case token.String:
		return ast.String{Value: t.Value}, nil

	case token.Color:
		return ast.Int{Value: parseColor(t.Value)}, nil

	case token.Ident:
		switch t.Value {
		case "true":
			return ast.Bool{Value: true}, nil
		case "false":
			return ast.Bool{Value: false}, nil
		case "extern", "var":
			return nil, p.errorf(t, "unexpected %s", describe(t))
		}
		return &ast.Ident{Name: t.Value, At: at(t)}, nil

	case token.Punct:
		switch t.Value {
		case "(":
			x, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			return x, nil
		case "[":
			items, err := p.parseList("]")
			if err != nil {
				return nil, err
			}
			return &ast.Vec{Items: items}, nil
		}
	}
	return nil, p.errorf(t, "unexpected %s", describe(t))
}

// parseInt accepts decimal int32 values and hexadecimal values up to 32 bits,
// which wrap to their two's complement.
func parseInt(s string) (int32, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 32)
		return int32(uint32(v)), err
	}
	v, err := strconv.ParseInt(s, 10, 32)
	return int32(v), err
}

// parseColor turns rgb, argb, rrggbb or aarrggbb digits into an ARGB word.
func parseColor(s string) int32 {
	if len(s) == 3 || len(s) == 4 {
		var b strings.Builder
		for _, c := range s {
			b.WriteRune(c)
			b.WriteRune(c)
		}
		s = b.String()
	}
	if len(s) == 6 {
		s = "ff" + s
	}
	v, _ := strconv.ParseUint(s, 16, 32)
	return int32(uint32(v))
}
