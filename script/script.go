package script

import (
	"errors"

	fverrors "github.com/wippyai/fractview/errors"
	"github.com/wippyai/fractview/script/ast"
	"github.com/wippyai/fractview/script/internal/parser"
	"github.com/wippyai/fractview/script/internal/token"
)

// Unit is a parsed script: its program body and its extern declarations in
// declaration order.
type Unit struct {
	Source  string
	Program *ast.Program
	Externs []*ast.ExternDecl
	index   map[string]*ast.ExternDecl
}

// Extern returns the declaration for id.
func (u *Unit) Extern(id string) (*ast.ExternDecl, bool) {
	d, ok := u.index[id]
	return d, ok
}

// Parse parses a complete script.
func Parse(source string) (*Unit, error) {
	tokens, err := tokenize(source)
	if err != nil {
		return nil, err
	}
	prog, externs, err := parser.New(tokens).Parse()
	if err != nil {
		return nil, err
	}

	u := &Unit{
		Source:  source,
		Program: prog,
		Externs: externs,
		index:   make(map[string]*ast.ExternDecl, len(externs)),
	}
	for _, d := range externs {
		u.index[d.ID] = d
	}
	return u, nil
}

// ParseExpr parses text as a single expression.
func ParseExpr(text string) (ast.Node, error) {
	tokens, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	return parser.New(tokens).ParseExpr()
}

func tokenize(source string) ([]token.Token, error) {
	tokens, err := token.Tokenize(source)
	if err != nil {
		var te *token.Error
		if errors.As(err, &te) {
			return nil, fverrors.Syntax(te.Line, te.Col, "%s", te.Msg)
		}
		return nil, err
	}
	return tokens, nil
}
