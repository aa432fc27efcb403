// Package ast defines the trees produced by the script parser and consumed by
// the compiler. Literal nodes double as the value encoding handed back by a
// resolver during compilation.
package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Pos is a 1-based source position. The zero Pos marks synthesized nodes.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	if p.Line == 0 {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Node is any expression tree.
type Node interface {
	fmt.Stringer
	node()
}

type (
	Int struct {
		Value int32
	}

	Real struct {
		Value float64
	}

	Complex struct {
		Value complex128
	}

	Bool struct {
		Value bool
	}

	String struct {
		Value string
	}

	Vec struct {
		Items []Node
	}

	Ident struct {
		Name string
		At   Pos
	}

	Unary struct {
		Op string
		X  Node
		At Pos
	}

	Binary struct {
		Op string
		X  Node
		Y  Node
		At Pos
	}

	Call struct {
		Fn   Node
		Args []Node
		At   Pos
	}

	// Builtin refers to an entry of the instruction set by name.
	Builtin struct {
		Name string
	}

	// Partial is a builtin with its leading arguments already bound.
	Partial struct {
		Name string
		Args []Node
	}
)

func (Int) node()      {}
func (Real) node()     {}
func (Complex) node()  {}
func (Bool) node()     {}
func (String) node()   {}
func (*Vec) node()     {}
func (*Ident) node()   {}
func (*Unary) node()   {}
func (*Binary) node()  {}
func (*Call) node()    {}
func (Builtin) node()  {}
func (*Partial) node() {}

func (n Int) String() string  { return strconv.FormatInt(int64(n.Value), 10) }
func (n Real) String() string { return strconv.FormatFloat(n.Value, 'g', -1, 64) }
func (n Complex) String() string {
	return fmt.Sprintf("(%s:%s)",
		strconv.FormatFloat(real(n.Value), 'g', -1, 64),
		strconv.FormatFloat(imag(n.Value), 'g', -1, 64))
}
func (n Bool) String() string    { return strconv.FormatBool(n.Value) }
func (n String) String() string  { return strconv.Quote(n.Value) }
func (n *Vec) String() string    { return "[" + joinNodes(n.Items) + "]" }
func (n *Ident) String() string  { return n.Name }
func (n *Unary) String() string  { return n.Op + n.X.String() }
func (n *Binary) String() string { return "(" + n.X.String() + " " + n.Op + " " + n.Y.String() + ")" }
func (n *Call) String() string   { return n.Fn.String() + "(" + joinNodes(n.Args) + ")" }
func (n Builtin) String() string { return n.Name }
func (n *Partial) String() string {
	return n.Name + "(" + joinNodes(n.Args) + ", _)"
}

func joinNodes(nodes []Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, ", ")
}

// Stmt is a top-level program statement.
type Stmt interface {
	stmt()
}

type (
	// VarDecl declares a variable, optionally initialized.
	VarDecl struct {
		Name  string
		Value Node
		At    Pos
	}

	Assign struct {
		Name  string
		Value Node
		At    Pos
	}

	ExprStmt struct {
		X Node
	}
)

func (*VarDecl) stmt()  {}
func (*Assign) stmt()   {}
func (*ExprStmt) stmt() {}

// Program is a parsed script body without its extern declarations.
type Program struct {
	Stmts []Stmt
}

// ExternDecl is an `extern` statement: a named, typed parameter with a
// default value. TypeName is kept verbatim; it is validated at resolution.
type ExternDecl struct {
	ID          string
	TypeName    string
	Default     Node
	Description string
	At          Pos
}
