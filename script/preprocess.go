package script

import (
	"github.com/wippyai/fractview/script/ast"
)

// Preprocess folds constant subtrees of a default value so that literals
// such as -1, 1:2 or 2*PI reach the type conversions as plain literals.
// Subtrees that cannot be folded are returned unchanged.
func Preprocess(n ast.Node, set *InstructionSet) ast.Node {
	switch n := n.(type) {
	case *ast.Ident:
		if c, ok := set.consts[n.Name]; ok {
			return c
		}
		return n

	case *ast.Vec:
		items := make([]ast.Node, len(n.Items))
		for i, item := range n.Items {
			items[i] = Preprocess(item, set)
		}
		return &ast.Vec{Items: items}

	case *ast.Unary:
		x := Preprocess(n.X, set)
		switch x := x.(type) {
		case ast.Int:
			return ast.Int{Value: -x.Value}
		case ast.Real:
			return ast.Real{Value: -x.Value}
		case ast.Complex:
			return ast.Complex{Value: -x.Value}
		}
		return &ast.Unary{Op: n.Op, X: x, At: n.At}

	case *ast.Binary:
		x := Preprocess(n.X, set)
		y := Preprocess(n.Y, set)
		if folded, ok := fold(n.Op, x, y); ok {
			return folded
		}
		return &ast.Binary{Op: n.Op, X: x, Y: y, At: n.At}
	}
	return n
}

func fold(op string, x, y ast.Node) (ast.Node, bool) {
	tx, okx := literalType(x)
	ty, oky := literalType(y)
	if !okx || !oky {
		return nil, false
	}

	if op == ":" {
		if !tx.widensTo(Real) || !ty.widensTo(Real) {
			return nil, false
		}
		return ast.Complex{Value: complex(asReal(x), asReal(y))}, true
	}

	t := tx
	if ty > t {
		t = ty
	}

	switch t {
	case Int:
		a, b := x.(ast.Int).Value, y.(ast.Int).Value
		switch op {
		case "+":
			return ast.Int{Value: a + b}, true
		case "-":
			return ast.Int{Value: a - b}, true
		case "*":
			return ast.Int{Value: a * b}, true
		case "/":
			if b != 0 {
				return ast.Int{Value: a / b}, true
			}
		case "%":
			if b != 0 {
				return ast.Int{Value: a % b}, true
			}
		}
	case Real:
		a, b := asReal(x), asReal(y)
		switch op {
		case "+":
			return ast.Real{Value: a + b}, true
		case "-":
			return ast.Real{Value: a - b}, true
		case "*":
			return ast.Real{Value: a * b}, true
		case "/":
			return ast.Real{Value: a / b}, true
		}
	case Cplx:
		a, b := asCplx(x), asCplx(y)
		switch op {
		case "+":
			return ast.Complex{Value: a + b}, true
		case "-":
			return ast.Complex{Value: a - b}, true
		case "*":
			return ast.Complex{Value: a * b}, true
		case "/":
			return ast.Complex{Value: a / b}, true
		}
	}
	return nil, false
}

func literalType(n ast.Node) (ValueType, bool) {
	switch n.(type) {
	case ast.Int:
		return Int, true
	case ast.Real:
		return Real, true
	case ast.Complex:
		return Cplx, true
	}
	return 0, false
}

func asReal(n ast.Node) float64 {
	switch n := n.(type) {
	case ast.Int:
		return float64(n.Value)
	case ast.Real:
		return n.Value
	}
	return 0
}

func asCplx(n ast.Node) complex128 {
	if c, ok := n.(ast.Complex); ok {
		return c.Value
	}
	return complex(asReal(n), 0)
}
