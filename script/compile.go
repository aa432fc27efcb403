package script

import (
	"fmt"
	"math"
	"strings"

	fverrors "github.com/wippyai/fractview/errors"
	"github.com/wippyai/fractview/script/ast"
)

// Bytecode is the linear program handed to the rendering machine. Each
// instruction is laid out as [opcode, operands..., destination register].
type Bytecode []int32

// Resolver supplies values for identifiers the program does not declare
// itself. A nil node with a nil error means the identifier is unknown.
type Resolver interface {
	Resolve(id string) (ast.Node, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(id string) (ast.Node, error)

func (f ResolverFunc) Resolve(id string) (ast.Node, error) { return f(id) }

type operand struct {
	val  ast.Node // inline constant, nil for registers
	reg  int32
	typ  ValueType
	temp bool
}

type compiler struct {
	set       *InstructionSet
	resolver  Resolver
	vars      map[string]operand
	resolved  map[string]ast.Node
	expanding map[string]bool
	code      Bytecode
	nextReg   int32
}

// Compile translates prog into bytecode. Identifiers that are not local
// variables are looked up through r once per compilation; errors returned by
// r are passed through unchanged.
func Compile(prog *ast.Program, set *InstructionSet, r Resolver) (Bytecode, error) {
	if set == nil {
		set = Instructions
	}
	c := &compiler{
		set:       set,
		resolver:  r,
		vars:      make(map[string]operand),
		resolved:  make(map[string]ast.Node),
		expanding: make(map[string]bool),
	}

	for _, s := range prog.Stmts {
		if err := c.stmt(s); err != nil {
			return nil, err
		}
	}
	if c.code == nil {
		c.code = Bytecode{}
	}
	return c.code, nil
}

func (c *compiler) stmt(s ast.Stmt) error {
	switch s := s.(type) {
	case *ast.VarDecl:
		if _, ok := c.vars[s.Name]; ok {
			return fverrors.New(fverrors.PhaseCompile, fverrors.KindInvalidInput).
				Param(s.Name).Pos(s.At.Line, s.At.Col).
				Detail("variable %q already declared", s.Name).Build()
		}
		if s.Value == nil {
			c.vars[s.Name] = c.mov(operand{val: ast.Int{}, typ: Int}, Int, c.alloc())
			return nil
		}
		op, err := c.expr(s.Value, s.At)
		if err != nil {
			return err
		}
		if op.temp {
			op.temp = false
			c.vars[s.Name] = op
			return nil
		}
		c.vars[s.Name] = c.mov(op, op.typ, c.alloc())
		return nil

	case *ast.Assign:
		target, ok := c.vars[s.Name]
		if !ok {
			return fverrors.Undefined(s.Name, s.At.Line, s.At.Col)
		}
		op, err := c.expr(s.Value, s.At)
		if err != nil {
			return err
		}
		if !op.typ.widensTo(target.typ) {
			return fverrors.New(fverrors.PhaseCompile, fverrors.KindTypeMismatch).
				Param(s.Name).Type(target.typ.String()).Pos(s.At.Line, s.At.Col).
				Detail("cannot assign %s", op.typ).Build()
		}
		c.mov(op, target.typ, target.reg)
		return nil

	case *ast.ExprStmt:
		_, err := c.expr(s.X, ast.Pos{})
		return err
	}
	return fverrors.Unsupported(fverrors.PhaseCompile, fmt.Sprintf("statement %T", s))
}

func (c *compiler) expr(n ast.Node, pos ast.Pos) (operand, error) {
	switch n := n.(type) {
	case ast.Int:
		return operand{val: n, typ: Int}, nil
	case ast.Real:
		return operand{val: n, typ: Real}, nil
	case ast.Complex:
		return operand{val: n, typ: Cplx}, nil
	case ast.Bool:
		return operand{val: n, typ: Bool}, nil

	case *ast.Ident:
		if v, ok := c.vars[n.Name]; ok {
			v.temp = false
			return v, nil
		}
		return c.ident(n.Name, n.At)

	case *ast.Unary:
		x, err := c.expr(n.X, n.At)
		if err != nil {
			return operand{}, err
		}
		return c.call(OpNeg, []operand{x}, n.At)

	case *ast.Binary:
		name, ok := binaryOps[n.Op]
		if !ok {
			return operand{}, fverrors.Syntax(n.At.Line, n.At.Col, "unknown operator %q", n.Op)
		}
		x, err := c.expr(n.X, n.At)
		if err != nil {
			return operand{}, err
		}
		y, err := c.expr(n.Y, n.At)
		if err != nil {
			return operand{}, err
		}
		return c.call(name, []operand{x, y}, n.At)

	case *ast.Call:
		name, bound, err := c.callee(n.Fn, n.At)
		if err != nil {
			return operand{}, err
		}
		all := make([]ast.Node, 0, len(bound)+len(n.Args))
		all = append(append(all, bound...), n.Args...)
		args := make([]operand, 0, len(all))
		for _, a := range all {
			op, err := c.expr(a, n.At)
			if err != nil {
				return operand{}, err
			}
			args = append(args, op)
		}
		return c.call(name, args, n.At)

	case ast.Builtin, *ast.Partial:
		return operand{}, fverrors.New(fverrors.PhaseCompile, fverrors.KindTypeMismatch).
			Pos(pos.Line, pos.Col).Detail("function %s used as a value", n).Build()

	case ast.String:
		return operand{}, fverrors.Unsupported(fverrors.PhaseCompile, "string literal in expression")
	case *ast.Vec:
		return operand{}, fverrors.Unsupported(fverrors.PhaseCompile, "vector literal in expression")
	}
	return operand{}, fverrors.Unsupported(fverrors.PhaseCompile, fmt.Sprintf("expression %T", n))
}

// ident compiles the tree the resolver returned for id. Trees may refer to
// further identifiers; a tree that refers back to id is rejected.
func (c *compiler) ident(id string, pos ast.Pos) (operand, error) {
	n, err := c.resolve(id, pos)
	if err != nil {
		return operand{}, err
	}
	if c.expanding[id] {
		return operand{}, fverrors.New(fverrors.PhaseCompile, fverrors.KindRecursive).
			Param(id).Pos(pos.Line, pos.Col).
			Detail("%q refers to itself", id).Build()
	}
	c.expanding[id] = true
	defer delete(c.expanding, id)
	return c.expr(n, pos)
}

func (c *compiler) resolve(id string, pos ast.Pos) (ast.Node, error) {
	if n, ok := c.resolved[id]; ok {
		return n, nil
	}

	var n ast.Node
	if c.resolver != nil {
		var err error
		if n, err = c.resolver.Resolve(id); err != nil {
			return nil, err
		}
	} else if b, ok := c.set.Lookup(id); ok {
		n = b
	}
	if n == nil {
		return nil, fverrors.Undefined(id, pos.Line, pos.Col)
	}

	c.resolved[id] = n
	return n, nil
}

func (c *compiler) callee(fn ast.Node, pos ast.Pos) (string, []ast.Node, error) {
	if id, ok := fn.(*ast.Ident); ok {
		if _, local := c.vars[id.Name]; local {
			return "", nil, fverrors.New(fverrors.PhaseCompile, fverrors.KindTypeMismatch).
				Param(id.Name).Pos(id.At.Line, id.At.Col).Detail("%q is not a function", id.Name).Build()
		}
		n, err := c.resolve(id.Name, id.At)
		if err != nil {
			return "", nil, err
		}
		fn = n
	}

	switch f := fn.(type) {
	case ast.Builtin:
		return f.Name, nil, nil
	case *ast.Partial:
		return f.Name, f.Args, nil
	}
	return "", nil, fverrors.New(fverrors.PhaseCompile, fverrors.KindTypeMismatch).
		Pos(pos.Line, pos.Col).Detail("%s is not a function", fn).Build()
}

// call emits one instruction into a fresh register, picking the first
// overload every argument widens to.
func (c *compiler) call(name string, args []operand, pos ast.Pos) (operand, error) {
	in, ok := c.set.Get(name)
	if !ok {
		return operand{}, fverrors.Undefined(name, pos.Line, pos.Col)
	}

	idx := -1
	for i, s := range in.Sigs {
		if len(s.Args) != len(args) {
			continue
		}
		match := true
		for j, a := range args {
			if !a.typ.widensTo(s.Args[j]) {
				match = false
				break
			}
		}
		if match {
			idx = i
			break
		}
	}
	if idx < 0 {
		types := make([]string, len(args))
		for i, a := range args {
			types[i] = a.typ.String()
		}
		return operand{}, fverrors.New(fverrors.PhaseCompile, fverrors.KindTypeMismatch).
			Pos(pos.Line, pos.Col).
			Detail("no overload of %s for (%s)", name, strings.Join(types, ", ")).Build()
	}
	s := in.Sigs[idx]

	// Register arguments that need widening go through mov first.
	for j := range args {
		if args[j].val == nil && args[j].typ != s.Args[j] {
			args[j] = c.mov(args[j], s.Args[j], c.alloc())
		}
	}

	mask := 0
	for j, a := range args {
		if a.val != nil {
			mask |= 1 << j
		}
	}

	dst := c.alloc()
	c.code = append(c.code, in.Opcode(idx, mask))
	for j, a := range args {
		c.operand(a, s.Args[j])
	}
	c.code = append(c.code, dst)
	return operand{reg: dst, typ: s.Result, temp: true}, nil
}

// mov copies src into register dst of type t.
func (c *compiler) mov(src operand, t ValueType, dst int32) operand {
	in, _ := c.set.Get(OpMov)

	from := src.typ
	if src.val != nil {
		from = t
	}
	idx := 0
	for i, s := range in.Sigs {
		if s.Args[0] == from && s.Result == t {
			idx = i
			break
		}
	}

	mask := 0
	if src.val != nil {
		mask = 1
	}
	c.code = append(c.code, in.Opcode(idx, mask))
	c.operand(src, from)
	c.code = append(c.code, dst)
	return operand{reg: dst, typ: t}
}

// operand appends a register index or the inline words of a constant
// converted to t.
func (c *compiler) operand(a operand, t ValueType) {
	if a.val == nil {
		c.code = append(c.code, a.reg)
		return
	}
	switch t {
	case Int:
		c.code = append(c.code, a.val.(ast.Int).Value)
	case Bool:
		var w int32
		if a.val.(ast.Bool).Value {
			w = 1
		}
		c.code = append(c.code, w)
	case Real:
		c.code = appendFloat(c.code, asReal(a.val))
	case Cplx:
		v := asCplx(a.val)
		c.code = appendFloat(c.code, real(v))
		c.code = appendFloat(c.code, imag(v))
	}
}

func appendFloat(code Bytecode, f float64) Bytecode {
	bits := math.Float64bits(f)
	return append(code, int32(uint32(bits)), int32(uint32(bits>>32)))
}

func (c *compiler) alloc() int32 {
	r := c.nextReg
	c.nextReg++
	return r
}
