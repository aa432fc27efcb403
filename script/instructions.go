package script

import (
	"math"
	"sort"

	"github.com/wippyai/fractview/script/ast"
)

// ValueType is a register type of the target machine.
type ValueType uint8

const (
	Int ValueType = iota
	Real
	Cplx
	Bool
)

func (t ValueType) String() string {
	switch t {
	case Int:
		return "int"
	case Real:
		return "real"
	case Cplx:
		return "cplx"
	case Bool:
		return "bool"
	}
	return "unknown"
}

// Words is the number of bytecode words an inline constant of type t occupies.
func (t ValueType) Words() int {
	switch t {
	case Real:
		return 2
	case Cplx:
		return 4
	}
	return 1
}

// widensTo reports whether a value of type t converts implicitly to u.
func (t ValueType) widensTo(u ValueType) bool {
	if t == u {
		return true
	}
	switch t {
	case Int:
		return u == Real || u == Cplx
	case Real:
		return u == Cplx
	}
	return false
}

// Signature is one overload of an instruction.
type Signature struct {
	Args   []ValueType
	Result ValueType
}

// Instruction is a built-in operation. Overloads are tried in order.
type Instruction struct {
	Name string
	Code int32
	Sigs []Signature
}

// Opcode encodes the instruction, the chosen overload and which operands are
// inline constants (bit i set for argument i).
func (in *Instruction) Opcode(sig int, constMask int) int32 {
	return in.Code*256 + int32(sig)*16 + int32(constMask)
}

// InstructionSet is an immutable registry of instructions and constants.
type InstructionSet struct {
	instrs map[string]*Instruction
	consts map[string]ast.Node
}

// Instructions is the process-wide instruction set.
var Instructions = newInstructionSet()

// Names of instructions the compiler emits for operators.
const (
	OpMov     = "mov"
	OpAdd     = "add"
	OpSub     = "sub"
	OpMul     = "mul"
	OpDiv     = "div"
	OpMod     = "mod"
	OpPow     = "pow"
	OpNeg     = "neg"
	OpCons    = "cons"
	OpPalette = "palette"
)

var binaryOps = map[string]string{
	"+": OpAdd,
	"-": OpSub,
	"*": OpMul,
	"/": OpDiv,
	"%": OpMod,
	"^": OpPow,
	":": OpCons,
}

func sig(result ValueType, args ...ValueType) Signature {
	return Signature{Args: args, Result: result}
}

func newInstructionSet() *InstructionSet {
	set := &InstructionSet{
		instrs: make(map[string]*Instruction),
		consts: map[string]ast.Node{
			"PI": ast.Real{Value: math.Pi},
			"E":  ast.Real{Value: math.E},
			"I":  ast.Complex{Value: complex(0, 1)},
		},
	}

	arith := []Signature{sig(Int, Int, Int), sig(Real, Real, Real), sig(Cplx, Cplx, Cplx)}
	unaryNum := []Signature{sig(Int, Int), sig(Real, Real), sig(Cplx, Cplx)}
	unaryFn := []Signature{sig(Real, Real), sig(Cplx, Cplx)}
	ofCplx := []Signature{sig(Real, Cplx)}

	defs := []struct {
		name string
		sigs []Signature
	}{
		{OpMov, []Signature{
			sig(Int, Int), sig(Real, Real), sig(Cplx, Cplx), sig(Bool, Bool),
			sig(Real, Int), sig(Cplx, Int), sig(Cplx, Real),
		}},
		{OpAdd, arith},
		{OpSub, arith},
		{OpMul, arith},
		{OpDiv, arith},
		{OpMod, []Signature{sig(Int, Int, Int)}},
		{OpPow, []Signature{sig(Int, Int, Int), sig(Real, Real, Int), sig(Cplx, Cplx, Int), sig(Real, Real, Real), sig(Cplx, Cplx, Cplx)}},
		{OpNeg, unaryNum},
		{OpCons, []Signature{sig(Cplx, Real, Real)}},
		{OpPalette, []Signature{sig(Int, Int, Cplx)}},
		{"sqr", unaryNum},
		{"sqrt", unaryFn},
		{"exp", unaryFn},
		{"log", unaryFn},
		{"sin", unaryFn},
		{"cos", unaryFn},
		{"tan", unaryFn},
		{"abs", []Signature{sig(Int, Int), sig(Real, Real), sig(Real, Cplx)}},
		{"re", ofCplx},
		{"im", ofCplx},
		{"rad", ofCplx},
		{"arc", ofCplx},
		{"conj", []Signature{sig(Cplx, Cplx)}},
		{"min", []Signature{sig(Int, Int, Int), sig(Real, Real, Real)}},
		{"max", []Signature{sig(Int, Int, Int), sig(Real, Real, Real)}},
	}

	for i, d := range defs {
		set.instrs[d.name] = &Instruction{Name: d.name, Code: int32(i + 1), Sigs: d.sigs}
	}
	return set
}

// Get returns the instruction registered under name.
func (s *InstructionSet) Get(name string) (*Instruction, bool) {
	in, ok := s.instrs[name]
	return in, ok
}

// Lookup resolves name to a builtin reference or a constant literal.
func (s *InstructionSet) Lookup(name string) (ast.Node, bool) {
	if c, ok := s.consts[name]; ok {
		return c, true
	}
	if _, ok := s.instrs[name]; ok {
		return ast.Builtin{Name: name}, true
	}
	return nil, false
}

// Names lists all instruction and constant names, sorted.
func (s *InstructionSet) Names() []string {
	names := make([]string, 0, len(s.instrs)+len(s.consts))
	for n := range s.instrs {
		names = append(names, n)
	}
	for n := range s.consts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
