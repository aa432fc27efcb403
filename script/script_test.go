package script

import (
	"errors"
	"math"
	"testing"

	fverrors "github.com/wippyai/fractview/errors"
	"github.com/wippyai/fractview/script/ast"
)

func mustParse(t *testing.T, src string) *Unit {
	t.Helper()
	u, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return u
}

func values(m map[string]ast.Node) Resolver {
	return ResolverFunc(func(id string) (ast.Node, error) {
		if n, ok := m[id]; ok {
			return n, nil
		}
		if n, ok := Instructions.Lookup(id); ok {
			return n, nil
		}
		return nil, nil
	})
}

func opcode(name string, sig, mask int) int32 {
	in, _ := Instructions.Get(name)
	return in.Opcode(sig, mask)
}

func TestParseUnit(t *testing.T) {
	u := mustParse(t, "extern a int = 0; extern b int = 1; var d = a + b;")
	if len(u.Externs) != 2 {
		t.Fatalf("got %d externs", len(u.Externs))
	}
	if d, ok := u.Extern("b"); !ok || d.TypeName != "int" {
		t.Errorf("Extern(b) = %v, %v", d, ok)
	}
	if _, ok := u.Extern("d"); ok {
		t.Error("variables are not externs")
	}
}

func TestParseLexicalError(t *testing.T) {
	_, err := Parse(`var x = "abc`)
	if !errors.Is(err, fverrors.ErrSyntax) {
		t.Errorf("expected syntax error, got %v", err)
	}
}

func TestCompileConstant(t *testing.T) {
	u := mustParse(t, "var x = 2;")
	code, err := Compile(u.Program, Instructions, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := Bytecode{opcode(OpMov, 0, 1), 2, 0}
	if len(code) != len(want) {
		t.Fatalf("code = %v, want %v", code, want)
	}
	for i := range want {
		if code[i] != want[i] {
			t.Errorf("code[%d] = %d, want %d", i, code[i], want[i])
		}
	}
}

func TestCompileResolvedOperands(t *testing.T) {
	u := mustParse(t, "extern a int = 0; extern b int = 1; var d = a + b;")
	code, err := Compile(u.Program, Instructions, values(map[string]ast.Node{
		"a": ast.Int{Value: 5},
		"b": ast.Int{Value: 1},
	}))
	if err != nil {
		t.Fatal(err)
	}
	if code[0] != opcode(OpAdd, 0, 3) {
		t.Errorf("code[0] = %d, want add", code[0])
	}
	if code[1] != 5 || code[2] != 1 {
		t.Errorf("operands = %v, want [5 1]", code[1:3])
	}
}

func TestCompileResolvesOncePerPass(t *testing.T) {
	calls := map[string]int{}
	r := ResolverFunc(func(id string) (ast.Node, error) {
		calls[id]++
		return ast.Int{Value: 1}, nil
	})
	u := mustParse(t, "var x = a + a * a;")
	if _, err := Compile(u.Program, Instructions, r); err != nil {
		t.Fatal(err)
	}
	if calls["a"] != 1 {
		t.Errorf("a resolved %d times, want 1", calls["a"])
	}
}

func TestCompileWidening(t *testing.T) {
	u := mustParse(t, "var x = 1; var y = x + 1.5;")
	code, err := Compile(u.Program, Instructions, nil)
	if err != nil {
		t.Fatal(err)
	}
	// mov int->real of x, then add real with a constant right operand
	if code[3] != opcode(OpMov, 4, 0) {
		t.Errorf("code[3] = %d, want widening mov", code[3])
	}
	if code[6] != opcode(OpAdd, 1, 2) {
		t.Errorf("code[6] = %d, want real add", code[6])
	}
	lo, hi := uint32(code[8]), uint32(code[9])
	if f := math.Float64frombits(uint64(hi)<<32 | uint64(lo)); f != 1.5 {
		t.Errorf("constant = %v, want 1.5", f)
	}
}

func TestCompilePartialApplication(t *testing.T) {
	u := mustParse(t, "var x = lake (1:1);")
	code, err := Compile(u.Program, Instructions, values(map[string]ast.Node{
		"lake": &ast.Partial{Name: OpPalette, Args: []ast.Node{ast.Int{Value: 3}}},
	}))
	if err != nil {
		t.Fatal(err)
	}
	if code[0] != opcode(OpCons, 0, 3) {
		t.Errorf("code[0] = %d, want cons", code[0])
	}
	if code[6] != opcode(OpPalette, 0, 1) {
		t.Errorf("code[6] = %d, want palette", code[6])
	}
	if code[7] != 3 {
		t.Errorf("palette index = %d, want 3", code[7])
	}
}

func TestCompileExpandsResolvedTrees(t *testing.T) {
	expr, err := ParseExpr("b * 2")
	if err != nil {
		t.Fatal(err)
	}
	var seen []string
	r := ResolverFunc(func(id string) (ast.Node, error) {
		seen = append(seen, id)
		switch id {
		case "a":
			return expr, nil
		case "b":
			return ast.Int{Value: 7}, nil
		}
		return nil, nil
	})
	u := mustParse(t, "var x = a;")
	code, err := Compile(u.Program, Instructions, r)
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != 2 || seen[0] != "a" || seen[1] != "b" {
		t.Errorf("resolution order = %v", seen)
	}
	if code[1] != 7 {
		t.Errorf("code[1] = %d, want 7", code[1])
	}
}

func TestCompileErrors(t *testing.T) {
	sentinel := errors.New("resolver failed")

	tests := []struct {
		name   string
		src    string
		values map[string]ast.Node
		fail   bool
		check  func(error) bool
	}{
		{
			name:  "undefined",
			src:   "var x = q;",
			check: func(err error) bool { return errors.Is(err, fverrors.ErrUndefined) },
		},
		{
			name:  "resolver_error_unchanged",
			src:   "var x = a;",
			fail:  true,
			check: func(err error) bool { return err == sentinel },
		},
		{
			name:   "self_reference",
			src:    "var x = a;",
			values: map[string]ast.Node{"a": &ast.Ident{Name: "a"}},
			check: func(err error) bool {
				var fe *fverrors.Error
				return errors.As(err, &fe) && fe.Kind == fverrors.KindRecursive
			},
		},
		{
			name:  "function_as_value",
			src:   "var x = sin;",
			check: func(err error) bool { return err != nil },
		},
		{
			name:  "assign_undeclared",
			src:   "y = 1;",
			check: func(err error) bool { return errors.Is(err, fverrors.ErrUndefined) },
		},
		{
			name: "no_overload",
			src:  "var x = 1 % 2.5;",
			check: func(err error) bool {
				var fe *fverrors.Error
				return errors.As(err, &fe) && fe.Kind == fverrors.KindTypeMismatch
			},
		},
		{
			name: "redeclared",
			src:  "var x = 1; var x = 2;",
			check: func(err error) bool {
				var fe *fverrors.Error
				return errors.As(err, &fe) && fe.Kind == fverrors.KindInvalidInput
			},
		},
		{
			name:   "string_in_expression",
			src:    "var x = a;",
			values: map[string]ast.Node{"a": ast.String{Value: "s"}},
			check: func(err error) bool {
				var fe *fverrors.Error
				return errors.As(err, &fe) && fe.Kind == fverrors.KindUnsupported
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := mustParse(t, tt.src)
			var r Resolver = values(tt.values)
			if tt.fail {
				r = ResolverFunc(func(string) (ast.Node, error) { return nil, sentinel })
			}
			_, err := Compile(u.Program, Instructions, r)
			if err == nil {
				t.Fatal("expected error")
			}
			if !tt.check(err) {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}

func TestCompileConstantsWithoutResolver(t *testing.T) {
	u := mustParse(t, "var x = PI;")
	code, err := Compile(u.Program, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if code[0] != opcode(OpMov, 1, 1) {
		t.Errorf("code[0] = %d, want real mov", code[0])
	}
}

func TestPreprocess(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"-1", "-1"},
		{"1:2", "(1:2)"},
		{"2 * 3 + 1", "7"},
		{"-0.5:1", "(-0.5:1)"},
		{"[-1, 2 + 2]", "[-1, 4]"},
		{"a + 1", "(a + 1)"},
		{"1 / 0", "(1 / 0)"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			n, err := ParseExpr(tt.src)
			if err != nil {
				t.Fatal(err)
			}
			if got := Preprocess(n, Instructions).String(); got != tt.want {
				t.Errorf("Preprocess(%q) = %s, want %s", tt.src, got, tt.want)
			}
		})
	}

	n, _ := ParseExpr("2 * PI")
	if r, ok := Preprocess(n, Instructions).(ast.Real); !ok || r.Value != 2*math.Pi {
		t.Errorf("2 * PI = %v", Preprocess(n, Instructions))
	}
}

func TestInstructionSetLookup(t *testing.T) {
	if n, ok := Instructions.Lookup("sin"); !ok || n.(ast.Builtin).Name != "sin" {
		t.Errorf("Lookup(sin) = %v, %v", n, ok)
	}
	if n, ok := Instructions.Lookup("I"); !ok || n.(ast.Complex).Value != complex(0, 1) {
		t.Errorf("Lookup(I) = %v, %v", n, ok)
	}
	if _, ok := Instructions.Lookup("nope"); ok {
		t.Error("Lookup(nope) should fail")
	}
	if len(Instructions.Names()) == 0 {
		t.Error("Names() is empty")
	}
}
