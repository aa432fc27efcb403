package param

import (
	"errors"
	"math"
	"testing"

	fverrors "github.com/wippyai/fractview/errors"
	"github.com/wippyai/fractview/script"
	"github.com/wippyai/fractview/script/ast"
)

func TestParse(t *testing.T) {
	for _, typ := range Types() {
		got, ok := Parse(typ.String())
		if !ok || got != typ {
			t.Errorf("Parse(%q) = %v, %v", typ.String(), got, ok)
		}
	}
	if _, ok := Parse("integer"); ok {
		t.Error("Parse(integer) should fail")
	}
	if _, ok := Parse("Int"); ok {
		t.Error("type names are case sensitive")
	}
}

func TestToValue(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		in   ast.Node
		want any
	}{
		{"int", TypeInt, ast.Int{Value: 3}, 3},
		{"real_from_int", TypeReal, ast.Int{Value: 3}, 3.0},
		{"real", TypeReal, ast.Real{Value: 0.5}, 0.5},
		{"cplx", TypeComplex, ast.Complex{Value: complex(1, 2)}, complex(1, 2)},
		{"cplx_from_real", TypeComplex, ast.Real{Value: 1.5}, complex(1.5, 0)},
		{"cplx_from_int", TypeComplex, ast.Int{Value: 2}, complex(2, 0)},
		{"bool", TypeBool, ast.Bool{Value: true}, true},
		{"expr", TypeExpr, ast.String{Value: "a + 1"}, "a + 1"},
		{"color", TypeColor, ast.Int{Value: -65536}, int32(-65536)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.typ.ToValue(tt.in)
			if err != nil {
				t.Fatalf("ToValue: %v", err)
			}
			if got != tt.want {
				t.Errorf("ToValue = %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestToValueRejects(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		in   ast.Node
	}{
		{"int_from_real", TypeInt, ast.Real{Value: 1}},
		{"bool_from_int", TypeBool, ast.Int{Value: 1}},
		{"expr_from_int", TypeExpr, ast.Int{Value: 1}},
		{"source", TypeSource, ast.String{Value: "x"}},
		{"scale_short", TypeScale, &ast.Vec{Items: []ast.Node{ast.Int{Value: 1}}}},
		{"scale_not_vec", TypeScale, ast.Int{Value: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.typ.ToValue(tt.in); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestToLiteral(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		in   any
		want string
	}{
		{"int", TypeInt, 5, "5"},
		{"int_from_float", TypeInt, 5.0, "5"},
		{"real", TypeReal, 2, "2"},
		{"cplx", TypeComplex, complex(1, -1), "(1:-1)"},
		{"cplx_from_number", TypeComplex, 3.5, "(3.5:0)"},
		{"bool", TypeBool, false, "false"},
		{"expr", TypeExpr, "a + b", "(a + b)"},
		{"color", TypeColor, int32(-1), "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.typ.ToLiteral(tt.in)
			if err != nil {
				t.Fatalf("ToLiteral: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("ToLiteral = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestToLiteralRefused(t *testing.T) {
	for _, typ := range []Type{TypePalette, TypeScale, TypeSource} {
		t.Run(typ.String(), func(t *testing.T) {
			_, err := typ.ToLiteral("x")
			var fe *fverrors.Error
			if !errors.As(err, &fe) || fe.Kind != fverrors.KindUnsupported {
				t.Errorf("ToLiteral error = %v, want unsupported", err)
			}
		})
	}
}

func TestExprParseError(t *testing.T) {
	_, err := TypeExpr.ToLiteral("+1")
	if !errors.Is(err, fverrors.ErrSyntax) {
		t.Errorf("expected syntax error, got %v", err)
	}
}

func TestIsInstance(t *testing.T) {
	tests := []struct {
		typ  Type
		in   any
		want bool
	}{
		{TypeInt, 1, true},
		{TypeInt, 1.5, true},
		{TypeInt, "1", false},
		{TypeReal, int32(1), true},
		{TypeComplex, complex(1, 1), true},
		{TypeComplex, 2, true},
		{TypeComplex, true, false},
		{TypeBool, true, true},
		{TypeBool, 0, false},
		{TypeExpr, "b", true},
		{TypeExpr, 2, false},
		{TypeInt, float64(math.MaxInt32), true},
		{TypeInt, float64(math.MinInt32), true},
		{TypeInt, 1e20, false},
		{TypeInt, float64(1 << 40), false},
		{TypeInt, int64(math.MaxInt32) + 1, false},
		{TypeInt, uint64(math.MaxUint64), false},
		{TypeInt, math.NaN(), false},
		{TypeInt, math.Inf(1), false},
		{TypeInt, math.Inf(-1), false},
		{TypeReal, 1e20, true},
		{TypeColor, uint32(0xffff0000), true},
		{TypeColor, int64(math.MaxUint32) + 1, false},
		{TypeColor, math.NaN(), false},
		{TypePalette, FallbackPalette, true},
		{TypePalette, "x", false},
		{TypeScale, DefaultScale, true},
		{TypeScale, []float64{1, 2, 3, 4, 5, 6}, false},
		{TypeSource, "var x = 1", true},
		{TypeSource, nil, false},
	}

	for _, tt := range tests {
		if got := tt.typ.IsInstance(tt.in); got != tt.want {
			t.Errorf("%s.IsInstance(%#v) = %v, want %v", tt.typ, tt.in, got, tt.want)
		}
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		typ  Type
		in   any
		want any
	}{
		{TypeInt, 2.0, 2},
		{TypeInt, int64(7), 7},
		{TypeInt, -2.9, -2},
		{TypeInt, float64(math.MinInt32), math.MinInt32},
		{TypeReal, 3, 3.0},
		{TypeComplex, 1, complex(1, 0)},
		{TypeColor, float64(0x7f000000), int32(0x7f000000)},
		{TypeColor, uint32(0xffff0000), int32(-65536)},
		{TypeExpr, "z", "z"},
	}

	for _, tt := range tests {
		got, ok := tt.typ.Coerce(tt.in)
		if !ok || got != tt.want {
			t.Errorf("%s.Coerce(%v) = %v (%T), want %v (%T)", tt.typ, tt.in, got, got, tt.want, tt.want)
		}
	}
	if _, ok := TypeBool.Coerce(1); ok {
		t.Error("Coerce should reject non-instances")
	}
	for _, in := range []any{1e20, math.NaN(), math.Inf(1), uint64(1 << 63)} {
		if got, ok := TypeInt.Coerce(in); ok {
			t.Errorf("int.Coerce(%v) = %v, want rejected", in, got)
		}
	}
}

func TestCoerceMatchesLiteral(t *testing.T) {
	for _, in := range []any{2.5, float64(math.MaxInt32), -7, uint8(200)} {
		v, ok := TypeInt.Coerce(in)
		if !ok {
			t.Fatalf("int.Coerce(%v) rejected", in)
		}
		n, err := TypeInt.ToLiteral(in)
		if err != nil {
			t.Fatal(err)
		}
		if lit := n.(ast.Int); int(lit.Value) != v {
			t.Errorf("literal %d differs from coerced %v", lit.Value, v)
		}
	}
	if _, err := TypeInt.ToLiteral(1e20); !errors.Is(err, &fverrors.Error{Phase: fverrors.PhaseConvert, Kind: fverrors.KindTypeMismatch}) {
		t.Errorf("ToLiteral(1e20) error = %v", err)
	}
}

func TestScaleFromDefault(t *testing.T) {
	n, err := script.ParseExpr("[5, 0, 0, 5, -0.5, 0]")
	if err != nil {
		t.Fatal(err)
	}
	v, err := TypeScale.ToValue(script.Preprocess(n, script.Instructions))
	if err != nil {
		t.Fatal(err)
	}
	s := v.(Scale)
	if s.XX != 5 || s.YY != 5 || s.CX != -0.5 {
		t.Errorf("scale = %+v", s)
	}
}

func TestTypeString(t *testing.T) {
	if TypeComplex.String() != "cplx" {
		t.Errorf("TypeComplex = %s", TypeComplex)
	}
	if Type(42).String() != "Type(42)" {
		t.Errorf("Type(42) = %s", Type(42))
	}
}
