package param

import (
	"fmt"
	"math"

	fverrors "github.com/wippyai/fractview/errors"
	"github.com/wippyai/fractview/script"
	"github.com/wippyai/fractview/script/ast"
)

// Type is the kind of a parameter value.
type Type uint8

const (
	TypeInt Type = iota
	TypeReal
	TypeComplex
	TypeBool
	TypeExpr
	TypeColor
	TypePalette
	TypeScale
	TypeSource
)

var typeNames = [...]string{
	TypeInt:     "int",
	TypeReal:    "real",
	TypeComplex: "cplx",
	TypeBool:    "bool",
	TypeExpr:    "expr",
	TypeColor:   "color",
	TypePalette: "palette",
	TypeScale:   "scale",
	TypeSource:  "source",
}

// Types lists every parameter type in declaration order.
func Types() []Type {
	return []Type{TypeInt, TypeReal, TypeComplex, TypeBool, TypeExpr, TypeColor, TypePalette, TypeScale, TypeSource}
}

// String returns the name used for the type in extern declarations.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", t)
}

// Parse maps a declared type name to its Type.
func Parse(name string) (Type, bool) {
	for t, n := range typeNames {
		if n == name {
			return Type(t), true
		}
	}
	return 0, false
}

// ToValue converts a literal tree to a value of this type.
func (t Type) ToValue(n ast.Node) (any, error) {
	switch t {
	case TypeInt:
		if v, ok := n.(ast.Int); ok {
			return int(v.Value), nil
		}
	case TypeReal:
		switch v := n.(type) {
		case ast.Int:
			return float64(v.Value), nil
		case ast.Real:
			return v.Value, nil
		}
	case TypeComplex:
		switch v := n.(type) {
		case ast.Complex:
			return v.Value, nil
		case ast.Real:
			return complex(v.Value, 0), nil
		case ast.Int:
			return complex(float64(v.Value), 0), nil
		}
	case TypeBool:
		if v, ok := n.(ast.Bool); ok {
			return v.Value, nil
		}
	case TypeExpr:
		if v, ok := n.(ast.String); ok {
			return v.Value, nil
		}
	case TypeColor:
		if v, ok := n.(ast.Int); ok {
			return v.Value, nil
		}
	case TypePalette:
		return paletteFromTree(n)
	case TypeScale:
		return scaleFromTree(n)
	case TypeSource:
		return nil, fverrors.Unsupported(fverrors.PhaseConvert, "cannot use source inside of program, use expr instead")
	}
	return nil, fverrors.TypeMismatch(fverrors.PhaseConvert, "", t.String(), n)
}

// ToLiteral converts a value of this type to the tree inlined into a
// program. Expr values are parsed as expressions. Palette, Scale and Source
// have no literal form.
func (t Type) ToLiteral(v any) (ast.Node, error) {
	switch t {
	case TypeInt, TypeColor:
		if i, ok := t.toInt32(v); ok {
			return ast.Int{Value: i}, nil
		}
	case TypeReal:
		if f, ok := toFloat(v); ok {
			return ast.Real{Value: f}, nil
		}
	case TypeComplex:
		if c, ok := toComplex(v); ok {
			return ast.Complex{Value: c}, nil
		}
	case TypeBool:
		if b, ok := v.(bool); ok {
			return ast.Bool{Value: b}, nil
		}
	case TypeExpr:
		if v == nil {
			break
		}
		return script.ParseExpr(fmt.Sprint(v))
	case TypePalette, TypeScale, TypeSource:
		return nil, fverrors.New(fverrors.PhaseConvert, fverrors.KindUnsupported).
			Type(t.String()).Detail("%s values cannot be inlined", t).Build()
	}
	return nil, fverrors.TypeMismatch(fverrors.PhaseConvert, "", t.String(), v)
}

// IsInstance reports whether v is acceptable as a value of this type.
func (t Type) IsInstance(v any) bool {
	switch t {
	case TypeInt, TypeColor:
		_, ok := t.toInt32(v)
		return ok
	case TypeReal:
		return isNumber(v)
	case TypeComplex:
		_, ok := toComplex(v)
		return ok
	case TypeBool:
		_, ok := v.(bool)
		return ok
	case TypeExpr, TypeSource:
		_, ok := v.(string)
		return ok
	case TypePalette:
		_, ok := v.(Palette)
		return ok
	case TypeScale:
		_, ok := v.(Scale)
		return ok
	}
	return false
}

// Coerce converts an accepted value to the canonical Go type of t:
// int, float64, complex128, bool, string, int32 (ARGB), Palette,
// Scale or string.
func (t Type) Coerce(v any) (any, bool) {
	if !t.IsInstance(v) {
		return nil, false
	}
	switch t {
	case TypeInt:
		i, _ := t.toInt32(v)
		return int(i), true
	case TypeReal:
		f, _ := toFloat(v)
		return f, true
	case TypeComplex:
		c, _ := toComplex(v)
		return c, true
	case TypeColor:
		i, _ := t.toInt32(v)
		return i, true
	}
	return v, true
}

// Equal reports whether two coerced values are the same.
func Equal(a, b any) bool {
	pa, ok := a.(Palette)
	if ok {
		pb, ok := b.(Palette)
		return ok && pa.Equal(pb)
	}
	if _, ok := b.(Palette); ok {
		return false
	}
	return a == b
}

func isNumber(v any) bool {
	_, ok := toFloat(v)
	return ok
}

// toInt32 converts v to the 32-bit value inlined for int and color
// parameters. Ints must fit int32. Colors also take the unsigned ARGB range
// and keep its bit pattern.
func (t Type) toInt32(v any) (int32, bool) {
	i, ok := toInt(v)
	if !ok || i < math.MinInt32 {
		return 0, false
	}
	hi := int64(math.MaxInt32)
	if t == TypeColor {
		hi = math.MaxUint32
	}
	if i > hi {
		return 0, false
	}
	return int32(uint32(i)), true
}

// toInt truncates v to an int64. NaN, infinities and values outside the
// int64 range are rejected.
func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return fromUint(uint64(n))
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return fromUint(n)
	case float32:
		return fromFloat(float64(n))
	case float64:
		return fromFloat(n)
	}
	return 0, false
}

func fromUint(n uint64) (int64, bool) {
	if n > math.MaxInt64 {
		return 0, false
	}
	return int64(n), true
}

func fromFloat(f float64) (int64, bool) {
	f = math.Trunc(f)
	// -2^63 is exact; 2^63 is the first float64 above MaxInt64.
	if math.IsNaN(f) || f < math.MinInt64 || f >= -math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	if i, ok := toInt(v); ok {
		return float64(i), true
	}
	return 0, false
}

func toComplex(v any) (complex128, bool) {
	switch n := v.(type) {
	case complex128:
		return n, true
	case complex64:
		return complex128(n), true
	}
	if f, ok := toFloat(v); ok {
		return complex(f, 0), true
	}
	return 0, false
}
