package param

import (
	"fmt"

	fverrors "github.com/wippyai/fractview/errors"
	"github.com/wippyai/fractview/script/ast"
)

// opaqueBlack fills palette rows that have no colors.
const opaqueBlack int32 = -0x1000000 // 0xff000000

// Palette is a Width x Height grid of ARGB colors stored row by row.
type Palette struct {
	Width  int
	Height int
	Colors []int32
}

// FallbackPalette is used for declared palettes that have no value.
var FallbackPalette = Palette{Width: 1, Height: 1, Colors: []int32{0}}

// At returns the color at column x of row y.
func (p Palette) At(x, y int) int32 {
	return p.Colors[y*p.Width+x]
}

// Equal reports whether both palettes have the same shape and colors.
func (p Palette) Equal(o Palette) bool {
	if p.Width != o.Width || p.Height != o.Height || len(p.Colors) != len(o.Colors) {
		return false
	}
	for i := range p.Colors {
		if p.Colors[i] != o.Colors[i] {
			return false
		}
	}
	return true
}

func (p Palette) String() string {
	return fmt.Sprintf("palette %dx%d", p.Width, p.Height)
}

// NewPalette builds a palette from rows of colors. The width is the length
// of the longest row; shorter rows repeat cyclically and empty rows are
// opaque black.
func NewPalette(rows [][]int32) (Palette, error) {
	if len(rows) == 0 {
		return Palette{}, fverrors.InvalidPalette("palette has no rows")
	}

	width := 1
	for _, row := range rows {
		width = max(width, len(row))
	}

	colors := make([]int32, 0, width*len(rows))
	for _, row := range rows {
		for i := 0; i < width; i++ {
			if len(row) == 0 {
				colors = append(colors, opaqueBlack)
				continue
			}
			colors = append(colors, row[i%len(row)])
		}
	}
	return Palette{Width: width, Height: len(rows), Colors: colors}, nil
}

func paletteFromTree(n ast.Node) (any, error) {
	vec, ok := n.(*ast.Vec)
	if !ok {
		return nil, fverrors.InvalidPalette("not a palette")
	}

	rows := make([][]int32, len(vec.Items))
	for i, item := range vec.Items {
		row, ok := item.(*ast.Vec)
		if !ok {
			return nil, fverrors.InvalidPalette(fmt.Sprintf("row %d is not a vector", i))
		}
		rows[i] = make([]int32, len(row.Items))
		for j, c := range row.Items {
			v, ok := c.(ast.Int)
			if !ok {
				return nil, fverrors.InvalidPalette(fmt.Sprintf("color %d of row %d is not an integer", j, i))
			}
			rows[i][j] = v.Value
		}
	}
	return NewPalette(rows)
}

// Scale is an affine map from the unit square to the complex plane.
type Scale struct {
	XX, XY float64
	YX, YY float64
	CX, CY float64
}

// DefaultScale is used when neither an override nor a declaration exists.
var DefaultScale = Scale{XX: 2, YY: 2}

// Scaled returns a scale centered at the origin with the given zoom.
func Scaled(f float64) Scale {
	return Scale{XX: f, YY: f}
}

// Slice returns the six coefficients in xx, xy, yx, yy, cx, cy order.
func (s Scale) Slice() []float64 {
	return []float64{s.XX, s.XY, s.YX, s.YY, s.CX, s.CY}
}

// ScaleFromSlice is the inverse of Slice.
func ScaleFromSlice(v []float64) (Scale, error) {
	if len(v) != 6 {
		return Scale{}, fverrors.New(fverrors.PhaseConvert, fverrors.KindInvalidData).
			Type("scale").Detail("scale needs 6 numbers, got %d", len(v)).Build()
	}
	return Scale{v[0], v[1], v[2], v[3], v[4], v[5]}, nil
}

func scaleFromTree(n ast.Node) (any, error) {
	vec, ok := n.(*ast.Vec)
	if !ok || len(vec.Items) != 6 {
		return nil, fverrors.TypeMismatch(fverrors.PhaseConvert, "", "scale", n)
	}
	v := make([]float64, 6)
	for i, item := range vec.Items {
		f, err := TypeReal.ToValue(item)
		if err != nil {
			return nil, err
		}
		v[i] = f.(float64)
	}
	return ScaleFromSlice(v)
}
