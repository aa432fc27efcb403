package param

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/fractview/script"
)

// FromText parses user input into a value of type t. Expr and Source take
// the text verbatim; every other type reads it as a constant expression,
// so "1:2", "-0.5", "#f80" and "[[#000, #fff]]" are all accepted.
func FromText(t Type, text string) (any, error) {
	switch t {
	case TypeExpr, TypeSource:
		return text, nil
	}
	n, err := script.ParseExpr(text)
	if err != nil {
		return nil, err
	}
	return t.ToValue(script.Preprocess(n, script.Instructions))
}

// Text renders a value the way FromText reads it back.
func Text(t Type, v any) string {
	switch t {
	case TypeExpr, TypeSource:
		s, _ := v.(string)
		return s
	case TypeColor:
		if i, ok := t.toInt32(v); ok {
			return colorText(i)
		}
	case TypePalette:
		if p, ok := v.(Palette); ok {
			return paletteText(p)
		}
	case TypeScale:
		if s, ok := v.(Scale); ok {
			return scaleText(s)
		}
	}
	if n, err := t.ToLiteral(v); err == nil {
		return n.String()
	}
	return ""
}

func colorText(c int32) string {
	return fmt.Sprintf("#%08x", uint32(c))
}

func paletteText(p Palette) string {
	var b strings.Builder
	b.WriteByte('[')
	for y := 0; y < p.Height; y++ {
		if y > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('[')
		for x := 0; x < p.Width; x++ {
			if x > 0 {
				b.WriteString(", ")
			}
			b.WriteString(colorText(p.At(x, y)))
		}
		b.WriteByte(']')
	}
	b.WriteByte(']')
	return b.String()
}

func scaleText(s Scale) string {
	parts := make([]string, 6)
	for i, f := range s.Slice() {
		parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
