package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	fverrors "github.com/wippyai/fractview/errors"
	"github.com/wippyai/fractview/param"
)

type paletteJSON struct {
	Colors []int32 `json:"colors"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
}

func (p paletteJSON) palette() (param.Palette, error) {
	if p.Width <= 0 || p.Height <= 0 || len(p.Colors) < p.Width*p.Height {
		return param.Palette{}, fverrors.InvalidPalette(
			fmt.Sprintf("%dx%d palette with %d colors", p.Width, p.Height, len(p.Colors)))
	}
	return param.Palette{
		Width:  p.Width,
		Height: p.Height,
		Colors: p.Colors[:p.Width*p.Height],
	}, nil
}

// encodeValue maps an override to the value encoding/json writes.
func encodeValue(id string, v any) (any, error) {
	switch v := v.(type) {
	case int, int32, int64, float64, bool, string:
		return v, nil
	case complex128:
		return [2]float64{real(v), imag(v)}, nil
	case param.Scale:
		return v.Slice(), nil
	case param.Palette:
		return paletteJSON{Width: v.Width, Height: v.Height, Colors: v.Colors}, nil
	}
	return nil, fverrors.InvalidData(fverrors.PhaseEncode, id, fmt.Sprintf("cannot encode %T", v))
}

// decodeValue guesses the value from its JSON shape. A nil value with a nil
// error means the entry is null and should be skipped.
func decodeValue(id string, raw json.RawMessage) (any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	switch raw[0] {
	case 'n':
		return nil, nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, decodeError(id, err)
		}
		return b, nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, decodeError(id, err)
		}
		return s, nil
	case '[':
		var nums []float64
		if err := json.Unmarshal(raw, &nums); err != nil {
			return nil, decodeError(id, err)
		}
		switch len(nums) {
		case 2:
			return complex(nums[0], nums[1]), nil
		case 6:
			return param.ScaleFromSlice(nums)
		}
		return nil, fverrors.InvalidData(fverrors.PhaseDecode, id,
			fmt.Sprintf("array of %d numbers is neither complex nor scale", len(nums)))
	case '{':
		var p paletteJSON
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, decodeError(id, err)
		}
		return p.palette()
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var n json.Number
	if err := dec.Decode(&n); err != nil {
		return nil, decodeError(id, err)
	}
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, decodeError(id, err)
	}
	return f, nil
}

func decodeError(id string, err error) error {
	e := fverrors.Wrap(fverrors.PhaseDecode, fverrors.KindInvalidData, err, "malformed value")
	e.Param = id
	return e
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
