package codec

import (
	"encoding/json"
	"strings"

	fverrors "github.com/wippyai/fractview/errors"
	"github.com/wippyai/fractview/fractal"
)

type documentJSON struct {
	Code string                     `json:"code"`
	Data map[string]json.RawMessage `json:"data"`
}

// legacyJSON is the layout older versions wrote.
type legacyJSON struct {
	Arguments *legacyArgs     `json:"arguments"`
	Scale     json.RawMessage `json:"scale"`
}

type legacyArgs struct {
	Ints     map[string]int64           `json:"ints"`
	Reals    map[string]float64         `json:"reals"`
	Cplxs    map[string][2]float64      `json:"cplxs"`
	Bools    map[string]bool            `json:"bools"`
	Exprs    map[string]string          `json:"exprs"`
	Colors   map[string]int32           `json:"colors"`
	Palettes map[string]json.RawMessage `json:"palettes"`
	Scales   map[string]json.RawMessage `json:"scales"`
}

// MarshalData encodes d in the current document form.
func MarshalData(d *fractal.Data) ([]byte, error) {
	doc, err := dataDocument(d)
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

func dataDocument(d *fractal.Data) (map[string]any, error) {
	values := make(map[string]any, d.Len())
	for _, id := range d.Keys() {
		v, _ := d.Value(id)
		ev, err := encodeValue(id, v)
		if err != nil {
			return nil, err
		}
		values[id] = ev
	}
	return map[string]any{"code": d.Source(), "data": values}, nil
}

// UnmarshalData decodes a document in the current or the legacy form.
// Overrides the script does not accept are dropped.
func UnmarshalData(b []byte) (*fractal.Data, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(b, &probe); err != nil {
		return nil, fverrors.Wrap(fverrors.PhaseDecode, fverrors.KindInvalidData, err, "document is not a JSON object")
	}
	return documentFrom(probe)
}

func documentFrom(probe map[string]json.RawMessage) (*fractal.Data, error) {
	code, hasCode := probe["code"]
	if !hasCode || len(code) == 0 || code[0] != '"' {
		return legacyDocument(probe)
	}

	var doc documentJSON
	if err := json.Unmarshal(code, &doc.Code); err != nil {
		return nil, fverrors.Wrap(fverrors.PhaseDecode, fverrors.KindInvalidData, err, "malformed code")
	}

	b, err := fractal.NewBuilder(doc.Code)
	if err != nil {
		return nil, err
	}

	data, ok := probe["data"]
	if !ok || len(data) == 0 || data[0] != '{' {
		return legacyArguments(b, probe)
	}
	if err := json.Unmarshal(data, &doc.Data); err != nil {
		return nil, fverrors.Wrap(fverrors.PhaseDecode, fverrors.KindInvalidData, err, "malformed data")
	}

	for _, id := range sortedKeys(doc.Data) {
		v, err := decodeValue(id, doc.Data[id])
		if err != nil {
			return nil, err
		}
		if v == nil {
			continue
		}
		if _, err := b.Add(id, v); err != nil {
			return nil, err
		}
	}
	return b.Commit(), nil
}

func legacyDocument(probe map[string]json.RawMessage) (*fractal.Data, error) {
	raw, ok := probe["source"]
	if !ok {
		return nil, fverrors.InvalidData(fverrors.PhaseDecode, "", "document has neither code nor source")
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fverrors.Wrap(fverrors.PhaseDecode, fverrors.KindInvalidData, err, "malformed source lines")
	}

	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	b, err := fractal.NewBuilder(sb.String())
	if err != nil {
		return nil, err
	}
	return legacyArguments(b, probe)
}

func legacyArguments(b *fractal.Builder, probe map[string]json.RawMessage) (*fractal.Data, error) {
	var legacy legacyJSON
	if raw, ok := probe["arguments"]; ok {
		if err := json.Unmarshal(raw, &legacy.Arguments); err != nil {
			return nil, fverrors.Wrap(fverrors.PhaseDecode, fverrors.KindInvalidData, err, "malformed arguments")
		}
	}
	legacy.Scale = probe["scale"]

	add := func(id string, v any) error {
		_, err := b.Add(id, v)
		return err
	}

	if args := legacy.Arguments; args != nil {
		for _, id := range sortedKeys(args.Ints) {
			if err := add(id, args.Ints[id]); err != nil {
				return nil, err
			}
		}
		for _, id := range sortedKeys(args.Reals) {
			if err := add(id, args.Reals[id]); err != nil {
				return nil, err
			}
		}
		for _, id := range sortedKeys(args.Cplxs) {
			c := args.Cplxs[id]
			if err := add(id, complex(c[0], c[1])); err != nil {
				return nil, err
			}
		}
		for _, id := range sortedKeys(args.Bools) {
			if err := add(id, args.Bools[id]); err != nil {
				return nil, err
			}
		}
		for _, id := range sortedKeys(args.Exprs) {
			if err := add(id, args.Exprs[id]); err != nil {
				return nil, err
			}
		}
		for _, id := range sortedKeys(args.Colors) {
			if err := add(id, args.Colors[id]); err != nil {
				return nil, err
			}
		}
		for _, id := range sortedKeys(args.Palettes) {
			var p paletteJSON
			if err := json.Unmarshal(args.Palettes[id], &p); err != nil {
				return nil, decodeError(id, err)
			}
			pal, err := p.palette()
			if err != nil {
				return nil, err
			}
			if err := add(id, pal); err != nil {
				return nil, err
			}
		}
		for _, id := range sortedKeys(args.Scales) {
			v, err := decodeValue(id, args.Scales[id])
			if err != nil {
				return nil, err
			}
			if err := add(id, v); err != nil {
				return nil, err
			}
		}
	}

	// Old files kept the view scale at the top level.
	if len(legacy.Scale) > 0 {
		v, err := decodeValue(fractal.ScaleKey, legacy.Scale)
		if err != nil {
			return nil, err
		}
		if v != nil {
			if err := add(fractal.ScaleKey, v); err != nil {
				return nil, err
			}
		}
	}

	return b.Commit(), nil
}
