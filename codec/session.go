package codec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	fverrors "github.com/wippyai/fractview/errors"
	"github.com/wippyai/fractview/fractal"
	"github.com/wippyai/fractview/param"
	"github.com/wippyai/fractview/provider"
)

// SessionVersion is written into every session.
const SessionVersion = 1

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("codec: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

type valueKind uint8

const (
	kindInt valueKind = iota + 1
	kindColor
	kindReal
	kindComplex
	kindBool
	kindText
	kindPalette
	kindScale
)

type session struct {
	Version   int              `cbor:"1,keyasint"`
	Fractals  []sessionFractal `cbor:"2,keyasint"`
	Exclusive []string         `cbor:"3,keyasint,omitempty"`
}

type sessionFractal struct {
	Source string                  `cbor:"1,keyasint"`
	Values map[string]sessionValue `cbor:"2,keyasint,omitempty"`
}

type sessionValue struct {
	Kind   valueKind `cbor:"1,keyasint"`
	Int    int64     `cbor:"2,keyasint,omitempty"`
	Real   float64   `cbor:"3,keyasint,omitempty"`
	Imag   float64   `cbor:"4,keyasint,omitempty"`
	Bool   bool      `cbor:"5,keyasint,omitempty"`
	Text   string    `cbor:"6,keyasint,omitempty"`
	Colors []int32   `cbor:"7,keyasint,omitempty"`
	Width  int       `cbor:"8,keyasint,omitempty"`
	Height int       `cbor:"9,keyasint,omitempty"`
	Scale  []float64 `cbor:"10,keyasint,omitempty"`
}

// MarshalSession encodes p as canonical CBOR. Equal providers encode to
// equal bytes.
func MarshalSession(p *provider.Provider) ([]byte, error) {
	s := session{Version: SessionVersion, Exclusive: p.Exclusive()}
	for _, d := range dataOf(p) {
		sf := sessionFractal{Source: d.Source()}
		if d.Len() > 0 {
			sf.Values = make(map[string]sessionValue, d.Len())
		}
		for _, id := range d.Keys() {
			v, _ := d.Value(id)
			sv, err := toSessionValue(id, v)
			if err != nil {
				return nil, err
			}
			sf.Values[id] = sv
		}
		s.Fractals = append(s.Fractals, sf)
	}

	b, err := cborEncMode.Marshal(s)
	if err != nil {
		return nil, fverrors.Wrap(fverrors.PhaseEncode, fverrors.KindInvalidData, err, "session")
	}
	return b, nil
}

// UnmarshalSession decodes a session into a new provider.
func UnmarshalSession(b []byte) (*provider.Provider, error) {
	var s session
	if err := cbor.Unmarshal(b, &s); err != nil {
		return nil, fverrors.Wrap(fverrors.PhaseDecode, fverrors.KindInvalidData, err, "session")
	}
	if s.Version != SessionVersion {
		return nil, fverrors.InvalidData(fverrors.PhaseDecode, "",
			fmt.Sprintf("unsupported session version %d", s.Version))
	}

	p := provider.New()
	for _, key := range s.Exclusive {
		p.AddExclusive(key)
	}
	for _, sf := range s.Fractals {
		b, err := fractal.NewBuilder(sf.Source)
		if err != nil {
			return nil, err
		}
		for _, id := range sortedKeys(sf.Values) {
			v, err := fromSessionValue(id, sf.Values[id])
			if err != nil {
				return nil, err
			}
			if _, err := b.Add(id, v); err != nil {
				return nil, err
			}
		}
		if _, err := p.AddFractal(b.Commit()); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func toSessionValue(id string, v any) (sessionValue, error) {
	switch v := v.(type) {
	case int:
		return sessionValue{Kind: kindInt, Int: int64(v)}, nil
	case int32:
		return sessionValue{Kind: kindColor, Int: int64(v)}, nil
	case float64:
		return sessionValue{Kind: kindReal, Real: v}, nil
	case complex128:
		return sessionValue{Kind: kindComplex, Real: real(v), Imag: imag(v)}, nil
	case bool:
		return sessionValue{Kind: kindBool, Bool: v}, nil
	case string:
		return sessionValue{Kind: kindText, Text: v}, nil
	case param.Palette:
		return sessionValue{Kind: kindPalette, Width: v.Width, Height: v.Height, Colors: v.Colors}, nil
	case param.Scale:
		return sessionValue{Kind: kindScale, Scale: v.Slice()}, nil
	}
	return sessionValue{}, fverrors.InvalidData(fverrors.PhaseEncode, id, fmt.Sprintf("cannot encode %T", v))
}

func fromSessionValue(id string, v sessionValue) (any, error) {
	switch v.Kind {
	case kindInt:
		return int(v.Int), nil
	case kindColor:
		return int32(v.Int), nil
	case kindReal:
		return v.Real, nil
	case kindComplex:
		return complex(v.Real, v.Imag), nil
	case kindBool:
		return v.Bool, nil
	case kindText:
		return v.Text, nil
	case kindPalette:
		return paletteJSON{Width: v.Width, Height: v.Height, Colors: v.Colors}.palette()
	case kindScale:
		return param.ScaleFromSlice(v.Scale)
	}
	return nil, fverrors.InvalidData(fverrors.PhaseDecode, id, fmt.Sprintf("unknown value kind %d", v.Kind))
}
