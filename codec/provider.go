package codec

import (
	"encoding/json"

	fverrors "github.com/wippyai/fractview/errors"
	"github.com/wippyai/fractview/fractal"
	"github.com/wippyai/fractview/provider"
)

type providerJSON struct {
	Fractals  []json.RawMessage `json:"fractals"`
	Exclusive []string          `json:"exclusiveParameters"`
}

// MarshalProvider encodes every fractal of p, head first, and its exclusive
// keys.
func MarshalProvider(p *provider.Provider) ([]byte, error) {
	out := providerJSON{Exclusive: p.Exclusive()}
	for _, id := range p.IDs() {
		f, _ := p.Fractal(id)
		b, err := MarshalData(f.Data())
		if err != nil {
			return nil, err
		}
		out.Fractals = append(out.Fractals, b)
	}
	if out.Fractals == nil {
		out.Fractals = []json.RawMessage{}
	}
	return json.Marshal(out)
}

// UnmarshalProvider decodes a provider. The first fractal becomes the head.
func UnmarshalProvider(b []byte) (*provider.Provider, error) {
	var in providerJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return nil, fverrors.Wrap(fverrors.PhaseDecode, fverrors.KindInvalidData, err, "malformed provider")
	}

	p := provider.New()
	for _, key := range in.Exclusive {
		p.AddExclusive(key)
	}
	for _, raw := range in.Fractals {
		data, err := UnmarshalData(raw)
		if err != nil {
			return nil, err
		}
		if _, err := p.AddFractal(data); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// dataOf returns the data of every fractal in p, head first.
func dataOf(p *provider.Provider) []*fractal.Data {
	ids := p.IDs()
	out := make([]*fractal.Data, 0, len(ids))
	for _, id := range ids {
		f, _ := p.Fractal(id)
		out = append(out, f.Data())
	}
	return out
}
