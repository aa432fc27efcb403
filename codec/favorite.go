package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"

	fverrors "github.com/wippyai/fractview/errors"
	"github.com/wippyai/fractview/fractal"
)

// Favorite is a saved fractal with an optional icon and description.
type Favorite struct {
	Data        *fractal.Data
	Description string
	Icon        []byte
}

// Titled is a favorite with its title; collections keep their order.
type Titled struct {
	Favorite *Favorite
	Title    string
}

type favoriteJSON struct {
	Fractal     json.RawMessage `json:"fractal"`
	// Older writers stored the fractal under this key.
	Legacy      json.RawMessage `json:"at/searles/fractviewlib,omitempty"`
	Icon        string          `json:"icon,omitempty"`
	Description string          `json:"description,omitempty"`
}

// MarshalFavorite encodes f; the icon is base64.
func MarshalFavorite(f *Favorite) ([]byte, error) {
	data, err := MarshalData(f.Data)
	if err != nil {
		return nil, err
	}
	out := favoriteJSON{Fractal: data, Description: f.Description}
	if len(f.Icon) > 0 {
		out.Icon = base64.StdEncoding.EncodeToString(f.Icon)
	}
	return json.Marshal(out)
}

// UnmarshalFavorite decodes a favorite. An icon that is not valid base64 is
// dropped.
func UnmarshalFavorite(b []byte) (*Favorite, error) {
	var in favoriteJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return nil, fverrors.Wrap(fverrors.PhaseDecode, fverrors.KindInvalidData, err, "malformed favorite")
	}

	raw := in.Fractal
	if len(raw) == 0 {
		raw = in.Legacy
	}
	if len(raw) == 0 {
		return nil, fverrors.InvalidData(fverrors.PhaseDecode, "", "favorite has no fractal")
	}
	data, err := UnmarshalData(raw)
	if err != nil {
		return nil, err
	}

	f := &Favorite{Data: data, Description: in.Description}
	if in.Icon != "" {
		icon, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(in.Icon, "\n", ""))
		if err == nil {
			f.Icon = icon
		}
	}
	return f, nil
}

// MarshalFavorites encodes a collection as one JSON object keyed by title,
// in the given order.
func MarshalFavorites(entries []Titled) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		title, err := json.Marshal(e.Title)
		if err != nil {
			return nil, fverrors.Wrap(fverrors.PhaseEncode, fverrors.KindInvalidData, err, "bad title")
		}
		fav, err := MarshalFavorite(e.Favorite)
		if err != nil {
			return nil, err
		}
		buf.Write(title)
		buf.WriteByte(':')
		buf.Write(fav)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalFavorites decodes a collection, keeping the order of the file.
// A title that appears twice keeps its last value at its first position.
func UnmarshalFavorites(b []byte) ([]Titled, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil, fverrors.InvalidData(fverrors.PhaseDecode, "", "favorites must be a JSON object")
	}

	var out []Titled
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fverrors.Wrap(fverrors.PhaseDecode, fverrors.KindInvalidData, err, "malformed favorites")
		}
		title, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fverrors.Wrap(fverrors.PhaseDecode, fverrors.KindInvalidData, err, "malformed favorites")
		}
		fav, err := UnmarshalFavorite(raw)
		if err != nil {
			return nil, fverrors.New(fverrors.PhaseDecode, fverrors.KindInvalidData).
				Param(title).Cause(err).Detail("favorite %q", title).Build()
		}

		if i, ok := index[title]; ok {
			out[i].Favorite = fav
			continue
		}
		index[title] = len(out)
		out = append(out, Titled{Title: title, Favorite: fav})
	}
	return out, nil
}
