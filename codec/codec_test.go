package codec

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	fverrors "github.com/wippyai/fractview/errors"
	"github.com/wippyai/fractview/fractal"
	"github.com/wippyai/fractview/param"
	"github.com/wippyai/fractview/provider"
)

const allTypes = `extern i int = 1;
extern r real = 1.5;
extern c cplx = 1:2;
extern b bool = true;
extern e expr = "x";
extern k color = #fff;
extern p palette = [[#000, #fff]];
var y = i + r + c + e + k + p(0:0);`

func buildData(t *testing.T, src string, overrides map[string]any) *fractal.Data {
	t.Helper()
	b, err := fractal.NewBuilder(src)
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range sortedKeys(overrides) {
		ok, err := b.Add(id, overrides[id])
		if err != nil || !ok {
			t.Fatalf("Add(%s) = %v, %v", id, ok, err)
		}
	}
	return b.Commit()
}

func sameData(t *testing.T, got, want *fractal.Data) {
	t.Helper()
	if got.Source() != want.Source() {
		t.Errorf("source = %q, want %q", got.Source(), want.Source())
	}
	if strings.Join(got.Keys(), ",") != strings.Join(want.Keys(), ",") {
		t.Fatalf("keys = %v, want %v", got.Keys(), want.Keys())
	}
	for _, id := range want.Keys() {
		g, _ := got.Value(id)
		w, _ := want.Value(id)
		if !param.Equal(g, w) {
			t.Errorf("%s = %v (%T), want %v (%T)", id, g, g, w, w)
		}
	}
}

func TestDataRoundTrip(t *testing.T) {
	pal, _ := param.NewPalette([][]int32{{1, 2}, {3, 4}})
	want := buildData(t, "extern i int = 1; extern r real = 1.5; extern c cplx = 1:2; "+
		"extern b bool = true; extern e expr = \"x\"; extern k color = #fff; "+
		"extern p palette = [[#000, #fff]]; var y = i;", map[string]any{
		"i":              7,
		"r":              3.0,
		"c":              complex(0.5, -1),
		"b":              false,
		"e":              "z * 2",
		"k":              int32(-16776961),
		"p":              pal,
		"implicit":       "1",
		fractal.ScaleKey: param.Scaled(0.25),
	})

	b, err := MarshalData(want)
	if err != nil {
		t.Fatal(err)
	}
	got, err := UnmarshalData(b)
	if err != nil {
		t.Fatalf("UnmarshalData(%s): %v", b, err)
	}
	sameData(t, got, want)
}

func TestDataEmptyOverrides(t *testing.T) {
	want := buildData(t, "var a = 1;", nil)
	b, err := MarshalData(want)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(b, []byte(`"data":{}`)) {
		t.Errorf("encoded = %s", b)
	}
	got, err := UnmarshalData(b)
	if err != nil {
		t.Fatal(err)
	}
	sameData(t, got, want)
}

func TestDataLegacy(t *testing.T) {
	in := `{
		"source": ["extern a int = 1;", "extern e expr = \"0\";", "var x = a + e;"],
		"arguments": {
			"ints": {"a": 5},
			"exprs": {"e": "a * 2"},
			"palettes": {"ignored": {"width": 1, "height": 1, "colors": [0]}}
		},
		"scale": [1, 0, 0, 1, 0.5, 0]
	}`

	got, err := UnmarshalData([]byte(in))
	if err != nil {
		t.Fatal(err)
	}
	if got.Source() != "extern a int = 1;\nextern e expr = \"0\";\nvar x = a + e;\n" {
		t.Errorf("source = %q", got.Source())
	}
	if v, _ := got.Value("a"); v != 5 {
		t.Errorf("a = %v", v)
	}
	if v, _ := got.Value("e"); v != "a * 2" {
		t.Errorf("e = %v", v)
	}
	if v, _ := got.Value(fractal.ScaleKey); v != (param.Scale{XX: 1, YY: 1, CX: 0.5}) {
		t.Errorf("scale = %v", v)
	}
	if _, ok := got.Value("ignored"); ok {
		t.Error("palette for an undeclared key should be dropped")
	}

	if _, err := fractal.FromData(got); err != nil {
		t.Errorf("legacy data does not compile: %v", err)
	}
}

func TestDataDropsRejectedValues(t *testing.T) {
	got, err := UnmarshalData([]byte(`{"code": "extern a int = 1; var x = a;", "data": {"a": "text", "b": null}}`))
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 0 {
		t.Errorf("overrides = %v", got.Keys())
	}
}

func TestDataErrors(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		target error
	}{
		{"not_object", `[1, 2]`, fverrors.ErrDecode},
		{"no_source", `{"data": {}}`, fverrors.ErrDecode},
		{"bad_source", `{"code": "var x = ;", "data": {}}`, fverrors.ErrSyntax},
		{"odd_array", `{"code": "var x = 0;", "data": {"a": [1, 2, 3]}}`, fverrors.ErrDecode},
		{"bad_palette", `{"code": "extern p palette = [[0]]; var x = 0;", "data": {"p": {"width": 2, "height": 2, "colors": [1]}}}`, fverrors.ErrInvalidPalette},
		{"unknown_type", `{"code": "extern a vector = 0; var x = 0;", "data": {"a": 1}}`, fverrors.ErrUnknownType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalData([]byte(tt.in))
			if !errors.Is(err, tt.target) {
				t.Errorf("error = %v, want %v", err, tt.target)
			}
		})
	}
}

func TestMarshalDataRejectsUnknownValues(t *testing.T) {
	if _, err := encodeValue("x", struct{}{}); !errors.Is(err, fverrors.ErrEncode) {
		t.Errorf("error = %v", err)
	}
}

func newProvider(t *testing.T, exclusive []string, sources ...string) *provider.Provider {
	t.Helper()
	p := provider.New()
	for _, k := range exclusive {
		p.AddExclusive(k)
	}
	for _, src := range sources {
		data, err := fractal.NewData(src)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := p.AddFractal(data); err != nil {
			t.Fatal(err)
		}
	}
	return p
}

func TestProviderRoundTrip(t *testing.T) {
	p := newProvider(t, []string{"b"},
		"extern a int = 0; extern b int = 1; var d = a + b",
		"extern a int = 0; extern b int = 1; extern c int = 2; var d = a + b + c",
	)
	ids := p.IDs()
	if _, err := p.SetValue("b", ids[1], 9); err != nil {
		t.Fatal(err)
	}
	if _, err := p.SetValue("a", provider.NoID, 4); err != nil {
		t.Fatal(err)
	}

	b, err := MarshalProvider(p)
	if err != nil {
		t.Fatal(err)
	}
	got, err := UnmarshalProvider(b)
	if err != nil {
		t.Fatal(err)
	}

	if strings.Join(got.Exclusive(), ",") != "b" {
		t.Errorf("exclusive = %v", got.Exclusive())
	}
	if strings.Join(got.Table().Keys(), " ") != strings.Join(p.Table().Keys(), " ") {
		t.Errorf("table = %v, want %v", got.Table().Keys(), p.Table().Keys())
	}
	gotIDs := got.IDs()
	if prm, _ := got.Parameter("b", gotIDs[1]); prm.Value != 9 {
		t.Errorf("b in second = %v", prm.Value)
	}
	if prm, _ := got.Parameter("a", gotIDs[0]); prm.Value != 4 {
		t.Errorf("a in first = %v", prm.Value)
	}
}

func TestProviderEmpty(t *testing.T) {
	b, err := MarshalProvider(provider.New())
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"fractals":[],"exclusiveParameters":[]}` {
		t.Errorf("encoded = %s", b)
	}
}

func TestFavorites(t *testing.T) {
	entries := []Titled{
		{Title: "zeta", Favorite: &Favorite{Data: buildData(t, "var a = 1;", nil), Description: "last first", Icon: []byte{1, 2, 3}}},
		{Title: "alpha", Favorite: &Favorite{Data: buildData(t, "extern n int = 3; var a = n;", map[string]any{"n": 8})}},
	}

	b, err := MarshalFavorites(entries)
	if err != nil {
		t.Fatal(err)
	}
	got, err := UnmarshalFavorites(b)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Title != "zeta" || got[1].Title != "alpha" {
		t.Fatalf("order = %+v", got)
	}
	if !bytes.Equal(got[0].Favorite.Icon, []byte{1, 2, 3}) || got[0].Favorite.Description != "last first" {
		t.Errorf("zeta = %+v", got[0].Favorite)
	}
	sameData(t, got[1].Favorite.Data, entries[1].Favorite.Data)
}

func TestFavoriteLegacy(t *testing.T) {
	in := `{"at/searles/fractviewlib": {"code": "var a = 1;", "data": {}}, "icon": "not base64!"}`
	f, err := UnmarshalFavorite([]byte(in))
	if err != nil {
		t.Fatal(err)
	}
	if f.Data.Source() != "var a = 1;" {
		t.Errorf("source = %q", f.Data.Source())
	}
	if f.Icon != nil {
		t.Error("invalid icon should be dropped")
	}

	if _, err := UnmarshalFavorite([]byte(`{"description": "x"}`)); !errors.Is(err, fverrors.ErrDecode) {
		t.Errorf("missing fractal: %v", err)
	}
	if _, err := UnmarshalFavorites([]byte(`[]`)); !errors.Is(err, fverrors.ErrDecode) {
		t.Errorf("array collection: %v", err)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	p := newProvider(t, []string{"Source"}, allTypes, "var a = 1;")
	head := p.IDs()[0]
	pal, _ := param.NewPalette([][]int32{{5}})
	for key, v := range map[string]any{
		"i": 3, "r": 0.25, "c": complex(1, 1), "b": false,
		"e": "x + 1", "k": int32(7), "p": pal, "x": "2",
	} {
		if _, err := p.SetValue(key, head, v); err != nil {
			t.Fatalf("SetValue(%s): %v", key, err)
		}
	}

	b, err := MarshalSession(p)
	if err != nil {
		t.Fatal(err)
	}
	again, err := MarshalSession(p)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b, again) {
		t.Error("session encoding is not deterministic")
	}

	got, err := UnmarshalSession(b)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 2 || strings.Join(got.Exclusive(), ",") != "Source" {
		t.Fatalf("len = %d, exclusive = %v", got.Len(), got.Exclusive())
	}
	want, _ := p.Fractal(head)
	have, _ := got.Fractal(got.IDs()[0])
	sameData(t, have.Data(), want.Data())
	if v, _ := have.Data().Value("k"); v != int32(7) {
		t.Errorf("color kept as %T", v)
	}
}

func TestSessionErrors(t *testing.T) {
	if _, err := UnmarshalSession([]byte{0xff, 0x00}); !errors.Is(err, fverrors.ErrDecode) {
		t.Errorf("garbage: %v", err)
	}

	b, err := cborEncMode.Marshal(session{Version: 99})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := UnmarshalSession(b); !errors.Is(err, fverrors.ErrDecode) {
		t.Errorf("version: %v", err)
	}
}
