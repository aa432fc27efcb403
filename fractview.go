package fractview

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/wippyai/fractview/codec"
	fverrors "github.com/wippyai/fractview/errors"
	"github.com/wippyai/fractview/fractal"
	"github.com/wippyai/fractview/param"
	"github.com/wippyai/fractview/provider"
)

// Version is the release reported by the CLI; set at build time.
var Version = "dev"

// LoadData reads a fractal from path. Files ending in .json hold the
// persisted form, current or legacy; anything else is script text.
func LoadData(path string) (*fractal.Data, error) {
	b, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return codec.UnmarshalData(b)
	}
	return fractal.NewData(string(b))
}

// ReloadData reads path again for a fractal currently holding cur. A
// document replaces cur; script text keeps the overrides of cur that the
// new script still accepts.
func ReloadData(path string, cur *fractal.Data) (*fractal.Data, error) {
	if cur == nil || strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadData(path)
	}
	b, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return cur.WithSource(string(b))
}

// LoadProvider builds a provider from files, the first being the head.
// Keys in exclusive are exclusive from the start.
func LoadProvider(exclusive []string, paths ...string) (*provider.Provider, error) {
	p := provider.New()
	for _, key := range exclusive {
		p.AddExclusive(key)
	}
	for _, path := range paths {
		data, err := LoadData(path)
		if err != nil {
			return nil, err
		}
		if _, err := p.AddFractal(data); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// LoadSession reads a session snapshot written by SaveSession.
func LoadSession(path string) (*provider.Provider, error) {
	b, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return codec.UnmarshalSession(b)
}

// SaveSession writes p to path, replacing the file atomically.
func SaveSession(path string, p *provider.Provider) error {
	b, err := codec.MarshalSession(p)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fverrors.Wrap(fverrors.PhaseEncode, fverrors.KindInvalidInput, err, "write session")
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fverrors.Wrap(fverrors.PhaseEncode, fverrors.KindInvalidInput, err, "write session")
	}
	return nil
}

// SetText parses text as a value for key and applies it through
// p.SetValue. The type is taken from the table entry of key, so for an
// exclusive key owner selects both the type and the target. Empty text
// resets the parameter.
func SetText(p *provider.Provider, key string, owner provider.ID, text string) (bool, error) {
	e, ok := p.Entry(key, owner)
	if !ok {
		return false, fverrors.NotFound(fverrors.PhaseProvider, "parameter", key)
	}
	if text == "" && e.Parameter.Type != param.TypeSource {
		return p.SetValue(key, e.Owner, nil)
	}

	v, err := param.FromText(e.Parameter.Type, text)
	if err != nil {
		return false, err
	}
	return p.SetValue(key, e.Owner, v)
}

// ParseAssignment splits "key=value". The value may be empty.
func ParseAssignment(s string) (key, value string, err error) {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fverrors.InvalidInput(fverrors.PhaseProvider, "expected key=value, got "+s)
	}
	return key, value, nil
}

func readFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		kind := fverrors.KindInvalidInput
		if errors.Is(err, os.ErrNotExist) {
			kind = fverrors.KindNotFound
		}
		return nil, fverrors.Wrap(fverrors.PhaseDecode, kind, err, "read "+path)
	}
	return b, nil
}
