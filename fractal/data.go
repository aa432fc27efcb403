package fractal

import (
	"maps"
	"slices"

	fverrors "github.com/wippyai/fractview/errors"
	"github.com/wippyai/fractview/param"
	"github.com/wippyai/fractview/script"
	"github.com/wippyai/fractview/script/ast"
)

// Keys of the two parameters every fractal has.
const (
	SourceKey = "Source"
	ScaleKey  = "Scale"

	sourceDescription = "Source Code"
	scaleDescription  = "Scale"
)

// Data is the immutable state of a fractal: its source, the parsed unit and
// the user's overrides. Every edit returns a new Data.
type Data struct {
	unit      *script.Unit
	overrides map[string]any
}

// NewData parses source into Data without overrides.
func NewData(source string) (*Data, error) {
	b, err := NewBuilder(source)
	if err != nil {
		return nil, err
	}
	return b.Commit(), nil
}

// Source returns the script text.
func (d *Data) Source() string {
	return d.unit.Source
}

// Unit returns the parsed script.
func (d *Data) Unit() *script.Unit {
	return d.unit
}

// Externs returns the extern declarations in declaration order.
func (d *Data) Externs() []*ast.ExternDecl {
	return d.unit.Externs
}

// Extern returns the declaration of id.
func (d *Data) Extern(id string) (*ast.ExternDecl, bool) {
	return d.unit.Extern(id)
}

// Value returns the override for id.
func (d *Data) Value(id string) (any, bool) {
	v, ok := d.overrides[id]
	return v, ok
}

// Keys returns the ids of all overrides, sorted.
func (d *Data) Keys() []string {
	return slices.Sorted(maps.Keys(d.overrides))
}

// Len returns the number of overrides.
func (d *Data) Len() int {
	return len(d.overrides)
}

// QueryType returns the type a value for id must have.
func (d *Data) QueryType(id string) (param.Type, error) {
	return queryType(d.unit, id)
}

// WithParameter returns a copy with id overridden by v. Values the type of
// id does not accept, or that equal the current override, leave the data
// unchanged.
func (d *Data) WithParameter(id string, v any) (*Data, error) {
	typ, err := d.QueryType(id)
	if err != nil {
		return nil, err
	}
	cv, ok := typ.Coerce(v)
	if !ok {
		return d, nil
	}
	if old, ok := d.overrides[id]; ok && param.Equal(old, cv) {
		return d, nil
	}

	overrides := maps.Clone(d.overrides)
	if overrides == nil {
		overrides = make(map[string]any, 1)
	}
	overrides[id] = cv
	return &Data{unit: d.unit, overrides: overrides}, nil
}

// WithoutParameter returns a copy with the override of id removed.
func (d *Data) WithoutParameter(id string) *Data {
	if _, ok := d.overrides[id]; !ok {
		return d
	}
	overrides := maps.Clone(d.overrides)
	delete(overrides, id)
	return &Data{unit: d.unit, overrides: overrides}
}

// WithSource returns data for a new script carrying over every override the
// new script still accepts.
func (d *Data) WithSource(source string) (*Data, error) {
	b, err := NewBuilder(source)
	if err != nil {
		return nil, err
	}
	for _, id := range d.Keys() {
		// Overrides whose type can no longer be determined are dropped;
		// compiling the new script reports the bad declaration.
		_, _ = b.Add(id, d.overrides[id])
	}
	return b.Commit(), nil
}

func queryType(u *script.Unit, id string) (param.Type, error) {
	switch id {
	case ScaleKey:
		return param.TypeScale, nil
	case SourceKey:
		return 0, fverrors.New(fverrors.PhaseResolve, fverrors.KindInvalidInput).
			Param(id).Detail("source is set through the source text").Build()
	}

	decl, ok := u.Extern(id)
	if !ok {
		return param.TypeExpr, nil
	}
	typ, ok := param.Parse(decl.TypeName)
	if !ok {
		return 0, unknownType(decl)
	}
	return typ, nil
}

func unknownType(decl *ast.ExternDecl) error {
	err := fverrors.UnknownType(decl.ID, decl.TypeName)
	err.Line, err.Column = decl.At.Line, decl.At.Col
	return err
}

// Builder assembles Data from a source and a set of overrides.
type Builder struct {
	unit      *script.Unit
	overrides map[string]any
}

// NewBuilder parses source.
func NewBuilder(source string) (*Builder, error) {
	u, err := script.Parse(source)
	if err != nil {
		return nil, err
	}
	return &Builder{unit: u, overrides: make(map[string]any)}, nil
}

// QueryType returns the type a value for id must have.
func (b *Builder) QueryType(id string) (param.Type, error) {
	return queryType(b.unit, id)
}

// IsExtern reports whether id is declared by the script.
func (b *Builder) IsExtern(id string) bool {
	_, ok := b.unit.Extern(id)
	return ok
}

// Add records an override. It reports false if the type of id rejects v.
func (b *Builder) Add(id string, v any) (bool, error) {
	typ, err := b.QueryType(id)
	if err != nil {
		return false, err
	}
	cv, ok := typ.Coerce(v)
	if !ok {
		return false, nil
	}
	b.overrides[id] = cv
	return true, nil
}

// Commit returns the Data. The builder must not be used afterwards.
func (b *Builder) Commit() *Data {
	return &Data{unit: b.unit, overrides: b.overrides}
}
