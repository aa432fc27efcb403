package fractal

import (
	"go.uber.org/zap"

	"github.com/wippyai/fractview/internal/observer"
	"github.com/wippyai/fractview/param"
	"github.com/wippyai/fractview/script"
	"github.com/wippyai/fractview/script/ast"
)

// Parameter is a resolved parameter of one compilation.
type Parameter struct {
	Value       any
	Literal     ast.Node // nil for Source and Scale
	ID          string
	Description string
	Type        param.Type
	IsDefault   bool
}

// Options configure a Fractal.
type Options struct {
	// AllowImplicit turns identifiers that are neither declared nor builtin
	// into expr parameters instead of compile errors.
	AllowImplicit bool
}

// Fractal is a compiled script with overrides, an undo history and
// listeners. It is not safe for concurrent use.
type Fractal struct {
	data      *Data
	compiled  *compiled
	history   []*Data
	listeners observer.Registry[*Fractal]
	cursor    int
	opts      Options
}

// compiled is everything derived from one successful compilation.
type compiled struct {
	code     script.Bytecode
	params   map[string]*Parameter
	required []*Parameter
	palettes []param.Palette
	scales   []param.Scale
}

// New compiles data. Construction fails if compilation fails.
func New(data *Data, opts Options) (*Fractal, error) {
	c, err := compile(data, opts)
	if err != nil {
		return nil, err
	}
	return &Fractal{
		data:     data,
		compiled: c,
		history:  []*Data{data},
		opts:     opts,
	}, nil
}

// FromData compiles data with implicit parameters enabled.
func FromData(data *Data) (*Fractal, error) {
	return New(data, Options{AllowImplicit: true})
}

// FromSource parses and compiles source. Every identifier must be declared
// or builtin.
func FromSource(source string) (*Fractal, error) {
	data, err := NewData(source)
	if err != nil {
		return nil, err
	}
	return New(data, Options{})
}

func compile(data *Data, opts Options) (*compiled, error) {
	var paletteIDs []string
	var scales []param.Scale
	for _, decl := range data.Externs() {
		typ, ok := param.Parse(decl.TypeName)
		if !ok {
			continue
		}
		switch typ {
		case param.TypePalette:
			paletteIDs = append(paletteIDs, decl.ID)
		case param.TypeScale:
			v, err := typ.ToValue(script.Preprocess(decl.Default, script.Instructions))
			if err != nil {
				return nil, atParam(err, decl.ID)
			}
			scales = append(scales, v.(param.Scale))
		}
	}

	r := newResolver(data, paletteIDs, opts.AllowImplicit)
	code, err := script.Compile(data.Unit().Program, script.Instructions, r)
	if err != nil {
		return nil, err
	}

	palettes := make([]param.Palette, len(paletteIDs))
	for i, id := range paletteIDs {
		palettes[i] = param.FallbackPalette
		if p, ok := r.cache[id]; ok {
			palettes[i] = p.Value.(param.Palette)
		}
	}

	scale, err := resolveScale(data)
	if err != nil {
		return nil, err
	}

	source := &Parameter{
		ID:          SourceKey,
		Description: sourceDescription,
		Value:       data.Source(),
		Type:        param.TypeSource,
		IsDefault:   true,
	}

	required := make([]*Parameter, 0, len(r.order)+2)
	required = append(required, source, scale)
	required = append(required, r.order...)

	params := make(map[string]*Parameter, len(required))
	for _, p := range required {
		params[p.ID] = p
	}

	return &compiled{
		code:     code,
		params:   params,
		required: required,
		palettes: palettes,
		scales:   scales,
	}, nil
}

// resolveScale prefers an override, then a declared Scale extern, then
// the default scale.
func resolveScale(data *Data) (*Parameter, error) {
	p := &Parameter{
		ID:          ScaleKey,
		Description: scaleDescription,
		Type:        param.TypeScale,
	}

	if v, ok := data.Value(ScaleKey); ok {
		p.Value = v
		return p, nil
	}

	p.IsDefault = true
	p.Value = param.DefaultScale
	if decl, ok := data.Extern(ScaleKey); ok {
		v, err := param.TypeScale.ToValue(script.Preprocess(decl.Default, script.Instructions))
		if err != nil {
			return nil, atParam(err, ScaleKey)
		}
		p.Value = v
	}
	return p, nil
}

// Code returns the compiled bytecode.
func (f *Fractal) Code() script.Bytecode {
	return f.compiled.code
}

// Palettes returns one palette per palette declaration, in declaration
// order. The palette instruction refers to them by this index.
func (f *Fractal) Palettes() []param.Palette {
	return f.compiled.palettes
}

// Scales returns the defaults of all scale declarations.
func (f *Fractal) Scales() []param.Scale {
	return f.compiled.scales
}

// Scale returns the value of the Scale parameter.
func (f *Fractal) Scale() param.Scale {
	return f.compiled.params[ScaleKey].Value.(param.Scale)
}

// Source returns the current script text.
func (f *Fractal) Source() string {
	return f.data.Source()
}

// Data returns the current data.
func (f *Fractal) Data() *Data {
	return f.data
}

// Externs returns all extern declarations, referenced or not.
func (f *Fractal) Externs() []*ast.ExternDecl {
	return f.data.Externs()
}

// Parameter returns the resolved parameter id.
func (f *Fractal) Parameter(id string) (*Parameter, bool) {
	p, ok := f.compiled.params[id]
	return p, ok
}

// Parameters returns Source, Scale and every parameter the program
// references, in the order they were discovered.
func (f *Fractal) Parameters() []*Parameter {
	out := make([]*Parameter, len(f.compiled.required))
	copy(out, f.compiled.required)
	return out
}

// Subscribe registers fn to be called after every committed change.
func (f *Fractal) Subscribe(fn func(*Fractal)) (cancel func()) {
	return f.listeners.Subscribe(fn)
}

// Stage is a compiled but uncommitted change.
type Stage struct {
	fractal  *Fractal
	data     *Data
	compiled *compiled
}

// Stage prepares setting id to v; a nil v resets id to its default. It
// returns a nil Stage if id is not a current parameter, if its type rejects
// v, or if nothing would change. A compile error leaves f untouched.
func (f *Fractal) Stage(id string, v any) (*Stage, error) {
	cur, ok := f.compiled.params[id]
	if !ok || (v != nil && !cur.Type.IsInstance(v)) {
		return nil, nil
	}

	var next *Data
	var err error
	switch {
	case id == SourceKey:
		if v == nil || v.(string) == f.data.Source() {
			return nil, nil
		}
		next, err = f.data.WithSource(v.(string))
	case v == nil:
		next = f.data.WithoutParameter(id)
	default:
		next, err = f.data.WithParameter(id, v)
	}
	if err != nil {
		return nil, err
	}
	if next == f.data {
		return nil, nil
	}

	return f.stage(next)
}

func (f *Fractal) stage(next *Data) (*Stage, error) {
	c, err := compile(next, f.opts)
	if err != nil {
		Logger().Debug("compile failed, keeping last good state",
			zap.String("source", next.Source()),
			zap.Error(err))
		return nil, err
	}
	return &Stage{fractal: f, data: next, compiled: c}, nil
}

// Commit applies a stage created by this fractal, records it in the
// history and notifies listeners.
func (f *Fractal) Commit(s *Stage) {
	if s == nil || s.fractal != f {
		return
	}
	f.history = append(f.history[:f.cursor+1], s.data)
	f.cursor++
	f.apply(s.data, s.compiled)
}

// UpdateValue sets id to v, or resets it if v is nil, and reports whether
// the fractal changed. On a compile error the fractal keeps its previous
// state and the error is returned unchanged.
func (f *Fractal) UpdateValue(id string, v any) (bool, error) {
	s, err := f.Stage(id, v)
	if err != nil || s == nil {
		return false, err
	}
	f.Commit(s)
	return true, nil
}

// SetData replaces the data as one history step.
func (f *Fractal) SetData(data *Data) error {
	if data == f.data {
		return nil
	}
	s, err := f.stage(data)
	if err != nil {
		return err
	}
	f.Commit(s)
	return nil
}

// CanGoBack reports whether HistoryBack would move.
func (f *Fractal) CanGoBack() bool {
	return f.cursor > 0
}

// CanGoForward reports whether HistoryForward would move.
func (f *Fractal) CanGoForward() bool {
	return f.cursor < len(f.history)-1
}

// HistoryBack moves to the previous history entry.
func (f *Fractal) HistoryBack() (bool, error) {
	if !f.CanGoBack() {
		return false, nil
	}
	return f.moveTo(f.cursor - 1)
}

// HistoryForward moves to the next history entry.
func (f *Fractal) HistoryForward() (bool, error) {
	if !f.CanGoForward() {
		return false, nil
	}
	return f.moveTo(f.cursor + 1)
}

func (f *Fractal) moveTo(index int) (bool, error) {
	data := f.history[index]
	c, err := compile(data, f.opts)
	if err != nil {
		return false, err
	}
	f.cursor = index
	f.apply(data, c)
	return true, nil
}

func (f *Fractal) apply(data *Data, c *compiled) {
	f.data = data
	f.compiled = c
	f.listeners.Notify(f)
}

// HistoryLen returns the number of history entries and the cursor position.
func (f *Fractal) HistoryLen() (n, cursor int) {
	return len(f.history), f.cursor
}
