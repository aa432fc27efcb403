package fractal

import (
	"errors"

	fverrors "github.com/wippyai/fractview/errors"
	"github.com/wippyai/fractview/param"
	"github.com/wippyai/fractview/script"
	"github.com/wippyai/fractview/script/ast"
)

// resolver answers the compiler's identifier lookups for one compilation.
// Resolution order: parameters already resolved in this pass, extern
// declarations, builtins, and finally implicit parameters if allowed.
type resolver struct {
	data          *Data
	set           *script.InstructionSet
	cache         map[string]*Parameter
	paletteIDs    []string
	order         []*Parameter
	parentLabel   string
	allowImplicit bool
}

func newResolver(data *Data, paletteIDs []string, allowImplicit bool) *resolver {
	return &resolver{
		data:          data,
		set:           script.Instructions,
		cache:         make(map[string]*Parameter),
		paletteIDs:    paletteIDs,
		allowImplicit: allowImplicit,
	}
}

func (r *resolver) Resolve(id string) (ast.Node, error) {
	if p, ok := r.cache[id]; ok {
		return p.Literal, nil
	}

	if id == SourceKey || id == ScaleKey {
		return nil, fverrors.New(fverrors.PhaseResolve, fverrors.KindUnsupported).
			Param(id).Detail("%s cannot be used inside the program", id).Build()
	}

	if decl, ok := r.data.Extern(id); ok {
		p, err := r.declared(decl)
		if err != nil {
			return nil, err
		}
		r.add(p)
		r.parentLabel = p.Description
		return p.Literal, nil
	}

	if n, ok := r.set.Lookup(id); ok {
		return n, nil
	}

	if r.allowImplicit {
		p, err := r.implicit(id)
		if err != nil {
			return nil, err
		}
		r.add(p)
		return p.Literal, nil
	}

	return nil, nil
}

func (r *resolver) add(p *Parameter) {
	r.cache[p.ID] = p
	r.order = append(r.order, p)
}

func (r *resolver) declared(decl *ast.ExternDecl) (*Parameter, error) {
	typ, ok := param.Parse(decl.TypeName)
	if !ok {
		return nil, unknownType(decl)
	}

	value, overridden := r.data.Value(decl.ID)
	if !overridden {
		v, err := typ.ToValue(script.Preprocess(decl.Default, r.set))
		if err != nil {
			return nil, atParam(err, decl.ID)
		}
		value = v
	}

	var lit ast.Node
	switch typ {
	case param.TypePalette:
		lit = &ast.Partial{
			Name: script.OpPalette,
			Args: []ast.Node{ast.Int{Value: int32(r.paletteIndex(decl.ID))}},
		}
	case param.TypeScale:
		return nil, fverrors.New(fverrors.PhaseResolve, fverrors.KindUnsupported).
			Param(decl.ID).Type(typ.String()).Pos(decl.At.Line, decl.At.Col).
			Detail("scale is not yet supported").Build()
	default:
		n, err := typ.ToLiteral(value)
		if err != nil {
			return nil, atParam(err, decl.ID)
		}
		lit = n
	}

	return &Parameter{
		ID:          decl.ID,
		Description: decl.Description,
		Value:       value,
		Literal:     lit,
		Type:        typ,
		IsDefault:   !overridden,
	}, nil
}

func (r *resolver) implicit(id string) (*Parameter, error) {
	label := id + "(" + r.parentLabel + ")"

	if v, ok := r.data.Value(id); ok {
		lit, err := param.TypeExpr.ToLiteral(v)
		if err != nil {
			return nil, atParam(err, id)
		}
		return &Parameter{
			ID:          id,
			Description: label,
			Value:       v,
			Literal:     lit,
			Type:        param.TypeExpr,
		}, nil
	}

	return &Parameter{
		ID:          id,
		Description: label,
		Value:       "0",
		Literal:     ast.Int{Value: 0},
		Type:        param.TypeExpr,
		IsDefault:   true,
	}, nil
}

func (r *resolver) paletteIndex(id string) int {
	for i, p := range r.paletteIDs {
		if p == id {
			return i
		}
	}
	return -1
}

// atParam attaches the parameter id to a structured error that has none.
func atParam(err error, id string) error {
	var fe *fverrors.Error
	if errors.As(err, &fe) && fe.Param == "" {
		fe.Param = id
	}
	return err
}
