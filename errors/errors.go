package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseParse    Phase = "parse"    // script text to tree
	PhaseResolve  Phase = "resolve"  // identifier resolution
	PhaseCompile  Phase = "compile"  // tree to bytecode
	PhaseConvert  Phase = "convert"  // literal to value and back
	PhaseProvider Phase = "provider" // document collection operations
	PhaseDecode   Phase = "decode"   // persisted form to data
	PhaseEncode   Phase = "encode"   // data to persisted form
	PhaseStore    Phase = "store"    // favorites storage
	PhaseConfig   Phase = "config"   // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindSyntax         Kind = "syntax"
	KindUnknownType    Kind = "unknown_type"
	KindTypeMismatch   Kind = "type_mismatch"
	KindUnsupported    Kind = "unsupported"
	KindInvalidPalette Kind = "invalid_palette"
	KindInvalidData    Kind = "invalid_data"
	KindNotFound       Kind = "not_found"
	KindUndefined      Kind = "undefined"
	KindInvalidInput   Kind = "invalid_input"
	KindRecursive      Kind = "recursive"
)

// Error is the structured error type used throughout fractview
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Param  string
	Type   string
	Detail string
	Line   int
	Column int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Param != "" {
		b.WriteString(" at ")
		b.WriteString(e.Param)
	}

	if e.Line > 0 {
		fmt.Fprintf(&b, " (line %d, column %d)", e.Line, e.Column)
	}

	if e.Type != "" {
		b.WriteString(": type ")
		b.WriteString(e.Type)
	}

	if e.Detail != "" {
		if e.Type != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Param sets the parameter the error refers to
func (b *Builder) Param(id string) *Builder {
	b.err.Param = id
	return b
}

// Type sets the parameter type name
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Pos sets the source position
func (b *Builder) Pos(line, col int) *Builder {
	b.err.Line = line
	b.err.Column = col
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Syntax creates a parse error at a source position
func Syntax(line, col int, format string, args ...any) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindSyntax,
		Line:   line,
		Column: col,
		Detail: fmt.Sprintf(format, args...),
	}
}

// UnknownType creates an error for an unrecognized declared type name
func UnknownType(param, typeName string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindUnknownType,
		Param:  param,
		Type:   typeName,
		Detail: fmt.Sprintf("unknown type %q", typeName),
	}
}

// TypeMismatch creates a literal or value conversion error
func TypeMismatch(phase Phase, param, typeName string, value any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Param:  param,
		Type:   typeName,
		Value:  value,
		Detail: fmt.Sprintf("cannot use %T as %s", value, typeName),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidPalette creates a malformed palette literal error
func InvalidPalette(detail string) *Error {
	return &Error{
		Phase:  PhaseConvert,
		Kind:   KindInvalidPalette,
		Type:   "palette",
		Detail: detail,
	}
}

// Undefined creates an undefined identifier error
func Undefined(id string, line, col int) *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindUndefined,
		Param:  id,
		Line:   line,
		Column: col,
		Detail: fmt.Sprintf("undefined identifier %q", id),
	}
}

// NotFound creates a not found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, param, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Param:  param,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Sentinels for errors.Is matching

var (
	ErrSyntax         = &Error{Phase: PhaseParse, Kind: KindSyntax}
	ErrUnknownType    = &Error{Phase: PhaseResolve, Kind: KindUnknownType}
	ErrSemantic       = &Error{Phase: PhaseResolve, Kind: KindUnsupported}
	ErrInvalidPalette = &Error{Phase: PhaseConvert, Kind: KindInvalidPalette}
	ErrUndefined      = &Error{Phase: PhaseCompile, Kind: KindUndefined}
	ErrNoDocument     = &Error{Phase: PhaseProvider, Kind: KindNotFound}
	ErrDecode         = &Error{Phase: PhaseDecode, Kind: KindInvalidData}
	ErrEncode         = &Error{Phase: PhaseEncode, Kind: KindInvalidData}
)
