// Package errors provides structured error types for fractview.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the parameter id, the parameter type name, an optional
// source position and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseResolve, errors.KindUnsupported).
//		Param("scale").
//		Type("scale").
//		Detail("scale is not yet supported").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnknownType("a", "integer")
//	err := errors.Syntax(3, 14, "expected %q", ";")
//
// All errors implement the standard error interface and support errors.Is/As.
// Is matches on Phase and Kind, so the package-level sentinels work as targets:
//
//	if errors.Is(err, fverrors.ErrSemantic) { ... }
package errors
