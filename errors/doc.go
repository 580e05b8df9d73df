// Package errors provides structured error types for the hostobj library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, expected and found kinds, the
// offending field or variant name, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
//		Path("user", "age").
//		Expected("int").
//		Found("text").
//		Detail("decoding into uint32").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.FieldMissing(errors.PhaseDecode, path, "b")
//	err := errors.ArityMismatch(errors.PhaseDecode, path, 2, 3)
//
// Callers inspect the kind programmatically with errors.As or KindOf:
//
//	if kind, ok := errors.KindOf(err); ok && kind == errors.KindOutOfRange {
//		...
//	}
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
