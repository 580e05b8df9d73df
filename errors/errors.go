package errors

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseCompile Phase = "compile" // Go type to shape
	PhaseEncode  Phase = "encode"  // Go to host
	PhaseDecode  Phase = "decode"  // host to Go
	PhaseHost    Phase = "host"    // access layer operations
)

// Kind categorizes the error
type Kind string

const (
	KindTypeMismatch   Kind = "type_mismatch"
	KindFieldMissing   Kind = "field_missing"
	KindFieldUnknown   Kind = "field_unknown"
	KindUnknownVariant Kind = "unknown_variant"
	KindInvalidVariant Kind = "invalid_variant"
	KindArityMismatch  Kind = "arity_mismatch"
	KindOutOfRange     Kind = "out_of_range"
	KindInvalidChar    Kind = "invalid_char"
	KindUnhashableKey  Kind = "unhashable_key"
	KindDuplicateKey   Kind = "duplicate_key"
	KindAllocation     Kind = "allocation"
	KindCustom         Kind = "custom"
	KindUnsupported    Kind = "unsupported"
	KindNilPointer     Kind = "nil_pointer"
	KindInvalidInput   Kind = "invalid_input"
	KindDepthExceeded  Kind = "depth_exceeded"
)

// Error is the structured error returned by every transcoding operation.
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	Expected string // expected kind, type or arity
	Found    string // found kind, type or arity
	Name     string // field or variant name
	Detail   string
	Path     []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(FormatPath(e.Path))
	}

	hasTypes := e.Expected != "" || e.Found != ""
	if hasTypes {
		b.WriteString(": ")
		switch {
		case e.Expected != "" && e.Found != "":
			b.WriteString("expected ")
			b.WriteString(e.Expected)
			b.WriteString(", found ")
			b.WriteString(e.Found)
		case e.Expected != "":
			b.WriteString("expected ")
			b.WriteString(e.Expected)
		default:
			b.WriteString("found ")
			b.WriteString(e.Found)
		}
	}

	if e.Detail != "" {
		if hasTypes {
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

// FormatPath joins path segments, attaching index ("[0]") and key ("{k}")
// segments to the previous one: items[0].name.
func FormatPath(path []string) string {
	var b strings.Builder
	for i, p := range path {
		if i > 0 && !strings.HasPrefix(p, "[") && !strings.HasPrefix(p, "{") {
			b.WriteByte('.')
		}
		b.WriteString(p)
	}
	return b.String()
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
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

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Expected sets the expected kind or type
func (b *Builder) Expected(s string) *Builder {
	b.err.Expected = s
	return b
}

// Found sets the kind or type actually encountered
func (b *Builder) Found(s string) *Builder {
	b.err.Found = s
	return b
}

// Name sets the field or variant name
func (b *Builder) Name(name string) *Builder {
	b.err.Name = name
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

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, expected, found string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindTypeMismatch,
		Path:     path,
		Expected: expected,
		Found:    found,
	}
}

// FieldMissing creates a missing field error
func FieldMissing(phase Phase, path []string, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldMissing,
		Path:   path,
		Name:   fieldName,
		Detail: fmt.Sprintf("required field %q not found", fieldName),
	}
}

// FieldUnknown creates an unknown field error
func FieldUnknown(phase Phase, path []string, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldUnknown,
		Path:   path,
		Name:   fieldName,
		Detail: fmt.Sprintf("unknown field %q", fieldName),
	}
}

// UnknownVariant creates an unknown variant error
func UnknownVariant(phase Phase, path []string, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownVariant,
		Path:   path,
		Name:   name,
		Detail: fmt.Sprintf("unknown variant %q", name),
	}
}

// InvalidVariant creates an error for an enum value or encoding that does not
// select exactly one variant
func InvalidVariant(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidVariant,
		Path:   path,
		Detail: detail,
	}
}

// ArityMismatch creates a tuple arity error
func ArityMismatch(phase Phase, path []string, want, got int) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindArityMismatch,
		Path:     path,
		Expected: strconv.Itoa(want),
		Found:    strconv.Itoa(got),
		Value:    got,
	}
}

// OutOfRange creates an error for a number that does not fit its target type
func OutOfRange(phase Phase, path []string, value any, target string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindOutOfRange,
		Path:     path,
		Expected: target,
		Detail:   fmt.Sprintf("value %v overflows %s", value, target),
		Value:    value,
	}
}

// InvalidChar creates an error for text that is not exactly one character
func InvalidChar(phase Phase, path []string, text string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidChar,
		Path:   path,
		Detail: fmt.Sprintf("expected a single character, found %q", text),
		Value:  text,
	}
}

// UnhashableKey creates an error for a mapping key the host cannot hash
func UnhashableKey(phase Phase, path []string, typeName string, cause error) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindUnhashableKey,
		Path:  path,
		Found: typeName,
		Cause: cause,
	}
}

// DuplicateKey creates an error for two keys the host treats as one
func DuplicateKey(phase Phase, path []string, key string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicateKey,
		Path:   path,
		Value:  key,
		Detail: fmt.Sprintf("key %s collides with an existing entry", key),
		Cause:  cause,
	}
}

// AllocationFailed creates an error for a host object that could not be built
func AllocationFailed(phase Phase, path []string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Path:   path,
		Detail: "host object construction failed",
		Cause:  cause,
	}
}

// Custom wraps a message supplied by a value's own encode or decode hook
func Custom(phase Phase, path []string, msg string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCustom,
		Path:   path,
		Detail: msg,
		Cause:  cause,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, path []string, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Path:   path,
		Detail: what,
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, path []string, what string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindNilPointer,
		Path:     path,
		Expected: what,
		Detail:   "nil pointer",
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

// DepthExceeded creates an error for input nested deeper than the limit
func DepthExceeded(phase Phase, path []string, limit int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDepthExceeded,
		Path:   path,
		Detail: fmt.Sprintf("nesting exceeds maximum depth %d", limit),
		Value:  limit,
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
