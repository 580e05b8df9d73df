// Package transcoder converts between Go values and host runtime objects.
//
// This package handles bidirectional conversion between Go types and the
// dynamic objects of an embedded host runtime, reached through the
// hostobj.Host access layer.
//
// # Overview
//
//	┌─────────────────────────────────────────────────────────────┐
//	│ Go Value ←→ [Transcoder] ←→ hostobj.Host ←→ Host Objects     │
//	└─────────────────────────────────────────────────────────────┘
//
// # Shapes
//
// The Compiler derives a Shape from a Go type once and caches it:
//
//	Go type                        Shape kind
//	──────────────────────────────────────────────
//	bool, intN, uintN, floatN      bool, sN, uN, fN
//	Char, int32 tagged ",char"     char
//	string                         string
//	*T                             option
//	struct{}                       unit
//	[]T, iter.Seq[T]               sequence
//	[N]T, struct with `_ struct{} host:",tuple"`   tuple
//	struct with `_ struct{} host:",enum"`          enum
//	other structs                  struct
//	map[K]V                        map
//	any, interfaces                dynamic
//
// Named types are transparent: `type Meters float64` is an f64.
//
// Struct fields use the host tag:
//
//	type User struct {
//		Name  string  `host:"name"`
//		Email *string `host:"email,omitempty"`
//		Note  string  `host:"-"`
//	}
//
// # Enums
//
// An enum is a struct with one pointer field per variant. Exactly one field
// is non-nil. The payload type decides the variant shape:
//
//	type Shape struct {
//		_      struct{}   `host:",enum"`
//		Empty  *struct{}             // unit:    "Empty"
//		Circle *float64              // newtype: {"Circle": 1.5}
//		Rect   *[2]float64           // tuple:   {"Rect": (2.0, 3.0)}
//		Poly   *Poly                 // struct:  {"Poly": {"sides": 5}}
//	}
//
// # Key Types
//
//	Encoder     - Converts Go values into host objects
//	Decoder     - Converts host objects into Go values
//	Compiler    - Derives and caches Shapes
//	Shape       - Compiled data-model description of a Go type
//	Marshaler   - Lets a type build its own host object
//	Unmarshaler - Lets a type read itself from a host object
//
// # Decoding Rules
//
// Decoding fails closed. Scalars require the exact host kind: a host int
// never decodes into bool. Integers are range checked against the target.
// Tuples require an exact arity. Struct fields typed as options may be
// absent. Unknown mapping keys are ignored unless
// Options.DisallowUnknownFields is set. Decode assigns to the target only on
// success.
//
// # Thread Safety
//
// Compiler, Encoder and Decoder are safe for concurrent use. A Host is not:
// each call must run while the caller holds the Host's execution context.
//
// # Error Handling
//
// Errors use the structured types from the errors package:
//
//	[decode] type_mismatch at user.age: expected int, found text - decoding into uint32
//	[decode] field_missing: required field "b" not found
//
// Map keys the host rejects fail with unhashable_key, and distinct Go keys
// the host considers equal (1 and 1.0 in Starlark) fail with duplicate_key
// rather than merging.
//
// Panics raised by the Host are recovered at the Encode and Decode boundary
// and reported as allocation (encode) or custom (decode) errors.
package transcoder
