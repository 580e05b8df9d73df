// Package hostobj converts Go values to and from the dynamic objects of an
// embedded host runtime.
//
// The root package defines the access layer a host runtime implements. The
// transcoding itself lives in the transcoder package.
//
// # Architecture Overview
//
//	hostobj/             Root package with the Host access-layer interface
//	├── transcoder/      Shape compiler, Encoder and Decoder
//	├── starlarkhost/    Host implementation backed by go.starlark.net
//	├── errors/          Structured error types for debugging
//	└── cmd/hostobj/     Debug CLI (JSON/YAML documents <-> Starlark objects)
//
// # Quick Start
//
//	thread := &starlark.Thread{Name: "main"}
//	h := starlarkhost.New(thread)
//
//	obj, err := transcoder.NewEncoder().Encode(h, Point{X: 1, Y: 2})
//	// obj is the Starlark dict {"X": 1, "Y": 2}
//
//	var p Point
//	err = transcoder.NewDecoder().Decode(h, obj, &p)
//
// # Canonical Mapping
//
//	Go value                      Host object
//	──────────────────────────────────────────────────────────
//	bool, ints, floats, string    bool, int, float, text
//	Char                          one-character text
//	*T (nil / non-nil)            None / encoding of T
//	struct{}                      ()
//	[]T                           sequence
//	[N]T, tuple struct            tuple of arity N
//	map[K]V                       mapping, keys sorted
//	struct                        mapping of field names
//	enum unit variant             "Name"
//	enum newtype variant          {"Name": payload}
//	enum tuple variant            {"Name": (a, b)}
//	enum struct variant           {"Name": {"f": v}}
//
// Structs, tuple structs and named types carry no type name: the decoder
// knows the expected shape from the Go type.
//
// # Thread Safety
//
// A Host is bound to one execution context and must only be used while that
// context is held. Compiler, Encoder and Decoder are safe for concurrent use.
package hostobj
