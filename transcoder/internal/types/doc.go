// Package types defines the compiled shape structures used by the transcoder.
//
// A Shape is derived once per Go type from reflect metadata and cached. It
// records the data-model kind plus, for composites, the element, key, field
// and variant tables the encoder and decoder walk.
//
// # Key Types
//
//   - Shape: cached data-model description of a Go type
//   - Kind: data-model discriminator (scalar, option, sequence, enum, etc.)
//   - VariantKind: payload shape of an enum variant (unit, newtype, tuple, struct)
//
// This package is internal to the transcoder.
package types
