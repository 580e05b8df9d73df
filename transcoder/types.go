package transcoder

import (
	"reflect"

	"github.com/wippyai/hostobj"
	"github.com/wippyai/hostobj/transcoder/internal/types"
)

type ShapeKind = types.Kind

const (
	KindBool     = types.KindBool
	KindS8       = types.KindS8
	KindS16      = types.KindS16
	KindS32      = types.KindS32
	KindS64      = types.KindS64
	KindU8       = types.KindU8
	KindU16      = types.KindU16
	KindU32      = types.KindU32
	KindU64      = types.KindU64
	KindF32      = types.KindF32
	KindF64      = types.KindF64
	KindChar     = types.KindChar
	KindString   = types.KindString
	KindOption   = types.KindOption
	KindUnit     = types.KindUnit
	KindSequence = types.KindSequence
	KindTuple    = types.KindTuple
	KindMap      = types.KindMap
	KindStruct   = types.KindStruct
	KindEnum     = types.KindEnum
	KindDynamic  = types.KindDynamic
	KindCustom   = types.KindCustom
)

type VariantKind = types.VariantKind

const (
	VariantUnit    = types.VariantUnit
	VariantNewtype = types.VariantNewtype
	VariantTuple   = types.VariantTuple
	VariantStruct  = types.VariantStruct
)

type Shape = types.Shape
type ShapeField = types.Field
type ShapeCase = types.Case

// Char is a single Unicode scalar value. It encodes as one-character text.
type Char rune

// Marshaler is implemented by types that build their own host object.
type Marshaler interface {
	MarshalHost(h hostobj.Host) (hostobj.Object, error)
}

// Unmarshaler is implemented by types that read themselves from a host object.
type Unmarshaler interface {
	UnmarshalHost(h hostobj.Host, obj hostobj.Object) error
}

var (
	charType        = reflect.TypeOf((*Char)(nil)).Elem()
	marshalerType   = reflect.TypeOf((*Marshaler)(nil)).Elem()
	unmarshalerType = reflect.TypeOf((*Unmarshaler)(nil)).Elem()
)
