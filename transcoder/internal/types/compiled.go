package types

import (
	"reflect"
)

// Shape is the compiled data-model description of one Go type.
type Shape struct {
	GoType reflect.Type
	Elem   *Shape // option, sequence, array tuple
	Key    *Shape // map
	Fields []Field
	Cases  []Case
	// FieldIndex and CaseIndex map host names to positions in Fields and Cases.
	FieldIndex map[string]int
	CaseIndex  map[string]int
	Arity      int
	Kind       Kind
	// Iter marks a sequence produced by an iterator func. Encode only.
	Iter      bool
	Marshal   bool // T or *T implements Marshaler
	Unmarshal bool // *T implements Unmarshaler
}

type Field struct {
	Shape     *Shape
	Name      string
	Index     int
	OmitEmpty bool
}

// Optional reports whether the field may be absent on decode.
func (f *Field) Optional() bool {
	return f.Shape.Kind == KindOption
}

// Case is one enum variant. GoType of the enum holds one pointer field per case,
// and Payload is compiled from the pointee type.
type Case struct {
	Payload *Shape
	Name    string
	Index   int
	Variant VariantKind
}

func (s *Shape) IsScalar() bool {
	return s.Kind.IsScalar()
}

// IsArray reports whether a tuple shape is backed by a Go array rather than
// a tuple struct.
func (s *Shape) IsArray() bool {
	return s.Kind == KindTuple && s.GoType.Kind() == reflect.Array
}

func (s *Shape) Field(name string) (*Field, bool) {
	i, ok := s.FieldIndex[name]
	if !ok {
		return nil, false
	}
	return &s.Fields[i], true
}

func (s *Shape) Case(name string) (*Case, bool) {
	i, ok := s.CaseIndex[name]
	if !ok {
		return nil, false
	}
	return &s.Cases[i], true
}

// HasHooks reports whether values of this shape describe themselves.
func (s *Shape) HasHooks() bool {
	return s.Marshal || s.Unmarshal
}

// Bits returns the bit width of a numeric kind, or 0.
func (s *Shape) Bits() int {
	switch s.Kind {
	case KindS8, KindU8:
		return 8
	case KindS16, KindU16:
		return 16
	case KindS32, KindU32, KindF32, KindChar:
		return 32
	case KindS64, KindU64, KindF64:
		return 64
	default:
		return 0
	}
}
