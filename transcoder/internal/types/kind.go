package types

// Kind is the data-model kind a Go type compiles to.
type Kind uint8

const (
	KindBool Kind = iota
	KindS8
	KindS16
	KindS32
	KindS64
	KindU8
	KindU16
	KindU32
	KindU64
	KindF32
	KindF64
	KindChar
	KindString
	KindOption
	KindUnit
	KindSequence
	KindTuple
	KindMap
	KindStruct
	KindEnum
	KindDynamic
	KindCustom
)

var kindNames = [...]string{
	KindBool:     "bool",
	KindS8:       "s8",
	KindS16:      "s16",
	KindS32:      "s32",
	KindS64:      "s64",
	KindU8:       "u8",
	KindU16:      "u16",
	KindU32:      "u32",
	KindU64:      "u64",
	KindF32:      "f32",
	KindF64:      "f64",
	KindChar:     "char",
	KindString:   "string",
	KindOption:   "option",
	KindUnit:     "unit",
	KindSequence: "sequence",
	KindTuple:    "tuple",
	KindMap:      "map",
	KindStruct:   "struct",
	KindEnum:     "enum",
	KindDynamic:  "dynamic",
	KindCustom:   "custom",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsScalar reports whether k encodes to a single host scalar.
func (k Kind) IsScalar() bool {
	return k <= KindString
}

func (k Kind) IsSigned() bool {
	return k >= KindS8 && k <= KindS64
}

func (k Kind) IsUnsigned() bool {
	return k >= KindU8 && k <= KindU64
}

func (k Kind) IsFloat() bool {
	return k == KindF32 || k == KindF64
}

// HostKind names the dynamic object kind a value of kind k encodes to.
// It is used as the "expected" side of decode type mismatches.
func (k Kind) HostKind() string {
	switch {
	case k == KindBool:
		return "bool"
	case k.IsSigned(), k.IsUnsigned():
		return "int"
	case k.IsFloat():
		return "float"
	case k == KindChar, k == KindString:
		return "text"
	case k == KindUnit, k == KindTuple:
		return "tuple"
	case k == KindSequence:
		return "sequence"
	case k == KindMap, k == KindStruct:
		return "mapping"
	case k == KindEnum:
		return "text or mapping"
	default:
		return "any"
	}
}

// VariantKind is the payload shape of one enum variant.
type VariantKind uint8

const (
	VariantUnit VariantKind = iota
	VariantNewtype
	VariantTuple
	VariantStruct
)

var variantNames = [...]string{
	VariantUnit:    "unit",
	VariantNewtype: "newtype",
	VariantTuple:   "tuple",
	VariantStruct:  "struct",
}

func (v VariantKind) String() string {
	if int(v) < len(variantNames) {
		return variantNames[v]
	}
	return "unknown"
}
