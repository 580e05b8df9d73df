package hostobj

import "errors"

// Object is a value owned by the host runtime. Only the Host that produced it
// (or handed it over) can interpret it.
type Object any

// Kind is the dynamic kind of a host object as seen by the transcoder.
type Kind uint8

const (
	KindOther Kind = iota // host value outside the data model
	KindNone
	KindBool
	KindInt
	KindFloat
	KindText
	KindSequence
	KindTuple
	KindMapping
	KindRecord // attribute-bearing object, read like a mapping
)

var kindNames = [...]string{
	KindOther:    "other",
	KindNone:     "none",
	KindBool:     "bool",
	KindInt:      "int",
	KindFloat:    "float",
	KindText:     "text",
	KindSequence: "sequence",
	KindTuple:    "tuple",
	KindMapping:  "mapping",
	KindRecord:   "record",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Entry is one key/value pair of a mapping or one attribute of a record.
type Entry struct {
	Key   Object
	Value Object
}

// Sentinel errors a Host wraps so callers can classify failures with errors.Is.
var (
	ErrUnhashable    = errors.New("hostobj: unhashable key")
	ErrDuplicateKey  = errors.New("hostobj: duplicate mapping key")
	ErrLimitExceeded = errors.New("hostobj: host limit exceeded")
)

// Host is the access layer over one host runtime execution context.
// A Host value is only valid while the caller holds that context; the
// transcoder threads it through every step and never stores it.
type Host interface {
	KindOf(obj Object) Kind
	TypeName(obj Object) string
	Repr(obj Object) string

	None() Object
	Bool(v bool) Object
	Int(v int64) Object
	Uint(v uint64) Object
	Float(v float64) Object
	Text(s string) (Object, error)
	Tuple(items []Object) (Object, error)
	// NewSequence starts a sequence. sizeHint < 0 means the length is unknown.
	NewSequence(sizeHint int) (SequenceBuilder, error)
	NewMapping(sizeHint int) (MappingBuilder, error)

	AsBool(obj Object) (bool, bool)
	AsInt64(obj Object) (int64, bool)
	AsUint64(obj Object) (uint64, bool)
	AsFloat(obj Object) (float64, bool)
	AsText(obj Object) (string, bool)

	// Len and Index apply to sequences and tuples.
	Len(obj Object) int
	Index(obj Object, i int) Object
	// Entries lists mapping items in host order, or record attributes.
	Entries(obj Object) ([]Entry, error)
}

// SequenceBuilder accumulates sequence elements. The object returned by
// Finish must not be modified afterwards.
type SequenceBuilder interface {
	Append(item Object) error
	Finish() Object
}

// MappingBuilder accumulates mapping entries in insertion order.
// Set fails with ErrDuplicateKey when the host already holds an equal key.
type MappingBuilder interface {
	Set(key, value Object) error
	Finish() Object
}
