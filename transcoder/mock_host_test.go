package transcoder

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/wippyai/hostobj"
)

// mockHost implements hostobj.Host over plain Go values for testing.
//
//	none     mockNone{}
//	bool     bool
//	int      int64, or uint64 above MaxInt64
//	float    float64
//	text     string
//	sequence *mockList
//	tuple    mockTuple
//	mapping  *mockDict
//	record   *mockRecord
type mockHost struct {
	maxLen      int  // 0 means unlimited
	panicOnText bool // simulate a native fault inside the host
}

type mockNone struct{}

type mockList struct {
	items  []hostobj.Object
	frozen bool
}

type mockTuple []hostobj.Object

type mockDict struct {
	keys   []hostobj.Object
	vals   []hostobj.Object
	frozen bool
}

type mockRecord struct {
	names []string
	vals  []hostobj.Object
}

type mockOther struct{}

var _ hostobj.Host = (*mockHost)(nil)

func newMockHost() *mockHost {
	return &mockHost{}
}

func (h *mockHost) KindOf(obj hostobj.Object) hostobj.Kind {
	switch obj.(type) {
	case mockNone:
		return hostobj.KindNone
	case bool:
		return hostobj.KindBool
	case int64, uint64:
		return hostobj.KindInt
	case float64:
		return hostobj.KindFloat
	case string:
		return hostobj.KindText
	case *mockList:
		return hostobj.KindSequence
	case mockTuple:
		return hostobj.KindTuple
	case *mockDict:
		return hostobj.KindMapping
	case *mockRecord:
		return hostobj.KindRecord
	default:
		return hostobj.KindOther
	}
}

func (h *mockHost) TypeName(obj hostobj.Object) string {
	switch obj.(type) {
	case mockNone:
		return "NoneType"
	case bool:
		return "bool"
	case int64, uint64:
		return "int"
	case float64:
		return "float"
	case string:
		return "string"
	case *mockList:
		return "list"
	case mockTuple:
		return "tuple"
	case *mockDict:
		return "dict"
	case *mockRecord:
		return "struct"
	default:
		return fmt.Sprintf("%T", obj)
	}
}

func (h *mockHost) Repr(obj hostobj.Object) string {
	switch v := obj.(type) {
	case mockNone:
		return "None"
	case string:
		return fmt.Sprintf("%q", v)
	case *mockList:
		return "[" + h.reprItems(v.items) + "]"
	case mockTuple:
		return "(" + h.reprItems(v) + ")"
	case *mockDict:
		parts := make([]string, len(v.keys))
		for i := range v.keys {
			parts[i] = h.Repr(v.keys[i]) + ": " + h.Repr(v.vals[i])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprint(v)
	}
}

func (h *mockHost) reprItems(items []hostobj.Object) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = h.Repr(it)
	}
	return strings.Join(parts, ", ")
}

func (h *mockHost) None() hostobj.Object           { return mockNone{} }
func (h *mockHost) Bool(v bool) hostobj.Object     { return v }
func (h *mockHost) Int(v int64) hostobj.Object     { return v }
func (h *mockHost) Float(v float64) hostobj.Object { return v }

func (h *mockHost) Uint(v uint64) hostobj.Object {
	if v <= math.MaxInt64 {
		return int64(v)
	}
	return v
}

func (h *mockHost) Text(s string) (hostobj.Object, error) {
	if h.panicOnText {
		panic("mock host: text allocation fault")
	}
	if h.maxLen > 0 && len(s) > h.maxLen {
		return nil, fmt.Errorf("%w: text of %d bytes", hostobj.ErrLimitExceeded, len(s))
	}
	return s, nil
}

func (h *mockHost) Tuple(items []hostobj.Object) (hostobj.Object, error) {
	if h.maxLen > 0 && len(items) > h.maxLen {
		return nil, fmt.Errorf("%w: tuple of %d items", hostobj.ErrLimitExceeded, len(items))
	}
	return append(mockTuple{}, items...), nil
}

func (h *mockHost) NewSequence(sizeHint int) (hostobj.SequenceBuilder, error) {
	if h.maxLen > 0 && sizeHint > h.maxLen {
		return nil, fmt.Errorf("%w: sequence of %d items", hostobj.ErrLimitExceeded, sizeHint)
	}
	l := &mockList{}
	if sizeHint > 0 {
		l.items = make([]hostobj.Object, 0, sizeHint)
	}
	return &mockSeqBuilder{h: h, list: l}, nil
}

func (h *mockHost) NewMapping(sizeHint int) (hostobj.MappingBuilder, error) {
	return &mockMapBuilder{h: h, dict: &mockDict{}}, nil
}

func (h *mockHost) AsBool(obj hostobj.Object) (bool, bool) {
	b, ok := obj.(bool)
	return b, ok
}

func (h *mockHost) AsInt64(obj hostobj.Object) (int64, bool) {
	n, ok := obj.(int64)
	return n, ok
}

func (h *mockHost) AsUint64(obj hostobj.Object) (uint64, bool) {
	switch v := obj.(type) {
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case uint64:
		return v, true
	}
	return 0, false
}

func (h *mockHost) AsFloat(obj hostobj.Object) (float64, bool) {
	f, ok := obj.(float64)
	return f, ok
}

func (h *mockHost) AsText(obj hostobj.Object) (string, bool) {
	s, ok := obj.(string)
	return s, ok
}

func (h *mockHost) Len(obj hostobj.Object) int {
	switch v := obj.(type) {
	case *mockList:
		return len(v.items)
	case mockTuple:
		return len(v)
	case *mockDict:
		return len(v.keys)
	}
	return 0
}

func (h *mockHost) Index(obj hostobj.Object, i int) hostobj.Object {
	switch v := obj.(type) {
	case *mockList:
		return v.items[i]
	case mockTuple:
		return v[i]
	}
	return nil
}

func (h *mockHost) Entries(obj hostobj.Object) ([]hostobj.Entry, error) {
	switch v := obj.(type) {
	case *mockDict:
		out := make([]hostobj.Entry, len(v.keys))
		for i := range v.keys {
			out[i] = hostobj.Entry{Key: v.keys[i], Value: v.vals[i]}
		}
		return out, nil
	case *mockRecord:
		out := make([]hostobj.Entry, len(v.names))
		for i := range v.names {
			out[i] = hostobj.Entry{Key: v.names[i], Value: v.vals[i]}
		}
		return out, nil
	}
	return nil, errors.New("mock host: not a mapping")
}

func (h *mockHost) hashable(obj hostobj.Object) bool {
	switch v := obj.(type) {
	case *mockList, *mockDict, *mockRecord:
		return false
	case mockTuple:
		for _, it := range v {
			if !h.hashable(it) {
				return false
			}
		}
	}
	return true
}

type mockSeqBuilder struct {
	h    *mockHost
	list *mockList
}

func (b *mockSeqBuilder) Append(item hostobj.Object) error {
	if b.list.frozen {
		return errors.New("mock host: append to frozen list")
	}
	if b.h.maxLen > 0 && len(b.list.items) >= b.h.maxLen {
		return fmt.Errorf("%w: sequence exceeds %d items", hostobj.ErrLimitExceeded, b.h.maxLen)
	}
	b.list.items = append(b.list.items, item)
	return nil
}

func (b *mockSeqBuilder) Finish() hostobj.Object {
	b.list.frozen = true
	return b.list
}

type mockMapBuilder struct {
	h    *mockHost
	dict *mockDict
}

func (b *mockMapBuilder) Set(key, value hostobj.Object) error {
	if !b.h.hashable(key) {
		return fmt.Errorf("%w: %s", hostobj.ErrUnhashable, b.h.TypeName(key))
	}
	for i, k := range b.dict.keys {
		if b.h.Repr(k) == b.h.Repr(key) {
			return fmt.Errorf("%w: %s (entry %d)", hostobj.ErrDuplicateKey, b.h.Repr(key), i)
		}
	}
	b.dict.keys = append(b.dict.keys, key)
	b.dict.vals = append(b.dict.vals, value)
	return nil
}

func (b *mockMapBuilder) Finish() hostobj.Object {
	b.dict.frozen = true
	return b.dict
}

// dict builds a mock mapping from alternating keys and values.
func dict(kv ...hostobj.Object) *mockDict {
	d := &mockDict{}
	for i := 0; i+1 < len(kv); i += 2 {
		d.keys = append(d.keys, kv[i])
		d.vals = append(d.vals, kv[i+1])
	}
	return d
}

func list(items ...hostobj.Object) *mockList {
	return &mockList{items: items}
}

func tuple(items ...hostobj.Object) mockTuple {
	return mockTuple(items)
}
