package starlarkhost

import (
	"errors"
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.uber.org/zap"

	"github.com/wippyai/hostobj"
)

// Default limits, matching the sizes a single host value may reasonably reach.
const (
	DefaultMaxLength     = 1 << 20 // elements per sequence, tuple or mapping
	DefaultMaxStringSize = 16 << 20
)

// Config sets the limits a Host enforces while building objects.
type Config struct {
	// MaxLength limits the element count of a sequence, tuple or mapping.
	// 0 means DefaultMaxLength, negative means unlimited.
	MaxLength int

	// MaxStringSize limits the byte length of a text object.
	// 0 means DefaultMaxStringSize, negative means unlimited.
	MaxStringSize int
}

// Host is a hostobj.Host over Starlark values, bound to one thread.
// Like the thread, it must not be used from several goroutines at once.
type Host struct {
	thread        *starlark.Thread
	maxLength     int
	maxStringSize int
}

var _ hostobj.Host = (*Host)(nil)

var errNotStarlark = errors.New("starlarkhost: object is not a Starlark value")

// New creates a Host for thread with default limits.
func New(thread *starlark.Thread) *Host {
	return NewWithConfig(thread, nil)
}

// NewWithConfig creates a Host for thread with custom limits
func NewWithConfig(thread *starlark.Thread, cfg *Config) *Host {
	if thread == nil {
		thread = &starlark.Thread{Name: "hostobj"}
	}
	h := &Host{
		thread:        thread,
		maxLength:     DefaultMaxLength,
		maxStringSize: DefaultMaxStringSize,
	}
	if cfg != nil {
		if cfg.MaxLength != 0 {
			h.maxLength = cfg.MaxLength
		}
		if cfg.MaxStringSize != 0 {
			h.maxStringSize = cfg.MaxStringSize
		}
	}
	return h
}

// Thread returns the execution context this Host is bound to.
func (h *Host) Thread() *starlark.Thread {
	return h.thread
}

func (h *Host) KindOf(obj hostobj.Object) hostobj.Kind {
	switch obj.(type) {
	case starlark.NoneType:
		return hostobj.KindNone
	case starlark.Bool:
		return hostobj.KindBool
	case starlark.Int:
		return hostobj.KindInt
	case starlark.Float:
		return hostobj.KindFloat
	case starlark.String:
		return hostobj.KindText
	case *starlark.List:
		return hostobj.KindSequence
	case starlark.Tuple:
		return hostobj.KindTuple
	case *starlark.Dict:
		return hostobj.KindMapping
	case *starlarkstruct.Struct:
		return hostobj.KindRecord
	default:
		return hostobj.KindOther
	}
}

func (h *Host) TypeName(obj hostobj.Object) string {
	if v, ok := obj.(starlark.Value); ok {
		return v.Type()
	}
	return fmt.Sprintf("%T", obj)
}

func (h *Host) Repr(obj hostobj.Object) string {
	if v, ok := obj.(starlark.Value); ok {
		return v.String()
	}
	return fmt.Sprint(obj)
}

func (h *Host) None() hostobj.Object           { return starlark.None }
func (h *Host) Bool(v bool) hostobj.Object     { return starlark.Bool(v) }
func (h *Host) Int(v int64) hostobj.Object     { return starlark.MakeInt64(v) }
func (h *Host) Uint(v uint64) hostobj.Object   { return starlark.MakeUint64(v) }
func (h *Host) Float(v float64) hostobj.Object { return starlark.Float(v) }

func (h *Host) Text(s string) (hostobj.Object, error) {
	if h.maxStringSize > 0 && len(s) > h.maxStringSize {
		return nil, h.limitError("string", len(s), h.maxStringSize)
	}
	return starlark.String(s), nil
}

func (h *Host) Tuple(items []hostobj.Object) (hostobj.Object, error) {
	if err := h.checkLength("tuple", len(items)); err != nil {
		return nil, err
	}
	t := make(starlark.Tuple, len(items))
	for i, it := range items {
		v, err := value(it)
		if err != nil {
			return nil, err
		}
		t[i] = v
	}
	return t, nil
}

func (h *Host) NewSequence(sizeHint int) (hostobj.SequenceBuilder, error) {
	if err := h.checkLength("list", sizeHint); err != nil {
		return nil, err
	}
	return &sequenceBuilder{
		h:    h,
		list: starlark.NewList(make([]starlark.Value, 0, max(sizeHint, 0))),
	}, nil
}

func (h *Host) NewMapping(sizeHint int) (hostobj.MappingBuilder, error) {
	if err := h.checkLength("dict", sizeHint); err != nil {
		return nil, err
	}
	return &mappingBuilder{
		h:    h,
		dict: starlark.NewDict(max(sizeHint, 0)),
	}, nil
}

func (h *Host) AsBool(obj hostobj.Object) (bool, bool) {
	b, ok := obj.(starlark.Bool)
	return bool(b), ok
}

func (h *Host) AsInt64(obj hostobj.Object) (int64, bool) {
	i, ok := obj.(starlark.Int)
	if !ok {
		return 0, false
	}
	return i.Int64()
}

func (h *Host) AsUint64(obj hostobj.Object) (uint64, bool) {
	i, ok := obj.(starlark.Int)
	if !ok {
		return 0, false
	}
	return i.Uint64()
}

func (h *Host) AsFloat(obj hostobj.Object) (float64, bool) {
	f, ok := obj.(starlark.Float)
	return float64(f), ok
}

func (h *Host) AsText(obj hostobj.Object) (string, bool) {
	s, ok := obj.(starlark.String)
	return string(s), ok
}

func (h *Host) Len(obj hostobj.Object) int {
	switch v := obj.(type) {
	case *starlark.List:
		return v.Len()
	case starlark.Tuple:
		return v.Len()
	case *starlark.Dict:
		return v.Len()
	}
	return 0
}

func (h *Host) Index(obj hostobj.Object, i int) hostobj.Object {
	switch v := obj.(type) {
	case *starlark.List:
		return v.Index(i)
	case starlark.Tuple:
		return v.Index(i)
	}
	return nil
}

// Entries lists dict items in insertion order, or struct fields in name order.
func (h *Host) Entries(obj hostobj.Object) ([]hostobj.Entry, error) {
	switch v := obj.(type) {
	case *starlark.Dict:
		items := v.Items()
		out := make([]hostobj.Entry, len(items))
		for i, kv := range items {
			out[i] = hostobj.Entry{Key: kv[0], Value: kv[1]}
		}
		return out, nil
	case *starlarkstruct.Struct:
		names := v.AttrNames()
		out := make([]hostobj.Entry, 0, len(names))
		for _, name := range names {
			attr, err := v.Attr(name)
			if err != nil {
				return nil, fmt.Errorf("reading struct field %s: %w", name, err)
			}
			out = append(out, hostobj.Entry{Key: starlark.String(name), Value: attr})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("starlarkhost: %s has no entries", h.TypeName(obj))
	}
}

func (h *Host) checkLength(what string, n int) error {
	if h.maxLength > 0 && n > h.maxLength {
		return h.limitError(what, n, h.maxLength)
	}
	return nil
}

func (h *Host) limitError(what string, n, limit int) error {
	Logger().Debug("host limit exceeded",
		zap.String("thread", h.thread.Name),
		zap.String("object", what),
		zap.Int("size", n),
		zap.Int("limit", limit))
	return fmt.Errorf("%w: %s of size %d exceeds %d", hostobj.ErrLimitExceeded, what, n, limit)
}

func value(obj hostobj.Object) (starlark.Value, error) {
	v, ok := obj.(starlark.Value)
	if !ok || v == nil {
		return nil, fmt.Errorf("%w: %T", errNotStarlark, obj)
	}
	return v, nil
}

type sequenceBuilder struct {
	h    *Host
	list *starlark.List
}

func (b *sequenceBuilder) Append(item hostobj.Object) error {
	v, err := value(item)
	if err != nil {
		return err
	}
	if err := b.h.checkLength("list", b.list.Len()+1); err != nil {
		return err
	}
	return b.list.Append(v)
}

// Finish freezes the list; it must not change after it is handed out.
func (b *sequenceBuilder) Finish() hostobj.Object {
	b.list.Freeze()
	return b.list
}

type mappingBuilder struct {
	h    *Host
	dict *starlark.Dict
}

func (b *mappingBuilder) Set(key, val hostobj.Object) error {
	k, err := value(key)
	if err != nil {
		return err
	}
	v, err := value(val)
	if err != nil {
		return err
	}
	if _, err := k.Hash(); err != nil {
		return fmt.Errorf("%w: %v", hostobj.ErrUnhashable, err)
	}
	// Distinct Go keys can collide here: 1 and 1.0 are the same dict key.
	if _, found, err := b.dict.Get(k); err != nil {
		return err
	} else if found {
		return fmt.Errorf("%w: %s", hostobj.ErrDuplicateKey, k)
	}
	if err := b.h.checkLength("dict", b.dict.Len()+1); err != nil {
		return err
	}
	return b.dict.SetKey(k, v)
}

func (b *mappingBuilder) Finish() hostobj.Object {
	b.dict.Freeze()
	return b.dict
}
