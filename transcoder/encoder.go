package transcoder

import (
	"cmp"
	stderrors "errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/wippyai/hostobj"
	"github.com/wippyai/hostobj/errors"
)

// Encoder converts Go values into host objects.
// It holds only immutable configuration and is safe for concurrent use.
type Encoder struct {
	compiler *Compiler
	opts     Options
}

func NewEncoder() *Encoder {
	return NewEncoderWithOptions(NewCompiler(), DefaultOptions())
}

func NewEncoderWithCompiler(c *Compiler) *Encoder {
	return NewEncoderWithOptions(c, DefaultOptions())
}

func NewEncoderWithOptions(c *Compiler, opts Options) *Encoder {
	if c == nil {
		c = NewCompiler()
	}
	return &Encoder{compiler: c, opts: opts}
}

// Encode converts value into a host object using h.
// The caller must hold h's execution context for the whole call.
// On error no object is returned.
func (e *Encoder) Encode(h hostobj.Host, value any) (obj hostobj.Object, err error) {
	if h == nil {
		return nil, errors.NilPointer(errors.PhaseEncode, nil, "hostobj.Host")
	}
	if value == nil {
		return h.None(), nil
	}

	rv := reflect.ValueOf(value)
	s, err := e.compiler.Compile(rv.Type())
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			Logger().Warn("recovered panic during encode",
				zap.Stringer("type", rv.Type()),
				zap.Any("panic", r))
			obj = nil
			err = errors.AllocationFailed(errors.PhaseEncode, nil, fmt.Errorf("host panic: %v", r))
		}
	}()

	return e.encodeValue(h, s, rv, nil, 0)
}

func (e *Encoder) encodeValue(h hostobj.Host, s *Shape, v reflect.Value, path []string, depth int) (hostobj.Object, error) {
	if depth > e.opts.maxDepth() {
		return nil, errors.DepthExceeded(errors.PhaseEncode, path, e.opts.maxDepth())
	}
	if s.Marshal {
		return e.marshal(h, v, path)
	}

	switch s.Kind {
	case KindBool:
		return h.Bool(v.Bool()), nil
	case KindS8, KindS16, KindS32, KindS64:
		return h.Int(v.Int()), nil
	case KindU8, KindU16, KindU32, KindU64:
		return h.Uint(v.Uint()), nil
	case KindF32, KindF64:
		return h.Float(v.Float()), nil
	case KindChar:
		r := rune(v.Int())
		if !utf8.ValidRune(r) {
			return nil, errors.New(errors.PhaseEncode, errors.KindInvalidChar).
				Path(path...).
				Value(int64(r)).
				Detail("invalid Unicode scalar value %#x", int64(r)).
				Build()
		}
		return e.text(h, string(r), path)
	case KindString:
		return e.text(h, v.String(), path)
	case KindOption:
		if v.IsNil() {
			return h.None(), nil
		}
		return e.encodeValue(h, s.Elem, v.Elem(), path, depth+1)
	case KindUnit:
		return e.tuple(h, nil, path)
	case KindSequence:
		if s.Iter {
			return e.encodeIter(h, s, v, path, depth)
		}
		return e.encodeSlice(h, s, v, path, depth)
	case KindTuple:
		return e.encodeTuple(h, s, v, path, depth)
	case KindMap:
		return e.encodeMap(h, s, v, path, depth)
	case KindStruct:
		return e.encodeStruct(h, s, v, path, depth)
	case KindEnum:
		return e.encodeEnum(h, s, v, path, depth)
	case KindDynamic:
		if v.IsNil() {
			return h.None(), nil
		}
		inner := v.Elem()
		is, err := e.compiler.Compile(inner.Type())
		if err != nil {
			return nil, err
		}
		return e.encodeValue(h, is, inner, path, depth+1)
	default:
		return nil, errors.Unsupported(errors.PhaseEncode, path, "cannot encode "+s.GoType.String())
	}
}

func (e *Encoder) marshal(h hostobj.Host, v reflect.Value, path []string) (hostobj.Object, error) {
	var m Marshaler
	if v.Type().Implements(marshalerType) {
		m = v.Interface().(Marshaler)
	} else if v.CanAddr() {
		m = v.Addr().Interface().(Marshaler)
	} else {
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		m = p.Interface().(Marshaler)
	}

	obj, err := m.MarshalHost(h)
	if err != nil {
		return nil, hookError(errors.PhaseEncode, path, err)
	}
	if obj == nil {
		return h.None(), nil
	}
	return obj, nil
}

func (e *Encoder) encodeSlice(h hostobj.Host, s *Shape, v reflect.Value, path []string, depth int) (hostobj.Object, error) {
	n := v.Len()
	b, err := h.NewSequence(n)
	if err != nil {
		return nil, hostError(errors.PhaseEncode, path, err)
	}

	for i := 0; i < n; i++ {
		elemPath := appendPath(path, indexSegment(i))
		item, err := e.encodeValue(h, s.Elem, v.Index(i), elemPath, depth+1)
		if err != nil {
			return nil, err
		}
		if err := b.Append(item); err != nil {
			return nil, hostError(errors.PhaseEncode, elemPath, err)
		}
	}
	return b.Finish(), nil
}

// encodeIter drains an iterator func into an open-ended host sequence.
func (e *Encoder) encodeIter(h hostobj.Host, s *Shape, v reflect.Value, path []string, depth int) (hostobj.Object, error) {
	b, err := h.NewSequence(-1)
	if err != nil {
		return nil, hostError(errors.PhaseEncode, path, err)
	}
	if v.IsNil() {
		return b.Finish(), nil
	}

	yieldType := s.GoType.In(0)
	stop := reflect.ValueOf(false).Convert(yieldType.Out(0))
	cont := reflect.ValueOf(true).Convert(yieldType.Out(0))

	var iterErr error
	i := 0
	yield := reflect.MakeFunc(yieldType, func(args []reflect.Value) []reflect.Value {
		if iterErr != nil {
			return []reflect.Value{stop}
		}
		elemPath := appendPath(path, indexSegment(i))
		item, err := e.encodeValue(h, s.Elem, args[0], elemPath, depth+1)
		if err == nil {
			if aerr := b.Append(item); aerr != nil {
				err = hostError(errors.PhaseEncode, elemPath, aerr)
			}
		}
		if err != nil {
			iterErr = err
			return []reflect.Value{stop}
		}
		i++
		return []reflect.Value{cont}
	})

	v.Call([]reflect.Value{yield})
	if iterErr != nil {
		return nil, iterErr
	}
	return b.Finish(), nil
}

func (e *Encoder) encodeTuple(h hostobj.Host, s *Shape, v reflect.Value, path []string, depth int) (hostobj.Object, error) {
	items := make([]hostobj.Object, s.Arity)
	for i := 0; i < s.Arity; i++ {
		var (
			es *Shape
			ev reflect.Value
		)
		if s.IsArray() {
			es, ev = s.Elem, v.Index(i)
		} else {
			es, ev = s.Fields[i].Shape, v.Field(s.Fields[i].Index)
		}
		item, err := e.encodeValue(h, es, ev, appendPath(path, indexSegment(i)), depth+1)
		if err != nil {
			return nil, err
		}
		items[i] = item
	}
	return e.tuple(h, items, path)
}

func (e *Encoder) encodeStruct(h hostobj.Host, s *Shape, v reflect.Value, path []string, depth int) (hostobj.Object, error) {
	b, err := h.NewMapping(len(s.Fields))
	if err != nil {
		return nil, hostError(errors.PhaseEncode, path, err)
	}

	for i := range s.Fields {
		f := &s.Fields[i]
		fv := v.Field(f.Index)
		if f.OmitEmpty && f.Optional() && fv.IsNil() {
			continue
		}

		fieldPath := appendPath(path, f.Name)
		key, err := e.text(h, f.Name, fieldPath)
		if err != nil {
			return nil, err
		}
		val, err := e.encodeValue(h, f.Shape, fv, fieldPath, depth+1)
		if err != nil {
			return nil, err
		}
		if err := b.Set(key, val); err != nil {
			return nil, hostError(errors.PhaseEncode, fieldPath, err)
		}
	}
	return b.Finish(), nil
}

// encodeMap emits entries in sorted key order so output is deterministic.
func (e *Encoder) encodeMap(h hostobj.Host, s *Shape, v reflect.Value, path []string, depth int) (hostobj.Object, error) {
	keys := getKeyBuf()
	defer putKeyBuf(keys)

	iter := v.MapRange()
	for iter.Next() {
		*keys = append(*keys, iter.Key())
	}
	slices.SortFunc(*keys, compareKeys)

	b, err := h.NewMapping(len(*keys))
	if err != nil {
		return nil, hostError(errors.PhaseEncode, path, err)
	}

	for _, k := range *keys {
		entryPath := appendPath(path, keySegment(k))
		ko, err := e.encodeValue(h, s.Key, k, entryPath, depth+1)
		if err != nil {
			return nil, err
		}
		vo, err := e.encodeValue(h, s.Elem, v.MapIndex(k), entryPath, depth+1)
		if err != nil {
			return nil, err
		}
		if err := b.Set(ko, vo); err != nil {
			if stderrors.Is(err, hostobj.ErrUnhashable) {
				return nil, errors.UnhashableKey(errors.PhaseEncode, entryPath, h.TypeName(ko), err)
			}
			if stderrors.Is(err, hostobj.ErrDuplicateKey) {
				return nil, errors.DuplicateKey(errors.PhaseEncode, entryPath, h.Repr(ko), err)
			}
			return nil, hostError(errors.PhaseEncode, entryPath, err)
		}
	}
	return b.Finish(), nil
}

func (e *Encoder) encodeEnum(h hostobj.Host, s *Shape, v reflect.Value, path []string, depth int) (hostobj.Object, error) {
	var (
		sel     *ShapeCase
		payload reflect.Value
	)
	for i := range s.Cases {
		c := &s.Cases[i]
		f := v.Field(c.Index)
		if f.IsNil() {
			continue
		}
		if sel != nil {
			return nil, errors.InvalidVariant(errors.PhaseEncode, path,
				fmt.Sprintf("variants %q and %q are both set", sel.Name, c.Name))
		}
		sel, payload = c, f.Elem()
	}
	if sel == nil {
		return nil, errors.InvalidVariant(errors.PhaseEncode, path, "no variant is set")
	}

	casePath := appendPath(path, sel.Name)
	name, err := e.text(h, sel.Name, casePath)
	if err != nil {
		return nil, err
	}

	switch sel.Variant {
	case VariantUnit:
		return name, nil
	case VariantNewtype, VariantTuple, VariantStruct:
		val, err := e.encodeValue(h, sel.Payload, payload, casePath, depth+1)
		if err != nil {
			return nil, err
		}
		b, err := h.NewMapping(1)
		if err != nil {
			return nil, hostError(errors.PhaseEncode, casePath, err)
		}
		if err := b.Set(name, val); err != nil {
			return nil, hostError(errors.PhaseEncode, casePath, err)
		}
		return b.Finish(), nil
	default:
		return nil, errors.Unsupported(errors.PhaseEncode, casePath, "variant kind "+sel.Variant.String())
	}
}

func (e *Encoder) text(h hostobj.Host, s string, path []string) (hostobj.Object, error) {
	obj, err := h.Text(s)
	if err != nil {
		return nil, hostError(errors.PhaseEncode, path, err)
	}
	return obj, nil
}

func (e *Encoder) tuple(h hostobj.Host, items []hostobj.Object, path []string) (hostobj.Object, error) {
	obj, err := h.Tuple(items)
	if err != nil {
		return nil, hostError(errors.PhaseEncode, path, err)
	}
	return obj, nil
}

// hostError classifies an error returned by the access layer.
func hostError(phase errors.Phase, path []string, err error) error {
	if stderrors.Is(err, hostobj.ErrUnhashable) {
		return errors.UnhashableKey(phase, path, "", err)
	}
	if stderrors.Is(err, hostobj.ErrDuplicateKey) {
		return errors.DuplicateKey(phase, path, "", err)
	}
	if phase == errors.PhaseDecode {
		return errors.Custom(phase, path, "reading host object failed", err)
	}
	return errors.AllocationFailed(phase, path, err)
}

// hookError wraps an error returned by a Marshaler or Unmarshaler.
// Structured errors pass through unchanged.
func hookError(phase errors.Phase, path []string, err error) error {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return err
	}
	return errors.Custom(phase, path, err.Error(), err)
}

func indexSegment(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

func keySegment(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return "{" + k.String() + "}"
	}
	return "{" + fmt.Sprint(k.Interface()) + "}"
}

// compareKeys orders map keys naturally for scalar kinds and by their
// formatted value otherwise.
func compareKeys(a, b reflect.Value) int {
	if a.Kind() == b.Kind() {
		switch a.Kind() {
		case reflect.String:
			return cmp.Compare(a.String(), b.String())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return cmp.Compare(a.Int(), b.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return cmp.Compare(a.Uint(), b.Uint())
		case reflect.Float32, reflect.Float64:
			return cmp.Compare(a.Float(), b.Float())
		case reflect.Bool:
			return cmp.Compare(boolRank(a.Bool()), boolRank(b.Bool()))
		case reflect.Interface:
			if !a.IsNil() && !b.IsNil() && a.Elem().Kind() == b.Elem().Kind() {
				return compareKeys(a.Elem(), b.Elem())
			}
		}
	}
	return cmp.Compare(fmt.Sprintf("%T:%v", a.Interface(), a.Interface()),
		fmt.Sprintf("%T:%v", b.Interface(), b.Interface()))
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
