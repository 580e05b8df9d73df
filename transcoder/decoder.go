package transcoder

import (
	"fmt"
	"reflect"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/wippyai/hostobj"
	"github.com/wippyai/hostobj/errors"
)

// Decoder converts host objects into Go values.
// It holds only immutable configuration and is safe for concurrent use.
type Decoder struct {
	compiler *Compiler
	opts     Options
}

func NewDecoder() *Decoder {
	return NewDecoderWithOptions(NewCompiler(), DefaultOptions())
}

func NewDecoderWithCompiler(c *Compiler) *Decoder {
	return NewDecoderWithOptions(c, DefaultOptions())
}

func NewDecoderWithOptions(c *Compiler, opts Options) *Decoder {
	if c == nil {
		c = NewCompiler()
	}
	return &Decoder{compiler: c, opts: opts}
}

// Decode reads obj into the value target points to. The value is built in a
// fresh allocation and stored into *target only when decoding succeeds.
// The caller must hold h's execution context for the whole call.
func (d *Decoder) Decode(h hostobj.Host, obj hostobj.Object, target any) (err error) {
	if h == nil {
		return errors.NilPointer(errors.PhaseDecode, nil, "hostobj.Host")
	}
	rv := reflect.ValueOf(target)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer {
		return errors.InvalidInput(errors.PhaseDecode,
			fmt.Sprintf("decode target must be a non-nil pointer, got %T", target))
	}
	if rv.IsNil() {
		return errors.NilPointer(errors.PhaseDecode, nil, rv.Type().String())
	}

	elemType := rv.Type().Elem()
	s, err := d.compiler.Compile(elemType)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			Logger().Warn("recovered panic during decode",
				zap.Stringer("type", elemType),
				zap.Any("panic", r))
			err = errors.Custom(errors.PhaseDecode, nil, fmt.Sprintf("host panic: %v", r), nil)
		}
	}()

	fresh := reflect.New(elemType).Elem()
	if err := d.decodeValue(h, s, obj, fresh, nil, 0); err != nil {
		return err
	}
	rv.Elem().Set(fresh)
	return nil
}

// DecodeAs decodes obj into a new value of type T.
func DecodeAs[T any](d *Decoder, h hostobj.Host, obj hostobj.Object) (T, error) {
	var out T
	err := d.Decode(h, obj, &out)
	return out, err
}

// decodeValue stores the decoding of obj into dst, which must be settable.
func (d *Decoder) decodeValue(h hostobj.Host, s *Shape, obj hostobj.Object, dst reflect.Value, path []string, depth int) error {
	if depth > d.opts.maxDepth() {
		return errors.DepthExceeded(errors.PhaseDecode, path, d.opts.maxDepth())
	}
	if s.Unmarshal {
		return d.unmarshal(h, obj, dst, path)
	}

	kind := h.KindOf(obj)

	switch s.Kind {
	case KindBool:
		b, ok := h.AsBool(obj)
		if kind != hostobj.KindBool || !ok {
			return mismatch(h, s, obj, path)
		}
		dst.SetBool(b)
	case KindS8, KindS16, KindS32, KindS64:
		if kind != hostobj.KindInt {
			return mismatch(h, s, obj, path)
		}
		n, ok := h.AsInt64(obj)
		if !ok || dst.OverflowInt(n) {
			return errors.OutOfRange(errors.PhaseDecode, path, h.Repr(obj), s.Kind.String())
		}
		dst.SetInt(n)
	case KindU8, KindU16, KindU32, KindU64:
		if kind != hostobj.KindInt {
			return mismatch(h, s, obj, path)
		}
		n, ok := h.AsUint64(obj)
		if !ok || dst.OverflowUint(n) {
			return errors.OutOfRange(errors.PhaseDecode, path, h.Repr(obj), s.Kind.String())
		}
		dst.SetUint(n)
	case KindF32, KindF64:
		f, ok := h.AsFloat(obj)
		if kind != hostobj.KindFloat || !ok {
			return mismatch(h, s, obj, path)
		}
		if dst.OverflowFloat(f) {
			return errors.OutOfRange(errors.PhaseDecode, path, h.Repr(obj), s.Kind.String())
		}
		dst.SetFloat(f)
	case KindChar:
		text, ok := h.AsText(obj)
		if kind != hostobj.KindText || !ok {
			return mismatch(h, s, obj, path)
		}
		r, size := utf8.DecodeRuneInString(text)
		if size == 0 || size != len(text) || (r == utf8.RuneError && size == 1) {
			return errors.InvalidChar(errors.PhaseDecode, path, text)
		}
		dst.SetInt(int64(r))
	case KindString:
		text, ok := h.AsText(obj)
		if kind != hostobj.KindText || !ok {
			return mismatch(h, s, obj, path)
		}
		dst.SetString(text)
	case KindOption:
		if kind == hostobj.KindNone {
			dst.SetZero()
			return nil
		}
		p := reflect.New(dst.Type().Elem())
		if err := d.decodeValue(h, s.Elem, obj, p.Elem(), path, depth+1); err != nil {
			return err
		}
		dst.Set(p)
	case KindUnit:
		if kind != hostobj.KindTuple {
			return mismatch(h, s, obj, path)
		}
		if n := h.Len(obj); n != 0 {
			return errors.ArityMismatch(errors.PhaseDecode, path, 0, n)
		}
		dst.SetZero()
	case KindSequence:
		if s.Iter {
			return errors.Unsupported(errors.PhaseDecode, path, "cannot decode into iterator "+s.GoType.String())
		}
		return d.decodeSequence(h, s, obj, kind, dst, path, depth)
	case KindTuple:
		return d.decodeTuple(h, s, obj, kind, dst, path, depth)
	case KindMap:
		return d.decodeMap(h, s, obj, kind, dst, path, depth)
	case KindStruct:
		return d.decodeStruct(h, s, obj, kind, dst, path, depth)
	case KindEnum:
		return d.decodeEnum(h, s, obj, kind, dst, path, depth)
	case KindDynamic:
		v, err := d.decodeDynamic(h, obj, path, depth)
		if err != nil {
			return err
		}
		if v == nil {
			dst.SetZero()
			return nil
		}
		rv := reflect.ValueOf(v)
		if !rv.Type().AssignableTo(dst.Type()) {
			return errors.TypeMismatch(errors.PhaseDecode, path, dst.Type().String(), rv.Type().String())
		}
		dst.Set(rv)
	default:
		return errors.Unsupported(errors.PhaseDecode, path, "cannot decode into "+s.GoType.String())
	}
	return nil
}

func (d *Decoder) unmarshal(h hostobj.Host, obj hostobj.Object, dst reflect.Value, path []string) error {
	var u Unmarshaler
	if dst.CanAddr() {
		u = dst.Addr().Interface().(Unmarshaler)
	} else {
		p := reflect.New(dst.Type())
		defer dst.Set(p.Elem())
		u = p.Interface().(Unmarshaler)
	}
	if err := u.UnmarshalHost(h, obj); err != nil {
		return hookError(errors.PhaseDecode, path, err)
	}
	return nil
}

func (d *Decoder) decodeSequence(h hostobj.Host, s *Shape, obj hostobj.Object, kind hostobj.Kind, dst reflect.Value, path []string, depth int) error {
	if kind != hostobj.KindSequence {
		return mismatch(h, s, obj, path)
	}

	n := h.Len(obj)
	out := reflect.MakeSlice(dst.Type(), n, n)
	for i := 0; i < n; i++ {
		if err := d.decodeValue(h, s.Elem, h.Index(obj, i), out.Index(i), appendPath(path, indexSegment(i)), depth+1); err != nil {
			return err
		}
	}
	dst.Set(out)
	return nil
}

func (d *Decoder) decodeTuple(h hostobj.Host, s *Shape, obj hostobj.Object, kind hostobj.Kind, dst reflect.Value, path []string, depth int) error {
	if kind != hostobj.KindTuple {
		return mismatch(h, s, obj, path)
	}
	if n := h.Len(obj); n != s.Arity {
		return errors.ArityMismatch(errors.PhaseDecode, path, s.Arity, n)
	}

	for i := 0; i < s.Arity; i++ {
		var (
			es *Shape
			ev reflect.Value
		)
		if s.IsArray() {
			es, ev = s.Elem, dst.Index(i)
		} else {
			es, ev = s.Fields[i].Shape, dst.Field(s.Fields[i].Index)
		}
		if err := d.decodeValue(h, es, h.Index(obj, i), ev, appendPath(path, indexSegment(i)), depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (d *Decoder) decodeMap(h hostobj.Host, s *Shape, obj hostobj.Object, kind hostobj.Kind, dst reflect.Value, path []string, depth int) error {
	if kind != hostobj.KindMapping {
		return mismatch(h, s, obj, path)
	}
	entries, err := h.Entries(obj)
	if err != nil {
		return hostError(errors.PhaseDecode, path, err)
	}

	t := dst.Type()
	out := reflect.MakeMapWithSize(t, len(entries))
	for _, entry := range entries {
		entryPath := appendPath(path, hostKeySegment(h, entry.Key))

		k := reflect.New(t.Key()).Elem()
		if err := d.decodeValue(h, s.Key, entry.Key, k, entryPath, depth+1); err != nil {
			return err
		}
		if !k.Comparable() {
			return errors.UnhashableKey(errors.PhaseDecode, entryPath, h.TypeName(entry.Key), nil)
		}

		v := reflect.New(t.Elem()).Elem()
		if err := d.decodeValue(h, s.Elem, entry.Value, v, entryPath, depth+1); err != nil {
			return err
		}
		out.SetMapIndex(k, v)
	}
	dst.Set(out)
	return nil
}

func (d *Decoder) decodeStruct(h hostobj.Host, s *Shape, obj hostobj.Object, kind hostobj.Kind, dst reflect.Value, path []string, depth int) error {
	if kind != hostobj.KindMapping && kind != hostobj.KindRecord {
		return mismatch(h, s, obj, path)
	}
	entries, err := h.Entries(obj)
	if err != nil {
		return hostError(errors.PhaseDecode, path, err)
	}

	found := make([]bool, len(s.Fields))
	for _, entry := range entries {
		name, ok := h.AsText(entry.Key)
		if !ok {
			name = h.Repr(entry.Key)
		}
		i, known := s.FieldIndex[name]
		if !ok || !known {
			if d.opts.DisallowUnknownFields {
				return errors.FieldUnknown(errors.PhaseDecode, path, name)
			}
			continue
		}

		f := &s.Fields[i]
		if err := d.decodeValue(h, f.Shape, entry.Value, dst.Field(f.Index), appendPath(path, f.Name), depth+1); err != nil {
			return err
		}
		found[i] = true
	}

	for i := range s.Fields {
		if !found[i] && !s.Fields[i].Optional() {
			return errors.FieldMissing(errors.PhaseDecode, path, s.Fields[i].Name)
		}
	}
	return nil
}

func (d *Decoder) decodeEnum(h hostobj.Host, s *Shape, obj hostobj.Object, kind hostobj.Kind, dst reflect.Value, path []string, depth int) error {
	switch kind {
	case hostobj.KindText:
		name, _ := h.AsText(obj)
		c, ok := s.Case(name)
		if !ok {
			return errors.UnknownVariant(errors.PhaseDecode, path, name)
		}
		if c.Variant != VariantUnit {
			return errors.New(errors.PhaseDecode, errors.KindUnknownVariant).
				Path(path...).
				Name(name).
				Detail("%q is not a unit variant", name).
				Build()
		}
		dst.Field(c.Index).Set(reflect.New(dst.Field(c.Index).Type().Elem()))
		return nil

	case hostobj.KindMapping:
		entries, err := h.Entries(obj)
		if err != nil {
			return hostError(errors.PhaseDecode, path, err)
		}
		if len(entries) != 1 {
			return errors.InvalidVariant(errors.PhaseDecode, path,
				fmt.Sprintf("expected a mapping with exactly one entry, found %d", len(entries)))
		}

		entry := entries[0]
		name, ok := h.AsText(entry.Key)
		if !ok {
			return errors.UnknownVariant(errors.PhaseDecode, path, h.Repr(entry.Key))
		}
		c, ok := s.Case(name)
		if !ok {
			return errors.UnknownVariant(errors.PhaseDecode, path, name)
		}

		casePath := appendPath(path, name)
		field := dst.Field(c.Index)
		p := reflect.New(field.Type().Elem())

		switch c.Variant {
		case VariantUnit:
			vk := h.KindOf(entry.Value)
			if vk != hostobj.KindNone && (vk != hostobj.KindTuple || h.Len(entry.Value) != 0) {
				return errors.TypeMismatch(errors.PhaseDecode, casePath, "none or empty tuple", foundName(h, entry.Value))
			}
		case VariantNewtype, VariantTuple, VariantStruct:
			if err := d.decodeValue(h, c.Payload, entry.Value, p.Elem(), casePath, depth+1); err != nil {
				return err
			}
		default:
			return errors.Unsupported(errors.PhaseDecode, casePath, "variant kind "+c.Variant.String())
		}
		field.Set(p)
		return nil

	default:
		return mismatch(h, s, obj, path)
	}
}

// decodeDynamic decodes obj into its natural Go value.
func (d *Decoder) decodeDynamic(h hostobj.Host, obj hostobj.Object, path []string, depth int) (any, error) {
	if depth > d.opts.maxDepth() {
		return nil, errors.DepthExceeded(errors.PhaseDecode, path, d.opts.maxDepth())
	}

	switch h.KindOf(obj) {
	case hostobj.KindNone:
		return nil, nil
	case hostobj.KindBool:
		b, _ := h.AsBool(obj)
		return b, nil
	case hostobj.KindInt:
		if n, ok := h.AsInt64(obj); ok {
			return n, nil
		}
		if u, ok := h.AsUint64(obj); ok {
			return u, nil
		}
		return nil, errors.OutOfRange(errors.PhaseDecode, path, h.Repr(obj), "int64")
	case hostobj.KindFloat:
		f, _ := h.AsFloat(obj)
		return f, nil
	case hostobj.KindText:
		s, _ := h.AsText(obj)
		return s, nil
	case hostobj.KindSequence, hostobj.KindTuple:
		n := h.Len(obj)
		out := make([]any, n)
		for i := 0; i < n; i++ {
			v, err := d.decodeDynamic(h, h.Index(obj, i), appendPath(path, indexSegment(i)), depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case hostobj.KindMapping, hostobj.KindRecord:
		entries, err := h.Entries(obj)
		if err != nil {
			return nil, hostError(errors.PhaseDecode, path, err)
		}
		out := make(map[string]any, len(entries))
		for _, entry := range entries {
			key, ok := h.AsText(entry.Key)
			if !ok {
				return nil, errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
					Path(path...).
					Expected("text").
					Found(foundName(h, entry.Key)).
					Detail("mapping keys must be text to decode into map[string]any").
					Build()
			}
			v, err := d.decodeDynamic(h, entry.Value, appendPath(path, "{"+key+"}"), depth+1)
			if err != nil {
				return nil, err
			}
			out[key] = v
		}
		return out, nil
	default:
		return nil, errors.TypeMismatch(errors.PhaseDecode, path, "data-model value", foundName(h, obj))
	}
}

func mismatch(h hostobj.Host, s *Shape, obj hostobj.Object, path []string) error {
	return errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
		Path(path...).
		Expected(s.Kind.HostKind()).
		Found(foundName(h, obj)).
		Value(h.Repr(obj)).
		Detail("decoding into %s", s.GoType).
		Build()
}

// foundName describes obj for diagnostics, falling back to the host type
// name for objects outside the data model.
func foundName(h hostobj.Host, obj hostobj.Object) string {
	k := h.KindOf(obj)
	if k == hostobj.KindOther {
		return h.TypeName(obj)
	}
	return k.String()
}

func hostKeySegment(h hostobj.Host, key hostobj.Object) string {
	if s, ok := h.AsText(key); ok {
		return "{" + s + "}"
	}
	return "{" + h.Repr(key) + "}"
}
