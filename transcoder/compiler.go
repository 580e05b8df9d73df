package transcoder

import (
	"reflect"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/hostobj/errors"
)

// Compiler derives Shapes from Go types and caches them.
// It is safe for concurrent use.
type Compiler struct {
	cache sync.Map // reflect.Type -> *Shape
}

func NewCompiler() *Compiler {
	return &Compiler{}
}

// fieldOpts are tag options that change how a field's type compiles.
type fieldOpts struct {
	char  bool
	tuple bool
}

type shapeKey struct {
	goType reflect.Type
	opts   fieldOpts
}

// Compile returns the Shape for goType.
func (c *Compiler) Compile(goType reflect.Type) (*Shape, error) {
	if goType == nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindNilPointer).
			Detail("Go type cannot be nil").
			Build()
	}

	if cached, ok := c.cache.Load(goType); ok {
		return cached.(*Shape), nil
	}

	s, err := c.compile(goType, fieldOpts{}, nil, make(map[shapeKey]*Shape))
	if err != nil {
		return nil, err
	}

	actual, loaded := c.cache.LoadOrStore(goType, s)
	if !loaded {
		Logger().Debug("compiled shape",
			zap.Stringer("type", goType),
			zap.Stringer("kind", s.Kind))
	}
	return actual.(*Shape), nil
}

// compile fills a Shape for t. In-progress shapes are registered in seen
// before their children compile, so recursive types resolve to themselves.
func (c *Compiler) compile(t reflect.Type, opts fieldOpts, path []string, seen map[shapeKey]*Shape) (*Shape, error) {
	if opts == (fieldOpts{}) {
		if cached, ok := c.cache.Load(t); ok {
			return cached.(*Shape), nil
		}
	}
	key := shapeKey{goType: t, opts: opts}
	if s, ok := seen[key]; ok {
		return s, nil
	}

	s := &Shape{GoType: t}
	seen[key] = s

	if t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface {
		s.Marshal = t.Implements(marshalerType) || reflect.PointerTo(t).Implements(marshalerType)
		s.Unmarshal = reflect.PointerTo(t).Implements(unmarshalerType)
	}

	if err := c.compileNatural(s, opts, path, seen); err != nil {
		// A type that describes itself does not need a natural shape.
		if s.HasHooks() {
			*s = Shape{
				GoType:    t,
				Kind:      KindCustom,
				Marshal:   s.Marshal,
				Unmarshal: s.Unmarshal,
			}
			return s, nil
		}
		return nil, err
	}
	return s, nil
}

func (c *Compiler) compileNatural(s *Shape, opts fieldOpts, path []string, seen map[shapeKey]*Shape) error {
	t := s.GoType

	switch t.Kind() {
	case reflect.Bool:
		s.Kind = KindBool
	case reflect.Int8:
		s.Kind = KindS8
	case reflect.Int16:
		s.Kind = KindS16
	case reflect.Int32:
		if t == charType || opts.char {
			s.Kind = KindChar
		} else {
			s.Kind = KindS32
		}
	case reflect.Int64, reflect.Int:
		s.Kind = KindS64
	case reflect.Uint8:
		s.Kind = KindU8
	case reflect.Uint16:
		s.Kind = KindU16
	case reflect.Uint32:
		s.Kind = KindU32
	case reflect.Uint64, reflect.Uint, reflect.Uintptr:
		s.Kind = KindU64
	case reflect.Float32:
		s.Kind = KindF32
	case reflect.Float64:
		s.Kind = KindF64
	case reflect.String:
		s.Kind = KindString
	case reflect.Interface:
		s.Kind = KindDynamic
	case reflect.Pointer:
		s.Kind = KindOption
		elem, err := c.compile(t.Elem(), opts, path, seen)
		if err != nil {
			return err
		}
		s.Elem = elem
	case reflect.Slice:
		s.Kind = KindSequence
		elem, err := c.compile(t.Elem(), fieldOpts{char: opts.char}, appendPath(path, "[elem]"), seen)
		if err != nil {
			return err
		}
		s.Elem = elem
	case reflect.Array:
		s.Kind = KindTuple
		s.Arity = t.Len()
		elem, err := c.compile(t.Elem(), fieldOpts{char: opts.char}, appendPath(path, "[elem]"), seen)
		if err != nil {
			return err
		}
		s.Elem = elem
	case reflect.Map:
		s.Kind = KindMap
		key, err := c.compile(t.Key(), fieldOpts{}, appendPath(path, "{key}"), seen)
		if err != nil {
			return err
		}
		elem, err := c.compile(t.Elem(), fieldOpts{}, appendPath(path, "{value}"), seen)
		if err != nil {
			return err
		}
		s.Key, s.Elem = key, elem
	case reflect.Struct:
		return c.compileStruct(s, opts, path, seen)
	case reflect.Func:
		elemType, ok := iterElem(t)
		if !ok {
			return errors.Unsupported(errors.PhaseCompile, path, "func type "+t.String())
		}
		s.Kind = KindSequence
		s.Iter = true
		elem, err := c.compile(elemType, fieldOpts{}, appendPath(path, "[elem]"), seen)
		if err != nil {
			return err
		}
		s.Elem = elem
	default:
		return errors.Unsupported(errors.PhaseCompile, path, t.Kind().String()+" type "+t.String())
	}
	return nil
}

// iterElem reports whether t has the iter.Seq shape func(yield func(E) bool)
// and returns E.
func iterElem(t reflect.Type) (reflect.Type, bool) {
	if t.NumIn() != 1 || t.NumOut() != 0 || t.IsVariadic() {
		return nil, false
	}
	yield := t.In(0)
	if yield.Kind() != reflect.Func || yield.NumIn() != 1 || yield.NumOut() != 1 {
		return nil, false
	}
	if yield.Out(0).Kind() != reflect.Bool {
		return nil, false
	}
	return yield.In(0), true
}

func (c *Compiler) compileStruct(s *Shape, opts fieldOpts, path []string, seen map[shapeKey]*Shape) error {
	t := s.GoType
	if t.NumField() == 0 {
		s.Kind = KindUnit
		return nil
	}

	marker := structMarker(t)
	switch {
	case marker.enum:
		s.Kind = KindEnum
		return c.compileEnum(s, path, seen)
	case marker.tuple || opts.tuple:
		s.Kind = KindTuple
	default:
		s.Kind = KindStruct
		s.FieldIndex = make(map[string]int)
	}

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Name == "_" || !sf.IsExported() {
			continue
		}
		name, tag := parseTag(sf)
		if name == "-" {
			continue
		}

		fieldPath := appendPath(path, name)
		fs, err := c.compile(sf.Type, fieldOpts{char: tag.char, tuple: tag.tuple}, fieldPath, seen)
		if err != nil {
			return err
		}

		if s.Kind == KindStruct {
			if _, dup := s.FieldIndex[name]; dup {
				return errors.New(errors.PhaseCompile, errors.KindInvalidInput).
					Path(fieldPath...).
					Name(name).
					Detail("duplicate field name %q in %s", name, t).
					Build()
			}
			s.FieldIndex[name] = len(s.Fields)
		}
		s.Fields = append(s.Fields, ShapeField{
			Shape:     fs,
			Name:      name,
			Index:     i,
			OmitEmpty: tag.omitempty,
		})
	}

	if s.Kind == KindTuple {
		s.Arity = len(s.Fields)
	}
	return nil
}

func (c *Compiler) compileEnum(s *Shape, path []string, seen map[shapeKey]*Shape) error {
	t := s.GoType
	s.CaseIndex = make(map[string]int)

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Name == "_" || !sf.IsExported() {
			continue
		}
		name, tag := parseTag(sf)
		if name == "-" {
			continue
		}

		casePath := appendPath(path, name)
		if sf.Type.Kind() != reflect.Pointer {
			return errors.New(errors.PhaseCompile, errors.KindTypeMismatch).
				Path(casePath...).
				Expected("pointer").
				Found(sf.Type.String()).
				Detail("enum variant fields must be pointers").
				Build()
		}
		if _, dup := s.CaseIndex[name]; dup {
			return errors.New(errors.PhaseCompile, errors.KindInvalidInput).
				Path(casePath...).
				Name(name).
				Detail("duplicate variant name %q in %s", name, t).
				Build()
		}

		payload, err := c.compile(sf.Type.Elem(), fieldOpts{char: tag.char, tuple: tag.tuple}, casePath, seen)
		if err != nil {
			return err
		}

		s.CaseIndex[name] = len(s.Cases)
		s.Cases = append(s.Cases, ShapeCase{
			Payload: payload,
			Name:    name,
			Index:   i,
			Variant: variantOf(payload),
		})
	}

	if len(s.Cases) == 0 {
		return errors.New(errors.PhaseCompile, errors.KindInvalidInput).
			Path(path...).
			Detail("enum %s has no variants", t).
			Build()
	}
	return nil
}

func variantOf(payload *Shape) VariantKind {
	switch payload.Kind {
	case KindUnit:
		return VariantUnit
	case KindTuple:
		return VariantTuple
	case KindStruct:
		return VariantStruct
	default:
		return VariantNewtype
	}
}

type tagOpts struct {
	omitempty bool
	char      bool
	tuple     bool
	enum      bool
}

// parseTag reads the host:"name,opt,..." tag. The name defaults to the Go field name.
func parseTag(sf reflect.StructField) (string, tagOpts) {
	var opts tagOpts
	tag, ok := sf.Tag.Lookup("host")
	if !ok {
		return sf.Name, opts
	}
	if tag == "-" {
		return "-", opts
	}

	name, rest, _ := strings.Cut(tag, ",")
	for rest != "" {
		var opt string
		opt, rest, _ = strings.Cut(rest, ",")
		switch opt {
		case "omitempty":
			opts.omitempty = true
		case "char":
			opts.char = true
		case "tuple":
			opts.tuple = true
		case "enum":
			opts.enum = true
		}
	}
	if name == "" {
		name = sf.Name
	}
	return name, opts
}

// structMarker returns the options of the blank `_ struct{}` marker field.
func structMarker(t reflect.Type) tagOpts {
	var opts tagOpts
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Name != "_" {
			continue
		}
		_, o := parseTag(sf)
		opts.tuple = opts.tuple || o.tuple
		opts.enum = opts.enum || o.enum
	}
	return opts
}

// appendPath returns a new path; the input slice is never aliased.
func appendPath(path []string, elem string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = elem
	return out
}
