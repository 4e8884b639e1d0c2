package dshow

import (
	"cmp"
	"reflect"
	"slices"
	"strconv"
	"sync"
	"unsafe"

	"github.com/dolthub/swiss"
)

// Valuer is implemented by types providing their own Value view.
type Valuer interface {
	DebugValue() Value
}

// Positional marks a struct as tuple-like when embedded:
//
//	type Color struct {
//		dshow.Positional
//		R, G, B uint8
//	}
//
// renders as Color(0, 0, 0).
type Positional struct{}

var (
	valuerType     = reflect.TypeFor[Valuer]()
	positionalType = reflect.TypeFor[Positional]()
)

const tagName = "dshow"

// Of derives the Value view of v.
// Funcs, chans and unsafe pointers without a registered conversion render as their type;
// use Check or MustCheck to reject such types at init time.
func Of(v any) Value {
	if v == nil {
		return Scalar("nil")
	}
	if value, ok := v.(Value); ok {
		return value
	}
	rv := reflect.ValueOf(v)
	// addressable copy, so unexported members can be exposed to conversions
	addressable := reflect.New(rv.Type()).Elem()
	addressable.Set(rv)
	d := &_Deriver{
		visiting: swiss.NewMap[_VisitKey, struct{}](8),
	}
	return d.derive(addressable)
}

type _Deriver struct {
	visiting *swiss.Map[_VisitKey, struct{}]
	path     *Path
	depth    int
}

// bounds nesting of deep but acyclic values
const maxDeriveDepth = 1024

// identifies a pointer, map or slice being derived
type _VisitKey struct {
	Pointer uintptr
	Len     int
	Type    reflect.Type
}

// enter marks v as in progress. It returns false if v is already being derived.
func (d *_Deriver) enter(key _VisitKey) bool {
	if _, ok := d.visiting.Get(key); ok {
		return false
	}
	d.visiting.Put(key, struct{}{})
	return true
}

func cycle(t reflect.Type) Value {
	return Scalar("<cycle " + t.String() + ">")
}

type _DeriveFunc = func(d *_Deriver, v reflect.Value) Value

// reflect.Type -> _DeriveFunc
var deriveFuncs sync.Map

func (d *_Deriver) derive(v reflect.Value) Value {
	if !v.IsValid() {
		return Scalar("nil")
	}
	t := v.Type()
	if fn, ok := deriveFuncs.Load(t); ok {
		return fn.(_DeriveFunc)(d, v)
	}
	fn, _ := deriveFuncs.LoadOrStore(t, makeDeriveFunc(t))
	return fn.(_DeriveFunc)(d, v)
}

func (d *_Deriver) deriveAt(step string, v reflect.Value) Value {
	if d.depth >= maxDeriveDepth {
		return Scalar("..")
	}
	saved := d.path
	d.path = d.path.append(step)
	d.depth++
	ret := d.derive(v)
	d.depth--
	d.path = saved
	return ret
}

// expose returns an interfaceable view of v if one can be made.
func expose(v reflect.Value) (reflect.Value, bool) {
	if v.CanInterface() {
		return v, true
	}
	if v.CanAddr() {
		return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem(), true
	}
	return v, false
}

func typeName(t reflect.Type) string {
	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}

func makeDeriveFunc(t reflect.Type) _DeriveFunc {

	if conv, ok := conversions.Get(t); ok {
		structural := makeKindDeriveFunc(t)
		return func(d *_Deriver, v reflect.Value) Value {
			if t.Kind() == reflect.Interface && v.IsNil() {
				return Scalar("nil")
			}
			exposed, ok := expose(v)
			if !ok {
				return structural(d, v)
			}
			return conv(exposed)
		}
	}

	if t.Kind() != reflect.Interface {
		if t.Implements(valuerType) {
			structural := makeKindDeriveFunc(t)
			return func(d *_Deriver, v reflect.Value) Value {
				if t.Kind() == reflect.Pointer && v.IsNil() {
					return Scalar("nil")
				}
				exposed, ok := expose(v)
				if !ok {
					return structural(d, v)
				}
				return exposed.Interface().(Valuer).DebugValue()
			}
		}
		if reflect.PointerTo(t).Implements(valuerType) {
			structural := makeKindDeriveFunc(t)
			return func(d *_Deriver, v reflect.Value) Value {
				if !v.CanAddr() {
					return structural(d, v)
				}
				exposed, ok := expose(v)
				if !ok {
					return structural(d, v)
				}
				return exposed.Addr().Interface().(Valuer).DebugValue()
			}
		}
	}

	return makeKindDeriveFunc(t)
}

func makeKindDeriveFunc(t reflect.Type) _DeriveFunc {
	switch t.Kind() {

	case reflect.Bool:
		return func(_ *_Deriver, v reflect.Value) Value {
			return Scalar(strconv.FormatBool(v.Bool()))
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(_ *_Deriver, v reflect.Value) Value {
			return Scalar(strconv.FormatInt(v.Int(), 10))
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return func(_ *_Deriver, v reflect.Value) Value {
			return Scalar(strconv.FormatUint(v.Uint(), 10))
		}

	case reflect.Float32, reflect.Float64:
		bitSize := t.Bits()
		return func(_ *_Deriver, v reflect.Value) Value {
			return Scalar(strconv.FormatFloat(v.Float(), 'g', -1, bitSize))
		}

	case reflect.Complex64, reflect.Complex128:
		bitSize := t.Bits()
		return func(_ *_Deriver, v reflect.Value) Value {
			return Scalar(strconv.FormatComplex(v.Complex(), 'g', -1, bitSize))
		}

	case reflect.String:
		return func(_ *_Deriver, v reflect.Value) Value {
			return Scalar(strconv.Quote(v.String()))
		}

	case reflect.Struct:
		return makeStructDeriveFunc(t)

	case reflect.Slice:
		return func(d *_Deriver, v reflect.Value) Value {
			if v.IsNil() {
				return Scalar("nil")
			}
			if v.Len() == 0 {
				return List{}
			}
			key := _VisitKey{
				Pointer: v.Pointer(),
				Len:     v.Len(),
				Type:    t,
			}
			if !d.enter(key) {
				return cycle(t)
			}
			defer d.visiting.Delete(key)
			return d.deriveList(v)
		}

	case reflect.Array:
		return func(d *_Deriver, v reflect.Value) Value {
			return d.deriveList(v)
		}

	case reflect.Map:
		return func(d *_Deriver, v reflect.Value) Value {
			if v.IsNil() {
				return Scalar("nil")
			}
			key := _VisitKey{
				Pointer: v.Pointer(),
				Type:    t,
			}
			if !d.enter(key) {
				return cycle(t)
			}
			defer d.visiting.Delete(key)
			return d.deriveMap(v)
		}

	case reflect.Pointer:
		return func(d *_Deriver, v reflect.Value) Value {
			if v.IsNil() {
				return Scalar("nil")
			}
			key := _VisitKey{
				Pointer: v.Pointer(),
				Type:    t,
			}
			if !d.enter(key) {
				return cycle(t)
			}
			defer d.visiting.Delete(key)
			return Ref{
				Target: d.deriveAt("*", v.Elem()),
			}
		}

	case reflect.Interface:
		return func(d *_Deriver, v reflect.Value) Value {
			if v.IsNil() {
				return Scalar("nil")
			}
			return d.derive(v.Elem())
		}

	}

	// func, chan, unsafe pointer
	opaque := Scalar(t.String())
	return func(_ *_Deriver, v reflect.Value) Value {
		if v.IsNil() {
			return Scalar("nil")
		}
		return opaque
	}
}

type _FieldInfo struct {
	Index int
	Name  string
}

func structFields(t reflect.Type) (infos []_FieldInfo, positional bool) {
	for i := range t.NumField() {
		field := t.Field(i)
		if field.Anonymous && field.Type == positionalType {
			positional = true
			continue
		}
		name := field.Name
		if directive, ok := field.Tag.Lookup(tagName); ok {
			if directive == "-" {
				continue
			}
			if directive != "" {
				name = directive
			}
		}
		infos = append(infos, _FieldInfo{
			Index: i,
			Name:  name,
		})
	}
	return
}

func makeStructDeriveFunc(t reflect.Type) _DeriveFunc {
	name := typeName(t)
	infos, positional := structFields(t)

	if len(infos) == 0 {
		return func(_ *_Deriver, _ reflect.Value) Value {
			return Composite{
				TypeName: name,
			}
		}
	}

	return func(d *_Deriver, v reflect.Value) Value {
		fields := make([]Field, 0, len(infos))
		for _, info := range infos {
			field := Field{
				Value: d.deriveAt("."+info.Name, v.Field(info.Index)),
			}
			if !positional {
				field.Name = info.Name
			}
			fields = append(fields, field)
		}
		return Composite{
			TypeName: name,
			Fields:   fields,
		}
	}
}

func (d *_Deriver) deriveList(v reflect.Value) Value {
	n := v.Len()
	items := make([]Value, 0, n)
	for i := range n {
		items = append(items, d.deriveAt("["+strconv.Itoa(i)+"]", v.Index(i)))
	}
	return List{
		Items: items,
	}
}

func (d *_Deriver) deriveMap(v reflect.Value) Value {
	type keyed struct {
		entry    Entry
		text     string
		typeName string
		value    string
	}
	entries := make([]keyed, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		k := iter.Key()
		key := d.deriveAt("[key]", k)
		text := Render(key, false)
		value := d.deriveAt("["+text+"]", iter.Value())
		if k.Kind() == reflect.Interface && !k.IsNil() {
			k = k.Elem()
		}
		entries = append(entries, keyed{
			entry: Entry{
				Key:   key,
				Value: value,
			},
			text:     text,
			typeName: k.Type().String(),
			value:    Render(value, false),
		})
	}
	// keys rendering alike, such as 1 and int64(1) in a map[any]T, are ordered by type then value
	slices.SortStableFunc(entries, func(a, b keyed) int {
		return cmp.Or(
			cmp.Compare(a.text, b.text),
			cmp.Compare(a.typeName, b.typeName),
			cmp.Compare(a.value, b.value),
		)
	})
	ret := Map{
		Entries: make([]Entry, 0, len(entries)),
	}
	for _, e := range entries {
		ret.Entries = append(ret.Entries, e.entry)
	}
	return ret
}
