package dshow

import (
	"reflect"

	"github.com/reusee/e5"
)

// Check reports whether every value of type t has a Value view.
// Interface members are checked when rendered, since their dynamic types are unknown here.
func Check(t reflect.Type) error {
	if t == nil {
		return we.With(
			e5.Info("nil type"),
		)(
			ErrBadArgument,
		)
	}
	return check(t, nil, make(map[reflect.Type]bool))
}

// MustCheck panics if T has no complete Value view.
// Call it at init time for types that will be traced:
//
//	var _ = dshow.MustCheck[Config]()
func MustCheck[T any]() struct{} {
	if err := Check(reflect.TypeFor[T]()); err != nil {
		_ = throw(err)
	}
	return struct{}{}
}

func check(t reflect.Type, path *Path, visited map[reflect.Type]bool) error {
	if visited[t] {
		return nil
	}
	visited[t] = true

	if _, ok := conversions.Get(t); ok {
		return nil
	}
	if t.Kind() != reflect.Interface &&
		(t.Implements(valuerType) || reflect.PointerTo(t).Implements(valuerType)) {
		return nil
	}

	switch t.Kind() {

	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return errNoConversion(t, path)

	case reflect.Struct:
		infos, _ := structFields(t)
		for _, info := range infos {
			if err := check(t.Field(info.Index).Type, path.append("."+info.Name), visited); err != nil {
				return err
			}
		}

	case reflect.Slice, reflect.Array:
		return check(t.Elem(), path.append("[]"), visited)

	case reflect.Pointer:
		return check(t.Elem(), path.append("*"), visited)

	case reflect.Map:
		if err := check(t.Key(), path.append("[key]"), visited); err != nil {
			return err
		}
		return check(t.Elem(), path.append("[value]"), visited)

	}

	return nil
}
