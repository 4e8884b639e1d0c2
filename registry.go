package dshow

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/reusee/e5"
)

type _CowMap[K comparable, V any] struct {
	mutex sync.Mutex
	value atomic.Pointer[map[K]V]
}

func newCowMap[K comparable, V any]() *_CowMap[K, V] {
	m := make(map[K]V)
	ret := new(_CowMap[K, V])
	ret.value.Store(&m)
	return ret
}

func (c *_CowMap[K, V]) Get(k K) (v V, ok bool) {
	ptr := c.value.Load()
	v, ok = (*ptr)[k]
	return
}

func (c *_CowMap[K, V]) Set(k K, v V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	ptr := c.value.Load()
	newMap := make(map[K]V, len(*ptr)+1)
	for k, v := range *ptr {
		newMap[k] = v
	}
	newMap[k] = v
	c.value.Store(&newMap)
}

type _Conversion func(reflect.Value) Value

// reflect.Type -> _Conversion
var conversions = newCowMap[reflect.Type, _Conversion]()

// Register sets the conversion used for every value of type T.
// Intended to be called once per type at init time.
func Register[T any](fn func(T) Value) {
	if fn == nil {
		_ = throw(we.With(
			e5.Info("nil conversion for %v", reflect.TypeFor[T]()),
		)(
			ErrBadArgument,
		))
	}
	conversions.Set(reflect.TypeFor[T](), func(v reflect.Value) Value {
		value, _ := v.Interface().(T)
		return fn(value)
	})
	// derive funcs built before this registration may have resolved T differently
	deriveFuncs.Clear()
}

// RegisterScalar registers a leaf conversion rendering T as a Scalar.
func RegisterScalar[T any](fn func(T) string) {
	if fn == nil {
		_ = throw(we.With(
			e5.Info("nil conversion for %v", reflect.TypeFor[T]()),
		)(
			ErrBadArgument,
		))
	}
	Register(func(v T) Value {
		return Scalar(fn(v))
	})
}
