package redisstore

import "reflect"

// IsCacheableValue reports whether v may be written to the store.
// Rejected: untyped nil and nil pointers, maps, slices, interfaces, funcs and chans.
func IsCacheableValue(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	}
	return true
}
