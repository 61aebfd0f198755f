// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import "reflect"

// SameDeps reports whether two dependency lists are shallowly identical.
//
// Both nil is the same; exactly one nil is not. Otherwise the lists must
// have equal length and every pair of elements must be identical: == for
// scalars, pointer identity for slices, maps, funcs, channels and pointers,
// and the same rule field by field for structs and arrays. Pointers are
// never followed.
func SameDeps(prev, next []any) bool {
	if prev == nil && next == nil {
		return true
	}
	if prev == nil || next == nil {
		return false
	}
	if len(prev) != len(next) {
		return false
	}
	for i := range prev {
		if !identical(prev[i], next[i]) {
			return false
		}
	}
	return true
}

// identical is reference equality over dynamic values without panicking
// on uncomparable types.
func identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return identicalValue(reflect.ValueOf(a), reflect.ValueOf(b))
}

// identicalValue applies the identity rule element-wise through structs,
// arrays and interfaces, so a struct holding a slice is identical to
// another holding the same slice.
func identicalValue(a, b reflect.Value) bool {
	if a.Kind() == reflect.Interface {
		a = a.Elem()
	}
	if b.Kind() == reflect.Interface {
		b = b.Elem()
	}
	if !a.IsValid() || !b.IsValid() {
		return a.IsValid() == b.IsValid()
	}
	if a.Type() != b.Type() {
		return false
	}
	switch a.Kind() {
	case reflect.Slice:
		return a.Len() == b.Len() && a.Pointer() == b.Pointer()
	case reflect.Map, reflect.Func:
		return a.Pointer() == b.Pointer()
	case reflect.Struct:
		for i := range a.NumField() {
			if !identicalValue(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Array:
		for i := range a.Len() {
			if !identicalValue(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	}
	return a.Equal(b)
}
