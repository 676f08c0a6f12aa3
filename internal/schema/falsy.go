// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package schema

import (
	"math"
	"reflect"
)

// IsFalsy reports whether v carries no meaningful setting and should be left
// out of a sparse field group.
//
// nil, nil pointers, maps, slices, interfaces, funcs and channels, false, any
// numeric zero, NaN and the empty string are falsy. Empty but non-nil maps and
// slices are not. For cty values null, false, zero and "" are falsy.
func IsFalsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case string:
		return x == ""
	}

	if cv, ok := asCty(v); ok {
		return ctyFalsy(cv)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return !rv.Bool()
	case reflect.String:
		return rv.Len() == 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f == 0 || math.IsNaN(f)
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
