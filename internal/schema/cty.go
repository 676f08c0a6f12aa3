// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file lets values evaluated from HCL build files take part in
// conversion without first being copied into Go values.
//
// Why walk cty values here?
//
// Build files hand the loader cty values, and some of those wrap entities such
// as files or targets in capsules. Those entities must be converted in the scope
// of the field group that contains them, so the walk has to happen during
// conversion rather than at load time.
package schema

import (
	"fmt"
	"math/big"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

func asCty(v any) (cty.Value, bool) {
	switch x := v.(type) {
	case cty.Value:
		return x, true
	case *cty.Value:
		if x == nil {
			return cty.NilVal, true
		}
		return *x, true
	}
	return cty.NilVal, false
}

// convertCty walks v into strings, bools, int64/float64 numbers, []any and
// map[string]any. Integers outside the int64 range become float64 only
// when that loses no precision; otherwise they are rejected. Capsule values are unwrapped and converted in this scope.
func (sc Scope) convertCty(v cty.Value) (any, error) {
	if v.IsMarked() {
		v, _ = v.Unmark()
	}
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("%w: unknown %s value", ErrUnsupportedValue, v.Type().FriendlyName())
	}

	ty := v.Type()
	switch {
	case ty.IsCapsuleType():
		return sc.Convert(v.EncapsulatedValue())

	case ty.Equals(cty.String):
		return v.AsString(), nil

	case ty.Equals(cty.Bool):
		return v.True(), nil

	case ty.Equals(cty.Number):
		var i int64
		if err := gocty.FromCtyValue(v, &i); err == nil {
			return i, nil
		}
		if bf := v.AsBigFloat(); bf.IsInt() {
			f, acc := bf.Float64()
			if acc != big.Exact {
				return nil, fmt.Errorf("%w: integer %s cannot be represented exactly", ErrUnsupportedValue, bf.Text('f', -1))
			}
			return f, nil
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, err
		}
		return f, nil

	case ty.IsListType(), ty.IsSetType(), ty.IsTupleType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			c, err := sc.convertCty(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
		return out, nil

	case ty.IsMapType(), ty.IsObjectType():
		out := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			c, err := sc.convertCty(ev)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = c
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedValue, ty.FriendlyName())
}

func ctyFalsy(v cty.Value) bool {
	if v.IsMarked() {
		v, _ = v.Unmark()
	}
	if v.IsNull() {
		return true
	}
	if !v.IsKnown() {
		return false
	}

	ty := v.Type()
	switch {
	case ty.Equals(cty.Bool):
		return !v.True()
	case ty.Equals(cty.String):
		return v.AsString() == ""
	case ty.Equals(cty.Number):
		return v.AsBigFloat().Sign() == 0
	}
	return false
}
