package identity

import (
	"fmt"
	"reflect"
	"sort"
)

// Option configures structural comparison.
type Option func(*compareOptions)

type compareOptions struct {
	setKeys map[string]struct{}
}

// WithSetKeys marks map keys whose slice values carry set semantics: their
// elements are compared order-insensitively. The data model defines add-ons
// and reductions as sets; all other lists stay order-sensitive.
func WithSetKeys(keys ...string) Option {
	return func(o *compareOptions) {
		if o.setKeys == nil {
			o.setKeys = make(map[string]struct{}, len(keys))
		}
		for _, k := range keys {
			o.setKeys[k] = struct{}{}
		}
	}
}

// DeepEqual compares arbitrarily nested plain-data structures (maps, slices,
// scalars) for value equality. Numeric values compare across int/float kinds
// so decoded JSON matches in-memory structs.
func DeepEqual(a, b any, opts ...Option) bool {
	var o compareOptions
	for _, opt := range opts {
		opt(&o)
	}
	return deepEqual(a, b, &o, false)
}

func deepEqual(a, b any, o *compareOptions, asSet bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	va, vb = indirect(va), indirect(vb)
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}

	switch {
	case isNumber(va) && isNumber(vb):
		return numValue(va) == numValue(vb)
	case va.Kind() == reflect.String && vb.Kind() == reflect.String:
		return va.String() == vb.String()
	case va.Kind() == reflect.Bool && vb.Kind() == reflect.Bool:
		return va.Bool() == vb.Bool()
	case va.Kind() == reflect.Map && vb.Kind() == reflect.Map:
		return mapsEqual(va, vb, o)
	case (va.Kind() == reflect.Slice || va.Kind() == reflect.Array) &&
		(vb.Kind() == reflect.Slice || vb.Kind() == reflect.Array):
		return slicesEqual(va, vb, o, asSet)
	case va.Kind() == reflect.Struct && vb.Kind() == reflect.Struct:
		if va.Type() != vb.Type() {
			return false
		}
		return reflect.DeepEqual(va.Interface(), vb.Interface())
	default:
		return reflect.DeepEqual(a, b)
	}
}

func mapsEqual(va, vb reflect.Value, o *compareOptions) bool {
	if va.Len() != vb.Len() {
		return false
	}
	iter := va.MapRange()
	for iter.Next() {
		key := iter.Key()
		other := vb.MapIndex(key)
		if !other.IsValid() {
			return false
		}
		asSet := false
		if o.setKeys != nil && key.Kind() == reflect.String {
			_, asSet = o.setKeys[key.String()]
		}
		if !deepEqual(iter.Value().Interface(), other.Interface(), o, asSet) {
			return false
		}
	}
	return true
}

func slicesEqual(va, vb reflect.Value, o *compareOptions, asSet bool) bool {
	if va.Len() != vb.Len() {
		return false
	}
	if asSet {
		sa := sortedKeys(va)
		sb := sortedKeys(vb)
		for i := range sa {
			if sa[i] != sb[i] {
				return false
			}
		}
		return true
	}
	for i := 0; i < va.Len(); i++ {
		if !deepEqual(va.Index(i).Interface(), vb.Index(i).Interface(), o, false) {
			return false
		}
	}
	return true
}

// sortedKeys renders set elements to strings and sorts them; set members are
// identifiers, so string rendering is a stable total order.
func sortedKeys(v reflect.Value) []string {
	out := make([]string, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		out = append(out, fmt.Sprintf("%v", v.Index(i).Interface()))
	}
	sort.Strings(out)
	return out
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func isNumber(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func numValue(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	default:
		return v.Float()
	}
}
