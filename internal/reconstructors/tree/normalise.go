// Package tree normalises the generic trees engine decoders produce for
// structured-data objects into plain maps, arrays and scalars.
package tree

import (
	"fmt"
	"math"
)

// Wrapper keys an engine serialiser nests real values under.
const (
	dictKey = "dict"
	listKey = "list"
)

type frame struct {
	src any
	set func(any)
}

// Normalise unwraps single-key "dict"/"list" wrapper levels and turns labelled
// key/value tables into maps. NaN and infinite floats become the strings "NaN",
// "+Inf" and "-Inf" so every output format can encode them. Input is never modified. The walk uses an explicit
// stack so arbitrarily deep trees cannot exhaust the goroutine stack.
func Normalise(v any) any {
	var out any
	stack := []frame{{src: v, set: func(x any) { out = x }}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch val := unwrap(f.src).(type) {
		case map[string]any:
			m := make(map[string]any, len(val))
			f.set(m)
			for k, child := range val {
				stack = append(stack, frame{src: child, set: func(x any) { m[k] = x }})
			}

		case map[any]any:
			m := make(map[string]any, len(val))
			f.set(m)
			for k, child := range val {
				key := fmt.Sprint(k)
				stack = append(stack, frame{src: child, set: func(x any) { m[key] = x }})
			}

		case []any:
			if keys, values, ok := pairs(val); ok {
				m := make(map[string]any, len(keys))
				f.set(m)
				for i, key := range keys {
					stack = append(stack, frame{src: values[i], set: func(x any) { m[key] = x }})
				}
				continue
			}
			arr := make([]any, len(val))
			f.set(arr)
			for i := len(val) - 1; i >= 0; i-- {
				stack = append(stack, frame{src: val[i], set: func(x any) { arr[i] = x }})
			}

		default:
			f.set(scalar(val))
		}
	}
	return out
}

// scalar replaces non-finite floats with their string form.
func scalar(v any) any {
	var x float64
	switch n := v.(type) {
	case float64:
		x = n
	case float32:
		x = float64(n)
	default:
		return v
	}
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "+Inf"
	case math.IsInf(x, -1):
		return "-Inf"
	default:
		return v
	}
}

// unwrap strips single-key wrapper maps until a real value is reached.
func unwrap(v any) any {
	for {
		switch m := v.(type) {
		case map[string]any:
			if len(m) != 1 {
				return v
			}
			if inner, ok := m[dictKey]; ok {
				v = inner
				continue
			}
			if inner, ok := m[listKey]; ok {
				v = inner
				continue
			}
			return v
		case map[any]any:
			if len(m) != 1 {
				return v
			}
			if inner, ok := m[dictKey]; ok {
				v = inner
				continue
			}
			if inner, ok := m[listKey]; ok {
				v = inner
				continue
			}
			return v
		default:
			return v
		}
	}
}

// pairs reports whether every element of arr is a {key, value} or {first, second}
// entry, returning the formatted keys and raw values in order.
func pairs(arr []any) ([]string, []any, bool) {
	if len(arr) == 0 {
		return nil, nil, false
	}
	keys := make([]string, len(arr))
	values := make([]any, len(arr))
	for i, el := range arr {
		k, v, ok := pair(unwrap(el))
		if !ok {
			return nil, nil, false
		}
		keys[i] = fmt.Sprint(unwrap(k))
		values[i] = v
	}
	return keys, values, true
}

func pair(el any) (any, any, bool) {
	var get func(string) (any, bool)
	var n int
	switch m := el.(type) {
	case map[string]any:
		n = len(m)
		get = func(k string) (any, bool) { v, ok := m[k]; return v, ok }
	case map[any]any:
		n = len(m)
		get = func(k string) (any, bool) { v, ok := m[k]; return v, ok }
	default:
		return nil, nil, false
	}
	if n != 2 {
		return nil, nil, false
	}
	for _, names := range [][2]string{{"key", "value"}, {"first", "second"}} {
		k, okK := get(names[0])
		v, okV := get(names[1])
		if okK && okV {
			return k, v, true
		}
	}
	return nil, nil, false
}
