// Package sanitize converts caller-supplied context data into the engine's
// closed value model, enforcing the sandbox along the way.
//
// Sanitization strips function-typed values, drops deny-listed and over-long
// property names, bounds recursion depth and key count per level, and wraps
// opaque host values behind a read-only allow-listed adapter. Typed slices
// and string-keyed maps ([]string, map[string]int) are converted through
// reflection. The resulting context can be handed to the evaluator without
// further checks: by construction it never exposes anything the sandbox
// forbids.
package sanitize

import (
	"reflect"
	"sort"

	"hexbind/enclave/pkg/expr"
	"hexbind/enclave/pkg/expr/sandbox"
	"hexbind/enclave/pkg/expr/value"
)

// HostObject is implemented by host values that want to expose a limited set
// of properties to expressions. Get returns the raw property value, which is
// sanitized again before an expression can see it. Writes are impossible;
// the interface has no mutating method.
type HostObject interface {
	Get(name string) (any, bool)
}

// Context sanitizes a caller-supplied context map into evaluator-ready
// values. The input map is never mutated.
func Context(ctx map[string]any, limits expr.Limits) map[string]value.Value {
	out := make(map[string]value.Value, len(ctx))

	for _, name := range boundedKeys(keysOf(ctx), limits.MaxSanitizeKeys) {
		if !allowedName(name, limits) {
			continue
		}

		v, ok := sanitizeValue(ctx[name], limits, limits.MaxSanitizeDepth)
		if !ok {
			continue
		}
		out[name] = v
	}

	return out
}

// sanitizeValue converts one Go value. ok=false means the value has no safe
// representation (functions, channels, unsafe pointers) and must be dropped.
func sanitizeValue(raw any, limits expr.Limits, depth int) (value.Value, bool) {
	if depth <= 0 {
		return value.NoValue(), false
	}

	switch v := raw.(type) {
	case nil:
		return value.Null(), true
	case bool:
		return value.Bool(v), true
	case float64:
		return value.Number(v), true
	case float32:
		return value.Number(float64(v)), true
	case int:
		return value.Number(float64(v)), true
	case int8:
		return value.Number(float64(v)), true
	case int16:
		return value.Number(float64(v)), true
	case int32:
		return value.Number(float64(v)), true
	case int64:
		return value.Number(float64(v)), true
	case uint:
		return value.Number(float64(v)), true
	case uint8:
		return value.Number(float64(v)), true
	case uint16:
		return value.Number(float64(v)), true
	case uint32:
		return value.Number(float64(v)), true
	case uint64:
		return value.Number(float64(v)), true
	case string:
		return value.String(v), true
	case value.Value:
		// Already-modeled values pass through unchanged; they can only have
		// been built through this package or the value constructors.
		return v, true

	case []any:
		items := make([]value.Value, 0, len(v))
		for _, item := range v {
			sv, ok := sanitizeValue(item, limits, depth-1)
			if !ok {
				sv = value.NoValue()
			}
			items = append(items, sv)
		}
		return value.Array(items), true

	case map[string]any:
		fields := make(map[string]value.Value, len(v))
		for _, name := range boundedKeys(keysOf(v), limits.MaxSanitizeKeys) {
			if !allowedName(name, limits) {
				continue
			}
			sv, ok := sanitizeValue(v[name], limits, depth-1)
			if !ok {
				continue
			}
			fields[name] = sv
		}
		return value.Object(fields), true

	case HostObject:
		return value.Host(&hostAdapter{obj: v, limits: limits}), true
	}

	return sanitizeReflect(raw, limits, depth)
}

// sanitizeReflect handles values the typed switch does not cover: typed
// slices and string-keyed maps from library callers ([]string, map[string]int)
// and named scalar types. Functions, channels, structs, and other opaque
// shapes are not representable and disappear from the context.
func sanitizeReflect(raw any, limits expr.Limits, depth int) (value.Value, bool) {
	rv := reflect.ValueOf(raw)

	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return value.Null(), true
		}
		return sanitizeValue(rv.Elem().Interface(), limits, depth)

	case reflect.Bool:
		return value.Bool(rv.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.Number(float64(rv.Int())), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return value.Number(float64(rv.Uint())), true
	case reflect.Float32, reflect.Float64:
		return value.Number(rv.Float()), true
	case reflect.String:
		return value.String(rv.String()), true

	case reflect.Slice, reflect.Array:
		items := make([]value.Value, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			sv, ok := sanitizeValue(rv.Index(i).Interface(), limits, depth-1)
			if !ok {
				sv = value.NoValue()
			}
			items = append(items, sv)
		}
		return value.Array(items), true

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return value.NoValue(), false
		}
		fields := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			fields[iter.Key().String()] = iter.Value().Interface()
		}
		// Re-dispatch through the map[string]any path so key bounding and
		// name screening apply uniformly.
		return sanitizeValue(fields, limits, depth)
	}

	return value.NoValue(), false
}

// allowedName reports whether a property name may appear in a sanitized
// context: not deny-listed and not longer than the configured maximum.
func allowedName(name string, limits expr.Limits) bool {
	if len(name) > limits.MaxPropertyNameLength {
		return false
	}
	return !sandbox.BlockedName(name)
}

// keysOf returns the map's keys in sorted order so that key-count bounding
// is deterministic.
func keysOf(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func boundedKeys(keys []string, max int) []string {
	if len(keys) > max {
		return keys[:max]
	}
	return keys
}

// hostAdapter wraps a HostObject as a value.HostRef. It forwards reads only
// for allow-listed property names and sanitizes every returned value, so a
// host object can never smuggle a function or a blocked name into an
// expression.
type hostAdapter struct {
	obj    HostObject
	limits expr.Limits
}

func (h *hostAdapter) Get(name string) (value.Value, bool) {
	if !allowedName(name, h.limits) {
		return value.NoValue(), false
	}

	raw, ok := h.obj.Get(name)
	if !ok {
		return value.NoValue(), false
	}

	// A host property read gets a fresh sanitization budget for its
	// nested content.
	v, ok := sanitizeValue(raw, h.limits, h.limits.MaxSanitizeDepth)
	if !ok {
		return value.NoValue(), false
	}
	return v, true
}
