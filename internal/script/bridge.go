package script

import (
	"math"

	lua "github.com/yuin/gopher-lua"
)

// Bytes converts a Lua value to a native byte sequence.
//
// Accepted shapes:
//   - a Lua string, taken as raw bytes (Lua strings are 8-bit clean)
//   - an array-shaped table whose elements are integral numbers in [0,255]
//
// Any other value, any element of another type, and any out-of-range or
// non-integral number fails with a *ConversionError naming the offending
// value. Conversion never truncates.
func Bytes(lv lua.LValue) ([]byte, error) {
	switch v := lv.(type) {
	case lua.LString:
		return []byte(v), nil
	case *lua.LTable:
		return tableBytes(v)
	default:
		return nil, &ConversionError{
			Value:  Format(lv),
			Reason: "invalid type for byte sequence",
		}
	}
}

// tableBytes converts an array-shaped table of integers in [0,255].
func tableBytes(t *lua.LTable) ([]byte, error) {
	n := t.Len()

	// The array part must be the whole table; stray hash keys mean the
	// value is not a byte array.
	count := 0
	t.ForEach(func(_, _ lua.LValue) {
		count++
	})
	if count != n {
		return nil, &ConversionError{
			Value:  Format(t),
			Reason: "table is not a byte array",
		}
	}

	out := make([]byte, n)
	for i := 1; i <= n; i++ {
		elem := t.RawGetInt(i)
		num, ok := elem.(lua.LNumber)
		if !ok {
			return nil, &ConversionError{
				Value:  Format(elem),
				Reason: "unexpected type for byte",
			}
		}
		f := float64(num)
		if f < 0 || f > 255 || f != math.Trunc(f) {
			return nil, &ConversionError{
				Value:  Format(elem),
				Reason: "number is out of byte range",
			}
		}
		out[i-1] = byte(f)
	}
	return out, nil
}

// BytesValue converts a native byte sequence to a Lua value. The result is
// always a raw Lua string; it is never re-decoded as text because digest and
// decoder outputs are not guaranteed to be valid text.
func BytesValue(b []byte) lua.LValue {
	return lua.LString(b)
}

// ToGo converts a Lua value to a Go value. Array-shaped tables become
// []any, other tables become map[string]any, integral numbers become int64.
// Cycles are broken rather than recursed into.
func ToGo(lv lua.LValue) any {
	return toGoVisited(lv, make(map[*lua.LTable]bool))
}

func toGoVisited(lv lua.LValue, visited map[*lua.LTable]bool) any {
	if lv == nil {
		return nil
	}

	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil // Break circular reference
		}
		visited[v] = true
		return tableToGo(v, visited)
	default:
		return nil
	}
}

// tableToGo converts a Lua table to either a Go map or slice.
func tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	// Check if it's an array (sequential integer keys starting at 1)
	isArray := true
	maxN := 0
	count := 0
	t.ForEach(func(k, _ lua.LValue) {
		count++
		if kn, ok := k.(lua.LNumber); ok {
			n := int(kn)
			if float64(n) == float64(kn) && n > 0 {
				if n > maxN {
					maxN = n
				}
				return
			}
		}
		isArray = false
	})

	if isArray && maxN > 0 && count == maxN {
		arr := make([]any, maxN)
		for i := 1; i <= maxN; i++ {
			arr[i-1] = toGoVisited(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]any, count)
	t.ForEach(func(k, v lua.LValue) {
		m[k.String()] = toGoVisited(v, visited)
	})
	return m
}

// Bridge converts Go values into Lua values for a particular state.
type Bridge struct {
	L *lua.LState
}

// NewBridge creates a new Bridge for the given Lua state.
func NewBridge(L *lua.LState) *Bridge {
	return &Bridge{L: L}
}

// ToLua converts a Go value to a Lua value. Values outside the dynamic
// value model (nil, bool, numbers, strings, bytes, slices, string-keyed
// maps) convert to nil.
func (b *Bridge) ToLua(v any) lua.LValue {
	if v == nil {
		return lua.LNil
	}

	switch val := v.(type) {
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []byte:
		return lua.LString(val)
	case []any:
		t := b.L.NewTable()
		for i, elem := range val {
			t.RawSetInt(i+1, b.ToLua(elem))
		}
		return t
	case []string:
		t := b.L.NewTable()
		for i, elem := range val {
			t.RawSetInt(i+1, lua.LString(elem))
		}
		return t
	case map[string]any:
		t := b.L.NewTable()
		for k, elem := range val {
			t.RawSetString(k, b.ToLua(elem))
		}
		return t
	case map[string]string:
		t := b.L.NewTable()
		for k, elem := range val {
			t.RawSetString(k, lua.LString(elem))
		}
		return t
	case lua.LValue:
		return val
	default:
		return lua.LNil
	}
}
