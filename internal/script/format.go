package script

import (
	"math"
	"sort"
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Format renders a Lua value as a deterministic, human-readable string.
// Tables render as {key: value, ...} with the array part in index order
// followed by the remaining keys in sorted order. The output is for
// diagnostics only and is never parsed back.
func Format(lv lua.LValue) string {
	var sb strings.Builder
	formatValue(&sb, lv, make(map[*lua.LTable]bool))
	return sb.String()
}

func formatValue(sb *strings.Builder, lv lua.LValue, visited map[*lua.LTable]bool) {
	if lv == nil {
		sb.WriteString("null")
		return
	}

	switch v := lv.(type) {
	case *lua.LNilType:
		sb.WriteString("null")
	case lua.LBool:
		sb.WriteString(strconv.FormatBool(bool(v)))
	case lua.LNumber:
		sb.WriteString(formatNumber(float64(v)))
	case lua.LString:
		sb.WriteString(strconv.Quote(string(v)))
	case *lua.LTable:
		if visited[v] {
			sb.WriteString("{...}")
			return
		}
		visited[v] = true
		formatTable(sb, v, visited)
		delete(visited, v)
	default:
		sb.WriteString(lv.Type().String())
	}
}

// formatNumber renders integers without a decimal point.
func formatNumber(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatTable(sb *strings.Builder, t *lua.LTable, visited map[*lua.LTable]bool) {
	n := t.Len()

	type pair struct {
		key   string
		value lua.LValue
	}
	var rest []pair
	t.ForEach(func(k, v lua.LValue) {
		if kn, ok := k.(lua.LNumber); ok {
			i := int(kn)
			if float64(i) == float64(kn) && i >= 1 && i <= n {
				return // array part, rendered in index order below
			}
		}
		var key strings.Builder
		formatValue(&key, k, visited)
		rest = append(rest, pair{key: key.String(), value: v})
	})
	sort.Slice(rest, func(i, j int) bool { return rest[i].key < rest[j].key })

	sb.WriteString("{")
	first := true
	for i := 1; i <= n; i++ {
		if !first {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Itoa(i))
		sb.WriteString(": ")
		formatValue(sb, t.RawGetInt(i), visited)
		first = false
	}
	for _, p := range rest {
		if !first {
			sb.WriteString(", ")
		}
		sb.WriteString(p.key)
		sb.WriteString(": ")
		formatValue(sb, p.value, visited)
		first = false
	}
	sb.WriteString("}")
}
