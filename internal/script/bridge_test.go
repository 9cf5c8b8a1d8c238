package script

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestBytesFromString(t *testing.T) {
	got, err := Bytes(lua.LString("hello"))
	if err != nil {
		t.Fatalf("Bytes error = %v", err)
	}
	if !bytes.Equal(got, []byte("hello")) {
		t.Errorf("Bytes = %v, want %v", got, []byte("hello"))
	}
}

func TestBytesRoundTrip(t *testing.T) {
	// The opaque byte-string variant must round-trip, including bytes
	// that are not valid text.
	inputs := [][]byte{
		{},
		{0},
		{0, 255, 16},
		{0xff, 0xfe, 0xfd},
		[]byte("plain text"),
	}

	for _, in := range inputs {
		got, err := Bytes(BytesValue(in))
		if err != nil {
			t.Fatalf("Bytes(BytesValue(%v)) error = %v", in, err)
		}
		if !bytes.Equal(got, in) {
			t.Errorf("round trip of %v = %v", in, got)
		}
	}
}

func TestBytesFromTable(t *testing.T) {
	L := lua.NewState()
	t.Cleanup(func() { L.Close() })

	tbl := L.NewTable()
	for i, n := range []int{0, 255, 16} {
		tbl.RawSetInt(i+1, lua.LNumber(n))
	}

	got, err := Bytes(tbl)
	if err != nil {
		t.Fatalf("Bytes error = %v", err)
	}
	if !bytes.Equal(got, []byte{0, 255, 16}) {
		t.Errorf("Bytes = %v, want [0 255 16]", got)
	}
}

func TestBytesSingleElementRange(t *testing.T) {
	L := lua.NewState()
	t.Cleanup(func() { L.Close() })

	for n := 0; n <= 255; n++ {
		tbl := L.NewTable()
		tbl.RawSetInt(1, lua.LNumber(n))

		got, err := Bytes(tbl)
		if err != nil {
			t.Fatalf("Bytes([%d]) error = %v", n, err)
		}
		if len(got) != 1 || got[0] != byte(n) {
			t.Errorf("Bytes([%d]) = %v", n, got)
		}
	}
}

func TestBytesConversionErrors(t *testing.T) {
	L := lua.NewState()
	t.Cleanup(func() { L.Close() })

	numTable := func(f float64) lua.LValue {
		tbl := L.NewTable()
		tbl.RawSetInt(1, lua.LNumber(f))
		return tbl
	}

	boolTable := L.NewTable()
	boolTable.RawSetInt(1, lua.LTrue)

	hashTable := L.NewTable()
	hashTable.RawSetString("x", lua.LNumber(1))

	tests := []struct {
		name  string
		value lua.LValue
	}{
		{"out of range high", numTable(256)},
		{"out of range low", numTable(-1)},
		{"non-integral", numTable(1.5)},
		{"boolean element", boolTable},
		{"hash keys", hashTable},
		{"boolean value", lua.LTrue},
		{"nil value", lua.LNil},
		{"number value", lua.LNumber(5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Bytes(tt.value)
			if err == nil {
				t.Fatal("Bytes error = nil, want ConversionError")
			}
			var convErr *ConversionError
			if !errors.As(err, &convErr) {
				t.Errorf("error type = %T, want *ConversionError", err)
			}
			if convErr.Value == "" {
				t.Error("ConversionError does not name the offending value")
			}
		})
	}
}

func TestBytesEmptyTable(t *testing.T) {
	L := lua.NewState()
	t.Cleanup(func() { L.Close() })

	got, err := Bytes(L.NewTable())
	if err != nil {
		t.Fatalf("Bytes error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Bytes = %v, want empty", got)
	}
}

func TestToGoScalars(t *testing.T) {
	tests := []struct {
		name string
		in   lua.LValue
		want any
	}{
		{"nil", lua.LNil, nil},
		{"true", lua.LTrue, true},
		{"integer", lua.LNumber(42), int64(42)},
		{"float", lua.LNumber(1.5), 1.5},
		{"string", lua.LString("x"), "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToGo(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ToGo = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestToGoTables(t *testing.T) {
	L := lua.NewState()
	t.Cleanup(func() { L.Close() })

	if err := L.DoString(`arr = {1, 2, 3}; map = {a = 1, b = "x"}`); err != nil {
		t.Fatalf("DoString error = %v", err)
	}

	arr := ToGo(L.GetGlobal("arr"))
	if want := []any{int64(1), int64(2), int64(3)}; !reflect.DeepEqual(arr, want) {
		t.Errorf("ToGo(arr) = %#v, want %#v", arr, want)
	}

	m := ToGo(L.GetGlobal("map"))
	if want := map[string]any{"a": int64(1), "b": "x"}; !reflect.DeepEqual(m, want) {
		t.Errorf("ToGo(map) = %#v, want %#v", m, want)
	}
}

func TestToGoCycle(t *testing.T) {
	L := lua.NewState()
	t.Cleanup(func() { L.Close() })

	if err := L.DoString(`t = {}; t.self = t`); err != nil {
		t.Fatalf("DoString error = %v", err)
	}

	got := ToGo(L.GetGlobal("t"))
	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("ToGo = %T, want map", got)
	}
	if m["self"] != nil {
		t.Errorf("cycle not broken: self = %#v", m["self"])
	}
}

func TestBridgeToLua(t *testing.T) {
	L := lua.NewState()
	t.Cleanup(func() { L.Close() })
	b := NewBridge(L)

	if got := b.ToLua(nil); got != lua.LNil {
		t.Errorf("ToLua(nil) = %v", got)
	}
	if got := b.ToLua(int64(7)); got != lua.LNumber(7) {
		t.Errorf("ToLua(7) = %v", got)
	}
	if got := b.ToLua("s"); got != lua.LString("s") {
		t.Errorf("ToLua(s) = %v", got)
	}
	if got := b.ToLua([]byte{0xff}); got != lua.LString([]byte{0xff}) {
		t.Errorf("ToLua(bytes) = %v", got)
	}

	tbl, ok := b.ToLua(map[string]any{"k": []any{int64(1), "v"}}).(*lua.LTable)
	if !ok {
		t.Fatal("ToLua(map) is not a table")
	}
	inner, ok := tbl.RawGetString("k").(*lua.LTable)
	if !ok {
		t.Fatal("nested value is not a table")
	}
	if inner.RawGetInt(1) != lua.LNumber(1) || inner.RawGetInt(2) != lua.LString("v") {
		t.Errorf("nested array = [%v %v]", inner.RawGetInt(1), inner.RawGetInt(2))
	}
}
