package script

import (
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestFormatScalars(t *testing.T) {
	tests := []struct {
		name string
		in   lua.LValue
		want string
	}{
		{"nil", lua.LNil, "null"},
		{"true", lua.LTrue, "true"},
		{"false", lua.LFalse, "false"},
		{"integer", lua.LNumber(3), "3"},
		{"negative", lua.LNumber(-7), "-7"},
		{"float", lua.LNumber(1.5), "1.5"},
		{"string", lua.LString("hey"), `"hey"`},
		{"string with quote", lua.LString(`he"y`), `"he\"y"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.in); got != tt.want {
				t.Errorf("Format = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatTable(t *testing.T) {
	L := lua.NewState()
	t.Cleanup(func() { L.Close() })

	if err := L.DoString(`t = {1, "a", z = true, b = {x = 1}}`); err != nil {
		t.Fatalf("DoString error = %v", err)
	}

	// Array part in index order, remaining keys sorted.
	want := `{1: 1, 2: "a", "b": {"x": 1}, "z": true}`
	if got := Format(L.GetGlobal("t")); got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}

func TestFormatDeterministic(t *testing.T) {
	L := lua.NewState()
	t.Cleanup(func() { L.Close() })

	if err := L.DoString(`t = {c = 1, a = 2, b = 3}`); err != nil {
		t.Fatalf("DoString error = %v", err)
	}

	first := Format(L.GetGlobal("t"))
	for i := 0; i < 10; i++ {
		if got := Format(L.GetGlobal("t")); got != first {
			t.Fatalf("Format not deterministic: %q vs %q", got, first)
		}
	}
	if first != `{"a": 2, "b": 3, "c": 1}` {
		t.Errorf("Format = %q", first)
	}
}

func TestFormatCycle(t *testing.T) {
	L := lua.NewState()
	t.Cleanup(func() { L.Close() })

	if err := L.DoString(`t = {}; t.self = t`); err != nil {
		t.Fatalf("DoString error = %v", err)
	}

	want := `{"self": {...}}`
	if got := Format(L.GetGlobal("t")); got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}
