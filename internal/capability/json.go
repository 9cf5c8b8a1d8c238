package capability

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	lua "github.com/yuin/gopher-lua"

	"github.com/mglen/authprobe/internal/script"
)

// JSONModule exposes json_encode and json_decode over the dynamic value
// model.
type JSONModule struct{}

// NewJSONModule creates a new JSON module.
func NewJSONModule() *JSONModule {
	return &JSONModule{}
}

// Name returns the module name.
func (m *JSONModule) Name() string {
	return "json"
}

// Register registers the module into the Lua state.
func (m *JSONModule) Register(L *lua.LState, ctx *Context) error {
	L.SetGlobal("json_decode", L.NewFunction(m.decode(ctx)))
	L.SetGlobal("json_encode", L.NewFunction(m.encode(ctx)))
	return nil
}

// json_decode(text) -> value
func (m *JSONModule) decode(ctx *Context) lua.LGFunction {
	return func(L *lua.LState) int {
		checkArity(L, 1)
		s := L.CheckString(1)

		if !gjson.Valid(s) {
			L.Push(ctx.SetError(errors.New("invalid json input")))
			return 1
		}

		L.Push(script.NewBridge(L).ToLua(gjson.Parse(s).Value()))
		return 1
	}
}

// json_encode(value) -> text
func (m *JSONModule) encode(ctx *Context) lua.LGFunction {
	return func(L *lua.LState) int {
		checkArity(L, 1)
		v := script.ToGo(L.CheckAny(1))

		data, err := json.Marshal(v)
		if err != nil {
			L.Push(ctx.SetError(fmt.Errorf("json encoding failed: %w", err)))
			return 1
		}

		L.Push(lua.LString(data))
		return 1
	}
}
