package capability

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/mglen/authprobe/internal/script"
)

// EncodingModule exposes base64_encode, base64_decode and hex.
type EncodingModule struct{}

// NewEncodingModule creates a new encoding module.
func NewEncodingModule() *EncodingModule {
	return &EncodingModule{}
}

// Name returns the module name.
func (m *EncodingModule) Name() string {
	return "encoding"
}

// Register registers the module into the Lua state.
func (m *EncodingModule) Register(L *lua.LState, ctx *Context) error {
	L.SetGlobal("base64_encode", L.NewFunction(m.base64Encode))
	L.SetGlobal("base64_decode", L.NewFunction(m.base64Decode(ctx)))
	L.SetGlobal("hex", L.NewFunction(m.hex))
	return nil
}

// base64_encode(bytes) -> text
func (m *EncodingModule) base64Encode(L *lua.LState) int {
	checkArity(L, 1)
	b := checkBytes(L, 1)

	L.Push(lua.LString(base64.StdEncoding.EncodeToString(b)))
	return 1
}

// base64_decode(text) -> bytes
// Malformed input is an operational failure reported via the error slot.
func (m *EncodingModule) base64Decode(ctx *Context) lua.LGFunction {
	return func(L *lua.LState) int {
		checkArity(L, 1)
		s := L.CheckString(1)

		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			L.Push(ctx.SetError(fmt.Errorf("invalid base64 input: %w", err)))
			return 1
		}

		L.Push(script.BytesValue(b))
		return 1
	}
}

// hex(bytes) -> text
func (m *EncodingModule) hex(L *lua.LState) int {
	checkArity(L, 1)
	b := checkBytes(L, 1)

	L.Push(lua.LString(hex.EncodeToString(b)))
	return 1
}
