package capability

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/mglen/authprobe/internal/script"
)

// CoreModule exposes print, last_err, rand and sleep.
type CoreModule struct {
	out io.Writer
}

// NewCoreModule creates a core module writing debug output to out
// (os.Stdout when nil).
func NewCoreModule(out io.Writer) *CoreModule {
	if out == nil {
		out = os.Stdout
	}
	return &CoreModule{out: out}
}

// Name returns the module name.
func (m *CoreModule) Name() string {
	return "core"
}

// Register registers the module into the Lua state.
func (m *CoreModule) Register(L *lua.LState, ctx *Context) error {
	L.SetGlobal("print", L.NewFunction(m.print))
	L.SetGlobal("last_err", L.NewFunction(m.lastErr(ctx)))
	L.SetGlobal("rand", L.NewFunction(m.rand))
	L.SetGlobal("sleep", L.NewFunction(m.sleep))
	return nil
}

// print(value)
// Debug output only; renders through the deterministic formatter.
func (m *CoreModule) print(L *lua.LState) int {
	checkArity(L, 1)
	fmt.Fprintln(m.out, script.Format(L.CheckAny(1)))
	return 0
}

// last_err() -> text | nil
// Non-destructive read of the error slot.
func (m *CoreModule) lastErr(ctx *Context) lua.LGFunction {
	return func(L *lua.LState) int {
		checkArity(L, 0)
		if msg, ok := ctx.LastError(); ok {
			L.Push(lua.LString(msg))
		} else {
			L.Push(lua.LNil)
		}
		return 1
	}
}

// rand(min, max) -> integer in [min, max)
func (m *CoreModule) rand(L *lua.LState) int {
	checkArity(L, 2)
	min := L.CheckInt(1)
	max := L.CheckInt(2)
	if max <= min {
		L.ArgError(2, "max must be greater than min")
	}

	L.Push(lua.LNumber(min + rand.IntN(max-min)))
	return 1
}

// sleep(seconds)
func (m *CoreModule) sleep(L *lua.LState) int {
	checkArity(L, 1)
	n := L.CheckInt(1)
	if n < 0 {
		L.ArgError(1, "seconds must not be negative")
	}

	time.Sleep(time.Duration(n) * time.Second)
	return 0
}
