package capability

import (
	"errors"
	"fmt"
	"os/exec"

	lua "github.com/yuin/gopher-lua"
)

// ExecModule exposes execve: spawn a program, wait for it, return its
// exit code. A non-zero exit is not a failure; failing to spawn, or an
// exit with no code (killed by signal), is.
type ExecModule struct{}

// NewExecModule creates a new exec module.
func NewExecModule() *ExecModule {
	return &ExecModule{}
}

// Name returns the module name.
func (m *ExecModule) Name() string {
	return "exec"
}

// Register registers the module into the Lua state.
func (m *ExecModule) Register(L *lua.LState, ctx *Context) error {
	L.SetGlobal("execve", L.NewFunction(m.execve(ctx)))
	return nil
}

// execve(program, args) -> exitcode
// Every element of args must be a string; anything else is an argument
// error rather than a silently dropped value.
func (m *ExecModule) execve(ctx *Context) lua.LGFunction {
	return func(L *lua.LState) int {
		checkArity(L, 2)
		prog := L.CheckString(1)
		argsTbl := L.CheckTable(2)

		// The array part must be the whole table; a hash-keyed entry would
		// otherwise be dropped without a trace.
		count := 0
		argsTbl.ForEach(func(_, _ lua.LValue) {
			count++
		})
		if count != argsTbl.Len() {
			L.ArgError(2, "argument list must be an array of strings")
		}

		args := make([]string, 0, argsTbl.Len())
		for i := 1; i <= argsTbl.Len(); i++ {
			elem := argsTbl.RawGetInt(i)
			s, ok := elem.(lua.LString)
			if !ok {
				L.ArgError(2, fmt.Sprintf("argument %d must be a string, got %s", i, elem.Type()))
			}
			args = append(args, string(s))
		}

		err := exec.Command(prog, args...).Run()
		if err == nil {
			L.Push(lua.LNumber(0))
			return 1
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if code := exitErr.ExitCode(); code >= 0 {
				L.Push(lua.LNumber(code))
				return 1
			}
			L.Push(ctx.SetError(errors.New("process didn't return exit code")))
			return 1
		}

		L.Push(ctx.SetError(fmt.Errorf("failed to spawn program: %w", err)))
		return 1
	}
}
