package capability

import (
	"fmt"
	"io"

	lua "github.com/yuin/gopher-lua"

	"github.com/mglen/authprobe/internal/script"
)

// Module is one family of script-callable capabilities. Modules are
// created once during environment setup and are immutable afterwards.
type Module interface {
	// Name returns the module name (e.g. "digest", "http").
	Name() string

	// Register installs the module's functions as globals in the Lua
	// state, bound to the given execution context.
	Register(L *lua.LState, ctx *Context) error
}

// Registry manages capability modules and their installation.
type Registry struct {
	modules map[string]Module
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]Module)}
}

// Register adds a module to the registry.
func (r *Registry) Register(mod Module) error {
	if _, exists := r.modules[mod.Name()]; exists {
		return fmt.Errorf("module %q already registered", mod.Name())
	}

	r.modules[mod.Name()] = mod
	r.order = append(r.order, mod.Name())
	return nil
}

// Get returns a module by name.
func (r *Registry) Get(name string) (Module, bool) {
	mod, ok := r.modules[name]
	return mod, ok
}

// List returns all registered module names in registration order.
func (r *Registry) List() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// InstallAll registers every module's functions into the Lua state.
func (r *Registry) InstallAll(L *lua.LState, ctx *Context) error {
	for _, name := range r.order {
		if err := r.modules[name].Register(L, ctx); err != nil {
			return fmt.Errorf("failed to register module %q: %w", name, err)
		}
	}
	return nil
}

// Default returns a registry holding the full capability catalog. Debug
// output from print goes to out (os.Stdout when nil).
func Default(out io.Writer) *Registry {
	r := NewRegistry()
	for _, mod := range []Module{
		NewCoreModule(out),
		NewDigestModule(),
		NewEncodingModule(),
		NewJSONModule(),
		NewHTMLModule(),
		NewHTTPModule(),
		NewLDAPModule(),
		NewMySQLModule(),
		NewExecModule(),
	} {
		// Names are unique constants; registration cannot fail here.
		if err := r.Register(mod); err != nil {
			panic(err)
		}
	}
	return r
}

// checkArity raises a Lua error unless the handler received exactly n
// arguments. Argument count mismatch is a programmer error, never routed
// through the error slot.
func checkArity(L *lua.LState, n int) {
	if top := L.GetTop(); top != n {
		L.RaiseError("expected %d arguments, got %d", n, top)
	}
}

// checkBytes converts argument n to a native byte sequence, raising a Lua
// argument error when the value is not convertible.
func checkBytes(L *lua.LState, n int) []byte {
	b, err := script.Bytes(L.CheckAny(n))
	if err != nil {
		L.ArgError(n, err.Error())
	}
	return b
}
