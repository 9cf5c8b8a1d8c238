// Package runner wires a sandboxed Lua state, the capability catalog and a
// fresh execution context into a single script run.
package runner

import (
	"fmt"
	"io"

	lua "github.com/yuin/gopher-lua"

	"github.com/mglen/authprobe/internal/capability"
	"github.com/mglen/authprobe/internal/script"
)

// Runner executes one probe script in its own execution context. Each
// Runner owns an independent Lua state, error slot and session/request
// store; nothing is shared between runners.
type Runner struct {
	state    *script.State
	ctx      *capability.Context
	registry *capability.Registry
}

// Option configures a Runner.
type Option func(*config)

type config struct {
	out      io.Writer
	registry *capability.Registry
}

// WithOutput directs the script's debug output (print) to w.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		c.out = w
	}
}

// WithRegistry replaces the default capability catalog.
func WithRegistry(r *capability.Registry) Option {
	return func(c *config) {
		c.registry = r
	}
}

// New creates a Runner with the full capability catalog installed.
func New(opts ...Option) (*Runner, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.registry == nil {
		cfg.registry = capability.Default(cfg.out)
	}

	state, err := script.NewState()
	if err != nil {
		return nil, fmt.Errorf("creating lua state: %w", err)
	}

	ctx := capability.NewContext()
	if err := cfg.registry.InstallAll(state.LuaState(), ctx); err != nil {
		state.Close()
		return nil, err
	}

	return &Runner{
		state:    state,
		ctx:      ctx,
		registry: cfg.registry,
	}, nil
}

// LoadFile loads and executes a script file, defining its functions.
func (r *Runner) LoadFile(path string) error {
	return r.state.DoFile(path)
}

// LoadString loads and executes script source, defining its functions.
func (r *Runner) LoadString(code string) error {
	return r.state.DoString(code)
}

// Verify calls the script's verify(user, password) entry point and
// reports the truthiness of its first return value.
func (r *Runner) Verify(user, password string) (bool, error) {
	results, err := r.state.Call("verify", lua.LString(user), lua.LString(password))
	if err != nil {
		return false, err
	}
	if len(results) == 0 {
		return false, fmt.Errorf("verify returned no value")
	}
	return lua.LVAsBool(results[0]), nil
}

// LastError returns the execution context's pending diagnostic, if any.
func (r *Runner) LastError() (string, bool) {
	return r.ctx.LastError()
}

// Close releases the Lua state and every session and pending request
// owned by the execution context.
func (r *Runner) Close() error {
	if err := r.ctx.Close(); err != nil {
		r.state.Close()
		return err
	}
	return r.state.Close()
}
