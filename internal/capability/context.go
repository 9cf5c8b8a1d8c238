package capability

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/mglen/authprobe/internal/transport"
)

// Context is the host-side state owned by a single script execution
// context: the error slot and the HTTP session/request store. It is not
// shared across contexts and needs no locking; hosts running multiple
// scripts concurrently give each its own Context.
type Context struct {
	store *transport.Store

	lastErr string
	failed  bool
}

// NewContext creates a Context with an empty store and error slot.
func NewContext() *Context {
	return &Context{store: transport.NewStore()}
}

// Store returns the HTTP session/request store.
func (c *Context) Store() *transport.Store {
	return c.store
}

// SetError records an operational failure, overwriting any previous one,
// and returns the soft-failure marker the handler pushes as its result.
func (c *Context) SetError(err error) lua.LValue {
	c.lastErr = err.Error()
	c.failed = true
	return lua.LFalse
}

// LastError returns the most recently recorded message without clearing
// it. The second return is false if no capability has ever failed.
func (c *Context) LastError() (string, bool) {
	return c.lastErr, c.failed
}

// Close releases the resources owned by the execution context.
func (c *Context) Close() error {
	return c.store.Close()
}
