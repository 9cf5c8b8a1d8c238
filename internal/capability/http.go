package capability

import (
	"context"
	"fmt"
	"net/http"

	lua "github.com/yuin/gopher-lua"

	"github.com/mglen/authprobe/internal/script"
	"github.com/mglen/authprobe/internal/transport"
)

// HTTPModule exposes the two-phase HTTP capabilities (http_mksession,
// http_request, http_send) plus the http_basic_auth probe.
type HTTPModule struct{}

// NewHTTPModule creates a new HTTP module.
func NewHTTPModule() *HTTPModule {
	return &HTTPModule{}
}

// Name returns the module name.
func (m *HTTPModule) Name() string {
	return "http"
}

// Register registers the module into the Lua state.
func (m *HTTPModule) Register(L *lua.LState, ctx *Context) error {
	L.SetGlobal("http_mksession", L.NewFunction(m.mksession(ctx)))
	L.SetGlobal("http_request", L.NewFunction(m.request(ctx)))
	L.SetGlobal("http_send", L.NewFunction(m.send(ctx)))
	L.SetGlobal("http_basic_auth", L.NewFunction(m.basicAuth(ctx)))
	return nil
}

// http_mksession() -> sessionId
func (m *HTTPModule) mksession(ctx *Context) lua.LGFunction {
	return func(L *lua.LState) int {
		checkArity(L, 0)
		L.Push(lua.LString(ctx.Store().CreateSession()))
		return 1
	}
}

// http_request(sessionId, method, url, options) -> requestId
// Option validation is pure; nothing is sent until http_send.
func (m *HTTPModule) request(ctx *Context) lua.LGFunction {
	return func(L *lua.LState) int {
		checkArity(L, 4)
		session := L.CheckString(1)
		method := L.CheckString(2)
		url := L.CheckString(3)

		opts, err := parseOptionsValue(L.CheckAny(4))
		if err != nil {
			L.Push(ctx.SetError(err))
			return 1
		}

		id, err := ctx.Store().BuildRequest(session, method, url, opts)
		if err != nil {
			L.Push(ctx.SetError(err))
			return 1
		}

		L.Push(lua.LString(id))
		return 1
	}
}

// http_send(requestId) -> response
// The request token is consumed: a second send on the same token fails
// with an unknown-request error.
func (m *HTTPModule) send(ctx *Context) lua.LGFunction {
	return func(L *lua.LState) int {
		checkArity(L, 1)
		id := L.CheckString(1)

		resp, err := ctx.Store().SendRequest(context.Background(), id)
		if err != nil {
			L.Push(ctx.SetError(err))
			return 1
		}

		L.Push(responseValue(L, resp))
		return 1
	}
}

// http_basic_auth(url, user, password) -> bool
// Authorized means the server neither challenged again nor returned 401.
func (m *HTTPModule) basicAuth(ctx *Context) lua.LGFunction {
	return func(L *lua.LState) int {
		checkArity(L, 3)
		url := L.CheckString(1)
		user := L.CheckString(2)
		password := L.CheckString(3)

		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			L.Push(ctx.SetError(fmt.Errorf("building http request: %w", err)))
			return 1
		}
		req.SetBasicAuth(user, password)

		client := &http.Client{Timeout: transport.DefaultTimeout}
		resp, err := client.Do(req)
		if err != nil {
			L.Push(ctx.SetError(fmt.Errorf("http request failed: %w", err)))
			return 1
		}
		defer resp.Body.Close()

		authorized := resp.Header.Get("Www-Authenticate") == "" &&
			resp.StatusCode != http.StatusUnauthorized
		L.Push(lua.LBool(authorized))
		return 1
	}
}

// parseOptionsValue converts the script-side options value. Nil means
// defaults; anything that is not a mapping is an options error.
func parseOptionsValue(lv lua.LValue) (*transport.RequestOptions, error) {
	if lv == lua.LNil {
		return nil, nil
	}

	m, ok := script.ToGo(lv).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: options must be a table", transport.ErrInvalidOptions)
	}
	return transport.ParseOptions(m)
}

// responseValue renders a response as a script value: status, body and an
// ordered header list with duplicate names preserved. The body stays a raw
// byte string; it is never assumed to be valid text.
func responseValue(L *lua.LState, resp *transport.Response) lua.LValue {
	headers := make([]any, len(resp.Headers))
	for i, h := range resp.Headers {
		headers[i] = map[string]any{"name": h.Name, "value": h.Value}
	}

	return script.NewBridge(L).ToLua(map[string]any{
		"status":  resp.Status,
		"body":    resp.Body,
		"headers": headers,
	})
}
