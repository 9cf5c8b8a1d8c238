// Package capability implements the catalog of host operations exposed to
// probe scripts as Lua globals.
//
// Each operation family implements the Module interface:
//
//	type Module interface {
//	    Name() string
//	    Register(L *lua.LState, ctx *Context) error
//	}
//
// Modules are registered into a Registry once during setup and installed
// into a Lua state together with the execution context they operate on.
//
// # Error tiers
//
// Failures split into two disjoint tiers:
//
//   - Programmer errors (wrong argument count or type, values that cannot
//     be converted to the declared native type) raise a Lua error at the
//     marshalling boundary, before any side effect.
//   - Operational errors (network faults, protocol failures, malformed
//     encoded input, unknown session or request tokens) are written to the
//     context's error slot and surfaced to the script as false, so script
//     code can branch on failure without pcall. The message is retrieved
//     with last_err().
//
// From Lua:
//
//	local session = http_mksession()
//	local req = http_request(session, "GET", url, {})
//	local resp = http_send(req)
//	if resp == false then
//	    print(last_err())
//	    return false
//	end
//	return resp.status == 200
package capability
