// Package script provides the sandboxed Lua runtime that probe scripts
// execute in.
//
// This package wraps the gopher-lua library to provide:
//   - Sandboxed Lua state management
//   - Conversion between Lua values and native byte/number/map values
//   - A deterministic debug formatter for Lua values
//
// # State
//
// The State type manages a Lua runtime with sandboxing:
//
//	state, err := script.NewState()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer state.Close()
//
//	if err := state.DoFile("probe.lua"); err != nil {
//	    log.Fatal(err)
//	}
//
// The sandbox opens only the base, table, string and math libraries and
// removes the loaders (dofile, loadfile, load, loadstring) so scripts
// cannot pull code in from outside the file they were started from. The
// io, os, debug and package libraries are never opened.
//
// # Byte conversion
//
// Lua strings are 8-bit clean, so a single Lua string value carries both
// text and opaque byte sequences. Bytes accepts a string or an array of
// integers in [0,255]; BytesValue always returns a raw Lua string:
//
//	b, err := script.Bytes(lv)     // Lua value -> []byte
//	lv := script.BytesValue(b)     // []byte -> Lua value, never re-decoded
//
// Any out-of-range or non-integral number where a byte is expected is a
// ConversionError, never a silent truncation.
//
// # Bridge
//
// The Bridge converts structured values in both directions, in the same
// spirit as the byte helpers: array-shaped tables become slices, other
// tables become maps, and cycles are broken rather than recursed into.
//
//	bridge := script.NewBridge(state.LuaState())
//	lv := bridge.ToLua(map[string]any{"name": "test", "count": 42})
//	v := script.ToGo(lv)
package script
