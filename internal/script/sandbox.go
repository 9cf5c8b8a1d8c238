package script

import (
	lua "github.com/yuin/gopher-lua"
)

// openSafeLibraries opens only safe Lua standard libraries.
func openSafeLibraries(L *lua.LState) {
	// Open base library (print, type, pairs, ipairs, etc.)
	lua.OpenBase(L)

	// Open safe libraries
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Note: These are intentionally NOT opened:
	// - io (file system access)
	// - os (system calls; process execution goes through the execve capability)
	// - debug (can bypass sandbox)
	// - package (can load arbitrary modules)
}

// installSandbox removes functions that would let a script load code from
// outside the file it was started from.
func installSandbox(L *lua.LState) {
	loaders := []string{
		"dofile",     // Load and execute file
		"loadfile",   // Load file as function
		"load",       // Load string as function
		"loadstring", // Load string as function (deprecated but may exist)
	}

	for _, name := range loaders {
		L.SetGlobal(name, lua.LNil)
	}
}
