package lua

import (
	lua "github.com/yuin/gopher-lua"
)

// installSandbox removes the functions that could load code from disk or
// bypass the library selection, and restricts require to preloaded
// modules.
func installSandbox(L *lua.LState) {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}

	preload := L.NewTable()
	L.SetGlobal("require", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		switch name {
		case "string", "table", "math":
			L.Push(L.GetGlobal(name))
			return 1
		}
		loader, ok := preload.RawGetString(name).(*lua.LFunction)
		if !ok {
			L.RaiseError("module %q is not available", name)
			return 0
		}
		L.Push(loader)
		L.Call(0, 1)
		return 1
	}))

	pkg := L.NewTable()
	L.SetField(pkg, "preload", preload)
	L.SetGlobal("package", pkg)
}
