// Package sandbox builds the restricted interpreter environment that
// submitted code runs in.
package sandbox

import (
	lua "github.com/yuin/gopher-lua"
)

// The capability whitelist. Anything not listed here does not exist inside
// the sandbox: the user chunk's environment is a fresh table populated only
// from these names, so io, os, require, load and the rest are absent by
// construction rather than removed after the fact.
var allowedGlobals = []string{
	// error machinery
	"assert",
	"error",
	"pcall",
	"xpcall",
	// iteration
	"ipairs",
	"next",
	"pairs",
	"select",
	"unpack",
	// conversions and introspection
	"tonumber",
	"tostring",
	"type",
	"rawequal",
	"rawget",
	"rawset",
	"getmetatable",
	"setmetatable",
}

// allowedModules lists the pure members copied from each standard module.
var allowedModules = map[string][]string{
	"math": {
		"abs", "ceil", "floor", "max", "min", "sqrt", "pow", "fmod", "modf",
		"exp", "log", "log10", "sin", "cos", "tan", "asin", "acos", "atan",
		"huge", "pi",
	},
	"string": {
		"byte", "char", "find", "format", "gmatch", "gsub", "len", "lower",
		"match", "rep", "reverse", "sub", "upper",
	},
	"table": {
		"concat", "insert", "maxn", "remove", "sort",
	},
}

// libLoaders are the standard libraries opened in the scratch globals that
// the whitelist is copied out of.
var libLoaders = []struct {
	name string
	fn   lua.LGFunction
}{
	{lua.LoadLibName, lua.OpenPackage},
	{lua.BaseLibName, lua.OpenBase},
	{lua.TabLibName, lua.OpenTable},
	{lua.StringLibName, lua.OpenString},
	{lua.MathLibName, lua.OpenMath},
}

// NewState creates an interpreter state whose global environment contains
// exactly the whitelisted capabilities. The full libraries are opened first
// into the state's original globals, then a fresh global table is built from
// the whitelist and swapped in; the original globals become unreachable from
// user code.
func NewState() *lua.LState {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:        true,
		CallStackSize:       256,
		RegistrySize:        1024 * 20,
		IncludeGoStackTrace: false,
	})

	for _, loader := range libLoaders {
		L.Push(L.NewFunction(loader.fn))
		L.Push(lua.LString(loader.name))
		L.Call(1, 0)
	}

	env := L.NewTable()
	for _, name := range allowedGlobals {
		env.RawSetString(name, L.GetGlobal(name))
	}
	for module, members := range allowedModules {
		src := L.GetGlobal(module)
		tbl := L.NewTable()
		for _, member := range members {
			tbl.RawSetString(member, L.GetField(src, member))
		}
		env.RawSetString(module, tbl)
	}

	L.G.Global = env
	L.Env = env
	return L
}
