package sandbox_test

import (
	"testing"

	lua "github.com/yuin/gopher-lua"

	"practiceraptor/internal/sandbox"
)

func TestNewStateExposesWhitelist(t *testing.T) {
	L := sandbox.NewState()
	defer L.Close()

	present := []string{
		"assert", "error", "pcall", "xpcall",
		"ipairs", "next", "pairs", "select", "unpack",
		"tonumber", "tostring", "type",
		"rawequal", "rawget", "rawset",
		"getmetatable", "setmetatable",
		"math", "string", "table",
	}
	for _, name := range present {
		if L.GetGlobal(name) == lua.LNil {
			t.Errorf("global %q missing from sandbox environment", name)
		}
	}
}

func TestNewStateHidesDangerousGlobals(t *testing.T) {
	L := sandbox.NewState()
	defer L.Close()

	absent := []string{
		"io", "os", "require", "package", "module",
		"dofile", "loadfile", "load", "loadstring",
		"print", "collectgarbage", "coroutine", "debug",
		"_G", "getfenv", "setfenv",
	}
	for _, name := range absent {
		if L.GetGlobal(name) != lua.LNil {
			t.Errorf("global %q leaked into sandbox environment", name)
		}
	}
}

func TestNewStateFiltersModuleMembers(t *testing.T) {
	L := sandbox.NewState()
	defer L.Close()

	tests := []struct {
		module string
		member string
		want   bool
	}{
		{"math", "sqrt", true},
		{"math", "pi", true},
		{"math", "random", false},
		{"math", "randomseed", false},
		{"string", "format", true},
		{"string", "rep", true},
		{"string", "dump", false},
		{"table", "sort", true},
		{"table", "insert", true},
	}
	for _, tt := range tests {
		mod := L.GetGlobal(tt.module)
		got := L.GetField(mod, tt.member) != lua.LNil
		if got != tt.want {
			t.Errorf("%s.%s present = %v, want %v", tt.module, tt.member, got, tt.want)
		}
	}
}

func TestSandboxedChunkCanCompute(t *testing.T) {
	L := sandbox.NewState()
	defer L.Close()

	if err := L.DoString(`result = math.floor(7.9) + string.len("abc")`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if got := L.GetGlobal("result"); got != lua.LNumber(10) {
		t.Errorf("result = %v, want 10", got)
	}
}

func TestSandboxedChunkCannotEscape(t *testing.T) {
	L := sandbox.NewState()
	defer L.Close()

	scripts := []string{
		`io.write("x")`,
		`os.execute("true")`,
		`require("os")`,
		`loadstring("return 1")()`,
	}
	for _, script := range scripts {
		if err := L.DoString(script); err == nil {
			t.Errorf("DoString(%q) succeeded, want error", script)
		}
	}
}
