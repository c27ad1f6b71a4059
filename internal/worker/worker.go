// Package worker is the entry point that runs inside the isolated process.
// It executes the submitted source in the sandbox environment, invokes the
// requested function with the test input, and reports exactly one outcome
// on the result channel. Nothing else ever reaches the supervisor.
package worker

import (
	"fmt"
	"io"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"practiceraptor/internal/protocol"
	"practiceraptor/internal/sandbox"
)

const chunkName = "<solution>"

// Main decodes one job from r, runs it and writes the outcome to w.
// It is the body of the worker helper binary.
func Main(r io.Reader, w io.Writer) error {
	job, err := protocol.ReadJob(r)
	if err != nil {
		// A malformed job is a supervisor bug, not a user failure; exit
		// without an outcome so it surfaces as an internal error upstream.
		return err
	}
	return protocol.WriteOutcome(w, Run(job))
}

// Run executes one job and always produces an outcome. User-code failures
// of any shape, including interpreter panics, are converted to failure
// outcomes rather than escaping.
func Run(job protocol.Job) (outcome protocol.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = protocol.FailureOutcome(protocol.ErrorClassRuntime, fmt.Sprintf("panic: %v", r))
		}
	}()

	L := sandbox.NewState()
	defer L.Close()

	if failure := loadSubmission(L, job.Code); failure != nil {
		return *failure
	}

	target := L.GetGlobal(job.FunctionName)
	if target == lua.LNil {
		return protocol.FailureOutcome(
			protocol.ErrorClassNameNotFound,
			fmt.Sprintf("Function %q not found in code", job.FunctionName),
		)
	}

	args, failure := bindNamedArguments(L, target, job.Input)
	if failure != nil {
		return *failure
	}

	// Only the invocation is timed; environment setup is excluded.
	start := time.Now()
	err := L.CallByParam(lua.P{Fn: target, NRet: 1, Protect: true}, args...)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		return protocol.FailureOutcome(protocol.ErrorClassRuntime, describeError(err))
	}

	ret := L.Get(-1)
	L.Pop(1)
	value, convErr := sandbox.FromLua(ret)
	if convErr != nil {
		return protocol.FailureOutcome(protocol.ErrorClassRuntime, convErr.Error())
	}
	return protocol.SuccessOutcome(value, elapsed)
}

// loadSubmission compiles and executes the submitted source inside the
// sandbox state so its top-level definitions land in the restricted
// environment. Parse failures are classified syntax, execution failures
// runtime.
func loadSubmission(L *lua.LState, code string) *protocol.Outcome {
	chunk, err := parse.Parse(strings.NewReader(code), chunkName)
	if err != nil {
		failure := protocol.FailureOutcome(protocol.ErrorClassSyntax, "Syntax error: "+err.Error())
		return &failure
	}
	proto, err := lua.Compile(chunk, chunkName)
	if err != nil {
		failure := protocol.FailureOutcome(protocol.ErrorClassSyntax, "Syntax error: "+err.Error())
		return &failure
	}

	fn := L.NewFunctionFromProto(proto)
	L.Push(fn)
	if err := L.PCall(0, 0, nil); err != nil {
		failure := protocol.FailureOutcome(protocol.ErrorClassRuntime, describeError(err))
		return &failure
	}
	return nil
}

// bindNamedArguments orders the input mapping by the callable's declared
// parameter names. Input keys must cover the parameter list exactly.
func bindNamedArguments(L *lua.LState, target lua.LValue, input map[string]protocol.Value) ([]lua.LValue, *protocol.Outcome) {
	lfn, ok := target.(*lua.LFunction)
	if !ok || lfn.IsG {
		if len(input) == 0 {
			return nil, nil
		}
		failure := protocol.FailureOutcome(
			protocol.ErrorClassRuntime,
			"cannot bind named arguments: target has no declared parameters",
		)
		return nil, &failure
	}

	params := parameterNames(lfn.Proto)
	if params == nil {
		failure := protocol.FailureOutcome(
			protocol.ErrorClassRuntime,
			"cannot bind named arguments: parameter names unavailable",
		)
		return nil, &failure
	}

	declared := make(map[string]bool, len(params))
	args := make([]lua.LValue, 0, len(params))
	for _, name := range params {
		declared[name] = true
		value, ok := input[name]
		if !ok {
			failure := protocol.FailureOutcome(
				protocol.ErrorClassRuntime,
				fmt.Sprintf("missing argument for parameter %q", name),
			)
			return nil, &failure
		}
		arg, err := sandbox.ToLua(L, value)
		if err != nil {
			failure := protocol.FailureOutcome(
				protocol.ErrorClassRuntime,
				fmt.Sprintf("argument %q: %s", name, err.Error()),
			)
			return nil, &failure
		}
		args = append(args, arg)
	}
	for name := range input {
		if !declared[name] {
			failure := protocol.FailureOutcome(
				protocol.ErrorClassRuntime,
				fmt.Sprintf("unknown parameter %q", name),
			)
			return nil, &failure
		}
	}
	return args, nil
}

// parameterNames reads the declared parameter names out of the compiled
// prototype's debug locals. The compiler registers parameters first.
func parameterNames(proto *lua.FunctionProto) []string {
	n := int(proto.NumParameters)
	if n > len(proto.DbgLocals) {
		return nil
	}
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = proto.DbgLocals[i].Name
	}
	return names
}

func describeError(err error) string {
	if apiErr, ok := err.(*lua.ApiError); ok {
		if s, ok := apiErr.Object.(lua.LString); ok {
			return "runtime error: " + string(s)
		}
		return fmt.Sprintf("runtime error (%s): %s", apiErr.Object.Type(), apiErr.Object.String())
	}
	return "runtime error: " + err.Error()
}
