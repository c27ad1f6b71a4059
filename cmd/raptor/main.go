// raptor runs a solution file against a problem definition, or drops into
// an interactive session. It stands in for the problem-loading and result
// display collaborators around the execution engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"practiceraptor/internal/executor"
	appErr "practiceraptor/pkg/errors"
	"practiceraptor/pkg/utils/logger"
)

const defaultConfigPath = "configs/raptor.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	problemPath := flag.String("problem", "", "Path to problem YAML file")
	solutionPath := flag.String("solution", "", "Path to solution source file")
	timeout := flag.Int("timeout", 0, "Override per-test timeout in seconds")
	interactive := flag.Bool("interactive", false, "Start an interactive session")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	exec := executor.New(cfg.Executor)
	ctx := context.Background()

	if *interactive {
		newSession(exec, *timeout).run(ctx)
		return
	}

	if *problemPath == "" || *solutionPath == "" {
		fmt.Fprintln(os.Stderr, "usage: raptor -problem <file.yaml> -solution <file.lua> [-timeout N] | raptor -interactive")
		os.Exit(2)
	}

	ok, err := runProblem(ctx, exec, *problemPath, *solutionPath, *timeout, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if !ok {
		os.Exit(1)
	}
}

// runProblem executes one solution against one problem and renders the
// results. Returns whether every test passed.
func runProblem(ctx context.Context, exec *executor.Executor, problemPath, solutionPath string, timeoutOverride int, out *os.File) (bool, error) {
	problem, err := loadProblem(problemPath)
	if err != nil {
		return false, err
	}
	cases, err := problem.toTestCases()
	if err != nil {
		return false, err
	}
	code, err := os.ReadFile(solutionPath)
	if err != nil {
		return false, fmt.Errorf("read solution file failed: %w", err)
	}

	timeout := problem.TimeoutSeconds
	if timeoutOverride > 0 {
		timeout = timeoutOverride
	}

	result, err := exec.Execute(ctx, string(code), cases, problem.FunctionName, timeout)
	if err != nil {
		return false, fmt.Errorf("%s: %w", appErr.GetCode(err).Kind(), err)
	}
	renderResult(out, problem, result)
	return result.Success, nil
}

func renderResult(out *os.File, problem problemFile, result executor.ExecutionResult) {
	name := problem.Name
	if name == "" {
		name = problem.FunctionName
	}
	fmt.Fprintf(out, "%s: %d/%d tests\n", name, countPassed(result), len(problem.TestCases))
	for i, tr := range result.TestResults {
		label := tr.TestCase.Description
		if label == "" {
			label = fmt.Sprintf("test %d", i+1)
		}
		if tr.Passed {
			fmt.Fprintf(out, "  PASS %s (%dms)\n", label, tr.ExecutionMillis)
			continue
		}
		fmt.Fprintf(out, "  FAIL %s\n", label)
		if tr.ErrorMessage != "" {
			fmt.Fprintf(out, "       %s\n", tr.ErrorMessage)
		}
		if !tr.TestCase.Hidden && tr.TestCase.Input != nil {
			fmt.Fprintf(out, "       input: %v\n", formatInput(tr.TestCase))
		}
	}
	if result.Success {
		fmt.Fprintf(out, "accepted (%dms total)\n", result.TotalMillis)
	} else {
		fmt.Fprintln(out, "rejected")
	}
}

func countPassed(result executor.ExecutionResult) int {
	n := 0
	for _, tr := range result.TestResults {
		if tr.Passed {
			n++
		}
	}
	return n
}

func formatInput(tc executor.TestCase) string {
	names := make([]string, 0, len(tc.Input))
	for name := range tc.Input {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + tc.Input[name].String()
	}
	return strings.Join(parts, ", ")
}
