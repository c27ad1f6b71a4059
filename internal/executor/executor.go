// Package executor is the public entry point of the execution engine: it
// validates submitted source, runs it against test cases inside isolated
// worker processes, and aggregates pass/fail/error/timeout outcomes.
package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/gopher-lua/parse"
	"go.uber.org/zap"

	"practiceraptor/internal/compare"
	"practiceraptor/internal/protocol"
	"practiceraptor/internal/supervisor"
	appErr "practiceraptor/pkg/errors"
	"practiceraptor/pkg/utils/contextkey"
	"practiceraptor/pkg/utils/logger"
)

// Executor runs untrusted submissions. It holds no mutable state between
// Execute calls; concurrent calls each spawn their own process tree.
type Executor struct {
	cfg Config
	sup *supervisor.Supervisor
}

// New creates an executor backed by real worker processes.
func New(cfg Config) *Executor {
	cfg = cfg.withDefaults()
	sup := supervisor.New(supervisor.Config{HelperPath: cfg.HelperPath})
	return &Executor{cfg: cfg, sup: sup}
}

// NewWithSupervisor creates an executor with an injected supervisor.
func NewWithSupervisor(cfg Config, sup *supervisor.Supervisor) *Executor {
	return &Executor{cfg: cfg.withDefaults(), sup: sup}
}

// ValidateSyntax parses the source with the interpreter's own grammar
// without executing it. Empty source is valid.
func (e *Executor) ValidateSyntax(code string) error {
	if _, err := parse.Parse(strings.NewReader(code), "<solution>"); err != nil {
		if perr, ok := err.(*parse.Error); ok {
			return appErr.SyntaxErrorAt(perr.Pos.Line, perr.Message)
		}
		return appErr.Wrap(err, appErr.SyntaxError)
	}
	return nil
}

// Execute runs the submission against the test cases in order, stopping at
// the first non-passing result. timeoutSeconds <= 0 falls back to the
// configured default. Per-test failures (wrong answer, runtime error,
// timeout) are data inside the returned ExecutionResult; a non-nil error is
// returned only when no result can be produced at all: syntax failure,
// invalid arguments, or an internal inconsistency such as a worker exiting
// without reporting.
func (e *Executor) Execute(ctx context.Context, code string, testCases []TestCase, functionName string, timeoutSeconds int) (ExecutionResult, error) {
	if functionName == "" {
		return ExecutionResult{}, appErr.ValidationError("function_name", "required")
	}
	if err := e.ValidateSyntax(code); err != nil {
		return ExecutionResult{}, err
	}

	if timeoutSeconds <= 0 {
		timeoutSeconds = e.cfg.TimeoutSeconds
	}
	timeout := time.Duration(timeoutSeconds) * time.Second

	runID := uuid.NewString()
	ctx = context.WithValue(ctx, contextkey.RunID, runID)
	logger.Debug(ctx, "execution started",
		zap.String("function", functionName),
		zap.Int("test_cases", len(testCases)),
		zap.Int("timeout_seconds", timeoutSeconds))

	results := make([]TestResult, 0, len(testCases))
	var totalMillis int64
	allPassed := true

	for i, tc := range testCases {
		caseCtx := context.WithValue(ctx, contextkey.TestIndex, i)
		result, err := e.runSingle(caseCtx, code, functionName, tc, timeout, timeoutSeconds, fmt.Sprintf("%s-%d", runID, i))
		if err != nil {
			return ExecutionResult{}, err
		}

		results = append(results, result)
		totalMillis += result.ExecutionMillis

		if !result.Passed {
			allPassed = false
			break // fail fast: later tests are irrelevant
		}
	}

	return ExecutionResult{
		Success:     allPassed,
		TestResults: results,
		TotalMillis: totalMillis,
	}, nil
}

func (e *Executor) runSingle(ctx context.Context, code, functionName string, tc TestCase, timeout time.Duration, timeoutSeconds int, runID string) (TestResult, error) {
	job := protocol.Job{
		RunID:         runID,
		Code:          code,
		FunctionName:  functionName,
		Input:         protocol.CloneInput(tc.Input),
		MemoryLimitMB: e.cfg.MemoryLimitMB,
	}

	res, err := e.sup.RunOne(ctx, job, timeout)
	if err != nil {
		if appErr.Is(err, appErr.WorkerVanished) {
			// Worker died without a word, e.g. killed by the OS for
			// resource exhaustion. No per-test diagnosis is possible.
			return TestResult{}, appErr.GetError(err).
				WithMessage("Process terminated unexpectedly").
				WithDetail("memory_limit_mb", e.cfg.MemoryLimitMB)
		}
		return TestResult{}, err
	}

	if res.TimedOut {
		return TestResult{
			TestCase:     tc,
			Passed:       false,
			ErrorMessage: fmt.Sprintf("Timeout: exceeded %ds", timeoutSeconds),
		}, nil
	}

	outcome := res.Outcome
	if !outcome.Success {
		return TestResult{
			TestCase:     tc,
			Passed:       false,
			ErrorMessage: outcome.ErrorMessage,
		}, nil
	}

	actual := outcome.Return
	passed := compare.Equivalent(actual, tc.Expected)
	errorMessage := ""
	if !passed {
		errorMessage = fmt.Sprintf("Expected %s, got %s", tc.Expected, actual)
	}
	return TestResult{
		TestCase:        tc,
		Passed:          passed,
		Actual:          &actual,
		ExecutionMillis: outcome.ElapsedMillis,
		ErrorMessage:    errorMessage,
	}, nil
}
