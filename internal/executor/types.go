package executor

import (
	"practiceraptor/internal/protocol"
)

// TestCase is one input/expected pair supplied by the problem collaborator.
// Input values are opaque semi-structured data keyed by parameter name.
type TestCase struct {
	Input       map[string]protocol.Value
	Expected    protocol.Value
	Description string
	Hidden      bool
}

// TestResult is the evaluated outcome of one test case. Created once per
// evaluated case, never mutated.
type TestResult struct {
	TestCase        TestCase
	Passed          bool
	Actual          *protocol.Value
	ExecutionMillis int64
	ErrorMessage    string
}

// ExecutionResult aggregates a run. Success is true iff every test case was
// attempted and passed; evaluation stops at the first failure, so
// TestResults may be shorter than the supplied test case list.
type ExecutionResult struct {
	Success     bool
	TestResults []TestResult
	TotalMillis int64
}
