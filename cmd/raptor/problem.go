package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"practiceraptor/internal/executor"
	"practiceraptor/internal/protocol"
)

// problemFile is the on-disk problem definition: the declared function name
// plus test cases with named inputs and an expected value.
type problemFile struct {
	Name           string         `yaml:"name"`
	FunctionName   string         `yaml:"functionName"`
	TimeoutSeconds int            `yaml:"timeoutSeconds"`
	TestCases      []testCaseFile `yaml:"testCases"`
}

type testCaseFile struct {
	Description string                 `yaml:"description"`
	Hidden      bool                   `yaml:"hidden"`
	Input       map[string]interface{} `yaml:"input"`
	Expected    interface{}            `yaml:"expected"`
}

func loadProblem(path string) (problemFile, error) {
	var p problemFile
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read problem file failed: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse problem file failed: %w", err)
	}
	if p.FunctionName == "" {
		return p, fmt.Errorf("problem file is missing functionName")
	}
	return p, nil
}

func (p problemFile) toTestCases() ([]executor.TestCase, error) {
	cases := make([]executor.TestCase, 0, len(p.TestCases))
	for i, tc := range p.TestCases {
		input := make(map[string]protocol.Value, len(tc.Input))
		for name, raw := range tc.Input {
			value, err := protocol.FromGo(raw)
			if err != nil {
				return nil, fmt.Errorf("test case %d input %q: %w", i+1, name, err)
			}
			input[name] = value
		}
		expected, err := protocol.FromGo(tc.Expected)
		if err != nil {
			return nil, fmt.Errorf("test case %d expected value: %w", i+1, err)
		}
		cases = append(cases, executor.TestCase{
			Input:       input,
			Expected:    expected,
			Description: tc.Description,
			Hidden:      tc.Hidden,
		})
	}
	return cases, nil
}
