package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/shlex"

	"practiceraptor/internal/executor"
)

// session holds interactive state: the currently loaded problem.
type session struct {
	exec            *executor.Executor
	timeoutOverride int
	problem         *problemFile
	problemPath     string
	out             *bufio.Writer
}

func newSession(exec *executor.Executor, timeoutOverride int) *session {
	return &session{
		exec:            exec,
		timeoutOverride: timeoutOverride,
		out:             bufio.NewWriter(os.Stdout),
	}
}

func (s *session) run(ctx context.Context) {
	reader := bufio.NewReader(os.Stdin)
	s.printLine("raptor interactive session, type 'help' for commands")
	for {
		_, _ = s.out.WriteString("raptor> ")
		_ = s.out.Flush()
		line, err := reader.ReadString('\n')
		if err != nil {
			s.printLine("read input failed: %v", err)
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			s.printLine("bye")
			return
		}
		if err := s.handleCommand(ctx, line); err != nil {
			s.printLine("error: %v", err)
		}
	}
}

func (s *session) handleCommand(ctx context.Context, line string) error {
	tokens, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("parse command failed: %w", err)
	}
	if len(tokens) == 0 {
		// Comment-only input tokenizes to nothing.
		return nil
	}
	switch tokens[0] {
	case "help":
		s.printHelp()
		return nil
	case "load":
		if len(tokens) < 2 {
			return fmt.Errorf("usage: load <problem.yaml>")
		}
		return s.loadProblem(tokens[1])
	case "show":
		s.showProblem()
		return nil
	case "run":
		if len(tokens) < 2 {
			return fmt.Errorf("usage: run <solution.lua>")
		}
		return s.runSolution(ctx, tokens[1])
	default:
		return fmt.Errorf("unknown command: %s", tokens[0])
	}
}

func (s *session) loadProblem(path string) error {
	problem, err := loadProblem(path)
	if err != nil {
		return err
	}
	s.problem = &problem
	s.problemPath = path
	name := problem.Name
	if name == "" {
		name = problem.FunctionName
	}
	s.printLine("loaded %q: function %s, %d test cases", name, problem.FunctionName, len(problem.TestCases))
	return nil
}

func (s *session) showProblem() {
	if s.problem == nil {
		s.printLine("no problem loaded, use: load <problem.yaml>")
		return
	}
	s.printLine("problem: %s (%s)", s.problem.Name, s.problemPath)
	s.printLine("function: %s", s.problem.FunctionName)
	for i, tc := range s.problem.TestCases {
		if tc.Hidden {
			s.printLine("  test %d: <hidden>", i+1)
			continue
		}
		s.printLine("  test %d: %s", i+1, tc.Description)
	}
}

func (s *session) runSolution(ctx context.Context, path string) error {
	if s.problem == nil {
		return fmt.Errorf("no problem loaded, use: load <problem.yaml>")
	}
	ok, err := runProblem(ctx, s.exec, s.problemPath, path, s.timeoutOverride, os.Stdout)
	if err != nil {
		return err
	}
	if !ok {
		s.printLine("keep trying")
	}
	return nil
}

func (s *session) printHelp() {
	s.printLine("commands:")
	s.printLine("  load <problem.yaml>   load a problem definition")
	s.printLine("  show                  show the loaded problem")
	s.printLine("  run <solution.lua>    run a solution against the loaded problem")
	s.printLine("  exit                  leave the session")
}

func (s *session) printLine(format string, args ...interface{}) {
	_, _ = s.out.WriteString(fmt.Sprintf(format, args...))
	_, _ = s.out.WriteString("\n")
	_ = s.out.Flush()
}
