// raptor-worker is the isolated execution helper. The supervisor spawns one
// instance per test case with a job encoded as JSON on stdin; the single
// outcome is written as JSON to stdout. Anything on stderr is diagnostics.
package main

import (
	"fmt"
	"os"

	"practiceraptor/internal/protocol"
	"practiceraptor/internal/worker"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run() error {
	job, err := protocol.ReadJob(os.Stdin)
	if err != nil {
		return err
	}
	if err := applyMemoryLimit(job.MemoryLimitMB); err != nil {
		return err
	}
	return protocol.WriteOutcome(os.Stdout, worker.Run(job))
}
