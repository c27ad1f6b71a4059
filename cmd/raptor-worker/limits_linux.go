//go:build linux

package main

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// applyMemoryLimit caps heap growth before any user code runs. RLIMIT_DATA
// rather than RLIMIT_AS, so the runtime's address-space reservations do not
// count against the limit. Exceeding it kills the interpreter without an
// outcome, which the supervisor reports as an internal inconsistency.
func applyMemoryLimit(limitMB int) error {
	if limitMB <= 0 {
		return nil
	}
	bytes := uint64(limitMB) * 1024 * 1024
	if err := unix.Setrlimit(unix.RLIMIT_DATA, &unix.Rlimit{Cur: bytes, Max: bytes}); err != nil {
		return fmt.Errorf("set rlimit data: %w", err)
	}
	return nil
}
