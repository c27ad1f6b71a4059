//go:build !linux

package main

// The memory limit is advisory on non-linux platforms.
func applyMemoryLimit(limitMB int) error {
	return nil
}
