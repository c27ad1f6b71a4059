package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 11000-11999: Validation errors
// 12000-12999: Execution engine errors

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalError ErrorCode = 10001
	InvalidParams ErrorCode = 10002
	NotFound      ErrorCode = 10003
	Timeout       ErrorCode = 10004

	// ========== Validation Errors (11000-11999) ==========

	ValidationFailed   ErrorCode = 11000
	InvalidFormat      ErrorCode = 11001
	InvalidValue       ErrorCode = 11002
	RequiredFieldEmpty ErrorCode = 11003

	// ========== Execution Engine Errors (12000-12999) ==========

	// Pre-flight (12000-12099)
	SyntaxError ErrorCode = 12000

	// Per-test outcomes (12100-12199)
	NameNotFound    ErrorCode = 12100
	RuntimeFailure  ErrorCode = 12101
	TimeoutExceeded ErrorCode = 12102

	// Supervisor/worker plumbing (12200-12299)
	WorkerVanished   ErrorCode = 12200
	WorkerSpawnError ErrorCode = 12201
	ProtocolError    ErrorCode = 12202
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	// System & Common
	Success:       "Success",
	InternalError: "Internal error",
	InvalidParams: "Invalid parameters",
	NotFound:      "Resource not found",
	Timeout:       "Operation timed out",

	// Validation
	ValidationFailed:   "Validation failed",
	InvalidFormat:      "Invalid format",
	InvalidValue:       "Invalid value",
	RequiredFieldEmpty: "Required field is empty",

	// Execution engine
	SyntaxError:     "Syntax error",
	NameNotFound:    "Function not found in submitted code",
	RuntimeFailure:  "Runtime error",
	TimeoutExceeded: "Time limit exceeded",

	// Supervisor/worker plumbing
	WorkerVanished:   "Worker exited without reporting a result",
	WorkerSpawnError: "Failed to start worker process",
	ProtocolError:    "Malformed worker outcome",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// Kind returns the external classification string exposed at the API
// boundary. Only syntax and runtime exist there; everything that is not a
// pre-flight parse failure is reported as runtime.
func (c ErrorCode) Kind() string {
	if c == SyntaxError {
		return "syntax"
	}
	return "runtime"
}
