package protocol

import (
	"encoding/json"
	"io"

	appErr "practiceraptor/pkg/errors"
)

// Error classes a worker may report. Timeout is never reported by the
// worker; the supervisor detects it.
const (
	ErrorClassSyntax       = "syntax"
	ErrorClassNameNotFound = "name-not-found"
	ErrorClassRuntime      = "runtime"
)

// Job is the request sent to a worker process over stdin. The input mapping
// must already be a private deep copy; the worker owns it afterwards.
type Job struct {
	RunID         string           `json:"run_id"`
	Code          string           `json:"code"`
	FunctionName  string           `json:"function_name"`
	Input         map[string]Value `json:"input"`
	MemoryLimitMB int              `json:"memory_limit_mb,omitempty"`
}

// Outcome is the one-shot message a worker writes to stdout. Exactly one of
// the success/failure halves is populated.
type Outcome struct {
	Success       bool   `json:"success"`
	Return        Value  `json:"return,omitempty"`
	ElapsedMillis int64  `json:"elapsed_ms,omitempty"`
	ErrorClass    string `json:"error_class,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

// SuccessOutcome builds a success variant.
func SuccessOutcome(ret Value, elapsedMillis int64) Outcome {
	return Outcome{Success: true, Return: ret, ElapsedMillis: elapsedMillis}
}

// FailureOutcome builds a failure variant.
func FailureOutcome(class, message string) Outcome {
	return Outcome{Success: false, Return: Null(), ErrorClass: class, ErrorMessage: message}
}

// WriteJob encodes a job onto the worker's stdin stream.
func WriteJob(w io.Writer, job Job) error {
	if err := json.NewEncoder(w).Encode(job); err != nil {
		return appErr.Wrapf(err, appErr.ProtocolError, "encode job failed")
	}
	return nil
}

// ReadJob decodes the job from stdin inside the worker.
func ReadJob(r io.Reader) (Job, error) {
	var job Job
	if err := json.NewDecoder(r).Decode(&job); err != nil {
		return Job{}, appErr.Wrapf(err, appErr.ProtocolError, "decode job failed")
	}
	if job.Input == nil {
		job.Input = map[string]Value{}
	}
	return job, nil
}

// WriteOutcome encodes the one-shot outcome onto the worker's stdout.
func WriteOutcome(w io.Writer, outcome Outcome) error {
	if err := json.NewEncoder(w).Encode(outcome); err != nil {
		return appErr.Wrapf(err, appErr.ProtocolError, "encode outcome failed")
	}
	return nil
}

// DecodeOutcome parses the bytes collected from a worker's stdout. An empty
// buffer means the worker exited without reporting; callers must treat that
// as a distinct condition, so it is reported as WorkerVanished.
func DecodeOutcome(data []byte) (Outcome, error) {
	trimmed := 0
	for trimmed < len(data) && (data[trimmed] == ' ' || data[trimmed] == '\n' || data[trimmed] == '\t' || data[trimmed] == '\r') {
		trimmed++
	}
	if trimmed == len(data) {
		return Outcome{}, appErr.New(appErr.WorkerVanished)
	}
	var outcome Outcome
	if err := json.Unmarshal(data[trimmed:], &outcome); err != nil {
		return Outcome{}, appErr.Wrapf(err, appErr.ProtocolError, "decode outcome failed")
	}
	if !outcome.Success {
		switch outcome.ErrorClass {
		case ErrorClassSyntax, ErrorClassNameNotFound, ErrorClassRuntime:
		default:
			return Outcome{}, appErr.Newf(appErr.ProtocolError, "unknown error class: %q", outcome.ErrorClass)
		}
	}
	return outcome, nil
}
