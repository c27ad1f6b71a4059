package errors_test

import (
	"errors"
	"testing"

	appErr "practiceraptor/pkg/errors"
)

func TestErrorCodeMessage(t *testing.T) {
	tests := []struct {
		code appErr.ErrorCode
		want string
	}{
		{appErr.Success, "Success"},
		{appErr.InternalError, "Internal error"},
		{appErr.SyntaxError, "Syntax error"},
		{appErr.WorkerVanished, "Worker exited without reporting a result"},
		{appErr.ErrorCode(99999), "Unknown error"},
	}
	for _, tt := range tests {
		if got := tt.code.Message(); got != tt.want {
			t.Errorf("Message(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestErrorCodeKind(t *testing.T) {
	tests := []struct {
		code appErr.ErrorCode
		want string
	}{
		{appErr.SyntaxError, "syntax"},
		{appErr.RuntimeFailure, "runtime"},
		{appErr.NameNotFound, "runtime"},
		{appErr.TimeoutExceeded, "runtime"},
		{appErr.InternalError, "runtime"},
	}
	for _, tt := range tests {
		if got := tt.code.Kind(); got != tt.want {
			t.Errorf("Kind(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("underlying")
	err := appErr.Wrap(cause, appErr.WorkerSpawnError)

	if appErr.GetCode(err) != appErr.WorkerSpawnError {
		t.Errorf("GetCode() = %d, want WorkerSpawnError", appErr.GetCode(err))
	}
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(err, cause) = false, want true")
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want appErr.ErrorCode
	}{
		{"nil", nil, appErr.Success},
		{"typed error", appErr.New(appErr.Timeout), appErr.Timeout},
		{"foreign error", errors.New("plain"), appErr.InternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := appErr.GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWithDetail(t *testing.T) {
	err := appErr.SyntaxErrorAt(3, "unexpected symbol")
	if appErr.GetCode(err) != appErr.SyntaxError {
		t.Fatalf("GetCode() = %d, want SyntaxError", appErr.GetCode(err))
	}
	if err.Details["line"] != 3 {
		t.Errorf("Details[line] = %v, want 3", err.Details["line"])
	}
	if got, want := err.Message, "line 3: unexpected symbol"; got != want {
		t.Errorf("Message = %q, want %q", got, want)
	}
}

func TestIs(t *testing.T) {
	err := appErr.New(appErr.WorkerVanished)
	if !appErr.Is(err, appErr.WorkerVanished) {
		t.Errorf("Is(err, WorkerVanished) = false, want true")
	}
	if appErr.Is(err, appErr.Timeout) {
		t.Errorf("Is(err, Timeout) = true, want false")
	}
	if appErr.Is(nil, appErr.Timeout) {
		t.Errorf("Is(nil, Timeout) = true, want false")
	}
}
