package supervisor_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"practiceraptor/internal/protocol"
	"practiceraptor/internal/supervisor"
	appErr "practiceraptor/pkg/errors"
)

// fakeHandle is a scriptable worker process. Terminate and Kill behavior is
// configured per test to exercise each branch of the escalation machine.
type fakeHandle struct {
	done   chan struct{}
	stdout []byte
	stderr []byte

	terminated   bool
	killed       bool
	exitOnTerm   bool
	exitOnKill   bool
	terminateErr error
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{done: make(chan struct{})}
}

func (h *fakeHandle) Done() <-chan struct{}           { return h.done }
func (h *fakeHandle) Output() (stdout, stderr []byte) { return h.stdout, h.stderr }

func (h *fakeHandle) Terminate() error {
	h.terminated = true
	if h.exitOnTerm {
		close(h.done)
	}
	return h.terminateErr
}

func (h *fakeHandle) Kill() error {
	h.killed = true
	if h.exitOnKill {
		close(h.done)
	}
	return nil
}

func (h *fakeHandle) exitWith(outcome protocol.Outcome) {
	data, _ := json.Marshal(outcome)
	h.stdout = data
	close(h.done)
}

type fakeController struct {
	handle   *fakeHandle
	startErr error
	started  int
	lastJob  protocol.Job
}

func (c *fakeController) Start(_ context.Context, job protocol.Job) (supervisor.Handle, error) {
	c.started++
	c.lastJob = job
	if c.startErr != nil {
		return nil, c.startErr
	}
	return c.handle, nil
}

func TestRunOneDeliversOutcome(t *testing.T) {
	handle := newFakeHandle()
	handle.exitWith(protocol.SuccessOutcome(protocol.IntValue(10), 3))
	sup := supervisor.NewWithController(&fakeController{handle: handle}, time.Second)

	result, err := sup.RunOne(context.Background(), protocol.Job{RunID: "r"}, time.Second)
	if err != nil {
		t.Fatalf("RunOne() error = %v", err)
	}
	if result.TimedOut {
		t.Errorf("TimedOut = true, want false")
	}
	if !result.Outcome.Success || result.Outcome.Return.Int != 10 {
		t.Errorf("Outcome = %+v, want success with return 10", result.Outcome)
	}
	if handle.terminated || handle.killed {
		t.Errorf("signals sent to a worker that exited on its own")
	}
}

func TestRunOneSpawnFailure(t *testing.T) {
	sup := supervisor.NewWithController(&fakeController{startErr: errors.New("no binary")}, time.Second)

	_, err := sup.RunOne(context.Background(), protocol.Job{RunID: "r"}, time.Second)
	if appErr.GetCode(err) != appErr.WorkerSpawnError {
		t.Errorf("RunOne() code = %d, want WorkerSpawnError", appErr.GetCode(err))
	}
}

func TestRunOneTimeoutGracefulExit(t *testing.T) {
	handle := newFakeHandle()
	handle.exitOnTerm = true
	sup := supervisor.NewWithController(&fakeController{handle: handle}, 50*time.Millisecond)

	result, err := sup.RunOne(context.Background(), protocol.Job{RunID: "r"}, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("RunOne() error = %v", err)
	}
	if !result.TimedOut {
		t.Fatalf("TimedOut = false, want true")
	}
	if !handle.terminated {
		t.Errorf("worker was never asked to terminate")
	}
	if handle.killed {
		t.Errorf("worker was killed despite honoring terminate")
	}
}

func TestRunOneTimeoutEscalatesToKill(t *testing.T) {
	handle := newFakeHandle()
	handle.exitOnTerm = false // ignores the polite signal
	handle.exitOnKill = true
	sup := supervisor.NewWithController(&fakeController{handle: handle}, 10*time.Millisecond)

	result, err := sup.RunOne(context.Background(), protocol.Job{RunID: "r"}, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("RunOne() error = %v", err)
	}
	if !result.TimedOut {
		t.Fatalf("TimedOut = false, want true")
	}
	if !handle.terminated || !handle.killed {
		t.Errorf("escalation incomplete: terminated=%v killed=%v", handle.terminated, handle.killed)
	}
}

func TestRunOneTerminateErrorStillKills(t *testing.T) {
	handle := newFakeHandle()
	handle.terminateErr = errors.New("process already gone")
	handle.exitOnKill = true
	sup := supervisor.NewWithController(&fakeController{handle: handle}, 10*time.Millisecond)

	result, err := sup.RunOne(context.Background(), protocol.Job{RunID: "r"}, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("RunOne() error = %v", err)
	}
	if !result.TimedOut || !handle.killed {
		t.Errorf("TimedOut=%v killed=%v, want both true", result.TimedOut, handle.killed)
	}
}

func TestRunOneContextCancellation(t *testing.T) {
	handle := newFakeHandle()
	handle.exitOnTerm = true
	sup := supervisor.NewWithController(&fakeController{handle: handle}, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sup.RunOne(ctx, protocol.Job{RunID: "r"}, time.Second)
	if appErr.GetCode(err) != appErr.Timeout {
		t.Errorf("RunOne() code = %d, want Timeout", appErr.GetCode(err))
	}
	if !handle.terminated {
		t.Errorf("cancelled run left the worker running")
	}
}

func TestRunOneVanishedWorker(t *testing.T) {
	handle := newFakeHandle()
	handle.stderr = []byte("fatal error: out of memory")
	close(handle.done) // exited with empty stdout

	sup := supervisor.NewWithController(&fakeController{handle: handle}, time.Second)
	_, err := sup.RunOne(context.Background(), protocol.Job{RunID: "r"}, time.Second)
	if appErr.GetCode(err) != appErr.WorkerVanished {
		t.Errorf("RunOne() code = %d, want WorkerVanished", appErr.GetCode(err))
	}
}

func TestRunOneMalformedOutcome(t *testing.T) {
	handle := newFakeHandle()
	handle.stdout = []byte("not json at all")
	close(handle.done)

	sup := supervisor.NewWithController(&fakeController{handle: handle}, time.Second)
	_, err := sup.RunOne(context.Background(), protocol.Job{RunID: "r"}, time.Second)
	if appErr.GetCode(err) != appErr.ProtocolError {
		t.Errorf("RunOne() code = %d, want ProtocolError", appErr.GetCode(err))
	}
}

func TestRunOneFailureOutcomePassesThrough(t *testing.T) {
	handle := newFakeHandle()
	handle.exitWith(protocol.FailureOutcome(protocol.ErrorClassNameNotFound, `Function "f" not found in code`))

	sup := supervisor.NewWithController(&fakeController{handle: handle}, time.Second)
	result, err := sup.RunOne(context.Background(), protocol.Job{RunID: "r"}, time.Second)
	if err != nil {
		t.Fatalf("RunOne() error = %v", err)
	}
	if result.Outcome.Success || result.Outcome.ErrorClass != protocol.ErrorClassNameNotFound {
		t.Errorf("Outcome = %+v, want name-not-found failure", result.Outcome)
	}
}
