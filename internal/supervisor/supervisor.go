// Package supervisor launches one isolated worker process per test case and
// enforces the wall-clock timeout with escalating termination.
package supervisor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"practiceraptor/internal/protocol"
	appErr "practiceraptor/pkg/errors"
	"practiceraptor/pkg/utils/logger"
)

const defaultGraceWait = time.Second

// Handle is one running worker process as seen by the supervisor.
type Handle interface {
	// Done is closed when the process has exited.
	Done() <-chan struct{}
	// Output returns collected stdout and stderr. Valid only after Done.
	Output() (stdout, stderr []byte)
	// Terminate requests a graceful shutdown.
	Terminate() error
	// Kill forcefully ends the process.
	Kill() error
}

// Controller spawns worker processes. Tests inject a fake so the escalation
// logic is exercised without real processes.
type Controller interface {
	Start(ctx context.Context, job protocol.Job) (Handle, error)
}

// Config controls supervisor behavior.
type Config struct {
	// HelperPath is the worker binary. Defaults to "raptor-worker" resolved
	// through PATH.
	HelperPath string
	// GraceWait is how long a terminated worker gets before the kill
	// signal. Defaults to one second.
	GraceWait time.Duration
}

// Result is the supervised outcome of one worker run.
type Result struct {
	Outcome  protocol.Outcome
	TimedOut bool
}

// Supervisor runs worker jobs under a deadline.
type Supervisor struct {
	controller Controller
	graceWait  time.Duration
}

// New creates a supervisor backed by real worker processes.
func New(cfg Config) *Supervisor {
	if cfg.HelperPath == "" {
		cfg.HelperPath = "raptor-worker"
	}
	return NewWithController(newExecController(cfg.HelperPath), cfg.GraceWait)
}

// NewWithController creates a supervisor with an injected process controller.
func NewWithController(controller Controller, graceWait time.Duration) *Supervisor {
	if graceWait <= 0 {
		graceWait = defaultGraceWait
	}
	return &Supervisor{controller: controller, graceWait: graceWait}
}

// RunOne spawns a worker for the job, waits up to timeout for its one-shot
// outcome, and escalates termination on expiry. A timeout is reported in the
// Result; the returned error is reserved for internal inconsistencies
// (spawn failure, worker exiting without an outcome, malformed outcome).
func (s *Supervisor) RunOne(ctx context.Context, job protocol.Job, timeout time.Duration) (Result, error) {
	handle, err := s.controller.Start(ctx, job)
	if err != nil {
		return Result{}, appErr.Wrapf(err, appErr.WorkerSpawnError, "start worker failed")
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-handle.Done():
	case <-ctx.Done():
		s.escalate(ctx, handle)
		return Result{}, appErr.Wrap(ctx.Err(), appErr.Timeout)
	case <-timer.C:
		logger.Warn(ctx, "worker timed out, escalating",
			zap.String("run_id", job.RunID),
			zap.Duration("timeout", timeout))
		s.escalate(ctx, handle)
		return Result{TimedOut: true}, nil
	}

	stdout, stderr := handle.Output()
	if len(stderr) > 0 {
		logger.Warn(ctx, "worker stderr",
			zap.String("run_id", job.RunID),
			zap.ByteString("stderr", stderr))
	}

	outcome, err := protocol.DecodeOutcome(stdout)
	if err != nil {
		return Result{}, err
	}
	return Result{Outcome: outcome}, nil
}

// escalate walks the termination state machine: terminate, wait out the
// grace period, kill, then wait unconditionally for exit.
func (s *Supervisor) escalate(ctx context.Context, handle Handle) {
	if err := handle.Terminate(); err != nil {
		logger.Warn(ctx, "terminate worker failed", zap.Error(err))
	}

	grace := time.NewTimer(s.graceWait)
	defer grace.Stop()
	select {
	case <-handle.Done():
		return
	case <-grace.C:
	}

	if err := handle.Kill(); err != nil {
		logger.Warn(ctx, "kill worker failed", zap.Error(err))
	}
	<-handle.Done()
}
