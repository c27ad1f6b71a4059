//go:build unix

package supervisor

import (
	"bytes"
	"context"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"

	"practiceraptor/internal/protocol"
	appErr "practiceraptor/pkg/errors"
)

// execController spawns the worker helper binary. Each worker gets its own
// process group so termination signals reach anything it might spawn.
type execController struct {
	helperPath string
}

func newExecController(helperPath string) Controller {
	return &execController{helperPath: helperPath}
}

func (c *execController) Start(ctx context.Context, job protocol.Job) (Handle, error) {
	var stdin bytes.Buffer
	if err := protocol.WriteJob(&stdin, job); err != nil {
		return nil, err
	}

	cmd := exec.Command(c.helperPath)
	cmd.Stdin = &stdin
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	h := &execHandle{cmd: cmd, done: make(chan struct{})}
	cmd.Stdout = &h.stdout
	cmd.Stderr = &h.stderr

	if err := cmd.Start(); err != nil {
		return nil, appErr.Wrapf(err, appErr.WorkerSpawnError, "start %s failed", c.helperPath)
	}
	h.pid = cmd.Process.Pid

	go func() {
		_ = cmd.Wait()
		close(h.done)
	}()
	return h, nil
}

type execHandle struct {
	cmd    *exec.Cmd
	pid    int
	done   chan struct{}
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func (h *execHandle) Done() <-chan struct{} {
	return h.done
}

// Output is only safe after Done; cmd.Wait has finished copying by then.
func (h *execHandle) Output() ([]byte, []byte) {
	return h.stdout.Bytes(), h.stderr.Bytes()
}

func (h *execHandle) Terminate() error {
	return h.signal(unix.SIGTERM)
}

func (h *execHandle) Kill() error {
	return h.signal(unix.SIGKILL)
}

func (h *execHandle) signal(sig unix.Signal) error {
	select {
	case <-h.done:
		return nil
	default:
	}
	// Negative pid targets the whole process group.
	if err := unix.Kill(-h.pid, sig); err != nil && err != unix.ESRCH {
		return err
	}
	return nil
}
