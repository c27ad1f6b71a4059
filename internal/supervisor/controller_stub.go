//go:build !unix

package supervisor

import (
	"context"

	"practiceraptor/internal/protocol"
	appErr "practiceraptor/pkg/errors"
)

type stubController struct{}

func newExecController(helperPath string) Controller {
	return stubController{}
}

func (stubController) Start(ctx context.Context, job protocol.Job) (Handle, error) {
	return nil, appErr.New(appErr.WorkerSpawnError).WithMessage("worker processes are only supported on unix platforms")
}
