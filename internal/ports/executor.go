package ports

import (
	"context"

	"plrcheck/internal/domain/validation"
)

// Executor runs an untrusted script inside an isolation backend and
// enforces the supplied limits with a hard kill on timeout.
type Executor interface {
	Execute(ctx context.Context, source string, limits validation.RunLimits) (*validation.ExecResult, error)
	Close() error
}
