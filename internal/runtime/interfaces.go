package runtime

import (
	"context"

	"plrcheck/internal/domain/validation"
)

// Backend identifies an isolation strategy for untrusted execution.
type Backend string

const (
	// BackendDocker executes scripts inside a throwaway container.
	BackendDocker Backend = "docker"
	// BackendProcess executes scripts in a killable host subprocess.
	BackendProcess Backend = "process"
)

// Module provides sandboxed execution through one isolation backend.
// Implementations must hard-kill the sandbox when the time limit elapses.
type Module interface {
	Backend() Backend
	Execute(ctx context.Context, source string, limits validation.RunLimits) (*validation.ExecResult, error)
	Close() error
}
