package docker

import "plrcheck/internal/domain/validation"

// Config describes how to create a Docker-backed sandbox module.
type Config struct {
	// Image is the Python container image scripts run in.
	Image string
	// Workdir is the in-container directory the harness and script are
	// copied to.
	Workdir string
	// DefaultLimits apply when an execution request leaves limits unset.
	DefaultLimits validation.RunLimits
}
