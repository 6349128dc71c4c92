// Package docker executes untrusted scripts inside throwaway containers.
// Timed-out containers are stopped and force-removed, so a script that
// exceeds its limit cannot keep running in the background.
package docker

import (
	"context"
	"fmt"
	"sync"

	"github.com/docker/docker/client"

	"plrcheck/internal/domain/validation"
	runtimex "plrcheck/internal/runtime"
)

// Engine implements runtime.Module backed by Docker containers.
type Engine struct {
	config Config
	engine *containerEngine
	client dockerClient

	pullOnce sync.Once
	pullErr  error
}

// New constructs an Engine using the supplied configuration.
func New(cfg Config) (*Engine, error) {
	if cfg.Image == "" {
		return nil, fmt.Errorf("docker runtime: image must be configured")
	}

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("docker runtime: create client: %w", err)
	}

	return newEngineWithClient(cli, cfg), nil
}

func newEngineWithClient(cli dockerClient, cfg Config) *Engine {
	if cfg.Workdir == "" {
		cfg.Workdir = "/tmp"
	}
	return &Engine{
		config: cfg,
		engine: newContainerEngine(cli, cfg.DefaultLimits),
		client: cli,
	}
}

// Backend identifies this module as the container isolation backend.
func (e *Engine) Backend() runtimex.Backend {
	return runtimex.BackendDocker
}

// Execute copies the harness and the script into a fresh container, runs
// the harness, and converts the container outcome into an ExecResult with
// the parsed harness sentinel attached.
func (e *Engine) Execute(ctx context.Context, source string, limits validation.RunLimits) (*validation.ExecResult, error) {
	if err := e.ensureImage(ctx); err != nil {
		return nil, err
	}

	files := []fileSpec{
		{Name: runtimex.HarnessFilename, Mode: 0o644, Data: []byte(runtimex.Harness)},
		{Name: runtimex.ScriptFilename, Mode: 0o644, Data: []byte(source)},
	}
	command := []string{"python", runtimex.HarnessFilename, runtimex.ScriptFilename}

	result, err := e.engine.runProgram(ctx, e.config, limits, command, files)
	if err != nil {
		return nil, err
	}

	run, rest := runtimex.ParseRunOutcome(result.Stdout)
	result.Run = run
	result.Stdout = rest

	return result, nil
}

// Close releases the Docker client.
func (e *Engine) Close() error {
	if err := e.client.Close(); err != nil {
		return fmt.Errorf("docker client: %w", err)
	}
	return nil
}

func (e *Engine) ensureImage(ctx context.Context) error {
	e.pullOnce.Do(func() {
		e.pullErr = e.engine.pullImage(ctx, e.config.Image)
	})
	return e.pullErr
}
