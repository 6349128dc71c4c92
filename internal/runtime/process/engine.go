// Package process executes untrusted scripts in a host Python subprocess.
// It offers weaker isolation than the container backend but needs nothing
// beyond a local interpreter, which suits development machines and CI.
// Timed-out scripts are killed as a process group.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"plrcheck/internal/domain/validation"
	runtimex "plrcheck/internal/runtime"
)

// Config describes how to create a subprocess-backed sandbox module.
type Config struct {
	// Python is the interpreter binary. Empty means "python3".
	Python string
	// DefaultLimits apply when an execution request leaves limits unset.
	DefaultLimits validation.RunLimits
}

// Engine implements runtime.Module over os/exec.
type Engine struct {
	python        string
	defaultLimits validation.RunLimits
}

// New constructs an Engine using the supplied configuration.
func New(cfg Config) *Engine {
	python := cfg.Python
	if python == "" {
		python = "python3"
	}
	return &Engine{
		python:        python,
		defaultLimits: cfg.DefaultLimits,
	}
}

// Backend identifies this module as the subprocess isolation backend.
func (e *Engine) Backend() runtimex.Backend {
	return runtimex.BackendProcess
}

// Execute writes the harness and script to a transient directory, runs
// the harness, and parses the sentinel from its stdout. The directory is
// removed on every exit path.
func (e *Engine) Execute(ctx context.Context, source string, limits validation.RunLimits) (*validation.ExecResult, error) {
	workdir, err := os.MkdirTemp("", "plrcheck-run-")
	if err != nil {
		return nil, fmt.Errorf("create transient workdir: %w", err)
	}
	defer os.RemoveAll(workdir)

	harnessPath := filepath.Join(workdir, runtimex.HarnessFilename)
	scriptPath := filepath.Join(workdir, runtimex.ScriptFilename)
	if err := os.WriteFile(harnessPath, []byte(runtimex.Harness), 0o644); err != nil {
		return nil, fmt.Errorf("write harness: %w", err)
	}
	if err := os.WriteFile(scriptPath, []byte(source), 0o644); err != nil {
		return nil, fmt.Errorf("write script: %w", err)
	}

	timeLimit := e.defaultLimits.TimeLimit
	if limits.TimeLimit > 0 {
		timeLimit = limits.TimeLimit
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if timeLimit > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeLimit)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, e.python, harnessPath, scriptPath)
	cmd.Dir = workdir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	// Kill the whole process group so worker threads and grandchildren
	// cannot outlive the timeout.
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 5 * time.Second

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	result := &validation.ExecResult{
		Status:   validation.StatusOK,
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		Duration: duration,
	}
	if cmd.ProcessState != nil {
		result.ExitCode = int64(cmd.ProcessState.ExitCode())
	}

	timedOut := timeLimit > 0 && runCtx.Err() != nil && ctx.Err() == nil
	switch {
	case timedOut:
		result.Status = validation.StatusTimeLimit
		result.ExitCode = -1
	case runErr != nil:
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return nil, fmt.Errorf("run interpreter: %w", runErr)
		}
		result.Status = validation.StatusError
	case result.ExitCode != 0:
		result.Status = validation.StatusError
	}

	run, rest := runtimex.ParseRunOutcome(result.Stdout)
	result.Run = run
	result.Stdout = rest

	return result, nil
}

// Close is a no-op; the engine holds no persistent resources.
func (e *Engine) Close() error {
	return nil
}
