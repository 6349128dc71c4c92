package docker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/docker/docker/api/types/container"
	typesimage "github.com/docker/docker/api/types/image"

	"plrcheck/internal/domain/validation"
)

type containerEngine struct {
	cli           dockerClient
	defaultLimits validation.RunLimits
}

func newContainerEngine(cli dockerClient, defaultLimits validation.RunLimits) *containerEngine {
	return &containerEngine{
		cli:           cli,
		defaultLimits: normalizeLimits(defaultLimits),
	}
}

func (c *containerEngine) pullImage(ctx context.Context, ref string) error {
	reader, err := c.cli.ImagePull(ctx, ref, typesimage.PullOptions{})
	if err != nil {
		return fmt.Errorf("pull image %s: %w", ref, err)
	}
	defer reader.Close()
	_, err = io.Copy(io.Discard, reader)
	if err != nil {
		return fmt.Errorf("consume pull output for %s: %w", ref, err)
	}
	return nil
}

func (c *containerEngine) effectiveLimits(request validation.RunLimits) validation.RunLimits {
	effective := c.defaultLimits
	overrides := normalizeLimits(request)

	if overrides.TimeLimit > 0 {
		effective.TimeLimit = overrides.TimeLimit
	}
	if overrides.MemoryLimitBytes > 0 {
		effective.MemoryLimitBytes = overrides.MemoryLimitBytes
	}

	return effective
}

func (c *containerEngine) runProgram(
	ctx context.Context,
	cfg Config,
	limits validation.RunLimits,
	command []string,
	files []fileSpec,
) (*validation.ExecResult, error) {
	effectiveLimits := c.effectiveLimits(limits)

	containerID, cleanup, err := c.createContainer(ctx, cfg, effectiveLimits, command)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if err := c.copyFiles(ctx, containerID, cfg.Workdir, files); err != nil {
		return nil, fmt.Errorf("copy files: %w", err)
	}

	start := time.Now()
	if err := c.cli.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return nil, fmt.Errorf("start container: %w", err)
	}

	waitCtx := ctx
	var cancel context.CancelFunc
	if effectiveLimits.TimeLimit > 0 {
		waitCtx, cancel = context.WithTimeout(ctx, effectiveLimits.TimeLimit)
	}
	status, err := c.waitForExit(waitCtx, containerID)
	if cancel != nil {
		cancel()
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && effectiveLimits.TimeLimit > 0 && ctx.Err() == nil {
			return c.handleTimeLimit(containerID, start)
		}
		return nil, err
	}

	inspectCtx := ctx
	if inspectCtx.Err() != nil {
		inspectCtx = context.Background()
	}

	inspect, err := c.cli.ContainerInspect(inspectCtx, containerID)
	if err != nil {
		return nil, fmt.Errorf("inspect container: %w", err)
	}

	logCtx := ctx
	if logCtx.Err() != nil {
		logCtx = context.Background()
	}

	stdout, stderr, err := c.fetchLogs(logCtx, containerID)
	if err != nil {
		return nil, fmt.Errorf("fetch logs: %w", err)
	}

	result := &validation.ExecResult{
		Status:   validation.StatusOK,
		Stdout:   stdout,
		Stderr:   stderr,
		ExitCode: status.StatusCode,
		Duration: time.Since(start),
	}

	if status.StatusCode != 0 {
		result.Status = validation.StatusError
	}
	if inspect.State != nil && inspect.State.OOMKilled {
		result.Status = validation.StatusMemoryLimit
	}

	return result, nil
}

func (c *containerEngine) createContainer(ctx context.Context, cfg Config, limits validation.RunLimits, cmd []string) (string, func(), error) {
	hostConfig := &container.HostConfig{
		Resources: container.Resources{
			NanoCPUs: 1_000_000_000,
		},
	}
	if limits.MemoryLimitBytes > 0 {
		hostConfig.Resources.Memory = limits.MemoryLimitBytes
		hostConfig.Resources.MemorySwap = limits.MemoryLimitBytes
	}

	resp, err := c.cli.ContainerCreate(
		ctx,
		&container.Config{
			Image:        cfg.Image,
			Cmd:          cmd,
			AttachStdout: true,
			AttachStderr: true,
			WorkingDir:   cfg.Workdir,
		},
		hostConfig,
		nil,
		nil,
		"",
	)
	if err != nil {
		return "", nil, fmt.Errorf("create container: %w", err)
	}

	cleanup := func() {
		_ = c.cli.ContainerRemove(context.Background(), resp.ID, container.RemoveOptions{Force: true})
	}

	return resp.ID, cleanup, nil
}

// handleTimeLimit stops the container and reports a time-limit result.
// Unlike a detached worker thread, the stop guarantees the script does not
// keep executing after the limit.
func (c *containerEngine) handleTimeLimit(containerID string, start time.Time) (*validation.ExecResult, error) {
	stopCtx, cancelStop := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelStop()

	if err := c.cli.ContainerStop(stopCtx, containerID, container.StopOptions{}); err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("stop container after time limit: %w", err)
	}

	waitCtx, cancelWait := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelWait()

	status, waitErr := c.waitForExit(waitCtx, containerID)
	if waitErr != nil && !errors.Is(waitErr, context.DeadlineExceeded) && !isNotFound(waitErr) {
		return nil, fmt.Errorf("wait for container after time limit: %w", waitErr)
	}

	stdout, stderr, err := c.fetchLogs(context.Background(), containerID)
	if err != nil {
		return nil, fmt.Errorf("fetch logs: %w", err)
	}

	exitCode := int64(-1)
	if status != nil {
		exitCode = status.StatusCode
	}

	return &validation.ExecResult{
		Status:   validation.StatusTimeLimit,
		Stdout:   stdout,
		Stderr:   stderr,
		ExitCode: exitCode,
		Duration: time.Since(start),
	}, nil
}

func (c *containerEngine) waitForExit(ctx context.Context, containerID string) (*container.WaitResponse, error) {
	statusCh, errCh := c.cli.ContainerWait(ctx, containerID, container.WaitConditionNotRunning)
	select {
	case status := <-statusCh:
		if status.Error != nil {
			return nil, fmt.Errorf("container error: %s", status.Error.Message)
		}
		return &status, nil
	case err := <-errCh:
		return nil, fmt.Errorf("wait for container: %w", err)
	case <-ctx.Done():
		return nil, fmt.Errorf("wait for container: %w", ctx.Err())
	}
}
