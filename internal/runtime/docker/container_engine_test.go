package docker

import (
	"context"
	"testing"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"

	"plrcheck/internal/domain/validation"
)

func TestNormalizeLimitsClampsNegative(t *testing.T) {
	t.Parallel()

	limits := normalizeLimits(runLimits(-5*time.Second, -10))
	if limits.TimeLimit != 0 {
		t.Fatalf("expected zero time limit, got %v", limits.TimeLimit)
	}
	if limits.MemoryLimitBytes != 0 {
		t.Fatalf("expected zero memory limit, got %d", limits.MemoryLimitBytes)
	}
}

func TestContainerEngineEffectiveLimitsMergesOverrides(t *testing.T) {
	t.Parallel()

	engine := newContainerEngine(nil, runLimits(5*time.Second, 1024))
	got := engine.effectiveLimits(runLimits(2*time.Second, 0))

	if got.TimeLimit != 2*time.Second {
		t.Fatalf("expected time limit 2s, got %v", got.TimeLimit)
	}
	if got.MemoryLimitBytes != 1024 {
		t.Fatalf("expected memory limit 1024, got %d", got.MemoryLimitBytes)
	}
}

func TestRunProgramHandlesTimeLimit(t *testing.T) {
	t.Parallel()

	client := newFakeDockerClient()
	engine := newContainerEngine(client, runLimits(0, 0))
	cfg := Config{Image: "python:3.12-alpine", Workdir: "/tmp"}

	client.onCreate(func(id string) {
		client.setWaitSequence(id,
			waitCall{block: true},
			waitCall{status: &container.WaitResponse{StatusCode: 137}},
		)
		client.setLogs(id, "partial", "killed")
	})

	result, err := engine.runProgram(
		context.Background(),
		cfg,
		runLimits(10*time.Millisecond, 0),
		[]string{"python", "runner.py", "script.py"},
		[]fileSpec{{Name: "script.py", Data: []byte("while True: pass")}},
	)
	if err != nil {
		t.Fatalf("runProgram returned error: %v", err)
	}
	if result.Status != validation.StatusTimeLimit {
		t.Fatalf("expected time limit status, got %q", result.Status)
	}
	if result.ExitCode != 137 {
		t.Fatalf("expected exit code 137, got %d", result.ExitCode)
	}
	if len(client.stopCalls) != 1 {
		t.Fatalf("expected ContainerStop to be invoked once, got %d", len(client.stopCalls))
	}
	if len(client.removeCalls) != 1 {
		t.Fatalf("expected ContainerRemove to be invoked once, got %d", len(client.removeCalls))
	}
}

func TestRunProgramReportsMemoryLimit(t *testing.T) {
	t.Parallel()

	client := newFakeDockerClient()
	engine := newContainerEngine(client, runLimits(0, 0))
	cfg := Config{Image: "python:3.12-alpine", Workdir: "/tmp"}

	client.onCreate(func(id string) {
		client.setWaitSequence(id, waitCall{status: &container.WaitResponse{StatusCode: 137}})
		client.setInspect(id, types.ContainerJSON{
			ContainerJSONBase: &types.ContainerJSONBase{
				State: &types.ContainerState{OOMKilled: true},
			},
		})
		client.setLogs(id, "", "oom")
	})

	result, err := engine.runProgram(
		context.Background(),
		cfg,
		runLimits(0, 64*1024*1024),
		[]string{"python", "runner.py", "script.py"},
		[]fileSpec{{Name: "script.py", Data: []byte("x = bytearray(10**9)")}},
	)
	if err != nil {
		t.Fatalf("runProgram returned error: %v", err)
	}
	if result.Status != validation.StatusMemoryLimit {
		t.Fatalf("expected memory limit status, got %q", result.Status)
	}
}

func TestRunProgramAppliesMemoryLimitToHostConfig(t *testing.T) {
	t.Parallel()

	client := newFakeDockerClient()
	engine := newContainerEngine(client, runLimits(0, 0))
	cfg := Config{Image: "python:3.12-alpine", Workdir: "/tmp"}

	client.onCreate(func(id string) {
		client.setWaitSequence(id, waitCall{status: &container.WaitResponse{StatusCode: 0}})
		client.setInspect(id, types.ContainerJSON{
			ContainerJSONBase: &types.ContainerJSONBase{
				State: &types.ContainerState{},
			},
		})
		client.setLogs(id, "done", "")
	})

	const memory = int64(128 * 1024 * 1024)
	if _, err := engine.runProgram(
		context.Background(),
		cfg,
		runLimits(0, memory),
		[]string{"python", "runner.py", "script.py"},
		nil,
	); err != nil {
		t.Fatalf("runProgram returned error: %v", err)
	}

	if len(client.createCalls) != 1 {
		t.Fatalf("expected one container create, got %d", len(client.createCalls))
	}
	hostConfig := client.createCalls[0].hostConfig
	if hostConfig.Resources.Memory != memory {
		t.Fatalf("expected memory limit %d, got %d", memory, hostConfig.Resources.Memory)
	}
	if hostConfig.Resources.MemorySwap != memory {
		t.Fatalf("expected swap limit %d, got %d", memory, hostConfig.Resources.MemorySwap)
	}
}

func runLimits(duration time.Duration, memory int64) validation.RunLimits {
	return validation.RunLimits{
		TimeLimit:        duration,
		MemoryLimitBytes: memory,
	}
}
