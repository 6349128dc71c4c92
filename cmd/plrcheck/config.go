package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"plrcheck/internal/domain/validation"
	"plrcheck/internal/runtime"
	"plrcheck/internal/runtime/docker"
	"plrcheck/internal/runtime/process"
)

const (
	pythonDockerImage = "python:3.12-alpine"
	containerWorkdir  = "/tmp"

	defaultKafkaBrokers      = "kafka:9092"
	defaultKafkaTopic        = "plr-scripts"
	defaultKafkaReportsTopic = "plr-reports"
	defaultKafkaGroupID      = "plrcheck-validator"
)

type appConfig struct {
	KafkaBrokers   []string
	ScriptsTopic   string
	ReportsTopic   string
	GroupID        string
	MaxSubmissions int
	MaxParallel    int
}

func loadAppConfig() appConfig {
	return appConfig{
		KafkaBrokers:   parseBrokerList(envOrDefault("KAFKA_BROKERS", defaultKafkaBrokers)),
		ScriptsTopic:   envOrDefault("KAFKA_TOPIC", defaultKafkaTopic),
		ReportsTopic:   envOrDefault("KAFKA_REPORTS_TOPIC", defaultKafkaReportsTopic),
		GroupID:        envOrDefault("KAFKA_GROUP_ID", defaultKafkaGroupID),
		MaxSubmissions: parseMaxSubmissions(os.Getenv("SCRIPTS_EXPECTED")),
		MaxParallel:    parseMaxParallel(os.Getenv("VALIDATOR_MAX_PARALLEL")),
	}
}

func defaultBackend() runtime.Backend {
	return runtime.Backend(envOrDefault("SANDBOX_BACKEND", string(runtime.BackendDocker)))
}

// buildRegistry wires the requested sandbox backend. The Docker module is
// only constructed when selected, so a workstation without a Docker
// daemon can still run subprocess-backed validations.
func buildRegistry(backend string) (*runtime.Registry, error) {
	switch runtime.Backend(backend) {
	case runtime.BackendDocker:
		engine, err := docker.New(dockerConfigFromEnv())
		if err != nil {
			return nil, fmt.Errorf("initialize docker sandbox: %w", err)
		}
		return runtime.NewRegistry(runtime.BackendDocker, engine)
	case runtime.BackendProcess:
		return runtime.NewRegistry(runtime.BackendProcess, process.New(processConfigFromEnv()))
	default:
		return nil, fmt.Errorf("unknown sandbox backend %q", backend)
	}
}

func dockerConfigFromEnv() docker.Config {
	return docker.Config{
		Image:         envOrDefault("PYTHON_IMAGE", pythonDockerImage),
		Workdir:       envOrDefault("PYTHON_WORKDIR", containerWorkdir),
		DefaultLimits: defaultLimitsFromEnv(),
	}
}

func processConfigFromEnv() process.Config {
	return process.Config{
		Python:        envOrDefault("PYTHON_BIN", ""),
		DefaultLimits: defaultLimitsFromEnv(),
	}
}

func defaultLimitsFromEnv() validation.RunLimits {
	return validation.RunLimits{
		TimeLimit:        parseDuration(os.Getenv("VALIDATOR_TIME_LIMIT"), 0),
		MemoryLimitBytes: parseBytes(os.Getenv("VALIDATOR_MEMORY_LIMIT")),
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseBrokerList(raw string) []string {
	fields := strings.Split(raw, ",")
	brokers := make([]string, 0, len(fields))
	for _, field := range fields {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	return brokers
}

func parseMaxSubmissions(raw string) int {
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	if value < 0 {
		return 0
	}
	return value
}

func parseMaxParallel(raw string) int {
	if raw == "" {
		return 1
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 1
	}
	return value
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func parseBytes(raw string) int64 {
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}
