package validation

import "time"

// Status classifies the terminal state of one sandboxed execution.
type Status string

const (
	StatusOK          Status = "ok"
	StatusTimeLimit   Status = "time_limit"
	StatusMemoryLimit Status = "memory_limit"
	StatusError       Status = "error"
)

// RunLimits describes resource boundaries for a single sandboxed execution.
//
// A zero value RunLimits imposes no additional restrictions.
type RunLimits struct {
	// TimeLimit caps how long the script is allowed to run. Zero means no limit.
	TimeLimit time.Duration
	// MemoryLimitBytes caps sandbox memory usage in bytes. Zero means no limit.
	MemoryLimitBytes int64
}

// RunOutcome is the structured payload emitted by the execution harness
// from inside the sandbox. Error carries the original exception message
// when the monitored run raised.
type RunOutcome struct {
	OperationsPerformed int
	TipsUsed            int
	LiquidTransferred   float64
	Error               string
	Warnings            []string
}

// ExecResult captures the outcome of executing a script in a sandbox. Run
// is nil when the harness produced no result payload, which callers must
// treat as a failed execution.
type ExecResult struct {
	Status   Status
	ExitCode int64
	Stdout   string
	Stderr   string
	Duration time.Duration
	Run      *RunOutcome
}
