package runtime

import (
	"encoding/json"
	"strings"

	"plrcheck/internal/domain/validation"
)

const sentinelPrefix = "PLRCHECK-RESULT:"

type sentinelPayload struct {
	Error    string           `json:"error,omitempty"`
	Summary  *sentinelSummary `json:"summary,omitempty"`
	Warnings []string         `json:"warnings,omitempty"`
}

type sentinelSummary struct {
	OperationsPerformed int     `json:"operations_performed"`
	TipsUsed            int     `json:"tips_used"`
	LiquidTransferred   float64 `json:"liquid_transferred"`
}

// ParseRunOutcome extracts the harness sentinel from sandbox stdout. It
// returns the remaining stdout with the sentinel line removed, and nil
// when no well-formed sentinel is present.
func ParseRunOutcome(stdout string) (*validation.RunOutcome, string) {
	lines := strings.Split(stdout, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, sentinelPrefix) {
			continue
		}

		var payload sentinelPayload
		if err := json.Unmarshal([]byte(line[len(sentinelPrefix):]), &payload); err != nil {
			continue
		}

		outcome := &validation.RunOutcome{
			Error:    payload.Error,
			Warnings: payload.Warnings,
		}
		if payload.Summary != nil {
			outcome.OperationsPerformed = payload.Summary.OperationsPerformed
			outcome.TipsUsed = payload.Summary.TipsUsed
			outcome.LiquidTransferred = payload.Summary.LiquidTransferred
		}

		rest := append(append([]string{}, lines[:i]...), lines[i+1:]...)
		return outcome, strings.Join(rest, "\n")
	}

	return nil, stdout
}
