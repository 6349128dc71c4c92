package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"plrcheck/internal/domain/validation"
)

const reportFilePrefix = "pylabrobot_test_report_"

// persistReport serializes the report under a second-granularity
// timestamped filename inside dir, creating the directory if needed. An
// empty dir falls back to the system temporary directory.
func persistReport(report *validation.Report, dir string, now time.Time) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	name := reportFilePrefix + now.Format("20060102_150405") + ".json"
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	return path, nil
}
