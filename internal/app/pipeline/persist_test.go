package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"plrcheck/internal/domain/validation"
)

func TestPersistReportWritesTimestampedFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	report := &validation.Report{
		Success:  true,
		Errors:   []string{},
		Warnings: []string{"tip reuse"},
	}

	now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	path, err := persistReport(report, dir, now)
	if err != nil {
		t.Fatalf("persistReport returned error: %v", err)
	}

	want := filepath.Join(dir, "pylabrobot_test_report_20260314_150926.json")
	if path != want {
		t.Fatalf("unexpected path %q, want %q", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}

	var decoded validation.Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if !decoded.Success || len(decoded.Warnings) != 1 {
		t.Fatalf("unexpected decoded report: %+v", decoded)
	}
}

func TestPersistReportCreatesDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "reports")
	report := &validation.Report{Errors: []string{}, Warnings: []string{}}

	path, err := persistReport(report, dir, time.Now())
	if err != nil {
		t.Fatalf("persistReport returned error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected report file to exist: %v", err)
	}
}

func TestPersistReportEmptyDirUsesTempDir(t *testing.T) {
	t.Parallel()

	report := &validation.Report{Errors: []string{}, Warnings: []string{}}

	path, err := persistReport(report, "", time.Now())
	if err != nil {
		t.Fatalf("persistReport returned error: %v", err)
	}
	t.Cleanup(func() { os.Remove(path) })

	if filepath.Dir(path) != filepath.Clean(os.TempDir()) {
		t.Fatalf("expected report in temp dir, got %q", path)
	}
}
