package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"plrcheck/internal/domain/validation"
)

func TestResolveInputInlineSource(t *testing.T) {
	t.Parallel()

	source := "import pylabrobot\n"
	got, info, err := resolveInput(source)
	if err != nil {
		t.Fatalf("resolveInput returned error: %v", err)
	}
	if got != source {
		t.Fatalf("expected source returned verbatim, got %q", got)
	}
	if info.Type != validation.InputTypeString || info.Path != "" {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestResolveInputFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "protocol.py")
	const content = "x = 1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	got, info, err := resolveInput(path)
	if err != nil {
		t.Fatalf("resolveInput returned error: %v", err)
	}
	if got != content {
		t.Fatalf("expected file contents, got %q", got)
	}
	if info.Type != validation.InputTypeFile || info.Path != path {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestResolveInputMissingFileTreatedAsSource(t *testing.T) {
	t.Parallel()

	// A .py-looking string that is not an existing file is inline source;
	// the syntax stage reports what is wrong with it.
	input := "/nonexistent/protocol.py"
	got, info, err := resolveInput(input)
	if err != nil {
		t.Fatalf("resolveInput returned error: %v", err)
	}
	if got != input {
		t.Fatalf("expected input returned verbatim, got %q", got)
	}
	if info.Type != validation.InputTypeString {
		t.Fatalf("expected string input type, got %q", info.Type)
	}
}

func TestResolveInputMultilineEndingInSuffix(t *testing.T) {
	t.Parallel()

	// Inline source can mention a path-like token; a line break in the
	// head means it cannot be a path.
	input := "import os\npath = 'x'\n# save as protocol.py"
	_, info, err := resolveInput(input + ".py")
	if err != nil {
		t.Fatalf("resolveInput returned error: %v", err)
	}
	if info.Type != validation.InputTypeString {
		t.Fatalf("expected string input type, got %q", info.Type)
	}
}

func TestResolveInputDirectoryIsNotAFile(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "protocol.py")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, info, err := resolveInput(dir)
	if err != nil {
		t.Fatalf("resolveInput returned error: %v", err)
	}
	if got != dir || info.Type != validation.InputTypeString {
		t.Fatalf("expected directory treated as inline source, got %q %+v", got, info)
	}
}

func TestResolveInputLongHeadStillFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	name := strings.Repeat("a", 120) + ".py"
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x = 1\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	_, info, err := resolveInput(path)
	if err != nil {
		t.Fatalf("resolveInput returned error: %v", err)
	}
	if info.Type != validation.InputTypeFile {
		t.Fatalf("expected file input type for long path, got %q", info.Type)
	}
}
