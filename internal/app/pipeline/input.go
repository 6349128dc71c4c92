package pipeline

import (
	"fmt"
	"os"
	"strings"

	"plrcheck/internal/domain/validation"
)

// inputInfo records how a submission was resolved.
type inputInfo struct {
	Type string
	Path string
}

// resolveInput turns a submission input into source text. The path form is
// recognized heuristically: a .py suffix, an existing regular file, and no
// line break within the first 100 characters.
func resolveInput(scriptInput string) (string, inputInfo, error) {
	head := scriptInput
	if len(head) > 100 {
		head = head[:100]
	}

	if strings.HasSuffix(scriptInput, ".py") && !strings.Contains(head, "\n") && isRegularFile(scriptInput) {
		data, err := os.ReadFile(scriptInput)
		if err != nil {
			return "", inputInfo{}, fmt.Errorf("Failed to read script file '%s': %v", scriptInput, err)
		}
		return string(data), inputInfo{Type: validation.InputTypeFile, Path: scriptInput}, nil
	}

	return scriptInput, inputInfo{Type: validation.InputTypeString}, nil
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
