// Package transform rewrites a script so it runs against the simulation
// backend instead of physical hardware. The rewrite is purely textual and
// deterministic: identical input and flags always produce identical
// output.
package transform

import "strings"

const (
	hardwareBackendCall   = "STARBackend()"
	simulationBackendCall = "LiquidHandlerChatterboxBackend()"

	simulationImport = "from pylabrobot.liquid_handling.backends import LiquidHandlerChatterboxBackend"
)

const trackingEnableSnippet = `
# Enable PyLabRobot tracking for validation
try:
    from pylabrobot.resources import set_tip_tracking, set_volume_tracking
    set_tip_tracking(True)
    set_volume_tracking(True)
except ImportError:
    pass  # Tracking not available in this PyLabRobot version
`

const trackingDisableSnippet = `
# Disable PyLabRobot tracking for testing
try:
    from pylabrobot.resources import set_tip_tracking, set_volume_tracking
    set_tip_tracking(False)
    set_volume_tracking(False)
except ImportError:
    pass  # Tracking not available in this PyLabRobot version
`

// Apply produces the simulation-ready copy of source: hardware backend
// constructions swapped for the simulation backend, the simulation import
// inserted after the leading import/comment block, and a tracking setup
// snippet inserted before the first entry-point line. Re-applying with the
// same flags does not duplicate either insertion.
func Apply(source string, enableTracking bool) string {
	modified := strings.ReplaceAll(source, hardwareBackendCall, simulationBackendCall)
	modified = insertSimulationImport(modified)
	modified = insertTrackingSetup(modified, enableTracking)
	return modified
}

// insertSimulationImport places the simulation backend import at the
// boundary between the leading import/comment block and the first
// definition. The scan walks whole lines only, so it cannot split a
// multi-line statement.
func insertSimulationImport(source string) string {
	if containsLine(source, simulationImport) {
		return source
	}

	lines := strings.Split(source, "\n")
	insertAt := 0
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "from ") || strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "#") {
			insertAt = i + 1
			continue
		}
		if isDefinitionLine(trimmed) {
			break
		}
		insertAt = i + 1
	}

	return strings.Join(insertLine(lines, insertAt, simulationImport), "\n")
}

// insertTrackingSetup places the tracking snippet immediately before the
// first entry-point line. A script with no recognizable entry point gets
// the snippet right after its import/comment block instead, so tracking
// still takes effect before any top-level operation.
func insertTrackingSetup(source string, enable bool) string {
	snippet := trackingDisableSnippet
	if enable {
		snippet = trackingEnableSnippet
	}

	marker := strings.Split(strings.TrimSpace(snippet), "\n")[0]
	if containsLine(source, marker) {
		return source
	}

	lines := strings.Split(source, "\n")
	insertAt := -1
	for i, line := range lines {
		if isEntryPointLine(strings.TrimSpace(line)) {
			insertAt = i
			break
		}
	}
	if insertAt < 0 {
		insertAt = importBlockEnd(lines)
	}

	return strings.Join(insertLine(lines, insertAt, snippet), "\n")
}

func importBlockEnd(lines []string) int {
	end := 0
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "from ") || strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "#") {
			end = i + 1
			continue
		}
		break
	}
	return end
}

func isDefinitionLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "async def") ||
		strings.HasPrefix(trimmed, "def") ||
		strings.HasPrefix(trimmed, "class") ||
		strings.HasPrefix(trimmed, "if __name__")
}

func isEntryPointLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "async def") ||
		strings.HasPrefix(trimmed, "def") ||
		strings.HasPrefix(trimmed, "if __name__")
}

func containsLine(source, want string) bool {
	for _, line := range strings.Split(source, "\n") {
		if strings.TrimSpace(line) == want {
			return true
		}
	}
	return false
}

func insertLine(lines []string, at int, value string) []string {
	if at < 0 {
		at = 0
	}
	if at > len(lines) {
		at = len(lines)
	}

	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:at]...)
	out = append(out, value)
	out = append(out, lines[at:]...)
	return out
}
