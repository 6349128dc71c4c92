package transform

import (
	"strings"
	"testing"
)

func TestApplySwapsHardwareBackend(t *testing.T) {
	t.Parallel()

	source := `from pylabrobot.liquid_handling import LiquidHandler, STARBackend

backend = STARBackend()
other = STARBackend()
`

	got := Apply(source, true)
	if strings.Contains(got, "STARBackend()") {
		t.Fatalf("expected every hardware construction replaced, got:\n%s", got)
	}
	if count := strings.Count(got, "LiquidHandlerChatterboxBackend()"); count != 2 {
		t.Fatalf("expected 2 simulation constructions, got %d:\n%s", count, got)
	}
}

func TestApplyLeavesImportNamesAlone(t *testing.T) {
	t.Parallel()

	// Only the call expression is swapped; the imported name stays, so
	// scripts referencing the class without constructing it still parse.
	source := "from pylabrobot.liquid_handling import STARBackend\n"

	got := Apply(source, true)
	if !strings.Contains(got, "import STARBackend") {
		t.Fatalf("expected import name preserved, got:\n%s", got)
	}
}

func TestApplyInsertsSimulationImportAfterImportBlock(t *testing.T) {
	t.Parallel()

	source := `# liquid handling demo
import asyncio
from pylabrobot.liquid_handling import LiquidHandler

async def main():
    pass
`

	got := Apply(source, true)
	lines := strings.Split(got, "\n")

	importIdx := indexOfLine(lines, "from pylabrobot.liquid_handling.backends import LiquidHandlerChatterboxBackend")
	if importIdx < 0 {
		t.Fatalf("expected simulation import inserted, got:\n%s", got)
	}
	defIdx := indexOfPrefix(lines, "async def main")
	if defIdx < 0 || importIdx > defIdx {
		t.Fatalf("expected import before the entry point, got:\n%s", got)
	}
	lastImportIdx := indexOfPrefix(lines, "from pylabrobot.liquid_handling import")
	if importIdx < lastImportIdx {
		t.Fatalf("expected simulation import after the existing imports, got:\n%s", got)
	}
}

func TestApplyInsertsTrackingBeforeEntryPoint(t *testing.T) {
	t.Parallel()

	source := `import asyncio

async def main():
    pass
`

	got := Apply(source, true)
	if !strings.Contains(got, "# Enable PyLabRobot tracking for validation") {
		t.Fatalf("expected tracking snippet, got:\n%s", got)
	}
	if !strings.Contains(got, "set_tip_tracking(True)") || !strings.Contains(got, "set_volume_tracking(True)") {
		t.Fatalf("expected tracking enabled, got:\n%s", got)
	}

	trackingIdx := strings.Index(got, "# Enable PyLabRobot tracking")
	entryIdx := strings.Index(got, "async def main")
	if trackingIdx > entryIdx {
		t.Fatalf("expected tracking setup before the entry point, got:\n%s", got)
	}
}

func TestApplyDisablesTracking(t *testing.T) {
	t.Parallel()

	got := Apply("async def main():\n    pass\n", false)
	if !strings.Contains(got, "# Disable PyLabRobot tracking for testing") {
		t.Fatalf("expected disable snippet, got:\n%s", got)
	}
	if !strings.Contains(got, "set_tip_tracking(False)") || !strings.Contains(got, "set_volume_tracking(False)") {
		t.Fatalf("expected tracking disabled, got:\n%s", got)
	}
}

func TestApplyNoEntryPointFallsBackToImportBlock(t *testing.T) {
	t.Parallel()

	source := `import asyncio

x = 1
`

	got := Apply(source, true)
	trackingIdx := strings.Index(got, "# Enable PyLabRobot tracking")
	if trackingIdx < 0 {
		t.Fatalf("expected tracking snippet, got:\n%s", got)
	}
	if assignIdx := strings.Index(got, "x = 1"); trackingIdx > assignIdx {
		t.Fatalf("expected tracking before first top-level statement, got:\n%s", got)
	}
}

func TestApplyIsIdempotentForSameFlags(t *testing.T) {
	t.Parallel()

	source := `from pylabrobot.liquid_handling import STARBackend

async def main():
    backend = STARBackend()
`

	once := Apply(source, true)
	twice := Apply(once, true)
	if once != twice {
		t.Fatalf("expected identical output on re-apply:\nfirst:\n%s\nsecond:\n%s", once, twice)
	}

	if count := strings.Count(twice, "from pylabrobot.liquid_handling.backends import LiquidHandlerChatterboxBackend"); count != 1 {
		t.Fatalf("expected one simulation import, got %d", count)
	}
	if count := strings.Count(twice, "# Enable PyLabRobot tracking"); count != 1 {
		t.Fatalf("expected one tracking snippet, got %d", count)
	}
}

func TestApplyMainGuardIsEntryPoint(t *testing.T) {
	t.Parallel()

	source := `import asyncio

if __name__ == "__main__":
    print("run")
`

	got := Apply(source, true)
	trackingIdx := strings.Index(got, "# Enable PyLabRobot tracking")
	guardIdx := strings.Index(got, "if __name__")
	if trackingIdx < 0 || trackingIdx > guardIdx {
		t.Fatalf("expected tracking before the main guard, got:\n%s", got)
	}
}

func indexOfLine(lines []string, want string) int {
	for i, line := range lines {
		if strings.TrimSpace(line) == want {
			return i
		}
	}
	return -1
}

func indexOfPrefix(lines []string, prefix string) int {
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), prefix) {
			return i
		}
	}
	return -1
}
