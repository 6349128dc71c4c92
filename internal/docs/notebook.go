package docs

import (
	"encoding/json"
	"strings"
)

const (
	notebookCharBudget = 5000
	notebookMaxRefs    = 20
)

type notebook struct {
	Cells      []notebookCell `json:"cells"`
	Worksheets []struct {
		Cells []notebookCell `json:"cells"`
	} `json:"worksheets"`
}

type notebookCell struct {
	CellType string          `json:"cell_type"`
	Type     string          `json:"type"`
	Source   json.RawMessage `json:"source"`
	Input    json.RawMessage `json:"input"`
}

// notebookText extracts readable content from a Jupyter notebook:
// markdown cells verbatim, plus automation-library import lines from code
// cells. Malformed notebooks yield an empty string.
func notebookText(data []byte) string {
	var nb notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return ""
	}

	cells := nb.Cells
	if len(cells) == 0 && len(nb.Worksheets) > 0 {
		cells = nb.Worksheets[0].Cells
	}

	var parts []string
	budget := 0
	for _, cell := range cells {
		kind := cell.CellType
		if kind == "" {
			kind = cell.Type
		}

		source := cellSource(cell)
		if source == "" {
			continue
		}

		switch kind {
		case "markdown":
			parts = append(parts, source)
			budget += len(source)
		case "code":
			if refs := importRefs(source); refs != "" {
				parts = append(parts, refs)
				budget += len(refs)
			}
		}

		if budget > notebookCharBudget {
			break
		}
	}

	return strings.Join(parts, "\n\n")
}

func cellSource(cell notebookCell) string {
	raw := cell.Source
	if len(raw) == 0 {
		raw = cell.Input
	}
	if len(raw) == 0 {
		return ""
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}

	var asLines []string
	if err := json.Unmarshal(raw, &asLines); err == nil {
		return strings.Join(asLines, "")
	}

	return ""
}

func importRefs(source string) string {
	var refs []string
	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.Contains(trimmed, "pylabrobot") &&
			(strings.Contains(trimmed, "import ") || strings.Contains(trimmed, "from ")) {
			refs = append(refs, trimmed)
			if len(refs) == notebookMaxRefs {
				break
			}
		}
	}

	if len(refs) == 0 {
		return ""
	}
	return "Code refs:\n" + strings.Join(refs, "\n")
}
