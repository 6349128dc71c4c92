package docs

import (
	"strings"
	"testing"
)

func TestFormatLiquidGuideCuratedOrder(t *testing.T) {
	t.Parallel()

	docs := []namedDoc{
		{name: "docs/user_guide/00_liquid-handling/hamilton-star/z-probing.md", text: "Z content"},
		{name: "docs/user_guide/00_liquid-handling/hamilton-star/basic.ipynb", text: "Basic content"},
		{name: "docs/user_guide/00_liquid-handling/hamilton-star/iswap.md", text: "iSWAP content"},
	}

	guide := formatLiquidGuide(docs)

	basic := strings.Index(guide, "## Getting started with liquid handling on a Hamilton STAR(let)")
	iswap := strings.Index(guide, "## iSWAP Module")
	zprobe := strings.Index(guide, "## Z-probing")
	if basic < 0 || iswap < 0 || zprobe < 0 {
		t.Fatalf("expected curated headings, got:\n%s", guide)
	}
	if !(basic < iswap && iswap < zprobe) {
		t.Fatalf("expected curated order, got basic=%d iswap=%d zprobe=%d", basic, iswap, zprobe)
	}
}

func TestFormatLiquidGuideKeepsUnmatchedFiles(t *testing.T) {
	t.Parallel()

	docs := []namedDoc{
		{name: "docs/user_guide/00_liquid-handling/hamilton-star/custom_notes.md", text: "Custom content"},
	}

	guide := formatLiquidGuide(docs)
	if !strings.Contains(guide, "## Custom Notes") {
		t.Fatalf("expected derived title for unmatched file, got:\n%s", guide)
	}
	if !strings.Contains(guide, "Custom content") {
		t.Fatalf("expected unmatched content kept, got:\n%s", guide)
	}
}

func TestFormatLiquidGuideDuplicateKeywordFiles(t *testing.T) {
	t.Parallel()

	// Two files match the same keyword; the first becomes the curated
	// section, the second is appended under a derived title.
	docs := []namedDoc{
		{name: "a/iswap.md", text: "First iSWAP"},
		{name: "b/iswap-advanced.md", text: "Second iSWAP"},
	}

	guide := formatLiquidGuide(docs)
	if !strings.Contains(guide, "## iSWAP Module") || !strings.Contains(guide, "First iSWAP") {
		t.Fatalf("expected curated section from first match, got:\n%s", guide)
	}
	if !strings.Contains(guide, "## Iswap Advanced") || !strings.Contains(guide, "Second iSWAP") {
		t.Fatalf("expected duplicate appended with derived title, got:\n%s", guide)
	}
}

func TestDerivedTitle(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"docs/user_guide/foil.md":        "Foil",
		"a/b/liquid_level-detection.rst": "Liquid Level Detection",
		"basic.ipynb":                    "Basic",
		"noext":                          "Noext",
	}

	for input, want := range cases {
		if got := derivedTitle(input); got != want {
			t.Fatalf("derivedTitle(%q) = %q, want %q", input, got, want)
		}
	}
}
