package docs

import "strings"

// liquidNotes is the hand-maintained preamble for the liquid-handling
// guide, covering labware naming pitfalls the upstream docs gloss over.
const liquidNotes = `Notes:
- Use hamilton_96_tiprack_1000uL_filter instead of HTF (deprecated). Note the capital L in uL.
- Use Cor_96_wellplate_360ul_Fb instead of Corning_96_wellplate_360ul_Fb.
- You must name all your plates, tip racks, and carriers.
- Assign labware into carriers via slot assignment (tip_car[0] = tiprack). Assign plates to rails using lh.deck.assign_child_resource(plate_car, rails=14).
- Rails must be between -4 and 32.
- Make sure most liquid handling operations are done with async/await.
- There are some methods that are not async, including lh.summary(). Do not use await for these methods.
- When picking up tips with multiple channels, use a flat list of tips. Do not use a list of lists. `

// liquidSections is the curated presentation order for the liquid guide.
// Each heading consumes the first still-unused file whose name matches
// one of its keywords; remaining files are appended afterwards under
// titles derived from their filenames, so duplicate or unmatched files
// are kept rather than dropped.
var liquidSections = []struct {
	heading  string
	keywords []string
}{
	{
		"Getting started with liquid handling on a Hamilton STAR(let)",
		[]string{"basic.ipynb", "basic", "getting-started"},
	},
	{"iSWAP Module", []string{"iswap"}},
	{"Liquid level detection on Hamilton STAR(let)", []string{"liquid-level", "lld", "level_detection", "level-detection"}},
	{"Z-probing", []string{"z-probing", "z_probing", "zprobing", "z-prob"}},
	{"Foil", []string{"foil"}},
	{"Using the 96 head", []string{"96", "head", "mca", "96-head", "head-96"}},
	{"Using Hamilton Liquid Classes with PyLabRobot", []string{"liquid-classes", "liquid_classes", "hamilton-liquid-classes"}},
}

// formatLiquidGuide assembles the liquid docs into curated order with
// headings.
func formatLiquidGuide(docs []namedDoc) string {
	used := make(map[int]struct{}, len(docs))

	pickFirst := func(keywords []string) string {
		for _, keyword := range keywords {
			for idx, doc := range docs {
				if _, taken := used[idx]; taken {
					continue
				}
				if strings.Contains(doc.name, keyword) {
					used[idx] = struct{}{}
					return doc.text
				}
			}
		}
		return ""
	}

	var parts []string
	for _, section := range liquidSections {
		if text := pickFirst(section.keywords); text != "" {
			parts = append(parts, "## "+section.heading+"\n\n"+text)
		}
	}

	for idx, doc := range docs {
		if _, taken := used[idx]; taken || doc.text == "" {
			continue
		}
		parts = append(parts, "## "+derivedTitle(doc.name)+"\n\n"+doc.text)
	}

	return strings.Join(parts, "\n\n")
}

func derivedTitle(name string) string {
	leaf := name
	if idx := strings.LastIndex(leaf, "/"); idx >= 0 {
		leaf = leaf[idx+1:]
	}
	if idx := strings.LastIndex(leaf, "."); idx > 0 {
		leaf = leaf[:idx]
	}
	leaf = strings.ReplaceAll(leaf, "_", " ")
	leaf = strings.ReplaceAll(leaf, "-", " ")

	words := strings.Fields(leaf)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
