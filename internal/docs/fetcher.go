// Package docs retrieves PyLabRobot user-guide text from a pinned GitHub
// archive. Retrieval is best-effort: when the archive cannot be fetched
// the curated usage notes are still returned, so callers always get
// something actionable.
package docs

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Sections of the user guide this fetcher knows how to assemble.
const (
	SectionLiquid   = "liquid"
	SectionMaterial = "material"
)

const (
	defaultBaseURL = "https://github.com"
	defaultRepo    = "PyLabRobot/pylabrobot"
	// Pinned commit so retrieved docs stay stable across upstream changes.
	defaultRef = "106aef9c8699ceb826d8c9c894eba304a082f24d"

	liquidSubdir   = "docs/user_guide/00_liquid-handling/hamilton-star"
	materialSubdir = "docs/user_guide/01_material-handling"

	maxDocChars  = 50000
	maxFileChars = 5000

	fetchTimeout = 20 * time.Second
)

// Config describes how to build a Fetcher. Zero values select the pinned
// upstream archive and a default HTTP client.
type Config struct {
	Client  *http.Client
	BaseURL string
	Repo    string
	Ref     string
	Logger  *zap.Logger
}

// Fetcher downloads and assembles documentation sections.
type Fetcher struct {
	client  *http.Client
	baseURL string
	repo    string
	ref     string
	logger  *zap.Logger
}

// NewFetcher constructs a Fetcher from the supplied configuration.
func NewFetcher(cfg Config) *Fetcher {
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: fetchTimeout}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Repo == "" {
		cfg.Repo = defaultRepo
	}
	if cfg.Ref == "" {
		cfg.Ref = defaultRef
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Fetcher{
		client:  cfg.Client,
		baseURL: cfg.BaseURL,
		repo:    cfg.Repo,
		ref:     cfg.Ref,
		logger:  cfg.Logger,
	}
}

// LiquidHandlingGuide returns the curated liquid-handling documentation:
// hand-written usage notes followed by archive content when available.
func (f *Fetcher) LiquidHandlingGuide(ctx context.Context) string {
	return capChars(liquidNotes+f.sectionContent(ctx, SectionLiquid), maxDocChars+len(liquidNotes))
}

// MaterialHandlingGuide returns the material-handling documentation.
func (f *Fetcher) MaterialHandlingGuide(ctx context.Context) string {
	return f.sectionContent(ctx, SectionMaterial)
}

func (f *Fetcher) sectionContent(ctx context.Context, section string) string {
	docs := f.collectSection(ctx, section)
	if len(docs) == 0 {
		return ""
	}

	var text string
	if section == SectionLiquid {
		text = formatLiquidGuide(docs)
	} else {
		parts := make([]string, 0, len(docs))
		for _, doc := range docs {
			if doc.text != "" {
				parts = append(parts, doc.text)
			}
		}
		text = strings.Join(parts, "\n\n")
	}

	return capChars(text, maxDocChars)
}

type namedDoc struct {
	name string
	text string
}

// collectSection downloads the pinned archive and extracts the section's
// documentation files in deterministic order. Failures are logged and
// yield an empty slice.
func (f *Fetcher) collectSection(ctx context.Context, section string) []namedDoc {
	data, err := f.fetchArchive(ctx)
	if err != nil {
		f.logger.Warn("documentation archive unavailable",
			zap.String("section", section),
			zap.Error(err))
		return nil
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		f.logger.Warn("documentation archive unreadable", zap.Error(err))
		return nil
	}

	subdir := materialSubdir
	if section == SectionLiquid {
		subdir = liquidSubdir
	}

	var candidates []*zip.File
	for _, file := range reader.File {
		lower := strings.ToLower(file.Name)
		if !strings.Contains(lower, subdir) {
			continue
		}
		if strings.HasSuffix(lower, "/") || !hasDocExtension(lower) {
			continue
		}
		candidates = append(candidates, file)
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := strings.ToLower(candidates[i].Name), strings.ToLower(candidates[j].Name)
		if section == SectionLiquid {
			// basic.ipynb anchors the liquid guide.
			aBasic := strings.HasSuffix(a, "basic.ipynb")
			bBasic := strings.HasSuffix(b, "basic.ipynb")
			if aBasic != bBasic {
				return aBasic
			}
		}
		return a < b
	})

	var docs []namedDoc
	for _, file := range candidates {
		text, err := readArchiveFile(file)
		if err != nil {
			f.logger.Debug("skipping unreadable documentation file",
				zap.String("file", file.Name),
				zap.Error(err))
			continue
		}
		if text == "" {
			continue
		}
		docs = append(docs, namedDoc{
			name: strings.ToLower(file.Name),
			text: capChars(text, maxFileChars),
		})
	}

	return docs
}

func (f *Fetcher) fetchArchive(ctx context.Context) ([]byte, error) {
	url := fmt.Sprintf("%s/%s/archive/%s.zip", f.baseURL, f.repo, f.ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read archive body: %w", err)
	}
	return data, nil
}

func readArchiveFile(file *zip.File) (string, error) {
	handle, err := file.Open()
	if err != nil {
		return "", err
	}
	defer handle.Close()

	data, err := io.ReadAll(handle)
	if err != nil {
		return "", err
	}

	if strings.HasSuffix(strings.ToLower(file.Name), ".ipynb") {
		return notebookText(data), nil
	}
	return string(data), nil
}

func hasDocExtension(lower string) bool {
	return strings.HasSuffix(lower, ".md") ||
		strings.HasSuffix(lower, ".rst") ||
		strings.HasSuffix(lower, ".txt") ||
		strings.HasSuffix(lower, ".ipynb")
}

func capChars(text string, limit int) string {
	if len(text) > limit {
		return text[:limit]
	}
	return text
}
