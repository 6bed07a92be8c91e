package icon

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// VendorIcons maps brand hint substrings to candidate icon URLs, tried
// in order. Kept as data so new tools are a table entry, not a code
// branch.
type VendorIcons struct {
	Match []string
	URLs  []string
}

// DefaultVendorIcons covers the tools we recognize out of the box.
var DefaultVendorIcons = []VendorIcons{
	{
		Match: []string{"vscode", "visual studio code", "code.exe"},
		URLs: []string{
			"https://code.visualstudio.com/favicon.ico",
			"https://code.visualstudio.com/assets/images/code-stable.png",
		},
	},
	{
		Match: []string{"cursor"},
		URLs: []string{
			"https://cursor.com/favicon.ico",
			"https://www.cursor.com/favicon.ico",
		},
	},
	{
		Match: []string{"claude"},
		URLs: []string{
			"https://claude.ai/favicon.ico",
			"https://www.anthropic.com/favicon.ico",
		},
	},
	{
		Match: []string{"opencode"},
		URLs: []string{
			"https://opencode.ai/favicon.ico",
			"https://github.com/sst/opencode/raw/dev/packages/web/public/favicon.ico",
		},
	},
	{
		Match: []string{"codex", "openai"},
		URLs: []string{
			"https://openai.com/favicon.ico",
			"https://chatgpt.com/favicon.ico",
		},
	},
}

// Fetcher downloads vendor icons for recognized tools and persists
// them into the disk cache. Strictly best-effort: every network or
// validation failure just advances to the next candidate URL, and there
// are no retries beyond the candidate list.
type Fetcher struct {
	table     []VendorIcons
	cache     *Cache
	client    *http.Client
	userAgent string
	logger    *zap.Logger
}

// NewFetcher creates a fetcher over the given vendor table.
func NewFetcher(table []VendorIcons, cache *Cache, timeout time.Duration, userAgent string, logger *zap.Logger) *Fetcher {
	if userAgent == "" {
		userAgent = "devboom/0.1 icon-fetch"
	}
	return &Fetcher{
		table:     table,
		cache:     cache,
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		logger:    logger.With(zap.String("component", "icon_fetch")),
	}
}

// lookupURLs returns the candidate URLs for a set of brand hints, or
// nil when no table entry matches.
func (f *Fetcher) lookupURLs(hints []string) []string {
	merged := strings.ToLower(strings.Join(hints, " "))
	for _, entry := range f.table {
		for _, m := range entry.Match {
			if strings.Contains(merged, m) {
				return entry.URLs
			}
		}
	}
	return nil
}

// Fetch tries each candidate URL for the hinted vendor and returns the
// first acceptable response: 2xx, an image content type, and a body in
// (0, 2MiB]. Accepted bytes are persisted to the disk cache keyed by
// toolID before being returned.
func (f *Fetcher) Fetch(ctx context.Context, hints []string, toolID string) (*Icon, error) {
	urls := f.lookupURLs(hints)
	if len(urls) == 0 {
		return nil, ErrNoIcon
	}

	for _, url := range urls {
		ic, err := f.fetchOne(ctx, url)
		if err != nil {
			f.logger.Debug("vendor icon candidate failed",
				zap.String("url", url),
				zap.Error(err),
			)
			continue
		}
		f.cache.Store(toolID, ic.Data, ic.MIME)
		return ic, nil
	}
	return nil, ErrNoIcon
}

func (f *Fetcher) fetchOne(ctx context.Context, url string) (*Icon, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	if !strings.Contains(strings.ToLower(contentType), "image/") {
		return nil, fmt.Errorf("content type %q is not an image", contentType)
	}

	// Read one byte past the cap so an oversized body is detectable
	// without buffering the whole thing.
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxIconBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || len(data) > MaxIconBytes {
		return nil, fmt.Errorf("body size %d outside (0, %d]", len(data), MaxIconBytes)
	}

	return &Icon{
		MIME:    mimeByExt[extByMIME(contentType)],
		Source:  SourceWeb,
		Version: 1,
		Data:    data,
	}, nil
}
