package icon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Request describes one tool whose icon should be resolved. Immutable
// for the duration of a resolution.
type Request struct {
	// ToolID is the stable identifier used as the cache key.
	ToolID string
	// Executable is a path or a bare command name.
	Executable string
	// Name is the tool's display name, used as a brand hint.
	Name string
}

// hints returns the brand hint strings for vendor icon lookup.
func (r Request) hints() []string {
	return []string{
		strings.ToLower(r.ToolID),
		strings.ToLower(r.Name),
		strings.ToLower(filepath.Base(r.Executable)),
	}
}

// executableExts are the file types the user-file override routes
// through native extraction instead of reading directly.
var executableExts = map[string]bool{".exe": true, ".cmd": true, ".bat": true, ".ps1": true}

// Resolver composes the extraction, cache, and fetch tiers into one
// deterministic fallback chain. It runs synchronously on the calling
// goroutine; responsiveness-sensitive callers offload the whole call.
type Resolver struct {
	extractor Extractor
	cache     *Cache
	fetcher   *Fetcher
	logger    *zap.Logger
}

// NewResolver wires the resolution tiers together.
func NewResolver(extractor Extractor, cache *Cache, fetcher *Fetcher, logger *zap.Logger) *Resolver {
	return &Resolver{
		extractor: extractor,
		cache:     cache,
		fetcher:   fetcher,
		logger:    logger,
	}
}

// Resolve produces an icon for the request, or nil when every tier
// misses (the caller falls back to its generic placeholder).
//
// If existing is still valid — current extraction version, or any
// non-extraction icon with a payload — it is returned unchanged and no
// tier runs. Otherwise the chain is fixed: extract from the literal
// path if it exists on disk, extract from a PATH resolution of the
// executable, load the disk cache, fetch a vendor icon. First hit wins.
func (r *Resolver) Resolve(ctx context.Context, req Request, existing *Icon) *Icon {
	if existing != nil && !existing.Stale() {
		return existing
	}

	if ic := r.extractTier(req); ic != nil {
		return ic
	}

	if ic, err := r.cache.Load(req.ToolID); err == nil {
		return ic
	}

	ic, err := r.fetcher.Fetch(ctx, req.hints(), req.ToolID)
	if err != nil {
		r.logger.Debug("icon resolution exhausted all tiers",
			zap.String("tool", req.ToolID),
			zap.Error(err),
		)
		return nil
	}
	return ic
}

func (r *Resolver) extractTier(req Request) *Icon {
	if _, err := os.Stat(req.Executable); err == nil {
		src := IconSourcePath(req.Executable, filepath.Base(req.Executable))
		if ic, err := r.extractor.Extract(src); err == nil {
			return ic
		}
	} else if found, err := LookPath(req.Executable); err == nil {
		src := IconSourcePath(found, req.Executable)
		if ic, err := r.extractor.Extract(src); err == nil {
			return ic
		}
	}
	return nil
}

// FromUserFile resolves an icon from a caller-chosen local file. This
// is an explicit user override: it bypasses the cache and remote tiers
// entirely and always wins over whatever is stored. Unlike Resolve,
// failures here are surfaced as descriptive errors — the user picked
// the file and can correct it.
func (r *Resolver) FromUserFile(path string) (*Icon, error) {
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return nil, fmt.Errorf("icon file does not exist: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if executableExts[ext] {
		// Executables go through native extraction and keep the
		// extraction tag, so a future algorithm bump refreshes them.
		src := IconSourcePath(path, filepath.Base(path))
		ic, err := r.extractor.Extract(src)
		if err != nil {
			return nil, fmt.Errorf("extracting icon from executable failed")
		}
		return ic, nil
	}

	mime, ok := mimeByExt[strings.TrimPrefix(ext, ".")]
	if !ok {
		return nil, fmt.Errorf("unsupported icon file type %q: use png/svg/ico/jpg/webp, or an exe/cmd/bat/ps1 executable", ext)
	}

	// Size-checked from the stat before reading, so an oversized file is
	// rejected without ever being buffered.
	if fi.Size() == 0 {
		return nil, fmt.Errorf("icon file is empty")
	}
	if fi.Size() > MaxIconBytes {
		return nil, fmt.Errorf("icon file exceeds the 2MB limit")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading icon file: %w", err)
	}
	if len(data) == 0 || len(data) > MaxIconBytes {
		return nil, fmt.Errorf("icon file size changed while reading")
	}

	return &Icon{
		MIME:    mime,
		Source:  SourceUserFile,
		Version: 1,
		Data:    data,
	}, nil
}
