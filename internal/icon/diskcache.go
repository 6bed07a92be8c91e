package icon

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// cacheExts is the probe order on lookup: vector first, then the
// lossless raster formats, then jpg.
var cacheExts = []string{"svg", "png", "ico", "webp", "jpg"}

// Cache stores one icon file per tool under a single directory:
// {dir}/{toolID}.{ext}. Writes overwrite by filename, so a tool never
// has two concurrently valid cache entries.
type Cache struct {
	dir    string
	logger *zap.Logger
}

// NewCache creates a disk cache rooted at dir. The directory is created
// lazily on first store, not here — a missing cache dir is an ordinary
// miss, not an error.
func NewCache(dir string, logger *zap.Logger) *Cache {
	return &Cache{dir: dir, logger: logger}
}

// Path returns the cache file path for a tool and extension.
func (c *Cache) Path(toolID, ext string) string {
	return filepath.Join(c.dir, fmt.Sprintf("%s.%s", toolID, ext))
}

// Load returns the cached icon for a tool, probing extensions in
// preference order. The first existing file with a size in
// (0, MaxIconBytes] wins; anything else is treated as a miss.
func (c *Cache) Load(toolID string) (*Icon, error) {
	for _, ext := range cacheExts {
		path := c.Path(toolID, ext)
		fi, err := os.Stat(path)
		if err != nil || fi.Size() == 0 || fi.Size() > MaxIconBytes {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil || len(data) == 0 || len(data) > MaxIconBytes {
			continue
		}
		return &Icon{
			MIME:    mimeByExt[ext],
			Source:  SourceWebCache,
			Version: 1,
			Data:    data,
		}, nil
	}
	return nil, fmt.Errorf("no cached icon for %s", toolID)
}

// Store writes an icon to the cache, picking the extension from the
// MIME type. Caching is best-effort: failures are logged and swallowed,
// never surfaced to the resolution caller.
func (c *Cache) Store(toolID string, data []byte, mime string) {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		c.logger.Debug("creating icon cache dir", zap.Error(err))
		return
	}
	path := c.Path(toolID, extByMIME(mime))
	if err := os.WriteFile(path, data, 0644); err != nil {
		c.logger.Debug("writing icon cache file",
			zap.String("path", path),
			zap.Error(err),
		)
	}
}
