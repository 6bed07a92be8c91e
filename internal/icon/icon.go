// Package icon implements the icon resolution and caching pipeline:
// native extraction from executables, a per-tool disk cache, and a
// best-effort vendor icon fetch, all funneled through one data-URL
// encoding so callers never branch on where an icon came from.
package icon

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// ExtractionVersion is the current revision of the native extraction
// algorithm. Bump it whenever a change can alter previously produced
// pixels — stored icons tagged with an older revision are re-extracted
// on next access.
const ExtractionVersion = 3

// MaxIconBytes is the upper bound for any accepted icon payload,
// whether it comes from a user file, the disk cache, or the network.
const MaxIconBytes = 2 * 1024 * 1024

// Source identifies how an icon was produced.
type Source string

const (
	SourceExtraction Source = "extraction" // rasterized from a native executable
	SourceUserFile   Source = "user-file"  // caller-supplied image file
	SourceWeb        Source = "web"        // downloaded from a vendor URL
	SourceWebCache   Source = "web-cache"  // read back from the disk cache
)

// Icon is a resolved icon image. Immutable once produced: the resolver
// replaces icons wholesale, it never mutates them in place.
type Icon struct {
	MIME    string
	Source  Source
	Version int
	Data    []byte
}

// Stale reports whether the icon must be re-resolved. Only natively
// extracted icons carry the algorithm revision; anything else stays
// valid as long as it has a payload.
func (i *Icon) Stale() bool {
	if i == nil || len(i.Data) == 0 {
		return true
	}
	return i.Source == SourceExtraction && i.Version != ExtractionVersion
}

// tag renders the provenance segment of the data URL, e.g.
// "extraction=v3" or "source=web-v1".
func (i *Icon) tag() string {
	if i.Source == SourceExtraction {
		return fmt.Sprintf("extraction=v%d", i.Version)
	}
	return fmt.Sprintf("source=%s-v%d", i.Source, i.Version)
}

// DataURL encodes the icon as a self-describing embedded reference:
//
//	data:<mime>;<provenance-tag>;base64,<payload>
//
// The UI layer consumes only the MIME and payload; the resolver reads
// the tag back to decide staleness.
func (i *Icon) DataURL() string {
	return fmt.Sprintf("data:%s;%s;base64,%s",
		i.MIME, i.tag(), base64.StdEncoding.EncodeToString(i.Data))
}

// ParseDataURL decodes a stored data URL back into a structured Icon.
// The provenance tag is validated here, once, instead of being
// re-derived by substring checks at every call site.
func ParseDataURL(s string) (*Icon, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, fmt.Errorf("not a data URL")
	}

	parts := strings.SplitN(rest, ",", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("data URL has no payload separator")
	}

	meta := strings.Split(parts[0], ";")
	if len(meta) != 3 || meta[2] != "base64" {
		return nil, fmt.Errorf("unexpected data URL header %q", parts[0])
	}

	ic := &Icon{MIME: meta[0]}
	if err := parseTag(meta[1], ic); err != nil {
		return nil, err
	}

	data, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}
	ic.Data = data
	return ic, nil
}

func parseTag(tag string, ic *Icon) error {
	if v, ok := strings.CutPrefix(tag, "extraction=v"); ok {
		if _, err := fmt.Sscanf(v, "%d", &ic.Version); err != nil {
			return fmt.Errorf("bad extraction version in tag %q", tag)
		}
		ic.Source = SourceExtraction
		return nil
	}

	val, ok := strings.CutPrefix(tag, "source=")
	if !ok {
		return fmt.Errorf("unknown provenance tag %q", tag)
	}
	idx := strings.LastIndex(val, "-v")
	if idx < 0 {
		return fmt.Errorf("provenance tag %q has no version", tag)
	}
	if _, err := fmt.Sscanf(val[idx+2:], "%d", &ic.Version); err != nil {
		return fmt.Errorf("bad version in tag %q", tag)
	}
	switch Source(val[:idx]) {
	case SourceUserFile, SourceWeb, SourceWebCache:
		ic.Source = Source(val[:idx])
	default:
		return fmt.Errorf("unknown icon source %q", val[:idx])
	}
	return nil
}

// mimeByExt maps cache file extensions to MIME types. Unknown
// extensions fall back to PNG, matching what the extractor writes.
var mimeByExt = map[string]string{
	"svg":  "image/svg+xml",
	"png":  "image/png",
	"ico":  "image/x-icon",
	"webp": "image/webp",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
}

// extByMIME picks the cache file extension for a MIME type.
func extByMIME(mime string) string {
	m := strings.ToLower(mime)
	switch {
	case strings.Contains(m, "image/svg+xml"):
		return "svg"
	case strings.Contains(m, "image/x-icon"), strings.Contains(m, "image/vnd.microsoft.icon"):
		return "ico"
	case strings.Contains(m, "image/webp"):
		return "webp"
	case strings.Contains(m, "image/jpeg"), strings.Contains(m, "image/jpg"):
		return "jpg"
	default:
		return "png"
	}
}
