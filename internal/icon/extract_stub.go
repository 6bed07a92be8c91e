//go:build !windows

package icon

// nopExtractor is the extractor on platforms without shell icon
// extraction. It always misses, deferring to the cache and remote
// tiers.
type nopExtractor struct{}

func newPlatformExtractor() Extractor { return nopExtractor{} }

func (nopExtractor) Extract(string) (*Icon, error) { return nil, ErrNoIcon }
