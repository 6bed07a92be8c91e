package icon

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNoIcon is returned by an Extractor when no icon could be obtained.
// The resolver treats it like any other extraction failure and moves on
// to the next tier.
var ErrNoIcon = errors.New("no icon available")

// Extractor obtains an icon for an executable from the host platform.
// The Windows implementation rasterizes the shell icon; every other
// platform gets a no-op that always misses, so the fallback chain stays
// correct without build-time branching at call sites.
type Extractor interface {
	Extract(path string) (*Icon, error)
}

// NewExtractor returns the platform extractor.
func NewExtractor() Extractor {
	return newPlatformExtractor()
}

// shimExts are script wrappers that carry a generic shell icon. When an
// executable resolves to one of these, a sibling binary with the same
// base name usually has the real icon.
var shimExts = map[string]bool{".cmd": true, ".bat": true, ".ps1": true}

// IconSourcePath picks the file whose icon best represents execPath.
// For script shims it prefers a same-named .exe next to the shim, then
// a PATH lookup for that sibling, before settling for the shim itself.
func IconSourcePath(execPath, execName string) string {
	ext := strings.ToLower(filepath.Ext(execPath))
	if !shimExts[ext] {
		return execPath
	}

	stem := strings.TrimSuffix(filepath.Base(execPath), filepath.Ext(execPath))
	sibling := filepath.Join(filepath.Dir(execPath), stem+".exe")
	if _, err := os.Stat(sibling); err == nil {
		return sibling
	}

	name := strings.TrimSuffix(execName, ".exe")
	if found, err := LookPath(name + ".exe"); err == nil {
		return found
	}
	return execPath
}

// LookPath resolves a command name against PATH. exec.LookPath already
// consults PATHEXT on Windows; the extra candidates cover callers that
// pass bare names configured on another platform.
func LookPath(name string) (string, error) {
	if p, err := exec.LookPath(name); err == nil {
		return p, nil
	}

	var candidates []string
	if strings.HasSuffix(strings.ToLower(name), ".exe") {
		candidates = append(candidates, strings.TrimSuffix(name, filepath.Ext(name)))
	} else if !strings.Contains(name, ".") {
		candidates = append(candidates, name+".exe", name+".cmd", name+".bat")
	}
	for _, c := range candidates {
		if p, err := exec.LookPath(c); err == nil {
			return p, nil
		}
	}
	return "", exec.ErrNotFound
}
