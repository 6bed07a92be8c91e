// Package scan discovers projects on disk and known IDE installations.
package scan

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/devboom/devboom/internal/model"
)

// projectMarkers are the manifest files that make a directory a
// project root, checked in detection-priority order.
var projectMarkers = []struct {
	file  string
	ptype model.ProjectType
}{
	{"Cargo.toml", model.TypeRust},
	{"package.json", model.TypeNodejs},
	{"requirements.txt", model.TypePython},
	{"pyproject.toml", model.TypePython},
	{"pom.xml", model.TypeJava},
	{"build.gradle", model.TypeJava},
	{"go.mod", model.TypeGo},
}

var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"target":       true,
	".venv":        true,
	"venv":         true,
	".idea":        true,
	".vscode":      true,
}

// DetectProjectType classifies a directory by its build manifests.
func DetectProjectType(dir string) model.ProjectType {
	for _, m := range projectMarkers {
		if _, err := os.Stat(filepath.Join(dir, m.file)); err == nil {
			return m.ptype
		}
	}
	if hasDotnetProject(dir) {
		return model.TypeDotnet
	}
	return model.TypeGeneric
}

func hasDotnetProject(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".sln" || ext == ".csproj" {
			return true
		}
	}
	return false
}

// isProjectRoot reports whether a directory looks like a standalone
// project (any build manifest, or a git checkout).
func isProjectRoot(dir string) bool {
	for _, m := range projectMarkers {
		if _, err := os.Stat(filepath.Join(dir, m.file)); err == nil {
			return true
		}
	}
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// Projects walks root up to maxDepth levels deep and returns the
// project roots found. Descent stops at a project root — nested
// projects inside one are the owner's business, not the scanner's.
func Projects(root string, maxDepth int) []string {
	var found []string
	walk(root, 0, maxDepth, &found)
	return found
}

func walk(dir string, depth, maxDepth int, out *[]string) {
	if depth > maxDepth || skipDirs[filepath.Base(dir)] {
		return
	}
	if isProjectRoot(dir) {
		*out = append(*out, dir)
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			walk(filepath.Join(dir, e.Name()), depth+1, maxDepth, out)
		}
	}
}
