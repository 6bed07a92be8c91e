package scan

import (
	"os"
	"strings"

	"github.com/devboom/devboom/internal/icon"
	"github.com/devboom/devboom/internal/model"
)

// IDEDefinition describes a well-known tool: where it usually installs
// and how to launch it. Kept as data so supporting a new tool is a
// table entry.
type IDEDefinition struct {
	ID             string
	Name           string
	ExecutableName string
	Paths          []string
	ArgsTemplate   string
	Category       model.IDECategory
	Priority       int
}

// KnownIDEs is the detection table. Paths use Windows-style %VAR%
// placeholders expanded against the environment at scan time; entries
// with no paths are discovered via PATH only.
var KnownIDEs = []IDEDefinition{
	{
		ID: "vscode", Name: "VSCode", ExecutableName: "Code.exe",
		Paths: []string{
			`%LOCALAPPDATA%\Programs\Microsoft VS Code\Code.exe`,
			`%USERPROFILE%\AppData\Local\Programs\Microsoft VS Code\Code.exe`,
			`C:\Program Files\Microsoft VS Code\Code.exe`,
			`C:\Program Files (x86)\Microsoft VS Code\Code.exe`,
		},
		ArgsTemplate: "{projectPath}", Category: model.CategoryGUI, Priority: 100,
	},
	{
		ID: "cursor", Name: "Cursor", ExecutableName: "cursor.exe",
		Paths: []string{
			`%USERPROFILE%\AppData\Local\cursor\cursor.exe`,
			`%LOCALAPPDATA%\Programs\cursor\cursor.exe`,
			`C:\Program Files\cursor\cursor.exe`,
		},
		ArgsTemplate: "{projectPath}", Category: model.CategoryGUI, Priority: 110,
	},
	{
		ID: "webstorm", Name: "WebStorm", ExecutableName: "webstorm64.exe",
		Paths: []string{
			`%LOCALAPPDATA%\Programs\WebStorm\bin\webstorm64.exe`,
			`C:\Program Files\JetBrains\WebStorm\bin\webstorm64.exe`,
		},
		ArgsTemplate: "{projectPath}", Category: model.CategoryGUI, Priority: 120,
	},
	{
		ID: "intellij", Name: "IntelliJ IDEA", ExecutableName: "idea64.exe",
		Paths: []string{
			`%LOCALAPPDATA%\Programs\IntelliJ IDEA\bin\idea64.exe`,
			`C:\Program Files\JetBrains\IntelliJ IDEA\bin\idea64.exe`,
		},
		ArgsTemplate: "{projectPath}", Category: model.CategoryGUI, Priority: 121,
	},
	{
		ID: "pycharm", Name: "PyCharm", ExecutableName: "pycharm64.exe",
		Paths: []string{
			`%LOCALAPPDATA%\Programs\PyCharm\bin\pycharm64.exe`,
			`C:\Program Files\JetBrains\PyCharm\bin\pycharm64.exe`,
		},
		ArgsTemplate: "{projectPath}", Category: model.CategoryGUI, Priority: 122,
	},
	{
		ID: "clion", Name: "CLion", ExecutableName: "clion64.exe",
		Paths: []string{
			`%LOCALAPPDATA%\Programs\CLion\bin\clion64.exe`,
			`C:\Program Files\JetBrains\CLion\bin\clion64.exe`,
		},
		ArgsTemplate: "{projectPath}", Category: model.CategoryGUI, Priority: 123,
	},
	{
		ID: "goland", Name: "GoLand", ExecutableName: "goland64.exe",
		Paths: []string{
			`%LOCALAPPDATA%\Programs\GoLand\bin\goland64.exe`,
			`C:\Program Files\JetBrains\GoLand\bin\goland64.exe`,
		},
		ArgsTemplate: "{projectPath}", Category: model.CategoryGUI, Priority: 124,
	},
	{
		ID: "rider", Name: "Rider", ExecutableName: "rider64.exe",
		Paths: []string{
			`%LOCALAPPDATA%\Programs\JetBrains\Rider\bin\rider64.exe`,
			`C:\Program Files\JetBrains\Rider\bin\rider64.exe`,
		},
		ArgsTemplate: "{projectPath}", Category: model.CategoryGUI, Priority: 125,
	},
	{
		ID: "fleet", Name: "Fleet", ExecutableName: "fleet.exe",
		Paths: []string{
			`%LOCALAPPDATA%\Programs\Fleet\bin\fleet.exe`,
			`C:\Program Files\JetBrains\Fleet\bin\fleet.exe`,
		},
		ArgsTemplate: "{projectPath}", Category: model.CategoryGUI, Priority: 126,
	},
	{
		ID: "android-studio", Name: "Android Studio", ExecutableName: "studio64.exe",
		Paths: []string{
			`%LOCALAPPDATA%\Android\android-studio\bin\studio64.exe`,
			`C:\Program Files\Android\Android Studio\bin\studio64.exe`,
		},
		ArgsTemplate: "{projectPath}", Category: model.CategoryGUI, Priority: 127,
	},
	{
		ID: "neovim", Name: "Neovim", ExecutableName: "nvim",
		Paths: []string{
			`%LOCALAPPDATA%\nvim\bin\nvim.exe`,
			`C:\Program Files\Neovim\bin\nvim.exe`,
		},
		ArgsTemplate: "{projectPath}", Category: model.CategoryCLI, Priority: 200,
	},
	{
		ID: "vim", Name: "Vim", ExecutableName: "vim",
		Paths: []string{
			`C:\Program Files\Vim\vim90\vim.exe`,
		},
		ArgsTemplate: "{projectPath}", Category: model.CategoryCLI, Priority: 201,
	},
	{ID: "claude", Name: "Claude CLI", ExecutableName: "claude", Category: model.CategoryCLI, Priority: 210},
	{ID: "codex", Name: "Codex CLI", ExecutableName: "codex", Category: model.CategoryCLI, Priority: 211},
	{ID: "opencode", Name: "OpenCode CLI", ExecutableName: "opencode", Category: model.CategoryCLI, Priority: 212},
}

// expandEnvPath substitutes %VAR% placeholders from the environment.
func expandEnvPath(path string) string {
	for _, v := range []string{"LOCALAPPDATA", "USERPROFILE", "APPDATA"} {
		placeholder := "%" + v + "%"
		if strings.Contains(path, placeholder) {
			if val := os.Getenv(v); val != "" {
				path = strings.ReplaceAll(path, placeholder, val)
			}
		}
	}
	return path
}

// ResolveExecutable finds the installed binary for a definition:
// known install paths first, then PATH.
func ResolveExecutable(def IDEDefinition) (string, bool) {
	for _, p := range def.Paths {
		expanded := expandEnvPath(p)
		if _, err := os.Stat(expanded); err == nil {
			return expanded, true
		}
	}
	if found, err := icon.LookPath(def.ExecutableName); err == nil {
		return found, true
	}
	return "", false
}

// DetectIDEs returns configs for every known IDE whose executable is
// installed, skipping ids present in the exclude set.
func DetectIDEs(exclude map[string]bool) []model.IDEConfig {
	var detected []model.IDEConfig
	for _, def := range KnownIDEs {
		if exclude[def.ID] {
			continue
		}
		path, ok := ResolveExecutable(def)
		if !ok {
			continue
		}
		detected = append(detected, model.IDEConfig{
			ID:           def.ID,
			Name:         def.Name,
			Executable:   path,
			ArgsTemplate: def.ArgsTemplate,
			Category:     def.Category,
			Priority:     def.Priority,
			AutoDetected: true,
		})
	}
	return detected
}
