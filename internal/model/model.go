// Package model defines the core data types for the launcher: projects
// and the IDE/tool configurations that open them. JSON tags match the
// on-disk store format and the API payloads consumed by the UI.
package model

import "time"

// ProjectType classifies a project by its build manifest.
type ProjectType string

const (
	TypeRust    ProjectType = "Rust"
	TypeNodejs  ProjectType = "Nodejs"
	TypePython  ProjectType = "Python"
	TypeJava    ProjectType = "Java"
	TypeGo      ProjectType = "Go"
	TypeDotnet  ProjectType = "Dotnet"
	TypeGeneric ProjectType = "Generic"
)

// ProjectMetadata holds the optional, user-editable extras.
type ProjectMetadata struct {
	IDEPreferences []string `json:"idePreferences"`
	GitURL         *string  `json:"gitUrl"`
	Description    *string  `json:"description"`
}

// Project is a registered project directory.
type Project struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Path         string          `json:"path"`
	ProjectType  ProjectType     `json:"projectType"`
	Favorite     bool            `json:"favorite"`
	Tags         []string        `json:"tags"`
	LastOpened   *time.Time      `json:"lastOpened"`
	LastModified *time.Time      `json:"lastModified"`
	CreatedAt    time.Time       `json:"createdAt"`
	DisplayOrder int64           `json:"displayOrder"`
	Metadata     ProjectMetadata `json:"metadata"`
}

// IDECategory controls how a tool is launched.
type IDECategory string

const (
	CategoryGUI      IDECategory = "Gui"
	CategoryCLI      IDECategory = "Cli"
	CategoryTerminal IDECategory = "Terminal"
	CategoryBrowser  IDECategory = "Browser"
)

// IDEConfig is a configured launchable tool. Icon, when set, is the
// self-describing data URL produced by the icon pipeline — the UI
// renders it directly, the resolver parses it to decide staleness.
type IDEConfig struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Executable   string      `json:"executable"`
	ArgsTemplate string      `json:"argsTemplate"`
	Icon         *string     `json:"icon"`
	Category     IDECategory `json:"category"`
	Priority     int         `json:"priority"`
	AutoDetected bool        `json:"autoDetected"`
}
