// Package store persists the project and IDE registry as a flat JSON
// file guarded by a single in-process lock. The store is small (tens of
// entries), so whole-file rewrite on every mutation keeps the format
// trivially inspectable and crash-safe enough for a local tool.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/devboom/devboom/internal/model"
)

// ErrNotFound is returned when a project or IDE id is unknown.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when adding a project whose path is already
// registered.
var ErrDuplicate = errors.New("already registered")

type contents struct {
	Projects []model.Project   `json:"projects"`
	IDEs     []model.IDEConfig `json:"ides"`
}

// Store is the JSON-backed registry. All methods are safe for
// concurrent use; a single mutex serializes every read and write.
type Store struct {
	path   string
	logger *zap.Logger

	mu   sync.Mutex
	data contents
}

// Open loads (or initializes) the registry at path. A missing or
// unreadable file yields an empty registry seeded with default IDEs
// rather than an error — the launcher must start even with a damaged
// store.
func Open(path string, logger *zap.Logger) *Store {
	s := &Store{path: path, logger: logger}
	s.data = load(path, logger)
	return s
}

func load(path string, logger *zap.Logger) contents {
	raw, err := os.ReadFile(path)
	if err != nil {
		return contents{IDEs: defaultIDEs()}
	}

	var c contents
	if err := json.Unmarshal(raw, &c); err != nil {
		logger.Warn("store file is corrupt, starting fresh",
			zap.String("path", path),
			zap.Error(err),
		)
		return contents{IDEs: defaultIDEs()}
	}
	if len(c.IDEs) == 0 {
		c.IDEs = defaultIDEs()
	}
	for i := range c.Projects {
		if c.Projects[i].DisplayOrder == 0 {
			c.Projects[i].DisplayOrder = int64(i) + 1
		}
	}
	return c
}

// save writes the registry back to disk. Called with the lock held.
func (s *Store) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0644); err != nil {
		return fmt.Errorf("writing store: %w", err)
	}
	return nil
}

// defaultIDEs seeds a fresh registry so the launcher is usable before
// any detection has run.
func defaultIDEs() []model.IDEConfig {
	return []model.IDEConfig{
		{ID: "vscode", Name: "VSCode", Executable: "code", ArgsTemplate: "{projectPath}", Category: model.CategoryGUI, Priority: 100},
		{ID: "cursor", Name: "Cursor", Executable: "cursor", ArgsTemplate: "{projectPath}", Category: model.CategoryGUI, Priority: 110},
	}
}

// Projects returns all projects sorted by most recently modified, then
// name. LastModified is refreshed from the filesystem on each call.
func (s *Store) Projects() []model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.data.Projects {
		s.data.Projects[i].LastModified = fileMtime(s.data.Projects[i].Path)
	}

	out := make([]model.Project, len(s.data.Projects))
	copy(out, s.data.Projects)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].LastModified, out[j].LastModified
		switch {
		case a == nil && b == nil:
			return out[i].Name < out[j].Name
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.After(*b)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func fileMtime(path string) *time.Time {
	fi, err := os.Stat(path)
	if err != nil {
		return nil
	}
	t := fi.ModTime().UTC()
	return &t
}

// NewProjectInput carries the caller-supplied fields for AddProject.
type NewProjectInput struct {
	Name           string             `json:"name"`
	Path           string             `json:"path"`
	ProjectType    *model.ProjectType `json:"projectType"`
	Favorite       bool               `json:"favorite"`
	Tags           []string           `json:"tags"`
	Description    *string            `json:"description"`
	IDEPreferences []string           `json:"idePreferences"`
}

// AddProject registers a project directory. The path must exist and be
// unique; the project type is detected from the directory when not
// given.
func (s *Store) AddProject(in NewProjectInput, detect func(string) model.ProjectType) (*model.Project, error) {
	fi, err := os.Stat(in.Path)
	if err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("project path does not exist or is not a directory: %s", in.Path)
	}
	abs, err := filepath.Abs(in.Path)
	if err != nil {
		return nil, fmt.Errorf("resolving project path: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.data.Projects {
		if p.Path == abs {
			return nil, ErrDuplicate
		}
	}

	name := in.Name
	if name == "" {
		name = filepath.Base(abs)
	}
	ptype := model.TypeGeneric
	if in.ProjectType != nil {
		ptype = *in.ProjectType
	} else if detect != nil {
		ptype = detect(abs)
	}

	project := model.Project{
		ID:           uuid.NewString(),
		Name:         name,
		Path:         abs,
		ProjectType:  ptype,
		Favorite:     in.Favorite,
		Tags:         in.Tags,
		LastModified: fileMtime(abs),
		CreatedAt:    time.Now().UTC(),
		DisplayOrder: s.nextDisplayOrder(),
		Metadata: model.ProjectMetadata{
			IDEPreferences: in.IDEPreferences,
			Description:    in.Description,
		},
	}
	s.data.Projects = append(s.data.Projects, project)
	if err := s.save(); err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *Store) nextDisplayOrder() int64 {
	var max int64
	for _, p := range s.data.Projects {
		if p.DisplayOrder > max {
			max = p.DisplayOrder
		}
	}
	return max + 1
}

// RemoveProject deletes a project by id.
func (s *Store) RemoveProject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.data.Projects)
	kept := s.data.Projects[:0]
	for _, p := range s.data.Projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.data.Projects = kept
	if len(s.data.Projects) == before {
		return ErrNotFound
	}
	return s.save()
}

// ToggleFavorite flips a project's favorite flag.
func (s *Store) ToggleFavorite(id string) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.data.Projects {
		if s.data.Projects[i].ID == id {
			s.data.Projects[i].Favorite = !s.data.Projects[i].Favorite
			p := s.data.Projects[i]
			return &p, s.save()
		}
	}
	return nil, ErrNotFound
}

// Reorder assigns display order following the given id sequence;
// projects not listed keep their relative order after the listed ones.
func (s *Store) Reorder(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rank := make(map[string]int64, len(ids))
	for i, id := range ids {
		rank[id] = int64(i) + 1
	}
	next := int64(len(ids)) + 1
	for i := range s.data.Projects {
		if r, ok := rank[s.data.Projects[i].ID]; ok {
			s.data.Projects[i].DisplayOrder = r
		} else {
			s.data.Projects[i].DisplayOrder = next
			next++
		}
	}
	return s.save()
}

// SetIDEPreferences replaces a project's preferred IDE list, dropping
// unknown and duplicate ids and capping the list at three.
func (s *Store) SetIDEPreferences(projectID string, ideIDs []string) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	valid := make(map[string]bool, len(s.data.IDEs))
	for _, ide := range s.data.IDEs {
		valid[ide.ID] = true
	}

	seen := make(map[string]bool)
	var normalized []string
	for _, id := range ideIDs {
		if valid[id] && !seen[id] {
			seen[id] = true
			normalized = append(normalized, id)
		}
	}
	if len(normalized) > 3 {
		normalized = normalized[:3]
	}

	for i := range s.data.Projects {
		if s.data.Projects[i].ID == projectID {
			s.data.Projects[i].Metadata.IDEPreferences = normalized
			p := s.data.Projects[i]
			return &p, s.save()
		}
	}
	return nil, ErrNotFound
}

// MarkOpened stamps a project's last-opened time.
func (s *Store) MarkOpened(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.data.Projects {
		if s.data.Projects[i].ID == id {
			now := time.Now().UTC()
			s.data.Projects[i].LastOpened = &now
			return s.save()
		}
	}
	return ErrNotFound
}

// Project returns a project by id.
func (s *Store) Project(id string) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.data.Projects {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

// HasProjectPath reports whether a path is already registered.
func (s *Store) HasProjectPath(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.data.Projects {
		if p.Path == path {
			return true
		}
	}
	return false
}

// IDEs returns all configured IDEs sorted by priority.
func (s *Store) IDEs() []model.IDEConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.IDEConfig, len(s.data.IDEs))
	copy(out, s.data.IDEs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

// IDE returns one IDE config by id.
func (s *Store) IDE(id string) (*model.IDEConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ide := range s.data.IDEs {
		if ide.ID == id {
			return &ide, nil
		}
	}
	return nil, ErrNotFound
}

// NewIDEInput carries the caller-supplied fields for AddIDE.
type NewIDEInput struct {
	Name         string            `json:"name"`
	Executable   string            `json:"executable"`
	ArgsTemplate *string           `json:"argsTemplate"`
	Icon         *string           `json:"icon"`
	Category     model.IDECategory `json:"category"`
	Priority     *int              `json:"priority"`
}

// AddIDE registers a user-defined IDE.
func (s *Store) AddIDE(in NewIDEInput) (*model.IDEConfig, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("IDE name must not be empty")
	}
	if in.Executable == "" {
		return nil, fmt.Errorf("IDE executable must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ide := model.IDEConfig{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Executable:   in.Executable,
		ArgsTemplate: "{projectPath}",
		Icon:         in.Icon,
		Category:     in.Category,
		Priority:     200,
	}
	if in.ArgsTemplate != nil {
		ide.ArgsTemplate = *in.ArgsTemplate
	}
	if in.Priority != nil {
		ide.Priority = *in.Priority
	}

	s.data.IDEs = append(s.data.IDEs, ide)
	if err := s.save(); err != nil {
		return nil, err
	}
	return &ide, nil
}

// AddDetectedIDE inserts an auto-detected IDE unless its id already
// exists; returns false when skipped.
func (s *Store) AddDetectedIDE(ide model.IDEConfig) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.data.IDEs {
		if existing.ID == ide.ID {
			return false, nil
		}
	}
	ide.AutoDetected = true
	s.data.IDEs = append(s.data.IDEs, ide)
	return true, s.save()
}

// RemoveIDE deletes an IDE and scrubs it from project preferences.
func (s *Store) RemoveIDE(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.data.IDEs)
	kept := s.data.IDEs[:0]
	for _, ide := range s.data.IDEs {
		if ide.ID != id {
			kept = append(kept, ide)
		}
	}
	s.data.IDEs = kept
	if len(s.data.IDEs) == before {
		return ErrNotFound
	}

	for i := range s.data.Projects {
		prefs := s.data.Projects[i].Metadata.IDEPreferences[:0]
		for _, p := range s.data.Projects[i].Metadata.IDEPreferences {
			if p != id {
				prefs = append(prefs, p)
			}
		}
		s.data.Projects[i].Metadata.IDEPreferences = prefs
	}
	return s.save()
}

// SetIDEIcon stores an icon data URL for an IDE.
func (s *Store) SetIDEIcon(id, dataURL string) (*model.IDEConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.data.IDEs {
		if s.data.IDEs[i].ID == id {
			s.data.IDEs[i].Icon = &dataURL
			ide := s.data.IDEs[i]
			return &ide, s.save()
		}
	}
	return nil, ErrNotFound
}
