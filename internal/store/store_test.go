package store

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/devboom/devboom/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return Open(filepath.Join(t.TempDir(), "store.json"), zap.NewNop())
}

func TestOpen_MissingFileSeedsDefaults(t *testing.T) {
	s := newTestStore(t)
	ides := s.IDEs()
	if len(ides) == 0 {
		t.Fatal("expected default IDEs in a fresh store")
	}
	if ides[0].ID != "vscode" {
		t.Errorf("expected vscode first by priority, got %s", ides[0].ID)
	}
}

func TestOpen_CorruptFileSeedsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	s := Open(path, zap.NewNop())
	if len(s.IDEs()) == 0 {
		t.Error("expected defaults after corrupt store")
	}
}

func TestAddProject_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.json")
	projectDir := filepath.Join(dir, "myproj")
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		t.Fatal(err)
	}

	s := Open(path, zap.NewNop())
	p, err := s.AddProject(NewProjectInput{Path: projectDir}, nil)
	if err != nil {
		t.Fatalf("AddProject: %v", err)
	}
	if p.Name != "myproj" {
		t.Errorf("expected name from directory, got %q", p.Name)
	}
	if p.ID == "" {
		t.Error("expected a generated id")
	}

	reopened := Open(path, zap.NewNop())
	projects := reopened.Projects()
	if len(projects) != 1 || projects[0].ID != p.ID {
		t.Fatalf("project did not survive reopen: %+v", projects)
	}
}

func TestAddProject_RejectsDuplicatePath(t *testing.T) {
	dir := t.TempDir()
	projectDir := filepath.Join(dir, "p")
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		t.Fatal(err)
	}

	s := Open(filepath.Join(dir, "store.json"), zap.NewNop())
	if _, err := s.AddProject(NewProjectInput{Path: projectDir}, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddProject(NewProjectInput{Path: projectDir}, nil); err != ErrDuplicate {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestAddProject_RejectsMissingPath(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.AddProject(NewProjectInput{Path: "/no/such/dir"}, nil); err == nil {
		t.Error("expected error for missing project path")
	}
}

func TestRemoveProject(t *testing.T) {
	dir := t.TempDir()
	projectDir := filepath.Join(dir, "p")
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		t.Fatal(err)
	}

	s := Open(filepath.Join(dir, "store.json"), zap.NewNop())
	p, err := s.AddProject(NewProjectInput{Path: projectDir}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.RemoveProject(p.ID); err != nil {
		t.Fatalf("RemoveProject: %v", err)
	}
	if err := s.RemoveProject(p.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound on second removal, got %v", err)
	}
}

func TestSetIDEPreferences_ValidatesAndCaps(t *testing.T) {
	dir := t.TempDir()
	projectDir := filepath.Join(dir, "p")
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		t.Fatal(err)
	}

	s := Open(filepath.Join(dir, "store.json"), zap.NewNop())
	p, err := s.AddProject(NewProjectInput{Path: projectDir}, nil)
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"a", "b", "c"} {
		if _, err := s.AddIDE(NewIDEInput{Name: name, Executable: name, Category: model.CategoryCLI}); err != nil {
			t.Fatal(err)
		}
	}
	ides := s.IDEs()

	var ids []string
	for _, ide := range ides {
		ids = append(ids, ide.ID)
	}
	// Unknown id, a duplicate, and more than three valid entries.
	input := append([]string{"bogus", ids[0], ids[0]}, ids[1:]...)

	updated, err := s.SetIDEPreferences(p.ID, input)
	if err != nil {
		t.Fatalf("SetIDEPreferences: %v", err)
	}
	prefs := updated.Metadata.IDEPreferences
	if len(prefs) != 3 {
		t.Fatalf("expected 3 preferences, got %d: %v", len(prefs), prefs)
	}
	for _, pref := range prefs {
		if pref == "bogus" {
			t.Error("unknown IDE id survived validation")
		}
	}
}

func TestRemoveIDE_ScrubsPreferences(t *testing.T) {
	dir := t.TempDir()
	projectDir := filepath.Join(dir, "p")
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		t.Fatal(err)
	}

	s := Open(filepath.Join(dir, "store.json"), zap.NewNop())
	p, err := s.AddProject(NewProjectInput{Path: projectDir}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetIDEPreferences(p.ID, []string{"vscode", "cursor"}); err != nil {
		t.Fatal(err)
	}

	if err := s.RemoveIDE("vscode"); err != nil {
		t.Fatalf("RemoveIDE: %v", err)
	}

	got, err := s.Project(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	for _, pref := range got.Metadata.IDEPreferences {
		if pref == "vscode" {
			t.Error("removed IDE still referenced by project preferences")
		}
	}
}

func TestReorder(t *testing.T) {
	dir := t.TempDir()
	s := Open(filepath.Join(dir, "store.json"), zap.NewNop())

	var ids []string
	for _, name := range []string{"one", "two", "three"} {
		pd := filepath.Join(dir, name)
		if err := os.MkdirAll(pd, 0755); err != nil {
			t.Fatal(err)
		}
		p, err := s.AddProject(NewProjectInput{Path: pd}, nil)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, p.ID)
	}

	// Reverse the first two, leave the third unlisted.
	if err := s.Reorder([]string{ids[1], ids[0]}); err != nil {
		t.Fatalf("Reorder: %v", err)
	}

	order := map[string]int64{}
	for _, id := range ids {
		p, err := s.Project(id)
		if err != nil {
			t.Fatal(err)
		}
		order[id] = p.DisplayOrder
	}
	if order[ids[1]] != 1 || order[ids[0]] != 2 {
		t.Errorf("listed projects misordered: %v", order)
	}
	if order[ids[2]] <= order[ids[0]] {
		t.Errorf("unlisted project should sort after listed ones: %v", order)
	}
}

func TestSetIDEIcon(t *testing.T) {
	s := newTestStore(t)
	url := "data:image/png;source=web-v1;base64,AAAA"

	ide, err := s.SetIDEIcon("vscode", url)
	if err != nil {
		t.Fatalf("SetIDEIcon: %v", err)
	}
	if ide.Icon == nil || *ide.Icon != url {
		t.Error("icon data URL not stored")
	}

	if _, err := s.SetIDEIcon("nope", url); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAddDetectedIDE_SkipsExisting(t *testing.T) {
	s := newTestStore(t)

	added, err := s.AddDetectedIDE(model.IDEConfig{ID: "vscode", Name: "VSCode", Executable: "code"})
	if err != nil {
		t.Fatal(err)
	}
	if added {
		t.Error("expected existing id to be skipped")
	}

	added, err = s.AddDetectedIDE(model.IDEConfig{ID: "goland", Name: "GoLand", Executable: "goland64.exe"})
	if err != nil {
		t.Fatal(err)
	}
	if !added {
		t.Error("expected new id to be added")
	}
	ide, err := s.IDE("goland")
	if err != nil {
		t.Fatal(err)
	}
	if !ide.AutoDetected {
		t.Error("detected IDE should be flagged auto-detected")
	}
}
