package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/devboom/devboom/internal/icon"
	"github.com/devboom/devboom/internal/storage"
	"github.com/devboom/devboom/internal/store"
)

type stubExtractor struct {
	calls int
}

func (s *stubExtractor) Extract(path string) (*icon.Icon, error) {
	s.calls++
	return &icon.Icon{
		MIME:    "image/png",
		Source:  icon.SourceExtraction,
		Version: icon.ExtractionVersion,
		Data:    []byte{0x89, 'P', 'N', 'G'},
	}, nil
}

type fixture struct {
	svc       *IconService
	store     *store.Store
	audit     storage.ResolutionRepository
	extractor *stubExtractor
	dir       string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	logger := zap.NewNop()

	db, err := storage.NewDatabase(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("creating test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	audit := storage.NewResolutionRepository(db)

	st := store.Open(filepath.Join(dir, "store.json"), logger)

	extractor := &stubExtractor{}
	cache := icon.NewCache(filepath.Join(dir, "ide-icons"), logger)
	// Empty vendor table: the web tier always misses in tests.
	fetcher := icon.NewFetcher(nil, cache, time.Second, "", logger)
	resolver := icon.NewResolver(extractor, cache, fetcher, logger)

	return &fixture{
		svc:       NewIconService(st, resolver, audit, logger),
		store:     st,
		audit:     audit,
		extractor: extractor,
		dir:       dir,
	}
}

// addIDEWithBinary registers an IDE whose executable actually exists,
// so the extraction tier runs.
func (f *fixture) addIDEWithBinary(t *testing.T, name string) string {
	t.Helper()
	bin := filepath.Join(f.dir, name+".bin")
	if err := os.WriteFile(bin, []byte("binary"), 0755); err != nil {
		t.Fatal(err)
	}
	ide, err := f.store.AddIDE(store.NewIDEInput{Name: name, Executable: bin})
	if err != nil {
		t.Fatal(err)
	}
	return ide.ID
}

func TestRefreshAll_ResolvesAndPersists(t *testing.T) {
	f := newFixture(t)
	id := f.addIDEWithBinary(t, "myide")

	updated := f.svc.RefreshAll(context.Background())
	if updated == 0 {
		t.Fatal("expected at least one icon update")
	}

	ide, err := f.store.IDE(id)
	if err != nil {
		t.Fatal(err)
	}
	if ide.Icon == nil {
		t.Fatal("icon not persisted")
	}
	if !strings.Contains(*ide.Icon, "extraction=v3") {
		t.Errorf("expected extraction provenance, got %q", *ide.Icon)
	}

	count, err := f.audit.CountByTool(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 audit row for %s, got %d", id, count)
	}
}

func TestRefreshAll_SkipsValidIcons(t *testing.T) {
	f := newFixture(t)
	id := f.addIDEWithBinary(t, "myide")

	f.svc.RefreshAll(context.Background())
	callsAfterFirst := f.extractor.calls

	if updated := f.svc.RefreshAll(context.Background()); updated != 0 {
		t.Errorf("second sweep should update nothing, updated %d", updated)
	}
	if f.extractor.calls != callsAfterFirst {
		t.Error("second sweep ran the extractor on a valid icon")
	}

	// Valid icons produce no new audit rows either.
	count, err := f.audit.CountByTool(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 audit row after two sweeps, got %d", count)
	}
}

func TestRefreshAll_ToleratesMisses(t *testing.T) {
	f := newFixture(t)
	t.Setenv("PATH", t.TempDir())
	// Default IDEs point at bare command names that don't exist here,
	// so every tier misses; the sweep must still complete.
	if updated := f.svc.RefreshAll(context.Background()); updated != 0 {
		t.Errorf("expected no updates, got %d", updated)
	}

	count, err := f.audit.CountBySource(context.Background(), "miss")
	if err != nil {
		t.Fatal(err)
	}
	if count == 0 {
		t.Error("expected misses to be recorded in the audit log")
	}
}

func TestRefreshOne_UnknownIDE(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.RefreshOne(context.Background(), "nope"); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetIconFromFile(t *testing.T) {
	f := newFixture(t)
	id := f.addIDEWithBinary(t, "myide")

	iconPath := filepath.Join(f.dir, "custom.png")
	if err := os.WriteFile(iconPath, []byte("pngdata"), 0644); err != nil {
		t.Fatal(err)
	}

	ide, err := f.svc.SetIconFromFile(context.Background(), id, iconPath)
	if err != nil {
		t.Fatalf("SetIconFromFile: %v", err)
	}
	if ide.Icon == nil || !strings.Contains(*ide.Icon, "source=user-file-v1") {
		t.Errorf("expected user-file provenance, got %v", ide.Icon)
	}

	count, err := f.audit.CountBySource(context.Background(), "user-file")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 user-file audit row, got %d", count)
	}
}

func TestSetIconFromFile_UnknownIDE(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.SetIconFromFile(context.Background(), "nope", "irrelevant"); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
