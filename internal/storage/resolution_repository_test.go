package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/devboom/devboom/internal/model"
)

func setupTestRepo(t *testing.T) ResolutionRepository {
	t.Helper()

	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("creating test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewResolutionRepository(db)
}

func TestResolutionRepository_CreateAndCount(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	mime := "image/png"
	size := int64(2048)
	duration := int64(12)

	res := &model.IconResolution{
		ToolID:     "vscode",
		Source:     "extraction",
		MIME:       &mime,
		SizeBytes:  &size,
		Success:    true,
		DurationMs: &duration,
	}
	if err := repo.Create(ctx, res); err != nil {
		t.Fatalf("creating resolution: %v", err)
	}
	if res.ID == 0 {
		t.Error("expected resolution ID to be set after create")
	}

	count, err := repo.CountByTool(ctx, "vscode")
	if err != nil {
		t.Fatalf("counting by tool: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 resolution for vscode, got %d", count)
	}
}

func TestResolutionRepository_CountBySource(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	rows := []model.IconResolution{
		{ToolID: "vscode", Source: "extraction", Success: true},
		{ToolID: "cursor", Source: "web", Success: true},
		{ToolID: "zed", Source: model.ResolutionMiss, Success: false},
		{ToolID: "goland", Source: "web", Success: true},
	}
	for i := range rows {
		if err := repo.Create(ctx, &rows[i]); err != nil {
			t.Fatalf("creating resolution %d: %v", i, err)
		}
	}

	webCount, err := repo.CountBySource(ctx, "web")
	if err != nil {
		t.Fatalf("counting by source: %v", err)
	}
	if webCount != 2 {
		t.Errorf("expected 2 web resolutions, got %d", webCount)
	}

	missCount, err := repo.CountBySource(ctx, model.ResolutionMiss)
	if err != nil {
		t.Fatalf("counting misses: %v", err)
	}
	if missCount != 1 {
		t.Errorf("expected 1 miss, got %d", missCount)
	}
}

func TestResolutionRepository_Recent(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	for _, tool := range []string{"a", "b", "c"} {
		if err := repo.Create(ctx, &model.IconResolution{ToolID: tool, Source: "cache", Success: true}); err != nil {
			t.Fatalf("creating resolution for %s: %v", tool, err)
		}
	}

	recent, err := repo.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("listing recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(recent))
	}
	if recent[0].ToolID != "c" {
		t.Errorf("expected newest row first, got %s", recent[0].ToolID)
	}
}
