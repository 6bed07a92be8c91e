package icon

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestCache_StoreLoadRoundTrip(t *testing.T) {
	c := NewCache(filepath.Join(t.TempDir(), "ide-icons"), zap.NewNop())

	payload := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	c.Store("vscode", payload, "image/png")

	ic, err := c.Load("vscode")
	if err != nil {
		t.Fatalf("Load after Store: %v", err)
	}
	if !bytes.Equal(ic.Data, payload) {
		t.Error("loaded bytes differ from stored bytes")
	}
	if ic.MIME != "image/png" {
		t.Errorf("expected image/png, got %s", ic.MIME)
	}
	if ic.Source != SourceWebCache || ic.Version != 1 {
		t.Errorf("expected web-cache v1, got %s v%d", ic.Source, ic.Version)
	}
}

func TestCache_ExtensionFromMIME(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ide-icons")
	c := NewCache(dir, zap.NewNop())

	c.Store("cursor", []byte("<svg/>"), "image/svg+xml")
	if _, err := os.Stat(filepath.Join(dir, "cursor.svg")); err != nil {
		t.Errorf("expected cursor.svg to exist: %v", err)
	}
}

func TestCache_PreferenceOrder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ide-icons")
	c := NewCache(dir, zap.NewNop())
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	// svg outranks png on lookup.
	if err := os.WriteFile(filepath.Join(dir, "goland.png"), []byte("png-bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "goland.svg"), []byte("svg-bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	ic, err := c.Load("goland")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ic.MIME != "image/svg+xml" {
		t.Errorf("expected the svg entry to win, got %s", ic.MIME)
	}
}

func TestCache_SkipsEmptyFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ide-icons")
	c := NewCache(dir, zap.NewNop())
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "vim.svg"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "vim.png"), []byte("real"), 0644); err != nil {
		t.Fatal(err)
	}

	ic, err := c.Load("vim")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ic.MIME != "image/png" {
		t.Errorf("expected the empty svg to be skipped, got %s", ic.MIME)
	}
}

func TestCache_SkipsOversizedFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ide-icons")
	c := NewCache(dir, zap.NewNop())
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	// One byte over the cap; the next extension in order should win.
	if err := os.WriteFile(filepath.Join(dir, "rider.svg"), make([]byte, MaxIconBytes+1), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "rider.png"), []byte("real"), 0644); err != nil {
		t.Fatal(err)
	}

	ic, err := c.Load("rider")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ic.MIME != "image/png" {
		t.Errorf("expected the oversized svg to be skipped, got %s", ic.MIME)
	}

	// With no fallback entry at all, the lookup is a miss.
	if err := os.WriteFile(filepath.Join(dir, "fleet.png"), make([]byte, MaxIconBytes+1), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Load("fleet"); err == nil {
		t.Error("expected oversized-only entry to be a miss")
	}
}

func TestCache_MissingTool(t *testing.T) {
	c := NewCache(filepath.Join(t.TempDir(), "ide-icons"), zap.NewNop())
	if _, err := c.Load("nope"); err == nil {
		t.Error("expected error for missing cache entry")
	}
}

func TestCache_OverwriteBySameName(t *testing.T) {
	c := NewCache(filepath.Join(t.TempDir(), "ide-icons"), zap.NewNop())

	c.Store("fleet", []byte("first"), "image/png")
	c.Store("fleet", []byte("second"), "image/png")

	ic, err := c.Load("fleet")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(ic.Data) != "second" {
		t.Errorf("expected last write to win, got %q", ic.Data)
	}
}
