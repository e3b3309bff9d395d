package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aluiziolira/go-apps-merge/models"
)

func TestStoreRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	store := NewStore(path)
	store.Load()
	if store.Len() != 0 {
		t.Fatalf("fresh store should be empty, got %d entries", store.Len())
	}

	record := &models.AppRecord{
		Name:     "Some App",
		Category: "GAME",
		Rating:   models.Float(4.5),
		Installs: models.Int(1000000),
		Source:   models.SourceAppStore,
	}
	store.Put("Some App", record)
	if err := store.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	reloaded := NewStore(path)
	reloaded.Load()
	got, ok := reloaded.Get("Some App")
	if !ok {
		t.Fatalf("entry missing after reload")
	}
	if got.Category != "GAME" || got.Rating == nil || *got.Rating != 4.5 {
		t.Fatalf("unexpected reloaded entry: %+v", got)
	}
}

func TestStoreCorruptFileIsWarningNotError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	store := NewStore(path)
	store.Load()
	if store.Len() != 0 {
		t.Fatalf("corrupt cache should load empty, got %d entries", store.Len())
	}

	// The store must still be usable and flushable afterwards.
	store.Put("App", &models.AppRecord{Name: "App"})
	if err := store.Flush(); err != nil {
		t.Fatalf("flush after corrupt load: %v", err)
	}
}

func TestStorePutNeverOverwrites(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "cache.json"))

	first := &models.AppRecord{Name: "App", Category: "FINANCE"}
	store.Put("App", first)
	store.Put("App", &models.AppRecord{Name: "App", Category: "GAME"})

	got, _ := store.Get("App")
	if got.Category != "FINANCE" {
		t.Fatalf("cached entry was overwritten: %+v", got)
	}
}

func TestStoreFlushLeavesNoPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")

	store := NewStore(path)
	store.Put("App", &models.AppRecord{Name: "App"})
	if err := store.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	store.Put("Other", &models.AppRecord{Name: "Other"})
	if err := store.Flush(); err != nil {
		t.Fatalf("second flush: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if strings.Contains(entry.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", entry.Name())
		}
	}

	reloaded := NewStore(path)
	reloaded.Load()
	if reloaded.Len() != 2 {
		t.Fatalf("entries after reload = %d, want 2", reloaded.Len())
	}
}

func TestStoreCreatesCacheDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "cache.json")
	store := NewStore(path)
	store.Put("App", &models.AppRecord{Name: "App"})
	if err := store.Flush(); err != nil {
		t.Fatalf("flush into missing directory: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("cache file missing: %v", err)
	}
}
