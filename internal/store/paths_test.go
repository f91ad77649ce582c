package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveDataDirConfigured(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	got, err := ResolveDataDir(dir)
	if err != nil {
		t.Fatalf("resolve data dir: %v", err)
	}
	if got != dir {
		t.Errorf("got %q want %q", got, dir)
	}
	if _, err := os.Stat(got); err != nil {
		t.Errorf("directory not created: %v", err)
	}
}

func TestResolveDataDirDefault(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	got, err := ResolveDataDir("")
	if err != nil {
		t.Fatalf("resolve data dir: %v", err)
	}
	want := filepath.Join(tmp, ".majordomo")
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestAuditDBPath(t *testing.T) {
	got := AuditDBPath("/data/majordomo")
	if got != filepath.Join("/data/majordomo", "audit.db") {
		t.Errorf("unexpected path %q", got)
	}
}
