package store

import (
	"path/filepath"
	"testing"
)

func TestDefaultDir_EnvOverride(t *testing.T) {
	t.Setenv("WOMSIM_HOME", "/tmp/custom-womsim")

	dir, err := DefaultDir()
	if err != nil {
		t.Fatalf("DefaultDir failed: %v", err)
	}
	if dir != "/tmp/custom-womsim" {
		t.Errorf("expected env override, got %s", dir)
	}
}

func TestDefaultDir_Home(t *testing.T) {
	t.Setenv("WOMSIM_HOME", "")

	dir, err := DefaultDir()
	if err != nil {
		t.Fatalf("DefaultDir failed: %v", err)
	}
	if filepath.Base(dir) != ".womsim" {
		t.Errorf("expected a .womsim directory, got %s", dir)
	}
}
