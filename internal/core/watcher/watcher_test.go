package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewRejectsNilCallback(t *testing.T) {
	w, err := New(100*time.Millisecond, nil, nil)
	if err == nil {
		t.Fatal("expected error for nil callback")
	}
	if !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("expected os.ErrInvalid, got %v", err)
	}
	if w != nil {
		t.Fatal("expected nil watcher when callback is invalid")
	}
}

func TestWatcherBatchesPythonChanges(t *testing.T) {
	tmpDir := t.TempDir()

	changed := make(chan []string, 1)
	w, err := New(100*time.Millisecond, []string{"__pycache__"}, func(paths []string) {
		changed <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch(tmpDir); err != nil {
		t.Fatal(err)
	}

	pyFile := filepath.Join(tmpDir, "mod.py")
	os.WriteFile(pyFile, []byte("x = 1\n"), 0o644)

	select {
	case paths := <-changed:
		found := false
		for _, p := range paths {
			if p == pyFile {
				found = true
			}
		}
		if !found {
			t.Errorf("expected %s in changed batch %v", pyFile, paths)
		}
	case <-time.After(2 * time.Second):
		t.Error("timed out waiting for change batch")
	}

	// Non-Python files never reach the callback.
	os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("x"), 0o644)

	select {
	case paths := <-changed:
		for _, p := range paths {
			if filepath.Ext(p) != ".py" {
				t.Errorf("non-Python file triggered a batch: %v", paths)
			}
		}
	case <-time.After(500 * time.Millisecond):
		// expected: nothing relevant changed
	}
}

func TestWatcherRootUnderExcludedParentName(t *testing.T) {
	// The exclude globs apply inside the watched tree only; a parent
	// directory that happens to match one must not suppress events.
	parent := filepath.Join(t.TempDir(), "venv")
	root := filepath.Join(parent, "proj")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}

	changed := make(chan []string, 1)
	w, err := New(100*time.Millisecond, []string{"venv"}, func(paths []string) {
		changed <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch(root); err != nil {
		t.Fatal(err)
	}

	pyFile := filepath.Join(root, "mod.py")
	os.WriteFile(pyFile, []byte("x = 1\n"), 0o644)

	select {
	case paths := <-changed:
		found := false
		for _, p := range paths {
			if p == pyFile {
				found = true
			}
		}
		if !found {
			t.Errorf("expected %s in changed batch %v", pyFile, paths)
		}
	case <-time.After(2 * time.Second):
		t.Error("change under an excluded-looking parent was suppressed")
	}
}

func TestWatcherIgnoresExcludedDirs(t *testing.T) {
	tmpDir := t.TempDir()
	cacheDir := filepath.Join(tmpDir, "__pycache__")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		t.Fatal(err)
	}

	changed := make(chan []string, 1)
	w, err := New(100*time.Millisecond, []string{"__pycache__"}, func(paths []string) {
		changed <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch(tmpDir); err != nil {
		t.Fatal(err)
	}

	os.WriteFile(filepath.Join(cacheDir, "mod.py"), []byte("x = 1\n"), 0o644)

	select {
	case paths := <-changed:
		t.Errorf("excluded directory triggered a batch: %v", paths)
	case <-time.After(500 * time.Millisecond):
		// expected
	}
}
