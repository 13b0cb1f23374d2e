package scanner

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindFilesFiltersAndOrders(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.py"), "")
	writeFile(t, filepath.Join(root, "a.py"), "")
	writeFile(t, filepath.Join(root, "notes.txt"), "")
	writeFile(t, filepath.Join(root, "pkg", "mod.py"), "")
	writeFile(t, filepath.Join(root, "__pycache__", "mod.cpython.py"), "")

	nav, err := NewNavigator(root, "", []string{"__pycache__"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	files, err := nav.FindFiles([]string{".py"})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		filepath.Join(root, "a.py"),
		filepath.Join(root, "b.py"),
		filepath.Join(root, "pkg", "mod.py"),
	}
	if len(files) != len(want) {
		t.Fatalf("got %d files, want %d: %v", len(files), len(want), files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestIgnoreFilePatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "codegraph.toml"), `
[ignore]
patterns = ["generated/**", "**/*_pb2.py"]
`)
	writeFile(t, filepath.Join(root, "main.py"), "")
	writeFile(t, filepath.Join(root, "generated", "api.py"), "")
	writeFile(t, filepath.Join(root, "app", "schema_pb2.py"), "")
	writeFile(t, filepath.Join(root, "app", "views.py"), "")

	nav, err := NewNavigator(root, "codegraph.toml", nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	files, err := nav.FindFiles([]string{".py"})
	if err != nil {
		t.Fatal(err)
	}

	for _, f := range files {
		base := filepath.Base(f)
		if base == "api.py" || base == "schema_pb2.py" {
			t.Errorf("ignored file leaked through: %s", f)
		}
	}
	if len(files) != 2 {
		t.Errorf("got %d files, want 2: %v", len(files), files)
	}
}

func TestMissingIgnoreFileIsFine(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.py"), "")

	nav, err := NewNavigator(root, "codegraph.toml", nil, nil)
	if err != nil {
		t.Fatalf("missing ignore file should not fail: %v", err)
	}
	files, err := nav.FindFiles([]string{".py"})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Errorf("got %d files, want 1", len(files))
	}
}

func TestExcludeFilePatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.py"), "")
	writeFile(t, filepath.Join(root, "main_test.py"), "")

	nav, err := NewNavigator(root, "", nil, []string{"*_test.py"})
	if err != nil {
		t.Fatal(err)
	}
	files, err := nav.FindFiles([]string{".py"})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "main.py" {
		t.Errorf("exclude pattern not applied: %v", files)
	}
}

func TestInvalidIgnorePattern(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "codegraph.toml"), `
[ignore]
patterns = ["[unclosed"]
`)
	if _, err := NewNavigator(root, "codegraph.toml", nil, nil); err == nil {
		t.Error("expected an error for an invalid glob pattern")
	}
}
