package parser

import (
	"path/filepath"
	"testing"
)

func TestModuleQName(t *testing.T) {
	root := filepath.Join("/", "proj")

	tests := []struct {
		name string
		path string
		want string
	}{
		{"top level", filepath.Join(root, "main.py"), "main"},
		{"nested", filepath.Join(root, "app", "models", "user.py"), "app.models.user"},
		{"package init", filepath.Join(root, "app", "__init__.py"), "app"},
		{"deep init", filepath.Join(root, "a", "b", "__init__.py"), "a.b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ModuleQName(root, tt.path); got != tt.want {
				t.Errorf("ModuleQName(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
