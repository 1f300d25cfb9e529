package testutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// FileTree describes a directory: string values are file contents, nested
// FileTree values are subdirectories.
type FileTree map[string]interface{}

// WriteTree creates tree under basePath on fs.
func WriteTree(t testing.TB, fs afero.Fs, basePath string, tree FileTree) {
	t.Helper()

	if err := fs.MkdirAll(basePath, 0755); err != nil {
		t.Fatalf("Failed to create directory %s: %v", basePath, err)
	}
	for name, content := range tree {
		fullPath := filepath.Join(basePath, name)

		switch v := content.(type) {
		case string:
			if err := fs.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
				t.Fatalf("Failed to create directory %s: %v", filepath.Dir(fullPath), err)
			}
			if err := afero.WriteFile(fs, fullPath, []byte(v), 0644); err != nil {
				t.Fatalf("Failed to write file %s: %v", fullPath, err)
			}
		case FileTree:
			WriteTree(t, fs, fullPath, v)
		default:
			t.Fatalf("Invalid file tree content type for %s: %T", name, content)
		}
	}
}

// TemplateTree is a minimal copier template.
func TemplateTree() FileTree {
	return FileTree{
		"copier.yml": "project_name:\n  type: str\nauthor_name:\n  type: str\nauthor_email:\n  type: str\n",
		"template": FileTree{
			"pyproject.toml.jinja": "[project]\nname = \"{{ project_name }}\"\n",
			"tests": FileTree{
				"test_import.py.jinja": "def test_import():\n    assert True\n",
			},
		},
	}
}
