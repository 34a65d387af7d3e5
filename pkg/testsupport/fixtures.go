// Package testsupport holds shared helpers for contract and golden tests.
package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-templateer/pkg/config"
)

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// TempSettings builds a directory layout rooted in a fresh temp dir so runs
// never touch the real workspace.
func TempSettings(t *testing.T) config.Settings {
	t.Helper()
	root := t.TempDir()
	settings := config.Settings{
		TemplateDir: filepath.Join(root, "templates"),
		ModelDir:    filepath.Join(root, "models"),
		OutputDir:   filepath.Join(root, "generated"),
		SchemaDir:   filepath.Join(root, "schemas"),
	}
	if err := os.MkdirAll(settings.TemplateDir, 0o755); err != nil {
		t.Fatalf("mkdir template dir: %v", err)
	}
	return settings
}

// WriteTemplate drops a template module file into the settings' source
// directory and returns its path.
func WriteTemplate(t *testing.T, settings config.Settings, module, text string) string {
	t.Helper()
	path := filepath.Join(settings.TemplateDir, module+".tpl")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("write template %s: %v", module, err)
	}
	return path
}
