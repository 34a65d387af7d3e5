package generator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadValuesDir reads per-module value documents from a directory: one
// .yaml/.yml/.json file per module, named after the module. The result feeds
// Request.Values in generate mode. A missing directory yields an empty map so
// callers can rely on defaults and prompting.
func LoadValuesDir(dir string) (map[string]map[string]any, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("generator: read values dir %s: %w", dir, err)
	}

	values := make(map[string]map[string]any)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("generator: read values file %s: %w", path, err)
		}

		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("generator: parse values file %s: %w", path, err)
		}

		module := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		values[module] = doc
	}

	return values, nil
}
