// Package config provides the path settings shared by the CLI and the
// generation driver. Values come from an optional settings file with
// environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the settings filename looked up in the working directory
// when no explicit path is given.
const DefaultFile = "templateer.yaml"

// Environment override names.
const (
	EnvTemplateDir = "TEMPLATEER_TEMPLATE_DIR"
	EnvModelDir    = "TEMPLATEER_MODEL_DIR"
	EnvOutputDir   = "TEMPLATEER_OUTPUT_DIR"
	EnvSchemaDir   = "TEMPLATEER_SCHEMA_DIR"
)

// Settings holds the directory layout for one generation run.
type Settings struct {
	// TemplateDir is the source folder scanned for template modules.
	TemplateDir string `yaml:"template_dir"`
	// ModelDir receives the generated model-stub manifests.
	ModelDir string `yaml:"model_dir"`
	// OutputDir receives rendered template output in generate mode.
	OutputDir string `yaml:"output_dir"`
	// SchemaDir receives exported JSON Schema documents.
	SchemaDir string `yaml:"schema_dir"`
}

// Default returns the conventional directory layout.
func Default() Settings {
	return Settings{
		TemplateDir: ".templateer",
		ModelDir:    "models",
		OutputDir:   "generated",
		SchemaDir:   "schemas",
	}
}

// Load reads settings from path, falling back to DefaultFile when path is
// empty, and applies environment overrides last. A missing default file is
// not an error; a missing explicit file is.
func Load(path string) (Settings, error) {
	settings := Default()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return Settings{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// Defaults plus env overrides.
	default:
		return Settings{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	settings.applyEnv()
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

func (s *Settings) applyEnv() {
	if v := os.Getenv(EnvTemplateDir); v != "" {
		s.TemplateDir = v
	}
	if v := os.Getenv(EnvModelDir); v != "" {
		s.ModelDir = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		s.OutputDir = v
	}
	if v := os.Getenv(EnvSchemaDir); v != "" {
		s.SchemaDir = v
	}
}

// Validate checks that every directory setting is non-blank.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.TemplateDir) == "" {
		return errors.New("config: template_dir is required")
	}
	if strings.TrimSpace(s.ModelDir) == "" {
		return errors.New("config: model_dir is required")
	}
	if strings.TrimSpace(s.OutputDir) == "" {
		return errors.New("config: output_dir is required")
	}
	if strings.TrimSpace(s.SchemaDir) == "" {
		return errors.New("config: schema_dir is required")
	}
	return nil
}
