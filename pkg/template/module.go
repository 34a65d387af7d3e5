package template

import (
	"errors"
	"path"
	"strings"
)

// DefaultExtension is the filename suffix scanners use when discovering
// template modules inside a source directory.
const DefaultExtension = ".tpl"

// ErrEmptyTemplate marks a module file whose template body is missing or
// blank. It is fatal for that module only; the driver keeps processing the
// rest of the directory.
var ErrEmptyTemplate = errors.New("template: module has no template text")

// Module is a named source unit: one template body plus its origin. Modules
// are immutable for the duration of a generation run.
type Module struct {
	name   string
	text   string
	source Source
}

// NewModule validates the inputs and wraps them in a Module. A blank body
// returns ErrEmptyTemplate so callers can classify the failure.
func NewModule(name, text string, src Source) (Module, error) {
	if strings.TrimSpace(name) == "" {
		return Module{}, errors.New("template: module name is required")
	}
	if strings.TrimSpace(text) == "" {
		return Module{}, ErrEmptyTemplate
	}
	return Module{name: name, text: text, source: src}, nil
}

// MustNewModule panics if the module cannot be created. Useful for tests.
func MustNewModule(name, text string, src Source) Module {
	mod, err := NewModule(name, text, src)
	if err != nil {
		panic(err)
	}
	return mod
}

// Name returns the module identifier derived from the file path.
func (m Module) Name() string {
	return m.name
}

// Text returns the raw template source.
func (m Module) Text() string {
	return m.text
}

// Source returns the origin metadata for the module.
func (m Module) Source() Source {
	return m.source
}

// Location returns the string identifier for the origin.
func (m Module) Location() string {
	if m.source == nil {
		return ""
	}
	return m.source.Location()
}

// ModuleName derives the module identifier from a template file path: the
// base name with the template extension stripped.
func ModuleName(file string) string {
	base := path.Base(strings.ReplaceAll(file, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}
