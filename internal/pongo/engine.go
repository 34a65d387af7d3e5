// Package pongo binds the pongo2 template engine to the render.Engine
// contract used by the generation driver.
package pongo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-templateer/pkg/render"
)

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	setName    string
	globalData map[string]any
	filters    map[string]func(input any, param any) (any, error)
}

// WithGlobalData seeds context values available to every render.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globalData == nil {
			cfg.globalData = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globalData[strings.TrimSpace(key)] = value
		}
	}
}

// WithFilter registers a custom filter when the engine loads.
func WithFilter(name string, fn func(input any, param any) (any, error)) Option {
	return func(cfg *config) {
		if strings.TrimSpace(name) == "" || fn == nil {
			return
		}
		if cfg.filters == nil {
			cfg.filters = make(map[string]func(any, any) (any, error))
		}
		cfg.filters[strings.TrimSpace(name)] = fn
	}
}

// Engine renders template strings through an isolated pongo2 template set.
type Engine struct {
	mu  sync.RWMutex
	set *pongo2.TemplateSet
}

var _ render.Engine = (*Engine)(nil)

// New constructs an Engine using the provided configuration options.
func New(options ...Option) (*Engine, error) {
	cfg := &config{setName: "templateer"}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	engine := &Engine{set: pongo2.NewSet(cfg.setName, pongo2.MustNewLocalFileSystemLoader(""))}
	registerDefaultFilters()

	for name, fn := range cfg.filters {
		if err := engine.RegisterFilter(name, fn); err != nil {
			return nil, fmt.Errorf("pongo: register filter %q: %w", name, err)
		}
	}

	if len(cfg.globalData) > 0 {
		viewContext, err := convertToContext(cfg.globalData)
		if err != nil {
			return nil, fmt.Errorf("pongo: apply global data: %w", err)
		}
		engine.set.Globals = viewContext
	}

	return engine, nil
}

// Name reports the engine identifier.
func (e *Engine) Name() string {
	return "pongo2"
}

// RenderString compiles the template text and executes it with the supplied
// values. The rendered output is returned and also copied to any writers.
func (e *Engine) RenderString(ctx context.Context, templateText string, values map[string]any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("pongo: engine is nil")
	}
	if ctx == nil {
		return "", errors.New("pongo: context is required")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmpl, err := e.set.FromString(templateText)
	if err != nil {
		return "", fmt.Errorf("pongo: parse template string: %w", err)
	}

	viewContext, err := convertToContext(values)
	if err != nil {
		return "", fmt.Errorf("pongo: convert values: %w", err)
	}

	var buf bytes.Buffer

	e.mu.RLock()
	err = tmpl.ExecuteWriter(viewContext, &buf)
	e.mu.RUnlock()

	if err != nil {
		return "", fmt.Errorf("pongo: execute template: %w", err)
	}

	rendered := buf.String()
	for _, w := range out {
		if _, err := w.Write([]byte(rendered)); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

// RegisterFilter registers a template filter with the shared pongo2 registry.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("pongo: filter name and function required")
	}

	filter := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "custom_filter", OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}

	if pongo2.FilterExists(name) {
		return fmt.Errorf("pongo: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, filter)
}

func convertToContext(data map[string]any) (pongo2.Context, error) {
	out := make(pongo2.Context, len(data))
	for key, value := range data {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

// convertValue normalises values through a JSON round-trip so template lookups
// see plain maps, slices, and scalars regardless of the caller's types.
func convertValue(value any) (any, error) {
	switch v := value.(type) {
	case nil, string, bool, int, int64, float64:
		return v, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			converted, err := convertValue(item)
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			converted, err := convertValue(item)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, err
		}
		switch decoded.(type) {
		case map[string]any, []any:
			return convertValue(decoded)
		default:
			return decoded, nil
		}
	}
}

func registerDefaultFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
	if !pongo2.FilterExists("indent") {
		_ = pongo2.RegisterFilter("indent", filterIndent)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterIndent prefixes every line of the input with the given number of
// spaces, matching the helper templates rely on when emitting nested code.
func filterIndent(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	width := 4
	if param != nil && param.IsInteger() {
		width = param.Integer()
	}
	if width < 0 {
		width = 0
	}
	prefix := strings.Repeat(" ", width)

	lines := strings.Split(in.String(), "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		lines[i] = prefix + line
	}
	return pongo2.AsValue(strings.Join(lines, "\n")), nil
}
