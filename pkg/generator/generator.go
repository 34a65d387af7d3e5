// Package generator orchestrates the discovery → extraction → synthesis →
// emission pipeline for every template module in a source directory, plus the
// optional render pass in generate mode.
package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-templateer/internal/pongo"
	"github.com/goliatone/go-templateer/pkg/config"
	"github.com/goliatone/go-templateer/pkg/extract"
	"github.com/goliatone/go-templateer/pkg/render"
	"github.com/goliatone/go-templateer/pkg/stub"
	"github.com/goliatone/go-templateer/pkg/template"
)

// Mode selects how much of the pipeline a run performs.
type Mode string

const (
	// ModeAutogen runs discovery, extraction, and stub synthesis only.
	ModeAutogen Mode = "autogen"
	// ModeGenerate additionally validates values and renders each template.
	ModeGenerate Mode = "generate"
)

// Extractor is the variable-discovery seam; the default is pkg/extract.
type Extractor interface {
	Extract(templateText string) (extract.VariableSet, error)
}

// ValueResolver fills missing field values before a render request is built.
// The prompt package provides the interactive implementation.
type ValueResolver interface {
	Resolve(ctx context.Context, module string, missing []stub.Field, have map[string]any) (map[string]any, error)
}

// Option customises the generator configuration.
type Option func(*Generator)

// WithSettings overrides the directory layout.
func WithSettings(settings config.Settings) Option {
	return func(g *Generator) {
		g.settings = settings
	}
}

// WithExtractor injects a custom variable extractor.
func WithExtractor(extractor Extractor) Option {
	return func(g *Generator) {
		g.extractor = extractor
	}
}

// WithEngine injects a custom render engine.
func WithEngine(engine render.Engine) Option {
	return func(g *Generator) {
		g.engine = engine
	}
}

// WithFS reads template modules from an fs.FS instead of the local disk.
// Stub and output emission still target the local filesystem.
func WithFS(fsys fs.FS) Option {
	return func(g *Generator) {
		g.fsys = fsys
	}
}

// WithExtension overrides the template filename suffix used during discovery.
func WithExtension(ext string) Option {
	return func(g *Generator) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		g.extension = trimmed
	}
}

// WithLogger attaches a structured logger; the default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithValueResolver enables value resolution (e.g. interactive prompting) for
// fields missing from the supplied value documents.
func WithValueResolver(resolver ValueResolver) Option {
	return func(g *Generator) {
		g.resolver = resolver
	}
}

// Generator coordinates the full pipeline. It applies sensible defaults
// (pongo2 engine, grammar-backed extractor, conventional directories) while
// remaining open to dependency injection.
type Generator struct {
	settings  config.Settings
	extractor Extractor
	engine    render.Engine
	fsys      fs.FS
	extension string
	logger    zerolog.Logger
	resolver  ValueResolver
	registry  *Registry

	initialiseErr   error
	defaultsApplied bool
}

// New constructs a Generator applying any provided options. Missing
// dependencies are initialised with the built-in implementations.
func New(options ...Option) *Generator {
	g := &Generator{
		settings:  config.Default(),
		extension: template.DefaultExtension,
		logger:    zerolog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(g)
	}
	g.applyDefaults()
	return g
}

func (g *Generator) applyDefaults() {
	if g.defaultsApplied {
		return
	}

	if g.extractor == nil {
		g.extractor = extract.New()
	}
	if g.engine == nil {
		engine, err := pongo.New()
		if err != nil {
			g.initialiseErr = fmt.Errorf("generator: default engine: %w", err)
		} else {
			g.engine = engine
		}
	}
	if g.registry == nil {
		g.registry = NewRegistry()
	}

	g.defaultsApplied = true
}

// Registry exposes the module → stub registry populated by Run.
func (g *Generator) Registry() *Registry {
	return g.registry
}

// Request describes one generation run.
type Request struct {
	// Mode defaults to ModeAutogen.
	Mode Mode

	// Modules restricts the run to the named modules; empty means all.
	Modules []string

	// Values supplies per-module field values for generate mode, keyed by
	// module name.
	Values map[string]map[string]any
}

// Run processes every discovered template module, continuing past individual
// failures. The returned error is the report's aggregate: non-nil only when
// at least one module failed, and only after every module was attempted.
func (g *Generator) Run(ctx context.Context, req Request) (Report, error) {
	var report Report

	if ctx == nil {
		return report, errors.New("generator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	if err := g.initialiseErr; err != nil {
		return report, err
	}
	if !g.defaultsApplied {
		g.applyDefaults()
		if err := g.initialiseErr; err != nil {
			return report, err
		}
	}

	mode := req.Mode
	if mode == "" {
		mode = ModeAutogen
	}
	if mode != ModeAutogen && mode != ModeGenerate {
		return report, fmt.Errorf("generator: unknown mode %q", mode)
	}

	refs, err := g.discover()
	if err != nil {
		return report, err
	}
	refs = filterRefs(refs, req.Modules)

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result, err := g.process(ctx, ref, mode, req.Values[ref.name])
		if err != nil {
			g.logger.Error().Str("module", ref.name).Err(err).Msg("module failed")
			report.Failures = append(report.Failures, ModuleError{Module: ref.name, Err: err})
			continue
		}
		g.logger.Info().
			Str("module", ref.name).
			Str("stub", result.StubPath).
			Str("output", result.OutputPath).
			Msg("module processed")
		report.Results = append(report.Results, result)
	}

	return report, report.Err()
}

// process runs the per-module pipeline: load → extract → merge prior →
// emit manifest, plus the render pass in generate mode. Emission is
// all-or-nothing per module.
func (g *Generator) process(ctx context.Context, ref moduleRef, mode Mode, supplied map[string]any) (ModuleResult, error) {
	module, err := g.loadModule(ref)
	if err != nil {
		return ModuleResult{}, err
	}

	vars, err := g.extractor.Extract(module.Text())
	if err != nil {
		return ModuleResult{}, err
	}

	prior, err := g.loadPrior(ref.name)
	if err != nil {
		return ModuleResult{}, err
	}

	newStub, merge := stub.Synthesize(ref.name, vars, prior)
	for _, dropped := range merge.Dropped {
		g.logger.Warn().
			Str("module", ref.name).
			Str("field", dropped).
			Msg("field no longer referenced by template, dropped from stub")
	}
	for _, conflict := range merge.Conflicts {
		g.logger.Warn().
			Str("module", ref.name).
			Str("field", conflict.Field).
			Str("declared", conflict.Declared).
			Msg("prior declaration incompatible, falling back to untyped field")
	}

	data, err := stub.Encode(newStub)
	if err != nil {
		return ModuleResult{}, err
	}

	stubPath := filepath.Join(g.settings.ModelDir, stub.ManifestName(ref.name))
	if err := writeFileAtomic(stubPath, data, 0o644); err != nil {
		return ModuleResult{}, fmt.Errorf("emit stub: %w", err)
	}
	g.registry.Put(newStub)

	result := ModuleResult{
		Module:   ref.name,
		Stub:     newStub,
		Merge:    merge,
		StubPath: stubPath,
	}

	if mode != ModeGenerate {
		return result, nil
	}

	outputPath, err := g.renderModule(ctx, module, newStub, supplied)
	if err != nil {
		return ModuleResult{}, err
	}
	result.OutputPath = outputPath
	return result, nil
}

// loadPrior reads a previously generated (possibly hand-edited) manifest.
// Absence is normal; a manifest that exists but cannot be parsed fails the
// module so user edits are never clobbered.
func (g *Generator) loadPrior(module string) (*stub.Stub, error) {
	path := filepath.Join(g.settings.ModelDir, stub.ManifestName(module))
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read prior manifest: %w", err)
	}

	prior, err := stub.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("prior manifest %s: %w", path, err)
	}
	return &prior, nil
}

// renderModule validates values into a render request, renders the template,
// and writes the output file.
func (g *Generator) renderModule(ctx context.Context, module template.Module, s stub.Stub, supplied map[string]any) (string, error) {
	if g.resolver != nil {
		if missing := render.Missing(s, supplied); len(missing) > 0 {
			resolved, err := g.resolver.Resolve(ctx, module.Name(), missing, supplied)
			if err != nil {
				return "", fmt.Errorf("resolve values: %w", err)
			}
			supplied = resolved
		}
	}

	request, err := render.NewRequest(s, supplied)
	if err != nil {
		return "", err
	}

	rendered, err := g.engine.RenderString(ctx, module.Text(), request.Values)
	if err != nil {
		return "", err
	}

	outputPath := filepath.Join(g.settings.OutputDir, outputName(s))
	if err := writeFileAtomic(outputPath, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("emit output: %w", err)
	}
	return outputPath, nil
}

// outputName resolves the rendered filename: per-module override first,
// otherwise derived from the module name.
func outputName(s stub.Stub) string {
	if strings.TrimSpace(s.Output) != "" {
		return s.Output
	}
	return s.Module + ".out"
}

func filterRefs(refs []moduleRef, modules []string) []moduleRef {
	if len(modules) == 0 {
		return refs
	}
	wanted := make(map[string]struct{}, len(modules))
	for _, name := range modules {
		wanted[name] = struct{}{}
	}
	out := refs[:0]
	for _, ref := range refs {
		if _, ok := wanted[ref.name]; ok {
			out = append(out, ref)
		}
	}
	return out
}
