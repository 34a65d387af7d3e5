// Package templateer keeps template modules and their typed data models in
// sync: it discovers templates in a source directory, extracts each one's
// free variables, synthesizes a model-stub declaration per module (merging
// hand edits), and optionally renders templates with validated values.
package templateer

import (
	"context"

	"github.com/goliatone/go-templateer/pkg/config"
	"github.com/goliatone/go-templateer/pkg/extract"
	"github.com/goliatone/go-templateer/pkg/generator"
	"github.com/goliatone/go-templateer/pkg/render"
	"github.com/goliatone/go-templateer/pkg/stub"
)

// VariableSet is the set of free variable names referenced by one template.
type VariableSet = extract.VariableSet

// SyntaxError reports template text rejected by the engine grammar.
type SyntaxError = extract.SyntaxError

// Stub is the synthesized typed-record declaration for one template module.
type Stub = stub.Stub

// Field is one declared entry of a model stub.
type Field = stub.Field

// FieldType enumerates the declared stub field kinds.
type FieldType = stub.FieldType

// Settings holds the directory layout for one generation run.
type Settings = config.Settings

// Report aggregates the outcome of one generation run.
type Report = generator.Report

// Request describes one generation run.
type Request = generator.Request

// ValidationError reports a supplied value that fails a declared field type.
type ValidationError = render.ValidationError

// NewGenerator exposes the driver constructor from the top-level module.
func NewGenerator(options ...generator.Option) *generator.Generator {
	return generator.New(options...)
}

// Extract parses template text and returns its free variable names. It is the
// simplest entry point for callers that only want variable discovery.
func Extract(templateText string) (VariableSet, error) {
	return extract.Extract(templateText)
}

// Autogen runs discovery, extraction, and stub synthesis over the configured
// template directory.
func Autogen(ctx context.Context, options ...generator.Option) (Report, error) {
	gen := generator.New(options...)
	return gen.Run(ctx, generator.Request{Mode: generator.ModeAutogen})
}

// Generate runs the full pipeline including rendering, using the supplied
// per-module values.
func Generate(ctx context.Context, values map[string]map[string]any, options ...generator.Option) (Report, error) {
	gen := generator.New(options...)
	return gen.Run(ctx, generator.Request{Mode: generator.ModeGenerate, Values: values})
}
