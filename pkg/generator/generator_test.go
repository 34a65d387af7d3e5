package generator

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-templateer/pkg/render"
	"github.com/goliatone/go-templateer/pkg/stub"
	"github.com/goliatone/go-templateer/pkg/template"
	"github.com/goliatone/go-templateer/pkg/testsupport"
)

func TestRunAutogenWritesManifest(t *testing.T) {
	settings := testsupport.TempSettings(t)
	testsupport.WriteTemplate(t, settings, "greeting", "{{ greeting }}, {{ name }}!")

	g := New(WithSettings(settings))
	report, err := g.Run(testsupport.Context(), Request{Mode: ModeAutogen})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	result, ok := report.Result("greeting")
	if !ok {
		t.Fatal("greeting module missing from report")
	}

	want := []string{"greeting", "name"}
	if diff := cmp.Diff(want, result.Stub.FieldNames()); diff != "" {
		t.Fatalf("field names mismatch (-want +got):\n%s", diff)
	}

	data, err := os.ReadFile(result.StubPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	decoded, err := stub.Decode(data)
	if err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if decoded.Record != "GreetingTemplate" {
		t.Fatalf("record name %q, want GreetingTemplate", decoded.Record)
	}

	if !g.Registry().Has("greeting") {
		t.Fatal("greeting module not registered")
	}
}

func TestRunAutogenIsIdempotent(t *testing.T) {
	settings := testsupport.TempSettings(t)
	testsupport.WriteTemplate(t, settings, "report", "{{ title }}\n{{ body }}")

	g := New(WithSettings(settings))
	if _, err := g.Run(testsupport.Context(), Request{}); err != nil {
		t.Fatalf("first run: %v", err)
	}

	path := filepath.Join(settings.ModelDir, stub.ManifestName("report"))
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}

	if _, err := g.Run(testsupport.Context(), Request{}); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reread manifest: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Fatalf("manifest changed between runs:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

func TestRunPreservesPriorDeclarations(t *testing.T) {
	settings := testsupport.TempSettings(t)
	testsupport.WriteTemplate(t, settings, "greeting", "{{ greeting }}, {{ name }}! {{ title }}")

	prior := stub.Stub{
		Module: "greeting",
		Record: "GreetingTemplate",
		Fields: []stub.Field{
			{Name: "greeting", Type: stub.FieldTypeString, Default: "Hello"},
			{Name: "name", Type: stub.FieldTypeString, Required: true},
		},
	}
	data, err := stub.Encode(prior)
	if err != nil {
		t.Fatalf("encode prior: %v", err)
	}
	if err := os.MkdirAll(settings.ModelDir, 0o755); err != nil {
		t.Fatalf("mkdir model dir: %v", err)
	}
	path := filepath.Join(settings.ModelDir, stub.ManifestName("greeting"))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write prior manifest: %v", err)
	}

	g := New(WithSettings(settings))
	report, err := g.Run(testsupport.Context(), Request{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	result, _ := report.Result("greeting")

	name, ok := result.Stub.Field("name")
	if !ok || name.Type != stub.FieldTypeString || !name.Required {
		t.Fatalf("name field lost its declaration: %+v", name)
	}
	greeting, _ := result.Stub.Field("greeting")
	if greeting.Default != "Hello" {
		t.Fatalf("greeting default lost: %+v", greeting)
	}
	title, ok := result.Stub.Field("title")
	if !ok || title.Type != stub.FieldTypeAny || title.Required {
		t.Fatalf("new field should be untyped and optional: %+v", title)
	}
	if diff := cmp.Diff([]string{"title"}, result.Merge.Added); diff != "" {
		t.Fatalf("added fields mismatch (-want +got):\n%s", diff)
	}
}

func TestRunIsolatesModuleFailures(t *testing.T) {
	settings := testsupport.TempSettings(t)
	testsupport.WriteTemplate(t, settings, "broken", "{% if cond %}no endif")
	testsupport.WriteTemplate(t, settings, "good", "{{ value }}")

	g := New(WithSettings(settings))
	report, err := g.Run(testsupport.Context(), Request{})
	if err == nil {
		t.Fatal("expected aggregate error")
	}

	if len(report.Results) != 1 || len(report.Failures) != 1 {
		t.Fatalf("got %d results, %d failures, want 1 and 1", len(report.Results), len(report.Failures))
	}
	if report.Failures[0].Module != "broken" {
		t.Fatalf("failed module %q, want broken", report.Failures[0].Module)
	}

	// The healthy module still produced its manifest.
	if _, err := os.Stat(filepath.Join(settings.ModelDir, stub.ManifestName("good"))); err != nil {
		t.Fatalf("good manifest missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(settings.ModelDir, stub.ManifestName("broken"))); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("broken module should not emit a manifest, stat err: %v", err)
	}
}

func TestRunEmptyTemplateFails(t *testing.T) {
	settings := testsupport.TempSettings(t)
	testsupport.WriteTemplate(t, settings, "blank", "   \n\t")

	g := New(WithSettings(settings))
	report, err := g.Run(testsupport.Context(), Request{})
	if err == nil {
		t.Fatal("expected aggregate error")
	}
	if len(report.Failures) != 1 {
		t.Fatalf("got %d failures, want 1", len(report.Failures))
	}
	if !errors.Is(report.Failures[0].Err, template.ErrEmptyTemplate) {
		t.Fatalf("failure %v, want ErrEmptyTemplate", report.Failures[0].Err)
	}
}

func TestRunGenerateRendersOutput(t *testing.T) {
	settings := testsupport.TempSettings(t)
	testsupport.WriteTemplate(t, settings, "greeting", "{{ greeting }}, {{ name }}!")

	g := New(WithSettings(settings))
	report, err := g.Run(testsupport.Context(), Request{
		Mode: ModeGenerate,
		Values: map[string]map[string]any{
			"greeting": {"greeting": "Hi", "name": "Alice"},
		},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	result, _ := report.Result("greeting")
	if result.OutputPath == "" {
		t.Fatal("output path not set in generate mode")
	}

	out, err := os.ReadFile(result.OutputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(out) != "Hi, Alice!" {
		t.Fatalf("rendered %q, want %q", out, "Hi, Alice!")
	}
	if filepath.Base(result.OutputPath) != "greeting.out" {
		t.Fatalf("output file %q, want greeting.out", result.OutputPath)
	}
}

func TestRunGenerateRejectsInvalidValues(t *testing.T) {
	settings := testsupport.TempSettings(t)
	testsupport.WriteTemplate(t, settings, "greeting", "{{ name }}")

	prior := stub.Stub{
		Module: "greeting",
		Fields: []stub.Field{{Name: "name", Type: stub.FieldTypeString, Required: true}},
	}
	data, err := stub.Encode(prior)
	if err != nil {
		t.Fatalf("encode prior: %v", err)
	}
	if err := os.MkdirAll(settings.ModelDir, 0o755); err != nil {
		t.Fatalf("mkdir model dir: %v", err)
	}
	path := filepath.Join(settings.ModelDir, stub.ManifestName("greeting"))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write prior manifest: %v", err)
	}

	g := New(WithSettings(settings))
	report, err := g.Run(testsupport.Context(), Request{
		Mode:   ModeGenerate,
		Values: map[string]map[string]any{"greeting": {"name": 42}},
	})
	if err == nil {
		t.Fatal("expected aggregate error")
	}

	var verr *render.ValidationError
	if !errors.As(report.Failures[0].Err, &verr) {
		t.Fatalf("failure %v, want ValidationError", report.Failures[0].Err)
	}
	if verr.Field != "name" {
		t.Fatalf("validation error on %q, want name", verr.Field)
	}
}

type stubResolver struct {
	calls  int
	values map[string]any
}

func (r *stubResolver) Resolve(_ context.Context, _ string, missing []stub.Field, have map[string]any) (map[string]any, error) {
	r.calls++
	out := make(map[string]any, len(have)+len(missing))
	for k, v := range have {
		out[k] = v
	}
	for _, field := range missing {
		out[field.Name] = r.values[field.Name]
	}
	return out, nil
}

func TestRunGenerateConsultsResolver(t *testing.T) {
	settings := testsupport.TempSettings(t)
	testsupport.WriteTemplate(t, settings, "greeting", "{{ greeting }} {{ name }}")

	prior := stub.Stub{
		Module: "greeting",
		Fields: []stub.Field{
			{Name: "greeting", Type: stub.FieldTypeString, Required: true},
			{Name: "name", Type: stub.FieldTypeString, Required: true},
		},
	}
	data, err := stub.Encode(prior)
	if err != nil {
		t.Fatalf("encode prior: %v", err)
	}
	if err := os.MkdirAll(settings.ModelDir, 0o755); err != nil {
		t.Fatalf("mkdir model dir: %v", err)
	}
	path := filepath.Join(settings.ModelDir, stub.ManifestName("greeting"))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write prior manifest: %v", err)
	}

	resolver := &stubResolver{values: map[string]any{"name": "Bob"}}
	g := New(WithSettings(settings), WithValueResolver(resolver))

	report, err := g.Run(testsupport.Context(), Request{
		Mode:   ModeGenerate,
		Values: map[string]map[string]any{"greeting": {"greeting": "Hey"}},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if resolver.calls != 1 {
		t.Fatalf("resolver called %d times, want 1", resolver.calls)
	}

	result, _ := report.Result("greeting")
	out, err := os.ReadFile(result.OutputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(out) != "Hey Bob" {
		t.Fatalf("rendered %q, want %q", out, "Hey Bob")
	}
}

func TestRunFiltersRequestedModules(t *testing.T) {
	settings := testsupport.TempSettings(t)
	testsupport.WriteTemplate(t, settings, "alpha", "{{ a }}")
	testsupport.WriteTemplate(t, settings, "beta", "{{ b }}")

	g := New(WithSettings(settings))
	report, err := g.Run(testsupport.Context(), Request{Modules: []string{"beta"}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(report.Results) != 1 || report.Results[0].Module != "beta" {
		t.Fatalf("results %+v, want beta only", report.Results)
	}
	if _, err := os.Stat(filepath.Join(settings.ModelDir, stub.ManifestName("alpha"))); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("alpha should be skipped, stat err: %v", err)
	}
}

func TestRunRejectsUnknownMode(t *testing.T) {
	settings := testsupport.TempSettings(t)
	g := New(WithSettings(settings))
	if _, err := g.Run(testsupport.Context(), Request{Mode: Mode("deploy")}); err == nil {
		t.Fatal("expected unknown mode error")
	}
}

func TestRunDiscoversSortedModules(t *testing.T) {
	settings := testsupport.TempSettings(t)
	testsupport.WriteTemplate(t, settings, "zeta", "{{ z }}")
	testsupport.WriteTemplate(t, settings, "alpha", "{{ a }}")
	testsupport.WriteTemplate(t, settings, "mid", "{{ m }}")

	g := New(WithSettings(settings))
	report, err := g.Run(testsupport.Context(), Request{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var order []string
	for _, result := range report.Results {
		order = append(order, result.Module)
	}
	if diff := cmp.Diff([]string{"alpha", "mid", "zeta"}, order); diff != "" {
		t.Fatalf("processing order mismatch (-want +got):\n%s", diff)
	}
}

func TestRunIgnoresOtherExtensions(t *testing.T) {
	settings := testsupport.TempSettings(t)
	testsupport.WriteTemplate(t, settings, "keep", "{{ x }}")
	notes := filepath.Join(settings.TemplateDir, "notes.txt")
	if err := os.WriteFile(notes, []byte("not a template"), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}

	g := New(WithSettings(settings))
	report, err := g.Run(testsupport.Context(), Request{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(report.Results) != 1 || report.Results[0].Module != "keep" {
		t.Fatalf("results %+v, want keep only", report.Results)
	}
}
