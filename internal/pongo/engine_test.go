package pongo

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goliatone/go-templateer/pkg/testsupport"
)

func TestRenderStringSubstitutesValues(t *testing.T) {
	engine, err := New()
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	out, err := engine.RenderString(testsupport.Context(), "{{ greeting }}, {{ name }}!", map[string]any{
		"greeting": "Hi",
		"name":     "Alice",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "Hi, Alice!" {
		t.Fatalf("rendered %q, want %q", out, "Hi, Alice!")
	}
}

func TestRenderStringCopiesToWriters(t *testing.T) {
	engine, err := New()
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	var buf bytes.Buffer
	out, err := engine.RenderString(testsupport.Context(), "{{ x }}", map[string]any{"x": "y"}, &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != buf.String() {
		t.Fatalf("writer got %q, return value %q", buf.String(), out)
	}
}

func TestRenderStringNestedValues(t *testing.T) {
	engine, err := New()
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	src := "{% for opt in options %}{{ opt.flag }}={{ opt.help }};{% endfor %}"
	out, err := engine.RenderString(testsupport.Context(), src, map[string]any{
		"options": []any{
			map[string]any{"flag": "--name", "help": "who"},
			map[string]any{"flag": "--loud", "help": "shout"},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "--name=who;--loud=shout;" {
		t.Fatalf("rendered %q", out)
	}
}

func TestRenderStringParseFailure(t *testing.T) {
	engine, err := New()
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if _, err := engine.RenderString(testsupport.Context(), "{% if x %}", nil); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestIndentFilter(t *testing.T) {
	engine, err := New()
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	out, err := engine.RenderString(testsupport.Context(), "{{ body|indent:2 }}", map[string]any{
		"body": "a\nb",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "  a\n  b" {
		t.Fatalf("rendered %q", out)
	}
}

func TestGlobalData(t *testing.T) {
	engine, err := New(WithGlobalData(map[string]any{"project": "templateer"}))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	out, err := engine.RenderString(testsupport.Context(), "{{ project }}/{{ module }}", map[string]any{
		"module": "greet",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(out, "templateer/") {
		t.Fatalf("rendered %q", out)
	}
}
