package prompt

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-templateer/pkg/stub"
	"github.com/goliatone/go-templateer/pkg/testsupport"
)

// scriptedDriver replays canned replies keyed by prompt message substring.
type scriptedDriver struct {
	inputs   []string
	confirms []bool
	asked    []string
}

func (d *scriptedDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	d.asked = append(d.asked, cfg.Message)
	reply := d.inputs[0]
	d.inputs = d.inputs[1:]
	return reply, nil
}

func (d *scriptedDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	d.asked = append(d.asked, cfg.Message)
	reply := d.confirms[0]
	d.confirms = d.confirms[1:]
	return reply, nil
}

func TestResolvePromptsForMissingFields(t *testing.T) {
	driver := &scriptedDriver{
		inputs:   []string{"Alice", "3"},
		confirms: []bool{true},
	}
	resolver := NewResolver(driver)

	missing := []stub.Field{
		{Name: "name", Type: stub.FieldTypeString},
		{Name: "count", Type: stub.FieldTypeInteger},
		{Name: "loud", Type: stub.FieldTypeBoolean},
	}
	have := map[string]any{"greeting": "Hi"}

	resolved, err := resolver.Resolve(testsupport.Context(), "greeting", missing, have)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	want := map[string]any{
		"greeting": "Hi",
		"name":     "Alice",
		"count":    int64(3),
		"loud":     true,
	}
	if diff := cmp.Diff(want, resolved); diff != "" {
		t.Fatalf("resolved values mismatch (-want +got):\n%s", diff)
	}
	if len(driver.asked) != 3 {
		t.Fatalf("asked %d prompts, want 3", len(driver.asked))
	}

	// The input map stays untouched.
	if len(have) != 1 {
		t.Fatalf("have mutated: %v", have)
	}
}

func TestResolveCoercesStructuredReplies(t *testing.T) {
	driver := &scriptedDriver{inputs: []string{"[a, b]", "{k: 1}", "plain"}}
	resolver := NewResolver(driver)

	missing := []stub.Field{
		{Name: "tags", Type: stub.FieldTypeArray},
		{Name: "meta", Type: stub.FieldTypeObject},
		{Name: "extra", Type: stub.FieldTypeAny},
	}

	resolved, err := resolver.Resolve(testsupport.Context(), "report", missing, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	want := map[string]any{
		"tags":  []any{"a", "b"},
		"meta":  map[string]any{"k": 1},
		"extra": "plain",
	}
	if diff := cmp.Diff(want, resolved); diff != "" {
		t.Fatalf("resolved values mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveRejectsBadInteger(t *testing.T) {
	driver := &scriptedDriver{inputs: []string{"abc"}}
	resolver := NewResolver(driver)

	_, err := resolver.Resolve(testsupport.Context(), "report", []stub.Field{
		{Name: "count", Type: stub.FieldTypeInteger},
	}, nil)
	if err == nil {
		t.Fatal("expected coercion error")
	}
}

func TestCoerceNumberAndEmpty(t *testing.T) {
	n, err := coerce(stub.Field{Name: "ratio", Type: stub.FieldTypeNumber}, "2.5")
	if err != nil {
		t.Fatalf("coerce number: %v", err)
	}
	if n != 2.5 {
		t.Fatalf("coerced %v, want 2.5", n)
	}

	v, err := coerce(stub.Field{Name: "extra", Type: stub.FieldTypeAny}, "  ")
	if err != nil {
		t.Fatalf("coerce empty: %v", err)
	}
	if v != nil {
		t.Fatalf("coerced %v, want nil", v)
	}
}
