package prompt

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-templateer/pkg/stub"
)

// Resolver fills missing field values by asking the user, coercing replies to
// the declared field type.
type Resolver struct {
	driver Driver
}

// NewResolver wraps a Driver; pass nil to use the survey-backed terminal.
func NewResolver(driver Driver) *Resolver {
	if driver == nil {
		driver = NewDriver()
	}
	return &Resolver{driver: driver}
}

// Resolve returns have plus one prompted value for every field in missing.
// The input map is not mutated.
func (r *Resolver) Resolve(ctx context.Context, module string, missing []stub.Field, have map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(have)+len(missing))
	for key, value := range have {
		out[key] = value
	}

	for _, field := range missing {
		value, err := r.ask(ctx, module, field)
		if err != nil {
			return nil, err
		}
		out[field.Name] = value
	}

	return out, nil
}

func (r *Resolver) ask(ctx context.Context, module string, field stub.Field) (any, error) {
	message := fmt.Sprintf("%s · %s (%s)", module, field.Name, field.Type)

	if field.Type == stub.FieldTypeBoolean {
		return r.driver.Confirm(ctx, ConfirmConfig{Message: message, Help: field.Description})
	}

	raw, err := r.driver.Input(ctx, InputConfig{Message: message, Help: field.Description})
	if err != nil {
		return nil, err
	}
	return coerce(field, raw)
}

// coerce converts a raw terminal reply into the declared field type. Sequences
// and mappings are accepted as inline YAML.
func coerce(field stub.Field, raw string) (any, error) {
	raw = strings.TrimSpace(raw)

	switch field.Type {
	case stub.FieldTypeString:
		return raw, nil
	case stub.FieldTypeInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("prompt: field %q: %q is not an integer", field.Name, raw)
		}
		return n, nil
	case stub.FieldTypeNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("prompt: field %q: %q is not a number", field.Name, raw)
		}
		return n, nil
	case stub.FieldTypeArray, stub.FieldTypeObject, stub.FieldTypeAny:
		if raw == "" {
			return nil, nil
		}
		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("prompt: field %q: parse value: %w", field.Name, err)
		}
		return value, nil
	default:
		return raw, nil
	}
}
