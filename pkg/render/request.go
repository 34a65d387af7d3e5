package render

import (
	"fmt"
	"math"
	"sort"

	"github.com/goliatone/go-templateer/pkg/stub"
)

// ValidationError reports a supplied value that fails the declared field type,
// or a required field without any value. It is fatal for that single render.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("render: field %q: %s", e.Field, e.Reason)
}

// Request is a concrete instantiation of a model stub: one value per declared
// field, validated against the declared types before rendering.
type Request struct {
	Module string
	Values map[string]any
}

// NewRequest validates supplied values against the stub's declaration and
// fills in declared defaults. Every declared field must resolve: supplied
// value first, then default, then nil when the field is optional. Values for
// names the stub does not declare are rejected so callers notice drifted
// value documents.
func NewRequest(s stub.Stub, supplied map[string]any) (Request, error) {
	values := make(map[string]any, len(s.Fields))

	for name := range supplied {
		if _, ok := s.Field(name); !ok {
			return Request{}, &ValidationError{Field: name, Reason: "not declared by the model stub"}
		}
	}

	for _, field := range s.Fields {
		value, ok := supplied[field.Name]
		if !ok {
			if field.Default != nil {
				values[field.Name] = field.Default
				continue
			}
			if field.Required {
				return Request{}, &ValidationError{Field: field.Name, Reason: "required but no value supplied"}
			}
			values[field.Name] = nil
			continue
		}
		if err := validateValue(field.Name, field.Type, value); err != nil {
			return Request{}, err
		}
		values[field.Name] = value
	}

	return Request{Module: s.Module, Values: values}, nil
}

// Missing returns the declared field names that have neither a supplied value
// nor a default, sorted. Callers use it to drive interactive prompting before
// building a Request.
func Missing(s stub.Stub, supplied map[string]any) []stub.Field {
	var missing []stub.Field
	for _, field := range s.Fields {
		if _, ok := supplied[field.Name]; ok {
			continue
		}
		if field.Default != nil {
			continue
		}
		missing = append(missing, field)
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i].Name < missing[j].Name })
	return missing
}

func validateValue(name string, typ stub.FieldType, value any) error {
	if value == nil {
		return nil
	}

	switch typ {
	case stub.FieldTypeString:
		if _, ok := value.(string); !ok {
			return &ValidationError{Field: name, Reason: fmt.Sprintf("expected string, got %T", value)}
		}
	case stub.FieldTypeBoolean:
		if _, ok := value.(bool); !ok {
			return &ValidationError{Field: name, Reason: fmt.Sprintf("expected boolean, got %T", value)}
		}
	case stub.FieldTypeInteger:
		if !isInteger(value) {
			return &ValidationError{Field: name, Reason: fmt.Sprintf("expected integer, got %T", value)}
		}
	case stub.FieldTypeNumber:
		if !isNumber(value) {
			return &ValidationError{Field: name, Reason: fmt.Sprintf("expected number, got %T", value)}
		}
	case stub.FieldTypeArray:
		seq, ok := asSequence(value)
		if !ok {
			return &ValidationError{Field: name, Reason: fmt.Sprintf("expected sequence, got %T", value)}
		}
		for _, item := range seq {
			if err := validateValue(name, stub.FieldTypeAny, item); err != nil {
				return err
			}
		}
	case stub.FieldTypeObject:
		mapping, ok := asMapping(value)
		if !ok {
			return &ValidationError{Field: name, Reason: fmt.Sprintf("expected mapping, got %T", value)}
		}
		for _, item := range mapping {
			if err := validateValue(name, stub.FieldTypeAny, item); err != nil {
				return err
			}
		}
	case stub.FieldTypeAny:
		return validateAny(name, value)
	default:
		return &ValidationError{Field: name, Reason: fmt.Sprintf("unknown declared type %q", typ)}
	}
	return nil
}

// validateAny restricts untyped values to the tagged-variant domain: string,
// number, boolean, sequence, and mapping-of-same.
func validateAny(name string, value any) error {
	switch {
	case value == nil:
		return nil
	case isNumber(value):
		return nil
	}
	switch v := value.(type) {
	case string, bool:
		return nil
	default:
		if seq, ok := asSequence(v); ok {
			for _, item := range seq {
				if err := validateAny(name, item); err != nil {
					return err
				}
			}
			return nil
		}
		if mapping, ok := asMapping(v); ok {
			for _, item := range mapping {
				if err := validateAny(name, item); err != nil {
					return err
				}
			}
			return nil
		}
	}
	return &ValidationError{Field: name, Reason: fmt.Sprintf("unsupported value of type %T", value)}
}

func isInteger(value any) bool {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		return v == math.Trunc(v)
	case float32:
		return float64(v) == math.Trunc(float64(v))
	}
	return false
}

func isNumber(value any) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

func asSequence(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

func asMapping(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			name, ok := key.(string)
			if !ok {
				return nil, false
			}
			out[name] = item
		}
		return out, true
	}
	return nil, false
}
