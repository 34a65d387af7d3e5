// Package schemaexport emits a JSON Schema document per model stub so value
// documents can be validated by editors and CI before a generate run.
package schemaexport

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-templateer/pkg/stub"
)

// FileName returns the schema filename for a module.
func FileName(module string) string {
	return module + ".schema.json"
}

// SchemaFor converts a stub declaration into an object schema: one property
// per declared field, required entries for fields without defaults that are
// marked required.
func SchemaFor(s stub.Stub) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	schema.Title = s.Record
	schema.Description = fmt.Sprintf("Field values for template module %q.", s.Module)

	for _, field := range s.Fields {
		prop := propertySchema(field.Type)
		prop.Description = field.Description
		prop.Default = field.Default
		schema.WithProperty(field.Name, prop)
		if field.Required {
			schema.Required = append(schema.Required, field.Name)
		}
	}

	return schema
}

func propertySchema(typ stub.FieldType) *openapi3.Schema {
	switch typ {
	case stub.FieldTypeString:
		return openapi3.NewStringSchema()
	case stub.FieldTypeInteger:
		return openapi3.NewIntegerSchema()
	case stub.FieldTypeNumber:
		return openapi3.NewFloat64Schema()
	case stub.FieldTypeBoolean:
		return openapi3.NewBoolSchema()
	case stub.FieldTypeArray:
		return openapi3.NewArraySchema()
	case stub.FieldTypeObject:
		return openapi3.NewObjectSchema()
	default:
		// Untyped fields accept any of the tagged-variant kinds.
		return openapi3.NewSchema()
	}
}

// Encode serialises the stub's schema as indented JSON.
func Encode(s stub.Stub) ([]byte, error) {
	data, err := json.MarshalIndent(SchemaFor(s), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("schemaexport: marshal schema for %q: %w", s.Module, err)
	}
	return append(data, '\n'), nil
}

// Path returns the export location for a module under dir.
func Path(dir, module string) string {
	return filepath.Join(dir, FileName(module))
}
