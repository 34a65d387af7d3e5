package stub

// FieldType is the simplified enum for declared stub field kinds. FieldTypeAny
// is the fallback for newly discovered variables: a tagged value restricted to
// string, number, boolean, sequence, and mapping-of-same.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeInteger FieldType = "integer"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeArray   FieldType = "array"
	FieldTypeObject  FieldType = "object"
	FieldTypeAny     FieldType = "any"
)

// ParseFieldType validates a declared type string from a manifest.
func ParseFieldType(s string) (FieldType, bool) {
	switch FieldType(s) {
	case FieldTypeString, FieldTypeInteger, FieldTypeNumber,
		FieldTypeBoolean, FieldTypeArray, FieldTypeObject, FieldTypeAny:
		return FieldType(s), true
	case "":
		return FieldTypeAny, true
	}
	return FieldTypeAny, false
}

// Field is one declared entry of a model stub. Type, Default, Required, and
// Description survive regeneration verbatim; Name is owned by the template.
type Field struct {
	Name        string    `yaml:"name" json:"name"`
	Type        FieldType `yaml:"type" json:"type"`
	Default     any       `yaml:"default,omitempty" json:"default,omitempty"`
	Required    bool      `yaml:"required,omitempty" json:"required,omitempty"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
}

// Stub is the synthesized typed-record declaration for one template module.
// Fields are kept sorted by name so regeneration is byte-stable.
type Stub struct {
	Module string  `yaml:"module" json:"module"`
	Record string  `yaml:"record" json:"record"`
	Output string  `yaml:"output,omitempty" json:"output,omitempty"`
	Fields []Field `yaml:"fields" json:"fields"`
}

// Field looks up a declared field by name.
func (s Stub) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldNames returns the declared names in manifest order (sorted).
func (s Stub) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}
