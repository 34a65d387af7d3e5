// Package stub re-exports the model-stub types and synthesis entry points so
// callers never import internal packages directly.
package stub

import internalstub "github.com/goliatone/go-templateer/internal/stub"

// FieldType re-exports the internal FieldType enumeration.
type FieldType = internalstub.FieldType

const (
	FieldTypeString  = internalstub.FieldTypeString
	FieldTypeInteger = internalstub.FieldTypeInteger
	FieldTypeNumber  = internalstub.FieldTypeNumber
	FieldTypeBoolean = internalstub.FieldTypeBoolean
	FieldTypeArray   = internalstub.FieldTypeArray
	FieldTypeObject  = internalstub.FieldTypeObject
	FieldTypeAny     = internalstub.FieldTypeAny
)

type Field = internalstub.Field
type Stub = internalstub.Stub
type Report = internalstub.Report
type MergeConflict = internalstub.MergeConflict

// ParseFieldType validates a declared type string from a manifest.
func ParseFieldType(s string) (FieldType, bool) {
	return internalstub.ParseFieldType(s)
}

// Synthesize merges a variable set against a prior declaration. See the
// internal implementation for the merge and drop policy.
func Synthesize(module string, vars map[string]struct{}, prior *Stub) (Stub, Report) {
	return internalstub.Synthesize(module, vars, prior)
}

// RecordName derives the CamelCase record identifier for a module.
func RecordName(module string) string {
	return internalstub.RecordName(module)
}

// ManifestName returns the declaration filename for a module.
func ManifestName(module string) string {
	return internalstub.ManifestName(module)
}

// Encode serialises a stub into deterministic manifest bytes.
func Encode(s Stub) ([]byte, error) {
	return internalstub.Encode(s)
}

// Decode parses manifest bytes back into a Stub.
func Decode(data []byte) (Stub, error) {
	return internalstub.Decode(data)
}
