package stub

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// manifestHeader leads every generated declaration file. Field types, defaults,
// and descriptions are the hand-editable surface; names are rewritten to match
// the template on every run.
const manifestHeader = `# Code generated by templateer from the template's free variables.
# Edit field types, defaults, required flags, and descriptions freely; field
# names are owned by the template and are rewritten on regeneration.
`

// ManifestName returns the declaration filename for a module.
func ManifestName(module string) string {
	return module + "_model.yaml"
}

// Encode serialises a stub into manifest bytes. Output is deterministic for a
// given stub so unchanged inputs regenerate byte-identical files.
func Encode(s Stub) ([]byte, error) {
	if strings.TrimSpace(s.Module) == "" {
		return nil, errors.New("stub: module name is required")
	}

	var buf bytes.Buffer
	buf.WriteString(manifestHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("stub: encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("stub: close encoder: %w", err)
	}

	return buf.Bytes(), nil
}

// Decode parses manifest bytes back into a Stub. Unknown field types are kept
// as written; Synthesize classifies them as merge conflicts.
func Decode(data []byte) (Stub, error) {
	var s Stub
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Stub{}, fmt.Errorf("stub: decode manifest: %w", err)
	}
	if strings.TrimSpace(s.Module) == "" {
		return Stub{}, errors.New("stub: manifest is missing the module name")
	}
	return s, nil
}
