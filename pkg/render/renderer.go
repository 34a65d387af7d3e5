package render

import (
	"context"
	"io"
)

// Engine renders template text with a validated value mapping. The default
// implementation is pongo2-backed; the interface exists so tests and callers
// can swap engines.
type Engine interface {
	Name() string
	RenderString(ctx context.Context, templateText string, values map[string]any, out ...io.Writer) (string, error)
}
