// Package extract exposes the variable-discovery contract: parse a template
// source string and report the free (top-level, undeclared) names it reads.
package extract

import (
	"errors"
	"fmt"
	"sort"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-templateer/internal/jinja"
)

// VariableSet is the set of free variable names referenced by one template.
// It is derived, never stored; ordering is applied only at emission time.
type VariableSet map[string]struct{}

// Sorted returns the names in lexicographic order so generated text stays
// byte-stable across runs.
func (v VariableSet) Sorted() []string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the set contains name.
func (v VariableSet) Has(name string) bool {
	_, ok := v[name]
	return ok
}

// SyntaxError reports template text that the engine grammar rejects. It is
// fatal for the offending module only.
type SyntaxError struct {
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("extract: syntax error at line %d col %d: %s", e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("extract: syntax error: %s", e.Msg)
}

// Extractor validates template text against the real engine grammar before
// scanning it for free variables.
type Extractor struct {
	set *pongo2.TemplateSet
}

// New constructs an Extractor with an isolated template set so syntax checks
// never touch global engine state.
func New() *Extractor {
	loader := pongo2.MustNewLocalFileSystemLoader("")
	return &Extractor{set: pongo2.NewSet("templateer-extract", loader)}
}

// Extract parses templateText and returns its free variable names. Loop
// targets, macro parameters, set-assigned locals, and with/import bindings are
// excluded; attribute chains contribute only the root name. Cross-template
// flow through include/extends targets is out of scope.
func (e *Extractor) Extract(templateText string) (VariableSet, error) {
	if e == nil || e.set == nil {
		return nil, errors.New("extract: extractor is nil")
	}

	if _, err := e.set.FromString(templateText); err != nil {
		return nil, asSyntaxError(err)
	}

	names, err := jinja.Scan(templateText)
	if err != nil {
		return nil, asSyntaxError(err)
	}
	return VariableSet(names), nil
}

// Extract is a convenience wrapper around a throwaway Extractor.
func Extract(templateText string) (VariableSet, error) {
	return New().Extract(templateText)
}

func asSyntaxError(err error) error {
	var perr *pongo2.Error
	if errors.As(err, &perr) {
		msg := ""
		if perr.OrigError != nil {
			msg = perr.OrigError.Error()
		} else {
			msg = perr.Error()
		}
		return &SyntaxError{Line: perr.Line, Column: perr.Column, Msg: msg}
	}
	return &SyntaxError{Msg: err.Error()}
}
