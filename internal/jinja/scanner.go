// Package jinja discovers the free variables referenced by a template written
// in the Django/Jinja tag grammar used by pongo2. The engine itself does not
// export its parse tree, so discovery runs over a purpose-built lexer with
// scope tracking for the binding constructs (for, set, with, macro, import).
package jinja

// builtins are engine-provided names that never count as template variables.
var builtins = map[string]struct{}{
	"true":  {},
	"false": {},
	"none":  {},
	"True":  {},
	"False": {},
	"None":  {},
	"nil":   {},
}

// keywords are expression-level words that the tokenizer reports as
// identifiers but which can never be variable references.
var keywords = map[string]struct{}{
	"and":      {},
	"or":       {},
	"not":      {},
	"in":       {},
	"is":       {},
	"if":       {},
	"else":     {},
	"as":       {},
	"with":     {},
	"without":  {},
	"context":  {},
	"reversed": {},
	"sorted":   {},
}

// loopNames are bound implicitly inside a for body.
var loopNames = map[string]struct{}{
	"forloop": {},
	"loop":    {},
}

// Scan returns the set of free variable names referenced by the template
// source. Loop targets, macro parameters, set-assigned locals, with bindings,
// and import aliases are declared names, not free ones. Attribute and index
// access contributes only the root name; include/extends targets are not
// descended into.
func Scan(src string) (map[string]struct{}, error) {
	tags, err := splitTags(src)
	if err != nil {
		return nil, err
	}

	s := &scanner{
		free:   make(map[string]struct{}),
		scopes: []map[string]struct{}{make(map[string]struct{})},
	}

	for _, t := range tags {
		s.tag(t)
	}

	return s.free, nil
}

type scanner struct {
	free     map[string]struct{}
	scopes   []map[string]struct{}
	forDepth int

	// skipUntil names the statement keyword that re-enables scanning after a
	// raw region such as {% comment %} or {% verbatim %}.
	skipUntil string
}

func (s *scanner) tag(t tag) {
	if t.kind == tagComment {
		return
	}

	tokens := tokenize(t.content)

	if s.skipUntil != "" {
		if t.kind == tagStatement && len(tokens) > 0 && tokens[0].text == s.skipUntil {
			s.skipUntil = ""
		}
		return
	}

	if t.kind == tagOutput {
		s.collect(tokens)
		return
	}

	s.statement(tokens)
}

func (s *scanner) statement(tokens []token) {
	if len(tokens) == 0 || tokens[0].kind != tokIdent {
		return
	}

	rest := tokens[1:]
	switch tokens[0].text {
	case "for":
		s.forTag(rest)
	case "endfor":
		s.pop()
		if s.forDepth > 0 {
			s.forDepth--
		}
	case "set":
		s.setTag(rest)
	case "with":
		s.withTag(rest)
	case "endwith":
		s.pop()
	case "macro":
		s.macroTag(rest)
	case "endmacro":
		s.pop()
	case "block", "endblock", "endfilter", "else", "endif":
		// No bindings and no variable reads.
	case "filter":
		s.filterTag(rest)
	case "import":
		s.importTag(rest)
	case "from":
		s.fromTag(rest)
	case "comment":
		s.skipUntil = "endcomment"
	case "verbatim":
		s.skipUntil = "endverbatim"
	default:
		// if/elif, include/extends, cycle, and any custom tag: scan the
		// remaining expression. String literals (include targets) contribute
		// nothing by construction.
		s.collect(rest)
	}
}

// forTag handles {% for a, b in expr %}: targets bind inside the loop body,
// the iterated expression is read in the enclosing scope.
func (s *scanner) forTag(tokens []token) {
	bound := make(map[string]struct{})
	i := 0
	for ; i < len(tokens); i++ {
		t := tokens[i]
		if t.kind == tokIdent && t.text == "in" {
			i++
			break
		}
		if t.kind == tokIdent {
			bound[t.text] = struct{}{}
		}
	}

	s.collect(tokens[i:])
	s.scopes = append(s.scopes, bound)
	s.forDepth++
}

// setTag handles {% set x = expr %}: the value expression is read first, then
// the target binds from this point to the end of the current scope.
func (s *scanner) setTag(tokens []token) {
	if len(tokens) == 0 || tokens[0].kind != tokIdent {
		return
	}
	target := tokens[0].text

	i := 1
	if i < len(tokens) && tokens[i].kind == tokPunct && tokens[i].text == "=" {
		i++
	}
	s.collect(tokens[i:])
	s.bind(target)
}

// withTag handles {% with a=expr b=expr %} and the legacy {% with expr as a %}
// form. Binding targets go into a fresh scope; everything else is read in the
// enclosing one.
func (s *scanner) withTag(tokens []token) {
	bound := make(map[string]struct{})

	for i, t := range tokens {
		if t.kind != tokIdent {
			continue
		}
		if i+1 < len(tokens) && tokens[i+1].kind == tokPunct && tokens[i+1].text == "=" {
			bound[t.text] = struct{}{}
		}
		if i > 0 && tokens[i-1].kind == tokIdent && tokens[i-1].text == "as" {
			bound[t.text] = struct{}{}
		}
	}

	var expr []token
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		if t.kind == tokIdent {
			if _, ok := bound[t.text]; ok {
				// Skip the binding target and, for the a=expr form, leave the
				// '=' to the expression walk where it is inert.
				continue
			}
		}
		expr = append(expr, t)
	}

	s.collect(expr)
	s.scopes = append(s.scopes, bound)
}

// macroTag handles {% macro name(p, q=default) %}: parameters bind inside the
// macro body, default expressions are read in the enclosing scope, and the
// macro name itself becomes a declared name afterwards.
func (s *scanner) macroTag(tokens []token) {
	bound := make(map[string]struct{})

	i := 0
	if i < len(tokens) && tokens[i].kind == tokIdent {
		s.bind(tokens[i].text)
		i++
	}

	var defaults []token
	inDefault := false
	for ; i < len(tokens); i++ {
		t := tokens[i]
		switch {
		case t.kind == tokPunct && t.text == "=":
			inDefault = true
		case t.kind == tokPunct && (t.text == "," || t.text == ")"):
			inDefault = false
		case inDefault:
			defaults = append(defaults, t)
		case t.kind == tokIdent:
			bound[t.text] = struct{}{}
		}
	}

	s.collect(defaults)
	s.scopes = append(s.scopes, bound)
}

// filterTag handles {% filter lower|truncatechars:12 %}: every identifier in
// the head is a filter name, only arguments after ':' are expressions.
func (s *scanner) filterTag(tokens []token) {
	var args []token
	inArg := false
	for _, t := range tokens {
		switch {
		case t.kind == tokPunct && t.text == ":":
			inArg = true
		case t.kind == tokPunct && t.text == "|":
			inArg = false
		case inArg:
			args = append(args, t)
		}
	}
	s.collect(args)
}

// importTag handles {% import "macros.tpl" as forms %}: the alias binds, a
// non-literal target is read.
func (s *scanner) importTag(tokens []token) {
	for i, t := range tokens {
		if t.kind == tokIdent && t.text == "as" && i+1 < len(tokens) && tokens[i+1].kind == tokIdent {
			s.bind(tokens[i+1].text)
			s.collect(tokens[:i])
			return
		}
	}
	s.collect(tokens)
}

// fromTag handles {% from "macros.tpl" import field, area as textarea %}:
// imported names and aliases bind, nothing else is read.
func (s *scanner) fromTag(tokens []token) {
	importing := false
	for i, t := range tokens {
		if t.kind != tokIdent {
			continue
		}
		switch {
		case t.text == "import":
			importing = true
		case t.text == "as":
			// Alias target handled below; the aliased name stays declared too.
		case importing:
			if i > 0 && tokens[i-1].kind == tokIdent && tokens[i-1].text == "as" {
				s.bind(t.text)
				continue
			}
			s.bind(t.text)
		}
	}
}

// collect walks expression tokens and records unbound root identifiers as
// free variables.
func (s *scanner) collect(tokens []token) {
	for i, t := range tokens {
		if t.kind != tokIdent {
			continue
		}
		if i > 0 && tokens[i-1].kind == tokPunct && (tokens[i-1].text == "." || tokens[i-1].text == "|") {
			continue // attribute segment or filter name
		}
		if i > 0 && tokens[i-1].kind == tokIdent && tokens[i-1].text == "is" {
			continue // test name
		}
		s.reference(t.text)
	}
}

func (s *scanner) reference(name string) {
	if _, ok := keywords[name]; ok {
		return
	}
	if _, ok := builtins[name]; ok {
		return
	}
	if _, ok := loopNames[name]; ok && s.forDepth > 0 {
		return
	}
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if _, ok := s.scopes[i][name]; ok {
			return
		}
	}
	s.free[name] = struct{}{}
}

func (s *scanner) bind(name string) {
	s.scopes[len(s.scopes)-1][name] = struct{}{}
}

func (s *scanner) pop() {
	if len(s.scopes) > 1 {
		s.scopes = s.scopes[:len(s.scopes)-1]
	}
}
