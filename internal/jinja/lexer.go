package jinja

import (
	"fmt"
	"strings"
)

// tagKind distinguishes the three tag delimiters of the template grammar.
type tagKind int

const (
	tagOutput    tagKind = iota // {{ ... }}
	tagStatement                // {% ... %}
	tagComment                  // {# ... #}
)

// tag is one delimited region of template source, with trim markers stripped.
type tag struct {
	kind    tagKind
	content string
	line    int
}

// splitTags walks the source and returns every tag region in document order.
// String literals inside a tag may contain closing delimiters, so the walk
// honours quoting. Literal text between tags is irrelevant for variable
// discovery and is skipped.
func splitTags(src string) ([]tag, error) {
	var tags []tag
	line := 1

	for i := 0; i < len(src); i++ {
		c := src[i]
		if c == '\n' {
			line++
			continue
		}
		if c != '{' || i+1 >= len(src) {
			continue
		}

		var kind tagKind
		var closer string
		switch src[i+1] {
		case '{':
			kind, closer = tagOutput, "}}"
		case '%':
			kind, closer = tagStatement, "%}"
		case '#':
			kind, closer = tagComment, "#}"
		default:
			continue
		}

		openLine := line
		start := i + 2
		if start < len(src) && src[start] == '-' {
			start++
		}

		end, endLine, err := findTagEnd(src, start, closer, line)
		if err != nil {
			return nil, err
		}

		content := src[start:end]
		content = strings.TrimSuffix(content, "-")
		tags = append(tags, tag{kind: kind, content: content, line: openLine})

		line = endLine
		i = end + len(closer) - 1
	}

	return tags, nil
}

// findTagEnd locates the closing delimiter for a tag opened before pos,
// skipping over quoted string literals.
func findTagEnd(src string, pos int, closer string, line int) (int, int, error) {
	for i := pos; i < len(src); i++ {
		switch c := src[i]; c {
		case '\n':
			line++
		case '\'', '"':
			end, endLine, ok := skipString(src, i, line)
			if !ok {
				return 0, 0, fmt.Errorf("jinja: unterminated string literal at line %d", line)
			}
			i, line = end, endLine
		default:
			if c == closer[0] && strings.HasPrefix(src[i:], closer) {
				return i, line, nil
			}
		}
	}
	return 0, 0, fmt.Errorf("jinja: unclosed tag at line %d", line)
}

// skipString advances past a quoted literal starting at src[pos], honouring
// backslash escapes. It returns the index of the closing quote.
func skipString(src string, pos int, line int) (int, int, bool) {
	quote := src[pos]
	for i := pos + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case '\n':
			line++
		case quote:
			return i, line, true
		}
	}
	return 0, 0, false
}

// tokenKind classifies the lexemes inside one tag.
type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokNumber
	tokPunct
)

type token struct {
	kind tokenKind
	text string
}

// tokenize splits a tag body into identifiers, literals, and punctuation.
// Unknown bytes are dropped; the surrounding grammar was already validated by
// the template engine, so the tokenizer only needs to be faithful enough for
// name discovery.
func tokenize(content string) []token {
	var tokens []token

	for i := 0; i < len(content); i++ {
		c := content[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			continue
		case c == '\'' || c == '"':
			end, _, ok := skipString(content, i, 0)
			if !ok {
				tokens = append(tokens, token{kind: tokString, text: content[i+1:]})
				return tokens
			}
			tokens = append(tokens, token{kind: tokString, text: content[i+1 : end]})
			i = end
		case isIdentStart(c):
			j := i + 1
			for j < len(content) && isIdentPart(content[j]) {
				j++
			}
			tokens = append(tokens, token{kind: tokIdent, text: content[i:j]})
			i = j - 1
		case c >= '0' && c <= '9':
			j := i + 1
			for j < len(content) && (content[j] >= '0' && content[j] <= '9' || content[j] == '.') {
				j++
			}
			tokens = append(tokens, token{kind: tokNumber, text: content[i:j]})
			i = j - 1
		default:
			tokens = append(tokens, token{kind: tokPunct, text: string(c)})
		}
	}

	return tokens
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}
