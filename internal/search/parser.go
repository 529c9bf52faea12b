package search

import (
	"unicode"
	"unicode/utf8"

	"github.com/rebeliceyang/lazytable/internal/schema"
)

// tokenizer walks user search text one token at a time
type tokenizer struct {
	text string
	pos  int
}

func (t *tokenizer) done() bool { return t.pos >= len(t.text) }

func (t *tokenizer) peek() byte { return t.text[t.pos] }

func (t *tokenizer) skipSpace() {
	for t.pos < len(t.text) {
		r, size := utf8.DecodeRuneInString(t.text[t.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		t.pos += size
	}
}

// next returns the next token. A double-quoted token runs to the closing
// quote (or end of text) and is reported as quoted. When stopAtColon is set
// an unquoted token ends at ':' so the caller can see a field binding.
func (t *tokenizer) next(stopAtColon bool) (token string, quoted bool) {
	t.skipSpace()
	if t.done() {
		return "", false
	}

	if t.peek() == '"' {
		t.pos++
		start := t.pos
		for t.pos < len(t.text) && t.text[t.pos] != '"' {
			t.pos++
		}
		token = t.text[start:t.pos]
		if t.pos < len(t.text) {
			// closing quote
			t.pos++
		}
		return token, true
	}

	start := t.pos
	for t.pos < len(t.text) {
		r, size := utf8.DecodeRuneInString(t.text[t.pos:])
		if unicode.IsSpace(r) || (stopAtColon && r == ':') {
			break
		}
		t.pos += size
	}
	return t.text[start:t.pos], false
}

// Parse turns free search text into a WHERE clause over the fields of s.
//
// Each whitespace separated token must match (AND) and may match any field
// (OR). "alias:value" restricts value to the fields behind alias. A bare,
// unquoted token that names an alias also matches boolean fields behind that
// alias being true. Parse returns nil when the text produces no filter.
func Parse(text string, s *schema.Schema) *Where {
	and := NewAnd()
	tok := &tokenizer{text: text}

	for {
		token, quoted := tok.next(true)

		if !tok.done() && tok.peek() == ':' {
			tok.pos++
			if token == "" {
				// lone ':'
				continue
			}

			match, _ := tok.next(false)
			if match != "" {
				if fields, ok := s.Resolve(token); ok {
					or := NewOr()
					for _, field := range fields {
						or.Add(NewLike(field, match))
					}
					addGroup(and, or)
				}
			} else {
				addGroup(and, stringTerms(s, token))
			}
			continue
		}

		if token == "" {
			if tok.done() {
				break
			}
			continue
		}

		or := NewOr()
		if !quoted {
			if fields, ok := s.Resolve(token); ok {
				for _, field := range fields {
					if k, _ := s.Kind(field); k == schema.KindBool {
						or.Add(NewIs(field, Bool(true)))
					}
				}
			}
		}
		or.Add(stringTerms(s, token).Children...)
		addGroup(and, or)
	}

	if !and.HasChildren() {
		return nil
	}
	return NewWhere(and)
}

// stringTerms matches token against every string field of s
func stringTerms(s *schema.Schema, token string) *Or {
	or := NewOr()
	for _, field := range s.FieldsOfKind(schema.KindString) {
		or.Add(NewLike(field, token))
	}
	return or
}

func addGroup(and *And, or *Or) {
	if or.HasChildren() {
		and.Add(or)
	}
}
