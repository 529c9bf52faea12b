package cli

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// sqlHighlighter colors SQL text for terminal output
type sqlHighlighter struct {
	lexer     chroma.Lexer
	style     *chroma.Style
	formatter chroma.Formatter
}

func newSQLHighlighter(style string) *sqlHighlighter {
	h := &sqlHighlighter{
		style:     styles.Get(style),
		formatter: formatters.Get("terminal256"),
	}
	if h.style == nil {
		h.style = styles.Fallback
	}
	if h.formatter == nil {
		h.formatter = formatters.Fallback
	}

	lexer := lexers.Get("postgresql")
	if lexer == nil {
		lexer = lexers.Get("sql")
	}
	if lexer != nil {
		h.lexer = chroma.Coalesce(lexer)
	}
	return h
}

// Highlight returns query with terminal color codes, or query unchanged
// when it cannot be tokenised
func (h *sqlHighlighter) Highlight(query string) string {
	if h == nil || h.lexer == nil || query == "" {
		return query
	}

	iterator, err := h.lexer.Tokenise(nil, query)
	if err != nil {
		return query
	}

	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return query
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
