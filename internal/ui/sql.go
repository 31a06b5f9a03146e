package ui

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/pgglance/internal/ui/theme"
)

// sqlLexer prefers the PostgreSQL dialect.
func sqlLexer() chroma.Lexer {
	lexer := lexers.Get("postgresql")
	if lexer == nil {
		lexer = lexers.Get("sql")
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

// highlightSQL colors keywords, literals and comments with the theme palette.
// On a lexer error the text is returned unstyled.
func highlightSQL(sql string, th theme.Theme) string {
	iterator, err := sqlLexer().Tokenise(nil, sql)
	if err != nil {
		return sql
	}

	var b strings.Builder
	for _, tok := range iterator.Tokens() {
		color := th.Foreground
		switch {
		case tok.Type.InCategory(chroma.Keyword):
			color = th.Keyword
		case tok.Type.InSubCategory(chroma.LiteralString):
			color = th.String
		case tok.Type.InSubCategory(chroma.LiteralNumber):
			color = th.Number
		case tok.Type.InCategory(chroma.Comment):
			color = th.Comment
		case tok.Type == chroma.Text || tok.Type == chroma.TextWhitespace:
			b.WriteString(tok.Value)
			continue
		}
		style := lipgloss.NewStyle().Foreground(color)
		if tok.Type.InCategory(chroma.Keyword) {
			style = style.Bold(true)
		}
		b.WriteString(renderLines(style, tok.Value))
	}
	return b.String()
}

// renderLines styles each line of s separately so newlines stay bare.
func renderLines(style lipgloss.Style, s string) string {
	parts := strings.Split(s, "\n")
	for i, p := range parts {
		if p != "" {
			parts[i] = style.Render(p)
		}
	}
	return strings.Join(parts, "\n")
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
