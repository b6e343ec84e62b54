// Package markdown renders agent replies for transports that cannot
// display markdown (plain-text chat channels).
package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Service converts markdown content.
type Service interface {
	// ToPlainText strips markdown formatting, keeping the visible text
	// and list structure.
	ToPlainText(source string) string
}

type service struct {
	md goldmark.Markdown
}

// NewService creates a markdown service.
func NewService() Service {
	return &service{md: goldmark.New()}
}

func (s *service) ToPlainText(source string) string {
	src := []byte(source)
	doc := s.md.Parser().Parse(text.NewReader(src))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			switch n.Kind() {
			case ast.KindParagraph, ast.KindHeading, ast.KindListItem:
				b.WriteString("\n")
			}
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(src))
			if node.HardLineBreak() || node.SoftLineBreak() {
				b.WriteString("\n")
			}
		case *ast.ListItem:
			b.WriteString("- ")
		}
		return ast.WalkContinue, nil
	})

	// Collapse the blank lines the block boundaries leave behind.
	lines := strings.Split(b.String(), "\n")
	var out []string
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " ")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
