package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"

	"github.com/dgallion1/docsum/internal/doctree"
)

// MarkdownParser handles Markdown files using goldmark. Embedded HTML is
// reduced to its text.
type MarkdownParser struct{}

var stripHTML = bluemonday.StrictPolicy()

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	b := doctree.NewBuilder(doctree.TitleFromFilename(filename))

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			b.Heading(node.Level, extractText(node, src))
		case *ast.HTMLBlock:
			b.Text(sanitizeHTML(blockLines(node, src)))
		default:
			b.Text(extractText(n, src))
		}
	}

	return b.Tree(), nil
}

func sanitizeHTML(s string) string {
	return strings.TrimSpace(html.UnescapeString(stripHTML.Sanitize(s)))
}

func blockLines(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(src))
	}
	return buf.String()
}

// extractText gets the text content of a goldmark AST node. Leaf blocks
// such as code use their raw lines; everything else is rebuilt from inline
// children, with nested blocks on their own lines.
func extractText(n ast.Node, src []byte) string {
	if n.Type() == ast.TypeBlock && !n.HasChildren() {
		return strings.TrimSpace(blockLines(n, src))
	}

	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *ast.RawHTML:
			// Inline tags carry no text of their own.
		default:
			s := extractText(c, src)
			if c.Type() == ast.TypeBlock {
				if s != "" {
					if buf.Len() > 0 {
						buf.WriteByte('\n')
					}
					buf.WriteString(s)
				}
				continue
			}
			buf.WriteString(s)
		}
	}
	return strings.TrimSpace(buf.String())
}
