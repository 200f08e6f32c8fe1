package parser

import (
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/docsum/internal/doctree"
)

// blankRun matches a paragraph break: a newline, any whitespace-only lines,
// and the newline that ends them.
var blankRun = regexp.MustCompile(`\n\s*\n`)

// TextParser splits plain text into one node per paragraph.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	tree := &doctree.DocTree{Title: doctree.TitleFromFilename(filename)}
	for _, para := range blankRun.Split(text, -1) {
		para = strings.Trim(para, "\n")
		if strings.TrimSpace(para) == "" {
			continue
		}
		tree.Children = append(tree.Children, &doctree.DocNode{Text: para})
	}
	return tree, nil
}
