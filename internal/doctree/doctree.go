package doctree

import (
	"path/filepath"
	"strings"
)

// DocTree is the root of a parsed document.
type DocTree struct {
	Title    string     // Document title (from metadata or filename)
	Children []*DocNode // Top-level sections
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Title    string     // Section heading (empty for leaf text)
	Text     string     // Text content of this node (may be empty for container nodes)
	Page     int        // Source page (0 if N/A)
	Children []*DocNode // Subsections
}

// Flatten renders the tree as plain text. Section headings and text blocks
// each become a paragraph, separated by blank lines, in document order.
func (t *DocTree) Flatten() string {
	var parts []string
	var walk func(n *DocNode)
	walk = func(n *DocNode) {
		if s := strings.TrimSpace(n.Title); s != "" {
			parts = append(parts, s)
		}
		if s := strings.TrimSpace(n.Text); s != "" {
			parts = append(parts, s)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, c := range t.Children {
		walk(c)
	}
	return strings.Join(parts, "\n\n")
}

// Sections counts nodes that carry a heading.
func (t *DocTree) Sections() int {
	count := 0
	var walk func(n *DocNode)
	walk = func(n *DocNode) {
		if n.Title != "" {
			count++
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, c := range t.Children {
		walk(c)
	}
	return count
}

// TitleFromFilename strips directory and extension from a filename.
func TitleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

type stackEntry struct {
	node  *DocNode
	level int
}

// Builder assembles a DocTree from a stream of headings and text blocks,
// nesting each heading under the nearest preceding heading of lower level.
type Builder struct {
	title string
	root  *DocNode
	stack []stackEntry
	text  strings.Builder
}

func NewBuilder(title string) *Builder {
	root := &DocNode{Title: title}
	return &Builder{
		title: title,
		root:  root,
		stack: []stackEntry{{node: root, level: 0}},
	}
}

// SetTitle replaces the document title.
func (b *Builder) SetTitle(title string) {
	b.title = title
	b.root.Title = title
}

// Heading opens a new section at level (1 = top).
func (b *Builder) Heading(level int, title string) {
	b.flush()
	node := &DocNode{Title: title}
	for len(b.stack) > 1 && b.stack[len(b.stack)-1].level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	parent := b.stack[len(b.stack)-1].node
	parent.Children = append(parent.Children, node)
	b.stack = append(b.stack, stackEntry{node: node, level: level})
}

// Text appends a paragraph to the current section.
func (b *Builder) Text(t string) {
	t = strings.TrimSpace(t)
	if t == "" {
		return
	}
	if b.text.Len() > 0 {
		b.text.WriteString("\n\n")
	}
	b.text.WriteString(t)
}

func (b *Builder) flush() {
	t := strings.TrimSpace(b.text.String())
	if t != "" {
		top := b.stack[len(b.stack)-1].node
		if top.Text != "" {
			top.Text += "\n\n" + t
		} else {
			top.Text = t
		}
	}
	b.text.Reset()
}

// Tree finishes the document. Text that appeared before the first heading
// becomes a leading untitled section.
func (b *Builder) Tree() *DocTree {
	b.flush()
	tree := &DocTree{Title: b.title}
	if b.root.Text != "" {
		tree.Children = append(tree.Children, &DocNode{Text: b.root.Text})
	}
	tree.Children = append(tree.Children, b.root.Children...)
	return tree
}
