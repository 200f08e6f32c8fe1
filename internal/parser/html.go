package parser

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/dgallion1/docsum/internal/doctree"
)

// HTMLParser handles HTML files. By default the main article is isolated
// with readability first; pages where that finds nothing are walked whole.
type HTMLParser struct {
	// Raw skips article extraction.
	Raw bool
}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read html: %w", err)
	}

	body := src
	articleTitle := ""
	if !p.Raw {
		if content, title, ok := extractArticle(src, filename); ok {
			body = []byte(content)
			articleTitle = title
		}
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	b := doctree.NewBuilder(doctree.TitleFromFilename(filename))
	switch {
	case articleTitle != "":
		b.SetTitle(articleTitle)
	default:
		if title := findTitle(doc); title != "" {
			b.SetTitle(title)
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				b.Heading(level, textContent(n))
				return
			}

			switch n.Data {
			case "script", "style", "nav", "footer", "header", "noscript", "aside":
				return
			case "p", "li", "td", "blockquote", "pre":
				b.Text(textContent(n))
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	return b.Tree(), nil
}

// extractArticle runs readability over the page and returns the article
// HTML and title.
func extractArticle(src []byte, filename string) (string, string, bool) {
	pageURL := &url.URL{Scheme: "file", Path: "/" + filepath.Base(filename)}
	rp := readability.NewParser()
	article, err := rp.Parse(bytes.NewReader(src), pageURL)
	if err != nil || strings.TrimSpace(article.Content) == "" {
		return "", "", false
	}
	return article.Content, strings.TrimSpace(article.Title), true
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
