package parser

import (
	"strings"
	"testing"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"a.txt", "*parser.TextParser"},
		{"a.MD", "*parser.MarkdownParser"},
		{"a.markdown", "*parser.MarkdownParser"},
		{"a.csv", "*parser.CSVParser"},
		{"a.htm", "*parser.HTMLParser"},
		{"a.pdf", "*parser.PDFParser"},
		{"a.docx", "*parser.DOCXParser"},
	}
	for _, tt := range tests {
		p, err := ForFile(tt.filename)
		if err != nil {
			t.Fatalf("ForFile(%q): %v", tt.filename, err)
		}
		if got := typeName(p); got != tt.want {
			t.Errorf("ForFile(%q) = %s, want %s", tt.filename, got, tt.want)
		}
		if !IsSupportedExtension(tt.filename) {
			t.Errorf("IsSupportedExtension(%q) = false", tt.filename)
		}
	}

	if _, err := ForFile("image.png"); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if IsSupportedExtension("image.png") {
		t.Error("expected .png to be unsupported")
	}
}

func typeName(p Parser) string {
	switch p.(type) {
	case *TextParser:
		return "*parser.TextParser"
	case *MarkdownParser:
		return "*parser.MarkdownParser"
	case *CSVParser:
		return "*parser.CSVParser"
	case *HTMLParser:
		return "*parser.HTMLParser"
	case *PDFParser:
		return "*parser.PDFParser"
	case *DOCXParser:
		return "*parser.DOCXParser"
	}
	return "unknown"
}

func TestParseText_Flattens(t *testing.T) {
	text, tree, err := ParseText(strings.NewReader("# Title\n\nBody text."), "doc.md")
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if tree.Title != "doc" {
		t.Errorf("expected title doc, got %q", tree.Title)
	}
	if text != "Title\n\nBody text." {
		t.Errorf("unexpected text %q", text)
	}
}

func TestCSVParser_Batches(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("name,amount\n")
	for i := 0; i < 25; i++ {
		sb.WriteString("acme,100\n")
	}
	sb.WriteString("extra,1,overflow\n")

	tree, err := (&CSVParser{}).Parse(strings.NewReader(sb.String()), "sales.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "sales" {
		t.Errorf("expected title sales, got %q", tree.Title)
	}
	if len(tree.Children) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(tree.Children))
	}
	if tree.Children[0].Title != "Rows 2-21" || tree.Children[1].Title != "Rows 22-27" {
		t.Errorf("unexpected batch titles %q, %q", tree.Children[0].Title, tree.Children[1].Title)
	}
	if !strings.Contains(tree.Children[0].Text, "name: acme, amount: 100") {
		t.Errorf("expected header-labelled cells, got %q", tree.Children[0].Text)
	}
	if !strings.Contains(tree.Children[1].Text, "name: extra, amount: 1, overflow") {
		t.Errorf("expected overflow cell without header, got %q", tree.Children[1].Text)
	}
}

func TestPDFParser_RejectsNonPDF(t *testing.T) {
	_, err := (&PDFParser{}).Parse(strings.NewReader("plain text, no header"), "fake.pdf")
	if err == nil {
		t.Fatal("expected error for non-PDF input")
	}
}

func TestBlankPages(t *testing.T) {
	if !blankPages(nil) || !blankPages([]string{"", " \n"}) {
		t.Error("expected empty pages to be blank")
	}
	if blankPages([]string{"", "text"}) {
		t.Error("expected page with text to be non-blank")
	}
}
