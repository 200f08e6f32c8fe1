package doctree

import "testing"

func TestBuilder_NestsHeadings(t *testing.T) {
	b := NewBuilder("doc")
	b.Text("preamble")
	b.Heading(1, "Intro")
	b.Text("intro text")
	b.Heading(2, "Detail")
	b.Text("detail text")
	b.Heading(1, "Next")
	b.Text("next text")
	tree := b.Tree()

	if len(tree.Children) != 3 {
		t.Fatalf("expected preamble plus 2 top-level sections, got %d", len(tree.Children))
	}
	if tree.Children[0].Title != "" || tree.Children[0].Text != "preamble" {
		t.Errorf("unexpected preamble node %+v", tree.Children[0])
	}
	intro := tree.Children[1]
	if intro.Title != "Intro" || len(intro.Children) != 1 || intro.Children[0].Title != "Detail" {
		t.Errorf("unexpected intro section %+v", intro)
	}
	if intro.Children[0].Text != "detail text" {
		t.Errorf("expected detail text, got %q", intro.Children[0].Text)
	}
	if tree.Sections() != 3 {
		t.Errorf("expected 3 sections, got %d", tree.Sections())
	}
}

func TestFlatten(t *testing.T) {
	tree := &DocTree{
		Title: "ignored",
		Children: []*DocNode{
			{Text: "lead"},
			{Title: "A", Text: "alpha", Children: []*DocNode{{Title: "A1", Text: "one"}}},
			{Text: "  "},
			{Title: "B"},
		},
	}
	want := "lead\n\nA\n\nalpha\n\nA1\n\none\n\nB"
	if got := tree.Flatten(); got != want {
		t.Errorf("Flatten = %q, want %q", got, want)
	}
}

func TestFlatten_Empty(t *testing.T) {
	if got := (&DocTree{Title: "x"}).Flatten(); got != "" {
		t.Errorf("expected empty text, got %q", got)
	}
}

func TestTitleFromFilename(t *testing.T) {
	tests := map[string]string{
		"notes.txt":          "notes",
		"/tmp/dir/report.md": "report",
		"archive.tar.gz":     "archive.tar",
		"README":             "README",
	}
	for in, want := range tests {
		if got := TitleFromFilename(in); got != want {
			t.Errorf("TitleFromFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
