package document

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRead_Markdown(t *testing.T) {
	path := writeFile(t, "notes.md", "# Plan\n\nShip the first release.\n\n## Risks\n\nHiring is slow.\n")

	doc, err := NewReader(0, false, nil).Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if doc.Title != "notes" {
		t.Errorf("expected title notes, got %q", doc.Title)
	}
	want := "Plan\n\nShip the first release.\n\nRisks\n\nHiring is slow."
	if doc.Text != want {
		t.Errorf("unexpected text %q", doc.Text)
	}
	if doc.Words != 9 || doc.Chars != len(want) {
		t.Errorf("unexpected counts words=%d chars=%d", doc.Words, doc.Chars)
	}
	if doc.Sections != 2 {
		t.Errorf("expected 2 sections, got %d", doc.Sections)
	}
	if doc.Language != "" {
		t.Errorf("expected no language when detection is off, got %q", doc.Language)
	}
}

func TestRead_Guards(t *testing.T) {
	r := NewReader(10, false, nil)
	ctx := context.Background()

	if _, err := r.Read(ctx, writeFile(t, "image.png", "x")); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if _, err := r.Read(ctx, writeFile(t, "big.txt", strings.Repeat("a", 11))); err == nil {
		t.Error("expected error for oversized file")
	}
	if _, err := r.Read(ctx, filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
	_, err := r.Read(ctx, writeFile(t, "blank.txt", "  \n\n "))
	if !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}

func TestRead_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewReader(0, false, nil).Read(ctx, writeFile(t, "a.txt", "text"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFromText(t *testing.T) {
	doc := FromText("upload/report.txt", "héllo wörld")
	if doc.Title != "report" || doc.Chars != 11 || doc.Words != 2 {
		t.Errorf("unexpected document %+v", doc)
	}
}

func TestDetectLanguage(t *testing.T) {
	en := "The committee reviewed the annual budget and approved the new hiring plan for the engineering department."
	if got := DetectLanguage(en); got != "en" {
		t.Errorf("expected en, got %q", got)
	}
	de := "Der Ausschuss hat den Jahreshaushalt geprüft und den neuen Einstellungsplan für die Abteilung genehmigt."
	if got := DetectLanguage(de); got != "de" {
		t.Errorf("expected de, got %q", got)
	}
	if got := DetectLanguage("   "); got != "" {
		t.Errorf("expected empty for blank text, got %q", got)
	}
}
