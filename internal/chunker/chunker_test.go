package chunker

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func paragraphs(n, words int, word string) string {
	var paras []string
	for i := 0; i < n; i++ {
		paras = append(paras, strings.TrimSpace(strings.Repeat(word+" ", words)))
	}
	return strings.Join(paras, "\n\n")
}

func TestSplit_SmallTextFitsOneChunk(t *testing.T) {
	text := "First paragraph.\n\nSecond paragraph."
	chunks := Split(text, 3000)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Index != 1 {
		t.Errorf("expected index 1, got %d", chunks[0].Index)
	}
	if chunks[0].Text != text {
		t.Errorf("expected chunk text %q, got %q", text, chunks[0].Text)
	}
	if chunks[0].Len != utf8.RuneCountInString(text) {
		t.Errorf("expected len %d, got %d", utf8.RuneCountInString(text), chunks[0].Len)
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n\n", " \t\n \n"} {
		if chunks := Split(text, 100); len(chunks) != 0 {
			t.Errorf("Split(%q): expected 0 chunks, got %d", text, len(chunks))
		}
	}
}

func TestSplit_SizeBound(t *testing.T) {
	text := paragraphs(40, 30, "lorem")
	size := 500
	chunks := Split(text, size)

	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if c.Len > size {
			t.Errorf("chunk %d: len %d exceeds size %d", c.Index, c.Len, size)
		}
		if c.Len != utf8.RuneCountInString(c.Text) {
			t.Errorf("chunk %d: Len %d does not match text length %d", c.Index, c.Len, utf8.RuneCountInString(c.Text))
		}
	}
}

func TestSplit_SequentialIndexes(t *testing.T) {
	chunks := Split(paragraphs(20, 50, "ipsum"), 400)
	for i, c := range chunks {
		if c.Index != i+1 {
			t.Errorf("chunk %d: expected index %d, got %d", i, i+1, c.Index)
		}
	}
}

func TestSplit_Reconstruction(t *testing.T) {
	text := "Intro line.\r\n\r\nSecond para\nwith two lines.\n   \n\n  Third para.  \n\n\n\nFourth."
	chunks := Split(text, 30)

	var rebuilt []string
	for _, c := range chunks {
		rebuilt = append(rebuilt, Paragraphs(c.Text)...)
	}
	if want := Paragraphs(text); !reflect.DeepEqual(rebuilt, want) {
		t.Errorf("reconstructed paragraphs %q, want %q", rebuilt, want)
	}
}

func TestSplit_OversizedParagraphKeptWhole(t *testing.T) {
	big := strings.Repeat("x", 250)
	text := "short one\n\n" + big + "\n\nshort two"
	chunks := Split(text, 100)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[1].Text != big {
		t.Errorf("expected oversized paragraph as its own chunk, got %q", chunks[1].Text)
	}
	if chunks[1].Len != 250 {
		t.Errorf("expected len 250, got %d", chunks[1].Len)
	}
}

func TestSplit_JoinCountsTowardSize(t *testing.T) {
	// Two 5-char paragraphs joined by a blank line make 12 characters.
	text := "aaaaa\n\nbbbbb"

	if chunks := Split(text, 12); len(chunks) != 1 {
		t.Errorf("size 12: expected 1 chunk, got %d", len(chunks))
	}
	if chunks := Split(text, 11); len(chunks) != 2 {
		t.Errorf("size 11: expected 2 chunks, got %d", len(chunks))
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := paragraphs(30, 25, "dolor")
	first := Split(text, 350)
	for i := 0; i < 5; i++ {
		if again := Split(text, 350); !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d produced a different chunk sequence", i)
		}
	}
}

func TestSplit_CountsRunesNotBytes(t *testing.T) {
	// Each paragraph is 10 runes but 20 bytes.
	para := strings.Repeat("é", 10)
	text := para + "\n\n" + para
	if chunks := Split(text, 22); len(chunks) != 1 {
		t.Errorf("expected 1 chunk when measuring runes, got %d", len(chunks))
	}
}

func TestSplit_DefaultSizeFallback(t *testing.T) {
	text := paragraphs(10, 100, "word") // ~500 chars per paragraph
	chunks := Split(text, 0)
	if len(chunks) < 2 {
		t.Fatalf("expected default size to split the text, got %d chunks", len(chunks))
	}
	for _, c := range chunks {
		if c.Len > DefaultSize {
			t.Errorf("chunk %d: len %d exceeds default size", c.Index, c.Len)
		}
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abc", 0},
		{"abcd", 1},
		{strings.Repeat("a", 48000), 12000},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("len=%d", len(tt.text)), func(t *testing.T) {
			if got := EstimateTokens(tt.text); got != tt.want {
				t.Errorf("EstimateTokens = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	got, cut := Truncate("héllo world", 5)
	if !cut || got != "héllo" {
		t.Errorf("Truncate = %q, %v; want %q, true", got, cut, "héllo")
	}
	got, cut = Truncate("short", 10)
	if cut || got != "short" {
		t.Errorf("Truncate = %q, %v; want %q, false", got, cut, "short")
	}
}
