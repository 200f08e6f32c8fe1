package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultSize is the chunk size in characters used when none is given.
const DefaultSize = 3000

const paragraphSep = "\n\n"

var blankLine = regexp.MustCompile(`\n[ \t]*\n`)

// Chunk is one ordered segment of a document.
type Chunk struct {
	Index int    // 1-based position in the sequence
	Text  string // paragraphs joined by a blank line
	Len   int    // length in characters (runes)
}

// Split breaks text into chunks of at most size characters on paragraph
// boundaries. A paragraph longer than size is never cut; it becomes its own
// oversized chunk. Blank input yields no chunks.
func Split(text string, size int) []Chunk {
	if size <= 0 {
		size = DefaultSize
	}

	var chunks []Chunk
	var buf strings.Builder
	bufLen := 0
	sepLen := utf8.RuneCountInString(paragraphSep)

	flush := func() {
		if bufLen == 0 {
			return
		}
		chunks = append(chunks, Chunk{
			Index: len(chunks) + 1,
			Text:  buf.String(),
			Len:   bufLen,
		})
		buf.Reset()
		bufLen = 0
	}

	for _, para := range Paragraphs(text) {
		paraLen := utf8.RuneCountInString(para)

		if bufLen > 0 && bufLen+sepLen+paraLen > size {
			flush()
		}

		if bufLen > 0 {
			buf.WriteString(paragraphSep)
			bufLen += sepLen
		}
		buf.WriteString(para)
		bufLen += paraLen
	}
	flush()

	return chunks
}

// Paragraphs splits text on blank lines, trimming each paragraph and
// dropping empty ones.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := blankLine.Split(text, -1)
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
