// Package document loads files from disk into plain text ready for
// summarization.
package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/pemistahl/lingua-go"

	"github.com/dgallion1/docsum/internal/parser"
)

// ErrEmpty is returned when a file parses to no text at all.
var ErrEmpty = errors.New("document contains no text")

// Document is a parsed file.
type Document struct {
	Path     string `json:"path" yaml:"path"`
	Title    string `json:"title" yaml:"title"`
	Text     string `json:"-" yaml:"-"`
	Chars    int    `json:"chars" yaml:"chars"`
	Words    int    `json:"words" yaml:"words"`
	Sections int    `json:"sections" yaml:"sections"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
}

// FromText wraps already extracted text, e.g. an API request body.
func FromText(name, text string) *Document {
	return &Document{
		Path:  name,
		Title: strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)),
		Text:  text,
		Chars: utf8.RuneCountInString(text),
		Words: len(strings.Fields(text)),
	}
}

// Reader opens and parses documents.
type Reader struct {
	MaxFileBytes   int64
	DetectLanguage bool
	log            *slog.Logger
}

func NewReader(maxFileBytes int64, detectLanguage bool, log *slog.Logger) *Reader {
	if log == nil {
		log = slog.Default()
	}
	return &Reader{MaxFileBytes: maxFileBytes, DetectLanguage: detectLanguage, log: log}
}

// Read parses the file at path with the parser registered for its extension.
func (r *Reader) Read(ctx context.Context, path string) (*Document, error) {
	if !parser.IsSupportedExtension(path) {
		return nil, fmt.Errorf("unsupported file type %q (supported: %s)",
			filepath.Ext(path), strings.Join(parser.Extensions(), ", "))
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if r.MaxFileBytes > 0 && info.Size() > r.MaxFileBytes {
		return nil, fmt.Errorf("%s is %s, limit is %s", path,
			humanize.Bytes(uint64(info.Size())), humanize.Bytes(uint64(r.MaxFileBytes)))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	text, tree, err := parser.ParseText(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrEmpty)
	}

	doc := FromText(path, text)
	doc.Title = tree.Title
	doc.Sections = tree.Sections()
	if r.DetectLanguage {
		doc.Language = DetectLanguage(text)
	}

	r.log.Info("document loaded",
		"path", path,
		"size", humanize.Bytes(uint64(info.Size())),
		"chars", doc.Chars,
		"words", doc.Words,
		"sections", doc.Sections,
		"language", doc.Language,
	)
	return doc, nil
}

// detectSample bounds how much text is handed to the detector.
const detectSample = 4000

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

func languageDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(
				lingua.English,
				lingua.French,
				lingua.German,
				lingua.Spanish,
				lingua.Italian,
				lingua.Portuguese,
				lingua.Dutch,
			).
			Build()
	})
	return detector
}

// DetectLanguage returns the lowercase ISO 639-1 code of the text's
// language, or "" when it cannot be determined.
func DetectLanguage(text string) string {
	sample := text
	if utf8.RuneCountInString(sample) > detectSample {
		sample = string([]rune(sample)[:detectSample])
	}
	if strings.TrimSpace(sample) == "" {
		return ""
	}
	lang, ok := languageDetector().DetectLanguageOf(sample)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}
