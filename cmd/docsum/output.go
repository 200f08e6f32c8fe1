package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/docsum/internal/document"
	"github.com/dgallion1/docsum/internal/summarize"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	banner = strings.Repeat("=", 70)
	rule   = strings.Repeat("-", 70)
)

func parseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "", formatText:
		return formatText, nil
	case formatJSON, formatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or yaml)", s)
	}
}

// textWriter is implemented by values with a human-readable rendering.
type textWriter interface {
	writeText(w io.Writer)
}

func (rt *runtime) render(v any) error {
	switch rt.format {
	case formatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		_, err = fmt.Fprintln(rt.out, string(data))
		return err
	case formatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		_, err = rt.out.Write(data)
		return err
	}

	switch t := v.(type) {
	case textWriter:
		t.writeText(rt.out)
	case *summarize.Answer:
		writeAnswer(rt.out, t)
	case summarize.SessionStats:
		writeSessionStats(rt.out, t)
	default:
		fmt.Fprintf(rt.out, "%v\n", v)
	}
	return nil
}

func heading(w io.Writer, title string) {
	fmt.Fprintln(w, banner)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, banner)
}

func writeDocumentLine(w io.Writer, d *document.Document) {
	fmt.Fprintf(w, "Document: %s (%s words, %s characters", d.Path,
		humanize.Comma(int64(d.Words)), humanize.Comma(int64(d.Chars)))
	if d.Language != "" {
		fmt.Fprintf(w, ", language %s", d.Language)
	}
	fmt.Fprintln(w, ")")
}

type summaryView struct {
	Document *document.Document `json:"document" yaml:"document"`
	Result   *summarize.Result   `json:"result" yaml:"result"`
}

func (v summaryView) writeText(w io.Writer) {
	r := v.Result
	heading(w, "SUMMARY")
	fmt.Fprintln(w, r.Summary)
	fmt.Fprintln(w)
	heading(w, "KEY INFORMATION")
	fmt.Fprintln(w, r.KeyInfo)
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	writeDocumentLine(w, v.Document)
	fmt.Fprintf(w, "Path: %s  Mode: %s  Chunks: %d (%d summarized)\n", r.Path, r.Mode, r.ChunkCount, r.ChunksSummarized)
	fmt.Fprintf(w, "Calls: %d  Tokens: %s  Cost: $%.6f\n", r.Calls, humanize.Comma(int64(r.TotalTokens)), r.TotalCost)
	if r.Degraded() {
		fmt.Fprintln(w, "Warning: combining failed; the summary is the chunk summaries joined together.")
	}
	for _, f := range r.Failures {
		fmt.Fprintf(w, "Warning: chunk %d failed: %s\n", f.Index, f.Error)
	}
}

type extractView struct {
	Document   *document.Document    `json:"document" yaml:"document"`
	Extraction *summarize.Extraction `json:"extraction" yaml:"extraction"`
}

func (v extractView) writeText(w io.Writer) {
	heading(w, "KEY INFORMATION")
	fmt.Fprintln(w, v.Extraction.Text)
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	writeDocumentLine(w, v.Document)
	if v.Extraction.Truncated {
		fmt.Fprintln(w, "Note: only the beginning of the document was examined.")
	}
	fmt.Fprintf(w, "Tokens: %s  Cost: $%.6f\n", humanize.Comma(int64(v.Extraction.Usage.Total())), v.Extraction.Cost)
}

type briefView struct {
	Document *document.Document     `json:"document" yaml:"document"`
	Brief    *summarize.BriefResult `json:"brief" yaml:"brief"`
}

func (v briefView) writeText(w io.Writer) {
	heading(w, strings.ToUpper(string(v.Brief.Style))+" SUMMARY")
	fmt.Fprintln(w, v.Brief.Summary)
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	writeDocumentLine(w, v.Document)
	if v.Brief.Truncated {
		fmt.Fprintf(w, "Note: document truncated (about %s tokens estimated).\n", humanize.Comma(int64(v.Brief.EstimatedTokens)))
	}
	fmt.Fprintf(w, "Tokens: %s  Cost: $%.6f\n", humanize.Comma(int64(v.Brief.Usage.Total())), v.Brief.Cost)
}

func writeAnswer(w io.Writer, a *summarize.Answer) {
	fmt.Fprintln(w, a.Text)
	suffix := ""
	if a.Truncated {
		suffix = "  (answered from the beginning of the document)"
	}
	fmt.Fprintf(w, "[%s tokens, $%.6f]%s\n", humanize.Comma(int64(a.Usage.Total())), a.Cost, suffix)
}

func writeSessionStats(w io.Writer, s summarize.SessionStats) {
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Document: %s (%s words)\n", s.Document, humanize.Comma(int64(s.Words)))
	fmt.Fprintf(w, "Questions: %d  Tokens: %s  Cost: $%.6f", s.Questions, humanize.Comma(int64(s.TotalTokens)), s.TotalCost)
	if s.Questions > 0 {
		fmt.Fprintf(w, "  Avg per question: $%.6f", s.AvgCostPerQ)
	}
	fmt.Fprintln(w)
}
