// Package report writes summaries to plain-text files and reads them back.
package report

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dgallion1/docsum/internal/summarize"
)

const (
	timeLayout     = "2006-01-02 15:04:05"
	filenameLayout = "20060102_150405"
	title          = "DOCUMENT SUMMARY"
	summaryHeader  = "SUMMARY:"
	keyInfoHeader  = "KEY INFORMATION EXTRACTED:"

	prefixGenerated = "Generated: "
	prefixSource    = "Original Document: "
	prefixLength    = "Original Length: "
	prefixChunks    = "Chunks Processed: "
	prefixCost      = "Total Cost: $"
	prefixMode      = "Mode: "
)

var (
	banner = strings.Repeat("=", 70)
	rule   = strings.Repeat("-", 70)
)

// Report is the persisted form of a summarization run.
type Report struct {
	Generated time.Time
	Source    string
	Words     int
	Chunks    int
	Cost      float64
	Mode      summarize.Mode
	Summary   string
	KeyInfo   string
}

// FromResult builds a Report for a run over source.
func FromResult(source string, res *summarize.Result, generated time.Time) *Report {
	return &Report{
		Generated: generated,
		Source:    source,
		Words:     res.WordCount,
		Chunks:    res.ChunkCount,
		Cost:      res.TotalCost,
		Mode:      res.Mode,
		Summary:   res.Summary,
		KeyInfo:   res.KeyInfo,
	}
}

// Write renders r in the report text format.
func Write(w io.Writer, r *Report) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, banner)
	fmt.Fprintln(bw, title)
	fmt.Fprintln(bw, prefixGenerated+r.Generated.Format(timeLayout))
	fmt.Fprintln(bw, banner)
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, prefixSource+r.Source)
	fmt.Fprintln(bw, prefixLength+humanize.Comma(int64(r.Words))+" words")
	fmt.Fprintln(bw, prefixChunks+strconv.Itoa(r.Chunks))
	fmt.Fprintf(bw, "%s%.6f\n", prefixCost, r.Cost)
	fmt.Fprintln(bw, prefixMode+string(r.Mode))
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, rule)
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, summaryHeader)
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, r.Summary)
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, rule)
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, keyInfoHeader)
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, r.KeyInfo)
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, banner)
	return bw.Flush()
}

// Parse reads a report produced by Write. Metadata lines before the
// summary header are matched by prefix. The summary ends at the last rule
// followed by the key-info header, and the key info ends at the last
// banner, so rule or banner lines inside the model output survive.
func Parse(rd io.Reader) (*Report, error) {
	var lines []string
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}

	header, body := lines, []string(nil)
	for i, line := range lines {
		if line == summaryHeader {
			header, body = lines[:i], lines[i+1:]
			break
		}
	}

	r := &Report{}
	sawTitle := false
	for _, line := range header {
		if line == title {
			sawTitle = true
		}
		if err := r.parseMeta(line); err != nil {
			return nil, err
		}
	}
	if !sawTitle {
		return nil, fmt.Errorf("not a summary report")
	}

	if end := lastIndex(body, banner); end >= 0 {
		body = body[:end]
	}
	summary, keyInfo := body, []string(nil)
	for i := len(body) - 1; i >= 0; i-- {
		if body[i] != keyInfoHeader {
			continue
		}
		if j := prevNonBlank(body, i); j >= 0 && body[j] == rule {
			summary, keyInfo = body[:j], body[i+1:]
			break
		}
	}

	r.Summary = strings.Trim(strings.Join(summary, "\n"), "\n")
	r.KeyInfo = strings.Trim(strings.Join(keyInfo, "\n"), "\n")
	return r, nil
}

func lastIndex(lines []string, want string) int {
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i] == want {
			return i
		}
	}
	return -1
}

func prevNonBlank(lines []string, i int) int {
	for j := i - 1; j >= 0; j-- {
		if lines[j] != "" {
			return j
		}
	}
	return -1
}

func (r *Report) parseMeta(line string) error {
	switch {
	case strings.HasPrefix(line, prefixGenerated):
		t, err := time.ParseInLocation(timeLayout, strings.TrimPrefix(line, prefixGenerated), time.Local)
		if err != nil {
			return fmt.Errorf("parse generated time: %w", err)
		}
		r.Generated = t
	case strings.HasPrefix(line, prefixSource):
		r.Source = strings.TrimPrefix(line, prefixSource)
	case strings.HasPrefix(line, prefixLength):
		v := strings.TrimSuffix(strings.TrimPrefix(line, prefixLength), " words")
		n, err := strconv.Atoi(strings.ReplaceAll(v, ",", ""))
		if err != nil {
			return fmt.Errorf("parse word count: %w", err)
		}
		r.Words = n
	case strings.HasPrefix(line, prefixChunks):
		n, err := strconv.Atoi(strings.TrimPrefix(line, prefixChunks))
		if err != nil {
			return fmt.Errorf("parse chunk count: %w", err)
		}
		r.Chunks = n
	case strings.HasPrefix(line, prefixCost):
		f, err := strconv.ParseFloat(strings.TrimPrefix(line, prefixCost), 64)
		if err != nil {
			return fmt.Errorf("parse cost: %w", err)
		}
		r.Cost = f
	case strings.HasPrefix(line, prefixMode):
		r.Mode = summarize.Mode(strings.TrimPrefix(line, prefixMode))
	}
	return nil
}

// Filename returns summary_YYYYMMDD_HHMMSS_<base>.txt for source.
func Filename(source string, t time.Time) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("summary_%s_%s.txt", t.Format(filenameLayout), base)
}

// Save writes r into dir under Filename and returns the path written.
func Save(dir string, r *Report) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, r); err != nil {
		return "", err
	}
	path := filepath.Join(dir, Filename(r.Source, r.Generated))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
