// Package summarize turns document text into summaries, key-information
// extractions and answers by orchestrating completion calls.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/docsum/internal/chunker"
	"github.com/dgallion1/docsum/internal/llm"
)

// KeyInfoFailed replaces the key information when extraction fails.
const KeyInfoFailed = "Extraction failed"

// Path is the route a run took.
type Path string

const (
	PathDirect  Path = "direct"
	PathChunked Path = "chunked"
)

// Mode describes how the final summary was produced.
type Mode string

const (
	ModeDirect   Mode = "direct"   // one call over the whole document
	ModeSingle   Mode = "single"   // one chunk summary used verbatim
	ModeCombined Mode = "combined" // chunk summaries merged by the model
	ModeDegraded Mode = "degraded" // merge failed; chunk summaries concatenated
)

// Options tunes routing, truncation and concurrency. Sizes are in characters.
type Options struct {
	DirectThreshold     int
	ChunkSize           int
	ExtractChars        int
	QAChars             int
	MaxConcurrentChunks int
	Tariff              llm.Tariff
}

func DefaultOptions() Options {
	return Options{
		DirectThreshold:     12000,
		ChunkSize:           10000,
		ExtractChars:        8000,
		QAChars:             30000,
		MaxConcurrentChunks: 4,
		Tariff:              llm.DefaultTariff,
	}
}

// ChunkFailure records a chunk that could not be summarized.
type ChunkFailure struct {
	Index int    `json:"index" yaml:"index"`
	Error string `json:"error" yaml:"error"`
}

// Result is the outcome of one summarization run.
type Result struct {
	RunID            string         `json:"run_id" yaml:"run_id"`
	Summary          string         `json:"summary" yaml:"summary"`
	KeyInfo          string         `json:"key_info" yaml:"key_info"`
	KeyInfoOK        bool           `json:"key_info_ok" yaml:"key_info_ok"`
	TotalCost        float64        `json:"total_cost" yaml:"total_cost"`
	TotalTokens      int            `json:"total_tokens" yaml:"total_tokens"`
	Calls            int            `json:"calls" yaml:"calls"`
	ChunkCount       int            `json:"chunk_count" yaml:"chunk_count"`
	ChunksSummarized int            `json:"chunks_summarized" yaml:"chunks_summarized"`
	WordCount        int            `json:"word_count" yaml:"word_count"`
	CharCount        int            `json:"char_count" yaml:"char_count"`
	Path             Path           `json:"path" yaml:"path"`
	Mode             Mode           `json:"mode" yaml:"mode"`
	Failures         []ChunkFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Degraded reports whether the summary is a fallback concatenation.
func (r *Result) Degraded() bool { return r.Mode == ModeDegraded }

// Pipeline routes a document to direct or chunked summarization and
// accounts for every call it makes. It holds no per-run state and may be
// shared.
type Pipeline struct {
	llm      llm.Completer
	opts     Options
	log      *slog.Logger
	observer Observer
}

func New(c llm.Completer, opts Options, log *slog.Logger) *Pipeline {
	def := DefaultOptions()
	if opts.DirectThreshold <= 0 {
		opts.DirectThreshold = def.DirectThreshold
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = def.ChunkSize
	}
	if opts.ExtractChars <= 0 {
		opts.ExtractChars = def.ExtractChars
	}
	if opts.QAChars <= 0 {
		opts.QAChars = def.QAChars
	}
	if opts.MaxConcurrentChunks <= 0 {
		opts.MaxConcurrentChunks = def.MaxConcurrentChunks
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{llm: c, opts: opts, log: log}
}

// WithObserver returns a copy of p that publishes progress to obs.
func (p *Pipeline) WithObserver(obs Observer) *Pipeline {
	cp := *p
	cp.observer = obs
	return &cp
}

// Options returns the effective options.
func (p *Pipeline) Options() Options { return p.opts }

func (p *Pipeline) emit(ev Event) {
	if p.observer != nil {
		p.observer(ev)
	}
}

// Run summarizes text. Key information is extracted first and its failure
// is not fatal. Documents shorter than DirectThreshold characters are
// summarized in one call; longer ones are chunked, summarized per chunk and
// combined. When no summary can be produced the error is a *RunError that
// matches ErrNoViableOutput.
func (p *Pipeline) Run(ctx context.Context, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoInput
	}

	runID := uuid.NewString()
	log := p.log.With("run_id", runID)
	meter := &UsageMeter{}

	res := &Result{
		RunID:     runID,
		WordCount: len(strings.Fields(text)),
		CharCount: utf8.RuneCountInString(text),
	}
	log.Info("summarization started", "chars", res.CharCount, "words", res.WordCount)

	p.emit(Event{Stage: StageExtracting})
	ext := p.Extract(ctx, text)
	meter.Record(ext)
	p.emit(Event{Stage: StageExtracting, OK: ext.OK, Err: ext.Err})
	if ext.OK {
		res.KeyInfo = ext.Text
		res.KeyInfoOK = true
		log.Info("key info extracted", "tokens", ext.Usage.Total(), "cost", ext.Cost)
	} else {
		res.KeyInfo = KeyInfoFailed
		log.Warn("key info extraction failed", "error", ext.Err)
	}

	var err error
	if res.CharCount < p.opts.DirectThreshold {
		err = p.runDirect(ctx, text, res, meter, log)
	} else {
		err = p.runChunked(ctx, text, res, meter, log)
	}
	if err != nil {
		var runErr *RunError
		if errors.As(err, &runErr) {
			runErr.Cost = meter.Totals().Cost
		}
		p.emit(Event{Stage: StageFailed, Err: err})
		log.Error("summarization failed", "error", err)
		return nil, err
	}

	totals := meter.Totals()
	res.TotalCost = totals.Cost
	res.TotalTokens = totals.Usage.Total()
	res.Calls = totals.Calls

	p.emit(Event{Stage: StageDone, OK: true})
	log.Info("summarization complete",
		"path", res.Path,
		"mode", res.Mode,
		"chunks", res.ChunkCount,
		"summarized", res.ChunksSummarized,
		"tokens", res.TotalTokens,
		"cost", res.TotalCost,
	)
	return res, nil
}

func (p *Pipeline) runDirect(ctx context.Context, text string, res *Result, meter *UsageMeter, log *slog.Logger) error {
	res.Path = PathDirect
	res.ChunkCount = 1

	p.emit(Event{Stage: StageDirect})
	step := p.summarizeDirect(ctx, text)
	meter.Record(step)
	if !step.OK {
		return &RunError{Stage: StageDirect, Attempted: 1, Succeeded: 0, Cause: step.Err}
	}
	log.Debug("direct summary generated", "tokens", step.Usage.Total(), "cost", step.Cost)

	res.Summary = step.Text
	res.ChunksSummarized = 1
	res.Mode = ModeDirect
	return nil
}

func (p *Pipeline) runChunked(ctx context.Context, text string, res *Result, meter *UsageMeter, log *slog.Logger) error {
	res.Path = PathChunked

	p.emit(Event{Stage: StageChunking})
	chunks := chunker.Split(text, p.opts.ChunkSize)
	res.ChunkCount = len(chunks)
	log.Info("document chunked", "chunks", len(chunks), "chunk_size", p.opts.ChunkSize)

	results := p.summarizeChunks(ctx, chunks, meter, log)

	var (
		summaries []string
		firstErr  error
	)
	for _, r := range results {
		if r.OK {
			summaries = append(summaries, r.Text)
			continue
		}
		res.Failures = append(res.Failures, ChunkFailure{Index: r.Index, Error: r.Err.Error()})
		if firstErr == nil {
			firstErr = r.Err
		}
	}
	res.ChunksSummarized = len(summaries)

	switch len(summaries) {
	case 0:
		return &RunError{Stage: StageSummarizing, Attempted: len(chunks), Succeeded: 0, Cause: firstErr}
	case 1:
		res.Summary = summaries[0]
		res.Mode = ModeSingle
		return nil
	}

	p.emit(Event{Stage: StageCombining, Total: len(summaries)})
	combined := p.Combine(ctx, summaries)
	meter.Record(combined)
	p.emit(Event{Stage: StageCombining, Total: len(summaries), OK: combined.OK, Err: combined.Err})
	if !combined.OK {
		log.Warn("combining failed, concatenating chunk summaries", "error", combined.Err)
		res.Summary = strings.Join(summaries, "\n\n")
		res.Mode = ModeDegraded
		return nil
	}
	res.Summary = combined.Text
	res.Mode = ModeCombined
	return nil
}

// summarizeChunks fans out one call per chunk with bounded concurrency.
// The returned slice is in chunk order regardless of completion order.
func (p *Pipeline) summarizeChunks(ctx context.Context, chunks []chunker.Chunk, meter *UsageMeter, log *slog.Logger) []ChunkResult {
	results := make([]ChunkResult, len(chunks))
	total := len(chunks)

	var g errgroup.Group
	g.SetLimit(p.opts.MaxConcurrentChunks)

	for i, c := range chunks {
		g.Go(func() error {
			p.emit(Event{Stage: StageSummarizing, Chunk: c.Index, Total: total})
			r := p.SummarizeChunk(ctx, c.Text, c.Index, total)
			results[i] = r
			meter.Record(r.StepResult)

			if r.OK {
				log.Info("chunk summarized", "chunk", c.Index, "total", total, "tokens", r.Usage.Total(), "cost", r.Cost)
			} else {
				log.Warn("chunk failed", "chunk", c.Index, "total", total, "error", r.Err)
			}
			p.emit(Event{Stage: StageSummarizing, Chunk: c.Index, Total: total, OK: r.OK, Err: r.Err})
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Extraction is the result of a standalone key-information pass.
type Extraction struct {
	Text      string    `json:"text" yaml:"text"`
	Usage     llm.Usage `json:"usage" yaml:"usage"`
	Cost      float64   `json:"cost" yaml:"cost"`
	Truncated bool      `json:"truncated" yaml:"truncated"`
}

// ExtractKeyInfo runs only the key-information extraction.
func (p *Pipeline) ExtractKeyInfo(ctx context.Context, text string) (*Extraction, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoInput
	}
	step := p.Extract(ctx, text)
	if !step.OK {
		return nil, fmt.Errorf("extract key info: %w", step.Err)
	}
	return &Extraction{
		Text:      step.Text,
		Usage:     step.Usage,
		Cost:      step.Cost,
		Truncated: utf8.RuneCountInString(text) > p.opts.ExtractChars,
	}, nil
}
