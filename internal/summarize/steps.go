package summarize

import (
	"context"
	"strings"

	"github.com/dgallion1/docsum/internal/chunker"
	"github.com/dgallion1/docsum/internal/llm"
)

// Sampling settings per call type.
const (
	chunkTemperature   = 0.4
	chunkMaxTokens     = 200
	combineTemperature = 0.5
	combineMaxTokens   = 500
	extractTemperature = 0.3
	extractMaxTokens   = 400
	directTemperature  = 0.5
	directMaxTokens    = 600
	answerTemperature  = 0.3
	answerMaxTokens    = 400
	briefTemperature   = 0.5
	briefMaxTokens     = 800
)

// StepResult is the outcome of one completion call. A failed call carries
// Err and zero usage.
type StepResult struct {
	OK    bool
	Text  string
	Err   error
	Usage llm.Usage
	Cost  float64
}

// ChunkResult is the outcome of summarizing one chunk.
type ChunkResult struct {
	Index int
	StepResult
}

func (p *Pipeline) call(ctx context.Context, req llm.Request) StepResult {
	resp, err := p.llm.Complete(ctx, req)
	if err != nil {
		return StepResult{Err: err}
	}
	return StepResult{
		OK:    true,
		Text:  strings.TrimSpace(resp.Text),
		Usage: resp.Usage,
		Cost:  p.opts.Tariff.Cost(resp.Usage),
	}
}

// SummarizeChunk summarizes one chunk, telling the model its position among
// total chunks. It never retries and never returns an error; failures are
// reported in the result.
func (p *Pipeline) SummarizeChunk(ctx context.Context, text string, index, total int) ChunkResult {
	return ChunkResult{
		Index: index,
		StepResult: p.call(ctx, llm.Request{
			System:      chunkSystem,
			Prompt:      chunkPrompt(text, index, total),
			Temperature: chunkTemperature,
			MaxTokens:   chunkMaxTokens,
		}),
	}
}

// Combine merges ordered chunk summaries into one summary.
func (p *Pipeline) Combine(ctx context.Context, summaries []string) StepResult {
	return p.call(ctx, llm.Request{
		System:      combineSystem,
		Prompt:      combinePrompt(summaries),
		Temperature: combineTemperature,
		MaxTokens:   combineMaxTokens,
	})
}

// Extract pulls dates, numbers, action items and entities from the head of
// the document.
func (p *Pipeline) Extract(ctx context.Context, text string) StepResult {
	head, _ := chunker.Truncate(text, p.opts.ExtractChars)
	return p.call(ctx, llm.Request{
		System:      extractSystem,
		Prompt:      extractPrompt(head),
		Temperature: extractTemperature,
		MaxTokens:   extractMaxTokens,
	})
}

func (p *Pipeline) summarizeDirect(ctx context.Context, text string) StepResult {
	return p.call(ctx, llm.Request{
		System:      directSystem,
		Prompt:      directPrompt(text),
		Temperature: directTemperature,
		MaxTokens:   directMaxTokens,
	})
}
