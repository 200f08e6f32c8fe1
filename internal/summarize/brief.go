package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/dgallion1/docsum/internal/chunker"
	"github.com/dgallion1/docsum/internal/llm"
)

// Style selects the shape of a brief.
type Style string

const (
	StyleExecutive Style = "executive"
	StyleBullet    Style = "bullet"
	StyleDetailed  Style = "detailed"
)

// Brief input limits: above briefTokenLimit estimated tokens the text is cut
// to briefMaxChars characters.
const (
	briefTokenLimit = 12000
	briefMaxChars   = 48000
)

// ParseStyle maps a name to a Style. An empty name is executive.
func ParseStyle(name string) (Style, error) {
	switch s := Style(strings.ToLower(strings.TrimSpace(name))); s {
	case "":
		return StyleExecutive, nil
	case StyleExecutive, StyleBullet, StyleDetailed:
		return s, nil
	default:
		return "", fmt.Errorf("unknown style %q (want executive, bullet or detailed)", name)
	}
}

// BriefResult is a single-shot summary in one style.
type BriefResult struct {
	Style           Style     `json:"style" yaml:"style"`
	Summary         string    `json:"summary" yaml:"summary"`
	EstimatedTokens int       `json:"estimated_tokens" yaml:"estimated_tokens"`
	Truncated       bool      `json:"truncated" yaml:"truncated"`
	Usage           llm.Usage `json:"usage" yaml:"usage"`
	Cost            float64   `json:"cost" yaml:"cost"`
}

// Brief summarizes text in one call without chunking. Long input is
// truncated rather than split.
func (p *Pipeline) Brief(ctx context.Context, text string, style Style) (*BriefResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoInput
	}
	if _, ok := briefInstructions[style]; !ok {
		style = StyleExecutive
	}

	est := chunker.EstimateTokens(text)
	truncated := false
	if est > briefTokenLimit {
		text, truncated = chunker.Truncate(text, briefMaxChars)
		p.log.Info("brief input truncated", "estimated_tokens", est, "max_chars", briefMaxChars)
	}

	step := p.call(ctx, llm.Request{
		System:      briefSystem,
		Prompt:      briefPrompt(style, text),
		Temperature: briefTemperature,
		MaxTokens:   briefMaxTokens,
	})
	if !step.OK {
		return nil, fmt.Errorf("%s brief: %w", style, step.Err)
	}

	return &BriefResult{
		Style:           style,
		Summary:         step.Text,
		EstimatedTokens: est,
		Truncated:       truncated,
		Usage:           step.Usage,
		Cost:            step.Cost,
	}, nil
}
