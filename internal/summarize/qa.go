package summarize

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dgallion1/docsum/internal/chunker"
	"github.com/dgallion1/docsum/internal/llm"
)

// Answer is a single-shot answer over the head of a document.
type Answer struct {
	Question  string    `json:"question" yaml:"question"`
	Text      string    `json:"answer" yaml:"answer"`
	Usage     llm.Usage `json:"usage" yaml:"usage"`
	Cost      float64   `json:"cost" yaml:"cost"`
	Truncated bool      `json:"truncated" yaml:"truncated"`
}

// Answer asks one question about text. Only the first QAChars characters
// are sent; Truncated reports whether the rest was dropped.
func (p *Pipeline) Answer(ctx context.Context, text, question string) (*Answer, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoInput
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrNoQuestion
	}

	head, truncated := chunker.Truncate(text, p.opts.QAChars)
	step := p.call(ctx, llm.Request{
		System:      answerSystem,
		Prompt:      answerPrompt(head, question),
		Temperature: answerTemperature,
		MaxTokens:   answerMaxTokens,
	})
	if !step.OK {
		return nil, fmt.Errorf("answer question: %w", step.Err)
	}
	p.log.Debug("question answered", "tokens", step.Usage.Total(), "cost", step.Cost)

	return &Answer{
		Question:  question,
		Text:      step.Text,
		Usage:     step.Usage,
		Cost:      step.Cost,
		Truncated: truncated,
	}, nil
}

// SessionStats summarizes the questions asked in a Session.
type SessionStats struct {
	Document    string  `json:"document" yaml:"document"`
	Words       int     `json:"words" yaml:"words"`
	Questions   int     `json:"questions" yaml:"questions"`
	TotalTokens int     `json:"total_tokens" yaml:"total_tokens"`
	TotalCost   float64 `json:"total_cost" yaml:"total_cost"`
	AvgCostPerQ float64 `json:"avg_cost_per_question" yaml:"avg_cost_per_question"`
}

// Session binds one document to a Pipeline for repeated questions and keeps
// its own counters. The caller owns its lifetime.
type Session struct {
	p    *Pipeline
	name string
	text string

	mu     sync.Mutex
	asked  int
	tokens int
	cost   float64
}

// NewSession starts a Q&A session over text. name labels the document in
// Stats.
func NewSession(p *Pipeline, name, text string) (*Session, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoInput
	}
	return &Session{p: p, name: name, text: text}, nil
}

// Ask answers question and, on success, adds its usage to the session.
func (s *Session) Ask(ctx context.Context, question string) (*Answer, error) {
	a, err := s.p.Answer(ctx, s.text, question)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.asked++
	s.tokens += a.Usage.Total()
	s.cost += a.Cost
	s.mu.Unlock()

	return a, nil
}

func (s *Session) Stats() SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := SessionStats{
		Document:    s.name,
		Words:       len(strings.Fields(s.text)),
		Questions:   s.asked,
		TotalTokens: s.tokens,
		TotalCost:   s.cost,
	}
	if s.asked > 0 {
		st.AvgCostPerQ = s.cost / float64(s.asked)
	}
	return st
}

// Chars returns the document length in characters.
func (s *Session) Chars() int { return utf8.RuneCountInString(s.text) }
