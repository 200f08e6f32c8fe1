// Package llmtest provides a scriptable llm.Completer for tests.
package llmtest

import (
	"context"
	"strings"
	"sync"

	"github.com/dgallion1/docsum/internal/llm"
)

// HandlerFunc answers one request.
type HandlerFunc func(req llm.Request) (llm.Response, error)

// Stub is a Completer whose answers come from a HandlerFunc. It records
// every request it receives and is safe for concurrent use.
type Stub struct {
	handler HandlerFunc

	mu    sync.Mutex
	calls []llm.Request
}

// New returns a Stub that delegates to h.
func New(h HandlerFunc) *Stub {
	return &Stub{handler: h}
}

// Fixed returns a Stub that always answers with text and usage.
func Fixed(text string, usage llm.Usage) *Stub {
	return New(func(llm.Request) (llm.Response, error) {
		return llm.Response{Text: text, Usage: usage}, nil
	})
}

func (s *Stub) Name() string { return "stub/test" }

func (s *Stub) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return llm.Response{}, err
	}
	return s.handler(req)
}

// Calls returns a copy of the recorded requests.
func (s *Stub) Calls() []llm.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]llm.Request, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallsWithSystem counts requests whose system message contains substr.
func (s *Stub) CallsWithSystem(substr string) int {
	n := 0
	for _, c := range s.Calls() {
		if strings.Contains(c.System, substr) {
			n++
		}
	}
	return n
}
