package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/docsum/internal/llm"
	"github.com/dgallion1/docsum/internal/llm/llmtest"
)

var answerUsage = llm.Usage{PromptTokens: 500, CompletionTokens: 60}

func TestAnswer_TruncatesToQAChars(t *testing.T) {
	stub := llmtest.Fixed("The deadline is May 1.", answerUsage)
	p := New(stub, DefaultOptions(), nil)

	doc := strings.Repeat("a", 30000) + "TAIL"
	a, err := p.Answer(context.Background(), doc, "  When is the deadline?  ")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if !a.Truncated {
		t.Error("expected answer over a long document to be marked truncated")
	}
	if a.Question != "When is the deadline?" {
		t.Errorf("expected trimmed question, got %q", a.Question)
	}

	req := stub.Calls()[0]
	if strings.Contains(req.Prompt, "TAIL") {
		t.Error("expected text beyond 30000 characters to be dropped")
	}
	if !strings.Contains(req.Prompt, NotInDocument) {
		t.Error("expected the not-in-document instruction in the prompt")
	}
	if req.System != answerSystem || req.Temperature != 0.3 || req.MaxTokens != 400 {
		t.Errorf("unexpected request settings %+v", req)
	}
}

func TestAnswer_InputErrors(t *testing.T) {
	p := New(llmtest.Fixed("x", answerUsage), DefaultOptions(), nil)
	if _, err := p.Answer(context.Background(), "", "q?"); !errors.Is(err, ErrNoInput) {
		t.Errorf("expected ErrNoInput, got %v", err)
	}
	if _, err := p.Answer(context.Background(), "doc", "   "); !errors.Is(err, ErrNoQuestion) {
		t.Errorf("expected ErrNoQuestion, got %v", err)
	}
}

func TestSession_AccumulatesStats(t *testing.T) {
	calls := 0
	stub := llmtest.New(func(req llm.Request) (llm.Response, error) {
		calls++
		if calls == 2 {
			return llm.Response{}, errUpstream
		}
		return llm.Response{Text: "answer", Usage: answerUsage}, nil
	})
	p := New(stub, DefaultOptions(), nil)

	s, err := NewSession(p, "report.pdf", "one two three")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	for _, q := range []string{"first?", "second?", "third?"} {
		_, _ = s.Ask(context.Background(), q)
	}

	st := s.Stats()
	if st.Questions != 2 {
		t.Errorf("expected 2 answered questions, got %d", st.Questions)
	}
	if st.TotalTokens != 2*answerUsage.Total() {
		t.Errorf("expected %d tokens, got %d", 2*answerUsage.Total(), st.TotalTokens)
	}
	cost := DefaultOptions().Tariff.Cost(answerUsage)
	if !approxEqual(st.TotalCost, 2*cost) || !approxEqual(st.AvgCostPerQ, cost) {
		t.Errorf("unexpected cost totals %+v", st)
	}
	if st.Document != "report.pdf" || st.Words != 3 {
		t.Errorf("unexpected document info %+v", st)
	}
}

func TestNewSession_RequiresText(t *testing.T) {
	if _, err := NewSession(New(llmtest.Fixed("x", answerUsage), DefaultOptions(), nil), "empty", "\n"); !errors.Is(err, ErrNoInput) {
		t.Fatalf("expected ErrNoInput, got %v", err)
	}
}

func TestBrief_Styles(t *testing.T) {
	for _, style := range []Style{StyleExecutive, StyleBullet, StyleDetailed} {
		t.Run(string(style), func(t *testing.T) {
			stub := llmtest.Fixed("brief", answerUsage)
			p := New(stub, DefaultOptions(), nil)
			b, err := p.Brief(context.Background(), "a small document", style)
			if err != nil {
				t.Fatalf("Brief: %v", err)
			}
			if b.Style != style || b.Truncated {
				t.Errorf("unexpected brief %+v", b)
			}
			req := stub.Calls()[0]
			if !strings.HasPrefix(req.Prompt, briefInstructions[style]) {
				t.Errorf("expected %s instructions, got %q", style, req.Prompt)
			}
			if req.Temperature != 0.5 || req.MaxTokens != 800 {
				t.Errorf("unexpected settings %+v", req)
			}
		})
	}
}

func TestBrief_TruncatesLongInput(t *testing.T) {
	stub := llmtest.Fixed("brief", answerUsage)
	p := New(stub, DefaultOptions(), nil)

	doc := strings.Repeat("b", 48000) + strings.Repeat("Z", 2000)
	b, err := p.Brief(context.Background(), doc, StyleBullet)
	if err != nil {
		t.Fatalf("Brief: %v", err)
	}
	if !b.Truncated || b.EstimatedTokens != 12500 {
		t.Errorf("unexpected brief %+v", b)
	}
	if strings.Contains(stub.Calls()[0].Prompt, "ZZ") {
		t.Error("expected text past 48000 characters to be dropped")
	}
}

func TestBrief_NoTruncationAtLimit(t *testing.T) {
	stub := llmtest.Fixed("brief", answerUsage)
	p := New(stub, DefaultOptions(), nil)
	b, err := p.Brief(context.Background(), strings.Repeat("d", 48000), StyleExecutive)
	if err != nil {
		t.Fatalf("Brief: %v", err)
	}
	if b.Truncated {
		t.Error("expected 12000 estimated tokens to stay under the limit")
	}
}

func TestParseStyle(t *testing.T) {
	tests := []struct {
		in      string
		want    Style
		wantErr bool
	}{
		{"", StyleExecutive, false},
		{"Bullet", StyleBullet, false},
		{" detailed ", StyleDetailed, false},
		{"haiku", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStyle(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseStyle(%q) = %q, %v", tt.in, got, err)
		}
	}
}
