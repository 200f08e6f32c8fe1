package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Gemini calls the Gemini generateContent API.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Name() string { return "gemini/" + g.model }

func (g *Gemini) Complete(ctx context.Context, req Request) (Response, error) {
	model := g.client.GenerativeModel(g.model)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	model.SetTemperature(float32(req.Temperature))
	model.SetMaxOutputTokens(int32(req.MaxTokens))

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return Response{}, classifyGemini(err)
	}

	var sb strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return Response{}, fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}

	var usage Usage
	if resp.UsageMetadata != nil {
		usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return Response{Text: text, Usage: usage}, nil
}

func classifyGemini(err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) && retryableStatus(gErr.Code) {
		return &RetryableError{StatusCode: gErr.Code, Message: gErr.Message}
	}
	switch status.Code(err) {
	case codes.ResourceExhausted:
		return &RetryableError{StatusCode: 429, Message: err.Error()}
	case codes.Unavailable, codes.Internal, codes.DeadlineExceeded:
		return &RetryableError{StatusCode: 503, Message: err.Error()}
	}
	return fmt.Errorf("gemini: %w", err)
}

// Close releases the underlying client.
func (g *Gemini) Close() {
	g.client.Close()
}
