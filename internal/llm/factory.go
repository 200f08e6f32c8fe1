package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ProviderConfig selects and configures a provider.
type ProviderConfig struct {
	Provider   string
	Model      string
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// Client is the decorated provider handed to the rest of the program.
type Client struct {
	*Instrumented
	closer func()
}

// Close releases provider resources.
func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

// NewProvider builds the named provider wrapped with retry and latency stats.
func NewProvider(ctx context.Context, cfg ProviderConfig, stats *Stats, log *slog.Logger) (*Client, error) {
	var (
		base   Completer
		closer func()
	)
	switch cfg.Provider {
	case "openai", "":
		p := NewOpenAI(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Timeout)
		base, closer = p, p.Close
	case "anthropic":
		base = NewAnthropic(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Timeout)
	case "gemini":
		p, err := NewGemini(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		base, closer = p, p.Close
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	if stats == nil {
		stats = NewStats(time.Hour)
	}
	return &Client{
		Instrumented: WithStats(WithRetry(base, cfg.MaxRetries, log), stats),
		closer:       closer,
	}, nil
}
