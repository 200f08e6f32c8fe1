package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dgallion1/docsum/internal/config"
	"github.com/dgallion1/docsum/internal/document"
	"github.com/dgallion1/docsum/internal/llm"
	"github.com/dgallion1/docsum/internal/summarize"
)

// runtime holds what every command needs once flags and config are read.
type runtime struct {
	cfg      config.Config
	log      *slog.Logger
	client   *llm.Client
	pipeline *summarize.Pipeline
	reader   *document.Reader
	out      io.Writer
	format   string
}

func newLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	switch {
	case c.Bool("quiet"):
		logLevel = slog.LevelError
	case c.Bool("verbose"):
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// setup loads configuration and builds the provider chain and pipeline.
// server selects the stricter server validation.
func setup(c *cli.Context, server bool) (*runtime, error) {
	format, err := parseFormat(c.String("format"))
	if err != nil {
		return nil, err
	}
	log := newLogger(c)

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if server {
		err = cfg.ValidateServer()
	} else {
		err = cfg.Validate()
	}
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	client, err := llm.NewProvider(c.Context, llm.ProviderConfig{
		Provider:   cfg.Provider,
		Model:      cfg.Model,
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.RequestTimeout,
		MaxRetries: cfg.MaxRetries,
	}, llm.NewStats(time.Hour), log)
	if err != nil {
		return nil, err
	}
	log.Debug("provider ready", "model", client.Name())

	return &runtime{
		cfg:      cfg,
		log:      log,
		client:   client,
		pipeline: summarize.New(client, pipelineOptions(cfg), log),
		reader:   document.NewReader(cfg.MaxFileBytes, cfg.DetectLanguage, log),
		out:      os.Stdout,
		format:   format,
	}, nil
}

func (rt *runtime) Close() {
	if rt.client != nil {
		rt.client.Close()
	}
}

func pipelineOptions(cfg config.Config) summarize.Options {
	return summarize.Options{
		DirectThreshold:     cfg.DirectThreshold,
		ChunkSize:           cfg.ChunkSize,
		ExtractChars:        cfg.ExtractChars,
		QAChars:             cfg.QAChars,
		MaxConcurrentChunks: cfg.MaxConcurrentChunks,
		Tariff: llm.Tariff{
			InputPer1K:  cfg.PriceInputPer1K,
			OutputPer1K: cfg.PriceOutputPer1K,
		},
	}
}

func fileArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("%s: expected exactly one file argument", c.Command.Name)
	}
	return c.Args().First(), nil
}

// progressLogger reports pipeline stages at debug level.
func progressLogger(log *slog.Logger) summarize.Observer {
	return func(ev summarize.Event) {
		switch {
		case ev.Stage == summarize.StageSummarizing && ev.Chunk > 0:
			if ev.OK || ev.Err != nil {
				log.Debug("chunk finished", "chunk", ev.Chunk, "total", ev.Total, "ok", ev.OK)
			}
		case !ev.OK && ev.Err == nil:
			log.Debug("stage started", "stage", ev.Stage)
		}
	}
}
