package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "docsum",
		Usage: "summarize documents with a language model",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file",
				EnvVars: []string{"DOCSUM_CONFIG"},
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "only log errors",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log debug output",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   formatText,
				Usage:   "output format: text, json or yaml",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "summarize",
				Usage:     "summarize a document and extract its key information",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "save",
						Usage: "write a report file",
					},
					&cli.StringFlag{
						Name:  "out-dir",
						Usage: "directory for saved reports (default: output_dir from config)",
					},
				},
				Action: summarizeAction,
			},
			{
				Name:      "extract",
				Usage:     "extract dates, numbers, action items and entities",
				ArgsUsage: "<file>",
				Action:    extractAction,
			},
			{
				Name:      "brief",
				Usage:     "quick single-call summary",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "style",
						Value: "executive",
						Usage: "executive, bullet or detailed",
					},
				},
				Action: briefAction,
			},
			{
				Name:      "ask",
				Usage:     "answer questions about a document",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "question",
						Usage: "question to ask; repeatable. Without it, questions are read from stdin",
					},
				},
				Action: askAction,
			},
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serveAction,
			},
		},
	}
}
