package jobs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/docsum/internal/parser"
	"github.com/dgallion1/docsum/internal/summarize"
)

// Worker processes a single summarization job.
type Worker struct {
	pipeline *summarize.Pipeline
	log      *slog.Logger
}

func NewWorker(p *summarize.Pipeline, log *slog.Logger) *Worker {
	return &Worker{pipeline: p, log: log}
}

// Process parses the upload, runs the pipeline and records the outcome.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	text, tree, err := parser.ParseText(bytes.NewReader(job.FileData()), job.Filename)
	job.releaseFileData()
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if job.Snapshot().Title == "" {
		job.SetTitle(tree.Title)
	}
	if strings.TrimSpace(text) == "" {
		log.Warn("no text extracted")
		job.AddError("no extractable content")
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	job.SetContentHash(ContentHashHex([]byte(text)))
	log.Info("parsed document", "sections", tree.Sections(), "chars", len([]rune(text)))

	// Phase 2: Summarize. Status and chunk progress follow pipeline events.
	res, err := w.pipeline.WithObserver(job.Observe).Run(ctx, text)
	if err != nil {
		var runErr *summarize.RunError
		if errors.As(err, &runErr) {
			job.SetCost(runErr.Cost)
		}
		log.Error("summarization failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "summarizing")
		return
	}
	job.SetResult(res)

	if res.Degraded() || len(res.Failures) > 0 {
		log.Warn("summarization partially succeeded",
			"mode", res.Mode,
			"failed_chunks", len(res.Failures),
		)
		job.SetStatus(StatusPartial, "done")
		return
	}
	log.Info("job complete", "mode", res.Mode, "cost", res.TotalCost)
	job.SetStatus(StatusCompleted, "done")
}
