package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dgallion1/docsum/internal/api"
	"github.com/dgallion1/docsum/internal/jobs"
	"github.com/dgallion1/docsum/internal/report"
	"github.com/dgallion1/docsum/internal/summarize"
)

func summarizeAction(c *cli.Context) error {
	path, err := fileArg(c)
	if err != nil {
		return err
	}
	rt, err := setup(c, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	doc, err := rt.reader.Read(c.Context, path)
	if err != nil {
		return err
	}

	res, err := rt.pipeline.WithObserver(progressLogger(rt.log)).Run(c.Context, doc.Text)
	if err != nil {
		var runErr *summarize.RunError
		if errors.As(err, &runErr) {
			rt.log.Error("no summary produced",
				"stage", runErr.Stage,
				"attempted", runErr.Attempted,
				"cost", runErr.Cost,
			)
		}
		return err
	}

	if err := rt.render(summaryView{Document: doc, Result: res}); err != nil {
		return err
	}

	if !c.Bool("save") {
		return nil
	}
	dir := c.String("out-dir")
	if dir == "" {
		dir = rt.cfg.OutputDir
	}
	saved, err := report.Save(dir, report.FromResult(doc.Path, res, time.Now()))
	if err != nil {
		return err
	}
	rt.log.Info("report saved", "path", saved)
	if rt.format == formatText {
		fmt.Fprintf(rt.out, "\nSaved to %s\n", saved)
	}
	return nil
}

func extractAction(c *cli.Context) error {
	path, err := fileArg(c)
	if err != nil {
		return err
	}
	rt, err := setup(c, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	doc, err := rt.reader.Read(c.Context, path)
	if err != nil {
		return err
	}
	ext, err := rt.pipeline.ExtractKeyInfo(c.Context, doc.Text)
	if err != nil {
		return err
	}
	return rt.render(extractView{Document: doc, Extraction: ext})
}

func briefAction(c *cli.Context) error {
	path, err := fileArg(c)
	if err != nil {
		return err
	}
	style, err := summarize.ParseStyle(c.String("style"))
	if err != nil {
		return err
	}
	rt, err := setup(c, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	doc, err := rt.reader.Read(c.Context, path)
	if err != nil {
		return err
	}
	brief, err := rt.pipeline.Brief(c.Context, doc.Text, style)
	if err != nil {
		return err
	}
	return rt.render(briefView{Document: doc, Brief: brief})
}

func askAction(c *cli.Context) error {
	path, err := fileArg(c)
	if err != nil {
		return err
	}
	rt, err := setup(c, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	doc, err := rt.reader.Read(c.Context, path)
	if err != nil {
		return err
	}
	session, err := summarize.NewSession(rt.pipeline, doc.Path, doc.Text)
	if err != nil {
		return err
	}

	questions := c.StringSlice("question")
	if len(questions) == 0 {
		return rt.askLoop(c.Context, session, os.Stdin)
	}
	for _, q := range questions {
		ans, err := session.Ask(c.Context, q)
		if err != nil {
			return err
		}
		if err := rt.render(ans); err != nil {
			return err
		}
	}
	return rt.render(session.Stats())
}

// askLoop reads one question per line until EOF or a quit word. "stats"
// prints the session counters. A failed question is reported and the loop
// continues.
func (rt *runtime) askLoop(ctx context.Context, session *summarize.Session, in io.Reader) error {
	interactive := rt.format == formatText
	if interactive {
		fmt.Fprintf(rt.out, "Loaded %s (%d characters). Ask questions, \"stats\" for usage, \"quit\" to exit.\n",
			session.Stats().Document, session.Chars())
	}

	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Fprint(rt.out, "\n> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit", "q":
			return rt.render(session.Stats())
		case "stats":
			if err := rt.render(session.Stats()); err != nil {
				return err
			}
			continue
		}

		ans, err := session.Ask(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			rt.log.Error("question failed", "error", err)
			fmt.Fprintf(rt.out, "Error: %s\n", err)
			continue
		}
		if err := rt.render(ans); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read questions: %w", err)
	}
	return rt.render(session.Stats())
}

func serveAction(c *cli.Context) error {
	rt, err := setup(c, true)
	if err != nil {
		return err
	}
	defer rt.Close()
	log := rt.log

	orch := jobs.NewOrchestrator(rt.cfg, rt.pipeline, log)
	orch.Start(c.Context)

	srv := api.NewServer(orch, rt.pipeline, rt.client, log, rt.cfg)

	httpServer := &http.Server{
		Addr:         ":" + rt.cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown. Workers stop only after in-flight handlers drain.
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-c.Context.Done()
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", "error", err)
		}
	}()

	log.Info("starting docsum", "port", rt.cfg.Port, "model", rt.client.Name(), "workers", rt.cfg.WorkerCount)
	err = httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		<-drained
		err = nil
	}
	orch.Stop()
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
