package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/dgallion1/doccheck/internal/doctree"
	"github.com/dgallion1/doccheck/internal/fetch"
	"github.com/dgallion1/doccheck/internal/parser"
	"github.com/dgallion1/doccheck/internal/structure"
	"golang.org/x/sync/errgroup"
)

// Fetcher downloads a document by URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL, pageID string) (*fetch.Page, error)
}

// StructureChecker compares two chapter lists.
type StructureChecker interface {
	Check(ctx context.Context, templateChapters, targetChapters []doctree.ChapterInfo, required []string) (*structure.Result, error)
}

// WorkerOptions hold the settings shared by every worker.
type WorkerOptions struct {
	CheckEnabled     bool
	CriticalChapters []string
	Parser           parser.Options
}

// Worker processes a single check job.
type Worker struct {
	fetcher Fetcher
	checker StructureChecker
	opts    WorkerOptions
	log     *slog.Logger
}

func NewWorker(fetcher Fetcher, checker StructureChecker, opts WorkerOptions, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{fetcher: fetcher, checker: checker, opts: opts, log: log}
}

// loaded is one side of a job after fetching and parsing.
type loaded struct {
	doc  *doctree.Document
	hash string
}

// Process runs fetch, parse and check for a job. The job always ends in a
// terminal status.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "template", job.Template.Name(), "target", job.Target.Name())
	start := time.Now()
	outcome := w.process(ctx, job, log)
	ChecksTotal.WithLabelValues(outcome).Inc()
	CheckDuration.Observe(time.Since(start).Seconds())
	log.Info("job finished", "outcome", outcome, "duration_ms", time.Since(start).Milliseconds())
}

func (w *Worker) process(ctx context.Context, job *Job, log *slog.Logger) string {
	fail := func(phase string, err error) string {
		log.Error("job failed", "phase", phase, "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, phase)
		return OutcomeError
	}

	// Phase 1: load both documents concurrently.
	job.SetStatus(StatusFetching, "fetching")
	var template, target loaded
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		template, err = w.load(gctx, job, job.Template, "template")
		return err
	})
	g.Go(func() error {
		var err error
		target, err = w.load(gctx, job, job.Target, "target")
		return err
	})
	err := g.Wait()
	job.ReleaseSources()
	if err != nil {
		return fail(job.Snapshot().Phase, err)
	}
	job.SetHashes(template.hash, target.hash)

	// Phase 2: build trees for the summaries.
	templateTree, err := doctree.Build(template.doc.Chapters)
	if err != nil {
		return fail("parsing", fmt.Errorf("template: %w", err))
	}
	targetTree, err := doctree.Build(target.doc.Chapters)
	if err != nil {
		return fail("parsing", fmt.Errorf("target: %w", err))
	}
	job.SetSummaries(doctree.Summarize(templateTree), doctree.Summarize(targetTree))

	if !w.opts.CheckEnabled {
		log.Info("structure check disabled")
		job.Complete(nil)
		return OutcomeDisabled
	}

	// Phase 3: compare.
	job.SetStatus(StatusChecking, "checking")
	required := job.CriticalChapters
	if len(required) == 0 {
		required = w.opts.CriticalChapters
	}
	res, err := w.checker.Check(ctx, template.doc.Chapters, target.doc.Chapters, required)
	if err != nil {
		return fail("checking", err)
	}
	job.AddWarnings(res.Warnings...)
	job.Complete(res)
	if res.Passed {
		return OutcomePassed
	}
	return OutcomeFailed
}

// load fetches (when src is a URL) and parses one side of a job.
func (w *Worker) load(ctx context.Context, job *Job, src Source, side string) (loaded, error) {
	data := src.Data
	name := src.Filename
	contentType := ""
	if src.URL != "" {
		page, err := w.fetcher.Fetch(ctx, src.URL, src.PageID)
		if err != nil {
			return loaded{}, fmt.Errorf("%s: %w", side, err)
		}
		data, name, contentType = page.Body, urlPath(page.URL), page.ContentType
	}

	job.SetStatus(StatusParsing, "parsing")
	var (
		p   parser.Parser
		err error
	)
	if src.URL != "" {
		p, err = parser.ForContentType(contentType, name, w.opts.Parser)
	} else {
		p, err = parser.ForFile(name, w.opts.Parser)
	}
	if err != nil {
		return loaded{}, fmt.Errorf("%s: %w", side, err)
	}

	doc, err := p.Parse(bytes.NewReader(data), name)
	if err != nil {
		return loaded{}, fmt.Errorf("%s: parse: %w", side, err)
	}
	warnings, err := parser.Validate(doc)
	if err != nil {
		return loaded{}, fmt.Errorf("%s: %w", side, err)
	}
	for _, msg := range warnings {
		job.AddWarnings(side + ": " + msg)
	}

	w.log.Debug("document parsed", "job_id", job.ID, "side", side, "chapters", len(doc.Chapters))
	return loaded{doc: doc, hash: ContentHashHex(data)}, nil
}

// urlPath strips the query so the extension of a fetched URL can be read.
func urlPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return raw
	}
	return u.Path
}
