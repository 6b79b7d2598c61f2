// Package extraction runs the per-file extraction stage. Every triaged file
// is fetched and handed to the extractor for its kind, optionally enriched
// by model collaborators, filtered to the domain's reason codes, and passed
// through the domain's rule hook. Files are processed concurrently and any
// collaborator failure degrades to a reason code on that file alone.
package extraction

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/SmartChain-HD/AI/internal/catalog"
	"github.com/SmartChain-HD/AI/internal/evidence"
	"github.com/SmartChain-HD/AI/internal/rules"
	"github.com/SmartChain-HD/AI/internal/triage"
)

// Config bounds the extraction stage.
type Config struct {
	FileTimeout time.Duration
	MaxWorkers  int
	Enrich      bool
}

// Job is one triaged file together with the slot it was matched to.
type Job struct {
	Item triage.Item
	Slot string
}

// Coordinator runs extraction for one domain.
type Coordinator struct {
	domain  *catalog.Domain
	hook    rules.Hook
	collab  Collaborators
	cfg     Config
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a coordinator. hook and limiter may be nil; a nil limiter
// leaves model calls unthrottled.
func New(
	domain *catalog.Domain,
	hook rules.Hook,
	collab Collaborators,
	cfg Config,
	limiter *rate.Limiter,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		domain:  domain,
		hook:    hook,
		collab:  collab,
		cfg:     cfg,
		limiter: limiter,
		logger:  logger.With("system", "extraction", "domain", domain.Name),
	}
}

// Run extracts every job and returns one result per job, in job order.
// It never fails: each job resolves to a result, degraded if necessary.
func (c *Coordinator) Run(ctx context.Context, jobs []Job, period evidence.Period) []evidence.ExtractionResult {
	results := make([]evidence.ExtractionResult, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workerCount(len(jobs)))

	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = c.degrade(gctx, c.base(job, period), evidence.ReasonFetchFailed, &CollaboratorError{
					Collaborator: "coordinator", Op: "schedule", Err: err,
				})
				return nil
			}

			fctx := gctx
			if c.cfg.FileTimeout > 0 {
				var cancel context.CancelFunc
				fctx, cancel = context.WithTimeout(gctx, c.cfg.FileTimeout)
				defer cancel()
			}

			results[i] = c.extract(fctx, job, period)
			return nil
		})
	}

	g.Wait()

	c.logger.InfoContext(ctx, "extraction complete", "files", len(jobs))
	return results
}

func (c *Coordinator) workerCount(n int) int {
	limit := c.cfg.MaxWorkers
	if limit <= 0 {
		limit = n
	}
	return max(min(limit, n), 1)
}

func (c *Coordinator) base(job Job, period evidence.Period) evidence.ExtractionResult {
	return evidence.ExtractionResult{
		FileID:   job.Item.File.FileID,
		FileName: job.Item.File.FileName,
		SlotName: job.Slot,
		Kind:     job.Item.Kind,
		Period:   period,
	}
}

func (c *Coordinator) extract(ctx context.Context, job Job, period evidence.Period) evidence.ExtractionResult {
	r := c.base(job, period)

	data := Call(ctx, "fetcher", "fetch", func(ctx context.Context) ([]byte, error) {
		return c.collab.Fetcher.Fetch(ctx, job.Item.File.StorageURI)
	})
	if !data.Ok() {
		return c.degrade(ctx, r, evidence.ReasonFetchFailed, data.Err)
	}

	content := c.content(ctx, job, data.Value, period)
	if !content.Ok() && ctx.Err() != nil {
		return c.degrade(ctx, r, evidence.ReasonFetchFailed, content.Err)
	}
	if !content.Ok() {
		if job.Item.Kind != evidence.KindImage {
			return c.degrade(ctx, r, evidence.ReasonParseFailed, content.Err)
		}
		// A photo without readable text can still be counted and described.
		c.warn(ctx, r, content.Err)
		content.Value = Content{Reasons: []string{evidence.ReasonOCRFailed}}
	}

	r.Text = content.Value.Text
	r.Table = content.Value.Table
	r.Preview = content.Value.Preview
	r.Dates = content.Value.Dates
	r.DateInRange = content.Value.DateInRange
	r.Reasons = evidence.Dedupe(content.Value.Reasons)

	if c.collab.Enricher != nil && c.cfg.Enrich {
		c.enrich(ctx, &r, job, data.Value, content.Value)
	}
	if c.collab.Detector != nil && job.Item.Kind == evidence.KindImage {
		c.detect(ctx, &r, data.Value)
	}

	// The file deadline passing mid-enrichment still counts as a timeout.
	if err := ctx.Err(); err != nil {
		return c.degrade(ctx, r, evidence.ReasonFetchFailed, &CollaboratorError{
			Collaborator: "coordinator", Op: "deadline", Err: err,
		})
	}

	r.Reasons = c.domain.FilterReasons(r.Reasons)

	if c.hook != nil {
		c.applyRules(ctx, &r)
	}

	return r
}

func (c *Coordinator) content(ctx context.Context, job Job, data []byte, period evidence.Period) Outcome[Content] {
	switch job.Item.Kind {
	case evidence.KindDocument:
		return Call(ctx, "document_extractor", "extract", func(ctx context.Context) (Content, error) {
			if c.collab.Documents == nil {
				return Content{}, ErrNoCollaborator
			}
			return c.collab.Documents.ExtractDocument(ctx, data, period)
		})
	case evidence.KindTabular:
		expected := c.domain.ExpectedHeaders(job.Slot)
		return Call(ctx, "tabular_extractor", "extract", func(ctx context.Context) (Content, error) {
			if c.collab.Tables == nil {
				return Content{}, ErrNoCollaborator
			}
			return c.collab.Tables.ExtractTable(ctx, job.Item.Ext, data, expected, period)
		})
	default:
		return Call(ctx, "image_extractor", "extract", func(ctx context.Context) (Content, error) {
			if c.collab.Images == nil {
				return Content{}, ErrNoCollaborator
			}
			return c.collab.Images.ExtractImage(ctx, data, period)
		})
	}
}

func (c *Coordinator) enrich(ctx context.Context, r *evidence.ExtractionResult, job Job, data []byte, content Content) {
	out := Call(ctx, "enricher", string(job.Item.Kind), func(ctx context.Context) (Enrichment, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return Enrichment{}, err
			}
		}
		return c.collab.Enricher.Enrich(ctx, EnrichRequest{
			Slot:    job.Slot,
			Kind:    job.Item.Kind,
			Name:    job.Item.File.FileName,
			Data:    data,
			Content: content,
		})
	})
	if !out.Ok() {
		c.warn(ctx, *r, out.Err)
		return
	}

	ApplyEnrichment(r, out.Value)
}

// ApplyEnrichment folds a model's findings into a result.
func ApplyEnrichment(r *evidence.ExtractionResult, e Enrichment) {
	if len(r.Dates) == 0 && len(e.Dates) > 0 {
		r.Dates = slices.Clone(e.Dates)
		r.Reasons = evidence.Without(r.Reasons, evidence.ReasonNoDateFound, evidence.ReasonDateMismatch)
		inRange, reasons := r.Period.DateFindings(r.Dates)
		r.DateInRange = inRange
		r.Reasons = evidence.AppendUnique(r.Reasons, reasons...)
	}

	if e.HasSignature {
		r.Reasons = evidence.Without(r.Reasons, evidence.ReasonSignatureMissing)
	}
	if len(e.Anomalies) > 0 {
		r.Reasons = evidence.AppendUnique(r.Reasons, evidence.ReasonLLMAnomaly)
		r.Extras.Anomalies = e.Anomalies
	}
	if len(e.MissingFields) > 0 && r.Kind == evidence.KindTabular {
		r.Reasons = evidence.AppendUnique(r.Reasons, evidence.ReasonLLMMissingFields)
		r.Extras.MissingFields = e.MissingFields
	}
	if len(e.Violations) > 0 {
		r.Reasons = evidence.AppendUnique(r.Reasons, evidence.ReasonViolationDetected)
		r.Extras.Violations = e.Violations
	}

	if e.PersonCount != nil {
		n := *e.PersonCount
		if r.Extras.Persons == nil {
			r.Extras.Persons = &evidence.PersonCounts{}
		}
		r.Extras.Persons.Vision = &n
		r.Extras.Persons.Count = &n
	}

	if len(e.DetectedObjects) > 0 {
		r.Extras.DetectedObjects = e.DetectedObjects
	}
	if e.Scene != "" {
		r.Extras.SceneDescription = e.Scene
	}
	if e.Summary != "" {
		r.Extras.Summary = e.Summary
	}
}

func (c *Coordinator) detect(ctx context.Context, r *evidence.ExtractionResult, data []byte) {
	out := Call(ctx, "detector", "count_persons", func(ctx context.Context) (int, error) {
		return c.collab.Detector.CountPersons(ctx, data)
	})
	if !out.Ok() {
		c.warn(ctx, *r, out.Err)
		return
	}

	ApplyDetection(r, out.Value)
}

// ApplyDetection records a detector's person count. The detector count
// replaces the vision count, and the gap between them is kept.
func ApplyDetection(r *evidence.ExtractionResult, n int) {
	p := r.Extras.Persons
	if p == nil {
		p = &evidence.PersonCounts{}
	}

	p.Detector = &n
	p.Count = &n
	if p.Vision != nil {
		gap := *p.Vision - n
		if gap < 0 {
			gap = -gap
		}
		p.Gap = &gap
	}

	r.Extras.Persons = p
}

func (c *Coordinator) applyRules(ctx context.Context, r *evidence.ExtractionResult) {
	snapshot := *r
	out := Call(ctx, "rules", r.SlotName, func(context.Context) (rules.Findings, error) {
		return c.hook.Check(snapshot.SlotName, snapshot.Kind, snapshot), nil
	})
	if !out.Ok() {
		c.warn(ctx, *r, out.Err)
		return
	}

	f := out.Value
	r.Reasons = f.Apply(r.Reasons)
	r.Extras = r.Extras.Merge(f.Extras)
}

func (c *Coordinator) degrade(ctx context.Context, r evidence.ExtractionResult, reason string, err *CollaboratorError) evidence.ExtractionResult {
	c.warn(ctx, r, err)
	r.Reasons = c.domain.FilterReasons([]string{reason})
	r.Extras.Detail = err.Error()
	return r
}

func (c *Coordinator) warn(ctx context.Context, r evidence.ExtractionResult, err *CollaboratorError) {
	c.logger.WarnContext(
		ctx, "collaborator failed",
		"file_id", r.FileID,
		"slot_name", r.SlotName,
		"collaborator", err.Collaborator,
		"op", err.Op,
		"error", err.Err,
	)
}
