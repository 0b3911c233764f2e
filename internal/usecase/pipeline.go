package usecase

import (
	"context"
	"log/slog"
	"time"

	"resume-builder/internal/domain"
	"resume-builder/internal/enhance"
	"resume-builder/internal/model"
	"resume-builder/internal/normalize"
	"resume-builder/internal/render"
)

// Exporter turns rendered markup into PDF bytes.
type Exporter interface {
	Export(ctx context.Context, doc *render.Document) ([]byte, error)
}

// Options are the per-request choices of the caller.
type Options struct {
	// Enhance accepts the enhancer's suggestions for summary, project
	// descriptions and experience bullets before rendering.
	Enhance bool
	// JobContext is the optional job description passed to the enhancer.
	JobContext string
}

// Pipeline runs normalize -> (enhance) -> render -> export for one request.
// It holds only read-only collaborators, so one Pipeline serves all requests.
type Pipeline struct {
	renderer *render.Renderer
	exporter Exporter
	enhancer enhance.Enhancer
	logger   *slog.Logger
	metrics  *Metrics
}

func NewPipeline(r *render.Renderer, exp Exporter, enh enhance.Enhancer, logger *slog.Logger, m *Metrics) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{renderer: r, exporter: exp, enhancer: enh, logger: logger, metrics: m}
}

// Enhancer exposes the enhancer for the standalone suggestion endpoints.
func (p *Pipeline) Enhancer() enhance.Enhancer { return p.enhancer }

// ParseForm normalizes a form submission.
func (p *Pipeline) ParseForm(ctx context.Context, f normalize.Form) (rec *model.ResumeRecord, err error) {
	defer p.track(ctx, "normalize", time.Now(), &err)
	return normalize.FromForm(f)
}

// ParseJSON validates a JSON submission against the schema and normalizes it.
func (p *Pipeline) ParseJSON(ctx context.Context, raw []byte) (rec *model.ResumeRecord, err error) {
	defer p.track(ctx, "normalize", time.Now(), &err)
	decoded, err := model.DecodeJSON(raw)
	if err != nil {
		return nil, err
	}
	return normalize.Canonicalize(decoded)
}

// Preview renders the record to HTML without exporting it.
func (p *Pipeline) Preview(ctx context.Context, rec *model.ResumeRecord, opts Options) (*render.Document, error) {
	if opts.Enhance && p.enhancer != nil {
		start := time.Now()
		rec = applyEnhancements(ctx, p.enhancer, rec, opts.JobContext, p.logger)
		p.metrics.observe("enhance", start, nil)
	}

	var err error
	defer p.track(ctx, "render", time.Now(), &err)
	doc, err := p.renderer.Render(rec)
	return doc, err
}

// Generate renders the record and exports it to PDF.
func (p *Pipeline) Generate(ctx context.Context, rec *model.ResumeRecord, opts Options) ([]byte, *render.Document, error) {
	doc, err := p.Preview(ctx, rec, opts)
	if err != nil {
		return nil, nil, err
	}
	pdf, err := p.export(ctx, doc)
	if err != nil {
		return nil, nil, err
	}
	return pdf, doc, nil
}

func (p *Pipeline) export(ctx context.Context, doc *render.Document) (pdf []byte, err error) {
	defer p.track(ctx, "export", time.Now(), &err)
	return p.exporter.Export(ctx, doc)
}

func (p *Pipeline) track(ctx context.Context, stage string, start time.Time, errp *error) {
	err := *errp
	p.metrics.observe(stage, start, err)
	switch {
	case err == nil:
		p.logger.DebugContext(ctx, "pipeline stage done", "stage", stage, "elapsed", time.Since(start))
	case stage == "normalize":
		p.logger.WarnContext(ctx, "pipeline stage failed", "stage", stage, "error", err)
	default:
		p.logger.ErrorContext(ctx, "pipeline stage failed", "stage", stage, "error", err)
	}
}

// errorOutcome labels an error for metrics.
func errorOutcome(err error) string {
	if ve, ok := domain.AsValidation(err); ok {
		return string(ve.Kind)
	}
	if ee, ok := domain.AsExport(err); ok {
		return string(ee.Kind)
	}
	return "error"
}
