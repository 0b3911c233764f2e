// Package app builds the pipeline and its collaborators from configuration.
// Everything it returns is created once and shared read-only by all
// requests.
package app

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"resume-builder/internal/config"
	"resume-builder/internal/enhance"
	"resume-builder/internal/render"
	"resume-builder/internal/usecase"
	"resume-builder/pkg/ai"
	"resume-builder/pkg/infrastructure"
)

type Components struct {
	Pipeline  *usecase.Pipeline
	Heuristic *enhance.Heuristic
	// Enhancer is the heuristic, or the remote fallback chain when enabled.
	Enhancer enhance.Enhancer
	Fallback *enhance.Fallback
	Exporter *infrastructure.ChromedpExporter
}

// Build wires the pipeline. reg may be nil when metrics are not exported.
func Build(cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*Components, error) {
	vocab, err := enhance.LoadVocabulary(cfg.Enhancer.VocabularyFile)
	if err != nil {
		return nil, err
	}
	heuristic := enhance.NewHeuristic(vocab)

	c := &Components{Heuristic: heuristic, Enhancer: heuristic}
	if r := cfg.Enhancer.Remote; r.Enabled {
		b := r.Breaker
		c.Fallback = enhance.NewFallback(ai.NewClient(r.URL, r.Timeout), heuristic, r.Timeout, enhance.BreakerSettings{
			MaxRequests:      b.MaxRequests,
			Interval:         b.Interval,
			Timeout:          b.Timeout,
			MinRequests:      b.MinRequests,
			FailureThreshold: b.FailureThreshold,
		}, logger)
		c.Enhancer = c.Fallback
	}

	renderer, err := render.New(cfg.Render.StyleFile)
	if err != nil {
		return nil, err
	}

	e := cfg.Export
	layout, err := infrastructure.LayoutFor(e.PageSize, infrastructure.Margins{
		Top:    e.Margins.Top,
		Right:  e.Margins.Right,
		Bottom: e.Margins.Bottom,
		Left:   e.Margins.Left,
	})
	if err != nil {
		return nil, fmt.Errorf("export layout: %w", err)
	}
	c.Exporter = infrastructure.NewChromedpExporter(infrastructure.ExportOptions{
		Layout:        layout,
		MaxFieldRunes: e.MaxFieldRunes,
		MaxPages:      e.MaxPages,
		ChromePath:    e.ChromePath,
		Timeout:       e.Timeout,
		Attempts:      e.Attempts,
	}, logger)

	c.Pipeline = usecase.NewPipeline(renderer, c.Exporter, c.Enhancer, logger, usecase.NewMetrics(reg))
	return c, nil
}

// EnhancerState reports which enhancer answers and, for the remote chain,
// the breaker state.
func (c *Components) EnhancerState() map[string]any {
	if c.Fallback == nil {
		return map[string]any{"enhancer": "heuristic"}
	}
	return map[string]any{"enhancer": "remote", "breaker": c.Fallback.State()}
}
