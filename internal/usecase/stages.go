package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"resume-builder/internal/domain"
	"resume-builder/internal/enhance"
	"resume-builder/internal/model"
)

// stage runs the enhancer over one part of a record and writes the accepted
// suggestions back into it.
type stage struct {
	name string
	run  func(ctx context.Context, enh enhance.Enhancer, rec *model.ResumeRecord, job string) error
}

// enhanceStages run in order. A failing stage is logged and the following
// ones still run; the record keeps the user's text for that part.
var enhanceStages = []stage{
	{name: "summary", run: enhanceSummary},
	{name: "projects", run: enhanceProjects},
	{name: "experience", run: enhanceExperience},
}

func enhanceSummary(ctx context.Context, enh enhance.Enhancer, rec *model.ResumeRecord, job string) error {
	s, err := enh.Enhance(ctx, domain.EnhancementRequest{
		Kind:       domain.KindSummary,
		Text:       rec.Summary,
		JobContext: job,
		Skills:     rec.Skills,
	})
	if err != nil {
		return err
	}
	if !s.Empty() {
		rec.Summary = s.Text
	}
	return nil
}

func enhanceProjects(ctx context.Context, enh enhance.Enhancer, rec *model.ResumeRecord, job string) error {
	for i := range rec.Projects {
		p := &rec.Projects[i]
		if p.Description == "" {
			continue
		}
		s, err := enh.Enhance(ctx, domain.EnhancementRequest{Kind: domain.KindProject, Text: p.Description, JobContext: job})
		if err != nil {
			return fmt.Errorf("project %d: %w", i, err)
		}
		if !s.Empty() {
			p.Description = s.Text
		}
	}
	return nil
}

func enhanceExperience(ctx context.Context, enh enhance.Enhancer, rec *model.ResumeRecord, job string) error {
	for i := range rec.Experience {
		bullets := rec.Experience[i].Bullets
		for j, b := range bullets {
			s, err := enh.Enhance(ctx, domain.EnhancementRequest{Kind: domain.KindExperienceBullet, Text: b, JobContext: job})
			if err != nil {
				return fmt.Errorf("experience %d bullet %d: %w", i, j, err)
			}
			if !s.Empty() {
				bullets[j] = s.Text
			}
		}
	}
	return nil
}

// applyEnhancements returns an enhanced copy of rec; rec itself is untouched.
func applyEnhancements(ctx context.Context, enh enhance.Enhancer, rec *model.ResumeRecord, job string, logger *slog.Logger) *model.ResumeRecord {
	out := cloneRecord(rec)
	for _, st := range enhanceStages {
		if err := st.run(ctx, enh, out, job); err != nil {
			logger.WarnContext(ctx, "enhance stage failed, keeping original text", "stage", st.name, "error", err)
		}
	}
	return out
}

func cloneRecord(rec *model.ResumeRecord) *model.ResumeRecord {
	out := *rec
	out.Contact.Links = slices.Clone(rec.Contact.Links)
	out.Skills = slices.Clone(rec.Skills)
	out.Education = slices.Clone(rec.Education)
	out.Languages = slices.Clone(rec.Languages)
	out.Awards = slices.Clone(rec.Awards)

	out.Projects = slices.Clone(rec.Projects)
	for i := range out.Projects {
		out.Projects[i].Technologies = slices.Clone(out.Projects[i].Technologies)
	}
	out.Experience = slices.Clone(rec.Experience)
	for i := range out.Experience {
		out.Experience[i].Bullets = slices.Clone(out.Experience[i].Bullets)
	}
	return &out
}
