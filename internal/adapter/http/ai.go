package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"resume-builder/internal/domain"
	"resume-builder/internal/enhance"
	"resume-builder/internal/model"
)

// AIHandler serves the suggestion endpoints. Every answer is computed by the
// heuristic enhancer except /ai/enhance/, which goes through the configured
// enhancer (heuristic alone, or remote with heuristic fallback).
type AIHandler struct {
	enhancer  enhance.Enhancer
	heuristic *enhance.Heuristic
}

func NewAIHandler(enh enhance.Enhancer, h *enhance.Heuristic) *AIHandler {
	if enh == nil {
		enh = h
	}
	return &AIHandler{enhancer: enh, heuristic: h}
}

type enhanceRequest struct {
	Kind           string   `json:"kind"`
	Text           string   `json:"text"`
	JobDescription string   `json:"job_description"`
	Skills         []string `json:"skills"`
}

func (a *AIHandler) Enhance(c *fiber.Ctx) error {
	var req enhanceRequest
	if err := c.BodyParser(&req); err != nil {
		return aiError(c, "invalid JSON body")
	}
	kind, ok := domain.ParseFieldKind(req.Kind)
	if !ok {
		return aiError(c, fmt.Sprintf("unknown kind %q", req.Kind))
	}
	s, err := a.enhancer.Enhance(c.UserContext(), domain.EnhancementRequest{
		Kind:       kind,
		Text:       req.Text,
		JobContext: req.JobDescription,
		Skills:     req.Skills,
	})
	if err != nil {
		return err
	}
	if s.Skills == nil {
		s.Skills = []string{}
	}
	return c.JSON(fiber.Map{"success": true, "suggestion": s.Text, "skills": s.Skills})
}

type summaryRequest struct {
	Summary    string             `json:"summary"`
	Skills     []string           `json:"skills"`
	Experience []model.Experience `json:"experience"`
}

func (a *AIHandler) EnhanceSummary(c *fiber.Ctx) error {
	var req summaryRequest
	if err := c.BodyParser(&req); err != nil {
		return aiError(c, "invalid JSON body")
	}
	positions := 0
	for _, e := range req.Experience {
		if strings.TrimSpace(e.Employer) != "" {
			positions++
		}
	}
	return c.JSON(fiber.Map{
		"success":          true,
		"enhanced_summary": enhance.ComposeSummary(req.Summary, req.Skills, positions),
	})
}

type jobRequest struct {
	JobDescription string `json:"job_description"`
}

func (a *AIHandler) AnalyzeJob(c *fiber.Ctx) error {
	var req jobRequest
	if err := c.BodyParser(&req); err != nil {
		return aiError(c, "invalid JSON body")
	}
	if strings.TrimSpace(req.JobDescription) == "" {
		return aiError(c, "Job description is required")
	}
	an := a.heuristic.AnalyzeJob(req.JobDescription)
	return c.JSON(fiber.Map{
		"success":          true,
		"key_skills":       nonNil(an.KeySkills),
		"recommendations":  nonNil(an.Recommendations),
		"experience_years": an.ExperienceYears,
	})
}

type skillsRequest struct {
	Skills []string `json:"skills"`
}

func (a *AIHandler) SuggestSkills(c *fiber.Ctx) error {
	var req skillsRequest
	// an empty body is fine here
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return aiError(c, "invalid JSON body")
		}
	}
	order, byCategory := a.heuristic.Vocabulary().Categories()
	return c.JSON(fiber.Map{
		"success":          true,
		"suggested_skills": nonNil(a.heuristic.SuggestTrending(req.Skills, 8)),
		"category_order":   order,
		"categories":       byCategory,
	})
}

type matchRequest struct {
	JobDescription string              `json:"job_description"`
	ResumeData     *model.ResumeRecord `json:"resume_data"`
}

func (a *AIHandler) MatchResume(c *fiber.Ctx) error {
	var req matchRequest
	if err := c.BodyParser(&req); err != nil {
		return aiError(c, "invalid JSON body")
	}
	if strings.TrimSpace(req.JobDescription) == "" || req.ResumeData == nil {
		return aiError(c, "Job description and resume data are required")
	}
	m := a.heuristic.MatchResume(req.JobDescription, req.ResumeData)
	return c.JSON(fiber.Map{
		"success":                 true,
		"match_score":             m.MatchScore,
		"skill_coverage":          m.SkillCoverage,
		"matched_skills":          m.MatchedSkills,
		"missing_skills":          m.MissingSkills,
		"improvement_suggestions": nonNil(m.ImprovementSuggestions),
	})
}

type rankRequest struct {
	JobDescription string                `json:"job_description"`
	Candidates     []*model.ResumeRecord `json:"candidates"`
}

func (a *AIHandler) RankCandidates(c *fiber.Ctx) error {
	var req rankRequest
	if err := c.BodyParser(&req); err != nil {
		return aiError(c, "invalid JSON body")
	}
	var candidates []*model.ResumeRecord
	for _, rec := range req.Candidates {
		if rec != nil {
			candidates = append(candidates, rec)
		}
	}
	if strings.TrimSpace(req.JobDescription) == "" || len(candidates) == 0 {
		return aiError(c, "Job description and candidates are required")
	}
	r := a.heuristic.RankCandidates(req.JobDescription, candidates)
	return c.JSON(fiber.Map{
		"success":           true,
		"ranked_candidates": r.RankedCandidates,
		"total_candidates":  r.TotalCandidates,
		"avg_score":         r.AvgScore,
	})
}

func aiError(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": msg})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
