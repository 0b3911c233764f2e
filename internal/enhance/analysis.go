package enhance

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"resume-builder/internal/model"
)

var experienceYears = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\s*\+?\s*years?\s*(?:of\s*)?(?:experience|exp)`),
	regexp.MustCompile(`(\d+)\s*\+?\s*yrs?\s*(?:experience|exp)`),
	regexp.MustCompile(`(\d+)\s*\+?\s*years?\s*in`),
}

// JobAnalysis is the deterministic read-out of a job description.
type JobAnalysis struct {
	KeySkills       []string `json:"key_skills"`
	Recommendations []string `json:"recommendations"`
	ExperienceYears int      `json:"experience_years"`
}

// AnalyzeJob extracts the top skills, the years of experience asked for and
// a list of tailoring recommendations.
func (h *Heuristic) AnalyzeJob(jobText string) JobAnalysis {
	jobText = JobText(jobText)
	skills := h.JobSkills(jobText)
	return JobAnalysis{
		KeySkills:       firstN(skills, 8),
		Recommendations: recommendations(jobText, skills),
		ExperienceYears: ExperienceYears(jobText),
	}
}

// ExperienceYears returns the largest "N years of experience" figure in text,
// or 0.
func ExperienceYears(text string) int {
	lower := strings.ToLower(text)
	best := 0
	for _, re := range experienceYears {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			if n, err := strconv.Atoi(m[1]); err == nil && n > best {
				best = n
			}
		}
	}
	return best
}

func recommendations(jobText string, skills []string) []string {
	recs := []string{
		"Highlight relevant technical skills prominently in your summary section",
		"Use action verbs and quantify achievements with specific metrics",
		"Tailor your project descriptions to match the job requirements",
	}
	if len(skills) > 0 {
		recs = append(recs, "Emphasize your experience with: "+strings.Join(firstN(skills, 3), ", "))
	}
	lower := strings.ToLower(jobText)
	if strings.Contains(lower, "agile") || strings.Contains(lower, "scrum") {
		recs = append(recs, "Highlight your experience with Agile methodologies")
	}
	if strings.Contains(lower, "lead") || strings.Contains(lower, "senior") {
		recs = append(recs, "Emphasize leadership experience and mentoring capabilities")
	}
	return recs
}

// ResumeMatch scores how well a record fits a job.
type ResumeMatch struct {
	MatchScore             float64  `json:"match_score"`
	SkillCoverage          float64  `json:"skill_coverage"`
	MatchedSkills          []string `json:"matched_skills"`
	MissingSkills          []string `json:"missing_skills"`
	ImprovementSuggestions []string `json:"improvement_suggestions"`
}

// MatchResume compares a record with a job description. MatchScore is the
// TF-IDF cosine similarity of the two texts and SkillCoverage the share of job
// skills the record covers, both 0-100 with two decimals.
func (h *Heuristic) MatchResume(jobText string, rec *model.ResumeRecord) ResumeMatch {
	jobText = JobText(jobText)
	jobSkills := h.JobSkills(jobText)
	held := append([]string(nil), rec.Skills...)
	held = append(held, h.names(h.vocab.scan(resumeText(rec)))...)
	have := h.heldSet(held)

	m := ResumeMatch{MatchedSkills: []string{}, MissingSkills: []string{}}
	var missing []string
	for _, s := range jobSkills {
		idx, _ := h.vocab.lookup(s)
		if have(idx) {
			m.MatchedSkills = append(m.MatchedSkills, s)
		} else {
			missing = append(missing, s)
		}
	}
	m.MatchScore = round2(Similarity(jobText, resumeText(rec)) * 100)
	if len(jobSkills) > 0 {
		m.SkillCoverage = round2(float64(len(m.MatchedSkills)) / float64(len(jobSkills)) * 100)
	}
	m.MissingSkills = append(m.MissingSkills, firstN(missing, 5)...)
	m.ImprovementSuggestions = improvements(missing, rec)
	return m
}

func resumeText(rec *model.ResumeRecord) string {
	var b strings.Builder
	b.WriteString(rec.Summary)
	b.WriteString("\n" + strings.Join(rec.Skills, ", "))
	for _, p := range rec.Projects {
		b.WriteString("\n" + p.Title + "\n" + p.Description + "\n" + strings.Join(p.Technologies, ", "))
	}
	for _, e := range rec.Experience {
		b.WriteString("\n" + e.Role + "\n" + strings.Join(e.Bullets, "\n"))
	}
	return b.String()
}

func improvements(missing []string, rec *model.ResumeRecord) []string {
	var out []string
	if len(missing) > 0 {
		out = append(out, "Consider adding these skills: "+strings.Join(firstN(missing, 3), ", "))
	}
	if len(rec.Projects) < 2 {
		out = append(out, "Add more project examples to demonstrate your technical abilities")
	}
	if strings.TrimSpace(rec.Summary) == "" {
		out = append(out, "Add a compelling professional summary highlighting your key strengths")
	}
	return firstN(out, 4)
}

// ComposeSummary builds a full professional summary from an optional base
// sentence, the candidate's skills and how many positions they list. It backs
// the summary helper endpoint; the Enhance summary rule is the lighter rewrite.
func ComposeSummary(base string, skills []string, positions int) string {
	base = strings.TrimRight(strings.Join(strings.Fields(base), " "), ". ")
	if base == "" {
		base = summaryBase + " with strong technical skills"
	}
	var b strings.Builder
	b.WriteString(base)
	// the first three entries, blanks dropped afterwards
	var top []string
	for _, sk := range skills[:min(3, len(skills))] {
		if sk = strings.TrimSpace(sk); sk != "" {
			top = append(top, sk)
		}
	}
	if len(top) > 0 {
		b.WriteString(" with expertise in " + strings.Join(top, ", "))
	}
	if positions > 0 {
		fmt.Fprintf(&b, " and %d+ years of industry experience", positions)
	}
	b.WriteString(". " + composedClosing)
	return b.String()
}
