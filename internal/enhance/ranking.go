package enhance

import (
	"math"
	"sort"
	"strings"

	"resume-builder/internal/model"
)

// Weights of the composite candidate score. They sum to 1.
const (
	weightSimilarity = 0.4
	weightSkills     = 0.3
	weightExperience = 0.2
	weightEducation  = 0.1
)

// maxRanked caps how many candidates a ranking returns.
const maxRanked = 10

// Similarity is the TF-IDF cosine similarity of two texts, from 0 to 1. Terms
// are the tokenized words minus stop words; idf is smoothed over the pair,
// idf(t) = ln(3 / (1 + df(t))) + 1.
func Similarity(a, b string) float64 {
	ta, tb := termCounts(a), termCounts(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	terms := make([]string, 0, len(ta)+len(tb))
	for t := range ta {
		terms = append(terms, t)
	}
	for t := range tb {
		if _, ok := ta[t]; !ok {
			terms = append(terms, t)
		}
	}
	// sorted: map order would vary the float sums
	sort.Strings(terms)

	var dot, na, nb float64
	for _, t := range terms {
		df := 0
		if ta[t] > 0 {
			df++
		}
		if tb[t] > 0 {
			df++
		}
		idf := math.Log(3/float64(1+df)) + 1
		wa, wb := float64(ta[t])*idf, float64(tb[t])*idf
		dot += wa * wb
		na += wa * wa
		nb += wb * wb
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func termCounts(text string) map[string]int {
	out := map[string]int{}
	for _, t := range removeStopWords(tokenize(text)) {
		out[t]++
	}
	return out
}

// CandidateScore is one candidate's place in a ranking with the parts of its
// composite score.
type CandidateScore struct {
	Index           int                 `json:"index"`
	Name            string              `json:"name"`
	Score           float64             `json:"score"`
	SimilarityScore float64             `json:"similarity_score"`
	SkillScore      float64             `json:"skill_score"`
	ExperienceScore float64             `json:"experience_score"`
	EducationScore  float64             `json:"education_score"`
	MatchedSkills   []string            `json:"matched_skills"`
	Candidate       *model.ResumeRecord `json:"candidate"`
}

// CandidateRanking holds the best candidates, best first, and aggregates over
// every candidate scored.
type CandidateRanking struct {
	RankedCandidates []CandidateScore `json:"ranked_candidates"`
	TotalCandidates  int              `json:"total_candidates"`
	AvgScore         float64          `json:"avg_score"`
}

// RankCandidates scores each record against a job description and returns the
// top ten. The score weighs text similarity 0.4, listed job skills 0.3,
// positions held against the years asked for 0.2 and degrees 0.1. Scores are
// rounded to four decimals; equal scores keep input order.
func (h *Heuristic) RankCandidates(jobText string, recs []*model.ResumeRecord) CandidateRanking {
	jobText = JobText(jobText)
	jobSkills := h.JobSkills(jobText)
	yearsAsked := max(ExperienceYears(jobText), 1)

	scored := make([]CandidateScore, 0, len(recs))
	var sum float64
	for i, rec := range recs {
		if rec == nil {
			continue
		}
		have := h.heldSet(rec.Skills)
		matched := []string{}
		for _, s := range jobSkills {
			if idx, ok := h.vocab.lookup(s); ok && have(idx) {
				matched = append(matched, s)
			}
		}

		cs := CandidateScore{
			Index:           i,
			Name:            rec.Contact.Name,
			SimilarityScore: round4(Similarity(jobText, resumeText(rec))),
			SkillScore:      round4(float64(len(matched)) / float64(max(len(jobSkills), 1))),
			ExperienceScore: round4(math.Min(float64(positions(rec))/float64(yearsAsked), 1)),
			EducationScore:  round4(math.Min(float64(degrees(rec))*0.2, 1)),
			MatchedSkills:   matched,
			Candidate:       rec,
		}
		cs.Score = round4(weightSimilarity*cs.SimilarityScore +
			weightSkills*cs.SkillScore +
			weightExperience*cs.ExperienceScore +
			weightEducation*cs.EducationScore)
		sum += cs.Score
		scored = append(scored, cs)
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	r := CandidateRanking{
		RankedCandidates: scored[:min(len(scored), maxRanked)],
		TotalCandidates:  len(scored),
	}
	if len(scored) > 0 {
		r.AvgScore = round4(sum / float64(len(scored)))
	}
	return r
}

// positions counts experience entries that name an employer.
func positions(rec *model.ResumeRecord) int {
	n := 0
	for _, e := range rec.Experience {
		if strings.TrimSpace(e.Employer) != "" {
			n++
		}
	}
	return n
}

func degrees(rec *model.ResumeRecord) int {
	n := 0
	for _, e := range rec.Education {
		if strings.TrimSpace(e.Degree) != "" {
			n++
		}
	}
	return n
}

func round4(f float64) float64 { return math.Round(f*10000) / 10000 }

func round2(f float64) float64 { return math.Round(f*100) / 100 }
