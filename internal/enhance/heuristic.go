package enhance

import (
	"context"
	"sort"
	"strings"

	"resume-builder/internal/domain"
)

// Enhancer proposes a rewrite for one field. Implementations must be safe
// for concurrent use and must not mutate the request.
type Enhancer interface {
	Enhance(ctx context.Context, req domain.EnhancementRequest) (domain.Suggestion, error)
}

const (
	summaryOpener  = "Results-driven professional."
	summaryBase    = "Dedicated professional"
	summaryClosing = "Proven track record of delivering high-quality solutions."

	// composedClosing ends the full summary built by ComposeSummary.
	composedClosing = "Proven track record of delivering high-quality solutions and driving business growth through technology innovation."
)

// Heuristic rewrites text with fixed rules and the skill vocabulary. It holds
// no mutable state, never fails and returns identical output for identical
// requests.
type Heuristic struct {
	vocab *Vocabulary
}

func NewHeuristic(vocab *Vocabulary) *Heuristic {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Heuristic{vocab: vocab}
}

// Vocabulary exposes the read-only vocabulary the enhancer matches against.
func (h *Heuristic) Vocabulary() *Vocabulary { return h.vocab }

func (h *Heuristic) Enhance(_ context.Context, req domain.EnhancementRequest) (domain.Suggestion, error) {
	switch req.Kind {
	case domain.KindSummary:
		return domain.Suggestion{Text: h.summary(req.Text, req.Skills)}, nil
	case domain.KindProject, domain.KindExperienceBullet:
		return domain.Suggestion{Text: rewriteLines(req.Text)}, nil
	case domain.KindSkills:
		held := req.Skills
		if len(held) == 0 {
			held = splitList(req.Text)
		}
		if strings.TrimSpace(req.JobContext) == "" {
			if len(held) == 0 {
				return domain.Suggestion{}, nil
			}
			return domain.Suggestion{Skills: h.SuggestTrending(held, 8)}, nil
		}
		return domain.Suggestion{Skills: h.MissingSkills(req.JobContext, held)}, nil
	}
	return domain.Suggestion{}, nil
}

// summary adds an impact opener to a written summary, or synthesises one
// from the first three skills when the summary is blank.
func (h *Heuristic) summary(text string, skills []string) string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		top := firstN(skills, 3)
		if len(top) == 0 {
			return ""
		}
		return summaryBase + " with expertise in " + joinHuman(top) + ". " + summaryClosing
	}
	text = capitalize(terminate(text))
	if strings.HasPrefix(text, summaryOpener) || strings.HasPrefix(text, summaryBase) {
		return text
	}
	return summaryOpener + " " + text
}

// MissingSkills extracts vocabulary skills from job text that the candidate
// does not already list, most frequent first, ties in first-seen order.
func (h *Heuristic) MissingSkills(jobText string, held []string) []string {
	have := h.heldSet(held)
	var ranked []hit
	for _, ht := range h.vocab.scan(JobText(jobText)) {
		if !have(ht.skill) {
			ranked = append(ranked, ht)
		}
	}
	return h.names(rank(ranked))
}

// JobSkills lists every vocabulary skill in the job text, ranked the same way
// as MissingSkills.
func (h *Heuristic) JobSkills(jobText string) []string {
	return h.names(rank(h.vocab.scan(JobText(jobText))))
}

// SuggestTrending picks up to two skills per category, in vocabulary order,
// that the candidate does not hold, stopping at limit.
func (h *Heuristic) SuggestTrending(held []string, limit int) []string {
	have := h.heldSet(held)
	cats, byCat := h.vocab.Categories()
	var out []string
	for _, c := range cats {
		picked := 0
		for _, name := range byCat[c] {
			if picked == 2 || len(out) == limit {
				break
			}
			if idx, ok := h.vocab.lookup(name); ok && have(idx) {
				continue
			}
			out = append(out, name)
			picked++
		}
	}
	return out
}

// heldSet returns a membership test over vocabulary indices for the skills a
// candidate lists. Skills outside the vocabulary are matched by name.
func (h *Heuristic) heldSet(held []string) func(int) bool {
	idx := map[int]bool{}
	names := map[string]bool{}
	for _, s := range held {
		if i, ok := h.vocab.lookup(s); ok {
			idx[i] = true
		}
		names[strings.ToLower(strings.TrimSpace(s))] = true
	}
	return func(i int) bool {
		return idx[i] || names[strings.ToLower(h.vocab.name(i))]
	}
}

func (h *Heuristic) names(hits []hit) []string {
	out := make([]string, 0, len(hits))
	for _, ht := range hits {
		out = append(out, h.vocab.name(ht.skill))
	}
	return out
}

func rank(hits []hit) []hit {
	sorted := append([]hit(nil), hits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].first < sorted[j].first
	})
	return sorted
}

func firstN(items []string, n int) []string {
	var out []string
	for _, s := range items {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == n {
			break
		}
	}
	return out
}

// joinHuman renders "a", "a and b", "a, b and c".
func joinHuman(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}

func splitList(s string) []string {
	return firstN(strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' }), -1)
}
