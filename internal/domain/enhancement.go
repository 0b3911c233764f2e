package domain

// FieldKind selects the rewrite rules applied by an enhancer.
type FieldKind string

const (
	KindSummary          FieldKind = "summary"
	KindProject          FieldKind = "project"
	KindExperienceBullet FieldKind = "experience-bullet"
	KindSkills           FieldKind = "skills"
)

// ParseFieldKind maps user input onto a FieldKind. The second return is false
// for unknown kinds.
func ParseFieldKind(s string) (FieldKind, bool) {
	switch FieldKind(s) {
	case KindSummary, KindProject, KindExperienceBullet, KindSkills:
		return FieldKind(s), true
	case "experience", "bullet":
		return KindExperienceBullet, true
	}
	return "", false
}

// EnhancementRequest is an immutable input to an enhancer. Skills carries the
// record's current skill list: the summary rule draws from it and the skills
// rule excludes it.
type EnhancementRequest struct {
	Kind       FieldKind
	Text       string
	JobContext string
	Skills     []string
}

// Suggestion is what an enhancer proposes. The caller decides whether to
// accept it; the record is never touched by the enhancer.
type Suggestion struct {
	Text   string   `json:"suggestion"`
	Skills []string `json:"skills,omitempty"`
}

// Empty reports whether the enhancer had nothing to propose.
func (s Suggestion) Empty() bool {
	return s.Text == "" && len(s.Skills) == 0
}
