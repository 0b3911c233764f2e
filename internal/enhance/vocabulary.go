package enhance

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Skill is one curated vocabulary entry. Name is what gets suggested; the
// lower-cased name and every alias are matched against job text.
type Skill struct {
	Name     string   `yaml:"name"`
	Aliases  []string `yaml:"aliases,omitempty"`
	Category string   `yaml:"category,omitempty"`
}

// Vocabulary is the read-only skill list used for keyword extraction. Build it
// once at startup and share it.
type Vocabulary struct {
	skills     []Skill
	index      map[string]int
	maxWords   int
	categories []string
}

var defaultSkills = []Skill{
	{Name: "Python", Category: "Programming"},
	{Name: "JavaScript", Aliases: []string{"js"}, Category: "Programming"},
	{Name: "Java", Category: "Programming"},
	{Name: "Go", Aliases: []string{"golang"}, Category: "Programming"},
	{Name: "Rust", Category: "Programming"},
	{Name: "TypeScript", Aliases: []string{"ts"}, Category: "Programming"},
	{Name: "C++", Aliases: []string{"cpp"}, Category: "Programming"},
	{Name: "C#", Aliases: []string{"csharp"}, Category: "Programming"},
	{Name: "Ruby", Category: "Programming"},
	{Name: "PHP", Category: "Programming"},
	{Name: "Kotlin", Category: "Programming"},
	{Name: "Swift", Category: "Programming"},
	{Name: "Scala", Category: "Programming"},

	{Name: "React", Aliases: []string{"reactjs", "react.js"}, Category: "Web Development"},
	{Name: "Vue.js", Aliases: []string{"vue", "vuejs"}, Category: "Web Development"},
	{Name: "Angular", Category: "Web Development"},
	{Name: "Node.js", Aliases: []string{"nodejs"}, Category: "Web Development"},
	{Name: "Next.js", Aliases: []string{"nextjs"}, Category: "Web Development"},
	{Name: "Svelte", Category: "Web Development"},
	{Name: "Django", Category: "Web Development"},
	{Name: "Flask", Category: "Web Development"},
	{Name: "HTML", Aliases: []string{"html5"}, Category: "Web Development"},
	{Name: "CSS", Aliases: []string{"css3"}, Category: "Web Development"},
	{Name: "REST", Aliases: []string{"rest api", "restful"}, Category: "Web Development"},
	{Name: "GraphQL", Category: "Web Development"},
	{Name: "API", Aliases: []string{"apis"}, Category: "Web Development"},

	{Name: "Machine Learning", Aliases: []string{"ml"}, Category: "Data & AI"},
	{Name: "Data Science", Category: "Data & AI"},
	{Name: "AI", Aliases: []string{"artificial intelligence"}, Category: "Data & AI"},
	{Name: "TensorFlow", Category: "Data & AI"},
	{Name: "PyTorch", Category: "Data & AI"},
	{Name: "Pandas", Category: "Data & AI"},
	{Name: "NumPy", Category: "Data & AI"},

	{Name: "AWS", Aliases: []string{"amazon web services"}, Category: "Cloud & DevOps"},
	{Name: "Azure", Category: "Cloud & DevOps"},
	{Name: "Docker", Category: "Cloud & DevOps"},
	{Name: "Kubernetes", Aliases: []string{"k8s"}, Category: "Cloud & DevOps"},
	{Name: "Terraform", Category: "Cloud & DevOps"},
	{Name: "Jenkins", Category: "Cloud & DevOps"},
	{Name: "GCP", Aliases: []string{"google cloud"}, Category: "Cloud & DevOps"},
	{Name: "CI/CD", Aliases: []string{"cicd"}, Category: "Cloud & DevOps"},
	{Name: "DevOps", Category: "Cloud & DevOps"},
	{Name: "Git", Category: "Cloud & DevOps"},
	{Name: "Linux", Category: "Cloud & DevOps"},
	{Name: "Microservices", Category: "Cloud & DevOps"},
	{Name: "Cloud Computing", Category: "Cloud & DevOps"},

	{Name: "PostgreSQL", Aliases: []string{"postgres"}, Category: "Databases"},
	{Name: "MongoDB", Aliases: []string{"mongo"}, Category: "Databases"},
	{Name: "Redis", Category: "Databases"},
	{Name: "Elasticsearch", Category: "Databases"},
	{Name: "MySQL", Category: "Databases"},
	{Name: "SQL", Category: "Databases"},

	{Name: "Agile", Category: "Practices"},
	{Name: "Scrum", Category: "Practices"},
	{Name: "Blockchain", Category: "Practices"},
	{Name: "Cybersecurity", Aliases: []string{"cyber security"}, Category: "Practices"},
}

// DefaultVocabulary returns the built-in skill list.
func DefaultVocabulary() *Vocabulary {
	return NewVocabulary(defaultSkills)
}

// NewVocabulary indexes skills. Later entries never shadow an earlier entry
// that already claimed the same phrase.
func NewVocabulary(skills []Skill) *Vocabulary {
	v := &Vocabulary{
		skills: make([]Skill, 0, len(skills)),
		index:  map[string]int{},
	}
	seenCat := map[string]bool{}
	for _, s := range skills {
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			continue
		}
		if s.Category == "" {
			s.Category = "Other"
		}
		idx := len(v.skills)
		v.skills = append(v.skills, s)
		if !seenCat[s.Category] {
			seenCat[s.Category] = true
			v.categories = append(v.categories, s.Category)
		}
		for _, phrase := range append([]string{s.Name}, s.Aliases...) {
			toks := tokenize(phrase)
			if len(toks) == 0 {
				continue
			}
			key := strings.Join(toks, " ")
			if _, taken := v.index[key]; taken {
				continue
			}
			v.index[key] = idx
			if len(toks) > v.maxWords {
				v.maxWords = len(toks)
			}
		}
	}
	return v
}

// LoadVocabulary reads a YAML list of skills. An empty path yields the
// built-in vocabulary.
func LoadVocabulary(path string) (*Vocabulary, error) {
	if path == "" {
		return DefaultVocabulary(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	var doc struct {
		Skills []Skill `yaml:"skills"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}
	if len(doc.Skills) == 0 {
		return nil, fmt.Errorf("vocabulary %s has no skills", path)
	}
	return NewVocabulary(doc.Skills), nil
}

// Len is the number of skills in the vocabulary.
func (v *Vocabulary) Len() int { return len(v.skills) }

// Categories lists every category and its skill names in vocabulary order.
func (v *Vocabulary) Categories() ([]string, map[string][]string) {
	out := make(map[string][]string, len(v.categories))
	for _, s := range v.skills {
		out[s.Category] = append(out[s.Category], s.Name)
	}
	return v.categories, out
}

// hit is one vocabulary skill found in a text.
type hit struct {
	skill int
	count int
	first int
}

// scan finds vocabulary skills in text after stop-word removal, longest
// phrase first. Hits come back in first-seen order.
func (v *Vocabulary) scan(text string) []hit {
	toks := removeStopWords(tokenize(text))
	byIdx := map[int]*hit{}
	var order []int
	for i := 0; i < len(toks); {
		matched := 0
		for w := min(v.maxWords, len(toks)-i); w >= 1; w-- {
			idx, ok := v.index[strings.Join(toks[i:i+w], " ")]
			if !ok {
				continue
			}
			h := byIdx[idx]
			if h == nil {
				h = &hit{skill: idx, first: i}
				byIdx[idx] = h
				order = append(order, idx)
			}
			h.count++
			matched = w
			break
		}
		if matched == 0 {
			matched = 1
		}
		i += matched
	}
	hits := make([]hit, 0, len(order))
	for _, idx := range order {
		hits = append(hits, *byIdx[idx])
	}
	return hits
}

// lookup resolves a single skill as the user typed it to a vocabulary index.
func (v *Vocabulary) lookup(s string) (int, bool) {
	idx, ok := v.index[strings.Join(tokenize(s), " ")]
	return idx, ok
}

func (v *Vocabulary) name(idx int) string { return v.skills[idx].Name }

// tokenize lower-cases text and splits it into words. Characters that appear
// inside skill names (+ # . / -) are kept within a token and trimmed from its
// ends.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
		switch r {
		case '+', '#', '.', '/', '-':
			return false
		}
		return true
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.TrimRight(f, "./-")
		f = strings.TrimLeft(f, "./-")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

var stopWords = map[string]struct{}{}

// "go" is a stop word: in job text it is far more often the verb, so Go the
// language is only picked up through "golang".
func init() {
	for _, w := range strings.Fields(`a an and are as at be been but by can could do for from
		has have having he her his i if in into is it its looking me must my need needs of on or our
		plus preferred required should so strong such than that the their them then there these they this
		go to us was we were what when which who will with within would you your experience experienced
		knowledge skills skill years year work working team ability good great excellent solid familiarity`) {
		stopWords[w] = struct{}{}
	}
}

func removeStopWords(toks []string) []string {
	out := make([]string, 0, len(toks))
	for _, t := range toks {
		if _, stop := stopWords[t]; !stop {
			out = append(out, t)
		}
	}
	return out
}
