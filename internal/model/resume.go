package model

// Go models for one resume submission. A ResumeRecord is built fresh per
// request and discarded once the response is written.

type Link struct {
	URL   string `json:"url"`
	Label string `json:"label,omitempty"`
}

type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Links []Link `json:"links,omitempty"`
}

type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Dates       string `json:"dates,omitempty"`
}

func (e Education) IsEmpty() bool {
	return e.Institution == "" && e.Degree == "" && e.Dates == ""
}

type Project struct {
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
}

func (p Project) IsEmpty() bool {
	return p.Title == "" && p.Description == "" && len(p.Technologies) == 0
}

type Experience struct {
	Employer string   `json:"employer"`
	Role     string   `json:"role"`
	Dates    string   `json:"dates,omitempty"`
	Bullets  []string `json:"bullets,omitempty"`
}

func (e Experience) IsEmpty() bool {
	return e.Employer == "" && e.Role == "" && e.Dates == "" && len(e.Bullets) == 0
}

type ResumeRecord struct {
	Contact    Contact      `json:"contact"`
	Summary    string       `json:"summary,omitempty"`
	Skills     []string     `json:"skills,omitempty"`
	Education  []Education  `json:"education,omitempty"`
	Projects   []Project    `json:"projects,omitempty"`
	Experience []Experience `json:"experience,omitempty"`
	Languages  []string     `json:"languages,omitempty"`
	Awards     []string     `json:"awards,omitempty"`
}

// MaxEducation is the number of education entries a record may hold.
const MaxEducation = 3
