package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"resume-builder/internal/model"
)

//go:embed templates/resume.html.tmpl templates/style.css
var assets embed.FS

// Section keys in the order they appear on the page.
const (
	SectionContact    = "contact"
	SectionSummary    = "summary"
	SectionSkills     = "skills"
	SectionEducation  = "education"
	SectionExperience = "experience"
	SectionProjects   = "projects"
	SectionLanguages  = "languages"
	SectionAwards     = "awards"
)

var sectionOrder = []string{
	SectionContact,
	SectionSummary,
	SectionSkills,
	SectionEducation,
	SectionExperience,
	SectionProjects,
	SectionLanguages,
	SectionAwards,
}

// Document is the rendered markup for one record plus what the exporter and
// the HTTP layer need to know about it.
type Document struct {
	HTML     string
	Filename string
	// Sections lists the sections present in HTML, in page order.
	Sections []string
	// LongestField is the rune length of the longest user supplied string.
	LongestField int
}

// Renderer turns canonical records into HTML. It is built once at startup and
// is safe for concurrent use.
type Renderer struct {
	tpl   *template.Template
	style template.CSS
}

// New parses the embedded template. A non-empty styleFile replaces the
// embedded stylesheet.
func New(styleFile string) (*Renderer, error) {
	tpl, err := template.New("resume.html.tmpl").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(assets, "templates/resume.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse resume template: %w", err)
	}

	var css []byte
	if styleFile != "" {
		css, err = os.ReadFile(styleFile)
	} else {
		css, err = assets.ReadFile("templates/style.css")
	}
	if err != nil {
		return nil, fmt.Errorf("load stylesheet: %w", err)
	}

	return &Renderer{tpl: tpl, style: template.CSS(css)}, nil
}

type view struct {
	Record   *model.ResumeRecord
	Sections []string
	Style    template.CSS
}

// Render produces the HTML document for rec. Every user string goes through
// html/template escaping; empty sections are left out entirely.
func (r *Renderer) Render(rec *model.ResumeRecord) (*Document, error) {
	if rec == nil {
		return nil, fmt.Errorf("render: nil record")
	}

	sections := Sections(rec)
	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, view{Record: rec, Sections: sections, Style: r.style}); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	return &Document{
		HTML:         buf.String(),
		Filename:     Filename(rec.Contact.Name),
		Sections:     sections,
		LongestField: longestField(rec),
	}, nil
}

// Sections returns the keys of the non-empty sections of rec in page order.
func Sections(rec *model.ResumeRecord) []string {
	present := map[string]bool{
		SectionContact:    rec.Contact.Name != "" || rec.Contact.Email != "",
		SectionSummary:    rec.Summary != "",
		SectionSkills:     len(rec.Skills) > 0,
		SectionEducation:  len(rec.Education) > 0,
		SectionExperience: len(rec.Experience) > 0,
		SectionProjects:   len(rec.Projects) > 0,
		SectionLanguages:  len(rec.Languages) > 0,
		SectionAwards:     len(rec.Awards) > 0,
	}
	out := make([]string, 0, len(sectionOrder))
	for _, s := range sectionOrder {
		if present[s] {
			out = append(out, s)
		}
	}
	return out
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Filename suggests "<name>_resume.pdf" for a contact name. Spaces become
// underscores and anything outside [A-Za-z0-9._-] is dropped.
func Filename(name string) string {
	base := strings.Join(strings.Fields(name), "_")
	base = unsafeFilename.ReplaceAllString(base, "")
	base = strings.Trim(base, "._-")
	if base == "" {
		return "resume.pdf"
	}
	return base + "_resume.pdf"
}

func longestField(rec *model.ResumeRecord) int {
	longest := 0
	see := func(ss ...string) {
		for _, s := range ss {
			if n := utf8.RuneCountInString(s); n > longest {
				longest = n
			}
		}
	}

	c := rec.Contact
	see(c.Name, c.Email, c.Phone, rec.Summary)
	for _, l := range c.Links {
		see(l.URL, l.Label)
	}
	see(rec.Skills...)
	see(rec.Languages...)
	see(rec.Awards...)
	for _, e := range rec.Education {
		see(e.Institution, e.Degree, e.Dates)
	}
	for _, p := range rec.Projects {
		see(p.Title, p.Description)
		see(p.Technologies...)
	}
	for _, e := range rec.Experience {
		see(e.Employer, e.Role, e.Dates)
		see(e.Bullets...)
	}
	return longest
}
