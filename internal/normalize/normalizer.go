package normalize

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"resume-builder/internal/domain"
	"resume-builder/internal/model"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/text/cases"
)

var emailShape = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,}$`)

// FromForm parses a form submission into a canonical record.
func FromForm(f Form) (*model.ResumeRecord, error) {
	rec := &model.ResumeRecord{
		Contact: model.Contact{
			Name:  f.Get(FieldName),
			Email: f.Get(FieldEmail),
			Phone: f.Get(FieldPhone),
		},
		Summary:   f.Get(FieldSummary),
		Skills:    splitAll(f[FieldSkills], ",\n"),
		Languages: splitAll(f[FieldLanguages], ",\n"),
		Awards:    splitAll(f[FieldAwards], "\n"),
	}
	for _, u := range splitAll(f[FieldLinks], " \n") {
		rec.Contact.Links = append(rec.Contact.Links, model.Link{URL: u})
	}

	n := f.groupLen(FieldEduInstitution, FieldEduDegree, FieldEduDates)
	for i := 0; i < n; i++ {
		rec.Education = append(rec.Education, model.Education{
			Institution: f.At(FieldEduInstitution, i),
			Degree:      f.At(FieldEduDegree, i),
			Dates:       f.At(FieldEduDates, i),
		})
	}

	n = f.groupLen(FieldProjectTitle, FieldProjectDescription, FieldProjectTechnologies)
	for i := 0; i < n; i++ {
		rec.Projects = append(rec.Projects, model.Project{
			Title:        f.At(FieldProjectTitle, i),
			Description:  f.At(FieldProjectDescription, i),
			Technologies: split(f.At(FieldProjectTechnologies, i), ",\n"),
		})
	}

	n = f.groupLen(FieldExpEmployer, FieldExpRole, FieldExpDates, FieldExpBullets)
	for i := 0; i < n; i++ {
		rec.Experience = append(rec.Experience, model.Experience{
			Employer: f.At(FieldExpEmployer, i),
			Role:     f.At(FieldExpRole, i),
			Dates:    f.At(FieldExpDates, i),
			Bullets:  split(f.At(FieldExpBullets, i), "\n"),
		})
	}

	return Canonicalize(rec)
}

// Canonicalize validates a decoded record and returns a cleaned copy: strings
// trimmed, blank list items and all-empty group entries dropped, skills
// de-duplicated case-insensitively in first-seen order. The input is not
// modified.
//
// More than model.MaxEducation non-empty education entries is rejected with
// TooManyEntries rather than truncated.
func Canonicalize(in *model.ResumeRecord) (*model.ResumeRecord, error) {
	if in == nil {
		return nil, domain.NewValidationError(domain.MissingField, FieldName, "no resume data")
	}

	out := &model.ResumeRecord{
		Contact: model.Contact{
			Name:  strings.TrimSpace(in.Contact.Name),
			Email: strings.TrimSpace(in.Contact.Email),
			Phone: strings.TrimSpace(in.Contact.Phone),
		},
		Summary:   strings.TrimSpace(in.Summary),
		Skills:    dedupeFold(compact(in.Skills)),
		Languages: compact(in.Languages),
		Awards:    compact(in.Awards),
	}

	if out.Contact.Name == "" {
		return nil, domain.NewValidationError(domain.MissingField, FieldName, "name is required")
	}
	if out.Contact.Email == "" {
		return nil, domain.NewValidationError(domain.MissingField, FieldEmail, "email is required")
	}
	if !ValidEmail(out.Contact.Email) {
		return nil, domain.NewValidationError(domain.InvalidFormat, FieldEmail,
			fmt.Sprintf("%q is not an email address", out.Contact.Email))
	}

	for _, l := range in.Contact.Links {
		u := strings.TrimSpace(l.URL)
		if u == "" {
			continue
		}
		label := strings.TrimSpace(l.Label)
		if label == "" {
			label = linkLabel(u)
		}
		out.Contact.Links = append(out.Contact.Links, model.Link{URL: u, Label: label})
	}

	for _, e := range in.Education {
		e = model.Education{
			Institution: strings.TrimSpace(e.Institution),
			Degree:      strings.TrimSpace(e.Degree),
			Dates:       strings.TrimSpace(e.Dates),
		}
		if !e.IsEmpty() {
			out.Education = append(out.Education, e)
		}
	}
	if len(out.Education) > model.MaxEducation {
		return nil, domain.NewValidationError(domain.TooManyEntries, "education",
			fmt.Sprintf("at most %d entries allowed, got %d", model.MaxEducation, len(out.Education)))
	}

	for _, p := range in.Projects {
		p = model.Project{
			Title:        strings.TrimSpace(p.Title),
			Description:  strings.TrimSpace(p.Description),
			Technologies: compact(p.Technologies),
		}
		if !p.IsEmpty() {
			out.Projects = append(out.Projects, p)
		}
	}

	for _, e := range in.Experience {
		e = model.Experience{
			Employer: strings.TrimSpace(e.Employer),
			Role:     strings.TrimSpace(e.Role),
			Dates:    strings.TrimSpace(e.Dates),
			Bullets:  compact(e.Bullets),
		}
		if !e.IsEmpty() {
			out.Experience = append(out.Experience, e)
		}
	}

	return out, nil
}

// ValidEmail checks the usual local@domain.tld shape and the schema library's
// email format.
func ValidEmail(s string) bool {
	return emailShape.MatchString(s) && model.IsEmail(s)
}

// linkLabel derives a short display label (eTLD+1) for a contact link.
func linkLabel(raw string) string {
	candidate := raw
	if !strings.HasPrefix(candidate, "http://") && !strings.HasPrefix(candidate, "https://") {
		candidate = "https://" + candidate
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return raw
	}
	host := parsed.Hostname()
	if host == "" {
		return raw
	}
	if etld, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return strings.TrimPrefix(etld, "www.")
	}
	return strings.TrimPrefix(host, "www.")
}

// compact trims every item and drops the blank ones, keeping order.
func compact(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// dedupeFold keeps the first spelling of every case-insensitively distinct
// item, comparing Unicode case folds.
func dedupeFold(in []string) []string {
	fold := cases.Fold()
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, s := range in {
		k := fold.String(s)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}

func split(s, seps string) []string {
	return compact(strings.FieldsFunc(s, func(r rune) bool {
		return r == '\r' || strings.ContainsRune(seps, r)
	}))
}

func splitAll(values []string, seps string) []string {
	var out []string
	for _, v := range values {
		out = append(out, split(v, seps)...)
	}
	return out
}
