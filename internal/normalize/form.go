package normalize

import (
	"strings"
)

// Form is a parsed key/array submission: every key maps to the values posted
// under it, in the order they were posted. It is the shape of url.Values and
// of a multipart form's value map.
type Form map[string][]string

// Inbound field names. Repeated groups use one key per sub-field; the Nth
// value of every sub-field belongs to the Nth entry.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldPhone   = "phone"
	FieldLinks   = "links"
	FieldSummary = "summary"
	FieldSkills  = "skills"

	FieldEduInstitution = "education_institution"
	FieldEduDegree      = "education_degree"
	FieldEduDates       = "education_dates"

	FieldProjectTitle        = "project_title"
	FieldProjectDescription  = "project_description"
	FieldProjectTechnologies = "project_technologies"

	FieldExpEmployer = "experience_employer"
	FieldExpRole     = "experience_role"
	FieldExpDates    = "experience_dates"
	FieldExpBullets  = "experience_bullets"

	FieldLanguages      = "languages"
	FieldAwards         = "awards"
	FieldJobDescription = "job_description"
	FieldEnhance        = "enhance"
)

// Get returns the first value posted under key, trimmed.
func (f Form) Get(key string) string {
	if vs := f[key]; len(vs) > 0 {
		return strings.TrimSpace(vs[0])
	}
	return ""
}

// At returns the i-th value posted under key, trimmed, or "" when the key
// has fewer values.
func (f Form) At(key string, i int) string {
	if vs := f[key]; i < len(vs) {
		return strings.TrimSpace(vs[i])
	}
	return ""
}

// groupLen is the number of entries in a repeated group: the longest of its
// sub-field value lists.
func (f Form) groupLen(keys ...string) int {
	n := 0
	for _, k := range keys {
		if l := len(f[k]); l > n {
			n = l
		}
	}
	return n
}

// Flag reports whether a checkbox-style key is switched on.
func (f Form) Flag(key string) bool {
	switch strings.ToLower(f.Get(key)) {
	case "on", "1", "true", "yes":
		return true
	}
	return false
}
