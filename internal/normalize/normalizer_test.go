package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/domain"
	"resume-builder/internal/model"
)

func baseForm() Form {
	return Form{
		FieldName:  {"Jane Doe"},
		FieldEmail: {"jane@example.com"},
	}
}

func TestFromForm_RoundTripSkills(t *testing.T) {
	f := baseForm()
	f[FieldSkills] = []string{"Python", "python", "SQL"}

	rec, err := FromForm(f)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", rec.Contact.Name)
	assert.Equal(t, []string{"Python", "SQL"}, rec.Skills)
}

func TestFromForm_SkillsCommaSeparated(t *testing.T) {
	f := baseForm()
	f[FieldSkills] = []string{"Go, SQL ,go", "Docker\r\nsql"}

	rec, err := FromForm(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL", "Docker"}, rec.Skills)
}

func TestFromForm_MissingFields(t *testing.T) {
	tests := []struct {
		name  string
		form  Form
		field string
	}{
		{"no name", Form{FieldEmail: {"jane@example.com"}}, FieldName},
		{"blank name", Form{FieldName: {"   "}, FieldEmail: {"jane@example.com"}}, FieldName},
		{"no email", Form{FieldName: {"Jane"}}, FieldEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromForm(tt.form)
			ve, ok := domain.AsValidation(err)
			require.True(t, ok, "expected ValidationError, got %v", err)
			assert.Equal(t, domain.MissingField, ve.Kind)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestFromForm_InvalidEmail(t *testing.T) {
	for _, email := range []string{"jane", "jane@", "@example.com", "jane@example", "Jane <jane@example.com>", "jane doe@example.com"} {
		f := baseForm()
		f[FieldEmail] = []string{email}
		_, err := FromForm(f)
		ve, ok := domain.AsValidation(err)
		require.True(t, ok, "email %q should be rejected", email)
		assert.Equal(t, domain.InvalidFormat, ve.Kind)
		assert.Equal(t, FieldEmail, ve.Field)
	}
}

func TestFromForm_PositionalGroups(t *testing.T) {
	f := baseForm()
	f[FieldExpEmployer] = []string{"Acme", "", "Globex"}
	f[FieldExpRole] = []string{"Engineer", "", "Lead"}
	f[FieldExpDates] = []string{"2019-2021", "", ""}
	f[FieldExpBullets] = []string{"Built APIs\nRan on-call", "", "Led team"}

	rec, err := FromForm(f)
	require.NoError(t, err)
	require.Len(t, rec.Experience, 2)
	assert.Equal(t, model.Experience{
		Employer: "Acme", Role: "Engineer", Dates: "2019-2021",
		Bullets: []string{"Built APIs", "Ran on-call"},
	}, rec.Experience[0])
	assert.Equal(t, "Globex", rec.Experience[1].Employer)
	assert.Equal(t, []string{"Led team"}, rec.Experience[1].Bullets)
}

func TestFromForm_ShortSubFieldLists(t *testing.T) {
	f := baseForm()
	f[FieldProjectTitle] = []string{"Tracker", "Parser"}
	f[FieldProjectDescription] = []string{"Job tracker"}
	f[FieldProjectTechnologies] = []string{"", "Go, yacc"}

	rec, err := FromForm(f)
	require.NoError(t, err)
	require.Len(t, rec.Projects, 2)
	assert.Equal(t, "Job tracker", rec.Projects[0].Description)
	assert.Empty(t, rec.Projects[1].Description)
	assert.Equal(t, []string{"Go", "yacc"}, rec.Projects[1].Technologies)
}

func TestFromForm_EducationCap(t *testing.T) {
	f := baseForm()
	f[FieldEduInstitution] = []string{"A", "B", "C", "D", "E"}
	f[FieldEduDegree] = []string{"BSc", "MSc", "PhD", "MBA", "Cert"}

	_, err := FromForm(f)
	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, domain.TooManyEntries, ve.Kind)
	assert.Equal(t, "education", ve.Field)
}

func TestFromForm_EducationEmptyEntriesDoNotCount(t *testing.T) {
	f := baseForm()
	f[FieldEduInstitution] = []string{"A", "", "B", "", "C"}
	f[FieldEduDegree] = []string{"BSc", "", "MSc", " ", "PhD"}

	rec, err := FromForm(f)
	require.NoError(t, err)
	require.Len(t, rec.Education, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{
		rec.Education[0].Institution, rec.Education[1].Institution, rec.Education[2].Institution,
	})
}

func TestFromForm_LinksGetLabels(t *testing.T) {
	f := baseForm()
	f[FieldLinks] = []string{"https://www.github.com/jane linkedin.com/in/jane", "https://blog.jane.co.uk/about"}

	rec, err := FromForm(f)
	require.NoError(t, err)
	require.Len(t, rec.Contact.Links, 3)
	assert.Equal(t, "github.com", rec.Contact.Links[0].Label)
	assert.Equal(t, "linkedin.com", rec.Contact.Links[1].Label)
	assert.Equal(t, "jane.co.uk", rec.Contact.Links[2].Label)
}

func TestCanonicalize_DoesNotMutateInput(t *testing.T) {
	in := &model.ResumeRecord{
		Contact: model.Contact{Name: " Jane ", Email: "jane@example.com"},
		Skills:  []string{"Go", "GO", " "},
	}
	out, err := Canonicalize(in)
	require.NoError(t, err)
	assert.Equal(t, "Jane", out.Contact.Name)
	assert.Equal(t, []string{"Go"}, out.Skills)
	assert.Equal(t, " Jane ", in.Contact.Name)
	assert.Len(t, in.Skills, 3)
}

func TestCanonicalize_PreservesOrder(t *testing.T) {
	in := &model.ResumeRecord{
		Contact:   model.Contact{Name: "Jane", Email: "jane@example.com"},
		Languages: []string{"French", "English", "French"},
		Awards:    []string{"Zeta", "Alpha"},
	}
	out, err := Canonicalize(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"French", "English", "French"}, out.Languages)
	assert.Equal(t, []string{"Zeta", "Alpha"}, out.Awards)
}

func TestCanonicalize_Nil(t *testing.T) {
	_, err := Canonicalize(nil)
	_, ok := domain.AsValidation(err)
	assert.True(t, ok)
}

func TestCanonicalize_SkillsFoldUnicodeCase(t *testing.T) {
	in := &model.ResumeRecord{
		Contact: model.Contact{Name: "Jane", Email: "jane@example.com"},
		// the long s folds to "s", though ToLower leaves it alone
		Skills: []string{"Sass", "\u017Fass", "SASS", "Go", "GO"},
	}
	out, err := Canonicalize(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sass", "Go"}, out.Skills)
}
