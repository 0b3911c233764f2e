package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/config"
	"resume-builder/internal/domain"
	"resume-builder/internal/enhance"
	"resume-builder/internal/render"
	"resume-builder/internal/usecase"
)

type fakeExporter struct{ err error }

func (f fakeExporter) Export(_ context.Context, doc *render.Document) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 " + doc.Filename), nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config, exp usecase.Exporter) *Server {
	t.Helper()
	r, err := render.New("")
	require.NoError(t, err)
	h := enhance.NewHeuristic(nil)
	reg := prometheus.NewRegistry()
	p := usecase.NewPipeline(r, exp, h, nil, usecase.NewMetrics(reg))
	return NewServer(cfg, Deps{
		Resume:   NewHandler(p, nil),
		AI:       NewAIHandler(p.Enhancer(), h),
		Gatherer: reg,
		Health:   func() fiber.Map { return fiber.Map{"enhancer": "heuristic"} },
	})
}

func postForm(t *testing.T, s *Server, path string, form url.Values) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := s.App.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func postJSON(t *testing.T, s *Server, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App.Test(req, -1)
	require.NoError(t, err)

	out := map[string]any{}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func janeForm() url.Values {
	return url.Values{
		"name":                  {"Jane Doe"},
		"email":                 {"jane@example.com"},
		"skills":                {"Python, python, SQL"},
		"education_institution": {"MIT", "", "Stanford"},
		"education_degree":      {"BSc", "", "MSc"},
		"project_title":         {"Billing"},
		"project_description":   {"Worked on the billing service"},
	}
}

func TestForm(t *testing.T) {
	s := newTestServer(t, testConfig(t), fakeExporter{})
	for _, path := range []string{"/", "/resume/"} {
		resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
		assert.Contains(t, readBody(t, resp), `name="education_institution"`)
	}
}

func TestGenerate_PDF(t *testing.T) {
	s := newTestServer(t, testConfig(t), fakeExporter{})
	resp := postForm(t, s, "/generate-resume/", janeForm())

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Jane_Doe_resume.pdf"`, resp.Header.Get("Content-Disposition"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.True(t, strings.HasPrefix(readBody(t, resp), "%PDF"))
}

func TestGenerate_Multipart(t *testing.T) {
	s := newTestServer(t, testConfig(t), fakeExporter{})

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("name", "Jane Doe"))
	require.NoError(t, w.WriteField("email", "jane@example.com"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/generate-resume/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := s.App.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPreview_EscapesAndOrders(t *testing.T) {
	s := newTestServer(t, testConfig(t), fakeExporter{})
	form := janeForm()
	form.Set("skills", "<script>alert(1)</script>, Go")

	resp := postForm(t, s, "/preview/", form)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html := readBody(t, resp)

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Less(t, strings.Index(html, `id="skills"`), strings.Index(html, `id="education"`))
	assert.NotContains(t, html, `id="awards"`)
}

func TestPreview_Enhance(t *testing.T) {
	s := newTestServer(t, testConfig(t), fakeExporter{})
	form := janeForm()
	form.Set("enhance", "on")

	html := readBody(t, postForm(t, s, "/preview/", form))
	assert.Contains(t, html, "Developed the billing service, improving efficiency.")
}

func TestGenerate_ValidationErrors(t *testing.T) {
	s := newTestServer(t, testConfig(t), fakeExporter{})

	tests := []struct {
		name  string
		edit  func(url.Values)
		kind  string
		field string
	}{
		{"missing name", func(v url.Values) { v.Del("name") }, "MissingField", "name"},
		{"missing email", func(v url.Values) { v.Set("email", "  ") }, "MissingField", "email"},
		{"bad email", func(v url.Values) { v.Set("email", "jane@") }, "InvalidFormat", "email"},
		{"too many education entries", func(v url.Values) {
			v["education_institution"] = []string{"A", "B", "C", "D", "E"}
		}, "TooManyEntries", "education"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := janeForm()
			tt.edit(form)
			resp := postForm(t, s, "/generate-resume/", form)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.kind, body["kind"])
			assert.Equal(t, tt.field, body["field"])
			assert.Equal(t, "normalize", body["stage"])
		})
	}
}

func TestGenerate_ExportErrors(t *testing.T) {
	tests := []struct {
		kind   domain.ExportKind
		status int
	}{
		{domain.ContentOverflow, http.StatusUnprocessableEntity},
		{domain.RenderFailure, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			exp := fakeExporter{err: domain.NewExportError(tt.kind, errors.New("chrome said no"))}
			s := newTestServer(t, testConfig(t), exp)
			resp := postForm(t, s, "/generate-resume/", janeForm())
			assert.Equal(t, tt.status, resp.StatusCode)

			body := readBody(t, resp)
			assert.Contains(t, body, "could not generate document")
			assert.NotContains(t, body, "chrome said no")
		})
	}
}

func TestAPIResume(t *testing.T) {
	s := newTestServer(t, testConfig(t), fakeExporter{})
	rec := map[string]any{
		"contact": map[string]any{"name": "Jane Doe", "email": "jane@example.com"},
		"skills":  []string{"Python", "python", "SQL"},
	}

	resp, _ := postJSON(t, s, "/api/resume?format=html", rec)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html := readBody(t, resp)
	assert.Equal(t, 1, strings.Count(html, "<li>Python</li>"))

	resp, _ = postJSON(t, s, "/api/resume", rec)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))

	resp, body := postJSON(t, s, "/api/resume", map[string]any{"skills": []string{"Go"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "MissingField", body["kind"])
}

func TestAI_Enhance(t *testing.T) {
	s := newTestServer(t, testConfig(t), fakeExporter{})

	resp, body := postJSON(t, s, "/ai/enhance/", map[string]any{
		"kind":            "skills",
		"job_description": "We need strong SQL and Docker experience",
		"skills":          []string{"SQL"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []any{"Docker"}, body["skills"])

	resp, body = postJSON(t, s, "/ai/enhance/", map[string]any{"kind": "poem", "text": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}

func TestAI_EnhanceSummary(t *testing.T) {
	s := newTestServer(t, testConfig(t), fakeExporter{})
	_, body := postJSON(t, s, "/ai/enhance-summary/", map[string]any{
		"summary": "",
		"skills":  []string{"Go", "SQL"},
		"experience": []map[string]any{
			{"employer": "Acme"},
			{"employer": "Initech"},
			{"employer": ""},
		},
	})
	assert.Equal(t, true, body["success"])
	assert.Equal(t,
		"Dedicated professional with strong technical skills with expertise in Go, SQL and 2+ years of industry experience. "+
			"Proven track record of delivering high-quality solutions and driving business growth through technology innovation.",
		body["enhanced_summary"])
}

func TestAI_AnalyzeJob(t *testing.T) {
	s := newTestServer(t, testConfig(t), fakeExporter{})

	resp, body := postJSON(t, s, "/ai/analyze-job/", map[string]any{"job_description": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Job description is required", body["error"])

	_, body = postJSON(t, s, "/ai/analyze-job/", map[string]any{
		"job_description": "Python developer with 4 years of experience in Docker",
	})
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []any{"Python", "Docker"}, body["key_skills"])
	assert.Equal(t, float64(4), body["experience_years"])
}

func TestAI_SuggestSkills(t *testing.T) {
	s := newTestServer(t, testConfig(t), fakeExporter{})
	_, a := postJSON(t, s, "/ai/suggest-skills/", map[string]any{"skills": []string{"Python"}})
	_, b := postJSON(t, s, "/ai/suggest-skills/", map[string]any{"skills": []string{"Python"}})

	assert.Equal(t, a, b)
	suggested := a["suggested_skills"].([]any)
	assert.Len(t, suggested, 8)
	assert.NotContains(t, suggested, "Python")
	assert.Contains(t, a, "categories")
}

func TestAI_MatchResume(t *testing.T) {
	s := newTestServer(t, testConfig(t), fakeExporter{})
	_, body := postJSON(t, s, "/ai/match-resume/", map[string]any{
		"job_description": "Python and Docker",
		"resume_data": map[string]any{
			"contact": map[string]any{"name": "Jane"},
			"skills":  []string{"python"},
		},
	})
	assert.Equal(t, true, body["success"])
	assert.InDelta(t, 57.97, body["match_score"], 0.001)
	assert.Equal(t, 50.0, body["skill_coverage"])
	assert.Equal(t, []any{"Python"}, body["matched_skills"])
	assert.Equal(t, []any{"Docker"}, body["missing_skills"])

	resp, body := postJSON(t, s, "/ai/match-resume/", map[string]any{"job_description": "Go"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}

func TestAI_RankCandidates(t *testing.T) {
	s := newTestServer(t, testConfig(t), fakeExporter{})
	_, body := postJSON(t, s, "/ai/rank-candidates/", map[string]any{
		"job_description": "SQL and Docker",
		"candidates": []map[string]any{
			{"contact": map[string]any{"name": "Ben"}, "skills": []string{"Rust"}},
			{"contact": map[string]any{"name": "Ana"}, "skills": []string{"SQL", "Docker"}},
			{"contact": map[string]any{"name": "Cy"}, "skills": []string{"Rust"}},
		},
	})
	require.Equal(t, true, body["success"])
	assert.Equal(t, float64(3), body["total_candidates"])

	ranked := body["ranked_candidates"].([]any)
	require.Len(t, ranked, 3)
	var names []any
	for _, r := range ranked {
		names = append(names, r.(map[string]any)["name"])
	}
	assert.Equal(t, []any{"Ana", "Ben", "Cy"}, names)
	top := ranked[0].(map[string]any)
	assert.Equal(t, 1.0, top["skill_score"])
	assert.Equal(t, []any{"SQL", "Docker"}, top["matched_skills"])

	resp, body := postJSON(t, s, "/ai/rank-candidates/", map[string]any{"job_description": "SQL", "candidates": []any{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Job description and candidates are required", body["error"])
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, testConfig(t), fakeExporter{})
	postForm(t, s, "/generate-resume/", janeForm())

	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Contains(t, readBody(t, resp), `"enhancer":"heuristic"`)

	resp, err = s.App.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `resume_pipeline_stage_total{outcome="ok",stage="export"} 1`)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMin: 1, Burst: 2}
	s := newTestServer(t, cfg, fakeExporter{})
	t.Cleanup(s.limiter.close)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, _ := postJSON(t, s, "/ai/suggest-skills/", map[string]any{})
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t, testConfig(t), fakeExporter{})
	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
