package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/domain"
	"resume-builder/internal/enhance"
	"resume-builder/pkg/ai"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("log:\n  level: error\n"), 0o644))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRenderHTML(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "resume.json")
	require.NoError(t, os.WriteFile(in, []byte(`{
		"contact": {"name": "Jane Doe", "email": "jane@example.com"},
		"skills": ["Python", "python", "SQL"],
		"projects": [{"title": "Billing", "description": "worked on invoices"}]
	}`), 0o644))
	out := filepath.Join(dir, "jane.html")

	stdout, err := execute(t, "render", "--input", in, "--out", out, "--html", "--enhance")
	require.NoError(t, err)
	assert.Contains(t, stdout, "wrote "+out)

	html, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<li>Python</li>")
	assert.Contains(t, string(html), "Developed invoices, improving efficiency.")
}

func TestRenderInvalidInput(t *testing.T) {
	in := filepath.Join(t.TempDir(), "resume.json")
	require.NoError(t, os.WriteFile(in, []byte(`{"contact": {"name": "Jane"}}`), 0o644))

	_, err := execute(t, "render", "--input", in, "--html")
	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, domain.MissingField, ve.Kind)
}

func TestAnalyze(t *testing.T) {
	job := filepath.Join(t.TempDir(), "job.txt")
	require.NoError(t, os.WriteFile(job, []byte("Senior Python engineer, 5+ years of experience, Docker and SQL."), 0o644))

	stdout, err := execute(t, "analyze", "--job", job)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"key_skills"`)
	assert.Contains(t, stdout, `"Python"`)
	assert.Contains(t, stdout, `"experience_years": 5`)
	assert.NotContains(t, stdout, `"match"`)
}

func TestAnalyze_RankResumes(t *testing.T) {
	dir := t.TempDir()
	job := filepath.Join(dir, "job.txt")
	require.NoError(t, os.WriteFile(job, []byte("SQL and Docker, 2 years of experience"), 0o644))
	ben := filepath.Join(dir, "ben.json")
	require.NoError(t, os.WriteFile(ben, []byte(`{"contact": {"name": "Ben", "email": "ben@example.com"}, "skills": ["Rust"]}`), 0o644))
	ana := filepath.Join(dir, "ana.json")
	require.NoError(t, os.WriteFile(ana, []byte(`{"contact": {"name": "Ana", "email": "ana@example.com"}, "skills": ["SQL", "Docker"]}`), 0o644))

	stdout, err := execute(t, "analyze", "--job", job, "--resumes", ben+","+ana)
	require.NoError(t, err)

	var out struct {
		Ranking enhance.CandidateRanking `json:"ranking"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, 2, out.Ranking.TotalCandidates)
	require.Len(t, out.Ranking.RankedCandidates, 2)
	assert.Equal(t, "Ana", out.Ranking.RankedCandidates[0].Name)
	assert.Equal(t, 1, out.Ranking.RankedCandidates[0].Index)
	assert.Equal(t, "Ben", out.Ranking.RankedCandidates[1].Name)
}

func TestMockAI_RoundTrip(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	app := mockAIApp(enhance.NewHeuristic(nil))
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	client := ai.NewClient("http://"+ln.Addr().String(), 5*time.Second)
	var s domain.Suggestion
	require.Eventually(t, func() bool {
		s, err = client.Enhance(context.Background(), domain.EnhancementRequest{
			Kind: domain.KindExperienceBullet,
			Text: "helped with 3 migrations",
		})
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, "Led 3 migrations.", s.Text)
	assert.False(t, strings.Contains(s.Text, "efficiency"))
}
