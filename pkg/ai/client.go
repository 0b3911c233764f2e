package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"resume-builder/internal/domain"
)

// Client calls an external ai-service chat endpoint to rewrite a single
// resume field. Every failure comes back as a ServiceUnavailable EnhanceError
// so the caller can fall back to the heuristic rewrite.
type Client struct {
	BaseURL  string
	HTTP     *http.Client
	Attempts int
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "http://ai-service:8000"
	}
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		HTTP:     &http.Client{Timeout: timeout},
		Attempts: 2,
	}
}

type chatRequest struct {
	Agent string `json:"agent"`
	Input string `json:"input"`
}

type chatResponse struct {
	Agent  string `json:"agent"`
	Output string `json:"output"`
}

// Enhance asks the ai-service for a rewrite. The service is told to answer
// with {"suggestion": "...", "skills": [...]}; plain text output is accepted
// as the suggestion.
func (c *Client) Enhance(ctx context.Context, req domain.EnhancementRequest) (domain.Suggestion, error) {
	body, err := json.Marshal(chatRequest{Agent: "auto", Input: buildPrompt(req)})
	if err != nil {
		return domain.Suggestion{}, unavailable(err)
	}

	resp, err := c.doPostWithRetry(ctx, "/v1/chat", body)
	if err != nil {
		return domain.Suggestion{}, unavailable(err)
	}
	defer resp.Body.Close()

	rb, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.Suggestion{}, unavailable(err)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Suggestion{}, unavailable(fmt.Errorf("ai-service returned status %d", resp.StatusCode))
	}

	var chat chatResponse
	if err := json.Unmarshal(rb, &chat); err != nil {
		return domain.Suggestion{}, unavailable(fmt.Errorf("decode chat response: %w", err))
	}
	return parseOutput(chat.Output)
}

// doPostWithRetry performs an HTTP POST to the given path with retry/backoff.
func (c *Client) doPostWithRetry(ctx context.Context, path string, body []byte) (*http.Response, error) {
	attempts := max(c.Attempts, 1)
	var lastErr error
	for i := 0; i < attempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.HTTP.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if i < attempts-1 {
			backoff := time.Duration(1<<i) * 100 * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}

// promptContext is the machine-readable part of a prompt.
type promptContext struct {
	Kind           domain.FieldKind `json:"kind"`
	Text           string           `json:"text"`
	JobDescription string           `json:"job_description"`
	Skills         []string         `json:"skills"`
}

const contextMarker = "\n\nContext:\n"

func buildPrompt(req domain.EnhancementRequest) string {
	payload, _ := json.Marshal(promptContext{
		Kind:           req.Kind,
		Text:           req.Text,
		JobDescription: req.JobContext,
		Skills:         req.Skills,
	})
	return "Rewrite the resume field below. Keep every fact, do not invent numbers. " +
		"For kind \"skills\" list skills from job_description that are missing from skills. " +
		`Respond with ONLY a JSON object {"suggestion": string, "skills": [string]}.` +
		contextMarker + string(payload)
}

// ParsePrompt recovers the request from a prompt built by this client. It
// lets a stand-in service answer chat calls without a model.
func ParsePrompt(input string) (domain.EnhancementRequest, error) {
	i := strings.LastIndex(input, contextMarker)
	if i < 0 {
		return domain.EnhancementRequest{}, errors.New("prompt has no context block")
	}
	var pc promptContext
	if err := json.Unmarshal([]byte(input[i+len(contextMarker):]), &pc); err != nil {
		return domain.EnhancementRequest{}, fmt.Errorf("decode prompt context: %w", err)
	}
	return domain.EnhancementRequest{
		Kind:       pc.Kind,
		Text:       pc.Text,
		JobContext: pc.JobDescription,
		Skills:     pc.Skills,
	}, nil
}

// parseOutput reads the model output, tolerating prose or code fences around
// the JSON object.
func parseOutput(out string) (domain.Suggestion, error) {
	out = strings.TrimSpace(out)
	if out == "" {
		return domain.Suggestion{}, unavailable(errors.New("ai-service returned empty output"))
	}
	var s domain.Suggestion
	if err := json.Unmarshal([]byte(out), &s); err == nil {
		return s, nil
	}
	start, end := strings.Index(out, "{"), strings.LastIndex(out, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(out[start:end+1]), &s); err == nil {
			return s, nil
		}
	}
	return domain.Suggestion{Text: out}, nil
}

func unavailable(err error) error {
	return &domain.EnhanceError{Kind: domain.ServiceUnavailable, Cause: err}
}
