package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"

	"github.com/blackwell-systems/timewise/internal/config"
)

const (
	apiVersion   = "2023-06-01"
	defaultModel = "claude-sonnet-4-20250514"
	maxTokens    = 512
	apiTimeout   = 30 * time.Second
)

// systemPrompt asks for structured output so the caller can decode it
// strictly instead of scraping prose.
const systemPrompt = `You summarize calendar optimization runs for a busy professional.
Given run statistics and the top suggestions, write a 2-3 sentence summary: what was found, what was changed, and the single most useful thing to review.
Be concrete. Never invent suggestions that are not in the input.
Output valid JSON matching: {"summary": "..."}`

// Client calls a messages-style text-generation API.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewClient creates a client for the configured endpoint. Returns nil when
// no API key is configured, which callers treat as "template only".
func NewClient(ep config.AIEndpoint) *Client {
	if ep.APIKey == "" {
		return nil
	}
	model := ep.Model
	if model == "" {
		model = defaultModel
	}
	baseURL := ep.BaseURL
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  ep.APIKey,
		model:   model,
		http:    &http.Client{Timeout: apiTimeout},
	}
}

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Content []apiContentBlock `json:"content"`
	Error   *apiError         `json:"error,omitempty"`
}

type apiContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Summarize asks the API for a run summary.
func (c *Client) Summarize(ctx context.Context, d RunDigest) (string, error) {
	text, err := c.call(ctx, buildPrompt(d))
	if err != nil {
		return "", err
	}
	return parseSummary(text)
}

func buildPrompt(d RunDigest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Events scanned: %d\n", d.EventsScanned)
	fmt.Fprintf(&sb, "Suggestions generated: %d\n", d.Generated)
	fmt.Fprintf(&sb, "Auto-applied: %d\n", d.AutoApplied)
	fmt.Fprintf(&sb, "Queued for review: %d\n", d.Queued)
	fmt.Fprintf(&sb, "Burnout risk: %.1f/10, stress: %.1f/10, meetings/day: %.1f\n",
		d.Workload.BurnoutRisk, d.Workload.StressLevel, d.Workload.MeetingsPerDay)
	if len(d.Top) > 0 {
		sb.WriteString("\nTop suggestions:\n")
		for i, s := range d.Top {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&sb, "- [%s, confidence %.2f] %s: %s\n", s.Type, s.Confidence, s.Title, s.Reason)
		}
	}
	return sb.String()
}

func (c *Client) call(ctx context.Context, userPrompt string) (string, error) {
	body, err := json.Marshal(apiRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages:  []apiMessage{{Role: "user", Content: userPrompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d: %.200s", resp.StatusCode, string(respBytes))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBytes, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("API error: %s: %s", apiResp.Error.Type, apiResp.Error.Message)
	}

	var parts []string
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text content in API response")
	}
	return strings.Join(parts, ""), nil
}

type summarySchema struct {
	Summary string `json:"summary"`
}

// parseSummary decodes the model's structured output. Near-JSON (trailing
// text, code fences, missing quotes) goes through jsonrepair before the
// strict decode; anything still undecodable is an error so the caller falls
// back to the template.
func parseSummary(text string) (string, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var schema summarySchema
	if err := json.Unmarshal([]byte(cleaned), &schema); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(cleaned)
		if repairErr != nil {
			return "", fmt.Errorf("parsing summary: %w", err)
		}
		if err := json.Unmarshal([]byte(repaired), &schema); err != nil {
			return "", fmt.Errorf("parsing repaired summary: %w", err)
		}
	}
	if strings.TrimSpace(schema.Summary) == "" {
		return "", fmt.Errorf("summary response was empty")
	}
	return schema.Summary, nil
}
