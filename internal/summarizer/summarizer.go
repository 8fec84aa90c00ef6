package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"compliance-insights-go/internal/logger"
	"compliance-insights-go/internal/types"
)

// RegulatoryPromptCap bounds how much regulatory context is embedded in
// the summarization prompt.
const RegulatoryPromptCap = 500

// Summarizer produces a narrative from a composed prompt.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// BuildSummaryPrompt composes the executive-summary request from the
// knowledge-base text, all customer reports, and a truncated regulatory
// excerpt.
func BuildSummaryPrompt(knowledgeBase string, reports []types.CustomerRiskReport, regulatory string) string {
	highRisk := 0
	for _, r := range reports {
		if r.HighRiskCount > 0 {
			highRisk++
		}
	}
	detail, _ := json.MarshalIndent(reports, "", "  ")

	return fmt.Sprintf(`Based on the following compliance analysis, generate a brief executive summary:

Knowledge Base:
%s

High-Risk Customers: %d

Details:
%s

Recent Regulatory Context:
%s...

Provide a 2-3 sentence summary highlighting the most critical risks detected.`,
		knowledgeBase, highRisk, string(detail), Truncate(regulatory, RegulatoryPromptCap))
}

// Truncate caps s at n bytes. Inputs are ASCII-safe report text; byte
// truncation matches the original artifact.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var httpClient = &http.Client{Timeout: 25 * time.Second}

// GatewayClient calls an OpenAI-style chat-completion gateway.
type GatewayClient struct {
	url    string
	model  string
	apiKey string
}

// NewGatewayClient reads LLM_GATEWAY_URL, LLM_MODEL and LLM_API_KEY from
// the environment. Use USE_MOCK_LLM=true for offline demo runs.
func NewGatewayClient() *GatewayClient {
	return &GatewayClient{
		url:    os.Getenv("LLM_GATEWAY_URL"),
		model:  os.Getenv("LLM_MODEL"),
		apiKey: os.Getenv("LLM_API_KEY"),
	}
}

func (c *GatewayClient) Summarize(ctx context.Context, prompt string) (string, error) {
	if os.Getenv("USE_MOCK_LLM") == "true" {
		return "Mock summary: one covered entity shows elevated diversion risk from negative accumulation ordering; match rate and referral capture remain within acceptable bands for the rest.", nil
	}
	log := logger.New().WithField("component", "summarizer")
	if c.url == "" || c.apiKey == "" {
		return "", errors.New("llm gateway not configured")
	}

	reqBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": 0.0,
	}
	data, _ := json.Marshal(reqBody)

	var out string
	var lastErr error
	op := func() error {
		reqCtx, cancel := context.WithTimeout(ctx, 25*time.Second)
		defer cancel()
		req, _ := http.NewRequestWithContext(reqCtx, "POST", c.url, bytes.NewReader(data))
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		resp, err := httpClient.Do(req)
		if err != nil {
			lastErr = err
			log.WithError(err).Warn("llm request failed")
			return err
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("llm server error: %s", string(body))
			return lastErr
		}
		if resp.StatusCode >= 400 {
			lastErr = fmt.Errorf("llm client error: status=%d body=%s", resp.StatusCode, string(body))
			return backoff.Permanent(lastErr)
		}
		content, err := contentFromChoices(body)
		if err != nil {
			lastErr = err
			return lastErr
		}
		out = content
		lastErr = nil
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 45 * time.Second
	if err := backoff.Retry(op, b); err != nil {
		return "", fmt.Errorf("llm summary failed: %w", lastErr)
	}
	return out, nil
}

// contentFromChoices reads openai-style choices[0].message.content
func contentFromChoices(body []byte) (string, error) {
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("llm decode error: %v body=%s", err, string(body))
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("no content in llm response: %s", string(body))
	}
	return parsed.Choices[0].Message.Content, nil
}
