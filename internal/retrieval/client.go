package retrieval

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
)

// Fixed natural-language requests issued against the knowledge base.
const (
	MetricsQuery    = "What are the customer metrics for all covered entities? Include customer_id, negative_accum_count, match_rate_percent, and referral_capture_rate_percent in CSV format."
	IndicatorsQuery = "What are the 340B program risk indicators and their thresholds? Include negative accumulation ordering risk, match rate decline risk, and referral capture under-utilization risk."
)

// Client retrieves free text from the knowledge-base gateway.
type Client interface {
	Retrieve(ctx context.Context, query string) (string, error)
}

var httpClient = &http.Client{Timeout: 12 * time.Second}

// GatewayClient talks to a retrieve-and-generate style gateway: one text
// query in, one text reply out.
type GatewayClient struct {
	url    string
	apiKey string
}

// NewGatewayClient reads KB_GATEWAY_URL and KB_API_KEY from the
// environment. Use USE_MOCK_KB=true for offline demo runs.
func NewGatewayClient() *GatewayClient {
	return &GatewayClient{
		url:    os.Getenv("KB_GATEWAY_URL"),
		apiKey: os.Getenv("KB_API_KEY"),
	}
}

type gatewayResponse struct {
	Output struct {
		Text string `json:"text"`
	} `json:"output"`
	Reason string `json:"reason,omitempty"`
}

func (c *GatewayClient) Retrieve(ctx context.Context, query string) (string, error) {
	if os.Getenv("USE_MOCK_KB") == "true" {
		return mockReply(query), nil
	}
	log := logger.New().WithField("component", "retrieval")
	if c.url == "" {
		return "", errors.New("KB_GATEWAY_URL not set")
	}

	reqBody := map[string]any{"input": query}
	data, _ := json.Marshal(reqBody)

	var out string
	var lastErr error
	op := func() error {
		reqCtx, cancel := context.WithTimeout(ctx, 12*time.Second)
		defer cancel()
		req, _ := http.NewRequestWithContext(reqCtx, "POST", c.url, bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			lastErr = err
			log.WithError(err).Warn("kb request failed")
			return err
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("kb server error: %s", string(body))
			return lastErr
		}
		if resp.StatusCode >= 400 {
			lastErr = fmt.Errorf("kb client error: status=%d body=%s", resp.StatusCode, string(body))
			return backoff.Permanent(lastErr)
		}
		var parsed gatewayResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			lastErr = fmt.Errorf("kb decode error: %v body=%s", err, string(body))
			return lastErr
		}
		out = parsed.Output.Text
		lastErr = nil
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 20 * time.Second
	if err := backoff.Retry(op, b); err != nil {
		return "", fmt.Errorf("kb retrieval failed: %w", lastErr)
	}
	log.WithField("chars", len(out)).Info("kb reply received")
	return out, nil
}

// mockReply keeps offline runs deterministic.
func mockReply(query string) string {
	if query == MetricsQuery {
		return "```csv\ncustomer_id,negative_accum_count,match_rate_percent,referral_capture_rate_percent\nCE-001,3,90,55\nCE-002,18,65,35\nCE-003,8,78,62\n```"
	}
	return "340B risk indicators: negative accumulation ordering above 15 events, " +
		"match rates below 70 percent, and referral capture below 40 percent each " +
		"signal elevated compliance risk for a covered entity."
}
