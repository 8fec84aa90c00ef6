package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCannedGuidanceKeywordMatch(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"340B program compliance risks 2025 2026", "accumulation tracking and diversion prevention"},
		{"healthcare diversion compliance negative accumulation", "negative accumulation patterns"},
		{"what is a good match rate", "eligibility documentation"},
		{"referral capture best practices", "referral capture processes"},
		{"something entirely unrelated", "Continuous monitoring of compliance metrics"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Contains(t, cannedGuidance(tt.query), tt.want)
		})
	}
}

func TestSearchMockModeNeverErrors(t *testing.T) {
	t.Setenv("USE_MOCK_SEARCH", "true")
	s := NewFallbackSearcher()
	for _, q := range Queries {
		assert.NotEmpty(t, s.Search(context.Background(), q))
	}
}

func TestSearchFallsBackWithoutNetwork(t *testing.T) {
	// mock mode skips both network tiers and lands on canned guidance
	t.Setenv("USE_MOCK_SEARCH", "true")
	s := &FallbackSearcher{}
	got := s.Search(context.Background(), "patient eligibility matching audit requirements")
	assert.Contains(t, got, "eligibility")
}
