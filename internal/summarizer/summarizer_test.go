package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"compliance-insights-go/internal/types"
)

func TestBuildSummaryPromptCountsHighRiskCustomers(t *testing.T) {
	reports := []types.CustomerRiskReport{
		{CustomerID: "CE-001", HighRiskCount: 2},
		{CustomerID: "CE-002", HighRiskCount: 0, LowRiskCount: 3},
		{CustomerID: "CE-003", HighRiskCount: 1},
	}
	prompt := BuildSummaryPrompt("kb text", reports, "reg context")

	assert.Contains(t, prompt, "High-Risk Customers: 2")
	assert.Contains(t, prompt, "kb text")
	assert.Contains(t, prompt, "reg context")
	assert.Contains(t, prompt, `"customer_id": "CE-001"`)
}

func TestBuildSummaryPromptTruncatesRegulatoryContext(t *testing.T) {
	long := strings.Repeat("z", RegulatoryPromptCap+200)
	prompt := BuildSummaryPrompt("", nil, long)

	assert.Contains(t, prompt, strings.Repeat("z", RegulatoryPromptCap))
	assert.NotContains(t, prompt, strings.Repeat("z", RegulatoryPromptCap+1))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "", Truncate("", 5))
}

func TestContentFromChoices(t *testing.T) {
	body := []byte(`{"choices":[{"message":{"content":"two sentence summary"}}]}`)
	got, err := contentFromChoices(body)
	assert.NoError(t, err)
	assert.Equal(t, "two sentence summary", got)
}

func TestContentFromChoicesErrors(t *testing.T) {
	_, err := contentFromChoices([]byte(`{"choices":[]}`))
	assert.Error(t, err)

	_, err = contentFromChoices([]byte(`not json`))
	assert.Error(t, err)
}
