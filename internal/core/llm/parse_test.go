package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtractOutput(t *testing.T) {
	raw := `{"questions":[{"questionNumber":"1(a)","text":"Define entropy."},{"questionNumber":"2","text":"State the first law."}]}`

	qs, err := ParseExtractOutput(raw)
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, "1(a)", qs[0].QuestionNumber)
	assert.Equal(t, "State the first law.", qs[1].Text)
}

func TestParseExtractOutput_MarkdownFence(t *testing.T) {
	raw := "```json\n{\"questions\":[{\"questionNumber\":\"3\",\"text\":\"Explain Carnot cycle.\"}]}\n```"

	qs, err := ParseExtractOutput(raw)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "3", qs[0].QuestionNumber)
}

func TestParseExtractOutput_EmptyAndGarbage(t *testing.T) {
	qs, err := ParseExtractOutput("")
	require.NoError(t, err)
	assert.Empty(t, qs)

	qs, err = ParseExtractOutput("   \n ")
	require.NoError(t, err)
	assert.Empty(t, qs)

	_, err = ParseExtractOutput("not json at all")
	assert.Error(t, err)
}

func TestParseSearchOutput(t *testing.T) {
	ids, err := ParseSearchOutput(`{"matchingPaperIds":["paper1","paper3"]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"paper1", "paper3"}, ids)

	ids, err = ParseSearchOutput("```\n{\"matchingPaperIds\":[]}\n```")
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = ParseSearchOutput("")
	require.NoError(t, err)
	assert.Nil(t, ids)
}

func TestParseReviewOutput_ClampsConfidence(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"in range", `{"suggestions":["Show the working."],"confidence":0.85}`, 0.85},
		{"above one", `{"suggestions":[],"confidence":4.2}`, 1},
		{"below zero", `{"suggestions":[],"confidence":-0.3}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			review, err := ParseReviewOutput(tt.raw)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, review.Confidence, 1e-9)
		})
	}
}

func TestParseReviewOutput_EmptyReply(t *testing.T) {
	review, err := ParseReviewOutput("")
	require.NoError(t, err)
	require.NotNil(t, review)
	assert.Empty(t, review.Suggestions)
	assert.Zero(t, review.Confidence)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences(`{"a":1}`))
	assert.Equal(t, "", stripFences("  \n"))
}
