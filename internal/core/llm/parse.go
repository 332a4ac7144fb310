package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rgukt-papers/paperhub/internal/models"
)

// The model is asked for application/json, but replies occasionally
// arrive wrapped in a markdown code fence. The parsers below tolerate
// that, and they treat an empty reply as an empty result rather than
// an error so callers degrade gracefully.

func ParseExtractOutput(raw string) ([]models.ExtractedQuestion, error) {
	raw = stripFences(raw)
	if raw == "" {
		return nil, nil
	}
	var out struct {
		Questions []models.ExtractedQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("parse extract output: %w", err)
	}
	return out.Questions, nil
}

func ParseSearchOutput(raw string) ([]string, error) {
	raw = stripFences(raw)
	if raw == "" {
		return nil, nil
	}
	var out struct {
		MatchingPaperIDs []string `json:"matchingPaperIds"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("parse search output: %w", err)
	}
	return out.MatchingPaperIDs, nil
}

func ParseReviewOutput(raw string) (*models.SolutionReview, error) {
	raw = stripFences(raw)
	if raw == "" {
		return &models.SolutionReview{}, nil
	}
	var out models.SolutionReview
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("parse review output: %w", err)
	}
	if out.Confidence < 0 {
		out.Confidence = 0
	}
	if out.Confidence > 1 {
		out.Confidence = 1
	}
	return &out, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
