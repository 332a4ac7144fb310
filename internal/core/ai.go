package core

import (
	"context"

	"github.com/rgukt-papers/paperhub/internal/models"
)

// Attachment is an optional inline file (image or PDF) sent along
// with an AI request.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// FlowProvider is the external AI collaborator behind the assistant
// features. Every flow sends structured input to a hosted model and
// parses a JSON response; empty or absent output degrades to empty
// results at the caller, never a crash.
type FlowProvider interface {
	// ExtractQuestions analyzes an uploaded paper and returns the
	// questions found in it, in document order.
	ExtractQuestions(ctx context.Context, data []byte, mimeType string) ([]models.ExtractedQuestion, error)

	// SemanticSearch matches a natural-language query against the
	// given papers and returns the IDs of the best matches.
	SemanticSearch(ctx context.Context, query string, papers []models.QuestionPaper) ([]string, error)

	// Chat answers one turn of a private tutoring conversation.
	Chat(ctx context.Context, question string, media *Attachment) (string, error)

	// ReviewSolution critiques a submitted solution against its question.
	ReviewSolution(ctx context.Context, questionText, solutionText string) (*models.SolutionReview, error)
}

type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
