package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/rgukt-papers/paperhub/internal/core"
	"github.com/rgukt-papers/paperhub/internal/models"
)

const extractPrompt = `You are an expert data entry assistant. Your task is to analyze the provided document (a university question paper) and extract all the questions from it.

Pay close attention to question numbers, including sub-parts (e.g., 1(a), 1(b), 2, 3(a)(i)).
Extract the full text of each question accurately.

Return the result as a JSON object with a 'questions' field: an array of objects with 'questionNumber' and 'text' fields.`

const searchPrompt = `You are an expert search engine for a university question paper database.
Your task is to analyze the user's query and the provided list of papers and identify the ones that best match the query.

User Query: %q

Analyze the query for keywords related to subject, year, exam type, branch, campus, year of study, and semester.
Compare this against the list of available papers provided below.

Return a JSON object containing a list of the IDs of the matching papers in the 'matchingPaperIds' field.
If no papers match, return an empty array.

Here is the list of available papers:
%s`

const chatSystemPrompt = `You are a friendly and expert AI tutor for university students. Your goal is to help students understand concepts and solve problems, not just give them the final answer. Guide them step-by-step. If the question is complex, break it down. Be helpful and encouraging.`

const reviewPrompt = `You are an AI solution reviewer, tasked with providing feedback on student solutions to exam questions.

Analyze the provided solution for potential errors, areas of improvement, and overall clarity.
Provide a list of specific, actionable suggestions that the student can use to refine their answer.
Also provide a confidence score of the suggestions, from 0 to 1. 1 meaning the suggestions are very accurate.

Question: %s
Solution: %s

Format your response as a JSON object with a 'suggestions' field (an array of strings) and a 'confidence' field (a number between 0 and 1).`

// GeminiFlows implements every AI collaborator flow on top of a
// single Gemini client.
type GeminiFlows struct {
	client    *genai.Client
	modelName string
}

func NewGeminiFlows(ctx context.Context, apiKey, modelName string) (*GeminiFlows, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiFlows{client: cl, modelName: modelName}, nil
}

func (g *GeminiFlows) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// ExtractQuestions sends the paper document inline and parses the
// structured question list out of the model's JSON reply.
func (g *GeminiFlows) ExtractQuestions(ctx context.Context, data []byte, mimeType string) ([]models.ExtractedQuestion, error) {
	m := g.jsonModel()
	resp, err := m.GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: data},
		genai.Text(extractPrompt),
	)
	if err != nil {
		return nil, fmt.Errorf("gemini extract: %w", err)
	}
	return ParseExtractOutput(responseText(resp))
}

// SemanticSearch passes compact paper summaries alongside the query.
// An empty query returns no results without an API call.
func (g *GeminiFlows) SemanticSearch(ctx context.Context, query string, papers []models.QuestionPaper) ([]string, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	summaries := make([]paperSummary, 0, len(papers))
	for i := range papers {
		summaries = append(summaries, summarize(&papers[i]))
	}
	ctxJSON, err := json.Marshal(summaries)
	if err != nil {
		return nil, fmt.Errorf("marshal paper summaries: %w", err)
	}

	m := g.jsonModel()
	resp, err := m.GenerateContent(ctx, genai.Text(fmt.Sprintf(searchPrompt, query, ctxJSON)))
	if err != nil {
		return nil, fmt.Errorf("gemini search: %w", err)
	}
	return ParseSearchOutput(responseText(resp))
}

// Chat answers one turn of the private tutor conversation; media is
// an optional image or PDF sent for context.
func (g *GeminiFlows) Chat(ctx context.Context, question string, media *core.Attachment) (string, error) {
	m := g.client.GenerativeModel(g.modelName)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(chatSystemPrompt)},
	}

	parts := []genai.Part{genai.Text(question)}
	if media != nil {
		parts = append(parts, genai.Blob{MIMEType: media.MIMEType, Data: media.Data})
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini chat: %w", err)
	}
	return responseText(resp), nil
}

// ReviewSolution critiques a submitted solution against its question.
func (g *GeminiFlows) ReviewSolution(ctx context.Context, questionText, solutionText string) (*models.SolutionReview, error) {
	m := g.jsonModel()
	resp, err := m.GenerateContent(ctx, genai.Text(fmt.Sprintf(reviewPrompt, questionText, solutionText)))
	if err != nil {
		return nil, fmt.Errorf("gemini review: %w", err)
	}
	return ParseReviewOutput(responseText(resp))
}

func (g *GeminiFlows) jsonModel() *genai.GenerativeModel {
	m := g.client.GenerativeModel(g.modelName)
	m.ResponseMIMEType = "application/json"
	return m
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

// paperSummary is the slimmed-down paper passed to the search prompt;
// solution bodies stay out to keep the context small.
type paperSummary struct {
	ID          string   `json:"id"`
	Subject     string   `json:"subject"`
	Year        int      `json:"year"`
	ExamType    string   `json:"examType"`
	Branch      string   `json:"branch"`
	Campus      string   `json:"campus"`
	YearOfStudy string   `json:"yearOfStudy"`
	Semester    int      `json:"semester"`
	Questions   []string `json:"questions,omitempty"`
}

func summarize(p *models.QuestionPaper) paperSummary {
	s := paperSummary{
		ID:          p.ID,
		Subject:     p.Subject,
		Year:        p.Year,
		ExamType:    string(p.ExamType),
		Branch:      string(p.Branch),
		Campus:      string(p.Campus),
		YearOfStudy: string(p.YearOfStudy),
		Semester:    p.Semester,
	}
	for i := range p.Questions {
		s.Questions = append(s.Questions, p.Questions[i].Text)
	}
	return s
}

var _ core.FlowProvider = (*GeminiFlows)(nil)
