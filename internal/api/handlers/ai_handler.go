package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/rgukt-papers/paperhub/internal/core"
	"github.com/rgukt-papers/paperhub/internal/models"
)

// AIHandler fronts the external AI collaborators: semantic search,
// the private tutor chat and the solution reviewer. Every flow
// degrades to an empty result on model failure; AI being down never
// blocks the rest of the app.
type AIHandler struct {
	dbclient core.DbClient
	flows    core.FlowProvider
	embedder core.EmbeddingProvider // nil in demo mode
	index    core.VectorIndex       // nil in demo mode
}

func NewAIHandler(dbclient core.DbClient, flows core.FlowProvider, embedder core.EmbeddingProvider, index core.VectorIndex) *AIHandler {
	return &AIHandler{dbclient: dbclient, flows: flows, embedder: embedder, index: index}
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	MatchingPaperIDs []string               `json:"matchingPaperIds"`
	Papers           []models.QuestionPaper `json:"papers"`
}

type chatRequest struct {
	Question     string `json:"questionText"`
	MediaDataURI string `json:"mediaDataUri,omitempty"`
}

type reviewRequest struct {
	PaperID      string `json:"paperId,omitempty"`
	QuestionID   string `json:"questionId,omitempty"`
	QuestionText string `json:"questionText,omitempty"`
	SolutionText string `json:"solutionText"`
}

// Search runs the semantic search flow. With a vector index available
// the candidate set is shortlisted by embedding similarity first;
// otherwise the full collection goes to the model, as the original
// search did.
func (h *AIHandler) Search(w http.ResponseWriter, r *http.Request) {
	if h.flows == nil {
		http.Error(w, "AI assistant is not configured", http.StatusServiceUnavailable)
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	papers, err := h.candidatePapers(r, req.Query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	ids, err := h.flows.SemanticSearch(r.Context(), req.Query, papers)
	if err != nil {
		// degrade to empty results rather than failing the search UI
		log.Printf("semantic search failed: %v", err)
		ids = nil
	}

	byID := make(map[string]models.QuestionPaper, len(papers))
	for _, p := range papers {
		byID[p.ID] = p
	}
	matched := make([]models.QuestionPaper, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			matched = append(matched, p)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(searchResponse{MatchingPaperIDs: ids, Papers: matched})
}

// Chat handles one turn of the private tutor conversation.
func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if h.flows == nil {
		http.Error(w, "AI assistant is not configured", http.StatusServiceUnavailable)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		http.Error(w, "questionText required", http.StatusBadRequest)
		return
	}

	var media *core.Attachment
	if req.MediaDataURI != "" {
		m, err := parseDataURI(req.MediaDataURI)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		media = m
	}

	answer, err := h.flows.Chat(r.Context(), req.Question, media)
	if err != nil {
		http.Error(w, fmt.Sprintf("chat failed: %v", err), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"answer": answer})
}

// Review critiques a submitted solution. The question text may be
// supplied directly or resolved from a paper/question id pair.
func (h *AIHandler) Review(w http.ResponseWriter, r *http.Request) {
	if h.flows == nil {
		http.Error(w, "AI assistant is not configured", http.StatusServiceUnavailable)
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.SolutionText) == "" {
		http.Error(w, "solutionText required", http.StatusBadRequest)
		return
	}

	questionText := req.QuestionText
	if questionText == "" && req.PaperID != "" && req.QuestionID != "" {
		paper, err := h.dbclient.GetPaperByID(r.Context(), req.PaperID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if paper != nil {
			for _, q := range paper.Questions {
				if q.ID == req.QuestionID {
					questionText = q.Text
					break
				}
			}
		}
	}
	if questionText == "" {
		http.Error(w, "question not found", http.StatusBadRequest)
		return
	}

	review, err := h.flows.ReviewSolution(r.Context(), questionText, req.SolutionText)
	if err != nil {
		http.Error(w, fmt.Sprintf("review failed: %v", err), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(review)
}

// candidatePapers shortlists via the vector index when one is wired,
// falling back to the whole collection.
func (h *AIHandler) candidatePapers(r *http.Request, query string) ([]models.QuestionPaper, error) {
	ctx := r.Context()

	if h.index != nil && h.embedder != nil && strings.TrimSpace(query) != "" {
		vecs, err := h.embedder.EmbedTexts(ctx, []string{query})
		if err == nil && len(vecs) == 1 {
			ids, serr := h.index.SearchPapersByEmbedding(ctx, vecs[0], 20)
			if serr == nil && len(ids) > 0 {
				papers := make([]models.QuestionPaper, 0, len(ids))
				for _, id := range ids {
					p, gerr := h.dbclient.GetPaperByID(ctx, id)
					if gerr != nil {
						return nil, gerr
					}
					if p != nil {
						papers = append(papers, *p)
					}
				}
				return papers, nil
			}
		}
		// index unavailable or empty: fall through to the full list
	}
	return h.dbclient.ListPapers(ctx)
}

// parseDataURI decodes a "data:<mimetype>;base64,<data>" URI into an
// attachment for the AI flows.
func parseDataURI(uri string) (*core.Attachment, error) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, fmt.Errorf("not a data URI")
	}
	rest := strings.TrimPrefix(uri, "data:")
	sep := strings.Index(rest, ";base64,")
	if sep < 0 {
		return nil, fmt.Errorf("data URI must be base64 encoded")
	}
	mimeType := rest[:sep]
	data, err := base64.StdEncoding.DecodeString(rest[sep+len(";base64,"):])
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	return &core.Attachment{MIMEType: mimeType, Data: data}, nil
}
