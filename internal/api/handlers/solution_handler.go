package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rgukt-papers/paperhub/internal/core"
	"github.com/rgukt-papers/paperhub/internal/models"
)

type SolutionHandler struct {
	dbclient core.DbClient
}

func NewSolutionHandler(dbclient core.DbClient) *SolutionHandler {
	return &SolutionHandler{dbclient: dbclient}
}

type voteRequest struct {
	Delta int `json:"delta"`
}

// AddSolution appends a community answer to a question. The author is
// the caller's community profile, created on first contribution.
func (h *SolutionHandler) AddSolution(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}

	var draft models.SolutionDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := draft.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	author, err := authorForAccount(r.Context(), h.dbclient, accountID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sol, err := h.dbclient.AddSolution(r.Context(),
		chi.URLParam(r, "paperID"), chi.URLParam(r, "questionID"), draft, *author)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if sol == nil {
		http.Error(w, "paper or question not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(sol)
}

// VoteSolution moves a solution's upvotes (and its author's
// reputation) up or down by one.
func (h *SolutionHandler) VoteSolution(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAccount(w, r); !ok {
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Delta != 1 && req.Delta != -1 {
		http.Error(w, "delta must be 1 or -1", http.StatusBadRequest)
		return
	}

	sol, err := h.dbclient.VoteSolution(r.Context(),
		chi.URLParam(r, "paperID"), chi.URLParam(r, "questionID"), chi.URLParam(r, "solutionID"), req.Delta)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if sol == nil {
		http.Error(w, "solution not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sol)
}
