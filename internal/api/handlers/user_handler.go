package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rgukt-papers/paperhub/internal/core"
	"github.com/rgukt-papers/paperhub/internal/models"
)

type UserHandler struct {
	dbclient core.DbClient
}

func NewUserHandler(dbclient core.DbClient) *UserHandler {
	return &UserHandler{dbclient: dbclient}
}

type profileRequest struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

// SetupProfile creates the caller's community profile and links it to
// their account.
func (h *UserHandler) SetupProfile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}

	acc, err := h.dbclient.GetAccountByID(r.Context(), accountID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if acc == nil {
		http.Error(w, "account not found", http.StatusUnauthorized)
		return
	}
	if acc.ProfileID != "" {
		http.Error(w, "profile already set up", http.StatusConflict)
		return
	}

	profile := &models.User{Name: req.Name, AvatarURL: req.AvatarURL}
	if err := h.dbclient.CreateProfile(r.Context(), accountID, profile); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(profile)
}

// Leaderboard lists the community's top contributors by reputation.
func (h *UserHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	profiles, err := h.dbclient.ListTopProfiles(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profiles)
}
