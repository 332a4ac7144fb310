package db

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rgukt-papers/paperhub/internal/models"
)

// MemoryStore is an in-memory DbClient used in demo mode (no
// DATABASE_URL) and as the test double. Papers are held newest-first.
// All returned records are deep copies so callers can never mutate
// the store's state behind its back.
type MemoryStore struct {
	mu       sync.RWMutex
	papers   []*models.QuestionPaper
	accounts map[string]*models.Account // by id
	emails   map[string]string          // email -> account id
	profiles map[string]*models.User    // by id
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]*models.Account),
		emails:   make(map[string]string),
		profiles: make(map[string]*models.User),
	}
}

func (s *MemoryStore) Close() error { return nil }

// Accounts

func (s *MemoryStore) CreateAccount(ctx context.Context, acc *models.Account) error {
	if acc == nil || acc.Email == "" {
		return fmt.Errorf("invalid account payload")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(acc.Email)
	if _, taken := s.emails[key]; taken {
		return fmt.Errorf("account exists for %s", acc.Email)
	}
	if acc.ID == "" {
		acc.ID = uuid.NewString()
	}
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = time.Now()
	}
	cp := *acc
	s.accounts[acc.ID] = &cp
	s.emails[key] = acc.ID
	return nil
}

func (s *MemoryStore) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	cp := *s.accounts[id]
	return &cp, nil
}

func (s *MemoryStore) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *acc
	return &cp, nil
}

// Profiles

func (s *MemoryStore) CreateProfile(ctx context.Context, accountID string, profile *models.User) error {
	if profile == nil || profile.Name == "" {
		return fmt.Errorf("invalid profile payload")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	cp := *profile
	s.profiles[profile.ID] = &cp
	if acc, ok := s.accounts[accountID]; ok {
		acc.ProfileID = profile.ID
	}
	return nil
}

func (s *MemoryStore) GetProfile(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) ListTopProfiles(ctx context.Context, limit int) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Reputation != out[j].Reputation {
			return out[i].Reputation > out[j].Reputation
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Papers

func (s *MemoryStore) ListPapers(ctx context.Context) ([]models.QuestionPaper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.QuestionPaper, 0, len(s.papers))
	for _, p := range s.papers {
		out = append(out, *clonePaper(p))
	}
	return out, nil
}

func (s *MemoryStore) GetPaperByID(ctx context.Context, id string) (*models.QuestionPaper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.findPaper(id)
	if p == nil {
		return nil, nil
	}
	return clonePaper(p), nil
}

// CreatePaper validates and inserts the paper at the head of the list
// (listing order is most recently added first). A fresh id is
// allocated unless the caller supplied one, as seed fixtures do.
func (s *MemoryStore) CreatePaper(ctx context.Context, paper *models.QuestionPaper) error {
	if paper == nil {
		return fmt.Errorf("nil paper")
	}
	if err := paper.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if paper.ID == "" {
		paper.ID = uuid.NewString()
	} else if s.findPaper(paper.ID) != nil {
		return fmt.Errorf("duplicate paper id %s", paper.ID)
	}
	now := time.Now()
	if paper.CreatedAt.IsZero() {
		paper.CreatedAt = now
	}
	paper.UpdatedAt = now
	if paper.Questions == nil {
		paper.Questions = []models.Question{}
	}
	for i := range paper.Questions {
		if paper.Questions[i].ID == "" {
			paper.Questions[i].ID = uuid.NewString()
		}
		if paper.Questions[i].Solutions == nil {
			paper.Questions[i].Solutions = []models.Solution{}
		}
	}

	s.papers = append([]*models.QuestionPaper{clonePaper(paper)}, s.papers...)
	return nil
}

// UpdatePaper merges the patch over the existing record, preserving
// identity and the question list unless the patch replaces it. A nil
// result with a nil error means the id is unknown; nothing was
// mutated in that case.
func (s *MemoryStore) UpdatePaper(ctx context.Context, id string, patch models.PaperPatch) (*models.QuestionPaper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findPaper(id)
	if p == nil {
		return nil, nil
	}

	merged := clonePaper(p)
	applyPatch(merged, patch)
	merged.ID = p.ID
	merged.CreatedAt = p.CreatedAt
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	merged.UpdatedAt = time.Now()

	for i := range s.papers {
		if s.papers[i].ID == id {
			s.papers[i] = merged
			break
		}
	}
	return clonePaper(merged), nil
}

// AddSolution appends one solution with a fresh id, zero upvotes and
// a now-timestamp. Unknown paper or question ids return nil with no
// mutation.
func (s *MemoryStore) AddSolution(ctx context.Context, paperID, questionID string, draft models.SolutionDraft, author models.User) (*models.Solution, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findPaper(paperID)
	if p == nil {
		return nil, nil
	}
	q := findQuestion(p, questionID)
	if q == nil {
		return nil, nil
	}

	sol := models.Solution{
		ID:          uuid.NewString(),
		Author:      author,
		ContentType: draft.ContentType,
		Content:     draft.Content,
		Upvotes:     0,
		CreatedAt:   time.Now(),
	}
	q.Solutions = append(q.Solutions, sol)
	cp := sol
	return &cp, nil
}

// VoteSolution moves the solution's upvotes and the author's
// reputation by delta. Upvotes may go negative.
func (s *MemoryStore) VoteSolution(ctx context.Context, paperID, questionID, solutionID string, delta int) (*models.Solution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findPaper(paperID)
	if p == nil {
		return nil, nil
	}
	q := findQuestion(p, questionID)
	if q == nil {
		return nil, nil
	}
	for i := range q.Solutions {
		if q.Solutions[i].ID == solutionID {
			q.Solutions[i].Upvotes += delta
			if prof, ok := s.profiles[q.Solutions[i].Author.ID]; ok {
				prof.Reputation += delta
				q.Solutions[i].Author.Reputation = prof.Reputation
			}
			cp := q.Solutions[i]
			return &cp, nil
		}
	}
	return nil, nil
}

// callers must hold the lock
func (s *MemoryStore) findPaper(id string) *models.QuestionPaper {
	for _, p := range s.papers {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func findQuestion(p *models.QuestionPaper, id string) *models.Question {
	for i := range p.Questions {
		if p.Questions[i].ID == id {
			return &p.Questions[i]
		}
	}
	return nil
}

func applyPatch(p *models.QuestionPaper, patch models.PaperPatch) {
	if patch.Subject != nil {
		p.Subject = *patch.Subject
	}
	if patch.Year != nil {
		p.Year = *patch.Year
	}
	if patch.ExamType != nil {
		p.ExamType = *patch.ExamType
	}
	if patch.Branch != nil {
		p.Branch = *patch.Branch
	}
	if patch.Campus != nil {
		p.Campus = *patch.Campus
	}
	if patch.YearOfStudy != nil {
		p.YearOfStudy = *patch.YearOfStudy
	}
	if patch.Semester != nil {
		p.Semester = *patch.Semester
	}
	if patch.FileURL != nil {
		p.FileURL = *patch.FileURL
	}
	if patch.Questions != nil {
		qs := make([]models.Question, len(patch.Questions))
		copy(qs, patch.Questions)
		for i := range qs {
			if qs[i].ID == "" {
				qs[i].ID = uuid.NewString()
			}
			qs[i].Solutions = cloneSolutions(qs[i].Solutions)
		}
		p.Questions = qs
	}
}

func clonePaper(p *models.QuestionPaper) *models.QuestionPaper {
	cp := *p
	cp.Questions = make([]models.Question, len(p.Questions))
	for i := range p.Questions {
		cp.Questions[i] = p.Questions[i]
		cp.Questions[i].Solutions = cloneSolutions(p.Questions[i].Solutions)
	}
	return &cp
}

func cloneSolutions(in []models.Solution) []models.Solution {
	out := make([]models.Solution, len(in))
	copy(out, in)
	return out
}
