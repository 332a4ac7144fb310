package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgukt-papers/paperhub/internal/models"
)

func validPaper() *models.QuestionPaper {
	return &models.QuestionPaper{
		Subject:     "Signals and Systems",
		Year:        2024,
		ExamType:    models.ExamMid1,
		Branch:      models.BranchECE,
		Campus:      models.CampusNuzvid,
		YearOfStudy: models.YearE2,
		Semester:    1,
		FileURL:     "https://example.com/papers/signals.pdf",
		Questions: []models.Question{
			{QuestionNumber: "1a", Text: "Define a linear time-invariant system."},
			{QuestionNumber: "2b", Text: "State the sampling theorem."},
		},
	}
}

func TestCreatePaper_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	paper := validPaper()
	require.NoError(t, store.CreatePaper(ctx, paper))
	require.NotEmpty(t, paper.ID, "a fresh id must be assigned")
	require.False(t, paper.CreatedAt.IsZero())

	got, err := store.GetPaperByID(ctx, paper.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, paper.ID, got.ID)
	assert.Equal(t, "Signals and Systems", got.Subject)
	assert.Equal(t, 2, got.TotalQuestions())
	for _, q := range got.Questions {
		assert.NotEmpty(t, q.ID)
		assert.NotNil(t, q.Solutions)
	}
}

func TestCreatePaper_RejectsInvalid(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	bad := validPaper()
	bad.ExamType = "mid9"
	assert.Error(t, store.CreatePaper(ctx, bad))

	papers, err := store.ListPapers(ctx)
	require.NoError(t, err)
	assert.Empty(t, papers, "a rejected paper must not be stored")
}

func TestCreatePaper_PUCBranchInvariant(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	puc := validPaper()
	puc.YearOfStudy = models.YearP1
	puc.Branch = models.BranchECE
	assert.Error(t, store.CreatePaper(ctx, puc), "PUC papers must use the common branch")

	puc = validPaper()
	puc.YearOfStudy = models.YearP1
	puc.Branch = models.BranchCommon
	assert.NoError(t, store.CreatePaper(ctx, puc))
}

func TestCreatePaper_DuplicateID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first := validPaper()
	first.ID = "fixed-id"
	require.NoError(t, store.CreatePaper(ctx, first))

	second := validPaper()
	second.ID = "fixed-id"
	assert.Error(t, store.CreatePaper(ctx, second))
}

func TestListPapers_NewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for _, id := range []string{"older", "middle", "newest"} {
		p := validPaper()
		p.ID = id
		require.NoError(t, store.CreatePaper(ctx, p))
	}

	papers, err := store.ListPapers(ctx)
	require.NoError(t, err)
	require.Len(t, papers, 3)
	assert.Equal(t, "newest", papers[0].ID)
	assert.Equal(t, "middle", papers[1].ID)
	assert.Equal(t, "older", papers[2].ID)
}

func TestGetPaperByID_UnknownIsNilNil(t *testing.T) {
	store := NewMemoryStore()

	got, err := store.GetPaperByID(context.Background(), "no-such-paper")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdatePaper_PartialPatch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	paper := validPaper()
	require.NoError(t, store.CreatePaper(ctx, paper))

	year := 2025
	updated, err := store.UpdatePaper(ctx, paper.ID, models.PaperPatch{Year: &year})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, paper.ID, updated.ID, "identity survives updates")
	assert.Equal(t, 2025, updated.Year)
	assert.Equal(t, paper.Subject, updated.Subject)
	assert.Equal(t, paper.ExamType, updated.ExamType)
	assert.Equal(t, paper.FileURL, updated.FileURL)
	assert.Len(t, updated.Questions, 2, "questions stay untouched without a questions patch")
	assert.Equal(t, paper.CreatedAt, updated.CreatedAt)
}

func TestUpdatePaper_ReplacesQuestionsWholesale(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	paper := validPaper()
	require.NoError(t, store.CreatePaper(ctx, paper))

	patch := models.PaperPatch{Questions: []models.Question{
		{QuestionNumber: "5", Text: "Derive the Fourier transform of a rectangular pulse."},
	}}
	updated, err := store.UpdatePaper(ctx, paper.ID, patch)
	require.NoError(t, err)
	require.NotNil(t, updated)

	require.Len(t, updated.Questions, 1)
	assert.Equal(t, "5", updated.Questions[0].QuestionNumber)
	assert.NotEmpty(t, updated.Questions[0].ID)
}

func TestUpdatePaper_UnknownIDIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.CreatePaper(ctx, validPaper()))

	before, err := store.ListPapers(ctx)
	require.NoError(t, err)

	subject := "Changed"
	updated, err := store.UpdatePaper(ctx, "no-such-paper", models.PaperPatch{Subject: &subject})
	require.NoError(t, err)
	assert.Nil(t, updated)

	after, err := store.ListPapers(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after, "an unknown id must leave the collection untouched")
}

func TestUpdatePaper_InvalidPatchLeavesRecordUntouched(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	paper := validPaper()
	require.NoError(t, store.CreatePaper(ctx, paper))

	bad := models.Branch("ROBOTICS")
	_, err := store.UpdatePaper(ctx, paper.ID, models.PaperPatch{Branch: &bad})
	require.Error(t, err)

	got, err := store.GetPaperByID(ctx, paper.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BranchECE, got.Branch)
}

func TestAddSolution_AppendsOne(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	paper := validPaper()
	require.NoError(t, store.CreatePaper(ctx, paper))
	questionID := paper.Questions[0].ID

	author := models.User{ID: "u1", Name: "Anusha"}
	draft := models.SolutionDraft{ContentType: models.ContentText, Content: "An LTI system is linear and shift-invariant."}

	sol, err := store.AddSolution(ctx, paper.ID, questionID, draft, author)
	require.NoError(t, err)
	require.NotNil(t, sol)

	assert.NotEmpty(t, sol.ID)
	assert.Zero(t, sol.Upvotes)
	assert.False(t, sol.CreatedAt.IsZero())
	assert.Equal(t, author.ID, sol.Author.ID)

	got, err := store.GetPaperByID(ctx, paper.ID)
	require.NoError(t, err)
	require.Len(t, got.Questions[0].Solutions, 1)
	assert.Empty(t, got.Questions[1].Solutions, "other questions stay untouched")
}

func TestAddSolution_UnknownIDsAreNoOps(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	paper := validPaper()
	require.NoError(t, store.CreatePaper(ctx, paper))

	before, err := store.ListPapers(ctx)
	require.NoError(t, err)

	draft := models.SolutionDraft{ContentType: models.ContentText, Content: "answer"}

	sol, err := store.AddSolution(ctx, "no-such-paper", paper.Questions[0].ID, draft, models.User{ID: "u1"})
	require.NoError(t, err)
	assert.Nil(t, sol)

	sol, err = store.AddSolution(ctx, paper.ID, "no-such-question", draft, models.User{ID: "u1"})
	require.NoError(t, err)
	assert.Nil(t, sol)

	after, err := store.ListPapers(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAddSolution_RejectsInvalidDraft(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	paper := validPaper()
	require.NoError(t, store.CreatePaper(ctx, paper))

	_, err := store.AddSolution(ctx, paper.ID, paper.Questions[0].ID,
		models.SolutionDraft{ContentType: "video", Content: "x"}, models.User{ID: "u1"})
	assert.Error(t, err)

	_, err = store.AddSolution(ctx, paper.ID, paper.Questions[0].ID,
		models.SolutionDraft{ContentType: models.ContentText, Content: ""}, models.User{ID: "u1"})
	assert.Error(t, err)
}

func TestVoteSolution_MovesUpvotesAndReputation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	author := &models.User{ID: "u1", Name: "Ravi Kumar"}
	require.NoError(t, store.CreateProfile(ctx, "", author))

	paper := validPaper()
	require.NoError(t, store.CreatePaper(ctx, paper))
	questionID := paper.Questions[0].ID

	draft := models.SolutionDraft{ContentType: models.ContentText, Content: "answer"}
	sol, err := store.AddSolution(ctx, paper.ID, questionID, draft, *author)
	require.NoError(t, err)
	require.NotNil(t, sol)

	voted, err := store.VoteSolution(ctx, paper.ID, questionID, sol.ID, +1)
	require.NoError(t, err)
	require.NotNil(t, voted)
	assert.Equal(t, 1, voted.Upvotes)

	prof, err := store.GetProfile(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, prof.Reputation)

	// downvotes may push upvotes below zero
	for i := 0; i < 3; i++ {
		voted, err = store.VoteSolution(ctx, paper.ID, questionID, sol.ID, -1)
		require.NoError(t, err)
	}
	assert.Equal(t, -2, voted.Upvotes)

	prof, err = store.GetProfile(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, -2, prof.Reputation)
}

func TestVoteSolution_UnknownSolutionIsNilNil(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	paper := validPaper()
	require.NoError(t, store.CreatePaper(ctx, paper))

	voted, err := store.VoteSolution(ctx, paper.ID, paper.Questions[0].ID, "no-such-solution", 1)
	require.NoError(t, err)
	assert.Nil(t, voted)
}

func TestStore_ReturnsDeepCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	paper := validPaper()
	require.NoError(t, store.CreatePaper(ctx, paper))

	got, err := store.GetPaperByID(ctx, paper.ID)
	require.NoError(t, err)
	got.Subject = "Tampered"
	got.Questions[0].Text = "Tampered"

	fresh, err := store.GetPaperByID(ctx, paper.ID)
	require.NoError(t, err)
	assert.Equal(t, "Signals and Systems", fresh.Subject)
	assert.NotEqual(t, "Tampered", fresh.Questions[0].Text)
}

func TestAccounts_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	acc := &models.Account{Name: "Priya Sharma", Email: "priya@rguktn.ac.in"}
	require.NoError(t, store.CreateAccount(ctx, acc))
	require.NotEmpty(t, acc.ID)

	dup := &models.Account{Name: "Other", Email: "PRIYA@rguktn.ac.in"}
	assert.Error(t, store.CreateAccount(ctx, dup), "email lookup is case-insensitive")

	byEmail, err := store.GetAccountByEmail(ctx, "Priya@rguktn.ac.in")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, acc.ID, byEmail.ID)

	byID, err := store.GetAccountByID(ctx, acc.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)

	missing, err := store.GetAccountByEmail(ctx, "nobody@rguktn.ac.in")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestProfiles_LinkAndLeaderboard(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	acc := &models.Account{Name: "Anusha", Email: "anusha@rguktrkv.ac.in"}
	require.NoError(t, store.CreateAccount(ctx, acc))

	profile := &models.User{Name: "Anusha"}
	require.NoError(t, store.CreateProfile(ctx, acc.ID, profile))
	require.NotEmpty(t, profile.ID)

	linked, err := store.GetAccountByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, linked.ProfileID)

	require.NoError(t, store.CreateProfile(ctx, "", &models.User{Name: "Ravi", Reputation: 5}))
	require.NoError(t, store.CreateProfile(ctx, "", &models.User{Name: "Priya", Reputation: 2}))

	top, err := store.ListTopProfiles(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Ravi", top[0].Name)
	assert.Equal(t, "Priya", top[1].Name)
}

func TestSeedDemoData(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, SeedDemoData(ctx, store))

	papers, err := store.ListPapers(ctx)
	require.NoError(t, err)
	require.Len(t, papers, 3)
	assert.Equal(t, "Mathematics-II", papers[0].Subject, "the mathematics paper is seeded last, so it lists first")

	for _, p := range papers {
		pp := p
		assert.NoError(t, pp.Validate())
	}
}
