package core

import (
	"context"
	"io"

	"github.com/rgukt-papers/paperhub/internal/models"
)

// DbClient defines all persistence operations the handlers need.
// Lookups signal absence with a nil pointer and a nil error; callers
// must handle the nil explicitly. An error means the operation itself
// failed (validation, connectivity), never plain not-found.
type DbClient interface {
	CreateAccount(ctx context.Context, acc *models.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)

	CreateProfile(ctx context.Context, accountID string, profile *models.User) error
	GetProfile(ctx context.Context, id string) (*models.User, error)
	ListTopProfiles(ctx context.Context, limit int) ([]models.User, error)

	ListPapers(ctx context.Context) ([]models.QuestionPaper, error)
	GetPaperByID(ctx context.Context, id string) (*models.QuestionPaper, error)
	CreatePaper(ctx context.Context, paper *models.QuestionPaper) error
	UpdatePaper(ctx context.Context, id string, patch models.PaperPatch) (*models.QuestionPaper, error)

	AddSolution(ctx context.Context, paperID, questionID string, draft models.SolutionDraft, author models.User) (*models.Solution, error)
	VoteSolution(ctx context.Context, paperID, questionID, solutionID string, delta int) (*models.Solution, error)

	Close() error
}

// VectorIndex is the semantic index over papers. Only the Postgres
// store implements it (pgvector); in demo mode there is no index and
// AI search falls back to handing the full paper list to the model.
type VectorIndex interface {
	UpsertPaperEmbedding(ctx context.Context, paperID string, embedding []float32) error
	SearchPapersByEmbedding(ctx context.Context, queryVec []float32, limit int) ([]string, error)
}

// ObjectClient defines interactions with S3 or any object storage.
// It's abstract so AWS can be swapped for MinIO, GCP, etc. easily.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)

	GetObjectReader(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}
