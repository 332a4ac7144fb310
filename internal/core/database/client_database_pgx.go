package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/rgukt-papers/paperhub/internal/config"
	"github.com/rgukt-papers/paperhub/internal/models"
)

// DatabaseClient is the Postgres-backed store. It is the production
// replacement for the in-memory MemoryStore: every mutation runs in a
// transaction so concurrent users never observe partial writes.
type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (*DatabaseClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Accounts

func (c *DatabaseClient) CreateAccount(ctx context.Context, acc *models.Account) error {
	if acc == nil {
		return errors.New("nil account")
	}
	const q = `
		INSERT INTO accounts (id, name, email, picture, password_hash, created_at)
		VALUES ($1, $2, lower($3), $4, $5, COALESCE($6, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		acc.ID, acc.Name, acc.Email, acc.Picture, acc.PasswordHash, acc.CreatedAt)
	return err
}

func (c *DatabaseClient) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	const q = `
		SELECT id, name, email, picture, password_hash, COALESCE(profile_id, ''), created_at
		FROM accounts WHERE email = lower($1)
	`
	return c.scanAccount(c.db.QueryRowContext(ctx, q, email))
}

func (c *DatabaseClient) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	const q = `
		SELECT id, name, email, picture, password_hash, COALESCE(profile_id, ''), created_at
		FROM accounts WHERE id = $1
	`
	return c.scanAccount(c.db.QueryRowContext(ctx, q, id))
}

func (c *DatabaseClient) scanAccount(row *sql.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Picture, &a.PasswordHash, &a.ProfileID, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Profiles

func (c *DatabaseClient) CreateProfile(ctx context.Context, accountID string, profile *models.User) error {
	if profile == nil {
		return errors.New("nil profile")
	}
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	const insert = `
		INSERT INTO profiles (id, name, avatar_url, reputation)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.ExecContext(ctx, insert, profile.ID, profile.Name, profile.AvatarURL, profile.Reputation); err != nil {
		_ = tx.Rollback()
		return err
	}
	if accountID != "" {
		const link = `UPDATE accounts SET profile_id = $2 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, link, accountID, profile.ID); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (c *DatabaseClient) GetProfile(ctx context.Context, id string) (*models.User, error) {
	const q = `SELECT id, name, avatar_url, reputation FROM profiles WHERE id = $1`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, id).Scan(&u.ID, &u.Name, &u.AvatarURL, &u.Reputation)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *DatabaseClient) ListTopProfiles(ctx context.Context, limit int) ([]models.User, error) {
	const q = `
		SELECT id, name, avatar_url, reputation
		FROM profiles
		ORDER BY reputation DESC, name ASC
		LIMIT $1
	`
	rows, err := c.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.AvatarURL, &u.Reputation); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Papers

func (c *DatabaseClient) ListPapers(ctx context.Context) ([]models.QuestionPaper, error) {
	const q = `
		SELECT id, subject, year, exam_type, branch, campus, year_of_study, semester, file_url, created_at, updated_at
		FROM papers
		ORDER BY created_at DESC, id
	`
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.QuestionPaper
	for rows.Next() {
		var p models.QuestionPaper
		if err := scanPaper(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		qs, err := c.loadQuestions(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Questions = qs
	}
	return out, nil
}

func (c *DatabaseClient) GetPaperByID(ctx context.Context, id string) (*models.QuestionPaper, error) {
	const q = `
		SELECT id, subject, year, exam_type, branch, campus, year_of_study, semester, file_url, created_at, updated_at
		FROM papers
		WHERE id = $1
	`
	var p models.QuestionPaper
	err := scanPaper(c.db.QueryRowContext(ctx, q, id), &p)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	qs, err := c.loadQuestions(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Questions = qs
	return &p, nil
}

func (c *DatabaseClient) CreatePaper(ctx context.Context, paper *models.QuestionPaper) error {
	if paper == nil {
		return errors.New("nil paper")
	}
	if err := paper.Validate(); err != nil {
		return err
	}
	if paper.ID == "" {
		paper.ID = uuid.NewString()
	}
	now := time.Now()
	if paper.CreatedAt.IsZero() {
		paper.CreatedAt = now
	}
	paper.UpdatedAt = now
	if paper.Questions == nil {
		paper.Questions = []models.Question{}
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	const insert = `
		INSERT INTO papers
			(id, subject, year, exam_type, branch, campus, year_of_study, semester, file_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	if _, err := tx.ExecContext(ctx, insert,
		paper.ID, paper.Subject, paper.Year, paper.ExamType, paper.Branch, paper.Campus,
		paper.YearOfStudy, paper.Semester, paper.FileURL, paper.CreatedAt, paper.UpdatedAt,
	); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := insertQuestions(ctx, tx, paper.ID, paper.Questions); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (c *DatabaseClient) UpdatePaper(ctx context.Context, id string, patch models.PaperPatch) (*models.QuestionPaper, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	const sel = `
		SELECT id, subject, year, exam_type, branch, campus, year_of_study, semester, file_url, created_at, updated_at
		FROM papers
		WHERE id = $1
		FOR UPDATE
	`
	var p models.QuestionPaper
	err = scanPaper(tx.QueryRowContext(ctx, sel, id), &p)
	if err == sql.ErrNoRows {
		_ = tx.Rollback()
		return nil, nil
	}
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	merged := p
	applyPatch(&merged, patch)
	merged.ID = p.ID
	merged.CreatedAt = p.CreatedAt
	if err := merged.Validate(); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	merged.UpdatedAt = time.Now()

	const upd = `
		UPDATE papers
		SET subject = $2, year = $3, exam_type = $4, branch = $5, campus = $6,
		    year_of_study = $7, semester = $8, file_url = $9, updated_at = $10
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, upd,
		merged.ID, merged.Subject, merged.Year, merged.ExamType, merged.Branch, merged.Campus,
		merged.YearOfStudy, merged.Semester, merged.FileURL, merged.UpdatedAt,
	); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	// A replacement question list drops the accumulated solutions with
	// the old questions (ON DELETE CASCADE); otherwise questions stay.
	if patch.Questions != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE paper_id = $1`, id); err != nil {
			_ = tx.Rollback()
			return nil, err
		}
		if err := insertQuestions(ctx, tx, id, merged.Questions); err != nil {
			_ = tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return c.GetPaperByID(ctx, id)
}

// Solutions

func (c *DatabaseClient) AddSolution(ctx context.Context, paperID, questionID string, draft models.SolutionDraft, author models.User) (*models.Solution, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	var owned bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM questions WHERE id = $1 AND paper_id = $2)`,
		questionID, paperID,
	).Scan(&owned)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if !owned {
		_ = tx.Rollback()
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
	const insert = `
		INSERT INTO solutions (id, question_id, author_id, content_type, content, upvotes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := tx.ExecContext(ctx, insert,
		sol.ID, questionID, author.ID, sol.ContentType, sol.Content, sol.Upvotes, sol.CreatedAt,
	); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &sol, nil
}

func (c *DatabaseClient) VoteSolution(ctx context.Context, paperID, questionID, solutionID string, delta int) (*models.Solution, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	const upd = `
		UPDATE solutions s
		SET upvotes = s.upvotes + $4
		FROM questions q
		WHERE s.id = $3 AND s.question_id = q.id AND q.id = $2 AND q.paper_id = $1
		RETURNING s.id, s.author_id, s.content_type, s.content, s.upvotes, s.created_at
	`
	var (
		sol      models.Solution
		authorID string
	)
	err = tx.QueryRowContext(ctx, upd, paperID, questionID, solutionID, delta).Scan(
		&sol.ID, &authorID, &sol.ContentType, &sol.Content, &sol.Upvotes, &sol.CreatedAt,
	)
	if err == sql.ErrNoRows {
		_ = tx.Rollback()
		return nil, nil
	}
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	const rep = `
		UPDATE profiles SET reputation = reputation + $2 WHERE id = $1
		RETURNING id, name, avatar_url, reputation
	`
	err = tx.QueryRowContext(ctx, rep, authorID, delta).Scan(
		&sol.Author.ID, &sol.Author.Name, &sol.Author.AvatarURL, &sol.Author.Reputation,
	)
	if err != nil && err != sql.ErrNoRows {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &sol, nil
}

// Paper index (pgvector)

func (c *DatabaseClient) UpsertPaperEmbedding(ctx context.Context, paperID string, embedding []float32) error {
	const q = `
		INSERT INTO paper_index (paper_id, embedding, indexed_at)
		VALUES ($1, $2, now())
		ON CONFLICT (paper_id) DO UPDATE SET embedding = EXCLUDED.embedding, indexed_at = now()
	`
	_, err := c.db.ExecContext(ctx, q, paperID, pgvector.NewVector(embedding))
	return err
}

// SearchPapersByEmbedding returns the ids of the papers nearest to the
// query vector, best match first.
func (c *DatabaseClient) SearchPapersByEmbedding(ctx context.Context, queryVec []float32, limit int) ([]string, error) {
	const q = `
		SELECT paper_id
		FROM paper_index
		ORDER BY embedding <-> $1
		LIMIT $2
	`
	rows, err := c.db.QueryContext(ctx, q, pgvector.NewVector(queryVec), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// helpers

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaper(row rowScanner, p *models.QuestionPaper) error {
	return row.Scan(
		&p.ID, &p.Subject, &p.Year, &p.ExamType, &p.Branch, &p.Campus,
		&p.YearOfStudy, &p.Semester, &p.FileURL, &p.CreatedAt, &p.UpdatedAt,
	)
}

func (c *DatabaseClient) loadQuestions(ctx context.Context, paperID string) ([]models.Question, error) {
	const q = `
		SELECT id, question_number, text
		FROM questions
		WHERE paper_id = $1
		ORDER BY position ASC
	`
	rows, err := c.db.QueryContext(ctx, q, paperID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Question{}
	for rows.Next() {
		var qn models.Question
		if err := rows.Scan(&qn.ID, &qn.QuestionNumber, &qn.Text); err != nil {
			return nil, err
		}
		out = append(out, qn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		sols, err := c.loadSolutions(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Solutions = sols
	}
	return out, nil
}

func (c *DatabaseClient) loadSolutions(ctx context.Context, questionID string) ([]models.Solution, error) {
	const q = `
		SELECT s.id, s.content_type, s.content, s.upvotes, s.created_at,
		       p.id, p.name, p.avatar_url, p.reputation
		FROM solutions s
		JOIN profiles p ON p.id = s.author_id
		WHERE s.question_id = $1
		ORDER BY s.created_at ASC
	`
	rows, err := c.db.QueryContext(ctx, q, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Solution{}
	for rows.Next() {
		var s models.Solution
		if err := rows.Scan(
			&s.ID, &s.ContentType, &s.Content, &s.Upvotes, &s.CreatedAt,
			&s.Author.ID, &s.Author.Name, &s.Author.AvatarURL, &s.Author.Reputation,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func insertQuestions(ctx context.Context, tx *sql.Tx, paperID string, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	const q = `
		INSERT INTO questions (id, paper_id, position, question_number, text)
		VALUES ($1, $2, $3, $4, $5)
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range questions {
		if questions[i].ID == "" {
			questions[i].ID = uuid.NewString()
		}
		if _, err := stmt.ExecContext(ctx,
			questions[i].ID, paperID, i, questions[i].QuestionNumber, questions[i].Text,
		); err != nil {
			return err
		}
	}
	return nil
}
