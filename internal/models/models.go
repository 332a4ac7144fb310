package models

import (
	"fmt"
	"time"
)

// ExamType identifies which exam a paper belongs to.
type ExamType string

const (
	ExamMid1  ExamType = "mid1"
	ExamMid2  ExamType = "mid2"
	ExamMid3  ExamType = "mid3"
	ExamFinal ExamType = "Final Sem Exam"
)

// Branch is the engineering branch a paper was set for. PUC papers
// (yearOfStudy P1/P2) are always BranchCommon.
type Branch string

const (
	BranchCSE    Branch = "CSE"
	BranchECE    Branch = "ECE"
	BranchMECH   Branch = "MECH"
	BranchCIVIL  Branch = "CIVIL"
	BranchCommon Branch = "common"
)

// Campus is one of the four university campuses.
type Campus string

const (
	CampusRKValley   Campus = "RK Valley"
	CampusNuzvid     Campus = "Nuzvid"
	CampusSrikakulam Campus = "Srikakulam"
	CampusOngole     Campus = "Ongole"
)

// YearOfStudy is the student's year: P1/P2 for the PUC program,
// E1..E4 for engineering.
type YearOfStudy string

const (
	YearP1 YearOfStudy = "P1"
	YearP2 YearOfStudy = "P2"
	YearE1 YearOfStudy = "E1"
	YearE2 YearOfStudy = "E2"
	YearE3 YearOfStudy = "E3"
	YearE4 YearOfStudy = "E4"
)

// ContentType tags how a Solution's Content is to be interpreted.
type ContentType string

const (
	ContentText  ContentType = "text"  // Content is the answer body
	ContentImage ContentType = "image" // Content is an image URL
)

// User is a community profile. Reputation moves with votes on the
// user's solutions; everything else is immutable after creation.
type User struct {
	ID         string `db:"id" json:"id"`
	Name       string `db:"name" json:"name"`
	AvatarURL  string `db:"avatar_url" json:"avatarUrl"`
	Reputation int    `db:"reputation" json:"reputation"`
}

// Account is an authenticated user as known to the session layer.
// ProfileID links the account to its community User profile once the
// profile has been set up; it is empty until then.
type Account struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Picture      string    `db:"picture" json:"picture"`
	PasswordHash string    `db:"password_hash" json:"-"`
	ProfileID    string    `db:"profile_id" json:"profileId,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Solution is a community-submitted answer to a Question. Immutable
// after creation except Upvotes, which may go negative.
type Solution struct {
	ID          string      `db:"id" json:"id"`
	Author      User        `json:"author"`
	ContentType ContentType `db:"content_type" json:"content_type"`
	Content     string      `db:"content" json:"content"`
	Upvotes     int         `db:"upvotes" json:"upvotes"`
	CreatedAt   time.Time   `db:"created_at" json:"timestamp"`
}

// Question is one numbered prompt within a paper. Solutions are
// append-only; display ordering by upvotes is the UI's concern.
type Question struct {
	ID             string     `db:"id" json:"id"`
	QuestionNumber string     `db:"question_number" json:"questionNumber"`
	Text           string     `db:"text" json:"text"`
	Solutions      []Solution `json:"solutions"`
}

// QuestionPaper is one exam document with its metadata and extracted
// questions. ID never changes after creation, including on update.
type QuestionPaper struct {
	ID          string      `db:"id" json:"id"`
	Subject     string      `db:"subject" json:"subject"`
	Year        int         `db:"year" json:"year"`
	ExamType    ExamType    `db:"exam_type" json:"examType"`
	Branch      Branch      `db:"branch" json:"branch"`
	Campus      Campus      `db:"campus" json:"campus"`
	YearOfStudy YearOfStudy `db:"year_of_study" json:"yearOfStudy"`
	Semester    int         `db:"semester" json:"semester"`
	FileURL     string      `db:"file_url" json:"fileUrl"`
	Questions   []Question  `json:"questions"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// TotalQuestions is always derived from the question list, never
// stored independently.
func (p *QuestionPaper) TotalQuestions() int {
	return len(p.Questions)
}

// PaperPatch carries the fields of an update. Nil pointers mean
// "leave unchanged"; a non-nil Questions slice replaces the paper's
// question list wholesale.
type PaperPatch struct {
	Subject     *string      `json:"subject,omitempty"`
	Year        *int         `json:"year,omitempty"`
	ExamType    *ExamType    `json:"examType,omitempty"`
	Branch      *Branch      `json:"branch,omitempty"`
	Campus      *Campus      `json:"campus,omitempty"`
	YearOfStudy *YearOfStudy `json:"yearOfStudy,omitempty"`
	Semester    *int         `json:"semester,omitempty"`
	FileURL     *string      `json:"fileUrl,omitempty"`
	Questions   []Question   `json:"questions,omitempty"`
}

// SolutionDraft is the caller-supplied part of a new solution; id,
// upvotes and timestamp are assigned by the store.
type SolutionDraft struct {
	ContentType ContentType `json:"content_type"`
	Content     string      `json:"content"`
}

// ExtractedQuestion is one question as returned by the AI extraction
// flow, before it is given an id and attached to a paper.
type ExtractedQuestion struct {
	QuestionNumber string `json:"questionNumber"`
	Text           string `json:"text"`
}

// SolutionReview is the AI reviewer's feedback on a submitted solution.
type SolutionReview struct {
	Suggestions []string `json:"suggestions"`
	Confidence  float64  `json:"confidence"`
}

func (e ExamType) Valid() bool {
	switch e {
	case ExamMid1, ExamMid2, ExamMid3, ExamFinal:
		return true
	}
	return false
}

func (b Branch) Valid() bool {
	switch b {
	case BranchCSE, BranchECE, BranchMECH, BranchCIVIL, BranchCommon:
		return true
	}
	return false
}

func (c Campus) Valid() bool {
	switch c {
	case CampusRKValley, CampusNuzvid, CampusSrikakulam, CampusOngole:
		return true
	}
	return false
}

func (y YearOfStudy) Valid() bool {
	switch y {
	case YearP1, YearP2, YearE1, YearE2, YearE3, YearE4:
		return true
	}
	return false
}

// IsPUC reports whether the year belongs to the pre-university program.
func (y YearOfStudy) IsPUC() bool {
	return y == YearP1 || y == YearP2
}

func (c ContentType) Valid() bool {
	return c == ContentText || c == ContentImage
}

// Validate checks the paper's enumerated fields and the structural
// invariant that PUC papers carry the common branch.
func (p *QuestionPaper) Validate() error {
	if p.Subject == "" {
		return fmt.Errorf("paper subject is empty")
	}
	if !p.ExamType.Valid() {
		return fmt.Errorf("invalid exam type %q", p.ExamType)
	}
	if !p.Branch.Valid() {
		return fmt.Errorf("invalid branch %q", p.Branch)
	}
	if !p.Campus.Valid() {
		return fmt.Errorf("invalid campus %q", p.Campus)
	}
	if !p.YearOfStudy.Valid() {
		return fmt.Errorf("invalid year of study %q", p.YearOfStudy)
	}
	if p.Semester != 1 && p.Semester != 2 {
		return fmt.Errorf("invalid semester %d", p.Semester)
	}
	if p.YearOfStudy.IsPUC() && p.Branch != BranchCommon {
		return fmt.Errorf("branch must be %q for year of study %q, got %q", BranchCommon, p.YearOfStudy, p.Branch)
	}
	return nil
}

// Validate checks the draft's content tag and body.
func (d *SolutionDraft) Validate() error {
	if !d.ContentType.Valid() {
		return fmt.Errorf("invalid content type %q", d.ContentType)
	}
	if d.Content == "" {
		return fmt.Errorf("solution content is empty")
	}
	return nil
}
