package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	appMiddleware "github.com/rgukt-papers/paperhub/internal/api/middlewares"
	"github.com/rgukt-papers/paperhub/internal/config"
	"github.com/rgukt-papers/paperhub/internal/core"
	"github.com/rgukt-papers/paperhub/internal/core/indexer"
	"github.com/rgukt-papers/paperhub/internal/core/search"
	"github.com/rgukt-papers/paperhub/internal/models"
)

type PaperHandler struct {
	dbclient     core.DbClient
	objectclient core.ObjectClient // nil when no storage is configured
	flows        core.FlowProvider // nil when no AI key is configured
	indexer      *indexer.PaperIndexer
	validate     *validator.Validate
	cfg          *config.Config
}

func NewPaperHandler(dbclient core.DbClient, objectclient core.ObjectClient, flows core.FlowProvider, idx *indexer.PaperIndexer, cfg *config.Config) *PaperHandler {
	return &PaperHandler{
		dbclient:     dbclient,
		objectclient: objectclient,
		flows:        flows,
		indexer:      idx,
		validate:     validator.New(),
		cfg:          cfg,
	}
}

type submitPaperRequest struct {
	Subject     string `validate:"required,min=2,max=120"`
	Year        int    `validate:"required,gte=2008,lte=2100"`
	ExamType    string `validate:"required"`
	Branch      string `validate:"required"`
	Campus      string `validate:"required"`
	YearOfStudy string `validate:"required"`
	Semester    int    `validate:"required,gte=1,lte=2"`
	FileURL     string `validate:"omitempty,url"`
}

// ListPapers filters the collection by the query parameters; every
// dimension defaults to unconstrained.
func (h *PaperHandler) ListPapers(w http.ResponseWriter, r *http.Request) {
	papers, err := h.dbclient.ListPapers(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	q := r.URL.Query()
	filter := search.PaperFilter{
		Query:       q.Get("query"),
		Year:        q.Get("year"),
		ExamType:    q.Get("examType"),
		Branch:      q.Get("branch"),
		Campus:      q.Get("campus"),
		YearOfStudy: q.Get("yearOfStudy"),
		Semester:    q.Get("semester"),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(search.Apply(papers, filter))
}

func (h *PaperHandler) GetPaper(w http.ResponseWriter, r *http.Request) {
	paper, err := h.dbclient.GetPaperByID(r.Context(), chi.URLParam(r, "paperID"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if paper == nil {
		http.Error(w, "paper not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(paper)
}

// SubmitPaper handles the multipart submission form: metadata fields,
// an optional file (uploaded to object storage) or an external file
// URL, and an optional extract=true flag to run AI question
// extraction on the uploaded document.
func (h *PaperHandler) SubmitPaper(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	req, err := paperRequestFromForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, fmt.Sprintf("invalid submission: %v", err), http.StatusBadRequest)
		return
	}

	paperID := uuid.NewString()
	fileURL := req.FileURL
	var fileData []byte
	var fileMIME string

	if file, header, ferr := r.FormFile("file"); ferr == nil {
		defer file.Close()
		fileData, err = io.ReadAll(file)
		if err != nil {
			http.Error(w, "could not read file", http.StatusBadRequest)
			return
		}
		fileMIME = formContentType(header)

		if h.objectclient == nil {
			http.Error(w, "file uploads are not configured; supply fileUrl instead", http.StatusServiceUnavailable)
			return
		}
		url, uerr := h.uploadPaperFile(r.Context(), paperID, header.Filename, fileMIME, fileData)
		if uerr != nil {
			http.Error(w, fmt.Sprintf("upload failed: %v", uerr), http.StatusInternalServerError)
			return
		}
		fileURL = url
	}

	// Extraction is best effort: a failed AI call means the paper is
	// submitted without questions, never a failed submission.
	var questions []models.Question
	if r.FormValue("extract") == "true" && len(fileData) > 0 && h.flows != nil {
		extracted, xerr := h.flows.ExtractQuestions(r.Context(), fileData, fileMIME)
		if xerr != nil {
			log.Printf("question extraction failed for paper %s: %v", paperID, xerr)
		}
		questions = questionsFromExtracted(extracted)
	}

	paper := &models.QuestionPaper{
		ID:          paperID,
		Subject:     req.Subject,
		Year:        req.Year,
		ExamType:    models.ExamType(req.ExamType),
		Branch:      models.Branch(req.Branch),
		Campus:      models.Campus(req.Campus),
		YearOfStudy: models.YearOfStudy(req.YearOfStudy),
		Semester:    req.Semester,
		FileURL:     fileURL,
		Questions:   questions,
		CreatedAt:   time.Now(),
	}

	if err := h.dbclient.CreatePaper(r.Context(), paper); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if h.indexer != nil {
		h.indexer.Enqueue(paper.ID)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(paper)
}

// UpdatePaper replaces paper fields in place: a corrected file upload
// and/or metadata supersede the old values while the paper's identity
// and accumulated solutions persist. Accepts a JSON patch body, or
// the same multipart form as SubmitPaper with every field optional.
func (h *PaperHandler) UpdatePaper(w http.ResponseWriter, r *http.Request) {
	paperID := chi.URLParam(r, "paperID")

	var patch models.PaperPatch
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, "invalid multipart form", http.StatusBadRequest)
			return
		}
		p, err := h.patchFromForm(r, paperID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		patch = p
	} else {
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
	}

	paper, err := h.dbclient.UpdatePaper(r.Context(), paperID, patch)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if paper == nil {
		http.Error(w, "paper not found", http.StatusNotFound)
		return
	}

	if h.indexer != nil {
		h.indexer.Enqueue(paper.ID)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(paper)
}

func (h *PaperHandler) uploadPaperFile(ctx context.Context, paperID, filename, contentType string, data []byte) (string, error) {
	cleanFilename := filepath.Base(strings.ReplaceAll(strings.TrimSpace(filename), " ", "_"))
	key := fmt.Sprintf("papers/%s/%s", paperID, cleanFilename)

	uploadCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	return h.objectclient.UploadFile(uploadCtx, h.cfg.BucketName, key, bytes.NewReader(data), contentType)
}

func (h *PaperHandler) patchFromForm(r *http.Request, paperID string) (models.PaperPatch, error) {
	var patch models.PaperPatch

	if v := r.FormValue("subject"); v != "" {
		patch.Subject = &v
	}
	if v := r.FormValue("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return patch, fmt.Errorf("year %q is not a number", v)
		}
		patch.Year = &year
	}
	if v := r.FormValue("examType"); v != "" {
		e := models.ExamType(v)
		patch.ExamType = &e
	}
	if v := r.FormValue("branch"); v != "" {
		b := models.Branch(v)
		patch.Branch = &b
	}
	if v := r.FormValue("campus"); v != "" {
		c := models.Campus(v)
		patch.Campus = &c
	}
	if v := r.FormValue("yearOfStudy"); v != "" {
		y := models.YearOfStudy(v)
		patch.YearOfStudy = &y
	}
	if v := r.FormValue("semester"); v != "" {
		sem, err := strconv.Atoi(v)
		if err != nil {
			return patch, fmt.Errorf("semester %q is not a number", v)
		}
		patch.Semester = &sem
	}
	if v := r.FormValue("fileUrl"); v != "" {
		patch.FileURL = &v
	}

	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		data, rerr := io.ReadAll(file)
		if rerr != nil {
			return patch, fmt.Errorf("could not read file")
		}
		if h.objectclient == nil {
			return patch, fmt.Errorf("file uploads are not configured; supply fileUrl instead")
		}
		url, uerr := h.uploadPaperFile(r.Context(), paperID, header.Filename, formContentType(header), data)
		if uerr != nil {
			return patch, fmt.Errorf("upload failed: %v", uerr)
		}
		patch.FileURL = &url
	}
	return patch, nil
}

func paperRequestFromForm(r *http.Request) (*submitPaperRequest, error) {
	year, err := strconv.Atoi(r.FormValue("year"))
	if err != nil {
		return nil, fmt.Errorf("year %q is not a number", r.FormValue("year"))
	}
	semester, err := strconv.Atoi(r.FormValue("semester"))
	if err != nil {
		return nil, fmt.Errorf("semester %q is not a number", r.FormValue("semester"))
	}
	return &submitPaperRequest{
		Subject:     r.FormValue("subject"),
		Year:        year,
		ExamType:    r.FormValue("examType"),
		Branch:      r.FormValue("branch"),
		Campus:      r.FormValue("campus"),
		YearOfStudy: r.FormValue("yearOfStudy"),
		Semester:    semester,
		FileURL:     r.FormValue("fileUrl"),
	}, nil
}

func questionsFromExtracted(extracted []models.ExtractedQuestion) []models.Question {
	if len(extracted) == 0 {
		return nil
	}
	out := make([]models.Question, 0, len(extracted))
	for _, q := range extracted {
		out = append(out, models.Question{
			ID:             uuid.NewString(),
			QuestionNumber: q.QuestionNumber,
			Text:           q.Text,
			Solutions:      []models.Solution{},
		})
	}
	return out
}

func formContentType(header *multipart.FileHeader) string {
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return contentType
}

// requireAccount is a convenience for mutating endpoints.
func requireAccount(w http.ResponseWriter, r *http.Request) (string, bool) {
	accountID := appMiddleware.AccountID(r.Context())
	if accountID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return accountID, true
}
