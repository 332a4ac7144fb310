package indexer

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rgukt-papers/paperhub/internal/core"
	"github.com/rgukt-papers/paperhub/internal/models"
)

// PaperIndexer keeps the semantic paper index fresh. Handlers enqueue
// a paper id after create/update; a worker loads the paper, pulls the
// document text out of object storage when we host the file, embeds
// the combined text and upserts the pgvector row. Index failures are
// logged and retried on the next mutation; they never touch the paper
// record itself.
type PaperIndexer struct {
	db        core.DbClient
	index     core.VectorIndex
	obj       core.ObjectClient
	embedder  core.EmbeddingProvider
	extractor core.TextExtractor
	bucket    string
	jobs      chan string
	workers   errgroup.Group
}

// NewPaperIndexer constructs the indexer with a bounded job queue (64).
// obj may be nil when no object storage is configured; the index then
// covers metadata and question text only.
func NewPaperIndexer(db core.DbClient, index core.VectorIndex, obj core.ObjectClient, emb core.EmbeddingProvider, ext core.TextExtractor, bucket string) *PaperIndexer {
	return &PaperIndexer{
		db: db, index: index, obj: obj, embedder: emb, extractor: ext, bucket: bucket,
		jobs: make(chan string, 64),
	}
}

// Start runs worker goroutines reading from the jobs channel until
// the context is cancelled.
func (i *PaperIndexer) Start(ctx context.Context, numWorkers int) {
	for w := 1; w <= numWorkers; w++ {
		w := w
		i.workers.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					log.Printf("PaperIndexer: worker %d shutting down", w)
					return nil
				case paperID := <-i.jobs:
					if err := i.ProcessOne(ctx, paperID); err != nil {
						log.Printf("PaperIndexer: indexing paper %s failed: %v", paperID, err)
					}
				}
			}
		})
	}
}

// Wait blocks until every worker has exited.
func (i *PaperIndexer) Wait() {
	_ = i.workers.Wait()
}

// Enqueue schedules a paper id for indexing. If the queue is full,
// this call will block until space frees up.
func (i *PaperIndexer) Enqueue(paperID string) {
	i.jobs <- paperID
}

// ProcessOne builds and stores the embedding for a single paper.
func (i *PaperIndexer) ProcessOne(ctx context.Context, paperID string) error {
	procCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	paper, err := i.db.GetPaperByID(procCtx, paperID)
	if err != nil {
		return fmt.Errorf("load paper: %w", err)
	}
	if paper == nil {
		// deleted or bogus id; nothing to index
		return nil
	}

	corpus := buildCorpus(paper)
	if text := i.fetchDocumentText(procCtx, paper); text != "" {
		corpus += "\n" + text
	}

	vecs, err := i.embedder.EmbedTexts(procCtx, []string{corpus})
	if err != nil {
		return fmt.Errorf("embed paper: %w", err)
	}
	if len(vecs) == 0 {
		return fmt.Errorf("embedder returned no vector for paper %s", paperID)
	}
	if err := i.index.UpsertPaperEmbedding(procCtx, paperID, vecs[0]); err != nil {
		return fmt.Errorf("upsert embedding: %w", err)
	}
	return nil
}

// fetchDocumentText pulls the uploaded file and extracts its text.
// Any failure here degrades to metadata-only indexing.
func (i *PaperIndexer) fetchDocumentText(ctx context.Context, paper *models.QuestionPaper) string {
	if i.obj == nil || i.extractor == nil {
		return ""
	}
	key, ok := objectKeyFromURL(paper.FileURL, i.bucket)
	if !ok {
		// externally hosted file (e.g. a Drive link); skip
		return ""
	}

	rc, err := i.obj.GetObjectReader(ctx, i.bucket, key)
	if err != nil {
		log.Printf("PaperIndexer: fetch %s: %v", key, err)
		return ""
	}
	defer rc.Close()

	text, err := i.extractor.ExtractText(ctx, rc, contentTypeForKey(key))
	if err != nil {
		log.Printf("PaperIndexer: extract %s: %v", key, err)
		return ""
	}
	return text
}

func buildCorpus(p *models.QuestionPaper) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d %s %s %s %s semester %d\n",
		p.Subject, p.Year, p.ExamType, p.Branch, p.Campus, p.YearOfStudy, p.Semester)
	for _, q := range p.Questions {
		b.WriteString(q.QuestionNumber)
		b.WriteString(" ")
		b.WriteString(q.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// objectKeyFromURL recovers the object key from the public URL our
// storage client hands out (https://<bucket>.s3.<region>.amazonaws.com/<key>).
func objectKeyFromURL(url, bucket string) (string, bool) {
	if bucket == "" {
		return "", false
	}
	prefix := fmt.Sprintf("https://%s.s3.", bucket)
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(url, prefix)
	idx := strings.Index(rest, "/")
	if idx < 0 || idx == len(rest)-1 {
		return "", false
	}
	return rest[idx+1:], true
}

func contentTypeForKey(key string) string {
	switch {
	case strings.HasSuffix(key, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(key, ".docx"):
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case strings.HasSuffix(key, ".txt"):
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
