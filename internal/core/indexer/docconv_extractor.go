package indexer

import (
	"context"
	"fmt"
	"io"

	"code.sajari.com/docconv"

	"github.com/rgukt-papers/paperhub/internal/core"
)

// DocconvExtractor implements core.TextExtractor using sajari/docconv.
type DocconvExtractor struct {
	useReadability bool
}

func NewDocconvExtractor(useReadability bool) *DocconvExtractor {
	return &DocconvExtractor{useReadability: useReadability}
}

// ExtractText converts the document to plain text based on content type.
func (e *DocconvExtractor) ExtractText(ctx context.Context, r io.Reader, contentType string) (string, error) {
	res, err := docconv.Convert(r, contentType, e.useReadability)
	if err != nil {
		return "", fmt.Errorf("docconv %s: %w", contentType, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return res.Body, nil
}

var _ core.TextExtractor = (*DocconvExtractor)(nil)
