package core

import (
	"context"
	"io"
)

// TextExtractor pulls plain text out of an uploaded document so it
// can be embedded for the semantic index. The contentType hint helps
// the extractor choose the right parsing strategy.
type TextExtractor interface {
	ExtractText(ctx context.Context, r io.Reader, contentType string) (string, error)
}
