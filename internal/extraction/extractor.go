// Package extraction turns stored document files into structured bookkeeping
// fields. The production adapter calls a generative model; the interface
// keeps the pipeline testable without one.
package extraction

import (
	"context"

	"github.com/sana-bookkeeping/internal/domain/document"
)

// Extractor produces structured fields for an uploaded document. On failure
// it never partially populates fields; the caller decides whether and how to
// retry.
type Extractor interface {
	Extract(ctx context.Context, doc *document.Document) (*document.ExtractedFields, []byte, error)
}

// ErrExtractionFailed wraps any adapter failure: unreachability, timeout or
// an unparseable model response. It is recoverable by re-running the
// pipeline on the document.
type ErrExtractionFailed struct {
	Cause error
}

func (e ErrExtractionFailed) Error() string {
	if e.Cause == nil {
		return "extraction failed"
	}
	return "extraction failed: " + e.Cause.Error()
}

func (e ErrExtractionFailed) Unwrap() error {
	return e.Cause
}

// Is implements the errors.Is interface for ErrExtractionFailed
func (e ErrExtractionFailed) Is(target error) bool {
	_, ok := target.(ErrExtractionFailed)
	return ok
}
