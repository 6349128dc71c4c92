package ports

import (
	"context"

	"plrcheck/internal/domain/validation"
)

// SubmissionSource provides script submissions for the validation pipeline.
// Implementations return io.EOF once the stream is exhausted.
type SubmissionSource interface {
	NextSubmission(ctx context.Context) (validation.Submission, error)
}
