package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"plrcheck/internal/domain/validation"
	"plrcheck/internal/ports"
)

// ValidateFromSource pulls submissions from the supplied source and
// validates them with bounded parallelism.
//
// If maxSubmissions is greater than zero the run stops after the
// specified number of submissions has been processed. Otherwise it keeps
// consuming until the context is cancelled or the source signals
// completion via io.EOF.
//
// When onReport is provided it is invoked after every validation with the
// corresponding report event.
func (s *Service) ValidateFromSource(
	ctx context.Context,
	source ports.SubmissionSource,
	maxSubmissions int,
	maxParallel int,
	onReport func(validation.ReportEvent),
) error {
	if maxParallel <= 0 {
		maxParallel = 1
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxParallel)
	processed := 0

	finish := func(err error) error {
		wg.Wait()
		return err
	}

	for {
		if maxSubmissions > 0 && processed >= maxSubmissions {
			return finish(nil)
		}

		submission, err := source.NextSubmission(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) {
				return finish(nil)
			}

			return finish(fmt.Errorf("get next submission: %w", err))
		}

		sem <- struct{}{}
		wg.Add(1)
		processed++
		go func(submission validation.Submission) {
			defer wg.Done()
			defer func() { <-sem }()

			report := s.Validate(ctx, submission)
			if onReport != nil {
				onReport(validation.ReportEvent{Submission: submission, Report: report})
			}
		}(submission)
	}
}
