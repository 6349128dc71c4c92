package ports

import (
	"context"

	"plrcheck/internal/domain/validation"
)

// ReportPublisher delivers validation reports to an external system.
type ReportPublisher interface {
	PublishReport(ctx context.Context, event validation.ReportEvent) error
	Close() error
}
