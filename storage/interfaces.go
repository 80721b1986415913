package storage

import (
	"context"

	"moodmelt/models"
)

// MentionWriter is the interface for exporting a (filtered) dataset.
type MentionWriter interface {
	Write(ds *models.Dataset) error
	Close() error
}

// ReportArchive stores generated reports. Uploaded mentions are never stored.
type ReportArchive interface {
	Save(ctx context.Context, r *models.ArchivedReport) error
	Recent(ctx context.Context, limit int) ([]models.ArchivedReport, error)
	Close() error
}
