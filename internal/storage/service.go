package storage

import (
	"context"
	"fmt"

	"github.com/ramonehamilton/fine-dashboard/internal/storage/models"
	"github.com/ramonehamilton/fine-dashboard/internal/storage/repository"
)

// Service provides high-level operations for storing and retrieving the dashboard datasets.
type Service struct {
	db       *DB
	datasets repository.DatasetRepository
}

// NewService creates a new storage service.
func NewService(db *DB) *Service {
	return &Service{
		db:       db,
		datasets: repository.NewDatasetRepository(db.Conn()),
	}
}

// Datasets returns the dataset repository.
func (s *Service) Datasets() repository.DatasetRepository {
	return s.datasets
}

// ListDialogues returns all stored dialogue sentiment rows.
func (s *Service) ListDialogues(ctx context.Context) ([]*models.DialogueSentiment, error) {
	return s.datasets.ListDialogues(ctx)
}

// ListSentenceTypes returns all stored sentence-type rows.
func (s *Service) ListSentenceTypes(ctx context.Context) ([]*models.SentenceType, error) {
	return s.datasets.ListSentenceTypes(ctx)
}

// ListModalityPauses returns all stored pause rows.
func (s *Service) ListModalityPauses(ctx context.Context) ([]*models.ModalityPause, error) {
	return s.datasets.ListModalityPauses(ctx)
}

// ListFlowEvents returns all stored argument rows.
func (s *Service) ListFlowEvents(ctx context.Context) ([]*models.FlowEventRow, error) {
	return s.datasets.ListFlowEvents(ctx)
}

// Counts returns the number of stored rows per dataset.
func (s *Service) Counts(ctx context.Context) (models.DatasetCounts, error) {
	return s.datasets.Counts(ctx)
}

// ImportDir reads the CSV datasets in dir and replaces the stored datasets with them.
func (s *Service) ImportDir(ctx context.Context, dir string) (*models.ImportRun, error) {
	data, err := ReadDatasetDir(dir)
	if err != nil {
		return nil, err
	}

	run, err := s.datasets.ReplaceAll(ctx, dir, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store datasets: %w", err)
	}
	return run, nil
}

// Close closes the underlying database.
func (s *Service) Close() error {
	return s.db.Close()
}
