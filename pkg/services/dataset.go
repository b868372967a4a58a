package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Jmatos87/queryflow/pkg/models"
	"github.com/Jmatos87/queryflow/pkg/repositories"
)

// DatasetService manages the dataset lifecycle after upload.
type DatasetService interface {
	List(ctx context.Context, sessionID string) ([]*models.Dataset, error)
	Get(ctx context.Context, datasetID uuid.UUID) (*models.Dataset, error)
	// Delete removes a dataset and everything it owns: the physical table
	// (best effort), its query history, then its metadata row.
	Delete(ctx context.Context, datasetID uuid.UUID) error
	// DeleteSession tears down every dataset the session owns.
	DeleteSession(ctx context.Context, sessionID string) error
}

type datasetService struct {
	datasetRepo repositories.DatasetRepository
	historyRepo repositories.QueryHistoryRepository
	loader      DataLoader
	logger      *zap.Logger
}

// NewDatasetService creates a dataset service.
func NewDatasetService(
	datasetRepo repositories.DatasetRepository,
	historyRepo repositories.QueryHistoryRepository,
	loader DataLoader,
	logger *zap.Logger,
) DatasetService {
	return &datasetService{
		datasetRepo: datasetRepo,
		historyRepo: historyRepo,
		loader:      loader,
		logger:      logger.Named("datasets"),
	}
}

var _ DatasetService = (*datasetService)(nil)

func (s *datasetService) List(ctx context.Context, sessionID string) ([]*models.Dataset, error) {
	return s.datasetRepo.ListBySession(ctx, sessionID)
}

func (s *datasetService) Get(ctx context.Context, datasetID uuid.UUID) (*models.Dataset, error) {
	return s.datasetRepo.GetByID(ctx, datasetID)
}

func (s *datasetService) Delete(ctx context.Context, datasetID uuid.UUID) error {
	dataset, err := s.datasetRepo.GetByID(ctx, datasetID)
	if err != nil {
		return err
	}

	// Table drop is best effort: a transient storage error must not orphan
	// the metadata row, which would make the dataset undeletable.
	if err := s.loader.DropTable(ctx, dataset.TableName); err != nil {
		s.logger.Warn("Failed to drop dataset table",
			zap.String("table", dataset.TableName),
			zap.Error(err))
	}

	if err := s.historyRepo.DeleteByDataset(ctx, datasetID); err != nil {
		return err
	}

	if err := s.datasetRepo.Delete(ctx, datasetID); err != nil {
		return err
	}

	s.logger.Info("Deleted dataset",
		zap.String("id", datasetID.String()),
		zap.String("table", dataset.TableName))

	return nil
}

func (s *datasetService) DeleteSession(ctx context.Context, sessionID string) error {
	datasets, err := s.datasetRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return err
	}

	for _, dataset := range datasets {
		if err := s.Delete(ctx, dataset.ID); err != nil {
			return err
		}
	}

	s.logger.Info("Deleted session datasets",
		zap.String("session_id", sessionID),
		zap.Int("count", len(datasets)))

	return nil
}
