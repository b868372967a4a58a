// Package repositories provides data access for dataset metadata and query
// history.
package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Jmatos87/queryflow/pkg/apperrors"
	"github.com/Jmatos87/queryflow/pkg/database"
	"github.com/Jmatos87/queryflow/pkg/models"
)

// DatasetRepository provides data access for dataset metadata.
type DatasetRepository interface {
	Create(ctx context.Context, dataset *models.Dataset) error
	GetByID(ctx context.Context, datasetID uuid.UUID) (*models.Dataset, error)
	ListBySession(ctx context.Context, sessionID string) ([]*models.Dataset, error)
	Delete(ctx context.Context, datasetID uuid.UUID) error
}

type datasetRepository struct {
	db *database.DB
}

// NewDatasetRepository creates a new DatasetRepository.
func NewDatasetRepository(db *database.DB) DatasetRepository {
	return &datasetRepository{db: db}
}

var _ DatasetRepository = (*datasetRepository)(nil)

func (r *datasetRepository) Create(ctx context.Context, dataset *models.Dataset) error {
	if dataset.ID == uuid.Nil {
		dataset.ID = uuid.New()
	}
	if dataset.CreatedAt.IsZero() {
		dataset.CreatedAt = time.Now()
	}

	schemaJSON, err := json.Marshal(dataset.Schema)
	if err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}

	sql := `
		INSERT INTO datasets (
			id, name, original_filename, file_type, table_name,
			schema, row_count, session_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.db.Exec(ctx, sql,
		dataset.ID, dataset.Name, dataset.OriginalFilename, dataset.FileType, dataset.TableName,
		schemaJSON, dataset.RowCount, dataset.SessionID, dataset.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to create dataset: %v", apperrors.ErrStorage, err)
	}

	return nil
}

func (r *datasetRepository) GetByID(ctx context.Context, datasetID uuid.UUID) (*models.Dataset, error) {
	sql := `
		SELECT id, name, original_filename, file_type, table_name,
		       schema, row_count, session_id, created_at
		FROM datasets
		WHERE id = $1`

	ds, err := scanDataset(r.db.QueryRow(ctx, sql, datasetID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: dataset %s", apperrors.ErrNotFound, datasetID)
		}
		return nil, fmt.Errorf("%w: failed to get dataset: %v", apperrors.ErrStorage, err)
	}

	return ds, nil
}

func (r *datasetRepository) ListBySession(ctx context.Context, sessionID string) ([]*models.Dataset, error) {
	sql := `
		SELECT id, name, original_filename, file_type, table_name,
		       schema, row_count, session_id, created_at
		FROM datasets
		WHERE session_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, sql, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list datasets: %v", apperrors.ErrStorage, err)
	}
	defer rows.Close()

	datasets := make([]*models.Dataset, 0)
	for rows.Next() {
		ds, err := scanDataset(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan dataset: %v", apperrors.ErrStorage, err)
		}
		datasets = append(datasets, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating datasets: %v", apperrors.ErrStorage, err)
	}

	return datasets, nil
}

func (r *datasetRepository) Delete(ctx context.Context, datasetID uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM datasets WHERE id = $1`, datasetID)
	if err != nil {
		return fmt.Errorf("%w: failed to delete dataset: %v", apperrors.ErrStorage, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: dataset %s", apperrors.ErrNotFound, datasetID)
	}
	return nil
}

func scanDataset(row pgx.Row) (*models.Dataset, error) {
	var ds models.Dataset
	var schemaJSON []byte

	err := row.Scan(
		&ds.ID, &ds.Name, &ds.OriginalFilename, &ds.FileType, &ds.TableName,
		&schemaJSON, &ds.RowCount, &ds.SessionID, &ds.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(schemaJSON, &ds.Schema); err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}

	return &ds, nil
}
