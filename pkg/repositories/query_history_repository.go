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

// QueryHistoryRepository provides data access for executed query records.
// Records are append-only; there is no update path.
type QueryHistoryRepository interface {
	Create(ctx context.Context, record *models.QueryRecord) error
	GetByID(ctx context.Context, recordID uuid.UUID) (*models.QueryRecord, error)
	ListByDataset(ctx context.Context, datasetID uuid.UUID, sessionID string) ([]*models.QueryRecord, error)
	DeleteByDataset(ctx context.Context, datasetID uuid.UUID) error
}

type queryHistoryRepository struct {
	db *database.DB
}

// NewQueryHistoryRepository creates a new QueryHistoryRepository.
func NewQueryHistoryRepository(db *database.DB) QueryHistoryRepository {
	return &queryHistoryRepository{db: db}
}

var _ QueryHistoryRepository = (*queryHistoryRepository)(nil)

func (r *queryHistoryRepository) Create(ctx context.Context, record *models.QueryRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	resultJSON, err := json.Marshal(record.Result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	sql := `
		INSERT INTO query_history (
			id, dataset_id, natural_language, generated_sql, result,
			row_count, execution_time_ms, session_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.db.Exec(ctx, sql,
		record.ID, record.DatasetID, record.NaturalLanguage, record.GeneratedSQL, resultJSON,
		record.RowCount, record.ExecutionTimeMs, record.SessionID, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to create query record: %v", apperrors.ErrStorage, err)
	}

	return nil
}

func (r *queryHistoryRepository) GetByID(ctx context.Context, recordID uuid.UUID) (*models.QueryRecord, error) {
	sql := `
		SELECT id, dataset_id, natural_language, generated_sql, result,
		       row_count, execution_time_ms, session_id, created_at
		FROM query_history
		WHERE id = $1`

	record, err := scanQueryRecord(r.db.QueryRow(ctx, sql, recordID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: query record %s", apperrors.ErrNotFound, recordID)
		}
		return nil, fmt.Errorf("%w: failed to get query record: %v", apperrors.ErrStorage, err)
	}

	return record, nil
}

func (r *queryHistoryRepository) ListByDataset(ctx context.Context, datasetID uuid.UUID, sessionID string) ([]*models.QueryRecord, error) {
	sql := `
		SELECT id, dataset_id, natural_language, generated_sql, result,
		       row_count, execution_time_ms, session_id, created_at
		FROM query_history
		WHERE dataset_id = $1 AND session_id = $2
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, sql, datasetID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list query history: %v", apperrors.ErrStorage, err)
	}
	defer rows.Close()

	records := make([]*models.QueryRecord, 0)
	for rows.Next() {
		record, err := scanQueryRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan query record: %v", apperrors.ErrStorage, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating query history: %v", apperrors.ErrStorage, err)
	}

	return records, nil
}

func (r *queryHistoryRepository) DeleteByDataset(ctx context.Context, datasetID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM query_history WHERE dataset_id = $1`, datasetID)
	if err != nil {
		return fmt.Errorf("%w: failed to delete query history: %v", apperrors.ErrStorage, err)
	}
	return nil
}

func scanQueryRecord(row pgx.Row) (*models.QueryRecord, error) {
	var record models.QueryRecord
	var resultJSON []byte

	err := row.Scan(
		&record.ID, &record.DatasetID, &record.NaturalLanguage, &record.GeneratedSQL, &resultJSON,
		&record.RowCount, &record.ExecutionTimeMs, &record.SessionID, &record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(resultJSON, &record.Result); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}

	return &record, nil
}
