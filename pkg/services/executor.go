// Package services orchestrates the upload and query pipelines.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Jmatos87/queryflow/pkg/apperrors"
	"github.com/Jmatos87/queryflow/pkg/database"
)

// ExecutionResult holds the rows, row count, and timing of one executed
// query.
type ExecutionResult struct {
	Rows            []map[string]any
	RowCount        int
	ExecutionTimeMs int64
}

// QueryExecutor runs validated SQL against the storage engine.
type QueryExecutor interface {
	// RunReadOnly executes a validated SELECT inside a read-only
	// transaction and returns rows, row count, and elapsed time.
	RunReadOnly(ctx context.Context, sqlQuery string) (*ExecutionResult, error)
}

type pgQueryExecutor struct {
	db     *database.DB
	logger *zap.Logger
}

// NewQueryExecutor creates a PostgreSQL-backed query executor.
func NewQueryExecutor(db *database.DB, logger *zap.Logger) QueryExecutor {
	return &pgQueryExecutor{
		db:     db,
		logger: logger.Named("executor"),
	}
}

var _ QueryExecutor = (*pgQueryExecutor)(nil)

// RunReadOnly executes the statement in a transaction with read-only access
// mode, so even a statement that slipped past the validator cannot write.
func (e *pgQueryExecutor) RunReadOnly(ctx context.Context, sqlQuery string) (*ExecutionResult, error) {
	start := time.Now()

	tx, err := e.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin read-only transaction: %v", apperrors.ErrStorage, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, sqlQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: query execution failed: %v", apperrors.ErrStorage, err)
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = string(fd.Name)
	}

	resultRows := make([]map[string]any, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read row values: %v", apperrors.ErrStorage, err)
		}

		rowMap := make(map[string]any, len(columns))
		for i, col := range columns {
			rowMap[col] = values[i]
		}
		resultRows = append(resultRows, rowMap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating rows: %v", apperrors.ErrStorage, err)
	}

	elapsed := time.Since(start).Milliseconds()

	e.logger.Debug("Executed query",
		zap.Int("rows", len(resultRows)),
		zap.Int64("elapsed_ms", elapsed))

	return &ExecutionResult{
		Rows:            resultRows,
		RowCount:        len(resultRows),
		ExecutionTimeMs: elapsed,
	}, nil
}
