package ingest

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Jmatos87/queryflow/pkg/apperrors"
	"github.com/Jmatos87/queryflow/pkg/database"
	"github.com/Jmatos87/queryflow/pkg/models"
)

// DefaultBatchSize is the number of rows per multi-row INSERT when no batch
// size is configured.
const DefaultBatchSize = 500

// Loader creates typed physical tables and loads coerced rows in batches.
type Loader struct {
	db        *database.DB
	batchSize int
	logger    *zap.Logger
}

// NewLoader creates a loader. A non-positive batch size falls back to the
// default.
func NewLoader(db *database.DB, batchSize int, logger *zap.Logger) *Loader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Loader{
		db:        db,
		batchSize: batchSize,
		logger:    logger.Named("loader"),
	}
}

// GenerateTableName returns a random, collision-resistant physical table
// name of the form ds_<12 hex chars>. Generated names keep user input out
// of the table-name channel entirely.
func GenerateTableName() string {
	id := uuid.New()
	return "ds_" + hex.EncodeToString(id[:])[:12]
}

// CreateTable creates the physical table for an inferred schema. Every
// column permits NULL regardless of the inferred nullable flag: inference is
// sample-based, and a later coercion failure must degrade to NULL rather
// than violate a constraint.
func (l *Loader) CreateTable(ctx context.Context, tableName string, schema []models.ColumnSchema) error {
	if _, err := l.db.Exec(ctx, buildCreateTable(tableName, schema)); err != nil {
		return fmt.Errorf("%w: failed to create table %s: %v", apperrors.ErrStorage, tableName, err)
	}

	l.logger.Info("Created dataset table",
		zap.String("table", tableName),
		zap.Int("columns", len(schema)))

	return nil
}

// LoadData inserts the table's rows in fixed-size batches, one multi-row
// parameterized INSERT per batch, and returns the number of rows loaded.
// Batches are sequential so a failure can report the offset of the first
// row in the failed batch.
func (l *Loader) LoadData(ctx context.Context, tableName string, table *ParsedTable, schema []models.ColumnSchema) (int, error) {
	loaded := 0

	for offset := 0; offset < len(table.Rows); offset += l.batchSize {
		end := offset + l.batchSize
		if end > len(table.Rows) {
			end = len(table.Rows)
		}
		batch := table.Rows[offset:end]

		stmt, args := buildInsertBatch(tableName, schema, batch)
		if _, err := l.db.Exec(ctx, stmt, args...); err != nil {
			return loaded, fmt.Errorf("%w: failed to insert batch at row %d: %v", apperrors.ErrStorage, offset, err)
		}

		loaded += len(batch)
	}

	l.logger.Info("Loaded dataset rows",
		zap.String("table", tableName),
		zap.Int("rows", loaded))

	return loaded, nil
}

// DropTable removes a physical dataset table. Used by the dataset delete
// cascade; callers treat failures as best-effort.
func (l *Loader) DropTable(ctx context.Context, tableName string) error {
	stmt := fmt.Sprintf(`DROP TABLE IF EXISTS %s CASCADE`, quoteIdent(tableName))
	if _, err := l.db.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("%w: failed to drop table %s: %v", apperrors.ErrStorage, tableName, err)
	}
	return nil
}

// buildCreateTable renders the CREATE TABLE statement for a schema.
func buildCreateTable(tableName string, schema []models.ColumnSchema) string {
	defs := make([]string, 0, len(schema)+1)
	defs = append(defs, "id BIGSERIAL PRIMARY KEY")
	for _, col := range schema {
		defs = append(defs, fmt.Sprintf("%s %s", quoteIdent(col.Name), physicalType(col.Type)))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(tableName), strings.Join(defs, ", "))
}

// buildInsertBatch renders one multi-row parameterized INSERT for a batch.
func buildInsertBatch(tableName string, schema []models.ColumnSchema, batch []Row) (string, []any) {
	columns := make([]string, 0, len(schema))
	for _, col := range schema {
		columns = append(columns, quoteIdent(col.Name))
	}

	args := make([]any, 0, len(batch)*len(schema))
	tuples := make([]string, 0, len(batch))

	for _, row := range batch {
		placeholders := make([]string, 0, len(schema))
		for _, col := range schema {
			args = append(args, CoerceValue(row[col.Name], col.Type))
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		tuples = append(tuples, "("+strings.Join(placeholders, ", ")+")")
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		quoteIdent(tableName), strings.Join(columns, ", "), strings.Join(tuples, ", "))
	return stmt, args
}

// CoerceValue converts a raw cell to its physical representation for the
// column type. Empty or absent cells become nil, and any single malformed
// cell degrades to nil rather than aborting its batch.
func CoerceValue(v Value, colType models.ColumnType) any {
	if v.IsEmpty() {
		return nil
	}

	str := strings.TrimSpace(v.Text)

	switch colType {
	case models.ColumnTypeInteger:
		num, ok := parseNumeric(str)
		if !ok {
			return nil
		}
		return int64(num.value)
	case models.ColumnTypeReal:
		num, ok := parseNumeric(str)
		if !ok {
			return nil
		}
		return num.value
	case models.ColumnTypeBoolean:
		return strings.EqualFold(str, "true")
	case models.ColumnTypeTimestamp:
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, str); err == nil {
				return t.UTC()
			}
		}
		return nil
	default:
		return str
	}
}

// physicalType maps a semantic column type to its PostgreSQL column type.
func physicalType(colType models.ColumnType) string {
	switch colType {
	case models.ColumnTypeInteger:
		return "BIGINT"
	case models.ColumnTypeReal:
		return "DOUBLE PRECISION"
	case models.ColumnTypeBoolean:
		return "BOOLEAN"
	case models.ColumnTypeTimestamp:
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}

// quoteIdent double-quotes an identifier, escaping embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
