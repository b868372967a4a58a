package models

import (
	"time"

	"github.com/google/uuid"
)

// ColumnType is the inferred semantic type of a dataset column.
type ColumnType string

const (
	ColumnTypeText      ColumnType = "text"
	ColumnTypeInteger   ColumnType = "integer"
	ColumnTypeReal      ColumnType = "real"
	ColumnTypeBoolean   ColumnType = "boolean"
	ColumnTypeTimestamp ColumnType = "timestamp"
)

// ColumnSchema describes a single inferred column. Produced once at upload
// time and immutable afterward. Sample holds up to a handful of
// representative values, coerced to the column type when possible so prompt
// consumers see realistic values rather than raw strings.
type ColumnSchema struct {
	Name     string     `json:"name"`
	Type     ColumnType `json:"type"`
	Nullable bool       `json:"nullable"`
	Sample   []any      `json:"sample"`
}

// FileType identifies the uploaded file format.
type FileType string

const (
	FileTypeCSV  FileType = "csv"
	FileTypeJSON FileType = "json"
	FileTypeSQL  FileType = "sql"
	FileTypeXLSX FileType = "xlsx"
)

// Dataset is one uploaded file's materialized, typed table plus its schema
// metadata. Owned by a session; one session may own many datasets.
type Dataset struct {
	ID               uuid.UUID      `json:"id"`
	Name             string         `json:"name"`
	OriginalFilename string         `json:"original_filename"`
	FileType         FileType       `json:"file_type"`
	TableName        string         `json:"table_name"`
	Schema           []ColumnSchema `json:"schema"`
	RowCount         int            `json:"row_count"`
	SessionID        string         `json:"session_id"`
	CreatedAt        time.Time      `json:"created_at"`
}
