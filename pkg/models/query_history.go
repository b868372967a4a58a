package models

import (
	"time"

	"github.com/google/uuid"
)

// QueryRecord captures one executed natural-language query. Append-only,
// never mutated after creation. DatasetID is nil for cross-dataset chat
// queries.
type QueryRecord struct {
	ID              uuid.UUID        `json:"id"`
	DatasetID       *uuid.UUID       `json:"dataset_id,omitempty"`
	NaturalLanguage string           `json:"natural_language"`
	GeneratedSQL    string           `json:"generated_sql"`
	Result          []map[string]any `json:"result"`
	RowCount        int              `json:"row_count"`
	ExecutionTimeMs int64            `json:"execution_time_ms"`
	SessionID       string           `json:"session_id"`
	CreatedAt       time.Time        `json:"created_at"`
}
