package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Jmatos87/queryflow/pkg/apperrors"
	"github.com/Jmatos87/queryflow/pkg/ingest"
	"github.com/Jmatos87/queryflow/pkg/models"
)

// fakeDatasetRepo is an in-memory DatasetRepository.
type fakeDatasetRepo struct {
	datasets  map[uuid.UUID]*models.Dataset
	createErr error
}

func newFakeDatasetRepo(datasets ...*models.Dataset) *fakeDatasetRepo {
	repo := &fakeDatasetRepo{datasets: make(map[uuid.UUID]*models.Dataset)}
	for _, d := range datasets {
		repo.datasets[d.ID] = d
	}
	return repo
}

func (r *fakeDatasetRepo) Create(ctx context.Context, dataset *models.Dataset) error {
	if r.createErr != nil {
		return r.createErr
	}
	if dataset.ID == uuid.Nil {
		dataset.ID = uuid.New()
	}
	r.datasets[dataset.ID] = dataset
	return nil
}

func (r *fakeDatasetRepo) GetByID(ctx context.Context, datasetID uuid.UUID) (*models.Dataset, error) {
	dataset, ok := r.datasets[datasetID]
	if !ok {
		return nil, fmt.Errorf("%w: dataset %s", apperrors.ErrNotFound, datasetID)
	}
	return dataset, nil
}

func (r *fakeDatasetRepo) ListBySession(ctx context.Context, sessionID string) ([]*models.Dataset, error) {
	var out []*models.Dataset
	for _, d := range r.datasets {
		if d.SessionID == sessionID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDatasetRepo) Delete(ctx context.Context, datasetID uuid.UUID) error {
	if _, ok := r.datasets[datasetID]; !ok {
		return fmt.Errorf("%w: dataset %s", apperrors.ErrNotFound, datasetID)
	}
	delete(r.datasets, datasetID)
	return nil
}

// fakeHistoryRepo is an in-memory QueryHistoryRepository.
type fakeHistoryRepo struct {
	records   []*models.QueryRecord
	createErr error
}

func (r *fakeHistoryRepo) Create(ctx context.Context, record *models.QueryRecord) error {
	if r.createErr != nil {
		return r.createErr
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	r.records = append(r.records, record)
	return nil
}

func (r *fakeHistoryRepo) GetByID(ctx context.Context, recordID uuid.UUID) (*models.QueryRecord, error) {
	for _, rec := range r.records {
		if rec.ID == recordID {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("%w: query record %s", apperrors.ErrNotFound, recordID)
}

func (r *fakeHistoryRepo) ListByDataset(ctx context.Context, datasetID uuid.UUID, sessionID string) ([]*models.QueryRecord, error) {
	var out []*models.QueryRecord
	for _, rec := range r.records {
		if rec.DatasetID != nil && *rec.DatasetID == datasetID && rec.SessionID == sessionID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeHistoryRepo) DeleteByDataset(ctx context.Context, datasetID uuid.UUID) error {
	kept := r.records[:0]
	for _, rec := range r.records {
		if rec.DatasetID == nil || *rec.DatasetID != datasetID {
			kept = append(kept, rec)
		}
	}
	r.records = kept
	return nil
}

// fakeExecutor returns canned execution results.
type fakeExecutor struct {
	result  *ExecutionResult
	err     error
	lastSQL string
	calls   int
}

func (e *fakeExecutor) RunReadOnly(ctx context.Context, sqlQuery string) (*ExecutionResult, error) {
	e.lastSQL = sqlQuery
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	if e.result != nil {
		return e.result, nil
	}
	return &ExecutionResult{Rows: []map[string]any{}, RowCount: 0}, nil
}

// fakeLoader records loader calls.
type fakeLoader struct {
	createErr     error
	loadErr       error
	dropErr       error
	createdTables []string
	droppedTables []string
	loadedRows    int
}

func (l *fakeLoader) CreateTable(ctx context.Context, tableName string, schema []models.ColumnSchema) error {
	if l.createErr != nil {
		return l.createErr
	}
	l.createdTables = append(l.createdTables, tableName)
	return nil
}

func (l *fakeLoader) LoadData(ctx context.Context, tableName string, table *ingest.ParsedTable, schema []models.ColumnSchema) (int, error) {
	if l.loadErr != nil {
		return 0, l.loadErr
	}
	l.loadedRows = len(table.Rows)
	return len(table.Rows), nil
}

func (l *fakeLoader) DropTable(ctx context.Context, tableName string) error {
	l.droppedTables = append(l.droppedTables, tableName)
	return l.dropErr
}
