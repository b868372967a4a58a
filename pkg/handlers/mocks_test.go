package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Jmatos87/queryflow/pkg/apperrors"
	"github.com/Jmatos87/queryflow/pkg/models"
	"github.com/Jmatos87/queryflow/pkg/services"
)

type fakeUploadService struct {
	dataset *models.Dataset
	err     error
	lastReq *services.UploadRequest
}

func (s *fakeUploadService) Upload(ctx context.Context, req *services.UploadRequest) (*models.Dataset, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.dataset, nil
}

type fakeQueryService struct {
	result  *services.QueryResult
	err     error
	lastReq *services.QueryRequest
}

func (s *fakeQueryService) Ask(ctx context.Context, req *services.QueryRequest) (*services.QueryResult, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type fakeChatService struct {
	result  *services.ChatResult
	err     error
	lastReq *services.ChatRequest
}

func (s *fakeChatService) Chat(ctx context.Context, req *services.ChatRequest) (*services.ChatResult, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type fakeDatasetService struct {
	datasets       []*models.Dataset
	err            error
	deletedIDs     []uuid.UUID
	deletedSession string
}

func (s *fakeDatasetService) List(ctx context.Context, sessionID string) ([]*models.Dataset, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.datasets, nil
}

func (s *fakeDatasetService) Get(ctx context.Context, datasetID uuid.UUID) (*models.Dataset, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, d := range s.datasets {
		if d.ID == datasetID {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: dataset %s", apperrors.ErrNotFound, datasetID)
}

func (s *fakeDatasetService) Delete(ctx context.Context, datasetID uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.deletedIDs = append(s.deletedIDs, datasetID)
	return nil
}

func (s *fakeDatasetService) DeleteSession(ctx context.Context, sessionID string) error {
	if s.err != nil {
		return s.err
	}
	s.deletedSession = sessionID
	return nil
}
