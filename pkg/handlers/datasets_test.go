package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Jmatos87/queryflow/pkg/models"
)

func newDatasetsMux(t *testing.T, svc *fakeDatasetService) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	NewDatasetsHandler(svc, zaptest.NewLogger(t)).RegisterRoutes(mux)
	return mux
}

func TestDatasetsHandler_List(t *testing.T) {
	svc := &fakeDatasetService{datasets: []*models.Dataset{
		{ID: uuid.New(), Name: "people", SessionID: "sess-1"},
	}}
	mux := newDatasetsMux(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/datasets?sessionId=sess-1", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp ListDatasetsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Datasets, 1)
}

func TestDatasetsHandler_List_RequiresSession(t *testing.T) {
	mux := newDatasetsMux(t, &fakeDatasetService{})

	req := httptest.NewRequest(http.MethodGet, "/api/datasets", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDatasetsHandler_Get(t *testing.T) {
	dataset := &models.Dataset{ID: uuid.New(), Name: "people"}
	mux := newDatasetsMux(t, &fakeDatasetService{datasets: []*models.Dataset{dataset}})

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/"+dataset.ID.String(), nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got models.Dataset
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, dataset.ID, got.ID)
}

func TestDatasetsHandler_Get_NotFound(t *testing.T) {
	mux := newDatasetsMux(t, &fakeDatasetService{})

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDatasetsHandler_Get_InvalidID(t *testing.T) {
	mux := newDatasetsMux(t, &fakeDatasetService{})

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/not-a-uuid", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDatasetsHandler_Delete(t *testing.T) {
	svc := &fakeDatasetService{}
	mux := newDatasetsMux(t, svc)

	datasetID := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/datasets/"+datasetID.String(), nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, svc.deletedIDs, 1)
	assert.Equal(t, datasetID, svc.deletedIDs[0])

	var resp DeleteDatasetResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestDatasetsHandler_DeleteSession(t *testing.T) {
	svc := &fakeDatasetService{}
	mux := newDatasetsMux(t, svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/datasets/session/sess-1", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sess-1", svc.deletedSession)
}
