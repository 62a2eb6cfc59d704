package update

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"optimaflow/internal/storage"
)

type MockStatusUpdater struct {
	mock.Mock
}

func (m *MockStatusUpdater) UpdateWorkOrderStatus(ctx context.Context, orderNo, status, note string) error {
	args := m.Called(ctx, orderNo, status, note)
	return args.Error(0)
}

func doRequest(t *testing.T, updater StatusUpdater, orderNo, body string) *httptest.ResponseRecorder {
	t.Helper()

	router := chi.NewRouter()
	router.Put("/api/work-orders/{orderNo}/status", UpdateStatus(slog.Default(), updater))

	req := httptest.NewRequest(http.MethodPut,
		fmt.Sprintf("/api/work-orders/%s/status", orderNo), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestUpdateStatus_Success(t *testing.T) {
	updater := new(MockStatusUpdater)
	updater.On("UpdateWorkOrderStatus", mock.Anything, "A1", "approved", "looks good").Return(nil)

	rr := doRequest(t, updater, "A1", `{"status":"approved","note":"looks good"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"success"`)
	updater.AssertExpectations(t)
}

func TestUpdateStatus_UnknownStatusRejected(t *testing.T) {
	updater := new(MockStatusUpdater)

	rr := doRequest(t, updater, "A1", `{"status":"completed"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	updater.AssertNotCalled(t, "UpdateWorkOrderStatus")
}

func TestUpdateStatus_ImportedCannotBeAssigned(t *testing.T) {
	updater := new(MockStatusUpdater)

	rr := doRequest(t, updater, "A1", `{"status":"imported"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	updater.AssertNotCalled(t, "UpdateWorkOrderStatus")
}

func TestUpdateStatus_InvalidJSON(t *testing.T) {
	updater := new(MockStatusUpdater)

	rr := doRequest(t, updater, "A1", `{`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	updater.AssertNotCalled(t, "UpdateWorkOrderStatus")
}

func TestUpdateStatus_NotFound(t *testing.T) {
	updater := new(MockStatusUpdater)
	updater.On("UpdateWorkOrderStatus", mock.Anything, "GONE", "flagged", "").
		Return(fmt.Errorf("storage: %w", storage.ErrOrderNotFound))

	rr := doRequest(t, updater, "GONE", `{"status":"flagged"}`)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	updater.AssertExpectations(t)
}
