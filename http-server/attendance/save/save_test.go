package save

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"optimaflow/internal/storage"
)

type MockAttendanceSaver struct {
	mock.Mock
}

func (m *MockAttendanceSaver) SaveAttendance(ctx context.Context, req storage.SaveAttendance) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func doRequest(t *testing.T, saver AttendanceSaver, body string) *httptest.ResponseRecorder {
	t.Helper()

	handler := SaveAttendance(slog.Default(), saver)
	req := httptest.NewRequest(http.MethodPost, "/api/attendance", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestSaveAttendance_Success(t *testing.T) {
	saver := new(MockAttendanceSaver)
	saver.On("SaveAttendance", mock.Anything, mock.Anything).Return(nil)

	rr := doRequest(t, saver, `{
		"group_id": 3,
		"date": "2024-03-01",
		"records": [
			{"technician_id": 1, "status": "present"},
			{"technician_id": 2, "status": "absent", "note": "sick"}
		]
	}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"saved":2`)
	saver.AssertExpectations(t)
}

func TestSaveAttendance_EmptySheetRejected(t *testing.T) {
	saver := new(MockAttendanceSaver)

	rr := doRequest(t, saver, `{"group_id": 3, "date": "2024-03-01", "records": []}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	saver.AssertNotCalled(t, "SaveAttendance")
}

func TestSaveAttendance_UnknownStatusRejected(t *testing.T) {
	saver := new(MockAttendanceSaver)

	rr := doRequest(t, saver, `{
		"group_id": 3,
		"date": "2024-03-01",
		"records": [{"technician_id": 1, "status": "vacationing"}]
	}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "unknown status")
	saver.AssertNotCalled(t, "SaveAttendance")
}

func TestSaveAttendance_MissingGroupRejected(t *testing.T) {
	saver := new(MockAttendanceSaver)

	rr := doRequest(t, saver, `{"date": "2024-03-01", "records": [{"technician_id": 1, "status": "present"}]}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	saver.AssertNotCalled(t, "SaveAttendance")
}
