package confirm_booking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/RAV-ConfirmationService/internal/api/middleware"
	"github.com/m04kA/RAV-ConfirmationService/internal/service/confirmations"
)

type fakeService struct {
	err error
}

func (f *fakeService) Confirm(ctx context.Context, id string, actorOwnerID int64) error {
	return f.err
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

func doRequest(t *testing.T, svc *fakeService, userID string) *httptest.ResponseRecorder {
	t.Helper()

	handler := NewHandler(svc, nopLogger{})

	r := mux.NewRouter()
	sub := r.PathPrefix("").Subrouter()
	sub.Use(middleware.Auth)
	sub.HandleFunc("/confirmations/{confirmationId}/confirm", handler.Handle).Methods(http.MethodPost)

	req := httptest.NewRequest(http.MethodPost,
		"/confirmations/a3c9f1de-0000-4000-8000-000000000001/confirm", nil)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Handle(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{name: "success", serviceErr: nil, wantStatus: http.StatusOK},
		{name: "not found", serviceErr: confirmations.ErrConfirmationNotFound, wantStatus: http.StatusNotFound},
		{name: "access denied", serviceErr: confirmations.ErrAccessDenied, wantStatus: http.StatusForbidden},
		{name: "already resolved", serviceErr: confirmations.ErrAlreadyResolved, wantStatus: http.StatusConflict},
		{name: "deadline passed", serviceErr: confirmations.ErrDeadlinePassed, wantStatus: http.StatusConflict},
		{name: "internal error", serviceErr: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, &fakeService{err: tt.serviceErr}, "10")
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandler_Handle_Success_Body(t *testing.T) {
	rec := doRequest(t, &fakeService{}, "10")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ConfirmBookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "a3c9f1de-0000-4000-8000-000000000001", resp.ID)
	assert.Equal(t, "owner_confirmed", resp.Status)
}

func TestHandler_Handle_MissingUserHeader(t *testing.T) {
	rec := doRequest(t, &fakeService{}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
