package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/fitness-tracker/internal/storage/repository"
)

// Хранилище должно удовлетворять контракту Checker, именно оно
// передаётся в New при сборке маршрутов.
var _ Checker = (*repository.Storage)(nil)

type CheckerMock struct {
	mock.Mock
}

func (m *CheckerMock) CheckDatabaseReady(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestHealthHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		checkErr       error
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "database ready",
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "database unavailable",
			checkErr:       errors.New("connection refused"),
			wantStatusCode: http.StatusServiceUnavailable,
			wantError:      "database is not ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkerMock := new(CheckerMock)
			checkerMock.On("CheckDatabaseReady", mock.Anything).Return(tt.checkErr).Once()

			handler := New(newNoopLogger(), checkerMock)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.wantError != "" {
				assert.Equal(t, "Error", got["status"])
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				assert.Equal(t, "OK", got["status"])
			}
			checkerMock.AssertExpectations(t)
		})
	}
}
