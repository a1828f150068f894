package create

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/fitness-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/fitness-tracker/internal/models"
	workoutservice "github.com/magabrotheeeer/fitness-tracker/internal/services/workout"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Create(ctx context.Context, userUID string, req models.DummyWorkout) (*models.Workout, error) {
	args := m.Called(ctx, userUID, req)
	workout, _ := args.Get(0).(*models.Workout)
	return workout, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestCreateHandler_ServeHTTP(t *testing.T) {
	created := &models.Workout{
		ID:       1,
		UserUID:  "uid-1",
		Date:     time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
		Type:     "strength",
		Duration: 60,
		Calories: 400,
	}

	tests := []struct {
		name           string
		body           string
		mockWorkout    *models.Workout
		mockErr        error
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "valid workout",
			body:           `{"date":"2026-08-20","type":"strength","duration":60,"calories":400}`,
			mockWorkout:    created,
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "malformed date",
			body:           `{"date":"20-08-2026","type":"strength","duration":60}`,
			mockErr:        workoutservice.ErrInvalidDate,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid workout date",
		},
		{
			name:           "invalid json body",
			body:           `not a json`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:           "unknown workout type",
			body:           `{"date":"2026-08-20","type":"yoga","duration":60}`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "field Type must be one of: strength weightlifting bodyweight",
		},
		{
			name:           "zero duration",
			body:           `{"date":"2026-08-20","type":"strength","duration":0}`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "field Duration is a required field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), serviceMock)

			if tt.mockWorkout != nil || tt.mockErr != nil {
				serviceMock.On("Create", mock.Anything, "uid-1", mock.AnythingOfType("models.DummyWorkout")).
					Return(tt.mockWorkout, tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/workouts", bytes.NewReader([]byte(tt.body)))
			ctx := context.WithValue(req.Context(), middlewarectx.UserUID, "uid-1")
			req = req.WithContext(ctx)
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
				data, ok := got["data"].(map[string]any)
				require.True(t, ok)
				gotWorkout, ok := data["workout"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, float64(1), gotWorkout["id"])
			}
			serviceMock.AssertExpectations(t)
		})
	}
}
