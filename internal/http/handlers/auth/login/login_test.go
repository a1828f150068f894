package login

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/fitness-tracker/internal/models"
	authservice "github.com/magabrotheeeer/fitness-tracker/internal/services/auth"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(0).(*models.User)
	return user, args.String(1), args.Error(2)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	user := &models.User{
		UID:      "uid-1",
		Name:     "Alice",
		Email:    "alice@example.com",
		Settings: models.DefaultSettings(),
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockUser       *models.User
		mockToken      string
		mockErr        error
		wantStatusCode int
		wantError      string
		wantStatus     string
	}{
		{
			name:           "valid login",
			requestBody:    Request{Email: "alice@example.com", Password: "password123"},
			mockUser:       user,
			mockToken:      "tok",
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
			wantStatus:     "Error",
		},
		{
			name:           "validation error - missing password",
			requestBody:    Request{Email: "alice@example.com"},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "field Password is a required field",
			wantStatus:     "Error",
		},
		{
			name:           "validation error - bad email",
			requestBody:    Request{Email: "not-an-email", Password: "password123"},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "field Email must be a valid email address",
			wantStatus:     "Error",
		},
		{
			name:           "wrong credentials",
			requestBody:    Request{Email: "alice@example.com", Password: "wrongpass"},
			mockErr:        authservice.ErrInvalidCredentials,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "invalid credentials",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), serviceMock)

			if tt.mockUser != nil || tt.mockErr != nil {
				req := tt.requestBody.(Request)
				serviceMock.On("Login", mock.Anything, req.Email, req.Password).
					Return(tt.mockUser, tt.mockToken, tt.mockErr).Once()
			}

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(bodyBytes))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				data, ok := got["data"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, "tok", data["token"])
				gotUser, ok := data["user"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, "uid-1", gotUser["uid"])
				assert.NotContains(t, gotUser, "passwordHash")
			}
			serviceMock.AssertExpectations(t)
		})
	}
}
