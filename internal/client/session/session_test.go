package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/fitness-tracker/internal/client"
	"github.com/magabrotheeeer/fitness-tracker/internal/models"
)

type APIMock struct {
	mock.Mock
}

func (m *APIMock) Register(ctx context.Context, name, email, password string) (*client.AuthResponse, error) {
	args := m.Called(ctx, name, email, password)
	resp, _ := args.Get(0).(*client.AuthResponse)
	return resp, args.Error(1)
}

func (m *APIMock) Login(ctx context.Context, email, password string) (*client.AuthResponse, error) {
	args := m.Called(ctx, email, password)
	resp, _ := args.Get(0).(*client.AuthResponse)
	return resp, args.Error(1)
}

func (m *APIMock) GetSelf(ctx context.Context) (*models.User, error) {
	args := m.Called(ctx)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *APIMock) SetToken(token string) {
	m.Called(token)
}

func newTestSession(t *testing.T) (*Session, *APIMock, *FileStore) {
	t.Helper()

	store := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	api := new(APIMock)
	return New(api, store), api, store
}

func testUser() *models.User {
	return &models.User{
		UID:      "uid-1",
		Name:     "Alice",
		Email:    "alice@example.com",
		Settings: models.DefaultSettings(),
	}
}

func TestSession_LoginPersistsAuth(t *testing.T) {
	sess, api, _ := newTestSession(t)

	api.On("Login", mock.Anything, "alice@example.com", "secret123").
		Return(&client.AuthResponse{Token: "tok", User: testUser()}, nil).Once()

	var hookUser *models.User
	hookCalled := false
	sess.OnAuthChange(func(user *models.User) {
		hookCalled = true
		hookUser = user
	})

	user, err := sess.Login(context.Background(), "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", user.UID)

	assert.True(t, hookCalled)
	require.NotNil(t, hookUser)
	assert.Equal(t, "dark", hookUser.Settings.Theme)

	token, err := sess.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	saved, err := sess.User()
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "alice@example.com", saved.Email)

	api.AssertExpectations(t)
}

func TestSession_ReconcileValidToken(t *testing.T) {
	sess, api, _ := newTestSession(t)

	api.On("Login", mock.Anything, "alice@example.com", "secret123").
		Return(&client.AuthResponse{Token: "tok", User: testUser()}, nil).Once()
	_, err := sess.Login(context.Background(), "alice@example.com", "secret123")
	require.NoError(t, err)

	refreshed := testUser()
	refreshed.Settings.Theme = "light"

	api.On("SetToken", "tok").Once()
	api.On("GetSelf", mock.Anything).Return(refreshed, nil).Once()

	user, err := sess.Reconcile(context.Background())
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "light", user.Settings.Theme)

	saved, err := sess.User()
	require.NoError(t, err)
	assert.Equal(t, "light", saved.Settings.Theme)

	api.AssertExpectations(t)
}

func TestSession_ReconcileStaleTokenClearsAuth(t *testing.T) {
	sess, api, store := newTestSession(t)

	require.NoError(t, store.Set("token", []byte(`"stale"`)))
	require.NoError(t, store.Set("user", []byte(`{"uid":"uid-1"}`)))
	require.NoError(t, store.Set("anonymous_workouts", []byte(`[{"id":"local-1"}]`)))

	api.On("SetToken", "stale").Once()
	api.On("GetSelf", mock.Anything).Return(nil, client.ErrUnauthorized).Once()
	api.On("SetToken", "").Once()

	hookCalled := false
	sess.OnAuthChange(func(user *models.User) {
		hookCalled = true
		assert.Nil(t, user)
	})

	user, err := sess.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.True(t, hookCalled)

	token, err := sess.Token()
	require.NoError(t, err)
	assert.Empty(t, token)

	saved, err := sess.User()
	require.NoError(t, err)
	assert.Nil(t, saved)

	workouts, err := sess.AnonymousWorkouts()
	require.NoError(t, err)
	require.Len(t, workouts, 1)
	assert.Equal(t, "local-1", workouts[0].ID)

	api.AssertExpectations(t)
}

func TestSession_ReconcileWithoutToken(t *testing.T) {
	sess, api, _ := newTestSession(t)

	user, err := sess.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)

	api.AssertNotCalled(t, "GetSelf", mock.Anything)
}

func TestSession_LogoutKeepsAnonymousWorkouts(t *testing.T) {
	sess, api, _ := newTestSession(t)

	api.On("Login", mock.Anything, "alice@example.com", "secret123").
		Return(&client.AuthResponse{Token: "tok", User: testUser()}, nil).Once()
	_, err := sess.Login(context.Background(), "alice@example.com", "secret123")
	require.NoError(t, err)

	local, err := sess.AppendAnonymousWorkout(models.DummyWorkout{
		Date:     "2026-08-20",
		Type:     "strength",
		Duration: 30,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, local.ID)

	api.On("SetToken", "").Once()
	require.NoError(t, sess.Logout())

	token, err := sess.Token()
	require.NoError(t, err)
	assert.Empty(t, token)

	workouts, err := sess.AnonymousWorkouts()
	require.NoError(t, err)
	require.Len(t, workouts, 1)
	assert.Equal(t, local.ID, workouts[0].ID)

	api.AssertExpectations(t)
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	first := NewFileStore(path)
	require.NoError(t, first.Set("token", []byte(`"tok"`)))

	second := NewFileStore(path)
	value, ok, err := second.Get("token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `"tok"`, string(value))

	require.NoError(t, second.Delete("token"))
	_, ok, err = second.Get("token")
	require.NoError(t, err)
	assert.False(t, ok)
}
