package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/fitness-tracker/internal/models"
	"github.com/magabrotheeeer/fitness-tracker/internal/storage/repository"
)

type WorkoutRepositoryMock struct {
	mock.Mock
}

func (m *WorkoutRepositoryMock) CreateWorkout(ctx context.Context, w models.Workout) (int64, error) {
	args := m.Called(ctx, w)
	return args.Get(0).(int64), args.Error(1)
}

func (m *WorkoutRepositoryMock) GetWorkout(ctx context.Context, id int64) (*models.Workout, error) {
	args := m.Called(ctx, id)
	w, _ := args.Get(0).(*models.Workout)
	return w, args.Error(1)
}

func (m *WorkoutRepositoryMock) ListWorkouts(ctx context.Context, userUID string, limit, offset int) ([]*models.Workout, error) {
	args := m.Called(ctx, userUID, limit, offset)
	w, _ := args.Get(0).([]*models.Workout)
	return w, args.Error(1)
}

func (m *WorkoutRepositoryMock) UpdateWorkout(ctx context.Context, w models.Workout, id int64) (int64, error) {
	args := m.Called(ctx, w, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *WorkoutRepositoryMock) RemoveWorkout(ctx context.Context, id int64, userUID string) (int64, error) {
	args := m.Called(ctx, id, userUID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *WorkoutRepositoryMock) CountWorkoutTotals(ctx context.Context, userUID string) (int, int, int, error) {
	args := m.Called(ctx, userUID)
	return args.Int(0), args.Int(1), args.Int(2), args.Error(3)
}

func (m *WorkoutRepositoryMock) CountWorkoutsByType(ctx context.Context, userUID string) (map[string]int, error) {
	args := m.Called(ctx, userUID)
	r, _ := args.Get(0).(map[string]int)
	return r, args.Error(1)
}

func (m *WorkoutRepositoryMock) CountWorkoutsByMonth(ctx context.Context, userUID string, since time.Time) (map[time.Time]int, error) {
	args := m.Called(ctx, userUID, since)
	r, _ := args.Get(0).(map[time.Time]int)
	return r, args.Error(1)
}

// CacheStub — кеш в памяти поверх JSON, повторяет поведение redis-кеша.
type CacheStub struct {
	values map[string][]byte
}

func NewCacheStub() *CacheStub {
	return &CacheStub{values: make(map[string][]byte)}
}

func (c *CacheStub) Get(_ context.Context, key string, result any) (bool, error) {
	raw, ok := c.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, result)
}

func (c *CacheStub) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = raw
	return nil
}

func (c *CacheStub) Invalidate(_ context.Context, key string) error {
	delete(c.values, key)
	return nil
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestWorkoutService_Create(t *testing.T) {
	repo := new(WorkoutRepositoryMock)
	cache := NewCacheStub()
	svc := NewWorkoutService(repo, cache, newNoopLogger())

	repo.On("CreateWorkout", mock.Anything, mock.MatchedBy(func(w models.Workout) bool {
		return w.UserUID == "uid-1" && w.Type == "strength" &&
			w.Date.Equal(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	})).Return(int64(7), nil).Once()

	workout, err := svc.Create(context.Background(), "uid-1", models.DummyWorkout{
		Date:     "2026-08-01",
		Type:     "strength",
		Duration: 45,
		Calories: 300,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), workout.ID)
	repo.AssertExpectations(t)
}

func TestWorkoutService_Create_MalformedDate(t *testing.T) {
	repo := new(WorkoutRepositoryMock)
	svc := NewWorkoutService(repo, NewCacheStub(), newNoopLogger())

	workout, err := svc.Create(context.Background(), "uid-1", models.DummyWorkout{
		Date:     "20-08-2026",
		Type:     "strength",
		Duration: 45,
	})
	assert.Nil(t, workout)
	assert.ErrorIs(t, err, ErrInvalidDate)
	repo.AssertNotCalled(t, "CreateWorkout", mock.Anything, mock.Anything)
}

func TestWorkoutService_Read(t *testing.T) {
	stored := &models.Workout{
		ID:      1,
		UserUID: "owner-uid",
		Type:    "bodyweight",
		Date:    time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
	}

	t.Run("owner reads own workout and fills cache", func(t *testing.T) {
		repo := new(WorkoutRepositoryMock)
		cache := NewCacheStub()
		svc := NewWorkoutService(repo, cache, newNoopLogger())

		repo.On("GetWorkout", mock.Anything, int64(1)).Return(stored, nil).Once()

		got, err := svc.Read(context.Background(), "owner-uid", 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.ID)

		// повторное чтение обслуживается из кеша, репозиторий не трогается
		got, err = svc.Read(context.Background(), "owner-uid", 1)
		require.NoError(t, err)
		assert.Equal(t, "owner-uid", got.UserUID)
		repo.AssertNumberOfCalls(t, "GetWorkout", 1)
	})

	t.Run("foreign workout", func(t *testing.T) {
		repo := new(WorkoutRepositoryMock)
		svc := NewWorkoutService(repo, NewCacheStub(), newNoopLogger())

		repo.On("GetWorkout", mock.Anything, int64(1)).Return(stored, nil).Once()

		got, err := svc.Read(context.Background(), "other-uid", 1)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrNoAccess)
	})

	t.Run("missing workout", func(t *testing.T) {
		repo := new(WorkoutRepositoryMock)
		svc := NewWorkoutService(repo, NewCacheStub(), newNoopLogger())

		repo.On("GetWorkout", mock.Anything, int64(99)).
			Return(nil, repository.ErrWorkoutNotFound).Once()

		got, err := svc.Read(context.Background(), "owner-uid", 99)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrWorkoutNotFound)
	})
}

func TestWorkoutService_Update_ForeignWorkout(t *testing.T) {
	repo := new(WorkoutRepositoryMock)
	svc := NewWorkoutService(repo, NewCacheStub(), newNoopLogger())

	repo.On("GetWorkout", mock.Anything, int64(1)).Return(&models.Workout{
		ID:      1,
		UserUID: "owner-uid",
	}, nil).Once()

	got, err := svc.Update(context.Background(), "other-uid", 1, models.DummyWorkout{
		Type:     "strength",
		Duration: 30,
	})
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrNoAccess)
	repo.AssertNotCalled(t, "UpdateWorkout", mock.Anything, mock.Anything, mock.Anything)
}

func TestWorkoutService_Remove(t *testing.T) {
	repo := new(WorkoutRepositoryMock)
	cache := NewCacheStub()
	svc := NewWorkoutService(repo, cache, newNoopLogger())

	repo.On("GetWorkout", mock.Anything, int64(1)).Return(&models.Workout{
		ID:      1,
		UserUID: "owner-uid",
	}, nil).Once()
	repo.On("RemoveWorkout", mock.Anything, int64(1), "owner-uid").
		Return(int64(1), nil).Once()

	err := svc.Remove(context.Background(), "owner-uid", 1)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestWorkoutService_Stats_FillsEmptyMonths(t *testing.T) {
	repo := new(WorkoutRepositoryMock)
	cache := NewCacheStub()
	svc := NewWorkoutService(repo, cache, newNoopLogger())

	now := time.Now().UTC()
	firstMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -5, 0)

	repo.On("CountWorkoutTotals", mock.Anything, "uid-1").Return(3, 120, 900, nil).Once()
	repo.On("CountWorkoutsByType", mock.Anything, "uid-1").
		Return(map[string]int{"strength": 2, "bodyweight": 1}, nil).Once()
	repo.On("CountWorkoutsByMonth", mock.Anything, "uid-1", firstMonth).
		Return(map[time.Time]int{firstMonth: 3}, nil).Once()

	stats, err := svc.Stats(context.Background(), "uid-1")
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalWorkouts)
	assert.Equal(t, 120, stats.TotalDuration)
	assert.Equal(t, 900, stats.TotalCalories)
	assert.Equal(t, map[string]int{"strength": 2, "bodyweight": 1}, stats.ByType)

	// шесть месяцев, пустые заполнены нулями
	assert.Len(t, stats.ByMonth, 6)
	assert.Equal(t, 3, stats.ByMonth[firstMonth.Format("Jan 2006")])
	assert.Equal(t, 0, stats.ByMonth[now.Format("Jan 2006")])

	// второй вызов берёт результат из кеша
	stats2, err := svc.Stats(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, stats, stats2)
	repo.AssertNumberOfCalls(t, "CountWorkoutTotals", 1)
}

func TestWorkoutService_Stats_MonthKeysInForeignLocation(t *testing.T) {
	repo := new(WorkoutRepositoryMock)
	svc := NewWorkoutService(repo, NewCacheStub(), newNoopLogger())

	now := time.Now().UTC()
	firstMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -5, 0)

	// Драйвер БД может вернуть тот же момент времени в локальной зоне.
	local := firstMonth.In(time.FixedZone("MSK", 3*60*60))

	repo.On("CountWorkoutTotals", mock.Anything, "uid-1").Return(3, 135, 900, nil).Once()
	repo.On("CountWorkoutsByType", mock.Anything, "uid-1").
		Return(map[string]int{"strength": 3}, nil).Once()
	repo.On("CountWorkoutsByMonth", mock.Anything, "uid-1", firstMonth).
		Return(map[time.Time]int{local: 3}, nil).Once()

	stats, err := svc.Stats(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.ByMonth[firstMonth.Format("Jan 2006")],
		"месяц с тремя тренировками должен показывать 3")
}
