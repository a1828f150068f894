// Package services содержит бизнес-логику для управления тренировками
// и кешированием их чтения и статистики.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/fitness-tracker/internal/models"
	"github.com/magabrotheeeer/fitness-tracker/internal/storage/repository"
)

// Ошибки бизнес-уровня операций с тренировками.
var (
	// ErrWorkoutNotFound — тренировка не существует.
	ErrWorkoutNotFound = errors.New("workout not found")
	// ErrNoAccess — тренировка принадлежит другому пользователю.
	ErrNoAccess = errors.New("no access to this workout")
	// ErrInvalidDate — дата тренировки не соответствует формату 2006-01-02.
	ErrInvalidDate = errors.New("invalid workout date")
)

// statsMonths — глубина помесячной статистики.
const statsMonths = 6

// WorkoutRepository определяет методы для работы с тренировками в хранилище.
type WorkoutRepository interface {
	// CreateWorkout добавляет новую тренировку и возвращает её ID.
	CreateWorkout(ctx context.Context, w models.Workout) (int64, error)
	// GetWorkout возвращает тренировку по ID.
	GetWorkout(ctx context.Context, id int64) (*models.Workout, error)
	// ListWorkouts возвращает тренировки пользователя с пагинацией.
	ListWorkouts(ctx context.Context, userUID string, limit, offset int) ([]*models.Workout, error)
	// UpdateWorkout обновляет тренировку в пределах владельца.
	UpdateWorkout(ctx context.Context, w models.Workout, id int64) (int64, error)
	// RemoveWorkout удаляет тренировку в пределах владельца.
	RemoveWorkout(ctx context.Context, id int64, userUID string) (int64, error)
	// CountWorkoutTotals подсчитывает суммарные показатели пользователя.
	CountWorkoutTotals(ctx context.Context, userUID string) (workouts, duration, calories int, err error)
	// CountWorkoutsByType группирует тренировки по типу.
	CountWorkoutsByType(ctx context.Context, userUID string) (map[string]int, error)
	// CountWorkoutsByMonth группирует тренировки по месяцам начиная с since.
	CountWorkoutsByMonth(ctx context.Context, userUID string, since time.Time) (map[time.Time]int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(ctx context.Context, key string) error
}

// WorkoutService реализует бизнес-логику работы с тренировками, включая кеширование.
type WorkoutService struct {
	repo  WorkoutRepository
	cache Cache
	log   *slog.Logger
}

// NewWorkoutService создает новый экземпляр WorkoutService.
func NewWorkoutService(repo WorkoutRepository, cache Cache, log *slog.Logger) *WorkoutService {
	return &WorkoutService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create создает новую тренировку пользователя и возвращает её с присвоенным ID.
func (s *WorkoutService) Create(ctx context.Context, userUID string, req models.DummyWorkout) (*models.Workout, error) {
	date := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidDate, req.Date)
		}
		date = parsed
	}

	workout := models.Workout{
		UserUID:   userUID,
		Date:      date,
		Type:      req.Type,
		Duration:  req.Duration,
		Calories:  req.Calories,
		Notes:     req.Notes,
		Equipment: req.Equipment,
		Exercises: req.Exercises,
	}

	id, err := s.repo.CreateWorkout(ctx, workout)
	if err != nil {
		return nil, err
	}
	workout.ID = id
	s.log.Info("created new workout", slog.Int64("id", id))

	s.invalidateStats(ctx, userUID)
	if err := s.cache.Set(ctx, workoutKey(userUID, id), workout, time.Hour); err != nil {
		s.log.Warn("failed to cache workout", slog.String("key", workoutKey(userUID, id)), slog.Any("err", err))
	}

	return &workout, nil
}

// Read возвращает тренировку по ID, используя кеш или репозиторий.
// Чужая тренировка даёт ErrNoAccess, отсутствующая — ErrWorkoutNotFound.
func (s *WorkoutService) Read(ctx context.Context, userUID string, id int64) (*models.Workout, error) {
	var result *models.Workout
	cacheKey := workoutKey(userUID, id)
	// попадание в кеш возможно только после успешной проверки владельца
	found, err := s.cache.Get(ctx, cacheKey, &result)
	if err != nil {
		s.log.Warn("cache lookup failed", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found {
		result.UserUID = userUID
		return result, nil
	}

	result, err = s.repo.GetWorkout(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrWorkoutNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if result.UserUID != userUID {
		return nil, ErrNoAccess
	}

	if err := s.cache.Set(ctx, cacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return result, nil
}

// List возвращает тренировки пользователя, новые — первыми.
func (s *WorkoutService) List(ctx context.Context, userUID string, limit, offset int) ([]*models.Workout, error) {
	return s.repo.ListWorkouts(ctx, userUID, limit, offset)
}

// Update обновляет тренировку пользователя и возвращает её новое состояние.
func (s *WorkoutService) Update(ctx context.Context, userUID string, id int64, req models.DummyWorkout) (*models.Workout, error) {
	existing, err := s.repo.GetWorkout(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrWorkoutNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if existing.UserUID != userUID {
		return nil, ErrNoAccess
	}

	date := existing.Date
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidDate, req.Date)
		}
		date = parsed
	}

	workout := models.Workout{
		ID:        id,
		UserUID:   userUID,
		Date:      date,
		Type:      req.Type,
		Duration:  req.Duration,
		Calories:  req.Calories,
		Notes:     req.Notes,
		Equipment: req.Equipment,
		Exercises: req.Exercises,
	}

	affected, err := s.repo.UpdateWorkout(ctx, workout, id)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrWorkoutNotFound
	}

	s.invalidateStats(ctx, userUID)
	if err := s.cache.Invalidate(ctx, workoutKey(userUID, id)); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", workoutKey(userUID, id)), slog.Any("err", err))
	}
	return &workout, nil
}

// Remove удаляет тренировку пользователя.
func (s *WorkoutService) Remove(ctx context.Context, userUID string, id int64) error {
	existing, err := s.repo.GetWorkout(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrWorkoutNotFound) {
			return ErrWorkoutNotFound
		}
		return err
	}
	if existing.UserUID != userUID {
		return ErrNoAccess
	}

	affected, err := s.repo.RemoveWorkout(ctx, id, userUID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrWorkoutNotFound
	}

	s.invalidateStats(ctx, userUID)
	if err := s.cache.Invalidate(ctx, workoutKey(userUID, id)); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", workoutKey(userUID, id)), slog.Any("err", err))
	}
	return nil
}

// Stats собирает статистику пользователя: суммарные показатели,
// распределение по типам и по последним шести месяцам, включая пустые.
func (s *WorkoutService) Stats(ctx context.Context, userUID string) (*models.WorkoutStats, error) {
	var cached *models.WorkoutStats
	cacheKey := statsKey(userUID)
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		s.log.Warn("cache lookup failed", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found {
		return cached, nil
	}

	totalWorkouts, totalDuration, totalCalories, err := s.repo.CountWorkoutTotals(ctx, userUID)
	if err != nil {
		return nil, err
	}
	byType, err := s.repo.CountWorkoutsByType(ctx, userUID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	firstMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -(statsMonths - 1), 0)
	byMonthRaw, err := s.repo.CountWorkoutsByMonth(ctx, userUID, firstMonth)
	if err != nil {
		return nil, err
	}

	// Ключи time.Time сравниваются вместе с Location, поэтому перед
	// сопоставлением приводим их к UTC независимо от источника.
	counts := make(map[time.Time]int, len(byMonthRaw))
	for month, count := range byMonthRaw {
		counts[month.UTC()] = count
	}

	byMonth := make(map[string]int, statsMonths)
	for i := 0; i < statsMonths; i++ {
		month := firstMonth.AddDate(0, i, 0)
		byMonth[month.Format("Jan 2006")] = counts[month]
	}

	stats := &models.WorkoutStats{
		TotalWorkouts: totalWorkouts,
		TotalDuration: totalDuration,
		TotalCalories: totalCalories,
		ByType:        byType,
		ByMonth:       byMonth,
	}
	if err := s.cache.Set(ctx, cacheKey, stats, 5*time.Minute); err != nil {
		s.log.Warn("failed to cache stats", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return stats, nil
}

func (s *WorkoutService) invalidateStats(ctx context.Context, userUID string) {
	if err := s.cache.Invalidate(ctx, statsKey(userUID)); err != nil {
		s.log.Warn("failed to invalidate stats cache", slog.String("key", statsKey(userUID)), slog.Any("err", err))
	}
}

func workoutKey(userUID string, id int64) string {
	return fmt.Sprintf("workout:%s:%d", userUID, id)
}

func statsKey(userUID string) string {
	return fmt.Sprintf("workoutstats:%s", userUID)
}
