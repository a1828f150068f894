package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/fitness-tracker/internal/models"
)

// CreateWorkout добавляет новую тренировку и возвращает её ID.
// Упражнения и инвентарь хранятся в jsonb-колонках.
func (s *Storage) CreateWorkout(ctx context.Context, w models.Workout) (int64, error) {
	const op = "storage.CreateWorkout"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	equipment, exercises, err := marshalWorkoutJSON(w)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var id int64
	query := `INSERT INTO workouts (user_uid, date, type, duration, calories,
			      notes, equipment, exercises)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		w.UserUID, w.Date, w.Type, w.Duration, w.Calories, w.Notes,
		equipment, exercises).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// GetWorkout возвращает тренировку по ID вместе с uid владельца.
// Проверка принадлежности выполняется на уровне сервиса.
func (s *Storage) GetWorkout(ctx context.Context, id int64) (*models.Workout, error) {
	const op = "storage.GetWorkout"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, date, type, duration, calories, notes,
			      equipment, exercises
			  FROM workouts
			  WHERE id = $1`
	w, err := scanWorkout(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrWorkoutNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return w, nil
}

// ListWorkouts возвращает тренировки пользователя, новые — первыми.
func (s *Storage) ListWorkouts(ctx context.Context, userUID string, limit, offset int) ([]*models.Workout, error) {
	const op = "storage.ListWorkouts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, date, type, duration, calories, notes,
			      equipment, exercises
			  FROM workouts
			  WHERE user_uid = $1
			  ORDER BY date DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, w)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateWorkout обновляет тренировку по ID в пределах владельца
// и возвращает количество обновлённых записей.
func (s *Storage) UpdateWorkout(ctx context.Context, w models.Workout, id int64) (int64, error) {
	const op = "storage.UpdateWorkout"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	equipment, exercises, err := marshalWorkoutJSON(w)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE workouts
			  SET date = $1, type = $2, duration = $3, calories = $4,
			      notes = $5, equipment = $6, exercises = $7
			  WHERE id = $8 AND user_uid = $9`
	res, err := s.DB.ExecContext(ctx, query,
		w.Date, w.Type, w.Duration, w.Calories, w.Notes, equipment, exercises,
		id, w.UserUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}

// RemoveWorkout удаляет тренировку по ID в пределах владельца
// и возвращает количество удалённых записей.
func (s *Storage) RemoveWorkout(ctx context.Context, id int64, userUID string) (int64, error) {
	const op = "storage.RemoveWorkout"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM workouts
			  WHERE id = $1 AND user_uid = $2`
	res, err := s.DB.ExecContext(ctx, query, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}

// CountWorkoutTotals подсчитывает количество тренировок, суммарную длительность
// и суммарные калории пользователя.
func (s *Storage) CountWorkoutTotals(ctx context.Context, userUID string) (workouts, duration, calories int, err error) {
	const op = "storage.CountWorkoutTotals"
	select {
	case <-ctx.Done():
		return 0, 0, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*), COALESCE(SUM(duration), 0), COALESCE(SUM(calories), 0)
			  FROM workouts
			  WHERE user_uid = $1`
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&workouts, &duration, &calories); err != nil {
		return 0, 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	return workouts, duration, calories, nil
}

// CountWorkoutsByType группирует тренировки пользователя по типу.
func (s *Storage) CountWorkoutsByType(ctx context.Context, userUID string) (map[string]int, error) {
	const op = "storage.CountWorkoutsByType"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT type, COUNT(*)
			  FROM workouts
			  WHERE user_uid = $1
			  GROUP BY type`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make(map[string]int)
	for rows.Next() {
		var workoutType string
		var count int
		if err = rows.Scan(&workoutType, &count); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result[workoutType] = count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountWorkoutsByMonth группирует тренировки пользователя по месяцам,
// начиная с since. Ключи месяцев без тренировок дополняет сервис.
func (s *Storage) CountWorkoutsByMonth(ctx context.Context, userUID string, since time.Time) (map[time.Time]int, error) {
	const op = "storage.CountWorkoutsByMonth"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT date_trunc('month', date), COUNT(*)
			  FROM workouts
			  WHERE user_uid = $1 AND date >= $2
			  GROUP BY 1`
	rows, err := s.DB.QueryContext(ctx, query, userUID, since)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make(map[time.Time]int)
	for rows.Next() {
		var month time.Time
		var count int
		if err = rows.Scan(&month, &count); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		// Драйвер возвращает timestamptz в локальной зоне, а ключи
		// сравниваются вместе с Location. Приводим к UTC.
		result[month.UTC()] = count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkout(row rowScanner) (*models.Workout, error) {
	w := &models.Workout{}
	var equipment, exercises []byte
	if err := row.Scan(&w.ID, &w.UserUID, &w.Date, &w.Type, &w.Duration,
		&w.Calories, &w.Notes, &equipment, &exercises); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(equipment, &w.Equipment); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(exercises, &w.Exercises); err != nil {
		return nil, err
	}
	return w, nil
}

func marshalWorkoutJSON(w models.Workout) (equipment, exercises []byte, err error) {
	if w.Equipment == nil {
		w.Equipment = []string{}
	}
	if w.Exercises == nil {
		w.Exercises = []models.PerformedExercise{}
	}
	equipment, err = json.Marshal(w.Equipment)
	if err != nil {
		return nil, nil, err
	}
	exercises, err = json.Marshal(w.Exercises)
	if err != nil {
		return nil, nil, err
	}
	return equipment, exercises, nil
}
