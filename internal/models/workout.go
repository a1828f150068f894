// Package models содержит доменные структуры, описывающие тренировку,
// а также вспомогательные типы для работы с данными из JSON-запросов.
package models

import "time"

// ExerciseSet описывает один подход упражнения.
type ExerciseSet struct {
	Reps     int      `json:"reps" validate:"required,gt=0"` // Количество повторений
	Weight   *float64 `json:"weight,omitempty"`              // Вес в кг, nil для упражнений без веса
	Duration *int     `json:"duration,omitempty"`            // Длительность подхода в секундах
}

// PerformedExercise описывает выполненное упражнение с его подходами.
type PerformedExercise struct {
	ExerciseID   string        `json:"exerciseId" validate:"required"`        // Идентификатор упражнения из справочника
	ExerciseName string        `json:"exerciseName" validate:"required"`      // Имя дублируется для удобства отображения
	Sets         []ExerciseSet `json:"sets" validate:"required,min=1,dive"`   // Подходы
	Notes        *string       `json:"notes,omitempty"`                       // Заметки к упражнению
}

// Workout представляет собой основную модель тренировки,
// используемую в бизнес-логике и хранилище.
type Workout struct {
	ID        int64               `json:"id"`
	UserUID   string              `json:"-"` // Владелец тренировки
	Date      time.Time           `json:"date"`
	Type      string              `json:"type"`     // strength, weightlifting или bodyweight
	Duration  int                 `json:"duration"` // Общая длительность в минутах
	Calories  int                 `json:"calories"`
	Notes     *string             `json:"notes,omitempty"`
	Equipment []string            `json:"equipment"`
	Exercises []PerformedExercise `json:"exercises"`
}

// DummyWorkout используется для приёма данных тренировки из JSON-запроса,
// прежде чем конвертировать их в Workout. Дата приходит строкой,
// чтобы её можно было валидировать и парсить вручную.
type DummyWorkout struct {
	Date      string              `json:"date"` // Дата в формате 2006-01-02, разбирается сервисом; по умолчанию сегодня
	Type      string              `json:"type" validate:"required,oneof=strength weightlifting bodyweight"`
	Duration  int                 `json:"duration" validate:"required,gt=0"` // Длительность в минутах (>0)
	Calories  int                 `json:"calories" validate:"omitempty,gte=0"`
	Notes     *string             `json:"notes"`
	Equipment []string            `json:"equipment"`
	Exercises []PerformedExercise `json:"exercises" validate:"omitempty,dive"`
}

// WorkoutStats агрегирует статистику тренировок пользователя.
// ByMonth содержит количество тренировок за последние шесть месяцев,
// ключ — метка месяца в формате "Jan 2006".
type WorkoutStats struct {
	TotalWorkouts int            `json:"totalWorkouts"`
	TotalDuration int            `json:"totalDuration"`
	TotalCalories int            `json:"totalCalories"`
	ByType        map[string]int `json:"workoutsByType"`
	ByMonth       map[string]int `json:"workoutsByMonth"`
}
