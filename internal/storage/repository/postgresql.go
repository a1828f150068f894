// Package repository реализует хранилище данных на основе PostgreSQL
// для управления пользователями и тренировками. Предоставляет методы
// создания, чтения, обновления, удаления и агрегирования записей.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Ошибки уровня хранилища. Сервисы переводят их в свою таксономию,
// наружу эти значения не отдаются.
var (
	// ErrUserNotFound — пользователь с таким uid или email не существует.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken — нарушено ограничение уникальности email.
	ErrEmailTaken = errors.New("email already taken")
	// ErrWorkoutNotFound — тренировка с таким id не существует.
	ErrWorkoutNotFound = errors.New("workout not found")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с пользователями и тренировками.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func (s *Storage) CheckDatabaseReady(ctx context.Context) error {
	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'users'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table users missing or query error: %w", err)
	}
	return nil
}
