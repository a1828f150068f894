package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/fitness-tracker/internal/models"
)

// CreateUser сохраняет нового пользователя и возвращает запись с присвоенным
// uid и временем создания. Нарушение уникальности email переводится
// в ErrEmailTaken: гонка двух одновременных регистраций разрешается
// ограничением уникальности в базе.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (name, email, password_hash, theme, language,
			      units, show_calories, show_timer)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING uid, created_at;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.Settings.Theme,
		user.Settings.Language, user.Settings.Units, user.Settings.ShowCalories,
		user.Settings.ShowTimer).Scan(&user.UID, &user.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

// GetUserByEmail возвращает пользователя по email (в нижнем регистре).
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, name, email, password_hash, theme, language, units,
			      show_calories, show_timer, created_at
			  FROM users
			  WHERE email = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, email), op)
}

// GetUser возвращает пользователя по его uid.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, name, email, password_hash, theme, language, units,
			      show_calories, show_timer, created_at
			  FROM users
			  WHERE uid = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, userUID), op)
}

func (s *Storage) scanUser(row *sql.Row, op string) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.UID, &u.Name, &u.Email, &u.PasswordHash,
		&u.Settings.Theme, &u.Settings.Language, &u.Settings.Units,
		&u.Settings.ShowCalories, &u.Settings.ShowTimer, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateSettings обновляет только переданные поля настроек (nil-поля
// не трогаются) и возвращает полный итоговый набор настроек.
// Слияние выполняется одним UPDATE, без предварительного чтения.
func (s *Storage) UpdateSettings(ctx context.Context, userUID string, upd models.SettingsUpdate) (*models.Settings, error) {
	const op = "storage.UpdateSettings"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	setClauses := make([]string, 0, 5)
	args := make([]any, 0, 6)
	add := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Theme != nil {
		add("theme", *upd.Theme)
	}
	if upd.Language != nil {
		add("language", *upd.Language)
	}
	if upd.Units != nil {
		add("units", *upd.Units)
	}
	if upd.ShowCalories != nil {
		add("show_calories", *upd.ShowCalories)
	}
	if upd.ShowTimer != nil {
		add("show_timer", *upd.ShowTimer)
	}
	args = append(args, userUID)

	query := fmt.Sprintf(`UPDATE users
			  SET %s
			  WHERE uid = $%d
			  RETURNING theme, language, units, show_calories, show_timer;`,
		strings.Join(setClauses, ", "), len(args))

	settings := &models.Settings{}
	if err := s.DB.QueryRowContext(ctx, query, args...).Scan(&settings.Theme,
		&settings.Language, &settings.Units, &settings.ShowCalories,
		&settings.ShowTimer); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return settings, nil
}

// UpdatePassword заменяет хэш пароля пользователя.
func (s *Storage) UpdatePassword(ctx context.Context, userUID, passwordHash string) error {
	const op = "storage.UpdatePassword"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET password_hash = $1
			  WHERE uid = $2`
	res, err := s.DB.ExecContext(ctx, query, passwordHash, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}
