// Package services содержит логику бизнес-уровня для работы с учётными
// записями: регистрация, вход, профиль, настройки и смена пароля.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/magabrotheeeer/fitness-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/fitness-tracker/internal/lib/password"
	"github.com/magabrotheeeer/fitness-tracker/internal/models"
	"github.com/magabrotheeeer/fitness-tracker/internal/storage/repository"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает запись с uid.
	CreateUser(ctx context.Context, user models.User) (*models.User, error)

	// GetUserByEmail возвращает пользователя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUser возвращает пользователя по uid.
	GetUser(ctx context.Context, userUID string) (*models.User, error)

	// UpdateSettings сливает переданные поля настроек и возвращает итог.
	UpdateSettings(ctx context.Context, userUID string, upd models.SettingsUpdate) (*models.Settings, error)

	// UpdatePassword заменяет хэш пароля.
	UpdatePassword(ctx context.Context, userUID, passwordHash string) error
}

// AuthService отвечает за регистрацию, авторизацию и операции над профилем.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// NormalizeEmail приводит email к каноническому виду для сравнения:
// нижний регистр, без окружающих пробелов.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создает нового пользователя с хэшированием пароля и настройками
// по умолчанию, сразу выпуская токен. Гонку одновременных регистраций
// одного email разрешает ограничение уникальности в базе.
func (s *AuthService) Register(ctx context.Context, name, email, rawPassword string) (*models.User, string, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, "", err
	}
	user := models.User{
		Name:         name,
		Email:        NormalizeEmail(email),
		PasswordHash: hashed,
		Settings:     models.DefaultSettings(),
	}
	created, err := s.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, "", ErrEmailExists
		}
		return nil, "", err
	}
	token, err := s.jwtMaker.GenerateToken(created.UID)
	if err != nil {
		return nil, "", err
	}
	return created, token, nil
}

// Login проверяет пароль пользователя и генерирует JWT.
//
// Неизвестный email и неверный пароль дают один и тот же результат.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*models.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.jwtMaker.GenerateToken(user.UID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GetSelf возвращает профиль пользователя по uid из проверенного токена.
func (s *AuthService) GetSelf(ctx context.Context, userUID string) (*models.User, error) {
	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateSettings сливает переданные поля в настройки пользователя.
// Пустой набор полей и значения вне допустимых enum отклоняются до
// обращения к хранилищу.
func (s *AuthService) UpdateSettings(ctx context.Context, userUID string, upd models.SettingsUpdate) (*models.Settings, error) {
	if upd.Empty() {
		return nil, ErrNoFieldsProvided
	}
	if err := validateSettingsUpdate(upd); err != nil {
		return nil, err
	}
	settings, err := s.users.UpdateSettings(ctx, userUID, upd)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return settings, nil
}

// UpdatePassword меняет пароль после проверки текущего и выпускает свежий
// токен. Ранее выданные токены остаются формально валидными до истечения
// срока: ревокации нет, единственный механизм завершения — TTL.
func (s *AuthService) UpdatePassword(ctx context.Context, userUID, currentPassword, newPassword string) (string, error) {
	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	if err := password.CompareHash(user.PasswordHash, currentPassword); err != nil {
		return "", ErrInvalidCredentials
	}
	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return "", err
	}
	if err := s.users.UpdatePassword(ctx, userUID, hashed); err != nil {
		return "", err
	}
	return s.jwtMaker.GenerateToken(userUID)
}

func validateSettingsUpdate(upd models.SettingsUpdate) error {
	oneof := func(value string, allowed ...string) bool {
		for _, a := range allowed {
			if value == a {
				return true
			}
		}
		return false
	}
	if upd.Theme != nil && !oneof(*upd.Theme, "light", "dark") {
		return ErrInvalidSettingsValue
	}
	if upd.Language != nil && !oneof(*upd.Language, "en", "ru") {
		return ErrInvalidSettingsValue
	}
	if upd.Units != nil && !oneof(*upd.Units, "metric", "imperial") {
		return ErrInvalidSettingsValue
	}
	return nil
}
