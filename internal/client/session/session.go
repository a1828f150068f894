// Package session управляет состоянием входа клиента между запусками.
//
// Сессия хранит токен, снимок профиля и тренировки анонимного режима
// в персистентном key/value хранилище. Токен никогда не переживает
// пользователя: если сервер отверг токен при сверке, оба ключа очищаются.
// Анонимные тренировки живут под отдельным ключом и при входе не переносятся.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/fitness-tracker/internal/client"
	"github.com/magabrotheeeer/fitness-tracker/internal/models"
)

const (
	keyToken     = "token"
	keyUser      = "user"
	keyAnonymous = "anonymous_workouts"
)

// LocalWorkout — тренировка анонимного режима, существует только на клиенте.
type LocalWorkout struct {
	ID      string              `json:"id"`
	SavedAt time.Time           `json:"savedAt"`
	Workout models.DummyWorkout `json:"workout"`
}

// API описывает операции сервера, которые нужны сессии.
type API interface {
	Register(ctx context.Context, name, email, password string) (*client.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*client.AuthResponse, error)
	GetSelf(ctx context.Context) (*models.User, error)
	SetToken(token string)
}

// Session связывает API-клиент с локальным хранилищем состояния входа.
type Session struct {
	api          API
	store        Store
	onAuthChange func(user *models.User)
}

// New создает сессию поверх API-клиента и хранилища.
func New(api API, store Store) *Session {
	return &Session{api: api, store: store}
}

// OnAuthChange регистрирует обработчик смены пользователя.
// Обработчик получает профиль после входа и nil после выхода,
// чтобы потребитель мог применить настройки (тему, язык).
func (s *Session) OnAuthChange(fn func(user *models.User)) {
	s.onAuthChange = fn
}

func (s *Session) fireAuthChange(user *models.User) {
	if s.onAuthChange != nil {
		s.onAuthChange(user)
	}
}

// Token возвращает сохраненный токен, пустую строку при его отсутствии.
func (s *Session) Token() (string, error) {
	const op = "session.Token"

	raw, ok, err := s.store.Get(keyToken)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return "", nil
	}
	var token string
	if err := json.Unmarshal(raw, &token); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// User возвращает сохраненный снимок профиля, nil при его отсутствии.
func (s *Session) User() (*models.User, error) {
	const op = "session.User"

	raw, ok, err := s.store.Get(keyUser)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, nil
	}
	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

func (s *Session) persistAuth(token string, user *models.User) error {
	rawToken, err := json.Marshal(token)
	if err != nil {
		return err
	}
	rawUser, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.store.Set(keyToken, rawToken); err != nil {
		return err
	}
	return s.store.Set(keyUser, rawUser)
}

func (s *Session) clearAuth() error {
	if err := s.store.Delete(keyToken); err != nil {
		return err
	}
	return s.store.Delete(keyUser)
}

// Reconcile сверяет сохраненный токен с сервером при старте клиента.
// Живой токен обновляет снимок профиля; отвергнутый стирает токен
// вместе со снимком, анонимные данные при этом не трогаются.
func (s *Session) Reconcile(ctx context.Context) (*models.User, error) {
	const op = "session.Reconcile"

	token, err := s.Token()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if token == "" {
		s.fireAuthChange(nil)
		return nil, nil
	}

	s.api.SetToken(token)
	user, err := s.api.GetSelf(ctx)
	if err != nil {
		if clearErr := s.clearAuth(); clearErr != nil {
			return nil, fmt.Errorf("%s: %w", op, clearErr)
		}
		s.api.SetToken("")
		s.fireAuthChange(nil)
		return nil, nil
	}

	rawUser, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.store.Set(keyUser, rawUser); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.fireAuthChange(user)
	return user, nil
}

// Login выполняет вход и сохраняет токен со снимком профиля.
func (s *Session) Login(ctx context.Context, email, password string) (*models.User, error) {
	const op = "session.Login"

	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.persistAuth(resp.Token, resp.User); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.fireAuthChange(resp.User)
	return resp.User, nil
}

// Register создает учетную запись и сразу сохраняет состояние входа.
func (s *Session) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	const op = "session.Register"

	resp, err := s.api.Register(ctx, name, email, password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.persistAuth(resp.Token, resp.User); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.fireAuthChange(resp.User)
	return resp.User, nil
}

// Logout стирает токен и снимок профиля. Анонимные тренировки остаются.
func (s *Session) Logout() error {
	const op = "session.Logout"

	if err := s.clearAuth(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.api.SetToken("")
	s.fireAuthChange(nil)
	return nil
}

// AnonymousWorkouts возвращает тренировки, сохраненные без входа.
func (s *Session) AnonymousWorkouts() ([]LocalWorkout, error) {
	const op = "session.AnonymousWorkouts"

	raw, ok, err := s.store.Get(keyAnonymous)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, nil
	}
	var workouts []LocalWorkout
	if err := json.Unmarshal(raw, &workouts); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return workouts, nil
}

// AppendAnonymousWorkout сохраняет тренировку анонимного режима локально.
func (s *Session) AppendAnonymousWorkout(workout models.DummyWorkout) (*LocalWorkout, error) {
	const op = "session.AppendAnonymousWorkout"

	workouts, err := s.AnonymousWorkouts()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	local := LocalWorkout{
		ID:      uuid.NewString(),
		SavedAt: time.Now().UTC(),
		Workout: workout,
	}
	workouts = append(workouts, local)

	raw, err := json.Marshal(workouts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.store.Set(keyAnonymous, raw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &local, nil
}
