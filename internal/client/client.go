// Package client реализует HTTP-клиент для API фитнес-трекера.
//
// Клиент оборачивает стандартные JSON-конечные точки сервера и переводит
// коды ответов в ошибки-сентинелы, чтобы вызывающая сторона могла
// различать их через errors.Is.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/magabrotheeeer/fitness-tracker/internal/models"
)

// Ошибки, соответствующие кодам ответов сервера.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("no access")
	ErrNotFound     = errors.New("not found")
)

// envelope — формат всех ответов сервера.
type envelope struct {
	Status string          `json:"status"`
	Error  string          `json:"error,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// AuthResponse — ответ register/login с токеном и профилем.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Client выполняет запросы к серверу от имени одного пользователя.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// New создает клиент для сервера по указанному адресу.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetToken устанавливает JWT для последующих запросов.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	const op = "client.do"

	var reqBody bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&reqBody).Encode(body); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &reqBody)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}

	if env.Status != "OK" {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrUnauthorized, env.Error)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrForbidden, env.Error)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrNotFound, env.Error)
		default:
			return fmt.Errorf("server error: %s", env.Error)
		}
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s: decode data: %w", op, err)
		}
	}
	return nil
}

// Register создает учетную запись и возвращает токен с профилем.
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

// Login аутентифицирует пользователя и возвращает токен с профилем.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

// GetSelf возвращает профиль владельца токена.
func (c *Client) GetSelf(ctx context.Context) (*models.User, error) {
	var out struct {
		User *models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// UpdateSettings частично обновляет настройки и возвращает итоговые значения.
func (c *Client) UpdateSettings(ctx context.Context, upd models.SettingsUpdate) (*models.Settings, error) {
	var out struct {
		Settings *models.Settings `json:"settings"`
	}
	if err := c.do(ctx, http.MethodPatch, "/api/v1/auth/settings", upd, &out); err != nil {
		return nil, err
	}
	return out.Settings, nil
}

// UpdatePassword меняет пароль и возвращает свежий токен.
func (c *Client) UpdatePassword(ctx context.Context, currentPassword, newPassword string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPut, "/api/v1/auth/password", map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	}, &out)
	if err != nil {
		return "", err
	}
	c.token = out.Token
	return out.Token, nil
}

// CreateWorkout добавляет тренировку.
func (c *Client) CreateWorkout(ctx context.Context, workout models.DummyWorkout) (*models.Workout, error) {
	var out struct {
		Workout *models.Workout `json:"workout"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/workouts", workout, &out); err != nil {
		return nil, err
	}
	return out.Workout, nil
}

// ListWorkouts возвращает страницу тренировок, новые сначала.
func (c *Client) ListWorkouts(ctx context.Context, limit, offset int) ([]*models.Workout, error) {
	var out struct {
		Workouts []*models.Workout `json:"workouts"`
	}
	path := fmt.Sprintf("/api/v1/workouts?limit=%d&offset=%d", limit, offset)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Workouts, nil
}

// Workout возвращает тренировку по идентификатору.
func (c *Client) Workout(ctx context.Context, id int64) (*models.Workout, error) {
	var out struct {
		Workout *models.Workout `json:"workout"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/workouts/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, err
	}
	return out.Workout, nil
}

// UpdateWorkout заменяет данные тренировки.
func (c *Client) UpdateWorkout(ctx context.Context, id int64, workout models.DummyWorkout) (*models.Workout, error) {
	var out struct {
		Workout *models.Workout `json:"workout"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/v1/workouts/"+strconv.FormatInt(id, 10), workout, &out); err != nil {
		return nil, err
	}
	return out.Workout, nil
}

// RemoveWorkout удаляет тренировку.
func (c *Client) RemoveWorkout(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/workouts/"+strconv.FormatInt(id, 10), nil, nil)
}

// Stats возвращает сводную статистику тренировок.
func (c *Client) Stats(ctx context.Context) (*models.WorkoutStats, error) {
	var out struct {
		Stats *models.WorkoutStats `json:"stats"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/workouts/stats", nil, &out); err != nil {
		return nil, err
	}
	return out.Stats, nil
}
