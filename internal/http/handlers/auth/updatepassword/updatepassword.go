// Package updatepassword реализует HTTP-обработчик смены пароля пользователя.
//
// Перед заменой хэша текущий пароль проверяется заново, поэтому украденный
// токен без пароля не позволяет сменить учетные данные. В ответе возвращается
// свежий JWT.
package updatepassword

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/fitness-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/fitness-tracker/internal/http/response"
	"github.com/magabrotheeeer/fitness-tracker/internal/lib/sl"
	authservice "github.com/magabrotheeeer/fitness-tracker/internal/services/auth"
)

// Request — входные данные для смены пароля.
type Request struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// Handler обрабатывает запросы на смену пароля.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики смены пароля.
type Service interface {
	UpdatePassword(ctx context.Context, userUID, currentPassword, newPassword string) (string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Смена пароля
// @Description Проверяет текущий пароль и сохраняет новый. Возвращает свежий JWT.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Текущий и новый пароль"
// @Success 200 {object} map[string]any "Пароль изменен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Неверный текущий пароль"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/v1/auth/password [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.updatepassword"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok {
		log.Error("user uid missing in request context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user not found"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	token, err := h.service.UpdatePassword(r.Context(), userUID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, authservice.ErrInvalidCredentials):
			log.Warn("current password mismatch", slog.String("uid", userUID))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid credentials"))
		case errors.Is(err, authservice.ErrUserNotFound):
			log.Warn("user no longer exists", slog.String("uid", userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		default:
			log.Error("failed to update password", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to update password"))
		}
		return
	}

	log.Info("password updated", slog.String("uid", userUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"token": token,
	}))
}
