// Package updatesettings реализует HTTP-обработчик частичного обновления
// настроек пользователя.
//
// Тело запроса может содержать любое подмножество полей настроек; отсутствующие
// поля сохраняют прежние значения. Пустое тело считается ошибкой.
package updatesettings

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
	"github.com/magabrotheeeer/fitness-tracker/internal/models"
	authservice "github.com/magabrotheeeer/fitness-tracker/internal/services/auth"
)

// Handler обрабатывает запросы на обновление настроек.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики обновления настроек.
type Service interface {
	UpdateSettings(ctx context.Context, userUID string, upd models.SettingsUpdate) (*models.Settings, error)
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
// @Summary Обновление настроек пользователя
// @Description Частично обновляет настройки. Неуказанные поля не изменяются.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.SettingsUpdate true "Изменяемые поля настроек"
// @Success 200 {object} map[string]any "Итоговые настройки"
// @Failure 400 {object} response.ErrorResponse "Пустое тело или недопустимое значение"
// @Failure 401 {object} response.ErrorResponse "Нет или невалидный токен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/v1/auth/settings [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.updatesettings"

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

	var req models.SettingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded")

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	settings, err := h.service.UpdateSettings(r.Context(), userUID, req)
	if err != nil {
		switch {
		case errors.Is(err, authservice.ErrNoFieldsProvided):
			log.Warn("empty settings update")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("no settings fields provided"))
		case errors.Is(err, authservice.ErrInvalidSettingsValue):
			log.Warn("invalid settings value")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid settings value"))
		case errors.Is(err, authservice.ErrUserNotFound):
			log.Warn("user not found", slog.String("uid", userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		default:
			log.Error("failed to update settings", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to update settings"))
		}
		return
	}

	log.Info("settings updated", slog.String("uid", userUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"settings": settings,
	}))
}
