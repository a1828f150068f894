// Package read реализует HTTP-обработчик получения конкретной тренировки по ID.
//
// Handler извлекает ID из URL-параметров, вызывает бизнес-логику чтения
// и возвращает тренировку в JSON-формате. Чужая тренировка отдаётся как 403.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/fitness-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/fitness-tracker/internal/http/response"
	"github.com/magabrotheeeer/fitness-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/fitness-tracker/internal/models"
	workoutservice "github.com/magabrotheeeer/fitness-tracker/internal/services/workout"
)

// Handler обрабатывает запросы на получение тренировки по идентификатору.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения тренировки.
type Service interface {
	Read(ctx context.Context, userUID string, id int64) (*models.Workout, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получение тренировки
// @Description Возвращает тренировку текущего пользователя по ID.
// @Tags Workouts
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID тренировки"
// @Success 200 {object} map[string]any "Тренировка"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 403 {object} response.ErrorResponse "Тренировка другого пользователя"
// @Failure 404 {object} response.ErrorResponse "Тренировка не найдена"
// @Router /api/v1/workouts/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.workout.read"

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

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	workout, err := h.service.Read(r.Context(), userUID, id)
	if err != nil {
		switch {
		case errors.Is(err, workoutservice.ErrWorkoutNotFound):
			log.Warn("workout not found", slog.Int64("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("workout not found"))
		case errors.Is(err, workoutservice.ErrNoAccess):
			log.Warn("workout belongs to another user", slog.Int64("id", id))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("no access to workout"))
		default:
			log.Error("failed to read workout", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not read workout"))
		}
		return
	}

	log.Info("success to read workout", slog.Int64("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"workout": workout,
	}))
}
