// Package remove реализует HTTP-обработчик удаления тренировки.
package remove

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
	workoutservice "github.com/magabrotheeeer/fitness-tracker/internal/services/workout"
)

// Handler обрабатывает запросы на удаление тренировки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики удаления тренировки.
type Service interface {
	Remove(ctx context.Context, userUID string, id int64) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удаление тренировки
// @Description Удаляет тренировку текущего пользователя по ID.
// @Tags Workouts
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID тренировки"
// @Success 200 {object} map[string]any "Тренировка удалена"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 403 {object} response.ErrorResponse "Тренировка другого пользователя"
// @Failure 404 {object} response.ErrorResponse "Тренировка не найдена"
// @Router /api/v1/workouts/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.workout.remove"

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

	if err := h.service.Remove(r.Context(), userUID, id); err != nil {
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
			log.Error("failed to remove workout", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not remove workout"))
		}
		return
	}

	log.Info("workout removed", slog.Int64("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id": id,
	}))
}
