// Package stats реализует HTTP-обработчик сводной статистики тренировок.
package stats

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/fitness-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/fitness-tracker/internal/http/response"
	"github.com/magabrotheeeer/fitness-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/fitness-tracker/internal/models"
)

// Handler обрабатывает запросы на получение статистики тренировок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики подсчета статистики.
type Service interface {
	Stats(ctx context.Context, userUID string) (*models.WorkoutStats, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Статистика тренировок
// @Description Возвращает итоги, разбивку по типам и по последним шести месяцам.
// @Tags Workouts
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Статистика"
// @Failure 401 {object} response.ErrorResponse "Нет или невалидный токен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/v1/workouts/stats [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.workout.stats"

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

	stats, err := h.service.Stats(r.Context(), userUID)
	if err != nil {
		log.Error("failed to count statistics", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not count statistics"))
		return
	}

	log.Info("success to count statistics", slog.String("uid", userUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"stats": stats,
	}))
}
