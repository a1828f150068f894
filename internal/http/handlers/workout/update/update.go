// Package update реализует HTTP-обработчик изменения существующей тренировки.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/fitness-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/fitness-tracker/internal/http/response"
	"github.com/magabrotheeeer/fitness-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/fitness-tracker/internal/models"
	workoutservice "github.com/magabrotheeeer/fitness-tracker/internal/services/workout"
)

// Handler обрабатывает запросы на обновление тренировки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики обновления тренировки.
type Service interface {
	Update(ctx context.Context, userUID string, id int64, req models.DummyWorkout) (*models.Workout, error)
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
// @Summary Изменение тренировки
// @Description Полностью заменяет данные тренировки текущего пользователя.
// @Tags Workouts
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID тренировки"
// @Param request body models.DummyWorkout true "Новые данные тренировки"
// @Success 200 {object} map[string]any "Обновленная тренировка"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ошибка валидации"
// @Failure 403 {object} response.ErrorResponse "Тренировка другого пользователя"
// @Failure 404 {object} response.ErrorResponse "Тренировка не найдена"
// @Router /api/v1/workouts/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.workout.update"

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

	var req models.DummyWorkout
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
	log.Info("all fields are validated")

	workout, err := h.service.Update(r.Context(), userUID, id, req)
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
		case errors.Is(err, workoutservice.ErrInvalidDate):
			log.Error("invalid workout date", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid workout date"))
		default:
			log.Error("failed to update workout", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update workout"))
		}
		return
	}

	log.Info("workout updated", slog.Int64("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"workout": workout,
	}))
}
