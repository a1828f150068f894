// Package create реализует HTTP-обработчик добавления тренировки.
//
// Тело запроса декодируется в models.DummyWorkout, валидируется и передаётся
// сервису тренировок. Владелец берётся из контекста запроса, а не из тела.
package create

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
	workoutservice "github.com/magabrotheeeer/fitness-tracker/internal/services/workout"
)

// Handler обрабатывает запросы на создание тренировки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики создания тренировки.
type Service interface {
	Create(ctx context.Context, userUID string, req models.DummyWorkout) (*models.Workout, error)
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
// @Summary Добавление тренировки
// @Description Создает тренировку текущего пользователя.
// @Tags Workouts
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyWorkout true "Данные тренировки"
// @Success 201 {object} map[string]any "Созданная тренировка"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Нет или невалидный токен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/v1/workouts [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.workout.create"

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

	workout, err := h.service.Create(r.Context(), userUID, req)
	if errors.Is(err, workoutservice.ErrInvalidDate) {
		log.Error("invalid workout date", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid workout date"))
		return
	}
	if err != nil {
		log.Error("failed to create workout", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create workout"))
		return
	}

	log.Info("workout created", slog.Int64("id", workout.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"workout": workout,
	}))
}
