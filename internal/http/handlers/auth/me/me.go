// Package me реализует HTTP-обработчик для получения профиля текущего пользователя.
package me

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/fitness-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/fitness-tracker/internal/http/response"
	"github.com/magabrotheeeer/fitness-tracker/internal/models"
)

// Handler обрабатывает запросы на чтение собственного профиля.
type Handler struct {
	log *slog.Logger
}

// New создает новый Handler с переданным логгером.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Профиль текущего пользователя
// @Description Возвращает профиль и настройки пользователя из токена.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Профиль пользователя"
// @Failure 401 {object} response.ErrorResponse "Нет или невалидный токен"
// @Router /api/v1/auth/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := r.Context().Value(middlewarectx.Profile).(*models.User)
	if !ok {
		log.Error("profile missing in request context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user not found"))
		return
	}

	log.Info("profile returned", slog.String("uid", user.UID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user": user,
	}))
}
