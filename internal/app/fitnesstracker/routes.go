// Package fitnesstracker предоставляет маршруты для основного приложения.
package fitnesstracker

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/fitness-tracker/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/fitness-tracker/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/fitness-tracker/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/fitness-tracker/internal/http/handlers/auth/updatepassword"
	"github.com/magabrotheeeer/fitness-tracker/internal/http/handlers/auth/updatesettings"
	"github.com/magabrotheeeer/fitness-tracker/internal/http/handlers/health"
	"github.com/magabrotheeeer/fitness-tracker/internal/http/handlers/workout/create"
	"github.com/magabrotheeeer/fitness-tracker/internal/http/handlers/workout/list"
	"github.com/magabrotheeeer/fitness-tracker/internal/http/handlers/workout/read"
	"github.com/magabrotheeeer/fitness-tracker/internal/http/handlers/workout/remove"
	"github.com/magabrotheeeer/fitness-tracker/internal/http/handlers/workout/stats"
	"github.com/magabrotheeeer/fitness-tracker/internal/http/handlers/workout/update"
	"github.com/magabrotheeeer/fitness-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/fitness-tracker/internal/lib/jwt"
	authservice "github.com/magabrotheeeer/fitness-tracker/internal/services/auth"
	workoutservice "github.com/magabrotheeeer/fitness-tracker/internal/services/workout"
	"github.com/magabrotheeeer/fitness-tracker/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, jwtMaker jwt.Maker, authService *authservice.AuthService, workoutService *workoutservice.WorkoutService, db *repository.Storage) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, authService).ServeHTTP)
		r.Post("/auth/login", login.New(logger, authService).ServeHTTP)
		r.Get("/health", health.New(logger, db).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/auth/me", me.New(logger).ServeHTTP)
			r.Patch("/auth/settings", updatesettings.New(logger, authService).ServeHTTP)
			r.Put("/auth/password", updatepassword.New(logger, authService).ServeHTTP)
			r.Post("/workouts", create.New(logger, workoutService).ServeHTTP)
			r.Get("/workouts", list.New(logger, workoutService).ServeHTTP)
			r.Get("/workouts/stats", stats.New(logger, workoutService).ServeHTTP)
			r.Get("/workouts/{id}", read.New(logger, workoutService).ServeHTTP)
			r.Put("/workouts/{id}", update.New(logger, workoutService).ServeHTTP)
			r.Delete("/workouts/{id}", remove.New(logger, workoutService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
