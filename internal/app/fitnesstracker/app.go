package fitnesstracker

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/fitness-tracker/internal/cache"
	"github.com/magabrotheeeer/fitness-tracker/internal/config"
	"github.com/magabrotheeeer/fitness-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/fitness-tracker/internal/migrations"
	authservice "github.com/magabrotheeeer/fitness-tracker/internal/services/auth"
	workoutservice "github.com/magabrotheeeer/fitness-tracker/internal/services/workout"
	"github.com/magabrotheeeer/fitness-tracker/internal/storage/repository"
)

// App хранит собранный HTTP-сервер и подключения к внешним системам.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

// New подключается к PostgreSQL и Redis, прогоняет миграции и собирает
// сервисы с маршрутами. Возвращает готовое к запуску приложение.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)

	authService := authservice.NewAuthService(db, jwtMaker)
	workoutService := workoutservice.NewWorkoutService(db, cacheRedis, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, jwtMaker, authService, workoutService, db)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до отмены контекста или ошибки.
// При отмене контекста сервер завершается корректно с таймаутом 15 секунд.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		return err
	}
}
