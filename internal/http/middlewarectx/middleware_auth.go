// Package middlewarectx содержит HTTP middleware для обработки и проверки JWT токенов.
//
// JWTMiddleware проверяет наличие и валидность JWT токена в заголовке Authorization,
// разрешает uid из токена в существующего пользователя и в случае успеха добавляет
// личность в контекст запроса для дальнейшего использования в обработчиках.
//
// Любая ошибка проверки завершает запрос ответом HTTP 401 Unauthorized:
// до обработчиков ошибки аутентификации не доходят.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/fitness-tracker/internal/http/response"
	"github.com/magabrotheeeer/fitness-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/fitness-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/fitness-tracker/internal/models"
	authservice "github.com/magabrotheeeer/fitness-tracker/internal/services/auth"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserUID — ключ для uid пользователя в контексте
	UserUID Key = "user_uid"
	// Profile — ключ для профиля пользователя в контексте
	Profile Key = "user_profile"
)

// UserProvider описывает интерфейс сервиса для разрешения uid в пользователя.
type UserProvider interface {
	GetSelf(ctx context.Context, userUID string) (*models.User, error)
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке
// Authorization и разрешает его в существующего пользователя.
//
// Токен удалённого пользователя отклоняется так же, как невалидный:
// выпуск токена не гарантирует, что учётная запись ещё существует.
// Middleware только читает хранилище и ничего в нём не меняет.
func JWTMiddleware(maker jwt.Maker, users UserProvider, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := maker.ParseToken(tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}

			user, err := users.GetSelf(r.Context(), claims.UserUID)
			if err != nil {
				if errors.Is(err, authservice.ErrUserNotFound) {
					log.Error("token subject no longer exists", slog.String("uid", claims.UserUID))
				} else {
					log.Error("failed to resolve user", sl.Err(err))
				}
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user not found"))
				return
			}

			ctx := context.WithValue(r.Context(), UserUID, user.UID)
			ctx = context.WithValue(ctx, Profile, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
