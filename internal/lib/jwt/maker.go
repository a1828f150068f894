// Package jwt реализует генерацию и парсинг JWT токенов с пользовательскими claim полями.
//
// Maker определяет интерфейс для создания и проверки токенов, несущих uid пользователя.
// MakerImpl — конкретная реализация с использованием секретного ключа и срока жизни.
package jwt

import (
	"errors"
	"time"
)

// Ошибки проверки токена. Обработчики различают просроченный токен
// и токен с неверной подписью или структурой.
var (
	// ErrExpiredToken возвращается, если срок действия токена истёк.
	ErrExpiredToken = errors.New("token has expired")
	// ErrInvalidToken возвращается для любого другого невалидного токена:
	// неверная подпись, чужой секрет, неожиданный алгоритм подписи.
	ErrInvalidToken = errors.New("invalid token")
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken создает подписанный токен для пользователя с данным uid.
	GenerateToken(userUID string) (string, error)
	// ParseToken проверяет подпись и срок действия токена и возвращает claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
