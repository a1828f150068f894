package jwt

import (
	"strings"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTMaker_GenerateAndParseToken_ValidCases(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	tokenTTL := 15 * time.Minute
	maker := NewJWTMaker(secretKey, tokenTTL)

	tests := []struct {
		name    string
		userUID string
	}{
		{
			name:    "uuid style uid",
			userUID: "3f1a7e6c-9a2b-4f70-8f68-1f4bb3d2a111",
		},
		{
			name:    "short uid",
			userUID: "42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateToken(tt.userUID)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)

			assert.Equal(t, tt.userUID, claims.UserUID)
			assert.Equal(t, tt.userUID, claims.Subject)
			assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second)
			assert.WithinDuration(t, time.Now().Add(tokenTTL), claims.ExpiresAt.Time, time.Second)
		})
	}
}

func TestJWTMaker_ParseToken_Expired(t *testing.T) {
	maker := NewJWTMaker("test_secret_key_1234567890", -time.Minute)

	token, err := maker.GenerateToken("user-uid")
	require.NoError(t, err)

	claims, err := maker.ParseToken(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTMaker_ParseToken_WrongSecret(t *testing.T) {
	maker := NewJWTMaker("correct_secret", time.Hour)
	other := NewJWTMaker("another_secret", time.Hour)

	token, err := other.GenerateToken("user-uid")
	require.NoError(t, err)

	claims, err := maker.ParseToken(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTMaker_ParseToken_ForgedSignature(t *testing.T) {
	maker := NewJWTMaker("correct_secret", time.Hour)

	token, err := maker.GenerateToken("user-uid")
	require.NoError(t, err)

	// подменяем подпись, payload остаётся прежним
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	forged := parts[0] + "." + parts[1] + "." + "AAAA" + parts[2][4:]

	claims, err := maker.ParseToken(forged)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTMaker_ParseToken_UnexpectedAlgorithm(t *testing.T) {
	secret := "correct_secret"
	maker := NewJWTMaker(secret, time.Hour)

	// токен с тем же секретом, но алгоритмом HS512
	claims := CustomClaims{
		UserUID: "user-uid",
		RegisteredClaims: jwtlib.RegisteredClaims{
			IssuedAt:  jwtlib.NewNumericDate(time.Now()),
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS512, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	got, err := maker.ParseToken(token)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTMaker_ParseToken_Garbage(t *testing.T) {
	maker := NewJWTMaker("correct_secret", time.Hour)

	claims, err := maker.ParseToken("not.a.token")
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
