package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestJWTServiceRoundTrip(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)

	token, err := svc.GenerateToken("a2f1c2d4-session")
	require.NoError(t, err)

	sid, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "a2f1c2d4-session", sid)
}

func TestJWTServiceRejectsForeignSecret(t *testing.T) {
	token, err := NewJWTService("another-secret-of-some-length", time.Hour).GenerateToken("sid")
	require.NoError(t, err)

	_, err = NewJWTService(testSecret, time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}

func TestJWTServiceRejectsExpiredToken(t *testing.T) {
	svc := NewJWTService(testSecret, time.Minute).(*jwtService)
	issued := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issued }

	token, err := svc.GenerateToken("sid")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}

func TestJWTServiceRejectsTokenWithoutSessionID(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = NewJWTService(testSecret, time.Hour).ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}

func TestJWTServiceRejectsGarbage(t *testing.T) {
	_, err := NewJWTService(testSecret, time.Hour).ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}

func TestGenerateTokenRequiresSessionID(t *testing.T) {
	_, err := NewJWTService(testSecret, time.Hour).GenerateToken("")
	assert.Error(t, err)
}
