package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	userID, sessionID := uuid.New(), uuid.New()

	token, err := svc.GenerateToken(userID, sessionID)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, sessionID.String(), claims.SessionID)
}

func TestJWTRejectsForeignSecret(t *testing.T) {
	token, err := NewJWTService("one", time.Hour).GenerateToken(uuid.New(), uuid.New())
	require.NoError(t, err)

	_, err = NewJWTService("two", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTRejectsExpired(t *testing.T) {
	token, err := NewJWTService("secret", -time.Minute).GenerateToken(uuid.New(), uuid.New())
	require.NoError(t, err)

	_, err = NewJWTService("secret", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTRejectsNonUUIDUser(t *testing.T) {
	claims := Claims{UserID: "42", SessionID: uuid.NewString()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewJWTService("secret", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	type request struct {
		Email string `json:"email" validate:"required,email"`
		Role  string `json:"role" validate:"oneof=contributor seeker"`
	}

	assert.NoError(t, Validate(request{Email: "a@uni.edu", Role: "seeker"}))
	assert.EqualError(t, Validate(request{Role: "seeker"}), "поле Email обязательно")
	assert.EqualError(t, Validate(request{Email: "a@uni.edu", Role: "admin"}), "поле Role должно быть одним из: contributor seeker")
}
