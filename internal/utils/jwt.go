package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims содержит данные токена: пользователя и сессию
type Claims struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// JWTService отвечает за создание и валидацию JWT токенов
type JWTService struct {
	secretKey []byte
	ttl       time.Duration
}

// NewJWTService создаёт новый экземпляр JWTService
func NewJWTService(secretKey string, ttl time.Duration) *JWTService {
	return &JWTService{secretKey: []byte(secretKey), ttl: ttl}
}

// TTL возвращает срок жизни выдаваемых токенов
func (s *JWTService) TTL() time.Duration {
	return s.ttl
}

// GenerateToken создаёт JWT токен для сессии пользователя
func (s *JWTService) GenerateToken(userID, sessionID uuid.UUID) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID.String(),
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// ValidateToken проверяет подпись и срок действия токена
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("недействительный токен")
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, fmt.Errorf("некорректный user_id: %w", err)
	}
	if _, err := uuid.Parse(claims.SessionID); err != nil {
		return nil, fmt.Errorf("некорректный sid: %w", err)
	}
	return claims, nil
}
