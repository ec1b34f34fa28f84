package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"giftstore/internal/model"
)

// GenerateToken signs a bearer token carrying the user id and role.
func GenerateToken(secret []byte, user *model.User, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": float64(user.ID),
		"email":   user.Email,
		"role":    user.Role,
		"exp":     time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken validates a bearer token and returns the user id it names.
// Signature method is pinned to HMAC so a crafted "none"/RSA token is
// rejected.
func ParseToken(secret []byte, tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return 0, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("invalid token claims")
	}
	id, ok := claims["user_id"].(float64)
	if !ok || id <= 0 {
		return 0, fmt.Errorf("token missing user_id")
	}
	return uint(id), nil
}
