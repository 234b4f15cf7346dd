package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService signs and validates moderator session tokens. Session
// issuance lives with the external auth provider; this service only needs
// to resolve a presented token into an actor, once per request.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a token service with the shared HS256 secret.
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// Generate creates an access token for a moderator (1 hour expiry).
func (s *TokenService) Generate(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"type":    "access",
		"exp":     now.Add(1 * time.Hour).Unix(),
		"iat":     now.Unix(),
	})
	return token.SignedString(s.secret)
}

// Validate checks a token and returns the moderator's user ID.
func (s *TokenService) Validate(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}

	// Refresh tokens cannot authenticate requests.
	tokenType, _ := claims["type"].(string)
	if tokenType == "refresh" {
		return "", errors.New("cannot use refresh token for authentication")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", errors.New("invalid user id in token")
	}

	return userID, nil
}
