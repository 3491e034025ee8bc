package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID     string `json:"uid"`
	Role       string `json:"role"`
	TokenType  string `json:"typ"`
	RememberMe bool   `json:"rm,omitempty"`
	jwt.RegisteredClaims
}

// GenerateRefreshToken mints the long-lived credential. The remember flag is
// carried in the claims so rotation keeps the extended lifetime.
func GenerateRefreshToken(secret string, userID string, role string, rememberMe bool, ttl time.Duration) (string, error) {
	return generateToken(secret, userID, role, TokenTypeRefresh, rememberMe, ttl)
}

// GenerateAccessToken derives the short-lived credential. Its TTL is fixed and
// never affected by remember-me.
func GenerateAccessToken(secret string, userID string, role string, ttl time.Duration) (string, error) {
	return generateToken(secret, userID, role, TokenTypeAccess, false, ttl)
}

func generateToken(secret string, userID string, role string, tokenType string, rememberMe bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:     userID,
		Role:       role,
		TokenType:  tokenType,
		RememberMe: rememberMe,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// ParseToken validates signature and expiry for either token type.
func ParseToken(tokenStr string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// ParseRefreshToken rejects tokens that are valid but of the wrong type, so an
// access token can never be replayed against the refresh endpoint.
func ParseRefreshToken(tokenStr string, secret string) (*Claims, error) {
	claims, err := ParseToken(tokenStr, secret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeRefresh {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
