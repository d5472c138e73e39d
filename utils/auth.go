package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// ErrInvalidToken is returned when no configured secret verifies a token
var ErrInvalidToken = errors.New("token signature verifies against no known secret")

// Claims represents the JWT claims. UserID is the subject account id.
type Claims struct {
	UserID string `json:"id"`
	jwt.StandardClaims
}

// TokenManager signs tokens with the current secret and verifies them against
// an ordered list of secrets, current first, then retired ones.
type TokenManager struct {
	secrets [][]byte
	ttl     time.Duration
}

// NewTokenManager creates a TokenManager. secrets[0] is the signing secret.
func NewTokenManager(secrets []string, ttl time.Duration) (*TokenManager, error) {
	tm := &TokenManager{ttl: ttl}
	for _, s := range secrets {
		if s == "" {
			continue
		}
		tm.secrets = append(tm.secrets, []byte(s))
	}
	if len(tm.secrets) == 0 {
		return nil, errors.New("at least one JWT secret is required")
	}
	if tm.ttl <= 0 {
		tm.ttl = 24 * time.Hour
	}
	return tm, nil
}

// GenerateJWT generates a JWT token for a user with the current secret
func (tm *TokenManager) GenerateJWT(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(tm.ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secrets[0])
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify tries each secret in order; the first one that verifies wins.
func (tm *TokenManager) Verify(tokenStr string) (*Claims, error) {
	for _, secret := range tm.secrets {
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return secret, nil
		})
		if err == nil && token.Valid && claims.UserID != "" {
			return claims, nil
		}
	}
	return nil, ErrInvalidToken
}
