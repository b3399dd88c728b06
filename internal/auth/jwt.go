package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hiverapp/hiver/pkg/config"
)

// Authenticator issues and verifies the bearer tokens that carry the
// viewer identity into API calls.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
}

// New creates an authenticator from config
func New(cfg *config.AuthConfig) *Authenticator {
	return &Authenticator{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
	}
}

// CreateToken creates a signed JWT with "sub" = profileID
func (a *Authenticator) CreateToken(profileID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": profileID,
		"iat": now.Unix(),
		"exp": now.Add(a.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// VerifyToken verifies a JWT string and returns the "sub" claim
func (a *Authenticator) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("token missing subject")
	}
	return sub, nil
}
