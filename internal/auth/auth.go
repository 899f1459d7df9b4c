package auth

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"fishcatch/internal/config"
)

// Service issues and verifies operator session tokens. The system has
// a single operator account configured in .fishcatch.yml.
type Service struct {
	cfg config.AuthConfig
	now func() time.Time
}

// NewService creates the auth service.
func NewService(cfg config.AuthConfig) *Service {
	return &Service{cfg: cfg, now: time.Now}
}

// Enabled reports whether authentication is configured. With no
// operator password set, the API runs open (local development).
func (s *Service) Enabled() bool {
	return s.cfg.Password != "" && s.cfg.JWTSecret != ""
}

// Login checks credentials and returns a signed session token.
func (s *Service) Login(username, password string) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("authentication is not configured")
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.Password)) == 1
	if !userOK || !passOK {
		return "", fmt.Errorf("invalid credentials")
	}

	expiry := time.Duration(s.cfg.TokenExpiryHours) * time.Hour
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}

	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(s.now().Add(expiry)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks a session token and returns the subject it was issued to.
func (s *Service) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		return "", fmt.Errorf("verifying token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	return claims.Subject, nil
}
