package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = 24 * time.Hour

// Domain errors for admin auth.
var (
	ErrAuthDisabled = errors.New("admin api disabled: no secret configured")
	ErrInvalidToken = errors.New("invalid token")
	ErrEmptySubject = errors.New("token subject is empty")
	ErrBadSecret    = errors.New("invalid admin secret")
)

// AuthService signs and verifies HS256 admin tokens with a shared secret.
type AuthService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthService(secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &AuthService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Claims defines JWT claims
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

const roleAdmin = "admin"

// Enabled reports whether a signing secret is configured.
func (s *AuthService) Enabled() bool { return len(s.secret) > 0 }

// IssueToken returns a signed admin token for subject.
func (s *AuthService) IssueToken(subject string) (string, error) {
	if !s.Enabled() {
		return "", ErrAuthDisabled
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", ErrEmptySubject
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role: roleAdmin,
	})
	return token.SignedString(s.secret)
}

// SignIn exchanges the shared admin secret for a token.
func (s *AuthService) SignIn(subject, secret string) (string, error) {
	if !s.Enabled() {
		return "", ErrAuthDisabled
	}
	if subtle.ConstantTimeCompare([]byte(secret), s.secret) != 1 {
		return "", ErrBadSecret
	}
	return s.IssueToken(subject)
}

// ParseToken parses JWT and returns its subject
func (s *AuthService) ParseToken(accessToken string) (string, error) {
	if !s.Enabled() {
		return "", ErrAuthDisabled
	}
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Role != roleAdmin {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
