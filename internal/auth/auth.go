package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"cv-analyser/internal/config"
)

var (
	ErrMissingToken       = errors.New("api key missing")
	ErrExpiredToken       = errors.New("token expired")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Detail returns the client-facing message for an auth error
func Detail(err error) string {
	switch {
	case errors.Is(err, ErrMissingToken):
		return "API key missing"
	case errors.Is(err, ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid credentials"
	default:
		return "Invalid token"
	}
}

// Claims carried by issued tokens
type Claims struct {
	jwt.RegisteredClaims
}

// Service issues and verifies HMAC-signed access tokens
type Service struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	users  map[string]string
	now    func() time.Time
}

// NewService builds a Service from the auth section of the configuration
func NewService(cfg *config.Config) (*Service, error) {
	method := jwt.GetSigningMethod(cfg.Auth.Algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Auth.Algorithm)
	}

	users := make(map[string]string, len(cfg.Auth.Users))
	for name, password := range cfg.Auth.Users {
		users[name] = password
	}

	ttl := cfg.Auth.TokenTTL
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}

	return &Service{
		secret: []byte(cfg.Auth.SecretKey),
		method: method,
		ttl:    ttl,
		users:  users,
		now:    time.Now,
	}, nil
}

// Authenticate checks username and password against the user store
func (s *Service) Authenticate(username, password string) error {
	expected, ok := s.users[username]
	if !ok {
		// keep timing independent of whether the user exists
		subtle.ConstantTimeCompare([]byte(password), []byte(password))
		return ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(expected)) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}

// Issue signs a token for subject that expires after the configured TTL
func (s *Service) Issue(subject string) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)

	token := jwt.NewWithClaims(s.method, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Login authenticates the user and issues a token for them
func (s *Service) Login(username, password string) (string, error) {
	if err := s.Authenticate(username, password); err != nil {
		return "", err
	}
	token, _, err := s.Issue(username)
	return token, err
}

// Verify parses and validates a token. The error is one of ErrMissingToken,
// ErrExpiredToken or ErrInvalidToken.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	default:
		return nil, ErrInvalidToken
	}
}
