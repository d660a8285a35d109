// Package auth authenticates the single gatekeeper administrator. A login
// checks the configured username and bcrypt password hash and issues an HS256
// JWT; admin routes and the admin pipeline bypass verify that token.
package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/tbourn/go-form-gatekeeper/internal/config"
)

const (
	issuer = "form-gatekeeper"
	leeway = 30 * time.Second
)

var (
	// ErrLoginDisabled is returned when no password hash is configured.
	ErrLoginDisabled = errors.New("admin login disabled")
	// ErrInvalidCredentials hides whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken covers malformed, forged and expired tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// Admin issues and verifies administrator tokens.
type Admin struct {
	Username     string
	PasswordHash string
	Secret       []byte
	TTL          time.Duration
	Now          func() time.Time
}

// New returns an Admin configured from cfg.
func New(cfg config.AdminConfig) *Admin {
	return &Admin{
		Username:     cfg.Username,
		PasswordHash: cfg.PasswordHash,
		Secret:       []byte(cfg.JWTSecret),
		TTL:          cfg.TokenTTL,
		Now:          time.Now,
	}
}

func (a *Admin) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// Enabled reports whether logins can succeed at all.
func (a *Admin) Enabled() bool {
	return a != nil && a.PasswordHash != "" && len(a.Secret) > 0
}

// Login checks the credentials and returns a signed token with its expiry.
func (a *Admin) Login(username, password string) (string, time.Time, error) {
	if !a.Enabled() {
		return "", time.Time{}, ErrLoginDisabled
	}
	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(a.Username)) == 1
	// The hash is compared even for a wrong username so both failures take
	// the same time.
	pwErr := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password))
	if !userOK || pwErr != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return a.Issue()
}

// Issue signs a fresh token for the administrator.
func (a *Admin) Issue() (string, time.Time, error) {
	now := a.now()
	exp := now.Add(a.TTL)
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   a.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.Secret)
	return signed, exp, err
}

// Verify validates tok and returns its subject.
func (a *Admin) Verify(tok string) (string, error) {
	if a == nil || len(a.Secret) == 0 || tok == "" {
		return "", ErrInvalidToken
	}
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(tok, &claims,
		func(*jwt.Token) (any, error) { return a.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !parsed.Valid || claims.Subject != a.Username {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// HashPassword returns the bcrypt hash to put in ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}
