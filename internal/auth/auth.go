// internal/auth/auth.go
//
// Seat tokens.
// A client may trade a display name (and the server password, when one is
// configured) for a short-lived HS256 JWT, then present it when opening the
// game WebSocket. The name in the token is used in logs and match history.

package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidName     = errors.New("name: 3-24 letters, numbers or underscore")
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidToken    = errors.New("invalid token")
)

// Issuer signs and verifies seat tokens.
type Issuer struct {
	secret       []byte
	ttl          time.Duration
	passwordHash string // bcrypt; empty means no password required
	now          func() time.Time
}

// NewIssuer builds an Issuer. passwordHash may be empty.
func NewIssuer(secret string, ttl time.Duration, passwordHash string) *Issuer {
	return &Issuer{
		secret:       []byte(secret),
		ttl:          ttl,
		passwordHash: passwordHash,
		now:          time.Now,
	}
}

// PasswordRequired reports whether Issue checks a password.
func (i *Issuer) PasswordRequired() bool { return i.passwordHash != "" }

// NormalizeName trims surrounding whitespace.
func NormalizeName(name string) string { return strings.TrimSpace(name) }

// ValidateName enforces 3-24 chars of [A-Za-z0-9_].
func ValidateName(name string) error {
	if len(name) < 3 || len(name) > 24 {
		return ErrInvalidName
	}
	for _, r := range name {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return ErrInvalidName
		}
	}
	return nil
}

// HashPassword returns a bcrypt hash suitable for SERVER_PASSWORD_HASH.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

// Issue validates the request and returns a signed token with its expiry.
func (i *Issuer) Issue(name, password string) (string, time.Time, error) {
	name = NormalizeName(name)
	if err := ValidateName(name); err != nil {
		return "", time.Time{}, err
	}
	if i.PasswordRequired() &&
		bcrypt.CompareHashAndPassword([]byte(i.passwordHash), []byte(password)) != nil {
		return "", time.Time{}, ErrInvalidPassword
	}

	now := i.now()
	exp := now.Add(i.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"name": name,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	})
	ss, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return ss, exp, nil
}

// Verify checks signature and expiry and returns the name claim.
func (i *Issuer) Verify(tokenStr string) (string, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	name, _ := claims["name"].(string)
	if ValidateName(name) != nil {
		return "", ErrInvalidToken
	}
	return name, nil
}

// TokenFromRequest reads "Authorization: Bearer <t>" or the ?token= query
// parameter (browsers cannot set headers on WebSocket upgrades).
func TokenFromRequest(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return r.URL.Query().Get("token")
}
