package auth

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

const bearerPrefix = "Bearer "

// ErrNotConfigured is returned by Validate when no auth base URL was given.
var ErrNotConfigured = errors.New("auth is not configured")

// ErrInvalidToken is returned for tokens that parse but carry no usable claims.
var ErrInvalidToken = errors.New("invalid token claims")

// Validator verifies host tokens against the JWKS published by an auth issuer.
// The zero value and a nil *Validator reject every token with ErrNotConfigured.
type Validator struct {
	baseURL string
	issuer  string

	once    sync.Once
	keyfunc jwt.Keyfunc
	err     error
}

// NewValidator returns a validator for tokens issued by baseURL. The JWKS at
// baseURL/.well-known/jwks.json is fetched on first use. An empty baseURL
// yields a validator that is not Enabled.
func NewValidator(baseURL string) (*Validator, error) {
	if baseURL == "" {
		return &Validator{}, nil
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid auth base URL: %w", err)
	}
	return &Validator{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		issuer:  u.Scheme + "://" + u.Host,
	}, nil
}

// NewStaticValidator returns a validator that checks tokens from issuer with kf
// instead of a remote JWKS.
func NewStaticValidator(issuer string, kf jwt.Keyfunc) *Validator {
	v := &Validator{baseURL: issuer, issuer: issuer, keyfunc: kf}
	v.once.Do(func() {})
	return v
}

// Enabled reports whether tokens can be validated at all.
func (v *Validator) Enabled() bool {
	return v != nil && v.baseURL != ""
}

// Validate parses tokenString and returns its claims.
func (v *Validator) Validate(tokenString string) (jwt.MapClaims, error) {
	if !v.Enabled() {
		return nil, ErrNotConfigured
	}
	v.once.Do(func() {
		jwks, err := keyfunc.NewDefault([]string{v.baseURL + "/.well-known/jwks.json"})
		if err != nil {
			v.err = err
			return
		}
		v.keyfunc = jwks.Keyfunc
	})
	if v.err != nil {
		return nil, v.err
	}

	token, err := jwt.Parse(tokenString, v.keyfunc,
		jwt.WithIssuer(v.issuer),
		jwt.WithValidMethods([]string{"EdDSA", "RS256", "ES256"}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// UserID validates tokenString and returns the caller's user id.
func (v *Validator) UserID(tokenString string) (string, error) {
	claims, err := v.Validate(tokenString)
	if err != nil {
		return "", err
	}
	id := UserIDFromClaims(claims)
	if id == "" {
		return "", ErrInvalidToken
	}
	return id, nil
}

// UserIDFromClaims returns the user id from claims ("sub" or "id").
func UserIDFromClaims(claims jwt.MapClaims) string {
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub
	}
	if id, ok := claims["id"].(string); ok && id != "" {
		return id
	}
	return ""
}

// BearerToken returns the token from an "Authorization: Bearer ..." header, or "".
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(h[len(bearerPrefix):])
}
