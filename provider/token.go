package provider

import (
	"fmt"

	"github.com/golang-jwt/jwt/v4"

	"github.com/arvoredigital/portaria"
)

// AccessClaims are the claims portaria reads out of a provider access token.
type AccessClaims struct {
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
	jwt.RegisteredClaims
}

// ParseAccessToken verifies the provider-issued access token against the
// configured JWT secret and returns its claims.
//
// This is the cheap path for asserting a session is still live without a
// provider round trip; anything needing fresh account state - notably the
// email confirmation timestamp - must call Client.GetUser instead.
func (f *Factory) ParseAccessToken(token string) (AccessClaims, error) {
	if len(f.jwtSecret) == 0 {
		return AccessClaims{}, fmt.Errorf("%w: no JWT secret configured", portaria.ErrBadConfig)
	}

	var claims AccessClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if _, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return f.jwtSecret, nil
	}); err != nil {
		return AccessClaims{}, fmt.Errorf("%w: %s", portaria.ErrNotValid, err)
	}

	return claims, nil
}
