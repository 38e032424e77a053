package services

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"medipal/models"
)

var (
	ErrMissingToken   = errors.New("missing bearer token")
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrInvalidSubject = errors.New("invalid token subject")
)

// Every Supabase access token carries this audience.
const tokenAudience = "authenticated"

type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Verifier validates access tokens against the project's published key set.
type Verifier struct {
	keys   *KeySet
	issuer string
}

func NewVerifier(keys *KeySet, issuer string) *Verifier {
	return &Verifier{keys: keys, issuer: issuer}
}

// Verify checks the token's signature, issuer and audience and returns the
// caller's identity. Every verification failure is reported as
// ErrInvalidToken; a token that verifies but asserts no subject is
// ErrInvalidSubject.
func (v *Verifier) Verify(tokenString string) (models.Identity, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.keys.Keyfunc,
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithValidMethods([]string{"RS256", "ES256"}),
	)
	if err != nil || !token.Valid {
		return models.Identity{}, ErrInvalidToken
	}

	if claims.Subject == "" {
		return models.Identity{}, ErrInvalidSubject
	}

	return models.Identity{UserID: claims.Subject, Email: claims.Email}, nil
}
