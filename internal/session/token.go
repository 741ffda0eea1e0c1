package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that do not belong to the current
// session.
var ErrInvalidToken = errors.New("invalid session token")

const tokenIssuer = "planifia"

// Claims is the bearer token payload.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Tokens signs and checks bearer tokens for the HTTP API.
type Tokens struct {
	secret []byte
}

// NewTokens creates a token signer using an HMAC secret.
func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret)}
}

// Issue signs a token bound to s. It stays valid until s is replaced or
// destroyed.
func (t *Tokens) Issue(s Session) (string, error) {
	claims := Claims{
		Email: s.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   tokenIssuer,
			Subject:  s.ID,
			ID:       s.Nonce,
			IssuedAt: jwt.NewNumericDate(s.SignedInAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses raw and checks it against the current session.
func (t *Tokens) Verify(raw string, current *Session) error {
	if current == nil {
		return ErrNoSession
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithLeeway(5*time.Second),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject != current.ID || claims.ID != current.Nonce {
		return ErrInvalidToken
	}
	return nil
}
