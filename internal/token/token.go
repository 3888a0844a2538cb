// Package token implements issuing and verification of the session tokens
// returned by the signup and signin endpoints. Tokens are HS256-signed JWTs
// carrying the user's ID and username; they are not stored server-side, so
// expiry is the only invalidation mechanism.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrInvalidToken is returned by Verify for every rejected token.
// Tampered signatures and expired tokens are deliberately
// indistinguishable to the caller.
var ErrInvalidToken = errors.New("invalid token")

// TokenUser is the identity embedded in the token payload.
type TokenUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Claims represents the JWT claims used by the system.
// It embeds standard JWT claims and adds the user identity,
// producing the claim shape `{"user": {"id", "username"}, "iat", "exp"}`.
type Claims struct {
	jwt.RegisteredClaims
	User TokenUser `json:"user"`
}

// Manager issues and verifies session tokens with a process-wide
// signing secret. The secret is read-only after startup and must never
// be logged or persisted.
type Manager struct {
	signingSecretKey []byte
	tokenTTL         time.Duration
}

// New creates a Manager signing with the given secret.
// Each issued token expires tokenTTL after issuance.
func New(signingSecretKey []byte, tokenTTL time.Duration) *Manager {
	return &Manager{
		signingSecretKey: signingSecretKey,
		tokenTTL:         tokenTTL,
	}
}

// Issue builds and signs a token for the given user identity.
// The expiration claim is set to the issuance instant plus the
// manager's TTL.
func (m *Manager) Issue(userID, username string) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
		},
		User: TokenUser{
			ID:       userID,
			Username: username,
		},
	})

	tokenString, err := token.SignedString(m.signingSecretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verify checks the signature and expiration of tokenString and returns
// its claims. Any failure is reported as ErrInvalidToken.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.signingSecretKey, nil
		},
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
