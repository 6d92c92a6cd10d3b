// Package auth verifies login credentials and manages API tokens.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"librarium/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is the result of verifying a login credential.
type Identity struct {
	ExternalID string
	Username   string
}

// Verifier checks a login credential against the identity provider.
type Verifier interface {
	Verify(ctx context.Context, credential string) (*Identity, error)
}

// JWTVerifier accepts credentials signed by the identity provider with a
// shared HMAC secret. The subject claim carries the external user id.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a verifier for the given shared secret.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(_ context.Context, credential string) (*Identity, error) {
	token, err := jwt.Parse(credential, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid credential")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid credential")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, models.NewUnauthorizedError("Invalid credential")
	}

	username := sub
	if name, ok := claims["name"].(string); ok && name != "" {
		username = name
	}

	return &Identity{ExternalID: sub, Username: username}, nil
}

// NewSessionToken generates the opaque API token handed to a client at
// login. Only its hash is persisted.
func NewSessionToken() string {
	return uuid.NewString()
}

// HashToken returns the hex SHA-256 digest under which a token is stored.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
