package core

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims is the signed payload of a stateless artifact.
type tokenClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// TokenIssuer implements the stateless artifact strategy: an
// HMAC-signed token holding {userId, issuedAt, expiresAt}. No server
// record exists, so Invalidate cannot revoke an outstanding token;
// clearing the client cookie is the only enforceable action. True
// revocation would need a blocklist keyed by token id with its own
// TTL, which this deployment does not carry.
type TokenIssuer struct {
	secret []byte
	users  UserRepository
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret []byte, users UserRepository, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, users: users, ttl: ttl, now: time.Now}
}

func (i *TokenIssuer) Issue(ctx context.Context, userID string) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		UserID: userID,
	})
	return token.SignedString(i.secret)
}

// Verify checks the signature and expiry, then confirms the user
// still exists; a signed token for a deleted account is rejected.
func (i *TokenIssuer) Verify(ctx context.Context, artifact string) (*UserRecord, error) {
	if artifact == "" {
		return nil, ErrArtifactNotFound
	}
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(artifact, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrArtifactExpired
		}
		return nil, ErrArtifactMalformed
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrArtifactMalformed
	}

	user, err := i.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnknownUser
	}
	return user, nil
}

// Invalidate is a no-op for stateless tokens (see type doc).
func (i *TokenIssuer) Invalidate(ctx context.Context, artifact string) error {
	return nil
}
