package core

import "context"

// Issuer creates and verifies the credential artifact a client
// carries across requests. Two implementations exist: SessionIssuer
// (server-side record, the artifact is an opaque session id) and
// TokenIssuer (signed stateless token). The variant is selected once
// at startup via Config.AuthStrategy and never mixed per request.
type Issuer interface {
	// Issue allocates a fresh artifact for userID with the configured TTL.
	Issue(ctx context.Context, userID string) (string, error)

	// Verify resolves an artifact back to its user. Failures are one of
	// ErrArtifactNotFound, ErrArtifactExpired, ErrArtifactMalformed, or
	// ErrUnknownUser. A successful Verify guarantees the user still
	// exists in the store.
	Verify(ctx context.Context, artifact string) (*UserRecord, error)

	// Invalidate revokes an artifact where the strategy permits.
	// Idempotent: invalidating an unknown artifact is not an error.
	Invalidate(ctx context.Context, artifact string) error
}

// Principal is the authenticated identity attached to a request after
// the guard succeeds. Created per-request, never persisted.
type Principal struct {
	UserID   string
	Email    string
	FullName string
	Role     string
}
