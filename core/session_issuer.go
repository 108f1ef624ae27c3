package core

import (
	"context"
	"time"
)

// SessionRecord is the server-side half of a stateful artifact. The
// client only ever holds the opaque ID.
type SessionRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionStore is durable keyed storage for session records with
// best-effort TTL eviction. Find returns (nil, nil) when absent;
// Delete is a no-op when absent.
type SessionStore interface {
	Save(ctx context.Context, rec SessionRecord, ttl time.Duration) error
	Find(ctx context.Context, id string) (*SessionRecord, error)
	Delete(ctx context.Context, id string) error
	ActiveCount(ctx context.Context) (int64, error)
}

// SessionIssuer implements the stateful artifact strategy: an
// unguessable session id keyed to a store record.
type SessionIssuer struct {
	sessions SessionStore
	users    UserRepository
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionIssuer(sessions SessionStore, users UserRepository, ttl time.Duration) *SessionIssuer {
	return &SessionIssuer{sessions: sessions, users: users, ttl: ttl, now: time.Now}
}

// Issue writes a fully-formed session record before returning the id,
// so an aborted request never leaves a usable half-created artifact.
func (i *SessionIssuer) Issue(ctx context.Context, userID string) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", err
	}
	now := i.now()
	rec := SessionRecord{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(i.ttl),
	}
	if err := i.sessions.Save(ctx, rec, i.ttl); err != nil {
		return "", err
	}
	return id, nil
}

// Verify looks the session up, checks expiry lazily, and confirms the
// user still exists. Expiry is checked against the stored ExpiresAt
// regardless of store-side eviction: an expired-but-not-yet-evicted
// record is rejected and purged.
func (i *SessionIssuer) Verify(ctx context.Context, artifact string) (*UserRecord, error) {
	if artifact == "" {
		return nil, ErrArtifactNotFound
	}
	rec, err := i.sessions.Find(ctx, artifact)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrArtifactNotFound
	}
	if !i.now().Before(rec.ExpiresAt) {
		_ = i.sessions.Delete(ctx, artifact)
		return nil, ErrArtifactExpired
	}
	user, err := i.users.FindByID(ctx, rec.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnknownUser
	}
	return user, nil
}

// Invalidate deletes the session record. Idempotent.
func (i *SessionIssuer) Invalidate(ctx context.Context, artifact string) error {
	if artifact == "" {
		return nil
	}
	return i.sessions.Delete(ctx, artifact)
}
