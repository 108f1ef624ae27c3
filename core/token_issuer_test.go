package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTokenIssuerIssueVerify(t *testing.T) {
	repo := newMemoryUserRepo()
	u := mustCreateUser(repo, "a@x.com", "5551234", "longenough1", "user")
	iss := NewTokenIssuer([]byte("secret"), repo, time.Hour)
	ctx := context.Background()

	artifact, err := iss.Issue(ctx, u.ID)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	got, err := iss.Verify(ctx, artifact)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("Verify resolved %q, want %q", got.ID, u.ID)
	}
}

func TestTokenIssuerExpired(t *testing.T) {
	repo := newMemoryUserRepo()
	u := mustCreateUser(repo, "a@x.com", "5551234", "longenough1", "user")
	iss := NewTokenIssuer([]byte("secret"), repo, time.Hour)
	ctx := context.Background()

	artifact, err := iss.Issue(ctx, u.ID)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	// A token whose expiry passed fails with expired even though the
	// signature is still valid.
	iss.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := iss.Verify(ctx, artifact); !errors.Is(err, ErrArtifactExpired) {
		t.Fatalf("got %v, want ErrArtifactExpired", err)
	}
}

func TestTokenIssuerMalformed(t *testing.T) {
	repo := newMemoryUserRepo()
	u := mustCreateUser(repo, "a@x.com", "5551234", "longenough1", "user")
	iss := NewTokenIssuer([]byte("secret"), repo, time.Hour)
	ctx := context.Background()

	cases := map[string]string{
		"garbage":   "not.a.token",
		"empty-ish": "a",
	}
	for name, artifact := range cases {
		if _, err := iss.Verify(ctx, artifact); !errors.Is(err, ErrArtifactMalformed) {
			t.Fatalf("%s: got %v, want ErrArtifactMalformed", name, err)
		}
	}

	// Signed with a different secret.
	other := NewTokenIssuer([]byte("other-secret"), repo, time.Hour)
	forged, err := other.Issue(ctx, u.ID)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if _, err := iss.Verify(ctx, forged); !errors.Is(err, ErrArtifactMalformed) {
		t.Fatalf("wrong-secret token: got %v, want ErrArtifactMalformed", err)
	}

	if _, err := iss.Verify(ctx, ""); !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("empty artifact: got %v, want ErrArtifactNotFound", err)
	}
}

func TestTokenIssuerDeletedUser(t *testing.T) {
	repo := newMemoryUserRepo()
	u := mustCreateUser(repo, "a@x.com", "5551234", "longenough1", "user")
	iss := NewTokenIssuer([]byte("secret"), repo, time.Hour)
	ctx := context.Background()

	artifact, err := iss.Issue(ctx, u.ID)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	repo.delete(u.ID)

	if _, err := iss.Verify(ctx, artifact); !errors.Is(err, ErrUnknownUser) {
		t.Fatalf("got %v, want ErrUnknownUser", err)
	}
}

func TestTokenIssuerInvalidateIsNoop(t *testing.T) {
	repo := newMemoryUserRepo()
	u := mustCreateUser(repo, "a@x.com", "5551234", "longenough1", "user")
	iss := NewTokenIssuer([]byte("secret"), repo, time.Hour)
	ctx := context.Background()

	artifact, err := iss.Issue(ctx, u.ID)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if err := iss.Invalidate(ctx, artifact); err != nil {
		t.Fatalf("Invalidate error: %v", err)
	}
	// No server-side revocation: the token still verifies.
	if _, err := iss.Verify(ctx, artifact); err != nil {
		t.Fatalf("token should remain valid after Invalidate, got %v", err)
	}
}
