package core

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestLoginRateLimiterAllowsBurstThenRejects(t *testing.T) {
	rl := NewLoginRateLimiter(1, 3)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("attempt %d within burst should be allowed", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Fatal("attempt past burst should be rejected")
	}
	// Other clients have their own bucket.
	if !rl.allow("10.0.0.2") {
		t.Fatal("distinct ip should not share the bucket")
	}
}

func TestLoginRateLimiterDefaults(t *testing.T) {
	rl := NewLoginRateLimiter(0, 0)
	defer rl.Stop()
	if !rl.allow("10.0.0.1") {
		t.Fatal("defaulted limiter should allow the first attempt")
	}
}

func TestLoginEndpointRateLimited(t *testing.T) {
	cfg := testConfig()
	ts := newTestServer(t, cfg)
	ts.register(t, "a@x.com", "5551234")

	rl := NewLoginRateLimiter(1, 2)
	defer rl.Stop()

	// Rebuild the router with the limiter attached.
	gin.SetMode(gin.TestMode)
	repo := ts.repo
	hasher := NewBcryptHasher(cfg.BcryptCost)
	svc := NewAuthService(repo, hasher, ts.issuer, cfg, nil)
	ts.engine = NewRouter(cfg, ts.store, RouterDeps{
		Auth:         svc,
		Users:        repo,
		Issuer:       ts.issuer,
		DB:           okPinger{},
		LoginLimiter: rl,
	})

	body := gin.H{"email": "a@x.com", "password": "wrong"}
	for i := 0; i < 2; i++ {
		w := ts.do(t, http.MethodPost, "/api/v1/auth/login", body, nil, nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d status = %d", i+1, w.Code)
		}
	}
	w := ts.do(t, http.MethodPost, "/api/v1/auth/login", body, nil, nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "60" {
		t.Fatalf("Retry-After = %q", got)
	}
}
