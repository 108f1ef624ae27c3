package core

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// assertNoPasswordField fails if any serialized key of v mentions a
// password. Guards the sanitization invariant at the JSON boundary.
func assertNoPasswordField(t *testing.T, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(strings.ToLower(string(data)), "password") {
		t.Fatalf("serialized value leaks a password field: %s", data)
	}
}

// memoryUserRepo is an in-memory UserRepository enforcing the same
// uniqueness rules the database schema does.
type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]*UserRecord // by id
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[string]*UserRecord{}}
}

func (r *memoryUserRepo) Create(ctx context.Context, u *UserRecord) (*UserRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, &ConflictError{Field: "email", Message: "email already in use"}
		}
		if existing.PhoneNumber == u.PhoneNumber {
			return nil, &ConflictError{Field: "phone_number", Message: "phone number already in use"}
		}
	}
	created := *u
	created.ID = uuid.New().String()
	now := time.Now()
	created.CreatedAt = now
	created.UpdatedAt = now
	r.users[created.ID] = &created
	out := created
	return &out, nil
}

func (r *memoryUserRepo) FindByID(ctx context.Context, id string) (*UserRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		out := *u
		return &out, nil
	}
	return nil, nil
}

func (r *memoryUserRepo) FindByEmail(ctx context.Context, email string) (*UserRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) FindByPhone(ctx context.Context, phone string) (*UserRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.PhoneNumber == phone {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) List(ctx context.Context, page, perPage int) ([]User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, *u.Sanitize())
	}
	total := len(all)
	start := (page - 1) * perPage
	if start >= total {
		return []User{}, total, nil
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (r *memoryUserRepo) HasAdmin(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Role == "admin" {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryUserRepo) delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

// mustCreateUser inserts a user with a bcrypt-hashed password at the
// minimum cost to keep tests fast.
func mustCreateUser(repo *memoryUserRepo, email, phone, password, role string) *UserRecord {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	u, err := repo.Create(context.Background(), &UserRecord{
		FullName:     "Test User",
		Email:        email,
		PhoneNumber:  phone,
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		panic(err)
	}
	return u
}

func testConfig() Config {
	return Config{
		Port:           "0",
		SessionKey:     "test-session-key",
		AuthStrategy:   StrategySession,
		JWTSecret:      "test-jwt-secret",
		SessionTTL:     24 * time.Hour,
		TokenTTL:       7 * 24 * time.Hour,
		BcryptCost:     bcrypt.MinCost,
		CookieSameSite: "Strict",
	}
}
