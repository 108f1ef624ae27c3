package core

import (
	"context"
	"errors"
	"fmt"
)

// AuthService composes validator, hasher, store, and issuer into the
// four observable operations. It produces only taxonomy errors;
// nothing below the handler layer touches HTTP statuses.
type AuthService struct {
	users   UserRepository
	hasher  PasswordHasher
	issuer  Issuer
	cfg     Config
	metrics *Metrics
}

func NewAuthService(users UserRepository, hasher PasswordHasher, issuer Issuer, cfg Config, metrics *Metrics) *AuthService {
	return &AuthService{users: users, hasher: hasher, issuer: issuer, cfg: cfg, metrics: metrics}
}

// Register validates input, pre-checks uniqueness, hashes the
// password, and creates the user with role=user. The pre-check keeps
// the common-case error deterministic (email reported before phone
// when both collide); the store's unique index remains authoritative
// for the race between check and insert. When AutoLoginOnRegister is
// set, a fresh artifact is returned alongside the sanitized user.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*User, string, error) {
	in.Normalize()
	if err := ValidateRegisterInput(in, s.cfg.RequirePhoneFormat); err != nil {
		return nil, "", err
	}

	// Best-effort pre-checks, email first.
	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, "", fmt.Errorf("lookup by email: %w", err)
	}
	if existing != nil {
		return nil, "", &ConflictError{Field: "email", Message: "email already in use"}
	}
	existing, err = s.users.FindByPhone(ctx, in.PhoneNumber)
	if err != nil {
		return nil, "", fmt.Errorf("lookup by phone: %w", err)
	}
	if existing != nil {
		return nil, "", &ConflictError{Field: "phone_number", Message: "phone number already in use"}
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.Create(ctx, &UserRecord{
		FullName:     in.FullName,
		Email:        in.Email,
		PhoneNumber:  in.PhoneNumber,
		PasswordHash: hash,
		Role:         "user",
		Address:      in.Address,
	})
	if err != nil {
		// A concurrent Register can win the race past the pre-check;
		// the unique violation surfaces here as a ConflictError.
		return nil, "", err
	}
	s.metrics.RecordRegistration()

	var artifact string
	if s.cfg.AutoLoginOnRegister {
		artifact, err = s.issuer.Issue(ctx, created.ID)
		if err != nil {
			return nil, "", fmt.Errorf("issue artifact: %w", err)
		}
	}
	return created.Sanitize(), artifact, nil
}

// Login verifies credentials and issues a fresh artifact. An unknown
// email and a wrong password produce the identical error so callers
// cannot enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*User, string, error) {
	if err := ValidateLoginInput(email, password); err != nil {
		return nil, "", err
	}
	email = normalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("lookup by email: %w", err)
	}
	if user == nil || !s.hasher.Verify(password, user.PasswordHash) {
		s.metrics.RecordLoginFailure()
		return nil, "", ErrInvalidCredentials
	}

	artifact, err := s.issuer.Issue(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue artifact: %w", err)
	}
	s.metrics.RecordLoginSuccess()
	return user.Sanitize(), artifact, nil
}

// Logout invalidates the artifact. Idempotent: an absent or already
// invalid artifact is not an error.
func (s *AuthService) Logout(ctx context.Context, artifact string) error {
	if artifact == "" {
		return nil
	}
	return s.issuer.Invalidate(ctx, artifact)
}

// CheckAuth is a status probe, not a protected resource: it reports
// whether the artifact verifies, never an error the caller must
// handle. A nil user means not authenticated.
func (s *AuthService) CheckAuth(ctx context.Context, artifact string) (*User, error) {
	if artifact == "" {
		return nil, nil
	}
	user, err := s.issuer.Verify(ctx, artifact)
	if err != nil {
		if isVerifyFailure(err) {
			s.metrics.RecordVerifyFailure(verifyFailureReason(err))
			return nil, nil
		}
		return nil, err
	}
	return user.Sanitize(), nil
}

// isVerifyFailure distinguishes the expected artifact rejections from
// infrastructure failures.
func isVerifyFailure(err error) bool {
	return errors.Is(err, ErrArtifactNotFound) ||
		errors.Is(err, ErrArtifactExpired) ||
		errors.Is(err, ErrArtifactMalformed) ||
		errors.Is(err, ErrUnknownUser)
}

func verifyFailureReason(err error) string {
	switch {
	case errors.Is(err, ErrArtifactExpired):
		return "expired"
	case errors.Is(err, ErrArtifactMalformed):
		return "malformed"
	case errors.Is(err, ErrUnknownUser):
		return "unknown_user"
	default:
		return "not_found"
	}
}
