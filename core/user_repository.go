package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRecord is the full persisted user, password hash included. It
// never leaves the core; handlers only ever see the sanitized User.
type UserRecord struct {
	ID           string
	FullName     string
	Email        string
	PhoneNumber  string
	PasswordHash string
	Role         string
	Address      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// User is the sanitized projection returned to clients.
type User struct {
	ID          string    `json:"id"`
	FullName    string    `json:"fullName"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	Role        string    `json:"role"`
	Address     string    `json:"address,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Sanitize strips the password hash from a record.
func (r *UserRecord) Sanitize() *User {
	return &User{
		ID:          r.ID,
		FullName:    r.FullName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Role:        r.Role,
		Address:     r.Address,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// UserRepository defines persistence operations for users. Find
// methods return (nil, nil) when no row matches.
type UserRepository interface {
	Create(ctx context.Context, u *UserRecord) (*UserRecord, error)
	FindByID(ctx context.Context, id string) (*UserRecord, error)
	FindByEmail(ctx context.Context, email string) (*UserRecord, error)
	FindByPhone(ctx context.Context, phone string) (*UserRecord, error)
	List(ctx context.Context, page, perPage int) ([]User, int, error)
	HasAdmin(ctx context.Context) (bool, error)
}

// PgUserRepository implements UserRepository using pgxpool.
type PgUserRepository struct {
	db *pgxpool.Pool
}

func NewPgUserRepository(db *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{db: db}
}

const userColumns = `id, full_name, email, phone_number, password_hash, role, address, created_at, updated_at`

func scanUser(row pgx.Row) (*UserRecord, error) {
	var u UserRecord
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PhoneNumber, &u.PasswordHash, &u.Role, &u.Address, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user, assigning its id. A unique violation on
// email or phone_number is returned as *ConflictError; the database
// constraint is the authoritative conflict signal, not the
// application-level pre-check.
func (r *PgUserRepository) Create(ctx context.Context, u *UserRecord) (*UserRecord, error) {
	const q = `INSERT INTO users (id, full_name, email, phone_number, password_hash, role, address)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING ` + userColumns
	id := uuid.New().String()
	created, err := scanUser(r.db.QueryRow(ctx, q, id, u.FullName, u.Email, u.PhoneNumber, u.PasswordHash, u.Role, u.Address))
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	return created, nil
}

// mapUniqueViolation converts a 23505 into the conflict taxonomy,
// picking the field from the violated constraint name.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return err
	}
	if strings.Contains(pgErr.ConstraintName, "phone") {
		return &ConflictError{Field: "phone_number", Message: "phone number already in use"}
	}
	return &ConflictError{Field: "email", Message: "email already in use"}
}

func (r *PgUserRepository) FindByID(ctx context.Context, id string) (*UserRecord, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.db.QueryRow(ctx, q, id))
}

func (r *PgUserRepository) FindByEmail(ctx context.Context, email string) (*UserRecord, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return scanUser(r.db.QueryRow(ctx, q, email))
}

func (r *PgUserRepository) FindByPhone(ctx context.Context, phone string) (*UserRecord, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE phone_number=$1`
	return scanUser(r.db.QueryRow(ctx, q, phone))
}

// List returns paginated sanitized users ordered by creation time.
func (r *PgUserRepository) List(ctx context.Context, page, perPage int) ([]User, int, error) {
	if page <= 0 || perPage <= 0 {
		return nil, 0, errors.New("invalid pagination")
	}
	const countQ = `SELECT COUNT(*) FROM users`
	var total int
	if err := r.db.QueryRow(ctx, countQ).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id LIMIT $1 OFFSET $2`, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := make([]User, 0, perPage)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *u.Sanitize())
	}
	return items, total, rows.Err()
}

func (r *PgUserRepository) HasAdmin(ctx context.Context) (bool, error) {
	const q = `SELECT 1 FROM users WHERE role='admin' LIMIT 1`
	var one int
	if err := r.db.QueryRow(ctx, q).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
