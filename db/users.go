package db

import (
	"database/sql"
	"strings"

	"github.com/google/uuid"
)

// CreateUser inserts a new user. Email uniqueness is enforced by the schema;
// callers can detect duplicates with IsUniqueViolation.
func (d *DB) CreateUser(email, passwordHash, displayName string) (*User, error) {
	now := NowMs()
	u := &User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		DisplayName:  displayName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := d.conn.Exec(`
		INSERT INTO users (id, email, password_hash, display_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, u.ID, u.Email, u.PasswordHash, u.DisplayName, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return u, nil
}

// GetUser retrieves a user by ID, returns nil if not found
func (d *DB) GetUser(id string) (*User, error) {
	return d.queryUser("SELECT id, email, password_hash, display_name, created_at, updated_at FROM users WHERE id = ?", id)
}

// GetUserByEmail retrieves a user by email, returns nil if not found
func (d *DB) GetUserByEmail(email string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return d.queryUser("SELECT id, email, password_hash, display_name, created_at, updated_at FROM users WHERE email = ?", email)
}

// UpsertSSOUser finds or creates a user for an SSO login. SSO users carry an
// empty password hash and cannot log in with a password.
func (d *DB) UpsertSSOUser(email, displayName string) (*User, error) {
	existing, err := d.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	return d.CreateUser(email, "", displayName)
}

func (d *DB) queryUser(query string, args ...any) (*User, error) {
	var u User
	err := d.conn.QueryRow(query, args...).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// IsUniqueViolation reports whether err is a SQLite unique constraint failure
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
