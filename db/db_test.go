package db

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(Config{Path: filepath.Join(t.TempDir(), "test.sqlite")})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func createTestUser(t *testing.T, d *DB, email string) *User {
	t.Helper()
	user, err := d.CreateUser(email, "$2a$10$fakehash", "Test User")
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func TestMigrationsApplied(t *testing.T) {
	d := openTestDB(t)

	version, err := d.SchemaVersion()
	if err != nil {
		t.Fatalf("failed to read schema version: %v", err)
	}
	if version < 4 {
		t.Errorf("expected schema version >= 4, got %d", version)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	d := openTestDB(t)
	createTestUser(t, d, "dup@example.com")

	_, err := d.CreateUser("dup@example.com", "hash", "Other")
	if err == nil {
		t.Fatal("expected duplicate email to fail")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("expected unique violation, got: %v", err)
	}
}

func TestUpsertSSOUser(t *testing.T) {
	d := openTestDB(t)

	first, err := d.UpsertSSOUser("sso@example.com", "SSO User")
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if first.PasswordHash != "" {
		t.Error("SSO user should have no password hash")
	}

	second, err := d.UpsertSSOUser("sso@example.com", "Renamed")
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("upsert created a new user: %s != %s", second.ID, first.ID)
	}
}

func TestSessionLifecycle(t *testing.T) {
	d := openTestDB(t)
	user := createTestUser(t, d, "sessions@example.com")

	if _, err := d.CreateSession("token-1", user.ID); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	session, err := d.GetSession("token-1")
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if session == nil || session.UserID != user.ID {
		t.Fatalf("unexpected session: %+v", session)
	}

	if err := d.DeleteSession("token-1"); err != nil {
		t.Fatalf("failed to delete session: %v", err)
	}
	session, err = d.GetSession("token-1")
	if err != nil {
		t.Fatalf("failed to get deleted session: %v", err)
	}
	if session != nil {
		t.Error("deleted session should not be returned")
	}
}

func TestGetSessionExpired(t *testing.T) {
	d := openTestDB(t)
	user := createTestUser(t, d, "expired@example.com")

	if _, err := d.CreateSession("token-old", user.ID); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	// Force the session into the past
	if _, err := d.Conn().Exec(`UPDATE sessions SET expires_at = 1 WHERE id = ?`, "token-old"); err != nil {
		t.Fatalf("failed to expire session: %v", err)
	}

	session, err := d.GetSession("token-old")
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if session != nil {
		t.Error("expired session should not be returned")
	}

	deleted, err := d.DeleteExpiredSessions()
	if err != nil {
		t.Fatalf("failed to delete expired sessions: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 expired session deleted, got %d", deleted)
	}
}
