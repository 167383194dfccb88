package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// TokenKey is the fixed key the bearer token is stored under.
const TokenKey = "token"

// CredentialRepository persists the session credential.
type CredentialRepository struct {
	db *sql.DB
}

// NewCredentialRepository creates a new [CredentialRepository] with the given database connection
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Token returns the stored bearer token, or "" when none is stored.
func (r *CredentialRepository) Token() (string, error) {
	value, _, err := r.Get(TokenKey)
	return value, err
}

// SaveToken stores token, replacing any previous one.
func (r *CredentialRepository) SaveToken(token string) error {
	if token == "" {
		return r.ClearToken()
	}
	return upsert(r.db, TokenKey, token)
}

// ClearToken removes the stored token. Clearing an absent token is not an error.
func (r *CredentialRepository) ClearToken() error {
	if _, err := r.db.Exec(`DELETE FROM credentials WHERE key = ?`, TokenKey); err != nil {
		return fmt.Errorf("failed to clear %s: %w", TokenKey, err)
	}
	return nil
}

// Get returns the value stored under key and when it was written.
// A missing key yields "" and a zero time.
func (r *CredentialRepository) Get(key string) (string, time.Time, error) {
	var (
		value     string
		updatedAt sql.NullTime
	)

	err := r.db.QueryRow(`SELECT value, updated_at FROM credentials WHERE key = ?`, key).Scan(&value, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", time.Time{}, nil
	}
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to query %s: %w", key, err)
	}

	return value, updatedAt.Time, nil
}
