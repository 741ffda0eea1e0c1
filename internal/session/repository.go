package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type sessionRow struct {
	UserID     string `db:"user_id"`
	Email      string `db:"email"`
	Nonce      string `db:"nonce"`
	SignedInAt int64  `db:"signed_in_at"`
}

// Repository stores the session in the single-slot session table.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the stored session or nil when nobody is signed in.
func (r *Repository) Get(ctx context.Context) (*Session, error) {
	var row sessionRow
	err := r.db.GetContext(ctx, &row, "SELECT user_id, email, nonce, signed_in_at FROM session WHERE slot = 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	return &Session{
		ID:         row.UserID,
		Email:      row.Email,
		Nonce:      row.Nonce,
		SignedInAt: time.UnixMilli(row.SignedInAt).UTC(),
	}, nil
}

// Put overwrites the slot with s.
func (r *Repository) Put(ctx context.Context, s Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session (slot, user_id, email, nonce, signed_in_at) VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (slot) DO UPDATE SET
			user_id = excluded.user_id,
			email = excluded.email,
			nonce = excluded.nonce,
			signed_in_at = excluded.signed_in_at`,
		s.ID, s.Email, s.Nonce, s.SignedInAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}
	return nil
}

// Clear empties the slot.
func (r *Repository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM session WHERE slot = 1"); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
