package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/models"
)

// TokenRepository is the sole writer of refresh-token and session state.
// Both rows of a credential pair are only ever touched inside a single
// transaction so their revoked flags can never diverge.
type TokenRepository struct {
	db *sqlx.DB
}

// NewTokenRepository creates a new instance of TokenRepository.
func NewTokenRepository(db *sqlx.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// CreateWithSession inserts a refresh token and its paired session row
// atomically, filling generated fields on both records.
func (r *TokenRepository) CreateWithSession(ctx context.Context, token *models.RefreshToken, session *models.Session) (err error) {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if token.CreatedAt.IsZero() {
		token.CreatedAt = now
	}
	session.RefreshTokenID = token.ID
	session.ExpiresAt = token.ExpiresAt
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin token transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const tokenQuery = `INSERT INTO refresh_tokens (id, user_id, expires_at, revoked, created_at) VALUES ($1, $2, $3, FALSE, $4)`
	if _, err = tx.ExecContext(ctx, tokenQuery, token.ID, token.UserID, token.ExpiresAt, token.CreatedAt); err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}

	const sessionQuery = `INSERT INTO sessions (refresh_token_id, expires_at, ip_address, user_agent, revoked, created_at) VALUES ($1, $2, $3, $4, FALSE, $5)`
	if _, err = tx.ExecContext(ctx, sessionQuery, session.RefreshTokenID, session.ExpiresAt, session.IPAddress, session.UserAgent, session.CreatedAt); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit token transaction: %w", err)
	}
	return nil
}

// FindByID returns a refresh token by its opaque identifier.
func (r *TokenRepository) FindByID(ctx context.Context, id string) (*models.RefreshToken, error) {
	const query = `SELECT id, user_id, expires_at, revoked, created_at FROM refresh_tokens WHERE id = $1 LIMIT 1`
	var token models.RefreshToken
	if err := r.db.GetContext(ctx, &token, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &token, nil
}

// FindSession returns the session paired with a refresh token.
func (r *TokenRepository) FindSession(ctx context.Context, refreshTokenID string) (*models.Session, error) {
	const query = `SELECT refresh_token_id, expires_at, ip_address, user_agent, revoked, revoked_at, created_at FROM sessions WHERE refresh_token_id = $1 LIMIT 1`
	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, refreshTokenID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &session, nil
}

// RevokeWithSession flips the revoked flag on both halves of the credential
// pair in one transaction. The token row is locked first so two concurrent
// revokes serialise; the loser observes the already-set flag and receives
// ErrTokenRevoked. An expired token cannot be revoked either: its pair is
// already dead and a second logout with it must surface as invalid.
func (r *TokenRepository) RevokeWithSession(ctx context.Context, id string, revokedAt time.Time) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin revoke transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var state struct {
		Revoked   bool      `db:"revoked"`
		ExpiresAt time.Time `db:"expires_at"`
	}
	const lockQuery = `SELECT revoked, expires_at FROM refresh_tokens WHERE id = $1 FOR UPDATE`
	if err = tx.GetContext(ctx, &state, lockQuery, id); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("lock refresh token: %w", err)
	}
	if state.Revoked || !state.ExpiresAt.After(revokedAt) {
		err = ErrTokenRevoked
		return err
	}

	const tokenQuery = `UPDATE refresh_tokens SET revoked = TRUE WHERE id = $1`
	if _, err = tx.ExecContext(ctx, tokenQuery, id); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	const sessionQuery = `UPDATE sessions SET revoked = TRUE, revoked_at = $2 WHERE refresh_token_id = $1`
	if _, err = tx.ExecContext(ctx, sessionQuery, id, revokedAt); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit revoke transaction: %w", err)
	}
	return nil
}
