package database

import (
	"database/sql"
	"fmt"
	"time"
)

// accessRepository handles database operations for access codes and sessions
type accessRepository struct {
	db *DB
}

func NewAccessRepository(db *DB) AccessRepository {
	return &accessRepository{db: db}
}

// GetCode looks up an access code by its value. Returns nil without an error
// when the code does not exist.
func (r *accessRepository) GetCode(code string) (*AccessCode, error) {
	var ac AccessCode
	var isUsed int
	var expiresAt sql.NullTime
	err := r.db.QueryRow(`
		SELECT id, code, code_type, duration_hours, max_activations, current_activations, is_used, expires_at
		FROM access_codes
		WHERE code = ?`, code).Scan(&ac.ID, &ac.Code, &ac.CodeType, &ac.DurationHours,
		&ac.MaxActivations, &ac.CurrentActivations, &isUsed, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get access code: %w", err)
	}

	ac.IsUsed = isUsed != 0
	if expiresAt.Valid {
		t := expiresAt.Time
		ac.ExpiresAt = &t
	}
	return &ac, nil
}

// RegisterActivation increments the activation counter and marks the code used
// once the counter reaches its limit. The guard in the WHERE clause keeps a
// concurrent activation from pushing the counter past max_activations.
func (r *accessRepository) RegisterActivation(codeID int64) error {
	result, err := r.db.Exec(`
		UPDATE access_codes
		SET current_activations = current_activations + 1,
			is_used = CASE WHEN current_activations + 1 >= max_activations THEN 1 ELSE 0 END
		WHERE id = ? AND current_activations < max_activations`, codeID)
	if err != nil {
		return fmt.Errorf("failed to register activation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check activation result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("access code %d has no activations left", codeID)
	}

	return nil
}

func (r *accessRepository) CreateSession(token string, codeID int64, ip string, userAgent string, expiresAt time.Time, now time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO user_sessions (session_token, access_code_id, ip_address, user_agent, expires_at, is_active, last_activity)
		VALUES (?, ?, ?, ?, ?, 1, ?)`,
		token, codeID, ip, userAgent, expiresAt.UTC(), now.UTC())
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetActiveSession returns the session for a token when it is both active and
// unexpired. Returns nil without an error otherwise.
func (r *accessRepository) GetActiveSession(token string, now time.Time) (*Session, error) {
	var s Session
	var isActive int
	err := r.db.QueryRow(`
		SELECT id, session_token, access_code_id, COALESCE(ip_address, ''), COALESCE(user_agent, ''),
			expires_at, is_active, last_activity
		FROM user_sessions
		WHERE session_token = ? AND is_active = 1 AND expires_at > ?`,
		token, now.UTC()).Scan(&s.ID, &s.SessionToken, &s.AccessCodeID, &s.IPAddress, &s.UserAgent,
		&s.ExpiresAt, &isActive, &s.LastActivity)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	s.IsActive = isActive != 0
	return &s, nil
}

func (r *accessRepository) TouchSession(token string, now time.Time) error {
	_, err := r.db.Exec(`
		UPDATE user_sessions SET last_activity = ? WHERE session_token = ?`,
		now.UTC(), token)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

// DeactivateExpiredSessions flips expired sessions to inactive and returns the
// number of sessions affected.
func (r *accessRepository) DeactivateExpiredSessions(now time.Time) (int64, error) {
	result, err := r.db.Exec(`
		UPDATE user_sessions SET is_active = 0 WHERE is_active = 1 AND expires_at <= ?`,
		now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate expired sessions: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deactivated sessions: %w", err)
	}

	return affected, nil
}
