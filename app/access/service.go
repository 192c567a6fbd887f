package access

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dkenzhe/curator/app/database"
)

var (
	ErrCodeNotFound  = errors.New("access code not found")
	ErrCodeExpired   = errors.New("access code has expired")
	ErrCodeExhausted = errors.New("access code has no activations left")
)

// Service manages access code activation and the sessions opened by them. A
// code carries an activation budget; each successful verification consumes
// one activation and opens an independent session.
type Service struct {
	repo database.AccessRepository
	now  func() time.Time
}

func NewService(repo database.AccessRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Grant is the outcome of a successful code verification.
type Grant struct {
	SessionToken         string
	CodeType             string
	ExpiresAt            time.Time
	RemainingActivations int
}

// Verify activates an access code and opens a session for the caller. Codes
// are stored uppercase; input is normalized before lookup.
func (s *Service) Verify(code, ip, userAgent string) (*Grant, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrCodeNotFound
	}

	ac, err := s.repo.GetCode(code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up access code: %w", err)
	}
	if ac == nil {
		return nil, ErrCodeNotFound
	}
	if ac.ExpiresAt != nil && s.now().After(*ac.ExpiresAt) {
		return nil, ErrCodeExpired
	}
	if ac.CurrentActivations >= ac.MaxActivations {
		return nil, ErrCodeExhausted
	}

	// The repository rechecks the budget inside the update, so a concurrent
	// activation of the last slot loses here rather than oversubscribing.
	if err := s.repo.RegisterActivation(ac.ID); err != nil {
		return nil, ErrCodeExhausted
	}

	now := s.now()
	expiresAt := now.Add(time.Duration(ac.DurationHours) * time.Hour)
	token := uuid.NewString()

	if err := s.repo.CreateSession(token, ac.ID, ip, userAgent, expiresAt, now); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("Access code activated", "code_type", ac.CodeType,
		"activation", ac.CurrentActivations+1, "of", ac.MaxActivations)

	return &Grant{
		SessionToken:         token,
		CodeType:             ac.CodeType,
		ExpiresAt:            expiresAt,
		RemainingActivations: ac.MaxActivations - (ac.CurrentActivations + 1),
	}, nil
}

// Validate reports whether a session token is active and unexpired, touching
// its last-activity timestamp on success.
func (s *Service) Validate(token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	now := s.now()
	session, err := s.repo.GetActiveSession(token, now)
	if err != nil {
		return false, fmt.Errorf("failed to validate session: %w", err)
	}
	if session == nil {
		return false, nil
	}

	if err := s.repo.TouchSession(token, now); err != nil {
		slog.Warn("Failed to touch session", "error", err)
	}
	return true, nil
}

// CleanupExpired deactivates sessions past their expiry and returns the
// number affected.
func (s *Service) CleanupExpired() (int64, error) {
	return s.repo.DeactivateExpiredSessions(s.now())
}
