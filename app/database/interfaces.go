package database

import (
	"time"

	"github.com/dkenzhe/curator/app/filters"
)

type ContentRepository interface {
	Search(kind string, cf filters.CanonicalFilters, excludeIDs []int64) ([]ContentItem, error)
	GetContentCount() (int, error)
	GetContentCountByType() (map[string]int, error)
}

type AccessRepository interface {
	GetCode(code string) (*AccessCode, error)
	RegisterActivation(codeID int64) error
	CreateSession(token string, codeID int64, ip string, userAgent string, expiresAt time.Time, now time.Time) error
	GetActiveSession(token string, now time.Time) (*Session, error)
	TouchSession(token string, now time.Time) error
	DeactivateExpiredSessions(now time.Time) (int64, error)
}
