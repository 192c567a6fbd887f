package database

import (
	"time"
)

type ContentItem struct {
	ID            int64
	Type          string // book, movie, music
	Title         string
	Creator       string // author, director or artist depending on type
	Description   string
	DescriptionEN string
	DescriptionRU string
	DescriptionKK string
	ImageURL      string
	Year          int
	Rating        float64
	Genre         string
	Mood          string
	Epoch         string
	Criteria      string
	Duration      string // playback length for music, "m:ss"
	SourceID      string // identifier in the upstream catalog the row was harvested from
}

type AccessCode struct {
	ID                 int64
	Code               string
	CodeType           string // 1day, 7days, 30days
	DurationHours      int
	MaxActivations     int
	CurrentActivations int
	IsUsed             bool
	ExpiresAt          *time.Time // nil means the code itself never expires
}

type Session struct {
	ID           int64
	SessionToken string
	AccessCodeID int64
	IPAddress    string
	UserAgent    string
	ExpiresAt    time.Time
	IsActive     bool
	LastActivity time.Time
}
