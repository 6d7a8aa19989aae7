package model

import "time"

// ViewingSession represents one row of viewing_sessions.csv. UserID and
// ContentID are expected to resolve but nothing enforces it before the
// load; the integrity report counts the ones that do not.
type ViewingSession struct {
	ID                   string `validate:"required"`
	UserID               string `validate:"required"`
	ContentID            string `validate:"required"`
	WatchDate            time.Time
	WatchDurationMinutes int     `validate:"gte=0"`
	CompletionPercentage float64 // 0-100 by construction, not enforced
	DeviceType           string
	QualityLevel         string
}
