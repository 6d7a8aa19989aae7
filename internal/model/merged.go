package model

import "time"

// MergedRecord is one viewing session left-joined with its user and
// content attributes plus the derived analysis columns. Pointer fields
// are nil when the corresponding reference did not resolve. Records are
// rebuilt on every analysis run and never persisted.
type MergedRecord struct {
	SessionID            string    `json:"session_id"`
	UserID               string    `json:"user_id"`
	ContentID            string    `json:"content_id"`
	WatchDate            time.Time `json:"watch_date"`
	WatchDurationMinutes int       `json:"watch_duration_minutes"`
	CompletionPercentage float64   `json:"completion_percentage"`
	DeviceType           string    `json:"device_type"`
	QualityLevel         string    `json:"quality_level"`

	// user side
	Age              *int       `json:"age"`
	Country          *string    `json:"country"`
	SubscriptionType *string    `json:"subscription_type"`
	RegistrationDate *time.Time `json:"registration_date"`

	// content side
	Title           *string      `json:"title"`
	Genre           []string     `json:"genre"`
	ContentType     *ContentKind `json:"content_type"`
	DurationMinutes *int         `json:"duration_minutes"`
	ReleaseYear     *int         `json:"release_year"`
	Rating          *float64     `json:"rating"`

	// derived
	EngagementRate *float64 `json:"engagement_rate"`
	IsHighQuality  bool     `json:"is_high_quality"`
	IsMobile       bool     `json:"is_mobile"`
	UserAgeGroup   *string  `json:"user_age_group"`
}

// UserResolved reports whether the session's user reference matched.
func (m MergedRecord) UserResolved() bool { return m.Age != nil }

// ContentResolved reports whether the session's content reference matched.
func (m MergedRecord) ContentResolved() bool { return m.ContentType != nil }
