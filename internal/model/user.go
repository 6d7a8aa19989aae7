// Package model holds the records that flow through the loader: the
// three source entities (users, content, viewing sessions), the batch
// that bundles them, and the derived rows and reports built from them.
// The structs carry no persistence logic; the repository and docstore
// packages map them onto tables and documents.
package model

import "time"

// DateLayout is the calendar date format used by the source files and
// by every store.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// User represents one row of users.csv and of the `users` table.
//
// Fields:
//
//	ID                  – users.user_id, unique.
//	Age                 – users.age in years.
//	Country             – users.country.
//	SubscriptionType    – users.subscription_type (Basic, Standard, Premium).
//	RegistrationDate    – users.registration_date (calendar date, UTC).
//	TotalWatchTimeHours – users.total_watch_time_hours, non-negative.
type User struct {
	ID                  string    `validate:"required"`
	Age                 int       `validate:"gte=0"`
	Country             string
	SubscriptionType    string
	RegistrationDate    time.Time
	TotalWatchTimeHours float64 `validate:"gte=0"`
}

// Dataset bundles the reconciled records of one batch run. Loaders and
// the merge builder consume it as a unit.
type Dataset struct {
	Users    []User
	Content  []Content
	Sessions []ViewingSession
}
