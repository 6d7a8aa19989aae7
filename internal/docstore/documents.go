package docstore

import (
	"time"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/model"
)

// Keyed is implemented by every document: DocID is the value stored in
// _id, always the domain identifier.
type Keyed interface {
	DocID() string
}

// UserDoc is a users document.
type UserDoc struct {
	ID                  string    `bson:"_id"`
	UserID              string    `bson:"user_id"`
	Age                 int       `bson:"age"`
	Country             string    `bson:"country"`
	SubscriptionType    string    `bson:"subscription_type"`
	RegistrationDate    time.Time `bson:"registration_date"`
	TotalWatchTimeHours float64   `bson:"total_watch_time_hours"`
}

func (d UserDoc) DocID() string { return d.ID }

// ContentDoc is a content document. The content_type field is the explicit
// kind tag; attributes that do not apply to the kind are left out of the
// document rather than stored as null. Lists stay native arrays.
type ContentDoc struct {
	ID                 string   `bson:"_id"`
	ContentID          string   `bson:"content_id"`
	Title              string   `bson:"title"`
	Genre              []string `bson:"genre"`
	ContentType        string   `bson:"content_type"`
	DurationMinutes    int      `bson:"duration_minutes"`
	Rating             float64  `bson:"rating"`
	ViewsCount         int64    `bson:"views_count"`
	ProductionBudget   int64    `bson:"production_budget"`
	ReleaseYear        *int     `bson:"release_year,omitempty"`
	Seasons            *int     `bson:"seasons,omitempty"`
	EpisodesPerSeason  []int    `bson:"episodes_per_season,omitempty"`
	AvgEpisodeDuration *int     `bson:"avg_episode_duration,omitempty"`
}

func (d ContentDoc) DocID() string { return d.ID }

// SessionDoc is a viewing_sessions document.
type SessionDoc struct {
	ID                   string    `bson:"_id"`
	SessionID            string    `bson:"session_id"`
	UserID               string    `bson:"user_id"`
	ContentID            string    `bson:"content_id"`
	WatchDate            time.Time `bson:"watch_date"`
	WatchDurationMinutes int       `bson:"watch_duration_minutes"`
	CompletionPercentage float64   `bson:"completion_percentage"`
	DeviceType           string    `bson:"device_type"`
	QualityLevel         string    `bson:"quality_level"`
}

func (d SessionDoc) DocID() string { return d.ID }

func userDocs(users []model.User) []any {
	docs := make([]any, len(users))
	for i, u := range users {
		docs[i] = UserDoc{
			ID:                  u.ID,
			UserID:              u.ID,
			Age:                 u.Age,
			Country:             u.Country,
			SubscriptionType:    u.SubscriptionType,
			RegistrationDate:    u.RegistrationDate,
			TotalWatchTimeHours: u.TotalWatchTimeHours,
		}
	}
	return docs
}

// NewContentDoc maps the tagged variant onto the document shape.
func NewContentDoc(c model.Content) ContentDoc {
	d := ContentDoc{
		ID:               c.ID,
		ContentID:        c.ID,
		Title:            c.Title,
		Genre:            c.Genre,
		ContentType:      string(c.Kind),
		DurationMinutes:  c.DurationMinutes(),
		Rating:           c.Rating,
		ViewsCount:       c.Views,
		ProductionBudget: c.ProductionBudget,
	}
	switch c.Kind {
	case model.KindMovie:
		d.ReleaseYear = c.ReleaseYear()
	case model.KindSeries:
		d.Seasons = c.Seasons()
		d.EpisodesPerSeason = c.EpisodesPerSeason()
		d.AvgEpisodeDuration = c.AvgEpisodeDuration()
	}
	if d.Genre == nil {
		d.Genre = []string{}
	}
	return d
}

func contentDocs(items []model.Content) []any {
	docs := make([]any, len(items))
	for i, c := range items {
		docs[i] = NewContentDoc(c)
	}
	return docs
}

func sessionDocs(sessions []model.ViewingSession) []any {
	docs := make([]any, len(sessions))
	for i, s := range sessions {
		docs[i] = SessionDoc{
			ID:                   s.ID,
			SessionID:            s.ID,
			UserID:               s.UserID,
			ContentID:            s.ContentID,
			WatchDate:            s.WatchDate,
			WatchDurationMinutes: s.WatchDurationMinutes,
			CompletionPercentage: s.CompletionPercentage,
			DeviceType:           s.DeviceType,
			QualityLevel:         s.QualityLevel,
		}
	}
	return docs
}
