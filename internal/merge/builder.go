// Package merge builds the denormalized analysis table: one row per
// viewing session, left-joined with its user and content, plus derived
// engagement and segment columns.
package merge

import (
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/model"
)

// Options tunes Build.
type Options struct {
	// IncludeSeries joins sessions against series as well as movies. When
	// false, sessions on a series behave as if the content were unknown.
	IncludeSeries bool
}

// DefaultOptions joins the whole catalog.
func DefaultOptions() Options {
	return Options{IncludeSeries: true}
}

// Age bands are right-inclusive: (0,25], (25,35], (35,50], (50,100].
var ageBands = []struct {
	upper int
	label string
}{
	{25, "18-25"},
	{35, "26-35"},
	{50, "36-50"},
	{100, "50+"},
}

// AgeGroup returns the band label for age, nil outside (0,100].
func AgeGroup(age int) *string {
	if age <= 0 {
		return nil
	}
	for _, b := range ageBands {
		if age <= b.upper {
			l := b.label
			return &l
		}
	}
	return nil
}

// IsHighQuality reports whether a session streamed in HD or 4K.
func IsHighQuality(level string) bool {
	return level == "HD" || level == "4K"
}

// IsMobile reports whether a session was watched on a phone.
func IsMobile(device string) bool {
	return device == "Mobile"
}

// Build produces exactly one record per session, in session order. A
// session whose user or content is unknown is kept with the missing side
// left nil.
func Build(users []model.User, content []model.Content, sessions []model.ViewingSession, opts Options) []model.MergedRecord {
	byUser := make(map[string]model.User, len(users))
	for _, u := range users {
		byUser[u.ID] = u
	}
	byContent := make(map[string]model.Content, len(content))
	for _, c := range content {
		if c.Kind == model.KindSeries && !opts.IncludeSeries {
			continue
		}
		byContent[c.ID] = c
	}

	out := make([]model.MergedRecord, 0, len(sessions))
	for _, s := range sessions {
		rec := model.MergedRecord{
			SessionID:            s.ID,
			UserID:               s.UserID,
			ContentID:            s.ContentID,
			WatchDate:            s.WatchDate,
			WatchDurationMinutes: s.WatchDurationMinutes,
			CompletionPercentage: s.CompletionPercentage,
			DeviceType:           s.DeviceType,
			QualityLevel:         s.QualityLevel,
			IsHighQuality:        IsHighQuality(s.QualityLevel),
			IsMobile:             IsMobile(s.DeviceType),
		}
		if u, ok := byUser[s.UserID]; ok {
			joinUser(&rec, u)
		}
		if c, ok := byContent[s.ContentID]; ok {
			joinContent(&rec, c)
		}
		out = append(out, rec)
	}
	return out
}

func joinUser(rec *model.MergedRecord, u model.User) {
	age := u.Age
	country := u.Country
	sub := u.SubscriptionType
	reg := u.RegistrationDate
	rec.Age = &age
	rec.Country = &country
	rec.SubscriptionType = &sub
	rec.RegistrationDate = &reg
	rec.UserAgeGroup = AgeGroup(u.Age)
}

func joinContent(rec *model.MergedRecord, c model.Content) {
	title := c.Title
	kind := c.Kind
	dur := c.DurationMinutes()
	rating := c.Rating
	rec.Title = &title
	rec.Genre = append([]string{}, c.Genre...)
	rec.ContentType = &kind
	rec.DurationMinutes = &dur
	rec.ReleaseYear = c.ReleaseYear()
	rec.Rating = &rating
	if dur > 0 {
		ratio := float64(rec.WatchDurationMinutes) / float64(dur)
		rec.EngagementRate = &ratio
	}
}
