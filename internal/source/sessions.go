package source

import (
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/model"
)

// SessionColumns are the header names ReadSessions requires.
var SessionColumns = []string{
	"session_id", "user_id", "content_id", "watch_date", "watch_duration_minutes",
	"completion_percentage", "device_type", "quality_level",
}

// ReadSessions parses viewing_sessions.csv. References to users and content
// are not resolved here.
func ReadSessions(path string) ([]model.ViewingSession, error) {
	var sessions []model.ViewingSession
	err := readTable(path, SessionColumns, func(r row) error {
		s, err := parseSession(r)
		if err != nil {
			return err
		}
		sessions = append(sessions, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func parseSession(r row) (model.ViewingSession, error) {
	var (
		s   model.ViewingSession
		err error
	)
	if s.ID, err = r.requiredStr("session_id"); err != nil {
		return s, err
	}
	if s.UserID, err = r.requiredStr("user_id"); err != nil {
		return s, err
	}
	if s.ContentID, err = r.requiredStr("content_id"); err != nil {
		return s, err
	}
	if s.WatchDate, err = r.date("watch_date"); err != nil {
		return s, err
	}
	if s.WatchDurationMinutes, err = r.integer("watch_duration_minutes"); err != nil {
		return s, err
	}
	if s.CompletionPercentage, err = r.float("completion_percentage"); err != nil {
		return s, err
	}
	s.DeviceType = r.str("device_type")
	s.QualityLevel = r.str("quality_level")
	if err := model.Validate(s); err != nil {
		return s, malformed(r.path, r.index, "", err)
	}
	return s, nil
}
