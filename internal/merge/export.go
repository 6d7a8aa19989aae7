package merge

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/model"
)

// Columns is the CSV header written by WriteCSV.
var Columns = []string{
	"session_id", "user_id", "content_id", "watch_date", "watch_duration_minutes",
	"completion_percentage", "device_type", "quality_level",
	"age", "country", "subscription_type", "registration_date",
	"title", "genre", "content_type", "duration_minutes", "release_year", "rating",
	"engagement_rate", "is_high_quality", "is_mobile", "user_age_group",
}

// WriteCSV writes records with a header row. Absent values are empty
// cells; genre tags are joined with "|".
func WriteCSV(w io.Writer, records []model.MergedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(csvRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes records as one JSON array.
func WriteJSON(w io.Writer, records []model.MergedRecord) error {
	if records == nil {
		records = []model.MergedRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func csvRow(r model.MergedRecord) []string {
	row := []string{
		r.SessionID, r.UserID, r.ContentID,
		r.WatchDate.Format(model.DateLayout),
		strconv.Itoa(r.WatchDurationMinutes),
		fmtFloat(r.CompletionPercentage),
		r.DeviceType, r.QualityLevel,
		optInt(r.Age), optStr(r.Country), optStr(r.SubscriptionType), "",
		optStr(r.Title), strings.Join(r.Genre, "|"), "",
		optInt(r.DurationMinutes), optInt(r.ReleaseYear), "",
		"",
		strconv.FormatBool(r.IsHighQuality), strconv.FormatBool(r.IsMobile),
		optStr(r.UserAgeGroup),
	}
	if r.UserResolved() && r.RegistrationDate != nil {
		row[11] = r.RegistrationDate.Format(model.DateLayout)
	}
	if r.ContentResolved() {
		row[14] = string(*r.ContentType)
		if r.Rating != nil {
			row[17] = fmtFloat(*r.Rating)
		}
	}
	if r.EngagementRate != nil {
		row[18] = fmtFloat(*r.EngagementRate)
	}
	return row
}

func fmtFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func optInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func optStr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
