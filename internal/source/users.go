package source

import (
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/model"
)

// UserColumns are the header names ReadUsers requires.
var UserColumns = []string{
	"user_id", "age", "country", "subscription_type", "registration_date", "total_watch_time_hours",
}

// ReadUsers parses users.csv.
func ReadUsers(path string) ([]model.User, error) {
	var users []model.User
	err := readTable(path, UserColumns, func(r row) error {
		u, err := parseUser(r)
		if err != nil {
			return err
		}
		users = append(users, u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

func parseUser(r row) (model.User, error) {
	var (
		u   model.User
		err error
	)
	if u.ID, err = r.requiredStr("user_id"); err != nil {
		return u, err
	}
	if u.Age, err = r.integer("age"); err != nil {
		return u, err
	}
	u.Country = r.str("country")
	u.SubscriptionType = r.str("subscription_type")
	if u.RegistrationDate, err = r.date("registration_date"); err != nil {
		return u, err
	}
	if u.TotalWatchTimeHours, err = r.float("total_watch_time_hours"); err != nil {
		return u, err
	}
	if err := model.Validate(u); err != nil {
		return u, malformed(r.path, r.index, "", err)
	}
	return u, nil
}
