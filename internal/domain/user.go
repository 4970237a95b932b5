package domain

import "time"

type UserProfile struct {
	UserID      string
	FullName    string
	Email       string
	PhoneNumber string
	DateOfBirth time.Time
}

// AgeAt returns the age in whole years on the date of now: the calendar-year
// difference, minus one when the birthday has not occurred yet that year.
func (u *UserProfile) AgeAt(now time.Time) int {
	today := DateOf(now)
	birth := DateOf(u.DateOfBirth)
	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	return age
}
