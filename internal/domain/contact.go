package domain

import (
	"time"
)

// Contact represents a single entry in a user's contact book. Every contact
// is owned by exactly one user; all queries are scoped by UserID.
type Contact struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Birthday  time.Time `json:"birthday"`
	Comments  string    `json:"comments,omitempty"`
	Favorite  bool      `json:"favorite"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NextBirthday returns the contact's next birthday occurring on or after the
// given instant. A February 29 birthday falls back to February 28 in
// non-leap years.
func (c Contact) NextBirthday(from time.Time) time.Time {
	next := replaceYear(c.Birthday, from.Year())
	if next.Before(from.Truncate(24 * time.Hour)) {
		next = replaceYear(c.Birthday, from.Year()+1)
	}
	return next
}

// replaceYear moves a date into the given year, clamping Feb 29 to Feb 28
// when the target year is not a leap year.
func replaceYear(d time.Time, year int) time.Time {
	day := d.Day()
	if d.Month() == time.February && day == 29 && !isLeapYear(year) {
		day = 28
	}
	return time.Date(year, d.Month(), day, 0, 0, 0, 0, d.Location())
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
