package models

import "time"

// Term is an academic period identified by a zero-padded year+subperiod
// string ("202507"). The encoding sorts chronologically as a plain string,
// which the cross-reference tiebreak relies on.
type Term struct {
	ID        string    `db:"id" json:"id"`
	Year      int       `db:"year" json:"year"`
	Subperiod string    `db:"subperiod" json:"subperiod"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
