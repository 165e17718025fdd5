package models

import "time"

// Experience - квалификация (звание, разряд), полученная человеком в виде спорта.
type Experience struct {
	ID        int        `json:"id" db:"id"`
	PersonID  int        `json:"person_id" db:"person_id"`
	SportID   int        `json:"sport_id" db:"sport_id"`
	Title     string     `json:"title" db:"title"`
	AwardedOn *time.Time `json:"awarded_on,omitempty" db:"awarded_on"`

	SportName string `json:"sport_name,omitempty" db:"-"`
}
