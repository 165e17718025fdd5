package models

import "time"

type Competition struct {
	ID         int       `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	HeldOn     time.Time `json:"held_on" db:"held_on"`
	SportID    int       `json:"sport_id" db:"sport_id"`
	BuildingID *int      `json:"building_id,omitempty" db:"building_id"`
}

type CompetitionParticipant struct {
	CompetitionID int     `json:"competition_id" db:"competition_id"`
	SportsmanID   int     `json:"sportsman_id" db:"sportsman_id"`
	Place         *int    `json:"place,omitempty" db:"place"`
	FirstName     string  `json:"firstname,omitempty" db:"-"`
	LastName      string  `json:"lastname,omitempty" db:"-"`
	MiddleName    *string `json:"middlename,omitempty" db:"-"`
}
