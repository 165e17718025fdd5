package models

import "time"

// SportsmanRow - строка отчётов по спортсменам.
type SportsmanRow struct {
	ID         int       `json:"id"`
	FirstName  string    `json:"firstname"`
	LastName   string    `json:"lastname"`
	MiddleName *string   `json:"middlename,omitempty"`
	BirthDate  time.Time `json:"birthdate"`
}

// CoachRow - строка отчётов по тренерам.
type CoachRow struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
}

// SportsmanFilterKind mirrors the mutually exclusive filter switches of the sportsmen list.
type SportsmanFilterKind string

const (
	FilterNone           SportsmanFilterKind = "none"
	FilterSport          SportsmanFilterKind = "sport"
	FilterQualification  SportsmanFilterKind = "qualification"
	FilterCoach          SportsmanFilterKind = "coach"
	FilterNoCompetitions SportsmanFilterKind = "no_competitions"
	FilterMultipleSports SportsmanFilterKind = "multiple_sports"
)

type SportsmanFilter struct {
	Kind          SportsmanFilterKind
	SportName     string
	Qualification string
	CoachID       int
	From          time.Time
	To            time.Time
}
