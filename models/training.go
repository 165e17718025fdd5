package models

// Training links a sportsman to a sport and, optionally, to the coach who trains him.
type Training struct {
	SportsmanID int  `json:"sportsman_id" db:"sportsman_id"`
	SportID     int  `json:"sport_id" db:"sport_id"`
	CoachID     *int `json:"coach_id,omitempty" db:"coach_id"`

	SportName string `json:"sport_name,omitempty" db:"-"`
}
