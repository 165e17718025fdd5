package models

// Sport представляет вид спорта.
type Sport struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// SportDeletePreview описывает, что будет удалено вместе с видом спорта.
type SportDeletePreview struct {
	SportID          int    `json:"sport_id"`
	SportName        string `json:"sport_name"`
	CoachLinks       int    `json:"coach_links"`
	Trainings        int    `json:"trainings"`
	ExperienceTitles int    `json:"experience_titles"`
	Competitions     int    `json:"competitions"`
	Message          string `json:"message"`
}
