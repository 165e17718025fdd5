package models

import "time"

// Person is either a sportsman or a coach.
type Person struct {
	ID         int       `json:"id" db:"id"`
	FirstName  string    `json:"firstname" db:"firstname"`
	LastName   string    `json:"lastname" db:"lastname"`
	MiddleName *string   `json:"middlename,omitempty" db:"middlename"`
	BirthDate  time.Time `json:"birthdate" db:"birthdate"`
	IsCoach    bool      `json:"is_coach" db:"is_coach"`

	PhotoKey *string `json:"-" db:"photo_key"`
	PhotoURL *string `json:"photo_url,omitempty" db:"-"`
}

// PersonCard - карточка человека: данные, квалификации и связи.
type PersonCard struct {
	Person     *Person      `json:"person"`
	Experience []Experience `json:"experience"`
	Sports     []Sport      `json:"sports,omitempty"`
	Coaches    []CoachRow   `json:"coaches,omitempty"`
	Trainings  []Training   `json:"trainings,omitempty"`
}
