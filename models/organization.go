package models

// Organization владеет спортивными сооружениями.
type Organization struct {
	ID      int     `json:"id" db:"id"`
	Name    string  `json:"name" db:"name"`
	Address *string `json:"address,omitempty" db:"address"`
}
