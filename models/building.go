package models

// Building - спортивное сооружение, принадлежащее организации.
type Building struct {
	ID             int     `json:"id" db:"id"`
	OrganizationID int     `json:"organization_id" db:"organization_id"`
	Name           string  `json:"name" db:"name"`
	Address        *string `json:"address,omitempty" db:"address"`
	Type           string  `json:"building_type" db:"building_type"`
	Places         int     `json:"places" db:"places"`
	Area           float64 `json:"area" db:"area"`

	// Имя организации-владельца (подставляется при выборке списка).
	OrganizationName string `json:"organization_name,omitempty" db:"-"`
}

// BuildingFilter combines with AND; nil fields are ignored.
type BuildingFilter struct {
	Type      *string
	MinPlaces *int
}
