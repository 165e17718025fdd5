package models

type DashboardStats struct {
	SportsTotal        int `json:"sports_total"`
	OrganizationsTotal int `json:"organizations_total"`
	BuildingsTotal     int `json:"buildings_total"`
	SportsmenTotal     int `json:"sportsmen_total"`
	CoachesTotal       int `json:"coaches_total"`
	CompetitionsTotal  int `json:"competitions_total"`
}
