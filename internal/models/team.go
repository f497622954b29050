package models

// TeamInput is one entry of a competition's teams list
type TeamInput struct {
	ID   *int    `json:"id"`
	Name *string `json:"name"`
}

// TeamList is the body of GET /competitions/{code}/teams
type TeamList struct {
	Teams []TeamInput `json:"teams"`
}

// Membership records that a team takes part in a competition.
// A team in several competitions yields several memberships.
type Membership struct {
	CompetitionID   int
	CompetitionName string
	TeamID          *int
	TeamName        *string
}

// ToMembership joins a team with the competition it was listed under
func (ti *TeamInput) ToMembership(competitionID int, competitionName string) Membership {
	return Membership{
		CompetitionID:   competitionID,
		CompetitionName: competitionName,
		TeamID:          ti.ID,
		TeamName:        ti.Name,
	}
}

// DimTeam is a row of dim_teams
type DimTeam struct {
	ID   int
	Name string
}

// Values returns the row values in column order
func (r DimTeam) Values() []any {
	return []any{r.ID, r.Name}
}
