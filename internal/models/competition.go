package models

// CompetitionInput is one entry of the API competitions list.
// Fields are pointers because the API may omit any of them.
type CompetitionInput struct {
	ID   *int    `json:"id"`
	Name *string `json:"name"`
	Code *string `json:"code,omitempty"`
}

// CompetitionCode returns the competition code or an empty string
func (ci *CompetitionInput) CompetitionCode() string {
	if ci.Code == nil {
		return ""
	}
	return *ci.Code
}

// CompetitionName returns the competition name or an empty string
func (ci *CompetitionInput) CompetitionName() string {
	if ci.Name == nil {
		return ""
	}
	return *ci.Name
}

// CanFetchTeams reports whether the teams endpoint can be queried for this competition
func (ci *CompetitionInput) CanFetchTeams() bool {
	return ci.ID != nil && ci.CompetitionCode() != ""
}

// CompetitionList is the body of GET /competitions
type CompetitionList struct {
	Competitions []CompetitionInput `json:"competitions"`
}

// DimCompetition is a row of dim_competitions
type DimCompetition struct {
	ID   int
	Name string
}

// Values returns the row values in column order
func (r DimCompetition) Values() []any {
	return []any{r.ID, r.Name}
}

// FactCompetition is a row of fact_competitions
type FactCompetition struct {
	CompetitionID int
	TeamID        int
}

// Values returns the row values in column order
func (r FactCompetition) Values() []any {
	return []any{r.CompetitionID, r.TeamID}
}

// SummaryRow is one line of the competition summary report
type SummaryRow struct {
	Competition   string
	NumberOfTeams int
}
