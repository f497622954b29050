package etl

import "football_etl/internal/models"

// Transform normalizes extracted records into the three destination tables.
// It performs no I/O.
//
// dim_competitions keeps competitions with both id and name; dim_teams keeps
// one row per team id in first-seen order; fact_competitions keeps every
// membership whose competition and team both made it into the dimensions.
func Transform(competitions []models.CompetitionInput, memberships []models.Membership) models.Tables {
	tables := models.NewTables()

	competitionIDs := make(map[int]struct{}, len(competitions))
	for _, c := range competitions {
		if c.ID == nil || c.Name == nil {
			continue
		}
		if _, seen := competitionIDs[*c.ID]; seen {
			continue
		}
		competitionIDs[*c.ID] = struct{}{}
		tables.Competitions.Append(models.DimCompetition{ID: *c.ID, Name: *c.Name})
	}

	teamIDs := make(map[int]struct{}, len(memberships))
	for _, m := range memberships {
		if m.TeamID == nil || m.TeamName == nil {
			continue
		}
		// (id, name) duplicates collapse here, and an id that reappears under
		// another name keeps its first name.
		if _, seen := teamIDs[*m.TeamID]; seen {
			continue
		}
		teamIDs[*m.TeamID] = struct{}{}
		tables.Teams.Append(models.DimTeam{ID: *m.TeamID, Name: *m.TeamName})
	}

	for _, m := range memberships {
		if m.TeamID == nil {
			continue
		}
		if _, ok := competitionIDs[m.CompetitionID]; !ok {
			continue
		}
		if _, ok := teamIDs[*m.TeamID]; !ok {
			continue
		}
		tables.Facts.Append(models.FactCompetition{CompetitionID: m.CompetitionID, TeamID: *m.TeamID})
	}

	return tables
}
