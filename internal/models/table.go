package models

// Destination table names
const (
	TableCompetitions = "dim_competitions"
	TableTeams        = "dim_teams"
	TableFacts        = "fact_competitions"
)

// Row is a record that can be inserted positionally
type Row interface {
	Values() []any
}

// Table is an ordered sequence of rows with a fixed column list
type Table[R Row] struct {
	Name    string
	Columns []string
	Rows    []R
}

// Len returns the number of rows
func (t *Table[R]) Len() int {
	return len(t.Rows)
}

// Append adds a row to the end of the table
func (t *Table[R]) Append(row R) {
	t.Rows = append(t.Rows, row)
}

// NewCompetitionsTable returns an empty dim_competitions table
func NewCompetitionsTable() *Table[DimCompetition] {
	return &Table[DimCompetition]{
		Name:    TableCompetitions,
		Columns: []string{"id", "name"},
		Rows:    []DimCompetition{},
	}
}

// NewTeamsTable returns an empty dim_teams table
func NewTeamsTable() *Table[DimTeam] {
	return &Table[DimTeam]{
		Name:    TableTeams,
		Columns: []string{"id", "name"},
		Rows:    []DimTeam{},
	}
}

// NewFactsTable returns an empty fact_competitions table
func NewFactsTable() *Table[FactCompetition] {
	return &Table[FactCompetition]{
		Name:    TableFacts,
		Columns: []string{"competition_id", "team_id"},
		Rows:    []FactCompetition{},
	}
}

// Tables groups the three destination tables of one run
type Tables struct {
	Competitions *Table[DimCompetition]
	Teams        *Table[DimTeam]
	Facts        *Table[FactCompetition]
}

// NewTables returns three empty tables
func NewTables() Tables {
	return Tables{
		Competitions: NewCompetitionsTable(),
		Teams:        NewTeamsTable(),
		Facts:        NewFactsTable(),
	}
}
