package etl

import (
	"context"
	"fmt"

	"football_etl/internal/client"
	"football_etl/internal/metrics"
	"football_etl/internal/models"

	"github.com/rs/zerolog/log"
)

// Fetcher is the part of the API client used by the extractor
type Fetcher interface {
	FetchCompetitions(ctx context.Context) (client.Document, error)
	FetchTeams(ctx context.Context, code string) (client.Document, error)
}

// ExtractStats summarizes one extraction
type ExtractStats struct {
	Competitions    int
	TeamRequests    int
	SkippedNoCode   int
	DegradedFetches int
	Memberships     int
}

// Extractor pulls competitions and their teams from the API
type Extractor struct {
	fetcher Fetcher
	strict  bool
}

// NewExtractor creates an extractor. When strict is true a permanent upstream
// failure aborts the extraction instead of being treated as "no data".
func NewExtractor(fetcher Fetcher, strict bool) *Extractor {
	return &Extractor{fetcher: fetcher, strict: strict}
}

// Extract returns the full competitions list and the flattened (competition, team) memberships
func (e *Extractor) Extract(ctx context.Context) ([]models.CompetitionInput, []models.Membership, *ExtractStats, error) {
	stats := &ExtractStats{}

	doc, err := e.fetcher.FetchCompetitions(ctx)
	if err := e.tolerate("competitions", err, stats); err != nil {
		return nil, nil, stats, fmt.Errorf("failed to fetch competitions: %w", err)
	}

	var list models.CompetitionList
	if err := doc.Decode("competitions", &list.Competitions); err != nil {
		return nil, nil, stats, err
	}
	competitions := list.Competitions
	if competitions == nil {
		competitions = []models.CompetitionInput{}
	}
	stats.Competitions = len(competitions)

	log.Info().Int("count", len(competitions)).Msg("Competitions fetched")

	memberships := []models.Membership{}
	for i := range competitions {
		competition := &competitions[i]
		if !competition.CanFetchTeams() {
			stats.SkippedNoCode++
			log.Debug().
				Str("competition", competition.CompetitionName()).
				Msg("Competition has no id or code, skipping team lookup")
			continue
		}

		code := competition.CompetitionCode()
		log.Info().
			Str("competition", competition.CompetitionName()).
			Str("code", code).
			Msg("Fetching teams for competition")

		stats.TeamRequests++
		teamsDoc, err := e.fetcher.FetchTeams(ctx, code)
		if err := e.tolerate("teams", err, stats); err != nil {
			return nil, nil, stats, fmt.Errorf("failed to fetch teams for %s: %w", code, err)
		}

		var teams models.TeamList
		if err := teamsDoc.Decode("teams", &teams.Teams); err != nil {
			return nil, nil, stats, fmt.Errorf("competition %s: %w", code, err)
		}

		for j := range teams.Teams {
			memberships = append(memberships, teams.Teams[j].ToMembership(*competition.ID, competition.CompetitionName()))
		}
	}
	stats.Memberships = len(memberships)

	return competitions, memberships, stats, nil
}

// tolerate decides whether a fetch error aborts the run. Permanent upstream
// failures are downgraded to "no data" unless the extractor is strict.
func (e *Extractor) tolerate(endpoint string, err error, stats *ExtractStats) error {
	if err == nil {
		return nil
	}
	if e.strict || !client.IsPermanent(err) {
		return err
	}

	stats.DegradedFetches++
	metrics.RecordDegradedFetch(endpoint)
	log.Warn().
		Err(err).
		Str("endpoint", endpoint).
		Msg("Fetch failed, continuing with no data")
	return nil
}
