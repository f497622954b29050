package etl

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"football_etl/internal/client"
	"football_etl/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	competitions    string
	competitionsErr error
	teams           map[string]string
	teamsErr        map[string]error
	requested       []string
}

func (f *fakeFetcher) FetchCompetitions(context.Context) (client.Document, error) {
	if f.competitionsErr != nil {
		return client.Document{}, f.competitionsErr
	}
	return mustDocument(f.competitions), nil
}

func (f *fakeFetcher) FetchTeams(_ context.Context, code string) (client.Document, error) {
	f.requested = append(f.requested, code)
	if err := f.teamsErr[code]; err != nil {
		return client.Document{}, err
	}
	body, ok := f.teams[code]
	if !ok {
		return client.Document{}, nil
	}
	return mustDocument(body), nil
}

func mustDocument(body string) client.Document {
	var doc client.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		panic(err)
	}
	return doc
}

const twoCompetitions = `{"competitions":[
	{"id":2021,"name":"Premier League","code":"PL"},
	{"id":2152,"name":"Copa Libertadores","code":null},
	{"id":2014,"name":"Primera Division","code":"PD"}
]}`

func TestExtract_FlattensMemberships(t *testing.T) {
	fetcher := &fakeFetcher{
		competitions: twoCompetitions,
		teams: map[string]string{
			"PL": `{"teams":[{"id":57,"name":"Arsenal FC"},{"id":65,"name":"Manchester City FC"}]}`,
			"PD": `{"teams":[{"id":86,"name":"Real Madrid CF"}]}`,
		},
	}

	competitions, memberships, stats, err := NewExtractor(fetcher, false).Extract(context.Background())
	require.NoError(t, err)

	assert.Len(t, competitions, 3, "Competitions without a code stay in the list")
	assert.Equal(t, []string{"PL", "PD"}, fetcher.requested, "No team lookup without a code")

	require.Len(t, memberships, 3)
	assert.Equal(t, 2021, memberships[0].CompetitionID)
	assert.Equal(t, "Premier League", memberships[0].CompetitionName)
	assert.Equal(t, 57, *memberships[0].TeamID)
	assert.Equal(t, "Arsenal FC", *memberships[0].TeamName)
	assert.Equal(t, 2014, memberships[2].CompetitionID)
	assert.Equal(t, 86, *memberships[2].TeamID)

	assert.Equal(t, &ExtractStats{
		Competitions:  3,
		TeamRequests:  2,
		SkippedNoCode: 1,
		Memberships:   3,
	}, stats)
}

func TestExtract_MissingKeysYieldNothing(t *testing.T) {
	fetcher := &fakeFetcher{competitions: `{"message":"no competitions"}`}

	competitions, memberships, stats, err := NewExtractor(fetcher, false).Extract(context.Background())
	require.NoError(t, err)
	assert.Empty(t, competitions)
	assert.Empty(t, memberships)
	assert.Equal(t, 0, stats.TeamRequests)
}

func TestExtract_TeamsWithoutTeamsKey(t *testing.T) {
	fetcher := &fakeFetcher{
		competitions: `{"competitions":[{"id":2021,"name":"Premier League","code":"PL"}]}`,
		teams:        map[string]string{"PL": `{"count":0}`},
	}

	competitions, memberships, _, err := NewExtractor(fetcher, false).Extract(context.Background())
	require.NoError(t, err)
	assert.Len(t, competitions, 1)
	assert.Empty(t, memberships)
}

func TestExtract_PermanentFailureDegrades(t *testing.T) {
	fetcher := &fakeFetcher{
		competitions: twoCompetitions,
		teams: map[string]string{
			"PD": `{"teams":[{"id":86,"name":"Real Madrid CF"}]}`,
		},
		teamsErr: map[string]error{
			"PL": &client.StatusError{URL: "/competitions/PL/teams", StatusCode: 403},
		},
	}

	_, memberships, stats, err := NewExtractor(fetcher, false).Extract(context.Background())
	require.NoError(t, err, "Lenient mode treats a 403 as no data")
	assert.Len(t, memberships, 1)
	assert.Equal(t, 1, stats.DegradedFetches)
}

func TestExtract_CompetitionsFailureDegrades(t *testing.T) {
	fetcher := &fakeFetcher{
		competitionsErr: &client.StatusError{URL: "/competitions", StatusCode: 500},
	}

	competitions, memberships, stats, err := NewExtractor(fetcher, false).Extract(context.Background())
	require.NoError(t, err)
	assert.Empty(t, competitions)
	assert.Empty(t, memberships)
	assert.Equal(t, 1, stats.DegradedFetches)
}

func TestExtract_StrictModeAborts(t *testing.T) {
	fetcher := &fakeFetcher{
		competitions: twoCompetitions,
		teamsErr: map[string]error{
			"PL": &client.StatusError{URL: "/competitions/PL/teams", StatusCode: 404},
		},
	}

	_, _, _, err := NewExtractor(fetcher, true).Extract(context.Background())
	require.Error(t, err)

	var statusErr *client.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 404, statusErr.StatusCode)
	assert.Equal(t, []string{"PL"}, fetcher.requested, "Extraction stops at the first failure")
}

func TestExtract_ExhaustionAlwaysAborts(t *testing.T) {
	fetcher := &fakeFetcher{competitionsErr: client.ErrUpstreamExhausted}

	_, _, _, err := NewExtractor(fetcher, false).Extract(context.Background())
	assert.ErrorIs(t, err, client.ErrUpstreamExhausted)
}

func TestExtract_CancellationAborts(t *testing.T) {
	fetcher := &fakeFetcher{
		competitions: twoCompetitions,
		teamsErr:     map[string]error{"PL": context.Canceled},
	}

	_, _, _, err := NewExtractor(fetcher, false).Extract(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtract_CompetitionListShape(t *testing.T) {
	var list models.CompetitionList
	require.NoError(t, mustDocument(twoCompetitions).Decode("competitions", &list.Competitions))

	require.Len(t, list.Competitions, 3)
	assert.True(t, list.Competitions[0].CanFetchTeams())
	assert.False(t, list.Competitions[1].CanFetchTeams(), "Null code")
	assert.Equal(t, "", list.Competitions[1].CompetitionCode())
}
