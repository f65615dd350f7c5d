package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/dartclub/league-system/models"
	"github.com/dartclub/league-system/schedule"
	"github.com/stretchr/testify/require"
)

type tournamentServiceFixture struct {
	players    *fakePlayerRepo
	tournament *fakeTournamentRepo
	links      *fakeTournamentPlayerRepo
	fixtures   *fakeFixtureRepo
	hub        *fakeBroadcaster
	service    TournamentService
}

func newTournamentServiceFixture() *tournamentServiceFixture {
	players := newFakePlayerRepo()
	tournaments := newFakeTournamentRepo()
	links := newFakeTournamentPlayerRepo()
	fixtures := newFakeFixtureRepo()
	hub := &fakeBroadcaster{}

	standings := NewStandingsService(tournaments, fixtures)
	service := NewTournamentService(tournaments, players, links, fixtures,
		schedule.NewRoundRobinGenerator(), standings, hub, nil)

	return &tournamentServiceFixture{
		players:    players,
		tournament: tournaments,
		links:      links,
		fixtures:   fixtures,
		hub:        hub,
		service:    service,
	}
}

func (f *tournamentServiceFixture) addPlayers(n int) []int {
	ids := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		player := f.players.add(&models.Player{
			DisplayName:       fmt.Sprintf("Player %d", i),
			AutodartsUsername: fmt.Sprintf("player%d", i),
		})
		ids = append(ids, player.ID)
	}
	return ids
}

func TestCreateTournament_GeneratesSchedule(t *testing.T) {
	f := newTournamentServiceFixture()
	playerIDs := f.addPlayers(4)

	tournament, err := f.service.CreateTournament(context.Background(), CreateTournamentInput{
		Name:      "Winter League",
		PlayerIDs: playerIDs,
	})
	require.NoError(t, err)
	require.Equal(t, models.TournamentCreated, tournament.Status)
	require.Equal(t, "501", tournament.GameMode)
	require.Equal(t, 3, tournament.LegsPerMatch)
	require.Equal(t, 2, tournament.RoundsPerPlayer)
	require.Equal(t, 3, tournament.PointsWin)
	require.Equal(t, 1, tournament.PointsDraw)
	require.Equal(t, 0, tournament.PointsLoss)

	fixtures, err := f.service.GetFixtures(context.Background(), tournament.ID)
	require.NoError(t, err)
	// 4 players, every pair meets twice: 12 fixtures over 6 rounds.
	require.Len(t, fixtures, 12)
	for _, fx := range fixtures {
		require.Equal(t, tournament.ID, fx.TournamentID)
		require.Equal(t, models.FixturePending, fx.Status)
	}

	linkIDs, err := f.links.ListPlayerIDs(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.Equal(t, playerIDs, linkIDs)
}

func TestCreateTournament_Validation(t *testing.T) {
	f := newTournamentServiceFixture()
	playerIDs := f.addPlayers(2)

	tests := []struct {
		name    string
		input   CreateTournamentInput
		wantErr error
	}{
		{
			name:    "missing name",
			input:   CreateTournamentInput{Name: "  ", PlayerIDs: playerIDs},
			wantErr: ErrTournamentNameRequired,
		},
		{
			name:    "too few players",
			input:   CreateTournamentInput{Name: "League", PlayerIDs: playerIDs[:1]},
			wantErr: schedule.ErrInvalidRequest,
		},
		{
			name:    "unknown player",
			input:   CreateTournamentInput{Name: "League", PlayerIDs: []int{playerIDs[0], 999}},
			wantErr: ErrPlayerNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.CreateTournament(context.Background(), tt.input)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateTournament_CustomPoints(t *testing.T) {
	f := newTournamentServiceFixture()
	playerIDs := f.addPlayers(2)

	zero := 0
	two := 2
	tournament, err := f.service.CreateTournament(context.Background(), CreateTournamentInput{
		Name:       "Custom",
		PlayerIDs:  playerIDs,
		PointsWin:  &two,
		PointsDraw: &zero,
		PointsLoss: &zero,
	})
	require.NoError(t, err)
	require.Equal(t, 2, tournament.PointsWin)
	require.Equal(t, 0, tournament.PointsDraw)
	require.Equal(t, 0, tournament.PointsLoss)
}

func TestStartTournament_SetsStatusAndBroadcasts(t *testing.T) {
	f := newTournamentServiceFixture()
	playerIDs := f.addPlayers(2)

	tournament, err := f.service.CreateTournament(context.Background(), CreateTournamentInput{
		Name:      "League",
		PlayerIDs: playerIDs,
	})
	require.NoError(t, err)

	started, err := f.service.StartTournament(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.Equal(t, models.TournamentInProgress, started.Status)
	require.Len(t, f.hub.messagesOfType(EventTournamentStarted), 1)
}

func TestSubmitResult_RecordsAndBroadcasts(t *testing.T) {
	f := newTournamentServiceFixture()
	playerIDs := f.addPlayers(4)

	tournament, err := f.service.CreateTournament(context.Background(), CreateTournamentInput{
		Name:      "League",
		PlayerIDs: playerIDs,
	})
	require.NoError(t, err)

	fixtures, err := f.service.GetFixtures(context.Background(), tournament.ID)
	require.NoError(t, err)

	avg := 62.5
	saved, err := f.service.SubmitResult(context.Background(), fixtures[0].ID, SubmitResultInput{
		HomeLegsWon: 3,
		AwayLegsWon: 1,
		HomeAverage: &avg,
	})
	require.NoError(t, err)
	require.Equal(t, models.FixtureCompleted, saved.Status)
	require.Equal(t, 3, *saved.HomeLegsWon)
	require.Equal(t, 1, *saved.AwayLegsWon)
	require.Equal(t, avg, *saved.HomeAverage)
	require.NotNil(t, saved.PlayedAt)
	require.Len(t, f.hub.messagesOfType(EventFixtureUpdated), 1)

	// One result does not complete the tournament.
	reloaded, err := f.service.GetTournament(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.NotEqual(t, models.TournamentCompleted, reloaded.Status)
	require.Empty(t, f.hub.messagesOfType(EventTournamentCompleted))
}

func TestSubmitResult_RejectsDoubleSubmission(t *testing.T) {
	f := newTournamentServiceFixture()
	playerIDs := f.addPlayers(2)

	tournament, err := f.service.CreateTournament(context.Background(), CreateTournamentInput{
		Name:      "League",
		PlayerIDs: playerIDs,
	})
	require.NoError(t, err)

	fixtures, err := f.service.GetFixtures(context.Background(), tournament.ID)
	require.NoError(t, err)

	_, err = f.service.SubmitResult(context.Background(), fixtures[0].ID, SubmitResultInput{HomeLegsWon: 3, AwayLegsWon: 2})
	require.NoError(t, err)

	_, err = f.service.SubmitResult(context.Background(), fixtures[0].ID, SubmitResultInput{HomeLegsWon: 1, AwayLegsWon: 3})
	require.ErrorIs(t, err, ErrFixtureAlreadyCompleted)

	// The original result survives the rejected resubmission.
	fixture, err := f.fixtures.GetByID(context.Background(), fixtures[0].ID)
	require.NoError(t, err)
	require.Equal(t, 3, *fixture.HomeLegsWon)
	require.Equal(t, 2, *fixture.AwayLegsWon)
}

func TestSubmitResult_RejectsNegativeLegs(t *testing.T) {
	f := newTournamentServiceFixture()
	playerIDs := f.addPlayers(2)

	tournament, err := f.service.CreateTournament(context.Background(), CreateTournamentInput{
		Name:      "League",
		PlayerIDs: playerIDs,
	})
	require.NoError(t, err)

	fixtures, err := f.service.GetFixtures(context.Background(), tournament.ID)
	require.NoError(t, err)

	_, err = f.service.SubmitResult(context.Background(), fixtures[0].ID, SubmitResultInput{HomeLegsWon: -1, AwayLegsWon: 2})
	require.ErrorIs(t, err, ErrNegativeLegs)
}

func TestSubmitResult_LastFixtureCompletesTournament(t *testing.T) {
	f := newTournamentServiceFixture()
	playerIDs := f.addPlayers(2)

	one := 1
	tournament, err := f.service.CreateTournament(context.Background(), CreateTournamentInput{
		Name:            "League",
		RoundsPerPlayer: 2,
		PlayerIDs:       playerIDs,
		PointsDraw:      &one,
	})
	require.NoError(t, err)

	_, err = f.service.StartTournament(context.Background(), tournament.ID)
	require.NoError(t, err)

	fixtures, err := f.service.GetFixtures(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.Len(t, fixtures, 2)

	_, err = f.service.SubmitResult(context.Background(), fixtures[0].ID, SubmitResultInput{HomeLegsWon: 3, AwayLegsWon: 0})
	require.NoError(t, err)

	mid, err := f.service.GetTournament(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.Equal(t, models.TournamentInProgress, mid.Status)

	_, err = f.service.SubmitResult(context.Background(), fixtures[1].ID, SubmitResultInput{HomeLegsWon: 2, AwayLegsWon: 3})
	require.NoError(t, err)

	done, err := f.service.GetTournament(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.Equal(t, models.TournamentCompleted, done.Status)
	require.Len(t, f.hub.messagesOfType(EventTournamentCompleted), 1)
}

func TestGetNextPendingFixture(t *testing.T) {
	f := newTournamentServiceFixture()
	playerIDs := f.addPlayers(2)

	tournament, err := f.service.CreateTournament(context.Background(), CreateTournamentInput{
		Name:      "League",
		PlayerIDs: playerIDs,
	})
	require.NoError(t, err)

	fixtures, err := f.service.GetFixtures(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.Len(t, fixtures, 2)

	next, err := f.service.GetNextPendingFixture(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.NotNil(t, next)
	require.Equal(t, fixtures[0].ID, next.ID)

	_, err = f.service.SubmitResult(context.Background(), fixtures[0].ID, SubmitResultInput{HomeLegsWon: 3, AwayLegsWon: 1})
	require.NoError(t, err)

	next, err = f.service.GetNextPendingFixture(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.NotNil(t, next)
	require.Equal(t, fixtures[1].ID, next.ID)

	_, err = f.service.SubmitResult(context.Background(), fixtures[1].ID, SubmitResultInput{HomeLegsWon: 3, AwayLegsWon: 2})
	require.NoError(t, err)

	next, err = f.service.GetNextPendingFixture(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.Nil(t, next)
}

func TestGetTournamentOverview(t *testing.T) {
	f := newTournamentServiceFixture()
	playerIDs := f.addPlayers(3)

	one := 1
	tournament, err := f.service.CreateTournament(context.Background(), CreateTournamentInput{
		Name:            "League",
		RoundsPerPlayer: 1,
		PlayerIDs:       playerIDs,
		PointsDraw:      &one,
	})
	require.NoError(t, err)

	fixtures, err := f.service.GetFixtures(context.Background(), tournament.ID)
	require.NoError(t, err)
	_, err = f.service.SubmitResult(context.Background(), fixtures[0].ID, SubmitResultInput{HomeLegsWon: 3, AwayLegsWon: 1})
	require.NoError(t, err)

	overview, err := f.service.GetTournamentOverview(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.Equal(t, tournament.ID, overview.Tournament.ID)
	require.Len(t, overview.Players, 3)
	require.Len(t, overview.Fixtures, 3)
	require.Len(t, overview.Standings, 2)
}

func TestDeleteTournament_RemovesFixturesAndLinks(t *testing.T) {
	f := newTournamentServiceFixture()
	playerIDs := f.addPlayers(2)

	tournament, err := f.service.CreateTournament(context.Background(), CreateTournamentInput{
		Name:      "League",
		PlayerIDs: playerIDs,
	})
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteTournament(context.Background(), tournament.ID))

	_, err = f.service.GetTournament(context.Background(), tournament.ID)
	require.ErrorIs(t, err, ErrTournamentNotFound)

	fixtures, err := f.fixtures.ListByTournament(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.Empty(t, fixtures)

	linkIDs, err := f.links.ListPlayerIDs(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.Empty(t, linkIDs)
}

func TestSetFixtureInProgress(t *testing.T) {
	f := newTournamentServiceFixture()
	playerIDs := f.addPlayers(2)

	tournament, err := f.service.CreateTournament(context.Background(), CreateTournamentInput{
		Name:      "League",
		PlayerIDs: playerIDs,
	})
	require.NoError(t, err)

	fixtures, err := f.service.GetFixtures(context.Background(), tournament.ID)
	require.NoError(t, err)

	fixture, err := f.service.SetFixtureInProgress(context.Background(), fixtures[0].ID)
	require.NoError(t, err)
	require.Equal(t, models.FixtureInProgress, fixture.Status)
	require.Len(t, f.hub.messagesOfType(EventFixtureUpdated), 1)

	_, err = f.service.SetFixtureInProgress(context.Background(), 999)
	require.ErrorIs(t, err, ErrFixtureNotFound)
}
