package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dartclub/league-system/models"
	"github.com/dartclub/league-system/repositories"
	"github.com/dartclub/league-system/schedule"
	"golang.org/x/sync/errgroup"
)

// LiveBroadcaster pushes updates to websocket clients subscribed to a
// tournament room. Satisfied by *live.Hub; may be nil (no live updates).
type LiveBroadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

// Websocket message types pushed to tournament rooms.
const (
	EventFixtureUpdated      = "FIXTURE_UPDATED"
	EventTournamentStarted   = "TOURNAMENT_STARTED"
	EventTournamentCompleted = "TOURNAMENT_COMPLETED"
)

type LiveMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// TournamentRoom returns the hub room name for a tournament.
func TournamentRoom(tournamentID int) string {
	return "tournament_" + strconv.Itoa(tournamentID)
}

type CreateTournamentInput struct {
	Name            string `json:"name"`
	GameMode        string `json:"game_mode"`
	LegsPerMatch    int    `json:"legs_per_match"`
	RoundsPerPlayer int    `json:"rounds_per_player"`
	PointsWin       *int   `json:"points_win"`
	PointsDraw      *int   `json:"points_draw"`
	PointsLoss      *int   `json:"points_loss"`
	PlayerIDs       []int  `json:"player_ids"`
}

type SubmitResultInput struct {
	HomeLegsWon     int      `json:"home_legs_won"`
	AwayLegsWon     int      `json:"away_legs_won"`
	HomeAverage     *float64 `json:"home_average"`
	AwayAverage     *float64 `json:"away_average"`
	AutodartsGameID *string  `json:"autodarts_game_id"`
}

// TournamentOverview bundles everything the detail view needs in one
// response: the tournament, its players in seed order, the full fixture
// list and the current standings.
type TournamentOverview struct {
	Tournament *models.Tournament      `json:"tournament"`
	Players    []*models.Player        `json:"players"`
	Fixtures   []*models.Fixture       `json:"fixtures"`
	Standings  []models.StandingsEntry `json:"standings"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	GetTournamentOverview(ctx context.Context, id int) (*TournamentOverview, error)
	ListTournaments(ctx context.Context) ([]*models.Tournament, error)
	DeleteTournament(ctx context.Context, id int) error

	StartTournament(ctx context.Context, id int) (*models.Tournament, error)
	EndTournament(ctx context.Context, id int) (*models.Tournament, error)

	GetFixtures(ctx context.Context, tournamentID int) ([]*models.Fixture, error)
	GetFixturesByRound(ctx context.Context, tournamentID, roundNumber int) ([]*models.Fixture, error)
	// GetNextPendingFixture returns the first fixture in round order that is
	// not yet completed, or nil when the tournament is finished or empty.
	GetNextPendingFixture(ctx context.Context, tournamentID int) (*models.Fixture, error)
	GetStandings(ctx context.Context, tournamentID int) ([]models.StandingsEntry, error)

	SetFixtureInProgress(ctx context.Context, fixtureID int) (*models.Fixture, error)
	SubmitResult(ctx context.Context, fixtureID int, input SubmitResultInput) (*models.Fixture, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	linkRepo       repositories.TournamentPlayerRepository
	fixtureRepo    repositories.FixtureRepository
	generator      schedule.Generator
	standings      StandingsService
	hub            LiveBroadcaster
	logger         *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	linkRepo repositories.TournamentPlayerRepository,
	fixtureRepo repositories.FixtureRepository,
	generator schedule.Generator,
	standings StandingsService,
	hub LiveBroadcaster,
	logger *slog.Logger,
) TournamentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		linkRepo:       linkRepo,
		fixtureRepo:    fixtureRepo,
		generator:      generator,
		standings:      standings,
		hub:            hub,
		logger:         logger,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	if len(input.PlayerIDs) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 players, got %d", schedule.ErrInvalidRequest, len(input.PlayerIDs))
	}

	tournament := &models.Tournament{
		Name:            name,
		GameMode:        input.GameMode,
		LegsPerMatch:    input.LegsPerMatch,
		RoundsPerPlayer: input.RoundsPerPlayer,
		PointsWin:       3,
		PointsDraw:      1,
		PointsLoss:      0,
		Status:          models.TournamentCreated,
	}
	if tournament.GameMode == "" {
		tournament.GameMode = "501"
	}
	if tournament.LegsPerMatch == 0 {
		tournament.LegsPerMatch = 3
	}
	if tournament.RoundsPerPlayer == 0 {
		tournament.RoundsPerPlayer = 2
	}
	if input.PointsWin != nil {
		tournament.PointsWin = *input.PointsWin
	}
	if input.PointsDraw != nil {
		tournament.PointsDraw = *input.PointsDraw
	}
	if input.PointsLoss != nil {
		tournament.PointsLoss = *input.PointsLoss
	}

	players := make([]*models.Player, 0, len(input.PlayerIDs))
	for _, playerID := range input.PlayerIDs {
		player, err := s.playerRepo.GetByID(ctx, playerID)
		if err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return nil, fmt.Errorf("%w: id %d", ErrPlayerNotFound, playerID)
			}
			return nil, fmt.Errorf("failed to load player %d: %w", playerID, err)
		}
		players = append(players, player)
	}

	// Generate before persisting anything: an invalid request must leave no
	// partial state behind.
	fixtures, err := s.generator.Generate(players, tournament.RoundsPerPlayer)
	if err != nil {
		return nil, err
	}

	if err := s.tournamentRepo.Create(ctx, nil, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	for seed, player := range players {
		link := &models.TournamentPlayer{
			TournamentID: tournament.ID,
			PlayerID:     player.ID,
			Seed:         seed,
		}
		if err := s.linkRepo.Create(ctx, nil, link); err != nil {
			return nil, fmt.Errorf("failed to register player %d: %w", player.ID, err)
		}
	}

	for _, f := range fixtures {
		f.TournamentID = tournament.ID
	}
	if err := s.fixtureRepo.CreateAll(ctx, nil, fixtures); err != nil {
		return nil, fmt.Errorf("failed to persist schedule: %w", err)
	}

	s.logger.Info("tournament created",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("players", len(players)),
		slog.Int("fixtures", len(fixtures)))

	return tournament, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	return tournament, nil
}

func (s *tournamentService) GetTournamentOverview(ctx context.Context, id int) (*TournamentOverview, error) {
	tournament, err := s.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}

	overview := &TournamentOverview{Tournament: tournament}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		links, err := s.linkRepo.ListByTournament(gctx, id)
		if err != nil {
			return fmt.Errorf("failed to load participants: %w", err)
		}
		players := make([]*models.Player, 0, len(links))
		for _, link := range links {
			player, err := s.playerRepo.GetByID(gctx, link.PlayerID)
			if err != nil {
				return fmt.Errorf("failed to load player %d: %w", link.PlayerID, err)
			}
			players = append(players, player)
		}
		overview.Players = players
		return nil
	})
	g.Go(func() error {
		fixtures, err := s.fixtureRepo.ListByTournament(gctx, id)
		if err != nil {
			return fmt.Errorf("failed to load fixtures: %w", err)
		}
		overview.Fixtures = fixtures
		return nil
	})
	g.Go(func() error {
		standings, err := s.standings.GetStandings(gctx, id)
		if err != nil {
			return fmt.Errorf("failed to compute standings: %w", err)
		}
		overview.Standings = standings
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return overview, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

func (s *tournamentService) DeleteTournament(ctx context.Context, id int) error {
	if _, err := s.GetTournament(ctx, id); err != nil {
		return err
	}
	if err := s.fixtureRepo.DeleteByTournament(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete fixtures of tournament %d: %w", id, err)
	}
	if err := s.linkRepo.DeleteByTournament(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete participants of tournament %d: %w", id, err)
	}
	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to delete tournament %d: %w", id, err)
	}
	return nil
}

func (s *tournamentService) StartTournament(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.setTournamentStatus(ctx, id, models.TournamentInProgress)
	if err != nil {
		return nil, err
	}
	s.broadcast(id, EventTournamentStarted, tournament)
	return tournament, nil
}

func (s *tournamentService) EndTournament(ctx context.Context, id int) (*models.Tournament, error) {
	return s.setTournamentStatus(ctx, id, models.TournamentEnded)
}

func (s *tournamentService) setTournamentStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error) {
	if err := s.tournamentRepo.UpdateStatus(ctx, nil, id, status); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to set tournament %d status to %s: %w", id, status, err)
	}
	return s.GetTournament(ctx, id)
}

func (s *tournamentService) GetFixtures(ctx context.Context, tournamentID int) ([]*models.Fixture, error) {
	fixtures, err := s.fixtureRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fixtures for tournament %d: %w", tournamentID, err)
	}
	return fixtures, nil
}

func (s *tournamentService) GetFixturesByRound(ctx context.Context, tournamentID, roundNumber int) ([]*models.Fixture, error) {
	fixtures, err := s.fixtureRepo.ListByRound(ctx, tournamentID, roundNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list round %d fixtures for tournament %d: %w", roundNumber, tournamentID, err)
	}
	return fixtures, nil
}

func (s *tournamentService) GetNextPendingFixture(ctx context.Context, tournamentID int) (*models.Fixture, error) {
	fixtures, err := s.GetFixtures(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	for _, f := range fixtures {
		if f.Status == models.FixturePending || f.Status == models.FixtureInProgress {
			return f, nil
		}
	}
	return nil, nil
}

func (s *tournamentService) GetStandings(ctx context.Context, tournamentID int) ([]models.StandingsEntry, error) {
	return s.standings.GetStandings(ctx, tournamentID)
}

func (s *tournamentService) SetFixtureInProgress(ctx context.Context, fixtureID int) (*models.Fixture, error) {
	if err := s.fixtureRepo.UpdateStatus(ctx, nil, fixtureID, models.FixtureInProgress); err != nil {
		if errors.Is(err, repositories.ErrFixtureNotFound) {
			return nil, ErrFixtureNotFound
		}
		return nil, fmt.Errorf("failed to start fixture %d: %w", fixtureID, err)
	}

	fixture, err := s.getFixture(ctx, fixtureID)
	if err != nil {
		return nil, err
	}
	s.broadcast(fixture.TournamentID, EventFixtureUpdated, fixture)
	return fixture, nil
}

func (s *tournamentService) SubmitResult(ctx context.Context, fixtureID int, input SubmitResultInput) (*models.Fixture, error) {
	if input.HomeLegsWon < 0 || input.AwayLegsWon < 0 {
		return nil, ErrNegativeLegs
	}

	fixture, err := s.getFixture(ctx, fixtureID)
	if err != nil {
		return nil, err
	}
	if fixture.Status == models.FixtureCompleted {
		return nil, ErrFixtureAlreadyCompleted
	}

	update := repositories.FixtureResultUpdate{
		HomeLegsWon:     input.HomeLegsWon,
		AwayLegsWon:     input.AwayLegsWon,
		HomeAverage:     input.HomeAverage,
		AwayAverage:     input.AwayAverage,
		AutodartsGameID: input.AutodartsGameID,
		PlayedAt:        time.Now().UTC(),
	}
	if err := s.fixtureRepo.SubmitResult(ctx, nil, fixtureID, update); err != nil {
		switch {
		case errors.Is(err, repositories.ErrFixtureAlreadyCompleted):
			return nil, ErrFixtureAlreadyCompleted
		case errors.Is(err, repositories.ErrFixtureNotFound):
			return nil, ErrFixtureNotFound
		default:
			return nil, fmt.Errorf("failed to record result for fixture %d: %w", fixtureID, err)
		}
	}

	saved, err := s.getFixture(ctx, fixtureID)
	if err != nil {
		return nil, err
	}
	s.broadcast(saved.TournamentID, EventFixtureUpdated, saved)

	// Auto-complete the tournament the moment its last fixture is done. The
	// check runs synchronously within the same submission.
	allFixtures, err := s.fixtureRepo.ListByTournament(ctx, saved.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read fixtures of tournament %d: %w", saved.TournamentID, err)
	}
	allCompleted := true
	for _, f := range allFixtures {
		if f.Status != models.FixtureCompleted {
			allCompleted = false
			break
		}
	}
	if allCompleted {
		if err := s.tournamentRepo.UpdateStatus(ctx, nil, saved.TournamentID, models.TournamentCompleted); err != nil {
			return nil, fmt.Errorf("failed to complete tournament %d: %w", saved.TournamentID, err)
		}
		s.logger.Info("tournament completed", slog.Int("tournament_id", saved.TournamentID))
		s.broadcast(saved.TournamentID, EventTournamentCompleted, saved.TournamentID)
	}

	return saved, nil
}

func (s *tournamentService) getFixture(ctx context.Context, fixtureID int) (*models.Fixture, error) {
	fixture, err := s.fixtureRepo.GetByID(ctx, fixtureID)
	if err != nil {
		if errors.Is(err, repositories.ErrFixtureNotFound) {
			return nil, ErrFixtureNotFound
		}
		return nil, fmt.Errorf("failed to get fixture %d: %w", fixtureID, err)
	}
	return fixture, nil
}

func (s *tournamentService) broadcast(tournamentID int, eventType string, payload interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(TournamentRoom(tournamentID), LiveMessage{
		Type:    eventType,
		Payload: payload,
	})
}
