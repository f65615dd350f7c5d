package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dartclub/league-system/models"
	"github.com/dartclub/league-system/repositories"
	"github.com/google/uuid"
)

// AutodartsGameResult is what the browser extension posts when a game on the
// board finishes. User ids are Autodarts account UUIDs and are absent for
// local/guest players; usernames are always present.
type AutodartsGameResult struct {
	HomePlayerUsername string   `json:"home_player_username"`
	AwayPlayerUsername string   `json:"away_player_username"`
	HomePlayerUserID   *string  `json:"home_player_user_id"`
	AwayPlayerUserID   *string  `json:"away_player_user_id"`
	HomeLegsWon        int      `json:"home_legs_won"`
	AwayLegsWon        int      `json:"away_legs_won"`
	HomeAverage        *float64 `json:"home_average"`
	AwayAverage        *float64 `json:"away_average"`
	AutodartsGameID    *string  `json:"autodarts_game_id"`
}

// AutodartsService reconciles externally reported game results against the
// pending fixtures of active tournaments.
type AutodartsService interface {
	// SubmitGameResult matches the report to a fixture and records the
	// result. A (nil, nil) return means no matching fixture was found,
	// which is a normal outcome: the game simply was not a league game.
	SubmitGameResult(ctx context.Context, report AutodartsGameResult) (*models.Fixture, error)
}

type autodartsService struct {
	playerRepo     repositories.PlayerRepository
	tournamentRepo repositories.TournamentRepository
	linkRepo       repositories.TournamentPlayerRepository
	fixtureRepo    repositories.FixtureRepository
	tournaments    TournamentService
	logger         *slog.Logger
}

func NewAutodartsService(
	playerRepo repositories.PlayerRepository,
	tournamentRepo repositories.TournamentRepository,
	linkRepo repositories.TournamentPlayerRepository,
	fixtureRepo repositories.FixtureRepository,
	tournaments TournamentService,
	logger *slog.Logger,
) AutodartsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &autodartsService{
		playerRepo:     playerRepo,
		tournamentRepo: tournamentRepo,
		linkRepo:       linkRepo,
		fixtureRepo:    fixtureRepo,
		tournaments:    tournaments,
		logger:         logger,
	}
}

func (s *autodartsService) SubmitGameResult(ctx context.Context, report AutodartsGameResult) (*models.Fixture, error) {
	homeUserID := validUserID(report.HomePlayerUserID)
	awayUserID := validUserID(report.AwayPlayerUserID)

	homePlayer, err := s.resolvePlayer(ctx, report.HomePlayerUsername, homeUserID)
	if err != nil {
		return nil, err
	}
	awayPlayer, err := s.resolvePlayer(ctx, report.AwayPlayerUsername, awayUserID)
	if err != nil {
		return nil, err
	}
	if homePlayer == nil || awayPlayer == nil {
		s.logger.Debug("autodarts result ignored: unknown player",
			slog.String("home", report.HomePlayerUsername),
			slog.String("away", report.AwayPlayerUsername))
		return nil, nil
	}

	// Players matched by username whose account UUID is now known get it
	// persisted, so the next report resolves by the id directly.
	if err := s.backfillUserID(ctx, homePlayer, homeUserID); err != nil {
		return nil, err
	}
	if err := s.backfillUserID(ctx, awayPlayer, awayUserID); err != nil {
		return nil, err
	}

	// Which local player held the "home" slot in the reported game. The id
	// comparison is authoritative; usernames are compared case-insensitively.
	var reportHomeIsHome bool
	if homeUserID != nil {
		reportHomeIsHome = homePlayer.AutodartsUserID != nil && *homePlayer.AutodartsUserID == *homeUserID
	} else {
		reportHomeIsHome = strings.EqualFold(homePlayer.AutodartsUsername, report.HomePlayerUsername)
	}

	active, err := s.tournamentRepo.ListByStatus(ctx, models.TournamentInProgress)
	if err != nil {
		return nil, fmt.Errorf("failed to list active tournaments: %w", err)
	}

	for _, tournament := range active {
		fixture, err := s.findOpenFixture(ctx, tournament.ID, homePlayer.ID, awayPlayer.ID)
		if err != nil {
			return nil, err
		}
		if fixture == nil {
			continue
		}

		// Orient the reported scores to the fixture's stored home/away
		// assignment before recording.
		input := SubmitResultInput{
			HomeLegsWon:     report.HomeLegsWon,
			AwayLegsWon:     report.AwayLegsWon,
			HomeAverage:     report.HomeAverage,
			AwayAverage:     report.AwayAverage,
			AutodartsGameID: report.AutodartsGameID,
		}
		if fixture.HomePlayerID != homePlayer.ID || !reportHomeIsHome {
			input.HomeLegsWon, input.AwayLegsWon = report.AwayLegsWon, report.HomeLegsWon
			input.HomeAverage, input.AwayAverage = report.AwayAverage, report.HomeAverage
		}

		saved, err := s.tournaments.SubmitResult(ctx, fixture.ID, input)
		if err != nil {
			return nil, err
		}
		s.logger.Info("autodarts result reconciled",
			slog.Int("tournament_id", tournament.ID),
			slog.Int("fixture_id", fixture.ID),
			slog.Int("round", fixture.RoundNumber))
		return saved, nil
	}

	s.logger.Debug("autodarts result ignored: no open fixture for pair",
		slog.Int("home_player_id", homePlayer.ID),
		slog.Int("away_player_id", awayPlayer.ID))
	return nil, nil
}

// resolvePlayer finds the local player for one side of the report: account
// UUID first (authoritative), then case-insensitive username. A nil player
// without error means the side is unknown to the league.
func (s *autodartsService) resolvePlayer(ctx context.Context, username string, userID *string) (*models.Player, error) {
	if userID != nil {
		player, err := s.playerRepo.GetByAutodartsUserID(ctx, *userID)
		if err == nil {
			return player, nil
		}
		if !errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, fmt.Errorf("failed to look up player by autodarts id: %w", err)
		}
	}

	player, err := s.playerRepo.GetByAutodartsUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up player by username %q: %w", username, err)
	}
	return player, nil
}

func (s *autodartsService) backfillUserID(ctx context.Context, player *models.Player, userID *string) error {
	if player.AutodartsUserID != nil || userID == nil {
		return nil
	}
	if err := s.playerRepo.UpdateAutodartsUserID(ctx, nil, player.ID, *userID); err != nil {
		return fmt.Errorf("failed to backfill autodarts id for player %d: %w", player.ID, err)
	}
	player.AutodartsUserID = userID
	s.logger.Info("backfilled autodarts account id",
		slog.Int("player_id", player.ID),
		slog.String("autodarts_user_id", *userID))
	return nil
}

// findOpenFixture returns the first not-yet-completed fixture between the
// two players in round order, in either orientation, provided both players
// are registered for the tournament.
func (s *autodartsService) findOpenFixture(ctx context.Context, tournamentID, playerA, playerB int) (*models.Fixture, error) {
	participantIDs, err := s.linkRepo.ListPlayerIDs(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants of tournament %d: %w", tournamentID, err)
	}
	if !containsInt(participantIDs, playerA) || !containsInt(participantIDs, playerB) {
		return nil, nil
	}

	fixtures, err := s.fixtureRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fixtures of tournament %d: %w", tournamentID, err)
	}
	for _, f := range fixtures {
		if f.Status == models.FixtureCompleted {
			continue
		}
		if (f.HomePlayerID == playerA && f.AwayPlayerID == playerB) ||
			(f.HomePlayerID == playerB && f.AwayPlayerID == playerA) {
			return f, nil
		}
	}
	return nil, nil
}

// validUserID drops ids that are not well-formed UUIDs; the extension sends
// empty or synthetic ids for local boards.
func validUserID(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	if _, err := uuid.Parse(*id); err != nil {
		return nil
	}
	return id
}

func containsInt(haystack []int, needle int) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}
