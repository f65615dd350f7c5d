package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dartclub/league-system/models"
	"github.com/dartclub/league-system/repositories"
)

// StandingsService recomputes the league table from completed fixtures on
// every call. Nothing is cached, so the table always reflects the current
// fixture state.
type StandingsService interface {
	GetStandings(ctx context.Context, tournamentID int) ([]models.StandingsEntry, error)
}

type standingsService struct {
	tournamentRepo repositories.TournamentRepository
	fixtureRepo    repositories.FixtureRepository
}

func NewStandingsService(
	tournamentRepo repositories.TournamentRepository,
	fixtureRepo repositories.FixtureRepository,
) StandingsService {
	return &standingsService{
		tournamentRepo: tournamentRepo,
		fixtureRepo:    fixtureRepo,
	}
}

func (s *standingsService) GetStandings(ctx context.Context, tournamentID int) ([]models.StandingsEntry, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}

	completed, err := s.fixtureRepo.ListCompletedByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load completed fixtures for tournament %d: %w", tournamentID, err)
	}

	return CalculateStandings(completed, tournament.PointsWin, tournament.PointsDraw, tournament.PointsLoss), nil
}

// CalculateStandings aggregates completed fixtures into a ranked table.
// Fixtures that are not COMPLETED are skipped; players without a completed
// fixture do not appear. Ranking is points, then leg difference, then legs
// for, all descending. The sort is stable: entries equal on all three keys
// keep their first-appearance order from the fixture list.
func CalculateStandings(fixtures []*models.Fixture, pointsWin, pointsDraw, pointsLoss int) []models.StandingsEntry {
	stats := make(map[int]*models.StandingsEntry)
	order := make([]int, 0)

	record := func(player *models.Player, legsFor, legsAgainst int) {
		entry, ok := stats[player.ID]
		if !ok {
			entry = &models.StandingsEntry{Player: player}
			stats[player.ID] = entry
			order = append(order, player.ID)
		}

		entry.Played++
		entry.LegsFor += legsFor
		entry.LegsAgainst += legsAgainst
		entry.LegsDifference = entry.LegsFor - entry.LegsAgainst

		switch {
		case legsFor > legsAgainst:
			entry.Wins++
			entry.Points += pointsWin
		case legsFor == legsAgainst:
			entry.Draws++
			entry.Points += pointsDraw
		default:
			entry.Losses++
			entry.Points += pointsLoss
		}
	}

	for _, f := range fixtures {
		if f.Status != models.FixtureCompleted {
			continue
		}
		homeLegs, awayLegs := 0, 0
		if f.HomeLegsWon != nil {
			homeLegs = *f.HomeLegsWon
		}
		if f.AwayLegsWon != nil {
			awayLegs = *f.AwayLegsWon
		}
		record(f.HomePlayer, homeLegs, awayLegs)
		record(f.AwayPlayer, awayLegs, homeLegs)
	}

	entries := make([]models.StandingsEntry, 0, len(order))
	for _, playerID := range order {
		entries = append(entries, *stats[playerID])
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		if entries[i].LegsDifference != entries[j].LegsDifference {
			return entries[i].LegsDifference > entries[j].LegsDifference
		}
		return entries[i].LegsFor > entries[j].LegsFor
	})

	return entries
}
