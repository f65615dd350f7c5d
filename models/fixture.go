package models

import "time"

// FixtureStatus mirrors the fixture_status ENUM in the database.
type FixtureStatus string

const (
	FixturePending    FixtureStatus = "PENDING"
	FixtureInProgress FixtureStatus = "IN_PROGRESS"
	FixtureCompleted  FixtureStatus = "COMPLETED"
)

// Fixture is a single scheduled match between two players within a round.
// Leg counts and PlayedAt are set together exactly once when the result is
// submitted; a completed fixture is never re-opened.
type Fixture struct {
	ID              int           `json:"id" db:"id"`
	TournamentID    int           `json:"tournament_id" db:"tournament_id"`
	RoundNumber     int           `json:"round_number" db:"round_number"`
	HomePlayerID    int           `json:"home_player_id" db:"home_player_id"`
	AwayPlayerID    int           `json:"away_player_id" db:"away_player_id"`
	HomeLegsWon     *int          `json:"home_legs_won,omitempty" db:"home_legs_won"`
	AwayLegsWon     *int          `json:"away_legs_won,omitempty" db:"away_legs_won"`
	HomeAverage     *float64      `json:"home_average,omitempty" db:"home_average"`
	AwayAverage     *float64      `json:"away_average,omitempty" db:"away_average"`
	AutodartsGameID *string       `json:"autodarts_game_id,omitempty" db:"autodarts_game_id"`
	Status          FixtureStatus `json:"status" db:"status"`
	PlayedAt        *time.Time    `json:"played_at,omitempty" db:"played_at"`

	// Optional linked data, populated by the repository on list/get.
	HomePlayer *Player `json:"home_player,omitempty" db:"-"`
	AwayPlayer *Player `json:"away_player,omitempty" db:"-"`
}
