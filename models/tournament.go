package models

import "time"

// TournamentStatus mirrors the tournament_status ENUM in the database.
type TournamentStatus string

const (
	TournamentCreated    TournamentStatus = "CREATED"
	TournamentInProgress TournamentStatus = "IN_PROGRESS"
	TournamentCompleted  TournamentStatus = "COMPLETED"
	TournamentEnded      TournamentStatus = "ENDED"
)

// Tournament is a round-robin league. The fixture set is generated once at
// creation and never regenerated afterwards.
type Tournament struct {
	ID              int              `json:"id" db:"id"`
	Name            string           `json:"name" db:"name"`
	GameMode        string           `json:"game_mode" db:"game_mode"`
	LegsPerMatch    int              `json:"legs_per_match" db:"legs_per_match"`
	RoundsPerPlayer int              `json:"rounds_per_player" db:"rounds_per_player"`
	PointsWin       int              `json:"points_win" db:"points_win"`
	PointsDraw      int              `json:"points_draw" db:"points_draw"`
	PointsLoss      int              `json:"points_loss" db:"points_loss"`
	Status          TournamentStatus `json:"status" db:"status"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`

	// Optional linked data, populated by the service layer.
	Players  []Player   `json:"players,omitempty" db:"-"`
	Fixtures []*Fixture `json:"fixtures,omitempty" db:"-"`
}

// TournamentPlayer links a player to a tournament. Seed is the 0-based
// position in the rotation used for schedule generation, not a ranking.
type TournamentPlayer struct {
	ID           int `json:"id" db:"id"`
	TournamentID int `json:"tournament_id" db:"tournament_id"`
	PlayerID     int `json:"player_id" db:"player_id"`
	Seed         int `json:"seed" db:"seed"`
}
