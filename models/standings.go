package models

// StandingsEntry is the per-player aggregate over a tournament's completed
// fixtures. It is derived on every query and never persisted, so standings
// always reflect the current fixture state.
type StandingsEntry struct {
	Player         *Player `json:"player"`
	Played         int     `json:"played"`
	Wins           int     `json:"wins"`
	Draws          int     `json:"draws"`
	Losses         int     `json:"losses"`
	LegsFor        int     `json:"legs_for"`
	LegsAgainst    int     `json:"legs_against"`
	LegsDifference int     `json:"legs_difference"`
	Points         int     `json:"points"`
}
