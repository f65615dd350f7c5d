package schedule

import (
	"errors"
	"fmt"

	"github.com/dartclub/league-system/models"
)

// ErrInvalidRequest rejects a schedule request before any fixture is
// generated: fewer than 2 players or fewer than 1 round per player.
var ErrInvalidRequest = errors.New("invalid schedule request")

// Generator produces the full fixture list for a tournament.
type Generator interface {
	// Generate builds the schedule for the given players in seed order.
	// roundsPerPlayer is the number of times every pair meets in total.
	// The result is deterministic for a given input order.
	Generate(players []*models.Player, roundsPerPlayer int) ([]*models.Fixture, error)
}

type roundRobinGenerator struct{}

func NewRoundRobinGenerator() Generator {
	return &roundRobinGenerator{}
}

// Generate implements the circle method: player 0 stays fixed while the rest
// rotate one position between rounds. An odd player count gets a synthetic
// bye slot; pairings involving the bye produce no fixture. The single
// round robin occupies rounds 1..m-1 (m = working list size including the
// bye). Additional meetings are appended as whole round blocks: even
// repetitions swap home and away relative to the base schedule, odd
// repetitions beyond the first keep the base orientation.
func (g *roundRobinGenerator) Generate(players []*models.Player, roundsPerPlayer int) ([]*models.Fixture, error) {
	if len(players) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 players, got %d", ErrInvalidRequest, len(players))
	}
	if roundsPerPlayer < 1 {
		return nil, fmt.Errorf("%w: need at least 1 round per player, got %d", ErrInvalidRequest, roundsPerPlayer)
	}

	base, roundsPerBlock := g.singleRoundRobin(players)

	fixtures := make([]*models.Fixture, 0, len(base)*roundsPerPlayer)
	fixtures = append(fixtures, base...)

	for iteration := 2; iteration <= roundsPerPlayer; iteration++ {
		startRound := 1 + (iteration-1)*roundsPerBlock
		reversed := iteration%2 == 0
		for _, f := range base {
			next := &models.Fixture{
				RoundNumber:  startRound + (f.RoundNumber - 1),
				HomePlayerID: f.HomePlayerID,
				AwayPlayerID: f.AwayPlayerID,
				HomePlayer:   f.HomePlayer,
				AwayPlayer:   f.AwayPlayer,
				Status:       models.FixturePending,
			}
			if reversed {
				next.HomePlayerID, next.AwayPlayerID = next.AwayPlayerID, next.HomePlayerID
				next.HomePlayer, next.AwayPlayer = next.AwayPlayer, next.HomePlayer
			}
			fixtures = append(fixtures, next)
		}
	}

	return fixtures, nil
}

// singleRoundRobin returns the base schedule and the number of rounds it
// spans. A nil entry in the ring is the bye slot for odd player counts.
func (g *roundRobinGenerator) singleRoundRobin(players []*models.Player) ([]*models.Fixture, int) {
	ring := make([]*models.Player, len(players))
	copy(ring, players)
	if len(ring)%2 != 0 {
		ring = append(ring, nil)
	}

	numRounds := len(ring) - 1
	halfSize := len(ring) / 2

	fixtures := make([]*models.Fixture, 0, numRounds*halfSize)
	for round := 0; round < numRounds; round++ {
		for i := 0; i < halfSize; i++ {
			home := ring[i]
			away := ring[len(ring)-1-i]
			if home == nil || away == nil {
				continue // bye, no fixture this round
			}
			fixtures = append(fixtures, &models.Fixture{
				RoundNumber:  1 + round,
				HomePlayerID: home.ID,
				AwayPlayerID: away.ID,
				HomePlayer:   home,
				AwayPlayer:   away,
				Status:       models.FixturePending,
			})
		}

		if round < numRounds-1 {
			// Rotate everything but the anchor at index 0 one step clockwise.
			last := ring[len(ring)-1]
			copy(ring[2:], ring[1:len(ring)-1])
			ring[1] = last
		}
	}

	return fixtures, numRounds
}
