package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dartclub/league-system/models"
	"github.com/lib/pq"
)

var ErrTournamentPlayerConflict = errors.New("player already registered for this tournament")

type TournamentPlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tp *models.TournamentPlayer) error
	// ListByTournament returns the links in seed order, i.e. the rotation
	// order the schedule was generated with.
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.TournamentPlayer, error)
	ListPlayerIDs(ctx context.Context, tournamentID int) ([]int, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresTournamentPlayerRepository struct {
	db *sql.DB
}

func NewPostgresTournamentPlayerRepository(db *sql.DB) TournamentPlayerRepository {
	return &postgresTournamentPlayerRepository{db: db}
}

func (r *postgresTournamentPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentPlayerRepository) Create(ctx context.Context, exec SQLExecutor, tp *models.TournamentPlayer) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournament_players (tournament_id, player_id, seed)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := executor.QueryRowContext(ctx, query, tp.TournamentID, tp.PlayerID, tp.Seed).Scan(&tp.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrTournamentPlayerConflict
		}
		return err
	}
	return nil
}

func (r *postgresTournamentPlayerRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.TournamentPlayer, error) {
	query := `
		SELECT id, tournament_id, player_id, seed
		FROM tournament_players
		WHERE tournament_id = $1
		ORDER BY seed ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]*models.TournamentPlayer, 0)
	for rows.Next() {
		var tp models.TournamentPlayer
		if err := rows.Scan(&tp.ID, &tp.TournamentID, &tp.PlayerID, &tp.Seed); err != nil {
			return nil, err
		}
		links = append(links, &tp)
	}
	return links, rows.Err()
}

func (r *postgresTournamentPlayerRepository) ListPlayerIDs(ctx context.Context, tournamentID int) ([]int, error) {
	links, err := r.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(links))
	for _, tp := range links {
		ids = append(ids, tp.PlayerID)
	}
	return ids, nil
}

func (r *postgresTournamentPlayerRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM tournament_players WHERE tournament_id = $1`, tournamentID)
	return err
}
