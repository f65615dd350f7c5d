package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dartclub/league-system/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTournamentInUse    = errors.New("tournament is in use (fixtures or participants exist)")
)

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	// List returns all tournaments, newest first.
	List(ctx context.Context) ([]*models.Tournament, error)
	// ListByStatus returns tournaments in id ascending order. The result
	// reconciler scans these in order and takes the first match, so the
	// order must be deterministic.
	ListByStatus(ctx context.Context, status models.TournamentStatus) ([]*models.Tournament, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	Delete(ctx context.Context, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `id, name, game_mode, legs_per_match, rounds_per_player,
	points_win, points_draw, points_loss, status, created_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournaments
			(name, game_mode, legs_per_match, rounds_per_player, points_win, points_draw, points_loss, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	return executor.QueryRowContext(ctx, query,
		t.Name, t.GameMode, t.LegsPerMatch, t.RoundsPerPlayer,
		t.PointsWin, t.PointsDraw, t.PointsLoss, t.Status,
	).Scan(&t.ID, &t.CreatedAt)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.GameMode, &t.LegsPerMatch, &t.RoundsPerPlayer,
		&t.PointsWin, &t.PointsDraw, &t.PointsLoss, &t.Status, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context) ([]*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments ORDER BY created_at DESC, id DESC`
	return r.queryTournaments(ctx, query)
}

func (r *postgresTournamentRepository) ListByStatus(ctx context.Context, status models.TournamentStatus) ([]*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE status = $1 ORDER BY id ASC`
	return r.queryTournaments(ctx, query, status)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET status = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM tournaments WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrTournamentInUse
		}
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) queryTournaments(ctx context.Context, query string, args ...interface{}) ([]*models.Tournament, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if err := rows.Scan(
			&t.ID, &t.Name, &t.GameMode, &t.LegsPerMatch, &t.RoundsPerPlayer,
			&t.PointsWin, &t.PointsDraw, &t.PointsLoss, &t.Status, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		tournaments = append(tournaments, &t)
	}
	return tournaments, rows.Err()
}
