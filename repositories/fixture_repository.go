package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dartclub/league-system/models"
	"github.com/lib/pq"
)

var (
	ErrFixtureNotFound         = errors.New("fixture not found")
	ErrFixtureAlreadyCompleted = errors.New("fixture already completed")
	ErrFixtureInvalidPlayer    = errors.New("fixture references an unknown player")
)

type FixtureResultUpdate struct {
	HomeLegsWon     int
	AwayLegsWon     int
	HomeAverage     *float64
	AwayAverage     *float64
	AutodartsGameID *string
	PlayedAt        time.Time
}

type FixtureRepository interface {
	Create(ctx context.Context, exec SQLExecutor, fixture *models.Fixture) error
	CreateAll(ctx context.Context, exec SQLExecutor, fixtures []*models.Fixture) error
	GetByID(ctx context.Context, id int) (*models.Fixture, error)
	// ListByTournament returns fixtures in round order with both players
	// populated; within a round the generation order (insertion id) holds.
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Fixture, error)
	ListByRound(ctx context.Context, tournamentID, roundNumber int) ([]*models.Fixture, error)
	ListCompletedByTournament(ctx context.Context, tournamentID int) ([]*models.Fixture, error)
	// SubmitResult records the result and flips the fixture to COMPLETED in
	// a single guarded statement; a fixture that is already COMPLETED is
	// left untouched and ErrFixtureAlreadyCompleted is returned.
	SubmitResult(ctx context.Context, exec SQLExecutor, fixtureID int, result FixtureResultUpdate) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, fixtureID int, status models.FixtureStatus) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresFixtureRepository struct {
	db *sql.DB
}

func NewPostgresFixtureRepository(db *sql.DB) FixtureRepository {
	return &postgresFixtureRepository{db: db}
}

func (r *postgresFixtureRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const fixtureSelect = `
	SELECT
		f.id, f.tournament_id, f.round_number, f.home_player_id, f.away_player_id,
		f.home_legs_won, f.away_legs_won, f.home_average, f.away_average,
		f.autodarts_game_id, f.status, f.played_at,
		hp.id, hp.display_name, hp.autodarts_username, hp.autodarts_user_id, hp.avatar_key, hp.created_at,
		ap.id, ap.display_name, ap.autodarts_username, ap.autodarts_user_id, ap.avatar_key, ap.created_at
	FROM fixtures f
	JOIN players hp ON f.home_player_id = hp.id
	JOIN players ap ON f.away_player_id = ap.id`

func (r *postgresFixtureRepository) Create(ctx context.Context, exec SQLExecutor, f *models.Fixture) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO fixtures (tournament_id, round_number, home_player_id, away_player_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := executor.QueryRowContext(ctx, query,
		f.TournamentID, f.RoundNumber, f.HomePlayerID, f.AwayPlayerID, f.Status,
	).Scan(&f.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrFixtureInvalidPlayer
		}
		return err
	}
	return nil
}

func (r *postgresFixtureRepository) CreateAll(ctx context.Context, exec SQLExecutor, fixtures []*models.Fixture) error {
	for _, f := range fixtures {
		if err := r.Create(ctx, exec, f); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresFixtureRepository) GetByID(ctx context.Context, id int) (*models.Fixture, error) {
	query := fixtureSelect + ` WHERE f.id = $1`
	f, err := scanFixture(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFixtureNotFound
		}
		return nil, err
	}
	return f, nil
}

func (r *postgresFixtureRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Fixture, error) {
	query := fixtureSelect + ` WHERE f.tournament_id = $1 ORDER BY f.round_number ASC, f.id ASC`
	return r.queryFixtures(ctx, query, tournamentID)
}

func (r *postgresFixtureRepository) ListByRound(ctx context.Context, tournamentID, roundNumber int) ([]*models.Fixture, error) {
	query := fixtureSelect + ` WHERE f.tournament_id = $1 AND f.round_number = $2 ORDER BY f.id ASC`
	return r.queryFixtures(ctx, query, tournamentID, roundNumber)
}

func (r *postgresFixtureRepository) ListCompletedByTournament(ctx context.Context, tournamentID int) ([]*models.Fixture, error) {
	query := fixtureSelect + ` WHERE f.tournament_id = $1 AND f.status = $2 ORDER BY f.round_number ASC, f.id ASC`
	return r.queryFixtures(ctx, query, tournamentID, models.FixtureCompleted)
}

func (r *postgresFixtureRepository) SubmitResult(ctx context.Context, exec SQLExecutor, fixtureID int, result FixtureResultUpdate) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE fixtures SET
			home_legs_won = $1,
			away_legs_won = $2,
			home_average = $3,
			away_average = $4,
			autodarts_game_id = $5,
			status = $6,
			played_at = $7
		WHERE id = $8 AND status <> $6`

	res, err := executor.ExecContext(ctx, query,
		result.HomeLegsWon, result.AwayLegsWon, result.HomeAverage, result.AwayAverage,
		result.AutodartsGameID, models.FixtureCompleted, result.PlayedAt, fixtureID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		// Either the fixture does not exist or it is already completed;
		// tell them apart for the caller.
		var status models.FixtureStatus
		err := executor.QueryRowContext(ctx, `SELECT status FROM fixtures WHERE id = $1`, fixtureID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrFixtureNotFound
		}
		if err != nil {
			return err
		}
		return ErrFixtureAlreadyCompleted
	}
	return nil
}

func (r *postgresFixtureRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, fixtureID int, status models.FixtureStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE fixtures SET status = $1 WHERE id = $2`, status, fixtureID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrFixtureNotFound)
}

func (r *postgresFixtureRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM fixtures WHERE tournament_id = $1`, tournamentID)
	return err
}

func (r *postgresFixtureRepository) queryFixtures(ctx context.Context, query string, args ...interface{}) ([]*models.Fixture, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fixtures := make([]*models.Fixture, 0)
	for rows.Next() {
		f, err := scanFixture(rows)
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, f)
	}
	return fixtures, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFixture(row rowScanner) (*models.Fixture, error) {
	f := &models.Fixture{HomePlayer: &models.Player{}, AwayPlayer: &models.Player{}}
	err := row.Scan(
		&f.ID, &f.TournamentID, &f.RoundNumber, &f.HomePlayerID, &f.AwayPlayerID,
		&f.HomeLegsWon, &f.AwayLegsWon, &f.HomeAverage, &f.AwayAverage,
		&f.AutodartsGameID, &f.Status, &f.PlayedAt,
		&f.HomePlayer.ID, &f.HomePlayer.DisplayName, &f.HomePlayer.AutodartsUsername,
		&f.HomePlayer.AutodartsUserID, &f.HomePlayer.AvatarKey, &f.HomePlayer.CreatedAt,
		&f.AwayPlayer.ID, &f.AwayPlayer.DisplayName, &f.AwayPlayer.AutodartsUsername,
		&f.AwayPlayer.AutodartsUserID, &f.AwayPlayer.AvatarKey, &f.AwayPlayer.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}
