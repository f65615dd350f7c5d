package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dartclub/league-system/models"
	"github.com/lib/pq"
)

var (
	ErrPlayerNotFound         = errors.New("player not found")
	ErrPlayerUsernameConflict = errors.New("autodarts username already registered")
	ErrPlayerInUse            = errors.New("player is referenced by a tournament")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	// GetByAutodartsUsername matches case-insensitively; the extension does
	// not guarantee the casing the player was registered with.
	GetByAutodartsUsername(ctx context.Context, username string) (*models.Player, error)
	GetByAutodartsUserID(ctx context.Context, userID string) (*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	UpdateAutodartsUserID(ctx context.Context, exec SQLExecutor, playerID int, userID string) error
	UpdateAvatarKey(ctx context.Context, playerID int, avatarKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const playerColumns = `id, display_name, autodarts_username, autodarts_user_id, avatar_key, created_at`

func (r *postgresPlayerRepository) Create(ctx context.Context, p *models.Player) error {
	query := `
		INSERT INTO players (display_name, autodarts_username, autodarts_user_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		p.DisplayName, p.AutodartsUsername, p.AutodartsUserID,
	).Scan(&p.ID, &p.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "players_autodarts_username_key" {
				return ErrPlayerUsernameConflict
			}
		}
		return err
	}
	return nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`
	return r.scanPlayer(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresPlayerRepository) GetByAutodartsUsername(ctx context.Context, username string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE LOWER(autodarts_username) = LOWER($1)`
	return r.scanPlayer(r.db.QueryRowContext(ctx, query, username))
}

func (r *postgresPlayerRepository) GetByAutodartsUserID(ctx context.Context, userID string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE autodarts_user_id = $1`
	return r.scanPlayer(r.db.QueryRowContext(ctx, query, userID))
}

func (r *postgresPlayerRepository) List(ctx context.Context) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY display_name ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.AutodartsUsername, &p.AutodartsUserID, &p.AvatarKey, &p.CreatedAt); err != nil {
			return nil, err
		}
		players = append(players, &p)
	}
	return players, rows.Err()
}

func (r *postgresPlayerRepository) UpdateAutodartsUserID(ctx context.Context, exec SQLExecutor, playerID int, userID string) error {
	executor := r.getExecutor(exec)
	query := `UPDATE players SET autodarts_user_id = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, userID, playerID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) UpdateAvatarKey(ctx context.Context, playerID int, avatarKey *string) error {
	query := `UPDATE players SET avatar_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, avatarKey, playerID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM players WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrPlayerInUse
		}
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) scanPlayer(row *sql.Row) (*models.Player, error) {
	p := &models.Player{}
	err := row.Scan(&p.ID, &p.DisplayName, &p.AutodartsUsername, &p.AutodartsUserID, &p.AvatarKey, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return p, nil
}
