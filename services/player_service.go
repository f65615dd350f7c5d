package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dartclub/league-system/models"
	"github.com/dartclub/league-system/repositories"
	"github.com/dartclub/league-system/storage"
)

type CreatePlayerInput struct {
	DisplayName       string  `json:"display_name"`
	AutodartsUsername string  `json:"autodarts_username"`
	AutodartsUserID   *string `json:"autodarts_user_id"`
}

type PlayerService interface {
	// CreatePlayer registers a player, or returns the existing one when the
	// autodarts username is already known. An existing player without an
	// account UUID picks it up from the request. The bool reports whether a
	// new player was created.
	CreatePlayer(ctx context.Context, input CreatePlayerInput) (*models.Player, bool, error)
	GetPlayer(ctx context.Context, id int) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]*models.Player, error)
	DeletePlayer(ctx context.Context, id int) error
	UploadAvatar(ctx context.Context, playerID int, contentType string, file io.Reader) (*models.Player, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	uploader   storage.FileUploader
}

func NewPlayerService(playerRepo repositories.PlayerRepository, uploader storage.FileUploader) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
		uploader:   uploader,
	}
}

func (s *playerService) CreatePlayer(ctx context.Context, input CreatePlayerInput) (*models.Player, bool, error) {
	username := strings.TrimSpace(input.AutodartsUsername)
	if username == "" {
		return nil, false, ErrPlayerUsernameRequired
	}

	existing, err := s.playerRepo.GetByAutodartsUsername(ctx, username)
	if err == nil {
		if existing.AutodartsUserID == nil && input.AutodartsUserID != nil {
			if err := s.playerRepo.UpdateAutodartsUserID(ctx, nil, existing.ID, *input.AutodartsUserID); err != nil {
				return nil, false, fmt.Errorf("failed to update autodarts id for player %d: %w", existing.ID, err)
			}
			existing.AutodartsUserID = input.AutodartsUserID
		}
		return s.withAvatarURL(existing), false, nil
	}
	if !errors.Is(err, repositories.ErrPlayerNotFound) {
		return nil, false, fmt.Errorf("failed to look up player by username %q: %w", username, err)
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = username
	}

	player := &models.Player{
		DisplayName:       displayName,
		AutodartsUsername: username,
		AutodartsUserID:   input.AutodartsUserID,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerUsernameConflict) {
			return nil, false, ErrPlayerUsernameConflict
		}
		return nil, false, fmt.Errorf("failed to create player: %w", err)
	}
	return player, true, nil
}

func (s *playerService) GetPlayer(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %d: %w", id, err)
	}
	return s.withAvatarURL(player), nil
}

func (s *playerService) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	for _, p := range players {
		s.withAvatarURL(p)
	}
	return players, nil
}

func (s *playerService) DeletePlayer(ctx context.Context, id int) error {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to get player %d: %w", id, err)
	}

	if err := s.playerRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPlayerNotFound):
			return ErrPlayerNotFound
		case errors.Is(err, repositories.ErrPlayerInUse):
			return ErrPlayerInUse
		default:
			return fmt.Errorf("failed to delete player %d: %w", id, err)
		}
	}

	// Remove the stored avatar best-effort; the player row is already gone.
	if s.uploader != nil && player.AvatarKey != nil {
		_ = s.uploader.Delete(ctx, *player.AvatarKey)
	}
	return nil
}

func (s *playerService) UploadAvatar(ctx context.Context, playerID int, contentType string, file io.Reader) (*models.Player, error) {
	if s.uploader == nil {
		return nil, ErrUploaderDisabled
	}

	player, err := s.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("players/%d/avatar_%d", playerID, time.Now().Unix())
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar for player %d: %w", playerID, err)
	}

	oldKey := player.AvatarKey
	if err := s.playerRepo.UpdateAvatarKey(ctx, playerID, &result.Key); err != nil {
		_ = s.uploader.Delete(ctx, result.Key)
		return nil, fmt.Errorf("failed to store avatar key for player %d: %w", playerID, err)
	}
	if oldKey != nil && *oldKey != result.Key {
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	player.AvatarKey = &result.Key
	return s.withAvatarURL(player), nil
}

func (s *playerService) withAvatarURL(player *models.Player) *models.Player {
	if s.uploader != nil && player.AvatarKey != nil {
		url := s.uploader.GetPublicURL(*player.AvatarKey)
		if url != "" {
			player.AvatarURL = &url
		}
	}
	return player
}
