package models

import "time"

// Player is a league participant. AutodartsUsername is the stable handle the
// browser extension reports; AutodartsUserID is the Autodarts account UUID,
// only known for real (non-guest) accounts and filled in lazily once a game
// report carries it.
type Player struct {
	ID                int       `json:"id" db:"id"`
	DisplayName       string    `json:"display_name" db:"display_name"`
	AutodartsUsername string    `json:"autodarts_username" db:"autodarts_username"`
	AutodartsUserID   *string   `json:"autodarts_user_id,omitempty" db:"autodarts_user_id"`
	AvatarKey         *string   `json:"-" db:"avatar_key"`
	AvatarURL         *string   `json:"avatar_url,omitempty" db:"-"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}
