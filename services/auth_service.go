package services

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// AuthService verifies the league admin password. There is a single admin
// identity; its bcrypt hash comes from the environment. Token issuance
// lives in the auth handler.
type AuthService interface {
	VerifyAdminPassword(ctx context.Context, password string) error
}

type authService struct {
	adminPasswordHash []byte
}

func NewAuthService(adminPasswordHash string) AuthService {
	return &authService{adminPasswordHash: []byte(adminPasswordHash)}
}

func (s *authService) VerifyAdminPassword(_ context.Context, password string) error {
	if len(s.adminPasswordHash) == 0 || password == "" {
		return ErrInvalidCredentials
	}
	err := bcrypt.CompareHashAndPassword(s.adminPasswordHash, []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		return err
	}
	return nil
}
