package auth

import (
	"context"
	"errors"

	"inteldesk/internal/features/audit"
	"inteldesk/internal/features/user"
	"inteldesk/pkg/utils"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *user.User, error)
}

type AuthServiceImpl struct {
	userRepo user.UserRepository
	auditor  audit.AuditService
}

func NewAuthService(userRepo user.UserRepository, auditor audit.AuditService) AuthService {
	return &AuthServiceImpl{userRepo: userRepo, auditor: auditor}
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if u == nil || !u.IsActive {
		return "", nil, ErrInvalidCredentials
	}

	if !utils.CheckPassword(u.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(u.ID, u.Email, u.Role)
	if err != nil {
		return "", nil, err
	}

	s.auditor.LogAction(u.ID.Hex(), audit.ActionLogin, "user", u.ID.Hex(), "")

	return token, u, nil
}
