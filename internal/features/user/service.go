package user

import (
	"context"
	"fmt"

	common_models "inteldesk/internal/common/models"
	"inteldesk/pkg/utils"
)

type UserService interface {
	CreateUser(ctx context.Context, email, name, password string, role common_models.Role) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

type UserServiceImpl struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) UserService {
	return &UserServiceImpl{repo: repo}
}

func (s *UserServiceImpl) CreateUser(ctx context.Context, email, name, password string, role common_models.Role) (*User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("user %s already exists", email)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserServiceImpl) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}
