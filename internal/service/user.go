package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cardgridgames/cardgrid-backend/internal/apperror"
	"github.com/cardgridgames/cardgrid-backend/internal/entity"
	"github.com/cardgridgames/cardgrid-backend/internal/repository"
)

type UserService interface {
	Login(ctx context.Context, email, name string) (*entity.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{
		userRepo: userRepo,
	}
}

// Login finds or registers the account for an email.
func (that *userService) Login(ctx context.Context, email, name string) (*entity.User, error) {
	user, err := that.userRepo.Find(ctx, email)
	if err == nil {
		return user, nil
	}

	if !errors.Is(err, apperror.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	user = &entity.User{Email: email, Name: name}
	if err = that.userRepo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	return user, nil
}
