package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nkashyap/taskhub-backend/internal/apierr"
	"github.com/nkashyap/taskhub-backend/internal/logger"
	"github.com/nkashyap/taskhub-backend/internal/repos"
	"github.com/nkashyap/taskhub-backend/internal/requestdata"
	"github.com/nkashyap/taskhub-backend/internal/types"
)

type UserService interface {
	ListUsers(ctx context.Context) ([]types.PublicUser, error)
	GetMe(ctx context.Context) (*types.PublicUser, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{db: db, log: log.With("service", "UserService"), userRepo: userRepo}
}

func (us *userService) ListUsers(ctx context.Context) ([]types.PublicUser, error) {
	users, err := us.userRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	out := make([]types.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

func (us *userService) GetMe(ctx context.Context) (*types.PublicUser, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("missing_identity", "no authenticated caller in context")
	}
	users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if len(users) == 0 {
		return nil, apierr.NotFound("user_not_found", "user not found")
	}
	profile := users[0].Public()
	return &profile, nil
}
