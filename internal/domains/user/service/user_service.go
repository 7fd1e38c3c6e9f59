package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"golang.org/x/crypto/bcrypt"

	"grocery-backend/internal/domains/user/model"
	"grocery-backend/internal/domains/user/repository"
	"grocery-backend/internal/infrastructure/queue"
	"grocery-backend/internal/shared"
	"grocery-backend/internal/shared/pagination"
	"grocery-backend/pkg/jwt"
	"grocery-backend/pkg/logger"
)

type Service interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.User, *model.TokenPair, error)
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	List(ctx context.Context, req *model.ListUsersRequest, requestURL string) ([]model.User, pagination.Meta, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	users    repository.UserRepository
	tokens   *jwt.Manager
	enqueuer queue.Enqueuer
}

func NewUserService(users repository.UserRepository, tokens *jwt.Manager, enqueuer queue.Enqueuer) Service {
	return &userService{users: users, tokens: tokens, enqueuer: enqueuer}
}

// Register creates the account and queues the welcome email. The email
// is best effort: a queue outage does not fail the registration.
func (s *userService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	taken, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, model.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u := &model.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         model.RoleStaff,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	payload := shared.WelcomeEmailPayload{Email: u.Email, Name: u.Name}
	if err := s.enqueuer.Enqueue(ctx, shared.TypeEmailWelcome, payload,
		asynq.Queue(shared.QueueEmail), asynq.MaxRetry(3)); err != nil {
		logger.Error("could not enqueue welcome email for "+u.Email, err)
	}

	return u, nil
}

func (s *userService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, *model.TokenPair, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	u, err := s.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, nil, model.ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return nil, nil, model.ErrInvalidCredentials
	}

	access, err := s.tokens.GenerateAccessToken(u.ID.String(), u.Email, u.Role)
	if err != nil {
		return nil, nil, err
	}
	refresh, err := s.tokens.GenerateRefreshToken(u.ID.String(), u.Email, u.Role)
	if err != nil {
		return nil, nil, err
	}

	return u, &model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *userService) List(ctx context.Context, req *model.ListUsersRequest, requestURL string) ([]model.User, pagination.Meta, error) {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, pagination.Meta{}, err
	}

	users, total, err := s.users.List(ctx, req.Limit, pagination.Offset(req.Page, req.Limit))
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	return users, pagination.NewMeta(req.Page, req.Limit, total, requestURL), nil
}

func (s *userService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = string(hash)
	}
	u.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) Remove(ctx context.Context, id uuid.UUID) error {
	return s.users.Delete(ctx, id)
}
