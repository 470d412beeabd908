package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/hosteline/epass-server/internal/users"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type RegisterInput struct {
	Username    string
	Password    string
	Name        string
	PhoneNumber string
	RoomNo      string
	Hostel      string
}

type RegisterResult struct {
	ID       string
	Username string
	Role     string
}

type Service struct {
	store  users.Store
	config JWTConfig
}

func NewService(store users.Store, config JWTConfig) *Service {
	return &Service{
		store:  store,
		config: config,
	}
}

// Register creates a resident account. Wardens and guards are provisioned by
// the migration seed, not through self-registration.
func (s *Service) Register(ctx context.Context, input RegisterInput) (RegisterResult, error) {
	hash, err := users.HashPassword(input.Password)
	if err != nil {
		return RegisterResult{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, &users.User{
		Username:     input.Username,
		PasswordHash: hash,
		Role:         RoleStudent,
		Name:         input.Name,
		PhoneNumber:  input.PhoneNumber,
		RoomNo:       input.RoomNo,
		Hostel:       input.Hostel,
	})
	if err != nil {
		if errors.Is(err, users.ErrUsernameExists) {
			return RegisterResult{}, users.ErrUsernameExists
		}
		return RegisterResult{}, fmt.Errorf("create user: %w", err)
	}

	return RegisterResult{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

// Login checks credentials and issues a session token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("query user: %w", err)
	}

	if !users.CheckPassword(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	token, err := GenerateToken(s.config, user.ID, user.Username, user.Role)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	return token, nil
}

// Profile returns the user record for an authenticated identity.
func (s *Service) Profile(ctx context.Context, identity Identity) (*users.User, error) {
	user, err := s.store.GetUserByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, users.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}
