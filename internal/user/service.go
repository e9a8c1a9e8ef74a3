package user

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=user
type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Username string
	Password string
	Name     string
	Email    string
	Role     Role
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*User, error) {
	if params.Username == "" || params.Password == "" || params.Name == "" {
		return nil, fmt.Errorf("username, password and name are required")
	}

	if params.Role == "" {
		params.Role = RoleUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &User{
		Username:     params.Username,
		PasswordHash: string(hash),
		Name:         params.Name,
		Email:        params.Email,
		Role:         params.Role,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// Authenticate verifies a username/password pair.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

func (s *Service) ChangePassword(ctx context.Context, id int64, password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	return s.repo.UpdatePassword(ctx, id, string(hash))
}

// EnsureAdmin creates the bootstrap administrator account when no user
// owns the given username yet. Called once at startup.
func (s *Service) EnsureAdmin(ctx context.Context, username, password, name string) error {
	_, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}

	if !errors.Is(err, ErrNotFound) {
		return err
	}

	_, err = s.Create(ctx, CreateParams{
		Username: username,
		Password: password,
		Name:     name,
		Role:     RoleAdmin,
	})

	return err
}
