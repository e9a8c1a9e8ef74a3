package settings

import (
	"context"
	"fmt"
)

type Repository interface {
	GetSettings(ctx context.Context) (*Settings, error)
	UpdateSettings(ctx context.Context, s *Settings) error
	UpdateLogo(ctx context.Context, logo string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context) (*Settings, error) {
	return s.repo.GetSettings(ctx)
}

func (s *Service) Update(ctx context.Context, settings *Settings) error {
	if settings.TaxRate.IsNegative() {
		return fmt.Errorf("tax rate must not be negative")
	}

	if settings.CompanyName == "" {
		return fmt.Errorf("company name is required")
	}

	return s.repo.UpdateSettings(ctx, settings)
}

func (s *Service) UpdateLogo(ctx context.Context, logo string) error {
	return s.repo.UpdateLogo(ctx, logo)
}
