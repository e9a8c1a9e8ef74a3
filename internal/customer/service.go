package customer

import (
	"context"
	"fmt"
)

type Repository interface {
	CreateCustomer(ctx context.Context, c *Customer) error
	GetCustomer(ctx context.Context, id int64) (*Customer, error)
	ListCustomers(ctx context.Context, query string) ([]*Customer, error)
	UpdateCustomer(ctx context.Context, c *Customer) error
	DeleteCustomer(ctx context.Context, id int64) error
	CountCustomers(ctx context.Context) (int64, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Customer, error) {
	if params.Name == "" {
		return nil, fmt.Errorf("customer name is required")
	}

	c := &Customer{
		Name:    params.Name,
		Phone:   params.Phone,
		Email:   params.Email,
		Address: params.Address,
	}
	if err := s.repo.CreateCustomer(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

func (s *Service) List(ctx context.Context, query string) ([]*Customer, error) {
	return s.repo.ListCustomers(ctx, query)
}

func (s *Service) Update(ctx context.Context, c *Customer) error {
	if c.Name == "" {
		return fmt.Errorf("customer name is required")
	}

	return s.repo.UpdateCustomer(ctx, c)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteCustomer(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.CountCustomers(ctx)
}
