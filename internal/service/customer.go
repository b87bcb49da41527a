package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/laundry-service/internal/logger"
	"github.com/laundry-service/internal/model"
	"github.com/laundry-service/internal/repo"
	"go.uber.org/zap"
)

type CustomerService struct {
	customers repo.CustomerRepository
	now       func() time.Time
}

func NewCustomerService(customers repo.CustomerRepository) *CustomerService {
	return &CustomerService{customers: customers, now: time.Now}
}

type CustomerRequest struct {
	Name    string  `json:"name" validate:"required,min=2,max=100"`
	Phone   string  `json:"phone" validate:"required,phone"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Address *string `json:"address" validate:"omitempty,max=500"`
	Notes   *string `json:"notes" validate:"omitempty,max=1000"`
}

func (r *CustomerRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = NormalizePhone(r.Phone)
	if r.Email != nil {
		r.Email = optional(strings.ToLower(*r.Email))
	}
	if r.Address != nil {
		r.Address = optional(*r.Address)
	}
	if r.Notes != nil {
		r.Notes = optional(*r.Notes)
	}
}

func (s *CustomerService) Create(ctx context.Context, storeID string, req CustomerRequest) (*model.Customer, error) {
	req.normalize()
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	now := s.now()
	c := &model.Customer{
		ID:        uuid.New().String(),
		StoreID:   storeID,
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.customers.Create(ctx, c); err != nil {
		logger.FromContext(ctx).Warn("postgres: failed to create customer", zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (s *CustomerService) Update(ctx context.Context, storeID, id string, req CustomerRequest) (*model.Customer, error) {
	req.normalize()
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	c, err := s.customers.GetByID(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	c.Name = req.Name
	c.Phone = req.Phone
	c.Email = req.Email
	c.Address = req.Address
	c.Notes = req.Notes
	c.UpdatedAt = s.now()
	if err := s.customers.Update(ctx, c); err != nil {
		logger.FromContext(ctx).Warn("postgres: failed to update customer", zap.String("customer_id", id), zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (s *CustomerService) Get(ctx context.Context, storeID, id string) (*model.Customer, error) {
	return s.customers.GetByID(ctx, storeID, id)
}

func (s *CustomerService) List(ctx context.Context, filter repo.CustomerFilter) ([]model.Customer, int, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	return s.customers.List(ctx, filter)
}
