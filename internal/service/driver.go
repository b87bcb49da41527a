package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/laundry-service/internal/model"
	"github.com/laundry-service/internal/repo"
)

type DriverService struct {
	drivers repo.DriverRepository
	now     func() time.Time
}

func NewDriverService(drivers repo.DriverRepository) *DriverService {
	return &DriverService{drivers: drivers, now: time.Now}
}

type DriverRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Phone string `json:"phone" validate:"required,phone"`
}

func (s *DriverService) Create(ctx context.Context, storeID string, req DriverRequest) (*model.Driver, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = NormalizePhone(req.Phone)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	d := &model.Driver{
		ID:        uuid.New().String(),
		StoreID:   storeID,
		Name:      req.Name,
		Phone:     req.Phone,
		Active:    true,
		CreatedAt: s.now(),
	}
	if err := s.drivers.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DriverService) List(ctx context.Context, storeID string) ([]model.Driver, error) {
	return s.drivers.List(ctx, storeID)
}
