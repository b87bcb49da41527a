package service

import (
	"context"
	"time"

	"github.com/laundry-service/internal/events"
	"github.com/laundry-service/internal/logger"
	"github.com/laundry-service/internal/model"
	"github.com/laundry-service/internal/repo"
	"go.uber.org/zap"
)

type StoreService struct {
	stores    repo.StoreRepository
	publisher events.Publisher
}

func NewStoreService(stores repo.StoreRepository, publisher events.Publisher) *StoreService {
	return &StoreService{stores: stores, publisher: publisher}
}

func (s *StoreService) Get(ctx context.Context, storeID string) (*model.Store, error) {
	return s.stores.GetByID(ctx, storeID)
}

func (s *StoreService) Features(ctx context.Context, storeID string) (model.Features, error) {
	store, err := s.stores.GetByID(ctx, storeID)
	if err != nil {
		return model.Features{}, err
	}
	return store.Features, nil
}

// UpdateFeatures replaces the store's feature flags. Orders already sitting in
// a status of a disabled feature keep it; only new actions are affected.
func (s *StoreService) UpdateFeatures(ctx context.Context, storeID string, f model.Features) (model.Features, error) {
	log := logger.FromContext(ctx)
	if err := s.stores.UpdateFeatures(ctx, storeID, f); err != nil {
		log.Error("postgres: failed to update features", zap.String("store_id", storeID), zap.Error(err))
		return model.Features{}, err
	}

	if s.publisher != nil {
		err := s.publisher.Publish(ctx, events.FeaturesUpdatedChannel, events.Event{StoreID: storeID, At: time.Now()})
		if err != nil {
			log.Error("failed to publish event", zap.String("channel", events.FeaturesUpdatedChannel), zap.Error(err))
		}
	}
	return f, nil
}
