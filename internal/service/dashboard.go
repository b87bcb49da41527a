package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/laundry-service/internal/logger"
	"github.com/laundry-service/internal/model"
	"github.com/laundry-service/internal/repo"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const recentOrdersLimit = 10

type DashboardStats struct {
	StatusCounts       []repo.StatusCount `json:"statusCounts"`
	ActiveOrders       int                `json:"activeOrders"`
	ReadyForPickup     int                `json:"readyForPickup"`
	AtWorkshop         int                `json:"atWorkshop"`
	OrdersToday        int                `json:"ordersToday"`
	RevenueToday       decimal.Decimal    `json:"revenueToday"`
	OutstandingBalance decimal.Decimal    `json:"outstandingBalance"`
	RecentOrders       []model.Order      `json:"recentOrders"`
	GeneratedAt        time.Time          `json:"generatedAt"`
}

// DashboardService aggregates per-store counters and caches them in Redis.
// The cache is dropped by the event consumer whenever an order changes.
type DashboardService struct {
	repo  repo.DashboardRepository
	cache *redis.Client
	ttl   time.Duration
	now   func() time.Time
}

func NewDashboardService(r repo.DashboardRepository, cache *redis.Client, ttl time.Duration) *DashboardService {
	return &DashboardService{repo: r, cache: cache, ttl: ttl, now: time.Now}
}

func cacheKey(storeID string) string {
	return "dashboard:stats:" + storeID
}

func (s *DashboardService) Stats(ctx context.Context, storeID string) (*DashboardStats, error) {
	log := logger.FromContext(ctx)

	if s.cache != nil {
		raw, err := s.cache.Get(ctx, cacheKey(storeID)).Bytes()
		switch {
		case err == nil:
			var stats DashboardStats
			if err := json.Unmarshal(raw, &stats); err == nil {
				return &stats, nil
			}
			log.Warn("discarding unreadable dashboard cache", zap.String("store_id", storeID))
		case !errors.Is(err, redis.Nil):
			log.Warn("redis: failed to read dashboard cache", zap.Error(err))
		}
	}

	stats, err := s.compute(ctx, storeID)
	if err != nil {
		log.Error("postgres: failed to compute dashboard", zap.String("store_id", storeID), zap.Error(err))
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, cacheKey(storeID), data, s.ttl).Err(); err != nil {
				log.Warn("redis: failed to write dashboard cache", zap.Error(err))
			}
		}
	}
	return stats, nil
}

func (s *DashboardService) compute(ctx context.Context, storeID string) (*DashboardStats, error) {
	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	stats := &DashboardStats{GeneratedAt: now}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.repo.CountByStatus(gctx, storeID)
		stats.StatusCounts = counts
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountCreatedSince(gctx, storeID, startOfDay)
		stats.OrdersToday = n
		return err
	})
	g.Go(func() error {
		rev, err := s.repo.RevenueSince(gctx, storeID, startOfDay)
		stats.RevenueToday = rev
		return err
	})
	g.Go(func() error {
		bal, err := s.repo.OutstandingBalance(gctx, storeID)
		stats.OutstandingBalance = bal
		return err
	})
	g.Go(func() error {
		recent, err := s.repo.RecentOrders(gctx, storeID, recentOrdersLimit)
		stats.RecentOrders = recent
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, c := range stats.StatusCounts {
		switch c.Status {
		case model.StatusCompleted, model.StatusCancelled:
		default:
			stats.ActiveOrders += c.Count
		}
		switch c.Status {
		case model.StatusReady:
			stats.ReadyForPickup = c.Count
		case model.StatusAtWorkshop:
			stats.AtWorkshop = c.Count
		}
	}
	return stats, nil
}

// Invalidate drops the cached stats of one store.
func (s *DashboardService) Invalidate(ctx context.Context, storeID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, cacheKey(storeID)).Err()
}
