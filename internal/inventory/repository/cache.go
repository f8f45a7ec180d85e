package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/stockroom/internal/inventory/domain"
	"github.com/tair/stockroom/pkg/logger"
)

const unitListPrefix = "units:list:"

// CachedUnitRepository serves unit listings from Redis and drops them on any unit write.
// A nil client turns it into a passthrough.
type CachedUnitRepository struct {
	next   domain.UnitRepository
	client *redis.Client
	ttl    time.Duration
}

func NewCachedUnitRepository(next domain.UnitRepository, client *redis.Client, ttl time.Duration) *CachedUnitRepository {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedUnitRepository{next: next, client: client, ttl: ttl}
}

func (r *CachedUnitRepository) Create(ctx context.Context, unit *domain.Unit) error {
	if err := r.next.Create(ctx, unit); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedUnitRepository) FindByID(ctx context.Context, id uint) (*domain.Unit, error) {
	return r.next.FindByID(ctx, id)
}

func (r *CachedUnitRepository) FindByCode(ctx context.Context, code string) (*domain.Unit, error) {
	return r.next.FindByCode(ctx, code)
}

func (r *CachedUnitRepository) FindAll(ctx context.Context, filter domain.UnitFilter) ([]domain.Unit, error) {
	if r.client == nil {
		return r.next.FindAll(ctx, filter)
	}

	key := unitListKey(filter)
	if cached, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var units []domain.Unit
		if err := json.Unmarshal(cached, &units); err == nil {
			logger.Logger.Debug().Str("cache_key", key).Msg("Cache hit")
			return units, nil
		}
	}

	units, err := r.next.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(units)
	if err != nil {
		return units, nil
	}
	if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		logger.Logger.Warn().Err(err).Str("cache_key", key).Msg("Failed to cache unit listing")
	}
	return units, nil
}

func (r *CachedUnitRepository) ChangeState(ctx context.Context, id uint, change func(domain.UnitState) (domain.UnitState, error)) (*domain.Unit, error) {
	unit, err := r.next.ChangeState(ctx, id, change)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx)
	return unit, nil
}

// Invalidate drops every cached unit listing
func (r *CachedUnitRepository) Invalidate(ctx context.Context) error {
	if r.client == nil {
		return nil
	}

	iter := r.client.Scan(ctx, 0, unitListPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached listings: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to drop cached listings: %w", err)
	}

	logger.Logger.Debug().Int("count", len(keys)).Msg("Unit listing cache invalidated")
	return nil
}

func (r *CachedUnitRepository) invalidate(ctx context.Context) {
	if err := r.Invalidate(ctx); err != nil {
		logger.Logger.Warn().Err(err).Msg("Failed to invalidate unit listing cache")
	}
}

func unitListKey(filter domain.UnitFilter) string {
	raw := fmt.Sprintf("%s|%d|%s|%s|%d|%d",
		filter.State, filter.ProductID, filter.Location, filter.Query, filter.Limit, filter.Offset)
	hash := sha256.Sum256([]byte(raw))
	return unitListPrefix + hex.EncodeToString(hash[:])
}
