package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marketplace-monetization/internal/domain/model"
	"marketplace-monetization/internal/domain/ports/repository"
	"marketplace-monetization/internal/infra/metrics"
	red "marketplace-monetization/internal/infra/redis"
)

var _ repository.FeaturedPlanRepository = (*planRepoCacheDecorator)(nil)

// planRepoCacheDecorator caches individual plans in Redis. Plans are read on
// every payment initiation and change rarely, so a short TTL plus
// write-through invalidation is enough.
type planRepoCacheDecorator struct {
	inner repository.FeaturedPlanRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewPlanRepoCacheDecorator(inner repository.FeaturedPlanRepository, cache red.RedisClient, ttl time.Duration) repository.FeaturedPlanRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &planRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func planKey(id string) string { return fmt.Sprintf("plan:%s", id) }

func (d *planRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.FeaturedPlan, error) {
	// Transactional reads bypass the cache: a caller inside a tx wants the
	// row, not a possibly stale copy.
	if tx != nil {
		return d.inner.FindByID(ctx, tx, id)
	}

	if val, err := d.cache.Get(ctx, planKey(id)); err == nil {
		var plan model.FeaturedPlan
		if json.Unmarshal([]byte(val), &plan) == nil {
			metrics.IncCacheRequest("plan", "hit")
			return &plan, nil
		}
	}

	metrics.IncCacheRequest("plan", "miss")
	plan, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(plan); err == nil {
		_ = d.cache.Set(ctx, planKey(id), b, d.ttl)
	}
	return plan, nil
}

func (d *planRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, plan *model.FeaturedPlan) error {
	if err := d.inner.Save(ctx, tx, plan); err != nil {
		return err
	}
	_ = d.cache.Del(ctx, planKey(plan.ID))
	return nil
}

func (d *planRepoCacheDecorator) Delete(ctx context.Context, tx repository.Tx, id string) error {
	if err := d.inner.Delete(ctx, tx, id); err != nil {
		return err
	}
	_ = d.cache.Del(ctx, planKey(id))
	return nil
}

func (d *planRepoCacheDecorator) ListActive(ctx context.Context, tx repository.Tx) ([]*model.FeaturedPlan, error) {
	return d.inner.ListActive(ctx, tx)
}

func (d *planRepoCacheDecorator) ListAll(ctx context.Context, tx repository.Tx) ([]*model.FeaturedPlan, error) {
	return d.inner.ListAll(ctx, tx)
}
