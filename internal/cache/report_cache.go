package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/clinvita/clinstock/internal/config"
	"github.com/clinvita/clinstock/internal/domain"
	"github.com/redis/go-redis/v9"
)

const verificationReportKey = "verification:report"

// ReportCache holds the latest verification report. The report is recomputed
// from scratch on every run, so a short TTL is enough; imports invalidate it
// eagerly because they change the inputs.
type ReportCache interface {
	Get(ctx context.Context) ([]domain.ReportRow, bool, error)
	Set(ctx context.Context, rows []domain.ReportRow) error
	Invalidate(ctx context.Context) error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopReportCache struct{}

func NewReportCache(cfg config.CacheConfig) (ReportCache, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisReportCache{client: client, ttl: ttl}, nil
}

func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

func (c *redisReportCache) Get(ctx context.Context) ([]domain.ReportRow, bool, error) {
	payload, err := c.client.Get(ctx, verificationReportKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var rows []domain.ReportRow
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, false, fmt.Errorf("decode verification report cache: %w", err)
	}
	return rows, true, nil
}

func (c *redisReportCache) Set(ctx context.Context, rows []domain.ReportRow) error {
	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode verification report cache: %w", err)
	}
	if err := c.client.Set(ctx, verificationReportKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisReportCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, verificationReportKey).Err()
}

func (n *noopReportCache) Get(ctx context.Context) ([]domain.ReportRow, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) Set(ctx context.Context, rows []domain.ReportRow) error {
	return nil
}

func (n *noopReportCache) Invalidate(ctx context.Context) error {
	return nil
}
