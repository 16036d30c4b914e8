package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"vitals-monitor/config"
	"vitals-monitor/models"
)

type RedisClient struct {
	client      *redis.Client
	ttl         time.Duration
	recentLimit int
}

func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}

	ttl := cfg.ResultTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	limit := cfg.RecentLimit
	if limit <= 0 {
		limit = 100
	}

	return &RedisClient{
		client:      rdb,
		ttl:         ttl,
		recentLimit: limit,
	}, nil
}

func (rc *RedisClient) Close() error {
	return rc.client.Close()
}

func latestKey(userID string) string {
	return "analysis:" + userID
}

func recentKey(userID string) string {
	return "analysis:recent:" + userID
}

// SaveAnalysis stores the result as the subject's latest analysis and
// prepends it to the capped list of recent analyses.
func (rc *RedisClient) SaveAnalysis(ctx context.Context, userID string, result models.AnalysisResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	pipe := rc.client.TxPipeline()
	pipe.Set(ctx, latestKey(userID), data, rc.ttl)
	pipe.LPush(ctx, recentKey(userID), data)
	pipe.LTrim(ctx, recentKey(userID), 0, int64(rc.recentLimit-1))
	_, err = pipe.Exec(ctx)
	return err
}

// GetAnalysis returns nil, nil when nothing is stored for the subject.
func (rc *RedisClient) GetAnalysis(ctx context.Context, userID string) (*models.AnalysisResult, error) {
	val, err := rc.client.Get(ctx, latestKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetRecentAnalyses returns up to limit results, newest first.
func (rc *RedisClient) GetRecentAnalyses(ctx context.Context, userID string, limit int) ([]models.AnalysisResult, error) {
	if limit <= 0 || limit > rc.recentLimit {
		limit = rc.recentLimit
	}

	vals, err := rc.client.LRange(ctx, recentKey(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	results := make([]models.AnalysisResult, 0, len(vals))
	for _, val := range vals {
		var result models.AnalysisResult
		if err := json.Unmarshal([]byte(val), &result); err != nil {
			return nil, fmt.Errorf("decode recent analysis for %s: %w", userID, err)
		}
		results = append(results, result)
	}
	return results, nil
}
