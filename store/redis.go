package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cenkalti/backoff"
	"github.com/redis/go-redis/v9"

	"github.com/machshop/spc"
)

const (
	configKeyPrefix    = "spc:config:"
	violationKeyPrefix = "spc:violations:"
)

// Redis persists configurations as JSON strings and violations as a
// per-parameter sorted set scored by analysis time
type Redis struct {
	client *redis.Client
}

var _ Store = &Redis{}

// NewRedis connects to Redis, retrying the initial ping with exponential
// backoff so the service survives a store that comes up after it
func NewRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ping := func() error {
		return client.Ping(ctx).Err()
	}
	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
	if err := backoff.Retry(ping, backoff.WithContext(policy, ctx)); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &Redis{client: client}, nil
}

func (r *Redis) SaveConfig(ctx context.Context, cfg *spc.Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config for %s: %w", cfg.ParameterID, err)
	}
	return r.client.Set(ctx, configKeyPrefix+cfg.ParameterID, data, 0).Err()
}

func (r *Redis) GetConfig(ctx context.Context, parameterID string) (*spc.Config, error) {
	data, err := r.client.Get(ctx, configKeyPrefix+parameterID).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("parameter %s: %w", parameterID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var cfg spc.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config for %s: %w", parameterID, err)
	}
	return &cfg, nil
}

// Deactivate flips the configuration inactive in place.  Configurations
// are never physically removed since stored violations must remain
// attributable to them.
func (r *Redis) Deactivate(ctx context.Context, parameterID string) error {
	cfg, err := r.GetConfig(ctx, parameterID)
	if err != nil {
		return err
	}
	cfg.Active = false
	return r.SaveConfig(ctx, cfg)
}

func (r *Redis) SaveViolations(ctx context.Context, records []ViolationRecord) error {
	if len(records) == 0 {
		return nil
	}
	pipe := r.client.Pipeline()
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal violation %s: %w", rec.ID, err)
		}
		pipe.ZAdd(ctx, violationKeyPrefix+rec.ParameterID, redis.Z{
			Score:  float64(rec.RecordedAt.UnixNano()),
			Member: data,
		})
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *Redis) RecentViolations(ctx context.Context, parameterID string, limit int) ([]ViolationRecord, error) {
	members, err := r.client.ZRevRange(ctx, violationKeyPrefix+parameterID, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]ViolationRecord, 0, len(members))
	for _, m := range members {
		var rec ViolationRecord
		if err := json.Unmarshal([]byte(m), &rec); err != nil {
			return nil, fmt.Errorf("corrupt violation record for %s: %w", parameterID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Ping reports store availability for health checks
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the connection pool
func (r *Redis) Close() error {
	return r.client.Close()
}
