package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ Store = (*Redis)(nil)

// snapshotTTL matches the cart abandonment horizon: a snapshot untouched for
// a week expires with the cart it mirrors.
const snapshotTTL = 7 * 24 * time.Hour

// Redis persists snapshots in Redis with a rolling TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedis(client *redis.Client, logger *zap.Logger) *Redis {
	return &Redis{
		client: client,
		ttl:    snapshotTTL,
		logger: logger,
	}
}

func (r *Redis) Save(ctx context.Context, scope string, partition Partition, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err = r.client.Set(ctx, Key(scope, partition), b, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save snapshot", zap.Error(err), zap.String("partition", string(partition)))
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

func (r *Redis) Load(ctx context.Context, scope string, partition Partition, out any) error {
	b, err := r.client.Get(ctx, Key(scope, partition)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to load snapshot", zap.Error(err), zap.String("partition", string(partition)))
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	return json.Unmarshal(b, out)
}

func (r *Redis) Delete(ctx context.Context, scope string, partition Partition) error {
	if err := r.client.Del(ctx, Key(scope, partition)).Err(); err != nil {
		r.logger.Error("Failed to delete snapshot", zap.Error(err), zap.String("partition", string(partition)))
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
