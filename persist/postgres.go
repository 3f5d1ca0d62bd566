package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"goflare.io/ember"

	"gofalre.io/storefront/driver"
)

var _ Store = (*Postgres)(nil)

const (
	upsertSnapshotSQL = `
INSERT INTO storefront_snapshots (key, state, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET state = EXCLUDED.state, updated_at = now()`

	selectSnapshotSQL = `SELECT state FROM storefront_snapshots WHERE key = $1`

	deleteSnapshotSQL = `DELETE FROM storefront_snapshots WHERE key = $1`
)

const cacheTTL = 30 * time.Minute

// Postgres persists snapshots in a single jsonb table, with a read-through
// cache in front of it.
type Postgres struct {
	conn   driver.PostgresPool
	tm     *driver.TransactionManager
	cache  *ember.Ember
	logger *zap.Logger
}

func NewPostgres(conn driver.PostgresPool, cache *ember.Ember, logger *zap.Logger) *Postgres {
	return &Postgres{
		conn:   conn,
		tm:     driver.NewTransactionManager(conn, logger),
		cache:  cache,
		logger: logger,
	}
}

func (p *Postgres) Save(ctx context.Context, scope string, partition Partition, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := Key(scope, partition)
	err = p.tm.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, upsertSnapshotSQL, key, b)
		return execErr
	})
	if err != nil {
		p.logger.Error("Failed to save snapshot", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	// 更新快取
	if err = p.cache.Set(ctx, key, json.RawMessage(b), cacheTTL); err != nil {
		p.logger.Warn("Failed to cache snapshot", zap.Error(err))
	}

	return nil
}

func (p *Postgres) Load(ctx context.Context, scope string, partition Partition, out any) error {
	key := Key(scope, partition)

	// 嘗試從快取中獲取
	var cached json.RawMessage
	found, err := p.cache.Get(ctx, key, &cached)
	if err != nil {
		p.logger.Warn("Failed to get snapshot from cache", zap.Error(err))
	}
	if found {
		return json.Unmarshal(cached, out)
	}

	var b []byte
	err = p.conn.QueryRow(ctx, selectSnapshotSQL, key).Scan(&b)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		p.logger.Error("Failed to load snapshot", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	// 更新快取
	if cacheErr := p.cache.Set(ctx, key, json.RawMessage(b), cacheTTL); cacheErr != nil {
		p.logger.Warn("Failed to cache snapshot", zap.Error(cacheErr))
	}

	return json.Unmarshal(b, out)
}

func (p *Postgres) Delete(ctx context.Context, scope string, partition Partition) error {
	key := Key(scope, partition)
	err := p.tm.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, deleteSnapshotSQL, key)
		return execErr
	})
	if err != nil {
		p.logger.Error("Failed to delete snapshot", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	if err = p.cache.Delete(ctx, key); err != nil {
		p.logger.Warn("Failed to invalidate snapshot cache", zap.Error(err))
	}

	return nil
}
