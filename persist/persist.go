// Package persist is the durable key-value store the storefront state is
// mirrored into. State is persisted as one JSON snapshot per partition under
// a namespaced key; the cart and auth partitions are deliberately separate so
// clearing one never touches the other.
package persist

import (
	"context"
	"errors"
	"fmt"
)

// Partition names one slice of the persisted root state.
type Partition string

const (
	PartitionCart Partition = "cart"
	PartitionAuth Partition = "auth"
)

// ErrNotFound is returned by Load when no snapshot exists for the key.
var ErrNotFound = errors.New("snapshot not found")

// Store persists JSON snapshots keyed by scope and partition. Scope is
// typically the session or customer id.
type Store interface {
	Save(ctx context.Context, scope string, partition Partition, value any) error
	Load(ctx context.Context, scope string, partition Partition, out any) error
	Delete(ctx context.Context, scope string, partition Partition) error
}

const namespace = "storefront"

// Key builds the storage key for a scope and partition.
func Key(scope string, partition Partition) string {
	return fmt.Sprintf("%s:%s:%s", namespace, scope, partition)
}
