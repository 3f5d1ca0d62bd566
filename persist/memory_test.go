package persist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gofalre.io/storefront/models"
)

func TestMemoryRoundTripPreservesOrder(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	want := &models.CartState{Items: []models.LineItem{
		{ID: "p2", Name: "Shirt", UnitPrice: 40.00, Quantity: 1},
		{ID: "p1", Name: "Mug", UnitPrice: 25.00, Quantity: 2},
	}}
	require.NoError(t, mem.Save(ctx, "cust_1", PartitionCart, want))

	var got models.CartState
	require.NoError(t, mem.Load(ctx, "cust_1", PartitionCart, &got))
	assert.Equal(t, want, &got)
}

func TestMemoryLoadMissingKey(t *testing.T) {
	var got models.CartState
	err := NewMemory().Load(context.Background(), "cust_1", PartitionCart, &got)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	require.NoError(t, mem.Save(ctx, "cust_1", PartitionCart, models.NewCartState()))
	require.NoError(t, mem.Delete(ctx, "cust_1", PartitionCart))

	var got models.CartState
	assert.ErrorIs(t, mem.Load(ctx, "cust_1", PartitionCart, &got), ErrNotFound)
}

func TestPartitionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	require.NoError(t, mem.Save(ctx, "cust_1", PartitionCart, models.NewCartState()))
	require.NoError(t, mem.Save(ctx, "cust_1", PartitionAuth, models.Session{Token: "tok"}))

	require.NoError(t, mem.Delete(ctx, "cust_1", PartitionCart))

	var session models.Session
	require.NoError(t, mem.Load(ctx, "cust_1", PartitionAuth, &session))
	assert.Equal(t, "tok", session.Token)
}

func TestKeyNamespacing(t *testing.T) {
	assert.Equal(t, "storefront:cust_1:cart", Key("cust_1", PartitionCart))
	assert.Equal(t, "storefront:cust_1:auth", Key("cust_1", PartitionAuth))
}
