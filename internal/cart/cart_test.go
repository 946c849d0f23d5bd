package cart

import (
	"context"
	"testing"
	"time"

	"evspare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	battery = &models.Product{ID: "p1", Name: "Battery", SKU: "BAT-1", Price: 1000}
	charger = &models.Product{ID: "p2", Name: "Charger", SKU: "CHG-1", Price: 250.5}
)

func TestCart_AddMergesLines(t *testing.T) {
	c := New()
	c.Add(battery)
	c.Add(battery)
	c.Add(charger)

	require.Len(t, c.Items(), 2)
	assert.Equal(t, 2, c.Items()[0].Quantity)
	assert.Equal(t, 3, c.ItemCount())
	assert.InDelta(t, 2250.5, c.Total(), 0.0001)
}

func TestCart_UpdateQuantity(t *testing.T) {
	c := New()
	c.Add(battery)
	c.Add(charger)

	assert.True(t, c.UpdateQuantity("p1", 5))
	assert.Equal(t, 6, c.ItemCount())

	assert.True(t, c.UpdateQuantity("p1", 0))
	assert.Len(t, c.Items(), 1)

	assert.True(t, c.UpdateQuantity("p2", -3))
	assert.True(t, c.Empty())

	assert.False(t, c.UpdateQuantity("missing", 1))
}

func TestCart_RemoveAndClear(t *testing.T) {
	c := New()
	c.AddQuantity(battery, 3)
	c.AddQuantity(charger, 0)
	assert.Len(t, c.Items(), 1)

	assert.False(t, c.Remove("p2"))
	assert.True(t, c.Remove("p1"))
	assert.Zero(t, c.Total())

	c.Add(charger)
	c.Clear()
	assert.Zero(t, c.ItemCount())
}

func TestCart_QuantitiesNeverBelowOne(t *testing.T) {
	c := New()
	c.Add(battery)
	c.UpdateQuantity("p1", 2)
	c.UpdateQuantity("p1", -1)
	for _, it := range c.Items() {
		assert.GreaterOrEqual(t, it.Quantity, 1)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	empty, err := store.Get(ctx, "sess")
	require.NoError(t, err)
	assert.True(t, empty.Empty())

	c := New()
	c.Add(battery)
	require.NoError(t, store.Save(ctx, "sess", c, time.Hour))

	// mutating the caller's cart does not change the stored copy
	c.Add(battery)
	got, err := store.Get(ctx, "sess")
	require.NoError(t, err)
	assert.Equal(t, 1, got.ItemCount())

	now = now.Add(time.Hour)
	got, err = store.Get(ctx, "sess")
	require.NoError(t, err)
	assert.True(t, got.Empty())

	require.NoError(t, store.Save(ctx, "sess", c, 0))
	require.NoError(t, store.Delete(ctx, "sess"))
	got, err = store.Get(ctx, "sess")
	require.NoError(t, err)
	assert.True(t, got.Empty())
}
