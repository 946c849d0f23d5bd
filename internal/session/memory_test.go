package session

import (
	"context"
	"testing"
	"time"

	"evspare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func testSession(id string, now time.Time) *models.Session {
	user := &models.User{ID: "user-1", Email: "user@example.com", Role: models.RoleCustomer, IsActive: true}
	return models.NewSession(id, user, now, 24*time.Hour)
}

func TestMemoryStore_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)}
	store := NewMemoryStoreWithClock(clock.Now)

	sess := testSession("s1", clock.Now())
	sess.Token = "not-stored"
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", got.Email)
	assert.Empty(t, got.Token)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ExpiredSessionIsPurgedOnRead(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)}
	store := NewMemoryStoreWithClock(clock.Now)

	require.NoError(t, store.Save(ctx, testSession("s1", clock.Now())))
	clock.Advance(24 * time.Hour)

	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, store.Len())
}

func TestMemoryStore_RejectsInvalidSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := NewMemoryStoreWithClock(func() time.Time { return now })

	assert.Error(t, store.Save(ctx, testSession("", now)))
	assert.Error(t, store.Save(ctx, testSession("old", now.Add(-25*time.Hour))))
}
