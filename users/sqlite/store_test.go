package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/terrafusion/auth-gateway/internal/apperror"
	"github.com/terrafusion/auth-gateway/users"
	"github.com/terrafusion/auth-gateway/users/sqlite"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestUpsertCreatesRecord(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	created, err := store.Upsert(ctx, users.UpsertUser{
		ID:              "user-1",
		Email:           "jane@example.com",
		FirstName:       "Jane",
		LastName:        "Doe",
		ProfileImageURL: "https://img.example.com/jane.png",
	})
	require.NoError(t, err)
	require.Equal(t, "user-1", created.ID)
	require.Equal(t, "jane@example.com", created.Email)
	require.False(t, created.CreatedAt.IsZero())
	require.False(t, created.UpdatedAt.IsZero())

	got, err := store.GetByID(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, created, got)
}

func TestUpsertIdempotence(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	record := users.UpsertUser{ID: "user-1", Email: "jane@example.com", FirstName: "Jane"}

	first, err := store.Upsert(ctx, record)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	second, err := store.Upsert(ctx, record)
	require.NoError(t, err)

	// One record, created_at unchanged, updated_at non-decreasing.
	require.Equal(t, first.CreatedAt, second.CreatedAt)
	require.False(t, second.UpdatedAt.Before(first.UpdatedAt))
}

func TestUpsertUpdatesFields(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, users.UpsertUser{ID: "user-1", Email: "old@example.com"})
	require.NoError(t, err)

	updated, err := store.Upsert(ctx, users.UpsertUser{ID: "user-1", Email: "new@example.com", LastName: "Doe"})
	require.NoError(t, err)
	require.Equal(t, "new@example.com", updated.Email)
	require.Equal(t, "Doe", updated.LastName)
}

func TestGetByIDNotFound(t *testing.T) {
	store := openStore(t)

	_, err := store.GetByID(context.Background(), "missing")
	require.Error(t, err)
	require.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestUpsertRequiresID(t *testing.T) {
	store := openStore(t)

	_, err := store.Upsert(context.Background(), users.UpsertUser{})
	require.Error(t, err)
	require.True(t, apperror.IsKind(err, apperror.KindValidation))
}
