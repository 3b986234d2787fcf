package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tareas-web/appserver/internal/store"
	"github.com/tareas-web/appserver/types"
)

func TestAccountRepositoryCreateAndGet(t *testing.T) {
	conn := newTestDB(t)
	repo := store.NewAccountRepository(conn)
	ctx := context.Background()

	created, err := repo.Create(ctx, types.Account{Username: "alice", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)
	assert.Equal(t, "hash", byName.PasswordHash)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
}

func TestAccountRepositoryNotFound(t *testing.T) {
	conn := newTestDB(t)
	repo := store.NewAccountRepository(conn)
	ctx := context.Background()

	_, err := repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = repo.GetByID(ctx, 12345)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAccountRepositoryUniqueUsername(t *testing.T) {
	conn := newTestDB(t)
	repo := store.NewAccountRepository(conn)
	ctx := context.Background()

	_, err := repo.Create(ctx, types.Account{Username: "alice", PasswordHash: "h1"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, types.Account{Username: "alice", PasswordHash: "h2"})
	require.Error(t, err)
	assert.True(t, store.IsUniqueViolation(err))

	total, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}
