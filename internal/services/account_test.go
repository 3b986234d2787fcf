package services_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tareas-web/appserver/config"
	"github.com/tareas-web/appserver/internal/db"
	"github.com/tareas-web/appserver/internal/services"
	"github.com/tareas-web/appserver/internal/store"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(context.Background(), config.Config{SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestRegisterStoresDerivedHash(t *testing.T) {
	conn := newTestDB(t)
	accounts := services.NewAccountService(conn)
	ctx := context.Background()

	account, err := accounts.Register(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.NotZero(t, account.ID)
	assert.Equal(t, "alice", account.Username)
	assert.NotEmpty(t, account.PasswordHash)
	assert.NotContains(t, account.PasswordHash, "secret1")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	conn := newTestDB(t)
	accounts := services.NewAccountService(conn)
	ctx := context.Background()

	_, err := accounts.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	_, err = accounts.Register(ctx, "alice", "otra")
	assert.ErrorIs(t, err, services.ErrAlreadyExists)

	total, err := store.NewAccountRepository(conn).CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestRegisterValidation(t *testing.T) {
	conn := newTestDB(t)
	accounts := services.NewAccountService(conn)
	ctx := context.Background()

	var validation *services.ValidationError

	_, err := accounts.Register(ctx, "  ", "secret1")
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "username", validation.Field)

	_, err = accounts.Register(ctx, "alice", "")
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "password", validation.Field)
}

func TestAuthenticateUniformFailure(t *testing.T) {
	conn := newTestDB(t)
	accounts := services.NewAccountService(conn)
	ctx := context.Background()

	_, err := accounts.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	// Wrong password and unknown username fail identically.
	_, wrongPassword := accounts.Authenticate(ctx, "alice", "wrong")
	_, unknownUser := accounts.Authenticate(ctx, "mallory", "secret1")
	assert.ErrorIs(t, wrongPassword, services.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, services.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword, unknownUser)

	account, err := accounts.Authenticate(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", account.Username)
}
