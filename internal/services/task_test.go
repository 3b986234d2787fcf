package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tareas-web/appserver/internal/services"
	"github.com/tareas-web/appserver/types"
)

func registerOwner(t *testing.T, accounts *services.AccountService, username string) types.Account {
	t.Helper()
	account, err := accounts.Register(context.Background(), username, "secret1")
	require.NoError(t, err)
	return account
}

func validInput() services.TaskInput {
	return services.TaskInput{
		Title:    "Buy milk",
		DueDate:  "2025-01-01",
		Category: "personal",
	}
}

func TestCreateValidation(t *testing.T) {
	conn := newTestDB(t)
	tasks := services.NewTaskService(conn)
	alice := registerOwner(t, services.NewAccountService(conn), "alice")
	ctx := context.Background()

	cases := []struct {
		name  string
		mod   func(*services.TaskInput)
		field string
	}{
		{"missing title", func(in *services.TaskInput) { in.Title = " " }, "titulo"},
		{"missing due date", func(in *services.TaskInput) { in.DueDate = "" }, "fecha_limite"},
		{"malformed due date", func(in *services.TaskInput) { in.DueDate = "01/01/2025" }, "fecha_limite"},
		{"missing category", func(in *services.TaskInput) { in.Category = "" }, "categoria"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mod(&in)

			_, err := tasks.Create(ctx, alice.ID, in)
			var validation *services.ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tc.field, validation.Field)
		})
	}

	// Nothing was persisted by the rejected inputs.
	listed, err := tasks.List(ctx, alice.ID, "", "recientes")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestCreateAndList(t *testing.T) {
	conn := newTestDB(t)
	tasks := services.NewTaskService(conn)
	alice := registerOwner(t, services.NewAccountService(conn), "alice")
	ctx := context.Background()

	created, err := tasks.Create(ctx, alice.ID, services.TaskInput{
		Title:       "Buy milk",
		Description: "two liters",
		DueDate:     "2025-01-01",
		Category:    "personal",
	})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, created.AccountID)
	assert.False(t, created.Completed)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, "2025-01-01", created.DueDate.Format(services.DateLayout))

	listed, err := tasks.List(ctx, alice.ID, "", "recientes")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Buy milk", listed[0].Title)
}

func TestEditDefaultsCategory(t *testing.T) {
	conn := newTestDB(t)
	tasks := services.NewTaskService(conn)
	alice := registerOwner(t, services.NewAccountService(conn), "alice")
	ctx := context.Background()

	created, err := tasks.Create(ctx, alice.ID, validInput())
	require.NoError(t, err)
	assert.Equal(t, "personal", created.Category)

	// Omitting the category on edit falls back to the default, even
	// though creation requires it.
	edited, err := tasks.Edit(ctx, created.ID, alice.ID, services.TaskInput{Title: "Buy milk"})
	require.NoError(t, err)
	assert.Equal(t, services.DefaultCategory, edited.Category)

	// The stored due date survives an edit that omits it.
	got, err := tasks.Get(ctx, created.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, "2025-01-01", got.DueDate.Format(services.DateLayout))
}

func TestEditValidation(t *testing.T) {
	conn := newTestDB(t)
	tasks := services.NewTaskService(conn)
	alice := registerOwner(t, services.NewAccountService(conn), "alice")
	ctx := context.Background()

	created, err := tasks.Create(ctx, alice.ID, validInput())
	require.NoError(t, err)

	var validation *services.ValidationError
	_, err = tasks.Edit(ctx, created.ID, alice.ID, services.TaskInput{Title: ""})
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "titulo", validation.Field)

	_, err = tasks.Edit(ctx, created.ID, alice.ID, services.TaskInput{Title: "x", DueDate: "mañana"})
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "fecha_limite", validation.Field)
}

func TestOwnershipEnforcedOnAllMutations(t *testing.T) {
	conn := newTestDB(t)
	accounts := services.NewAccountService(conn)
	tasks := services.NewTaskService(conn)
	alice := registerOwner(t, accounts, "alice")
	bob := registerOwner(t, accounts, "bob")
	ctx := context.Background()

	created, err := tasks.Create(ctx, alice.ID, validInput())
	require.NoError(t, err)

	_, err = tasks.Get(ctx, created.ID, bob.ID)
	assert.ErrorIs(t, err, services.ErrForbidden)
	_, err = tasks.Edit(ctx, created.ID, bob.ID, services.TaskInput{Title: "hacked"})
	assert.ErrorIs(t, err, services.ErrForbidden)
	_, err = tasks.Toggle(ctx, created.ID, bob.ID)
	assert.ErrorIs(t, err, services.ErrForbidden)
	assert.ErrorIs(t, tasks.Delete(ctx, created.ID, bob.ID), services.ErrForbidden)

	// Bob's list never contains Alice's task.
	listed, err := tasks.List(ctx, bob.ID, "", "recientes")
	require.NoError(t, err)
	assert.Empty(t, listed)

	// The failed mutations left no side effects.
	got, err := tasks.Get(ctx, created.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got.Title)
	assert.False(t, got.Completed)
}

func TestToggleIsInvolution(t *testing.T) {
	conn := newTestDB(t)
	tasks := services.NewTaskService(conn)
	alice := registerOwner(t, services.NewAccountService(conn), "alice")
	ctx := context.Background()

	created, err := tasks.Create(ctx, alice.ID, validInput())
	require.NoError(t, err)

	once, err := tasks.Toggle(ctx, created.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, once.Completed)
	assert.Equal(t, created.Title, once.Title)

	twice, err := tasks.Toggle(ctx, created.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, twice.Completed)
}

func TestDeleteThenGone(t *testing.T) {
	conn := newTestDB(t)
	tasks := services.NewTaskService(conn)
	alice := registerOwner(t, services.NewAccountService(conn), "alice")
	ctx := context.Background()

	created, err := tasks.Create(ctx, alice.ID, validInput())
	require.NoError(t, err)
	require.NoError(t, tasks.Delete(ctx, created.ID, alice.ID))

	_, err = tasks.Edit(ctx, created.ID, alice.ID, services.TaskInput{Title: "x"})
	assert.ErrorIs(t, err, services.ErrNotFound)
	_, err = tasks.Toggle(ctx, created.ID, alice.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.ErrorIs(t, tasks.Delete(ctx, created.ID, alice.ID), services.ErrNotFound)
}

func TestListUnknownOrderFallsBack(t *testing.T) {
	conn := newTestDB(t)
	tasks := services.NewTaskService(conn)
	alice := registerOwner(t, services.NewAccountService(conn), "alice")
	ctx := context.Background()

	for _, title := range []string{"uno", "dos", "tres"} {
		in := validInput()
		in.Title = title
		_, err := tasks.Create(ctx, alice.ID, in)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	recent, err := tasks.List(ctx, alice.ID, "", "recientes")
	require.NoError(t, err)
	unknown, err := tasks.List(ctx, alice.ID, "", "zzz")
	require.NoError(t, err)

	require.Len(t, recent, 3)
	assert.Equal(t, recent, unknown)
	assert.Equal(t, "tres", recent[0].Title)
}

func TestListStoreUnavailable(t *testing.T) {
	conn := newTestDB(t)
	tasks := services.NewTaskService(conn)
	alice := registerOwner(t, services.NewAccountService(conn), "alice")

	require.NoError(t, conn.Close())

	_, err := tasks.List(context.Background(), alice.ID, "", "recientes")
	assert.True(t, errors.Is(err, services.ErrStoreUnavailable))
}
