package database

import (
	"context"
	"testing"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	ann := createUser(t, db, "Ann", "ann@example.com")
	assert.NotZero(t, ann.ID)

	got, err := db.GetUserByID(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, *ann, *got)

	t.Run("DuplicateEmail", func(t *testing.T) {
		err := db.CreateUser(ctx, &models.User{Name: "Other", Email: "ann@example.com"})
		assert.ErrorIs(t, err, domain.ErrEmailExists)
	})

	t.Run("EmailTaken", func(t *testing.T) {
		taken, err := db.EmailTaken(ctx, "ann@example.com", 0)
		require.NoError(t, err)
		assert.True(t, taken)

		taken, err = db.EmailTaken(ctx, "ann@example.com", ann.ID)
		require.NoError(t, err)
		assert.False(t, taken)
	})

	t.Run("Update", func(t *testing.T) {
		ann.Name = "Anna"
		require.NoError(t, db.UpdateUser(ctx, ann))

		got, err := db.GetUserByID(ctx, ann.ID)
		require.NoError(t, err)
		assert.Equal(t, "Anna", got.Name)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		err := db.UpdateUser(ctx, &models.User{ID: 999, Name: "x", Email: "x@example.com"})
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("ListAndDelete", func(t *testing.T) {
		createUser(t, db, "Bob", "bob@example.com")

		users, err := db.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Less(t, users[0].ID, users[1].ID)

		require.NoError(t, db.DeleteUser(ctx, ann.ID))
		_, err = db.GetUserByID(ctx, ann.ID)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		assert.ErrorIs(t, db.DeleteUser(ctx, ann.ID), domain.ErrUserNotFound)
	})
}
