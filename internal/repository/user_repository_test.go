package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArtyomSF99/url-shortener/internal/database/dbtest"
	"github.com/ArtyomSF99/url-shortener/internal/entities"
)

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository(dbtest.NewSQLite(t))
	ctx := context.Background()

	user := &entities.User{Email: "alice@example.com", PasswordHash: "$2a$04$hash"}
	require.NoError(t, repo.Create(ctx, user))
	_, err := uuid.Parse(user.ID)
	assert.NoError(t, err)

	byEmail, err := repo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, "$2a$04$hash", byEmail.PasswordHash)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)
	assert.True(t, byID.CreatedAt.Equal(user.CreatedAt))
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository(dbtest.NewSQLite(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entities.User{Email: "dup@example.com", PasswordHash: "a"}))
	err := repo.Create(ctx, &entities.User{Email: "dup@example.com", PasswordHash: "b"})

	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserRepository_NotFound(t *testing.T) {
	repo := NewUserRepository(dbtest.NewSQLite(t))
	ctx := context.Background()

	_, err := repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}
