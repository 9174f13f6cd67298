package repository

import (
	"context"
	"testing"

	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/model"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUserTest(t *testing.T) UserRepository {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	return NewUserRepository(testDB)
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := setupUserTest(t)
	ctx := context.Background()

	hash := "hash"
	user := &model.User{Name: "Ann", Email: "ann@example.com", PasswordHash: &hash, Role: model.RoleCustomer}
	require.NoError(t, repo.Create(ctx, user))

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", byID.Email)

	byEmail, err := repo.FindByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := setupUserTest(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.User{Name: "A", Email: "dup@example.com"}))
	err := repo.Create(ctx, &model.User{Name: "B", Email: "dup@example.com"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestUserRepository_Update(t *testing.T) {
	repo := setupUserTest(t)
	ctx := context.Background()

	user := &model.User{Name: "Old", Email: "old@example.com"}
	require.NoError(t, repo.Create(ctx, user))

	user.Name = "New"
	require.NoError(t, repo.Update(ctx, user))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", found.Name)
}
