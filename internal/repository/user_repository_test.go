package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grassly/grassly/internal/utils"
)

func TestUserCreateAndFetch(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	id, err := repo.Create(ctx, "Alice", "Alice@Example.com", "pw123", testCost)
	require.NoError(t, err)
	require.Positive(t, id)

	// Email was normalized on insert and lookups normalize too.
	u, err := repo.GetByEmail(ctx, "ALICE@example.COM")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.False(t, u.IsAdmin)
	assert.False(t, u.CreatedAt.IsZero())

	// The stored value is a verifiable bcrypt hash, not the password.
	assert.NotEqual(t, "pw123", u.PasswordHash)
	assert.True(t, utils.VerifyPassword(u.PasswordHash, "pw123"))

	byID, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, u.Email, byID.Email)
}

func TestUserDuplicateEmail(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, "Alice", "alice@example.com", "pw123", testCost)
	require.NoError(t, err)

	_, err = repo.Create(ctx, "Imposter", "alice@example.com", "other", testCost)
	assert.ErrorIs(t, err, ErrEmailExists)

	// The second attempt must not have created a row.
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM users WHERE email='alice@example.com'").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestUserGetMissing(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepo(db)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
