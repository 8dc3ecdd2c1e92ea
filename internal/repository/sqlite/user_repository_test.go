package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-service/internal/domain"
	"quiz-service/internal/repository"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewUserRepository(openTestDB(t))
	require.NoError(t, repo.Init(ctx))

	user := &domain.User{Username: "alice", PasswordHash: "hash"}
	id, err := repo.Create(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, id, byName.ID)
	assert.Equal(t, "hash", byName.PasswordHash)

	byID, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewUserRepository(openTestDB(t))
	require.NoError(t, repo.Init(ctx))

	_, err := repo.Create(ctx, &domain.User{Username: "alice", PasswordHash: "h1"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.User{Username: "alice", PasswordHash: "h2"})
	require.ErrorIs(t, err, repository.ErrUserExists)
}

func TestUserRepository_NotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewUserRepository(openTestDB(t))
	require.NoError(t, repo.Init(ctx))

	_, err := repo.GetByUsername(ctx, "ghost")
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetByID(ctx, 404)
	require.ErrorIs(t, err, repository.ErrNotFound)
}
