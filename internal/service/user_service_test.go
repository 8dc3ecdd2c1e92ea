package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-service/internal/auth"
	"quiz-service/internal/domain"
	"quiz-service/internal/repository"
	"quiz-service/internal/service"
)

// mockUserRepo is an in-memory UserRepository.
type mockUserRepo struct {
	users  map[string]*domain.User
	nextID int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[string]*domain.User{}, nextID: 1}
}

func (m *mockUserRepo) Init(_ context.Context) error { return nil }

func (m *mockUserRepo) Create(_ context.Context, user *domain.User) (int64, error) {
	if _, exists := m.users[user.Username]; exists {
		return 0, repository.ErrUserExists
	}
	user.ID = m.nextID
	m.nextID++
	stored := *user
	m.users[user.Username] = &stored
	return user.ID, nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	user, ok := m.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	userCopy := *user
	return &userCopy, nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			userCopy := *user
			return &userCopy, nil
		}
	}
	return nil, repository.ErrNotFound
}

const testSecret = "test-secret"

func newUserService(repo repository.UserRepository) service.UserService {
	return service.NewUserService(repo, testSecret, 30*time.Minute)
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()

	repo := newMockUserRepo()
	svc := newUserService(repo)

	user, err := svc.Register(context.Background(), "alice", "Passw0rd!")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotZero(t, user.ID)
	assert.Empty(t, user.PasswordHash, "hash must not leak from the service")

	stored, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "Passw0rd!", stored.PasswordHash)
	assert.True(t, auth.CheckPassword("Passw0rd!", stored.PasswordHash))
}

func TestRegister_WeakPassword(t *testing.T) {
	t.Parallel()

	svc := newUserService(newMockUserRepo())

	_, err := svc.Register(context.Background(), "alice", "short")
	require.Error(t, err)

	var policyErr *auth.PolicyError
	require.ErrorAs(t, err, &policyErr)
	assert.Contains(t, policyErr.Reason, "at least 8 characters")
}

func TestRegister_DuplicateUsername(t *testing.T) {
	t.Parallel()

	svc := newUserService(newMockUserRepo())

	_, err := svc.Register(context.Background(), "alice", "Passw0rd!")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "alice", "Other0ne!")
	require.ErrorIs(t, err, service.ErrUserAlreadyExists)
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	svc := newUserService(newMockUserRepo())

	user, err := svc.Register(context.Background(), "alice", "Passw0rd!")
	require.NoError(t, err)

	token, err := svc.Login(context.Background(), "alice", "Passw0rd!")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auth.ParseToken(token, []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestLogin_UniformInvalidCredentials(t *testing.T) {
	t.Parallel()

	svc := newUserService(newMockUserRepo())

	_, err := svc.Register(context.Background(), "alice", "Passw0rd!")
	require.NoError(t, err)

	_, wrongPassErr := svc.Login(context.Background(), "alice", "wrong")
	require.ErrorIs(t, wrongPassErr, service.ErrInvalidCredentials)

	_, unknownUserErr := svc.Login(context.Background(), "ghost", "anything")
	require.ErrorIs(t, unknownUserErr, service.ErrInvalidCredentials)

	// same error message regardless of cause, no username embedded
	assert.Equal(t, wrongPassErr.Error(), unknownUserErr.Error())
	assert.NotContains(t, unknownUserErr.Error(), "ghost")
}

func TestGetByID_NeverReturnsHash(t *testing.T) {
	t.Parallel()

	repo := newMockUserRepo()
	svc := newUserService(repo)

	created, err := svc.Register(context.Background(), "alice", "Passw0rd!")
	require.NoError(t, err)

	user, err := svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Empty(t, user.PasswordHash)
}
