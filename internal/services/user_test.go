package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photo-journal-backend/internal/models"
	"photo-journal-backend/internal/repository"
	"photo-journal-backend/internal/services"
	"photo-journal-backend/internal/storage"
)

func newUserService(t *testing.T) *services.UserService {
	t.Helper()
	store := storage.NewMemoryStore()
	return services.NewUserService(repository.NewUserRepository(store), "test-secret")
}

func TestRegisterIssuesSession(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(t)

	user, token, err := svc.Register(ctx, "a@x.com", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "a@x.com", user.Email)
	assert.NotEqual(t, "hunter22", user.PasswordHash)

	userID, err := svc.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(t)

	_, _, err := svc.Register(ctx, "a@x.com", "pw1")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "a@x.com", "pw2")
	assert.ErrorIs(t, err, models.ErrDuplicateEmail)
}

func TestRegisterEmailMatchIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(t)

	_, _, err := svc.Register(ctx, "a@x.com", "pw1")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "A@x.com", "pw2")
	assert.NoError(t, err)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(t)

	registered, _, err := svc.Register(ctx, "a@x.com", "correct-pw")
	require.NoError(t, err)

	user, token, err := svc.Authenticate(ctx, "a@x.com", "correct-pw")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, token)

	_, _, err = svc.Authenticate(ctx, "a@x.com", "wrong-pw")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, _, err = svc.Authenticate(ctx, "nobody@x.com", "correct-pw")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestSearchByEmailFragment(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(t)

	_, _, err := svc.Register(ctx, "alice@example.com", "pw")
	require.NoError(t, err)
	_, _, err = svc.Register(ctx, "bob@example.com", "pw")
	require.NoError(t, err)

	found, err := svc.Search(ctx, "ALICE")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "alice@example.com", found[0].Email)

	all, err := svc.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRegisterDevice(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(t)

	user, _, err := svc.Register(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	require.NoError(t, svc.RegisterDevice(ctx, user.ID, "device-token-1"))
	got, err := svc.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PushToken)
	assert.Equal(t, "device-token-1", *got.PushToken)

	assert.ErrorIs(t, svc.RegisterDevice(ctx, "no-such-user", "tok"), models.ErrUnknownUser)
}
