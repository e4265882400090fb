package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photo-journal-backend/internal/models"
	"photo-journal-backend/internal/notifications"
	"photo-journal-backend/internal/repository"
	"photo-journal-backend/internal/services"
	"photo-journal-backend/internal/storage"
)

type friendFixture struct {
	users   *services.UserService
	friends *services.FriendService
	hub     *services.EventHub
}

func newFriendFixture(t *testing.T) *friendFixture {
	t.Helper()

	store := storage.NewMemoryStore()
	userRepo := repository.NewUserRepository(store)
	graphRepo := repository.NewGraphRepository(store)
	hub := services.NewEventHub(nil)
	push, err := notifications.New(notifications.Config{})
	require.NoError(t, err)

	return &friendFixture{
		users:   services.NewUserService(userRepo, "test-secret"),
		friends: services.NewFriendService(graphRepo, userRepo, hub, push),
		hub:     hub,
	}
}

func (f *friendFixture) register(t *testing.T, email string) *models.User {
	t.Helper()
	user, _, err := f.users.Register(context.Background(), email, "password1")
	require.NoError(t, err)
	return user
}

func TestSendThenAcceptMakesSymmetricFriendship(t *testing.T) {
	ctx := context.Background()
	f := newFriendFixture(t)
	a := f.register(t, "a@x.com")
	b := f.register(t, "b@x.com")

	require.NoError(t, f.friends.SendRequest(ctx, a.ID, b.ID))
	require.NoError(t, f.friends.AcceptRequest(ctx, a.ID, b.ID))

	statusAB, err := f.friends.Status(ctx, a.ID, b.ID)
	require.NoError(t, err)
	statusBA, err := f.friends.Status(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFriends, statusAB)
	assert.Equal(t, models.StatusFriends, statusBA)

	// request state must be fully cleared on both sides
	pendingB, err := f.friends.PendingReceivedOf(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, pendingB)
	pendingA, err := f.friends.PendingReceivedOf(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, pendingA)
}

func TestSendRequestMirroredStatus(t *testing.T) {
	ctx := context.Background()
	f := newFriendFixture(t)
	u1 := f.register(t, "u1@x.com")
	u2 := f.register(t, "u2@x.com")

	require.NoError(t, f.friends.SendRequest(ctx, u1.ID, u2.ID))

	status12, err := f.friends.Status(ctx, u1.ID, u2.ID)
	require.NoError(t, err)
	status21, err := f.friends.Status(ctx, u2.ID, u1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, status12)
	assert.Equal(t, models.StatusReceived, status21)
}

func TestSendRequestIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFriendFixture(t)
	a := f.register(t, "a@x.com")
	b := f.register(t, "b@x.com")

	require.NoError(t, f.friends.SendRequest(ctx, a.ID, b.ID))
	require.NoError(t, f.friends.SendRequest(ctx, a.ID, b.ID))

	pending, err := f.friends.PendingReceivedOf(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestSendRequestToSelfIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := newFriendFixture(t)
	a := f.register(t, "a@x.com")

	require.NoError(t, f.friends.SendRequest(ctx, a.ID, a.ID))

	status, err := f.friends.Status(ctx, a.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNone, status)
}

func TestSendRequestUnknownUser(t *testing.T) {
	ctx := context.Background()
	f := newFriendFixture(t)
	a := f.register(t, "a@x.com")

	err := f.friends.SendRequest(ctx, a.ID, "no-such-user")
	assert.ErrorIs(t, err, models.ErrUnknownUser)
}

func TestSendRequestWhenAlreadyFriendsIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := newFriendFixture(t)
	a := f.register(t, "a@x.com")
	b := f.register(t, "b@x.com")

	require.NoError(t, f.friends.SendRequest(ctx, a.ID, b.ID))
	require.NoError(t, f.friends.AcceptRequest(ctx, a.ID, b.ID))
	require.NoError(t, f.friends.SendRequest(ctx, a.ID, b.ID))

	status, err := f.friends.Status(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFriends, status)

	pending, err := f.friends.PendingReceivedOf(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDeclineRequestWithoutRequestIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := newFriendFixture(t)
	a := f.register(t, "a@x.com")
	b := f.register(t, "b@x.com")

	require.NoError(t, f.friends.DeclineRequest(ctx, a.ID, b.ID))

	statusAB, err := f.friends.Status(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNone, statusAB)
	friends, err := f.friends.FriendsOf(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, friends)
}

func TestDeclineClearsPendingRequest(t *testing.T) {
	ctx := context.Background()
	f := newFriendFixture(t)
	a := f.register(t, "a@x.com")
	b := f.register(t, "b@x.com")

	require.NoError(t, f.friends.SendRequest(ctx, a.ID, b.ID))
	require.NoError(t, f.friends.DeclineRequest(ctx, a.ID, b.ID))

	statusAB, err := f.friends.Status(ctx, a.ID, b.ID)
	require.NoError(t, err)
	statusBA, err := f.friends.Status(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNone, statusAB)
	assert.Equal(t, models.StatusNone, statusBA)
}

func TestRemoveFriendIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFriendFixture(t)
	a := f.register(t, "a@x.com")
	b := f.register(t, "b@x.com")

	require.NoError(t, f.friends.SendRequest(ctx, a.ID, b.ID))
	require.NoError(t, f.friends.AcceptRequest(ctx, a.ID, b.ID))

	require.NoError(t, f.friends.RemoveFriend(ctx, a.ID, b.ID))
	require.NoError(t, f.friends.RemoveFriend(ctx, a.ID, b.ID))

	statusAB, err := f.friends.Status(ctx, a.ID, b.ID)
	require.NoError(t, err)
	statusBA, err := f.friends.Status(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNone, statusAB)
	assert.Equal(t, models.StatusNone, statusBA)
}

func TestSendRequestPublishesEventToReceiver(t *testing.T) {
	ctx := context.Background()
	f := newFriendFixture(t)
	a := f.register(t, "a@x.com")
	b := f.register(t, "b@x.com")

	events, cancel := f.hub.SubscribeUser(b.ID)
	defer cancel()

	require.NoError(t, f.friends.SendRequest(ctx, a.ID, b.ID))

	event := <-events
	assert.Equal(t, services.EventFriendRequest, event.Type)
	assert.Equal(t, b.ID, event.UserID)
	assert.Equal(t, a.ID, event.ActorID)

	// repeat send changes nothing, so no second event
	require.NoError(t, f.friends.SendRequest(ctx, a.ID, b.ID))
	select {
	case extra := <-events:
		t.Fatalf("unexpected event %+v", extra)
	default:
	}
}
