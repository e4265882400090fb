package services

import (
	"context"
	"fmt"

	"photo-journal-backend/internal/models"
	"photo-journal-backend/internal/notifications"
	"photo-journal-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// FriendService handles the social graph: friend requests, friendships and
// relationship status. All mutations are idempotent; the mirrored-set
// invariants live in the graph repository.
type FriendService struct {
	graphRepo *repository.GraphRepository
	userRepo  *repository.UserRepository
	hub       *EventHub
	push      *notifications.PushNotifier
}

// NewFriendService creates a new friend service
func NewFriendService(
	graphRepo *repository.GraphRepository,
	userRepo *repository.UserRepository,
	hub *EventHub,
	push *notifications.PushNotifier,
) *FriendService {
	return &FriendService{
		graphRepo: graphRepo,
		userRepo:  userRepo,
		hub:       hub,
		push:      push,
	}
}

// SendRequest records a pending friend request from sender to receiver.
// A self-request is a no-op. Both users must exist in the directory.
func (s *FriendService) SendRequest(ctx context.Context, senderID, receiverID string) error {
	if senderID == receiverID {
		return nil
	}
	for _, id := range []string{senderID, receiverID} {
		exists, err := s.userRepo.Exists(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to check user %s: %w", id, err)
		}
		if !exists {
			return fmt.Errorf("%w: %s", models.ErrUnknownUser, id)
		}
	}

	changed, err := s.graphRepo.AddRequest(ctx, senderID, receiverID)
	if err != nil {
		return fmt.Errorf("failed to record friend request: %w", err)
	}
	if changed {
		s.hub.Publish(ctx, Event{Type: EventFriendRequest, UserID: receiverID, ActorID: senderID})
		s.notify(ctx, receiverID, "You have a new friend request")
		log.Info().Str("sender_id", senderID).Str("receiver_id", receiverID).Msg("Friend request sent")
	}
	return nil
}

// AcceptRequest turns a pending request into a friendship, clearing the
// request state on both sides. Safe to call when no request exists.
func (s *FriendService) AcceptRequest(ctx context.Context, senderID, receiverID string) error {
	changed, err := s.graphRepo.AcceptRequest(ctx, senderID, receiverID)
	if err != nil {
		return fmt.Errorf("failed to accept friend request: %w", err)
	}
	if changed {
		s.hub.Publish(ctx, Event{Type: EventFriendAccepted, UserID: senderID, ActorID: receiverID})
		s.notify(ctx, senderID, "Your friend request was accepted")
		log.Info().Str("sender_id", senderID).Str("receiver_id", receiverID).Msg("Friend request accepted")
	}
	return nil
}

// DeclineRequest removes a pending request without creating a friendship.
// The same operation serves a sender cancelling their own request.
func (s *FriendService) DeclineRequest(ctx context.Context, senderID, receiverID string) error {
	if err := s.graphRepo.RemoveRequest(ctx, senderID, receiverID); err != nil {
		return fmt.Errorf("failed to decline friend request: %w", err)
	}
	return nil
}

// RemoveFriend deletes the friendship in both directions. Idempotent.
func (s *FriendService) RemoveFriend(ctx context.Context, userID, friendID string) error {
	if err := s.graphRepo.RemoveFriend(ctx, userID, friendID); err != nil {
		return fmt.Errorf("failed to remove friend: %w", err)
	}
	return nil
}

// Status returns the relationship between two users as seen from userID.
// Friendship wins over a pending request in either direction.
func (s *FriendService) Status(ctx context.Context, userID, otherID string) (models.RelationshipStatus, error) {
	rec, err := s.graphRepo.Get(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load relationship record: %w", err)
	}
	switch {
	case containsID(rec.Friends, otherID):
		return models.StatusFriends, nil
	case containsID(rec.Sent, otherID):
		return models.StatusSent, nil
	case containsID(rec.Received, otherID):
		return models.StatusReceived, nil
	default:
		return models.StatusNone, nil
	}
}

// FriendsOf returns the full user records of userID's friends.
func (s *FriendService) FriendsOf(ctx context.Context, userID string) ([]models.User, error) {
	rec, err := s.graphRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load relationship record: %w", err)
	}
	return s.resolve(ctx, rec.Friends)
}

// PendingReceivedOf returns the user records behind userID's incoming
// requests.
func (s *FriendService) PendingReceivedOf(ctx context.Context, userID string) ([]models.User, error) {
	rec, err := s.graphRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load relationship record: %w", err)
	}
	return s.resolve(ctx, rec.Received)
}

// AreFriends reports whether the pair has a confirmed friendship.
func (s *FriendService) AreFriends(ctx context.Context, userID, otherID string) (bool, error) {
	status, err := s.Status(ctx, userID, otherID)
	if err != nil {
		return false, err
	}
	return status == models.StatusFriends, nil
}

func (s *FriendService) resolve(ctx context.Context, ids []string) ([]models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.User
	for _, u := range users {
		if containsID(ids, u.ID) {
			out = append(out, u)
		}
	}
	return out, nil
}

// notify sends an APNs push to the user's registered device, if any.
// Failures never propagate to the graph operation.
func (s *FriendService) notify(ctx context.Context, userID, alert string) {
	if !s.push.Enabled() {
		return
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || user.PushToken == nil {
		return
	}
	s.push.Send(*user.PushToken, alert)
}

func containsID(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
