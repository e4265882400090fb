package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"photo-journal-backend/internal/models"
	"photo-journal-backend/internal/storage"
)

const friendsIndexKey = "friends_index"

// relationshipIndex maps user id to that user's relationship record. The
// whole index lives under one key so mirrored writes to both sides of an
// edge land in a single Update.
type relationshipIndex map[string]*models.RelationshipRecord

// GraphRepository persists the social graph index and owns the mirrored-set
// transitions. Each mutation is one atomic read-modify-write of the index,
// which is what keeps the symmetric-friendship and mirrored-request
// invariants intact.
type GraphRepository struct {
	store storage.Store
}

// NewGraphRepository creates a new graph repository
func NewGraphRepository(store storage.Store) *GraphRepository {
	return &GraphRepository{store: store}
}

func decodeIndex(raw []byte) (relationshipIndex, error) {
	index := relationshipIndex{}
	if raw == nil {
		return index, nil
	}
	if err := json.Unmarshal(raw, &index); err != nil {
		return nil, fmt.Errorf("failed to decode friends index: %w", err)
	}
	return index, nil
}

// entry returns the record for userID, creating an empty one on first
// reference.
func (idx relationshipIndex) entry(userID string) *models.RelationshipRecord {
	rec, ok := idx[userID]
	if !ok {
		rec = &models.RelationshipRecord{
			Friends:  []string{},
			Sent:     []string{},
			Received: []string{},
		}
		idx[userID] = rec
	}
	return rec
}

// Get returns the relationship record for userID. Absent records come back
// as empty sets, matching the lazy-creation lifecycle.
func (r *GraphRepository) Get(ctx context.Context, userID string) (*models.RelationshipRecord, error) {
	raw, err := r.store.Get(ctx, friendsIndexKey)
	if err != nil && !errors.Is(err, storage.ErrKeyNotFound) {
		return nil, fmt.Errorf("failed to load friends index: %w", err)
	}
	index, err := decodeIndex(raw)
	if err != nil {
		return nil, err
	}
	return index.entry(userID), nil
}

func (r *GraphRepository) mutate(ctx context.Context, fn func(relationshipIndex)) error {
	return r.store.Update(ctx, friendsIndexKey, func(current []byte) ([]byte, error) {
		index, err := decodeIndex(current)
		if err != nil {
			return nil, err
		}
		fn(index)
		return json.Marshal(index)
	})
}

// AddRequest records a pending request from sender to receiver. Idempotent;
// a no-op when the pair is already friends. changed reports whether a new
// request was actually recorded, so callers can skip notifying on repeats.
func (r *GraphRepository) AddRequest(ctx context.Context, senderID, receiverID string) (changed bool, err error) {
	err = r.mutate(ctx, func(index relationshipIndex) {
		sender := index.entry(senderID)
		receiver := index.entry(receiverID)
		if contains(sender.Friends, receiverID) {
			return
		}
		if !contains(sender.Sent, receiverID) {
			changed = true
		}
		sender.Sent = appendUnique(sender.Sent, receiverID)
		receiver.Received = appendUnique(receiver.Received, senderID)
	})
	return changed, err
}

// AcceptRequest clears the pending request in both mirrored sets and adds
// each user to the other's friend set. Safe to call when no request exists.
// changed reports whether a new friendship was established.
func (r *GraphRepository) AcceptRequest(ctx context.Context, senderID, receiverID string) (changed bool, err error) {
	err = r.mutate(ctx, func(index relationshipIndex) {
		sender := index.entry(senderID)
		receiver := index.entry(receiverID)
		sender.Sent = remove(sender.Sent, receiverID)
		receiver.Received = remove(receiver.Received, senderID)
		if !contains(sender.Friends, receiverID) {
			changed = true
		}
		sender.Friends = appendUnique(sender.Friends, receiverID)
		receiver.Friends = appendUnique(receiver.Friends, senderID)
	})
	return changed, err
}

// RemoveRequest clears the pending request in both mirrored sets without
// touching friend sets. Serves decline-by-receiver and cancel-by-sender
// alike; there is no directionality check.
func (r *GraphRepository) RemoveRequest(ctx context.Context, senderID, receiverID string) error {
	return r.mutate(ctx, func(index relationshipIndex) {
		sender := index.entry(senderID)
		receiver := index.entry(receiverID)
		sender.Sent = remove(sender.Sent, receiverID)
		receiver.Received = remove(receiver.Received, senderID)
	})
}

// RemoveFriend deletes each user from the other's friend set. Idempotent.
func (r *GraphRepository) RemoveFriend(ctx context.Context, userID, friendID string) error {
	return r.mutate(ctx, func(index relationshipIndex) {
		user := index.entry(userID)
		friend := index.entry(friendID)
		user.Friends = remove(user.Friends, friendID)
		friend.Friends = remove(friend.Friends, userID)
	})
}

func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

func appendUnique(list []string, id string) []string {
	if contains(list, id) {
		return list
	}
	return append(list, id)
}

func remove(list []string, id string) []string {
	out := list[:0]
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
