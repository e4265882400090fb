package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"photo-journal-backend/internal/models"
	"photo-journal-backend/internal/storage"
)

// PhotoRepository persists one photo collection per owner under
// "photos:<ownerID>", so writes for different owners never contend.
type PhotoRepository struct {
	store storage.Store
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(store storage.Store) *PhotoRepository {
	return &PhotoRepository{store: store}
}

func photosKey(ownerID string) string {
	return "photos:" + ownerID
}

func decodePhotos(raw []byte) ([]models.Photo, error) {
	if raw == nil {
		return nil, nil
	}
	var photos []models.Photo
	if err := json.Unmarshal(raw, &photos); err != nil {
		return nil, fmt.Errorf("failed to decode photos: %w", err)
	}
	return photos, nil
}

// Append adds a photo to its owner's collection.
func (r *PhotoRepository) Append(ctx context.Context, photo *models.Photo) error {
	return r.store.Update(ctx, photosKey(photo.OwnerID), func(current []byte) ([]byte, error) {
		photos, err := decodePhotos(current)
		if err != nil {
			return nil, err
		}
		photos = append(photos, *photo)
		return json.Marshal(photos)
	})
}

// ListByOwner returns the owner's photos in insertion order.
func (r *PhotoRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Photo, error) {
	raw, err := r.store.Get(ctx, photosKey(ownerID))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load photos for owner %s: %w", ownerID, err)
	}
	return decodePhotos(raw)
}

// GetByID retrieves a single photo from the owner's collection.
func (r *PhotoRepository) GetByID(ctx context.Context, ownerID, photoID string) (*models.Photo, error) {
	photos, err := r.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for i := range photos {
		if photos[i].ID == photoID {
			return &photos[i], nil
		}
	}
	return nil, models.ErrNotFound
}

// UpdateLabels replaces the label set of one photo. changed reports whether
// fn actually produced a different set, so callers can skip notification on
// an idempotent merge. A missing photo is a no-op.
func (r *PhotoRepository) UpdateLabels(ctx context.Context, ownerID, photoID string, fn func(existing []string) []string) (changed bool, err error) {
	err = r.store.Update(ctx, photosKey(ownerID), func(current []byte) ([]byte, error) {
		photos, decodeErr := decodePhotos(current)
		if decodeErr != nil {
			return nil, decodeErr
		}
		for i := range photos {
			if photos[i].ID != photoID {
				continue
			}
			next := fn(photos[i].Labels)
			if !equalLabels(photos[i].Labels, next) {
				photos[i].Labels = next
				changed = true
			}
			break
		}
		return json.Marshal(photos)
	})
	return changed, err
}

func equalLabels(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
