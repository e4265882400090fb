package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"photo-journal-backend/internal/models"
	"photo-journal-backend/internal/repository"
	"photo-journal-backend/internal/uploader"

	"github.com/rs/zerolog/log"
)

// PhotoService handles the per-user photo store: creation, listing,
// label merging and the upload path. Access to another user's collection
// is gated on a confirmed friendship at this layer, not in the handlers.
type PhotoService struct {
	photoRepo *repository.PhotoRepository
	graphRepo *repository.GraphRepository
	uploads   uploader.Uploader
	hub       *EventHub
	enricher  *Enricher

	idMu   sync.Mutex
	lastID int64
}

// NewPhotoService creates a new photo service. uploads may be nil when no
// object storage is configured; saves then keep the local uri.
func NewPhotoService(
	photoRepo *repository.PhotoRepository,
	graphRepo *repository.GraphRepository,
	uploads uploader.Uploader,
	hub *EventHub,
) *PhotoService {
	return &PhotoService{
		photoRepo: photoRepo,
		graphRepo: graphRepo,
		uploads:   uploads,
		hub:       hub,
	}
}

// AttachEnricher wires the background enrichment pipeline. Without one,
// photos keep their save-time labels.
func (s *PhotoService) AttachEnricher(e *Enricher) {
	s.enricher = e
}

// CreatePhotoParams carries the capture artifact. PublicID is set internally
// by the upload path, never by clients.
type CreatePhotoParams struct {
	URI            string             `json:"uri"`
	Coords         models.Coordinates `json:"coords"`
	Note           string             `json:"note"`
	Labels         []string           `json:"labels"`
	CaptureContext string             `json:"capture_context"`
	PublicID       string             `json:"-"`
}

// Create persists a new photo record with derived fields and, for remotely
// hosted images, hands it to the enrichment pipeline. The creating caller
// always observes the pre-enrichment record.
func (s *PhotoService) Create(ctx context.Context, ownerID string, p CreatePhotoParams) (*models.Photo, error) {
	now := time.Now().UTC()
	photo := &models.Photo{
		ID:        s.nextID(now),
		OwnerID:   ownerID,
		URI:       p.URI,
		PublicID:  p.PublicID,
		Coords:    p.Coords,
		Note:      p.Note,
		Labels:    dedupe(p.Labels),
		Type:      classifyCaptureContext(p.CaptureContext),
		Timestamp: now,
		Year:      now.Year(),
		Month:     int(now.Month()),
		Day:       now.Day(),
	}

	if err := s.photoRepo.Append(ctx, photo); err != nil {
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}

	log.Info().
		Str("owner_id", ownerID).
		Str("photo_id", photo.ID).
		Str("type", string(photo.Type)).
		Msg("Photo saved")

	if s.enricher != nil && isRemote(photo.URI) {
		s.enricher.Enqueue(ownerID, photo.ID, photo.URI)
	}
	return photo, nil
}

// SaveUpload uploads the image bytes to object storage and persists the
// resulting record. On upload failure the photo is saved with the local uri
// instead; capture success never depends on the upload.
func (s *PhotoService) SaveUpload(ctx context.Context, ownerID string, data []byte, contentType string, p CreatePhotoParams) (*models.Photo, error) {
	if s.uploads != nil {
		result, err := s.uploads.Upload(ctx, data, contentType, ownerID)
		switch {
		case err == nil:
			p.URI = result.URL
			p.PublicID = result.PublicID
			return s.Create(ctx, ownerID, p)
		case errors.Is(err, models.ErrUploadFailed):
			log.Warn().Err(err).Str("owner_id", ownerID).Msg("Upload failed, keeping local uri")
		default:
			return nil, err
		}
	}
	return s.Create(ctx, ownerID, p)
}

// ListForOwner returns the owner's photos. The caller must be the owner or
// a confirmed friend.
func (s *PhotoService) ListForOwner(ctx context.Context, callerID, ownerID string) ([]models.Photo, error) {
	if err := s.authorize(ctx, callerID, ownerID); err != nil {
		return nil, err
	}
	return s.photoRepo.ListByOwner(ctx, ownerID)
}

// GetByID returns a single photo under the same access gate as ListForOwner.
func (s *PhotoService) GetByID(ctx context.Context, callerID, ownerID, photoID string) (*models.Photo, error) {
	if err := s.authorize(ctx, callerID, ownerID); err != nil {
		return nil, err
	}
	return s.photoRepo.GetByID(ctx, ownerID, photoID)
}

// MergeLabels unions newLabels into the photo's label set, preserving
// first-seen order. A missing photo is a no-op, and merging labels that are
// already present publishes no event.
func (s *PhotoService) MergeLabels(ctx context.Context, ownerID, photoID string, newLabels []string) error {
	var merged []string
	changed, err := s.photoRepo.UpdateLabels(ctx, ownerID, photoID, func(existing []string) []string {
		merged = union(existing, newLabels)
		return merged
	})
	if err != nil {
		return fmt.Errorf("failed to merge labels: %w", err)
	}
	if changed {
		s.hub.Publish(ctx, Event{
			Type:    EventPhotoUpdated,
			UserID:  ownerID,
			PhotoID: photoID,
			Labels:  merged,
		})
		log.Info().
			Str("owner_id", ownerID).
			Str("photo_id", photoID).
			Strs("labels", merged).
			Msg("Photo labels merged")
	}
	return nil
}

// authorize enforces the store-level visibility rule: own photos always,
// a friend's photos only with a confirmed friendship.
func (s *PhotoService) authorize(ctx context.Context, callerID, ownerID string) error {
	if callerID == ownerID {
		return nil
	}
	rec, err := s.graphRepo.Get(ctx, callerID)
	if err != nil {
		return fmt.Errorf("failed to load relationship record: %w", err)
	}
	for _, id := range rec.Friends {
		if id == ownerID {
			return nil
		}
	}
	return models.ErrNotFriends
}

// nextID derives a photo id from the save time. Ids stay time-ordered and
// unique within this process; uniqueness across concurrent writers is not
// guaranteed and not relied on.
func (s *PhotoService) nextID(now time.Time) string {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

// classifyCaptureContext maps the capture context reported by the client to
// the immutable photo type.
func classifyCaptureContext(context string) models.PhotoType {
	switch strings.ToLower(strings.TrimSpace(context)) {
	case "front_camera", "selfie":
		return models.PhotoTypeSelfie
	case "camera", "back_camera":
		return models.PhotoTypeCaptured
	case "library", "gallery", "import":
		return models.PhotoTypeImported
	default:
		return models.PhotoTypeOther
	}
}

func isRemote(uri string) bool {
	return strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://")
}

func dedupe(labels []string) []string {
	out := []string{}
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

func union(existing, extra []string) []string {
	out := make([]string, 0, len(existing)+len(extra))
	seen := make(map[string]struct{}, len(existing)+len(extra))
	for _, l := range existing {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	for _, l := range extra {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
