package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"photo-journal-backend/internal/middleware"
	"photo-journal-backend/internal/models"
	"photo-journal-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const maxUploadBytes = 16 << 20 // 16 MiB

// PhotoHandler handles photo HTTP requests
type PhotoHandler struct {
	photoService *services.PhotoService
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(photoService *services.PhotoService) *PhotoHandler {
	return &PhotoHandler{photoService: photoService}
}

// Create handles POST /api/v1/photos (metadata-only save, uri already known)
func (h *PhotoHandler) Create(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	var req services.CreatePhotoParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.URI == "" {
		respondError(w, "uri is required", http.StatusBadRequest)
		return
	}

	photo, err := h.photoService.Create(r.Context(), session.UserID, req)
	if err != nil {
		log.Error().Err(err).Str("owner_id", session.UserID).Msg("Failed to create photo")
		respondError(w, err.Error(), statusFor(err))
		return
	}
	respondJSON(w, http.StatusCreated, photo)
}

// Upload handles POST /api/v1/photos/upload (multipart: file + metadata)
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, "Invalid multipart body", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		respondError(w, "Failed to read file", http.StatusBadRequest)
		return
	}

	var params services.CreatePhotoParams
	if meta := r.FormValue("metadata"); meta != "" {
		if err := json.Unmarshal([]byte(meta), &params); err != nil {
			respondError(w, "Invalid metadata", http.StatusBadRequest)
			return
		}
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	photo, err := h.photoService.SaveUpload(r.Context(), session.UserID, data, contentType, params)
	if err != nil {
		log.Error().Err(err).Str("owner_id", session.UserID).Msg("Failed to save uploaded photo")
		respondError(w, err.Error(), statusFor(err))
		return
	}

	log.Info().Str("owner_id", session.UserID).Str("photo_id", photo.ID).Msg("Photo uploaded")
	respondJSON(w, http.StatusCreated, photo)
}

// List handles GET /api/v1/users/{user_id}/photos
func (h *PhotoHandler) List(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	ownerID := chi.URLParam(r, "user_id")

	photos, err := h.photoService.ListForOwner(r.Context(), session.UserID, ownerID)
	if err != nil {
		log.Error().Err(err).Str("caller_id", session.UserID).Str("owner_id", ownerID).Msg("Failed to list photos")
		respondError(w, err.Error(), statusFor(err))
		return
	}
	if photos == nil {
		photos = []models.Photo{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"photos": photos, "total": len(photos)})
}

// Get handles GET /api/v1/users/{user_id}/photos/{photo_id}
func (h *PhotoHandler) Get(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	ownerID := chi.URLParam(r, "user_id")
	photoID := chi.URLParam(r, "photo_id")

	photo, err := h.photoService.GetByID(r.Context(), session.UserID, ownerID, photoID)
	if err != nil {
		respondError(w, err.Error(), statusFor(err))
		return
	}
	respondJSON(w, http.StatusOK, photo)
}

// Grouped handles GET /api/v1/users/{user_id}/photos/grouped?by=date|type|label
func (h *PhotoHandler) Grouped(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	ownerID := chi.URLParam(r, "user_id")

	photos, err := h.photoService.ListForOwner(r.Context(), session.UserID, ownerID)
	if err != nil {
		respondError(w, err.Error(), statusFor(err))
		return
	}

	var groups map[string][]models.Photo
	switch by := r.URL.Query().Get("by"); by {
	case "", "date":
		groups = services.GroupByDate(photos)
	case "type":
		groups = services.GroupByType(photos)
	case "label":
		groups = services.GroupByLabel(photos)
	default:
		respondError(w, "by must be one of date, type, label", http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"groups": groups})
}
