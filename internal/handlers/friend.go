package handlers

import (
	"encoding/json"
	"net/http"

	"photo-journal-backend/internal/middleware"
	"photo-journal-backend/internal/models"
	"photo-journal-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// FriendHandler handles social graph HTTP requests
type FriendHandler struct {
	friendService *services.FriendService
}

// NewFriendHandler creates a new friend handler
func NewFriendHandler(friendService *services.FriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

// SendRequestBody is the body for sending a friend request.
type SendRequestBody struct {
	ReceiverID string `json:"receiver_id"`
}

// SendRequest handles POST /api/v1/friends/requests
func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	var req SendRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ReceiverID == "" {
		respondError(w, "receiver_id is required", http.StatusBadRequest)
		return
	}

	if err := h.friendService.SendRequest(r.Context(), session.UserID, req.ReceiverID); err != nil {
		log.Error().Err(err).Str("sender_id", session.UserID).Str("receiver_id", req.ReceiverID).Msg("Failed to send friend request")
		respondError(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AcceptRequest handles POST /api/v1/friends/requests/{sender_id}/accept
func (h *FriendHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	senderID := chi.URLParam(r, "sender_id")

	if err := h.friendService.AcceptRequest(r.Context(), senderID, session.UserID); err != nil {
		log.Error().Err(err).Str("sender_id", senderID).Str("receiver_id", session.UserID).Msg("Failed to accept friend request")
		respondError(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeclineRequest handles POST /api/v1/friends/requests/{sender_id}/decline
func (h *FriendHandler) DeclineRequest(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	senderID := chi.URLParam(r, "sender_id")

	if err := h.friendService.DeclineRequest(r.Context(), senderID, session.UserID); err != nil {
		log.Error().Err(err).Str("sender_id", senderID).Str("receiver_id", session.UserID).Msg("Failed to decline friend request")
		respondError(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveFriend handles DELETE /api/v1/friends/{friend_id}
func (h *FriendHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	friendID := chi.URLParam(r, "friend_id")

	if err := h.friendService.RemoveFriend(r.Context(), session.UserID, friendID); err != nil {
		log.Error().Err(err).Str("user_id", session.UserID).Str("friend_id", friendID).Msg("Failed to remove friend")
		respondError(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListFriends handles GET /api/v1/friends
func (h *FriendHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	friends, err := h.friendService.FriendsOf(r.Context(), session.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", session.UserID).Msg("Failed to list friends")
		respondError(w, err.Error(), statusFor(err))
		return
	}
	if friends == nil {
		friends = []models.User{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"friends": friends})
}

// ListRequests handles GET /api/v1/friends/requests
func (h *FriendHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	requests, err := h.friendService.PendingReceivedOf(r.Context(), session.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", session.UserID).Msg("Failed to list friend requests")
		respondError(w, err.Error(), statusFor(err))
		return
	}
	if requests == nil {
		requests = []models.User{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"requests": requests})
}

// Status handles GET /api/v1/friends/status/{user_id}
func (h *FriendHandler) Status(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	otherID := chi.URLParam(r, "user_id")

	status, err := h.friendService.Status(r.Context(), session.UserID, otherID)
	if err != nil {
		log.Error().Err(err).Str("user_id", session.UserID).Str("other_id", otherID).Msg("Failed to get relationship status")
		respondError(w, err.Error(), statusFor(err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": status})
}
