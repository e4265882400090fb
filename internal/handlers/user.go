package handlers

import (
	"encoding/json"
	"net/http"

	"photo-journal-backend/internal/middleware"
	"photo-journal-backend/internal/models"
	"photo-journal-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// UserHandler handles user directory and session HTTP requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CredentialsRequest is the body for register and login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is the body returned on register and login.
type SessionResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register handles POST /api/v1/users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, "email and password are required", http.StatusBadRequest)
		return
	}

	user, token, err := h.userService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Error().Err(err).Str("email", req.Email).Msg("Failed to register user")
		respondError(w, err.Error(), statusFor(err))
		return
	}

	log.Info().Str("user_id", user.ID).Msg("User registered")
	respondJSON(w, http.StatusCreated, SessionResponse{User: user, Token: token})
}

// Login handles POST /api/v1/sessions
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", req.Email).Msg("Failed login attempt")
		respondError(w, err.Error(), statusFor(err))
		return
	}

	respondJSON(w, http.StatusOK, SessionResponse{User: user, Token: token})
}

// Search handles GET /api/v1/users?q=fragment
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to search users")
		respondError(w, err.Error(), statusFor(err))
		return
	}
	if users == nil {
		users = []models.User{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// DeviceRequest is the body for registering a push device token.
type DeviceRequest struct {
	Token string `json:"token"`
}

// RegisterDevice handles PUT /api/v1/users/me/device
func (h *UserHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	var req DeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.userService.RegisterDevice(r.Context(), session.UserID, req.Token); err != nil {
		log.Error().Err(err).Str("user_id", session.UserID).Msg("Failed to register device")
		respondError(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
