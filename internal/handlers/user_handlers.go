package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/abhinash-ops/Mind-canvus/internal/engine/actors"
	"github.com/abhinash-ops/Mind-canvus/internal/middleware"
	"github.com/abhinash-ops/Mind-canvus/internal/types"
	"github.com/abhinash-ops/Mind-canvus/internal/utils"

	"github.com/google/uuid"
)

// RegisterUserRequest represents a request to register a new user
type RegisterUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// LoginRequest represents a request to log in a user
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest carries profile changes; empty fields are ignored
type UpdateProfileRequest struct {
	Username  string `json:"username,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
}

// HandleUserRegistration handles requests to register a new user
func (s *Server) HandleUserRegistration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req RegisterUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		future := s.Context.RequestFuture(
			s.Engine.GetUserSupervisor(),
			&actors.RegisterUserMsg{
				Username:  req.Username,
				Email:     req.Email,
				Password:  req.Password,
				FirstName: req.FirstName,
				LastName:  req.LastName,
			},
			s.RequestTimeout,
		)

		result, err := future.Result()
		if err != nil {
			s.respondAppError(w, utils.NewActorTimeoutError("UserSupervisor"))
			return
		}
		if !s.handleActorResult(w, result) {
			return
		}

		s.respondJSON(w, http.StatusCreated, result)
	}
}

// HandleUserLogin handles requests to log in a user
func (s *Server) HandleUserLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		log.Printf("HTTP Handler: Received login request for email: %s", req.Email)

		future := s.Context.RequestFuture(
			s.Engine.GetUserSupervisor(),
			&actors.LoginMsg{Email: req.Email, Password: req.Password},
			s.RequestTimeout,
		)

		result, err := future.Result()
		if err != nil {
			log.Printf("HTTP Handler: Error getting login result: %v", err)
			http.Error(w, "Failed to process login", http.StatusInternalServerError)
			return
		}

		loginResp, ok := result.(*types.LoginResponse)
		if !ok {
			log.Printf("HTTP Handler: Invalid response type: %T", result)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if !loginResp.Success {
			s.respondJSON(w, http.StatusUnauthorized, loginResp)
			return
		}

		userID, err := uuid.Parse(loginResp.UserID)
		if err != nil {
			log.Printf("HTTP Handler: Invalid user ID format: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		token, err := middleware.GenerateToken(userID)
		if err != nil {
			log.Printf("HTTP Handler: Failed to generate token: %v", err)
			http.Error(w, "Failed to generate auth token", http.StatusInternalServerError)
			return
		}
		loginResp.Token = token

		s.respondJSON(w, http.StatusOK, loginResp)
	}
}

// HandleUserProfile reads or updates the caller's profile
func (s *Server) HandleUserProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		switch r.Method {
		case http.MethodGet:
			// An explicit userId parameter lets callers view other profiles.
			targetID := userID
			if idParam := r.URL.Query().Get("userId"); idParam != "" {
				parsed, err := uuid.Parse(idParam)
				if err != nil {
					http.Error(w, "Invalid user ID", http.StatusBadRequest)
					return
				}
				targetID = parsed
			}

			future := s.Context.RequestFuture(
				s.Engine.GetUserSupervisor(),
				&actors.GetUserProfileMsg{UserID: targetID},
				s.RequestTimeout,
			)
			result, err := future.Result()
			if err != nil {
				s.respondAppError(w, utils.NewActorTimeoutError("UserSupervisor"))
				return
			}
			if !s.handleActorResult(w, result) {
				return
			}
			s.respondJSON(w, http.StatusOK, result)

		case http.MethodPut:
			var req UpdateProfileRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}

			future := s.Context.RequestFuture(
				s.Engine.GetUserSupervisor(),
				&actors.UpdateProfileMsg{
					UserID:       userID,
					NewUsername:  req.Username,
					NewFirstName: req.FirstName,
					NewLastName:  req.LastName,
					NewAvatar:    req.Avatar,
				},
				s.RequestTimeout,
			)
			result, err := future.Result()
			if err != nil {
				s.respondAppError(w, utils.NewActorTimeoutError("UserSupervisor"))
				return
			}
			if !s.handleActorResult(w, result) {
				return
			}
			s.respondJSON(w, http.StatusOK, result)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}
