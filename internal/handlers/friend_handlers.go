package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/abhinash-ops/Mind-canvus/internal/engine/actors"
	"github.com/abhinash-ops/Mind-canvus/internal/middleware"
	"github.com/abhinash-ops/Mind-canvus/internal/utils"

	"github.com/google/uuid"
)

// FriendRequest names the other side of a friend operation
type FriendRequest struct {
	UserID string `json:"userId"`
}

func (s *Server) requestUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return uuid.Nil, false
	}
	return userID, true
}

func decodeFriendRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var req FriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return uuid.Nil, false
	}
	otherID, err := uuid.Parse(req.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return otherID, true
}

func (s *Server) requestSupervisor(w http.ResponseWriter, msg interface{}) (interface{}, bool) {
	future := s.Context.RequestFuture(s.Engine.GetUserSupervisor(), msg, s.RequestTimeout)
	result, err := future.Result()
	if err != nil {
		s.respondAppError(w, utils.NewActorTimeoutError("UserSupervisor"))
		return nil, false
	}
	if !s.handleActorResult(w, result) {
		return nil, false
	}
	return result, true
}

// HandleFriendRequests sends a friend request (POST) or lists the caller's
// pending incoming requests (GET)
func (s *Server) HandleFriendRequests() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		userID, ok := s.requestUserID(w, r)
		if !ok {
			return
		}

		switch r.Method {
		case http.MethodPost:
			toID, ok := decodeFriendRequest(w, r)
			if !ok {
				return
			}
			result, ok := s.requestSupervisor(w, &actors.SendFriendRequestMsg{FromID: userID, ToID: toID})
			if !ok {
				return
			}
			s.respondJSON(w, http.StatusOK, map[string]interface{}{"sent": result})

		case http.MethodGet:
			result, ok := s.requestSupervisor(w, &actors.GetPendingRequestsMsg{UserID: userID})
			if !ok {
				return
			}
			s.respondJSON(w, http.StatusOK, result)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleAcceptFriendRequest accepts a pending request from the named user
func (s *Server) HandleAcceptFriendRequest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		userID, ok := s.requestUserID(w, r)
		if !ok {
			return
		}
		requesterID, ok := decodeFriendRequest(w, r)
		if !ok {
			return
		}

		result, ok := s.requestSupervisor(w, &actors.AcceptFriendRequestMsg{UserID: userID, RequesterID: requesterID})
		if !ok {
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]interface{}{"accepted": result})
	}
}

// HandleRejectFriendRequest declines a pending request from the named user
func (s *Server) HandleRejectFriendRequest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		userID, ok := s.requestUserID(w, r)
		if !ok {
			return
		}
		requesterID, ok := decodeFriendRequest(w, r)
		if !ok {
			return
		}

		result, ok := s.requestSupervisor(w, &actors.RejectFriendRequestMsg{UserID: userID, RequesterID: requesterID})
		if !ok {
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]interface{}{"rejected": result})
	}
}

// HandleFriends lists the caller's friends (GET) or removes one (DELETE)
func (s *Server) HandleFriends() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		userID, ok := s.requestUserID(w, r)
		if !ok {
			return
		}

		switch r.Method {
		case http.MethodGet:
			result, ok := s.requestSupervisor(w, &actors.GetFriendsMsg{UserID: userID})
			if !ok {
				return
			}
			s.respondJSON(w, http.StatusOK, result)

		case http.MethodDelete:
			friendID, err := uuid.Parse(r.URL.Query().Get("userId"))
			if err != nil {
				http.Error(w, "Invalid user ID", http.StatusBadRequest)
				return
			}
			result, ok := s.requestSupervisor(w, &actors.RemoveFriendMsg{UserID: userID, FriendID: friendID})
			if !ok {
				return
			}
			s.respondJSON(w, http.StatusOK, map[string]interface{}{"removed": result})

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}
