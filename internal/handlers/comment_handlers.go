package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/abhinash-ops/Mind-canvus/internal/engine/actors"
	"github.com/abhinash-ops/Mind-canvus/internal/middleware"
	"github.com/abhinash-ops/Mind-canvus/internal/utils"

	"github.com/google/uuid"
)

// CreateCommentRequest represents a request to comment on a post
type CreateCommentRequest struct {
	PostID   string  `json:"postId"`
	Content  string  `json:"content"`
	ParentID *string `json:"parentId,omitempty"`
}

// EditCommentRequest represents a request to edit an existing comment
type EditCommentRequest struct {
	CommentID string `json:"commentId"`
	Content   string `json:"content"`
}

// HandleComment handles creation, editing and deletion of comments
func (s *Server) HandleComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		switch r.Method {
		case http.MethodPost:
			s.handleCreateComment(w, r, userID)
		case http.MethodPut:
			s.handleEditComment(w, r, userID)
		case http.MethodDelete:
			s.handleDeleteComment(w, r, userID)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	postID, err := uuid.Parse(req.PostID)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	msg := &actors.CreateCommentMsg{
		Content:  req.Content,
		AuthorID: userID,
		PostID:   postID,
	}
	if req.ParentID != nil {
		parentID, err := uuid.Parse(*req.ParentID)
		if err != nil {
			http.Error(w, "Invalid parent comment ID", http.StatusBadRequest)
			return
		}
		msg.ParentID = &parentID
	}

	future := s.Context.RequestFuture(s.Engine.GetCommentActor(), msg, s.RequestTimeout)
	result, err := future.Result()
	if err != nil {
		s.respondAppError(w, utils.NewActorTimeoutError("CommentActor"))
		return
	}
	if !s.handleActorResult(w, result) {
		return
	}

	s.respondJSON(w, http.StatusCreated, result)
}

func (s *Server) handleEditComment(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	var req EditCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	commentID, err := uuid.Parse(req.CommentID)
	if err != nil {
		http.Error(w, "Invalid comment ID", http.StatusBadRequest)
		return
	}

	future := s.Context.RequestFuture(
		s.Engine.GetCommentActor(),
		&actors.EditCommentMsg{CommentID: commentID, AuthorID: userID, Content: req.Content},
		s.RequestTimeout,
	)
	result, err := future.Result()
	if err != nil {
		s.respondAppError(w, utils.NewActorTimeoutError("CommentActor"))
		return
	}
	if !s.handleActorResult(w, result) {
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	commentID, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, "Invalid comment ID", http.StatusBadRequest)
		return
	}

	future := s.Context.RequestFuture(
		s.Engine.GetCommentActor(),
		&actors.DeleteCommentMsg{CommentID: commentID, AuthorID: userID},
		s.RequestTimeout,
	)
	result, err := future.Result()
	if err != nil {
		s.respondAppError(w, utils.NewActorTimeoutError("CommentActor"))
		return
	}
	if !s.handleActorResult(w, result) {
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// HandlePostComments lists every comment on a post, oldest first
func (s *Server) HandlePostComments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		postID, err := uuid.Parse(r.URL.Query().Get("postId"))
		if err != nil {
			http.Error(w, "Invalid post ID", http.StatusBadRequest)
			return
		}

		future := s.Context.RequestFuture(
			s.Engine.GetCommentActor(),
			&actors.GetCommentsForPostMsg{PostID: postID},
			s.RequestTimeout,
		)
		result, err := future.Result()
		if err != nil {
			s.respondAppError(w, utils.NewActorTimeoutError("CommentActor"))
			return
		}
		if !s.handleActorResult(w, result) {
			return
		}

		s.respondJSON(w, http.StatusOK, result)
	}
}
