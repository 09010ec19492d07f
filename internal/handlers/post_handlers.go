package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/abhinash-ops/Mind-canvus/internal/engine/actors"
	"github.com/abhinash-ops/Mind-canvus/internal/middleware"
	"github.com/abhinash-ops/Mind-canvus/internal/models"
	"github.com/abhinash-ops/Mind-canvus/internal/utils"

	"github.com/google/uuid"
)

// CreatePostRequest represents a request to create a new post
type CreatePostRequest struct {
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Excerpt       string     `json:"excerpt,omitempty"`
	Category      string     `json:"category,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	FeaturedImage string     `json:"featuredImage,omitempty"`
	Status        string     `json:"status,omitempty"`
	ScheduledFor  *time.Time `json:"scheduledFor,omitempty"`
	IsPublic      *bool      `json:"isPublic,omitempty"`
	AllowComments *bool      `json:"allowComments,omitempty"`
}

// UpdatePostRequest represents a partial update; absent fields are left
// untouched.
type UpdatePostRequest struct {
	PostID        string     `json:"postId"`
	Title         *string    `json:"title,omitempty"`
	Content       *string    `json:"content,omitempty"`
	Excerpt       *string    `json:"excerpt,omitempty"`
	Category      *string    `json:"category,omitempty"`
	Tags          *[]string  `json:"tags,omitempty"`
	FeaturedImage *string    `json:"featuredImage,omitempty"`
	Status        *string    `json:"status,omitempty"`
	ScheduledFor  *time.Time `json:"scheduledFor,omitempty"`
	IsPublic      *bool      `json:"isPublic,omitempty"`
	AllowComments *bool      `json:"allowComments,omitempty"`
}

// HandlePost handles creation, update and deletion of a single post
func (s *Server) HandlePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		switch r.Method {
		case http.MethodPost:
			s.handleCreatePost(w, r, userID)
		case http.MethodPut:
			s.handleUpdatePost(w, r, userID)
		case http.MethodDelete:
			s.handleDeletePost(w, r, userID)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	// Posts are public and commentable unless the author opts out.
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	allowComments := true
	if req.AllowComments != nil {
		allowComments = *req.AllowComments
	}

	msg := &actors.CreatePostMsg{
		AuthorID:      userID,
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		Category:      req.Category,
		Tags:          req.Tags,
		FeaturedImage: req.FeaturedImage,
		Status:        req.Status,
		ScheduledFor:  req.ScheduledFor,
		IsPublic:      isPublic,
		AllowComments: allowComments,
	}

	future := s.Context.RequestFuture(s.Engine.GetPostActor(), msg, s.RequestTimeout)
	result, err := future.Result()
	if err != nil {
		s.respondAppError(w, utils.NewActorTimeoutError("PostActor"))
		return
	}
	if !s.handleActorResult(w, result) {
		return
	}

	s.respondJSON(w, http.StatusCreated, result)
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	var req UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	postID, err := uuid.Parse(req.PostID)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	msg := &actors.UpdatePostMsg{
		PostID:   postID,
		AuthorID: userID,
		Fields: actors.UpdatePostFields{
			Title:         req.Title,
			Content:       req.Content,
			Excerpt:       req.Excerpt,
			Category:      req.Category,
			Tags:          req.Tags,
			FeaturedImage: req.FeaturedImage,
			Status:        req.Status,
			ScheduledFor:  req.ScheduledFor,
			IsPublic:      req.IsPublic,
			AllowComments: req.AllowComments,
		},
	}

	future := s.Context.RequestFuture(s.Engine.GetPostActor(), msg, s.RequestTimeout)
	result, err := future.Result()
	if err != nil {
		s.respondAppError(w, utils.NewActorTimeoutError("PostActor"))
		return
	}
	if !s.handleActorResult(w, result) {
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	postID, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	future := s.Context.RequestFuture(
		s.Engine.GetPostActor(),
		&actors.DeletePostMsg{PostID: postID, AuthorID: userID},
		s.RequestTimeout,
	)
	result, err := future.Result()
	if err != nil {
		s.respondAppError(w, utils.NewActorTimeoutError("PostActor"))
		return
	}
	if !s.handleActorResult(w, result) {
		return
	}

	// Comments under the post go with it.
	s.Context.Send(s.Engine.GetCommentActor(), &actors.RemovePostCommentsMsg{PostID: postID})

	s.respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// HandleGetPost returns a single post by ID or slug
func (s *Server) HandleGetPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var msg interface{}
		if idParam := r.URL.Query().Get("id"); idParam != "" {
			postID, err := uuid.Parse(idParam)
			if err != nil {
				http.Error(w, "Invalid post ID", http.StatusBadRequest)
				return
			}
			msg = &actors.GetPostMsg{PostID: postID}
		} else if slug := r.URL.Query().Get("slug"); slug != "" {
			msg = &actors.GetPostBySlugMsg{Slug: slug}
		} else {
			http.Error(w, "id or slug parameter required", http.StatusBadRequest)
			return
		}

		future := s.Context.RequestFuture(s.Engine.GetPostActor(), msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			s.respondAppError(w, utils.NewActorTimeoutError("PostActor"))
			return
		}
		if !s.handleActorResult(w, result) {
			return
		}

		// A read with ?view=true also counts as a view; the increment is
		// fire-and-forget so the read never waits on it.
		if post, ok := result.(*models.Post); ok && r.URL.Query().Get("view") == "true" {
			s.Context.Send(s.Engine.GetPostActor(), &actors.IncrementViewsMsg{PostID: post.ID})
			post.Views++
		}

		s.respondJSON(w, http.StatusOK, result)
	}
}

// HandleListPosts returns published posts, newest first
func (s *Server) HandleListPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		query := r.URL.Query()
		msg := &actors.ListPublishedMsg{
			Now:      time.Now(),
			Category: query.Get("category"),
		}
		if authorParam := query.Get("author"); authorParam != "" {
			authorID, err := uuid.Parse(authorParam)
			if err != nil {
				http.Error(w, "Invalid author ID", http.StatusBadRequest)
				return
			}
			msg.AuthorID = &authorID
		}
		if limitParam := query.Get("limit"); limitParam != "" {
			limit, err := strconv.Atoi(limitParam)
			if err != nil || limit < 1 || limit > 100 {
				http.Error(w, "Invalid limit", http.StatusBadRequest)
				return
			}
			msg.Limit = limit
		}
		if offsetParam := query.Get("offset"); offsetParam != "" {
			offset, err := strconv.Atoi(offsetParam)
			if err != nil || offset < 0 {
				http.Error(w, "Invalid offset", http.StatusBadRequest)
				return
			}
			msg.Offset = offset
		}

		future := s.Context.RequestFuture(s.Engine.GetPostActor(), msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			s.respondAppError(w, utils.NewActorTimeoutError("PostActor"))
			return
		}
		if !s.handleActorResult(w, result) {
			return
		}

		s.respondJSON(w, http.StatusOK, result)
	}
}

// HandleToggleLike flips the caller's like on a post
func (s *Server) HandleToggleLike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		postID, err := uuid.Parse(r.URL.Query().Get("postId"))
		if err != nil {
			http.Error(w, "Invalid post ID", http.StatusBadRequest)
			return
		}

		future := s.Context.RequestFuture(
			s.Engine.GetPostActor(),
			&actors.ToggleLikeMsg{PostID: postID, UserID: userID},
			s.RequestTimeout,
		)
		result, err := future.Result()
		if err != nil {
			s.respondAppError(w, utils.NewActorTimeoutError("PostActor"))
			return
		}
		if !s.handleActorResult(w, result) {
			return
		}

		s.respondJSON(w, http.StatusOK, result)
	}
}

// HandleIncrementViews bumps a post's view counter
func (s *Server) HandleIncrementViews() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		postID, err := uuid.Parse(r.URL.Query().Get("postId"))
		if err != nil {
			http.Error(w, "Invalid post ID", http.StatusBadRequest)
			return
		}

		future := s.Context.RequestFuture(
			s.Engine.GetPostActor(),
			&actors.IncrementViewsMsg{PostID: postID},
			s.RequestTimeout,
		)
		result, err := future.Result()
		if err != nil {
			s.respondAppError(w, utils.NewActorTimeoutError("PostActor"))
			return
		}
		if !s.handleActorResult(w, result) {
			return
		}

		s.respondJSON(w, http.StatusOK, result)
	}
}

// HandleUserPosts returns every post the caller has authored, drafts and
// scheduled posts included
func (s *Server) HandleUserPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		future := s.Context.RequestFuture(
			s.Engine.GetPostActor(),
			&actors.GetUserPostsMsg{AuthorID: userID},
			s.RequestTimeout,
		)
		result, err := future.Result()
		if err != nil {
			s.respondAppError(w, utils.NewActorTimeoutError("PostActor"))
			return
		}
		if !s.handleActorResult(w, result) {
			return
		}

		s.respondJSON(w, http.StatusOK, result)
	}
}
