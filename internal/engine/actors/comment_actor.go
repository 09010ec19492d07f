package actors

import (
	stdctx "context"
	"log"
	"sort"
	"time"

	"github.com/abhinash-ops/Mind-canvus/internal/database"
	"github.com/abhinash-ops/Mind-canvus/internal/models"
	"github.com/abhinash-ops/Mind-canvus/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for CommentActor
type (
	CreateCommentMsg struct {
		Content  string     `json:"content"`
		AuthorID uuid.UUID  `json:"authorId"`
		PostID   uuid.UUID  `json:"postId"`
		ParentID *uuid.UUID `json:"parentId,omitempty"`
	}

	EditCommentMsg struct {
		CommentID uuid.UUID `json:"commentId"`
		AuthorID  uuid.UUID `json:"authorId"`
		Content   string    `json:"content"`
	}

	DeleteCommentMsg struct {
		CommentID uuid.UUID `json:"commentId"`
		AuthorID  uuid.UUID `json:"authorId"`
	}

	GetCommentMsg struct {
		CommentID uuid.UUID `json:"commentId"`
	}

	GetCommentsForPostMsg struct {
		PostID uuid.UUID `json:"postId"`
	}

	// RemovePostCommentsMsg removes every comment under a deleted post.
	RemovePostCommentsMsg struct {
		PostID uuid.UUID `json:"postId"`
	}
)

// CommentActor owns all comment state. It talks to the PostActor to check
// that a target post exists and accepts comments, and notifies it when the
// comment count changes.
type CommentActor struct {
	comments       map[uuid.UUID]*models.Comment
	commentsByPost map[uuid.UUID][]uuid.UUID
	postActor      *actor.PID
	metrics        *utils.MetricsCollector
	mongodb        *database.MongoDB
}

func NewCommentActor(postActor *actor.PID, metrics *utils.MetricsCollector, mongodb *database.MongoDB) actor.Actor {
	return &CommentActor{
		comments:       make(map[uuid.UUID]*models.Comment),
		commentsByPost: make(map[uuid.UUID][]uuid.UUID),
		postActor:      postActor,
		metrics:        metrics,
		mongodb:        mongodb,
	}
}

func (a *CommentActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("CommentActor started")
	case *CreateCommentMsg:
		a.handleCreateComment(context, msg)
	case *EditCommentMsg:
		a.handleEditComment(context, msg)
	case *DeleteCommentMsg:
		a.handleDeleteComment(context, msg)
	case *GetCommentMsg:
		a.handleGetComment(context, msg)
	case *GetCommentsForPostMsg:
		a.handleGetCommentsForPost(context, msg)
	case *RemovePostCommentsMsg:
		a.handleRemovePostComments(context, msg)
	}
}

func (a *CommentActor) handleCreateComment(context actor.Context, msg *CreateCommentMsg) {
	startTime := time.Now()

	if msg.Content == "" {
		context.Respond(utils.NewValidationError("Comment content is required"))
		return
	}
	if len(msg.Content) > models.MaxCommentLength {
		context.Respond(utils.NewValidationError("Comment cannot exceed 1000 characters"))
		return
	}

	// The post must exist and allow comments. Asking the PostActor keeps
	// a single owner for post state.
	future := context.RequestFuture(a.postActor, &GetPostMsg{PostID: msg.PostID}, persistTimeout)
	result, err := future.Result()
	if err != nil {
		log.Printf("CommentActor: Failed to verify post %s: %v", msg.PostID, err)
		context.Respond(utils.NewActorTimeoutError("PostActor"))
		return
	}
	post, ok := result.(*models.Post)
	if !ok {
		context.Respond(utils.NewPostNotFoundError(msg.PostID.String()))
		return
	}
	if !post.AllowComments {
		context.Respond(utils.NewForbiddenError("comments are disabled on this post"))
		return
	}

	if msg.ParentID != nil {
		parent, exists := a.comments[*msg.ParentID]
		if !exists || parent.PostID != msg.PostID {
			context.Respond(utils.NewAppError(utils.ErrNotFound, "Parent comment not found", nil))
			return
		}
	}

	now := time.Now()
	comment := &models.Comment{
		ID:        uuid.New(),
		Content:   msg.Content,
		AuthorID:  msg.AuthorID,
		PostID:    msg.PostID,
		ParentID:  msg.ParentID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if a.mongodb != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), persistTimeout)
		defer cancel()
		if err := a.mongodb.SaveComment(ctx, comment); err != nil {
			log.Printf("CommentActor: Failed to persist comment %s: %v", comment.ID, err)
			context.Respond(utils.NewDatabaseError("Failed to save comment", err))
			return
		}
	}

	a.comments[comment.ID] = comment
	a.commentsByPost[comment.PostID] = append(a.commentsByPost[comment.PostID], comment.ID)

	context.Send(a.postActor, &AdjustCommentCountMsg{PostID: comment.PostID, Delta: 1})

	a.metrics.AddOperationLatency("create_comment", time.Since(startTime))
	context.Respond(comment)
}

func (a *CommentActor) handleEditComment(context actor.Context, msg *EditCommentMsg) {
	comment, exists := a.comments[msg.CommentID]
	if !exists {
		context.Respond(utils.NewAppError(utils.ErrNotFound, "Comment not found", nil))
		return
	}
	if comment.AuthorID != msg.AuthorID {
		context.Respond(utils.NewForbiddenError("only the author can edit a comment"))
		return
	}
	if msg.Content == "" || len(msg.Content) > models.MaxCommentLength {
		context.Respond(utils.NewValidationError("Comment must be 1-1000 characters"))
		return
	}

	comment.Content = msg.Content
	comment.UpdatedAt = time.Now()

	if a.mongodb != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), persistTimeout)
		defer cancel()
		if err := a.mongodb.SaveComment(ctx, comment); err != nil {
			log.Printf("CommentActor: Failed to persist comment edit %s: %v", comment.ID, err)
			context.Respond(utils.NewDatabaseError("Failed to save comment", err))
			return
		}
	}

	context.Respond(comment)
}

func (a *CommentActor) handleDeleteComment(context actor.Context, msg *DeleteCommentMsg) {
	comment, exists := a.comments[msg.CommentID]
	if !exists {
		context.Respond(utils.NewAppError(utils.ErrNotFound, "Comment not found", nil))
		return
	}
	if comment.AuthorID != msg.AuthorID {
		context.Respond(utils.NewForbiddenError("only the author can delete a comment"))
		return
	}

	// Replies go with their parent.
	removed := a.removeSubtree(msg.CommentID, comment.PostID)

	if a.mongodb != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), persistTimeout)
		defer cancel()
		for _, id := range removed {
			if err := a.mongodb.DeleteComment(ctx, id); err != nil {
				log.Printf("CommentActor: Failed to delete comment %s: %v", id, err)
			}
		}
	}

	context.Send(a.postActor, &AdjustCommentCountMsg{PostID: comment.PostID, Delta: -len(removed)})
	context.Respond(true)
}

// removeSubtree drops a comment and all its descendants from the in-memory
// maps, returning the removed IDs.
func (a *CommentActor) removeSubtree(rootID uuid.UUID, postID uuid.UUID) []uuid.UUID {
	removed := []uuid.UUID{rootID}
	frontier := []uuid.UUID{rootID}

	for len(frontier) > 0 {
		parentID := frontier[0]
		frontier = frontier[1:]
		for _, id := range a.commentsByPost[postID] {
			child, exists := a.comments[id]
			if exists && child.ParentID != nil && *child.ParentID == parentID {
				removed = append(removed, id)
				frontier = append(frontier, id)
			}
		}
	}

	removedSet := make(map[uuid.UUID]bool, len(removed))
	for _, id := range removed {
		removedSet[id] = true
		delete(a.comments, id)
	}

	kept := a.commentsByPost[postID][:0]
	for _, id := range a.commentsByPost[postID] {
		if !removedSet[id] {
			kept = append(kept, id)
		}
	}
	a.commentsByPost[postID] = kept

	return removed
}

func (a *CommentActor) handleGetComment(context actor.Context, msg *GetCommentMsg) {
	if comment, exists := a.comments[msg.CommentID]; exists {
		context.Respond(comment)
		return
	}

	if a.mongodb != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), persistTimeout)
		defer cancel()
		comment, err := a.mongodb.GetComment(ctx, msg.CommentID)
		if err == nil {
			a.comments[comment.ID] = comment
			a.commentsByPost[comment.PostID] = append(a.commentsByPost[comment.PostID], comment.ID)
			context.Respond(comment)
			return
		}
	}

	context.Respond(utils.NewAppError(utils.ErrNotFound, "Comment not found", nil))
}

func (a *CommentActor) handleGetCommentsForPost(context actor.Context, msg *GetCommentsForPostMsg) {
	if a.mongodb != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), persistTimeout)
		defer cancel()
		comments, err := a.mongodb.GetPostComments(ctx, msg.PostID)
		if err != nil {
			context.Respond(utils.NewDatabaseError("Failed to list comments", err))
			return
		}
		if comments == nil {
			comments = make([]*models.Comment, 0)
		}
		context.Respond(comments)
		return
	}

	comments := make([]*models.Comment, 0, len(a.commentsByPost[msg.PostID]))
	for _, id := range a.commentsByPost[msg.PostID] {
		if comment, exists := a.comments[id]; exists {
			comments = append(comments, comment)
		}
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	context.Respond(comments)
}

func (a *CommentActor) handleRemovePostComments(context actor.Context, msg *RemovePostCommentsMsg) {
	removed := 0
	for _, id := range a.commentsByPost[msg.PostID] {
		delete(a.comments, id)
		removed++
	}
	delete(a.commentsByPost, msg.PostID)

	if a.mongodb != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), persistTimeout)
		defer cancel()
		count, err := a.mongodb.DeletePostComments(ctx, msg.PostID)
		if err != nil {
			log.Printf("CommentActor: Failed to delete comments for post %s: %v", msg.PostID, err)
			context.Respond(utils.NewDatabaseError("Failed to delete comments", err))
			return
		}
		if int(count) > removed {
			removed = int(count)
		}
	}

	log.Printf("CommentActor: Removed %d comments for post %s", removed, msg.PostID)
	context.Respond(removed)
}
