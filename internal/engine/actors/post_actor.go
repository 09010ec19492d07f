package actors

import (
	"log"
	"sort"
	"time"

	stdctx "context"

	"github.com/abhinash-ops/Mind-canvus/internal/database"
	"github.com/abhinash-ops/Mind-canvus/internal/models"
	"github.com/abhinash-ops/Mind-canvus/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for Post operations
type (
	CreatePostMsg struct {
		AuthorID      uuid.UUID
		Title         string
		Content       string
		Excerpt       string
		Category      string
		Tags          []string
		FeaturedImage string
		Status        string
		ScheduledFor  *time.Time
		IsPublic      bool
		AllowComments bool
	}

	GetPostMsg struct {
		PostID uuid.UUID
	}

	GetPostBySlugMsg struct {
		Slug string
	}

	// UpdatePostFields carries partial field changes; nil means "leave as is".
	UpdatePostFields struct {
		Title         *string
		Content       *string
		Excerpt       *string
		Category      *string
		Tags          *[]string
		FeaturedImage *string
		Status        *string
		ScheduledFor  *time.Time
		IsPublic      *bool
		AllowComments *bool
	}

	UpdatePostMsg struct {
		PostID   uuid.UUID
		AuthorID uuid.UUID
		Fields   UpdatePostFields
	}

	DeletePostMsg struct {
		PostID   uuid.UUID
		AuthorID uuid.UUID
	}

	ToggleLikeMsg struct {
		PostID uuid.UUID
		UserID uuid.UUID
	}

	IncrementViewsMsg struct {
		PostID uuid.UUID
	}

	ListPublishedMsg struct {
		Now      time.Time
		Category string
		AuthorID *uuid.UUID
		Limit    int
		Offset   int
	}

	GetUserPostsMsg struct {
		AuthorID uuid.UUID
	}

	// PublishScheduledMsg is sent by the scheduler once per tick. The
	// evaluation time travels with the message so ticks are reproducible
	// in tests.
	PublishScheduledMsg struct {
		Now time.Time
	}

	// AdjustCommentCountMsg is fired by the CommentActor when comments are
	// created or removed.
	AdjustCommentCountMsg struct {
		PostID uuid.UUID
		Delta  int
	}

	GetCountsMsg struct{}
)

// LikeResult is the response to a ToggleLikeMsg.
type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

// ViewResult is the response to an IncrementViewsMsg.
type ViewResult struct {
	Views int `json:"views"`
}

// PublishResult reports one scheduler tick's outcome.
type PublishResult struct {
	Published int `json:"published"`
	Failed    int `json:"failed"`
}

// PostActor owns all post state and serializes every mutation, so two
// requests can never interleave on the same post. It keeps authoritative
// in-memory state and mirrors writes to MongoDB when a database is attached;
// with no database it is a pure in-memory store.
type PostActor struct {
	postsByID map[uuid.UUID]*models.Post
	slugToID  map[string]uuid.UUID
	metrics   *utils.MetricsCollector
	mongodb   *database.MongoDB
	now       func() time.Time
}

const persistTimeout = 5 * time.Second

// NewPostActor creates a new PostActor instance. mongodb may be nil.
func NewPostActor(metrics *utils.MetricsCollector, mongodb *database.MongoDB) actor.Actor {
	return NewPostActorWithClock(metrics, mongodb, time.Now)
}

// NewPostActorWithClock injects the clock used for timestamp defaults,
// enabling deterministic tests.
func NewPostActorWithClock(metrics *utils.MetricsCollector, mongodb *database.MongoDB, now func() time.Time) actor.Actor {
	return &PostActor{
		postsByID: make(map[uuid.UUID]*models.Post),
		slugToID:  make(map[string]uuid.UUID),
		metrics:   metrics,
		mongodb:   mongodb,
		now:       now,
	}
}

// Receive handles incoming messages
func (a *PostActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("PostActor started")
	case *actor.Stopping:
		log.Printf("PostActor stopping")
	case *actor.Restarting:
		log.Printf("PostActor restarting")
	case *CreatePostMsg:
		a.handleCreatePost(context, msg)
	case *GetPostMsg:
		a.handleGetPost(context, msg)
	case *GetPostBySlugMsg:
		a.handleGetPostBySlug(context, msg)
	case *UpdatePostMsg:
		a.handleUpdatePost(context, msg)
	case *DeletePostMsg:
		a.handleDeletePost(context, msg)
	case *ToggleLikeMsg:
		a.handleToggleLike(context, msg)
	case *IncrementViewsMsg:
		a.handleIncrementViews(context, msg)
	case *ListPublishedMsg:
		a.handleListPublished(context, msg)
	case *GetUserPostsMsg:
		a.handleGetUserPosts(context, msg)
	case *PublishScheduledMsg:
		a.handlePublishScheduled(context, msg)
	case *AdjustCommentCountMsg:
		a.handleAdjustCommentCount(msg)
	case *GetCountsMsg:
		context.Respond(len(a.postsByID))
	}
}

func validateCreate(msg *CreatePostMsg) *utils.AppError {
	if msg.Title == "" {
		return utils.NewValidationError("Post title is required")
	}
	if len(msg.Title) > models.MaxTitleLength {
		return utils.NewValidationError("Title cannot exceed 200 characters")
	}
	if msg.Content == "" {
		return utils.NewValidationError("Post content is required")
	}
	if len(msg.Content) > models.MaxContentLength {
		return utils.NewValidationError("Content cannot exceed 10000 characters")
	}
	if len(msg.Excerpt) > models.MaxExcerptLength {
		return utils.NewValidationError("Excerpt cannot exceed 500 characters")
	}
	if msg.Category != "" && !models.ValidCategory(msg.Category) {
		return utils.NewValidationError("Unknown category: " + msg.Category)
	}
	for _, tag := range msg.Tags {
		if len(tag) > models.MaxTagLength {
			return utils.NewValidationError("Tag cannot exceed 30 characters")
		}
	}
	if msg.Status != "" && !models.ValidStatus(msg.Status) {
		return utils.NewValidationError("Unknown status: " + msg.Status)
	}
	if msg.Status == models.StatusScheduled && msg.ScheduledFor == nil {
		return utils.NewValidationError("scheduledFor is required for scheduled posts")
	}
	return nil
}

func (a *PostActor) handleCreatePost(context actor.Context, msg *CreatePostMsg) {
	startTime := time.Now()

	if appErr := validateCreate(msg); appErr != nil {
		context.Respond(appErr)
		return
	}

	status := msg.Status
	if status == "" {
		status = models.StatusDraft
	}
	category := msg.Category
	if category == "" {
		category = models.DefaultCategory
	}

	// The uniqueness token in the slug makes a collision essentially
	// impossible, but the map is authoritative so check anyway.
	slug := utils.GenerateSlug(msg.Title)
	for {
		if _, taken := a.slugToID[slug]; !taken {
			break
		}
		slug = utils.GenerateSlug(msg.Title)
	}

	now := a.now()
	newPost := &models.Post{
		ID:            uuid.New(),
		AuthorID:      msg.AuthorID,
		Title:         msg.Title,
		Content:       msg.Content,
		Excerpt:       msg.Excerpt,
		Category:      category,
		Tags:          msg.Tags,
		FeaturedImage: msg.FeaturedImage,
		Status:        status,
		PublishedAt:   now,
		IsPublic:      msg.IsPublic,
		AllowComments: msg.AllowComments,
		Likes:         make([]models.Like, 0),
		ReadTime:      models.CalculateReadTime(msg.Content),
		Slug:          slug,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if status == models.StatusScheduled {
		t := *msg.ScheduledFor
		newPost.ScheduledFor = &t
	}

	if a.mongodb != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), persistTimeout)
		defer cancel()
		if err := a.mongodb.SavePost(ctx, newPost); err != nil {
			log.Printf("PostActor: Failed to persist post %s: %v", newPost.ID, err)
			context.Respond(utils.NewDatabaseError("Failed to save post", err))
			return
		}
	}

	a.postsByID[newPost.ID] = newPost
	a.slugToID[slug] = newPost.ID

	a.metrics.AddOperationLatency("create_post", time.Since(startTime))
	context.Respond(newPost.Clone())
}

// lookupPost returns the in-memory post, falling back to MongoDB for posts
// created before this process started. Reads and mutations share this path
// so a persisted post is reachable without a prior read warming the cache.
func (a *PostActor) lookupPost(id uuid.UUID) *models.Post {
	if post, exists := a.postsByID[id]; exists {
		return post
	}
	if a.mongodb != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), persistTimeout)
		defer cancel()
		post, err := a.mongodb.GetPost(ctx, id)
		if err == nil {
			a.postsByID[post.ID] = post
			a.slugToID[post.Slug] = post.ID
			return post
		}
	}
	return nil
}

func (a *PostActor) handleGetPost(context actor.Context, msg *GetPostMsg) {
	if post := a.lookupPost(msg.PostID); post != nil {
		context.Respond(post.Clone())
		return
	}
	context.Respond(utils.NewPostNotFoundError(msg.PostID.String()))
}

func (a *PostActor) handleGetPostBySlug(context actor.Context, msg *GetPostBySlugMsg) {
	if id, exists := a.slugToID[msg.Slug]; exists {
		context.Respond(a.postsByID[id].Clone())
		return
	}

	if a.mongodb != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), persistTimeout)
		defer cancel()
		post, err := a.mongodb.GetPostBySlug(ctx, msg.Slug)
		if err == nil {
			a.postsByID[post.ID] = post
			a.slugToID[post.Slug] = post.ID
			context.Respond(post.Clone())
			return
		}
	}

	context.Respond(utils.NewPostNotFoundError(msg.Slug))
}

func (a *PostActor) handleUpdatePost(context actor.Context, msg *UpdatePostMsg) {
	startTime := time.Now()

	post := a.lookupPost(msg.PostID)
	if post == nil {
		context.Respond(utils.NewPostNotFoundError(msg.PostID.String()))
		return
	}
	if post.AuthorID != msg.AuthorID {
		context.Respond(utils.NewForbiddenError("only the author can edit a post"))
		return
	}

	if appErr := validateUpdate(post, &msg.Fields); appErr != nil {
		context.Respond(appErr)
		return
	}

	now := a.now()
	fields := &msg.Fields
	previousStatus := post.Status

	if fields.Title != nil {
		post.Title = *fields.Title
		// Slug stays as assigned at creation; it is never regenerated.
	}
	if fields.Content != nil {
		post.Content = *fields.Content
		post.ReadTime = models.CalculateReadTime(post.Content)
	}
	if fields.Excerpt != nil {
		post.Excerpt = *fields.Excerpt
	}
	if fields.Category != nil {
		post.Category = *fields.Category
	}
	if fields.Tags != nil {
		post.Tags = append([]string(nil), (*fields.Tags)...)
	}
	if fields.FeaturedImage != nil {
		post.FeaturedImage = *fields.FeaturedImage
	}
	if fields.IsPublic != nil {
		post.IsPublic = *fields.IsPublic
	}
	if fields.AllowComments != nil {
		post.AllowComments = *fields.AllowComments
	}
	if fields.ScheduledFor != nil {
		t := *fields.ScheduledFor
		post.ScheduledFor = &t
	}
	if fields.Status != nil {
		post.Status = *fields.Status
		if post.Status == models.StatusPublished && previousStatus != models.StatusPublished && post.PublishedAt.IsZero() {
			post.PublishedAt = now
		}
		// A post leaving the scheduled state keeps no stale trigger time.
		if post.Status != models.StatusScheduled {
			post.ScheduledFor = nil
		}
	}
	post.UpdatedAt = now

	if a.mongodb != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), persistTimeout)
		defer cancel()
		if err := a.mongodb.SavePost(ctx, post); err != nil {
			log.Printf("PostActor: Failed to persist update for post %s: %v", post.ID, err)
			context.Respond(utils.NewDatabaseError("Failed to save post", err))
			return
		}
	}

	a.metrics.AddOperationLatency("update_post", time.Since(startTime))
	context.Respond(post.Clone())
}

func validateUpdate(post *models.Post, fields *UpdatePostFields) *utils.AppError {
	if fields.Title != nil && (*fields.Title == "" || len(*fields.Title) > models.MaxTitleLength) {
		return utils.NewValidationError("Title must be 1-200 characters")
	}
	if fields.Content != nil && (*fields.Content == "" || len(*fields.Content) > models.MaxContentLength) {
		return utils.NewValidationError("Content must be 1-10000 characters")
	}
	if fields.Excerpt != nil && len(*fields.Excerpt) > models.MaxExcerptLength {
		return utils.NewValidationError("Excerpt cannot exceed 500 characters")
	}
	if fields.Category != nil && !models.ValidCategory(*fields.Category) {
		return utils.NewValidationError("Unknown category: " + *fields.Category)
	}
	if fields.Tags != nil {
		for _, tag := range *fields.Tags {
			if len(tag) > models.MaxTagLength {
				return utils.NewValidationError("Tag cannot exceed 30 characters")
			}
		}
	}
	if fields.Status != nil {
		if !models.ValidStatus(*fields.Status) {
			return utils.NewValidationError("Unknown status: " + *fields.Status)
		}
		if *fields.Status == models.StatusScheduled && fields.ScheduledFor == nil && post.ScheduledFor == nil {
			return utils.NewValidationError("scheduledFor is required for scheduled posts")
		}
	}
	return nil
}

func (a *PostActor) handleDeletePost(context actor.Context, msg *DeletePostMsg) {
	post := a.lookupPost(msg.PostID)
	if post == nil {
		context.Respond(utils.NewPostNotFoundError(msg.PostID.String()))
		return
	}
	if post.AuthorID != msg.AuthorID {
		context.Respond(utils.NewForbiddenError("only the author can delete a post"))
		return
	}

	if a.mongodb != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), persistTimeout)
		defer cancel()
		if err := a.mongodb.DeletePost(ctx, msg.PostID); err != nil {
			log.Printf("PostActor: Failed to delete post %s: %v", msg.PostID, err)
			context.Respond(utils.NewDatabaseError("Failed to delete post", err))
			return
		}
	}

	delete(a.slugToID, post.Slug)
	delete(a.postsByID, msg.PostID)
	context.Respond(true)
}

func (a *PostActor) handleToggleLike(context actor.Context, msg *ToggleLikeMsg) {
	startTime := time.Now()

	post := a.lookupPost(msg.PostID)
	if post == nil {
		context.Respond(utils.NewPostNotFoundError(msg.PostID.String()))
		return
	}

	now := a.now()
	if a.mongodb != nil {
		// The store-level toggle is a pair of conditional updates; the
		// actor's serialization keeps the in-memory mirror in step with it.
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), persistTimeout)
		defer cancel()
		if _, _, err := a.mongodb.ToggleLike(ctx, msg.PostID, msg.UserID, now); err != nil {
			log.Printf("PostActor: Failed to toggle like on post %s: %v", msg.PostID, err)
			context.Respond(utils.NewDatabaseError("Failed to toggle like", err))
			return
		}
	}

	liked := false
	if post.LikedBy(msg.UserID) {
		kept := post.Likes[:0]
		for _, like := range post.Likes {
			if like.UserID != msg.UserID {
				kept = append(kept, like)
			}
		}
		post.Likes = kept
	} else {
		post.Likes = append(post.Likes, models.Like{UserID: msg.UserID, CreatedAt: now})
		liked = true
	}

	a.metrics.AddOperationLatency("toggle_like", time.Since(startTime))
	context.Respond(&LikeResult{Liked: liked, LikeCount: post.LikeCount()})
}

func (a *PostActor) handleIncrementViews(context actor.Context, msg *IncrementViewsMsg) {
	post := a.lookupPost(msg.PostID)
	if post == nil {
		context.Respond(utils.NewPostNotFoundError(msg.PostID.String()))
		return
	}

	post.Views++

	if a.mongodb != nil {
		// Fire-and-forget from the caller's perspective; a lost increment
		// is acceptable, so only log.
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), persistTimeout)
		defer cancel()
		if err := a.mongodb.IncrementViews(ctx, msg.PostID); err != nil {
			log.Printf("PostActor: Failed to persist view for post %s: %v", msg.PostID, err)
		}
	}

	context.Respond(&ViewResult{Views: post.Views})
}

func (a *PostActor) handleListPublished(context actor.Context, msg *ListPublishedMsg) {
	startTime := time.Now()

	if a.mongodb != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), persistTimeout)
		defer cancel()
		posts, err := a.mongodb.GetPublishedPosts(ctx, msg.Now, msg.Category, msg.AuthorID, msg.Limit, msg.Offset)
		if err != nil {
			context.Respond(utils.NewDatabaseError("Failed to list posts", err))
			return
		}
		if posts == nil {
			posts = make([]*models.Post, 0)
		}
		a.metrics.AddOperationLatency("list_published", time.Since(startTime))
		context.Respond(posts)
		return
	}

	matches := make([]*models.Post, 0)
	for _, post := range a.postsByID {
		if post.Status != models.StatusPublished || post.PublishedAt.After(msg.Now) {
			continue
		}
		if msg.Category != "" && post.Category != msg.Category {
			continue
		}
		if msg.AuthorID != nil && post.AuthorID != *msg.AuthorID {
			continue
		}
		matches = append(matches, post)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].PublishedAt.After(matches[j].PublishedAt)
	})

	limit := msg.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := msg.Offset
	if offset > len(matches) {
		offset = len(matches)
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}

	page := make([]*models.Post, 0, end-offset)
	for _, post := range matches[offset:end] {
		page = append(page, post.Clone())
	}

	a.metrics.AddOperationLatency("list_published", time.Since(startTime))
	context.Respond(page)
}

func (a *PostActor) handleGetUserPosts(context actor.Context, msg *GetUserPostsMsg) {
	if a.mongodb != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), persistTimeout)
		defer cancel()
		posts, err := a.mongodb.GetUserPosts(ctx, msg.AuthorID)
		if err != nil {
			context.Respond(utils.NewDatabaseError("Failed to list posts", err))
			return
		}
		if posts == nil {
			posts = make([]*models.Post, 0)
		}
		context.Respond(posts)
		return
	}

	posts := make([]*models.Post, 0)
	for _, post := range a.postsByID {
		if post.AuthorID == msg.AuthorID {
			posts = append(posts, post.Clone())
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	context.Respond(posts)
}

// handlePublishScheduled runs one scheduler evaluation. Every due post is
// transitioned independently: one failure is logged and left for the next
// tick, never aborting the batch. The status guard (here and in the
// conditional MongoDB update) makes a tick that overlaps a manual publish
// or a previous tick a no-op for that post.
func (a *PostActor) handlePublishScheduled(context actor.Context, msg *PublishScheduledMsg) {
	result := &PublishResult{}

	if a.mongodb != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), persistTimeout)
		defer cancel()

		due, err := a.mongodb.GetDueScheduledPosts(ctx, msg.Now)
		if err != nil {
			log.Printf("PostActor: Failed to fetch due posts: %v", err)
			context.Respond(utils.NewDatabaseError("Failed to fetch due posts", err))
			return
		}

		for _, post := range due {
			ok, err := a.mongodb.PublishDuePost(ctx, post.ID, msg.Now)
			if err != nil {
				// Post stays scheduled; the next tick re-evaluates it.
				log.Printf("PostActor: Failed to publish scheduled post %s: %v", post.ID, err)
				result.Failed++
				continue
			}
			// ok is false when something else already published this post;
			// the local mirror was updated by that path.
			if ok {
				a.markPublishedLocally(post, msg.Now)
				log.Printf("PostActor: Published scheduled post %s", post.ID)
				result.Published++
			}
		}

		context.Respond(result)
		return
	}

	for _, post := range a.postsByID {
		if post.Status != models.StatusScheduled || post.ScheduledFor == nil {
			continue
		}
		if post.ScheduledFor.After(msg.Now) {
			continue
		}
		post.Status = models.StatusPublished
		post.PublishedAt = msg.Now
		post.ScheduledFor = nil
		post.UpdatedAt = msg.Now
		log.Printf("PostActor: Published scheduled post %s", post.ID)
		result.Published++
	}

	context.Respond(result)
}

// markPublishedLocally reconciles the in-memory mirror with a publish
// transition that was applied (or found already applied) in MongoDB.
func (a *PostActor) markPublishedLocally(post *models.Post, now time.Time) {
	local, exists := a.postsByID[post.ID]
	if !exists {
		local = post.Clone()
		a.postsByID[local.ID] = local
		a.slugToID[local.Slug] = local.ID
	}
	local.Status = models.StatusPublished
	local.PublishedAt = now
	local.ScheduledFor = nil
	local.UpdatedAt = now
}

func (a *PostActor) handleAdjustCommentCount(msg *AdjustCommentCountMsg) {
	if post := a.lookupPost(msg.PostID); post != nil {
		post.CommentsCount += msg.Delta
		if post.CommentsCount < 0 {
			post.CommentsCount = 0
		}
	}

	if a.mongodb != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), persistTimeout)
		defer cancel()
		if err := a.mongodb.IncrementCommentCount(ctx, msg.PostID, msg.Delta); err != nil {
			log.Printf("PostActor: Failed to persist comment count for post %s: %v", msg.PostID, err)
		}
	}
}
