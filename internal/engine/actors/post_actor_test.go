package actors

import (
	"testing"
	"time"

	"github.com/abhinash-ops/Mind-canvus/internal/models"
	"github.com/abhinash-ops/Mind-canvus/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = 5 * time.Second

func spawnPostActor(t *testing.T, now func() time.Time) (*actor.ActorSystem, *actor.PID) {
	t.Helper()
	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewPostActorWithClock(utils.NewMetricsCollector(), nil, now)
	})
	return system, system.Root.Spawn(props)
}

func createPost(t *testing.T, system *actor.ActorSystem, pid *actor.PID, msg *CreatePostMsg) *models.Post {
	t.Helper()
	future := system.Root.RequestFuture(pid, msg, testTimeout)
	result, err := future.Result()
	require.NoError(t, err)
	post, ok := result.(*models.Post)
	require.True(t, ok, "expected a post, got %T: %v", result, result)
	return post
}

func TestCreatePostDefaults(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	system, pid := spawnPostActor(t, func() time.Time { return base })

	post := createPost(t, system, pid, &CreatePostMsg{
		AuthorID:      uuid.New(),
		Title:         "Hello, World! My First Post",
		Content:       "Some short content here.",
		IsPublic:      true,
		AllowComments: true,
	})

	assert.Equal(t, models.StatusDraft, post.Status)
	assert.Equal(t, models.DefaultCategory, post.Category)
	assert.Equal(t, base, post.CreatedAt)
	assert.Equal(t, base, post.UpdatedAt)
	assert.Nil(t, post.ScheduledFor)
	assert.Zero(t, post.Views)
	assert.Empty(t, post.Likes)

	// Slug: lowercased title with punctuation collapsed, plus a unique token.
	assert.Regexp(t, `^hello-world-my-first-post-[a-z0-9]+$`, post.Slug)
	assert.Equal(t, 1, post.ReadTime)
}

func TestCreatePostSlugsAreUnique(t *testing.T) {
	system, pid := spawnPostActor(t, time.Now)

	first := createPost(t, system, pid, &CreatePostMsg{
		AuthorID: uuid.New(), Title: "Same Title", Content: "content",
	})
	second := createPost(t, system, pid, &CreatePostMsg{
		AuthorID: uuid.New(), Title: "Same Title", Content: "content",
	})

	assert.NotEqual(t, first.Slug, second.Slug)
}

func TestCreatePostValidation(t *testing.T) {
	system, pid := spawnPostActor(t, time.Now)

	cases := []struct {
		name string
		msg  *CreatePostMsg
	}{
		{"missing title", &CreatePostMsg{AuthorID: uuid.New(), Content: "x"}},
		{"missing content", &CreatePostMsg{AuthorID: uuid.New(), Title: "x"}},
		{"bad category", &CreatePostMsg{AuthorID: uuid.New(), Title: "x", Content: "y", Category: "Nonsense"}},
		{"bad status", &CreatePostMsg{AuthorID: uuid.New(), Title: "x", Content: "y", Status: "archived"}},
		{"scheduled without time", &CreatePostMsg{AuthorID: uuid.New(), Title: "x", Content: "y", Status: models.StatusScheduled}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			future := system.Root.RequestFuture(pid, tc.msg, testTimeout)
			result, err := future.Result()
			require.NoError(t, err)
			appErr, ok := result.(*utils.AppError)
			require.True(t, ok, "expected validation error, got %T", result)
			assert.Equal(t, utils.ErrInvalidInput, appErr.Code)
		})
	}
}

func TestToggleLikeIsIdempotentPerUser(t *testing.T) {
	system, pid := spawnPostActor(t, time.Now)
	post := createPost(t, system, pid, &CreatePostMsg{
		AuthorID: uuid.New(), Title: "Likeable", Content: "content",
	})
	userID := uuid.New()

	// First toggle likes the post.
	future := system.Root.RequestFuture(pid, &ToggleLikeMsg{PostID: post.ID, UserID: userID}, testTimeout)
	result, err := future.Result()
	require.NoError(t, err)
	likeResult, ok := result.(*LikeResult)
	require.True(t, ok, "got %T: %v", result, result)
	assert.True(t, likeResult.Liked)
	assert.Equal(t, 1, likeResult.LikeCount)

	// Second toggle removes it; the count never goes above one per user.
	future = system.Root.RequestFuture(pid, &ToggleLikeMsg{PostID: post.ID, UserID: userID}, testTimeout)
	result, err = future.Result()
	require.NoError(t, err)
	likeResult = result.(*LikeResult)
	assert.False(t, likeResult.Liked)
	assert.Equal(t, 0, likeResult.LikeCount)
}

func TestToggleLikeUnknownPost(t *testing.T) {
	system, pid := spawnPostActor(t, time.Now)

	future := system.Root.RequestFuture(pid, &ToggleLikeMsg{PostID: uuid.New(), UserID: uuid.New()}, testTimeout)
	result, err := future.Result()
	require.NoError(t, err)
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrNotFound, appErr.Code)
}

func TestIncrementViews(t *testing.T) {
	system, pid := spawnPostActor(t, time.Now)
	post := createPost(t, system, pid, &CreatePostMsg{
		AuthorID: uuid.New(), Title: "Viewed", Content: "content",
	})

	for i := 1; i <= 3; i++ {
		future := system.Root.RequestFuture(pid, &IncrementViewsMsg{PostID: post.ID}, testTimeout)
		result, err := future.Result()
		require.NoError(t, err)
		viewResult, ok := result.(*ViewResult)
		require.True(t, ok)
		assert.Equal(t, i, viewResult.Views)
	}
}

func TestUpdatePostRecomputesReadTime(t *testing.T) {
	system, pid := spawnPostActor(t, time.Now)
	authorID := uuid.New()
	post := createPost(t, system, pid, &CreatePostMsg{
		AuthorID: authorID, Title: "Short", Content: "tiny",
	})
	require.Equal(t, 1, post.ReadTime)

	longContent := ""
	for i := 0; i < 450; i++ {
		longContent += "word "
	}

	future := system.Root.RequestFuture(pid, &UpdatePostMsg{
		PostID:   post.ID,
		AuthorID: authorID,
		Fields:   UpdatePostFields{Content: &longContent},
	}, testTimeout)
	result, err := future.Result()
	require.NoError(t, err)
	updated, ok := result.(*models.Post)
	require.True(t, ok, "got %T: %v", result, result)
	assert.Equal(t, 3, updated.ReadTime)
}

func TestUpdatePostForbiddenForNonAuthor(t *testing.T) {
	system, pid := spawnPostActor(t, time.Now)
	post := createPost(t, system, pid, &CreatePostMsg{
		AuthorID: uuid.New(), Title: "Mine", Content: "content",
	})

	title := "Stolen"
	future := system.Root.RequestFuture(pid, &UpdatePostMsg{
		PostID:   post.ID,
		AuthorID: uuid.New(),
		Fields:   UpdatePostFields{Title: &title},
	}, testTimeout)
	result, err := future.Result()
	require.NoError(t, err)
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrForbidden, appErr.Code)
}

func TestStatusChangeClearsScheduledFor(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	system, pid := spawnPostActor(t, func() time.Time { return base })
	authorID := uuid.New()
	scheduledTime := base.Add(time.Hour)

	post := createPost(t, system, pid, &CreatePostMsg{
		AuthorID:     authorID,
		Title:        "Later",
		Content:      "content",
		Status:       models.StatusScheduled,
		ScheduledFor: &scheduledTime,
	})
	require.NotNil(t, post.ScheduledFor)

	draft := models.StatusDraft
	future := system.Root.RequestFuture(pid, &UpdatePostMsg{
		PostID:   post.ID,
		AuthorID: authorID,
		Fields:   UpdatePostFields{Status: &draft},
	}, testTimeout)
	result, err := future.Result()
	require.NoError(t, err)
	updated := result.(*models.Post)
	assert.Equal(t, models.StatusDraft, updated.Status)
	assert.Nil(t, updated.ScheduledFor)
}

func TestPublishScheduledPromotesDuePosts(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	system, pid := spawnPostActor(t, func() time.Time { return base })
	authorID := uuid.New()

	dueAt := base.Add(30 * time.Minute)
	notDueAt := base.Add(2 * time.Hour)

	due := createPost(t, system, pid, &CreatePostMsg{
		AuthorID: authorID, Title: "Due", Content: "content",
		Status: models.StatusScheduled, ScheduledFor: &dueAt,
	})
	notDue := createPost(t, system, pid, &CreatePostMsg{
		AuthorID: authorID, Title: "Not Due", Content: "content",
		Status: models.StatusScheduled, ScheduledFor: &notDueAt,
	})

	tickAt := base.Add(time.Hour)
	future := system.Root.RequestFuture(pid, &PublishScheduledMsg{Now: tickAt}, testTimeout)
	result, err := future.Result()
	require.NoError(t, err)
	publishResult, ok := result.(*PublishResult)
	require.True(t, ok)
	assert.Equal(t, 1, publishResult.Published)
	assert.Equal(t, 0, publishResult.Failed)

	// The due post is now published at the tick time.
	future = system.Root.RequestFuture(pid, &GetPostMsg{PostID: due.ID}, testTimeout)
	result, err = future.Result()
	require.NoError(t, err)
	published := result.(*models.Post)
	assert.Equal(t, models.StatusPublished, published.Status)
	assert.Equal(t, tickAt, published.PublishedAt)
	assert.Nil(t, published.ScheduledFor)

	// The future post is untouched.
	future = system.Root.RequestFuture(pid, &GetPostMsg{PostID: notDue.ID}, testTimeout)
	result, err = future.Result()
	require.NoError(t, err)
	pending := result.(*models.Post)
	assert.Equal(t, models.StatusScheduled, pending.Status)

	// A second tick publishes nothing new.
	future = system.Root.RequestFuture(pid, &PublishScheduledMsg{Now: tickAt.Add(time.Minute)}, testTimeout)
	result, err = future.Result()
	require.NoError(t, err)
	publishResult = result.(*PublishResult)
	assert.Equal(t, 0, publishResult.Published)
}

func TestListPublishedFiltersAndSorts(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	system, pid := spawnPostActor(t, func() time.Time { return clock })
	authorID := uuid.New()

	clock = base
	older := createPost(t, system, pid, &CreatePostMsg{
		AuthorID: authorID, Title: "Older", Content: "content",
		Status: models.StatusPublished, Category: "Technology",
	})
	clock = base.Add(time.Hour)
	newer := createPost(t, system, pid, &CreatePostMsg{
		AuthorID: authorID, Title: "Newer", Content: "content",
		Status: models.StatusPublished, Category: "Travel",
	})
	createPost(t, system, pid, &CreatePostMsg{
		AuthorID: authorID, Title: "Draft", Content: "content",
	})

	future := system.Root.RequestFuture(pid, &ListPublishedMsg{Now: base.Add(2 * time.Hour)}, testTimeout)
	result, err := future.Result()
	require.NoError(t, err)
	posts, ok := result.([]*models.Post)
	require.True(t, ok, "got %T", result)
	require.Len(t, posts, 2)
	assert.Equal(t, newer.ID, posts[0].ID)
	assert.Equal(t, older.ID, posts[1].ID)

	// Category filter.
	future = system.Root.RequestFuture(pid, &ListPublishedMsg{Now: base.Add(2 * time.Hour), Category: "Technology"}, testTimeout)
	result, err = future.Result()
	require.NoError(t, err)
	posts = result.([]*models.Post)
	require.Len(t, posts, 1)
	assert.Equal(t, older.ID, posts[0].ID)

	// A post published in the future is not listed yet.
	future = system.Root.RequestFuture(pid, &ListPublishedMsg{Now: base.Add(30 * time.Minute)}, testTimeout)
	result, err = future.Result()
	require.NoError(t, err)
	posts = result.([]*models.Post)
	require.Len(t, posts, 1)
	assert.Equal(t, older.ID, posts[0].ID)
}

func TestDeletePostRemovesSlug(t *testing.T) {
	system, pid := spawnPostActor(t, time.Now)
	authorID := uuid.New()
	post := createPost(t, system, pid, &CreatePostMsg{
		AuthorID: authorID, Title: "Ephemeral", Content: "content",
	})

	future := system.Root.RequestFuture(pid, &DeletePostMsg{PostID: post.ID, AuthorID: authorID}, testTimeout)
	result, err := future.Result()
	require.NoError(t, err)
	assert.Equal(t, true, result)

	future = system.Root.RequestFuture(pid, &GetPostBySlugMsg{Slug: post.Slug}, testTimeout)
	result, err = future.Result()
	require.NoError(t, err)
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrNotFound, appErr.Code)
}

func TestAdjustCommentCountFloorsAtZero(t *testing.T) {
	system, pid := spawnPostActor(t, time.Now)
	post := createPost(t, system, pid, &CreatePostMsg{
		AuthorID: uuid.New(), Title: "Counted", Content: "content",
	})

	system.Root.Send(pid, &AdjustCommentCountMsg{PostID: post.ID, Delta: 2})
	system.Root.Send(pid, &AdjustCommentCountMsg{PostID: post.ID, Delta: -5})

	future := system.Root.RequestFuture(pid, &GetPostMsg{PostID: post.ID}, testTimeout)
	result, err := future.Result()
	require.NoError(t, err)
	fetched := result.(*models.Post)
	assert.Equal(t, 0, fetched.CommentsCount)
}
