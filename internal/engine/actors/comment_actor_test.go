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

func spawnCommentSetup(t *testing.T) (*actor.ActorSystem, *actor.PID, *actor.PID) {
	t.Helper()
	system := actor.NewActorSystem()
	metrics := utils.NewMetricsCollector()

	postProps := actor.PropsFromProducer(func() actor.Actor {
		return NewPostActor(metrics, nil)
	})
	postPID := system.Root.Spawn(postProps)

	commentProps := actor.PropsFromProducer(func() actor.Actor {
		return NewCommentActor(postPID, metrics, nil)
	})
	commentPID := system.Root.Spawn(commentProps)

	return system, postPID, commentPID
}

func createComment(t *testing.T, system *actor.ActorSystem, commentPID *actor.PID, msg *CreateCommentMsg) *models.Comment {
	t.Helper()
	future := system.Root.RequestFuture(commentPID, msg, testTimeout)
	result, err := future.Result()
	require.NoError(t, err)
	comment, ok := result.(*models.Comment)
	require.True(t, ok, "expected a comment, got %T: %v", result, result)
	return comment
}

func TestCreateCommentUpdatesPostCount(t *testing.T) {
	system, postPID, commentPID := spawnCommentSetup(t)
	post := createPost(t, system, postPID, &CreatePostMsg{
		AuthorID: uuid.New(), Title: "Discussed", Content: "content", AllowComments: true,
	})

	comment := createComment(t, system, commentPID, &CreateCommentMsg{
		Content:  "First!",
		AuthorID: uuid.New(),
		PostID:   post.ID,
	})
	assert.Equal(t, post.ID, comment.PostID)
	assert.Nil(t, comment.ParentID)

	// Count propagation is asynchronous via Send.
	require.Eventually(t, func() bool {
		future := system.Root.RequestFuture(postPID, &GetPostMsg{PostID: post.ID}, testTimeout)
		result, err := future.Result()
		if err != nil {
			return false
		}
		fetched, ok := result.(*models.Post)
		return ok && fetched.CommentsCount == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestCommentOnPostWithCommentsDisabled(t *testing.T) {
	system, postPID, commentPID := spawnCommentSetup(t)
	post := createPost(t, system, postPID, &CreatePostMsg{
		AuthorID: uuid.New(), Title: "Quiet", Content: "content", AllowComments: false,
	})

	future := system.Root.RequestFuture(commentPID, &CreateCommentMsg{
		Content:  "Anyone there?",
		AuthorID: uuid.New(),
		PostID:   post.ID,
	}, testTimeout)
	result, err := future.Result()
	require.NoError(t, err)
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok, "got %T: %v", result, result)
	assert.Equal(t, utils.ErrForbidden, appErr.Code)
}

func TestCommentOnMissingPost(t *testing.T) {
	system, _, commentPID := spawnCommentSetup(t)

	future := system.Root.RequestFuture(commentPID, &CreateCommentMsg{
		Content:  "Hello?",
		AuthorID: uuid.New(),
		PostID:   uuid.New(),
	}, testTimeout)
	result, err := future.Result()
	require.NoError(t, err)
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrNotFound, appErr.Code)
}

func TestDeleteCommentRemovesReplies(t *testing.T) {
	system, postPID, commentPID := spawnCommentSetup(t)
	authorID := uuid.New()
	post := createPost(t, system, postPID, &CreatePostMsg{
		AuthorID: authorID, Title: "Threaded", Content: "content", AllowComments: true,
	})

	parent := createComment(t, system, commentPID, &CreateCommentMsg{
		Content: "parent", AuthorID: authorID, PostID: post.ID,
	})
	reply := createComment(t, system, commentPID, &CreateCommentMsg{
		Content: "reply", AuthorID: uuid.New(), PostID: post.ID, ParentID: &parent.ID,
	})

	future := system.Root.RequestFuture(commentPID, &DeleteCommentMsg{
		CommentID: parent.ID, AuthorID: authorID,
	}, testTimeout)
	result, err := future.Result()
	require.NoError(t, err)
	require.Equal(t, true, result)

	// Both the parent and its reply are gone.
	for _, id := range []uuid.UUID{parent.ID, reply.ID} {
		future = system.Root.RequestFuture(commentPID, &GetCommentMsg{CommentID: id}, testTimeout)
		result, err = future.Result()
		require.NoError(t, err)
		_, isErr := result.(*utils.AppError)
		assert.True(t, isErr, "comment %s should be deleted", id)
	}
}

func TestEditCommentOnlyByAuthor(t *testing.T) {
	system, postPID, commentPID := spawnCommentSetup(t)
	authorID := uuid.New()
	post := createPost(t, system, postPID, &CreatePostMsg{
		AuthorID: authorID, Title: "Edited", Content: "content", AllowComments: true,
	})
	comment := createComment(t, system, commentPID, &CreateCommentMsg{
		Content: "tpyo", AuthorID: authorID, PostID: post.ID,
	})

	future := system.Root.RequestFuture(commentPID, &EditCommentMsg{
		CommentID: comment.ID, AuthorID: uuid.New(), Content: "hijacked",
	}, testTimeout)
	result, err := future.Result()
	require.NoError(t, err)
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrForbidden, appErr.Code)

	future = system.Root.RequestFuture(commentPID, &EditCommentMsg{
		CommentID: comment.ID, AuthorID: authorID, Content: "typo",
	}, testTimeout)
	result, err = future.Result()
	require.NoError(t, err)
	edited, ok := result.(*models.Comment)
	require.True(t, ok)
	assert.Equal(t, "typo", edited.Content)
}

func TestGetCommentsForPostOrdersOldestFirst(t *testing.T) {
	system, postPID, commentPID := spawnCommentSetup(t)
	post := createPost(t, system, postPID, &CreatePostMsg{
		AuthorID: uuid.New(), Title: "Ordered", Content: "content", AllowComments: true,
	})

	first := createComment(t, system, commentPID, &CreateCommentMsg{
		Content: "first", AuthorID: uuid.New(), PostID: post.ID,
	})
	second := createComment(t, system, commentPID, &CreateCommentMsg{
		Content: "second", AuthorID: uuid.New(), PostID: post.ID,
	})

	future := system.Root.RequestFuture(commentPID, &GetCommentsForPostMsg{PostID: post.ID}, testTimeout)
	result, err := future.Result()
	require.NoError(t, err)
	comments, ok := result.([]*models.Comment)
	require.True(t, ok)
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID)
	assert.Equal(t, second.ID, comments[1].ID)
}

func TestRemovePostComments(t *testing.T) {
	system, postPID, commentPID := spawnCommentSetup(t)
	post := createPost(t, system, postPID, &CreatePostMsg{
		AuthorID: uuid.New(), Title: "Doomed", Content: "content", AllowComments: true,
	})
	for i := 0; i < 3; i++ {
		createComment(t, system, commentPID, &CreateCommentMsg{
			Content: "c", AuthorID: uuid.New(), PostID: post.ID,
		})
	}

	future := system.Root.RequestFuture(commentPID, &RemovePostCommentsMsg{PostID: post.ID}, testTimeout)
	result, err := future.Result()
	require.NoError(t, err)
	assert.Equal(t, 3, result)

	future = system.Root.RequestFuture(commentPID, &GetCommentsForPostMsg{PostID: post.ID}, testTimeout)
	result, err = future.Result()
	require.NoError(t, err)
	assert.Empty(t, result.([]*models.Comment))
}
