package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abhinash-ops/Mind-canvus/internal/engine"
	"github.com/abhinash-ops/Mind-canvus/internal/middleware"
	"github.com/abhinash-ops/Mind-canvus/internal/models"
	"github.com/abhinash-ops/Mind-canvus/internal/types"
	"github.com/abhinash-ops/Mind-canvus/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	middleware.Configure("handlers_test_secret", time.Hour)

	metrics := utils.NewMetricsCollector()
	system := actor.NewActorSystem()
	eng := engine.NewEngine(system, metrics, nil)
	server := NewServer(system, eng, metrics, nil, 5*time.Second)

	mux := http.NewServeMux()
	register := func(path string, handler http.HandlerFunc) {
		mux.HandleFunc(path, middleware.ApplyJWTMiddleware(handler, path))
	}
	register("/health", server.HandleHealth())
	register("/user/register", server.HandleUserRegistration())
	register("/user/login", server.HandleUserLogin())
	register("/user/profile", server.HandleUserProfile())
	register("/user/friends", server.HandleFriends())
	register("/user/friends/request", server.HandleFriendRequests())
	register("/user/friends/accept", server.HandleAcceptFriendRequest())
	register("/post", server.HandlePost())
	register("/posts", server.HandleListPosts())
	register("/posts/get", server.HandleGetPost())
	register("/posts/like", server.HandleToggleLike())
	register("/posts/views", server.HandleIncrementViews())
	register("/posts/user", server.HandleUserPosts())
	register("/comments", server.HandleComment())
	register("/comments/post", server.HandlePostComments())

	return server, mux
}

func doJSON(t *testing.T, mux http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func registerAndLogin(t *testing.T, mux http.Handler, username, email string) string {
	t.Helper()
	rec := doJSON(t, mux, http.MethodPost, "/user/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, mux, http.MethodPost, "/user/login", "", map[string]string{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var loginResp types.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loginResp))
	require.True(t, loginResp.Success)
	require.NotEmpty(t, loginResp.Token)
	return loginResp.Token
}

func TestHealthEndpoint(t *testing.T) {
	_, mux := newTestServer(t)

	rec := doJSON(t, mux, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body, "metrics")
}

func TestPostLifecycleOverHTTP(t *testing.T) {
	_, mux := newTestServer(t)
	token := registerAndLogin(t, mux, "author", "author@example.com")

	// Create a published post.
	rec := doJSON(t, mux, http.MethodPost, "/post", token, map[string]interface{}{
		"title":    "My First Post",
		"content":  "Hello from the test suite.",
		"status":   models.StatusPublished,
		"category": "Technology",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var post models.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	assert.Equal(t, models.StatusPublished, post.Status)
	assert.NotEmpty(t, post.Slug)

	// It shows up in the public listing without a token.
	rec = doJSON(t, mux, http.MethodGet, "/posts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []models.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, post.ID, listed[0].ID)

	// Fetch by slug, still anonymous.
	rec = doJSON(t, mux, http.MethodGet, "/posts/get?slug="+post.Slug, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Like it (authenticated), twice: like then unlike.
	rec = doJSON(t, mux, http.MethodPost, "/posts/like?postId="+post.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var likeResp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &likeResp))
	assert.Equal(t, true, likeResp["liked"])
	assert.Equal(t, float64(1), likeResp["likeCount"])

	rec = doJSON(t, mux, http.MethodPost, "/posts/like?postId="+post.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &likeResp))
	assert.Equal(t, false, likeResp["liked"])
	assert.Equal(t, float64(0), likeResp["likeCount"])

	// Views increment anonymously.
	rec = doJSON(t, mux, http.MethodPost, "/posts/views?postId="+post.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var viewResp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &viewResp))
	assert.Equal(t, float64(1), viewResp["views"])

	// Delete requires the author's token.
	rec = doJSON(t, mux, http.MethodDelete, fmt.Sprintf("/post?id=%s", post.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, mux, http.MethodGet, "/posts/get?id="+post.ID.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetPostWithViewParamCountsView(t *testing.T) {
	_, mux := newTestServer(t)
	token := registerAndLogin(t, mux, "viewer", "viewer@example.com")

	rec := doJSON(t, mux, http.MethodPost, "/post", token, map[string]interface{}{
		"title":   "Counted Read",
		"content": "Reading this counts.",
		"status":  models.StatusPublished,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var post models.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))

	// A read with view=true reports the view it just caused.
	rec = doJSON(t, mux, http.MethodGet, fmt.Sprintf("/posts/get?id=%s&view=true", post.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var viewed models.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &viewed))
	assert.Equal(t, 1, viewed.Views)

	// The increment lands on the actor; a plain read sees it.
	require.Eventually(t, func() bool {
		rec := doJSON(t, mux, http.MethodGet, "/posts/get?id="+post.ID.String(), "", nil)
		var p models.Post
		if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
			return false
		}
		return p.Views == 1
	}, time.Second, 10*time.Millisecond)
}

func TestCreatePostRequiresAuth(t *testing.T) {
	_, mux := newTestServer(t)

	rec := doJSON(t, mux, http.MethodPost, "/post", "", map[string]string{
		"title":   "Anonymous",
		"content": "should fail",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestValidationErrorsMapToBadRequest(t *testing.T) {
	_, mux := newTestServer(t)
	token := registerAndLogin(t, mux, "strict", "strict@example.com")

	rec := doJSON(t, mux, http.MethodPost, "/post", token, map[string]string{
		"content": "a post with no title",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, utils.ErrInvalidInput, body["code"])
}

func TestCommentFlowOverHTTP(t *testing.T) {
	_, mux := newTestServer(t)
	authorToken := registerAndLogin(t, mux, "blogger", "blogger@example.com")
	readerToken := registerAndLogin(t, mux, "reader", "reader@example.com")

	rec := doJSON(t, mux, http.MethodPost, "/post", authorToken, map[string]interface{}{
		"title":   "Commentable",
		"content": "content",
		"status":  models.StatusPublished,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var post models.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))

	rec = doJSON(t, mux, http.MethodPost, "/comments", readerToken, map[string]string{
		"postId":  post.ID.String(),
		"content": "Nice post!",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var comment models.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comment))
	assert.Equal(t, "Nice post!", comment.Content)

	// Comments are publicly listable.
	rec = doJSON(t, mux, http.MethodGet, "/comments/post?postId="+post.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var comments []models.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comments))
	require.Len(t, comments, 1)
}

func TestFriendFlowOverHTTP(t *testing.T) {
	_, mux := newTestServer(t)
	aliceToken := registerAndLogin(t, mux, "alice", "alice-http@example.com")
	bobToken := registerAndLogin(t, mux, "bob", "bob-http@example.com")

	// Look up each other's IDs via profiles.
	rec := doJSON(t, mux, http.MethodGet, "/user/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/user/profile", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var bob models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bob))

	rec = doJSON(t, mux, http.MethodGet, "/user/profile", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var alice models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alice))

	// Alice requests, Bob accepts.
	rec = doJSON(t, mux, http.MethodPost, "/user/friends/request", aliceToken, map[string]string{
		"userId": bob.ID.String(),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, mux, http.MethodPost, "/user/friends/accept", bobToken, map[string]string{
		"userId": alice.ID.String(),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, mux, http.MethodGet, "/user/friends", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var friends []models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &friends))
	require.Len(t, friends, 1)
	assert.Equal(t, bob.ID, friends[0].ID)
}
