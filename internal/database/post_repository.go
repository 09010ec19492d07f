// internal/database/post_repository.go
package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/abhinash-ops/Mind-canvus/internal/models"
	"github.com/abhinash-ops/Mind-canvus/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LikeDocument is a single entry in a post's embedded like set.
type LikeDocument struct {
	User      string    `bson:"user"`
	CreatedAt time.Time `bson:"createdat"`
}

// PostDocument represents the MongoDB schema for a post.
type PostDocument struct {
	ID            string         `bson:"_id"`
	AuthorID      string         `bson:"authorid"`
	Title         string         `bson:"title"`
	Content       string         `bson:"content"`
	Excerpt       string         `bson:"excerpt,omitempty"`
	Category      string         `bson:"category"`
	Tags          []string       `bson:"tags"`
	FeaturedImage string         `bson:"featuredimage,omitempty"`
	Status        string         `bson:"status"`
	PublishedAt   time.Time      `bson:"publishedat"`
	ScheduledFor  *time.Time     `bson:"scheduledfor,omitempty"`
	IsPublic      bool           `bson:"ispublic"`
	AllowComments bool           `bson:"allowcomments"`
	Likes         []LikeDocument `bson:"likes"`
	Views         int            `bson:"views"`
	ReadTime      int            `bson:"readtime"`
	CommentsCount int            `bson:"commentscount"`
	Slug          string         `bson:"slug,omitempty"`
	CreatedAt     time.Time      `bson:"createdat"`
	UpdatedAt     time.Time      `bson:"updatedat"`
}

// PostModelToDocument converts a Post model to a MongoDB document.
func PostModelToDocument(post *models.Post) *PostDocument {
	likes := make([]LikeDocument, len(post.Likes))
	for i, like := range post.Likes {
		likes[i] = LikeDocument{
			User:      like.UserID.String(),
			CreatedAt: like.CreatedAt,
		}
	}

	return &PostDocument{
		ID:            post.ID.String(),
		AuthorID:      post.AuthorID.String(),
		Title:         post.Title,
		Content:       post.Content,
		Excerpt:       post.Excerpt,
		Category:      post.Category,
		Tags:          post.Tags,
		FeaturedImage: post.FeaturedImage,
		Status:        post.Status,
		PublishedAt:   post.PublishedAt,
		ScheduledFor:  post.ScheduledFor,
		IsPublic:      post.IsPublic,
		AllowComments: post.AllowComments,
		Likes:         likes,
		Views:         post.Views,
		ReadTime:      post.ReadTime,
		CommentsCount: post.CommentsCount,
		Slug:          post.Slug,
		CreatedAt:     post.CreatedAt,
		UpdatedAt:     post.UpdatedAt,
	}
}

// PostDocumentToModel converts a MongoDB document to a Post model.
func PostDocumentToModel(doc *PostDocument) (*models.Post, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID: %v", err)
	}

	authorID, err := uuid.Parse(doc.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("invalid author ID: %v", err)
	}

	likes := make([]models.Like, 0, len(doc.Likes))
	for _, like := range doc.Likes {
		userID, err := uuid.Parse(like.User)
		if err != nil {
			log.Printf("Skipping like with invalid user ID on post %s: %v", doc.ID, err)
			continue
		}
		likes = append(likes, models.Like{UserID: userID, CreatedAt: like.CreatedAt})
	}

	return &models.Post{
		ID:            id,
		AuthorID:      authorID,
		Title:         doc.Title,
		Content:       doc.Content,
		Excerpt:       doc.Excerpt,
		Category:      doc.Category,
		Tags:          doc.Tags,
		FeaturedImage: doc.FeaturedImage,
		Status:        doc.Status,
		PublishedAt:   doc.PublishedAt,
		ScheduledFor:  doc.ScheduledFor,
		IsPublic:      doc.IsPublic,
		AllowComments: doc.AllowComments,
		Likes:         likes,
		Views:         doc.Views,
		ReadTime:      doc.ReadTime,
		CommentsCount: doc.CommentsCount,
		Slug:          doc.Slug,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}, nil
}

// SavePost creates or updates a post in MongoDB.
func (m *MongoDB) SavePost(ctx context.Context, post *models.Post) error {
	doc := PostModelToDocument(post)

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": post.ID.String()}
	update := bson.M{"$set": doc}

	_, err := m.Posts.UpdateOne(ctx, filter, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		return utils.NewAppError(utils.ErrDuplicate, "Slug already in use", err)
	}
	return err
}

// GetPost retrieves a post by its ID.
func (m *MongoDB) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var doc PostDocument

	err := m.Posts.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewPostNotFoundError(id.String())
	}
	if err != nil {
		return nil, utils.NewDatabaseError("failed to fetch post", err)
	}

	return PostDocumentToModel(&doc)
}

// GetPostBySlug retrieves a post by its unique slug.
func (m *MongoDB) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var doc PostDocument

	err := m.Posts.FindOne(ctx, bson.M{"slug": slug}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewPostNotFoundError(slug)
	}
	if err != nil {
		return nil, utils.NewDatabaseError("failed to fetch post", err)
	}

	return PostDocumentToModel(&doc)
}

// ToggleLike flips a user's membership in the post's like set as a pair of
// conditional single-document updates, never read-modify-write. The first
// update pulls an existing entry for the user; if nothing matched, the
// second pushes a new entry guarded by the user's absence, so a duplicate
// can never appear even under concurrent toggles. Returns whether the user
// likes the post after the toggle, plus the resulting like count.
func (m *MongoDB) ToggleLike(ctx context.Context, postID, userID uuid.UUID, now time.Time) (bool, int, error) {
	pull := bson.M{"$pull": bson.M{"likes": bson.M{"user": userID.String()}}}
	res, err := m.Posts.UpdateOne(ctx, bson.M{"_id": postID.String()}, pull)
	if err != nil {
		return false, 0, utils.NewDatabaseError("failed to toggle like", err)
	}
	if res.MatchedCount == 0 {
		return false, 0, utils.NewPostNotFoundError(postID.String())
	}

	liked := false
	if res.ModifiedCount == 0 {
		// User was not in the like set; add, guarded against a concurrent add.
		push := bson.M{"$push": bson.M{"likes": LikeDocument{
			User:      userID.String(),
			CreatedAt: now,
		}}}
		filter := bson.M{
			"_id":        postID.String(),
			"likes.user": bson.M{"$ne": userID.String()},
		}
		if _, err := m.Posts.UpdateOne(ctx, filter, push); err != nil {
			return false, 0, utils.NewDatabaseError("failed to toggle like", err)
		}
		liked = true
	}

	count, err := m.GetLikeCount(ctx, postID)
	if err != nil {
		return liked, 0, err
	}
	return liked, count, nil
}

// GetLikeCount returns the size of a post's like set.
func (m *MongoDB) GetLikeCount(ctx context.Context, postID uuid.UUID) (int, error) {
	var doc struct {
		Likes []LikeDocument `bson:"likes"`
	}
	opts := options.FindOne().SetProjection(bson.M{"likes": 1})
	err := m.Posts.FindOne(ctx, bson.M{"_id": postID.String()}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return 0, utils.NewPostNotFoundError(postID.String())
	}
	if err != nil {
		return 0, utils.NewDatabaseError("failed to count likes", err)
	}
	return len(doc.Likes), nil
}

// IncrementViews bumps the view counter by one. Views only ever grow.
func (m *MongoDB) IncrementViews(ctx context.Context, postID uuid.UUID) error {
	update := bson.M{"$inc": bson.M{"views": 1}}
	res, err := m.Posts.UpdateOne(ctx, bson.M{"_id": postID.String()}, update)
	if err != nil {
		return utils.NewDatabaseError("failed to increment views", err)
	}
	if res.MatchedCount == 0 {
		return utils.NewPostNotFoundError(postID.String())
	}
	return nil
}

// IncrementCommentCount adjusts the cached comment counter by delta
// (negative on comment deletion).
func (m *MongoDB) IncrementCommentCount(ctx context.Context, postID uuid.UUID, delta int) error {
	update := bson.M{"$inc": bson.M{"commentscount": delta}}
	res, err := m.Posts.UpdateOne(ctx, bson.M{"_id": postID.String()}, update)
	if err != nil {
		return utils.NewDatabaseError("failed to update comment count", err)
	}
	if res.MatchedCount == 0 {
		return utils.NewPostNotFoundError(postID.String())
	}
	return nil
}

// GetPublishedPosts returns published posts whose publish time has passed,
// newest first, with optional category and author filters. The publishedat
// bound is applied even though a future publishedat should never coexist
// with the published status.
func (m *MongoDB) GetPublishedPosts(ctx context.Context, now time.Time, category string, authorID *uuid.UUID, limit, offset int) ([]*models.Post, error) {
	filter := bson.M{
		"status":      models.StatusPublished,
		"publishedat": bson.M{"$lte": now},
	}
	if category != "" {
		filter["category"] = category
	}
	if authorID != nil {
		filter["authorid"] = authorID.String()
	}

	if limit <= 0 {
		limit = 10
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "publishedat", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := m.Posts.Find(ctx, filter, opts)
	if err != nil {
		return nil, utils.NewDatabaseError("failed to list published posts", err)
	}
	defer cursor.Close(ctx)

	return decodePosts(ctx, cursor)
}

// GetDueScheduledPosts returns every post whose scheduled time has arrived.
// Used exclusively by the scheduler; re-evaluated fresh on every tick.
func (m *MongoDB) GetDueScheduledPosts(ctx context.Context, now time.Time) ([]*models.Post, error) {
	filter := bson.M{
		"status":       models.StatusScheduled,
		"scheduledfor": bson.M{"$lte": now},
	}

	cursor, err := m.Posts.Find(ctx, filter)
	if err != nil {
		return nil, utils.NewDatabaseError("failed to fetch due posts", err)
	}
	defer cursor.Close(ctx)

	return decodePosts(ctx, cursor)
}

// PublishDuePost transitions a single scheduled post to published with one
// conditional update. The status guard makes the transition idempotent: a
// post already published (by an earlier tick or a manual edit) matches
// nothing and the call reports false.
func (m *MongoDB) PublishDuePost(ctx context.Context, postID uuid.UUID, now time.Time) (bool, error) {
	filter := bson.M{
		"_id":    postID.String(),
		"status": models.StatusScheduled,
	}
	update := bson.M{
		"$set": bson.M{
			"status":      models.StatusPublished,
			"publishedat": now,
			"updatedat":   now,
		},
		"$unset": bson.M{"scheduledfor": ""},
	}

	res, err := m.Posts.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, utils.NewDatabaseError("failed to publish post", err)
	}
	return res.ModifiedCount > 0, nil
}

// DeletePost removes a post document; the embedded like set goes with it.
// Comments are cleaned up separately by DeletePostComments.
func (m *MongoDB) DeletePost(ctx context.Context, postID uuid.UUID) error {
	res, err := m.Posts.DeleteOne(ctx, bson.M{"_id": postID.String()})
	if err != nil {
		return utils.NewDatabaseError("failed to delete post", err)
	}
	if res.DeletedCount == 0 {
		return utils.NewPostNotFoundError(postID.String())
	}
	return nil
}

// GetUserPosts retrieves all posts by an author regardless of status,
// newest first.
func (m *MongoDB) GetUserPosts(ctx context.Context, authorID uuid.UUID) ([]*models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdat", Value: -1}})
	cursor, err := m.Posts.Find(ctx, bson.M{"authorid": authorID.String()}, opts)
	if err != nil {
		return nil, utils.NewDatabaseError("failed to list author posts", err)
	}
	defer cursor.Close(ctx)

	return decodePosts(ctx, cursor)
}

func decodePosts(ctx context.Context, cursor *mongo.Cursor) ([]*models.Post, error) {
	var posts []*models.Post
	for cursor.Next(ctx) {
		var doc PostDocument
		if err := cursor.Decode(&doc); err != nil {
			log.Printf("Error decoding post document: %v", err)
			continue
		}

		post, err := PostDocumentToModel(&doc)
		if err != nil {
			log.Printf("Error converting document to model: %v", err)
			continue
		}
		posts = append(posts, post)
	}

	if err := cursor.Err(); err != nil {
		return nil, utils.NewDatabaseError("cursor iteration failed", err)
	}
	return posts, nil
}
