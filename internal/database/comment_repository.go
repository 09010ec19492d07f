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

// CommentDocument represents comment data in MongoDB
type CommentDocument struct {
	ID        string    `bson:"_id"`
	Content   string    `bson:"content"`
	AuthorID  string    `bson:"authorid"`
	PostID    string    `bson:"postid"`
	ParentID  *string   `bson:"parentid,omitempty"`
	CreatedAt time.Time `bson:"createdat"`
	UpdatedAt time.Time `bson:"updatedat"`
}

// SaveComment creates or updates a comment in MongoDB
func (m *MongoDB) SaveComment(ctx context.Context, comment *models.Comment) error {
	doc := CommentDocument{
		ID:        comment.ID.String(),
		Content:   comment.Content,
		AuthorID:  comment.AuthorID.String(),
		PostID:    comment.PostID.String(),
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
	if comment.ParentID != nil {
		parentID := comment.ParentID.String()
		doc.ParentID = &parentID
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": comment.ID.String()}
	update := bson.M{"$set": doc}

	_, err := m.Comments.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return utils.NewDatabaseError("failed to save comment", err)
	}
	return nil
}

// GetComment retrieves a comment by its ID
func (m *MongoDB) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var doc CommentDocument

	err := m.Comments.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrNotFound, "Comment not found", nil)
	}
	if err != nil {
		return nil, utils.NewDatabaseError("failed to fetch comment", err)
	}

	return commentDocumentToModel(&doc)
}

// GetPostComments retrieves all comments on a post, oldest first.
func (m *MongoDB) GetPostComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdat", Value: 1}})
	cursor, err := m.Comments.Find(ctx, bson.M{"postid": postID.String()}, opts)
	if err != nil {
		return nil, utils.NewDatabaseError("failed to list comments", err)
	}
	defer cursor.Close(ctx)

	var comments []*models.Comment
	for cursor.Next(ctx) {
		var doc CommentDocument
		if err := cursor.Decode(&doc); err != nil {
			log.Printf("Error decoding comment document: %v", err)
			continue
		}

		comment, err := commentDocumentToModel(&doc)
		if err != nil {
			log.Printf("Error converting comment document: %v", err)
			continue
		}
		comments = append(comments, comment)
	}

	if err := cursor.Err(); err != nil {
		return nil, utils.NewDatabaseError("cursor iteration failed", err)
	}
	return comments, nil
}

// DeleteComment removes a single comment.
func (m *MongoDB) DeleteComment(ctx context.Context, id uuid.UUID) error {
	res, err := m.Comments.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return utils.NewDatabaseError("failed to delete comment", err)
	}
	if res.DeletedCount == 0 {
		return utils.NewAppError(utils.ErrNotFound, "Comment not found", nil)
	}
	return nil
}

// DeletePostComments removes every comment on a post; used when the post
// itself is deleted. Returns how many were removed.
func (m *MongoDB) DeletePostComments(ctx context.Context, postID uuid.UUID) (int64, error) {
	res, err := m.Comments.DeleteMany(ctx, bson.M{"postid": postID.String()})
	if err != nil {
		return 0, utils.NewDatabaseError("failed to delete post comments", err)
	}
	return res.DeletedCount, nil
}

func commentDocumentToModel(doc *CommentDocument) (*models.Comment, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid comment ID: %v", err)
	}

	authorID, err := uuid.Parse(doc.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("invalid author ID: %v", err)
	}

	postID, err := uuid.Parse(doc.PostID)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID: %v", err)
	}

	comment := &models.Comment{
		ID:        id,
		Content:   doc.Content,
		AuthorID:  authorID,
		PostID:    postID,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}

	if doc.ParentID != nil {
		parentID, err := uuid.Parse(*doc.ParentID)
		if err != nil {
			return nil, fmt.Errorf("invalid parent ID: %v", err)
		}
		comment.ParentID = &parentID
	}

	return comment, nil
}
