// internal/database/user_repository.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/abhinash-ops/Mind-canvus/internal/models"
	"github.com/abhinash-ops/Mind-canvus/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserDocument represents the MongoDB schema for a user
type UserDocument struct {
	ID              string    `bson:"_id"`
	Username        string    `bson:"username"`
	Email           string    `bson:"email"`
	FirstName       string    `bson:"firstname,omitempty"`
	LastName        string    `bson:"lastname,omitempty"`
	Avatar          string    `bson:"avatar,omitempty"`
	HashedPassword  string    `bson:"hashedpassword"`
	CreatedAt       time.Time `bson:"createdat"`
	LastActive      time.Time `bson:"lastactive"`
	Friends         []string  `bson:"friends"`
	PendingRequests []string  `bson:"pendingrequests"`
}

// SaveUser creates or updates a user in MongoDB
func (m *MongoDB) SaveUser(ctx context.Context, user *models.User) error {
	doc := UserDocument{
		ID:              user.ID.String(),
		Username:        user.Username,
		Email:           user.Email,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		Avatar:          user.Avatar,
		HashedPassword:  user.HashedPassword,
		CreatedAt:       user.CreatedAt,
		LastActive:      user.LastActive,
		Friends:         uuidsToStrings(user.Friends),
		PendingRequests: uuidsToStrings(user.PendingRequests),
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": user.ID.String()}
	update := bson.M{"$set": doc}

	_, err := m.Users.UpdateOne(ctx, filter, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		return utils.NewAppError(utils.ErrUserAlreadyExists, "Email already registered", err)
	}
	return err
}

// GetUser retrieves a user from MongoDB by their ID
func (m *MongoDB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var doc UserDocument

	err := m.Users.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewUserNotFoundError(id.String())
	}
	if err != nil {
		return nil, utils.NewDatabaseError("failed to fetch user", err)
	}

	return userDocumentToModel(&doc)
}

// GetUserByEmail retrieves a user by their email address
func (m *MongoDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc UserDocument

	err := m.Users.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewUserNotFoundError(email)
	}
	if err != nil {
		return nil, utils.NewDatabaseError("failed to fetch user", err)
	}

	return userDocumentToModel(&doc)
}

// UpdateUserActivity records when a user was last seen.
func (m *MongoDB) UpdateUserActivity(ctx context.Context, id uuid.UUID, at time.Time) error {
	update := bson.M{"$set": bson.M{"lastactive": at}}
	result, err := m.Users.UpdateOne(ctx, bson.M{"_id": id.String()}, update)
	if err != nil {
		return utils.NewDatabaseError("failed to update activity", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewUserNotFoundError(id.String())
	}
	return nil
}

// AddFriendRequest records an incoming friend request on the target user's
// document. $addToSet keeps the request set duplicate-free under retries.
func (m *MongoDB) AddFriendRequest(ctx context.Context, toID, fromID uuid.UUID) error {
	update := bson.M{"$addToSet": bson.M{"pendingrequests": fromID.String()}}
	result, err := m.Users.UpdateOne(ctx, bson.M{"_id": toID.String()}, update)
	if err != nil {
		return utils.NewDatabaseError("failed to add friend request", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewUserNotFoundError(toID.String())
	}
	return nil
}

// RemoveFriendRequest drops a pending request from the target's document,
// whether it is being accepted or rejected.
func (m *MongoDB) RemoveFriendRequest(ctx context.Context, toID, fromID uuid.UUID) error {
	update := bson.M{"$pull": bson.M{"pendingrequests": fromID.String()}}
	result, err := m.Users.UpdateOne(ctx, bson.M{"_id": toID.String()}, update)
	if err != nil {
		return utils.NewDatabaseError("failed to remove friend request", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewUserNotFoundError(toID.String())
	}
	return nil
}

// UpdateUserFriends adds or removes a friend edge on one user's document.
// Callers apply it to both sides of the edge.
func (m *MongoDB) UpdateUserFriends(ctx context.Context, userID, friendID uuid.UUID, isAdding bool) error {
	var update bson.M
	if isAdding {
		update = bson.M{"$addToSet": bson.M{"friends": friendID.String()}}
	} else {
		update = bson.M{"$pull": bson.M{"friends": friendID.String()}}
	}

	result, err := m.Users.UpdateOne(ctx, bson.M{"_id": userID.String()}, update)
	if err != nil {
		return utils.NewDatabaseError("failed to update friends", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewUserNotFoundError(userID.String())
	}
	return nil
}

func userDocumentToModel(doc *UserDocument) (*models.User, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %v", err)
	}

	friends, err := stringsToUUIDs(doc.Friends)
	if err != nil {
		return nil, fmt.Errorf("invalid friend ID on user %s: %v", doc.ID, err)
	}

	pending, err := stringsToUUIDs(doc.PendingRequests)
	if err != nil {
		return nil, fmt.Errorf("invalid request ID on user %s: %v", doc.ID, err)
	}

	return &models.User{
		ID:              id,
		Username:        doc.Username,
		Email:           doc.Email,
		FirstName:       doc.FirstName,
		LastName:        doc.LastName,
		Avatar:          doc.Avatar,
		HashedPassword:  doc.HashedPassword,
		CreatedAt:       doc.CreatedAt,
		LastActive:      doc.LastActive,
		Friends:         friends,
		PendingRequests: pending,
	}, nil
}

func uuidsToStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func stringsToUUIDs(ids []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(ids))
	for _, s := range ids {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
