package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/matrimony/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}

// EnsureMongoIndexes creates the secondary indexes the listing queries rely on
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		LikesCollection: {
			{Keys: bson.D{{Key: "likerId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "likedId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		MatchesCollection: {
			{Keys: bson.D{{Key: "user1Id", Value: 1}}},
			{Keys: bson.D{{Key: "user2Id", Value: 1}}},
		},
		NotificationsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "read", Value: 1}}},
		},
	}
	for name, idx := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}

// MongoLikeRepository implements LikeRepository for MongoDB
type MongoLikeRepository struct {
	collection *mongo.Collection
}

// NewMongoLikeRepository creates a new MongoLikeRepository
func NewMongoLikeRepository(db *mongo.Database) *MongoLikeRepository {
	return &MongoLikeRepository{collection: db.Collection(LikesCollection)}
}

// UpsertLike sets the participants and only sets createdAt on insert
func (r *MongoLikeRepository) UpsertLike(ctx context.Context, like *models.Like) (*models.Like, bool, error) {
	update := bson.M{
		"$set": bson.M{
			"likerId": like.LikerID,
			"likedId": like.LikedID,
		},
		"$setOnInsert": bson.M{"createdAt": like.CreatedAt},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": like.ID}, update, options.Update().SetUpsert(true))
	if err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			return nil, false, err
		}
	} else if res.UpsertedCount == 1 {
		return like, true, nil
	}

	stored, err := r.GetLike(ctx, like.ID)
	if err != nil {
		return nil, false, err
	}
	return stored, false, nil
}

// GetLike retrieves a like by ID from MongoDB
func (r *MongoLikeRepository) GetLike(ctx context.Context, id string) (*models.Like, error) {
	var like models.Like
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&like); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &like, nil
}

func (r *MongoLikeRepository) ListLikesByLiker(ctx context.Context, likerID string) ([]models.Like, error) {
	return r.find(ctx, bson.M{"likerId": likerID})
}

func (r *MongoLikeRepository) ListLikesByLiked(ctx context.Context, likedID string) ([]models.Like, error) {
	return r.find(ctx, bson.M{"likedId": likedID})
}

func (r *MongoLikeRepository) ListAllLikes(ctx context.Context) ([]models.Like, error) {
	return r.find(ctx, bson.D{})
}

func (r *MongoLikeRepository) find(ctx context.Context, filter interface{}) ([]models.Like, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	likes := []models.Like{}
	if err = cursor.All(ctx, &likes); err != nil {
		return nil, err
	}
	return likes, nil
}

// MongoMatchRepository implements MatchRepository for MongoDB
type MongoMatchRepository struct {
	collection *mongo.Collection
}

// NewMongoMatchRepository creates a new MongoMatchRepository
func NewMongoMatchRepository(db *mongo.Database) *MongoMatchRepository {
	return &MongoMatchRepository{collection: db.Collection(MatchesCollection)}
}

// CreateMatch upserts with $setOnInsert only, so an existing match is never rewritten
func (r *MongoMatchRepository) CreateMatch(ctx context.Context, match *models.Match) (*models.Match, bool, error) {
	update := bson.M{
		"$setOnInsert": bson.M{
			"user1Id":   match.User1ID,
			"user2Id":   match.User2ID,
			"createdAt": match.CreatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": match.ID}, update, options.Update().SetUpsert(true))
	if err != nil {
		// Two concurrent upserts on the same _id: the loser gets a duplicate key error.
		if !mongo.IsDuplicateKeyError(err) {
			return nil, false, err
		}
	} else if res.UpsertedCount == 1 {
		return match, true, nil
	}

	stored, err := r.GetMatch(ctx, match.ID)
	if err != nil {
		return nil, false, err
	}
	return stored, false, nil
}

func (r *MongoMatchRepository) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	var match models.Match
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&match); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &match, nil
}

func (r *MongoMatchRepository) DeleteMatch(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *MongoMatchRepository) ListMatchesForUser(ctx context.Context, userID string) ([]models.Match, error) {
	filter := bson.M{"$or": bson.A{bson.M{"user1Id": userID}, bson.M{"user2Id": userID}}}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	matches := []models.Match{}
	if err = cursor.All(ctx, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection(NotificationsCollection)}
}

func (r *MongoNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

func (r *MongoNotificationRepository) GetNotification(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&n); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (r *MongoNotificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]models.Notification, error) {
	findOptions := options.Find().SetSort(newestFirst)
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}
	cursor, err := r.collection.Find(ctx, bson.M{"userId": recipientID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *MongoNotificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"userId": recipientID, "read": false})
}

func (r *MongoNotificationRepository) MarkAsRead(ctx context.Context, id string) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID string) error {
	_, err := r.collection.UpdateMany(ctx, bson.M{"userId": recipientID, "read": false}, bson.M{"$set": bson.M{"read": true}})
	return err
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection(UsersCollection)}
}

func (r *MongoUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *MongoUserRepository) UpsertUser(ctx context.Context, user *models.User) error {
	update := bson.M{
		"$set": bson.M{
			"name":         user.Name,
			"email":        user.Email,
			"profileImage": user.ProfileImage,
			"updatedAt":    user.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"role":      models.RoleMember,
			"createdAt": user.CreatedAt,
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": user.ID}, update, options.Update().SetUpsert(true))
	return err
}
