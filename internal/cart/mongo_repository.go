package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Daddtdrey/eatai/internal/domain"
)

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{
		collection: db.Collection("carts"),
	}
}

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

func (m *mongoRepository) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	var cart domain.Cart

	filter := bson.M{"user_id": userID}
	err := m.collection.FindOne(ctx, filter).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return &cart, nil
}

// AddItem appends one line to the user's cart, creating the cart if needed.
// Lines are never merged; quantity is expressed by repetition, and each line
// keeps its client-generated id for later removal.
func (m *mongoRepository) AddItem(ctx context.Context, userID string, item domain.CartItem) error {
	now := time.Now()
	item.AddedAt = now

	filter := bson.M{"user_id": userID}
	update := bson.M{
		"$push": bson.M{"items": item},
		"$set":  bson.M{"updated_at": now},
		"$setOnInsert": bson.M{
			"user_id":    userID,
			"created_at": now,
		},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := m.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to add cart line: %w", err)
	}
	return nil
}

func (m *mongoRepository) RemoveItem(ctx context.Context, userID string, lineID string) error {
	// The filter requires the line to be present, otherwise the $set alone
	// would count as a modification and mask a missing line.
	filter := bson.M{"user_id": userID, "items.line_id": lineID}
	update := bson.M{
		"$pull": bson.M{
			"items": bson.M{"line_id": lineID},
		},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to remove cart line: %w", err)
	}
	if result.MatchedCount == 0 {
		if _, err := m.GetCart(ctx, userID); errors.Is(err, ErrCartNotFound) {
			return ErrCartNotFound
		}
		return ErrLineNotFound
	}
	return nil
}

func (m *mongoRepository) DeleteCart(ctx context.Context, userID string) error {
	result, err := m.collection.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrCartNotFound
	}
	return nil
}

// EnsureIndexes sets up the unique user index and a TTL sweep for abandoned
// carts.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(30 * 24 * 60 * 60), // 30 days
		},
	}

	if _, err := db.Collection("carts").Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
