package repositories

import (
	"context"
	"fmt"

	"github.com/trailback/backend/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MemoryRepository defines the interface for memory data operations
type MemoryRepository interface {
	CreateMemory(ctx context.Context, memory *models.Memory) error
	GetMemoryByID(ctx context.Context, id string) (*models.Memory, error)
	ListByCreator(ctx context.Context, userID string) ([]models.Memory, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Memory, error)
	UpdateMemory(ctx context.Context, memory *models.Memory) error
	DeleteMemory(ctx context.Context, id string) error
}

// MongoMemoryRepository implements MemoryRepository for MongoDB
type MongoMemoryRepository struct {
	collection *mongo.Collection
}

// NewMongoMemoryRepository creates a new MongoMemoryRepository
func NewMongoMemoryRepository(db *mongo.Database) *MongoMemoryRepository {
	return &MongoMemoryRepository{collection: db.Collection("memories")}
}

// EnsureIndexes creates the lookup index on created_by.
func (r *MongoMemoryRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_by", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

func (r *MongoMemoryRepository) CreateMemory(ctx context.Context, memory *models.Memory) error {
	memory.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, memory)
	return translate(err)
}

func (r *MongoMemoryRepository) GetMemoryByID(ctx context.Context, id string) (*models.Memory, error) {
	objID, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var memory models.Memory
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&memory); err != nil {
		return nil, translate(err)
	}
	return &memory, nil
}

// ListByCreator returns the user's own memories, newest first.
func (r *MongoMemoryRepository) ListByCreator(ctx context.Context, userID string) ([]models.Memory, error) {
	return r.find(ctx, bson.M{"created_by": userID})
}

// ListByIDs loads the given memories, skipping malformed IDs.
func (r *MongoMemoryRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Memory, error) {
	objIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if objID, err := primitive.ObjectIDFromHex(id); err == nil {
			objIDs = append(objIDs, objID)
		}
	}
	if len(objIDs) == 0 {
		return []models.Memory{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": objIDs}})
}

func (r *MongoMemoryRepository) find(ctx context.Context, filter bson.M) ([]models.Memory, error) {
	memories := []models.Memory{}
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &memories); err != nil {
		return nil, err
	}
	return memories, nil
}

// UpdateMemory stores the mutable fields (title, description) of memory.
func (r *MongoMemoryRepository) UpdateMemory(ctx context.Context, memory *models.Memory) error {
	set := bson.M{"title": memory.Title}
	update := bson.M{"$set": set}
	if memory.Description != nil {
		set["description"] = *memory.Description
	} else {
		update["$unset"] = bson.M{"description": ""}
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": memory.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoMemoryRepository) DeleteMemory(ctx context.Context, id string) error {
	objID, err := objectID(id)
	if err != nil {
		return err
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// objectID parses a hex ID; malformed IDs cannot match any document.
func objectID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid ID %q", ErrNotFound, id)
	}
	return objID, nil
}
