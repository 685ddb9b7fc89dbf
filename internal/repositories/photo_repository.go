package repositories

import (
	"context"
	"time"

	"github.com/trailback/backend/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PhotoRepository defines the interface for photo metadata operations
type PhotoRepository interface {
	CreatePhoto(ctx context.Context, photo *models.Photo) error
	GetPhotoByID(ctx context.Context, id string) (*models.Photo, error)
	ListByMemory(ctx context.Context, memoryID string) ([]models.Photo, error)
	DeletePhoto(ctx context.Context, id string) error
	DeleteByMemory(ctx context.Context, memoryID string) (int64, error)
	CountByURL(ctx context.Context, url string) (int64, error)
	RegisteredURLs(ctx context.Context) (map[string]bool, error)
}

// MongoPhotoRepository implements PhotoRepository for MongoDB
type MongoPhotoRepository struct {
	collection *mongo.Collection
}

func NewMongoPhotoRepository(db *mongo.Database) *MongoPhotoRepository {
	return &MongoPhotoRepository{collection: db.Collection("photos")}
}

// EnsureIndexes creates the memory_id and url lookup indexes.
func (r *MongoPhotoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "memory_id", Value: 1}, {Key: "uploaded_at", Value: 1}}},
		{Keys: bson.D{{Key: "url", Value: 1}}},
	})
	return err
}

func (r *MongoPhotoRepository) CreatePhoto(ctx context.Context, photo *models.Photo) error {
	photo.ID = primitive.NewObjectID()
	if photo.UploadedAt.IsZero() {
		photo.UploadedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, photo)
	return translate(err)
}

func (r *MongoPhotoRepository) GetPhotoByID(ctx context.Context, id string) (*models.Photo, error) {
	objID, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var photo models.Photo
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&photo); err != nil {
		return nil, translate(err)
	}
	return &photo, nil
}

// ListByMemory returns the photos of a memory in upload order.
func (r *MongoPhotoRepository) ListByMemory(ctx context.Context, memoryID string) ([]models.Photo, error) {
	photos := []models.Photo{}
	findOptions := options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"memory_id": memoryID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &photos); err != nil {
		return nil, err
	}
	return photos, nil
}

func (r *MongoPhotoRepository) DeletePhoto(ctx context.Context, id string) error {
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

func (r *MongoPhotoRepository) DeleteByMemory(ctx context.Context, memoryID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"memory_id": memoryID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountByURL returns how many photo rows point at url.
func (r *MongoPhotoRepository) CountByURL(ctx context.Context, url string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"url": url})
}

// RegisteredURLs returns the set of every stored photo URL.
func (r *MongoPhotoRepository) RegisteredURLs(ctx context.Context) (map[string]bool, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"url": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	urls := map[string]bool{}
	for cursor.Next(ctx) {
		var row struct {
			URL string `bson:"url"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		urls[row.URL] = true
	}
	return urls, cursor.Err()
}
