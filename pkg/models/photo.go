package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Photo is the metadata row registered after the binary has been stored.
type Photo struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	MemoryID   string             `json:"memory_id" bson:"memory_id"`
	URL        string             `json:"url" bson:"url"`
	UploadedBy string             `json:"uploaded_by" bson:"uploaded_by"`
	UploadedAt time.Time          `json:"uploaded_at" bson:"uploaded_at"`
}

// CreatePhotoRequest registers an already uploaded object.
type CreatePhotoRequest struct {
	MemoryID   string `json:"memory_id" validate:"required"`
	URL        string `json:"url" validate:"required,url"`
	UploadedBy string `json:"uploaded_by" validate:"required"`
}

// UploadPhotoResponse is returned by the multipart upload endpoints.
type UploadPhotoResponse struct {
	URL    string `json:"url"`
	Record *Photo `json:"record"`
}
