package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is a geotagged event stored in MongoDB. Only CreatedBy may change or delete it.
type Memory struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Description *string            `json:"description" bson:"description,omitempty"`
	Lat         float64            `json:"lat" bson:"lat"`
	Lng         float64            `json:"lng" bson:"lng"`
	CreatedBy   string             `json:"created_by" bson:"created_by"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}

// CreateMemoryRequest defines the request body for creating a memory
type CreateMemoryRequest struct {
	Title       string    `json:"title" validate:"required,min=1,max=100,notblank"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Lat         *float64  `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng         *float64  `json:"lng" validate:"required,gte=-180,lte=180"`
	CreatedBy   string    `json:"created_by" validate:"required"`
	CreatedAt   Date      `json:"created_at"`
}

// EditMemoryRequest updates the mutable fields of a memory.
type EditMemoryRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=100,notblank"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}
