package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a meme post stored in MongoDB. OwnerID is the persisted owner
// reference; Owner carries the expanded user filled in by the repository on reads.
type Post struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Description string             `json:"description" bson:"description"`
	Image       Image              `json:"image" bson:"image"`
	Flair       string             `json:"flair" bson:"flair"`
	OwnerID     primitive.ObjectID `json:"-" bson:"owner"`
	Owner       *User              `json:"owner,omitempty" bson:"-"`
	Comments    []Comment          `json:"comments" bson:"comments"`
}

// Comment is embedded within a Post: free text plus the commenting user.
// Comments have no identity or lifecycle of their own.
type Comment struct {
	Comment string             `json:"comment" bson:"comment"`
	OwnerID primitive.ObjectID `json:"-" bson:"owner"`
	Owner   *User              `json:"owner,omitempty" bson:"-"`
}

// CreatePostRequest defines the multipart form fields for creating a new post.
// The owner is never client-supplied; it is set from the authenticated caller.
type CreatePostRequest struct {
	Description string `json:"description" form:"description" validate:"required"`
	Flair       string `json:"flair" form:"flair" validate:"required"`
}

// AddCommentRequest defines the request body for commenting on a post
type AddCommentRequest struct {
	Comment string `json:"comment" form:"comment" validate:"required"`
}
