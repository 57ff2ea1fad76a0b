package models

import (
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account stored in MongoDB. CreatedPostIDs and FavoritePostIDs
// are the persisted reference arrays; CreatedPost and FavoritePost carry the expanded
// posts filled in by the repository on reads.
type User struct {
	ID              primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	UserName        string               `json:"userName" bson:"userName"`
	Email           string               `json:"email" bson:"email"`
	Passwd          string               `json:"-" bson:"passwd"` // Stored hashed, never serialized
	Avatar          Image                `json:"avatar" bson:"avatar"`
	CreatedPostIDs  []primitive.ObjectID `json:"-" bson:"createdPost"`
	FavoritePostIDs []primitive.ObjectID `json:"-" bson:"favoritePost"`
	CreatedPost     []Post               `json:"createdPost" bson:"-"`
	FavoritePost    []Post               `json:"favoritePost" bson:"-"`
}

// RegisterUserRequest defines the multipart form fields for user registration
type RegisterUserRequest struct {
	UserName string `json:"userName" form:"userName" validate:"required"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Passwd   string `json:"passwd" form:"passwd" validate:"required,alphanum,min=8"`
}

// LoginRequest defines the request body for user login. User may hold either
// a username or an email address.
type LoginRequest struct {
	User   string `json:"user" form:"user"`
	Passwd string `json:"passwd" form:"passwd"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
	Avatar   Image  `json:"avatar"`
	jwt.RegisteredClaims
}
