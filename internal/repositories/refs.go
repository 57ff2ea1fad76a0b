package repositories

import (
	"context"
	"net/http"

	"github.com/fotitos/backend/internal/httperror"
	"github.com/fotitos/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ParseID converts a hex id from the request path into an ObjectID. A malformed
// id is reported the same way as an unknown one.
func ParseID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, httperror.New(http.StatusNotFound, "Not found", "Bad id for the query")
	}
	return objID, nil
}

// findUserDoc loads a single user without expanding its post references
func findUserDoc(ctx context.Context, users *mongo.Collection, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, err
	}
	user.CreatedPost = []models.Post{}
	user.FavoritePost = []models.Post{}
	return &user, nil
}

// findPostDocs loads the posts for a reference array, preserving the stored order.
// Dangling references (posts deleted while still referenced) are skipped.
func findPostDocs(ctx context.Context, posts *mongo.Collection, ids []primitive.ObjectID) ([]models.Post, error) {
	result := []models.Post{}
	if len(ids) == 0 {
		return result, nil
	}

	cursor, err := posts.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var found []models.Post
	if err = cursor.All(ctx, &found); err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]models.Post, len(found))
	for _, post := range found {
		byID[post.ID] = post
	}
	for _, id := range ids {
		if post, ok := byID[id]; ok {
			if post.Comments == nil {
				post.Comments = []models.Comment{}
			}
			result = append(result, post)
		}
	}
	return result, nil
}

// expandPostOwners fills in the owner of each post without recursing into the
// owners' own post lists
func expandPostOwners(ctx context.Context, users *mongo.Collection, posts []models.Post) error {
	cache := make(map[primitive.ObjectID]*models.User)
	for i := range posts {
		ownerID := posts[i].OwnerID
		if ownerID.IsZero() {
			continue
		}
		if owner, ok := cache[ownerID]; ok {
			posts[i].Owner = owner
			continue
		}
		owner, err := findUserDoc(ctx, users, ownerID)
		if err == mongo.ErrNoDocuments {
			continue
		}
		if err != nil {
			return err
		}
		cache[ownerID] = owner
		posts[i].Owner = owner
	}
	return nil
}
