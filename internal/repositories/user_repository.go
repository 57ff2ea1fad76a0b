package repositories

import (
	"context"
	"net/http"

	"github.com/fotitos/backend/internal/httperror"
	"github.com/fotitos/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository defines the interface for user data operations. The createdPost
// and favoritePost reference arrays are mutated through server-side set operators
// so concurrent requests cannot lose each other's updates, and membership adds
// are idempotent.
type UserRepository interface {
	Query(ctx context.Context) ([]models.User, error)
	QueryByID(ctx context.Context, id string) (*models.User, error)
	Search(ctx context.Context, field string, value interface{}) ([]models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id string, data bson.M) (*models.User, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	AddCreatedPost(ctx context.Context, userID string, postID primitive.ObjectID) (*models.User, error)
	RemoveCreatedPost(ctx context.Context, userID string, postID primitive.ObjectID) (*models.User, error)
	AddFavorite(ctx context.Context, userID string, postID primitive.ObjectID) (*models.User, error)
	RemoveFavorite(ctx context.Context, userID string, postID primitive.ObjectID) (*models.User, error)
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	users *mongo.Collection
	posts *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{
		users: db.Collection("users"),
		posts: db.Collection("posts"),
	}
}

// Query retrieves all users with their post references expanded
func (r *MongoUserRepository) Query(ctx context.Context) ([]models.User, error) {
	cursor, err := r.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	for i := range users {
		if err := r.dereference(ctx, &users[i]); err != nil {
			return nil, err
		}
	}
	return users, nil
}

// QueryByID retrieves a user by id with post references expanded
func (r *MongoUserRepository) QueryByID(ctx context.Context, id string) (*models.User, error) {
	objID, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = r.users.FindOne(ctx, bson.M{"_id": objID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, httperror.New(http.StatusNotFound, "Not found", "Bad id for the query")
	}
	if err != nil {
		return nil, err
	}
	if err := r.dereference(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Search retrieves users matching a single field/value pair, without expanding
// post references
func (r *MongoUserRepository) Search(ctx context.Context, field string, value interface{}) ([]models.User, error) {
	cursor, err := r.users.Find(ctx, bson.M{field: value})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	for i := range users {
		users[i].CreatedPost = []models.Post{}
		users[i].FavoritePost = []models.Post{}
	}
	return users, nil
}

// Create stores a new user and returns it with identity assigned
func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = primitive.NewObjectID()
	if user.CreatedPostIDs == nil {
		user.CreatedPostIDs = []primitive.ObjectID{}
	}
	if user.FavoritePostIDs == nil {
		user.FavoritePostIDs = []primitive.ObjectID{}
	}
	if _, err := r.users.InsertOne(ctx, user); err != nil {
		return nil, err
	}
	user.CreatedPost = []models.Post{}
	user.FavoritePost = []models.Post{}
	return user, nil
}

// Update applies a partial update to a user and returns the updated document
func (r *MongoUserRepository) Update(ctx context.Context, id string, data bson.M) (*models.User, error) {
	objID, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return r.findOneAndUpdate(ctx, objID, bson.M{"$set": data})
}

// Delete removes a user by id
func (r *MongoUserRepository) Delete(ctx context.Context, id string) error {
	objID, err := ParseID(id)
	if err != nil {
		return err
	}

	res, err := r.users.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return httperror.New(http.StatusNotFound, "Not found", "Bad id for the delete")
	}
	return nil
}

// Count returns the number of users
func (r *MongoUserRepository) Count(ctx context.Context) (int64, error) {
	return r.users.CountDocuments(ctx, bson.M{})
}

// AddCreatedPost appends a post reference to the user's createdPost array
func (r *MongoUserRepository) AddCreatedPost(ctx context.Context, userID string, postID primitive.ObjectID) (*models.User, error) {
	objID, err := ParseID(userID)
	if err != nil {
		return nil, err
	}
	return r.findOneAndUpdate(ctx, objID, bson.M{"$addToSet": bson.M{"createdPost": postID}})
}

// RemoveCreatedPost removes a post reference from the user's createdPost array.
// Removing an absent reference is a no-op, not an error.
func (r *MongoUserRepository) RemoveCreatedPost(ctx context.Context, userID string, postID primitive.ObjectID) (*models.User, error) {
	objID, err := ParseID(userID)
	if err != nil {
		return nil, err
	}
	return r.findOneAndUpdate(ctx, objID, bson.M{"$pull": bson.M{"createdPost": postID}})
}

// AddFavorite appends a post reference to the user's favoritePost array only if
// it is not already present
func (r *MongoUserRepository) AddFavorite(ctx context.Context, userID string, postID primitive.ObjectID) (*models.User, error) {
	objID, err := ParseID(userID)
	if err != nil {
		return nil, err
	}
	return r.findOneAndUpdate(ctx, objID, bson.M{"$addToSet": bson.M{"favoritePost": postID}})
}

// RemoveFavorite removes a post reference from the user's favoritePost array.
// Removing an absent reference is a no-op, not an error.
func (r *MongoUserRepository) RemoveFavorite(ctx context.Context, userID string, postID primitive.ObjectID) (*models.User, error) {
	objID, err := ParseID(userID)
	if err != nil {
		return nil, err
	}
	return r.findOneAndUpdate(ctx, objID, bson.M{"$pull": bson.M{"favoritePost": postID}})
}

func (r *MongoUserRepository) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.User, error) {
	var user models.User
	err := r.users.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, httperror.New(http.StatusNotFound, "Not found", "Bad id for the update")
	}
	if err != nil {
		return nil, err
	}
	if err := r.dereference(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *MongoUserRepository) dereference(ctx context.Context, user *models.User) error {
	created, err := findPostDocs(ctx, r.posts, user.CreatedPostIDs)
	if err != nil {
		return err
	}
	favorite, err := findPostDocs(ctx, r.posts, user.FavoritePostIDs)
	if err != nil {
		return err
	}
	if err := expandPostOwners(ctx, r.users, created); err != nil {
		return err
	}
	if err := expandPostOwners(ctx, r.users, favorite); err != nil {
		return err
	}
	user.CreatedPost = created
	user.FavoritePost = favorite
	return nil
}
