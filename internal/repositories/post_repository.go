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

// PostRepository defines the interface for post data operations. Query and
// QueryByID return posts with owner and comment owners expanded; the other
// reads return stored references as-is.
type PostRepository interface {
	Query(ctx context.Context, page, limit int64, flair string) ([]models.Post, error)
	QueryByID(ctx context.Context, id string) (*models.Post, error)
	Search(ctx context.Context, field string, value interface{}) ([]models.Post, error)
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	Update(ctx context.Context, id string, data bson.M) (*models.Post, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, flair string) (int64, error)
	AddComment(ctx context.Context, id string, comment models.Comment) (*models.Post, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	posts *mongo.Collection
	users *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{
		posts: db.Collection("posts"),
		users: db.Collection("users"),
	}
}

// Query retrieves a page of posts, optionally filtered by flair.
// skip = (page-1) * limit, with page clamped to 1.
func (r *MongoPostRepository) Query(ctx context.Context, page, limit int64, flair string) ([]models.Post, error) {
	if page < 1 {
		page = 1
	}
	filter := bson.M{}
	if flair != "" {
		filter["flair"] = flair
	}

	findOptions := options.Find().SetSkip((page - 1) * limit).SetLimit(limit)
	cursor, err := r.posts.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	if err := r.dereferenceAll(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// QueryByID retrieves a post by id with owner and comment owners expanded
func (r *MongoPostRepository) QueryByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	var post models.Post
	err = r.posts.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, httperror.New(http.StatusNotFound, "Not found", "Bad id for the query")
	}
	if err != nil {
		return nil, err
	}
	if err := r.dereference(ctx, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// Search retrieves posts matching a single field/value pair
func (r *MongoPostRepository) Search(ctx context.Context, field string, value interface{}) ([]models.Post, error) {
	cursor, err := r.posts.Find(ctx, bson.M{field: value})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Create stores a new post and returns it with identity assigned and owner expanded
func (r *MongoPostRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	post.ID = primitive.NewObjectID()
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	if _, err := r.posts.InsertOne(ctx, post); err != nil {
		return nil, err
	}
	if err := r.dereference(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Update applies a partial update to a post and returns the updated document
func (r *MongoPostRepository) Update(ctx context.Context, id string, data bson.M) (*models.Post, error) {
	objID, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	var post models.Post
	err = r.posts.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objID},
		bson.M{"$set": data},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, httperror.New(http.StatusNotFound, "Not found", "Bad id for the update")
	}
	if err != nil {
		return nil, err
	}
	if err := r.dereference(ctx, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// Delete removes a post by id
func (r *MongoPostRepository) Delete(ctx context.Context, id string) error {
	objID, err := ParseID(id)
	if err != nil {
		return err
	}

	res, err := r.posts.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return httperror.New(http.StatusNotFound, "Not found", "Bad id for the delete")
	}
	return nil
}

// Count returns the number of posts, optionally filtered by flair
func (r *MongoPostRepository) Count(ctx context.Context, flair string) (int64, error) {
	filter := bson.M{}
	if flair != "" {
		filter["flair"] = flair
	}
	return r.posts.CountDocuments(ctx, filter)
}

// AddComment appends a comment to the post's comment sequence server-side and
// returns the updated post
func (r *MongoPostRepository) AddComment(ctx context.Context, id string, comment models.Comment) (*models.Post, error) {
	objID, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	var post models.Post
	err = r.posts.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objID},
		bson.M{"$push": bson.M{"comments": comment}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, httperror.New(http.StatusNotFound, "Not found", "Bad id for the update")
	}
	if err != nil {
		return nil, err
	}
	if err := r.dereference(ctx, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *MongoPostRepository) dereference(ctx context.Context, post *models.Post) error {
	if !post.OwnerID.IsZero() {
		owner, err := findUserDoc(ctx, r.users, post.OwnerID)
		if err != nil && err != mongo.ErrNoDocuments {
			return err
		}
		post.Owner = owner
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	for i := range post.Comments {
		if post.Comments[i].OwnerID.IsZero() {
			continue
		}
		owner, err := findUserDoc(ctx, r.users, post.Comments[i].OwnerID)
		if err == mongo.ErrNoDocuments {
			continue
		}
		if err != nil {
			return err
		}
		post.Comments[i].Owner = owner
	}
	return nil
}

func (r *MongoPostRepository) dereferenceAll(ctx context.Context, posts []models.Post) error {
	for i := range posts {
		if err := r.dereference(ctx, &posts[i]); err != nil {
			return err
		}
	}
	return nil
}
