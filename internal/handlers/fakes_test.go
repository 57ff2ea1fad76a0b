package handlers

import (
	"context"
	"net/http"

	"github.com/fotitos/backend/internal/httperror"
	"github.com/fotitos/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeUserRepo is an in-memory UserRepository honouring the same contract as
// the Mongo implementation: not-found is a typed 404, list adds are
// add-if-absent, list removals of absent entries are no-ops.
type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		r.users[u.ID.Hex()] = u
	}
	return r
}

func (r *fakeUserRepo) get(id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, httperror.New(http.StatusNotFound, "Not found", "Bad id for the query")
	}
	return u, nil
}

func (r *fakeUserRepo) Query(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	for _, u := range r.users {
		users = append(users, *u)
	}
	return users, nil
}

func (r *fakeUserRepo) QueryByID(ctx context.Context, id string) (*models.User, error) {
	return r.get(id)
}

func (r *fakeUserRepo) Search(ctx context.Context, field string, value interface{}) ([]models.User, error) {
	result := []models.User{}
	for _, u := range r.users {
		switch {
		case field == "userName" && u.UserName == value:
			result = append(result, *u)
		case field == "email" && u.Email == value:
			result = append(result, *u)
		}
	}
	return result, nil
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = primitive.NewObjectID()
	if user.CreatedPostIDs == nil {
		user.CreatedPostIDs = []primitive.ObjectID{}
	}
	if user.FavoritePostIDs == nil {
		user.FavoritePostIDs = []primitive.ObjectID{}
	}
	user.CreatedPost = []models.Post{}
	user.FavoritePost = []models.Post{}
	r.users[user.ID.Hex()] = user
	return user, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, id string, data bson.M) (*models.User, error) {
	return r.get(id)
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return httperror.New(http.StatusNotFound, "Not found", "Bad id for the delete")
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) AddCreatedPost(ctx context.Context, userID string, postID primitive.ObjectID) (*models.User, error) {
	u, err := r.get(userID)
	if err != nil {
		return nil, err
	}
	u.CreatedPostIDs = addToSet(u.CreatedPostIDs, postID)
	return u, nil
}

func (r *fakeUserRepo) RemoveCreatedPost(ctx context.Context, userID string, postID primitive.ObjectID) (*models.User, error) {
	u, err := r.get(userID)
	if err != nil {
		return nil, err
	}
	u.CreatedPostIDs = pull(u.CreatedPostIDs, postID)
	return u, nil
}

func (r *fakeUserRepo) AddFavorite(ctx context.Context, userID string, postID primitive.ObjectID) (*models.User, error) {
	u, err := r.get(userID)
	if err != nil {
		return nil, err
	}
	u.FavoritePostIDs = addToSet(u.FavoritePostIDs, postID)
	return u, nil
}

func (r *fakeUserRepo) RemoveFavorite(ctx context.Context, userID string, postID primitive.ObjectID) (*models.User, error) {
	u, err := r.get(userID)
	if err != nil {
		return nil, err
	}
	u.FavoritePostIDs = pull(u.FavoritePostIDs, postID)
	return u, nil
}

func addToSet(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func pull(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	result := ids[:0]
	for _, existing := range ids {
		if existing != id {
			result = append(result, existing)
		}
	}
	return result
}

// fakePostRepo is an in-memory PostRepository with deterministic insertion
// order for pagination
type fakePostRepo struct {
	posts      map[string]*models.Post
	order      []string
	lastUpdate bson.M
}

func newFakePostRepo(posts ...*models.Post) *fakePostRepo {
	r := &fakePostRepo{posts: make(map[string]*models.Post)}
	for _, p := range posts {
		r.posts[p.ID.Hex()] = p
		r.order = append(r.order, p.ID.Hex())
	}
	return r
}

func (r *fakePostRepo) matching(flair string) []*models.Post {
	matched := []*models.Post{}
	for _, id := range r.order {
		p := r.posts[id]
		if flair == "" || p.Flair == flair {
			matched = append(matched, p)
		}
	}
	return matched
}

func (r *fakePostRepo) Query(ctx context.Context, page, limit int64, flair string) ([]models.Post, error) {
	if page < 1 {
		page = 1
	}
	matched := r.matching(flair)
	skip := (page - 1) * limit
	result := []models.Post{}
	for i := skip; i < skip+limit && i < int64(len(matched)); i++ {
		result = append(result, *matched[i])
	}
	return result, nil
}

func (r *fakePostRepo) QueryByID(ctx context.Context, id string) (*models.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, httperror.New(http.StatusNotFound, "Not found", "Bad id for the query")
	}
	return p, nil
}

func (r *fakePostRepo) Search(ctx context.Context, field string, value interface{}) ([]models.Post, error) {
	if field == "flair" {
		result := []models.Post{}
		for _, p := range r.matching(value.(string)) {
			result = append(result, *p)
		}
		return result, nil
	}
	return []models.Post{}, nil
}

func (r *fakePostRepo) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	post.ID = primitive.NewObjectID()
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	r.posts[post.ID.Hex()] = post
	r.order = append(r.order, post.ID.Hex())
	return post, nil
}

func (r *fakePostRepo) Update(ctx context.Context, id string, data bson.M) (*models.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, httperror.New(http.StatusNotFound, "Not found", "Bad id for the update")
	}
	r.lastUpdate = data
	if description, ok := data["description"].(string); ok {
		p.Description = description
	}
	if flair, ok := data["flair"].(string); ok {
		p.Flair = flair
	}
	return p, nil
}

func (r *fakePostRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.posts[id]; !ok {
		return httperror.New(http.StatusNotFound, "Not found", "Bad id for the delete")
	}
	delete(r.posts, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakePostRepo) Count(ctx context.Context, flair string) (int64, error) {
	return int64(len(r.matching(flair))), nil
}

func (r *fakePostRepo) AddComment(ctx context.Context, id string, comment models.Comment) (*models.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, httperror.New(http.StatusNotFound, "Not found", "Bad id for the update")
	}
	p.Comments = append(p.Comments, comment)
	return p, nil
}

// fakePublisher records emitted events
type fakePublisher struct {
	events []string
}

func (p *fakePublisher) Publish(ctx context.Context, event string) error {
	p.events = append(p.events, event)
	return nil
}

// passthroughTxn runs the function directly, with no transaction semantics
type passthroughTxn struct{}

func (passthroughTxn) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
