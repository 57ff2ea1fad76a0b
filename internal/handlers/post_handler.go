package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/fotitos/backend/internal/auth"
	"github.com/fotitos/backend/internal/httperror"
	"github.com/fotitos/backend/internal/middleware"
	"github.com/fotitos/backend/internal/models"
	"github.com/fotitos/backend/internal/realtime"
	"github.com/fotitos/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/bson"
)

// Posts are listed in fixed pages of three
const postPageLimit = int64(3)

const uploadBodyLimit = "8M"

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepo  repositories.PostRepository
	userRepo  repositories.UserRepository
	txn       repositories.TxnRunner
	publisher realtime.Publisher
}

// NewPostHandler creates a new PostHandler. The publisher is injected here so
// handlers never reach for an ambient emission handle.
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, txn repositories.TxnRunner, publisher realtime.Publisher) *PostHandler {
	return &PostHandler{
		postRepo:  postRepo,
		userRepo:  userRepo,
		txn:       txn,
		publisher: publisher,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, authMw *middleware.AuthInterceptor, files *middleware.FileMiddleware) {
	g.GET("", h.GetAll)
	g.GET("/:id", h.GetByID)
	g.POST("", h.Create,
		authMw.Logged,
		echoMiddleware.BodyLimit(uploadBodyLimit),
		files.SingleFileStore("image"),
		files.Optimization("post"),
		files.SaveDataImage,
	)
	g.PATCH("/addfavorite/:id", h.AddToFavorite, authMw.Logged)
	g.PATCH("/removefavorite/:id", h.RemoveToFavorite, authMw.Logged)
	g.PATCH("/addcomment/:id", h.AddComment, authMw.Logged)
	g.PATCH("/:id", h.Patch, authMw.Logged, authMw.Authorized)
	g.DELETE("/:id", h.DeleteByID, authMw.Logged, authMw.Authorized)
}

// GetAll retrieves a page of posts with previous/next links, optionally
// filtered by flair
func (h *PostHandler) GetAll(c echo.Context) error {
	page := int64(1)
	if p, err := strconv.ParseInt(c.QueryParam("page"), 10, 64); err == nil && p > 0 {
		page = p
	}
	flair := c.QueryParam("flair")
	ctx := c.Request().Context()

	items, err := h.postRepo.Query(ctx, page, postPageLimit, flair)
	if err != nil {
		return err
	}
	count, err := h.postRepo.Count(ctx, flair)
	if err != nil {
		return err
	}

	baseURL := c.Scheme() + "://" + c.Request().Host + c.Path()
	previous, next := pageLinks(baseURL, flair, page, totalPages(count, postPageLimit))

	return c.JSON(http.StatusOK, models.ApiResponse{
		Items:    items,
		Count:    count,
		Previous: previous,
		Next:     next,
	})
}

// GetByID retrieves a post by id
func (h *PostHandler) GetByID(c echo.Context) error {
	post, err := h.postRepo.QueryByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// Create stores a new post owned by the caller. The post insert and the
// owner's createdPost append run inside one transaction.
func (h *PostHandler) Create(c echo.Context) error {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return httperror.New(auth.StatusInvalidToken, "Token not found", "Token payload is missing")
	}
	ctx := c.Request().Context()

	user, err := h.userRepo.QueryByID(ctx, claims.ID)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return httperror.New(http.StatusBadRequest, "Bad request", "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return err
	}

	img, ok := middleware.GetImage(c, "image")
	if !ok {
		return httperror.New(http.StatusNotAcceptable, "Not Acceptable", "Not valid image file")
	}

	post := &models.Post{
		Description: req.Description,
		Image:       img,
		Flair:       req.Flair,
		OwnerID:     user.ID,
	}

	var created *models.Post
	err = h.txn.Run(ctx, func(ctx context.Context) error {
		var err error
		created, err = h.postRepo.Create(ctx, post)
		if err != nil {
			return err
		}
		_, err = h.userRepo.AddCreatedPost(ctx, claims.ID, created.ID)
		return err
	})
	if err != nil {
		return err
	}

	h.publish(c, realtime.EventPostCreated)
	return c.JSON(http.StatusCreated, created)
}

// DeleteByID deletes a post and removes it from the owner's createdPost array,
// both inside one transaction
func (h *PostHandler) DeleteByID(c echo.Context) error {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return httperror.New(auth.StatusInvalidToken, "Token not found", "Token payload is missing")
	}
	ctx := c.Request().Context()

	postID, err := repositories.ParseID(c.Param("id"))
	if err != nil {
		return err
	}

	err = h.txn.Run(ctx, func(ctx context.Context) error {
		if err := h.postRepo.Delete(ctx, c.Param("id")); err != nil {
			return err
		}
		_, err := h.userRepo.RemoveCreatedPost(ctx, claims.ID, postID)
		return err
	})
	if err != nil {
		return err
	}

	h.publish(c, realtime.EventPostDeleted)
	return c.NoContent(http.StatusNoContent)
}

// AddToFavorite adds the post to the caller's favorites. Favoriting a post
// already present is a no-op, not an error.
func (h *PostHandler) AddToFavorite(c echo.Context) error {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return httperror.New(auth.StatusInvalidToken, "Token not found", "Token payload is missing")
	}
	ctx := c.Request().Context()

	post, err := h.postRepo.QueryByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	user, err := h.userRepo.AddFavorite(ctx, claims.ID, post.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// RemoveToFavorite removes the post from the caller's favorites. Removing an
// absent post is a no-op, not an error.
func (h *PostHandler) RemoveToFavorite(c echo.Context) error {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return httperror.New(auth.StatusInvalidToken, "Token not found", "Token payload is missing")
	}
	ctx := c.Request().Context()

	postID, err := repositories.ParseID(c.Param("id"))
	if err != nil {
		return err
	}

	user, err := h.userRepo.RemoveFavorite(ctx, claims.ID, postID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// AddComment appends a comment by the caller to the post's comment sequence
func (h *PostHandler) AddComment(c echo.Context) error {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return httperror.New(auth.StatusInvalidToken, "Token not found", "Token payload is missing")
	}
	ctx := c.Request().Context()

	var req models.AddCommentRequest
	if err := c.Bind(&req); err != nil {
		return httperror.New(http.StatusBadRequest, "Bad request", "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return err
	}

	user, err := h.userRepo.QueryByID(ctx, claims.ID)
	if err != nil {
		return err
	}

	post, err := h.postRepo.AddComment(ctx, c.Param("id"), models.Comment{
		Comment: req.Comment,
		OwnerID: user.ID,
	})
	if err != nil {
		return err
	}

	h.publish(c, realtime.EventUpdatePost)
	return c.JSON(http.StatusOK, post)
}

// Patch applies a generic partial update to a post. Identity and ownership
// fields are never client-assignable.
func (h *PostHandler) Patch(c echo.Context) error {
	var data map[string]interface{}
	if err := c.Bind(&data); err != nil {
		return httperror.New(http.StatusBadRequest, "Bad request", "Invalid request payload")
	}
	delete(data, "id")
	delete(data, "owner")

	post, err := h.postRepo.Update(c.Request().Context(), c.Param("id"), bson.M(data))
	if err != nil {
		return err
	}

	h.publish(c, realtime.EventUpdatePost)
	return c.JSON(http.StatusOK, post)
}

func (h *PostHandler) publish(c echo.Context, event string) {
	if err := h.publisher.Publish(c.Request().Context(), event); err != nil {
		log.Printf("Failed to publish %s event: %v", event, err)
	}
}
