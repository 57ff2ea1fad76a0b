package handlers

import (
	"net/http"

	"github.com/fotitos/backend/internal/auth"
	"github.com/fotitos/backend/internal/httperror"
	"github.com/fotitos/backend/internal/middleware"
	"github.com/fotitos/backend/internal/models"
	"github.com/fotitos/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// UserHandler handles user registration, login and lookups
type UserHandler struct {
	userRepo repositories.UserRepository
	tokens   *auth.TokenService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, tokens *auth.TokenService) *UserHandler {
	return &UserHandler{userRepo: userRepo, tokens: tokens}
}

// RegisterUserRoutes registers user-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group, authMw *middleware.AuthInterceptor, files *middleware.FileMiddleware, validation *middleware.ValidationMiddleware) {
	g.GET("", h.GetAll)
	g.GET("/:id", h.GetByID, authMw.Logged)
	g.POST("/register", h.Register,
		echoMiddleware.BodyLimit(uploadBodyLimit),
		files.SingleFileStore("avatar"),
		validation.RegisterValidation,
		files.Optimization("register"),
		files.SaveDataImage,
	)
	g.PATCH("/login", h.Login)
}

// GetAll retrieves all users
func (h *UserHandler) GetAll(c echo.Context) error {
	ctx := c.Request().Context()
	users, err := h.userRepo.Query(ctx)
	if err != nil {
		return err
	}
	count, err := h.userRepo.Count(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.ListResponse{Items: users, Count: count})
}

// GetByID retrieves a user by id
func (h *UserHandler) GetByID(c echo.Context) error {
	user, err := h.userRepo.QueryByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Register stores a new user with the password hashed. The hash is never
// serialized back to the client.
func (h *UserHandler) Register(c echo.Context) error {
	var req models.RegisterUserRequest
	if err := c.Bind(&req); err != nil {
		return httperror.New(http.StatusBadRequest, "Bad request", "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return err
	}

	avatar, ok := middleware.GetImage(c, "avatar")
	if !ok {
		return httperror.New(http.StatusNotAcceptable, "Not Acceptable", "Not valid image file")
	}

	hashed, err := auth.HashPasswd(req.Passwd)
	if err != nil {
		return err
	}

	user, err := h.userRepo.Create(c.Request().Context(), &models.User{
		UserName: req.UserName,
		Email:    req.Email,
		Passwd:   hashed,
		Avatar:   avatar,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// Login authenticates a user by username or email and issues a token. All
// failure modes share one message so callers cannot tell which check failed.
func (h *UserHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return httperror.New(http.StatusBadRequest, "Bad request", "Invalid request payload")
	}
	if req.User == "" || req.Passwd == "" {
		return httperror.New(http.StatusBadRequest, "Bad request", "User or password invalid")
	}
	ctx := c.Request().Context()

	users, err := h.userRepo.Search(ctx, "userName", req.User)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		users, err = h.userRepo.Search(ctx, "email", req.User)
		if err != nil {
			return err
		}
	}
	if len(users) == 0 {
		return httperror.New(http.StatusBadRequest, "Bad request", "User or password invalid")
	}

	if !auth.ComparePasswd(req.Passwd, users[0].Passwd) {
		return httperror.New(http.StatusBadRequest, "Bad request", "User or password invalid")
	}

	token, err := h.tokens.CreateToken(&models.JwtCustomClaims{
		ID:       users[0].ID.Hex(),
		UserName: users[0].UserName,
		Avatar:   users[0].Avatar,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.LoginResponse{Token: token, User: &users[0]})
}
