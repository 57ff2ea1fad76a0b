package router

import (
	"context"
	"log"

	"github.com/fotitos/backend/internal/auth"
	"github.com/fotitos/backend/internal/handlers"
	"github.com/fotitos/backend/internal/httperror"
	"github.com/fotitos/backend/internal/middleware"
	"github.com/fotitos/backend/internal/realtime"
	"github.com/fotitos/backend/internal/repositories"
	"github.com/fotitos/backend/pkg/config"
	"github.com/fotitos/backend/pkg/firebase"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Pre(eMiddleware.RemoveTrailingSlash())
	e.Use(eMiddleware.Logger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.HTTPErrorHandler = httperror.Handler
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, db *config.DB, firebaseApp *firebase.App, cfg *config.Config) {
	database := db.Mongo.Database(cfg.DBName)

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.Static("/", "public")

	// --- Repositories ---
	userRepo := repositories.NewMongoUserRepository(database)
	postRepo := repositories.NewMongoPostRepository(database)
	txn := repositories.NewMongoTxnRunner(db.Mongo)

	// --- Realtime channel ---
	hub := realtime.NewHub()
	var publisher realtime.Publisher
	if db.Redis != nil {
		redisPublisher := realtime.NewRedisPublisher(db.Redis)
		if err := hub.StartWiring(context.Background(), redisPublisher); err != nil {
			log.Fatalf("Failed to wire realtime hub: %v", err)
		}
		publisher = redisPublisher
		log.Println("Realtime events bridged through Redis.")
	} else {
		publisher = realtime.NewHubPublisher(hub)
		log.Println("Realtime events broadcast in-process.")
	}
	e.GET("/events", hub.ServeWS)

	// --- Shared middleware ---
	tokens := auth.NewTokenService(cfg.JWTSecret)
	authMw := middleware.NewAuthInterceptor(tokens, postRepo)
	files := middleware.NewFileMiddleware(cfg.UploadDir, firebaseApp)
	validation := middleware.NewValidationMiddleware()

	// --- User routes ---
	userHandler := handlers.NewUserHandler(userRepo, tokens)
	userHandler.RegisterUserRoutes(e.Group("/user"), authMw, files, validation)
	log.Println("User routes configured.")

	// --- Post routes ---
	postHandler := handlers.NewPostHandler(postRepo, userRepo, txn, publisher)
	postHandler.RegisterPostRoutes(e.Group("/post"), authMw, files)
	log.Println("Post routes configured.")

	log.Println("All routes configured.")
}
