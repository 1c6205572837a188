package router

import (
	"context"
	"fmt"

	"github.com/anonto42/matrimony/backend/internal/handlers"
	"github.com/anonto42/matrimony/backend/internal/hub"
	"github.com/anonto42/matrimony/backend/internal/ledger"
	"github.com/anonto42/matrimony/backend/internal/middleware"
	"github.com/anonto42/matrimony/backend/internal/models"
	"github.com/anonto42/matrimony/backend/internal/repositories"
	"github.com/anonto42/matrimony/backend/pkg/config"
	"github.com/anonto42/matrimony/backend/pkg/firebase"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Stores groups the repositories backing the ledger and the profile directory
type Stores struct {
	Likes         repositories.LikeRepository
	Matches       repositories.MatchRepository
	Notifications repositories.NotificationRepository
	Users         repositories.UserRepository
}

// NewStores builds the repositories for the configured store driver.
// Postgres tables are auto-migrated and Mongo indexes created on the way.
func NewStores(ctx context.Context, cfg *config.Config, db *config.DB, fb *firebase.App, logger *zap.Logger) (*Stores, error) {
	switch cfg.StoreDriver {
	case config.DriverFirestore:
		if fb == nil || fb.Firestore == nil {
			return nil, fmt.Errorf("firestore driver selected but no firestore client was initialized")
		}
		return &Stores{
			Likes:         repositories.NewFirestoreLikeRepository(fb.Firestore),
			Matches:       repositories.NewFirestoreMatchRepository(fb.Firestore),
			Notifications: repositories.NewFirestoreNotificationRepository(fb.Firestore),
			Users:         repositories.NewFirestoreUserRepository(fb.Firestore),
		}, nil

	case config.DriverPostgres:
		err := db.Postgres.AutoMigrate(
			&models.User{},
			&models.Like{},
			&models.Match{},
			&models.Notification{},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to auto migrate models: %w", err)
		}
		logger.Info("PostgreSQL auto-migrations completed")
		return &Stores{
			Likes:         repositories.NewPostgresLikeRepository(db.Postgres),
			Matches:       repositories.NewPostgresMatchRepository(db.Postgres),
			Notifications: repositories.NewPostgresNotificationRepository(db.Postgres),
			Users:         repositories.NewPostgresUserRepository(db.Postgres),
		}, nil

	case config.DriverMongo:
		if err := repositories.EnsureMongoIndexes(ctx, db.Mongo); err != nil {
			return nil, err
		}
		logger.Info("MongoDB indexes ensured")
		return &Stores{
			Likes:         repositories.NewMongoLikeRepository(db.Mongo),
			Matches:       repositories.NewMongoMatchRepository(db.Mongo),
			Notifications: repositories.NewMongoNotificationRepository(db.Mongo),
			Users:         repositories.NewMongoUserRepository(db.Mongo),
		}, nil

	case config.DriverMemory:
		logger.Warn("using the in-memory store; data is lost on restart")
		store := repositories.NewMemoryStore()
		return &Stores{
			Likes:         store.Likes(),
			Matches:       store.Matches(),
			Notifications: store.Notifications(),
			Users:         store.Users(),
		}, nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// AuthMiddleware returns the token middleware for the configured auth mode
func AuthMiddleware(cfg *config.Config, fb *firebase.App) (echo.MiddlewareFunc, error) {
	switch cfg.AuthMode {
	case config.AuthFirebase:
		if fb == nil || fb.AuthClient == nil {
			return nil, fmt.Errorf("firebase auth selected but no auth client was initialized")
		}
		return middleware.FirebaseAuthMiddleware(fb.AuthClient), nil
	case config.AuthJWT:
		return middleware.JWTAuthMiddleware(cfg.JWTSecret), nil
	}
	return nil, fmt.Errorf("unknown auth mode %q", cfg.AuthMode)
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, l *ledger.Ledger, h *hub.Hub, users repositories.UserRepository, auth echo.MiddlewareFunc, logger *zap.Logger) {
	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Protected routes ---
	api := e.Group("/api/v1")
	api.Use(auth)

	userHandler := handlers.NewUserHandler(users)
	userHandler.RegisterProfileRoutes(api)

	likeHandler := handlers.NewLikeHandler(l)
	likeHandler.RegisterLikeRoutes(api)

	matchHandler := handlers.NewMatchHandler(l)
	matchHandler.RegisterMatchRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(l, h, logger)
	notificationHandler.RegisterNotificationRoutes(api)

	admin := api.Group("/admin", middleware.RequireAdmin(users))
	adminHandler := handlers.NewAdminHandler(l, logger)
	adminHandler.RegisterAdminRoutes(admin)

	logger.Info("All routes configured")
}
