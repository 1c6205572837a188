package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/matrimony/backend/internal/hub"
	"github.com/anonto42/matrimony/backend/internal/ledger"
	"github.com/anonto42/matrimony/backend/internal/router"
	"github.com/anonto42/matrimony/backend/pkg/config"
	"github.com/anonto42/matrimony/backend/pkg/firebase"
	"github.com/anonto42/matrimony/backend/pkg/logger"
	"github.com/anonto42/matrimony/backend/validators"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Initialize Firebase
	var firebaseApp *firebase.App
	if cfg.NeedsFirebase() {
		firebaseApp, err = firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, firebase.Options{
			Auth:      cfg.AuthMode == config.AuthFirebase,
			Firestore: cfg.StoreDriver == config.DriverFirestore,
		})
		if err != nil {
			zlog.Fatal("Failed to initialize Firebase", zap.Error(err))
		}
		defer firebaseApp.Close()
	}

	stores, err := router.NewStores(ctx, cfg, db, firebaseApp, zlog)
	if err != nil {
		zlog.Fatal("Failed to initialize stores", zap.Error(err))
	}
	authMiddleware, err := router.AuthMiddleware(cfg, firebaseApp)
	if err != nil {
		zlog.Fatal("Failed to initialize authentication", zap.Error(err))
	}

	notificationHub := hub.NewHub(zlog)
	engagement := ledger.New(stores.Likes, stores.Matches, stores.Notifications, stores.Users,
		ledger.WithLogger(zlog),
		ledger.WithPublisher(notificationHub),
		ledger.WithStoreTimeout(cfg.StoreTimeout),
		ledger.WithPlaceholderName(cfg.PlaceholderName),
	)

	if cfg.ReconcileInterval > 0 {
		go engagement.RunReconciler(ctx, cfg.ReconcileInterval)
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	// Setup global middleware
	config.SetupMiddleware(e, zlog)

	// Setup routes and dependencies
	router.SetupRoutes(e, engagement, notificationHub, stores.Users, authMiddleware, zlog)

	// Open notification streams only end when the hub closes
	e.Server.RegisterOnShutdown(notificationHub.Close)

	go func() {
		zlog.Info("Starting server", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Server shutdown failed", zap.Error(err))
	}
}
