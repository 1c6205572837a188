package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/matrimony/backend/internal/hub"
	"github.com/anonto42/matrimony/backend/internal/ledger"
	"github.com/anonto42/matrimony/backend/internal/models"
	"github.com/anonto42/matrimony/backend/internal/router"
	"github.com/anonto42/matrimony/backend/pkg/config"
	"github.com/anonto42/matrimony/backend/validators"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewStores_Memory(t *testing.T) {
	cfg := &config.Config{StoreDriver: config.DriverMemory}
	stores, err := router.NewStores(context.Background(), cfg, &config.DB{}, nil, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, stores.Likes)
	assert.NotNil(t, stores.Matches)
	assert.NotNil(t, stores.Notifications)
	assert.NotNil(t, stores.Users)
}

func TestNewStores_FirestoreWithoutClient(t *testing.T) {
	cfg := &config.Config{StoreDriver: config.DriverFirestore}
	_, err := router.NewStores(context.Background(), cfg, &config.DB{}, nil, zap.NewNop())
	assert.Error(t, err)
}

func TestAuthMiddleware_FirebaseWithoutClient(t *testing.T) {
	_, err := router.AuthMiddleware(&config.Config{AuthMode: config.AuthFirebase}, nil)
	assert.Error(t, err)
}

func TestSetupRoutes_JWT(t *testing.T) {
	const secret = "router-secret"
	cfg := &config.Config{StoreDriver: config.DriverMemory, AuthMode: config.AuthJWT, JWTSecret: secret}
	logger := zap.NewNop()

	stores, err := router.NewStores(context.Background(), cfg, &config.DB{}, nil, logger)
	require.NoError(t, err)
	auth, err := router.AuthMiddleware(cfg, nil)
	require.NoError(t, err)

	h := hub.NewHub(logger)
	l := ledger.New(stores.Likes, stores.Matches, stores.Notifications, stores.Users, ledger.WithPublisher(h))

	e := echo.New()
	e.Validator = validators.NewValidator()
	router.SetupRoutes(e, l, h, stores.Users, auth, logger)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/profiles/ravi/like", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, models.JwtCustomClaims{
		UserID: "asha",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/profiles/ravi/like", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/api/v1/admin/reconcile", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
