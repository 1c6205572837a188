package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/matrimony/backend/internal/middleware"
	"github.com/anonto42/matrimony/backend/internal/models"
	"github.com/anonto42/matrimony/backend/internal/repositories"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeVerifier struct {
	tokens map[string]*auth.Token
}

func (f fakeVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	if token, ok := f.tokens[idToken]; ok {
		return token, nil
	}
	return nil, errors.New("token expired")
}

// run executes mw around a handler that records the actor id it sees
func run(t *testing.T, mw echo.MiddlewareFunc, authHeader string, setup func(echo.Context)) (string, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	c := e.NewContext(req, httptest.NewRecorder())
	if setup != nil {
		setup(c)
	}

	var seen string
	err := mw(func(c echo.Context) error {
		seen = middleware.ActorID(c)
		return nil
	})(c)
	return seen, err
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, status, httpErr.Code)
}

func TestFirebaseAuthMiddleware(t *testing.T) {
	verifier := fakeVerifier{tokens: map[string]*auth.Token{
		"good":   {UID: "uid1", Claims: map[string]interface{}{"email": "asha@example.com"}},
		"dashed": {UID: "550e8400-e29b-41d4-a716-446655440000"},
	}}
	mw := middleware.FirebaseAuthMiddleware(verifier)

	t.Run("valid token", func(t *testing.T) {
		seen, err := run(t, mw, "Bearer good", nil)
		require.NoError(t, err)
		assert.Equal(t, "uid1", seen)
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic good"},
		{"no token", "Bearer"},
		{"rejected token", "Bearer stale"},
		{"unsupported uid", "Bearer dashed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen, err := run(t, mw, tt.header, nil)
			assertStatus(t, err, http.StatusUnauthorized)
			assert.Empty(t, seen)
		})
	}
}

func signed(t *testing.T, secret string, method jwt.SigningMethod, claims models.JwtCustomClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestJWTAuthMiddleware(t *testing.T) {
	mw := middleware.JWTAuthMiddleware(testSecret)
	valid := models.JwtCustomClaims{
		UserID: "uid2",
		Email:  "ravi@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	t.Run("valid token", func(t *testing.T) {
		seen, err := run(t, mw, "Bearer "+signed(t, testSecret, jwt.SigningMethodHS256, valid), nil)
		require.NoError(t, err)
		assert.Equal(t, "uid2", seen)
	})

	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	noSubject := valid
	noSubject.UserID = ""
	uuidSubject := valid
	uuidSubject.UserID = "550e8400-e29b-41d4-a716-446655440000"

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", signed(t, "other", jwt.SigningMethodHS256, valid)},
		{"expired", signed(t, testSecret, jwt.SigningMethodHS256, expired)},
		{"missing user id", signed(t, testSecret, jwt.SigningMethodHS256, noSubject)},
		{"unsupported user id", signed(t, testSecret, jwt.SigningMethodHS256, uuidSubject)},
		{"garbage", "not.a.jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen, err := run(t, mw, "Bearer "+tt.token, nil)
			assertStatus(t, err, http.StatusUnauthorized)
			assert.Empty(t, seen)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	store := repositories.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Users().UpsertUser(ctx, &models.User{ID: "boss", Name: "Boss", Role: models.RoleAdmin}))
	require.NoError(t, store.Users().UpsertUser(ctx, &models.User{ID: "asha", Name: "Asha"}))
	mw := middleware.RequireAdmin(store.Users())

	as := func(id string) func(echo.Context) {
		return func(c echo.Context) { c.Set(middleware.ActorIDKey, id) }
	}

	seen, err := run(t, mw, "", as("boss"))
	require.NoError(t, err)
	assert.Equal(t, "boss", seen)

	_, err = run(t, mw, "", nil)
	assertStatus(t, err, http.StatusUnauthorized)

	_, err = run(t, mw, "", as("asha"))
	assertStatus(t, err, http.StatusForbidden)

	_, err = run(t, mw, "", as("ghost"))
	assertStatus(t, err, http.StatusForbidden)
}
