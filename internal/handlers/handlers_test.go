package handlers_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/matrimony/backend/internal/handlers"
	"github.com/anonto42/matrimony/backend/internal/hub"
	"github.com/anonto42/matrimony/backend/internal/ledger"
	"github.com/anonto42/matrimony/backend/internal/middleware"
	"github.com/anonto42/matrimony/backend/internal/models"
	"github.com/anonto42/matrimony/backend/internal/repositories"
	"github.com/anonto42/matrimony/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testUserHeader = "X-Test-User"

type testServer struct {
	echo  *echo.Echo
	store *repositories.MemoryStore
	hub   *hub.Hub
}

// newTestServer wires the handlers the way the router does, with the caller
// identified by a test header instead of a token
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := repositories.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Users().UpsertUser(ctx, &models.User{ID: "asha", Name: "Asha", ProfileImage: "https://img.example.com/asha.png"}))
	require.NoError(t, store.Users().UpsertUser(ctx, &models.User{ID: "ravi", Name: "Ravi"}))
	require.NoError(t, store.Users().UpsertUser(ctx, &models.User{ID: "boss", Name: "Boss", Role: models.RoleAdmin}))

	logger := zap.NewNop()
	h := hub.NewHub(logger)
	l := ledger.New(store.Likes(), store.Matches(), store.Notifications(), store.Users(),
		ledger.WithPublisher(h), ledger.WithLogger(logger))

	e := echo.New()
	e.Validator = validators.NewValidator()
	api := e.Group("/api/v1", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id := c.Request().Header.Get(testUserHeader); id != "" {
				c.Set(middleware.ActorIDKey, id)
			}
			return next(c)
		}
	})
	handlers.NewLikeHandler(l).RegisterLikeRoutes(api)
	handlers.NewMatchHandler(l).RegisterMatchRoutes(api)
	handlers.NewNotificationHandler(l, h, logger).RegisterNotificationRoutes(api)
	handlers.NewUserHandler(store.Users()).RegisterProfileRoutes(api)
	admin := api.Group("/admin", middleware.RequireAdmin(store.Users()))
	handlers.NewAdminHandler(l, logger).RegisterAdminRoutes(admin)

	return &testServer{echo: e, store: store, hub: h}
}

func (s *testServer) do(t *testing.T, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if user != "" {
		req.Header.Set(testUserHeader, user)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealthCheck(t *testing.T) {
	e := echo.New()
	e.GET("/health", handlers.HealthCheck)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestLikeProfile_MutualFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/profiles/ravi/like", "asha", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var first models.LikeResult
	decode(t, rec, &first)
	assert.Equal(t, "asha-ravi", first.Like.ID)
	assert.False(t, first.Matched)

	rec = s.do(t, http.MethodPost, "/api/v1/profiles/asha/like", "ravi", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var second models.LikeResult
	decode(t, rec, &second)
	assert.True(t, second.Matched)

	rec = s.do(t, http.MethodGet, "/api/v1/profiles/ravi/mutual", "asha", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var mutual struct {
		UserID string `json:"user_id"`
		Mutual bool   `json:"mutual"`
	}
	decode(t, rec, &mutual)
	assert.Equal(t, "ravi", mutual.UserID)
	assert.True(t, mutual.Mutual)

	rec = s.do(t, http.MethodGet, "/api/v1/matches", "asha", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	decode(t, rec, &env)
	var matches struct {
		Matches []models.Match `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &matches))
	require.Len(t, matches.Matches, 1)
	assert.Equal(t, "asha-ravi", matches.Matches[0].ID)
}

func TestLikeProfile_Errors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		user   string
		status int
	}{
		{"unauthenticated", "/api/v1/profiles/ravi/like", "", http.StatusUnauthorized},
		{"self like", "/api/v1/profiles/asha/like", "asha", http.StatusBadRequest},
		{"separator in target", "/api/v1/profiles/ra-vi/like", "asha", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, tt.path, tt.user, "")
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	likes, err := s.store.Likes().ListAllLikes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, likes)
}

func TestLikeListings(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/profiles/ravi/like", "asha", "").Code)

	var env envelope
	var sent, received struct {
		Likes []models.Like `json:"likes"`
	}

	decode(t, s.do(t, http.MethodGet, "/api/v1/likes", "asha", ""), &env)
	require.NoError(t, json.Unmarshal(env.Data, &sent))
	require.Len(t, sent.Likes, 1)
	assert.Equal(t, "ravi", sent.Likes[0].LikedID)

	decode(t, s.do(t, http.MethodGet, "/api/v1/likes/received", "ravi", ""), &env)
	require.NoError(t, json.Unmarshal(env.Data, &received))
	require.Len(t, received.Likes, 1)
	assert.Equal(t, "asha", received.Likes[0].LikerID)
}

func TestNotifications(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/profiles/ravi/like", "asha", "").Code)

	rec := s.do(t, http.MethodGet, "/api/v1/notifications?limit=10", "ravi", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	decode(t, rec, &env)
	var list struct {
		Notifications []models.Notification `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Notifications, 1)
	n := list.Notifications[0]
	assert.Equal(t, models.NotificationTypeLike, n.Type)
	assert.Equal(t, "Asha", n.Data.LikerName)
	assert.Equal(t, "https://img.example.com/asha.png", n.Data.LikerProfileImage)

	var count struct {
		Count int64 `json:"count"`
	}
	decode(t, s.do(t, http.MethodGet, "/api/v1/notifications/unread-count", "ravi", ""), &env)
	require.NoError(t, json.Unmarshal(env.Data, &count))
	assert.Equal(t, int64(1), count.Count)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPut, "/api/v1/notifications/"+n.ID+"/read", "asha", "").Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/api/v1/notifications/"+n.ID+"/read", "ravi", "").Code)

	decode(t, s.do(t, http.MethodGet, "/api/v1/notifications/unread-count", "ravi", ""), &env)
	require.NoError(t, json.Unmarshal(env.Data, &count))
	assert.Zero(t, count.Count)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/v1/notifications?limit=1000", "ravi", "").Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/api/v1/notifications/read-all", "ravi", "").Code)
}

func TestProfileRoutes(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/profile", "meera", "").Code)

	rec := s.do(t, http.MethodPut, "/api/v1/profile", "meera", `{"name":"Meera","profile_image":"https://img.example.com/m.png"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/profiles/meera", "asha", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var profile models.DisplayProfile
	decode(t, rec, &profile)
	assert.Equal(t, "Meera", profile.Name)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPut, "/api/v1/profile", "meera", `{"name":"M"}`).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/profiles/nobody", "asha", "").Code)

	// A later like picks up the display data written through the profile route.
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/profiles/asha/like", "meera", "").Code)
	notifs, err := s.store.Notifications().ListByRecipient(context.Background(), "asha", 0)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, "Meera", notifs[0].Data.LikerName)
}

func TestAdminReconcile(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	for _, like := range []models.Like{
		{ID: "asha-ravi", LikerID: "asha", LikedID: "ravi"},
		{ID: "ravi-asha", LikerID: "ravi", LikedID: "asha"},
	} {
		like := like
		_, _, err := s.store.Likes().UpsertLike(ctx, &like)
		require.NoError(t, err)
	}

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/api/v1/admin/reconcile", "asha", "").Code)

	rec := s.do(t, http.MethodPost, "/api/v1/admin/reconcile", "boss", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	decode(t, rec, &env)
	var result struct {
		MatchesCreated int `json:"matches_created"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 1, result.MatchesCreated)
}

func TestStreamNotifications(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.echo)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/notifications/stream", nil)
	require.NoError(t, err)
	req.Header.Set(testUserHeader, "ravi")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "text/event-stream", res.Header.Get(echo.HeaderContentType))

	require.Eventually(t, func() bool { return s.hub.Subscribers("ravi") == 1 }, time.Second, 5*time.Millisecond)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/profiles/ravi/like", "asha", "").Code)

	lines := make(chan string, 1)
	go func() {
		scanner := bufio.NewScanner(res.Body)
		for scanner.Scan() {
			if line := scanner.Text(); strings.HasPrefix(line, "data: ") {
				lines <- strings.TrimPrefix(line, "data: ")
				return
			}
		}
		close(lines)
	}()

	select {
	case line, ok := <-lines:
		require.True(t, ok, "stream ended before an event arrived")
		var event struct {
			Type    string              `json:"type"`
			Payload models.Notification `json:"payload"`
		}
		require.NoError(t, json.Unmarshal([]byte(line), &event))
		assert.Equal(t, "notification", event.Type)
		assert.Equal(t, "asha", event.Payload.Data.LikerID)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}

	cancel()
	require.Eventually(t, func() bool { return s.hub.Subscribers("ravi") == 0 }, time.Second, 5*time.Millisecond)
}

func TestStreamNotifications_EndsWhenHubCloses(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.echo)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/notifications/stream", nil)
	require.NoError(t, err)
	req.Header.Set(testUserHeader, "ravi")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Eventually(t, func() bool { return s.hub.Subscribers("ravi") == 1 }, time.Second, 5*time.Millisecond)

	s.hub.Close()

	done := make(chan error, 1)
	go func() {
		_, err := io.Copy(io.Discard, res.Body)
		done <- err
	}()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("stream stayed open after the hub closed")
	}
}
