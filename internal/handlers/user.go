package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/anonto42/matrimony/backend/internal/middleware"
	"github.com/anonto42/matrimony/backend/internal/models"
	"github.com/anonto42/matrimony/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to the profile directory
type UserHandler struct {
	userRepository repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)    // Get own profile
	g.PUT("/profile", h.UpdateProfile) // Create or update own profile
	g.GET("/profiles/:id", h.GetUser)  // Get other user's display profile
}

// GetUser returns the public display fields of another user
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.userRepository.GetUserByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Account directory unavailable").SetInternal(err)
	}
	return c.JSON(http.StatusOK, user.ToDisplay())
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Account directory unavailable").SetInternal(err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile creates or updates the authenticated user's directory record.
// The display fields written here feed the like and match notifications.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	now := time.Now().UTC()
	user, err := h.userRepository.GetUserByID(ctx, userID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		user = &models.User{ID: userID, CreatedAt: now}
	case err != nil:
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Account directory unavailable").SetInternal(err)
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.ProfileImage != "" {
		user.ProfileImage = req.ProfileImage
	}
	if email := middleware.ActorEmail(c); email != "" {
		user.Email = email
	}
	user.UpdatedAt = now

	if err := h.userRepository.UpsertUser(ctx, user); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Account directory unavailable").SetInternal(err)
	}

	return c.JSON(http.StatusOK, user)
}
