package handlers

import (
	"net/http"

	"github.com/anonto42/matrimony/backend/internal/ledger"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	ledger *ledger.Ledger
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(l *ledger.Ledger) *LikeHandler {
	return &LikeHandler{ledger: l}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/profiles/:id/like", h.LikeProfile)
	g.GET("/profiles/:id/mutual", h.GetMutualStatus)
	g.GET("/likes", h.GetLikesSent)
	g.GET("/likes/received", h.GetLikesReceived)
}

// LikeProfile records the caller's like of another profile.
// Repeating the request is safe and returns the stored like.
func (h *LikeHandler) LikeProfile(c echo.Context) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}

	result, err := h.ledger.RecordLike(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return ledgerError(err)
	}

	return c.JSON(http.StatusOK, result)
}

// GetMutualStatus reports whether the caller and the profile like each other
func (h *LikeHandler) GetMutualStatus(c echo.Context) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}
	otherID := c.Param("id")

	mutual, err := h.ledger.CheckMutualLike(c.Request().Context(), userID, otherID)
	if err != nil {
		return ledgerError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"user_id": otherID, "mutual": mutual})
}

// GetLikesSent lists the likes the caller has given, newest first
func (h *LikeHandler) GetLikesSent(c echo.Context) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}

	likes, err := h.ledger.ListLikes(c.Request().Context(), userID)
	if err != nil {
		return ledgerError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"likes": likes}})
}

// GetLikesReceived lists the likes other users have given the caller
func (h *LikeHandler) GetLikesReceived(c echo.Context) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}

	likes, err := h.ledger.ListLikesReceived(c.Request().Context(), userID)
	if err != nil {
		return ledgerError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"likes": likes}})
}
