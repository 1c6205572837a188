package handlers

import (
	"net/http"

	"github.com/anonto42/matrimony/backend/internal/ledger"
	"github.com/labstack/echo/v4"
)

// MatchHandler handles HTTP requests related to matches
type MatchHandler struct {
	ledger *ledger.Ledger
}

// NewMatchHandler creates a new MatchHandler
func NewMatchHandler(l *ledger.Ledger) *MatchHandler {
	return &MatchHandler{ledger: l}
}

// RegisterMatchRoutes registers match routes
func (h *MatchHandler) RegisterMatchRoutes(g *echo.Group) {
	g.GET("/matches", h.GetMatches)
}

// GetMatches lists the caller's matches, newest first
func (h *MatchHandler) GetMatches(c echo.Context) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}

	matches, err := h.ledger.ListMatches(c.Request().Context(), userID)
	if err != nil {
		return ledgerError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"matches": matches}})
}
