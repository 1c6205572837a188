package handlers

import (
	"net/http"

	"github.com/anonto42/matrimony/backend/internal/ledger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AdminHandler exposes maintenance operations of the ledger
type AdminHandler struct {
	ledger *ledger.Ledger
	logger *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(l *ledger.Ledger, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{ledger: l, logger: logger}
}

// RegisterAdminRoutes registers admin routes; g must already require the admin role
func (h *AdminHandler) RegisterAdminRoutes(g *echo.Group) {
	g.POST("/reconcile", h.Reconcile)
}

// Reconcile runs one reconciliation sweep and reports how many matches it created
func (h *AdminHandler) Reconcile(c echo.Context) error {
	created, err := h.ledger.Reconcile(c.Request().Context())
	if err != nil {
		return ledgerError(err)
	}

	h.logger.Info("manual reconciliation finished", zap.Int("matches_created", created))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"matches_created": created}})
}
