package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/anonto42/matrimony/backend/internal/hub"
	"github.com/anonto42/matrimony/backend/internal/ledger"
	"github.com/anonto42/matrimony/backend/internal/models"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	defaultNotificationLimit = 50
	streamBufferSize         = 16
	streamKeepAlive          = 30 * time.Second
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	ledger *ledger.Ledger
	hub    *hub.Hub
	logger *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(l *ledger.Ledger, h *hub.Hub, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		ledger: l,
		hub:    h,
		logger: logger,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.GET("/notifications/stream", h.StreamNotifications)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
}

// GetNotifications returns the caller's newest notifications
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}

	var req models.ListNotificationsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Limit == 0 {
		req.Limit = defaultNotificationLimit
	}

	notifications, err := h.ledger.ListNotifications(c.Request().Context(), userID, req.Limit)
	if err != nil {
		return ledgerError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": notifications,
		},
		"meta": echo.Map{
			"itemsPerPage": req.Limit,
			"count":        len(notifications),
		},
	})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}

	count, err := h.ledger.UnreadCount(c.Request().Context(), userID)
	if err != nil {
		return ledgerError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"count": count}})
}

// MarkAsRead marks a notification as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}

	if err := h.ledger.MarkNotificationRead(c.Request().Context(), userID, c.Param("id")); err != nil {
		return ledgerError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"success": true}})
}

// MarkAllAsRead marks all notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}

	if err := h.ledger.MarkAllNotificationsRead(c.Request().Context(), userID); err != nil {
		return ledgerError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"success": true}})
}

// StreamNotifications pushes new notifications to the caller as server-sent events
// until the client disconnects. Missed events are recovered from GetNotifications.
func (h *NotificationHandler) StreamNotifications(c echo.Context) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	client := h.hub.Subscribe(userID, streamBufferSize)
	defer h.hub.Unsubscribe(userID, client)
	h.logger.Debug("notification stream opened", zap.String("user_id", userID))

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("notification stream closed", zap.String("user_id", userID))
			return nil
		case msg, ok := <-client:
			if !ok {
				return nil
			}
			if _, err := fmt.Fprintf(res, "event: notification\ndata: %s\n\n", msg); err != nil {
				return nil
			}
			res.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": keep-alive\n\n"); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
