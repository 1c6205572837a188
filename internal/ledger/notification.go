package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/matrimony/backend/internal/models"
	"github.com/anonto42/matrimony/backend/internal/repositories"
	"go.uber.org/zap"
)

// display resolves the name and image shown to other users. A missing profile
// or a directory failure falls back to the placeholder name.
func (l *Ledger) display(ctx context.Context, userID string) models.DisplayProfile {
	fallback := models.DisplayProfile{ID: userID, Name: l.placeholder}
	if l.profiles == nil {
		return fallback
	}

	sctx, cancel := l.storeCtx(ctx)
	defer cancel()

	user, err := l.profiles.GetUserByID(sctx, userID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			l.logger.Warn("profile lookup failed, using placeholder",
				zap.String("user_id", userID), zap.Error(err))
		}
		return fallback
	}
	profile := user.ToDisplay()
	if profile.Name == "" {
		profile.Name = l.placeholder
	}
	return profile
}

func (l *Ledger) emit(ctx context.Context, recipientID string, typ models.NotificationType, data models.NotificationData) error {
	n := &models.Notification{
		ID:        l.newID(),
		UserID:    recipientID,
		Type:      typ,
		Data:      data,
		Read:      false,
		CreatedAt: l.now().UTC(),
	}

	sctx, cancel := l.storeCtx(ctx)
	defer cancel()

	if err := l.notifications.CreateNotification(sctx, n); err != nil {
		return storeErr(fmt.Sprintf("create %s notification for %s", typ, recipientID), err)
	}
	if l.publisher != nil {
		l.publisher.Publish(recipientID, *n)
	}
	return nil
}

// ListNotifications returns the newest notifications of userID. limit <= 0 returns all.
func (l *Ledger) ListNotifications(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	if err := l.validateUserID(userID); err != nil {
		return nil, err
	}
	sctx, cancel := l.storeCtx(ctx)
	defer cancel()

	notifications, err := l.notifications.ListByRecipient(sctx, userID, limit)
	if err != nil {
		return nil, storeErr("list notifications", err)
	}
	return notifications, nil
}

// UnreadCount returns how many notifications of userID are unread
func (l *Ledger) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if err := l.validateUserID(userID); err != nil {
		return 0, err
	}
	sctx, cancel := l.storeCtx(ctx)
	defer cancel()

	count, err := l.notifications.CountUnread(sctx, userID)
	if err != nil {
		return 0, storeErr("count unread notifications", err)
	}
	return count, nil
}

// MarkNotificationRead marks the notification read on behalf of its recipient.
// Marking an already read notification is a no-op. Notifications addressed to
// someone else are reported as not found.
func (l *Ledger) MarkNotificationRead(ctx context.Context, actorID, notificationID string) error {
	if err := l.validateUserID(actorID); err != nil {
		return err
	}
	if notificationID == "" {
		return fmt.Errorf("%w: empty notification id", ErrInvalidOperation)
	}

	sctx, cancel := l.storeCtx(ctx)
	n, err := l.notifications.GetNotification(sctx, notificationID)
	cancel()
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("notification %s: %w", notificationID, ErrNotFound)
		}
		return storeErr("get notification "+notificationID, err)
	}
	if n.UserID != actorID {
		return fmt.Errorf("notification %s: %w", notificationID, ErrNotFound)
	}
	if n.Read {
		return nil
	}

	sctx, cancel = l.storeCtx(ctx)
	defer cancel()
	if err := l.notifications.MarkAsRead(sctx, notificationID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("notification %s: %w", notificationID, ErrNotFound)
		}
		return storeErr("mark notification read "+notificationID, err)
	}
	return nil
}

// MarkAllNotificationsRead marks every unread notification of userID read
func (l *Ledger) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	if err := l.validateUserID(userID); err != nil {
		return err
	}
	sctx, cancel := l.storeCtx(ctx)
	defer cancel()

	if err := l.notifications.MarkAllAsRead(sctx, userID); err != nil {
		return storeErr("mark all notifications read", err)
	}
	return nil
}
