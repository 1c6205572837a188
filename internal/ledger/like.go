package ledger

import (
	"context"
	"errors"

	"github.com/anonto42/matrimony/backend/internal/models"
	"github.com/anonto42/matrimony/backend/internal/repositories"
	"go.uber.org/zap"
)

// RecordLike records that actorID likes targetID. If targetID already likes
// actorID the pair is matched in the same call. The target always receives one
// like notification; a newly created match adds one notification per participant.
//
// A failure after the like was written may leave the like notification unsent.
// Retrying is safe for likes and matches but can duplicate the like notification.
func (l *Ledger) RecordLike(ctx context.Context, actorID, targetID string) (*models.LikeResult, error) {
	if err := l.validatePair(actorID, targetID); err != nil {
		return nil, err
	}

	like, created, err := l.upsertLike(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}

	// The reciprocal read is issued only after the write above has returned.
	mutual, err := l.likeExists(ctx, targetID, actorID)
	if err != nil {
		return nil, err
	}

	if mutual {
		if _, _, err := l.recordMatch(ctx, actorID, targetID); err != nil {
			return nil, err
		}
	}

	actor := l.display(ctx, actorID)
	if err := l.emit(ctx, targetID, models.NotificationTypeLike, models.NotificationData{
		LikerID:           actorID,
		LikerName:         actor.Name,
		LikerProfileImage: actor.ProfileImage,
	}); err != nil {
		return nil, err
	}

	l.logger.Info("like recorded",
		zap.String("like_id", like.ID),
		zap.Bool("created", created),
		zap.Bool("matched", mutual))

	return &models.LikeResult{Like: like, Matched: mutual}, nil
}

// CheckMutualLike reports whether a and b have liked each other. It never writes.
func (l *Ledger) CheckMutualLike(ctx context.Context, a, b string) (bool, error) {
	if err := l.validatePair(a, b); err != nil {
		return false, err
	}
	forward, err := l.likeExists(ctx, a, b)
	if err != nil || !forward {
		return false, err
	}
	return l.likeExists(ctx, b, a)
}

// ListLikes returns the likes userID has given, newest first
func (l *Ledger) ListLikes(ctx context.Context, userID string) ([]models.Like, error) {
	if err := l.validateUserID(userID); err != nil {
		return nil, err
	}
	sctx, cancel := l.storeCtx(ctx)
	defer cancel()

	likes, err := l.likes.ListLikesByLiker(sctx, userID)
	if err != nil {
		return nil, storeErr("list likes", err)
	}
	return likes, nil
}

// ListLikesReceived returns the likes userID has received, newest first
func (l *Ledger) ListLikesReceived(ctx context.Context, userID string) ([]models.Like, error) {
	if err := l.validateUserID(userID); err != nil {
		return nil, err
	}
	sctx, cancel := l.storeCtx(ctx)
	defer cancel()

	likes, err := l.likes.ListLikesByLiked(sctx, userID)
	if err != nil {
		return nil, storeErr("list received likes", err)
	}
	return likes, nil
}

func (l *Ledger) upsertLike(ctx context.Context, likerID, likedID string) (*models.Like, bool, error) {
	sctx, cancel := l.storeCtx(ctx)
	defer cancel()

	like := &models.Like{
		ID:        LikeID(likerID, likedID),
		LikerID:   likerID,
		LikedID:   likedID,
		CreatedAt: l.now().UTC(),
	}
	stored, created, err := l.likes.UpsertLike(sctx, like)
	if err != nil {
		return nil, false, storeErr("upsert like "+like.ID, err)
	}
	return stored, created, nil
}

func (l *Ledger) likeExists(ctx context.Context, likerID, likedID string) (bool, error) {
	sctx, cancel := l.storeCtx(ctx)
	defer cancel()

	id := LikeID(likerID, likedID)
	if _, err := l.likes.GetLike(sctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, nil
		}
		return false, storeErr("get like "+id, err)
	}
	return true, nil
}
