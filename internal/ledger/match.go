package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/matrimony/backend/internal/models"
	"github.com/anonto42/matrimony/backend/internal/repositories"
	"go.uber.org/zap"
)

// RecordMatch creates the match between user1ID and user2ID unless it exists.
// Match notifications go out only when this call created the record, so
// redundant calls from racing likes never notify twice.
//
// RecordMatch does not check that the grounding likes exist; RecordLike and
// Reconcile only call it once both have been read.
func (l *Ledger) RecordMatch(ctx context.Context, user1ID, user2ID string) (*models.Match, bool, error) {
	if err := l.validatePair(user1ID, user2ID); err != nil {
		return nil, false, err
	}
	return l.recordMatch(ctx, user1ID, user2ID)
}

func (l *Ledger) recordMatch(ctx context.Context, a, b string) (*models.Match, bool, error) {
	first, second := MatchPair(a, b)
	match := &models.Match{
		ID:        MatchID(a, b),
		User1ID:   first,
		User2ID:   second,
		CreatedAt: l.now().UTC(),
	}

	sctx, cancel := l.storeCtx(ctx)
	stored, created, err := l.matches.CreateMatch(sctx, match)
	cancel()
	if err != nil {
		return nil, false, storeErr("create match "+match.ID, err)
	}
	if !created {
		l.logger.Debug("match already exists", zap.String("match_id", match.ID))
		return stored, false, nil
	}

	firstProfile := l.display(ctx, first)
	secondProfile := l.display(ctx, second)

	if err := l.emit(ctx, first, models.NotificationTypeMatch, models.NotificationData{
		MatchedUserID:           second,
		MatchedUserName:         secondProfile.Name,
		MatchedUserProfileImage: secondProfile.ProfileImage,
	}); err != nil {
		l.unwindMatch(ctx, match.ID, first, err)
		return nil, false, err
	}
	if err := l.emit(ctx, second, models.NotificationTypeMatch, models.NotificationData{
		MatchedUserID:           first,
		MatchedUserName:         firstProfile.Name,
		MatchedUserProfileImage: firstProfile.ProfileImage,
	}); err != nil {
		l.unwindMatch(ctx, match.ID, second, err)
		return nil, false, err
	}

	l.logger.Info("match created", zap.String("match_id", match.ID))
	return stored, true, nil
}

// unwindMatch removes a match whose notifications could not all be stored, so
// that a retried like or the next reconciliation sweep creates it again and
// notifies both users. A participant notified before the failure may be
// notified twice.
func (l *Ledger) unwindMatch(ctx context.Context, matchID, recipientID string, cause error) {
	sctx, cancel := l.storeCtx(context.WithoutCancel(ctx))
	defer cancel()

	if err := l.matches.DeleteMatch(sctx, matchID); err != nil {
		l.logger.Error("match created but notifications not delivered",
			zap.String("match_id", matchID),
			zap.String("recipient", recipientID),
			zap.NamedError("cause", cause),
			zap.Error(err))
		return
	}
	l.logger.Warn("match rolled back after notification failure",
		zap.String("match_id", matchID),
		zap.String("recipient", recipientID),
		zap.Error(cause))
}

// GetMatch returns the match between a and b
func (l *Ledger) GetMatch(ctx context.Context, a, b string) (*models.Match, error) {
	if err := l.validatePair(a, b); err != nil {
		return nil, err
	}
	sctx, cancel := l.storeCtx(ctx)
	defer cancel()

	id := MatchID(a, b)
	match, err := l.matches.GetMatch(sctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("match %s: %w", id, ErrNotFound)
		}
		return nil, storeErr("get match "+id, err)
	}
	return match, nil
}

// ListMatches returns the matches userID takes part in, newest first
func (l *Ledger) ListMatches(ctx context.Context, userID string) ([]models.Match, error) {
	if err := l.validateUserID(userID); err != nil {
		return nil, err
	}
	sctx, cancel := l.storeCtx(ctx)
	defer cancel()

	matches, err := l.matches.ListMatchesForUser(sctx, userID)
	if err != nil {
		return nil, storeErr("list matches", err)
	}
	return matches, nil
}
