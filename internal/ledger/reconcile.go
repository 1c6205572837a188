package ledger

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const reconcileConcurrency = 8

// Reconcile scans all likes for reciprocal pairs and creates any missing
// match. It repairs the case where two racing RecordLike calls both read "no
// reciprocal like yet". Matches created here notify both users like any other.
// It returns the number of matches it created.
func (l *Ledger) Reconcile(ctx context.Context) (int, error) {
	sctx, cancel := l.storeCtx(ctx)
	likes, err := l.likes.ListAllLikes(sctx)
	cancel()
	if err != nil {
		return 0, storeErr("list all likes", err)
	}

	seen := make(map[string]struct{}, len(likes))
	for _, like := range likes {
		seen[LikeID(like.LikerID, like.LikedID)] = struct{}{}
	}

	var created atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reconcileConcurrency)

	for _, like := range likes {
		a, b := like.LikerID, like.LikedID
		// Visit each reciprocal pair once, from its lexicographically first side.
		if a >= b {
			continue
		}
		if _, ok := seen[LikeID(b, a)]; !ok {
			continue
		}
		if err := l.validatePair(a, b); err != nil {
			l.logger.Warn("skipping malformed like", zap.String("liker_id", a), zap.String("liked_id", b))
			continue
		}

		g.Go(func() error {
			_, ok, err := l.recordMatch(gctx, a, b)
			if err != nil {
				return err
			}
			if ok {
				created.Add(1)
				l.logger.Info("reconciliation created missing match", zap.String("match_id", MatchID(a, b)))
			}
			return nil
		})
	}

	err = g.Wait()
	return int(created.Load()), err
}

// RunReconciler runs Reconcile every interval until ctx is cancelled
func (l *Ledger) RunReconciler(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := l.Reconcile(ctx)
			if err != nil {
				l.logger.Error("reconciliation sweep failed", zap.Error(err))
				continue
			}
			l.logger.Debug("reconciliation sweep finished", zap.Int("created", n))
		}
	}
}
