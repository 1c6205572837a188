// Package ledger records likes, materializes matches when interest is mutual
// and fans out the notifications both events produce.
//
// Every write is keyed by a deterministic identifier so that retried or
// concurrent calls converge on the same records. The ledger keeps no state
// between calls; the repositories are the only shared resource.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/matrimony/backend/internal/models"
	"github.com/anonto42/matrimony/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var (
	// ErrInvalidOperation is returned for self-likes and malformed identifiers.
	// It is raised before any store call.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrStoreUnavailable wraps every failure of the underlying store, timeouts included.
	// All writes are idempotent, so callers may retry.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrNotFound is returned when a notification does not exist for the caller.
	ErrNotFound = errors.New("not found")
)

const (
	DefaultPlaceholderName = "Someone"
	DefaultStoreTimeout    = 10 * time.Second
)

// ProfileDirectory resolves display data for notification payloads
type ProfileDirectory interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Publisher is told about every notification after it has been stored
type Publisher interface {
	Publish(userID string, notification models.Notification)
}

// Ledger is the engagement ledger
type Ledger struct {
	likes         repositories.LikeRepository
	matches       repositories.MatchRepository
	notifications repositories.NotificationRepository
	profiles      ProfileDirectory
	publisher     Publisher
	logger        *zap.Logger
	storeTimeout  time.Duration
	placeholder   string
	now           func() time.Time
	newID         func() string
}

// Option configures a Ledger
type Option func(*Ledger)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// WithPublisher sets the realtime publisher for stored notifications
func WithPublisher(p Publisher) Option {
	return func(l *Ledger) { l.publisher = p }
}

// WithStoreTimeout bounds every individual store call. Zero disables the bound.
func WithStoreTimeout(d time.Duration) Option {
	return func(l *Ledger) { l.storeTimeout = d }
}

// WithPlaceholderName sets the name used when the directory has no profile
func WithPlaceholderName(name string) Option {
	return func(l *Ledger) {
		if name != "" {
			l.placeholder = name
		}
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New creates a Ledger over the given repositories
func New(
	likes repositories.LikeRepository,
	matches repositories.MatchRepository,
	notifications repositories.NotificationRepository,
	profiles ProfileDirectory,
	opts ...Option,
) *Ledger {
	l := &Ledger{
		likes:         likes,
		matches:       matches,
		notifications: notifications,
		profiles:      profiles,
		logger:        zap.NewNop(),
		storeTimeout:  DefaultStoreTimeout,
		placeholder:   DefaultPlaceholderName,
		now:           time.Now,
		newID:         newNotificationID,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// storeCtx derives the context for a single store call
func (l *Ledger) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if l.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, l.storeTimeout)
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

// userIDRule excludes the key separator so that "a-b"+"c" and "a"+"b-c" never collide
const userIDRule = "required,max=128,excludesall=-/"

var idValidator = validator.New()

// ValidUserID reports whether id can key ledger records. Callers that accept
// identities from outside, such as the auth middlewares, check it up front.
func ValidUserID(id string) bool {
	return idValidator.Var(id, userIDRule) == nil
}

// validateUserID rejects ids that cannot be used to derive record keys
func (l *Ledger) validateUserID(id string) error {
	if !ValidUserID(id) {
		return fmt.Errorf("%w: malformed user id %q", ErrInvalidOperation, id)
	}
	return nil
}

func (l *Ledger) validatePair(a, b string) error {
	if err := l.validateUserID(a); err != nil {
		return err
	}
	if err := l.validateUserID(b); err != nil {
		return err
	}
	if a == b {
		return fmt.Errorf("%w: user %q cannot like themselves", ErrInvalidOperation, a)
	}
	return nil
}
