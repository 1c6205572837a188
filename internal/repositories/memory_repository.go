package repositories

import (
	"context"
	"sort"
	"sync"

	"github.com/anonto42/matrimony/backend/internal/models"
)

// MemoryStore keeps every entity in process memory. It backs the "memory"
// store driver for local development and the tests of the packages above.
type MemoryStore struct {
	mu            sync.RWMutex
	likes         map[string]models.Like
	matches       map[string]models.Match
	notifications map[string]models.Notification
	users         map[string]models.User
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		likes:         make(map[string]models.Like),
		matches:       make(map[string]models.Match),
		notifications: make(map[string]models.Notification),
		users:         make(map[string]models.User),
	}
}

// Likes returns the LikeRepository view of the store
func (s *MemoryStore) Likes() LikeRepository { return memoryLikes{s} }

// Matches returns the MatchRepository view of the store
func (s *MemoryStore) Matches() MatchRepository { return memoryMatches{s} }

// Notifications returns the NotificationRepository view of the store
func (s *MemoryStore) Notifications() NotificationRepository { return memoryNotifications{s} }

// Users returns the UserRepository view of the store
func (s *MemoryStore) Users() UserRepository { return memoryUsers{s} }

type memoryLikes struct{ s *MemoryStore }

func (r memoryLikes) UpsertLike(ctx context.Context, like *models.Like) (*models.Like, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if existing, ok := r.s.likes[like.ID]; ok {
		existing.LikerID = like.LikerID
		existing.LikedID = like.LikedID
		r.s.likes[like.ID] = existing
		return &existing, false, nil
	}
	stored := *like
	r.s.likes[like.ID] = stored
	return &stored, true, nil
}

func (r memoryLikes) GetLike(ctx context.Context, id string) (*models.Like, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	like, ok := r.s.likes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &like, nil
}

func (r memoryLikes) ListLikesByLiker(ctx context.Context, likerID string) ([]models.Like, error) {
	return r.filter(ctx, func(l models.Like) bool { return l.LikerID == likerID })
}

func (r memoryLikes) ListLikesByLiked(ctx context.Context, likedID string) ([]models.Like, error) {
	return r.filter(ctx, func(l models.Like) bool { return l.LikedID == likedID })
}

func (r memoryLikes) ListAllLikes(ctx context.Context) ([]models.Like, error) {
	return r.filter(ctx, func(models.Like) bool { return true })
}

func (r memoryLikes) filter(ctx context.Context, keep func(models.Like) bool) ([]models.Like, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	likes := []models.Like{}
	for _, l := range r.s.likes {
		if keep(l) {
			likes = append(likes, l)
		}
	}
	sort.Slice(likes, func(i, j int) bool {
		if likes[i].CreatedAt.Equal(likes[j].CreatedAt) {
			return likes[i].ID < likes[j].ID
		}
		return likes[i].CreatedAt.After(likes[j].CreatedAt)
	})
	return likes, nil
}

type memoryMatches struct{ s *MemoryStore }

func (r memoryMatches) CreateMatch(ctx context.Context, match *models.Match) (*models.Match, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if existing, ok := r.s.matches[match.ID]; ok {
		return &existing, false, nil
	}
	stored := *match
	r.s.matches[match.ID] = stored
	return &stored, true, nil
}

func (r memoryMatches) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	match, ok := r.s.matches[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &match, nil
}

func (r memoryMatches) DeleteMatch(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.matches, id)
	return nil
}

func (r memoryMatches) ListMatchesForUser(ctx context.Context, userID string) ([]models.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matches := []models.Match{}
	for _, m := range r.s.matches {
		if m.User1ID == userID || m.User2ID == userID {
			matches = append(matches, m)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

type memoryNotifications struct{ s *MemoryStore }

func (r memoryNotifications) CreateNotification(ctx context.Context, notification *models.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.notifications[notification.ID] = *notification
	return nil
}

func (r memoryNotifications) GetNotification(ctx context.Context, id string) (*models.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n, ok := r.s.notifications[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &n, nil
}

func (r memoryNotifications) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]models.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	notifications := []models.Notification{}
	for _, n := range r.s.notifications {
		if n.UserID == recipientID {
			notifications = append(notifications, n)
		}
	}
	sort.Slice(notifications, func(i, j int) bool {
		if notifications[i].CreatedAt.Equal(notifications[j].CreatedAt) {
			return notifications[i].ID < notifications[j].ID
		}
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	if limit > 0 && len(notifications) > limit {
		notifications = notifications[:limit]
	}
	return notifications, nil
}

func (r memoryNotifications) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var count int64
	for _, n := range r.s.notifications {
		if n.UserID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r memoryNotifications) MarkAsRead(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.notifications[id]
	if !ok {
		return ErrNotFound
	}
	n.Read = true
	r.s.notifications[id] = n
	return nil
}

func (r memoryNotifications) MarkAllAsRead(ctx context.Context, recipientID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, n := range r.s.notifications {
		if n.UserID == recipientID && !n.Read {
			n.Read = true
			r.s.notifications[id] = n
		}
	}
	return nil
}

type memoryUsers struct{ s *MemoryStore }

func (r memoryUsers) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r memoryUsers) UpsertUser(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.users[user.ID]
	if !ok {
		stored := *user
		if stored.Role == "" {
			stored.Role = models.RoleMember
		}
		r.s.users[user.ID] = stored
		return nil
	}
	existing.Name = user.Name
	existing.Email = user.Email
	existing.ProfileImage = user.ProfileImage
	existing.UpdatedAt = user.UpdatedAt
	r.s.users[user.ID] = existing
	return nil
}
