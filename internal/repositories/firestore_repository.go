package repositories

import (
	"context"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/anonto42/matrimony/backend/internal/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore collection names, shared with the existing client application
const (
	LikesCollection         = "likes"
	MatchesCollection       = "matches"
	NotificationsCollection = "notifications"
	UsersCollection         = "users"
)

func isFirestoreNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// FirestoreLikeRepository implements LikeRepository on Cloud Firestore
type FirestoreLikeRepository struct {
	client *firestore.Client
}

// NewFirestoreLikeRepository creates a new FirestoreLikeRepository
func NewFirestoreLikeRepository(client *firestore.Client) *FirestoreLikeRepository {
	return &FirestoreLikeRepository{client: client}
}

// UpsertLike creates the like document in a transaction, or merges the
// participant fields into the existing one without touching createdAt.
func (r *FirestoreLikeRepository) UpsertLike(ctx context.Context, like *models.Like) (*models.Like, bool, error) {
	ref := r.client.Collection(LikesCollection).Doc(like.ID)

	var stored models.Like
	var created bool
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		created = false
		snap, err := tx.Get(ref)
		if isFirestoreNotFound(err) {
			created = true
			stored = *like
			return tx.Create(ref, like)
		}
		if err != nil {
			return err
		}
		if err := snap.DataTo(&stored); err != nil {
			return err
		}
		stored.ID = ref.ID
		return tx.Set(ref, map[string]interface{}{
			"likerId": like.LikerID,
			"likedId": like.LikedID,
		}, firestore.MergeAll)
	})
	if err != nil {
		return nil, false, err
	}
	return &stored, created, nil
}

// GetLike retrieves a like document by ID
func (r *FirestoreLikeRepository) GetLike(ctx context.Context, id string) (*models.Like, error) {
	snap, err := r.client.Collection(LikesCollection).Doc(id).Get(ctx)
	if err != nil {
		if isFirestoreNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return likeFromSnapshot(snap)
}

// ListLikesByLiker queries likes by likerId, newest first
func (r *FirestoreLikeRepository) ListLikesByLiker(ctx context.Context, likerID string) ([]models.Like, error) {
	q := r.client.Collection(LikesCollection).Where("likerId", "==", likerID).OrderBy("createdAt", firestore.Desc).OrderBy(firestore.DocumentID, firestore.Asc)
	return r.queryLikes(ctx, q)
}

// ListLikesByLiked queries likes by likedId, newest first
func (r *FirestoreLikeRepository) ListLikesByLiked(ctx context.Context, likedID string) ([]models.Like, error) {
	q := r.client.Collection(LikesCollection).Where("likedId", "==", likedID).OrderBy("createdAt", firestore.Desc).OrderBy(firestore.DocumentID, firestore.Asc)
	return r.queryLikes(ctx, q)
}

// ListAllLikes reads the whole likes collection
func (r *FirestoreLikeRepository) ListAllLikes(ctx context.Context) ([]models.Like, error) {
	return r.queryLikes(ctx, r.client.Collection(LikesCollection).Query)
}

func (r *FirestoreLikeRepository) queryLikes(ctx context.Context, q firestore.Query) ([]models.Like, error) {
	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	likes := make([]models.Like, 0, len(snaps))
	for _, snap := range snaps {
		like, err := likeFromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		likes = append(likes, *like)
	}
	return likes, nil
}

func likeFromSnapshot(snap *firestore.DocumentSnapshot) (*models.Like, error) {
	var like models.Like
	if err := snap.DataTo(&like); err != nil {
		return nil, err
	}
	like.ID = snap.Ref.ID
	return &like, nil
}

// FirestoreMatchRepository implements MatchRepository on Cloud Firestore
type FirestoreMatchRepository struct {
	client *firestore.Client
}

// NewFirestoreMatchRepository creates a new FirestoreMatchRepository
func NewFirestoreMatchRepository(client *firestore.Client) *FirestoreMatchRepository {
	return &FirestoreMatchRepository{client: client}
}

// CreateMatch relies on Create failing with AlreadyExists for a second writer
func (r *FirestoreMatchRepository) CreateMatch(ctx context.Context, match *models.Match) (*models.Match, bool, error) {
	_, err := r.client.Collection(MatchesCollection).Doc(match.ID).Create(ctx, match)
	if err == nil {
		return match, true, nil
	}
	if status.Code(err) != codes.AlreadyExists {
		return nil, false, err
	}

	stored, err := r.GetMatch(ctx, match.ID)
	if err != nil {
		return nil, false, err
	}
	return stored, false, nil
}

// GetMatch retrieves a match document by ID
func (r *FirestoreMatchRepository) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	snap, err := r.client.Collection(MatchesCollection).Doc(id).Get(ctx)
	if err != nil {
		if isFirestoreNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return matchFromSnapshot(snap)
}

// DeleteMatch removes the match document; Firestore deletes of missing documents succeed
func (r *FirestoreMatchRepository) DeleteMatch(ctx context.Context, id string) error {
	_, err := r.client.Collection(MatchesCollection).Doc(id).Delete(ctx)
	return err
}

// ListMatchesForUser merges the user1Id and user2Id queries, newest first
func (r *FirestoreMatchRepository) ListMatchesForUser(ctx context.Context, userID string) ([]models.Match, error) {
	var matches []models.Match
	for _, field := range []string{"user1Id", "user2Id"} {
		snaps, err := r.client.Collection(MatchesCollection).Where(field, "==", userID).Documents(ctx).GetAll()
		if err != nil {
			return nil, err
		}
		for _, snap := range snaps {
			match, err := matchFromSnapshot(snap)
			if err != nil {
				return nil, err
			}
			matches = append(matches, *match)
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

func matchFromSnapshot(snap *firestore.DocumentSnapshot) (*models.Match, error) {
	var match models.Match
	if err := snap.DataTo(&match); err != nil {
		return nil, err
	}
	match.ID = snap.Ref.ID
	return &match, nil
}

// FirestoreNotificationRepository implements NotificationRepository on Cloud Firestore
type FirestoreNotificationRepository struct {
	client *firestore.Client
}

// NewFirestoreNotificationRepository creates a new FirestoreNotificationRepository
func NewFirestoreNotificationRepository(client *firestore.Client) *FirestoreNotificationRepository {
	return &FirestoreNotificationRepository{client: client}
}

func (r *FirestoreNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	_, err := r.client.Collection(NotificationsCollection).Doc(notification.ID).Create(ctx, notification)
	return err
}

func (r *FirestoreNotificationRepository) GetNotification(ctx context.Context, id string) (*models.Notification, error) {
	snap, err := r.client.Collection(NotificationsCollection).Doc(id).Get(ctx)
	if err != nil {
		if isFirestoreNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return notificationFromSnapshot(snap)
}

func (r *FirestoreNotificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]models.Notification, error) {
	q := r.client.Collection(NotificationsCollection).Where("userId", "==", recipientID).OrderBy("createdAt", firestore.Desc).OrderBy(firestore.DocumentID, firestore.Asc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	notifications := make([]models.Notification, 0, len(snaps))
	for _, snap := range snaps {
		n, err := notificationFromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, nil
}

func (r *FirestoreNotificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	snaps, err := r.unread(recipientID).Documents(ctx).GetAll()
	if err != nil {
		return 0, err
	}
	return int64(len(snaps)), nil
}

// MarkAsRead is a partial update of the read field; Update fails with NotFound on a missing document
func (r *FirestoreNotificationRepository) MarkAsRead(ctx context.Context, id string) error {
	_, err := r.client.Collection(NotificationsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "read", Value: true},
	})
	if isFirestoreNotFound(err) {
		return ErrNotFound
	}
	return err
}

func (r *FirestoreNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID string) error {
	snaps, err := r.unread(recipientID).Documents(ctx).GetAll()
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		return nil
	}

	bw := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(snaps))
	for _, snap := range snaps {
		job, err := bw.Update(snap.Ref, []firestore.Update{{Path: "read", Value: true}})
		if err != nil {
			bw.End()
			return err
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return err
		}
	}
	return nil
}

func (r *FirestoreNotificationRepository) unread(recipientID string) firestore.Query {
	return r.client.Collection(NotificationsCollection).Where("userId", "==", recipientID).Where("read", "==", false)
}

func notificationFromSnapshot(snap *firestore.DocumentSnapshot) (*models.Notification, error) {
	var n models.Notification
	if err := snap.DataTo(&n); err != nil {
		return nil, err
	}
	n.ID = snap.Ref.ID
	return &n, nil
}

// FirestoreUserRepository implements UserRepository on the users collection
type FirestoreUserRepository struct {
	client *firestore.Client
}

// NewFirestoreUserRepository creates a new FirestoreUserRepository
func NewFirestoreUserRepository(client *firestore.Client) *FirestoreUserRepository {
	return &FirestoreUserRepository{client: client}
}

func (r *FirestoreUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	snap, err := r.client.Collection(UsersCollection).Doc(id).Get(ctx)
	if err != nil {
		if isFirestoreNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var user models.User
	if err := snap.DataTo(&user); err != nil {
		return nil, err
	}
	user.ID = snap.Ref.ID
	return &user, nil
}

// UpsertUser merges the display fields so profile fields owned by other parts of the app survive
func (r *FirestoreUserRepository) UpsertUser(ctx context.Context, user *models.User) error {
	fields := map[string]interface{}{
		"name":         user.Name,
		"email":        user.Email,
		"profileImage": user.ProfileImage,
		"updatedAt":    user.UpdatedAt,
	}
	if !user.CreatedAt.IsZero() {
		fields["createdAt"] = user.CreatedAt
	}
	_, err := r.client.Collection(UsersCollection).Doc(user.ID).Set(ctx, fields, firestore.MergeAll)
	return err
}
