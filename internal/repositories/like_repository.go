package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/matrimony/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	// UpsertLike writes the like at like.ID if absent and returns the stored record.
	// created is false when a like already existed; its CreatedAt is kept.
	UpsertLike(ctx context.Context, like *models.Like) (stored *models.Like, created bool, err error)
	GetLike(ctx context.Context, id string) (*models.Like, error)
	ListLikesByLiker(ctx context.Context, likerID string) ([]models.Like, error)
	ListLikesByLiked(ctx context.Context, likedID string) ([]models.Like, error)
	ListAllLikes(ctx context.Context) ([]models.Like, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// UpsertLike inserts the like unless a row with the same ID exists
func (r *PostgresLikeRepository) UpsertLike(ctx context.Context, like *models.Like) (*models.Like, bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(like)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		return like, true, nil
	}

	stored, err := r.GetLike(ctx, like.ID)
	if err != nil {
		return nil, false, err
	}
	return stored, false, nil
}

// GetLike retrieves a like by its derived ID
func (r *PostgresLikeRepository) GetLike(ctx context.Context, id string) (*models.Like, error) {
	var like models.Like
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&like).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &like, nil
}

// ListLikesByLiker retrieves the likes a user has given, newest first
func (r *PostgresLikeRepository) ListLikesByLiker(ctx context.Context, likerID string) ([]models.Like, error) {
	var likes []models.Like
	if err := r.db.WithContext(ctx).Where("liker_id = ?", likerID).Order("created_at DESC, id").Find(&likes).Error; err != nil {
		return nil, err
	}
	return likes, nil
}

// ListLikesByLiked retrieves the likes a user has received, newest first
func (r *PostgresLikeRepository) ListLikesByLiked(ctx context.Context, likedID string) ([]models.Like, error) {
	var likes []models.Like
	if err := r.db.WithContext(ctx).Where("liked_id = ?", likedID).Order("created_at DESC, id").Find(&likes).Error; err != nil {
		return nil, err
	}
	return likes, nil
}

// ListAllLikes retrieves every like, used by the reconciliation sweep
func (r *PostgresLikeRepository) ListAllLikes(ctx context.Context) ([]models.Like, error) {
	var likes []models.Like
	if err := r.db.WithContext(ctx).Order("id").Find(&likes).Error; err != nil {
		return nil, err
	}
	return likes, nil
}
