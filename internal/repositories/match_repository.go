package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/matrimony/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MatchRepository defines the interface for match data operations
type MatchRepository interface {
	// CreateMatch stores the match if no match with the same ID exists.
	// created reports whether this call wrote it.
	CreateMatch(ctx context.Context, match *models.Match) (stored *models.Match, created bool, err error)
	GetMatch(ctx context.Context, id string) (*models.Match, error)
	// DeleteMatch removes the match; deleting a missing match is not an error.
	DeleteMatch(ctx context.Context, id string) error
	ListMatchesForUser(ctx context.Context, userID string) ([]models.Match, error)
}

// PostgresMatchRepository implements MatchRepository for PostgreSQL
type PostgresMatchRepository struct {
	db *gorm.DB
}

// NewPostgresMatchRepository creates a new PostgresMatchRepository
func NewPostgresMatchRepository(db *gorm.DB) *PostgresMatchRepository {
	return &PostgresMatchRepository{db: db}
}

// CreateMatch inserts the match with ON CONFLICT DO NOTHING
func (r *PostgresMatchRepository) CreateMatch(ctx context.Context, match *models.Match) (*models.Match, bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(match)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		return match, true, nil
	}

	stored, err := r.GetMatch(ctx, match.ID)
	if err != nil {
		return nil, false, err
	}
	return stored, false, nil
}

// GetMatch retrieves a match by its derived ID
func (r *PostgresMatchRepository) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	var match models.Match
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&match).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &match, nil
}

// DeleteMatch removes a match by its derived ID
func (r *PostgresMatchRepository) DeleteMatch(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Match{}).Error
}

// ListMatchesForUser retrieves the matches a user takes part in, newest first
func (r *PostgresMatchRepository) ListMatchesForUser(ctx context.Context, userID string) ([]models.Match, error) {
	var matches []models.Match
	if err := r.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("created_at DESC, id").
		Find(&matches).Error; err != nil {
		return nil, err
	}
	return matches, nil
}
