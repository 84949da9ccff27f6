package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/pulsesocial/pulse/internal/apperr"
	"github.com/pulsesocial/pulse/internal/models"
)

// LikeRepository provides like-related database operations
type LikeRepository struct {
	*Repository
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(repo *Repository) *LikeRepository {
	return &LikeRepository{Repository: repo}
}

// GetByID retrieves a like by ID
func (r *LikeRepository) GetByID(ctx context.Context, id int64) (*models.Like, error) {
	var like models.Like
	if err := r.db.WithContext(ctx).First(&like, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &like, nil
}

// Like records a like for (userID, postID). An active like conflicts;
// a soft-deleted one from a previous unlike is reactivated instead of
// inserting a second row, keeping the (user, post) unique index strict.
func (r *LikeRepository) Like(ctx context.Context, userID, postID int64) (*models.Like, error) {
	var out *models.Like
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Like
		err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error
		switch {
		case err == nil && !existing.IsDeleted:
			return apperr.Conflict("you have already liked this post")
		case err == nil:
			// Reactivate the soft-deleted row
			existing.IsDeleted = false
			existing.DeletedByID = sql.NullInt64{}
			existing.DeletedReason = sql.NullString{}
			existing.UpdatedAt = time.Now().UTC()
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			out = &existing
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			like := models.Like{UserID: userID, PostID: postID}
			if err := tx.Create(&like).Error; err != nil {
				return err
			}
			out = &like
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Unlike soft-deletes the active like for (userID, postID)
func (r *LikeRepository) Unlike(ctx context.Context, userID, postID int64) error {
	res := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id = ? AND is_deleted = false", userID, postID).
		Updates(map[string]interface{}{
			"is_deleted":    true,
			"deleted_by_id": userID,
			"updated_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("like")
	}
	return nil
}

// SoftDelete marks a like deleted on behalf of a moderator or its owner
func (r *LikeRepository) SoftDelete(ctx context.Context, likeID, deletedByID int64, reason string) error {
	return r.db.WithContext(ctx).Model(&models.Like{}).
		Where("id = ?", likeID).
		Updates(map[string]interface{}{
			"is_deleted":     true,
			"deleted_by_id":  deletedByID,
			"deleted_reason": reason,
			"updated_at":     time.Now().UTC(),
		}).Error
}

// HasLiked reports whether the user has an active like on the post
func (r *LikeRepository) HasLiked(ctx context.Context, userID, postID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id = ? AND is_deleted = false", userID, postID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountForPost counts active likes on a post
func (r *LikeRepository) CountForPost(ctx context.Context, postID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("post_id = ? AND is_deleted = false", postID).
		Count(&count).Error
	return count, err
}

// ListForPost retrieves active likes on a post with their users, newest
// first
func (r *LikeRepository) ListForPost(ctx context.Context, postID int64, offset, limit int) ([]*models.Like, error) {
	var likes []*models.Like
	err := r.db.WithContext(ctx).Preload("User").
		Where("post_id = ? AND is_deleted = false", postID).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&likes).Error
	if err != nil {
		return nil, err
	}
	return likes, nil
}
