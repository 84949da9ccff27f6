package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/pulsesocial/pulse/internal/models"
)

// PostRepository provides post-related database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// GetByID retrieves a post by ID with its author
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Author").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Create creates a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// Update updates a post
func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

// SoftDelete marks a post deleted and soft-deletes its likes in one
// transaction. The rows are kept for moderation; reads filter on the
// flag.
func (r *PostRepository) SoftDelete(ctx context.Context, postID, deletedByID int64, reason string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).
			Where("id = ?", postID).
			Updates(map[string]interface{}{
				"is_deleted":     true,
				"deleted_by_id":  deletedByID,
				"deleted_reason": reason,
				"updated_at":     time.Now().UTC(),
			}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Like{}).
			Where("post_id = ? AND is_deleted = false", postID).
			Updates(map[string]interface{}{
				"is_deleted":    true,
				"deleted_by_id": deletedByID,
				"updated_at":    time.Now().UTC(),
			}).Error
	})
}

// List retrieves non-deleted posts excluding the given authors, newest
// first
func (r *PostRepository) List(ctx context.Context, excludeAuthors []int64, offset, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	q := r.db.WithContext(ctx).Preload("Author").
		Where("is_deleted = false")
	if len(excludeAuthors) > 0 {
		q = q.Where("author_id NOT IN ?", excludeAuthors)
	}
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Count counts non-deleted posts excluding the given authors
func (r *PostRepository) Count(ctx context.Context, excludeAuthors []int64) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Post{}).Where("is_deleted = false")
	if len(excludeAuthors) > 0 {
		q = q.Where("author_id NOT IN ?", excludeAuthors)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListByAuthor retrieves a user's non-deleted posts, newest first
func (r *PostRepository) ListByAuthor(ctx context.Context, authorID int64, offset, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).Preload("Author").
		Where("author_id = ? AND is_deleted = false", authorID).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// CountByAuthor counts a user's non-deleted posts
func (r *PostRepository) CountByAuthor(ctx context.Context, authorID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("author_id = ? AND is_deleted = false", authorID).
		Count(&count).Error
	return count, err
}

// ListAll retrieves posts for moderation, optionally filtered by the
// deleted flag
func (r *PostRepository) ListAll(ctx context.Context, isDeleted sql.NullBool, offset, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	q := r.db.WithContext(ctx).Preload("Author")
	if isDeleted.Valid {
		q = q.Where("is_deleted = ?", isDeleted.Bool)
	}
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// CountAll counts posts for moderation, optionally filtered by the
// deleted flag
func (r *PostRepository) CountAll(ctx context.Context, isDeleted sql.NullBool) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Post{})
	if isDeleted.Valid {
		q = q.Where("is_deleted = ?", isDeleted.Bool)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
