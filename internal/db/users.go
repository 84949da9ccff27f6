package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/pulsesocial/pulse/internal/models"
)

// UserRepository provides user-related database operations
type UserRepository struct {
	*Repository
}

// NewUserRepository creates a new user repository
func NewUserRepository(repo *Repository) *UserRepository {
	return &UserRepository{Repository: repo}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Update updates a user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// UserFilter narrows admin user listings
type UserFilter struct {
	Role     string
	IsActive *bool
}

func (f UserFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	return q
}

// List retrieves users matching the filter, newest first
func (r *UserRepository) List(ctx context.Context, filter UserFilter, offset, limit int) ([]*models.User, error) {
	var users []*models.User
	q := filter.apply(r.db.WithContext(ctx).Model(&models.User{}))
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Count counts users matching the filter
func (r *UserRepository) Count(ctx context.Context, filter UserFilter) (int64, error) {
	var count int64
	q := filter.apply(r.db.WithContext(ctx).Model(&models.User{}))
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Deactivate marks a user inactive and soft-deletes all their posts in
// one transaction. Used by admin user deletion; the user row itself is
// never physically removed.
func (r *UserRepository) Deactivate(ctx context.Context, userID, deletedByID int64, reason string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).
			Where("author_id = ? AND is_deleted = false", userID).
			Updates(map[string]interface{}{
				"is_deleted":     true,
				"deleted_by_id":  deletedByID,
				"deleted_reason": reason,
				"updated_at":     time.Now().UTC(),
			}).Error
	})
}

// CreateRefreshToken persists a refresh token
func (r *UserRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// GetRefreshToken retrieves a refresh token by its hash
func (r *UserRepository) GetRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

// DeleteRefreshToken removes a refresh token by its hash
func (r *UserRepository) DeleteRefreshToken(ctx context.Context, tokenHash string) error {
	return r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).Delete(&models.RefreshToken{}).Error
}

// DeleteRefreshTokensForUser removes all refresh tokens for a user
func (r *UserRepository) DeleteRefreshTokensForUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error
}
