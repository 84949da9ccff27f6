package db

import (
	"context"

	"gorm.io/gorm"

	"github.com/pulsesocial/pulse/internal/apperr"
	"github.com/pulsesocial/pulse/internal/models"
)

// RelationRepository provides follow/block edge operations. Edges are
// authoritative single rows, so both directions of a relationship are
// always consistent; cascading mutations run in one transaction.
type RelationRepository struct {
	*Repository
}

// NewRelationRepository creates a new relation repository
func NewRelationRepository(repo *Repository) *RelationRepository {
	return &RelationRepository{Repository: repo}
}

// FollowingIDs returns the IDs of users the given user follows
func (r *RelationRepository) FollowingIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("followee_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// BlockSet returns the symmetric block set for a user: everyone the
// user has blocked plus everyone who has blocked the user.
func (r *RelationRepository) BlockSet(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	var blocked []int64
	if err := r.db.WithContext(ctx).Model(&models.Block{}).
		Where("blocker_id = ?", userID).
		Pluck("blocked_id", &blocked).Error; err != nil {
		return nil, err
	}

	var blockedBy []int64
	if err := r.db.WithContext(ctx).Model(&models.Block{}).
		Where("blocked_id = ?", userID).
		Pluck("blocker_id", &blockedBy).Error; err != nil {
		return nil, err
	}

	set := make(map[int64]struct{}, len(blocked)+len(blockedBy))
	for _, id := range blocked {
		set[id] = struct{}{}
	}
	for _, id := range blockedBy {
		set[id] = struct{}{}
	}
	return set, nil
}

// IsBlockedEither reports whether a block exists between two users in
// either direction
func (r *RelationRepository) IsBlockedEither(ctx context.Context, a, b int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsFollowing reports whether follower follows followee
func (r *RelationRepository) IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Follow creates a follow edge
func (r *RelationRepository) Follow(ctx context.Context, followerID, followeeID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Follow{}).
			Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflict("you are already following this user")
		}
		return tx.Create(&models.Follow{FollowerID: followerID, FolloweeID: followeeID}).Error
	})
}

// Unfollow removes a follow edge
func (r *RelationRepository) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Validation("you are not following this user")
	}
	return nil
}

// Block creates a block edge and removes any follow edge between the
// two users in either direction. All writes commit together, so a
// crash can never leave a blocked pair still following each other.
func (r *RelationRepository) Block(ctx context.Context, blockerID, blockedID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Block{}).
			Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflict("you have already blocked this user")
		}
		if err := tx.Create(&models.Block{BlockerID: blockerID, BlockedID: blockedID}).Error; err != nil {
			return err
		}
		return tx.
			Where("(follower_id = ? AND followee_id = ?) OR (follower_id = ? AND followee_id = ?)",
				blockerID, blockedID, blockedID, blockerID).
			Delete(&models.Follow{}).Error
	})
}

// Unblock removes a block edge
func (r *RelationRepository) Unblock(ctx context.Context, blockerID, blockedID int64) error {
	res := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.Block{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Validation("you have not blocked this user")
	}
	return nil
}

// ListFollowers retrieves users following the given user, newest edge first
func (r *RelationRepository) ListFollowers(ctx context.Context, userID int64, offset, limit int) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN pulse_follows ON pulse_follows.follower_id = pulse_users.id").
		Where("pulse_follows.followee_id = ?", userID).
		Order("pulse_follows.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// ListFollowing retrieves users the given user follows, newest edge first
func (r *RelationRepository) ListFollowing(ctx context.Context, userID int64, offset, limit int) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN pulse_follows ON pulse_follows.followee_id = pulse_users.id").
		Where("pulse_follows.follower_id = ?", userID).
		Order("pulse_follows.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// CountFollowers counts users following the given user
func (r *RelationRepository) CountFollowers(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("followee_id = ?", userID).Count(&count).Error
	return count, err
}

// CountFollowing counts users the given user follows
func (r *RelationRepository) CountFollowing(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}
