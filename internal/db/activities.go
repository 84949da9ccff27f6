package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pulsesocial/pulse/internal/models"
)

// ActivityRepository provides activity-related database operations.
// Activities are append-only: there is no update or delete path.
type ActivityRepository struct {
	*Repository
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(repo *Repository) *ActivityRepository {
	return &ActivityRepository{Repository: repo}
}

func (r *ActivityRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Actor").
		Preload("TargetPost").
		Preload("TargetPost.Author").
		Preload("TargetUser")
}

// Create appends an activity record
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

// GetByID retrieves an activity with its references resolved
func (r *ActivityRepository) GetByID(ctx context.Context, id int64) (*models.Activity, error) {
	var activity models.Activity
	if err := r.preloaded(ctx).First(&activity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &activity, nil
}

// ListByActors retrieves activities whose actor is in the given set,
// newest first
func (r *ActivityRepository) ListByActors(ctx context.Context, actorIDs []int64, offset, limit int) ([]*models.Activity, error) {
	if len(actorIDs) == 0 {
		return []*models.Activity{}, nil
	}
	var activities []*models.Activity
	err := r.preloaded(ctx).
		Where("actor_id IN ?", actorIDs).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// CountByActors counts activities whose actor is in the given set
func (r *ActivityRepository) CountByActors(ctx context.Context, actorIDs []int64) (int64, error) {
	if len(actorIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Activity{}).
		Where("actor_id IN ?", actorIDs).
		Count(&count).Error
	return count, err
}

// ListExcluding retrieves activities whose actor is NOT in the given
// set, newest first
func (r *ActivityRepository) ListExcluding(ctx context.Context, excludeActorIDs []int64, offset, limit int) ([]*models.Activity, error) {
	var activities []*models.Activity
	q := r.preloaded(ctx)
	if len(excludeActorIDs) > 0 {
		q = q.Where("actor_id NOT IN ?", excludeActorIDs)
	}
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// CountExcluding counts activities whose actor is NOT in the given set
func (r *ActivityRepository) CountExcluding(ctx context.Context, excludeActorIDs []int64) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Activity{})
	if len(excludeActorIDs) > 0 {
		q = q.Where("actor_id NOT IN ?", excludeActorIDs)
	}
	err := q.Count(&count).Error
	return count, err
}

// ListByActor retrieves a single actor's activities, newest first
func (r *ActivityRepository) ListByActor(ctx context.Context, actorID int64, offset, limit int) ([]*models.Activity, error) {
	var activities []*models.Activity
	err := r.preloaded(ctx).
		Where("actor_id = ?", actorID).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// CountByActor counts a single actor's activities
func (r *ActivityRepository) CountByActor(ctx context.Context, actorID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Activity{}).
		Where("actor_id = ?", actorID).
		Count(&count).Error
	return count, err
}
