package db

import (
	"context"

	"github.com/pulsesocial/pulse/internal/models"
)

// SystemStats aggregates moderation-facing counters
type SystemStats struct {
	TotalUsers      int64 `json:"totalUsers"`
	ActiveUsers     int64 `json:"activeUsers"`
	InactiveUsers   int64 `json:"inactiveUsers"`
	TotalPosts      int64 `json:"totalPosts"`
	DeletedPosts    int64 `json:"deletedPosts"`
	TotalLikes      int64 `json:"totalLikes"`
	TotalActivities int64 `json:"totalActivities"`
	AdminCount      int64 `json:"adminCount"`
	OwnerCount      int64 `json:"ownerCount"`
	RegularUsers    int64 `json:"regularUsersCount"`
}

// Stats computes system-wide counters for the admin dashboard
func (r *Repository) Stats(ctx context.Context) (*SystemStats, error) {
	s := &SystemStats{}

	counts := []struct {
		dest  *int64
		model interface{}
		query string
		args  []interface{}
	}{
		{&s.TotalUsers, &models.User{}, "", nil},
		{&s.ActiveUsers, &models.User{}, "is_active = ?", []interface{}{true}},
		{&s.TotalPosts, &models.Post{}, "is_deleted = ?", []interface{}{false}},
		{&s.DeletedPosts, &models.Post{}, "is_deleted = ?", []interface{}{true}},
		{&s.TotalLikes, &models.Like{}, "is_deleted = ?", []interface{}{false}},
		{&s.TotalActivities, &models.Activity{}, "", nil},
		{&s.AdminCount, &models.User{}, "role = ?", []interface{}{models.RoleAdmin}},
		{&s.OwnerCount, &models.User{}, "role = ?", []interface{}{models.RoleOwner}},
	}

	for _, c := range counts {
		q := r.db.WithContext(ctx).Model(c.model)
		if c.query != "" {
			q = q.Where(c.query, c.args...)
		}
		if err := q.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	s.InactiveUsers = s.TotalUsers - s.ActiveUsers
	s.RegularUsers = s.TotalUsers - s.AdminCount - s.OwnerCount
	return s, nil
}
