package models

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
)

// Activity represents an append-only record of a social action.
// Activities are created after the triggering mutation commits and are
// never updated or deleted; visibility is filtered at read time.
type Activity struct {
	ID           int64             `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	ActorID      int64             `gorm:"not null;index:pulse_activities_ix1,priority:1;column:actor_id" json:"actorId"`
	Type         string            `gorm:"type:varchar(16);not null;index;column:type" json:"type"`
	TargetPostID sql.NullInt64     `gorm:"column:target_post_id" json:"targetPostId"`
	TargetUserID sql.NullInt64     `gorm:"column:target_user_id" json:"targetUserId"`
	Description  string            `gorm:"type:varchar(255);not null;default:'';column:description" json:"description"`
	Metadata     datatypes.JSONMap `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;index:pulse_activities_ix1,priority:2,sort:desc;index;column:created_at" json:"createdAt"`

	// Relationships
	Actor      *User `gorm:"foreignKey:ActorID;references:ID" json:"actor,omitempty"`
	TargetPost *Post `gorm:"foreignKey:TargetPostID;references:ID" json:"targetPost,omitempty"`
	TargetUser *User `gorm:"foreignKey:TargetUserID;references:ID" json:"targetUser,omitempty"`
}

// TableName specifies the table name for Activity
func (Activity) TableName() string {
	return "pulse_activities"
}

// Activity type constants
const (
	ActivityPostCreated    = "post_created"
	ActivityPostDeleted    = "post_deleted"
	ActivityUserFollowed   = "user_followed"
	ActivityUserUnfollowed = "user_unfollowed"
	ActivityPostLiked      = "post_liked"
	ActivityPostUnliked    = "post_unliked"
	ActivityUserBlocked    = "user_blocked"
	ActivityUserUnblocked  = "user_unblocked"
	ActivityUserDeleted    = "user_deleted"
)

// TargetKind identifies which entity an activity's target refers to
type TargetKind int

// Target kinds
const (
	TargetNone TargetKind = iota
	TargetPost
	TargetUser
)

// TargetKind resolves the referential type of the activity's target.
// The kind is determined solely by the activity type, never by which
// reference columns happen to be set.
func (a *Activity) TargetKind() TargetKind {
	switch a.Type {
	case ActivityPostCreated, ActivityPostDeleted, ActivityPostLiked, ActivityPostUnliked:
		return TargetPost
	case ActivityUserFollowed, ActivityUserUnfollowed, ActivityUserBlocked, ActivityUserUnblocked, ActivityUserDeleted:
		return TargetUser
	default:
		return TargetNone
	}
}
