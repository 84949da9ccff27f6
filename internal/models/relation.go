package models

import (
	"time"
)

// Follow represents a directed follow edge. Each edge is stored once;
// follower and followee views are both queries over this table, so there
// is no mirrored pair to keep consistent.
type Follow struct {
	FollowerID int64     `gorm:"primaryKey;column:follower_id"`
	FolloweeID int64     `gorm:"primaryKey;index:pulse_follows_ix1;column:followee_id"`
	CreatedAt  time.Time `gorm:"not null;column:created_at"`

	// Relationships
	Follower *User `gorm:"foreignKey:FollowerID;references:ID"`
	Followee *User `gorm:"foreignKey:FolloweeID;references:ID"`
}

// TableName specifies the table name for Follow
func (Follow) TableName() string {
	return "pulse_follows"
}

// Block represents a directed block edge. Visibility checks treat the
// edge as symmetric: a block in either direction hides content from
// both sides.
type Block struct {
	BlockerID int64     `gorm:"primaryKey;column:blocker_id"`
	BlockedID int64     `gorm:"primaryKey;index:pulse_blocks_ix1;column:blocked_id"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`

	// Relationships
	Blocker *User `gorm:"foreignKey:BlockerID;references:ID"`
	Blocked *User `gorm:"foreignKey:BlockedID;references:ID"`
}

// TableName specifies the table name for Block
func (Block) TableName() string {
	return "pulse_blocks"
}
