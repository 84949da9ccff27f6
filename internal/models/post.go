package models

import (
	"database/sql"
	"time"
)

// Post represents a user post. The like count is never stored; it is
// recomputed from non-deleted Like rows at read time.
type Post struct {
	ID            int64          `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	AuthorID      int64          `gorm:"not null;index:pulse_posts_ix1,priority:1;column:author_id" json:"authorId"`
	Content       string         `gorm:"type:varchar(5000);not null;column:content" json:"content"`
	Image         sql.NullString `gorm:"type:varchar(1024);column:image" json:"image"`
	IsDeleted     bool           `gorm:"not null;default:false;index;column:is_deleted" json:"isDeleted"`
	DeletedByID   sql.NullInt64  `gorm:"column:deleted_by_id" json:"deletedById"`
	DeletedReason sql.NullString `gorm:"type:varchar(255);column:deleted_reason" json:"deletedReason"`
	CreatedAt     time.Time      `gorm:"not null;index:pulse_posts_ix1,priority:2,sort:desc;column:created_at" json:"createdAt"`
	UpdatedAt     time.Time      `gorm:"not null;column:updated_at" json:"updatedAt"`

	// Relationships
	Author *User `gorm:"foreignKey:AuthorID;references:ID" json:"author,omitempty"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "pulse_posts"
}

// Like represents a user liking a post. The pair (user, post) is unique;
// unliking soft-deletes the row and re-liking reactivates it.
type Like struct {
	ID            int64          `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	UserID        int64          `gorm:"not null;uniqueIndex:pulse_likes_ux1,priority:1;column:user_id" json:"userId"`
	PostID        int64          `gorm:"not null;uniqueIndex:pulse_likes_ux1,priority:2;index;column:post_id" json:"postId"`
	IsDeleted     bool           `gorm:"not null;default:false;column:is_deleted" json:"isDeleted"`
	DeletedByID   sql.NullInt64  `gorm:"column:deleted_by_id" json:"deletedById"`
	DeletedReason sql.NullString `gorm:"type:varchar(255);column:deleted_reason" json:"deletedReason"`
	CreatedAt     time.Time      `gorm:"not null;column:created_at" json:"createdAt"`
	UpdatedAt     time.Time      `gorm:"not null;column:updated_at" json:"updatedAt"`

	// Relationships
	User *User `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Post *Post `gorm:"foreignKey:PostID;references:ID" json:"-"`
}

// TableName specifies the table name for Like
func (Like) TableName() string {
	return "pulse_likes"
}
