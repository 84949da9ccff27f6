package models

import (
	"database/sql"
	"time"
)

// User represents a registered account
type User struct {
	ID           int64          `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Username     string         `gorm:"type:varchar(50);not null;uniqueIndex:pulse_users_ux1;column:username" json:"username"`
	Email        string         `gorm:"type:varchar(255);not null;uniqueIndex:pulse_users_ux2;column:email" json:"email"`
	PasswordHash string         `gorm:"type:varchar(255);not null;column:password_hash" json:"-"`
	FirstName    sql.NullString `gorm:"type:varchar(100);column:first_name" json:"firstName"`
	LastName     sql.NullString `gorm:"type:varchar(100);column:last_name" json:"lastName"`
	Bio          sql.NullString `gorm:"type:varchar(500);column:bio" json:"bio"`
	ProfileImage string         `gorm:"type:varchar(1024);not null;default:'';column:profile_image" json:"profileImage"`
	Role         string         `gorm:"type:varchar(8);not null;default:'user';column:role" json:"role"`
	IsActive     bool           `gorm:"not null;default:true;column:is_active" json:"isActive"`
	LastLogin    sql.NullTime   `gorm:"column:last_login" json:"lastLogin"`
	CreatedAt    time.Time      `gorm:"not null;column:created_at" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"not null;column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "pulse_users"
}

// Role constants
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
	RoleOwner = "owner"
)

// IsStaff reports whether the user holds a moderation role
func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleOwner
}

// RefreshToken represents a persisted refresh token
type RefreshToken struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id"`
	UserID    int64     `gorm:"not null;index;column:user_id"`
	TokenHash string    `gorm:"type:varchar(64);not null;uniqueIndex;column:token_hash"`
	ExpiresAt time.Time `gorm:"not null;column:expires_at"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for RefreshToken
func (RefreshToken) TableName() string {
	return "pulse_refresh_tokens"
}
