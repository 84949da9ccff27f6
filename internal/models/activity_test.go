package models

import (
	"database/sql"
	"testing"
)

func TestActivity_TargetKind(t *testing.T) {
	tests := []struct {
		name     string
		actType  string
		expected TargetKind
	}{
		{"post created", ActivityPostCreated, TargetPost},
		{"post deleted", ActivityPostDeleted, TargetPost},
		{"post liked", ActivityPostLiked, TargetPost},
		{"post unliked", ActivityPostUnliked, TargetPost},
		{"user followed", ActivityUserFollowed, TargetUser},
		{"user unfollowed", ActivityUserUnfollowed, TargetUser},
		{"user blocked", ActivityUserBlocked, TargetUser},
		{"user unblocked", ActivityUserUnblocked, TargetUser},
		{"user deleted", ActivityUserDeleted, TargetUser},
		{"unknown type", "bogus", TargetNone},
		{"empty type", "", TargetNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Activity{Type: tt.actType}
			if got := a.TargetKind(); got != tt.expected {
				t.Errorf("TargetKind() for %q = %v, want %v", tt.actType, got, tt.expected)
			}
		})
	}
}

func TestActivity_TargetKindIgnoresColumns(t *testing.T) {
	// A like activity carries both a post target and a secondary user
	// reference, but its target kind must still resolve to the post.
	a := &Activity{
		Type:         ActivityPostLiked,
		TargetPostID: sql.NullInt64{Int64: 10, Valid: true},
		TargetUserID: sql.NullInt64{Int64: 20, Valid: true},
	}
	if got := a.TargetKind(); got != TargetPost {
		t.Errorf("TargetKind() = %v, want TargetPost", got)
	}
}

func TestUser_IsStaff(t *testing.T) {
	tests := []struct {
		role     string
		expected bool
	}{
		{RoleUser, false},
		{RoleAdmin, true},
		{RoleOwner, true},
		{"", false},
	}

	for _, tt := range tests {
		t.Run("role "+tt.role, func(t *testing.T) {
			u := &User{Role: tt.role}
			if got := u.IsStaff(); got != tt.expected {
				t.Errorf("IsStaff() for role %q = %v, want %v", tt.role, got, tt.expected)
			}
		})
	}
}
