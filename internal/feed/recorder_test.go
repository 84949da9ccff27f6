package feed

import (
	"context"
	"errors"
	"testing"

	"github.com/pulsesocial/pulse/internal/models"
)

type captureWriter struct {
	recorded []*models.Activity
	err      error
}

func (w *captureWriter) Create(_ context.Context, activity *models.Activity) error {
	if w.err != nil {
		return w.err
	}
	w.recorded = append(w.recorded, activity)
	return nil
}

func TestRecorder_BuildsActivities(t *testing.T) {
	actor := &models.User{ID: 1, Username: "alice"}
	target := &models.User{ID: 2, Username: "bob"}
	post := &models.Post{ID: 100, AuthorID: 2}

	tests := []struct {
		name       string
		record     func(r *Recorder)
		wantType   string
		wantDesc   string
		wantPostID int64
		wantUserID int64
	}{
		{
			name:       "post created",
			record:     func(r *Recorder) { r.PostCreated(context.Background(), actor, post) },
			wantType:   models.ActivityPostCreated,
			wantDesc:   "alice made a post",
			wantPostID: 100,
		},
		{
			name:       "post deleted",
			record:     func(r *Recorder) { r.PostDeleted(context.Background(), actor, post) },
			wantType:   models.ActivityPostDeleted,
			wantDesc:   "alice deleted a post",
			wantPostID: 100,
		},
		{
			name:       "post liked carries the author",
			record:     func(r *Recorder) { r.PostLiked(context.Background(), actor, post) },
			wantType:   models.ActivityPostLiked,
			wantDesc:   "alice liked a post",
			wantPostID: 100,
			wantUserID: 2,
		},
		{
			name:       "post unliked",
			record:     func(r *Recorder) { r.PostUnliked(context.Background(), actor, post) },
			wantType:   models.ActivityPostUnliked,
			wantDesc:   "alice unliked a post",
			wantPostID: 100,
		},
		{
			name:       "user followed",
			record:     func(r *Recorder) { r.UserFollowed(context.Background(), actor, target) },
			wantType:   models.ActivityUserFollowed,
			wantDesc:   "alice followed bob",
			wantUserID: 2,
		},
		{
			name:       "user unfollowed",
			record:     func(r *Recorder) { r.UserUnfollowed(context.Background(), actor, target) },
			wantType:   models.ActivityUserUnfollowed,
			wantDesc:   "alice unfollowed bob",
			wantUserID: 2,
		},
		{
			name:       "user blocked",
			record:     func(r *Recorder) { r.UserBlocked(context.Background(), actor, target) },
			wantType:   models.ActivityUserBlocked,
			wantDesc:   "alice blocked bob",
			wantUserID: 2,
		},
		{
			name:       "user unblocked",
			record:     func(r *Recorder) { r.UserUnblocked(context.Background(), actor, target) },
			wantType:   models.ActivityUserUnblocked,
			wantDesc:   "alice unblocked bob",
			wantUserID: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &captureWriter{}
			tt.record(NewRecorder(w))

			if len(w.recorded) != 1 {
				t.Fatalf("recorded %d activities, want 1", len(w.recorded))
			}
			a := w.recorded[0]
			if a.Type != tt.wantType {
				t.Errorf("type = %s, want %s", a.Type, tt.wantType)
			}
			if a.Description != tt.wantDesc {
				t.Errorf("description = %q, want %q", a.Description, tt.wantDesc)
			}
			if a.ActorID != actor.ID {
				t.Errorf("actor = %d, want %d", a.ActorID, actor.ID)
			}
			if tt.wantPostID != 0 {
				if !a.TargetPostID.Valid || a.TargetPostID.Int64 != tt.wantPostID {
					t.Errorf("target post = %+v, want %d", a.TargetPostID, tt.wantPostID)
				}
			} else if a.TargetPostID.Valid {
				t.Errorf("unexpected target post %d", a.TargetPostID.Int64)
			}
			if tt.wantUserID != 0 {
				if !a.TargetUserID.Valid || a.TargetUserID.Int64 != tt.wantUserID {
					t.Errorf("target user = %+v, want %d", a.TargetUserID, tt.wantUserID)
				}
			} else if a.TargetUserID.Valid {
				t.Errorf("unexpected target user %d", a.TargetUserID.Int64)
			}
		})
	}
}

func TestRecorder_UserDeletedMetadata(t *testing.T) {
	w := &captureWriter{}
	actor := &models.User{ID: 1, Username: "admin"}
	target := &models.User{ID: 2, Username: "spammer"}

	NewRecorder(w).UserDeleted(context.Background(), actor, target, "repeated spam")

	if len(w.recorded) != 1 {
		t.Fatalf("recorded %d activities, want 1", len(w.recorded))
	}
	a := w.recorded[0]
	if a.Type != models.ActivityUserDeleted {
		t.Errorf("type = %s, want %s", a.Type, models.ActivityUserDeleted)
	}
	if a.Description != "admin deleted user spammer" {
		t.Errorf("unexpected description %q", a.Description)
	}
	if got, _ := a.Metadata["reason"].(string); got != "repeated spam" {
		t.Errorf("metadata reason = %q, want %q", got, "repeated spam")
	}
}

func TestRecorder_SwallowsStoreFailure(t *testing.T) {
	w := &captureWriter{err: errors.New("insert failed")}
	actor := &models.User{ID: 1, Username: "alice"}

	// Must not panic and must not surface the error to the caller.
	NewRecorder(w).UserFollowed(context.Background(), actor, &models.User{ID: 2, Username: "bob"})

	if len(w.recorded) != 0 {
		t.Error("no activity should be recorded on store failure")
	}
}
