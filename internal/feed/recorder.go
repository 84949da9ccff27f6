package feed

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/pulsesocial/pulse/internal/models"
	"github.com/pulsesocial/pulse/pkg/logging"
)

// ActivityWriter appends activity records
type ActivityWriter interface {
	Create(ctx context.Context, activity *models.Activity) error
}

// Recorder appends immutable activity records after mutations commit.
// Recording is best-effort: a failed insert is logged and swallowed so
// the triggering mutation's success is never rolled back into a
// request failure.
type Recorder struct {
	store  ActivityWriter
	logger *zap.Logger
}

// NewRecorder creates a new activity recorder
func NewRecorder(store ActivityWriter) *Recorder {
	return &Recorder{
		store:  store,
		logger: logging.WithComponent("activity-recorder"),
	}
}

func (r *Recorder) record(ctx context.Context, activity *models.Activity) {
	if err := r.store.Create(ctx, activity); err != nil {
		r.logger.Error("Failed to record activity",
			zap.String("type", activity.Type),
			zap.Int64("actor_id", activity.ActorID),
			zap.Error(err))
	}
}

func postRef(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: true}
}

// PostCreated records a post creation
func (r *Recorder) PostCreated(ctx context.Context, actor *models.User, post *models.Post) {
	r.record(ctx, &models.Activity{
		ActorID:      actor.ID,
		Type:         models.ActivityPostCreated,
		TargetPostID: postRef(post.ID),
		Description:  fmt.Sprintf("%s made a post", actor.Username),
	})
}

// PostDeleted records a post deletion
func (r *Recorder) PostDeleted(ctx context.Context, actor *models.User, post *models.Post) {
	r.record(ctx, &models.Activity{
		ActorID:      actor.ID,
		Type:         models.ActivityPostDeleted,
		TargetPostID: postRef(post.ID),
		Description:  fmt.Sprintf("%s deleted a post", actor.Username),
	})
}

// PostLiked records a like. The post's author rides along as the
// secondary user reference.
func (r *Recorder) PostLiked(ctx context.Context, actor *models.User, post *models.Post) {
	r.record(ctx, &models.Activity{
		ActorID:      actor.ID,
		Type:         models.ActivityPostLiked,
		TargetPostID: postRef(post.ID),
		TargetUserID: sql.NullInt64{Int64: post.AuthorID, Valid: true},
		Description:  fmt.Sprintf("%s liked a post", actor.Username),
	})
}

// PostUnliked records an unlike
func (r *Recorder) PostUnliked(ctx context.Context, actor *models.User, post *models.Post) {
	r.record(ctx, &models.Activity{
		ActorID:      actor.ID,
		Type:         models.ActivityPostUnliked,
		TargetPostID: postRef(post.ID),
		Description:  fmt.Sprintf("%s unliked a post", actor.Username),
	})
}

// UserFollowed records a follow
func (r *Recorder) UserFollowed(ctx context.Context, actor, target *models.User) {
	r.record(ctx, &models.Activity{
		ActorID:      actor.ID,
		Type:         models.ActivityUserFollowed,
		TargetUserID: sql.NullInt64{Int64: target.ID, Valid: true},
		Description:  fmt.Sprintf("%s followed %s", actor.Username, target.Username),
	})
}

// UserUnfollowed records an unfollow
func (r *Recorder) UserUnfollowed(ctx context.Context, actor, target *models.User) {
	r.record(ctx, &models.Activity{
		ActorID:      actor.ID,
		Type:         models.ActivityUserUnfollowed,
		TargetUserID: sql.NullInt64{Int64: target.ID, Valid: true},
		Description:  fmt.Sprintf("%s unfollowed %s", actor.Username, target.Username),
	})
}

// UserBlocked records a block
func (r *Recorder) UserBlocked(ctx context.Context, actor, target *models.User) {
	r.record(ctx, &models.Activity{
		ActorID:      actor.ID,
		Type:         models.ActivityUserBlocked,
		TargetUserID: sql.NullInt64{Int64: target.ID, Valid: true},
		Description:  fmt.Sprintf("%s blocked %s", actor.Username, target.Username),
	})
}

// UserUnblocked records an unblock
func (r *Recorder) UserUnblocked(ctx context.Context, actor, target *models.User) {
	r.record(ctx, &models.Activity{
		ActorID:      actor.ID,
		Type:         models.ActivityUserUnblocked,
		TargetUserID: sql.NullInt64{Int64: target.ID, Valid: true},
		Description:  fmt.Sprintf("%s unblocked %s", actor.Username, target.Username),
	})
}

// UserDeleted records an admin user deletion with the moderation
// reason in the metadata payload
func (r *Recorder) UserDeleted(ctx context.Context, actor, target *models.User, reason string) {
	r.record(ctx, &models.Activity{
		ActorID:      actor.ID,
		Type:         models.ActivityUserDeleted,
		TargetUserID: sql.NullInt64{Int64: target.ID, Valid: true},
		Description:  fmt.Sprintf("%s deleted user %s", actor.Username, target.Username),
		Metadata:     datatypes.JSONMap{"reason": reason},
	})
}
