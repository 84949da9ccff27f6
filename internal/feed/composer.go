package feed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pulsesocial/pulse/internal/apperr"
	"github.com/pulsesocial/pulse/internal/models"
	"github.com/pulsesocial/pulse/pkg/logging"
)

// UserDirectory resolves viewer and target identities
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// RelationStore exposes the viewer's social graph
type RelationStore interface {
	FollowingIDs(ctx context.Context, userID int64) ([]int64, error)
	BlockSet(ctx context.Context, userID int64) (map[int64]struct{}, error)
	IsBlockedEither(ctx context.Context, a, b int64) (bool, error)
}

// ActivityStore queries the activity log
type ActivityStore interface {
	GetByID(ctx context.Context, id int64) (*models.Activity, error)
	ListByActors(ctx context.Context, actorIDs []int64, offset, limit int) ([]*models.Activity, error)
	CountByActors(ctx context.Context, actorIDs []int64) (int64, error)
	ListExcluding(ctx context.Context, excludeActorIDs []int64, offset, limit int) ([]*models.Activity, error)
	CountExcluding(ctx context.Context, excludeActorIDs []int64) (int64, error)
	ListByActor(ctx context.Context, actorID int64, offset, limit int) ([]*models.Activity, error)
	CountByActor(ctx context.Context, actorID int64) (int64, error)
}

// LikeStore answers like questions for post enrichment
type LikeStore interface {
	CountForPost(ctx context.Context, postID int64) (int64, error)
	HasLiked(ctx context.Context, userID, postID int64) (bool, error)
}

// PostView is a post enriched with viewer-specific derived fields.
// LikesCount is recomputed from like rows at read time, never read
// from a stored counter.
type PostView struct {
	models.Post
	LikesCount  int64 `json:"likesCount"`
	IsLikedByMe bool  `json:"isLikedByMe"`
}

// ActivityItem is an activity with its target post enriched for the
// viewer
type ActivityItem struct {
	*models.Activity
	TargetPost *PostView `json:"targetPost,omitempty"`
}

// FeedPage is one page of a composed feed
type FeedPage struct {
	Activities []*ActivityItem `json:"activities"`
	Pagination Pagination      `json:"pagination"`
}

// Composer builds privacy-correct activity feeds
type Composer struct {
	users      UserDirectory
	relations  RelationStore
	activities ActivityStore
	likes      LikeStore
	logger     *zap.Logger
}

// NewComposer creates a new feed composer
func NewComposer(users UserDirectory, relations RelationStore, activities ActivityStore, likes LikeStore) *Composer {
	return &Composer{
		users:      users,
		relations:  relations,
		activities: activities,
		likes:      likes,
		logger:     logging.WithComponent("feed-composer"),
	}
}

// PersonalFeed returns activities from the viewer and the users they
// follow, minus blocked actors and blocked target-post authors.
func (c *Composer) PersonalFeed(ctx context.Context, viewerID int64, page Page) (*FeedPage, error) {
	following, err := c.relations.FollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("resolving following: %w", err)
	}
	blocked, err := c.blockSet(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	actorIDs := append([]int64{viewerID}, following...)

	raw, err := c.activities.ListByActors(ctx, actorIDs, page.Offset(), page.Limit)
	if err != nil {
		return nil, fmt.Errorf("querying activities: %w", err)
	}

	// Total counts the unfiltered candidate query; see Pagination.
	total, err := c.activities.CountByActors(ctx, actorIDs)
	if err != nil {
		return nil, fmt.Errorf("counting activities: %w", err)
	}

	items, err := c.buildItems(ctx, viewerID, FilterActivities(raw, blocked))
	if err != nil {
		return nil, err
	}

	return &FeedPage{Activities: items, Pagination: NewPagination(total, page)}, nil
}

// PublicFeed returns all activities except those from blocked actors.
// Blocked actors are excluded at the query layer; the visibility
// filter still runs as a second pass to catch activities targeting a
// blocked author's post, which the query exclusion cannot see.
func (c *Composer) PublicFeed(ctx context.Context, viewerID int64, page Page) (*FeedPage, error) {
	blocked, err := c.blockSet(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	excluded := blocked.IDs()

	raw, err := c.activities.ListExcluding(ctx, excluded, page.Offset(), page.Limit)
	if err != nil {
		return nil, fmt.Errorf("querying activities: %w", err)
	}

	total, err := c.activities.CountExcluding(ctx, excluded)
	if err != nil {
		return nil, fmt.Errorf("counting activities: %w", err)
	}

	items, err := c.buildItems(ctx, viewerID, FilterActivities(raw, blocked))
	if err != nil {
		return nil, err
	}

	return &FeedPage{Activities: items, Pagination: NewPagination(total, page)}, nil
}

// UserFeed returns a single user's activities. A block in either
// direction rejects the request outright rather than silently
// filtering, since the viewer explicitly asked for this user's
// content. Past that gate no block filtering applies: every activity
// belongs to the one non-blocked actor.
func (c *Composer) UserFeed(ctx context.Context, viewerID int64, username string, page Page) (*FeedPage, error) {
	target, err := c.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("resolving user %s: %w", username, err)
	}
	if target == nil {
		return nil, apperr.NotFound("user")
	}

	blocked, err := c.relations.IsBlockedEither(ctx, viewerID, target.ID)
	if err != nil {
		return nil, fmt.Errorf("checking block state: %w", err)
	}
	if blocked {
		return nil, apperr.Forbidden("cannot view activities from this user")
	}

	raw, err := c.activities.ListByActor(ctx, target.ID, page.Offset(), page.Limit)
	if err != nil {
		return nil, fmt.Errorf("querying activities: %w", err)
	}

	total, err := c.activities.CountByActor(ctx, target.ID)
	if err != nil {
		return nil, fmt.Errorf("counting activities: %w", err)
	}

	items, err := c.buildItems(ctx, viewerID, raw)
	if err != nil {
		return nil, err
	}

	return &FeedPage{Activities: items, Pagination: NewPagination(total, page)}, nil
}

// ActivityByID resolves a single activity with its references
func (c *Composer) ActivityByID(ctx context.Context, viewerID, activityID int64) (*ActivityItem, error) {
	activity, err := c.activities.GetByID(ctx, activityID)
	if err != nil {
		return nil, fmt.Errorf("resolving activity: %w", err)
	}
	if activity == nil {
		return nil, apperr.NotFound("activity")
	}

	items, err := c.buildItems(ctx, viewerID, []*models.Activity{activity})
	if err != nil {
		return nil, err
	}
	return items[0], nil
}

// EnrichPost attaches viewer-derived fields to a post
func (c *Composer) EnrichPost(ctx context.Context, viewerID int64, post *models.Post) (*PostView, error) {
	count, err := c.likes.CountForPost(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("counting likes for post %d: %w", post.ID, err)
	}
	liked, err := c.likes.HasLiked(ctx, viewerID, post.ID)
	if err != nil {
		return nil, fmt.Errorf("checking like for post %d: %w", post.ID, err)
	}
	return &PostView{Post: *post, LikesCount: count, IsLikedByMe: liked}, nil
}

// EnrichPosts attaches viewer-derived fields to a post listing
func (c *Composer) EnrichPosts(ctx context.Context, viewerID int64, posts []*models.Post) ([]*PostView, error) {
	views := make([]*PostView, 0, len(posts))
	for _, p := range posts {
		v, err := c.EnrichPost(ctx, viewerID, p)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func (c *Composer) blockSet(ctx context.Context, viewerID int64) (BlockSet, error) {
	set, err := c.relations.BlockSet(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("resolving block set: %w", err)
	}
	return set, nil
}

func (c *Composer) buildItems(ctx context.Context, viewerID int64, activities []*models.Activity) ([]*ActivityItem, error) {
	items := make([]*ActivityItem, 0, len(activities))
	for _, a := range activities {
		item := &ActivityItem{Activity: a}
		if a.TargetKind() == models.TargetPost && a.TargetPost != nil {
			view, err := c.EnrichPost(ctx, viewerID, a.TargetPost)
			if err != nil {
				return nil, err
			}
			item.TargetPost = view
		}
		items = append(items, item)
	}
	return items, nil
}
