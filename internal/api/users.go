package api

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pulsesocial/pulse/internal/apperr"
	"github.com/pulsesocial/pulse/internal/cache"
	"github.com/pulsesocial/pulse/internal/db"
	"github.com/pulsesocial/pulse/internal/feed"
	"github.com/pulsesocial/pulse/internal/models"
)

// UserAPI handles profiles and the social graph
type UserAPI struct {
	users     *db.UserRepository
	relations *db.RelationRepository
	recorder  *feed.Recorder
	feedCache *cache.FeedCache
}

// NewUserAPI creates a new user API handler
func NewUserAPI(users *db.UserRepository, relations *db.RelationRepository, recorder *feed.Recorder, feedCache *cache.FeedCache) *UserAPI {
	return &UserAPI{
		users:     users,
		relations: relations,
		recorder:  recorder,
		feedCache: feedCache,
	}
}

type profileResponse struct {
	*models.User
	FollowersCount int64 `json:"followersCount"`
	FollowingCount int64 `json:"followingCount"`
	IsFollowing    bool  `json:"isFollowing,omitempty"`
}

type updateProfileRequest struct {
	FirstName    *string `json:"firstName"`
	LastName     *string `json:"lastName"`
	Bio          *string `json:"bio" binding:"omitempty,max=500"`
	ProfileImage *string `json:"profileImage" binding:"omitempty,max=1024"`
}

// Me returns the authenticated user's own profile
func (a *UserAPI) Me(c *gin.Context) {
	user := currentUser(c)

	profile, err := a.buildProfile(c, user, false)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile retrieved", "user": profile})
}

// UpdateMe updates the authenticated user's profile fields
func (a *UserAPI) UpdateMe(c *gin.Context) {
	user := currentUser(c)

	var req updateProfileRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	if req.FirstName != nil {
		user.FirstName = sql.NullString{String: *req.FirstName, Valid: *req.FirstName != ""}
	}
	if req.LastName != nil {
		user.LastName = sql.NullString{String: *req.LastName, Valid: *req.LastName != ""}
	}
	if req.Bio != nil {
		user.Bio = sql.NullString{String: *req.Bio, Valid: *req.Bio != ""}
	}
	if req.ProfileImage != nil {
		user.ProfileImage = *req.ProfileImage
	}

	if err := a.users.Update(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile updated", "user": user})
}

// GetProfile returns another user's public profile
func (a *UserAPI) GetProfile(c *gin.Context) {
	viewer := currentUser(c)
	ctx := c.Request.Context()

	target, err := a.users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	if target == nil || !target.IsActive {
		respondError(c, apperr.NotFound("user"))
		return
	}

	if target.ID != viewer.ID {
		blocked, err := a.relations.IsBlockedEither(ctx, viewer.ID, target.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		if blocked {
			respondError(c, apperr.Forbidden("cannot view this profile"))
			return
		}
	}

	profile, err := a.buildProfile(c, target, target.ID != viewer.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile retrieved", "user": profile})
}

// Follow makes the viewer follow the target user
func (a *UserAPI) Follow(c *gin.Context) {
	viewer := currentUser(c)
	ctx := c.Request.Context()

	target, err := a.targetByID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if target.ID == viewer.ID {
		respondError(c, apperr.Validation("you cannot follow yourself"))
		return
	}

	blocked, err := a.relations.IsBlockedEither(ctx, viewer.ID, target.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if blocked {
		respondError(c, apperr.Forbidden("cannot follow this user"))
		return
	}

	if err := a.relations.Follow(ctx, viewer.ID, target.ID); err != nil {
		respondError(c, err)
		return
	}

	a.recorder.UserFollowed(ctx, viewer, target)
	a.feedCache.InvalidateAll()
	respondMessage(c, http.StatusOK, "user followed successfully")
}

// Unfollow removes the viewer's follow edge to the target
func (a *UserAPI) Unfollow(c *gin.Context) {
	viewer := currentUser(c)
	ctx := c.Request.Context()

	target, err := a.targetByID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := a.relations.Unfollow(ctx, viewer.ID, target.ID); err != nil {
		respondError(c, err)
		return
	}

	a.recorder.UserUnfollowed(ctx, viewer, target)
	a.feedCache.InvalidateAll()
	respondMessage(c, http.StatusOK, "user unfollowed successfully")
}

// Block blocks the target user and severs follow edges both ways
func (a *UserAPI) Block(c *gin.Context) {
	viewer := currentUser(c)
	ctx := c.Request.Context()

	target, err := a.targetByID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if target.ID == viewer.ID {
		respondError(c, apperr.Validation("you cannot block yourself"))
		return
	}

	if err := a.relations.Block(ctx, viewer.ID, target.ID); err != nil {
		respondError(c, err)
		return
	}

	a.recorder.UserBlocked(ctx, viewer, target)
	a.feedCache.InvalidateAll()
	respondMessage(c, http.StatusOK, "user blocked successfully")
}

// Unblock removes the viewer's block on the target
func (a *UserAPI) Unblock(c *gin.Context) {
	viewer := currentUser(c)
	ctx := c.Request.Context()

	target, err := a.targetByID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := a.relations.Unblock(ctx, viewer.ID, target.ID); err != nil {
		respondError(c, err)
		return
	}

	a.recorder.UserUnblocked(ctx, viewer, target)
	a.feedCache.InvalidateAll()
	respondMessage(c, http.StatusOK, "user unblocked successfully")
}

// Followers lists users following the named user
func (a *UserAPI) Followers(c *gin.Context) {
	a.listRelated(c, a.relations.ListFollowers, a.relations.CountFollowers, "followers retrieved")
}

// Following lists users the named user follows
func (a *UserAPI) Following(c *gin.Context) {
	a.listRelated(c, a.relations.ListFollowing, a.relations.CountFollowing, "following retrieved")
}

func (a *UserAPI) listRelated(
	c *gin.Context,
	list func(ctx context.Context, userID int64, offset, limit int) ([]*models.User, error),
	count func(ctx context.Context, userID int64) (int64, error),
	message string,
) {
	ctx := c.Request.Context()

	target, err := a.users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	if target == nil || !target.IsActive {
		respondError(c, apperr.NotFound("user"))
		return
	}

	page := pageFromQuery(c)
	users, err := list(ctx, target.ID, page.Offset(), page.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	total, err := count(ctx, target.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listEnvelope(message, "users", users, feed.NewPagination(total, page)))
}

// targetByID loads an active user from the numeric ID carried in the
// :username path segment
func (a *UserAPI) targetByID(c *gin.Context) (*models.User, error) {
	id, err := strconv.ParseInt(c.Param("username"), 10, 64)
	if err != nil || id <= 0 {
		return nil, apperr.Validation("invalid user id")
	}
	target, err := a.users.GetByID(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if target == nil || !target.IsActive {
		return nil, apperr.NotFound("user")
	}
	return target, nil
}

func (a *UserAPI) buildProfile(c *gin.Context, user *models.User, withFollowState bool) (*profileResponse, error) {
	ctx := c.Request.Context()

	followers, err := a.relations.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	following, err := a.relations.CountFollowing(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	profile := &profileResponse{
		User:           user,
		FollowersCount: followers,
		FollowingCount: following,
	}
	if withFollowState {
		profile.IsFollowing, err = a.relations.IsFollowing(ctx, currentUser(c).ID, user.ID)
		if err != nil {
			return nil, err
		}
	}
	return profile, nil
}
