package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pulsesocial/pulse/internal/apperr"
	"github.com/pulsesocial/pulse/internal/cache"
	"github.com/pulsesocial/pulse/internal/db"
	"github.com/pulsesocial/pulse/internal/feed"
	"github.com/pulsesocial/pulse/internal/models"
	"github.com/pulsesocial/pulse/pkg/logging"
)

// AdminAPI handles moderation and role management
type AdminAPI struct {
	repo      *db.Repository
	users     *db.UserRepository
	posts     *db.PostRepository
	likes     *db.LikeRepository
	recorder  *feed.Recorder
	feedCache *cache.FeedCache
	logger    *zap.Logger
}

// NewAdminAPI creates a new admin API handler
func NewAdminAPI(repo *db.Repository, users *db.UserRepository, posts *db.PostRepository, likes *db.LikeRepository, recorder *feed.Recorder, feedCache *cache.FeedCache) *AdminAPI {
	return &AdminAPI{
		repo:      repo,
		users:     users,
		posts:     posts,
		likes:     likes,
		recorder:  recorder,
		feedCache: feedCache,
		logger:    logging.WithComponent("admin-api"),
	}
}

type moderationRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=255"`
}

// DeleteUser deactivates an account and soft-deletes its posts
func (a *AdminAPI) DeleteUser(c *gin.Context) {
	actor := currentUser(c)
	ctx := c.Request.Context()

	id, err := idParam(c, "userId")
	if err != nil {
		respondError(c, err)
		return
	}
	if id == actor.ID {
		respondError(c, apperr.Validation("you cannot delete your own account"))
		return
	}

	target, err := a.users.GetByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if target == nil || !target.IsActive {
		respondError(c, apperr.NotFound("user"))
		return
	}
	if target.Role == models.RoleOwner {
		respondError(c, apperr.Forbidden("the owner account cannot be deleted"))
		return
	}
	if target.Role == models.RoleAdmin && actor.Role != models.RoleOwner {
		respondError(c, apperr.Forbidden("only the owner can delete admin accounts"))
		return
	}

	var req moderationRequest
	_ = c.ShouldBindJSON(&req)
	if req.Reason == "" {
		req.Reason = "removed by moderation"
	}

	if err := a.users.Deactivate(ctx, target.ID, actor.ID, req.Reason); err != nil {
		respondError(c, err)
		return
	}

	a.logger.Info("User deactivated",
		zap.Int64("target_id", target.ID),
		zap.Int64("actor_id", actor.ID),
		zap.String("reason", req.Reason))

	a.recorder.UserDeleted(ctx, actor, target, req.Reason)
	a.feedCache.InvalidateAll()
	respondMessage(c, http.StatusOK, "user deleted successfully")
}

// DeletePost soft-deletes any user's post with a moderation reason
func (a *AdminAPI) DeletePost(c *gin.Context) {
	actor := currentUser(c)
	ctx := c.Request.Context()

	id, err := idParam(c, "postId")
	if err != nil {
		respondError(c, err)
		return
	}
	post, err := a.posts.GetByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if post == nil || post.IsDeleted {
		respondError(c, apperr.NotFound("post"))
		return
	}

	var req moderationRequest
	_ = c.ShouldBindJSON(&req)
	if req.Reason == "" {
		req.Reason = "removed by moderation"
	}

	if err := a.posts.SoftDelete(ctx, post.ID, actor.ID, req.Reason); err != nil {
		respondError(c, err)
		return
	}

	a.recorder.PostDeleted(ctx, actor, post)
	a.feedCache.InvalidateAll()
	respondMessage(c, http.StatusOK, "post deleted successfully")
}

// DeleteLike removes any user's like
func (a *AdminAPI) DeleteLike(c *gin.Context) {
	actor := currentUser(c)
	ctx := c.Request.Context()

	id, err := idParam(c, "likeId")
	if err != nil {
		respondError(c, err)
		return
	}
	like, err := a.likes.GetByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if like == nil || like.IsDeleted {
		respondError(c, apperr.NotFound("like"))
		return
	}

	var req moderationRequest
	_ = c.ShouldBindJSON(&req)
	if req.Reason == "" {
		req.Reason = "removed by moderation"
	}

	if err := a.likes.SoftDelete(ctx, like.ID, actor.ID, req.Reason); err != nil {
		respondError(c, err)
		return
	}

	a.feedCache.InvalidateAll()
	respondMessage(c, http.StatusOK, "like deleted successfully")
}

// Promote raises a regular user to admin. Owner only.
func (a *AdminAPI) Promote(c *gin.Context) {
	a.changeRole(c, models.RoleUser, models.RoleAdmin, "user promoted to admin")
}

// Demote lowers an admin back to a regular user. Owner only.
func (a *AdminAPI) Demote(c *gin.Context) {
	a.changeRole(c, models.RoleAdmin, models.RoleUser, "admin demoted to user")
}

func (a *AdminAPI) changeRole(c *gin.Context, fromRole, toRole, message string) {
	ctx := c.Request.Context()

	id, err := idParam(c, "userId")
	if err != nil {
		respondError(c, err)
		return
	}
	target, err := a.users.GetByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if target == nil || !target.IsActive {
		respondError(c, apperr.NotFound("user"))
		return
	}
	if target.Role == models.RoleOwner {
		respondError(c, apperr.Forbidden("the owner role cannot be changed"))
		return
	}
	if target.Role != fromRole {
		respondError(c, apperr.Validation("user does not hold the "+fromRole+" role"))
		return
	}

	target.Role = toRole
	if err := a.users.Update(ctx, target); err != nil {
		respondError(c, err)
		return
	}

	a.logger.Info("User role changed",
		zap.Int64("target_id", target.ID),
		zap.String("role", toRole))
	respondMessage(c, http.StatusOK, message)
}

// ListUsers returns all accounts with optional role and active filters
func (a *AdminAPI) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()

	filter := db.UserFilter{Role: c.Query("role")}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, apperr.Validation("invalid active filter"))
			return
		}
		filter.IsActive = &active
	}

	page := pageFromQuery(c)
	users, err := a.users.List(ctx, filter, page.Offset(), page.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	total, err := a.users.Count(ctx, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listEnvelope("users retrieved", "users", users, feed.NewPagination(total, page)))
}

// ListPosts returns all posts, deleted ones included, with an
// optional deleted filter
func (a *AdminAPI) ListPosts(c *gin.Context) {
	ctx := c.Request.Context()

	var isDeleted sql.NullBool
	if raw := c.Query("deleted"); raw != "" {
		deleted, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, apperr.Validation("invalid deleted filter"))
			return
		}
		isDeleted = sql.NullBool{Bool: deleted, Valid: true}
	}

	page := pageFromQuery(c)
	posts, err := a.posts.ListAll(ctx, isDeleted, page.Offset(), page.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	total, err := a.posts.CountAll(ctx, isDeleted)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listEnvelope("posts retrieved", "posts", posts, feed.NewPagination(total, page)))
}

// Stats returns sitewide counts
func (a *AdminAPI) Stats(c *gin.Context) {
	stats, err := a.repo.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "stats retrieved", "stats": stats})
}
