package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pulsesocial/pulse/internal/apperr"
	"github.com/pulsesocial/pulse/internal/cache"
	"github.com/pulsesocial/pulse/internal/db"
	"github.com/pulsesocial/pulse/internal/feed"
	"github.com/pulsesocial/pulse/internal/models"
)

// LikeAPI handles post likes
type LikeAPI struct {
	likes     *db.LikeRepository
	posts     *db.PostRepository
	relations *db.RelationRepository
	recorder  *feed.Recorder
	feedCache *cache.FeedCache
}

// NewLikeAPI creates a new like API handler
func NewLikeAPI(likes *db.LikeRepository, posts *db.PostRepository, relations *db.RelationRepository, recorder *feed.Recorder, feedCache *cache.FeedCache) *LikeAPI {
	return &LikeAPI{
		likes:     likes,
		posts:     posts,
		relations: relations,
		recorder:  recorder,
		feedCache: feedCache,
	}
}

// Like records the viewer's like on a post
func (a *LikeAPI) Like(c *gin.Context) {
	viewer := currentUser(c)
	ctx := c.Request.Context()

	post, err := a.likeablePost(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if _, err := a.likes.Like(ctx, viewer.ID, post.ID); err != nil {
		respondError(c, err)
		return
	}

	a.recorder.PostLiked(ctx, viewer, post)
	a.feedCache.InvalidateAll()
	respondMessage(c, http.StatusOK, "post liked successfully")
}

// Unlike removes the viewer's like from a post
func (a *LikeAPI) Unlike(c *gin.Context) {
	viewer := currentUser(c)
	ctx := c.Request.Context()

	post, err := a.likeablePost(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := a.likes.Unlike(ctx, viewer.ID, post.ID); err != nil {
		respondError(c, err)
		return
	}

	a.recorder.PostUnliked(ctx, viewer, post)
	a.feedCache.InvalidateAll()
	respondMessage(c, http.StatusOK, "post unliked successfully")
}

// ListLikers lists the users who liked a post
func (a *LikeAPI) ListLikers(c *gin.Context) {
	ctx := c.Request.Context()

	post, err := a.likeablePost(c)
	if err != nil {
		respondError(c, err)
		return
	}

	page := pageFromQuery(c)
	likes, err := a.likes.ListForPost(ctx, post.ID, page.Offset(), page.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	total, err := a.likes.CountForPost(ctx, post.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listEnvelope("likes retrieved", "likes", likes, feed.NewPagination(total, page)))
}

// likeablePost loads the :postId post and applies deletion and block
// visibility for the viewer
func (a *LikeAPI) likeablePost(c *gin.Context) (*models.Post, error) {
	viewer := currentUser(c)
	ctx := c.Request.Context()

	id, err := idParam(c, "postId")
	if err != nil {
		return nil, err
	}
	post, err := a.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil || post.IsDeleted {
		return nil, apperr.NotFound("post")
	}

	if post.AuthorID != viewer.ID {
		blocked, err := a.relations.IsBlockedEither(ctx, viewer.ID, post.AuthorID)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, apperr.Forbidden("cannot interact with this user's posts")
		}
	}
	return post, nil
}
