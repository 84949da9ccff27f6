package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pulsesocial/pulse/internal/cache"
	"github.com/pulsesocial/pulse/internal/feed"
)

// ActivityAPI serves the composed activity feeds
type ActivityAPI struct {
	composer  *feed.Composer
	feedCache *cache.FeedCache
}

// NewActivityAPI creates a new activity API handler
func NewActivityAPI(composer *feed.Composer, feedCache *cache.FeedCache) *ActivityAPI {
	return &ActivityAPI{
		composer:  composer,
		feedCache: feedCache,
	}
}

// PersonalFeed returns activity from the viewer and everyone they
// follow
func (a *ActivityAPI) PersonalFeed(c *gin.Context) {
	a.serveFeed(c, cache.FeedModePersonal, a.composer.PersonalFeed)
}

// PublicFeed returns sitewide activity minus blocked relationships
func (a *ActivityAPI) PublicFeed(c *gin.Context) {
	a.serveFeed(c, cache.FeedModePublic, a.composer.PublicFeed)
}

// UserFeed returns one user's activity timeline
func (a *ActivityAPI) UserFeed(c *gin.Context) {
	username := c.Param("username")
	a.serveFeed(c, cache.FeedModeUser(username), func(ctx context.Context, viewerID int64, page feed.Page) (*feed.FeedPage, error) {
		return a.composer.UserFeed(ctx, viewerID, username, page)
	})
}

// Details returns a single activity with its target resolved
func (a *ActivityAPI) Details(c *gin.Context) {
	viewer := currentUser(c)

	id, err := idParam(c, "activityId")
	if err != nil {
		respondError(c, err)
		return
	}

	item, err := a.composer.ActivityByID(c.Request.Context(), viewer.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "activity retrieved", "activity": item})
}

// serveFeed runs a feed query through the read-through cache
func (a *ActivityAPI) serveFeed(c *gin.Context, mode string, compose func(ctx context.Context, viewerID int64, page feed.Page) (*feed.FeedPage, error)) {
	viewer := currentUser(c)
	page := pageFromQuery(c)

	if cached, ok := a.feedCache.Get(viewer.ID, mode, page); ok {
		c.JSON(http.StatusOK, listEnvelope("activities retrieved", "activities", cached.Activities, cached.Pagination))
		return
	}

	fp, err := compose(c.Request.Context(), viewer.ID, page)
	if err != nil {
		respondError(c, err)
		return
	}
	a.feedCache.Put(viewer.ID, mode, page, fp)

	c.JSON(http.StatusOK, listEnvelope("activities retrieved", "activities", fp.Activities, fp.Pagination))
}
