package api

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pulsesocial/pulse/internal/apperr"
	"github.com/pulsesocial/pulse/internal/cache"
	"github.com/pulsesocial/pulse/internal/db"
	"github.com/pulsesocial/pulse/internal/feed"
	"github.com/pulsesocial/pulse/internal/models"
)

// PostAPI handles post CRUD and listing
type PostAPI struct {
	posts     *db.PostRepository
	users     *db.UserRepository
	relations *db.RelationRepository
	composer  *feed.Composer
	recorder  *feed.Recorder
	feedCache *cache.FeedCache
}

// NewPostAPI creates a new post API handler
func NewPostAPI(posts *db.PostRepository, users *db.UserRepository, relations *db.RelationRepository, composer *feed.Composer, recorder *feed.Recorder, feedCache *cache.FeedCache) *PostAPI {
	return &PostAPI{
		posts:     posts,
		users:     users,
		relations: relations,
		composer:  composer,
		recorder:  recorder,
		feedCache: feedCache,
	}
}

type createPostRequest struct {
	Content string `json:"content" binding:"required,min=1,max=5000"`
	Image   string `json:"image" binding:"omitempty,max=1024"`
}

type updatePostRequest struct {
	Content *string `json:"content" binding:"omitempty,min=1,max=5000"`
	Image   *string `json:"image" binding:"omitempty,max=1024"`
}

// Create publishes a new post
func (a *PostAPI) Create(c *gin.Context) {
	viewer := currentUser(c)
	ctx := c.Request.Context()

	var req createPostRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	post := &models.Post{
		AuthorID: viewer.ID,
		Content:  req.Content,
	}
	if req.Image != "" {
		post.Image = sql.NullString{String: req.Image, Valid: true}
	}

	if err := a.posts.Create(ctx, post); err != nil {
		respondError(c, err)
		return
	}
	post.Author = viewer

	a.recorder.PostCreated(ctx, viewer, post)
	a.feedCache.InvalidateAll()

	c.JSON(http.StatusCreated, gin.H{"message": "post created successfully", "post": post})
}

// List returns the public post timeline with blocked authors removed
func (a *PostAPI) List(c *gin.Context) {
	viewer := currentUser(c)
	ctx := c.Request.Context()

	blocked, err := a.relations.BlockSet(ctx, viewer.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	exclude := feed.BlockSet(blocked).IDs()

	page := pageFromQuery(c)
	posts, err := a.posts.List(ctx, exclude, page.Offset(), page.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	total, err := a.posts.Count(ctx, exclude)
	if err != nil {
		respondError(c, err)
		return
	}

	// Blocked authors are excluded in the query and filtered again on
	// the fetched page before enrichment.
	posts = feed.FilterPosts(posts, feed.BlockSet(blocked))

	views, err := a.composer.EnrichPosts(ctx, viewer.ID, posts)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listEnvelope("posts retrieved", "posts", views, feed.NewPagination(total, page)))
}

// Get returns one post with viewer enrichment
func (a *PostAPI) Get(c *gin.Context) {
	viewer := currentUser(c)
	ctx := c.Request.Context()

	post, err := a.visiblePost(c)
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := a.composer.EnrichPost(ctx, viewer.ID, post)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post retrieved", "post": view})
}

// Update edits the viewer's own post
func (a *PostAPI) Update(c *gin.Context) {
	viewer := currentUser(c)
	ctx := c.Request.Context()

	id, err := idParam(c, "id")
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
	if post.AuthorID != viewer.ID {
		respondError(c, apperr.Forbidden("you can only edit your own posts"))
		return
	}

	var req updatePostRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Image != nil {
		post.Image = sql.NullString{String: *req.Image, Valid: *req.Image != ""}
	}

	if err := a.posts.Update(ctx, post); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post updated successfully", "post": post})
}

// Delete removes the viewer's own post. Staff deletion with a reason
// lives under the admin surface.
func (a *PostAPI) Delete(c *gin.Context) {
	viewer := currentUser(c)
	ctx := c.Request.Context()

	id, err := idParam(c, "id")
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
	if post.AuthorID != viewer.ID {
		respondError(c, apperr.Forbidden("you can only delete your own posts"))
		return
	}

	if err := a.posts.SoftDelete(ctx, post.ID, viewer.ID, "deleted by author"); err != nil {
		respondError(c, err)
		return
	}

	a.recorder.PostDeleted(ctx, viewer, post)
	a.feedCache.InvalidateAll()
	respondMessage(c, http.StatusOK, "post deleted successfully")
}

// ListByUser returns one user's posts
func (a *PostAPI) ListByUser(c *gin.Context) {
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
			respondError(c, apperr.Forbidden("cannot view posts from this user"))
			return
		}
	}

	page := pageFromQuery(c)
	posts, err := a.posts.ListByAuthor(ctx, target.ID, page.Offset(), page.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	total, err := a.posts.CountByAuthor(ctx, target.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	views, err := a.composer.EnrichPosts(ctx, viewer.ID, posts)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listEnvelope("posts retrieved", "posts", views, feed.NewPagination(total, page)))
}

// visiblePost loads a post by :id and applies deletion and block
// visibility for the viewer
func (a *PostAPI) visiblePost(c *gin.Context) (*models.Post, error) {
	viewer := currentUser(c)
	ctx := c.Request.Context()

	id, err := idParam(c, "id")
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
			return nil, apperr.Forbidden("cannot view posts from this user")
		}
	}
	return post, nil
}
