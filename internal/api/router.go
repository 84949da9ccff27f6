package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pulsesocial/pulse/internal/auth"
	"github.com/pulsesocial/pulse/internal/cache"
	"github.com/pulsesocial/pulse/internal/db"
	"github.com/pulsesocial/pulse/internal/feed"
	"github.com/pulsesocial/pulse/pkg/config"
	"github.com/pulsesocial/pulse/pkg/logging"
)

// Router wires repositories, the feed composer and the HTTP handlers
type Router struct {
	db     *db.DB
	cache  *cache.Cache
	tokens *auth.TokenManager
	logger *zap.Logger

	users *db.UserRepository

	authAPI     *AuthAPI
	userAPI     *UserAPI
	postAPI     *PostAPI
	likeAPI     *LikeAPI
	activityAPI *ActivityAPI
	adminAPI    *AdminAPI
}

// NewRouter creates a new API router
func NewRouter(database *db.DB, redisCache *cache.Cache, cfg *config.Config) *Router {
	repo := db.NewRepository(database.DB)
	users := db.NewUserRepository(repo)
	relations := db.NewRelationRepository(repo)
	posts := db.NewPostRepository(repo)
	likes := db.NewLikeRepository(repo)
	activities := db.NewActivityRepository(repo)

	composer := feed.NewComposer(users, relations, activities, likes)
	recorder := feed.NewRecorder(activities)
	feedCache := cache.NewFeedCache(redisCache, cfg.Feed.CacheTTL)
	tokens := auth.NewTokenManager(&cfg.Auth)

	return &Router{
		db:          database,
		cache:       redisCache,
		tokens:      tokens,
		logger:      logging.GetLogger().With(zap.String("component", "api-router")),
		users:       users,
		authAPI:     NewAuthAPI(users, tokens),
		userAPI:     NewUserAPI(users, relations, recorder, feedCache),
		postAPI:     NewPostAPI(posts, users, relations, composer, recorder, feedCache),
		likeAPI:     NewLikeAPI(likes, posts, relations, recorder, feedCache),
		activityAPI: NewActivityAPI(composer, feedCache),
		adminAPI:    NewAdminAPI(repo, users, posts, likes, recorder, feedCache),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.Use(RequestID())
	engine.Use(Tracing())
	engine.Use(RequestLogger())

	// Health and metrics endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/signup", r.authAPI.Signup)
		authRoutes.POST("/login", r.authAPI.Login)
		authRoutes.POST("/refresh-token", r.authAPI.Refresh)
		authRoutes.POST("/logout", r.authenticated(), r.authAPI.Logout)
	}

	userRoutes := api.Group("/users", r.authenticated())
	{
		userRoutes.GET("/me", r.userAPI.Me)
		userRoutes.PUT("/me", r.userAPI.UpdateMe)
		userRoutes.GET("/:username", r.userAPI.GetProfile)
		userRoutes.GET("/:username/followers", r.userAPI.Followers)
		userRoutes.GET("/:username/following", r.userAPI.Following)
		// The target segment carries a numeric user ID; gin requires a
		// single wildcard name per position, so it shares :username.
		userRoutes.POST("/:username/follow", r.userAPI.Follow)
		userRoutes.DELETE("/:username/follow", r.userAPI.Unfollow)
		userRoutes.POST("/:username/block", r.userAPI.Block)
		userRoutes.DELETE("/:username/block", r.userAPI.Unblock)
	}

	postRoutes := api.Group("/posts", r.authenticated())
	{
		postRoutes.POST("", r.postAPI.Create)
		postRoutes.GET("", r.postAPI.List)
		postRoutes.GET("/:id", r.postAPI.Get)
		postRoutes.PUT("/:id", r.postAPI.Update)
		postRoutes.DELETE("/:id", r.postAPI.Delete)
		postRoutes.GET("/user/:username", r.postAPI.ListByUser)
	}

	likeRoutes := api.Group("/likes", r.authenticated())
	{
		likeRoutes.POST("/:postId", r.likeAPI.Like)
		likeRoutes.DELETE("/:postId", r.likeAPI.Unlike)
		likeRoutes.GET("/:postId", r.likeAPI.ListLikers)
	}

	activityRoutes := api.Group("/activities", r.authenticated())
	{
		activityRoutes.GET("/feed", r.activityAPI.PersonalFeed)
		activityRoutes.GET("/feed/public", r.activityAPI.PublicFeed)
		activityRoutes.GET("/details/:activityId", r.activityAPI.Details)
		activityRoutes.GET("/:username", r.activityAPI.UserFeed)
	}

	adminRoutes := api.Group("/admin", r.authenticated(), RequireStaff())
	{
		adminRoutes.GET("/users", r.adminAPI.ListUsers)
		adminRoutes.GET("/posts", r.adminAPI.ListPosts)
		adminRoutes.GET("/stats", r.adminAPI.Stats)
		adminRoutes.DELETE("/users/:userId", r.adminAPI.DeleteUser)
		adminRoutes.DELETE("/posts/:postId", r.adminAPI.DeletePost)
		adminRoutes.DELETE("/likes/:likeId", r.adminAPI.DeleteLike)
		adminRoutes.PUT("/users/:userId/promote", RequireOwner(), r.adminAPI.Promote)
		adminRoutes.PUT("/users/:userId/demote", RequireOwner(), r.adminAPI.Demote)
	}
}

func (r *Router) authenticated() gin.HandlerFunc {
	return Auth(r.tokens, r.users)
}

// healthHandler reports service, database and cache health
func (r *Router) healthHandler(c *gin.Context) {
	ctx := c.Request.Context()

	status := http.StatusOK
	dbStatus := "OK"
	if err := r.db.Health(ctx); err != nil {
		status = http.StatusServiceUnavailable
		dbStatus = "DOWN"
	}

	cacheStatus := "OK"
	switch err := r.cache.Health(ctx); err {
	case nil:
	case cache.ErrCacheDisabled:
		cacheStatus = "DISABLED"
	default:
		cacheStatus = "DOWN"
	}

	c.JSON(status, gin.H{
		"status":   dbStatus,
		"service":  "pulse-api",
		"database": dbStatus,
		"cache":    cacheStatus,
	})
}
