package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pulsesocial/pulse/internal/apperr"
	"github.com/pulsesocial/pulse/internal/feed"
	"github.com/pulsesocial/pulse/pkg/logging"
)

// respondError maps an application error to its HTTP status. Internal
// errors respond with a generic message; the wrapped detail only goes
// to the log.
func respondError(c *gin.Context, err error) {
	appErr := apperr.From(err)
	if appErr.Kind == apperr.KindInternal {
		logging.GetLogger().Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(appErr.Status(), gin.H{"message": appErr.Message})
}

// respondMessage sends a bare envelope with no payload
func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

// listEnvelope builds the standard paginated list envelope. The items
// field name varies per resource ("activities", "posts", ...).
func listEnvelope(message, field string, items interface{}, p feed.Pagination) gin.H {
	return gin.H{
		"message":    message,
		field:        items,
		"pagination": p,
	}
}

// pageFromQuery reads ?page=&limit= with clamping defaults
func pageFromQuery(c *gin.Context) feed.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return feed.NewPage(page, limit)
}

// idParam parses a numeric path parameter
func idParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid " + name)
	}
	return id, nil
}

// bindJSON binds the request body, converting bind failures to the
// validation kind
func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperr.Validation("invalid request body: " + err.Error())
	}
	return nil
}
