package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pulsesocial/pulse/internal/feed"
	"github.com/pulsesocial/pulse/pkg/logging"
)

// Feed cache modes. A user feed mode embeds the target username so
// each profile timeline caches independently.
const (
	FeedModePersonal = "personal"
	FeedModePublic   = "public"
)

// FeedModeUser returns the cache mode for one user's activity timeline
func FeedModeUser(username string) string {
	return "user:" + username
}

// FeedCache is a read-through cache for composed feed pages. All
// operations are best-effort: a disabled cache or a Redis failure
// degrades to a miss, never to a request error.
type FeedCache struct {
	cache  *Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewFeedCache creates a feed cache with the given page TTL
func NewFeedCache(c *Cache, ttl time.Duration) *FeedCache {
	return &FeedCache{
		cache:  c,
		ttl:    ttl,
		logger: logging.WithComponent("feed-cache"),
	}
}

func feedKey(viewerID int64, mode string, page feed.Page) string {
	return fmt.Sprintf("feed:%d:%s:%d:%d", viewerID, mode, page.Page, page.Limit)
}

// Get returns a cached feed page, or ok=false on a miss
func (f *FeedCache) Get(viewerID int64, mode string, page feed.Page) (*feed.FeedPage, bool) {
	raw, err := f.cache.Get(feedKey(viewerID, mode, page))
	if err != nil {
		return nil, false
	}

	var fp feed.FeedPage
	if err := json.Unmarshal([]byte(raw), &fp); err != nil {
		f.logger.Warn("Failed to decode cached feed page", zap.Error(err))
		return nil, false
	}
	return &fp, true
}

// Put stores a composed feed page
func (f *FeedCache) Put(viewerID int64, mode string, page feed.Page, fp *feed.FeedPage) {
	data, err := json.Marshal(fp)
	if err != nil {
		f.logger.Warn("Failed to encode feed page", zap.Error(err))
		return
	}
	if err := f.cache.Set(feedKey(viewerID, mode, page), data, f.ttl); err != nil && err != ErrCacheDisabled {
		f.logger.Warn("Failed to cache feed page", zap.Error(err))
	}
}

// InvalidateViewer drops every cached page belonging to one viewer.
// Used after mutations that change what that viewer may see, such as
// follow or block changes.
func (f *FeedCache) InvalidateViewer(viewerID int64) {
	pattern := fmt.Sprintf("feed:%d:*", viewerID)
	if err := f.cache.DeletePattern(pattern); err != nil && err != ErrCacheDisabled {
		f.logger.Warn("Failed to invalidate viewer feed cache",
			zap.Int64("viewer_id", viewerID),
			zap.Error(err))
	}
}

// InvalidateAll drops every cached feed page. Used after mutations
// that produce a new public activity, so stale pages never outlive a
// write by more than the fetch that happens next.
func (f *FeedCache) InvalidateAll() {
	if err := f.cache.DeletePattern("feed:*"); err != nil && err != ErrCacheDisabled {
		f.logger.Warn("Failed to invalidate feed cache", zap.Error(err))
	}
}
